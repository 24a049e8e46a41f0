/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/store"
)

var errTooManyCodes = errors.New("too many codes")

type controller struct {
	store     store.Client
	blocklist *blocklist.Blocklist
	maxCodes  int
}

// Lookup resolves the requested codes. Results are keyed by the code as it
// was requested, even though the store is queried with normalized codes.
func (c controller) Lookup(requested []string) (codes.Results, error) {
	spellings := make(map[string][]string, len(requested))
	var normalized []string
	for _, code := range requested {
		code = strings.TrimSpace(code)
		key := lib.NormalizeCode(code)
		if key == "" {
			continue
		}
		if c.blocklist != nil && (!c.blocklist.Allowed(code) || !c.blocklist.Allowed(key)) {
			continue
		}
		if _, ok := spellings[key]; !ok {
			normalized = append(normalized, key)
		}
		spellings[key] = appendUnique(spellings[key], code)
	}

	if c.maxCodes > 0 && len(normalized) > c.maxCodes {
		return nil, NewHttpError(400, fmt.Errorf("%w: %d requested, at most %d allowed", errTooManyCodes, len(normalized), c.maxCodes))
	}

	found, err := store.Find(c.store, normalized)
	if err != nil {
		return nil, err
	}

	results := make(codes.Results, len(found))
	for key, defs := range found {
		for _, code := range spellings[key] {
			results[code] = defs
		}
	}
	return results, nil
}

func (c controller) Ready() bool {
	return c.store.Ready()
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
