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

package blocklist

import (
	"io/ioutil"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gopkg.in/yaml.v2"
)

// Blocklist holds codes the lookup service never explains, typically common
// words that happen to look like codes ("IT", "OR").
type Blocklist struct {
	CaseSensitive   map[string]bool
	CaseInsensitive map[string]bool
}

// Allowed returns true if code is not blocklisted.
func (blocklist Blocklist) Allowed(code string) bool {
	if _, ok := blocklist.CaseSensitive[code]; ok {
		return false
	}

	if _, ok := blocklist.CaseInsensitive[strings.ToLower(code)]; ok {
		return false
	}

	return true
}

// FilterResults drops blocklisted codes from results.
func (blocklist Blocklist) FilterResults(results codes.Results) codes.Results {
	res := make(codes.Results, len(results))
	for code, defs := range results {
		if blocklist.Allowed(code) {
			res[code] = defs
		}
	}
	return res
}

// Load returns an unmarshalled blocklist from a YAML file at the given path.
func Load(path string) (*Blocklist, error) {
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("could not read blocklist")
		return nil, err
	}

	type yamlBlocklist struct {
		CaseSensitive   []string `yaml:"case_sensitive"`
		CaseInsensitive []string `yaml:"case_insensitive"`
	}

	yamlBl := yamlBlocklist{}
	if err := yaml.Unmarshal(bytes, &yamlBl); err != nil {
		log.Error().Err(err).Str("path", path).Msg("could not load blocklist")
		return nil, err
	}

	res := Blocklist{
		CaseSensitive:   map[string]bool{},
		CaseInsensitive: map[string]bool{},
	}

	for _, v := range yamlBl.CaseSensitive {
		res.CaseSensitive[v] = true
	}
	for _, v := range yamlBl.CaseInsensitive {
		res.CaseInsensitive[strings.ToLower(v)] = true
	}

	log.Info().Str("path", path).Int("codes", len(res.CaseSensitive)+len(res.CaseInsensitive)).Msg("blocklist loaded")

	return &res, nil
}
