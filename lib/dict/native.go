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

package dict

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
)

func NewNativeReader() Reader {
	return nativeReader{}
}

type nativeReader struct{}

type nativeEntry struct {
	Code        string             `json:"code"`
	Definitions []codes.Definition `json:"definitions"`
}

func (p nativeReader) Read(r io.Reader) (chan Entry, chan error) {
	entries := make(chan Entry)
	errors := make(chan error)
	go p.read(r, entries, errors)
	return entries, errors
}

func (p nativeReader) read(r io.Reader, entries chan Entry, errors chan error) {
	scn := bufio.NewScanner(r)
	scn.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	for scn.Scan() {
		lineNumber++
		if len(scn.Bytes()) == 0 {
			continue
		}
		var e nativeEntry
		if err := json.Unmarshal(scn.Bytes(), &e); err != nil {
			errors <- fmt.Errorf("line %d: %w", lineNumber, err)
			return
		}
		entries <- Entry{Code: e.Code, Definitions: e.Definitions}
	}
	errors <- scn.Err()
}
