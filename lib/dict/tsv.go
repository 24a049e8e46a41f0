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
	"fmt"
	"io"
	"strconv"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
)

func NewTsvReader() Reader {
	return tsvReader{}
}

type tsvReader struct{}

func (t tsvReader) Read(r io.Reader) (chan Entry, chan error) {
	entries := make(chan Entry)
	errors := make(chan error)
	go t.read(r, entries, errors)
	return entries, errors
}

// read sends one entry per row. Rows for the same code are not merged here;
// stores append them.
func (t tsvReader) read(r io.Reader, entries chan Entry, errors chan error) {
	scn := bufio.NewScanner(r)
	lineNumber := 0
	for scn.Scan() {
		lineNumber++
		line := scn.Text()

		// skip empty lines and commented out lines.
		if len(strings.TrimSpace(line)) == 0 || line[0] == '#' {
			continue
		}

		row := strings.Split(line, "\t")
		var def codes.Definition
		switch len(row) {
		case 1:
			errors <- fmt.Errorf("line %d: no definition for %q", lineNumber, row[0])
			return
		case 2:
			def = codes.Plain(row[1])
		default:
			def = codes.Record(row[1], row[2])
			if len(row) > 3 {
				def = def.WithKind(row[3])
			}
			if len(row) > 4 && row[4] != "" {
				current, err := strconv.ParseBool(row[4])
				if err != nil {
					errors <- fmt.Errorf("line %d: %w", lineNumber, err)
					return
				}
				def = def.WithCurrent(current)
			}
		}
		entries <- Entry{Code: row[0], Definitions: []codes.Definition{def}}
	}
	errors <- scn.Err()
}
