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

package lib

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// enclosing and trailing punctuation that dictionary sources and query
// strings sometimes leave around a code, e.g. "(LHR)" or "BA,".
var strippedCharacters = map[rune]struct{}{
	'(': {},
	')': {},
	'{': {},
	'}': {},
	'[': {},
	']': {},
	'"': {},
	'\'': {},
	':': {},
	';': {},
	',': {},
	'.': {},
}

// NormalizeCode folds a code to the form definitions are stored under:
// compatibility composed, without surrounding punctuation or space, upper
// case. Full width "ＬＨＲ" and " (lhr)," both normalize to "LHR".
func NormalizeCode(code string) string {
	code = norm.NFKC.String(code)
	code = strings.TrimFunc(code, func(r rune) bool {
		if unicode.IsSpace(r) {
			return true
		}
		_, ok := strippedCharacters[r]
		return ok
	})
	return strings.ToUpper(code)
}
