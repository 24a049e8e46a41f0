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

package scan

import (
	"regexp"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
)

// Collect returns the distinct codes held by possible-match markers anywhere
// in doc, in the order they first appear. Markers whose text no longer
// matches pattern are ignored.
func Collect(doc *dom.Document, matchClass string, pattern *regexp.Regexp) []string {
	markers := doc.ElementsByClass(matchClass)
	found := make([]string, 0, len(markers))
	seen := make(map[string]struct{}, len(markers))
	for _, marker := range markers {
		code := dom.TextContent(marker)
		if _, ok := seen[code]; ok {
			continue
		}
		if pattern != nil && !pattern.MatchString(code) {
			continue
		}
		seen[code] = struct{}{}
		found = append(found, code)
	}
	return found
}
