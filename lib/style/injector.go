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

// Package style installs minimal default presentation for markers and
// overlays when the page does not style them itself.
package style

import (
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/markup"
)

// Rules are the declaration blocks used for uncovered selectors.
type Rules struct {
	Acronym      string
	Tooltip      string
	OffTopEdge   string
	OffRightEdge string
}

// DefaultRules returns the stock marker, tooltip and edge styles.
func DefaultRules() Rules {
	return Rules{
		Acronym: "position:relative; top:0; border-bottom:1px dotted black; cursor:help;",
		Tooltip: "font-family:verdana,arial,helvetica,sans-serif; position:absolute; z-index:99999; left:0; bottom:1.5em; " +
			"padding:0.5em; white-space:nowrap; background-color:#ffd; color:#333; border:1px solid #333; border-radius:0.5em;",
		OffTopEdge:   "bottom:auto; top:1.5em;",
		OffRightEdge: "left:auto; right:0;",
	}
}

// Injector adds default styles to a document that does not style markers itself.
type Injector struct {
	doc   *dom.Document
	names markup.Names
	rules Rules
}

// New returns an Injector for doc using names for its selectors.
func New(doc *dom.Document, names markup.Names, rules Rules) *Injector {
	return &Injector{
		doc:   doc,
		names: names,
		rules: rules,
	}
}

// ApplyDefaultsIfNeeded appends one stylesheet holding a default rule for
// each of the marker, overlay and edge selectors that no stylesheet covers
// yet. It returns the css added, "" when everything was already covered, so
// repeated calls add nothing.
func (i *Injector) ApplyDefaultsIfNeeded() string {
	acronym := "." + i.names.WrapperClass
	tooltip := "#" + i.names.TooltipID
	topEdge := "." + i.names.OffTopEdgeClass
	rightEdge := "." + i.names.OffRightEdgeClass

	var sb strings.Builder
	add := func(selector, declarations string) {
		sb.WriteString(selector + " { " + declarations + " }\n")
	}

	if !i.covered(acronym, "span"+acronym) {
		add("span"+acronym, i.rules.Acronym)
	}
	if !i.covered(tooltip, "span"+tooltip) {
		add("span"+tooltip, i.rules.Tooltip)
	}
	if !i.covered(topEdge, "span"+topEdge, "span"+tooltip+topEdge) {
		add("span"+tooltip+topEdge, i.rules.OffTopEdge)
	}
	if !i.covered(rightEdge, "span"+rightEdge, "span"+tooltip+rightEdge) {
		add("span"+tooltip+rightEdge, i.rules.OffRightEdge)
	}

	css := sb.String()
	if css != "" {
		i.doc.AppendStyleSheet(css)
	}
	return css
}

func (i *Injector) covered(selectors ...string) bool {
	for _, selector := range selectors {
		if i.doc.HasRule(selector) {
			return true
		}
	}
	return false
}
