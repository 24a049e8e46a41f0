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

package dom

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rule is a single style rule. Grouped selectors ("a, b") produce one Rule
// per selector.
type Rule struct {
	SelectorText string
}

type StyleSheet struct {
	Node  *html.Node
	Rules []Rule
}

// StyleSheets parses every <style> element in the document.
func (d *Document) StyleSheets() []StyleSheet {
	var sheets []StyleSheet
	walkElements(d.Root, func(n *html.Node) {
		if n.DataAtom == atom.Style {
			sheets = append(sheets, StyleSheet{
				Node:  n,
				Rules: ParseRules(TextContent(n)),
			})
		}
	})
	return sheets
}

// HasRule reports whether any stylesheet has a rule whose selector text is
// exactly selector.
func (d *Document) HasRule(selector string) bool {
	selector = normalizeSelector(selector)
	for _, sheet := range d.StyleSheets() {
		for _, rule := range sheet.Rules {
			if rule.SelectorText == selector {
				return true
			}
		}
	}
	return false
}

// AppendStyleSheet adds a new <style> element holding src to the body.
func (d *Document) AppendStyleSheet(src string) *html.Node {
	sheet := NewElement("style")
	sheet.AppendChild(NewText(src))
	d.Body().AppendChild(sheet)
	return sheet
}

// ParseRules extracts the selector of every style rule in src, including
// rules nested in at-rules such as @media.
func ParseRules(src string) []Rule {
	var rules []Rule
	p := css.NewParser(parse.NewInputString(src), false)
	for {
		gt, _, _ := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return rules
		case css.QualifiedRuleGrammar, css.BeginRulesetGrammar:
			var sb strings.Builder
			flush := func() {
				if selector := normalizeSelector(sb.String()); selector != "" {
					rules = append(rules, Rule{SelectorText: selector})
				}
				sb.Reset()
			}
			for _, val := range p.Values() {
				if val.TokenType == css.CommaToken {
					flush()
					continue
				}
				sb.Write(val.Data)
			}
			flush()
		}
	}
}

func normalizeSelector(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
