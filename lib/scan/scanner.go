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

// Package scan finds candidate codes in the text of an HTML tree and wraps
// each occurrence in a marker element.
package scan

import (
	"regexp"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
	"golang.org/x/net/html"
)

// DefaultExcludedNodes are never searched. Rewriting the text of these
// elements may break the page.
var DefaultExcludedNodes = []string{"script", "style", "iframe", "acronym", "abbr", "canvas"}

// Scanner finds pattern matches in text nodes and wraps each in a marker.
type Scanner struct {
	pattern     *regexp.Regexp
	matchClass  string
	excluded    map[string]struct{}
	skipClasses map[string]struct{}
}

// New returns a Scanner wrapping matches of pattern in spans of matchClass.
// Text below any element named in excluded is ignored, as is text inside
// elements carrying one of skipClasses (typically markers from an earlier
// scan).
func New(pattern *regexp.Regexp, matchClass string, excluded []string, skipClasses ...string) Scanner {
	s := Scanner{
		pattern:     pattern,
		matchClass:  matchClass,
		excluded:    make(map[string]struct{}, len(excluded)),
		skipClasses: make(map[string]struct{}, len(skipClasses)+1),
	}
	for _, tag := range excluded {
		s.excluded[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	s.skipClasses[matchClass] = struct{}{}
	for _, class := range skipClasses {
		if class != "" {
			s.skipClasses[class] = struct{}{}
		}
	}
	return s
}

func (s Scanner) disallowed(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if _, ok := s.excluded[strings.ToLower(n.Data)]; ok {
		return true
	}
	for _, class := range dom.ClassList(n) {
		if _, ok := s.skipClasses[class]; ok {
			return true
		}
	}
	return false
}

// TextNodes returns, in document order, the text nodes below root that are
// not inside a disallowed element.
func (s Scanner) TextNodes(root *html.Node) []*html.Node {
	if root == nil || s.disallowed(root) {
		return nil
	}
	var found []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case s.disallowed(c):
		case c.Type == html.TextNode:
			found = append(found, c)
		case c.Type == html.ElementNode:
			found = append(found, s.TextNodes(c)...)
		}
	}
	return found
}

// MarkPossibleMatches wraps every match below root in a marker and returns
// how many markers were created. Text nodes without a match keep their
// identity and content.
func (s Scanner) MarkPossibleMatches(root *html.Node) int {
	// Collect first: splitting nodes while walking would revisit new markers.
	textNodes := s.TextNodes(root)
	count := 0
	for _, n := range textNodes {
		count += s.markTextNode(n)
	}
	return count
}

// markTextNode splits n into text, marker, text... siblings. The original
// node is kept for the trailing text, or removed when there is none.
func (s Scanner) markTextNode(n *html.Node) int {
	text := n.Data
	parent := n.Parent
	if parent == nil {
		return 0
	}

	count, last := 0, 0
	for _, match := range s.pattern.FindAllStringIndex(text, -1) {
		start, end := match[0], match[1]
		if start == end {
			continue
		}
		if start > last {
			parent.InsertBefore(dom.NewText(text[last:start]), n)
		}
		parent.InsertBefore(s.newMarker(text[start:end]), n)
		last = end
		count++
	}
	if count == 0 {
		return 0
	}

	if last < len(text) {
		n.Data = text[last:]
	} else {
		parent.RemoveChild(n)
	}
	return count
}

func (s Scanner) newMarker(code string) *html.Node {
	marker := dom.NewElement("span")
	dom.SetClass(marker, s.matchClass)
	marker.AppendChild(dom.NewText(code))
	return marker
}
