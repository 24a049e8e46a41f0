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

// Package tooltip shows the definitions of a marker in a transient overlay
// while the marker is hovered or touched.
package tooltip

import (
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/markup"
	"golang.org/x/net/html"
)

// Controller owns the single overlay. At most one overlay exists at any time:
// showing a new one always removes the previous one first.
//
// Overlays are assumed to be styled to sit above and to the right of their
// marker. Edge classes are added when they run over the top or the right
// edge of the viewport; running over the bottom or left is not corrected.
type Controller struct {
	doc     *dom.Document
	names   markup.Names
	results codes.Results
	current *html.Node
}

func New(doc *dom.Document, names markup.Names, results codes.Results) *Controller {
	return &Controller{
		doc:     doc,
		names:   names,
		results: results,
	}
}

// Current returns the overlay being shown, or nil.
func (c *Controller) Current() *html.Node {
	return c.current
}

// Attach makes marker show its overlay on mouseover/touchstart and hide it
// on mouseout/touchend.
func (c *Controller) Attach(marker *html.Node) {
	show := func(e dom.Event) { c.Show(e.CurrentTarget) }
	hide := func(dom.Event) { c.Hide() }
	c.doc.SetHandler(marker, dom.MouseOver, show)
	c.doc.SetHandler(marker, dom.TouchStart, show)
	c.doc.SetHandler(marker, dom.MouseOut, hide)
	c.doc.SetHandler(marker, dom.TouchEnd, hide)
}

// Show replaces any current overlay with one describing marker. It returns
// false, leaving no overlay, when there is nothing to show.
func (c *Controller) Show(marker *html.Node) bool {
	c.Hide()

	defs := c.results.Get(dom.OwnText(marker))
	if defs == nil {
		return false
	}

	overlay := dom.NewElement("span")
	dom.SetAttr(overlay, "id", c.names.TooltipID)
	dom.SetAttr(overlay, "style", "white-space:pre")
	if !populate(overlay, defs) {
		return false
	}

	marker.AppendChild(overlay)
	c.current = overlay
	c.forceIntoWindow()
	return true
}

// Hide removes the current overlay, if there is one.
func (c *Controller) Hide() {
	if c.current == nil {
		return
	}
	dom.Remove(c.current)
	c.current = nil
}

func (c *Controller) forceIntoWindow() {
	layout := c.doc.Layout()
	box := layout.BoundingClientRect(c.current)
	if box.Top < 0 {
		dom.AddClass(c.current, c.names.OffTopEdgeClass)
	}
	if box.Right > layout.ClientWidth() {
		dom.AddClass(c.current, c.names.OffRightEdgeClass)
	}
}

// populate fills overlay with one line per definition, lines separated by
// <br>. Plain definitions are written as text; structured ones as a span
// reading "name (country)" classed by kind and current status.
func populate(overlay *html.Node, defs []codes.Definition) bool {
	var lines []*html.Node
	for _, d := range codes.Displayed(defs) {
		if d.IsStructured() {
			lines = append(lines, structuredLine(d))
		} else {
			lines = append(lines, dom.NewText(d.Text))
		}
	}
	if len(lines) == 0 {
		return false
	}

	for i, line := range lines {
		if i > 0 {
			overlay.AppendChild(dom.NewElement("br"))
		}
		overlay.AppendChild(line)
	}
	return true
}

func structuredLine(d codes.Definition) *html.Node {
	line := dom.NewElement("span")
	var classes []string
	if d.Kind != "" {
		classes = append(classes, "nastt_kind_"+d.Kind)
	}
	if d.IsCurrent != nil {
		if *d.IsCurrent {
			classes = append(classes, "nastt_current_yes")
		} else {
			classes = append(classes, "nastt_current_no")
		}
	}
	if len(classes) > 0 {
		dom.SetClass(line, strings.Join(classes, " "))
	}
	line.AppendChild(dom.NewText(d.Name + " (" + d.Country + ")"))
	return line
}
