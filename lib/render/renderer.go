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

// Package render decorates resolved markers using one of a fixed set of
// strategies.
package render

import (
	"strings"
	"time"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/markup"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/style"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/tooltip"
	"golang.org/x/net/html"
)

// DefaultStyleDelay is how long after rendering default styles are applied.
const DefaultStyleDelay = 50 * time.Millisecond

// Kind tells the strategies apart.
type Kind int

const (
	KindDisabled Kind = iota
	KindTooltip
	KindInline
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindTooltip:
		return "tooltip"
	case KindInline:
		return "inline"
	case KindCustom:
		return "custom"
	default:
		return "off"
	}
}

// Func decorates a single resolved marker.
type Func func(marker *html.Node, defs []codes.Definition)

// Strategy is resolved once per pipeline; the zero value is disabled.
type Strategy struct {
	kind Kind
	fn   Func
}

func Tooltip() Strategy  { return Strategy{kind: KindTooltip} }
func Inline() Strategy   { return Strategy{kind: KindInline} }
func Disabled() Strategy { return Strategy{kind: KindDisabled} }

// Custom wraps fn; a nil fn is disabled.
func Custom(fn Func) Strategy {
	if fn == nil {
		return Disabled()
	}
	return Strategy{kind: KindCustom, fn: fn}
}

// ParseStrategy maps a configured renderer name onto a strategy. Names that
// are not recognised resolve to Disabled.
func ParseStrategy(name string) Strategy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tooltip":
		return Tooltip()
	case "inline":
		return Inline()
	default:
		return Disabled()
	}
}

func (s Strategy) Kind() Kind {
	return s.kind
}

func (s Strategy) Enabled() bool {
	return s.kind != KindDisabled
}

func (s Strategy) String() string {
	return s.kind.String()
}

// Renderer applies Strategy to every marker that has results. Render must be
// called with the document lock held.
type Renderer struct {
	Doc      *dom.Document
	Names    markup.Names
	Results  codes.Results
	Strategy Strategy

	// Tooltips is created on first use when nil.
	Tooltips *tooltip.Controller

	// Styles, when set, is applied StyleDelay after a batch that rendered
	// tooltips.
	Styles     *style.Injector
	StyleDelay time.Duration
}

// Render decorates the resolved markers in document order and returns how
// many were decorated. Markers without results are left as they are, as are
// markers whose records are all incomplete unless the strategy is custom.
func (r *Renderer) Render() int {
	if !r.Strategy.Enabled() {
		return 0
	}

	decorated := 0
	renderedAsTooltips := false
	for _, marker := range r.Doc.ElementsByClass(r.Names.PossibleMatchClass) {
		defs := r.Results.Get(dom.OwnText(marker))
		if defs == nil {
			continue
		}
		if r.Strategy.kind == KindCustom {
			r.Strategy.fn(marker, defs)
			decorated++
			continue
		}
		if !codes.Displayable(defs) {
			continue
		}
		if r.Strategy.kind == KindTooltip {
			r.tooltip(marker)
			renderedAsTooltips = true
		} else {
			r.inline(marker, defs)
		}
		decorated++
	}

	if renderedAsTooltips && r.Styles != nil {
		delay := r.StyleDelay
		if delay <= 0 {
			delay = DefaultStyleDelay
		}
		styles := r.Styles
		r.Doc.SetTimeout(delay, func() { styles.ApplyDefaultsIfNeeded() })
	}
	return decorated
}

func (r *Renderer) tooltip(marker *html.Node) {
	if r.Tooltips == nil {
		r.Tooltips = tooltip.New(r.Doc, r.Names, r.Results)
	}
	dom.SetClass(marker, r.Names.WrapperClass)
	r.Tooltips.Attach(marker)
}

func (r *Renderer) inline(marker *html.Node, defs []codes.Definition) {
	explanation := dom.NewElement("span")
	dom.SetClass(explanation, r.Names.InlineExplanationClass)
	explanation.AppendChild(dom.NewText(codes.Explain(defs)))
	dom.InsertAfter(marker, explanation)
	dom.SetClass(marker, r.Names.WrapperClass)
}
