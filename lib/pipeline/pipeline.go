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

// Package pipeline ties scanning, lookup and rendering together into one
// pass over a document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/lookup"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/markup"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/render"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/scan"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/style"
	"golang.org/x/net/html"
)

var (
	ErrInvalidOptions = errors.New("invalid options")
	ErrDisabled       = errors.New("renderer is disabled")
	ErrIncapable      = errors.New("document cannot be annotated")
	ErrPanic          = errors.New("pipeline panicked")
)

var validate = newValidator()

// newValidator adds uri_ref, which accepts anything url.Parse does, so
// page-relative endpoints such as "lookup.php" pass.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("uri_ref", func(fl validator.FieldLevel) bool {
		_, err := url.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

type Options struct {
	CSSSelector string `mapstructure:"css_selector" validate:"required"`
	AjaxURI     string `mapstructure:"ajax_uri" validate:"required,uri_ref"`

	// Renderer names a built-in strategy: tooltip, inline or off. It is
	// ignored when RenderFunc is set.
	Renderer   string      `mapstructure:"renderer"`
	RenderFunc render.Func `mapstructure:"-"`

	TagsToExclude []string       `mapstructure:"tags_to_exclude"`
	Names         markup.Names   `mapstructure:"names"`
	StyleDelay    time.Duration  `mapstructure:"style_delay"`
	StyleRules    style.Rules    `mapstructure:"-"`
	Pattern       *regexp.Regexp `mapstructure:"-" validate:"required"`
}

func DefaultOptions() Options {
	return Options{
		Renderer:      render.KindTooltip.String(),
		TagsToExclude: scan.DefaultExcludedNodes,
		Names:         markup.DefaultNames(),
		StyleDelay:    render.DefaultStyleDelay,
		StyleRules:    style.DefaultRules(),
	}
}

// Merge returns o with unset options taken from defaults. A nil
// TagsToExclude takes the defaults; an empty one excludes nothing.
func (o Options) Merge(defaults Options) Options {
	merged := o
	if merged.Renderer == "" {
		merged.Renderer = defaults.Renderer
	}
	if merged.TagsToExclude == nil {
		merged.TagsToExclude = defaults.TagsToExclude
	}
	merged.Names = o.Names.Merge(defaults.Names)
	if merged.StyleDelay <= 0 {
		merged.StyleDelay = defaults.StyleDelay
	}
	if merged.StyleRules == (style.Rules{}) {
		merged.StyleRules = defaults.StyleRules
	}
	if merged.Pattern == nil {
		merged.Pattern = defaults.Pattern
	}
	return merged
}

func (o Options) strategy() render.Strategy {
	if o.RenderFunc != nil {
		return render.Custom(o.RenderFunc)
	}
	return render.ParseStrategy(o.Renderer)
}

// Report describes what a run did. Err is only informational: a failed
// run leaves the document as it was after scanning.
type Report struct {
	Markers   int
	Codes     []string
	Decorated int
	Err       error
}

type Pipeline struct {
	doc      *dom.Document
	client   lookup.Client
	opts     Options
	strategy render.Strategy
	scanner  scan.Scanner
	styles   *style.Injector
}

// New builds a pipeline for doc from opts merged over DefaultOptions. A nil
// client looks codes up over http at opts.AjaxURI.
func New(doc *dom.Document, client lookup.Client, opts Options) (*Pipeline, error) {
	if doc == nil || doc.Root == nil {
		return nil, ErrIncapable
	}

	opts = opts.Merge(DefaultOptions())
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if _, err := doc.QuerySelectorAll(opts.CSSSelector); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	strategy := opts.strategy()
	if !strategy.Enabled() {
		return nil, fmt.Errorf("%w: %q", ErrDisabled, opts.Renderer)
	}

	if client == nil {
		client = lookup.NewHttpClient(opts.AjaxURI)
	}

	names := opts.Names
	return &Pipeline{
		doc:      doc,
		client:   client,
		opts:     opts,
		strategy: strategy,
		scanner:  scan.New(opts.Pattern, names.PossibleMatchClass, opts.TagsToExclude, names.WrapperClass, names.InlineExplanationClass),
		styles:   style.New(doc, names, opts.StyleRules),
	}, nil
}

func (p *Pipeline) Options() Options {
	return p.opts
}

// Run scans every root matched by the selector, looks the codes up and
// decorates the markers that resolved. Failures abandon the run quietly
// and are only logged at debug level. Run must not be called while the
// document lock is held.
func (p *Pipeline) Run(ctx context.Context) (report Report) {
	defer func() {
		if r := recover(); r != nil {
			report.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		if report.Err != nil {
			log.Debug().Err(report.Err).Str("selector", p.opts.CSSSelector).Msg("annotation abandoned")
		}
	}()

	var err error
	p.doc.Do(func() {
		var roots []*html.Node
		if roots, err = p.doc.QuerySelectorAll(p.opts.CSSSelector); err != nil {
			return
		}
		for _, root := range roots {
			report.Markers += p.scanner.MarkPossibleMatches(root)
		}
		report.Codes = scan.Collect(p.doc, p.opts.Names.PossibleMatchClass, p.opts.Pattern)
	})
	if err != nil {
		report.Err = err
		return report
	}
	if len(report.Codes) == 0 {
		return report
	}

	var results codes.Results
	if results, err = lookup.Dispatch(ctx, p.client, report.Codes); err != nil {
		report.Err = err
		return report
	}

	renderer := &render.Renderer{
		Doc:        p.doc,
		Names:      p.opts.Names,
		Results:    results,
		Strategy:   p.strategy,
		Styles:     p.styles,
		StyleDelay: p.opts.StyleDelay,
	}
	p.doc.Do(func() {
		report.Decorated = renderer.Render()
	})
	return report
}

// Init runs a pipeline once doc is ready. It does nothing and returns false
// when the options are incomplete, the renderer is off or doc cannot be
// annotated.
func Init(ctx context.Context, doc *dom.Document, selector, uri string, overrides Options) bool {
	overrides.CSSSelector = selector
	overrides.AjaxURI = uri
	p, err := New(doc, nil, overrides)
	if err != nil {
		log.Debug().Err(err).Msg("annotation not initialised")
		return false
	}
	doc.OnReady(func() { p.Run(ctx) })
	return true
}

// InitIataIcao is Init matching airline and airport codes unless overrides
// carries its own pattern.
func InitIataIcao(ctx context.Context, doc *dom.Document, selector, uri string, overrides Options) bool {
	if overrides.Pattern == nil {
		overrides.Pattern = codes.IataIcaoPattern
	}
	return Init(ctx, doc, selector, uri, overrides)
}
