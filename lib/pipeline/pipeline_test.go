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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/lookup"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/testhelpers"
	"golang.org/x/net/html"
)

const page = `<html><head></head><body>` +
	`<div class="content"><p>Fly F9 from HKG.</p><script>var BA = 1;</script></div>` +
	`<div class="footer">Operated by BA</div>` +
	`</body></html>`

var results = codes.Results{
	"F9":  {codes.Record("Frontier Airlines", "United States")},
	"HKG": {codes.Plain("Hong Kong International")},
}

func options(renderer string) Options {
	return Options{
		CSSSelector: ".content",
		AjaxURI:     "http://localhost/codes",
		Renderer:    renderer,
		Pattern:     codes.IataIcaoPattern,
	}
}

type pipelineSuite struct {
	suite.Suite
	clock  clockwork.FakeClock
	doc    *dom.Document
	client *testhelpers.LookupClient
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(pipelineSuite))
}

func (s *pipelineSuite) SetupTest() {
	s.clock = clockwork.NewFakeClock()
	doc, err := dom.ParseString(page, dom.WithClock(s.clock))
	s.Require().NoError(err)
	s.doc = doc
	s.client = &testhelpers.LookupClient{}
}

func (s *pipelineSuite) pipeline(opts Options) *Pipeline {
	p, err := New(s.doc, s.client, opts)
	s.Require().NoError(err)
	return p
}

func (s *pipelineSuite) TestInline() {
	s.client.On("Lookup", mock.Anything, []string{"F9", "HKG"}).Return(results, nil).Once()

	report := s.pipeline(options("inline")).Run(context.Background())

	s.NoError(report.Err)
	s.Equal(2, report.Markers)
	s.Equal([]string{"F9", "HKG"}, report.Codes)
	s.Equal(2, report.Decorated)
	s.Contains(s.doc.String(), `<p>Fly <span class="nastt_acronym">F9</span>`+
		`<span class="nastt_explain"> (Frontier Airlines, United States)</span> from `+
		`<span class="nastt_acronym">HKG</span><span class="nastt_explain"> (Hong Kong International)</span>.</p>`)
	s.Contains(s.doc.String(), `<script>var BA = 1;</script>`)
	s.Contains(s.doc.String(), `<div class="footer">Operated by BA</div>`)
	s.client.AssertExpectations(s.T())
}

func (s *pipelineSuite) TestTooltip() {
	s.client.On("Lookup", mock.Anything, []string{"F9", "HKG"}).Return(results, nil).Once()

	report := s.pipeline(options("")).Run(context.Background())
	s.Equal(2, report.Decorated)

	markers := s.doc.ElementsByClass("nastt_acronym")
	s.Require().Len(markers, 2)
	s.True(s.doc.HasHandlers(markers[0]))
	s.Empty(s.doc.StyleSheets())

	s.clock.Advance(defaultDelay)
	s.doc.Wait()
	s.True(s.doc.HasRule("span.nastt_acronym"))

	s.doc.Dispatch(markers[1], dom.TouchStart)
	overlay := s.doc.ElementByID("nastt_tooltip")
	s.Require().NotNil(overlay)
	s.Equal(markers[1], overlay.Parent)
	s.Equal("Hong Kong International", dom.TextContent(overlay))

	s.doc.Dispatch(markers[0], dom.MouseOver)
	overlay = s.doc.ElementByID("nastt_tooltip")
	s.Require().NotNil(overlay)
	s.Equal(markers[0], overlay.Parent)
	s.Len(s.doc.ElementsByClass("nastt_acronym"), 2)

	s.doc.Dispatch(markers[0], dom.MouseOut)
	s.Nil(s.doc.ElementByID("nastt_tooltip"))
}

func (s *pipelineSuite) TestCustomRenderer() {
	s.client.On("Lookup", mock.Anything, mock.Anything).Return(results, nil).Once()
	var seen []string
	opts := options("off")
	opts.RenderFunc = func(marker *html.Node, defs []codes.Definition) {
		seen = append(seen, fmt.Sprintf("%s=%d", dom.OwnText(marker), len(defs)))
	}

	report := s.pipeline(opts).Run(context.Background())
	s.Equal(2, report.Decorated)
	s.Equal([]string{"F9=1", "HKG=1"}, seen)
}

func (s *pipelineSuite) TestNoCodesMeansNoLookup() {
	opts := options("inline")
	opts.CSSSelector = ".missing"

	report := s.pipeline(opts).Run(context.Background())

	s.NoError(report.Err)
	s.Zero(report.Markers)
	s.Empty(report.Codes)
	s.client.AssertNotCalled(s.T(), "Lookup", mock.Anything, mock.Anything)
}

func (s *pipelineSuite) TestFailedLookupLeavesMarkersInert() {
	tests := []struct {
		name string
		err  error
	}{
		{name: "service error", err: lookup.ErrServiceError},
		{name: "malformed", err: lookup.ErrMalformed},
		{name: "empty", err: lookup.ErrEmpty},
	}
	for _, tt := range tests {
		s.T().Log(tt.name)
		s.SetupTest()
		s.client.On("Lookup", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

		report := s.pipeline(options("tooltip")).Run(context.Background())

		s.True(errors.Is(report.Err, tt.err))
		s.Zero(report.Decorated)
		s.Len(s.doc.ElementsByClass("nastt_match"), 2)
		for _, m := range s.doc.ElementsByClass("nastt_match") {
			s.False(s.doc.HasHandlers(m))
		}
		s.clock.Advance(time.Second)
		s.doc.Wait()
		s.Empty(s.doc.StyleSheets())
	}
}

func (s *pipelineSuite) TestPanickingClient() {
	p, err := New(s.doc, lookup.ClientFunc(func(context.Context, []string) (codes.Results, error) {
		panic("boom")
	}), options("inline"))
	s.Require().NoError(err)

	report := p.Run(context.Background())
	s.True(errors.Is(report.Err, lookup.ErrPanic))
	s.Zero(report.Decorated)
}

func (s *pipelineSuite) TestRerunDoesNotWrapTwice() {
	s.client.On("Lookup", mock.Anything, mock.Anything).Return(results, nil)
	p := s.pipeline(options("inline"))

	p.Run(context.Background())
	before := s.doc.String()
	report := p.Run(context.Background())

	s.Zero(report.Markers)
	s.Zero(report.Decorated)
	s.Equal(before, s.doc.String())
}

func (s *pipelineSuite) TestExcludedTags() {
	opts := options("inline")
	opts.TagsToExclude = []string{"P"}
	opts.CSSSelector = "body"
	opts.Pattern = regexp.MustCompile(`\bHKG\b`)

	report := s.pipeline(opts).Run(context.Background())
	s.Zero(report.Markers)
	s.Empty(report.Codes)

	opts.TagsToExclude = []string{"div"}
	report = s.pipeline(opts).Run(context.Background())
	s.Zero(report.Markers)
	s.client.AssertNotCalled(s.T(), "Lookup", mock.Anything, mock.Anything)
}

const defaultDelay = 50 * time.Millisecond

func TestNew(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	tests := []struct {
		name   string
		doc    *dom.Document
		opts   func(o *Options)
		expErr error
	}{
		{name: "valid", doc: doc, opts: func(o *Options) {}},
		{name: "no document", opts: func(o *Options) {}, expErr: ErrIncapable},
		{name: "no selector", doc: doc, opts: func(o *Options) { o.CSSSelector = "" }, expErr: ErrInvalidOptions},
		{name: "bad selector", doc: doc, opts: func(o *Options) { o.CSSSelector = "div[" }, expErr: ErrInvalidOptions},
		{name: "no uri", doc: doc, opts: func(o *Options) { o.AjaxURI = "" }, expErr: ErrInvalidOptions},
		{name: "bad uri", doc: doc, opts: func(o *Options) { o.AjaxURI = "http://[::1" }, expErr: ErrInvalidOptions},
		{name: "bad escape", doc: doc, opts: func(o *Options) { o.AjaxURI = "codes%zz" }, expErr: ErrInvalidOptions},
		{name: "root relative uri", doc: doc, opts: func(o *Options) { o.AjaxURI = "/codes" }},
		{name: "page relative uri", doc: doc, opts: func(o *Options) { o.AjaxURI = "lookup.php" }},
		{name: "nested relative uri", doc: doc, opts: func(o *Options) { o.AjaxURI = "ajax/codes.php" }},
		{name: "no pattern", doc: doc, opts: func(o *Options) { o.Pattern = nil }, expErr: ErrInvalidOptions},
		{name: "off", doc: doc, opts: func(o *Options) { o.Renderer = "off" }, expErr: ErrDisabled},
		{name: "unknown renderer", doc: doc, opts: func(o *Options) { o.Renderer = "popover" }, expErr: ErrDisabled},
	}
	for _, tt := range tests {
		t.Log(tt.name)
		opts := options("")
		tt.opts(&opts)
		p, err := New(tt.doc, nil, opts)
		if tt.expErr != nil {
			assert.True(t, errors.Is(err, tt.expErr), err)
			assert.Nil(t, p)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, "tooltip", p.Options().Renderer)
		assert.Equal(t, "nastt_match", p.Options().Names.PossibleMatchClass)
		assert.Equal(t, defaultDelay, p.Options().StyleDelay)
	}
}

func TestInitIataIcao(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("codes")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"F9":[{"name":"Frontier Airlines","country":"United States"}],"HKG":[]}`))
	}))
	defer server.Close()

	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	assert.True(t, InitIataIcao(context.Background(), doc, ".content", server.URL+"/codes", Options{Renderer: "inline"}))
	assert.Empty(t, doc.ElementsByClass("nastt_match"))

	doc.Ready()

	assert.Equal(t, "F9,HKG", query)
	assert.Len(t, doc.ElementsByClass("nastt_acronym"), 1)
	assert.Len(t, doc.ElementsByClass("nastt_match"), 1)
	assert.Contains(t, doc.String(), `<span class="nastt_explain"> (Frontier Airlines, United States)</span>`)
}

func TestInitRelativeEndpoints(t *testing.T) {
	tests := []struct {
		uri string
	}{
		{uri: "/codes"},
		{uri: "lookup.php"},
		{uri: "ajax/codes.php"},
		{uri: "http://localhost/codes"},
	}
	for _, tt := range tests {
		t.Log(tt.uri)
		doc, err := dom.ParseString(page)
		require.NoError(t, err)
		assert.True(t, InitIataIcao(context.Background(), doc, ".content", tt.uri, Options{}))
	}
}

func TestInitNoOps(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	assert.False(t, Init(context.Background(), doc, ".content", "http://localhost/codes", Options{}))
	assert.False(t, InitIataIcao(context.Background(), doc, "", "http://localhost/codes", Options{}))
	assert.False(t, InitIataIcao(context.Background(), doc, ".content", "", Options{}))
	assert.False(t, InitIataIcao(context.Background(), doc, ".content", "http://localhost/codes", Options{Renderer: "off"}))
	assert.False(t, InitIataIcao(context.Background(), nil, ".content", "http://localhost/codes", Options{}))

	before := doc.String()
	doc.Ready()
	assert.Equal(t, before, doc.String())
}
