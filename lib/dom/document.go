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

// Package dom wraps a parsed HTML tree with the host capabilities the
// annotation pipeline relies on: selector queries, event handlers, deferred
// callbacks, layout measurement and stylesheet inspection.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/jonboulle/clockwork"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrInvalidSelector = errors.New("invalid css selector")

// Document is a live HTML tree. Work that reads or mutates the tree should go
// through Do so that it is serialised with event dispatch and timers.
type Document struct {
	Root *html.Node

	mu     sync.Mutex
	clock  clockwork.Clock
	layout Layout

	handlersMu sync.RWMutex
	handlers   map[*html.Node]map[EventType]Handler

	readyMu sync.Mutex
	ready   []func()
	isReady bool

	pending sync.WaitGroup
}

type Option func(*Document)

func WithClock(clock clockwork.Clock) Option {
	return func(d *Document) {
		d.clock = clock
	}
}

func WithLayout(layout Layout) Option {
	return func(d *Document) {
		d.layout = layout
	}
}

func New(root *html.Node, opts ...Option) *Document {
	d := &Document{
		Root:     root,
		clock:    clockwork.NewRealClock(),
		layout:   NoLayout{},
		handlers: make(map[*html.Node]map[EventType]Handler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return New(root, opts...), nil
}

func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// Do runs fn while holding the document lock. fn must not call Do, Dispatch
// or Ready itself.
func (d *Document) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// SetTimeout runs fn under the document lock once delay has elapsed on the
// document's clock.
func (d *Document) SetTimeout(delay time.Duration, fn func()) {
	d.pending.Add(1)
	d.clock.AfterFunc(delay, func() {
		defer d.pending.Done()
		d.Do(fn)
	})
}

// Wait blocks until every callback scheduled with SetTimeout has run.
func (d *Document) Wait() {
	d.pending.Wait()
}

func (d *Document) Clock() clockwork.Clock {
	return d.clock
}

func (d *Document) Layout() Layout {
	return d.layout
}

// OnReady registers fn to run when the document becomes ready. If it already
// is, fn runs straight away.
func (d *Document) OnReady(fn func()) {
	d.readyMu.Lock()
	if !d.isReady {
		d.ready = append(d.ready, fn)
		d.readyMu.Unlock()
		return
	}
	d.readyMu.Unlock()
	fn()
}

// Ready marks the document as ready and runs the registered callbacks in
// registration order. Only the first call has any effect.
func (d *Document) Ready() {
	d.readyMu.Lock()
	if d.isReady {
		d.readyMu.Unlock()
		return
	}
	d.isReady = true
	callbacks := d.ready
	d.ready = nil
	d.readyMu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (d *Document) QuerySelectorAll(selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
	}
	return sel.MatchAll(d.Root), nil
}

// ElementsByClass returns every element carrying class, in document order.
func (d *Document) ElementsByClass(class string) []*html.Node {
	var found []*html.Node
	walkElements(d.Root, func(n *html.Node) {
		if HasClass(n, class) {
			found = append(found, n)
		}
	})
	return found
}

func (d *Document) ElementByID(id string) *html.Node {
	var found *html.Node
	walkElements(d.Root, func(n *html.Node) {
		if found == nil && Attr(n, "id") == id {
			found = n
		}
	})
	return found
}

// Body returns the <body> element, or the root when the tree has none.
func (d *Document) Body() *html.Node {
	var body *html.Node
	walkElements(d.Root, func(n *html.Node) {
		if body == nil && n.DataAtom == atom.Body {
			body = n
		}
	})
	if body == nil {
		return d.Root
	}
	return body
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	if n == nil {
		return
	}
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}
