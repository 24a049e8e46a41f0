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
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuerySelectorAll(t *testing.T) {
	doc, err := ParseString(`<div class="post"><p>one</p></div><div class="post">two</div><p>three</p>`)
	require.NoError(t, err)

	nodes, err := doc.QuerySelectorAll("div.post")
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Equal(t, "one", TextContent(nodes[0]))
	assert.Equal(t, "two", TextContent(nodes[1]))

	_, err = doc.QuerySelectorAll("div[")
	assert.ErrorIs(t, err, ErrInvalidSelector)
}

func TestClassHelpers(t *testing.T) {
	n := NewElement("span")
	assert.False(t, HasClass(n, "a"))

	AddClass(n, "a")
	AddClass(n, "b")
	AddClass(n, "a")
	assert.Equal(t, "a b", Attr(n, "class"))
	assert.True(t, HasClass(n, "b"))

	SetClass(n, "c")
	assert.Equal(t, []string{"c"}, ClassList(n))
}

func TestDispatchBubbles(t *testing.T) {
	doc, err := ParseString(`<div id="outer"><span id="inner">x</span></div>`)
	require.NoError(t, err)
	outer := doc.ElementByID("outer")
	inner := doc.ElementByID("inner")

	var seen []string
	doc.SetHandler(outer, MouseOver, func(e Event) {
		assert.Equal(t, inner, e.Target)
		seen = append(seen, "outer")
	})
	doc.SetHandler(inner, MouseOver, func(e Event) {
		seen = append(seen, "inner")
	})

	doc.Dispatch(inner, MouseOver)
	assert.Equal(t, []string{"inner", "outer"}, seen)

	doc.SetHandler(inner, MouseOver, nil)
	assert.False(t, doc.HasHandlers(inner))
	assert.True(t, doc.HasHandlers(outer))
}

func TestDispatchSurvivesRemovalOfTarget(t *testing.T) {
	doc, err := ParseString(`<div id="outer"><span id="inner">x</span></div>`)
	require.NoError(t, err)
	outer := doc.ElementByID("outer")
	inner := doc.ElementByID("inner")

	outerCalled := false
	doc.SetHandler(inner, MouseOut, func(Event) { Remove(inner) })
	doc.SetHandler(outer, MouseOut, func(Event) { outerCalled = true })

	doc.Dispatch(inner, MouseOut)
	assert.True(t, outerCalled)
	assert.Nil(t, doc.ElementByID("inner"))
}

func TestSetTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	doc, err := ParseString(`<p>x</p>`, WithClock(clock))
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	doc.SetTimeout(50*time.Millisecond, func() { ran <- struct{}{} })

	clock.Advance(49 * time.Millisecond)
	select {
	case <-ran:
		t.Fatal("callback ran early")
	default:
	}

	clock.Advance(time.Millisecond)
	doc.Wait()
	assert.Len(t, ran, 1)
}

func TestReady(t *testing.T) {
	doc, err := ParseString(`<p>x</p>`)
	require.NoError(t, err)

	var calls []int
	doc.OnReady(func() { calls = append(calls, 1) })
	doc.OnReady(func() { calls = append(calls, 2) })
	assert.Empty(t, calls)

	doc.Ready()
	doc.Ready()
	assert.Equal(t, []int{1, 2}, calls)

	doc.OnReady(func() { calls = append(calls, 3) })
	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestStyleSheets(t *testing.T) {
	doc, err := ParseString(`<html><head><style>
span.nastt_acronym { cursor: help; }
@media screen { #nastt_tooltip { color: red; } }
.a, .b { color: blue }
</style></head><body><p>x</p></body></html>`)
	require.NoError(t, err)

	sheets := doc.StyleSheets()
	require.Len(t, sheets, 1)

	assert.True(t, doc.HasRule("span.nastt_acronym"))
	assert.True(t, doc.HasRule("#nastt_tooltip"))
	assert.True(t, doc.HasRule(".a"))
	assert.True(t, doc.HasRule(".b"))
	assert.False(t, doc.HasRule(".nastt_acronym"))

	doc.AppendStyleSheet(".nastt_acronym { cursor: help }")
	assert.True(t, doc.HasRule(".nastt_acronym"))
	assert.Len(t, doc.StyleSheets(), 2)
	assert.Equal(t, doc.Body(), doc.StyleSheets()[1].Node.Parent)
}
