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

package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/markup"
)

func TestApplyDefaultsIfNeeded(t *testing.T) {
	tests := []struct {
		name      string
		head      string
		injected  []string
		untouched []string
	}{
		{
			name: "nothing styled",
			injected: []string{
				"span.nastt_acronym", "span#nastt_tooltip",
				"span#nastt_tooltip.nastt_offtopedge", "span#nastt_tooltip.nastt_offrightedge",
			},
		},
		{
			name:      "page styles the marker",
			head:      `<style>.nastt_acronym { color: red }</style>`,
			injected:  []string{"span#nastt_tooltip", "span#nastt_tooltip.nastt_offtopedge", "span#nastt_tooltip.nastt_offrightedge"},
			untouched: []string{"span.nastt_acronym"},
		},
		{
			name: "page styles everything with span variants",
			head: `<style>span.nastt_acronym {} span#nastt_tooltip {} ` +
				`span.nastt_offtopedge {} .nastt_offrightedge {}</style>`,
			untouched: []string{"span#nastt_tooltip.nastt_offtopedge", "span#nastt_tooltip.nastt_offrightedge"},
		},
	}
	for _, tt := range tests {
		t.Log(tt.name)
		doc, err := dom.ParseString(`<html><head>` + tt.head + `</head><body><p>x</p></body></html>`)
		require.NoError(t, err)
		before := len(doc.StyleSheets())

		css := New(doc, markup.DefaultNames(), DefaultRules()).ApplyDefaultsIfNeeded()

		for _, selector := range tt.injected {
			assert.True(t, doc.HasRule(selector), "%s: %s", tt.name, selector)
			assert.Contains(t, css, selector+" {", tt.name)
		}
		for _, selector := range tt.untouched {
			assert.False(t, doc.HasRule(selector), "%s: %s", tt.name, selector)
		}
		if len(tt.injected) == 0 {
			assert.Empty(t, css, tt.name)
			assert.Len(t, doc.StyleSheets(), before, tt.name)
		} else {
			assert.Len(t, doc.StyleSheets(), before+1, tt.name)
		}
	}
}

func TestApplyDefaultsIsIdempotent(t *testing.T) {
	doc, err := dom.ParseString(`<p>x</p>`)
	require.NoError(t, err)
	injector := New(doc, markup.DefaultNames(), DefaultRules())

	assert.NotEmpty(t, injector.ApplyDefaultsIfNeeded())
	assert.Empty(t, injector.ApplyDefaultsIfNeeded())
	assert.Len(t, doc.StyleSheets(), 1)
}

func TestCustomNames(t *testing.T) {
	doc, err := dom.ParseString(`<p>x</p>`)
	require.NoError(t, err)
	names := markup.Names{WrapperClass: "code", TooltipID: "tip"}.Merge(markup.DefaultNames())

	css := New(doc, names, DefaultRules()).ApplyDefaultsIfNeeded()
	assert.Contains(t, css, "span.code { position:relative;")
	assert.Contains(t, css, "span#tip.nastt_offrightedge { left:auto; right:0; }")
}
