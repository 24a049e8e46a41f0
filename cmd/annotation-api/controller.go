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

package main

import (
	"context"
	"io"

	"github.com/jonboulle/clockwork"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/lookup"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/markup"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/pipeline"
)

type controller struct {
	client   lookup.Client
	defaults pipeline.Options
}

// Annotate runs one pipeline over the html read from r. Deferred work, such
// as default styles, is flushed before the document is rendered so the
// response is complete.
func (c controller) Annotate(ctx context.Context, r io.Reader, selector, renderer string) ([]byte, pipeline.Report, error) {
	clock := clockwork.NewFakeClock()
	doc, err := dom.Parse(r, dom.WithClock(clock))
	if err != nil {
		return nil, pipeline.Report{}, err
	}

	opts := c.defaults
	if selector != "" {
		opts.CSSSelector = selector
	}
	if renderer != "" {
		opts.Renderer = renderer
	}

	p, err := pipeline.New(doc, c.client, opts)
	if err != nil {
		return nil, pipeline.Report{}, err
	}

	report := p.Run(ctx)
	clock.Advance(p.Options().StyleDelay)
	doc.Wait()

	return []byte(doc.String()), report, nil
}

func (c controller) Strip(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	names := c.defaults.Names.Merge(markup.DefaultNames())
	return []byte(markup.StripTooltipTags(string(b), names)), nil
}
