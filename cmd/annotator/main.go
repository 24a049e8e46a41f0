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
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dom"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/lookup"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/pipeline"
)

// config structure
type annotatorConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Input          string
	Output         string
	Selector       string
	Renderer       string
	Pattern        string
	Lookup         struct {
		URI     string        `mapstructure:"uri"`
		Timeout time.Duration `mapstructure:"timeout"`
	}
	Annotation pipeline.Options `mapstructure:"annotation"`
}

var config annotatorConfig

func initConfig() {
	pflag.StringP("input", "i", "-", "HTML file to annotate, - for stdin.")
	pflag.StringP("output", "o", "-", "Where to write the annotated HTML, - for stdout.")
	pflag.String("selector", "", "CSS selector of the elements to annotate.")
	pflag.String("renderer", "", "tooltip, inline or off.")

	err := lib.InitializeConfig("./config/annotator.yml", map[string]interface{}{
		"log_level": "warn",
		"pattern":   "",
		"lookup": map[string]interface{}{
			"uri":     "http://localhost:8081/codes",
			"timeout": "10s",
		},
		"annotation": map[string]interface{}{
			"css_selector": "body",
			"renderer":     "tooltip",
		},
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func options() (pipeline.Options, error) {
	opts := config.Annotation
	opts.AjaxURI = config.Lookup.URI
	if config.Selector != "" {
		opts.CSSSelector = config.Selector
	}
	if config.Renderer != "" {
		opts.Renderer = config.Renderer
	}
	opts.Pattern = codes.IataIcaoPattern
	if config.Pattern != "" {
		pattern, err := regexp.Compile(config.Pattern)
		if err != nil {
			return opts, err
		}
		opts.Pattern = pattern
	}
	return opts, nil
}

// annotate reads a document from r, annotates it once it is ready and
// writes it to w after every deferred callback has run.
func annotate(ctx context.Context, r io.Reader, w io.Writer, client lookup.Client, opts pipeline.Options) (pipeline.Report, error) {
	doc, err := dom.Parse(r)
	if err != nil {
		return pipeline.Report{}, err
	}

	p, err := pipeline.New(doc, client, opts)
	if err != nil {
		return pipeline.Report{}, err
	}

	var report pipeline.Report
	doc.OnReady(func() { report = p.Run(ctx) })
	doc.Ready()
	doc.Wait()

	return report, doc.Render(w)
}

func main() {
	initConfig()
	ctx, cancel := lib.InterruptContext(context.Background())
	defer cancel()

	opts, err := options()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid pattern")
	}

	in := os.Stdin
	if config.Input != "-" {
		if in, err = os.Open(config.Input); err != nil {
			log.Fatal().Err(err).Send()
		}
		defer in.Close()
	}

	out := os.Stdout
	if config.Output != "-" {
		if out, err = os.Create(config.Output); err != nil {
			log.Fatal().Err(err).Send()
		}
		defer out.Close()
	}

	client := lookup.NewHttpClientWith(config.Lookup.URI, &http.Client{Timeout: config.Lookup.Timeout})
	report, err := annotate(ctx, in, out, client, opts)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	log.Info().
		Int("markers", report.Markers).
		Strs("codes", report.Codes).
		Int("decorated", report.Decorated).
		AnErr("lookup", report.Err).
		Msg("annotated")
}
