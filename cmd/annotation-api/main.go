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
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/lookup"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/pipeline"
)

// config structure
type annotationAPIConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Server         struct {
		HttpPort int `mapstructure:"http_port"`
	}
	Lookup struct {
		URI     string        `mapstructure:"uri"`
		Timeout time.Duration `mapstructure:"timeout"`
	}
	// Pattern overrides the airline and airport code pattern.
	Pattern    string           `mapstructure:"pattern"`
	Annotation pipeline.Options `mapstructure:"annotation"`
}

var config annotationAPIConfig

func initConfig() {
	err := lib.InitializeConfig("./config/annotation-api.yml", map[string]interface{}{
		"log_level": "info",
		"server": map[string]interface{}{
			"http_port": 8080,
		},
		"lookup": map[string]interface{}{
			"uri":     "http://localhost:8081/codes",
			"timeout": "5s",
		},
		"pattern": "",
		"annotation": map[string]interface{}{
			"css_selector": "body",
			"renderer":     "tooltip",
			"style_delay":  "50ms",
		},
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func options() (pipeline.Options, error) {
	opts := config.Annotation
	opts.AjaxURI = config.Lookup.URI
	opts.Pattern = codes.IataIcaoPattern
	if config.Pattern != "" {
		pattern, err := regexp.Compile(config.Pattern)
		if err != nil {
			return opts, fmt.Errorf("pattern: %w", err)
		}
		opts.Pattern = pattern
	}
	return opts, nil
}

func main() {
	initConfig()
	ctx, cancel := lib.InterruptContext(context.Background())
	defer cancel()

	opts, err := options()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	c := controller{
		client:   lookup.NewHttpClientWith(config.Lookup.URI, &http.Client{Timeout: config.Lookup.Timeout}),
		defaults: opts,
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Server.HttpPort),
		Handler: newRouter(server{controller: c}),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Str("lookup", config.Lookup.URI).Msg("annotation api listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Send()
	}
}
