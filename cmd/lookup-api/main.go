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
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/dict"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/store"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/store/local"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/store/remote"
)

// config structure
type lookupAPIConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Server         struct {
		HttpPort       int      `mapstructure:"http_port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	}
	Store         store.Type
	PipelineSize  int `mapstructure:"pipeline_size"`
	MaxCodes      int `mapstructure:"max_codes"`
	Redis         remote.RedisConfig
	Elasticsearch remote.ElasticsearchConfig
	Dictionaries  []dict.DictConfig
	Blocklist     string
}

var config lookupAPIConfig

func initConfig() {
	err := lib.InitializeConfig("./config/lookup-api.yml", map[string]interface{}{
		"log_level":     "info",
		"store":         store.Local,
		"pipeline_size": 10000,
		"max_codes":     500,
		"server": map[string]interface{}{
			"http_port": 8081,
		},
		"redis": map[string]interface{}{
			"host":       "localhost",
			"port":       6379,
			"key_prefix": "code:",
		},
		"elasticsearch": map[string]interface{}{
			"host":  "localhost",
			"port":  9200,
			"index": "codes",
		},
		"dictionaries": []map[string]interface{}{
			{
				"name":   "airports",
				"path":   "./dictionaries/airports.tsv",
				"format": dict.TsvDictionaryFormat,
			},
		},
		"blocklist": "",
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func newStore() (store.Client, error) {
	switch config.Store {
	case store.Local:
		return local.New(), nil
	case store.Redis:
		return remote.NewRedisClient(config.Redis), nil
	case store.Elasticsearch:
		return remote.NewElasticsearchClient(config.Elasticsearch)
	default:
		return nil, fmt.Errorf("invalid store type %q", config.Store)
	}
}

func importDictionaries(client store.Client) error {
	for _, d := range config.Dictionaries {
		f, err := os.Open(d.Path)
		if err != nil {
			return err
		}
		_, err = dict.Import(f, d, client, config.PipelineSize)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("dictionary %s: %w", d.Name, err)
		}
	}
	return nil
}

func main() {
	initConfig()
	ctx, cancel := lib.InterruptContext(context.Background())
	defer cancel()

	client, err := newStore()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	for !client.Ready() {
		log.Info().Str("store", string(config.Store)).Msg("store is not ready, waiting...")
		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}

	if err := importDictionaries(client); err != nil {
		log.Fatal().Err(err).Send()
	}

	c := controller{store: client, maxCodes: config.MaxCodes}
	if config.Blocklist != "" {
		if c.blocklist, err = blocklist.Load(config.Blocklist); err != nil {
			log.Fatal().Err(err).Send()
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Server.HttpPort),
		Handler: newRouter(server{controller: c}, config.Server.AllowedOrigins),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("lookup api listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Send()
	}
}
