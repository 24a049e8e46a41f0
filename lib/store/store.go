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

// Package store holds the definitions served by the lookup service.
package store

import (
	"fmt"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
)

type Type string

const (
	Local         Type = "local"
	Redis         Type = "redis"
	Elasticsearch Type = "elasticsearch"
)

type Client interface {
	NewGetPipeline(size int) GetPipeline
	NewSetPipeline(size int) SetPipeline
	Ready() bool
}

type Pipeline interface {
	Size() int
}

// GetPipeline batches lookups. ExecGet calls onResult once per queued code,
// with nil definitions for codes that are not stored.
type GetPipeline interface {
	Get(code string)
	ExecGet(onResult func(code string, defs []codes.Definition) error) error
	Pipeline
}

type SetPipeline interface {
	Set(code string, defs []codes.Definition)
	ExecSet() error
	Pipeline
}

// Find looks every code up in one pipeline and returns the codes that have
// definitions.
func Find(client Client, candidates []string) (codes.Results, error) {
	pipe := client.NewGetPipeline(len(candidates))
	for _, code := range candidates {
		pipe.Get(code)
	}

	results := make(codes.Results, len(candidates))
	err := pipe.ExecGet(func(code string, defs []codes.Definition) error {
		if len(defs) > 0 {
			results[code] = defs
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("lookup of %d codes: %w", len(candidates), err)
	}
	return results, nil
}
