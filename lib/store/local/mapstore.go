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

package local

import (
	"sync"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/store"
)

// New returns an in-memory store. Pipelines apply on Exec, not as codes are
// queued.
func New() store.Client {
	return &local{
		store: make(map[string][]codes.Definition),
		mut:   &sync.RWMutex{},
	}
}

type local struct {
	store map[string][]codes.Definition
	mut   *sync.RWMutex
}

func (l *local) Ready() bool {
	return true
}

func (l *local) NewGetPipeline(size int) store.GetPipeline {
	return &getPipeline{local: l, keys: make([]string, 0, size)}
}

func (l *local) NewSetPipeline(size int) store.SetPipeline {
	return &setPipeline{local: l, values: make(map[string][]codes.Definition, size)}
}

type getPipeline struct {
	*local
	keys []string
}

func (p *getPipeline) Get(code string) {
	p.keys = append(p.keys, code)
}

func (p *getPipeline) ExecGet(onResult func(string, []codes.Definition) error) error {
	p.mut.RLock()
	found := make([][]codes.Definition, len(p.keys))
	for i, key := range p.keys {
		found[i] = p.store[key]
	}
	p.mut.RUnlock()

	for i, key := range p.keys {
		if err := onResult(key, found[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *getPipeline) Size() int {
	return len(p.keys)
}

type setPipeline struct {
	*local
	values map[string][]codes.Definition
}

func (p *setPipeline) Set(code string, defs []codes.Definition) {
	p.values[code] = append(p.values[code], defs...)
}

func (p *setPipeline) ExecSet() error {
	p.mut.Lock()
	defer p.mut.Unlock()
	for code, defs := range p.values {
		p.store[code] = append(p.store[code], defs...)
	}
	return nil
}

func (p *setPipeline) Size() int {
	return len(p.values)
}
