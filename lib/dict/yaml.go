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

package dict

import (
	"io"
	"io/ioutil"
	"sort"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gopkg.in/yaml.v2"
)

func NewYamlReader() Reader {
	return yamlReader{}
}

type yamlReader struct{}

// yamlDefinition is either a plain string or a mapping with name and
// country.
type yamlDefinition struct {
	codes.Definition
}

func (d *yamlDefinition) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var text string
	if err := unmarshal(&text); err == nil {
		d.Definition = codes.Plain(text)
		return nil
	}

	var record struct {
		Name      string `yaml:"name"`
		Country   string `yaml:"country"`
		Kind      string `yaml:"kind"`
		IsCurrent *bool  `yaml:"current"`
	}
	if err := unmarshal(&record); err != nil {
		return err
	}
	d.Definition = codes.Record(record.Name, record.Country).WithKind(record.Kind)
	if record.IsCurrent != nil {
		d.Definition = d.Definition.WithCurrent(*record.IsCurrent)
	}
	return nil
}

func (y yamlReader) Read(r io.Reader) (chan Entry, chan error) {
	entries := make(chan Entry)
	errors := make(chan error)
	go y.read(r, entries, errors)
	return entries, errors
}

func (y yamlReader) read(r io.Reader, entries chan Entry, errors chan error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		errors <- err
		return
	}

	var dictionary map[string][]yamlDefinition
	if err := yaml.Unmarshal(b, &dictionary); err != nil {
		errors <- err
		return
	}

	// maps have no order, sort so that loading is repeatable.
	keys := make([]string, 0, len(dictionary))
	for code := range dictionary {
		keys = append(keys, code)
	}
	sort.Strings(keys)

	for _, code := range keys {
		defs := make([]codes.Definition, len(dictionary[code]))
		for i, d := range dictionary[code] {
			defs[i] = d.Definition
		}
		entries <- Entry{Code: code, Definitions: defs}
	}
	errors <- nil
}
