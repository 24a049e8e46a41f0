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

// Package dict reads code dictionaries into definitions.
package dict

import (
	"fmt"
	"io"

	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
)

type DictConfig struct {
	Name   string
	Path   string
	Format Format
}

// Entry is every definition a dictionary gives one code.
type Entry struct {
	Code        string
	Definitions []codes.Definition
}

type Format string

const (
	// TsvDictionaryFormat rows are code, name, country and optionally kind
	// and current, or just code and a plain text explanation.
	TsvDictionaryFormat Format = "tsv"
	// YamlDictionaryFormat maps codes to lists of definitions.
	YamlDictionaryFormat Format = "yaml"
	// NativeDictionaryFormat is one json Entry per line, as served by the
	// lookup service.
	NativeDictionaryFormat Format = "native"
)

type Reader interface {
	Read(r io.Reader) (chan Entry, chan error)
}

func Read(format Format, r io.Reader) (chan Entry, chan error, error) {
	switch format {
	case TsvDictionaryFormat:
		entries, errors := NewTsvReader().Read(r)
		return entries, errors, nil
	case YamlDictionaryFormat:
		entries, errors := NewYamlReader().Read(r)
		return entries, errors, nil
	case NativeDictionaryFormat:
		entries, errors := NewNativeReader().Read(r)
		return entries, errors, nil
	default:
		return nil, nil, fmt.Errorf("unsupported dictionary format %v", format)
	}
}

// ReadWithCallback reads the dictionary according to its format and executes onEntry for each Entry, with the
// code normalized. The onEOF callback is executed when there are no more entries.
func ReadWithCallback(r io.Reader, format Format, onEntry func(entry Entry) error, onEOF func() error) error {
	entries, errors, err := Read(format, r)
	if err != nil {
		return err
	}

Listen:
	for {
		select {
		case err := <-errors:
			if err != nil {
				return err
			}
			break Listen
		case entry := <-entries:
			entry.Code = lib.NormalizeCode(entry.Code)
			if entry.Code == "" || len(entry.Definitions) == 0 {
				continue
			}
			if err := onEntry(entry); err != nil {
				return err
			}
		}
	}

	if onEOF != nil {
		return onEOF()
	}

	return nil
}
