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

// Package codes holds the data model shared by the annotation pipeline: the
// pattern codes are matched with and the definitions a lookup resolves them to.
package codes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IataIcaoPattern matches, between word breaks:
//
//   - IATA operator: 2 characters, at most one of them a digit
//   - IATA airport: 3 letters
//   - ICAO operator: 3 letters
//   - ICAO airfield: 4 letters
//
// Codes are assumed to be uppercase.
var IataIcaoPattern = regexp.MustCompile(`\b[A-Z]{2,4}\b|\b[0-9][A-Z]\b|\b[A-Z][0-9]\b`)

var ErrInvalidDefinition = errors.New("definition must be a string or an object")

// Definition explains a code. It is either plain text or a structured record
// with a name and country and optionally a kind and current status.
type Definition struct {
	Text string

	Name      string
	Country   string
	Kind      string
	IsCurrent *bool

	structured bool
}

func Plain(text string) Definition {
	return Definition{Text: text}
}

func Record(name, country string) Definition {
	return Definition{Name: name, Country: country, structured: true}
}

func (d Definition) WithKind(kind string) Definition {
	d.Kind = kind
	return d
}

func (d Definition) WithCurrent(current bool) Definition {
	d.IsCurrent = &current
	return d
}

func (d Definition) IsStructured() bool {
	return d.structured
}

// Complete reports whether a structured definition has both of its required
// fields. Incomplete records are skipped when rendering.
func (d Definition) Complete() bool {
	return d.structured && d.Name != "" && d.Country != ""
}

type record struct {
	Name      string          `json:"name,omitempty"`
	Country   string          `json:"country,omitempty"`
	Kind      string          `json:"kind,omitempty"`
	IsCurrent json.RawMessage `json:"isCurrent,omitempty"`
}

func (d *Definition) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrInvalidDefinition
	}
	switch b[0] {
	case '"':
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		*d = Plain(text)
		return nil
	case '{':
		var r record
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		*d = Record(r.Name, r.Country).WithKind(r.Kind)
		if len(r.IsCurrent) > 0 {
			current := parseCurrent(r.IsCurrent)
			d.IsCurrent = &current
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDefinition, b)
	}
}

func (d Definition) MarshalJSON() ([]byte, error) {
	if !d.structured {
		return json.Marshal(d.Text)
	}
	r := record{Name: d.Name, Country: d.Country, Kind: d.Kind}
	if d.IsCurrent != nil {
		r.IsCurrent = json.RawMessage(strconv.FormatBool(*d.IsCurrent))
	}
	return json.Marshal(r)
}

// parseCurrent treats true, 1 and "1" as current. Anything else present,
// null included, means not current.
func parseCurrent(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val == 1
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return err == nil && f == 1
	default:
		return false
	}
}

// Results maps a code to the definitions found for it.
type Results map[string][]Definition

// Get returns the definitions for code, or nil when there are none.
func (r Results) Get(code string) []Definition {
	defs := r[code]
	if len(defs) == 0 {
		return nil
	}
	return defs
}

// Displayable reports whether at least one of defs would be rendered.
func Displayable(defs []Definition) bool {
	return len(Displayed(defs)) > 0
}

// Displayed returns the definitions that get rendered: the first definition
// decides whether the entry is plain text or name/country records, and
// incomplete records are skipped.
func Displayed(defs []Definition) []Definition {
	if len(defs) == 0 {
		return nil
	}
	var shown []Definition
	structured := defs[0].IsStructured()
	for _, d := range defs {
		switch {
		case !structured && !d.IsStructured():
			shown = append(shown, d)
		case structured && d.Complete():
			shown = append(shown, d)
		}
	}
	return shown
}

// Explain builds the inline explanation for defs, e.g.
// " (Frontier Airlines, United States)", or "" when nothing is displayable.
func Explain(defs []Definition) string {
	shown := Displayed(defs)
	if len(shown) == 0 {
		return ""
	}
	parts := make([]string, len(shown))
	for i, d := range shown {
		if d.IsStructured() {
			parts[i] = d.Name + ", " + d.Country
		} else {
			parts[i] = d.Text
		}
	}
	return " (" + strings.Join(parts, "; ") + ")"
}
