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

// Package lookup resolves candidate codes against the external lookup service.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
)

// CodesParameter is the query parameter carrying the comma separated codes.
const CodesParameter = "codes"

const maxResponseBytes = 10 << 20

var (
	ErrNoCodes      = errors.New("no codes to look up")
	ErrRequest      = errors.New("lookup request failed")
	ErrStatus       = errors.New("lookup service returned a non-success status")
	ErrMalformed    = errors.New("malformed lookup response")
	ErrServiceError = errors.New("lookup service reported an error")
	ErrEmpty        = errors.New("empty lookup response")
	ErrPanic        = errors.New("lookup client panicked")
)

// Client fetches definitions for a batch of candidate codes.
type Client interface {
	Lookup(ctx context.Context, candidates []string) (codes.Results, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, candidates []string) (codes.Results, error)

func (f ClientFunc) Lookup(ctx context.Context, candidates []string) (codes.Results, error) {
	return f(ctx, candidates)
}

func NewHttpClient(uri string) Client {
	return NewHttpClientWith(uri, http.DefaultClient)
}

func NewHttpClientWith(uri string, httpClient lib.HttpClient) Client {
	return &httpLookup{
		Url:        uri,
		httpClient: httpClient,
	}
}

type httpLookup struct {
	Url        string
	httpClient lib.HttpClient
}

// urlWithCodes appends the codes parameter to the configured url, keeping any
// query parameters it already has. Commas are left unescaped.
func (l *httpLookup) urlWithCodes(candidates []string) (string, error) {
	u, err := url.Parse(l.Url)
	if err != nil {
		return "", err
	}

	escaped := make([]string, len(candidates))
	for i, code := range candidates {
		escaped[i] = url.QueryEscape(code)
	}
	param := CodesParameter + "=" + strings.Join(escaped, ",")

	if u.RawQuery == "" {
		u.RawQuery = param
	} else {
		u.RawQuery += "&" + param
	}
	return u.String(), nil
}

func (l *httpLookup) Lookup(ctx context.Context, candidates []string) (codes.Results, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCodes
	}

	u, err := l.urlWithCodes(candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	b, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	return ParseResponse(b)
}

// ParseResponse decodes a lookup response body. The body is either an object
// with a truthy "error" member, or an object mapping codes to arrays of
// definitions. Codes with no definitions are dropped.
func ParseResponse(b []byte) (codes.Results, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil, ErrEmpty
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if errVal, ok := raw["error"]; ok && truthy(errVal) {
		return nil, fmt.Errorf("%w: %s", ErrServiceError, errVal)
	}

	results := make(codes.Results, len(raw))
	for code, val := range raw {
		if code == "error" {
			continue
		}
		var defs []codes.Definition
		if err := json.Unmarshal(val, &defs); err != nil {
			return nil, fmt.Errorf("%w: code %q: %v", ErrMalformed, code, err)
		}
		if len(defs) > 0 {
			results[code] = defs
		}
	}

	if len(results) == 0 {
		return nil, ErrEmpty
	}
	return results, nil
}

func truthy(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}

// Dispatch sends one lookup for codes. Any failure, including a panicking
// client, comes back as an error and is logged at debug level only.
func Dispatch(ctx context.Context, client Client, candidates []string) (results codes.Results, err error) {
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
		if err != nil {
			log.Debug().Err(err).Int("codes", len(candidates)).Msg("lookup abandoned")
		}
	}()
	return client.Lookup(ctx, candidates)
}
