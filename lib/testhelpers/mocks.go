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

package testhelpers

import (
	"context"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
)

type HttpClient struct {
	mock.Mock
}

func (m *HttpClient) Do(req *http.Request) (*http.Response, error) {
	ret := m.Called(req)

	var resp *http.Response
	if rf, ok := ret.Get(0).(func(*http.Request) *http.Response); ok {
		resp = rf(req)
	} else if ret.Get(0) != nil {
		resp = ret.Get(0).(*http.Response)
	}
	return resp, ret.Error(1)
}

type LookupClient struct {
	mock.Mock
}

func (m *LookupClient) Lookup(ctx context.Context, candidates []string) (codes.Results, error) {
	ret := m.Called(ctx, candidates)

	var results codes.Results
	if ret.Get(0) != nil {
		results = ret.Get(0).(codes.Results)
	}
	return results, ret.Error(1)
}

// Response builds an http response with the given status and body.
func Response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       ioutil.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}
