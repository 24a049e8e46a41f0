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

package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/codes"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/testhelpers"
)

type lookupSuite struct {
	suite.Suite
}

func TestLookupSuite(t *testing.T) {
	suite.Run(t, new(lookupSuite))
}

func (s *lookupSuite) TestUrlWithCodes() {
	tests := []struct {
		name     string
		url      string
		codes    []string
		expected string
	}{
		{
			name:     "single code",
			url:      "https://example.com/codes.php",
			codes:    []string{"F9"},
			expected: "https://example.com/codes.php?codes=F9",
		},
		{
			name:     "codes are comma joined",
			url:      "https://example.com/codes.php",
			codes:    []string{"F9", "LHR", "KDEN"},
			expected: "https://example.com/codes.php?codes=F9,LHR,KDEN",
		},
		{
			name:     "existing query kept",
			url:      "https://example.com/lookup?lang=en",
			codes:    []string{"BA"},
			expected: "https://example.com/lookup?lang=en&codes=BA",
		},
		{
			name:     "codes are url encoded",
			url:      "/lookup",
			codes:    []string{"A&B"},
			expected: "/lookup?codes=A%26B",
		},
	}
	for _, tt := range tests {
		s.T().Log(tt.name)
		l := httpLookup{Url: tt.url}
		actual, err := l.urlWithCodes(tt.codes)
		s.NoError(err)
		s.Equal(tt.expected, actual)
	}
}

func (s *lookupSuite) TestLookup() {
	mockHttpClient := &testhelpers.HttpClient{}
	mockHttpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet && req.URL.Query().Get(CodesParameter) == "F9,LHR"
	})).Return(testhelpers.Response(http.StatusOK,
		`{"F9": [{"name": "Frontier Airlines", "country": "United States"}], "LHR": ["London Heathrow"]}`), nil).Once()

	client := NewHttpClientWith("https://example.com/codes", mockHttpClient)
	results, err := client.Lookup(context.Background(), []string{"F9", "LHR"})

	s.Require().NoError(err)
	s.Equal(codes.Results{
		"F9":  {codes.Record("Frontier Airlines", "United States")},
		"LHR": {codes.Plain("London Heathrow")},
	}, results)
	mockHttpClient.AssertExpectations(s.T())
}

func (s *lookupSuite) TestLookupFailures() {
	tests := []struct {
		name    string
		resp    *http.Response
		respErr error
		wantErr error
	}{
		{name: "transport error", respErr: errors.New("connection refused"), wantErr: ErrRequest},
		{name: "not found", resp: testhelpers.Response(http.StatusNotFound, `{}`), wantErr: ErrStatus},
		{name: "server error", resp: testhelpers.Response(http.StatusInternalServerError, `oops`), wantErr: ErrStatus},
		{name: "not json", resp: testhelpers.Response(http.StatusOK, `<html>oops</html>`), wantErr: ErrMalformed},
		{name: "array body", resp: testhelpers.Response(http.StatusOK, `["F9"]`), wantErr: ErrMalformed},
		{name: "definitions not an array", resp: testhelpers.Response(http.StatusOK, `{"F9": "Frontier"}`), wantErr: ErrMalformed},
		{name: "error flagged", resp: testhelpers.Response(http.StatusOK, `{"error": "database down"}`), wantErr: ErrServiceError},
		{name: "empty body", resp: testhelpers.Response(http.StatusOK, ``), wantErr: ErrEmpty},
		{name: "null body", resp: testhelpers.Response(http.StatusOK, `null`), wantErr: ErrEmpty},
		{name: "empty object", resp: testhelpers.Response(http.StatusOK, `{}`), wantErr: ErrEmpty},
		{name: "only empty entries", resp: testhelpers.Response(http.StatusOK, `{"F9": []}`), wantErr: ErrEmpty},
	}
	for _, tt := range tests {
		s.T().Log(tt.name)
		mockHttpClient := &testhelpers.HttpClient{}
		mockHttpClient.On("Do", mock.AnythingOfType("*http.Request")).Return(tt.resp, tt.respErr)

		results, err := NewHttpClientWith("https://example.com/codes", mockHttpClient).
			Lookup(context.Background(), []string{"F9"})
		s.Nil(results, tt.name)
		s.ErrorIs(err, tt.wantErr, tt.name)
	}
}

func (s *lookupSuite) TestLookupWithoutCodes() {
	mockHttpClient := &testhelpers.HttpClient{}
	_, err := NewHttpClientWith("https://example.com/codes", mockHttpClient).Lookup(context.Background(), nil)
	s.ErrorIs(err, ErrNoCodes)
	mockHttpClient.AssertNotCalled(s.T(), "Do", mock.Anything)
}

func (s *lookupSuite) TestParseResponseFalsyError() {
	results, err := ParseResponse([]byte(`{"error": false, "BA": ["British Airways"]}`))
	s.NoError(err)
	s.Equal(codes.Results{"BA": {codes.Plain("British Airways")}}, results)
}

func (s *lookupSuite) TestLookupAgainstServer() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("BA,F9", r.URL.Query().Get(CodesParameter))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"BA": ["British Airways"]}`))
	}))
	defer server.Close()

	results, err := NewHttpClient(server.URL).Lookup(context.Background(), []string{"BA", "F9"})
	s.Require().NoError(err)
	s.Equal([]codes.Definition{codes.Plain("British Airways")}, results.Get("BA"))
	s.Nil(results.Get("F9"))
}

func (s *lookupSuite) TestDispatchRecoversPanics() {
	client := ClientFunc(func(context.Context, []string) (codes.Results, error) {
		panic("boom")
	})
	results, err := Dispatch(context.Background(), client, []string{"BA"})
	s.Nil(results)
	s.ErrorIs(err, ErrPanic)
}

func (s *lookupSuite) TestDispatchCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	results, err := Dispatch(ctx, NewHttpClient(server.URL), []string{"BA"})
	s.Nil(results)
	s.ErrorIs(err, ErrRequest)
}
