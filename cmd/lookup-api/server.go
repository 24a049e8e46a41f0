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
	"errors"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/google/uuid"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/lookup"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

type HttpError struct {
	code int
	error
}

func (e HttpError) Error() string {
	return e.error.Error()
}

func (e HttpError) Unwrap() error {
	return e.error
}

func NewHttpError(code int, err error) HttpError {
	return HttpError{
		code:  code,
		error: err,
	}
}

type server struct {
	controller controller
}

func newRouter(s server, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithFormatter(lib.JsonLogFormatter), gin.Recovery(), requestID, corsFor(allowedOrigins))
	s.RegisterRoutes(r)
	return r
}

func (s server) RegisterRoutes(r *gin.Engine) {
	r.GET("/codes", s.Lookup)
	r.GET("/healthz", s.Health)
}

// Lookup answers ?codes=A,B with the definitions of every code found. Codes
// without definitions are left out; nothing found is an empty object.
func (s server) Lookup(c *gin.Context) {
	raw := strings.TrimSpace(c.Query(lookup.CodesParameter))
	if raw == "" {
		handleError(c, NewHttpError(400, errors.New("the codes query parameter is required")))
		return
	}

	results, err := s.controller.Lookup(strings.Split(raw, ","))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(200, results)
}

func (s server) Health(c *gin.Context) {
	if !s.controller.Ready() {
		handleError(c, NewHttpError(503, errors.New("store is not ready")))
		return
	}
	c.JSON(200, map[string]interface{}{"status": "ok"})
}

// requestID tags each request with the caller's X-Request-ID when it is a
// uuid, or a new one.
func requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if !strfmt.IsUUID(id) {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

// corsFor lets pages on allowedOrigins call the service from the browser. No
// origins, or "*", allows every origin.
func corsFor(allowedOrigins []string) gin.HandlerFunc {
	conf := cors.DefaultConfig()
	conf.AllowMethods = []string{"GET", "OPTIONS"}
	conf.ExposeHeaders = []string{requestIDHeader}
	if len(allowedOrigins) == 0 || swag.ContainsStringsCI(allowedOrigins, "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = allowedOrigins
	}
	return cors.New(conf)
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		abort(c, 500, errors.New("abort called on nil error"))
		return
	}
	var e HttpError
	if errors.As(err, &e) {
		abort(c, e.code, e.error)
		return
	}
	abort(c, 500, err)
}

// abort responds with an "error" member, which lookup clients treat as a
// service error.
func abort(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, map[string]interface{}{
		"status": code,
		"error":  err.Error(),
	})
}
