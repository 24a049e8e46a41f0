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
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/code-tooltips/lib/pipeline"
)

const contentTypeHTML = "text/html"

type HttpError struct {
	code int
	error
}

func (e HttpError) Error() string {
	return e.error.Error()
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

func newRouter(s server) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithFormatter(lib.JsonLogFormatter), gin.Recovery())
	s.RegisterRoutes(r)
	return r
}

func (s server) RegisterRoutes(r *gin.Engine) {
	r.POST("/annotate", validateBody, s.Annotate)
	r.POST("/strip", validateBody, s.Strip)
}

// Annotate decorates the posted html. The selector and renderer query
// parameters override the configured ones. A failed lookup still answers 200
// with the undecorated document; the reason is given in X-Annotation-Error.
func (s server) Annotate(c *gin.Context) {
	if c.ContentType() != contentTypeHTML {
		handleError(c, NewHttpError(400, errors.New("invalid content type - must be text/html")))
		return
	}

	data, report, err := s.controller.Annotate(c.Request.Context(), c.Request.Body, c.Query("selector"), c.Query("renderer"))
	switch {
	case errors.Is(err, pipeline.ErrInvalidOptions), errors.Is(err, pipeline.ErrDisabled):
		handleError(c, NewHttpError(400, err))
		return
	case err != nil:
		handleError(c, err)
		return
	}

	c.Header("X-Annotation-Markers", strconv.Itoa(report.Markers))
	c.Header("X-Annotation-Codes", strings.Join(report.Codes, ","))
	c.Header("X-Annotation-Decorated", strconv.Itoa(report.Decorated))
	if report.Err != nil {
		c.Header("X-Annotation-Error", report.Err.Error())
	}
	c.Data(200, "text/html; charset=utf-8", data)
}

func (s server) Strip(c *gin.Context) {
	data, err := s.controller.Strip(c.Request.Body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(200, "text/html; charset=utf-8", data)
}

func validateBody(c *gin.Context) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		handleError(c, NewHttpError(400, errors.New("request body missing")))
		return
	}
	if c.Request.ContentLength < 0 {
		// chunked: peek one byte without losing it
		var one [1]byte
		n, err := c.Request.Body.Read(one[:])
		if n == 0 && err == io.EOF {
			handleError(c, NewHttpError(400, errors.New("request body missing")))
			return
		}
		c.Request.Body = readCloser{io.MultiReader(strings.NewReader(string(one[:n])), c.Request.Body), c.Request.Body}
	}
	c.Next()
}

type readCloser struct {
	io.Reader
	io.Closer
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		abort(c, 500, errors.New("abort called on nil error"))
		return
	}
	switch e := err.(type) {
	case HttpError:
		abort(c, e.code, e.error)
	default:
		abort(c, 500, e)
	}
}

func abort(c *gin.Context, code int, err error) {
	switch {
	case code <= 500:
		c.JSON(code, map[string]interface{}{
			"status":  code,
			"message": err.Error(),
		})
		c.Abort()
	default:
		_ = c.AbortWithError(code, err)
	}
}
