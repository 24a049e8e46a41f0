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

package dom

import (
	"math"

	"golang.org/x/net/html"
)

// Rect is a bounding box in viewport coordinates.
type Rect struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Layout answers geometry questions about rendered nodes.
type Layout interface {
	BoundingClientRect(n *html.Node) Rect
	ClientWidth() float64
}

// NoLayout is used for headless documents: every box is empty and the
// viewport is unbounded, so nothing is ever off screen.
type NoLayout struct{}

func (NoLayout) BoundingClientRect(*html.Node) Rect {
	return Rect{}
}

func (NoLayout) ClientWidth() float64 {
	return math.Inf(1)
}

// FixedLayout measures nodes with Box against a viewport Width wide.
type FixedLayout struct {
	Width float64
	Box   func(n *html.Node) Rect
}

func (l FixedLayout) BoundingClientRect(n *html.Node) Rect {
	if l.Box == nil {
		return Rect{}
	}
	return l.Box(n)
}

func (l FixedLayout) ClientWidth() float64 {
	return l.Width
}
