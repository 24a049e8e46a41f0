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

import "golang.org/x/net/html"

type EventType string

const (
	MouseOver  EventType = "mouseover"
	MouseOut   EventType = "mouseout"
	TouchStart EventType = "touchstart"
	TouchEnd   EventType = "touchend"
)

type Event struct {
	Type          EventType
	Target        *html.Node
	CurrentTarget *html.Node
}

type Handler func(Event)

// SetHandler assigns the handler for one event type on n, replacing any
// handler assigned before. A nil handler clears it.
func (d *Document) SetHandler(n *html.Node, t EventType, h Handler) {
	d.handlersMu.Lock()
	defer d.handlersMu.Unlock()

	if h == nil {
		if hs, ok := d.handlers[n]; ok {
			delete(hs, t)
			if len(hs) == 0 {
				delete(d.handlers, n)
			}
		}
		return
	}
	hs, ok := d.handlers[n]
	if !ok {
		hs = make(map[EventType]Handler)
		d.handlers[n] = hs
	}
	hs[t] = h
}

func (d *Document) Handler(n *html.Node, t EventType) Handler {
	d.handlersMu.RLock()
	defer d.handlersMu.RUnlock()
	return d.handlers[n][t]
}

func (d *Document) HasHandlers(n *html.Node) bool {
	d.handlersMu.RLock()
	defer d.handlersMu.RUnlock()
	return len(d.handlers[n]) > 0
}

// Dispatch delivers an event of type t to target and then bubbles it up
// through the target's ancestors.
func (d *Document) Dispatch(target *html.Node, t EventType) {
	d.Do(func() {
		for n := target; n != nil; {
			parent := n.Parent
			if h := d.Handler(n, t); h != nil {
				h(Event{Type: t, Target: target, CurrentTarget: n})
			}
			n = parent
		}
	})
}
