// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mule

import (
	"fmt"
	"log/slog"
	"strings"
)

// maxSynthesizedName caps names synthesized from logger messages so a long
// log expression does not blow up diagram labels.
const maxSynthesizedName = 30

// Component is one markup element found inside a flow body.
//
// Components form an owned tree: a parent exclusively owns its Children
// slice and traversal is always top-down, so there are no parent
// back-references. A Component is immutable once BuildComponents returns.
type Component struct {
	// ID is unique within the flow body, assigned sequentially ("c1", "c2").
	// The counter spans nested components.
	ID string

	// Name is the display name. Taken from doc:name or name when present,
	// otherwise synthesized from the type and contextual attributes
	// ("GET /orders", "Log: order received").
	Name string

	// Type is the human-readable category resolved via the descriptor
	// table, e.g. "HTTP Listener".
	Type string

	// TagName is the normalized raw tag name, e.g. "http:listener".
	TagName string

	// ConfigRef is the config-ref attribute when present.
	ConfigRef string

	// Doc is the doc:description attribute when present.
	Doc string

	// Icon is the display glyph for the resolved type.
	Icon string

	// Attributes holds every parsed attribute, keys verbatim.
	Attributes map[string]string

	// Children is non-nil only for container components. A container with
	// no children keeps an empty, allocated slice.
	Children []*Component

	// Depth is the number of enclosing containers (root components are 0).
	Depth int

	// Position is the sequential extraction index, 1-based.
	Position int
}

// IsContainer reports whether this component structurally holds children.
func (c *Component) IsContainer() bool {
	return c.Children != nil
}

// BuildComponents folds one flow body's tag events into an ordered forest
// of components. Malformed bodies yield a smaller forest, never an error;
// a panic during extraction is recovered and yields an empty forest.
func BuildComponents(body string) []*Component {
	return buildComponentsGuarded("", body)
}

// buildComponentsGuarded is BuildComponents with flow context for the
// failure log. The extractor calls this so a recovered panic names the flow
// it hit.
func buildComponentsGuarded(flowName, body string) (components []*Component) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("component extraction failed, keeping flow with no components",
				"flow", flowName, "panic", r)
			components = []*Component{}
		}
	}()
	return buildComponents(body)
}

// buildComponents walks the event stream with an explicit container stack.
func buildComponents(body string) []*Component {
	var (
		roots   []*Component
		stack   []*Component
		counter int
	)

	sc := NewScanner(body)
	for {
		ev, ok := sc.Next()
		if !ok {
			break
		}

		switch ev.Kind {
		case EventOpen, EventSelfClose:
			counter++
			c := newComponent(ev, counter, len(stack))

			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, c)
			} else {
				roots = append(roots, c)
			}

			// Self-closing containers can have no children, so only an
			// opening container tag pushes a frame.
			if c.IsContainer() && ev.Kind == EventOpen {
				stack = append(stack, c)
			}

		case EventClose:
			// Pop through the matching frame inclusive. A closer with no
			// matching open frame is ignored.
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].TagName == ev.Name {
					stack = stack[:i]
					break
				}
			}
		}
	}

	if roots == nil {
		roots = []*Component{}
	}
	return roots
}

// TotalCount returns the number of components in the forest, counting
// nested children recursively.
func TotalCount(components []*Component) int {
	n := 0
	for _, c := range components {
		n++
		n += TotalCount(c.Children)
	}
	return n
}

// newComponent builds a Component from an open or self-close event.
func newComponent(ev TagEvent, position, depth int) *Component {
	desc := Describe(ev.Name)
	c := &Component{
		ID:         fmt.Sprintf("c%d", position),
		Name:       displayName(ev.Name, ev.Attrs, desc, position),
		Type:       desc.Type,
		TagName:    ev.Name,
		ConfigRef:  ev.Attrs["config-ref"],
		Doc:        ev.Attrs["doc:description"],
		Icon:       desc.Icon,
		Attributes: ev.Attrs,
		Depth:      depth,
		Position:   position,
	}
	if desc.Container {
		c.Children = make([]*Component, 0)
	}
	return c
}

// displayName resolves the display name for a component.
//
// Priority: doc:name attribute, then name attribute, then type-specific
// synthesis (HTTP method+path, logger message/category, set-* target), then
// the descriptor's default label, then "<Type> <index>".
func displayName(tag string, attrs map[string]string, desc Descriptor, index int) string {
	if v := attrs["doc:name"]; v != "" {
		return v
	}
	if v := attrs["name"]; v != "" {
		return v
	}

	prefix, local := splitTag(tag)

	if prefix == "http" && (local == "listener" || local == "request") {
		if name := httpName(attrs); name != "" {
			return name
		}
	}

	if local == "logger" {
		if msg := attrs["message"]; msg != "" {
			return "Log: " + clipName(msg)
		}
		if cat := attrs["category"]; cat != "" {
			return "Log: " + clipName(cat)
		}
	}

	if strings.HasPrefix(local, "set-") {
		if target := setTarget(attrs); target != "" {
			return desc.Type + ": " + target
		}
	}

	if desc.DefaultLabel != "" {
		return desc.DefaultLabel
	}
	return fmt.Sprintf("%s %d", desc.Type, index)
}

// httpName combines HTTP method and path into "GET /orders" form.
func httpName(attrs map[string]string) string {
	method := strings.ToUpper(attrs["method"])
	if method == "" {
		method = strings.ToUpper(attrs["allowedMethods"])
	}
	path := attrs["path"]
	if path == "" {
		path = attrs["url"]
	}
	if path == "" {
		return ""
	}
	if method == "" {
		return path
	}
	return method + " " + path
}

// setTarget resolves the target of a set-variable/set-payload component.
func setTarget(attrs map[string]string) string {
	if v := attrs["variableName"]; v != "" {
		return v
	}
	return attrs["target"]
}

// clipName truncates a synthesized name at a rune boundary.
func clipName(s string) string {
	r := []rune(s)
	if len(r) <= maxSynthesizedName {
		return s
	}
	return string(r[:maxSynthesizedName-3]) + "..."
}
