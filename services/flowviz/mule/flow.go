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
	"encoding/json"
	"strings"
)

// FlowType classifies a flow definition.
type FlowType int

const (
	// FlowTypeUnknown marks placeholder nodes synthesized for references
	// whose target was never found in any file.
	FlowTypeUnknown FlowType = iota

	// FlowTypeFlow is a <flow> definition, an entry point.
	FlowTypeFlow

	// FlowTypeSubFlow is a <sub-flow> definition, only invocable by
	// reference.
	FlowTypeSubFlow
)

// flowTypeNames maps FlowType values to their string representations.
var flowTypeNames = map[FlowType]string{
	FlowTypeUnknown: "unknown",
	FlowTypeFlow:    "flow",
	FlowTypeSubFlow: "sub-flow",
}

// String returns the string representation of the FlowType.
func (t FlowType) String() string {
	if name, ok := flowTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON serializes the FlowType as its string form.
func (t FlowType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON deserializes a FlowType from its string form.
func (t *FlowType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseFlowType(s)
	return nil
}

// ParseFlowType parses a flow type string. Unrecognized input maps to
// FlowTypeUnknown.
func ParseFlowType(s string) FlowType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flow":
		return FlowTypeFlow
	case "sub-flow", "subflow":
		return FlowTypeSubFlow
	default:
		return FlowTypeUnknown
	}
}

// FlowDefinition is one <flow> or <sub-flow> found in a file.
type FlowDefinition struct {
	// Name is the declared name attribute. Never empty; unnamed
	// definitions are skipped during extraction.
	Name string

	// Type is FlowTypeFlow or FlowTypeSubFlow.
	Type FlowType

	// FilePath is the source file the definition came from.
	FilePath string

	// Body is the raw markup between the opening and closing tags. The
	// graph builder re-scans it for flow references, so it is retained
	// even when component extraction failed.
	Body string

	// Components is the flow's top-level component forest.
	Components []*Component
}

// ExtractFlows returns every flow and sub-flow definition in a file, in
// top-level document order.
//
// A definition is delimited by its opening tag through the first matching
// closing tag found by direct text search from the opening tag's end. When
// no closing tag exists the body extends to end of input. Definitions with
// an empty name are skipped. Scanning resumes after each consumed closing
// tag so regions already claimed by a flow body are never re-matched.
func ExtractFlows(path, content string) []FlowDefinition {
	var defs []FlowDefinition
	if content == "" {
		return defs
	}

	// ASCII-only lowering keeps byte offsets aligned with content.
	lower := lowerASCII(content)
	consumedUntil := 0

	sc := NewScanner(content)
	for {
		ev, ok := sc.Next()
		if !ok {
			break
		}
		if ev.Start < consumedUntil {
			continue
		}

		var ftype FlowType
		switch ev.Name {
		case "flow":
			ftype = FlowTypeFlow
		case "sub-flow":
			ftype = FlowTypeSubFlow
		default:
			continue
		}
		if ev.Kind == EventClose {
			continue
		}

		name := strings.TrimSpace(ev.Attrs["name"])
		if name == "" {
			continue
		}

		body := ""
		bodyEnd := ev.End
		if ev.Kind == EventOpen {
			closeTag := "</" + ev.Name + ">"
			if idx := strings.Index(lower[ev.End:], closeTag); idx >= 0 {
				body = content[ev.End : ev.End+idx]
				bodyEnd = ev.End + idx + len(closeTag)
			} else {
				body = content[ev.End:]
				bodyEnd = len(content)
			}
		}
		consumedUntil = bodyEnd

		defs = append(defs, FlowDefinition{
			Name:       name,
			Type:       ftype,
			FilePath:   path,
			Body:       body,
			Components: buildComponentsGuarded(name, body),
		})
	}
	return defs
}

// refTags are the local tag names that invoke another flow by name.
var refTags = map[string]bool{
	"flow-ref":       true,
	"sub-flow-ref":   true,
	"flow-reference": true,
}

// ReferencedFlows returns the names of every flow invoked from the given
// flow body, in occurrence order. Duplicates are kept: calling the same
// flow twice is two references. Reference tags are matched on their local
// name so namespaced variants count too.
func ReferencedFlows(body string) []string {
	var names []string
	sc := NewScanner(body)
	for {
		ev, ok := sc.Next()
		if !ok {
			return names
		}
		if ev.Kind == EventClose {
			continue
		}
		_, local := splitTag(ev.Name)
		if !refTags[local] {
			continue
		}
		if name := strings.TrimSpace(ev.Attrs["name"]); name != "" {
			names = append(names, name)
		}
	}
}

// lowerASCII lowercases ASCII letters only, preserving byte length so
// offsets into the result remain valid for the original string.
func lowerASCII(s string) string {
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
