// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode selects a rendering strategy.
type Mode int

const (
	// ModeAuto picks simplified or detailed from the graph's estimated
	// output size.
	ModeAuto Mode = iota

	// ModeSimplified renders one box per flow with no inner components.
	ModeSimplified

	// ModeDetailed expands each flow into its first few top-level
	// components with a "+K more" overflow node.
	ModeDetailed

	// ModeFullDetailed expands every component and all nested children.
	ModeFullDetailed
)

// modeNames maps Mode values to their string representations.
var modeNames = map[Mode]string{
	ModeAuto:         "auto",
	ModeSimplified:   "simplified",
	ModeDetailed:     "detailed",
	ModeFullDetailed: "full-detailed",
}

// String returns the string representation of the Mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON serializes the Mode as its string form.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON deserializes a Mode from its string form.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mode, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode parses a render mode string. The empty string means auto so
// callers can pass an unset flag or query parameter straight through.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "simplified", "simple":
		return ModeSimplified, nil
	case "detailed":
		return ModeDetailed, nil
	case "full-detailed", "fulldetailed", "full":
		return ModeFullDetailed, nil
	default:
		return ModeAuto, fmt.Errorf("unknown render mode %q", s)
	}
}
