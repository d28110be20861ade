// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// maxIDLength caps sanitized node ids. Longer ids get truncated with a
// hash suffix so distinct long names stay distinct.
const maxIDLength = 40

// reservedIDs are bare words with special meaning in the diagram DSL. A
// node id must never collide with one ("end" closes a subgraph block).
var reservedIDs = map[string]bool{
	"end":       true,
	"start":     true,
	"graph":     true,
	"subgraph":  true,
	"flowchart": true,
	"style":     true,
	"classdef":  true,
	"class":     true,
	"click":     true,
	"linkstyle": true,
	"direction": true,
	"default":   true,
}

// sanitizeID converts an arbitrary declared flow name into an
// identifier-safe base id: ASCII alphanumerics pass through, every other
// run of characters collapses to a single underscore, leading and trailing
// underscores are stripped, the result is forced letter-leading and away
// from reserved words, and over-long ids are truncated with a hash suffix
// derived from the original name.
//
// Uniqueness across a graph is the builder's job; sanitizeID alone may
// produce the same base for different names.
func sanitizeID(name string) string {
	var b strings.Builder
	pendingUnderscore := false
	for _, r := range name {
		if isAlnum(r) {
			if pendingUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingUnderscore = false
		} else {
			pendingUnderscore = true
		}
	}

	id := b.String()
	if id == "" {
		id = "flow"
	}
	if !isASCIILetter(id[0]) {
		id = "f_" + id
	}
	if reservedIDs[strings.ToLower(id)] {
		id += "_flow"
	}
	if len(id) > maxIDLength {
		id = id[:maxIDLength-9] + "_" + shortHash(name)
	}
	return id
}

// shortHash returns an 8-hex-digit FNV-1a hash of s.
func shortHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
