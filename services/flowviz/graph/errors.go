// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph aggregates extracted flow definitions into a single flow
// graph: nodes are flows and sub-flows, edges are flow references.
//
// The builder merges definitions across many files, deduplicates repeated
// (filePath, name) registrations, assigns collision-free node identifiers,
// and resolves references by declared name. References to names that never
// resolve get a synthesized placeholder node so a dangling reference stays
// visible in the diagram instead of silently disappearing.
//
// # Purity
//
// Building is a pure function of its input map. No I/O happens here; file
// loading lives in the loader package and diagram output in render. The
// only side effects are telemetry (spans and metrics).
//
// # Thread Safety
//
// A Graph is immutable once Build returns, so any number of goroutines can
// read it. Builder itself is stateless and safe for concurrent use; each
// Build call owns its working state.
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrBuildCancelled is returned by internal build phases when the
	// context is cancelled. Build converts it into a partial result with
	// Incomplete set rather than surfacing it to callers.
	ErrBuildCancelled = errors.New("graph build cancelled")
)
