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

import "fmt"

// FileError records a failure while processing a single configuration
// file. The build keeps going; the error is reported, not thrown.
type FileError struct {
	// FilePath is the file that failed.
	FilePath string `json:"file_path"`

	// Err is the underlying error.
	Err error `json:"error"`
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s: %v", e.FilePath, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *FileError) Unwrap() error {
	return e.Err
}

// BuildStats captures counters from a single build pass.
type BuildStats struct {
	// FilesProcessed is the number of files scanned for flows.
	FilesProcessed int `json:"files_processed"`

	// FilesFailed is the number of files that produced a FileError.
	FilesFailed int `json:"files_failed"`

	// FlowsExtracted is the number of flow and sub-flow definitions found.
	FlowsExtracted int `json:"flows_extracted"`

	// ComponentsExtracted is the total component count across all flows.
	ComponentsExtracted int `json:"components_extracted"`

	// EdgesCreated is the number of flow reference edges.
	EdgesCreated int `json:"edges_created"`

	// PlaceholdersCreated is the number of synthetic nodes created for
	// references that never resolved to a declared flow.
	PlaceholdersCreated int `json:"placeholders_created"`

	// DurationMilli is the wall-clock build duration in milliseconds.
	DurationMilli int64 `json:"duration_ms"`

	// DurationMicro is the wall-clock build duration in microseconds.
	DurationMicro int64 `json:"duration_us"`
}

// BuildResult is the outcome of a build pass. A result is always usable:
// per-file failures land in FileErrors and cancellation marks the result
// Incomplete, but Graph is never nil.
type BuildResult struct {
	// Graph is the extracted flow graph, possibly partial.
	Graph *Graph `json:"graph"`

	// FileErrors lists files that could not be processed.
	FileErrors []FileError `json:"file_errors,omitempty"`

	// Stats holds build counters.
	Stats BuildStats `json:"stats"`

	// Incomplete is true when the build stopped early, typically due to
	// context cancellation.
	Incomplete bool `json:"incomplete,omitempty"`
}

// HasErrors reports whether any file failed during the build.
func (r *BuildResult) HasErrors() bool {
	return len(r.FileErrors) > 0
}

// TotalErrors returns the number of failed files.
func (r *BuildResult) TotalErrors() int {
	return len(r.FileErrors)
}

// Success reports whether the build completed with no failures.
func (r *BuildResult) Success() bool {
	return !r.Incomplete && !r.HasErrors()
}
