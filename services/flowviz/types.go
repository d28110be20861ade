// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package flowviz

import (
	"github.com/AleutianAI/MuleView/services/flowviz/graph"
)

// InitRequest is the request body for POST /v1/flowviz/init.
type InitRequest struct {
	// ProjectRoot is the absolute path to the Mule project root directory.
	// Required.
	ProjectRoot string `json:"project_root" binding:"required"`

	// ExcludeDirs is a list of directory name patterns to skip during the
	// walk. Default: target, .git, .mule, .settings, .idea, node_modules.
	ExcludeDirs []string `json:"exclude_dirs"`
}

// InitResponse is the response for POST /v1/flowviz/init.
type InitResponse struct {
	// GraphID is the identifier for this graph. Deterministic per project
	// root, so re-initializing the same project reuses the same ID.
	GraphID string `json:"graph_id"`

	// IsRefresh indicates if this replaced an existing graph.
	IsRefresh bool `json:"is_refresh"`

	// PreviousID is the ID of the replaced graph (if IsRefresh is true).
	PreviousID string `json:"previous_id,omitempty"`

	// FilesParsed is the number of configuration files processed.
	FilesParsed int `json:"files_parsed"`

	// FilesSkipped is the number of files passed over for size.
	FilesSkipped int `json:"files_skipped"`

	// Flows is the number of flow nodes extracted.
	Flows int `json:"flows"`

	// SubFlows is the number of sub-flow nodes extracted.
	SubFlows int `json:"sub_flows"`

	// Components is the recursive component count across all flows.
	Components int `json:"components"`

	// Edges is the number of flow reference edges.
	Edges int `json:"edges"`

	// Placeholders is the number of unresolved-reference nodes.
	Placeholders int `json:"placeholders"`

	// ParseTimeMs is the total load and build time in milliseconds.
	ParseTimeMs int64 `json:"parse_time_ms"`

	// Errors contains non-fatal errors encountered during parsing.
	Errors []string `json:"errors,omitempty"`
}

// RenderRequest is the request body for POST /v1/flowviz/render.
type RenderRequest struct {
	// GraphID is the graph to render. Optional; defaults to the most
	// recently built graph.
	GraphID string `json:"graph_id"`

	// Mode is the diagram mode: auto, simplified, detailed, or
	// full-detailed. Default: auto.
	Mode string `json:"mode" validate:"omitempty,rendermode"`

	// Direction is the flowchart direction (TB, LR, BT, RL). Default: TB.
	Direction string `json:"direction"`

	// Fenced wraps the diagram in a ```mermaid code fence.
	Fenced bool `json:"fenced"`
}

// RenderResponse is the response for POST /v1/flowviz/render.
type RenderResponse struct {
	// GraphID is the graph that was rendered.
	GraphID string `json:"graph_id"`

	// Mode is the concrete mode used. Never "auto": auto resolves to
	// simplified or detailed before rendering.
	Mode string `json:"mode"`

	// Diagram is the Mermaid flowchart text.
	Diagram string `json:"diagram"`
}

// PreviewRequest is the request body for POST /v1/flowviz/preview.
type PreviewRequest struct {
	// Files maps file path to raw Mule XML markup. Required, at least
	// one entry. Capped at MaxPreviewFiles entries of MaxPreviewFileBytes
	// each.
	Files map[string]string `json:"files" binding:"required" validate:"omitempty,max=50,dive,maxfilebytes"`

	// Mode is the diagram mode. Default: auto.
	Mode string `json:"mode" validate:"omitempty,rendermode"`

	// Direction is the flowchart direction. Default: TB.
	Direction string `json:"direction"`

	// Fenced wraps the diagram in a ```mermaid code fence.
	Fenced bool `json:"fenced"`
}

// PreviewResponse is the response for POST /v1/flowviz/preview.
//
// Previews are stateless: nothing is cached and no graph ID is assigned.
type PreviewResponse struct {
	// Mode is the concrete mode used.
	Mode string `json:"mode"`

	// Diagram is the Mermaid flowchart text.
	Diagram string `json:"diagram"`

	// Flows is the number of flow and sub-flow nodes extracted.
	Flows int `json:"flows"`

	// Components is the recursive component count.
	Components int `json:"components"`

	// Edges is the number of flow reference edges.
	Edges int `json:"edges"`

	// Placeholders is the number of unresolved-reference nodes.
	Placeholders int `json:"placeholders"`

	// Errors contains non-fatal errors encountered during parsing.
	Errors []string `json:"errors,omitempty"`
}

// FlowSummary is one flow in a listing.
type FlowSummary struct {
	// ID is the graph-unique node identifier.
	ID string `json:"id"`

	// Name is the declared flow name.
	Name string `json:"name"`

	// Type is "flow", "sub-flow", or "unknown" for placeholders.
	Type string `json:"type"`

	// FilePath is the source file, or "unknown" for placeholders.
	FilePath string `json:"file_path"`

	// Components is the recursive component count.
	Components int `json:"components"`

	// Icon is a display glyph: the trigger component's icon when the
	// flow has one, otherwise a flow-type glyph.
	Icon string `json:"icon"`
}

// ListFlowsResponse is the response for GET /v1/flowviz/flows.
type ListFlowsResponse struct {
	// GraphID is the graph that was listed.
	GraphID string `json:"graph_id"`

	// Count is the number of flows returned.
	Count int `json:"count"`

	// Flows lists every node in registration order.
	Flows []FlowSummary `json:"flows"`
}

// FlowDetailResponse is the response for GET /v1/flowviz/flows/:id.
type FlowDetailResponse struct {
	// GraphID is the graph that was queried.
	GraphID string `json:"graph_id"`

	// Flow is the node with its full component tree.
	Flow *graph.FlowNode `json:"flow"`

	// References lists edges from this flow to others.
	References []graph.Edge `json:"references,omitempty"`

	// ReferencedBy lists edges from other flows into this one.
	ReferencedBy []graph.Edge `json:"referenced_by,omitempty"`
}

// GraphResponse is the response for GET /v1/flowviz/graph.
type GraphResponse struct {
	// GraphID is the graph that was returned.
	GraphID string `json:"graph_id"`

	// ProjectRoot is the project the graph was built from.
	ProjectRoot string `json:"project_root"`

	// BuiltAtMilli is when the graph was built, unix milliseconds.
	BuiltAtMilli int64 `json:"built_at_ms"`

	// Graph is the full node and edge set.
	Graph *graph.Graph `json:"graph"`

	// Stats summarizes the graph.
	Stats graph.GraphStats `json:"stats"`
}

// HealthResponse is the response for GET /v1/flowviz/health.
type HealthResponse struct {
	// Status is "healthy" or "degraded".
	Status string `json:"status"`

	// Version is the service version.
	Version string `json:"version"`
}

// ReadyResponse is the response for GET /v1/flowviz/ready.
type ReadyResponse struct {
	// Ready is true if the service is ready to accept requests.
	Ready bool `json:"ready"`

	// GraphCount is the number of cached graphs.
	GraphCount int `json:"graph_count"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}

// CachedGraph holds a built flow graph and its associated data.
type CachedGraph struct {
	// GraphID is the cache key.
	GraphID string

	// Graph is the flow graph.
	Graph *graph.Graph

	// Stats holds counters from the build pass.
	Stats graph.BuildStats

	// FilesSkipped is the number of files passed over for size.
	FilesSkipped int

	// BuiltAtMilli is when the graph was built.
	BuiltAtMilli int64

	// ProjectRoot is the project root path.
	ProjectRoot string

	// ExpiresAtMilli is when the graph expires (0 = never).
	ExpiresAtMilli int64
}
