// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render converts a flow graph into Mermaid flowchart text.
//
// Rendering is a pure function of the graph and the options: no I/O, no
// shared state, nothing here can fail. Degenerate input (nil graph,
// missing names) degrades to fallback text instead of erroring. Mode
// selection, identifier sanitization, and label escaping exist to keep
// the emitted text valid for the downstream Mermaid parser no matter
// what the flow authors named things.
//
// # Thread Safety
//
// A Renderer is immutable after construction and safe for concurrent use.
package render

import (
	"github.com/AleutianAI/MuleView/services/flowviz/graph"
)

// Weights and limits for the auto-mode output size estimate.
const (
	// nodeWeight is the score contribution per flow node.
	nodeWeight = 100

	// componentWeight is the score contribution per component, counted
	// recursively through nested children.
	componentWeight = 50

	// edgeWeight is the score contribution per reference edge.
	edgeWeight = 30
)

// RenderOptions configures diagram generation.
type RenderOptions struct {
	// Direction is the flowchart direction (TB, LR, BT, RL).
	// Default: "TB"
	Direction string

	// MaxComponents caps how many top-level components a flow shows in
	// detailed mode before the "+K more" overflow node.
	// Default: 5
	MaxComponents int

	// ScoreThreshold is the estimated-size score above which auto mode
	// downgrades to simplified.
	// Default: 5000
	ScoreThreshold int

	// NodeCeiling is the node count above which auto mode downgrades to
	// simplified regardless of score.
	// Default: 30
	NodeCeiling int

	// MaxLabelLength caps label text before truncation with "...".
	// Default: 40
	MaxLabelLength int

	// Fenced wraps the output in a ```mermaid code fence for direct
	// embedding in Markdown.
	// Default: false
	Fenced bool
}

// DefaultRenderOptions returns sensible defaults.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Direction:      "TB",
		MaxComponents:  5,
		ScoreThreshold: 5000,
		NodeCeiling:    30,
		MaxLabelLength: 40,
	}
}

// Renderer generates Mermaid flowchart text from flow graphs.
type Renderer struct {
	options RenderOptions
}

// NewRenderer creates a new renderer. A nil opts uses defaults; zero or
// negative limits are replaced by their defaults so a partially filled
// options struct stays usable.
func NewRenderer(opts *RenderOptions) *Renderer {
	options := DefaultRenderOptions()
	if opts != nil {
		if opts.Direction != "" {
			options.Direction = opts.Direction
		}
		if opts.MaxComponents > 0 {
			options.MaxComponents = opts.MaxComponents
		}
		if opts.ScoreThreshold > 0 {
			options.ScoreThreshold = opts.ScoreThreshold
		}
		if opts.NodeCeiling > 0 {
			options.NodeCeiling = opts.NodeCeiling
		}
		if opts.MaxLabelLength > 0 {
			options.MaxLabelLength = opts.MaxLabelLength
		}
		options.Fenced = opts.Fenced
	}
	return &Renderer{options: options}
}

// Score estimates the rendered output size of a graph. The weights favor
// node count, then component count, then edges, mirroring how much
// diagram text each contributes.
func Score(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return nodeWeight*len(g.Nodes) +
		componentWeight*g.TotalComponents() +
		edgeWeight*len(g.Edges)
}

// ResolveMode turns ModeAuto into a concrete mode for the given graph:
// simplified when the score exceeds the threshold or the node count
// exceeds the ceiling, detailed otherwise. Concrete modes pass through.
func (r *Renderer) ResolveMode(g *graph.Graph, mode Mode) Mode {
	if mode != ModeAuto {
		return mode
	}
	if g == nil {
		return ModeDetailed
	}
	if Score(g) > r.options.ScoreThreshold || len(g.Nodes) > r.options.NodeCeiling {
		return ModeSimplified
	}
	return ModeDetailed
}

// Render produces Mermaid flowchart text for the graph in the given mode.
// A nil or empty graph yields a valid, empty flowchart.
func (r *Renderer) Render(g *graph.Graph, mode Mode) string {
	if g == nil {
		g = &graph.Graph{}
	}

	switch r.ResolveMode(g, mode) {
	case ModeSimplified:
		return r.renderMermaid(g, false, false)
	case ModeFullDetailed:
		return r.renderMermaid(g, true, true)
	default:
		return r.renderMermaid(g, true, false)
	}
}
