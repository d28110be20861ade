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
	"github.com/AleutianAI/MuleView/services/flowviz/mule"
)

// PlaceholderFilePath is the sentinel file path carried by nodes
// synthesized for references whose target was never found.
const PlaceholderFilePath = "unknown"

// FlowNode is one flow or sub-flow in the aggregated graph.
//
// Exactly one FlowNode exists per distinct (FilePath, Name) pair. Repeated
// registration of the same pair returns the existing node. Nodes are never
// mutated after the build completes.
type FlowNode struct {
	// ID is the sanitized, collision-resolved identifier, unique across
	// the whole graph.
	ID string `json:"id"`

	// Name is the raw declared name. It may collide across files.
	Name string `json:"name"`

	// FilePath is the source file, or PlaceholderFilePath for nodes
	// synthesized to satisfy a dangling reference.
	FilePath string `json:"filePath"`

	// Type is flow, sub-flow, or unknown for placeholders.
	Type mule.FlowType `json:"type"`

	// Components is the flow's top-level component forest. Nil for
	// placeholder nodes.
	Components []*mule.Component `json:"components,omitempty"`
}

// IsPlaceholder reports whether this node was synthesized for an
// unresolved reference.
func (n *FlowNode) IsPlaceholder() bool {
	return n.FilePath == PlaceholderFilePath
}

// ComponentCount returns the node's recursive component count.
func (n *FlowNode) ComponentCount() int {
	return mule.TotalCount(n.Components)
}

// Edge is a directed reference from one flow to another.
//
// Edges may point at placeholder targets. No edge is ever dropped, even
// when its target never resolves to a real flow.
type Edge struct {
	// From is the source node ID.
	From string `json:"from"`

	// To is the target node ID, possibly a placeholder.
	To string `json:"to"`

	// SourceFile is the file the reference occurs in.
	SourceFile string `json:"sourceFile"`

	// TargetFile is the target node's file, or PlaceholderFilePath.
	TargetFile string `json:"targetFile"`
}

// Graph is the aggregate of all extracted flows and their references. It
// is the sole artifact handed to rendering.
type Graph struct {
	// Nodes in registration order. Placeholders come after real nodes.
	Nodes []*FlowNode `json:"nodes"`

	// Edges in creation order, one per reference occurrence.
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *FlowNode {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NodeByName returns the first-registered node with the given declared
// name, or nil. First-registered is the same tie-break edge resolution
// uses when several files declare the same name.
func (g *Graph) NodeByName(name string) *FlowNode {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// OutgoingEdges returns every edge whose source is the given node ID.
func (g *Graph) OutgoingEdges(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns every edge whose target is the given node ID.
func (g *Graph) IncomingEdges(id string) []Edge {
	var in []Edge
	for _, e := range g.Edges {
		if e.To == id {
			in = append(in, e)
		}
	}
	return in
}

// TotalComponents returns the recursive component count across all nodes.
func (g *Graph) TotalComponents() int {
	total := 0
	for _, n := range g.Nodes {
		total += n.ComponentCount()
	}
	return total
}

// GraphStats summarizes a graph for status surfaces.
type GraphStats struct {
	// Flows is the number of flow nodes.
	Flows int `json:"flows"`

	// SubFlows is the number of sub-flow nodes.
	SubFlows int `json:"subFlows"`

	// Placeholders is the number of synthesized unknown nodes.
	Placeholders int `json:"placeholders"`

	// Components is the recursive component count across all nodes.
	Components int `json:"components"`

	// Edges is the total edge count.
	Edges int `json:"edges"`
}

// Stats computes summary statistics for the graph.
func (g *Graph) Stats() GraphStats {
	s := GraphStats{Edges: len(g.Edges)}
	for _, n := range g.Nodes {
		switch n.Type {
		case mule.FlowTypeFlow:
			s.Flows++
		case mule.FlowTypeSubFlow:
			s.SubFlows++
		default:
			s.Placeholders++
		}
		s.Components += n.ComponentCount()
	}
	return s
}
