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
	"testing"

	"github.com/AleutianAI/MuleView/services/flowviz/graph"
	"github.com/AleutianAI/MuleView/services/flowviz/mule"
)

// flowsWithComponents builds a graph of n flows, each holding c leaf
// components.
func flowsWithComponents(n, c int) *graph.Graph {
	g := &graph.Graph{}
	for i := 0; i < n; i++ {
		node := &graph.FlowNode{
			ID:       fmt.Sprintf("flow%d", i),
			Name:     fmt.Sprintf("flow%d", i),
			FilePath: "app.xml",
			Type:     mule.FlowTypeFlow,
		}
		for j := 0; j < c; j++ {
			node.Components = append(node.Components, &mule.Component{
				ID:      fmt.Sprintf("c%d", j+1),
				Name:    fmt.Sprintf("Step %d", j+1),
				Type:    "Logger",
				TagName: "logger",
			})
		}
		g.Nodes = append(g.Nodes, node)
	}
	return g
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"auto", ModeAuto, false},
		{"", ModeAuto, false},
		{"simplified", ModeSimplified, false},
		{"simple", ModeSimplified, false},
		{"SIMPLIFIED", ModeSimplified, false},
		{"detailed", ModeDetailed, false},
		{"full-detailed", ModeFullDetailed, false},
		{"fulldetailed", ModeFullDetailed, false},
		{"full", ModeFullDetailed, false},
		{"  detailed  ", ModeDetailed, false},
		{"bogus", ModeAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseMode(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeAuto, "auto"},
		{ModeSimplified, "simplified"},
		{ModeDetailed, "detailed"},
		{ModeFullDetailed, "full-detailed"},
		{Mode(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.expected {
			t.Errorf("Mode(%d).String() = %q, expected %q", tt.mode, got, tt.expected)
		}
	}
}

func TestMode_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(ModeFullDetailed)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != `"full-detailed"` {
		t.Errorf("Marshal = %s, expected \"full-detailed\"", data)
	}

	var mode Mode
	if err := json.Unmarshal(data, &mode); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if mode != ModeFullDetailed {
		t.Errorf("round trip = %v, expected full-detailed", mode)
	}

	if err := json.Unmarshal([]byte(`"bogus"`), &mode); err == nil {
		t.Error("expected error for unknown mode string")
	}
}

func TestScore(t *testing.T) {
	g := flowsWithComponents(3, 5)
	g.Edges = append(g.Edges,
		graph.Edge{From: "flow0", To: "flow1"},
		graph.Edge{From: "flow1", To: "flow2"},
	)

	// 3 nodes, 15 components, 2 edges.
	expected := 100*3 + 50*15 + 30*2
	if got := Score(g); got != expected {
		t.Errorf("Score = %d, expected %d", got, expected)
	}
	if got := Score(nil); got != 0 {
		t.Errorf("Score(nil) = %d, expected 0", got)
	}
}

func TestResolveMode_NodeCeiling(t *testing.T) {
	// 40 flows with no components score 4000, under the threshold, but
	// the node ceiling forces simplified.
	r := NewRenderer(nil)
	g := flowsWithComponents(40, 0)

	if got := r.ResolveMode(g, ModeAuto); got != ModeSimplified {
		t.Errorf("ResolveMode = %v, expected simplified above the node ceiling", got)
	}
}

func TestResolveMode_SmallGraphIsDetailed(t *testing.T) {
	r := NewRenderer(nil)
	g := flowsWithComponents(3, 5)

	if got := r.ResolveMode(g, ModeAuto); got != ModeDetailed {
		t.Errorf("ResolveMode = %v, expected detailed for a small graph", got)
	}
}

func TestResolveMode_ScoreThreshold(t *testing.T) {
	// 20 flows with 10 components each: 2000 + 10000 > 5000, nodes under
	// the ceiling. The score alone forces simplified.
	r := NewRenderer(nil)
	g := flowsWithComponents(20, 10)

	if got := r.ResolveMode(g, ModeAuto); got != ModeSimplified {
		t.Errorf("ResolveMode = %v, expected simplified above the score threshold", got)
	}
}

func TestResolveMode_ConcreteModesPassThrough(t *testing.T) {
	r := NewRenderer(nil)
	g := flowsWithComponents(40, 10)

	for _, mode := range []Mode{ModeSimplified, ModeDetailed, ModeFullDetailed} {
		if got := r.ResolveMode(g, mode); got != mode {
			t.Errorf("ResolveMode(%v) = %v, expected pass-through", mode, got)
		}
	}
}

func TestNewRenderer_Defaults(t *testing.T) {
	r := NewRenderer(nil)

	if r.options.Direction != "TB" {
		t.Errorf("Direction = %q, expected TB", r.options.Direction)
	}
	if r.options.MaxComponents != 5 {
		t.Errorf("MaxComponents = %d, expected 5", r.options.MaxComponents)
	}
	if r.options.ScoreThreshold != 5000 {
		t.Errorf("ScoreThreshold = %d, expected 5000", r.options.ScoreThreshold)
	}
	if r.options.NodeCeiling != 30 {
		t.Errorf("NodeCeiling = %d, expected 30", r.options.NodeCeiling)
	}
}

func TestNewRenderer_PartialOptionsFilled(t *testing.T) {
	r := NewRenderer(&RenderOptions{Direction: "LR"})

	if r.options.Direction != "LR" {
		t.Errorf("Direction = %q, expected LR", r.options.Direction)
	}
	if r.options.MaxComponents != 5 || r.options.NodeCeiling != 30 {
		t.Error("zero-valued limits should fall back to defaults")
	}
}
