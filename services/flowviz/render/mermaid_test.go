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
	"strings"
	"testing"

	"github.com/AleutianAI/MuleView/services/flowviz/graph"
	"github.com/AleutianAI/MuleView/services/flowviz/mule"
)

// renderFixture is an API flow with a nested choice, a sub-flow, and a
// placeholder target.
func renderFixture() *graph.Graph {
	return &graph.Graph{
		Nodes: []*graph.FlowNode{
			{
				ID: "OrderAPI", Name: "OrderAPI", FilePath: "api.xml", Type: mule.FlowTypeFlow,
				Components: []*mule.Component{
					{ID: "c1", Name: "POST /orders", Type: "HTTP Listener", TagName: "http:listener"},
					{ID: "c2", Name: "Route by type", Type: "Choice", TagName: "choice", Children: []*mule.Component{
						{ID: "c3", Name: "Log: accepted", Type: "Logger", TagName: "logger"},
					}},
				},
			},
			{
				ID: "Helper", Name: "Helper", FilePath: "util.xml", Type: mule.FlowTypeSubFlow,
				Components: []*mule.Component{
					{ID: "c1", Name: "Transform Message", Type: "Transform Message", TagName: "ee:transform"},
				},
			},
			{ID: "Ghost", Name: "Ghost", FilePath: graph.PlaceholderFilePath, Type: mule.FlowTypeUnknown},
		},
		Edges: []graph.Edge{
			{From: "OrderAPI", To: "Helper", SourceFile: "api.xml", TargetFile: "util.xml"},
			{From: "OrderAPI", To: "Ghost", SourceFile: "api.xml", TargetFile: graph.PlaceholderFilePath},
		},
	}
}

func mustContain(t *testing.T, out, substr string) {
	t.Helper()
	if !strings.Contains(out, substr) {
		t.Errorf("output missing %q\n%s", substr, out)
	}
}

func mustNotContain(t *testing.T, out, substr string) {
	t.Helper()
	if strings.Contains(out, substr) {
		t.Errorf("output should not contain %q\n%s", substr, out)
	}
}

func TestRender_Simplified(t *testing.T) {
	out := NewRenderer(nil).Render(renderFixture(), ModeSimplified)

	mustContain(t, out, "flowchart TB\n")
	mustContain(t, out, `OrderAPI(["OrderAPI (flow, 3 components)"]):::teal`)
	mustContain(t, out, `Helper["Helper (sub-flow, 1 component)"]:::neutral`)
	mustContain(t, out, `Ghost["Ghost (unknown)"]:::placeholder`)
	mustContain(t, out, "OrderAPI --> Helper")
	mustContain(t, out, "OrderAPI --> Ghost")
	mustContain(t, out, "classDef teal")
	mustContain(t, out, "classDef placeholder")
	mustNotContain(t, out, "subgraph")
	mustNotContain(t, out, "OrderAPI_c1")
}

func TestRender_Detailed(t *testing.T) {
	out := NewRenderer(nil).Render(renderFixture(), ModeDetailed)

	mustContain(t, out, `subgraph OrderAPI["OrderAPI (flow)"]`)
	mustContain(t, out, `OrderAPI_c1[["POST /orders"]]:::blue`)
	mustContain(t, out, `OrderAPI_c2{"Route by type"}:::red`)
	mustContain(t, out, "OrderAPI_c1 --> OrderAPI_c2")
	mustContain(t, out, `subgraph Helper["Helper (sub-flow)"]`)
	mustContain(t, out, `Helper_c1("Transform Message"):::green`)
	mustContain(t, out, "    class OrderAPI teal\n")
	mustContain(t, out, "    class Helper neutral\n")

	// Placeholders stay plain boxes and nesting is not expanded.
	mustContain(t, out, `Ghost["Ghost (unknown)"]:::placeholder`)
	mustNotContain(t, out, "OrderAPI_c3")
}

func TestRender_DetailedOverflow(t *testing.T) {
	g := flowsWithComponents(1, 7)
	out := NewRenderer(nil).Render(g, ModeDetailed)

	mustContain(t, out, `flow0_more["+2 more"]:::neutral`)
	mustContain(t, out, "flow0_c5 --> flow0_more")
	mustNotContain(t, out, "flow0_c6[")
}

func TestRender_FullDetailed(t *testing.T) {
	out := NewRenderer(nil).Render(renderFixture(), ModeFullDetailed)

	mustContain(t, out, `OrderAPI_c3("Log: accepted"):::green`)
	mustContain(t, out, "OrderAPI_c2 --> OrderAPI_c3")
	mustContain(t, out, "OrderAPI_c1 --> OrderAPI_c2")
	mustContain(t, out, "OrderAPI --> Helper")
}

func TestRender_FullDetailedHasNoOverflow(t *testing.T) {
	g := flowsWithComponents(1, 7)
	out := NewRenderer(nil).Render(g, ModeFullDetailed)

	mustContain(t, out, "flow0_c7")
	mustNotContain(t, out, "_more")
}

func TestRender_CrossFlowEdgesInEveryMode(t *testing.T) {
	r := NewRenderer(nil)
	for _, mode := range []Mode{ModeSimplified, ModeDetailed, ModeFullDetailed} {
		out := r.Render(renderFixture(), mode)
		if !strings.Contains(out, "OrderAPI --> Helper") || !strings.Contains(out, "OrderAPI --> Ghost") {
			t.Errorf("mode %v dropped a cross-flow edge:\n%s", mode, out)
		}
	}
}

func TestRender_EscapesLabels(t *testing.T) {
	g := &graph.Graph{
		Nodes: []*graph.FlowNode{
			{ID: "bad", Name: `Bad "name" <x>`, FilePath: "a.xml", Type: mule.FlowTypeFlow},
		},
	}
	out := NewRenderer(nil).Render(g, ModeSimplified)

	mustContain(t, out, "#quot;name#quot;")
	mustContain(t, out, "&lt;x&gt;")
	mustNotContain(t, out, "<x>")
}

func TestRender_TruncatesLongLabels(t *testing.T) {
	g := &graph.Graph{
		Nodes: []*graph.FlowNode{
			{ID: "long", Name: strings.Repeat("x", 60), FilePath: "a.xml", Type: mule.FlowTypeFlow},
		},
	}
	out := NewRenderer(nil).Render(g, ModeSimplified)

	mustContain(t, out, strings.Repeat("x", 37)+"...")
	mustNotContain(t, out, strings.Repeat("x", 41))
}

func TestRender_FallbackLabels(t *testing.T) {
	g := &graph.Graph{
		Nodes: []*graph.FlowNode{
			{ID: "anon", Name: "", FilePath: "a.xml", Type: mule.FlowTypeFlow},
			{
				ID: "f", Name: "F", FilePath: "a.xml", Type: mule.FlowTypeFlow,
				Components: []*mule.Component{{ID: "c1"}},
			},
		},
	}

	simplified := NewRenderer(nil).Render(g, ModeSimplified)
	mustContain(t, simplified, "Unknown Flow")

	detailed := NewRenderer(nil).Render(g, ModeDetailed)
	mustContain(t, detailed, `f_c1["Unknown Component"]:::neutral`)
}

func TestRender_NilGraph(t *testing.T) {
	out := NewRenderer(nil).Render(nil, ModeAuto)

	if !strings.HasPrefix(out, "flowchart TB\n") {
		t.Errorf("output = %q, expected a bare flowchart header", out)
	}
	mustContain(t, out, "classDef neutral")
}

func TestRender_Fenced(t *testing.T) {
	r := NewRenderer(&RenderOptions{Fenced: true})
	out := r.Render(renderFixture(), ModeSimplified)

	if !strings.HasPrefix(out, "```mermaid\n") {
		t.Errorf("output does not open a mermaid fence: %q", out[:20])
	}
	if !strings.HasSuffix(out, "```\n") {
		t.Error("output does not close the fence")
	}
}

func TestRender_Direction(t *testing.T) {
	r := NewRenderer(&RenderOptions{Direction: "LR"})
	out := r.Render(renderFixture(), ModeSimplified)

	if !strings.HasPrefix(out, "flowchart LR\n") {
		t.Errorf("output = %q, expected LR header", out[:linesUpTo(out)])
	}
}

// linesUpTo bounds a failure message to the first line.
func linesUpTo(s string) int {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return i
	}
	return len(s)
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		name          string
		inName        string
		inType        string
		inTag         string
		expectedShape boxShape
		expectedClass string
	}{
		{"api name", "OrderAPI", "flow", "", shapeStadium, classTeal},
		{"error beats api", "api-error-handler", "flow", "", shapeDiamond, classRed},
		{"choice component", "Route by type", "Choice", "choice", shapeDiamond, classRed},
		{"on-error-continue", "", "On Error Continue", "on-error-continue", shapeDiamond, classRed},
		{"http connector", "POST /orders", "HTTP Listener", "http:listener", shapeSubroutine, classBlue},
		{"database connector", "Database Select 1", "Database Select", "db:select", shapeSubroutine, classBlue},
		{"transform", "Transform Message", "Transform Message", "ee:transform", shapeRounded, classGreen},
		{"logger", "Log: accepted", "Logger", "logger", shapeRounded, classGreen},
		{"set payload", "Set Payload: out", "Set Payload", "set-payload", shapeRounded, classGreen},
		{"plain flow", "Main", "flow", "", shapeRect, classNeutral},
		{"batch step", "Step 1", "Batch Step", "batch:step", shapeRect, classNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, class := styleFor(tt.inName, tt.inType, tt.inTag)
			if shape != tt.expectedShape || class != tt.expectedClass {
				t.Errorf("styleFor(%q, %q, %q) = (%v, %s), expected (%v, %s)",
					tt.inName, tt.inType, tt.inTag, shape, class, tt.expectedShape, tt.expectedClass)
			}
		})
	}
}

func TestHasToken(t *testing.T) {
	if !hasToken("http listener http:listener", connectorTokens) {
		t.Error("expected http token match")
	}
	if hasToken("dashboard redux", connectorTokens) {
		t.Error("db must match whole tokens only")
	}
	if hasToken("catalog viewer", processorTokens) {
		t.Error("log must match whole tokens only")
	}
}

func TestTruncateLabel(t *testing.T) {
	if got := truncateLabel("short", 40); got != "short" {
		t.Errorf("truncateLabel(short) = %q", got)
	}

	long := strings.Repeat("a", 50)
	got := truncateLabel(long, 40)
	if len(got) != 40 {
		t.Errorf("len = %d, expected 40", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated label %q does not end in ellipsis", got)
	}

	// Multibyte names must not be split mid-rune.
	wide := strings.Repeat("é", 50)
	trunc := truncateLabel(wide, 40)
	if !strings.HasSuffix(trunc, "...") {
		t.Errorf("wide label %q does not end in ellipsis", trunc)
	}
	for _, r := range trunc {
		if r == '�' {
			t.Fatal("truncation produced an invalid rune")
		}
	}
}

func TestCountLabel(t *testing.T) {
	if got := countLabel(1); got != "1 component" {
		t.Errorf("countLabel(1) = %q", got)
	}
	if got := countLabel(0); got != "0 components" {
		t.Errorf("countLabel(0) = %q", got)
	}
	if got := countLabel(12); got != "12 components" {
		t.Errorf("countLabel(12) = %q", got)
	}
}
