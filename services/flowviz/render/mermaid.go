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
	"fmt"
	"strings"

	"github.com/AleutianAI/MuleView/services/flowviz/graph"
	"github.com/AleutianAI/MuleView/services/flowviz/mule"
)

// Fallback labels for degenerate input.
const (
	fallbackFlowLabel      = "Unknown Flow"
	fallbackComponentLabel = "Unknown Component"
)

// Style classes emitted in the classDef block.
const (
	classTeal        = "teal"
	classRed         = "red"
	classBlue        = "blue"
	classGreen       = "green"
	classNeutral     = "neutral"
	classPlaceholder = "placeholder"
)

// boxShape selects the Mermaid node syntax.
type boxShape int

const (
	shapeRect boxShape = iota
	shapeRounded
	shapeStadium
	shapeSubroutine
	shapeDiamond
)

// connectorTokens mark transport and storage components.
var connectorTokens = []string{
	"http", "https", "db", "database", "file", "ftp", "sftp",
	"vm", "jms", "salesforce", "mq", "smtp",
}

// processorTokens mark transformation and logging components.
var processorTokens = []string{
	"transform", "dataweave", "logger", "log", "payload", "variable",
}

// renderMermaid emits the whole diagram: header, node declarations (flow
// boxes or subgraphs), reference and chain edges, then the style block.
// showComponents expands flows into subgraphs; expandChildren additionally
// recurses into container children.
func (r *Renderer) renderMermaid(g *graph.Graph, showComponents, expandChildren bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("flowchart %s\n", r.options.Direction))

	// Chain edges and subgraph class assignments are collected while
	// declaring nodes and emitted in their own sections below.
	var chainEdges []string
	var classLines []string

	for _, node := range g.Nodes {
		if showComponents && !node.IsPlaceholder() && len(node.Components) > 0 {
			r.writeFlowSubgraph(&sb, node, expandChildren, &chainEdges, &classLines)
		} else {
			r.writeFlowBox(&sb, node, !showComponents)
		}
	}

	sb.WriteString("\n")
	for _, e := range g.Edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", e.From, e.To))
	}
	for _, edge := range chainEdges {
		sb.WriteString(fmt.Sprintf("    %s\n", edge))
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef teal fill:#20B9B4,stroke:#16858E,stroke-width:2px,color:#fff\n")
	sb.WriteString("    classDef red fill:#E74C3C,stroke:#922B21,color:#fff\n")
	sb.WriteString("    classDef blue fill:#3498DB,stroke:#21618C,color:#fff\n")
	sb.WriteString("    classDef green fill:#10ac84,stroke:#0B6E55\n")
	sb.WriteString("    classDef neutral fill:#ECF0F1,stroke:#95A5A6,color:#2C4A54\n")
	sb.WriteString("    classDef placeholder fill:#ECF0F1,stroke:#95A5A6,color:#2C4A54,stroke-dasharray: 5 5\n")
	for _, line := range classLines {
		sb.WriteString(line)
	}

	if r.options.Fenced {
		return "```mermaid\n" + sb.String() + "```\n"
	}
	return sb.String()
}

// writeFlowBox declares one flow as a single node. In simplified output
// the label carries the type and recursive component count; flows that
// reach here in detailed output are empty or placeholders, so the short
// label suffices.
func (r *Renderer) writeFlowBox(sb *strings.Builder, node *graph.FlowNode, simplified bool) {
	name := node.Name
	if name == "" {
		name = fallbackFlowLabel
	}

	var label string
	switch {
	case node.IsPlaceholder():
		label = fmt.Sprintf("%s (unknown)", name)
	case simplified:
		label = fmt.Sprintf("%s (%s, %s)", name, node.Type, countLabel(node.ComponentCount()))
	default:
		label = fmt.Sprintf("%s (%s)", name, node.Type)
	}

	shape, class := flowStyle(node)
	sb.WriteString(fmt.Sprintf("    %s\n", nodeLine(node.ID, r.label(label), shape, class)))
}

// writeFlowSubgraph declares one flow as a subgraph holding its component
// nodes. Top-level components chain sequentially; in detailed output the
// chain is capped with a "+K more" terminal, in full-detailed output
// every container fans out to its children instead.
func (r *Renderer) writeFlowSubgraph(sb *strings.Builder, node *graph.FlowNode, expandChildren bool, chainEdges, classLines *[]string) {
	name := node.Name
	if name == "" {
		name = fallbackFlowLabel
	}
	sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", node.ID, r.label(fmt.Sprintf("%s (%s)", name, node.Type))))

	shown := node.Components
	if !expandChildren && len(shown) > r.options.MaxComponents {
		shown = shown[:r.options.MaxComponents]
	}

	chain := make([]string, 0, len(shown)+1)
	for _, c := range shown {
		cid := componentNodeID(node.ID, c)
		r.writeComponent(sb, cid, c)
		chain = append(chain, cid)

		if expandChildren {
			r.writeChildren(sb, node.ID, c, chainEdges)
		}
	}

	if hidden := len(node.Components) - len(shown); hidden > 0 {
		moreID := node.ID + "_more"
		sb.WriteString(fmt.Sprintf("        %s[\"+%d more\"]:::%s\n", moreID, hidden, classNeutral))
		chain = append(chain, moreID)
	}

	sb.WriteString("    end\n")

	for i := 0; i+1 < len(chain); i++ {
		*chainEdges = append(*chainEdges, fmt.Sprintf("%s --> %s", chain[i], chain[i+1]))
	}

	_, class := flowStyle(node)
	*classLines = append(*classLines, fmt.Sprintf("    class %s %s\n", node.ID, class))
}

// writeChildren recursively declares a container's children and links
// each one to its structural parent.
func (r *Renderer) writeChildren(sb *strings.Builder, flowID string, parent *mule.Component, chainEdges *[]string) {
	parentID := componentNodeID(flowID, parent)
	for _, child := range parent.Children {
		childID := componentNodeID(flowID, child)
		r.writeComponent(sb, childID, child)
		*chainEdges = append(*chainEdges, fmt.Sprintf("%s --> %s", parentID, childID))
		r.writeChildren(sb, flowID, child, chainEdges)
	}
}

// writeComponent declares a single component node inside a subgraph.
func (r *Renderer) writeComponent(sb *strings.Builder, id string, c *mule.Component) {
	label := c.Name
	if label == "" {
		label = c.Type
	}
	if label == "" {
		label = fallbackComponentLabel
	}
	shape, class := styleFor(c.Name, c.Type, c.TagName)
	sb.WriteString(fmt.Sprintf("        %s\n", nodeLine(id, r.label(label), shape, class)))
}

// componentNodeID derives a graph-wide unique id for a component node
// from its flow's id and its flow-scoped sequential id.
func componentNodeID(flowID string, c *mule.Component) string {
	return flowID + "_" + c.ID
}

// nodeLine formats one node declaration with its shape and style class.
func nodeLine(id, label string, shape boxShape, class string) string {
	var body string
	switch shape {
	case shapeStadium:
		body = fmt.Sprintf("%s([\"%s\"])", id, label)
	case shapeSubroutine:
		body = fmt.Sprintf("%s[[\"%s\"]]", id, label)
	case shapeDiamond:
		body = fmt.Sprintf("%s{\"%s\"}", id, label)
	case shapeRounded:
		body = fmt.Sprintf("%s(\"%s\")", id, label)
	default:
		body = fmt.Sprintf("%s[\"%s\"]", id, label)
	}
	return body + ":::" + class
}

// flowStyle classifies a flow box. Placeholders always render as dashed
// neutral rectangles; everything else goes through the shared keyword
// classifier on the declared name.
func flowStyle(node *graph.FlowNode) (boxShape, string) {
	if node.IsPlaceholder() {
		return shapeRect, classPlaceholder
	}
	return styleFor(node.Name, node.Type.String(), "")
}

// styleFor picks shape and style class by keyword matching on a node's
// name, type, and tag. Error and branching constructs win over the api
// match, which wins over connector and processor families.
func styleFor(name, typ, tag string) (boxShape, string) {
	lowered := strings.ToLower(name + " " + typ + " " + tag)
	switch {
	case strings.Contains(lowered, "error") || strings.Contains(lowered, "choice"):
		return shapeDiamond, classRed
	case strings.Contains(lowered, "api"):
		return shapeStadium, classTeal
	case hasToken(lowered, connectorTokens):
		return shapeSubroutine, classBlue
	case hasToken(lowered, processorTokens):
		return shapeRounded, classGreen
	default:
		return shapeRect, classNeutral
	}
}

// hasToken reports whether any wanted token appears as a whole word in
// the lowered text. Whole-word matching keeps "db" from matching inside
// unrelated names.
func hasToken(lowered string, wanted []string) bool {
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, tok := range tokens {
		for _, w := range wanted {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// label truncates then escapes text for safe embedding in a quoted
// Mermaid label.
func (r *Renderer) label(s string) string {
	return escapeLabel(truncateLabel(s, r.options.MaxLabelLength))
}

// escapeLabel rewrites characters that would break out of a quoted
// Mermaid label.
func escapeLabel(s string) string {
	replacer := strings.NewReplacer(
		"\"", "#quot;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}

// truncateLabel caps label text at max runes, ending with "...".
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// countLabel formats a component count for flow box labels.
func countLabel(n int) string {
	if n == 1 {
		return "1 component"
	}
	return fmt.Sprintf("%d components", n)
}
