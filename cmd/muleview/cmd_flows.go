// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/AleutianAI/MuleView/pkg/ux"
	"github.com/AleutianAI/MuleView/services/flowviz/graph"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	flowsRefs        bool     // Also list flow-ref references
	flowsExcludeDirs []string // Directory names to skip
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// flowsCmd lists every flow discovered in a Mule project.
//
// # Description
//
// Builds the flow graph and prints one row per flow, sub-flow, and
// unresolved reference target. With --refs the flow-ref edges are
// listed too, flagging references whose target was never found.
//
// # Examples
//
//	muleview flows ./my-app
//	muleview flows ./my-app --refs
var flowsCmd = &cobra.Command{
	Use:   "flows [path]",
	Short: "List the flows and sub-flows in a Mule project",
	Long: `Flows scans a Mule project and lists every flow and sub-flow with its
type, source file, and component count. Targets of dangling flow-refs
appear as unknown entries.

Examples:
  muleview flows ./my-app
  muleview flows ./my-app --refs`,
	Args: cobra.MaximumNArgs(1),
	Run:  runFlowsCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	flowsCmd.Flags().BoolVar(&flowsRefs, "refs", false,
		"Also list flow-ref references between flows")
	flowsCmd.Flags().StringSliceVar(&flowsExcludeDirs, "exclude", nil,
		"Directory names to skip (overrides user config)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runFlowsCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	root, err := projectPath(args)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	ux.Title("MuleView")
	ux.Muted(root)

	loaded, built, err := loadProject(ctx, root, resolveExcludes(flowsExcludeDirs))
	if err != nil {
		ux.Error(fmt.Sprintf("Failed to build flow graph: %v", err))
		os.Exit(1)
	}
	warnFileIssues(loaded, built)

	if len(built.Graph.Nodes) == 0 {
		ux.Warning(fmt.Sprintf("No flows found under %s", root))
		return
	}

	printFlowTable(built.Graph)
	if flowsRefs {
		printReferences(built.Graph)
	}

	stats := built.Graph.Stats()
	ux.Summary(stats.Flows+stats.SubFlows, stats.Components, stats.Edges, stats.Placeholders)
}

// =============================================================================
// OUTPUT FORMATTING
// =============================================================================

// printFlowTable writes one row per node. Machine personality emits raw
// tab-separated fields without icons; everything else gets an aligned
// table. Styling stays out of the table cells because ANSI escapes throw
// off tabwriter's width accounting.
func printFlowTable(g *graph.Graph) {
	if ux.GetPersonality().Level == ux.PersonalityMachine {
		for _, n := range g.Nodes {
			fmt.Printf("%s\t%s\t%s\t%d\n", n.Name, n.Type, n.FilePath, n.ComponentCount())
		}
		return
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "   NAME\tTYPE\tFILE\tCOMPONENTS")
	for _, n := range g.Nodes {
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%d\n",
			flowIcon(n), n.Name, n.Type, n.FilePath, n.ComponentCount())
	}
	w.Flush()
}

// printReferences lists every flow-ref edge, source to target.
func printReferences(g *graph.Graph) {
	if len(g.Edges) == 0 {
		ux.Muted("No flow references.")
		return
	}

	machine := ux.GetPersonality().Level == ux.PersonalityMachine
	if !machine {
		fmt.Println()
		fmt.Println(ux.Styles.Subtitle.Render("References"))
	}
	for _, e := range g.Edges {
		srcName := e.From
		if src := g.Node(e.From); src != nil {
			srcName = src.Name
		}
		if machine {
			fmt.Printf("REF\t%s\t%s\n", srcName, targetLabel(g, e))
		} else {
			fmt.Printf("  %s %s %s\n", srcName, ux.IconArrow.Render(), targetLabel(g, e))
		}
	}
}
