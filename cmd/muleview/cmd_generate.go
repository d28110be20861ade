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
	"time"

	"github.com/AleutianAI/MuleView/cmd/muleview/config"
	"github.com/AleutianAI/MuleView/pkg/ux"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	generateMode        string   // Diagram mode override
	generateDirection   string   // Graph direction override
	generateOut         string   // Output file, empty means stdout
	generateFenced      bool     // Wrap in a markdown code fence
	generateExcludeDirs []string // Directory names to skip
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// generateCmd renders a Mule project into a Mermaid diagram.
//
// # Description
//
// Scans the project for Mule configuration XML, builds the flow graph,
// and emits a Mermaid flowchart. Mode auto picks a density based on
// graph size; large projects degrade to the simplified view so the
// output stays renderable.
//
// # Examples
//
//	muleview generate                          # Current directory to stdout
//	muleview generate ./my-app --out flows.mmd # Write to a file
//	muleview generate --mode full-detailed     # Expand nested components
//	muleview generate --direction LR --fenced  # Markdown-ready output
//
// # Limitations
//
//   - Files that fail to parse are reported as warnings and skipped;
//     the diagram covers whatever parsed.
var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate a Mermaid diagram from a Mule project",
	Long: `Generate builds the flow graph for a Mule project and renders it as a
Mermaid flowchart.

The diagram lands on stdout unless --out names a file, so the output can
be piped straight into other tools:

  muleview generate ./my-app | mmdc -o flows.svg

Examples:
  muleview generate ./my-app
  muleview generate ./my-app --mode detailed --out flows.mmd
  muleview generate ./my-app --direction LR --fenced`,
	Args: cobra.MaximumNArgs(1),
	Run:  runGenerateCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	generateCmd.Flags().StringVarP(&generateMode, "mode", "m", "",
		"Diagram mode: auto, simplified, detailed, full-detailed (default from user config)")
	generateCmd.Flags().StringVarP(&generateDirection, "direction", "d", "",
		"Graph direction: TB, LR, BT, RL (default from user config)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "",
		"Write the diagram to a file instead of stdout")
	generateCmd.Flags().BoolVar(&generateFenced, "fenced", false,
		"Wrap the diagram in a ```mermaid code fence")
	generateCmd.Flags().StringSliceVar(&generateExcludeDirs, "exclude", nil,
		"Directory names to skip (overrides user config)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runGenerateCommand loads the project, builds the graph, and renders it.
//
// Per-file parse failures are warnings, not errors: partially broken
// projects still get a diagram of everything that parsed, and the command
// exits 0. Only whole-project failures (unreadable root, file cap
// exceeded, invalid mode) exit non-zero.
func runGenerateCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	root, err := projectPath(args)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	modeStr := resolveSetting(generateMode, config.Global.Render.Mode, "auto")
	direction := resolveSetting(generateDirection, config.Global.Render.Direction, "TB")
	fenced := generateFenced
	if !cmd.Flags().Changed("fenced") {
		fenced = config.Global.Render.Fenced
	}

	ux.Title("MuleView")
	ux.Muted(root)

	loaded, built, err := loadProject(ctx, root, resolveExcludes(generateExcludeDirs))
	if err != nil {
		ux.Error(fmt.Sprintf("Failed to build flow graph: %v", err))
		os.Exit(1)
	}
	warnFileIssues(loaded, built)

	stats := built.Graph.Stats()
	if stats.Flows+stats.SubFlows == 0 {
		ux.Warning(fmt.Sprintf("No flows found under %s", root))
	}

	diagram, resolvedMode, err := renderDiagram(built.Graph, modeStr, direction, fenced)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	if generateOut != "" {
		if err := os.WriteFile(generateOut, []byte(diagram), 0644); err != nil {
			ux.Error(fmt.Sprintf("Failed to write %s: %v", generateOut, err))
			os.Exit(1)
		}
		ux.Success(fmt.Sprintf("Diagram written to %s (%s)", generateOut, resolvedMode))
		ux.Summary(stats.Flows+stats.SubFlows, stats.Components, stats.Edges, stats.Placeholders)
		return
	}

	fmt.Print(diagram)
	if ux.GetPersonality().Level != ux.PersonalityMachine {
		ux.Summary(stats.Flows+stats.SubFlows, stats.Components, stats.Edges, stats.Placeholders)
	}
}
