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
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/MuleView/cmd/muleview/config"
	"github.com/AleutianAI/MuleView/pkg/ux"
	"github.com/AleutianAI/MuleView/services/flowviz/loader"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	watchMode        string        // Diagram mode override
	watchDirection   string        // Graph direction override
	watchOut         string        // Output file, rewritten on every change
	watchFenced      bool          // Wrap in a markdown code fence
	watchDebounce    time.Duration // Event batching window
	watchExcludeDirs []string      // Directory names to skip
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// watchCmd regenerates the diagram whenever the project changes.
//
// # Description
//
// Runs an initial generation, then watches the project tree for XML
// changes and rewrites the output file after each debounced batch.
// Regeneration failures are reported and watching continues, so a
// half-saved file does not kill the session.
//
// # Examples
//
//	muleview watch ./my-app
//	muleview watch ./my-app --out docs/flows.mmd --mode detailed
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Regenerate the diagram on every project change",
	Long: `Watch keeps a Mermaid diagram in sync with a Mule project. It performs
one generation up front, then rewrites the output file whenever
configuration XML under the project changes. Press Ctrl-C to stop.

Examples:
  muleview watch ./my-app
  muleview watch ./my-app --out docs/flows.mmd --debounce 500ms`,
	Args: cobra.MaximumNArgs(1),
	Run:  runWatchCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	watchCmd.Flags().StringVarP(&watchMode, "mode", "m", "",
		"Diagram mode: auto, simplified, detailed, full-detailed (default from user config)")
	watchCmd.Flags().StringVarP(&watchDirection, "direction", "d", "",
		"Graph direction: TB, LR, BT, RL (default from user config)")
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "muleview.mmd",
		"File rewritten after every change")
	watchCmd.Flags().BoolVar(&watchFenced, "fenced", false,
		"Wrap the diagram in a ```mermaid code fence")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond,
		"Batching window for rapid change bursts")
	watchCmd.Flags().StringSliceVar(&watchExcludeDirs, "exclude", nil,
		"Directory names to skip (overrides user config)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runWatchCommand(cmd *cobra.Command, args []string) {
	root, err := projectPath(args)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	modeStr := resolveSetting(watchMode, config.Global.Render.Mode, "auto")
	direction := resolveSetting(watchDirection, config.Global.Render.Direction, "TB")
	fenced := watchFenced
	if !cmd.Flags().Changed("fenced") {
		fenced = config.Global.Render.Fenced
	}
	excludes := resolveExcludes(watchExcludeDirs)

	ux.Title("MuleView Watch")
	ux.Muted(root)

	// One generation up front so the output exists before the first edit.
	if err := regenerateDiagram(root, excludes, modeStr, direction, fenced, watchOut); err != nil {
		ux.Error(fmt.Sprintf("Initial generation failed: %v", err))
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("Diagram written to %s", watchOut))

	handler := func(changes []loader.Change) {
		ux.Info(fmt.Sprintf("%s, regenerating", changeSummary(len(changes))))
		if err := regenerateDiagram(root, excludes, modeStr, direction, fenced, watchOut); err != nil {
			ux.Error(fmt.Sprintf("Regeneration failed: %v", err))
			return
		}
		ux.Success(fmt.Sprintf("Updated %s at %s", watchOut, time.Now().Format("15:04:05")))
	}

	watcher, err := loader.NewWatcher(root, handler, &loader.WatcherOptions{
		DebounceWindow: watchDebounce,
		ExcludeDirs:    excludes,
	})
	if err != nil {
		ux.Error(fmt.Sprintf("Failed to create watcher: %v", err))
		os.Exit(1)
	}
	if err := watcher.Start(); err != nil {
		ux.Error(fmt.Sprintf("Failed to start watcher: %v", err))
		os.Exit(1)
	}
	defer watcher.Stop()

	ux.Info("Watching for changes. Press Ctrl-C to stop.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ux.Muted("Watch stopped.")
}

// regenerateDiagram rebuilds the graph and rewrites the output file. Each
// run gets its own timeout so one stuck generation cannot wedge the
// watch loop.
func regenerateDiagram(root string, excludes []string, modeStr, direction string, fenced bool, out string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	loaded, built, err := loadProject(ctx, root, excludes)
	if err != nil {
		return err
	}
	warnFileIssues(loaded, built)

	diagram, _, err := renderDiagram(built.Graph, modeStr, direction, fenced)
	if err != nil {
		return err
	}
	return os.WriteFile(out, []byte(diagram), 0644)
}
