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
	"fmt"
	"log/slog"
	"os"

	"github.com/AleutianAI/MuleView/cmd/muleview/config"
	"github.com/AleutianAI/MuleView/pkg/logging"
	"github.com/AleutianAI/MuleView/pkg/ux"
	"github.com/spf13/cobra"
)

// Version metadata, overridable at build time via -ldflags.
var (
	cliVersion = "0.1.0"
	cliCommit  = "dev"
)

// --- Global Command Variables ---
var (
	personalityLevel string // UX personality level (full/minimal/machine)

	cliLogger *logging.Logger // Diagnostics logger, installed as the slog default

	rootCmd = &cobra.Command{
		Use:   "muleview",
		Short: "Extract and diagram Mule application flows",
		Long: `MuleView parses Mule configuration XML into a flow graph and renders
it as Mermaid diagrams. Point it at a Mule project directory and it will
discover flows, sub-flows, and the references between them.`,
		Version: cliVersion,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize UX personality from flag or environment
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}
			// Diagnostics go to ~/.muleview/logs. Stderr logging stays off
			// while styled output owns the terminal; machine personality
			// gets plain stderr diagnostics alongside parseable stdout.
			logCfg := logging.Config{
				Level:   logging.LevelInfo,
				LogDir:  "~/.muleview/logs",
				Service: "muleview",
				Quiet:   ux.GetPersonality().Level != ux.PersonalityMachine,
			}
			if lvl, ok := logging.ParseLevel(os.Getenv("MULEVIEW_LOG_LEVEL")); ok {
				logCfg.Level = lvl
			}
			cliLogger = logging.New(logCfg)
			slog.SetDefault(cliLogger.Slog())
			// User config supplies defaults for omitted flags
			if err := config.Load(); err != nil {
				ux.Warning(fmt.Sprintf("Could not load user config: %v (using defaults)", err))
				config.Global = config.DefaultConfig()
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cliLogger != nil {
				_ = cliLogger.Close()
			}
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the muleview version and commit",
		Run:   runVersionCommand,
	}
)

// init runs when the Go program starts
func init() {
	// Global UX personality flag
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full (default, rich), minimal, or machine (scripting)")

	rootCmd.AddCommand(generateCmd) // Defined in cmd_generate.go
	rootCmd.AddCommand(flowsCmd)    // Defined in cmd_flows.go
	rootCmd.AddCommand(watchCmd)    // Defined in cmd_watch.go
	rootCmd.AddCommand(versionCmd)
}

func runVersionCommand(cmd *cobra.Command, args []string) {
	fmt.Printf("muleview %s (commit %s)\n", cliVersion, cliCommit)
}
