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
	"testing"

	"github.com/spf13/pflag"
)

// TestCommandRegistration verifies every subcommand hangs off the root.
func TestCommandRegistration(t *testing.T) {
	want := []string{"generate", "flows", "watch", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q is not registered on the root command", name)
		}
	}
}

// TestRootPersistentFlags verifies the global personality flag exists.
func TestRootPersistentFlags(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("personality") == nil {
		t.Error("root command is missing the --personality flag")
	}
}

// TestFlagDefaults pins the defaults users see in --help.
func TestFlagDefaults(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		flag    string
		wantDef string
	}{
		{"generate mode empty", "generate", "mode", ""},
		{"generate out empty", "generate", "out", ""},
		{"generate fenced off", "generate", "fenced", "false"},
		{"flows refs off", "flows", "refs", "false"},
		{"watch out default file", "watch", "out", "muleview.mmd"},
		{"watch debounce", "watch", "debounce", "200ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flag *pflag.Flag
			for _, c := range rootCmd.Commands() {
				if c.Name() == tt.cmd {
					flag = c.Flags().Lookup(tt.flag)
					break
				}
			}
			if flag == nil {
				t.Fatalf("flag %q not found on command %q", tt.flag, tt.cmd)
			}
			if flag.DefValue != tt.wantDef {
				t.Errorf("flag %q default = %q, want %q", tt.flag, flag.DefValue, tt.wantDef)
			}
		})
	}
}

// TestVersionMetadata makes sure the build stamps have usable defaults.
func TestVersionMetadata(t *testing.T) {
	if cliVersion == "" {
		t.Error("cliVersion must not be empty")
	}
	if cliCommit == "" {
		t.Error("cliCommit must not be empty")
	}
	if rootCmd.Version != cliVersion {
		t.Errorf("rootCmd.Version = %q, want %q", rootCmd.Version, cliVersion)
	}
}
