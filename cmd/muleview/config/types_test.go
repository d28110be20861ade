// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import "testing"

// TestDefaultConfig verifies the shipped defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Meta.Version != CurrentConfigVersion {
		t.Errorf("Meta.Version = %q, want %q", cfg.Meta.Version, CurrentConfigVersion)
	}
	if cfg.Render.Mode != "auto" {
		t.Errorf("Render.Mode = %q, want %q", cfg.Render.Mode, "auto")
	}
	if cfg.Render.Direction != "TB" {
		t.Errorf("Render.Direction = %q, want %q", cfg.Render.Direction, "TB")
	}
	if cfg.Render.Fenced {
		t.Error("Render.Fenced = true, want false")
	}
	if cfg.Loader.MaxFileSizeMB != 10 {
		t.Errorf("Loader.MaxFileSizeMB = %d, want 10", cfg.Loader.MaxFileSizeMB)
	}
	if cfg.Loader.MaxFiles != 5000 {
		t.Errorf("Loader.MaxFiles = %d, want 5000", cfg.Loader.MaxFiles)
	}

	wantExcluded := map[string]bool{"target": true, ".git": true, "node_modules": true}
	for _, dir := range cfg.Loader.ExcludeDirs {
		delete(wantExcluded, dir)
	}
	if len(wantExcluded) != 0 {
		t.Errorf("Loader.ExcludeDirs missing %v", wantExcluded)
	}
}

// TestMaxFileSizeBytes verifies the megabyte-to-byte conversion.
func TestMaxFileSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		mb   int
		want int64
	}{
		{"default ten megabytes", 10, 10 << 20},
		{"one megabyte", 1, 1 << 20},
		{"zero falls back", 0, 0},
		{"negative falls back", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MuleViewConfig{Loader: LoaderConfig{MaxFileSizeMB: tt.mb}}
			if got := cfg.MaxFileSizeBytes(); got != tt.want {
				t.Errorf("MaxFileSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}
