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

// CurrentConfigVersion is stamped into newly created config files so
// later releases can migrate old layouts.
const CurrentConfigVersion = "1"

type MuleViewConfig struct {
	// Meta: config file bookkeeping
	Meta MetaConfig `yaml:"meta"`

	// Render: default diagram settings applied when flags are omitted
	Render RenderConfig `yaml:"render"`

	// Loader: project scanning limits and exclusions
	Loader LoaderConfig `yaml:"loader"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

type RenderConfig struct {
	Mode      string `yaml:"mode"`      // auto, simplified, detailed, full-detailed
	Direction string `yaml:"direction"` // TB, LR, BT, RL
	Fenced    bool   `yaml:"fenced"`    // wrap output in a ```mermaid fence
}

type LoaderConfig struct {
	ExcludeDirs   []string `yaml:"exclude_dirs"`     // directory names never scanned
	MaxFileSizeMB int      `yaml:"max_file_size_mb"` // per-file cap, e.g. 10
	MaxFiles      int      `yaml:"max_files"`        // project-wide file cap
}

// MaxFileSizeBytes converts the configured megabyte cap to bytes. Zero
// or negative values return 0 so callers fall back to their own default.
func (c MuleViewConfig) MaxFileSizeBytes() int64 {
	if c.Loader.MaxFileSizeMB <= 0 {
		return 0
	}
	return int64(c.Loader.MaxFileSizeMB) << 20
}

func DefaultConfig() MuleViewConfig {
	return MuleViewConfig{
		Meta: MetaConfig{
			Version: CurrentConfigVersion,
		},
		Render: RenderConfig{
			Mode:      "auto",
			Direction: "TB",
			Fenced:    false,
		},
		Loader: LoaderConfig{
			ExcludeDirs:   []string{"target", ".git", ".mule", ".settings", ".idea", "node_modules"},
			MaxFileSizeMB: 10,
			MaxFiles:      5000,
		},
	}
}
