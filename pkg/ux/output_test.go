// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// Helper to capture stdout
func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// Helper to capture stderr
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render_Success(t *testing.T) {
	result := IconSuccess.Render()
	if result == "" {
		t.Error("expected non-empty result for IconSuccess")
	}
}

func TestIcon_Render_Warning(t *testing.T) {
	result := IconWarning.Render()
	if result == "" {
		t.Error("expected non-empty result for IconWarning")
	}
}

func TestIcon_Render_Error(t *testing.T) {
	result := IconError.Render()
	if result == "" {
		t.Error("expected non-empty result for IconError")
	}
}

func TestIcon_Render_Default(t *testing.T) {
	// Icons without specific styling render as themselves
	icons := []Icon{IconArrow, IconBullet}
	for _, icon := range icons {
		result := icon.Render()
		if result != string(icon) {
			t.Errorf("expected %q for %q, got %q", string(icon), icon, result)
		}
	}
}

// =============================================================================
// Title Tests
// =============================================================================

func TestTitle_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Title("Flow Diagram")
	})

	// In machine mode, Title should output nothing
	if output != "" {
		t.Errorf("expected no output in machine mode, got %q", output)
	}
}

func TestTitle_FullMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityFull)

	output := captureStdout(func() {
		Title("Flow Diagram")
	})

	if output == "" {
		t.Error("expected styled output in full mode")
	}
}

// =============================================================================
// Success / Warning / Error Tests
// =============================================================================

func TestSuccess_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Success("Diagram written")
	})

	if output != "OK: Diagram written\n" {
		t.Errorf("expected 'OK: Diagram written', got %q", output)
	}
}

func TestSuccess_MinimalMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMinimal)

	output := captureStdout(func() {
		Success("Diagram written")
	})

	if output == "" {
		t.Error("expected non-empty output in minimal mode")
	}
}

func TestWarning_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStderr(func() {
		Warning("unresolved flow reference")
	})

	if output != "WARN: unresolved flow reference\n" {
		t.Errorf("expected 'WARN: unresolved flow reference', got %q", output)
	}
}

func TestWarning_FullMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityFull)

	output := captureStdout(func() {
		Warning("unresolved flow reference")
	})

	if output == "" {
		t.Error("expected styled output in full mode")
	}
}

func TestError_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStderr(func() {
		Error("no Mule files found")
	})

	if output != "ERROR: no Mule files found\n" {
		t.Errorf("expected 'ERROR: no Mule files found', got %q", output)
	}
}

// =============================================================================
// Info / Muted Tests
// =============================================================================

func TestInfo_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Info("scanning src/main/mule")
	})

	if output != "scanning src/main/mule\n" {
		t.Errorf("expected plain message, got %q", output)
	}
}

func TestMuted_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Muted("3 files skipped")
	})

	// In machine mode, Muted should output nothing
	if output != "" {
		t.Errorf("expected no output in machine mode, got %q", output)
	}
}

func TestMuted_FullMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityFull)

	output := captureStdout(func() {
		Muted("3 files skipped")
	})

	if output == "" {
		t.Error("expected styled output in full mode")
	}
}

// =============================================================================
// Box Tests
// =============================================================================

func TestBox_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Box("Graph", "12 flows, 40 components")
	})

	if output != "Graph: 12 flows, 40 components\n" {
		t.Errorf("expected 'Graph: 12 flows, 40 components', got %q", output)
	}
}

func TestBox_FullMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityFull)

	output := captureStdout(func() {
		Box("Graph", "12 flows, 40 components")
	})

	if output == "" {
		t.Error("expected styled box output in full mode")
	}
}

// =============================================================================
// FileStatus Tests
// =============================================================================

func TestFileStatus_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		FileStatus("src/main/mule/api.xml", IconSuccess, "4 flows")
	})

	if output != "✓\tsrc/main/mule/api.xml\t4 flows\n" {
		t.Errorf("expected tab-separated output, got %q", output)
	}
}

func TestFileStatus_FullMode_WithReason(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityFull)

	output := captureStdout(func() {
		FileStatus("src/main/mule/api.xml", IconWarning, "parse failure")
	})

	if output == "" {
		t.Error("expected styled output with reason in full mode")
	}
}

func TestFileStatus_FullMode_NoReason(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityFull)

	output := captureStdout(func() {
		FileStatus("src/main/mule/api.xml", IconSuccess, "")
	})

	if output == "" {
		t.Error("expected styled output without reason in full mode")
	}
}

// =============================================================================
// Summary Tests
// =============================================================================

func TestSummary_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Summary(5, 23, 8, 1)
	})

	if output != "SUMMARY: flows=5 components=23 edges=8 unresolved=1\n" {
		t.Errorf("expected machine format summary, got %q", output)
	}
}

func TestSummary_FullMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityFull)

	output := captureStdout(func() {
		Summary(10, 42, 15, 0)
	})

	if output == "" {
		t.Error("expected styled summary output in full mode")
	}
}

// =============================================================================
// KeyValue Tests
// =============================================================================

func TestKeyValue_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		KeyValue("mode", "detailed")
	})

	if output != "mode=detailed\n" {
		t.Errorf("expected 'mode=detailed', got %q", output)
	}
}

func TestKeyValue_FullMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonalityLevel(orig.Level)

	SetPersonalityLevel(PersonalityFull)

	output := captureStdout(func() {
		KeyValue("mode", "detailed")
	})

	if output == "" {
		t.Error("expected styled key/value output in full mode")
	}
}

// =============================================================================
// Style Constants Tests
// =============================================================================

func TestColorConstants(t *testing.T) {
	colors := []interface{}{
		ColorTealBright,
		ColorTealPrimary,
		ColorTealDeep,
		ColorSlate,
		ColorSuccess,
		ColorWarning,
		ColorError,
	}

	for i, c := range colors {
		if c == nil {
			t.Errorf("color at index %d is nil", i)
		}
	}
}

func TestIconConstants(t *testing.T) {
	icons := map[string]Icon{
		"Success": IconSuccess,
		"Warning": IconWarning,
		"Error":   IconError,
		"Pending": IconPending,
		"Arrow":   IconArrow,
		"Bullet":  IconBullet,
	}

	for name, icon := range icons {
		if string(icon) == "" {
			t.Errorf("icon %s is empty", name)
		}
	}
}
