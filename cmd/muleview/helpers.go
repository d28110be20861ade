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
	"path/filepath"

	"github.com/AleutianAI/MuleView/cmd/muleview/config"
	"github.com/AleutianAI/MuleView/pkg/ux"
	"github.com/AleutianAI/MuleView/services/flowviz/graph"
	"github.com/AleutianAI/MuleView/services/flowviz/loader"
	"github.com/AleutianAI/MuleView/services/flowviz/mule"
	"github.com/AleutianAI/MuleView/services/flowviz/render"
)

// projectPath resolves the optional positional argument to an absolute
// project root. No argument means the current directory.
func projectPath(args []string) (string, error) {
	root := "."
	if len(args) > 0 && args[0] != "" {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving project path %q: %w", root, err)
	}
	return abs, nil
}

// resolveSetting returns the first non-empty value. Used to layer
// flag > user config > built-in default.
func resolveSetting(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveExcludes returns the flag value when given, otherwise the
// user-config exclusion list.
func resolveExcludes(flagVal []string) []string {
	if len(flagVal) > 0 {
		return flagVal
	}
	return config.Global.Loader.ExcludeDirs
}

// loadProject loads Mule configuration files under root and builds the
// flow graph. Per-file problems are reported by the caller via
// warnFileIssues; only whole-project failures return an error.
func loadProject(ctx context.Context, root string, excludeDirs []string) (*loader.LoadResult, *graph.BuildResult, error) {
	var opts []loader.Option
	if len(excludeDirs) > 0 {
		opts = append(opts, loader.WithExcludeDirs(excludeDirs...))
	}
	if n := config.Global.Loader.MaxFiles; n > 0 {
		opts = append(opts, loader.WithMaxFiles(n))
	}
	if n := config.Global.MaxFileSizeBytes(); n > 0 {
		opts = append(opts, loader.WithMaxFileSize(n))
	}

	loaded, err := loader.NewLoader(opts...).Load(ctx, root)
	if err != nil {
		return nil, nil, err
	}

	built, err := graph.NewBuilder().Build(ctx, loaded.Files)
	if err != nil {
		return nil, nil, err
	}
	return loaded, built, nil
}

// warnFileIssues prints skipped files and per-file failures. These never
// abort a command; the graph is simply built from what parsed.
func warnFileIssues(loaded *loader.LoadResult, built *graph.BuildResult) {
	for _, path := range loaded.Skipped {
		ux.FileStatus(path, ux.IconWarning, "exceeds size cap, skipped")
	}
	for _, msg := range loaded.Errors {
		ux.Warning(msg)
	}
	for _, fe := range built.FileErrors {
		ux.Warning(fe.Error())
	}
}

// renderDiagram renders the graph and reports the concrete mode used,
// which matters when the requested mode is auto.
func renderDiagram(g *graph.Graph, modeStr, direction string, fenced bool) (string, render.Mode, error) {
	mode, err := render.ParseMode(modeStr)
	if err != nil {
		return "", mode, err
	}
	r := render.NewRenderer(&render.RenderOptions{
		Direction: direction,
		Fenced:    fenced,
	})
	resolved := r.ResolveMode(g, mode)
	return r.Render(g, mode), resolved, nil
}

// flowIcon picks the display glyph for a node. Flows that start with a
// trigger component borrow its icon; everything else gets a type glyph.
func flowIcon(n *graph.FlowNode) string {
	if len(n.Components) > 0 && n.Components[0].Icon != "" {
		return n.Components[0].Icon
	}
	switch n.Type {
	case mule.FlowTypeFlow:
		return "🔄"
	case mule.FlowTypeSubFlow:
		return "🔗"
	}
	return "❓"
}

// targetLabel names an edge target for listings. Unresolved targets are
// flagged so dangling flow-refs stand out.
func targetLabel(g *graph.Graph, e graph.Edge) string {
	target := g.Node(e.To)
	if target == nil {
		return e.To
	}
	if target.IsPlaceholder() {
		return target.Name + " (unresolved)"
	}
	return target.Name
}

// changeSummary describes a watch batch.
func changeSummary(n int) string {
	if n == 1 {
		return "1 file changed"
	}
	return fmt.Sprintf("%d files changed", n)
}
