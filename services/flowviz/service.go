// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package flowviz is the HTTP service surface for the Mule flow
// visualization engine. It loads Mule projects from disk, builds their
// flow graphs, caches them under deterministic IDs, and renders Mermaid
// diagrams on demand.
package flowviz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/MuleView/services/flowviz/graph"
	"github.com/AleutianAI/MuleView/services/flowviz/loader"
	"github.com/AleutianAI/MuleView/services/flowviz/mule"
	"github.com/AleutianAI/MuleView/services/flowviz/render"
)

// ServiceConfig holds configuration for the FlowViz service.
type ServiceConfig struct {
	// MaxInitDuration is the maximum time for graph initialization.
	MaxInitDuration time.Duration

	// MaxProjectFiles is the maximum number of files to load per project.
	MaxProjectFiles int

	// MaxFileSize is the per-file size cap in bytes.
	MaxFileSize int64

	// MaxCachedGraphs is the maximum number of graphs to keep in memory.
	MaxCachedGraphs int

	// GraphTTL is how long cached graphs remain valid (0 = no expiry).
	GraphTTL time.Duration

	// AllowedRoots restricts init to these path prefixes (empty = all).
	AllowedRoots []string
}

// DefaultServiceConfig returns the default service configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxInitDuration: 30 * time.Second,
		MaxProjectFiles: loader.DefaultMaxFiles,
		MaxFileSize:     loader.DefaultMaxFileSize,
		MaxCachedGraphs: 5,
		GraphTTL:        0,
	}
}

// Service manages the lifecycle of Mule flow graphs: loading projects,
// building graphs, caching them, and rendering diagrams.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The graph cache is guarded by
// a RWMutex and inits are serialized per project root.
type Service struct {
	config ServiceConfig

	mu     sync.RWMutex
	graphs map[string]*CachedGraph

	// initLocks holds one mutex per project root.
	initLocks sync.Map
}

// NewService creates a new FlowViz service.
//
// Inputs:
//
//	config - Service configuration
//
// Outputs:
//
//	*Service - The configured service
func NewService(config ServiceConfig) *Service {
	return &Service{
		config: config,
		graphs: make(map[string]*CachedGraph),
	}
}

// Init builds a flow graph for a Mule project.
//
// Description:
//
//	Loads the project's XML configuration files, extracts flows and
//	flow references, and caches the resulting graph. If a graph
//	already exists for the project, it is replaced.
//
// Inputs:
//
//	ctx - Context for cancellation
//	projectRoot - Absolute path to the project root
//	excludeDirs - Directory name patterns to skip (default: target, .git, ...)
//
// Outputs:
//
//	*InitResponse - Graph statistics and metadata
//	error - Non-nil if validation fails or loading fails
//
// Errors:
//
//	ErrRelativePath - Project root is not absolute
//	ErrPathTraversal - Project root contains .. sequences
//	ErrProjectTooLarge - Project exceeds configured limits
//	ErrInitInProgress - Another init is running for this project
//	ErrInitTimeout - Init took too long
func (s *Service) Init(ctx context.Context, projectRoot string, excludeDirs []string) (*InitResponse, error) {
	// Validate project root
	if err := s.validateProjectRoot(projectRoot); err != nil {
		return nil, err
	}

	// Get init lock for this project to prevent concurrent inits
	lock := s.getInitLock(projectRoot)
	if !lock.TryLock() {
		return nil, ErrInitInProgress
	}
	defer lock.Unlock()

	// Apply timeout
	if s.config.MaxInitDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.MaxInitDuration)
		defer cancel()
	}

	ctx, span := startInitSpan(ctx, projectRoot)
	defer span.End()

	start := time.Now()

	// Generate graph ID
	graphID := s.generateGraphID(projectRoot)

	// Check if we're replacing an existing graph
	s.mu.RLock()
	_, isRefresh := s.graphs[graphID]
	s.mu.RUnlock()
	var previousID string
	if isRefresh {
		previousID = graphID
	}

	loaded, result, err := s.buildProject(ctx, projectRoot, excludeDirs)
	recordInitMetrics(ctx, time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}

	// Merge loader and builder errors
	buildErrors := append([]string(nil), loaded.Errors...)
	for _, fe := range result.FileErrors {
		buildErrors = append(buildErrors, fe.Error())
	}

	g := result.Graph
	stats := g.Stats()
	setInitSpanResult(span, stats)

	slog.Info("flow graph built",
		slog.String("project_root", projectRoot),
		slog.Int("files", result.Stats.FilesProcessed),
		slog.Int("flows", stats.Flows),
		slog.Int("sub_flows", stats.SubFlows),
		slog.Int("components", stats.Components),
		slog.Int("edges", stats.Edges),
		slog.Int("placeholders", stats.Placeholders),
		slog.Int64("build_duration_ms", result.Stats.DurationMilli),
		slog.Bool("incomplete", result.Incomplete),
	)

	// Cache the graph
	cached := &CachedGraph{
		GraphID:      graphID,
		Graph:        g,
		Stats:        result.Stats,
		FilesSkipped: len(loaded.Skipped),
		BuiltAtMilli: time.Now().UnixMilli(),
		ProjectRoot:  projectRoot,
	}

	if s.config.GraphTTL > 0 {
		cached.ExpiresAtMilli = time.Now().Add(s.config.GraphTTL).UnixMilli()
	}

	s.mu.Lock()
	s.graphs[graphID] = cached
	s.evictIfNeeded()
	s.mu.Unlock()

	return &InitResponse{
		GraphID:      graphID,
		IsRefresh:    isRefresh,
		PreviousID:   previousID,
		FilesParsed:  result.Stats.FilesProcessed,
		FilesSkipped: len(loaded.Skipped),
		Flows:        stats.Flows,
		SubFlows:     stats.SubFlows,
		Components:   stats.Components,
		Edges:        stats.Edges,
		Placeholders: stats.Placeholders,
		ParseTimeMs:  time.Since(start).Milliseconds(),
		Errors:       buildErrors,
	}, nil
}

// buildProject loads the project files and builds a flow graph from them.
// Loader and builder failures are mapped onto the service sentinels.
func (s *Service) buildProject(ctx context.Context, projectRoot string, excludeDirs []string) (*loader.LoadResult, *graph.BuildResult, error) {
	loadOpts := []loader.Option{
		loader.WithMaxFiles(s.config.MaxProjectFiles),
		loader.WithMaxFileSize(s.config.MaxFileSize),
	}
	if len(excludeDirs) > 0 {
		loadOpts = append(loadOpts, loader.WithExcludeDirs(excludeDirs...))
	}

	loaded, err := loader.NewLoader(loadOpts...).Load(ctx, projectRoot)
	if err != nil {
		switch {
		case errors.Is(err, loader.ErrTooManyFiles):
			return nil, nil, fmt.Errorf("%w: %v", ErrProjectTooLarge, err)
		case errors.Is(err, context.DeadlineExceeded):
			return nil, nil, fmt.Errorf("%w after %s", ErrInitTimeout, s.config.MaxInitDuration)
		}
		return nil, nil, fmt.Errorf("loading project: %w", err)
	}

	result, err := graph.NewBuilder().Build(ctx, loaded.Files)
	if err != nil {
		return nil, nil, fmt.Errorf("building graph: %w", err)
	}

	// Cancellation surfaces as an incomplete result, not an error
	if result.Incomplete && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, nil, fmt.Errorf("%w after %s", ErrInitTimeout, s.config.MaxInitDuration)
	}

	return loaded, result, nil
}

// Render produces a Mermaid diagram for a cached graph.
//
// Description:
//
//	Resolves the requested mode against the graph size (auto becomes
//	simplified or detailed) and renders the flowchart text.
//
// Inputs:
//
//	ctx - Context for metrics
//	graphID - Graph to render; empty selects the most recently built
//	mode - Requested diagram mode
//	direction - Flowchart direction (TB, LR, BT, RL); empty uses TB
//	fenced - Wrap the output in a ```mermaid code fence
//
// Outputs:
//
//	*RenderResponse - Diagram text and the concrete mode used
//	error - ErrGraphNotInitialized or ErrGraphExpired
func (s *Service) Render(ctx context.Context, graphID string, mode render.Mode, direction string, fenced bool) (*RenderResponse, error) {
	cached, err := s.resolveGraph(graphID)
	if err != nil {
		return nil, err
	}

	r := render.NewRenderer(&render.RenderOptions{
		Direction: direction,
		Fenced:    fenced,
	})
	resolved := r.ResolveMode(cached.Graph, mode)
	diagram := r.Render(cached.Graph, resolved)

	recordRenderMetrics(ctx, resolved)

	return &RenderResponse{
		GraphID: cached.GraphID,
		Mode:    resolved.String(),
		Diagram: diagram,
	}, nil
}

// Preview builds and renders inline files without touching the cache.
//
// Description:
//
//	One-shot build and render for editor integrations: the graph is
//	built from the supplied markup, rendered, and discarded.
//
// Inputs:
//
//	ctx - Context for cancellation
//	files - Map of file path to raw Mule XML markup
//	mode - Requested diagram mode
//	direction - Flowchart direction; empty uses TB
//	fenced - Wrap the output in a ```mermaid code fence
//
// Outputs:
//
//	*PreviewResponse - Diagram text, concrete mode, and graph counts
//	error - ErrNoFiles if files is empty
func (s *Service) Preview(ctx context.Context, files map[string]string, mode render.Mode, direction string, fenced bool) (*PreviewResponse, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	result, err := graph.NewBuilder().Build(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}

	g := result.Graph
	stats := g.Stats()

	r := render.NewRenderer(&render.RenderOptions{
		Direction: direction,
		Fenced:    fenced,
	})
	resolved := r.ResolveMode(g, mode)
	diagram := r.Render(g, resolved)

	var buildErrors []string
	for _, fe := range result.FileErrors {
		buildErrors = append(buildErrors, fe.Error())
	}

	recordRenderMetrics(ctx, resolved)

	return &PreviewResponse{
		Mode:         resolved.String(),
		Diagram:      diagram,
		Flows:        stats.Flows + stats.SubFlows,
		Components:   stats.Components,
		Edges:        stats.Edges,
		Placeholders: stats.Placeholders,
		Errors:       buildErrors,
	}, nil
}

// ListFlows returns a summary row for every node in a cached graph.
func (s *Service) ListFlows(graphID string) (*ListFlowsResponse, error) {
	cached, err := s.resolveGraph(graphID)
	if err != nil {
		return nil, err
	}

	flows := make([]FlowSummary, 0, len(cached.Graph.Nodes))
	for _, n := range cached.Graph.Nodes {
		flows = append(flows, summarizeFlow(n))
	}

	return &ListFlowsResponse{
		GraphID: cached.GraphID,
		Count:   len(flows),
		Flows:   flows,
	}, nil
}

// GetFlow returns one flow with its full component tree plus the edges
// in and out of it. The flow is looked up by node ID first, then by
// declared name.
func (s *Service) GetFlow(graphID, flowID string) (*FlowDetailResponse, error) {
	cached, err := s.resolveGraph(graphID)
	if err != nil {
		return nil, err
	}

	g := cached.Graph
	node := g.Node(flowID)
	if node == nil {
		node = g.NodeByName(flowID)
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, flowID)
	}

	return &FlowDetailResponse{
		GraphID:      cached.GraphID,
		Flow:         node,
		References:   g.OutgoingEdges(node.ID),
		ReferencedBy: g.IncomingEdges(node.ID),
	}, nil
}

// DescribeGraph returns the full node and edge set of a cached graph.
func (s *Service) DescribeGraph(graphID string) (*GraphResponse, error) {
	cached, err := s.resolveGraph(graphID)
	if err != nil {
		return nil, err
	}

	return &GraphResponse{
		GraphID:      cached.GraphID,
		ProjectRoot:  cached.ProjectRoot,
		BuiltAtMilli: cached.BuiltAtMilli,
		Graph:        cached.Graph,
		Stats:        cached.Graph.Stats(),
	}, nil
}

// GetGraph retrieves a cached graph by ID.
//
// Outputs:
//
//	*CachedGraph - The cached graph
//	error - ErrGraphNotInitialized or ErrGraphExpired
func (s *Service) GetGraph(graphID string) (*CachedGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cached, ok := s.graphs[graphID]
	if !ok {
		return nil, ErrGraphNotInitialized
	}

	// Check expiry
	if cached.ExpiresAtMilli > 0 && time.Now().UnixMilli() > cached.ExpiresAtMilli {
		return nil, ErrGraphExpired
	}

	return cached, nil
}

// GraphCount returns the number of cached graphs.
func (s *Service) GraphCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.graphs)
}

// resolveGraph retrieves a graph by ID, falling back to the most
// recently built graph when the ID is empty.
func (s *Service) resolveGraph(graphID string) (*CachedGraph, error) {
	if graphID == "" {
		return s.latestGraph()
	}
	return s.GetGraph(graphID)
}

// latestGraph returns the most recently built cached graph.
func (s *Service) latestGraph() (*CachedGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *CachedGraph
	for _, cached := range s.graphs {
		if newest == nil || cached.BuiltAtMilli > newest.BuiltAtMilli {
			newest = cached
		}
	}
	if newest == nil {
		return nil, ErrGraphNotInitialized
	}
	if newest.ExpiresAtMilli > 0 && time.Now().UnixMilli() > newest.ExpiresAtMilli {
		return nil, ErrGraphExpired
	}
	return newest, nil
}

// validateProjectRoot validates the project root path.
func (s *Service) validateProjectRoot(projectRoot string) error {
	// Must be absolute
	if !filepath.IsAbs(projectRoot) {
		return ErrRelativePath
	}

	// No path traversal
	if strings.Contains(projectRoot, "..") {
		return ErrPathTraversal
	}

	// Resolve symlinks and verify still within allowed roots
	resolved, err := filepath.EvalSymlinks(projectRoot)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	// Check against allowlist if configured
	if len(s.config.AllowedRoots) > 0 {
		allowed := false
		for _, root := range s.config.AllowedRoots {
			if strings.HasPrefix(resolved, root) {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrPathTraversal
		}
	}

	return nil
}

// generateGraphID creates a deterministic ID for a project.
func (s *Service) generateGraphID(projectRoot string) string {
	hash := sha256.Sum256([]byte(projectRoot))
	return hex.EncodeToString(hash[:])[:16]
}

// getInitLock returns the init lock for a project.
func (s *Service) getInitLock(projectRoot string) *sync.Mutex {
	lock, _ := s.initLocks.LoadOrStore(projectRoot, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// evictIfNeeded removes graphs if over capacity. Caller must hold write lock.
func (s *Service) evictIfNeeded() {
	if s.config.MaxCachedGraphs <= 0 {
		return
	}
	for len(s.graphs) > s.config.MaxCachedGraphs {
		// Find oldest graph
		var oldestID string
		var oldestTime int64 = time.Now().UnixMilli()
		for id, cached := range s.graphs {
			if cached.BuiltAtMilli < oldestTime {
				oldestTime = cached.BuiltAtMilli
				oldestID = id
			}
		}
		if oldestID == "" {
			return
		}
		delete(s.graphs, oldestID)
	}
}

// summarizeFlow builds the listing row for one node.
func summarizeFlow(n *graph.FlowNode) FlowSummary {
	return FlowSummary{
		ID:         n.ID,
		Name:       n.Name,
		Type:       n.Type.String(),
		FilePath:   n.FilePath,
		Components: n.ComponentCount(),
		Icon:       flowIcon(n),
	}
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
