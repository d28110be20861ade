// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/MuleView/services/flowviz/mule"
)

// ProgressPhase indicates which phase of building is in progress.
type ProgressPhase int

const (
	// ProgressPhaseCollecting indicates flows are being extracted and
	// registered as nodes.
	ProgressPhaseCollecting ProgressPhase = iota

	// ProgressPhaseLinking indicates flow references are being resolved
	// into edges.
	ProgressPhaseLinking

	// ProgressPhaseFinalizing indicates statistics are being computed.
	ProgressPhaseFinalizing
)

// String returns the string representation of the ProgressPhase.
func (p ProgressPhase) String() string {
	switch p {
	case ProgressPhaseCollecting:
		return "collecting"
	case ProgressPhaseLinking:
		return "linking"
	case ProgressPhaseFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// BuildProgress contains progress information during a build.
type BuildProgress struct {
	// Phase is the current build phase.
	Phase ProgressPhase

	// ItemsTotal is the number of items in the current phase: files while
	// collecting, declared flows while linking.
	ItemsTotal int

	// ItemsProcessed is the number of items processed so far.
	ItemsProcessed int

	// NodesCreated is the number of nodes created so far.
	NodesCreated int

	// EdgesCreated is the number of edges created so far.
	EdgesCreated int
}

// ProgressFunc is a callback function for build progress updates.
type ProgressFunc func(progress BuildProgress)

// BuilderOptions configures Builder behavior.
type BuilderOptions struct {
	// ProgressCallback is called after each processed item. May be nil.
	ProgressCallback ProgressFunc

	// Logger receives diagnostics about skipped files and unresolved
	// references. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultBuilderOptions returns sensible defaults.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		Logger: slog.Default(),
	}
}

// BuilderOption is a functional option for configuring Builder.
type BuilderOption func(*BuilderOptions)

// WithProgressCallback sets the progress callback function.
func WithProgressCallback(fn ProgressFunc) BuilderOption {
	return func(o *BuilderOptions) {
		o.ProgressCallback = fn
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(o *BuilderOptions) {
		o.Logger = logger
	}
}

// Builder constructs flow graphs from Mule configuration files.
//
// The builder is stateless and can be reused across multiple builds.
// Each Build() call creates a new graph.
//
// Thread Safety:
//
//	Builder is safe for concurrent use. Each Build() call operates
//	independently with its own internal state.
type Builder struct {
	options BuilderOptions
}

// NewBuilder creates a new Builder with the given options.
//
// Example:
//
//	builder := NewBuilder(
//	    WithProgressCallback(func(p BuildProgress) { fmt.Println(p.Phase) }),
//	)
func NewBuilder(opts ...BuilderOption) *Builder {
	options := DefaultBuilderOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Builder{
		options: options,
	}
}

// nodeKey identifies a declared flow by file and name. Registration is
// idempotent per key.
type nodeKey struct {
	filePath string
	name     string
}

// buildState holds mutable state during a single build operation.
type buildState struct {
	graph        *Graph
	result       *BuildResult
	byKey        map[nodeKey]*FlowNode
	byName       map[string]*FlowNode
	placeholders map[string]*FlowNode
	usedIDs      map[string]bool
	bodies       map[*FlowNode]string
	startTime    time.Time
}

// Build constructs a flow graph from the given files, keyed by path with
// raw file content as values.
//
// Description:
//
//	Registers every flow and sub-flow as a node, then resolves every
//	flow reference into an edge. References that never resolve to a
//	declared flow get a synthetic placeholder node so no edge is
//	dropped. The build is resilient to individual file failures;
//	partial results are returned even on errors.
//
// Inputs:
//
//	ctx - Context for cancellation. Build checks context per item.
//	files - File path to raw content. Paths are processed in sorted
//	order so builds are deterministic regardless of map iteration.
//
// Outputs:
//
//	*BuildResult - Contains the graph, any errors, and build statistics.
//	error - Always nil today. Cancellation marks the result Incomplete
//	instead of failing the build.
//
// Build Phases:
//
//  1. COLLECT: Extract flows from every file and register them as nodes
//  2. LINK: Resolve flow references into edges, minting placeholders
//  3. FINALIZE: Compute statistics
func (b *Builder) Build(ctx context.Context, files map[string]string) (*BuildResult, error) {
	ctx, span := startBuildSpan(ctx, len(files))
	defer span.End()

	state := &buildState{
		graph: &Graph{
			Nodes: make([]*FlowNode, 0),
			Edges: make([]Edge, 0),
		},
		result: &BuildResult{
			FileErrors: make([]FileError, 0),
		},
		byKey:        make(map[nodeKey]*FlowNode),
		byName:       make(map[string]*FlowNode),
		placeholders: make(map[string]*FlowNode),
		usedIDs:      make(map[string]bool),
		bodies:       make(map[*FlowNode]string),
		startTime:    time.Now(),
	}
	state.result.Graph = state.graph

	// Phase 1: Register declared flows as nodes
	if err := b.collectPhase(ctx, state, files); err != nil {
		return b.finishIncomplete(ctx, span, state), nil
	}

	// Phase 2: Resolve references into edges
	if err := b.linkPhase(ctx, state); err != nil {
		return b.finishIncomplete(ctx, span, state), nil
	}

	// Phase 3: Finalize
	duration := time.Since(state.startTime)
	state.result.Stats.DurationMilli = duration.Milliseconds()
	state.result.Stats.DurationMicro = duration.Microseconds()

	b.reportProgress(state, ProgressPhaseFinalizing, len(files), len(files))

	setBuildSpanResult(span, len(state.graph.Nodes), len(state.graph.Edges), false)
	recordBuildMetrics(ctx, duration, len(state.graph.Nodes), len(state.graph.Edges), true)

	return state.result, nil
}

// finishIncomplete stamps a cancelled build's partial result.
func (b *Builder) finishIncomplete(ctx context.Context, span trace.Span, state *buildState) *BuildResult {
	state.result.Incomplete = true
	duration := time.Since(state.startTime)
	state.result.Stats.DurationMilli = duration.Milliseconds()
	state.result.Stats.DurationMicro = duration.Microseconds()
	setBuildSpanResult(span, len(state.graph.Nodes), len(state.graph.Edges), true)
	recordBuildMetrics(ctx, duration, len(state.graph.Nodes), len(state.graph.Edges), false)
	return state.result
}

// collectPhase extracts flows from every file and registers them as nodes.
// Files are visited in sorted path order.
func (b *Builder) collectPhase(ctx context.Context, state *buildState, files map[string]string) error {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for i, path := range paths {
		if ctx.Err() != nil {
			b.options.Logger.Debug("graph build cancelled while collecting",
				slog.Int("files_processed", i),
				slog.Int("files_total", len(paths)),
			)
			return ErrBuildCancelled
		}

		if err := b.processFile(state, path, files[path]); err != nil {
			state.result.FileErrors = append(state.result.FileErrors, FileError{
				FilePath: path,
				Err:      err,
			})
			state.result.Stats.FilesFailed++
			b.options.Logger.Warn("skipping file after extraction failure",
				slog.String("file", path),
				slog.Any("error", err),
			)
		}

		state.result.Stats.FilesProcessed++
		b.reportProgress(state, ProgressPhaseCollecting, len(paths), i+1)
	}

	return nil
}

// processFile extracts and registers every flow in one file. A panic in
// extraction is converted to an error so one bad file cannot take down
// the whole build.
func (b *Builder) processFile(state *buildState, path, content string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("flow extraction panicked: %v", r)
		}
	}()

	for _, def := range mule.ExtractFlows(path, content) {
		b.registerFlow(state, def)
	}
	return nil
}

// registerFlow adds one declared flow to the graph. Registering the same
// (file, name) pair again is a no-op; the first registration keeps its
// node, body, and name binding.
func (b *Builder) registerFlow(state *buildState, def mule.FlowDefinition) {
	key := nodeKey{filePath: def.FilePath, name: def.Name}
	if _, exists := state.byKey[key]; exists {
		return
	}

	node := &FlowNode{
		ID:         b.uniqueID(state, def.Name),
		Name:       def.Name,
		FilePath:   def.FilePath,
		Type:       def.Type,
		Components: def.Components,
	}
	state.graph.Nodes = append(state.graph.Nodes, node)
	state.byKey[key] = node
	if _, taken := state.byName[def.Name]; !taken {
		state.byName[def.Name] = node
	}
	state.bodies[node] = def.Body

	state.result.Stats.FlowsExtracted++
	state.result.Stats.ComponentsExtracted += mule.TotalCount(def.Components)
}

// uniqueID returns a graph-unique id for the given flow name, appending a
// numeric suffix when the sanitized base is already taken.
func (b *Builder) uniqueID(state *buildState, name string) string {
	base := sanitizeID(name)
	id := base
	for n := 2; state.usedIDs[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	state.usedIDs[id] = true
	return id
}

// linkPhase resolves every flow reference into an edge. References to
// names that were never declared resolve to shared placeholder nodes.
func (b *Builder) linkPhase(ctx context.Context, state *buildState) error {
	// Snapshot before placeholders start appending to graph.Nodes.
	declared := state.graph.Nodes

	for i, source := range declared {
		if ctx.Err() != nil {
			b.options.Logger.Debug("graph build cancelled while linking",
				slog.Int("flows_processed", i),
				slog.Int("flows_total", len(declared)),
			)
			return ErrBuildCancelled
		}

		for _, refName := range mule.ReferencedFlows(state.bodies[source]) {
			target := b.resolveTarget(ctx, state, refName)
			state.graph.Edges = append(state.graph.Edges, Edge{
				From:       source.ID,
				To:         target.ID,
				SourceFile: source.FilePath,
				TargetFile: target.FilePath,
			})
			state.result.Stats.EdgesCreated++
		}

		b.reportProgress(state, ProgressPhaseLinking, len(declared), i+1)
	}

	return nil
}

// resolveTarget returns the node a reference points at. Resolution order:
// first-registered declared flow with that name, then an existing
// placeholder, then a freshly minted placeholder shared by all later
// references to the same name.
func (b *Builder) resolveTarget(ctx context.Context, state *buildState, name string) *FlowNode {
	if node, ok := state.byName[name]; ok {
		return node
	}
	if node, ok := state.placeholders[name]; ok {
		return node
	}

	node := &FlowNode{
		ID:       b.uniqueID(state, name),
		Name:     name,
		FilePath: PlaceholderFilePath,
		Type:     mule.FlowTypeUnknown,
	}
	state.graph.Nodes = append(state.graph.Nodes, node)
	state.placeholders[name] = node
	state.result.Stats.PlaceholdersCreated++
	recordPlaceholderMetric(ctx)
	b.options.Logger.Warn("unresolved flow reference, creating placeholder",
		slog.String("name", name),
	)
	return node
}

// reportProgress invokes the progress callback if one is configured.
func (b *Builder) reportProgress(state *buildState, phase ProgressPhase, total, processed int) {
	if b.options.ProgressCallback == nil {
		return
	}
	b.options.ProgressCallback(BuildProgress{
		Phase:          phase,
		ItemsTotal:     total,
		ItemsProcessed: processed,
		NodesCreated:   len(state.graph.Nodes),
		EdgesCreated:   len(state.graph.Edges),
	})
}

// BuildGraph builds a flow graph with default options and no deadline.
// It is the convenience entry point for callers that only want the graph.
func BuildGraph(files map[string]string) *Graph {
	result, _ := NewBuilder().Build(context.Background(), files)
	return result.Graph
}
