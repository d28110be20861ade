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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for flow graph operations.
var (
	tracer = otel.Tracer("muleview.graph")
	meter  = otel.Meter("muleview.graph")
)

// Metrics for flow graph building operations.
var (
	buildLatency        metric.Float64Histogram
	buildTotal          metric.Int64Counter
	flowsExtracted      metric.Int64Histogram
	edgesCreated        metric.Int64Histogram
	placeholdersCreated metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"flowgraph_build_duration_seconds",
			metric.WithDescription("Duration of flow graph build operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildTotal, err = meter.Int64Counter(
			"flowgraph_build_total",
			metric.WithDescription("Total number of flow graph build operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		flowsExtracted, err = meter.Int64Histogram(
			"flowgraph_nodes_created",
			metric.WithDescription("Number of flow nodes created per build"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesCreated, err = meter.Int64Histogram(
			"flowgraph_edges_created",
			metric.WithDescription("Number of reference edges created per build"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		placeholdersCreated, err = meter.Int64Counter(
			"flowgraph_placeholders_total",
			metric.WithDescription("Total number of placeholder nodes created for unresolved references"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuildMetrics records metrics for a build operation.
func recordBuildMetrics(ctx context.Context, duration time.Duration, nodeCount, edgeCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))

	buildLatency.Record(ctx, duration.Seconds(), attrs)
	buildTotal.Add(ctx, 1, attrs)

	if success {
		flowsExtracted.Record(ctx, int64(nodeCount))
		edgesCreated.Record(ctx, int64(edgeCount))
	}
}

// recordPlaceholderMetric counts one unresolved reference placeholder.
func recordPlaceholderMetric(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	placeholdersCreated.Add(ctx, 1)
}

// startBuildSpan creates a span for a build operation.
func startBuildSpan(ctx context.Context, fileCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "FlowGraphBuilder.Build",
		trace.WithAttributes(
			attribute.Int("flowgraph.file_count", fileCount),
		),
	)
}

// setBuildSpanResult sets the result attributes on a build span.
func setBuildSpanResult(span trace.Span, nodeCount, edgeCount int, incomplete bool) {
	span.SetAttributes(
		attribute.Int("flowgraph.node_count", nodeCount),
		attribute.Int("flowgraph.edge_count", edgeCount),
		attribute.Bool("flowgraph.incomplete", incomplete),
	)
}
