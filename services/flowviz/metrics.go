// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package flowviz

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/MuleView/services/flowviz/graph"
	"github.com/AleutianAI/MuleView/services/flowviz/render"
)

// Package-level tracer and meter for service operations.
var (
	tracer = otel.Tracer("muleview.flowviz")
	meter  = otel.Meter("muleview.flowviz")
)

// Metrics for project init and diagram render operations.
var (
	initLatency metric.Float64Histogram
	initTotal   metric.Int64Counter
	renderTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		initLatency, err = meter.Float64Histogram(
			"flowviz_init_duration_seconds",
			metric.WithDescription("Duration of project init operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		initTotal, err = meter.Int64Counter(
			"flowviz_init_total",
			metric.WithDescription("Total number of project init operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		renderTotal, err = meter.Int64Counter(
			"flowviz_render_total",
			metric.WithDescription("Total number of diagram renders by mode"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordInitMetrics records metrics for an init operation.
func recordInitMetrics(ctx context.Context, duration time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))

	initLatency.Record(ctx, duration.Seconds(), attrs)
	initTotal.Add(ctx, 1, attrs)
}

// recordRenderMetrics counts one diagram render in its concrete mode.
func recordRenderMetrics(ctx context.Context, mode render.Mode) {
	if err := initMetrics(); err != nil {
		return
	}
	renderTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode.String())))
}

// startInitSpan creates a span for an init operation.
func startInitSpan(ctx context.Context, projectRoot string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "FlowVizService.Init",
		trace.WithAttributes(
			attribute.String("flowviz.project_root", projectRoot),
		),
	)
}

// setInitSpanResult sets the result attributes on an init span.
func setInitSpanResult(span trace.Span, stats graph.GraphStats) {
	span.SetAttributes(
		attribute.Int("flowviz.flows", stats.Flows),
		attribute.Int("flowviz.sub_flows", stats.SubFlows),
		attribute.Int("flowviz.components", stats.Components),
		attribute.Int("flowviz.edges", stats.Edges),
		attribute.Int("flowviz.placeholders", stats.Placeholders),
	)
}
