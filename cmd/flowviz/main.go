// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command flowviz starts the MuleView flow visualization API server.
//
// MuleView extracts flow graphs from Mule XML configuration and renders
// them as Mermaid diagrams:
//   - Ephemeral flow graphs (in-memory, rebuilt from source)
//   - Flow, sub-flow, and flow-ref extraction without an XML library
//   - Auto-sizing diagrams (simplified or detailed based on graph size)
//   - Stateless previews for editor integrations
//
// Usage:
//
//	go run ./cmd/flowviz
//	go run ./cmd/flowviz -port 9090
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/flowviz/health
//
//	# Build a graph from a Mule project
//	curl -X POST http://localhost:8080/v1/flowviz/init \
//	  -H "Content-Type: application/json" \
//	  -d '{"project_root": "/path/to/mule/project"}'
//
//	# Render the graph as Mermaid
//	curl -X POST http://localhost:8080/v1/flowviz/render \
//	  -H "Content-Type: application/json" \
//	  -d '{"mode": "auto"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/MuleView/pkg/logging"
	"github.com/AleutianAI/MuleView/services/flowviz"
	"github.com/AleutianAI/MuleView/services/flowviz/telemetry"
)

func main() {
	cfg := flowviz.DefaultServiceConfig()
	port := flag.Int("port", envInt("FLOWVIZ_PORT", 8080), "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	logLevel := flag.String("log-level", os.Getenv("FLOWVIZ_LOG_LEVEL"), "Log level (debug, info, warn, error)")
	flag.IntVar(&cfg.MaxCachedGraphs, "max-graphs", cfg.MaxCachedGraphs, "Maximum number of graphs to keep in memory")
	flag.DurationVar(&cfg.GraphTTL, "graph-ttl", cfg.GraphTTL, "Cached graph expiry, e.g. 30m (0 disables)")
	flag.Parse()

	// Structured JSON logs for log aggregation. FLOWVIZ_LOG_DIR adds a
	// file destination next to stderr when set.
	logCfg := logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  os.Getenv("FLOWVIZ_LOG_DIR"),
		Service: "flowviz",
		JSON:    true,
	}
	if lvl, ok := logging.ParseLevel(*logLevel); ok {
		logCfg.Level = lvl
	}
	if *debug {
		logCfg.Level = logging.LevelDebug
	}
	appLog := logging.New(logCfg)
	defer appLog.Close()
	slog.SetDefault(appLog.Slog())

	// Set Gin mode
	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize telemetry (tracing + metrics)
	telemetryCfg := telemetry.DefaultConfig()
	telemetryCfg.ServiceVersion = flowviz.ServiceVersion
	telemetryShutdown, err := telemetry.Init(context.Background(), telemetryCfg)
	if err != nil {
		slog.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create service
	svc := flowviz.NewService(cfg)

	// Create handlers
	handlers := flowviz.NewHandlers(svc)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("flowviz-service"))
	if *debug {
		router.Use(gin.Logger())
	}

	httpMetrics, err := telemetry.NewMetrics(otel.Meter("muleview.http"))
	if err != nil {
		slog.Warn("HTTP metrics disabled", slog.String("error", err.Error()))
	} else {
		router.Use(telemetry.MetricsMiddleware(httpMetrics))
	}

	// Prometheus scrape endpoint
	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}

	// Register routes under /v1/flowviz
	v1 := router.Group("/v1")
	flowviz.RegisterRoutes(v1, handlers)

	// Print startup banner
	printBanner(*port)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down FlowViz server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryShutdown(ctx); err != nil {
			slog.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting FlowViz server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// envInt reads an integer environment variable with a fallback.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                       MULEVIEW FLOW SERVER                        ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Mule flow graphs and Mermaid diagrams over HTTP.                 ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/flowviz/health                │  ║
║  │                                                             │  ║
║  │ # Build a graph (required first!)                           │  ║
║  │ curl -X POST http://localhost:%d/v1/flowviz/init \        │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"project_root": "/your/mule/project"}'               │  ║
║  │                                                             │  ║
║  │ # Render it                                                 │  ║
║  │ curl -X POST http://localhost:%d/v1/flowviz/render \      │  ║
║  │   -H "Content-Type: application/json" -d '{}'               │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Graphs: /init, /render, /preview, /graph                     ║
║  ├── Flows: /flows, /flows/:id                                    ║
║  └── Ops: /health, /ready, /metrics                               ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port, port)
}
