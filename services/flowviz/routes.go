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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all FlowViz routes with the router.
//
// Description:
//
//	Registers all /v1/flowviz/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Graph Endpoints:
//
//	POST /v1/flowviz/init - Build and cache a project flow graph
//	POST /v1/flowviz/render - Render a cached graph as Mermaid
//	POST /v1/flowviz/preview - One-shot render of inline markup
//	GET  /v1/flowviz/flows - List flows in a cached graph
//	GET  /v1/flowviz/flows/:id - Get one flow with its component tree
//	GET  /v1/flowviz/graph - Dump a cached graph as JSON
//
// Health Endpoints:
//
//	GET /v1/flowviz/health - Health check
//	GET /v1/flowviz/ready - Readiness check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	group := rg.Group("/flowviz")
	{
		group.POST("/init", handlers.HandleInit)
		group.POST("/render", handlers.HandleRender)
		group.POST("/preview", handlers.HandlePreview)
		group.GET("/flows", handlers.HandleListFlows)
		group.GET("/flows/:id", handlers.HandleGetFlow)
		group.GET("/graph", handlers.HandleGetGraph)
		group.GET("/health", handlers.HandleHealth)
		group.GET("/ready", handlers.HandleReady)
	}
}
