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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/MuleView/services/flowviz/render"
)

// ServiceVersion is the current version of the FlowViz service.
const ServiceVersion = "0.1.0"

// Handlers holds the HTTP handlers for the FlowViz service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates a new set of handlers backed by the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleInit handles POST /v1/flowviz/init.
//
// Description:
//
//	Builds a flow graph for a Mule project. Loads the project's XML
//	files, extracts flows and references, and caches the result under
//	a graph ID for later render and query calls.
//
// Request Body:
//
//	InitRequest
//
// Response:
//
//	200 OK: InitResponse
//	400 Bad Request: Validation error
//	409 Conflict: Init already in progress for this project
//	504 Gateway Timeout: Init exceeded the configured deadline
//	500 Internal Server Error: Processing error
func (h *Handlers) HandleInit(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleInit")

	var req InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	logger.Info("Initializing graph", "project_root", req.ProjectRoot)

	resp, err := h.svc.Init(c.Request.Context(), req.ProjectRoot, req.ExcludeDirs)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "INIT_FAILED"

		if errors.Is(err, ErrRelativePath) {
			statusCode = http.StatusBadRequest
			errCode = "INVALID_PATH"
		} else if errors.Is(err, ErrPathTraversal) {
			statusCode = http.StatusBadRequest
			errCode = "PATH_TRAVERSAL"
		} else if errors.Is(err, ErrProjectTooLarge) {
			statusCode = http.StatusBadRequest
			errCode = "PROJECT_TOO_LARGE"
		} else if errors.Is(err, ErrInitInProgress) {
			statusCode = http.StatusConflict
			errCode = "INIT_IN_PROGRESS"
		} else if errors.Is(err, ErrInitTimeout) {
			statusCode = http.StatusGatewayTimeout
			errCode = "INIT_TIMEOUT"
		}

		logger.Error("Init failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	logger.Info("Graph initialized",
		"graph_id", resp.GraphID,
		"flows", resp.Flows,
		"sub_flows", resp.SubFlows,
		"edges", resp.Edges,
		"parse_time_ms", resp.ParseTimeMs)

	c.JSON(http.StatusOK, resp)
}

// HandleRender handles POST /v1/flowviz/render.
//
// Description:
//
//	Renders a cached graph as a Mermaid flowchart. Auto mode picks
//	simplified or detailed based on graph size. Omitting graph_id
//	renders the most recently built graph.
//
// Request Body:
//
//	RenderRequest
//
// Response:
//
//	200 OK: RenderResponse
//	400 Bad Request: Unknown mode, or graph not initialized/expired
//	500 Internal Server Error: Processing error
func (h *Handlers) HandleRender(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRender")

	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if err := req.Validate(); err != nil {
		logger.Warn("Invalid render mode", "mode", req.Mode)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "unknown mode: " + req.Mode,
			Code:  "INVALID_MODE",
		})
		return
	}

	mode, ok := parseModeParam(c, logger, req.Mode)
	if !ok {
		return
	}

	resp, err := h.svc.Render(c.Request.Context(), req.GraphID, mode, req.Direction, req.Fenced)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "RENDER_FAILED"

		if errors.Is(err, ErrGraphNotInitialized) {
			statusCode = http.StatusBadRequest
			errCode = "GRAPH_NOT_INITIALIZED"
		} else if errors.Is(err, ErrGraphExpired) {
			statusCode = http.StatusBadRequest
			errCode = "GRAPH_EXPIRED"
		}

		logger.Error("Render failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	logger.Info("Diagram rendered",
		"graph_id", resp.GraphID,
		"mode", resp.Mode,
		"diagram_bytes", len(resp.Diagram))

	c.JSON(http.StatusOK, resp)
}

// HandlePreview handles POST /v1/flowviz/preview.
//
// Description:
//
//	One-shot build and render of inline Mule XML markup. Nothing is
//	cached and no graph ID is assigned. Intended for editor
//	integrations that re-render on every keystroke.
//
// Request Body:
//
//	PreviewRequest
//
// Response:
//
//	200 OK: PreviewResponse
//	400 Bad Request: No files, payload over the preview caps, or unknown mode
//	500 Internal Server Error: Processing error
func (h *Handlers) HandlePreview(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandlePreview")

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if err := req.Validate(); err != nil {
		if failedValidationTag(err, "rendermode") {
			logger.Warn("Invalid render mode", "mode", req.Mode)
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "unknown mode: " + req.Mode,
				Code:  "INVALID_MODE",
			})
			return
		}
		logger.Warn("Preview payload exceeds limits", "files", len(req.Files))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "preview payload exceeds limits",
			Code:  "PREVIEW_TOO_LARGE",
		})
		return
	}

	mode, ok := parseModeParam(c, logger, req.Mode)
	if !ok {
		return
	}

	resp, err := h.svc.Preview(c.Request.Context(), req.Files, mode, req.Direction, req.Fenced)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "PREVIEW_FAILED"

		if errors.Is(err, ErrNoFiles) {
			statusCode = http.StatusBadRequest
			errCode = "NO_FILES"
		}

		logger.Error("Preview failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	logger.Info("Preview rendered",
		"files", len(req.Files),
		"flows", resp.Flows,
		"mode", resp.Mode)

	c.JSON(http.StatusOK, resp)
}

// HandleListFlows handles GET /v1/flowviz/flows.
//
// Description:
//
//	Lists every flow, sub-flow, and placeholder in a cached graph with
//	display metadata for tabular output.
//
// Query Parameters:
//
//	graph_id - Graph to list; omitted selects the most recently built
//
// Response:
//
//	200 OK: ListFlowsResponse
//	400 Bad Request: Graph not initialized or expired
func (h *Handlers) HandleListFlows(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleListFlows")

	resp, err := h.svc.ListFlows(c.Query("graph_id"))
	if err != nil {
		h.renderGraphError(c, logger, "Listing flows failed", "LIST_FAILED", err)
		return
	}

	logger.Info("Flows listed", "graph_id", resp.GraphID, "count", resp.Count)
	c.JSON(http.StatusOK, resp)
}

// HandleGetFlow handles GET /v1/flowviz/flows/:id.
//
// Description:
//
//	Returns one flow with its full component tree and the reference
//	edges in and out of it. The :id segment matches a node ID first,
//	then a declared flow name.
//
// Query Parameters:
//
//	graph_id - Graph to query; omitted selects the most recently built
//
// Response:
//
//	200 OK: FlowDetailResponse
//	400 Bad Request: Graph not initialized or expired
//	404 Not Found: No flow with that ID or name
func (h *Handlers) HandleGetFlow(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetFlow")

	flowID := c.Param("id")

	resp, err := h.svc.GetFlow(c.Query("graph_id"), flowID)
	if err != nil {
		if errors.Is(err, ErrFlowNotFound) {
			logger.Warn("Flow not found", "flow_id", flowID)
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: err.Error(),
				Code:  "FLOW_NOT_FOUND",
			})
			return
		}
		h.renderGraphError(c, logger, "Flow lookup failed", "FLOW_LOOKUP_FAILED", err)
		return
	}

	logger.Info("Flow returned",
		"graph_id", resp.GraphID,
		"flow_id", resp.Flow.ID,
		"components", resp.Flow.ComponentCount())

	c.JSON(http.StatusOK, resp)
}

// HandleGetGraph handles GET /v1/flowviz/graph.
//
// Description:
//
//	Dumps a cached graph as JSON: all nodes with component trees, all
//	edges, and summary statistics.
//
// Query Parameters:
//
//	graph_id - Graph to dump; omitted selects the most recently built
//
// Response:
//
//	200 OK: GraphResponse
//	400 Bad Request: Graph not initialized or expired
func (h *Handlers) HandleGetGraph(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGetGraph")

	resp, err := h.svc.DescribeGraph(c.Query("graph_id"))
	if err != nil {
		h.renderGraphError(c, logger, "Graph dump failed", "GRAPH_DUMP_FAILED", err)
		return
	}

	logger.Info("Graph returned",
		"graph_id", resp.GraphID,
		"nodes", len(resp.Graph.Nodes),
		"edges", len(resp.Graph.Edges))

	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/flowviz/health.
//
// Description:
//
//	Returns the health status of the service. Always returns 200 if running.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/flowviz/ready.
//
// Description:
//
//	Returns the readiness status of the service. The service has no
//	warmup phase, so it is ready as soon as it is running.
//
// Response:
//
//	200 OK: ReadyResponse
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadyResponse{
		Ready:      true,
		GraphCount: h.svc.GraphCount(),
	})
}

// renderGraphError maps graph lookup failures onto the standard error
// response, using the supplied code for anything unrecognized.
func (h *Handlers) renderGraphError(c *gin.Context, logger *slog.Logger, msg, fallbackCode string, err error) {
	statusCode := http.StatusInternalServerError
	errCode := fallbackCode

	if errors.Is(err, ErrGraphNotInitialized) {
		statusCode = http.StatusBadRequest
		errCode = "GRAPH_NOT_INITIALIZED"
	} else if errors.Is(err, ErrGraphExpired) {
		statusCode = http.StatusBadRequest
		errCode = "GRAPH_EXPIRED"
	}

	logger.Error(msg, "error", err)
	c.JSON(statusCode, ErrorResponse{
		Error: err.Error(),
		Code:  errCode,
	})
}

// parseModeParam parses an optional mode string, writing the 400
// response itself when the mode is unknown. The second return is false
// when the request has already been answered.
func parseModeParam(c *gin.Context, logger *slog.Logger, s string) (render.Mode, bool) {
	if s == "" {
		return render.ModeAuto, true
	}
	mode, err := render.ParseMode(s)
	if err != nil {
		logger.Warn("Invalid mode", "mode", s)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_MODE",
		})
		return render.ModeAuto, false
	}
	return mode, true
}

// getOrCreateRequestID returns the request ID from the X-Request-ID
// header, generating a new one if absent. The ID is echoed back on the
// response for client-side correlation.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
