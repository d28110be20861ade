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
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Set Gin to test mode to reduce noise
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(svc *Service) *gin.Engine {
	router := gin.New()
	handlers := NewHandlers(svc)
	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	return router
}

// writeProject materializes a Mule project in a temp dir and returns
// its root.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
	return root
}

// sampleProject holds two config files: an API flow calling a resolved
// sub-flow, and a cleanup flow calling a reference that never resolves.
var sampleProject = map[string]string{
	"src/main/mule/api.xml": `<flow name="order-api">` +
		`<http:listener config-ref="HTTP_Listener_config" path="/orders"/>` +
		`<flow-ref name="process-order"/>` +
		`</flow>`,
	"src/main/mule/impl.xml": `<sub-flow name="process-order">` +
		`<db:select config-ref="Database_Config"/>` +
		`<logger message="processed"/>` +
		`</sub-flow>` +
		`<flow name="cleanup-job"><flow-ref name="archive-helper"/></flow>`,
}

// initProject runs a full init over the sample project and returns the
// response.
func initProject(t *testing.T, router *gin.Engine) *InitResponse {
	t.Helper()
	root := writeProject(t, sampleProject)

	body := fmt.Sprintf(`{"project_root": %q}`, root)
	req, _ := http.NewRequest("POST", "/v1/flowviz/init", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "init body: %s", w.Body.String())

	var resp InitResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return &resp
}

func TestHandlers_HandleHealth(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/v1/flowviz/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceVersion, resp.Version)
}

func TestHandlers_HandleReady(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/v1/flowviz/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReadyResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Ready)
	assert.Equal(t, 0, resp.GraphCount, "no graphs before init")
}

func TestHandlers_HandleInit_InvalidRequest(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "empty body",
			body:       "{}",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "relative path",
			body:       `{"project_root": "relative/path"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PATH",
		},
		{
			name:       "path traversal",
			body:       `{"project_root": "/some/path/../traversal"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "PATH_TRAVERSAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/v1/flowviz/init",
				bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var errResp ErrorResponse
			err := json.Unmarshal(w.Body.Bytes(), &errResp)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, errResp.Code)
		})
	}
}

func TestHandlers_HandleInit_Success(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	resp := initProject(t, router)

	assert.Len(t, resp.GraphID, 16, "graph IDs are 16 hex chars")
	assert.False(t, resp.IsRefresh, "first init is not a refresh")
	assert.Equal(t, 2, resp.FilesParsed)
	assert.Equal(t, 2, resp.Flows)
	assert.Equal(t, 1, resp.SubFlows)
	assert.Equal(t, 1, resp.Placeholders)
	assert.Equal(t, 5, resp.Components)
	assert.Equal(t, 2, resp.Edges)
	assert.Empty(t, resp.Errors)
}

func TestHandlers_HandleInit_Refresh(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	root := writeProject(t, sampleProject)
	body := fmt.Sprintf(`{"project_root": %q}`, root)

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("POST", "/v1/flowviz/init", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, "init %d failed", i)

		var resp InitResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		if i == 1 {
			assert.True(t, resp.IsRefresh, "second init of the same root is a refresh")
			assert.Equal(t, resp.GraphID, resp.PreviousID, "refresh keeps the graph ID")
		}
	}

	assert.Equal(t, 1, svc.GraphCount(), "refresh replaces rather than adds")
}

func TestHandlers_HandleRender(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	initResp := initProject(t, router)

	body := fmt.Sprintf(`{"graph_id": %q}`, initResp.GraphID)
	req, _ := http.NewRequest("POST", "/v1/flowviz/render", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "render body: %s", w.Body.String())

	var resp RenderResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	// Four nodes and five components score well under the auto threshold
	assert.Equal(t, "detailed", resp.Mode)
	assert.True(t, strings.HasPrefix(resp.Diagram, "flowchart TB"),
		"diagram starts with the flowchart header, got %.60s", resp.Diagram)
	assert.Contains(t, resp.Diagram, "order-api")
}

func TestHandlers_HandleRender_OmittedGraphID(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	initResp := initProject(t, router)

	req, _ := http.NewRequest("POST", "/v1/flowviz/render", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "render body: %s", w.Body.String())

	var resp RenderResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, initResp.GraphID, resp.GraphID, "omitted graph_id falls back to the latest graph")
}

func TestHandlers_HandleRender_GraphNotInitialized(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	body := `{"graph_id": "nonexistent"}`
	req, _ := http.NewRequest("POST", "/v1/flowviz/render", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &errResp)
	require.NoError(t, err)

	assert.Equal(t, "GRAPH_NOT_INITIALIZED", errResp.Code)
}

func TestHandlers_HandleRender_InvalidMode(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	initProject(t, router)

	body := `{"mode": "sideways"}`
	req, _ := http.NewRequest("POST", "/v1/flowviz/render", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &errResp)
	require.NoError(t, err)

	assert.Equal(t, "INVALID_MODE", errResp.Code)
}

func TestHandlers_HandlePreview(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	body := `{
		"files": {
			"api.xml": "<flow name=\"ping\"><http:listener path=\"/ping\"/><flow-ref name=\"pong\"/></flow><sub-flow name=\"pong\"><logger/></sub-flow>"
		},
		"fenced": true
	}`
	req, _ := http.NewRequest("POST", "/v1/flowviz/preview", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "preview body: %s", w.Body.String())

	var resp PreviewResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Flows)
	assert.Equal(t, 1, resp.Edges)
	assert.True(t, strings.HasPrefix(resp.Diagram, "```mermaid"),
		"fenced diagram starts with a code fence, got %.40s", resp.Diagram)
	assert.Contains(t, resp.Diagram, "ping")

	// Previews never touch the cache
	assert.Equal(t, 0, svc.GraphCount())
}

func TestHandlers_HandlePreview_NoFiles(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing files field", `{}`, "INVALID_REQUEST"},
		{"empty files map", `{"files": {}}`, "NO_FILES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/v1/flowviz/preview",
				bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var errResp ErrorResponse
			err := json.Unmarshal(w.Body.Bytes(), &errResp)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, errResp.Code)
		})
	}
}

func TestHandlers_HandlePreview_TooLarge(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	payload := map[string]any{
		"files": map[string]string{
			"big.xml": strings.Repeat("a", MaxPreviewFileBytes+1),
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", "/v1/flowviz/preview", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp ErrorResponse
	err = json.Unmarshal(w.Body.Bytes(), &errResp)
	require.NoError(t, err)
	assert.Equal(t, "PREVIEW_TOO_LARGE", errResp.Code)
}

func TestHandlers_HandleListFlows(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	initResp := initProject(t, router)

	req, _ := http.NewRequest("GET", "/v1/flowviz/flows?graph_id="+initResp.GraphID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "list body: %s", w.Body.String())

	var resp ListFlowsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	// 2 flows + 1 sub-flow + 1 placeholder
	require.Equal(t, 4, resp.Count)

	byName := make(map[string]FlowSummary, len(resp.Flows))
	for _, f := range resp.Flows {
		byName[f.Name] = f
	}

	api, ok := byName["order-api"]
	require.True(t, ok, "order-api missing from listing")
	assert.Equal(t, "flow", api.Type)
	assert.Equal(t, 2, api.Components)
	assert.Equal(t, "\U0001F310", api.Icon, "HTTP listener glyph")

	ghost, ok := byName["archive-helper"]
	require.True(t, ok, "placeholder archive-helper missing from listing")
	assert.Equal(t, "unknown", ghost.Type)
	assert.Equal(t, "unknown", ghost.FilePath)
}

func TestHandlers_HandleListFlows_NoGraphs(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/v1/flowviz/flows", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &errResp)
	require.NoError(t, err)

	assert.Equal(t, "GRAPH_NOT_INITIALIZED", errResp.Code)
}

func TestHandlers_HandleGetFlow(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	initProject(t, router)

	// Lookup by declared name falls back from the ID match
	req, _ := http.NewRequest("GET", "/v1/flowviz/flows/order-api", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "get flow body: %s", w.Body.String())

	var resp FlowDetailResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	require.NotNil(t, resp.Flow)
	assert.Equal(t, "order-api", resp.Flow.Name)
	assert.Len(t, resp.Flow.Components, 2)
	assert.Len(t, resp.References, 1, "one outgoing edge")
	assert.Empty(t, resp.ReferencedBy)

	// The same flow is reachable by its node ID
	req, _ = http.NewRequest("GET", "/v1/flowviz/flows/"+resp.Flow.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "get flow by ID")
}

func TestHandlers_HandleGetFlow_NotFound(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	initProject(t, router)

	req, _ := http.NewRequest("GET", "/v1/flowviz/flows/no-such-flow", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var errResp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &errResp)
	require.NoError(t, err)

	assert.Equal(t, "FLOW_NOT_FOUND", errResp.Code)
}

func TestHandlers_HandleGetGraph(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)
	initResp := initProject(t, router)

	req, _ := http.NewRequest("GET", "/v1/flowviz/graph", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "get graph body: %s", w.Body.String())

	var resp GraphResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, initResp.GraphID, resp.GraphID)
	require.NotNil(t, resp.Graph)
	assert.Len(t, resp.Graph.Nodes, 4)
	assert.Equal(t, 2, resp.Stats.Flows)
	assert.Equal(t, 1, resp.Stats.Placeholders)
	assert.NotZero(t, resp.BuiltAtMilli)
}

func TestHandlers_RequestID(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	router := setupTestRouter(svc)

	t.Run("echoes caller-supplied ID", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/v1/flowviz/render",
			bytes.NewBufferString(`{"graph_id": "x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("generates ID when absent", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/v1/flowviz/render",
			bytes.NewBufferString(`{"graph_id": "x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "middleware generates an ID")
	})
}
