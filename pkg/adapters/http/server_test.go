package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/recoverly/flowedit/pkg/adapters/memory"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/persistence/middleware"
	"github.com/recoverly/flowedit/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reminderTemplate = `{
  "name": "Overdue reminder",
  "graph": {
    "nodes": [
      {"id": "t1", "kind": "overdue-invoice", "position": {"x": 0, "y": 0}, "parameters": {"days": 5}},
      {"id": "a1", "kind": "action-send-whatsapp", "position": {"x": 240, "y": 0}}
    ],
    "edges": [{"id": "e1", "source": "t1", "target": "a1"}]
  }
}`

type fixture struct {
	handler http.Handler
	streams *StreamManager
	store   *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	streams := NewStreamManager(nil)
	mgr := session.NewManager(store, session.WithPublisher(streams))
	templates, err := memory.NewLoaderFromJSON(map[string]string{"overdue-reminder": reminderTemplate})
	require.NoError(t, err)

	h, err := NewHandler(mgr,
		WithStreams(streams),
		WithTemplates(templates),
		WithVersion("v0.1.0-test"),
	)
	require.NoError(t, err)
	return &fixture{handler: h, streams: streams, store: store}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (f *fixture) open(t *testing.T, body map[string]any) session.Info {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[session.Info](t, w)
}

func TestEditUndoRedoSave(t *testing.T) {
	f := newFixture(t)
	info := f.open(t, map[string]any{"automation_id": "auto-1", "tenant_id": "acme"})
	base := "/api/sessions/" + info.SessionID

	edits := []map[string]any{
		{"op": "add-node", "node_id": "t1", "kind": "overdue-invoice", "position": map[string]any{"x": 0, "y": 0}, "parameters": map[string]any{"days": 5}},
		{"op": "add-node", "node_id": "a1", "kind": "action-send-whatsapp", "position": map[string]any{"x": 240, "y": 0}},
		{"op": "add-edge", "edge_id": "e1", "source": "t1", "target": "a1"},
	}
	for _, e := range edits {
		w := f.do(t, http.MethodPost, base+"/edits", e)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := f.do(t, http.MethodPost, base+"/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	step := decode[stepResponse](t, w)
	assert.True(t, step.Moved)
	assert.Len(t, step.Graph.Nodes, 2)
	assert.Empty(t, step.Graph.Edges)
	assert.True(t, step.CanRedo)

	w = f.do(t, http.MethodPost, base+"/redo", nil)
	step = decode[stepResponse](t, w)
	assert.True(t, step.Moved)
	require.Len(t, step.Graph.Edges, 1)
	assert.Equal(t, "e1", step.Graph.Edges[0].ID)
	assert.True(t, step.Dirty)

	w = f.do(t, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/automations/auto-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	a := decode[domain.Automation](t, w)
	assert.Equal(t, "acme", a.TenantID)
	assert.Len(t, a.Graph.Nodes, 2)
	assert.Len(t, a.Graph.Edges, 1)

	w = f.do(t, http.MethodGet, base, nil)
	assert.False(t, decode[session.Info](t, w).Dirty)
}

func TestUndoAtBoundary(t *testing.T) {
	f := newFixture(t)
	info := f.open(t, map[string]any{"automation_id": "auto-1", "tenant_id": "acme"})

	w := f.do(t, http.MethodPost, "/api/sessions/"+info.SessionID+"/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[stepResponse](t, w).Moved)
}

func TestErrorStatus(t *testing.T) {
	f := newFixture(t)
	info := f.open(t, map[string]any{"automation_id": "auto-1", "tenant_id": "acme"})
	edits := "/api/sessions/" + info.SessionID + "/edits"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"dangling edge", http.MethodPost, edits, map[string]any{"op": "add-edge", "edge_id": "e1", "source": "x", "target": "y"}, http.StatusConflict, "dangling_reference"},
		{"missing node", http.MethodPost, edits, map[string]any{"op": "remove-node", "node_id": "ghost"}, http.StatusBadRequest, "invalid_operation"},
		{"unknown op", http.MethodPost, edits, map[string]any{"op": "teleport"}, http.StatusBadRequest, "invalid_request"},
		{"unknown field", http.MethodPost, edits, map[string]any{"op": "remove-node", "node": "t1"}, http.StatusBadRequest, "invalid_operation"},
		{"unknown session", http.MethodGet, "/api/sessions/nope", nil, http.StatusNotFound, "session_not_found"},
		{"unknown automation", http.MethodGet, "/api/automations/nope", nil, http.StatusNotFound, "automation_not_found"},
		{"unknown template", http.MethodGet, "/api/templates/nope", nil, http.StatusNotFound, "template_not_found"},
		{"open without id", http.MethodPost, "/api/sessions", map[string]any{"tenant_id": "acme"}, http.StatusBadRequest, "invalid_request"},
		{"new automation without tenant", http.MethodPost, "/api/sessions", map[string]any{"automation_id": "auto-2"}, http.StatusBadRequest, "invalid_operation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[errorBody](t, w).Code)
		})
	}

	// Rejected edits leave the graph untouched.
	w := f.do(t, http.MethodGet, "/api/sessions/"+info.SessionID, nil)
	got := decode[session.Info](t, w)
	assert.Empty(t, got.Graph.Nodes)
	assert.Equal(t, 1, got.HistoryLen)
}

func TestStatusFor_StoreUnavailable(t *testing.T) {
	status, code := statusFor(fmt.Errorf("save: %w", middleware.ErrStoreUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "store_unavailable", code)

	status, _ = statusFor(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestOpenFromTemplate(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"overdue-reminder"}, decode[[]string](t, w))

	info := f.open(t, map[string]any{"automation_id": "auto-1", "tenant_id": "acme", "template_id": "overdue-reminder"})
	assert.Equal(t, "Overdue reminder", info.Name)
	assert.Len(t, info.Graph.Nodes, 2)
	assert.False(t, info.CanUndo)

	w = f.do(t, http.MethodGet, "/api/automations", nil)
	assert.Equal(t, []string{"auto-1"}, decode[[]string](t, w))
}

func TestSessionsListAndClose(t *testing.T) {
	f := newFixture(t)
	info := f.open(t, map[string]any{"automation_id": "auto-1", "tenant_id": "acme"})

	w := f.do(t, http.MethodGet, "/api/sessions", nil)
	list := decode[[]session.Summary](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, info.SessionID, list[0].SessionID)

	w = f.do(t, http.MethodDelete, "/api/sessions/"+info.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodDelete, "/api/automations/auto-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err := f.store.Load(context.Background(), "auto-1")
	assert.ErrorIs(t, err, domain.ErrAutomationNotFound)
}

func TestInfoAndSpec(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[map[string]string](t, w)
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, "v0.1.0-test", info["version"])

	w = f.do(t, http.MethodGet, "/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	info := f.open(t, map[string]any{"automation_id": "auto-1", "tenant_id": "acme"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/automations/auto-1/events?watch=nodes", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	require.Eventually(t, func() bool { return f.streams.Subscribers("auto-1") == 1 }, time.Second, 10*time.Millisecond)

	w := f.do(t, http.MethodPost, "/api/sessions/"+info.SessionID+"/edits",
		map[string]any{"op": "add-node", "node_id": "t1", "kind": "broken-agreement"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data string
	for lines.Scan() {
		if line := lines.Text(); strings.HasPrefix(line, "data: {") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	require.NotEmpty(t, data)

	var diff domain.GraphDiff
	require.NoError(t, json.Unmarshal([]byte(data), &diff))
	assert.Equal(t, "auto-1", diff.AutomationID)
	assert.Equal(t, []string{"t1"}, diff.AddedNodes)
}

func TestWatchFilter(t *testing.T) {
	edgesOnly := parseWatch("edges")
	nodeDiff, _ := json.Marshal(domain.GraphDiff{AddedNodes: []string{"t1"}})
	edgeDiff, _ := json.Marshal(domain.GraphDiff{RemovedEdges: []string{"e1"}})

	assert.False(t, edgesOnly.keep(nodeDiff))
	assert.True(t, edgesOnly.keep(edgeDiff))
	assert.True(t, parseWatch("").keep(nodeDiff))
}
