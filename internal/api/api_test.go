package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/hyperair/imgpack/pkg/cache"
	"github.com/hyperair/imgpack/pkg/observability"
	"github.com/hyperair/imgpack/pkg/pipeline"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	return New(runner, append([]Option{WithLogger(logger)}, opts...)...)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

const packBody = `{
	"manifest": {
		"tiles": [
			{"id": "a", "width": 400, "height": 300},
			{"id": "b", "width": 300, "height": 400},
			{"id": "c", "width": 200, "height": 200}
		]
	},
	"options": {"formats": ["json", "svg"]}
}`

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if body.Build.Version == "" {
		t.Error("health response has no version")
	}
}

func TestPack(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/pack", packBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp PackResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Stats.Tiles != 3 || resp.Stats.Merges != 2 {
		t.Errorf("stats = %+v, want 3 tiles and 2 merges", resp.Stats)
	}
	if len(resp.Layout.Tiles) != 3 {
		t.Errorf("layout has %d tiles, want 3", len(resp.Layout.Tiles))
	}
	if !strings.HasPrefix(resp.Artifacts["svg"], "<svg") {
		t.Errorf("svg artifact starts with %.20q", resp.Artifacts["svg"])
	}
	if _, ok := resp.Artifacts["json"]; !ok {
		t.Error("json artifact missing")
	}
	if resp.ManifestHash == "" {
		t.Error("manifest hash is empty")
	}
}

func TestPackWithMoves(t *testing.T) {
	s := newTestServer(t)
	body := `{"manifest": {
		"tiles": [
			{"id": "a", "width": 400, "height": 300},
			{"id": "b", "width": 300, "height": 400},
			{"id": "c", "width": 200, "height": 200}
		],
		"moves": [{"tile": "c", "target": "a", "side": "left"}]
	}}`
	rec := do(t, s, http.MethodPost, "/v1/pack", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp PackResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Stats.Moves != 1 {
		t.Errorf("moves = %d, want 1", resp.Stats.Moves)
	}
	tile, ok := resp.Layout.Tile("c")
	if !ok {
		t.Fatal("tile c missing from layout")
	}
	if tile.Path != "0.0" {
		t.Errorf("c path = %q, want 0.0", tile.Path)
	}
}

func TestPackErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"manifest": `,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "unknown field",
			body:       `{"manifest": {"tiles": []}, "colour": "red"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "no tiles",
			body:       `{"manifest": {"tiles": []}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_MANIFEST",
		},
		{
			name:       "bad format",
			body:       `{"manifest": {"tiles": [{"width": 10, "height": 10}]}, "options": {"formats": ["png"]}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FORMAT",
		},
		{
			name:       "bad metric",
			body:       `{"manifest": {"tiles": [{"width": 10, "height": 10}]}, "options": {"metric": "nearest"}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_METRIC",
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/pack", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeError(t, rec)
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (message %q)", resp.Error.Code, tt.wantCode, resp.Error.Message)
			}
			if resp.RequestID == "" {
				t.Error("error response has no request id")
			}
		})
	}
}

func TestPackManifestDetails(t *testing.T) {
	s := newTestServer(t)
	body := `{"manifest": {"tiles": [
		{"id": "a", "width": -1, "height": 10},
		{"id": "a", "width": 10, "height": 10}
	]}}`
	rec := do(t, s, http.MethodPost, "/v1/pack", body)

	resp := decodeError(t, rec)
	if len(resp.Error.Details) < 2 {
		t.Errorf("details = %q, want one entry per problem", resp.Error.Details)
	}
}

func TestPackBodyTooLarge(t *testing.T) {
	s := newTestServer(t, WithMaxBodyBytes(16))
	rec := do(t, s, http.MethodPost, "/v1/pack", packBody)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	t.Run("generated", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/healthz", "")
		if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
			t.Errorf("response id %q is not a uuid", rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("propagated", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, id)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got != id {
			t.Errorf("response id = %q, want %q", got, id)
		}
	})

	t.Run("malformed replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "not a uuid")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got == "not a uuid" {
			t.Error("malformed request id was echoed")
		}
	})
}

func TestRouting(t *testing.T) {
	s := newTestServer(t)

	if rec := do(t, s, http.MethodGet, "/v1/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/v1/pack", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/pack status = %d, want 405", rec.Code)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks

	mu        sync.Mutex
	responses []string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, path string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, method+" "+path+" "+http.StatusText(status))
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t)
	do(t, s, http.MethodPost, "/v1/pack", packBody)

	want := "POST /v1/pack OK"
	if len(hooks.responses) != 1 || hooks.responses[0] != want {
		t.Errorf("responses = %q, want [%q]", hooks.responses, want)
	}
}

func TestPackResponseRoundTrip(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/pack", packBody)

	var resp PackResponse
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Layout.Tree == nil || len(resp.Layout.Tree.Children) != 2 {
		t.Error("layout tree missing from response")
	}
}
