package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"go.uber.org/multierr"

	"github.com/hyperair/imgpack/pkg/buildinfo"
	"github.com/hyperair/imgpack/pkg/errors"
	"github.com/hyperair/imgpack/pkg/layout"
	"github.com/hyperair/imgpack/pkg/manifest"
	"github.com/hyperair/imgpack/pkg/pipeline"
)

// PackRequest is the body of POST /v1/pack.
type PackRequest struct {
	Manifest manifest.Manifest `json:"manifest"`
	Options  pipeline.Options  `json:"options"`
}

// PackResponse is the body of a successful POST /v1/pack. Artifacts are
// keyed by format; every format is textual.
type PackResponse struct {
	ManifestHash string            `json:"manifest_hash"`
	Layout       layout.Layout     `json:"layout"`
	Artifacts    map[string]string `json:"artifacts"`
	Stats        PackStats         `json:"stats"`
	Cached       bool              `json:"cached"`
}

// PackStats reports what the pipeline did.
type PackStats struct {
	Tiles    int   `json:"tiles"`
	Merges   int   `json:"merges"`
	Moves    int   `json:"moves"`
	PackMS   int64 `json:"pack_ms"`
	RenderMS int64 `json:"render_ms"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// ErrorBody describes one failure.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	var req PackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput),
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeCodedError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	m := req.Manifest
	if err := m.Normalize(); err != nil {
		writeCodedError(w, r, err)
		return
	}

	opts := req.Options
	opts.Logger = s.logger.With("request_id", RequestIDFrom(r.Context()))

	result, err := s.runner.Execute(r.Context(), &m, opts)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
			err = errors.Wrap(errors.ErrCodeCancelled, err, "request cancelled")
		}
		writeCodedError(w, r, err)
		return
	}

	artifacts := make(map[string]string, len(result.Artifacts))
	for format, data := range result.Artifacts {
		artifacts[format] = string(data)
	}
	writeJSON(w, http.StatusOK, PackResponse{
		ManifestHash: result.ManifestHash,
		Layout:       result.Layout,
		Artifacts:    artifacts,
		Stats: PackStats{
			Tiles:    result.Stats.Tiles,
			Merges:   result.Stats.Merges,
			Moves:    result.Stats.Moves,
			PackMS:   result.Stats.PackTime.Milliseconds(),
			RenderMS: result.Stats.RenderTime.Milliseconds(),
		},
		Cached: result.CacheInfo.LayoutHit,
	})
}

// =============================================================================
// Response Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeCodedError maps err's code to a status. Uncoded errors are internal.
func writeCodedError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(code), ErrorResponse{
		Error: ErrorBody{
			Code:    string(code),
			Message: errors.UserMessage(err),
			Details: details(err),
		},
		RequestID: RequestIDFrom(r.Context()),
	})
}

// details lists the individual problems behind a coded error, such as each
// failed manifest check.
func details(err error) []string {
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Cause == nil {
		return nil
	}
	var out []string
	for _, cause := range multierr.Errors(e.Cause) {
		out = append(out, cause.Error())
	}
	return out
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:     ErrorBody{Code: code, Message: message},
		RequestID: RequestIDFrom(r.Context()),
	})
}
