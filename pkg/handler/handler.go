// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package handler exposes the per-learner engines over a small JSON API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/matuskalis/speaksharp-gamification/pkg/common"
	"github.com/matuskalis/speaksharp-gamification/pkg/engine"

	"github.com/sirupsen/logrus"
)

const (
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes = 4 << 10

	pathUserID = "userID"
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:@-]{1,128}$`)

// Engines resolves the engine of a learner.
type Engines interface {
	Get(ctx context.Context, userID string) *engine.Engine
}

// Handler serves the gamification API.
type Handler struct {
	engines Engines
}

func New(engines Engines) *Handler {
	return &Handler{engines: engines}
}

// Routes registers the API on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/users/{userID}/outcomes", h.ReportOutcome)
	mux.HandleFunc("POST /v1/users/{userID}/hearts/refill", h.RefillHearts)
	mux.HandleFunc("POST /v1/users/{userID}/xp/sync", h.SyncXP)
	mux.HandleFunc("GET /v1/users/{userID}/state", h.GetState)
	mux.HandleFunc("DELETE /v1/users/{userID}/state", h.ResetState)
	return mux
}

type outcomeRequest struct {
	Correct *bool `json:"correct"`
}

type syncXPRequest struct {
	Total *int `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ReportOutcome handles POST /v1/users/{userID}/outcomes.
func (h *Handler) ReportOutcome(w http.ResponseWriter, r *http.Request) {
	scope := common.StartScope(r.Context(), "Handler.ReportOutcome")
	defer scope.Finish()

	var req outcomeRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, scope, http.StatusBadRequest, err)
		return
	}
	if req.Correct == nil {
		h.fail(w, scope, http.StatusBadRequest, errors.New("correct is required"))
		return
	}

	e, ok := h.engine(w, r, scope)
	if !ok {
		return
	}

	scope.WithField("correct", *req.Correct)
	writeJSON(w, http.StatusOK, e.ReportOutcome(scope.Ctx, *req.Correct))
}

// RefillHearts handles POST /v1/users/{userID}/hearts/refill.
func (h *Handler) RefillHearts(w http.ResponseWriter, r *http.Request) {
	scope := common.StartScope(r.Context(), "Handler.RefillHearts")
	defer scope.Finish()

	e, ok := h.engine(w, r, scope)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e.RefillHearts(scope.Ctx))
}

// SyncXP handles POST /v1/users/{userID}/xp/sync.
func (h *Handler) SyncXP(w http.ResponseWriter, r *http.Request) {
	scope := common.StartScope(r.Context(), "Handler.SyncXP")
	defer scope.Finish()

	var req syncXPRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, scope, http.StatusBadRequest, err)
		return
	}
	if req.Total == nil {
		h.fail(w, scope, http.StatusBadRequest, errors.New("total is required"))
		return
	}
	if *req.Total < 0 {
		h.fail(w, scope, http.StatusBadRequest, fmt.Errorf("total must not be negative, got %d", *req.Total))
		return
	}

	e, ok := h.engine(w, r, scope)
	if !ok {
		return
	}

	scope.WithField("total", *req.Total)
	writeJSON(w, http.StatusOK, e.SyncXP(scope.Ctx, *req.Total))
}

// GetState handles GET /v1/users/{userID}/state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	scope := common.StartScope(r.Context(), "Handler.GetState")
	defer scope.Finish()

	e, ok := h.engine(w, r, scope)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e.Snapshot())
}

// ResetState handles DELETE /v1/users/{userID}/state.
func (h *Handler) ResetState(w http.ResponseWriter, r *http.Request) {
	scope := common.StartScope(r.Context(), "Handler.ResetState")
	defer scope.Finish()

	e, ok := h.engine(w, r, scope)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e.Reset(scope.Ctx))
	scope.Log.Info("learner state reset")
}

func (h *Handler) engine(w http.ResponseWriter, r *http.Request, scope *common.Scope) (*engine.Engine, bool) {
	userID := r.PathValue(pathUserID)
	if !userIDPattern.MatchString(userID) {
		h.fail(w, scope, http.StatusBadRequest, fmt.Errorf("invalid user id %q", userID))
		return nil, false
	}
	scope.WithField("user_id", userID)

	e := h.engines.Get(scope.Ctx, userID)
	if e == nil {
		h.fail(w, scope, http.StatusServiceUnavailable, errors.New("service is shutting down"))
		return nil, false
	}
	return e, true
}

func (h *Handler) fail(w http.ResponseWriter, scope *common.Scope, status int, err error) {
	scope.TraceError(err)
	scope.Log.WithError(err).Warnf("request rejected with status %d", status)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to write response")
	}
}
