// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package mock

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/matuskalis/speaksharp-gamification/pkg/activity"
	"github.com/matuskalis/speaksharp-gamification/pkg/gamification"
)

// ErrOffline is returned by Backend while it is switched offline.
var ErrOffline = errors.New("mock: backend offline")

// Backend is an in-memory activity backend implementing activity.StreakAPI.
// It applies the same day-boundary rules as the engine so it can stand in for
// the real service in tests and simulations. It also serves the HTTP contract
// via ServeHTTP. Safe for concurrent use.
type Backend struct {
	// GetStreakFunc is called when GetStreak is invoked
	GetStreakFunc func(ctx context.Context, userID string) (activity.StreakResponse, error)

	// RecordActivityFunc is called when RecordActivity is invoked
	RecordActivityFunc func(ctx context.Context, userID string, req activity.ActivityRequest) (activity.StreakResponse, error)

	mu      sync.Mutex
	offline bool
	streaks map[string]gamification.StreakState

	// Call tracking
	getStreakCalls      []string
	recordActivityCalls []RecordActivityCall
}

// RecordActivityCall tracks parameters for RecordActivity calls
type RecordActivityCall struct {
	UserID  string
	Request activity.ActivityRequest
}

// NewBackend creates an online backend with no streaks.
func NewBackend() *Backend {
	return &Backend{streaks: make(map[string]gamification.StreakState)}
}

// SetOffline makes every call fail with ErrOffline.
func (b *Backend) SetOffline(offline bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offline = offline
}

// SetStreak seeds the server-side streak of userID.
func (b *Backend) SetStreak(userID string, s gamification.StreakState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streaks[userID] = s
}

// Streak returns the server-side streak of userID.
func (b *Backend) Streak(userID string) gamification.StreakState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streaks[userID]
}

// GetStreakCalls returns the user IDs GetStreak was called with.
func (b *Backend) GetStreakCalls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.getStreakCalls...)
}

// RecordActivityCalls returns the RecordActivity calls received so far.
func (b *Backend) RecordActivityCalls() []RecordActivityCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordActivityCall(nil), b.recordActivityCalls...)
}

func (b *Backend) GetStreak(ctx context.Context, userID string) (activity.StreakResponse, error) {
	b.mu.Lock()
	b.getStreakCalls = append(b.getStreakCalls, userID)
	fn := b.GetStreakFunc
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, userID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.offline {
		return activity.StreakResponse{}, ErrOffline
	}
	return toResponse(b.streaks[userID]), nil
}

func (b *Backend) RecordActivity(ctx context.Context, userID string, req activity.ActivityRequest) (activity.StreakResponse, error) {
	b.mu.Lock()
	b.recordActivityCalls = append(b.recordActivityCalls, RecordActivityCall{UserID: userID, Request: req})
	fn := b.RecordActivityFunc
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, userID, req)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.offline {
		return activity.StreakResponse{}, ErrOffline
	}
	s := b.streaks[userID]
	gamification.AdvanceStreak(&s, req.ActivityDate)
	b.streaks[userID] = s
	return toResponse(s), nil
}

// ServeHTTP implements the activity backend's HTTP contract on top of the
// same in-memory state.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/users/{userID}/streak", func(w http.ResponseWriter, r *http.Request) {
		resp, err := b.GetStreak(r.Context(), r.PathValue("userID"))
		writeResponse(w, resp, err)
	})
	mux.HandleFunc("POST /v1/users/{userID}/activity", func(w http.ResponseWriter, r *http.Request) {
		var req activity.ActivityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := b.RecordActivity(r.Context(), r.PathValue("userID"), req)
		writeResponse(w, resp, err)
	})
	mux.ServeHTTP(w, r)
}

func writeResponse(w http.ResponseWriter, resp activity.StreakResponse, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func toResponse(s gamification.StreakState) activity.StreakResponse {
	return activity.StreakResponse{
		CurrentStreak:  s.Current,
		LongestStreak:  s.Longest,
		LastActiveDate: s.LastActiveDate,
	}
}
