// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/matuskalis/speaksharp-gamification/pkg/metrics"
)

// Factory builds an uninitialized engine for userID.
type Factory func(userID string) *Engine

// Registry owns one engine per user for the host service.
type Registry struct {
	newEngine Factory
	metrics   *metrics.Collectors

	mu      sync.RWMutex
	engines map[string]*Engine
	closed  bool
}

func NewRegistry(newEngine Factory, m *metrics.Collectors) *Registry {
	return &Registry{
		newEngine: newEngine,
		metrics:   m,
		engines:   make(map[string]*Engine),
	}
}

// Get returns the initialized engine of userID, creating it on first use.
// It returns nil once the registry is closed.
func (r *Registry) Get(ctx context.Context, userID string) *Engine {
	r.mu.RLock()
	e, ok := r.engines[userID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	if e, ok = r.engines[userID]; !ok {
		e = r.newEngine(userID)
		r.engines[userID] = e
		r.metrics.SetActiveEngines(len(r.engines))
	}
	r.mu.Unlock()

	e.Init(ctx)
	return e
}

// Lookup returns the engine of userID without creating one.
func (r *Registry) Lookup(userID string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[userID]
	return e, ok
}

// Remove disposes and forgets the engine of userID.
func (r *Registry) Remove(userID string) bool {
	r.mu.Lock()
	e, ok := r.engines[userID]
	delete(r.engines, userID)
	r.metrics.SetActiveEngines(len(r.engines))
	r.mu.Unlock()

	if ok {
		e.Dispose()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

// IDs returns the user IDs with a live engine, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Close disposes every engine. Later calls to Get return nil.
func (r *Registry) Close() {
	r.mu.Lock()
	engines := r.engines
	r.engines = make(map[string]*Engine)
	r.closed = true
	r.metrics.SetActiveEngines(0)
	r.mu.Unlock()

	for _, e := range engines {
		e.Dispose()
	}
}
