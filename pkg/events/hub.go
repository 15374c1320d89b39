// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package events fans engine updates out to observers.
package events

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub is a synchronous observer list. Listeners run on the publishing
// goroutine in subscription order; a panicking listener is logged and skipped.
type Hub[T any] struct {
	name string

	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(T)
}

// NewHub creates an empty hub. name is used in log lines only.
func NewHub[T any](name string) *Hub[T] {
	return &Hub[T]{
		name:      name,
		listeners: make(map[int]func(T)),
	}
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is safe to call more than once.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.listeners, id)
		})
	}
}

// Publish delivers v to every current listener.
func (h *Hub[T]) Publish(v T) {
	for _, fn := range h.snapshot() {
		h.deliver(fn, v)
	}
}

// Len returns the number of listeners.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Clear removes every listener.
func (h *Hub[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = make(map[int]func(T))
}

func (h *Hub[T]) snapshot() []func(T) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.listeners[id])
	}
	return fns
}

func (h *Hub[T]) deliver(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("%s listener panicked: %v", h.name, r)
		}
	}()
	fn(v)
}
