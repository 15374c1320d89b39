// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matuskalis/speaksharp-gamification/pkg/gamification"

	"github.com/sirupsen/logrus"
)

// Snapshots reads and writes the typed per-user snapshots on top of a Store.
//
// Loaders never fail to produce a value: a missing key yields the default
// state with a nil error, and an undecodable value yields the default state
// with an error wrapping ErrCorrupt so callers can log and count it.
type Snapshots struct {
	store Store
}

// NewSnapshots wraps s.
func NewSnapshots(s Store) *Snapshots {
	return &Snapshots{store: s}
}

// Store returns the underlying store.
func (s *Snapshots) Store() Store {
	return s.store
}

func (s *Snapshots) LoadHearts(ctx context.Context, userID string) (gamification.HeartState, error) {
	return load(ctx, s.store, Key(userID, KindHearts), gamification.NewHeartState())
}

func (s *Snapshots) SaveHearts(ctx context.Context, userID string, h gamification.HeartState) error {
	return save(ctx, s.store, Key(userID, KindHearts), h)
}

func (s *Snapshots) LoadXP(ctx context.Context, userID string) (gamification.XPState, error) {
	return load(ctx, s.store, Key(userID, KindXP), gamification.NewXPState())
}

func (s *Snapshots) SaveXP(ctx context.Context, userID string, x gamification.XPState) error {
	return save(ctx, s.store, Key(userID, KindXP), x)
}

func (s *Snapshots) LoadStreak(ctx context.Context, userID string) (gamification.StreakState, error) {
	return load(ctx, s.store, Key(userID, KindStreak), gamification.StreakState{})
}

func (s *Snapshots) SaveStreak(ctx context.Context, userID string, st gamification.StreakState) error {
	return save(ctx, s.store, Key(userID, KindStreak), st)
}

// DeleteUser removes every snapshot of userID. All deletes are attempted.
func (s *Snapshots) DeleteUser(ctx context.Context, userID string) error {
	var errs []error
	for _, kind := range Kinds {
		if err := s.store.Delete(ctx, Key(userID, kind)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func load[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		logrus.Debugf("no snapshot at %s, using defaults", key)
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("failed to read %s: %w", key, err)
	}

	// Decode over a copy of the default so absent fields keep default values.
	v := def
	if err := json.Unmarshal(data, &v); err != nil {
		return def, fmt.Errorf("%w at %s: %v", ErrCorrupt, key, err)
	}
	return v, nil
}

func save[T any](ctx context.Context, s Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return err
	}
	return nil
}
