// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package store persists engine snapshots as opaque JSON blobs under
// namespaced keys. Every backend keeps one value per key and no history.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key has never been written or was deleted.
	ErrNotFound = errors.New("store: key not found")
	// ErrCorrupt is returned by the snapshot loaders when a stored value cannot be decoded.
	ErrCorrupt = errors.New("store: corrupt snapshot")
)

// Store is a durable key/value port. Keys are relative to the store's namespace.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key in the namespace.
	Clear(ctx context.Context) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Kind identifies one of the per-user snapshots.
type Kind string

const (
	KindHearts Kind = "hearts"
	KindXP     Kind = "xp"
	KindStreak Kind = "streak"
)

// Kinds lists every snapshot kind a user owns.
var Kinds = []Kind{KindHearts, KindXP, KindStreak}

// Key returns the store key of a user's snapshot.
func Key(userID string, kind Kind) string {
	return userID + ":" + string(kind)
}

// KindRewards holds the level rewards already granted to a user. It is not
// part of Kinds, so resetting a learner keeps the grant history.
const KindRewards Kind = "rewards"
