// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gamification

import (
	"time"

	"github.com/sirupsen/logrus"
)

// HeartState is the persisted heart pool.
// NextRefillAt is set if and only if Current < Max, and it always points at
// the next single heart gain even when several hearts are missing.
type HeartState struct {
	Current      int        `json:"current"`
	Max          int        `json:"max"`
	LastLostAt   *time.Time `json:"lastLostAt"`
	NextRefillAt *time.Time `json:"nextRefillAt"`
}

// NewHeartState returns a full pool.
func NewHeartState() HeartState {
	return HeartState{
		Current: MaxHearts,
		Max:     MaxHearts,
	}
}

// IsFull reports whether no heart is missing.
func (h *HeartState) IsFull() bool {
	return h.Current >= h.Max
}

// LoseHeart spends one heart. It is a no-op when the pool is empty.
// Returns true if a heart was spent.
func LoseHeart(h *HeartState, now time.Time) bool {
	if h.Current <= 0 {
		logrus.Debugf("lose heart ignored: pool already empty")
		return false
	}

	h.Current--
	lostAt := now
	h.LastLostAt = &lostAt

	if h.NextRefillAt == nil {
		next := now.Add(HeartRefillInterval)
		h.NextRefillAt = &next
	}

	logrus.Debugf("heart lost: %d/%d, next refill at %v", h.Current, h.Max, *h.NextRefillAt)
	return true
}

// RefillHearts restores the whole pool unconditionally.
func RefillHearts(h *HeartState) {
	h.Current = h.Max
	h.NextRefillAt = nil
	logrus.Debugf("hearts refilled to %d", h.Max)
}

// RegenerateHearts applies every heart gain that has come due by now and
// returns how many hearts were gained. The schedule is chained from the
// previous refill point, not from now, so periodic ticks do not drift and a
// resume after a long suspension catches up in a single step.
func RegenerateHearts(h *HeartState, now time.Time) int {
	if h.NextRefillAt == nil || now.Before(*h.NextRefillAt) {
		return 0
	}

	due := 1 + int(now.Sub(*h.NextRefillAt)/HeartRefillInterval)
	missing := h.Max - h.Current
	gained := due
	if gained > missing {
		gained = missing
	}
	if gained < 0 {
		gained = 0
	}
	h.Current += gained

	if h.Current < h.Max {
		next := h.NextRefillAt.Add(time.Duration(due) * HeartRefillInterval)
		h.NextRefillAt = &next
	} else {
		h.NextRefillAt = nil
	}

	logrus.Debugf("hearts regenerated: +%d (due %d) -> %d/%d", gained, due, h.Current, h.Max)
	return gained
}

// TimeUntilRefill returns the countdown to the next heart, or zero when none is pending.
func TimeUntilRefill(h *HeartState, now time.Time) time.Duration {
	if h.NextRefillAt == nil {
		return 0
	}
	remaining := h.NextRefillAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NormalizeHearts repairs a snapshot that breaks the pool invariants, e.g. one
// written by an older build or edited by hand. Returns true if anything changed.
func NormalizeHearts(h *HeartState, now time.Time) bool {
	changed := false

	if h.Max != MaxHearts {
		h.Max = MaxHearts
		changed = true
	}
	if h.Current > h.Max {
		h.Current = h.Max
		changed = true
	}
	if h.Current < 0 {
		h.Current = 0
		changed = true
	}

	switch {
	case h.Current >= h.Max && h.NextRefillAt != nil:
		h.NextRefillAt = nil
		changed = true
	case h.Current < h.Max && h.NextRefillAt == nil:
		next := now.Add(HeartRefillInterval)
		h.NextRefillAt = &next
		changed = true
	}

	if changed {
		logrus.Debugf("heart snapshot normalized to %d/%d", h.Current, h.Max)
	}
	return changed
}
