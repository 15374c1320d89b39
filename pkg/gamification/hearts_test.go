// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gamification

import (
	"math/rand"
	"testing"
	"time"
)

func checkHeartInvariants(t *testing.T, h *HeartState) {
	t.Helper()
	if h.Current < 0 || h.Current > h.Max {
		t.Fatalf("Current = %d, expected within [0, %d]", h.Current, h.Max)
	}
	if (h.NextRefillAt != nil) != (h.Current < h.Max) {
		t.Fatalf("NextRefillAt set = %v but Current = %d/%d", h.NextRefillAt != nil, h.Current, h.Max)
	}
}

func TestLoseHeart(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	h := NewHeartState()
	if !LoseHeart(&h, now) {
		t.Fatal("LoseHeart() = false, expected true on a full pool")
	}
	if h.Current != 4 {
		t.Errorf("Current = %d, expected 4", h.Current)
	}
	if h.LastLostAt == nil || !h.LastLostAt.Equal(now) {
		t.Errorf("LastLostAt = %v, expected %v", h.LastLostAt, now)
	}
	if h.NextRefillAt == nil || !h.NextRefillAt.Equal(now.Add(HeartRefillInterval)) {
		t.Errorf("NextRefillAt = %v, expected %v", h.NextRefillAt, now.Add(HeartRefillInterval))
	}

	// A second loss keeps the pending refill point.
	later := now.Add(5 * time.Minute)
	LoseHeart(&h, later)
	if !h.NextRefillAt.Equal(now.Add(HeartRefillInterval)) {
		t.Errorf("NextRefillAt moved to %v after second loss", h.NextRefillAt)
	}
	if !h.LastLostAt.Equal(later) {
		t.Errorf("LastLostAt = %v, expected %v", h.LastLostAt, later)
	}
	checkHeartInvariants(t, &h)
}

func TestLoseHeart_EmptyPoolIsNoop(t *testing.T) {
	now := time.Now()
	next := now.Add(10 * time.Minute)
	lost := now.Add(-time.Minute)
	h := HeartState{Current: 0, Max: MaxHearts, LastLostAt: &lost, NextRefillAt: &next}

	if LoseHeart(&h, now) {
		t.Fatal("LoseHeart() = true, expected false on an empty pool")
	}
	if h.Current != 0 {
		t.Errorf("Current = %d, expected 0", h.Current)
	}
	if !h.LastLostAt.Equal(lost) {
		t.Errorf("LastLostAt changed on a no-op")
	}
}

func TestRefillHearts(t *testing.T) {
	now := time.Now()
	h := NewHeartState()
	LoseHeart(&h, now)
	LoseHeart(&h, now)

	RefillHearts(&h)

	if h.Current != MaxHearts {
		t.Errorf("Current = %d, expected %d", h.Current, MaxHearts)
	}
	if h.NextRefillAt != nil {
		t.Errorf("NextRefillAt = %v, expected nil", h.NextRefillAt)
	}
	checkHeartInvariants(t, &h)
}

func TestRegenerateHearts(t *testing.T) {
	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		current    int
		elapsed    time.Duration  // since NextRefillAt
		expectGain int
		expectCur  int
		expectNext *time.Duration // offset from original NextRefillAt, nil for cleared
		beforeDue  bool
	}{
		{
			name:      "not due yet",
			current:   3,
			elapsed:   -time.Second,
			beforeDue: true,
			expectCur: 3,
		},
		{
			name:       "exactly due",
			current:    3,
			elapsed:    0,
			expectGain: 1,
			expectCur:  4,
			expectNext: durationPtr(HeartRefillInterval),
		},
		{
			name:       "due a few seconds ago chains from schedule",
			current:    1,
			elapsed:    7 * time.Second,
			expectGain: 1,
			expectCur:  2,
			expectNext: durationPtr(HeartRefillInterval),
		},
		{
			name:       "last missing heart clears schedule",
			current:    4,
			elapsed:    time.Second,
			expectGain: 1,
			expectCur:  5,
		},
		{
			name:       "catch-up applies several intervals at once",
			current:    0,
			elapsed:    2*HeartRefillInterval + time.Minute,
			expectGain: 3,
			expectCur:  3,
			expectNext: durationPtr(3 * HeartRefillInterval),
		},
		{
			name:       "catch-up caps at max",
			current:    1,
			elapsed:    10 * HeartRefillInterval,
			expectGain: 4,
			expectCur:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := base
			h := HeartState{Current: tt.current, Max: MaxHearts, NextRefillAt: &next}

			gained := RegenerateHearts(&h, base.Add(tt.elapsed))

			if gained != tt.expectGain {
				t.Errorf("RegenerateHearts() = %d, expected %d", gained, tt.expectGain)
			}
			if h.Current != tt.expectCur {
				t.Errorf("Current = %d, expected %d", h.Current, tt.expectCur)
			}
			switch {
			case tt.beforeDue:
				if h.NextRefillAt == nil || !h.NextRefillAt.Equal(base) {
					t.Errorf("NextRefillAt = %v, expected unchanged %v", h.NextRefillAt, base)
				}
			case tt.expectNext == nil:
				if h.NextRefillAt != nil {
					t.Errorf("NextRefillAt = %v, expected nil", h.NextRefillAt)
				}
			default:
				want := base.Add(*tt.expectNext)
				if h.NextRefillAt == nil || !h.NextRefillAt.Equal(want) {
					t.Errorf("NextRefillAt = %v, expected %v", h.NextRefillAt, want)
				}
			}
			checkHeartInvariants(t, &h)
		})
	}
}

func TestRegenerateHearts_CatchUpAfterThreeIntervals(t *testing.T) {
	lostAt := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	next := lostAt.Add(HeartRefillInterval)
	h := HeartState{Current: 2, Max: MaxHearts, LastLostAt: &lostAt, NextRefillAt: &next}

	RegenerateHearts(&h, lostAt.Add(3*HeartRefillInterval))

	if h.Current != 5 {
		t.Errorf("Current = %d, expected 5", h.Current)
	}
	if h.NextRefillAt != nil {
		t.Errorf("NextRefillAt = %v, expected nil", h.NextRefillAt)
	}
}

func TestRegenerateHearts_PeriodicTicksDoNotDrift(t *testing.T) {
	start := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	h := NewHeartState()
	LoseHeart(&h, start)
	LoseHeart(&h, start)
	LoseHeart(&h, start)

	// Tick every second with a little jitter for two hours.
	now := start
	for i := 0; i < 2*60*60; i++ {
		now = now.Add(time.Second + 3*time.Millisecond)
		RegenerateHearts(&h, now)
		checkHeartInvariants(t, &h)
		if h.Current == MaxHearts {
			break
		}
	}

	if h.Current != MaxHearts {
		t.Fatalf("Current = %d, expected %d", h.Current, MaxHearts)
	}
	// Third heart is due exactly three intervals after the first loss.
	if got := now.Sub(start); got < 3*HeartRefillInterval || got > 3*HeartRefillInterval+2*time.Second {
		t.Errorf("pool full after %v, expected about %v", got, 3*HeartRefillInterval)
	}
}

func TestHeartBounds_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	for run := 0; run < 50; run++ {
		h := NewHeartState()
		for step := 0; step < 200; step++ {
			switch rng.Intn(4) {
			case 0, 1:
				LoseHeart(&h, now)
			case 2:
				now = now.Add(time.Duration(rng.Intn(90)) * time.Minute)
				RegenerateHearts(&h, now)
			case 3:
				now = now.Add(time.Duration(rng.Intn(60)) * time.Second)
				RegenerateHearts(&h, now)
			}
			checkHeartInvariants(t, &h)
		}
	}
}

func TestTimeUntilRefill(t *testing.T) {
	now := time.Now()
	h := NewHeartState()
	if got := TimeUntilRefill(&h, now); got != 0 {
		t.Errorf("TimeUntilRefill() = %v on full pool, expected 0", got)
	}

	LoseHeart(&h, now)
	if got := TimeUntilRefill(&h, now.Add(10*time.Minute)); got != 20*time.Minute {
		t.Errorf("TimeUntilRefill() = %v, expected 20m", got)
	}
	if got := TimeUntilRefill(&h, now.Add(time.Hour)); got != 0 {
		t.Errorf("TimeUntilRefill() = %v when overdue, expected 0", got)
	}
}

func TestNormalizeHearts(t *testing.T) {
	now := time.Now()
	stale := now.Add(-time.Hour)

	tests := []struct {
		name      string
		in        HeartState
		expectCur int
	}{
		{"over max is clamped", HeartState{Current: 9, Max: 9}, MaxHearts},
		{"negative is clamped", HeartState{Current: -2, Max: MaxHearts}, 0},
		{"missing refill is re-armed", HeartState{Current: 3, Max: MaxHearts}, 3},
		{"spurious refill is cleared", HeartState{Current: 5, Max: MaxHearts, NextRefillAt: &stale}, 5},
		{"zero value becomes a valid pool", HeartState{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.in
			if !NormalizeHearts(&h, now) {
				t.Error("NormalizeHearts() = false, expected a repair")
			}
			if h.Current != tt.expectCur {
				t.Errorf("Current = %d, expected %d", h.Current, tt.expectCur)
			}
			checkHeartInvariants(t, &h)
		})
	}

	valid := NewHeartState()
	if NormalizeHearts(&valid, now) {
		t.Error("NormalizeHearts() = true on a valid pool")
	}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
