// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matuskalis/speaksharp-gamification/pkg/gamification"
)

func TestSnapshots_DefaultsForNewUser(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshots(NewMemoryStore())

	h, err := s.LoadHearts(ctx, "new-user")
	if err != nil {
		t.Fatalf("LoadHearts() error = %v", err)
	}
	if h.Current != gamification.MaxHearts || h.Max != gamification.MaxHearts || h.NextRefillAt != nil {
		t.Errorf("hearts = %+v, expected a full pool", h)
	}

	x, err := s.LoadXP(ctx, "new-user")
	if err != nil {
		t.Fatalf("LoadXP() error = %v", err)
	}
	if x.Level != 1 || x.ToNextLevel != gamification.XPPerLevel || x.Total != 0 {
		t.Errorf("xp = %+v, expected level 1", x)
	}

	st, err := s.LoadStreak(ctx, "new-user")
	if err != nil {
		t.Fatalf("LoadStreak() error = %v", err)
	}
	if st.Current != 0 || !st.LastActiveDate.IsZero() {
		t.Errorf("streak = %+v, expected zero", st)
	}
}

func TestSnapshots_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewSnapshots(backend)
			now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

			h := gamification.NewHeartState()
			gamification.LoseHeart(&h, now)
			if err := s.SaveHearts(ctx, "u1", h); err != nil {
				t.Fatalf("SaveHearts() error = %v", err)
			}

			x := gamification.NewXPState()
			gamification.AddXP(&x, 125, false)
			x.TodayDate = "2026-10-14"
			if err := s.SaveXP(ctx, "u1", x); err != nil {
				t.Fatalf("SaveXP() error = %v", err)
			}

			st := gamification.StreakState{Current: 3, Longest: 9, LastActiveDate: "2026-10-14"}
			if err := s.SaveStreak(ctx, "u1", st); err != nil {
				t.Fatalf("SaveStreak() error = %v", err)
			}

			gotH, err := s.LoadHearts(ctx, "u1")
			if err != nil {
				t.Fatalf("LoadHearts() error = %v", err)
			}
			if gotH.Current != 4 || gotH.NextRefillAt == nil || !gotH.NextRefillAt.Equal(now.Add(gamification.HeartRefillInterval)) {
				t.Errorf("hearts = %+v", gotH)
			}

			gotX, _ := s.LoadXP(ctx, "u1")
			if gotX != x {
				t.Errorf("xp = %+v, expected %+v", gotX, x)
			}

			gotS, _ := s.LoadStreak(ctx, "u1")
			if gotS != st {
				t.Errorf("streak = %+v, expected %+v", gotS, st)
			}
		})
	}
}

func TestSnapshots_CorruptFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	s := NewSnapshots(mem)

	_ = mem.Set(ctx, Key("u1", KindHearts), []byte(`{"current":`))
	_ = mem.Set(ctx, Key("u1", KindXP), []byte(`["not","an","object"]`))
	_ = mem.Set(ctx, Key("u1", KindStreak), []byte(`{"lastDate":"yesterday"}`))

	h, err := s.LoadHearts(ctx, "u1")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadHearts() error = %v, expected ErrCorrupt", err)
	}
	if h.Current != gamification.MaxHearts {
		t.Errorf("hearts = %+v, expected defaults", h)
	}

	x, err := s.LoadXP(ctx, "u1")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadXP() error = %v, expected ErrCorrupt", err)
	}
	if x.Level != 1 {
		t.Errorf("xp = %+v, expected defaults", x)
	}

	st, err := s.LoadStreak(ctx, "u1")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadStreak() error = %v, expected ErrCorrupt", err)
	}
	if st.Current != 0 {
		t.Errorf("streak = %+v, expected defaults", st)
	}
}

func TestSnapshots_PartialRecordKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	s := NewSnapshots(mem)

	_ = mem.Set(ctx, Key("u1", KindHearts), []byte(`{"current":2}`))

	h, err := s.LoadHearts(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadHearts() error = %v", err)
	}
	if h.Current != 2 || h.Max != gamification.MaxHearts {
		t.Errorf("hearts = %+v, expected current 2 with default max", h)
	}
}

func TestSnapshots_DeleteUser(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	s := NewSnapshots(mem)

	_ = s.SaveHearts(ctx, "u1", gamification.NewHeartState())
	_ = s.SaveXP(ctx, "u1", gamification.NewXPState())
	_ = s.SaveStreak(ctx, "u1", gamification.StreakState{})
	_ = s.SaveXP(ctx, "u2", gamification.NewXPState())

	if err := s.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if mem.Len() != 1 {
		t.Errorf("Len() = %d, expected only u2 remaining", mem.Len())
	}
}

func TestSnapshots_WriteFault(t *testing.T) {
	mem := NewMemoryStore()
	mem.SetFailWrites(errors.New("quota exceeded"))
	s := NewSnapshots(mem)

	if err := s.SaveXP(context.Background(), "u1", gamification.NewXPState()); err == nil {
		t.Error("SaveXP() error = nil, expected the write fault")
	}
}

func TestHealthChecker(t *testing.T) {
	ctx := context.Background()

	if !NewHealthChecker(NewMemoryStore()).IsHealthy(ctx) {
		t.Error("memory store reported unhealthy")
	}

	client, mr := setupTestRedis(t)
	checker := NewHealthChecker(NewRedisStore(client, RedisStoreConfig{}))
	if err := checker.Check(ctx); err != nil {
		t.Errorf("Check() error = %v with redis up", err)
	}
	mr.Close()
	if checker.IsHealthy(ctx) {
		t.Error("IsHealthy() = true with redis down")
	}

	if !NewHealthChecker(setupTestSQLite(t, "health")).IsHealthy(ctx) {
		t.Error("sqlite store reported unhealthy")
	}
}
