// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gamification

import (
	"math/rand"
	"testing"
)

func TestAddXP(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		amount      int
		expectTotal int
		expectLevel int
		expectNext  int
		expectGain  int
	}{
		{"first correct answer", 0, 10, 10, 1, 90, 0},
		{"lands exactly on boundary", 90, 10, 100, 2, 100, 1},
		{"crosses boundary", 95, 10, 105, 2, 95, 1},
		{"multi-level jump", 40, 275, 315, 4, 85, 3},
		{"zero is ignored", 40, 0, 40, 1, 60, 0},
		{"negative is ignored", 40, -30, 40, 1, 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := NewXPState()
			AddXP(&x, tt.start, false)

			gained := AddXP(&x, tt.amount, false)

			if x.Total != tt.expectTotal {
				t.Errorf("Total = %d, expected %d", x.Total, tt.expectTotal)
			}
			if x.Level != tt.expectLevel {
				t.Errorf("Level = %d, expected %d", x.Level, tt.expectLevel)
			}
			if x.ToNextLevel != tt.expectNext {
				t.Errorf("ToNextLevel = %d, expected %d", x.ToNextLevel, tt.expectNext)
			}
			if gained != tt.expectGain {
				t.Errorf("AddXP() = %d levels, expected %d", gained, tt.expectGain)
			}
		})
	}
}

func TestAddXP_TracksTodayTotal(t *testing.T) {
	x := NewXPState()
	AddXP(&x, 10, false)
	AddXP(&x, 5, true)

	if x.TodayTotal != 15 {
		t.Errorf("TodayTotal = %d, expected 15", x.TodayTotal)
	}
}

// The iterative path in AddXP and the closed form used by SyncXPFromBackend
// must agree for every reachable total.
func TestLevelFormulasAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		x := NewXPState()
		for step := 0; step < 50; step++ {
			amount := rng.Intn(250) + 1
			if step%5 == 0 {
				amount = XPPerCorrect
			}
			AddXP(&x, amount, false)

			level, toNext := LevelForTotal(x.Total)
			if x.Level != level || x.ToNextLevel != toNext {
				t.Fatalf("total %d: iterative (%d, %d) != closed form (%d, %d)",
					x.Total, x.Level, x.ToNextLevel, level, toNext)
			}
		}
	}

	for total := 0; total <= 5*XPPerLevel; total++ {
		x := NewXPState()
		AddXP(&x, total, false)
		level, toNext := LevelForTotal(total)
		if x.Level != level || x.ToNextLevel != toNext {
			t.Fatalf("total %d: iterative (%d, %d) != closed form (%d, %d)",
				total, x.Level, x.ToNextLevel, level, toNext)
		}
	}
}

func TestSyncXPFromBackend(t *testing.T) {
	tests := []struct {
		name        string
		local       int
		remote      int
		expectApply bool
		expectTotal int
		expectLevel int
	}{
		{"remote ahead is applied", 25, 230, true, 230, 3},
		{"remote equal is ignored", 230, 230, false, 230, 3},
		{"remote behind is ignored", 230, 40, false, 230, 3},
		{"remote zero is ignored", 25, 0, false, 25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := NewXPState()
			AddXP(&x, tt.local, false)

			applied := SyncXPFromBackend(&x, tt.remote)

			if applied != tt.expectApply {
				t.Errorf("SyncXPFromBackend() = %v, expected %v", applied, tt.expectApply)
			}
			if x.Total != tt.expectTotal {
				t.Errorf("Total = %d, expected %d", x.Total, tt.expectTotal)
			}
			if x.Level != tt.expectLevel {
				t.Errorf("Level = %d, expected %d", x.Level, tt.expectLevel)
			}
		})
	}
}

func TestSyncXPFromBackend_NeverDecreases(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x := NewXPState()
	prev := 0
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			AddXP(&x, rng.Intn(30), false)
		} else {
			SyncXPFromBackend(&x, rng.Intn(2000))
		}
		if x.Total < prev {
			t.Fatalf("Total decreased from %d to %d", prev, x.Total)
		}
		prev = x.Total
	}
}

func TestRollTodayTotal(t *testing.T) {
	x := NewXPState()
	x.TodayTotal = 40

	if RollTodayTotal(&x, "2026-10-14") {
		t.Error("RollTodayTotal() = true for an undated counter, expected false")
	}
	if x.TodayTotal != 40 || x.TodayDate != "2026-10-14" {
		t.Errorf("undated counter = (%d, %s), expected (40, 2026-10-14)", x.TodayTotal, x.TodayDate)
	}

	if RollTodayTotal(&x, "2026-10-14") {
		t.Error("RollTodayTotal() = true on the same day")
	}

	if !RollTodayTotal(&x, "2026-10-15") {
		t.Error("RollTodayTotal() = false on a new day")
	}
	if x.TodayTotal != 0 {
		t.Errorf("TodayTotal = %d, expected 0", x.TodayTotal)
	}
}

func TestEffectiveXP(t *testing.T) {
	x := XPState{Total: 120, TodayTotal: 30, Level: 2, ToNextLevel: 80, TodayDate: "2026-10-14"}

	if got := EffectiveXP(x, "2026-10-14"); got.TodayTotal != 30 {
		t.Errorf("TodayTotal = %d on the same day, expected 30", got.TodayTotal)
	}
	got := EffectiveXP(x, "2026-10-15")
	if got.TodayTotal != 0 || got.Total != 120 {
		t.Errorf("next day = (total %d, today %d), expected (120, 0)", got.Total, got.TodayTotal)
	}
	if x.TodayTotal != 30 {
		t.Error("EffectiveXP modified its input")
	}

	undated := XPState{TodayTotal: 30}
	if got := EffectiveXP(undated, "2026-10-15"); got.TodayTotal != 30 {
		t.Errorf("TodayTotal = %d for an undated counter, expected 30", got.TodayTotal)
	}
}

func TestNormalizeXP(t *testing.T) {
	x := XPState{Total: 250, TodayTotal: -3, Level: 1, ToNextLevel: 100}
	if !NormalizeXP(&x) {
		t.Fatal("NormalizeXP() = false, expected a repair")
	}
	if x.Level != 3 || x.ToNextLevel != 50 || x.TodayTotal != 0 {
		t.Errorf("normalized = %+v, expected level 3, toNext 50, today 0", x)
	}

	valid := NewXPState()
	if NormalizeXP(&valid) {
		t.Error("NormalizeXP() = true on default state")
	}
}
