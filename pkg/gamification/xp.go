// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gamification

import "github.com/sirupsen/logrus"

// XPState is the persisted experience counter.
type XPState struct {
	Total       int  `json:"total"`
	TodayTotal  int  `json:"todayTotal"`
	Level       int  `json:"level"`
	ToNextLevel int  `json:"toNextLevel"`
	TodayDate   Date `json:"todayDate"`
}

// NewXPState returns level 1 with no points.
func NewXPState() XPState {
	return XPState{
		Level:       1,
		ToNextLevel: XPPerLevel,
	}
}

// LevelForTotal is the closed-form level computation.
func LevelForTotal(total int) (level, toNextLevel int) {
	if total < 0 {
		total = 0
	}
	return total/XPPerLevel + 1, XPPerLevel - total%XPPerLevel
}

// AddXP accumulates amount and walks the level counter forward, possibly
// across several levels. Non-positive amounts are ignored. Returns the number
// of levels gained.
func AddXP(x *XPState, amount int, isBonus bool) int {
	if amount <= 0 {
		return 0
	}

	x.Total += amount
	x.TodayTotal += amount
	x.ToNextLevel -= amount

	gained := 0
	for x.ToNextLevel <= 0 {
		x.Level++
		x.ToNextLevel += XPPerLevel
		gained++
	}

	logrus.Debugf("xp added: +%d (bonus=%t) total=%d level=%d toNext=%d",
		amount, isBonus, x.Total, x.Level, x.ToNextLevel)
	return gained
}

// SyncXPFromBackend merges a server-side total. Only a strictly larger total
// is applied so an out-of-order response never rolls visible progress back.
// Returns true if the local state changed.
func SyncXPFromBackend(x *XPState, total int) bool {
	if total <= x.Total {
		logrus.Debugf("xp sync ignored: remote %d <= local %d", total, x.Total)
		return false
	}

	x.Total = total
	x.Level, x.ToNextLevel = LevelForTotal(total)

	logrus.Debugf("xp synced from backend: total=%d level=%d", x.Total, x.Level)
	return true
}

// RollTodayTotal starts a new daily counter when today differs from the date
// the counter was accumulated on. Returns true if the counter was reset.
func RollTodayTotal(x *XPState, today Date) bool {
	if x.TodayDate == today {
		return false
	}
	// Snapshots written before the date was tracked keep their counter.
	if x.TodayDate.IsZero() {
		x.TodayDate = today
		return false
	}
	logrus.Debugf("today xp reset for %s (was %d on %s)", today, x.TodayTotal, x.TodayDate)
	x.TodayDate = today
	x.TodayTotal = 0
	return true
}

// EffectiveXP returns x as it should be shown on today: a dated counter from
// an earlier day reads as zero before the next award rolls it.
func EffectiveXP(x XPState, today Date) XPState {
	if !x.TodayDate.IsZero() && x.TodayDate != today {
		x.TodayTotal = 0
	}
	return x
}

// NormalizeXP repairs negative counters and realigns level with total.
func NormalizeXP(x *XPState) bool {
	changed := false
	if x.Total < 0 {
		x.Total = 0
		changed = true
	}
	if x.TodayTotal < 0 {
		x.TodayTotal = 0
		changed = true
	}
	level, toNext := LevelForTotal(x.Total)
	if x.Level != level || x.ToNextLevel != toNext {
		x.Level, x.ToNextLevel = level, toNext
		changed = true
	}
	return changed
}
