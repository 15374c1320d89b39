// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package gamification holds the pure state machines behind hearts, XP/levels
// and daily practice streaks. Every transition takes the current time (or
// calendar date) explicitly so callers own the clock.
package gamification

import "time"

const (
	// MaxHearts is the size of the heart pool.
	MaxHearts = 5
	// HeartRefillMinutes is how long one heart takes to regenerate.
	HeartRefillMinutes = 30
	// HeartRefillInterval is HeartRefillMinutes as a duration.
	HeartRefillInterval = HeartRefillMinutes * time.Minute

	// XPPerCorrect is awarded for every correct answer.
	XPPerCorrect = 10
	// XPStreakBonus is added on top of XPPerCorrect once the session correct
	// streak reaches SessionBonusThreshold.
	XPStreakBonus = 5
	// SessionBonusThreshold is the correct-in-a-row count that unlocks XPStreakBonus.
	SessionBonusThreshold = 2

	// XPPerLevel is the width of every level.
	XPPerLevel = 100
)
