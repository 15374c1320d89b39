// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gamification

// SessionCorrectStreak counts correct answers in a row for the current
// session. It is never persisted.
type SessionCorrectStreak struct {
	Count int `json:"count"`
}

// XPAward is one XP grant produced by a correct answer.
type XPAward struct {
	Amount  int  `json:"amount"`
	IsBonus bool `json:"isBonus"`
}

// RecordCorrect extends the session streak and returns the XP awards it earns:
// the base award always, plus the streak bonus once the streak reaches
// SessionBonusThreshold.
func RecordCorrect(s *SessionCorrectStreak) []XPAward {
	s.Count++
	awards := []XPAward{{Amount: XPPerCorrect}}
	if s.Count >= SessionBonusThreshold {
		awards = append(awards, XPAward{Amount: XPStreakBonus, IsBonus: true})
	}
	return awards
}

// RecordIncorrect breaks the session streak.
func RecordIncorrect(s *SessionCorrectStreak) {
	s.Count = 0
}
