// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package events

// IntentKind names a cosmetic reaction the presentation layer may play.
type IntentKind string

const (
	IntentCelebrate IntentKind = "celebrate"
	IntentXPPopup   IntentKind = "xp_popup"
	IntentShake     IntentKind = "shake"
)

// Intent is a fire-and-forget UI hint. Dropping one never affects state.
type Intent struct {
	Kind    IntentKind `json:"kind"`
	Amount  int        `json:"amount,omitempty"`
	IsBonus bool       `json:"isBonus,omitempty"`
	Level   int        `json:"level,omitempty"`
}

// Celebrate is emitted once per outcome that gains at least one level.
func Celebrate(level int) Intent {
	return Intent{Kind: IntentCelebrate, Level: level}
}

// XPPopup is emitted once per XP award.
func XPPopup(amount int, isBonus bool) Intent {
	return Intent{Kind: IntentXPPopup, Amount: amount, IsBonus: isBonus}
}

// Shake is emitted for an incorrect answer.
func Shake() Intent {
	return Intent{Kind: IntentShake}
}
