// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package activity

import (
	"context"
	"fmt"

	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclient/user_statistic"
	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclientmodels"
)

// DefaultXPStatCode is the platform statistic that mirrors lifetime XP.
const DefaultXPStatCode = "gamification-xp-total"

// XPMirror copies locally earned XP to an external system. Mirroring is
// best effort and never feeds back into local state.
type XPMirror interface {
	MirrorXP(ctx context.Context, userID string, amount int) error
}

// StatItemIncrementer is the part of the AccelByte social.UserStatisticService
// the mirror uses.
type StatItemIncrementer interface {
	IncUserStatItemValueShort(input *user_statistic.IncUserStatItemValueParams) (*socialclientmodels.StatItemIncResult, error)
}

// StatisticXPMirror increments a user statistic by every XP award.
type StatisticXPMirror struct {
	statisticsService StatItemIncrementer
	cfg               StatisticXPMirrorConfig
}

type StatisticXPMirrorConfig struct {
	Namespace string
	StatCode  string
}

func NewStatisticXPMirror(
	statisticsService StatItemIncrementer,
	cfg StatisticXPMirrorConfig,
) *StatisticXPMirror {
	if cfg.StatCode == "" {
		cfg.StatCode = DefaultXPStatCode
	}
	return &StatisticXPMirror{
		statisticsService: statisticsService,
		cfg:               cfg,
	}
}

func (s *StatisticXPMirror) MirrorXP(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return nil
	}

	input := &user_statistic.IncUserStatItemValueParams{
		Namespace: s.cfg.Namespace,
		UserID:    userID,
		StatCode:  s.cfg.StatCode,
		Body: &socialclientmodels.StatItemInc{
			Inc: float64(amount),
		},
		Context: ctx,
	}

	_, err := s.statisticsService.IncUserStatItemValueShort(input)
	if err != nil {
		return fmt.Errorf("failed to increment user %s statistic %s: %w", userID, s.cfg.StatCode, err)
	}

	return nil
}
