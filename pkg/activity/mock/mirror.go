// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package mock

import (
	"context"
	"sync"

	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclient/user_statistic"
	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclientmodels"
)

// XPMirror is a mock implementation of activity.XPMirror for testing
type XPMirror struct {
	// MirrorXPFunc is called when MirrorXP is invoked
	MirrorXPFunc func(ctx context.Context, userID string, amount int) error

	mu    sync.Mutex
	calls []MirrorXPCall
}

// MirrorXPCall tracks parameters for MirrorXP calls
type MirrorXPCall struct {
	UserID string
	Amount int
}

func (m *XPMirror) MirrorXP(ctx context.Context, userID string, amount int) error {
	m.mu.Lock()
	m.calls = append(m.calls, MirrorXPCall{UserID: userID, Amount: amount})
	fn := m.MirrorXPFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, userID, amount)
	}
	return nil
}

// Calls returns the MirrorXP calls received so far.
func (m *XPMirror) Calls() []MirrorXPCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MirrorXPCall(nil), m.calls...)
}

// StatisticService is a mock implementation of activity.StatItemIncrementer for testing
type StatisticService struct {
	// IncUserStatItemValueFunc is called when IncUserStatItemValueShort is invoked
	IncUserStatItemValueFunc func(input *user_statistic.IncUserStatItemValueParams) (*socialclientmodels.StatItemIncResult, error)

	mu    sync.Mutex
	calls []*user_statistic.IncUserStatItemValueParams
}

func (s *StatisticService) IncUserStatItemValueShort(input *user_statistic.IncUserStatItemValueParams) (*socialclientmodels.StatItemIncResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, input)
	fn := s.IncUserStatItemValueFunc
	s.mu.Unlock()

	if fn != nil {
		return fn(input)
	}
	return &socialclientmodels.StatItemIncResult{}, nil
}

// Calls returns the parameters of every IncUserStatItemValueShort call.
func (s *StatisticService) Calls() []*user_statistic.IncUserStatItemValueParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*user_statistic.IncUserStatItemValueParams(nil), s.calls...)
}
