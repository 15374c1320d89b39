// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package reward

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/matuskalis/speaksharp-gamification/pkg/metrics"
	"github.com/matuskalis/speaksharp-gamification/pkg/store"

	"github.com/sirupsen/logrus"
)

// Grant is one reward handed out for reaching a level.
type Grant struct {
	RewardID string `json:"rewardId"`
	Level    int    `json:"level"`
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

func (g Grant) key() string {
	return g.RewardID + "@" + strconv.Itoa(g.Level)
}

// Ledger records granted rewards keyed by "<reward id>@<level>".
type Ledger struct {
	Granted map[string]time.Time `json:"granted"`
}

// Rewarder grants level rewards at most once per reward and level.
//
// A failed grant is not recorded, so it is attempted again the next time the
// learner levels up.
type Rewarder struct {
	cfg     *Config
	granter ItemGranter
	store   store.Store
	metrics *metrics.Collectors

	// mu serializes ledger read-modify-write cycles.
	mu sync.Mutex
}

func NewRewarder(cfg *Config, granter ItemGranter, s store.Store, m *metrics.Collectors) *Rewarder {
	return &Rewarder{
		cfg:     cfg,
		granter: granter,
		store:   s,
		metrics: m,
	}
}

// GrantThrough grants every enabled reward for levels 2 through level that
// userID has not received yet. It returns the grants that succeeded.
func (r *Rewarder) GrantThrough(ctx context.Context, userID string, level int) ([]Grant, error) {
	if level < 2 || len(r.cfg.Rewards) == 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, err := r.loadLedger(ctx, userID)
	if err != nil {
		// An unreadable ledger could hand out duplicates.
		return nil, err
	}

	var granted []Grant
	var errs []error
	for l := 2; l <= level; l++ {
		for _, rw := range r.cfg.ForLevel(l) {
			g := Grant{RewardID: rw.ID, Level: l, ItemID: rw.ItemID, Quantity: rw.Quantity}
			if _, done := ledger.Granted[g.key()]; done {
				continue
			}

			err := r.granter.GrantItem(ctx, userID, g.ItemID, g.Quantity)
			r.metrics.RewardGranted(err)
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"user_id": userID,
					"reward":  g.RewardID,
					"level":   g.Level,
				}).Warn("failed to grant level reward")
				errs = append(errs, fmt.Errorf("reward %s at level %d: %w", g.RewardID, g.Level, err))
				continue
			}

			ledger.Granted[g.key()] = time.Now().UTC()
			if err := r.saveLedger(ctx, userID, ledger); err != nil {
				return append(granted, g), err
			}
			logrus.Infof("granted %s x%d to user %s for level %d", g.ItemID, g.Quantity, userID, g.Level)
			granted = append(granted, g)
		}
	}
	return granted, errors.Join(errs...)
}

// Ledger returns the grant history of userID.
func (r *Rewarder) Ledger(ctx context.Context, userID string) (Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLedger(ctx, userID)
}

func (r *Rewarder) loadLedger(ctx context.Context, userID string) (Ledger, error) {
	ledger := Ledger{Granted: map[string]time.Time{}}

	data, err := r.store.Get(ctx, store.Key(userID, store.KindRewards))
	if errors.Is(err, store.ErrNotFound) {
		return ledger, nil
	}
	if err != nil {
		r.metrics.StorageError(metrics.OpRead)
		return ledger, fmt.Errorf("failed to read reward ledger: %w", err)
	}
	if err := json.Unmarshal(data, &ledger); err != nil {
		r.metrics.StorageError(metrics.OpDecode)
		return ledger, fmt.Errorf("%w: reward ledger of %s: %v", store.ErrCorrupt, userID, err)
	}
	if ledger.Granted == nil {
		ledger.Granted = map[string]time.Time{}
	}
	return ledger, nil
}

func (r *Rewarder) saveLedger(ctx context.Context, userID string, ledger Ledger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to marshal reward ledger: %w", err)
	}
	if err := r.store.Set(ctx, store.Key(userID, store.KindRewards), data); err != nil {
		r.metrics.StorageError(metrics.OpWrite)
		return fmt.Errorf("failed to write reward ledger: %w", err)
	}
	return nil
}
