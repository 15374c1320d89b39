// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package engine is the single coordination point of the gamification state
// of one learner: hearts, XP and the daily streak.
//
// All state is guarded by one mutex and every mutation writes its snapshot
// before the lock is released. Observers are notified after the lock is
// released, in mutation order. Backend calls run on goroutines bound to the
// engine's lifetime and never surface errors to callers.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matuskalis/speaksharp-gamification/pkg/activity"
	"github.com/matuskalis/speaksharp-gamification/pkg/clock"
	"github.com/matuskalis/speaksharp-gamification/pkg/common"
	"github.com/matuskalis/speaksharp-gamification/pkg/events"
	"github.com/matuskalis/speaksharp-gamification/pkg/gamification"
	"github.com/matuskalis/speaksharp-gamification/pkg/metrics"
	"github.com/matuskalis/speaksharp-gamification/pkg/reward"
	"github.com/matuskalis/speaksharp-gamification/pkg/scheduler"
	"github.com/matuskalis/speaksharp-gamification/pkg/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultRequestTimeout bounds a single backend call including retries.
const DefaultRequestTimeout = 30 * time.Second

type Options struct {
	UserID    string
	Snapshots *store.Snapshots
	Clock     clock.Clock
	// Location decides calendar days for streaks and the daily XP counter.
	Location *time.Location
	// Streaks is the authoritative streak backend. Nil disables reconciliation.
	Streaks activity.StreakAPI
	// Mirror receives every XP award. Nil disables mirroring.
	Mirror activity.XPMirror
	// Rewards grants items for reached levels. Nil disables rewards.
	Rewards LevelRewarder
	Metrics *metrics.Collectors

	TickInterval   time.Duration
	RequestTimeout time.Duration
	// ResetTodayDaily starts a new todayTotal on every calendar day.
	ResetTodayDaily bool
}

// LevelRewarder grants the rewards of every level up to level.
type LevelRewarder interface {
	GrantThrough(ctx context.Context, userID string, level int) ([]reward.Grant, error)
}

// Snapshot is the read model published to observers and returned by every operation.
type Snapshot struct {
	UserID                 string                   `json:"userId"`
	SessionID              string                   `json:"sessionId"`
	Hearts                 gamification.HeartState  `json:"hearts"`
	TimeUntilRefillSeconds int64                    `json:"timeUntilRefillSeconds"`
	XP                     gamification.XPState     `json:"xp"`
	Streak                 gamification.StreakState `json:"streak"`
	SessionCorrectStreak   int                      `json:"sessionCorrectStreak"`
	StreakSyncPending      bool                     `json:"streakSyncPending"`
	At                     time.Time                `json:"at"`
}

// TimeUntilRefill returns the countdown to the next heart.
func (s Snapshot) TimeUntilRefill() time.Duration {
	return time.Duration(s.TimeUntilRefillSeconds) * time.Second
}

type Engine struct {
	opts      Options
	sessionID string
	log       *logrus.Entry

	mu          sync.Mutex
	initialized bool
	disposed    bool
	hearts      gamification.HeartState
	xp          gamification.XPState
	streak      gamification.StreakState
	session     gamification.SessionCorrectStreak
	seq         gamification.StreakSequencer

	// publishMu keeps notifications in mutation order.
	publishMu sync.Mutex
	states    *events.Hub[Snapshot]
	intents   *events.Hub[events.Intent]

	scheduler *scheduler.Scheduler
	lifetime  context.Context
	cancel    context.CancelFunc
	inflight  sync.WaitGroup
}

// New creates an engine. Call Init before use; operations on an engine that
// was not initialized initialize it first.
func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.NewReal()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Snapshots == nil {
		opts.Snapshots = store.NewSnapshots(store.NewMemoryStore())
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	sessionID := uuid.NewString()
	lifetime, cancel := context.WithCancel(context.Background())

	e := &Engine{
		opts:      opts,
		sessionID: sessionID,
		log: logrus.WithFields(logrus.Fields{
			"user_id":    opts.UserID,
			"session_id": sessionID,
		}),
		hearts:   gamification.NewHeartState(),
		xp:       gamification.NewXPState(),
		states:   events.NewHub[Snapshot]("state"),
		intents:  events.NewHub[events.Intent]("intent"),
		lifetime: lifetime,
		cancel:   cancel,
	}
	e.scheduler = scheduler.New(opts.Clock, opts.TickInterval, e.Tick)
	return e
}

func (e *Engine) UserID() string    { return e.opts.UserID }
func (e *Engine) SessionID() string { return e.sessionID }

// Init loads the persisted snapshots, repairs and catches them up to now,
// arms the regeneration scheduler and starts the baseline streak fetch.
// Calling it again is a no-op.
func (e *Engine) Init(ctx context.Context) {
	e.mu.Lock()
	if e.initialized || e.disposed {
		e.mu.Unlock()
		return
	}
	e.initLocked(context.WithoutCancel(ctx))
	e.initialized = true
	e.fetchStreakLocked()
	snap := e.snapshotLocked()
	e.unlockAndPublish(snap, nil)

	e.log.Infof("engine initialized: hearts %d/%d, xp %d (level %d), streak %d",
		snap.Hearts.Current, snap.Hearts.Max, snap.XP.Total, snap.XP.Level, snap.Streak.Current)
}

func (e *Engine) initLocked(ctx context.Context) {
	now := e.opts.Clock.Now()
	snapshots := e.opts.Snapshots

	hearts, err := snapshots.LoadHearts(ctx, e.opts.UserID)
	heartsDirty := err != nil
	if err != nil {
		e.loadFault(store.KindHearts, err)
	}
	if gamification.NormalizeHearts(&hearts, now) {
		heartsDirty = true
	}
	if gained := gamification.RegenerateHearts(&hearts, now); gained > 0 {
		e.log.Infof("caught up %d hearts since last session", gained)
		e.opts.Metrics.HeartsGained(gained)
		heartsDirty = true
	}
	e.hearts = hearts

	xp, err := snapshots.LoadXP(ctx, e.opts.UserID)
	xpDirty := err != nil
	if err != nil {
		e.loadFault(store.KindXP, err)
	}
	if gamification.NormalizeXP(&xp) {
		xpDirty = true
	}
	if e.opts.ResetTodayDaily && gamification.RollTodayTotal(&xp, e.today(now)) {
		xpDirty = true
	}
	e.xp = xp

	streak, err := snapshots.LoadStreak(ctx, e.opts.UserID)
	if err != nil {
		e.loadFault(store.KindStreak, err)
	}
	e.streak = streak

	if heartsDirty {
		e.saveHearts(ctx)
	}
	if xpDirty {
		e.saveXP(ctx)
	}
	e.syncSchedulerLocked()
}

// ReportOutcome applies one answer. An incorrect answer spends a heart and
// breaks the session streak. A correct answer awards XP, advances the daily
// streak optimistically and records the activity with the backend.
func (e *Engine) ReportOutcome(ctx context.Context, correct bool) Snapshot {
	scope := common.StartScope(ctx, "engine.ReportOutcome")
	defer scope.Finish()
	scope.WithField("user_id", e.opts.UserID).WithField("correct", correct)

	e.Init(scope.Ctx)
	persistCtx := context.WithoutCancel(scope.Ctx)

	e.mu.Lock()
	if e.disposed {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap
	}

	now := e.opts.Clock.Now()
	gained := gamification.RegenerateHearts(&e.hearts, now)
	if gained > 0 {
		e.opts.Metrics.HeartsGained(gained)
	}
	e.opts.Metrics.ObserveOutcome(correct)

	var intents []events.Intent
	if correct {
		intents = e.applyCorrectLocked(persistCtx, now)
		if gained > 0 {
			e.saveHearts(persistCtx)
			e.syncSchedulerLocked()
		}
	} else {
		intents = e.applyIncorrectLocked(persistCtx, now)
	}

	snap := e.snapshotLocked()
	e.unlockAndPublish(snap, intents)
	return snap
}

func (e *Engine) applyIncorrectLocked(ctx context.Context, now time.Time) []events.Intent {
	gamification.RecordIncorrect(&e.session)
	if gamification.LoseHeart(&e.hearts, now) {
		e.opts.Metrics.HeartLost()
	}
	// Persist regardless so a regenerated heart applied above is durable too.
	e.saveHearts(ctx)
	e.syncSchedulerLocked()
	return []events.Intent{events.Shake()}
}

func (e *Engine) applyCorrectLocked(ctx context.Context, now time.Time) []events.Intent {
	today := e.today(now)
	awards := gamification.RecordCorrect(&e.session)

	if e.opts.ResetTodayDaily {
		gamification.RollTodayTotal(&e.xp, today)
	}

	var intents []events.Intent
	earned, levels := 0, 0
	for _, award := range awards {
		levels += gamification.AddXP(&e.xp, award.Amount, award.IsBonus)
		earned += award.Amount
		e.opts.Metrics.XP(award.Amount, award.IsBonus)
		intents = append(intents, events.XPPopup(award.Amount, award.IsBonus))
	}
	if levels > 0 {
		e.log.Infof("level up: now level %d", e.xp.Level)
		e.opts.Metrics.LevelsGained(levels)
		intents = append(intents, events.Celebrate(e.xp.Level))
	}
	e.saveXP(ctx)
	if levels > 0 {
		e.grantRewardsLocked(e.xp.Level)
	}

	if gamification.AdvanceStreak(&e.streak, today) {
		e.saveStreak(ctx)
	}
	e.recordActivityLocked(today, earned)
	e.mirrorXPLocked(earned)

	return intents
}

// RefillHearts restores the full heart pool.
func (e *Engine) RefillHearts(ctx context.Context) Snapshot {
	e.Init(ctx)

	e.mu.Lock()
	if e.disposed {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap
	}

	gamification.RefillHearts(&e.hearts)
	e.opts.Metrics.Refilled()
	e.saveHearts(context.WithoutCancel(ctx))
	e.syncSchedulerLocked()

	snap := e.snapshotLocked()
	e.unlockAndPublish(snap, nil)
	return snap
}

// SyncXP merges a server-side XP total. Totals at or below the local total are ignored.
func (e *Engine) SyncXP(ctx context.Context, total int) Snapshot {
	e.Init(ctx)

	e.mu.Lock()
	if e.disposed {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap
	}

	level := e.xp.Level
	if gamification.SyncXPFromBackend(&e.xp, total) {
		e.saveXP(context.WithoutCancel(ctx))
		if e.xp.Level > level {
			e.grantRewardsLocked(e.xp.Level)
		}
	}

	snap := e.snapshotLocked()
	e.unlockAndPublish(snap, nil)
	return snap
}

// Reset deletes the persisted snapshots and returns to the default state.
// Responses to backend requests issued before the reset are dropped.
func (e *Engine) Reset(ctx context.Context) Snapshot {
	e.Init(ctx)

	e.mu.Lock()
	if e.disposed {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap
	}

	if err := e.opts.Snapshots.DeleteUser(context.WithoutCancel(ctx), e.opts.UserID); err != nil {
		e.log.WithError(err).Warn("failed to delete snapshots")
		e.opts.Metrics.StorageError(metrics.OpDelete)
	}
	e.hearts = gamification.NewHeartState()
	e.xp = gamification.NewXPState()
	e.streak = gamification.StreakState{}
	e.session = gamification.SessionCorrectStreak{}
	e.seq.Reset()
	e.syncSchedulerLocked()
	e.log.Info("gamification state reset")

	snap := e.snapshotLocked()
	e.unlockAndPublish(snap, nil)
	return snap
}

// Tick regenerates hearts that came due and publishes the refreshed
// countdown. It is driven by the scheduler and safe to call at any time.
func (e *Engine) Tick() {
	e.mu.Lock()
	if !e.initialized || e.disposed {
		e.mu.Unlock()
		return
	}

	now := e.opts.Clock.Now()
	if gained := gamification.RegenerateHearts(&e.hearts, now); gained > 0 {
		e.opts.Metrics.HeartsGained(gained)
		e.saveHearts(e.lifetime)
	}
	if e.opts.ResetTodayDaily && gamification.RollTodayTotal(&e.xp, e.today(now)) {
		e.saveXP(e.lifetime)
	}
	e.syncSchedulerLocked()

	snap := e.snapshotLocked()
	e.unlockAndPublish(snap, nil)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// FetchStreak asks the backend for the authoritative streak. The answer is
// applied only if no newer request was issued meanwhile.
func (e *Engine) FetchStreak() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetchStreakLocked()
}

// SubscribeState registers fn for every published snapshot. Listeners run
// synchronously and must not call mutating engine methods.
func (e *Engine) SubscribeState(fn func(Snapshot)) func() {
	return e.states.Subscribe(fn)
}

// SubscribeIntents registers fn for cosmetic UI intents.
func (e *Engine) SubscribeIntents(fn func(events.Intent)) func() {
	return e.intents.Subscribe(fn)
}

// Wait blocks until every backend call started so far has completed. It must
// not race with operations that start new calls.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

// Dispose stops the scheduler, cancels in-flight backend calls and drops all
// observers. The engine keeps answering Snapshot but ignores mutations.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	e.mu.Unlock()

	e.cancel()
	e.scheduler.Stop()
	e.inflight.Wait()
	e.states.Clear()
	e.intents.Clear()

	e.log.Info("engine disposed")
}

func (e *Engine) fetchStreakLocked() {
	if e.disposed || e.opts.Streaks == nil {
		return
	}
	seq := e.seq.Next()
	e.goBackend(func(ctx context.Context) {
		resp, err := e.opts.Streaks.GetStreak(ctx, e.opts.UserID)
		e.applyStreakResponse(seq, "fetch", resp, err)
	})
}

func (e *Engine) recordActivityLocked(today gamification.Date, earned int) {
	if e.disposed || e.opts.Streaks == nil {
		return
	}
	seq := e.seq.Next()
	req := activity.ActivityRequest{ActivityDate: today, XP: earned}
	e.goBackend(func(ctx context.Context) {
		resp, err := e.opts.Streaks.RecordActivity(ctx, e.opts.UserID, req)
		e.applyStreakResponse(seq, "record", resp, err)
	})
}

func (e *Engine) mirrorXPLocked(amount int) {
	if e.disposed || e.opts.Mirror == nil || amount <= 0 {
		return
	}
	e.goBackend(func(ctx context.Context) {
		err := e.opts.Mirror.MirrorXP(ctx, e.opts.UserID, amount)
		if err != nil {
			e.log.WithError(err).Warn("failed to mirror xp")
		}
		e.opts.Metrics.StatMirrored(err)
	})
}

func (e *Engine) grantRewardsLocked(level int) {
	if e.disposed || e.opts.Rewards == nil {
		return
	}
	e.goBackend(func(ctx context.Context) {
		granted, err := e.opts.Rewards.GrantThrough(ctx, e.opts.UserID, level)
		if err != nil {
			e.log.WithError(err).Warn("level rewards incomplete")
		}
		if len(granted) > 0 {
			e.log.Infof("granted %d level rewards", len(granted))
		}
	})
}

// goBackend must be called with e.mu held and the engine not disposed.
func (e *Engine) goBackend(fn func(ctx context.Context)) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		ctx, cancel := context.WithTimeout(e.lifetime, e.opts.RequestTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (e *Engine) applyStreakResponse(seq uint64, call string, resp activity.StreakResponse, err error) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}

	if err != nil {
		e.seq.Abandon(seq)
		e.mu.Unlock()
		if !errors.Is(err, context.Canceled) {
			e.log.WithError(err).Warnf("streak %s failed, keeping local streak", call)
		}
		e.opts.Metrics.StreakSynced(metrics.SyncError)
		return
	}

	if !e.seq.Accept(seq) {
		e.mu.Unlock()
		e.log.Debugf("dropped stale streak %s response (seq %d)", call, seq)
		e.opts.Metrics.StreakSynced(metrics.SyncStale)
		return
	}

	gamification.ReconcileStreak(&e.streak, resp.State())
	e.saveStreak(e.lifetime)
	e.opts.Metrics.StreakSynced(metrics.SyncApplied)

	snap := e.snapshotLocked()
	e.unlockAndPublish(snap, nil)
}

// unlockAndPublish releases e.mu and then notifies observers.
func (e *Engine) unlockAndPublish(snap Snapshot, intents []events.Intent) {
	e.publishMu.Lock()
	e.mu.Unlock()
	defer e.publishMu.Unlock()

	e.states.Publish(snap)
	for _, intent := range intents {
		e.intents.Publish(intent)
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	now := e.opts.Clock.Now()
	return Snapshot{
		UserID:                 e.opts.UserID,
		SessionID:              e.sessionID,
		Hearts:                 copyHearts(e.hearts),
		TimeUntilRefillSeconds: ceilSeconds(gamification.TimeUntilRefill(&e.hearts, now)),
		XP:                     e.effectiveXP(now),
		Streak:                 gamification.EffectiveStreak(e.streak, e.today(now)),
		SessionCorrectStreak:   e.session.Count,
		StreakSyncPending:      e.seq.Pending(),
		At:                     now,
	}
}

func (e *Engine) effectiveXP(now time.Time) gamification.XPState {
	if !e.opts.ResetTodayDaily {
		return e.xp
	}
	return gamification.EffectiveXP(e.xp, e.today(now))
}

func (e *Engine) syncSchedulerLocked() {
	if e.disposed {
		return
	}
	if e.hearts.NextRefillAt != nil {
		e.scheduler.Arm()
	} else {
		e.scheduler.Disarm()
	}
}

func (e *Engine) today(now time.Time) gamification.Date {
	return gamification.DateOf(now.In(e.opts.Location))
}

func (e *Engine) saveHearts(ctx context.Context) {
	if err := e.opts.Snapshots.SaveHearts(ctx, e.opts.UserID, e.hearts); err != nil {
		e.saveFault(store.KindHearts, err)
	}
}

func (e *Engine) saveXP(ctx context.Context) {
	if err := e.opts.Snapshots.SaveXP(ctx, e.opts.UserID, e.xp); err != nil {
		e.saveFault(store.KindXP, err)
	}
}

func (e *Engine) saveStreak(ctx context.Context) {
	if err := e.opts.Snapshots.SaveStreak(ctx, e.opts.UserID, e.streak); err != nil {
		e.saveFault(store.KindStreak, err)
	}
}

func (e *Engine) saveFault(kind store.Kind, err error) {
	e.log.WithError(err).Warnf("failed to persist %s snapshot, state kept in memory", kind)
	e.opts.Metrics.StorageError(metrics.OpWrite)
}

func (e *Engine) loadFault(kind store.Kind, err error) {
	op := metrics.OpRead
	if errors.Is(err, store.ErrCorrupt) {
		op = metrics.OpDecode
	}
	e.log.WithError(err).Warnf("failed to load %s snapshot, using defaults", kind)
	e.opts.Metrics.StorageError(op)
}

func copyHearts(h gamification.HeartState) gamification.HeartState {
	if h.LastLostAt != nil {
		t := *h.LastLostAt
		h.LastLostAt = &t
	}
	if h.NextRefillAt != nil {
		t := *h.NextRefillAt
		h.NextRefillAt = &t
	}
	return h
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}
