// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package metrics defines the Prometheus collectors of the gamification engine.
// A nil *Collectors is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gamification"

// Storage operations reported in gamification_storage_errors_total.
const (
	OpRead   = "read"
	OpWrite  = "write"
	OpDecode = "decode"
	OpDelete = "delete"
)

// Streak sync results reported in gamification_streak_sync_total.
const (
	SyncApplied = "applied"
	SyncStale   = "stale"
	SyncError   = "error"
)

type Collectors struct {
	Outcomes          *prometheus.CounterVec
	HeartsLost        prometheus.Counter
	HeartsRegenerated prometheus.Counter
	HeartRefills      prometheus.Counter
	XPAwarded         *prometheus.CounterVec
	LevelUps          prometheus.Counter
	StreakSync        *prometheus.CounterVec
	StorageErrors     *prometheus.CounterVec
	StatMirror        *prometheus.CounterVec
	RewardGrants      *prometheus.CounterVec
	ActiveEngines     prometheus.Gauge
}

// New creates unregistered collectors.
func New() *Collectors {
	return &Collectors{
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Answer outcomes reported to the engine.",
		}, []string{"result"}),
		HeartsLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hearts_lost_total",
			Help:      "Hearts spent on incorrect answers.",
		}),
		HeartsRegenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hearts_regenerated_total",
			Help:      "Hearts restored by timed regeneration.",
		}),
		HeartRefills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heart_refills_total",
			Help:      "Full heart pool refills.",
		}),
		XPAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "Experience points awarded locally.",
		}, []string{"kind"}),
		LevelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_ups_total",
			Help:      "Levels gained.",
		}),
		StreakSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streak_sync_total",
			Help:      "Streak responses from the activity backend by outcome.",
		}, []string{"result"}),
		StorageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Snapshot storage faults by operation.",
		}, []string{"op"}),
		StatMirror: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stat_mirror_total",
			Help:      "XP statistic mirror calls by outcome.",
		}, []string{"result"}),
		RewardGrants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_grants_total",
			Help:      "Level-up item grants by outcome.",
		}, []string{"result"}),
		ActiveEngines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_engines",
			Help:      "Engines currently held by the registry.",
		}),
	}
}

// Register adds every collector to r.
func (c *Collectors) Register(r prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.Outcomes,
		c.HeartsLost,
		c.HeartsRegenerated,
		c.HeartRefills,
		c.XPAwarded,
		c.LevelUps,
		c.StreakSync,
		c.StorageErrors,
		c.StatMirror,
		c.RewardGrants,
		c.ActiveEngines,
	} {
		if err := r.Register(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collectors) ObserveOutcome(correct bool) {
	if c == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	c.Outcomes.WithLabelValues(result).Inc()
}

func (c *Collectors) HeartLost() {
	if c == nil {
		return
	}
	c.HeartsLost.Inc()
}

func (c *Collectors) HeartsGained(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.HeartsRegenerated.Add(float64(n))
}

func (c *Collectors) Refilled() {
	if c == nil {
		return
	}
	c.HeartRefills.Inc()
}

func (c *Collectors) XP(amount int, isBonus bool) {
	if c == nil || amount <= 0 {
		return
	}
	kind := "base"
	if isBonus {
		kind = "bonus"
	}
	c.XPAwarded.WithLabelValues(kind).Add(float64(amount))
}

func (c *Collectors) LevelsGained(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.LevelUps.Add(float64(n))
}

func (c *Collectors) StreakSynced(result string) {
	if c == nil {
		return
	}
	c.StreakSync.WithLabelValues(result).Inc()
}

func (c *Collectors) StorageError(op string) {
	if c == nil {
		return
	}
	c.StorageErrors.WithLabelValues(op).Inc()
}

func (c *Collectors) StatMirrored(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.StatMirror.WithLabelValues(result).Inc()
}

func (c *Collectors) RewardGranted(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.RewardGrants.WithLabelValues(result).Inc()
}

func (c *Collectors) SetActiveEngines(n int) {
	if c == nil {
		return
	}
	c.ActiveEngines.Set(float64(n))
}
