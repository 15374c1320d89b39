// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package simulate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matuskalis/speaksharp-gamification/pkg/activity/mock"
	"github.com/matuskalis/speaksharp-gamification/pkg/clock"
	"github.com/matuskalis/speaksharp-gamification/pkg/engine"
	"github.com/matuskalis/speaksharp-gamification/pkg/events"
	"github.com/matuskalis/speaksharp-gamification/pkg/gamification"
	"github.com/matuskalis/speaksharp-gamification/pkg/metrics"
	"github.com/matuskalis/speaksharp-gamification/pkg/store"

	"github.com/sirupsen/logrus"
)

// ErrExpectationFailed is returned by Run when at least one expect step did not match.
var ErrExpectationFailed = errors.New("scenario expectations failed")

// Mismatch is one failed field of an expect step.
type Mismatch struct {
	Step     int
	Field    string
	Expected string
	Actual   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("step %d: %s = %s, expected %s", m.Step, m.Field, m.Actual, m.Expected)
}

// StepResult is the state after a step ran.
type StepResult struct {
	Step     int
	Action   string
	At       time.Time
	Snapshot engine.Snapshot
	Intents  []events.Intent
}

type Result struct {
	Steps      []StepResult
	Mismatches []Mismatch
	Final      engine.Snapshot
}

// Passed reports whether every expectation matched.
func (r *Result) Passed() bool {
	return len(r.Mismatches) == 0
}

// Run replays sc. Every step settles all backend calls before the next one so
// the outcome is deterministic. It returns ErrExpectationFailed together with
// the full result when an expectation does not hold.
func Run(ctx context.Context, sc *Scenario, m *metrics.Collectors) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	loc := time.UTC
	if sc.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(sc.Timezone); err != nil {
			return nil, fmt.Errorf("failed to load timezone %s: %w", sc.Timezone, err)
		}
	}
	userID := sc.UserID
	if userID == "" {
		userID = DefaultUserID
	}
	resetDaily := true
	if sc.TodayResetsDaily != nil {
		resetDaily = *sc.TodayResetsDaily
	}

	fake := clock.NewFake(sc.Start)
	backend := mock.NewBackend()
	backend.SetOffline(sc.Backend.Offline)
	if seed := sc.Backend.Streak; seed != nil {
		backend.SetStreak(userID, gamification.StreakState{
			Current:        seed.Current,
			Longest:        seed.Longest,
			LastActiveDate: gamification.Date(seed.LastActiveDate),
		})
	}

	e := engine.New(engine.Options{
		UserID:          userID,
		Snapshots:       store.NewSnapshots(store.NewMemoryStore()),
		Clock:           fake,
		Location:        loc,
		Streaks:         backend,
		Metrics:         m,
		ResetTodayDaily: resetDaily,
	})
	defer e.Dispose()

	var intents []events.Intent
	e.SubscribeIntents(func(i events.Intent) {
		intents = append(intents, i)
	})

	log := logrus.WithField("scenario", sc.Name)
	e.Init(ctx)
	e.Wait()

	result := &Result{}
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		index := i + 1
		intents = nil

		switch {
		case step.Answer != "":
			e.ReportOutcome(ctx, step.Answer == AnswerCorrect)
		case step.Advance > 0:
			fake.Advance(step.Advance)
			e.Tick()
		case step.Refill:
			e.RefillHearts(ctx)
		case step.SyncXP != nil:
			e.SyncXP(ctx, *step.SyncXP)
		case step.Offline != nil:
			backend.SetOffline(*step.Offline)
		case step.Reset:
			e.Reset(ctx)
		}
		e.Wait()

		snap := e.Snapshot()
		if step.Expect != nil {
			result.Mismatches = append(result.Mismatches, compare(index, step.Expect, snap)...)
		}
		result.Steps = append(result.Steps, StepResult{
			Step:     index,
			Action:   step.Action(),
			At:       fake.Now(),
			Snapshot: snap,
			Intents:  intents,
		})
		log.Debugf("step %d (%s): hearts %d, xp %d, streak %d",
			index, step.Action(), snap.Hearts.Current, snap.XP.Total, snap.Streak.Current)
	}
	result.Final = e.Snapshot()

	if !result.Passed() {
		lines := make([]string, 0, len(result.Mismatches))
		for _, mismatch := range result.Mismatches {
			lines = append(lines, mismatch.String())
		}
		return result, fmt.Errorf("%w:\n  %s", ErrExpectationFailed, strings.Join(lines, "\n  "))
	}
	return result, nil
}

func compare(step int, want *Expect, snap engine.Snapshot) []Mismatch {
	var out []Mismatch
	checkInt := func(field string, expected *int, actual int) {
		if expected != nil && *expected != actual {
			out = append(out, Mismatch{Step: step, Field: field, Expected: fmt.Sprint(*expected), Actual: fmt.Sprint(actual)})
		}
	}

	checkInt("hearts", want.Hearts, snap.Hearts.Current)
	checkInt("xp_total", want.XPTotal, snap.XP.Total)
	checkInt("today_total", want.TodayTotal, snap.XP.TodayTotal)
	checkInt("level", want.Level, snap.XP.Level)
	checkInt("to_next_level", want.ToNextLevel, snap.XP.ToNextLevel)
	checkInt("streak", want.Streak, snap.Streak.Current)
	checkInt("longest", want.Longest, snap.Streak.Longest)

	if want.TimeUntilRefill != nil && *want.TimeUntilRefill != snap.TimeUntilRefill() {
		out = append(out, Mismatch{
			Step:     step,
			Field:    "time_until_refill",
			Expected: want.TimeUntilRefill.String(),
			Actual:   snap.TimeUntilRefill().String(),
		})
	}
	return out
}
