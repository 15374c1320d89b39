// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/matuskalis/speaksharp-gamification/pkg/clock"
)

var testStart = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func waitTick(t *testing.T, ticks <-chan struct{}) {
	t.Helper()
	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
	}
}

func TestScheduler_ArmTicks(t *testing.T) {
	c := clock.NewFake(testStart)
	ticks := make(chan struct{}, 10)
	s := New(c, time.Second, func() { ticks <- struct{}{} })
	defer s.Stop()

	s.Arm()
	if !s.Armed() {
		t.Fatal("Armed() = false after Arm")
	}

	c.Advance(time.Second)
	waitTick(t, ticks)

	c.Advance(time.Second)
	waitTick(t, ticks)
}

func TestScheduler_ArmIsIdempotent(t *testing.T) {
	c := clock.NewFake(testStart)
	s := New(c, time.Second, func() {})
	defer s.Stop()

	s.Arm()
	s.Arm()
	s.Arm()

	if got := c.ActiveTickers(); got != 1 {
		t.Errorf("ActiveTickers() = %d, expected 1", got)
	}
}

func TestScheduler_DisarmReleasesTicker(t *testing.T) {
	c := clock.NewFake(testStart)
	var count int32
	s := New(c, time.Second, func() { atomic.AddInt32(&count, 1) })
	defer s.Stop()

	s.Arm()
	s.Disarm()

	if s.Armed() {
		t.Error("Armed() = true after Disarm")
	}
	if got := c.ActiveTickers(); got != 0 {
		t.Errorf("ActiveTickers() = %d after Disarm, expected 0", got)
	}

	c.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 0 {
		t.Errorf("tick called %d times while disarmed", got)
	}
}

func TestScheduler_DisarmFromTick(t *testing.T) {
	c := clock.NewFake(testStart)
	ticks := make(chan struct{}, 10)
	var s *Scheduler
	s = New(c, time.Second, func() {
		s.Disarm()
		ticks <- struct{}{}
	})
	defer s.Stop()

	s.Arm()
	c.Advance(time.Second)
	waitTick(t, ticks)

	if s.Armed() {
		t.Error("Armed() = true after tick disarmed itself")
	}

	s.Arm()
	c.Advance(time.Second)
	waitTick(t, ticks)
}

func TestScheduler_StopIsFinal(t *testing.T) {
	c := clock.NewFake(testStart)
	s := New(c, time.Second, func() {})

	s.Arm()
	s.Stop()
	s.Arm()

	if s.Armed() {
		t.Error("Armed() = true after Stop")
	}
	if got := c.ActiveTickers(); got != 0 {
		t.Errorf("ActiveTickers() = %d after Stop, expected 0", got)
	}
	s.Stop()
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(clock.NewFake(testStart), 0, func() {})
	if s.interval != DefaultInterval {
		t.Errorf("interval = %v, expected %v", s.interval, DefaultInterval)
	}
}
