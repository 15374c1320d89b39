// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package scheduler drives heart regeneration. A Scheduler owns at most one
// ticker and only runs it while a refill is pending.
package scheduler

import (
	"sync"
	"time"

	"github.com/matuskalis/speaksharp-gamification/pkg/clock"

	"github.com/sirupsen/logrus"
)

// DefaultInterval is the regeneration tick rate.
const DefaultInterval = time.Second

// Scheduler calls tick on every interval while armed.
//
// The tick callback may call Arm or Disarm. Stop must not be called from the
// tick callback or while holding a lock the callback takes.
type Scheduler struct {
	clock    clock.Clock
	interval time.Duration
	tick     func()

	mu      sync.Mutex
	ticker  clock.Ticker
	done    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// New creates a disarmed scheduler.
func New(c clock.Clock, interval time.Duration, tick func()) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		clock:    c,
		interval: interval,
		tick:     tick,
	}
}

// Arm starts ticking. It is a no-op when already armed or stopped.
func (s *Scheduler) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.ticker != nil {
		return
	}

	s.ticker = s.clock.NewTicker(s.interval)
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.ticker, s.done)

	logrus.Debugf("regeneration scheduler armed (interval %v)", s.interval)
}

// Disarm stops ticking until the next Arm.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
}

// Armed reports whether the ticker is running.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker != nil
}

// Stop disarms permanently and waits for the tick goroutine to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.disarmLocked()
	s.mu.Unlock()

	s.wg.Wait()
	logrus.Debugf("regeneration scheduler stopped")
}

func (s *Scheduler) disarmLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	s.done = nil

	logrus.Debugf("regeneration scheduler disarmed")
}

func (s *Scheduler) run(t clock.Ticker, done <-chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case <-done:
			return
		case <-t.C():
			// Disarm may have raced the tick.
			select {
			case <-done:
				return
			default:
			}
			s.tick()
		}
	}
}
