// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package clock abstracts wall-clock time so heart regeneration and day
// boundaries can be driven deterministically in tests and simulations.
package clock

import (
	"sync"
	"time"
)

// Clock is the time source used by the engine and scheduler.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker the scheduler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real is the system clock.
type Real struct{}

// NewReal returns the system clock.
func NewReal() Real {
	return Real{}
}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Fake is a manually advanced clock. Tickers created from it fire during
// Advance, at most one pending tick per ticker, like time.Ticker drops ticks
// for slow receivers.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFake returns a fake clock stopped at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTicker{
		clock:  f,
		period: d,
		next:   f.now.Add(d),
		ch:     make(chan time.Time, 1),
	}
	f.tickers = append(f.tickers, t)
	return t
}

// Advance moves the clock forward by d and fires every ticker that came due.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	active := make([]*fakeTicker, len(f.tickers))
	copy(active, f.tickers)
	f.mu.Unlock()

	for _, t := range active {
		t.fire(now)
	}
}

// Set jumps the clock to t. Moving backwards does not fire tickers.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	d := t.Sub(f.now)
	f.mu.Unlock()

	if d > 0 {
		f.Advance(d)
		return
	}
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// ActiveTickers returns the number of tickers that have not been stopped.
func (f *Fake) ActiveTickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *Fake) remove(t *fakeTicker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, candidate := range f.tickers {
		if candidate == t {
			f.tickers = append(f.tickers[:i], f.tickers[i+1:]...)
			return
		}
	}
}

type fakeTicker struct {
	clock  *Fake
	period time.Duration

	mu      sync.Mutex
	next    time.Time
	stopped bool
	ch      chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()
	t.clock.remove(t)
}

func (t *fakeTicker) fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || now.Before(t.next) {
		return
	}
	for !now.Before(t.next) {
		t.next = t.next.Add(t.period)
	}
	select {
	case t.ch <- now:
	default:
	}
}
