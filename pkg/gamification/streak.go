// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gamification

import "github.com/sirupsen/logrus"

// StreakState is the local cache of the backend's daily practice streak.
type StreakState struct {
	Current        int  `json:"count"`
	Longest        int  `json:"longest"`
	LastActiveDate Date `json:"lastDate"`
}

// AdvanceStreak is the optimistic local update for an XP-earning event on
// today: same day keeps the streak, the day after extends it, anything else
// starts over at 1. A last active day ahead of today (the backend's day boundary
// ran ahead of the learner's zone) counts as today. Returns true if the state
// changed.
func AdvanceStreak(s *StreakState, today Date) bool {
	if s.LastActiveDate.After(today) {
		logrus.Debugf("streak already counted for %s (backend day %s)", today, s.LastActiveDate)
		return false
	}
	switch s.LastActiveDate {
	case today:
		logrus.Debugf("streak already counted for %s", today)
		return false
	case today.AddDays(-1):
		s.Current++
	default:
		s.Current = 1
	}
	s.LastActiveDate = today
	if s.Longest < s.Current {
		s.Longest = s.Current
	}

	logrus.Debugf("streak advanced to %d on %s (longest %d)", s.Current, today, s.Longest)
	return true
}

// EffectiveStreak returns s as it should be shown on today: a streak whose
// last active day is neither today nor yesterday is broken. A last active day
// ahead of today counts as today.
func EffectiveStreak(s StreakState, today Date) StreakState {
	if s.LastActiveDate.After(today) {
		return s
	}
	if s.LastActiveDate != today && s.LastActiveDate != today.AddDays(-1) {
		s.Current = 0
	}
	return s
}

// ReconcileStreak overwrites the local optimistic guess with the backend's
// answer. The backend is authoritative; only structurally invalid values are
// repaired.
func ReconcileStreak(local *StreakState, remote StreakState) {
	if remote.Current < 0 {
		remote.Current = 0
	}
	if remote.Longest < remote.Current {
		remote.Longest = remote.Current
	}

	if *local != remote {
		logrus.Debugf("streak reconciled: local %+v -> remote %+v", *local, remote)
	}
	*local = remote
}

// StreakSequencer orders backend streak requests so only the answer to the
// newest request can become the baseline. A response that arrives after a
// newer request was issued is stale and must be dropped, otherwise it would
// overwrite an optimistic update the backend has not seen yet.
// The zero value is ready to use; it is not safe for concurrent use on its own.
type StreakSequencer struct {
	issued  uint64
	applied uint64
}

// Next reserves the sequence number for a new request.
func (q *StreakSequencer) Next() uint64 {
	q.issued++
	return q.issued
}

// Accept reports whether the response to request seq may be applied and, if
// so, records it as applied.
func (q *StreakSequencer) Accept(seq uint64) bool {
	if seq != q.issued || seq <= q.applied {
		logrus.Debugf("stale streak response dropped: seq=%d issued=%d applied=%d", seq, q.issued, q.applied)
		return false
	}
	q.applied = seq
	return true
}

// Abandon gives up on request seq after it failed. A failed newest request
// leaves nothing pending; the local optimistic state stays the baseline.
func (q *StreakSequencer) Abandon(seq uint64) {
	if seq == q.issued && seq > q.applied {
		q.applied = seq
	}
}

// Reset invalidates every request issued so far without waiting for an answer.
func (q *StreakSequencer) Reset() {
	q.issued++
	q.applied = q.issued
}

// Pending reports whether a request has been issued without an accepted response.
func (q *StreakSequencer) Pending() bool {
	return q.issued > q.applied
}
