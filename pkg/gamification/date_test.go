// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gamification

import (
	"encoding/json"
	"testing"
	"time"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func TestDateOf_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	utc := time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)

	if got := DateOf(utc); got != "2026-10-14" {
		t.Errorf("DateOf(utc) = %s, expected 2026-10-14", got)
	}
	if got := DateOf(utc.In(tokyo)); got != "2026-10-15" {
		t.Errorf("DateOf(tokyo) = %s, expected 2026-10-15", got)
	}
}

func TestDate_AddDays(t *testing.T) {
	tests := []struct {
		in     Date
		n      int
		expect Date
	}{
		{"2026-10-14", -1, "2026-10-13"},
		{"2026-03-01", -1, "2026-02-28"},
		{"2028-03-01", -1, "2028-02-29"},
		{"2026-12-31", 1, "2027-01-01"},
		{"", -1, ""},
		{"garbage", 1, ""},
	}

	for _, tt := range tests {
		if got := tt.in.AddDays(tt.n); got != tt.expect {
			t.Errorf("%q.AddDays(%d) = %q, expected %q", tt.in, tt.n, got, tt.expect)
		}
	}
}

func TestDate_After(t *testing.T) {
	tests := []struct {
		d, o   Date
		expect bool
	}{
		{"2026-10-15", "2026-10-14", true},
		{"2027-01-01", "2026-12-31", true},
		{"2026-10-14", "2026-10-14", false},
		{"2026-10-13", "2026-10-14", false},
		{"", "2026-10-14", false},
		{"2026-10-14", "", false},
	}

	for _, tt := range tests {
		if got := tt.d.After(tt.o); got != tt.expect {
			t.Errorf("%q.After(%q) = %v, expected %v", tt.d, tt.o, got, tt.expect)
		}
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-13-01"); err == nil {
		t.Error("ParseDate() accepted month 13")
	}
	if d, err := ParseDate(""); err != nil || !d.IsZero() {
		t.Errorf("ParseDate(\"\") = (%q, %v), expected zero date", d, err)
	}
	if d, err := ParseDate("2026-10-14"); err != nil || d != "2026-10-14" {
		t.Errorf("ParseDate() = (%q, %v)", d, err)
	}
}

func TestDate_JSON(t *testing.T) {
	var s StreakState
	if err := json.Unmarshal([]byte(`{"count":2,"longest":3,"lastDate":null}`), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !s.LastActiveDate.IsZero() {
		t.Errorf("LastActiveDate = %q, expected zero", s.LastActiveDate)
	}

	out, err := json.Marshal(StreakState{Current: 1, Longest: 1})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"count":1,"longest":1,"lastDate":null}` {
		t.Errorf("Marshal() = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"lastDate":"14/10/2026"}`), &s); err == nil {
		t.Error("Unmarshal() accepted a malformed date")
	}
}
