// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gamification

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire and in snapshots.
const DateLayout = "2006-01-02"

// Date is a calendar date (YYYY-MM-DD) with no time-of-day or zone.
// The zero value means "no date" and encodes as JSON null.
type Date string

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s as a calendar date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(s), nil
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// AddDays shifts d by n calendar days. An unset or malformed date stays unset.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return ""
	}
	return DateOf(t.AddDate(0, 0, n))
}

// After reports whether d is a later day than o. Unset dates are never after
// anything.
func (d Date) After(o Date) bool {
	return !d.IsZero() && !o.IsZero() && d > o
}

// String implements fmt.Stringer.
func (d Date) String() string {
	return string(d)
}

// MarshalJSON encodes an unset date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalJSON accepts null, "" or a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
