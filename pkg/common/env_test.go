// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import "testing"

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("GAMIFICATION_TEST_ITEM", "gem-pack")
	t.Setenv("GAMIFICATION_TEST_EMPTY", "")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "item: ${GAMIFICATION_TEST_ITEM}", "item: gem-pack"},
		{"set variable ignores default", "${GAMIFICATION_TEST_ITEM:other}", "gem-pack"},
		{"unset uses default", "${GAMIFICATION_TEST_MISSING:fallback}", "fallback"},
		{"empty uses default", "${GAMIFICATION_TEST_EMPTY:fallback}", "fallback"},
		{"unset without default", "[${GAMIFICATION_TEST_MISSING}]", "[]"},
		{"default containing colon", "${GAMIFICATION_TEST_MISSING:a:b}", "a:b"},
		{"no variables", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnvVars(tt.in); got != tt.want {
				t.Errorf("ExpandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
