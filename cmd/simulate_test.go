// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matuskalis/speaksharp-gamification/pkg/simulate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		_ = simulateCmd.Flags().Set("json", "false")
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSimulate_DailyPractice(t *testing.T) {
	out, _, err := runCLI(t, "simulate", filepath.Join("..", "pkg", "simulate", "testdata", "daily_practice.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "daily practice:")
	assert.Contains(t, out, "[shake]")
	assert.Contains(t, out, "PASS")
}

func TestSimulate_JSON(t *testing.T) {
	out, _, err := runCLI(t, "simulate", "--json", filepath.Join("..", "pkg", "simulate", "testdata", "daily_practice.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, `"userId": "learner-42"`)
}

func TestSimulate_ReportsMismatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrong.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: wrong
start: 2026-10-14T09:00:00Z
steps:
  - answer: incorrect
  - expect:
      hearts: 5
`), 0o644))

	out, errOut, err := runCLI(t, "simulate", path)
	require.ErrorIs(t, err, simulate.ErrExpectationFailed)

	assert.Contains(t, out, "FAIL (1 mismatches)")
	assert.Contains(t, errOut, "hearts = 4, expected 5")
}

func TestSimulate_RequiresScenario(t *testing.T) {
	_, _, err := runCLI(t, "simulate")
	assert.Error(t, err)
}
