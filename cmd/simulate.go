// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matuskalis/speaksharp-gamification/pkg/metrics"
	"github.com/matuskalis/speaksharp-gamification/pkg/simulate"

	"github.com/spf13/cobra"

	// Scenario timezones must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "Replay a scenario against an engine on a fake clock",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().Bool("json", false, "Print the final state as JSON")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	sc, err := simulate.LoadScenario(args[0])
	if err != nil {
		return err
	}

	result, runErr := simulate.Run(cmd.Context(), sc, metrics.New())
	if result == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Final); err != nil {
			return err
		}
	} else {
		printSteps(out, sc, result)
	}

	for _, m := range result.Mismatches {
		fmt.Fprintln(cmd.ErrOrStderr(), m.String())
	}
	return runErr
}

func printSteps(w io.Writer, sc *simulate.Scenario, result *simulate.Result) {
	name := sc.Name
	if name == "" {
		name = "scenario"
	}
	fmt.Fprintf(w, "%s: %d steps\n", name, len(result.Steps))

	for _, s := range result.Steps {
		snap := s.Snapshot
		intents := make([]string, 0, len(s.Intents))
		for _, in := range s.Intents {
			intents = append(intents, string(in.Kind))
		}
		fmt.Fprintf(w, "%3d %-16s %s hearts=%d/%d refill=%ds xp=%d today=%d level=%d next=%d streak=%d longest=%d",
			s.Step, s.Action, s.At.Format("2006-01-02T15:04"),
			snap.Hearts.Current, snap.Hearts.Max, snap.TimeUntilRefillSeconds,
			snap.XP.Total, snap.XP.TodayTotal, snap.XP.Level, snap.XP.ToNextLevel,
			snap.Streak.Current, snap.Streak.Longest,
		)
		if len(intents) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(intents, ","))
		}
		fmt.Fprintln(w)
	}

	if result.Passed() {
		fmt.Fprintln(w, "PASS")
	} else {
		fmt.Fprintf(w, "FAIL (%d mismatches)\n", len(result.Mismatches))
	}
}
