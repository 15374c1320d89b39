// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gamification",
	Short: "Hearts, XP and daily streak service for SpeakSharp learners",
	// Without a subcommand the service runs.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the command line with ctx available to every subcommand.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}
