// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package cmd

import (
	"fmt"

	"github.com/matuskalis/speaksharp-gamification/internal/app"
	"github.com/matuskalis/speaksharp-gamification/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, gRPC health and metrics servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	logrus.Infof("starting app server..")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}
