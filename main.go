// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"
	"os"

	"github.com/matuskalis/speaksharp-gamification/cmd"

	"github.com/sirupsen/logrus"
)

func main() {
	// Configure logging
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
