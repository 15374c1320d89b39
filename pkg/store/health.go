// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether the configured backend is reachable.
// Backends without a Ping method are always healthy.
type HealthChecker struct {
	pinger Pinger
}

// NewHealthChecker creates a health checker for s.
func NewHealthChecker(s Store) *HealthChecker {
	p, _ := s.(Pinger)
	return &HealthChecker{pinger: p}
}

// Check performs a backend health check.
func (h *HealthChecker) Check(ctx context.Context) error {
	if h.pinger == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		logrus.Errorf("store health check failed: %v", err)
		return err
	}

	logrus.Debugf("store health check passed")
	return nil
}

// IsHealthy returns true if the backend is accessible.
func (h *HealthChecker) IsHealthy(ctx context.Context) bool {
	return h.Check(ctx) == nil
}
