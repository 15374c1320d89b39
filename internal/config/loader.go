// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// It attempts to load from .env file first (for local development),
// then parses environment variables into the Config struct.
func Load() (*Config, error) {
	// In production (Docker/K8s), environment variables are injected directly
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	return cfg, nil
}

// Validate performs custom validation on the configuration.
func (c *Config) Validate() error {
	ports := []struct {
		name string
		port int
	}{
		{"HTTP_PORT", c.HTTPPort},
		{"GRPC_PORT", c.GRPCPort},
		{"METRICS_PORT", c.MetricsPort},
	}
	seen := make(map[int]string, len(ports))
	for _, p := range ports {
		if p.port < 1 || p.port > 65535 {
			return fmt.Errorf("invalid %s: %d (must be 1-65535)", p.name, p.port)
		}
		if other, ok := seen[p.port]; ok {
			return fmt.Errorf("%s and %s both use port %d", other, p.name, p.port)
		}
		seen[p.port] = p.name
	}

	switch c.StoreBackend {
	case StoreMemory, StoreRedis:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_BACKEND=sqlite")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND: %q (must be %s, %s or %s)",
			c.StoreBackend, StoreMemory, StoreRedis, StoreSQLite)
	}
	if c.StoreNamespace == "" {
		return errors.New("STORE_NAMESPACE must not be empty")
	}

	if c.ActivityBaseURL != "" {
		u, err := url.Parse(c.ActivityBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid ACTIVITY_API_BASE_URL: %q", c.ActivityBaseURL)
		}
	}
	if c.ActivityTimeout <= 0 {
		return fmt.Errorf("ACTIVITY_API_TIMEOUT must be positive, got %s", c.ActivityTimeout)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.StatMirrorEnabled() {
		if c.ABNamespace == "" {
			return errors.New("AB_NAMESPACE is required when AccelByte credentials are set")
		}
		if c.XPStatCode == "" {
			return errors.New("XP_STAT_CODE must not be empty")
		}
	}
	if c.RewardsEnabled() && !c.StatMirrorEnabled() {
		return errors.New("REWARDS_CONFIG_PATH requires AB_BASE_URL, AB_CLIENT_ID and AB_CLIENT_SECRET")
	}

	return nil
}

// Location resolves TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LogFields returns the non-secret settings for the startup log line.
func (c *Config) LogFields() logrus.Fields {
	return logrus.Fields{
		"environment":   c.Environment,
		"store_backend": c.StoreBackend,
		"namespace":     c.StoreNamespace,
		"timezone":      c.Timezone,
		"activity_api":  c.ActivityEnabled(),
		"stat_mirror":   c.StatMirrorEnabled(),
		"rewards":       c.RewardsEnabled(),
		"otel":          c.OtelEnabled,
	}
}
