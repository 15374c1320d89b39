// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import "time"

// Store backends selectable with STORE_BACKEND.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
//
// Use struct tags to define:
// - `env:"VAR_NAME"` - the environment variable name
// - `envDefault:"value"` - set a default value
//
// After adding fields here, update loader.go Validate() if custom
// validation is needed.
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"SpeakSharpGamification"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// ============================================================
	// Snapshot storage
	// ============================================================
	StoreBackend   string        `env:"STORE_BACKEND" envDefault:"redis"`
	StoreNamespace string        `env:"STORE_NAMESPACE" envDefault:"gamification"`
	SnapshotTTL    time.Duration `env:"SNAPSHOT_TTL" envDefault:"720h"`

	RedisHost       string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort       string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisMaxRetries uint64 `env:"REDIS_MAX_RETRIES" envDefault:"5"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/gamification.db"`

	// ============================================================
	// Activity backend (authoritative streaks)
	// ============================================================
	ActivityBaseURL    string        `env:"ACTIVITY_API_BASE_URL"`
	ActivityToken      string        `env:"ACTIVITY_API_TOKEN"`
	ActivityTimeout    time.Duration `env:"ACTIVITY_API_TIMEOUT" envDefault:"10s"`
	ActivityMaxRetries uint64        `env:"ACTIVITY_API_MAX_RETRIES" envDefault:"3"`

	// ============================================================
	// Engine behaviour
	// ============================================================
	Timezone           string `env:"TIMEZONE" envDefault:"Local"`
	XPTodayResetsDaily bool   `env:"XP_TODAY_RESETS_DAILY" envDefault:"true"`

	// ============================================================
	// AccelByte configuration (optional, enables the XP stat mirror)
	// ============================================================
	ABNamespace    string `env:"AB_NAMESPACE"`
	ABBaseURL      string `env:"AB_BASE_URL"`
	ABClientID     string `env:"AB_CLIENT_ID"`
	ABClientSecret string `env:"AB_CLIENT_SECRET"`
	XPStatCode     string `env:"XP_STAT_CODE" envDefault:"gamification-xp-total"`
	// RewardsConfigPath points at the level rewards YAML; empty disables rewards.
	RewardsConfigPath string `env:"REWARDS_CONFIG_PATH"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled    bool   `env:"OTEL_ENABLED" envDefault:"true"`
	ZipkinEndpoint string `env:"ZIPKIN_ENDPOINT" envDefault:"http://localhost:9411/api/v2/spans"`
}

// StatMirrorEnabled reports whether AccelByte credentials are configured.
func (c *Config) StatMirrorEnabled() bool {
	return c.ABBaseURL != "" && c.ABClientID != "" && c.ABClientSecret != ""
}

// RewardsEnabled reports whether level rewards are configured.
func (c *Config) RewardsEnabled() bool {
	return c.RewardsConfigPath != ""
}

// ActivityEnabled reports whether an activity backend is configured.
func (c *Config) ActivityEnabled() bool {
	return c.ActivityBaseURL != ""
}

// RedisAddr returns the host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
