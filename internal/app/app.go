// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/matuskalis/speaksharp-gamification/internal/config"
	"github.com/matuskalis/speaksharp-gamification/internal/server"
	"github.com/matuskalis/speaksharp-gamification/pkg/activity"
	"github.com/matuskalis/speaksharp-gamification/pkg/clock"
	"github.com/matuskalis/speaksharp-gamification/pkg/common"
	"github.com/matuskalis/speaksharp-gamification/pkg/engine"
	"github.com/matuskalis/speaksharp-gamification/pkg/handler"
	"github.com/matuskalis/speaksharp-gamification/pkg/metrics"
	"github.com/matuskalis/speaksharp-gamification/pkg/reward"
	"github.com/matuskalis/speaksharp-gamification/pkg/store"

	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/factory"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/iam"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/platform"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/social"
	sdkAuth "github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/utils/auth"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	httpServer        *server.HTTPServer
	grpcServer        *server.GRPCServer
	metricsServer     *server.MetricsServer
	registry          *engine.Registry
	redisClient       *redis.Client
	sqliteDB          *sql.DB
	shutdownTelemetry func(context.Context) error

	// AccelByte SDK repositories, only set when AccelByte credentials are configured
	configRepo *sdkAuth.ConfigRepositoryImpl
	tokenRepo  *sdkAuth.TokenRepositoryImpl
}

// New creates and initializes a new application instance.
//
// Components are initialized in dependency order:
// 1. Snapshot store (memory, Redis or SQLite)
// 2. Activity backend client, the optional AccelByte XP mirror and level rewards
// 3. Engine registry and HTTP handler
// 4. Servers (HTTP, gRPC health, metrics)
// 5. Telemetry (OpenTelemetry tracing)
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.SetLevel(common.ParseLogLevel(cfg.LogLevel))
	logrus.WithFields(cfg.LogFields()).Info("initializing application...")

	app := &App{cfg: cfg}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Step 1: snapshot store
	backend, err := app.initStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init %s store: %w", cfg.StoreBackend, err)
	}
	snapshots := store.NewSnapshots(backend)

	// Step 2: external services
	var streaks activity.StreakAPI
	if cfg.ActivityEnabled() {
		streaks = activity.NewClient(activity.ClientConfig{
			BaseURL:    cfg.ActivityBaseURL,
			Token:      cfg.ActivityToken,
			Timeout:    cfg.ActivityTimeout,
			MaxRetries: cfg.ActivityMaxRetries,
		})
		logrus.Infof("activity backend at %s", cfg.ActivityBaseURL)
	} else {
		logrus.Warn("ACTIVITY_API_BASE_URL not set, streaks are tracked locally only")
	}

	collectors := metrics.New()

	var mirror activity.XPMirror
	var rewards engine.LevelRewarder
	if cfg.StatMirrorEnabled() {
		if err := app.initAccelByteSDKAuth(); err != nil {
			return nil, fmt.Errorf("failed to init AccelByte SDK: %w", err)
		}
		mirror = app.initXPMirror()

		if cfg.RewardsEnabled() {
			rewarder, err := app.initRewarder(backend, collectors)
			if err != nil {
				return nil, err
			}
			rewards = rewarder
		}
	}

	// Step 3: engines
	realClock := clock.NewReal()
	app.registry = engine.NewRegistry(func(userID string) *engine.Engine {
		return engine.New(engine.Options{
			UserID:          userID,
			Snapshots:       snapshots,
			Clock:           realClock,
			Location:        location,
			Streaks:         streaks,
			Mirror:          mirror,
			Rewards:         rewards,
			Metrics:         collectors,
			ResetTodayDaily: cfg.XPTodayResetsDaily,
		})
	}, collectors)
	api := handler.New(app.registry)

	// Step 4: servers
	checker := store.NewHealthChecker(backend)

	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, api.Routes(), checker, cfg.ServiceName)
	if err := app.httpServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup HTTP server: %w", err)
	}

	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, checker)
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics", collectors)
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// Step 5: telemetry
	shutdownTelemetry, err := server.SetupTelemetry(ctx, server.TelemetryConfig{
		ServiceName:    cfg.ServiceName,
		Environment:    cfg.Environment,
		Enabled:        cfg.OtelEnabled,
		ZipkinEndpoint: cfg.ZipkinEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup telemetry: %w", err)
	}
	app.shutdownTelemetry = shutdownTelemetry

	logrus.Info("application initialized successfully")

	return app, nil
}

func (a *App) initStore(ctx context.Context) (store.Store, error) {
	switch a.cfg.StoreBackend {
	case config.StoreMemory:
		logrus.Warn("using in-memory store, state is lost on restart")
		return store.NewMemoryStore(), nil

	case config.StoreSQLite:
		db, err := store.OpenSQLite(a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s, err := store.NewSQLiteStore(ctx, db, a.cfg.StoreNamespace)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.sqliteDB = db
		logrus.Infof("SQLite store opened at %s", a.cfg.SQLitePath)
		return s, nil

	default:
		if err := a.initRedis(ctx); err != nil {
			return nil, err
		}
		return store.NewRedisStore(a.redisClient, store.RedisStoreConfig{
			Namespace: a.cfg.StoreNamespace,
			TTL:       a.cfg.SnapshotTTL,
		}), nil
	}
}

// initAccelByteSDKAuth initializes the AccelByte SDK auth by performing client login.
//
// The SDK reads AB_BASE_URL, AB_CLIENT_ID and AB_CLIENT_SECRET from the
// environment and refreshes the token at 80% of its TTL. The configRepo and
// tokenRepo stored in App must be reused by every AccelByte service.
func (a *App) initAccelByteSDKAuth() error {
	a.configRepo = sdkAuth.DefaultConfigRepositoryImpl()
	a.tokenRepo = sdkAuth.DefaultTokenRepositoryImpl()
	refreshRepo := &sdkAuth.RefreshTokenImpl{AutoRefresh: true, RefreshRate: 0.8}

	oauthService := iam.OAuth20Service{
		Client:                 factory.NewIamClient(a.configRepo),
		ConfigRepository:       a.configRepo,
		TokenRepository:        a.tokenRepo,
		RefreshTokenRepository: refreshRepo,
	}

	clientID := a.configRepo.GetClientId()
	clientSecret := a.configRepo.GetClientSecret()

	if err := oauthService.LoginClient(&clientID, &clientSecret); err != nil {
		return fmt.Errorf("unable to login using clientId and clientSecret: %w", err)
	}

	logrus.Info("AccelByte SDK initialized and authenticated")
	return nil
}

// initRedis initializes the Redis client.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisAddr(),
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	maxRetries := backoff.WithMaxRetries(b, a.cfg.RedisMaxRetries)

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		maxRetries,
	)

	if err != nil {
		client.Close()
		return err
	}

	a.redisClient = client
	logrus.Infof("Redis client initialized (%s)", a.cfg.RedisAddr())
	return nil
}

// initXPMirror mirrors earned XP into a user statistic.
//
// IMPORTANT: Reuses a.configRepo and a.tokenRepo to share the authenticated
// session from initAccelByteSDKAuth(). Do NOT create new repository instances.
func (a *App) initXPMirror() activity.XPMirror {
	statisticService := &social.UserStatisticService{
		Client:           factory.NewSocialClient(a.configRepo),
		ConfigRepository: a.configRepo,
		TokenRepository:  a.tokenRepo,
	}

	logrus.Infof("mirroring XP into stat %s", a.cfg.XPStatCode)
	return activity.NewStatisticXPMirror(statisticService, activity.StatisticXPMirrorConfig{
		Namespace: a.cfg.ABNamespace,
		StatCode:  a.cfg.XPStatCode,
	})
}

// initRewarder loads the level rewards and grants them through Platform fulfillment.
//
// IMPORTANT: Reuses a.configRepo and a.tokenRepo to share the authenticated
// session from initAccelByteSDKAuth(). Do NOT create new repository instances.
func (a *App) initRewarder(s store.Store, collectors *metrics.Collectors) (*reward.Rewarder, error) {
	rewardsConfig, err := reward.LoadConfig(a.cfg.RewardsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rewards from %s: %w", a.cfg.RewardsConfigPath, err)
	}
	logrus.Infof("loaded %d level rewards from %s", len(rewardsConfig.Rewards), a.cfg.RewardsConfigPath)

	fulfillmentService := &platform.FulfillmentService{
		Client:           factory.NewPlatformClient(a.configRepo),
		ConfigRepository: a.configRepo,
		TokenRepository:  a.tokenRepo,
	}

	granter := reward.NewEntitlementGranter(fulfillmentService, reward.EntitlementGranterConfig{
		Namespace: a.cfg.ABNamespace,
	})
	return reward.NewRewarder(rewardsConfig, granter, s, collectors), nil
}
