package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bukinich-Pavel/resume-bot/config"
	"github.com/Bukinich-Pavel/resume-bot/internal/application/dispatch"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/menu"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/update"
	"github.com/Bukinich-Pavel/resume-bot/internal/infrastructure/assets"
	"github.com/Bukinich-Pavel/resume-bot/internal/infrastructure/external/telegram"
	"github.com/Bukinich-Pavel/resume-bot/internal/infrastructure/metrics"
	"github.com/Bukinich-Pavel/resume-bot/internal/infrastructure/persistence/postgres"
	redisstore "github.com/Bukinich-Pavel/resume-bot/internal/infrastructure/persistence/redis"
	httpserver "github.com/Bukinich-Pavel/resume-bot/internal/interface/http"
	"github.com/Bukinich-Pavel/resume-bot/internal/interface/http/handlers"
	botrunner "github.com/Bukinich-Pavel/resume-bot/internal/interface/telegram"
	"github.com/Bukinich-Pavel/resume-bot/pkg/retry"
)

var (
	serveMode     string
	serveFeatures map[string]string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive updates by webhook or long polling and answer them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Read(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if serveMode != "" {
			cfg.Telegram.Mode = serveMode
		}
		if err := applyFeatureOverrides(cfg.Features, serveFeatures); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, setupLogger(cfg))
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveMode, "mode", "m", "", "webhook or polling (overrides TELEGRAM_MODE)")
	serveCmd.Flags().StringToStringVar(&serveFeatures, "feature", nil, "feature overrides, e.g. --feature menu.inline=true")
}

// applyFeatureOverrides sets flags given on the command line over FEATURE_* values.
func applyFeatureOverrides(ff *config.FeatureFlags, overrides map[string]string) error {
	for name, raw := range overrides {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("feature %s: invalid value %q", name, raw)
		}
		if err := ff.SetEnabled(name, enabled); err != nil {
			return fmt.Errorf("feature %s: %w", name, err)
		}
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting resume bot",
		"env", cfg.App.Environment,
		"mode", cfg.Telegram.Mode,
		"version", cfg.App.Version,
	)

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	var observers []dispatch.Observer

	// ─────────────────────────────────────────────────────────────────────────
	// Metrics
	// ─────────────────────────────────────────────────────────────────────────
	var m *metrics.Metrics
	if cfg.Observability.MetricsEnabled {
		m = metrics.New()
		observers = append(observers, m)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Dispatch journal (PostgreSQL, optional)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.Enabled {
		conn, err := connectDatabase(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing database connection")
			conn.Close()
		}()

		observers = append(observers, postgres.NewJournalRepository(conn, log))
		health.AddCheck("postgres", handlers.NewPingCheck(conn))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Update de-duplication (Redis, optional)
	// ─────────────────────────────────────────────────────────────────────────
	var dedup *redisstore.Deduplicator
	if cfg.Redis.Enabled {
		log.Info("connecting to Redis")
		cache, err := retry.DoWithData(ctx, func(ctx context.Context) (*redisstore.Cache, error) {
			return redisstore.NewCache(ctx, redisConfig(cfg.Redis))
		}, retry.WithOnRetry(logRetry(log, "redis")))
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer cache.Close()

		dedup = redisstore.NewDeduplicator(cache, cfg.Redis.DedupTTL, log)
		health.AddCheck("redis", handlers.NewPingCheck(cache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Bot API client and dispatcher
	// ─────────────────────────────────────────────────────────────────────────
	var runner *botrunner.Bot

	clientCfg := clientConfig(cfg, log)
	clientCfg.OnUpdate = func(ctx context.Context, u update.Update) {
		runner.HandleUpdate(ctx, u)
	}
	client, err := telegram.NewClient(clientCfg)
	if err != nil {
		return err
	}

	router := menu.NewRouter(menu.Options{
		InlineMenu:     cfg.Features.IsEnabled(config.FeatureMenuInline),
		RemoveKeyboard: cfg.Features.IsEnabled(config.FeatureMenuRemove),
	})

	dispatchCfg := dispatch.DefaultConfig()
	dispatchCfg.Router = router
	dispatchCfg.PhotoAsset = cfg.Assets.Photo
	dispatchCfg.InlineDelay = cfg.Dispatch.InlineDelay
	dispatchCfg.Observers = observers
	dispatchCfg.Recovery.EnableStackTrace = cfg.Dispatch.PanicStackTraces
	dispatchCfg.Logger = log

	store := assets.NewStore(assets.Config{Dir: cfg.Assets.Dir, Logger: log})
	health.AddCheck("telegram", handlers.NewPingCheck(client))
	health.AddReadinessCheck("photo", handlers.NewAssetCheck(store, cfg.Assets.Photo))

	dispatcher := dispatch.NewDispatcher(client, store, dispatchCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	srvCfg := httpserver.DefaultConfig()
	srvCfg.Host = cfg.HTTP.Host
	srvCfg.Port = cfg.HTTP.Port
	srvCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	srvCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	srvCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	srvCfg.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	srvCfg.WebhookPath = cfg.HTTP.WebhookPath
	srvCfg.WebhookSecret = cfg.Telegram.WebhookSecret
	srvCfg.EnableMetrics = cfg.Observability.MetricsEnabled

	deps := httpserver.Dependencies{
		Dispatcher:    dispatcher,
		HealthChecker: health,
		Logger:        log,
	}
	var claimer botrunner.Claimer
	if dedup != nil {
		deps.Dedup = dedup
		claimer = dedup
	}
	if m != nil {
		deps.Metrics = m
	}
	server := httpserver.NewServer(srvCfg, deps)

	// ─────────────────────────────────────────────────────────────────────────
	// Run until signalled
	// ─────────────────────────────────────────────────────────────────────────
	botCfg := botrunner.DefaultBotConfig()
	botCfg.Mode = cfg.Telegram.Mode
	botCfg.WebhookURL = cfg.Telegram.WebhookURL
	botCfg.AllowedUpdates = cfg.Telegram.AllowedUpdates
	botCfg.DeleteWebhookOnShutdown = cfg.Telegram.DeleteWebhookOnShutdown
	botCfg.DropPendingUpdates = cfg.Telegram.DropPendingUpdates
	botCfg.ShutdownTimeout = cfg.App.ShutdownTimeout
	botCfg.Logger = log

	runner, err = botrunner.NewBot(botCfg, client, server, dispatcher, claimer)
	if err != nil {
		return err
	}

	if err := runner.Run(ctx); err != nil {
		return err
	}
	log.Info("resume bot stopped gracefully")
	return nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*postgres.Connection, error) {
	log.Info("connecting to database")

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = cfg.Database.MaxConns
	pgCfg.MinConns = cfg.Database.MinConns
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	conn, err := retry.DoWithData(ctx, func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.NewConnection(ctx, pgCfg)
	}, retry.WithOnRetry(logRetry(log, "postgres")))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database migrations applied")
	}
	return conn, nil
}

func logRetry(log *slog.Logger, store string) func(int, error, time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		log.Warn("store unavailable, retrying", "store", store, "attempt", attempt, "delay", delay, "error", err)
	}
}

func redisConfig(c config.RedisConfig) redisstore.Config {
	rc := redisstore.DefaultConfig()
	rc.URL = c.URL
	rc.Host = c.Host
	rc.Port = c.Port
	rc.Password = c.Password
	rc.DB = c.DB
	rc.PoolSize = c.PoolSize
	rc.DialTimeout = c.DialTimeout
	rc.ReadTimeout = c.ReadTimeout
	rc.WriteTimeout = c.WriteTimeout
	return rc
}

func clientConfig(cfg *config.Config, log *slog.Logger) telegram.ClientConfig {
	cc := telegram.DefaultClientConfig(cfg.Telegram.Token)
	cc.BaseURL = cfg.Telegram.BaseURL
	cc.Timeout = cfg.Telegram.RequestTimeout
	cc.PollTimeout = cfg.Telegram.PollingTimeout
	cc.WebhookSecret = cfg.Telegram.WebhookSecret
	cc.Debug = cfg.App.Debug
	cc.Logger = log
	return cc
}
