package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-hall/internal/cache"
	"github.com/noah-isme/backend-hall/internal/config"
	"github.com/noah-isme/backend-hall/internal/dashboard"
	"github.com/noah-isme/backend-hall/internal/lock"
	"github.com/noah-isme/backend-hall/internal/obs"
	"github.com/noah-isme/backend-hall/internal/store"
)

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "hall"), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, queries := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	dashboardSvc := &dashboard.Service{
		Q:             queries,
		Cache:         cache.New(redisClient, cfg.DashboardCacheTTL),
		UpcomingDays:  cfg.UpcomingWindowDays,
		UpcomingLimit: cfg.UpcomingLimit,
	}

	locker := lock.Locker{R: redisClient, Prefix: "hall:jobs:"}

	cronLogger := obs.CronLogger{Logger: logger}
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))
	if _, err := c.AddFunc(cfg.WorkerCacheWarmSchedule, func() {
		warmDashboard(ctx, locker, dashboardSvc, logger)
	}); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.WorkerCacheWarmSchedule).Msg("schedule dashboard warm job")
	}
	logger.Info().Str("schedule", cfg.WorkerCacheWarmSchedule).Msg("scheduled dashboard warm job")

	warmDashboard(ctx, locker, dashboardSvc, logger)

	logger.Info().Msg("worker starting")
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("dashboard warm job still running at shutdown")
	}
	logger.Info().Msg("worker shutdown complete")
}

// warmDashboard refreshes the current month summary unless another replica
// already holds the job lease.
func warmDashboard(ctx context.Context, locker lock.Locker, svc *dashboard.Service, logger zerolog.Logger) {
	jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	start := time.Now()
	var summary dashboard.Summary
	ran, err := locker.RunOnce(jobCtx, "dashboard-warm", time.Minute, func(ctx context.Context) error {
		var err error
		summary, err = svc.Warm(ctx)
		return err
	})
	if err != nil {
		logger.Error().Err(err).Msg("warm dashboard")
		return
	}
	if !ran {
		logger.Debug().Msg("dashboard warm held by another worker")
		return
	}
	logger.Info().
		Str("month", summary.Month).
		Str("earnings", summary.Earnings.StringFixed(2)).
		Str("outstanding", summary.Outstanding.StringFixed(2)).
		Int("bookings", summary.Ledger.Bookings).
		Dur("took", time.Since(start)).
		Msg("dashboard warmed")
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, *store.Queries) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "hall-worker"
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool, store.New(pool)
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
