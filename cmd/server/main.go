// Package main is the entry point for the REST API server. It wires the
// ledger's command and query handlers to PostgreSQL, the Redis leaderboard
// projection, and the in-process event bus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prepdeck/prepdeck-backend/config"
	"github.com/prepdeck/prepdeck-backend/internal/application/command"
	"github.com/prepdeck/prepdeck-backend/internal/application/eventhandler"
	"github.com/prepdeck/prepdeck-backend/internal/application/query"
	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/infrastructure/messaging"
	"github.com/prepdeck/prepdeck-backend/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/prepdeck/prepdeck-backend/internal/infrastructure/persistence/redis"
	httpapi "github.com/prepdeck/prepdeck-backend/internal/interface/http"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
	"github.com/prepdeck/prepdeck-backend/pkg/timeutil"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// Configuration & logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Logging.Level),
		AddCaller: cfg.Logging.AddCaller,
	})
	log.Info("starting server",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	db, err := postgres.NewConnectionFromURL(ctx, cfg.DatabaseDSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := postgres.NewMigrator(db).Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("migrations applied")
	}

	progressRepo := postgres.NewProgressRepository(db)
	responseRepo := postgres.NewResponseRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	streakRepo := postgres.NewStreakRepository(db)
	pointsRepo := postgres.NewPointsRepository(db)
	catalogRepo := postgres.NewAchievementRepository(db)
	unlockRepo := postgres.NewUnlockRepository(db)

	// ─────────────────────────────────────────────────────────────────────────
	// Redis leaderboard projection (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var board points.Leaderboard
	var analyticsCache progress.AnalyticsCache
	if !cfg.Redis.Disabled {
		rc, err := redisinfra.NewClient(ctx, redisinfra.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rc.Close()
		board = redisinfra.NewPointsLeaderboard(rc)
		analyticsCache = redisinfra.NewAnalyticsCache(rc)
	} else {
		log.Warn("redis disabled; leaderboard reads fall back to postgres")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Event bus & application layer
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(messaging.Config{
		AsyncMode:      true,
		WorkerPoolSize: 10,
		Logger:         log,
	})
	defer func() { _ = bus.Close() }()

	clock := timeutil.SystemClock{}
	ids := command.UUIDGenerator{}

	touch := command.NewTouchStreakHandler(streakRepo, clock, bus, log)
	award := command.NewAwardPointsHandler(pointsRepo, clock, bus, log)

	recordProgress := command.NewRecordProgressHandler(progressRepo, touch, award, ids, clock, bus, log)
	recordProgress.SetAwardAmount(cfg.Points.ProgressUpdateAward)

	recordResponse := command.NewRecordResponseHandler(responseRepo, ids, clock, bus, log)

	recordSession := command.NewRecordSessionHandler(sessionRepo, touch, award, ids, clock, bus, log)
	recordSession.SetPerCorrectAward(cfg.Points.PerCorrectAnswerAward)

	checkAchievements := command.NewCheckAchievementsHandler(
		catalogRepo, unlockRepo, responseRepo, progressRepo, pointsRepo, streakRepo,
		ids, clock, bus, log,
	)
	manageCatalog := command.NewManageCatalogHandler(catalogRepo, ids, clock)

	if err := eventhandler.NewOnActivityHandler(checkAchievements, log).Register(bus); err != nil {
		return fmt.Errorf("register activity handler: %w", err)
	}
	if board != nil {
		if err := eventhandler.NewOnPointsAwardedHandler(board, log).Register(bus); err != nil {
			return fmt.Errorf("register points handler: %w", err)
		}
	}
	if analyticsCache != nil {
		if err := eventhandler.NewOnStatsChangedHandler(analyticsCache, log).Register(bus); err != nil {
			return fmt.Errorf("register stats handler: %w", err)
		}
	}

	analytics := query.NewGetAnalyticsHandler(progressRepo, responseRepo, streakRepo, pointsRepo)
	if analyticsCache != nil {
		analytics.SetCache(analyticsCache)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpapi.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpCfg.APIKeys = cfg.HTTP.APIKeys

	server := httpapi.NewServer(httpCfg, httpapi.Dependencies{
		RecordProgress:    recordProgress,
		RecordResponse:    recordResponse,
		RecordSession:     recordSession,
		CheckAchievements: checkAchievements,
		ManageCatalog:     manageCatalog,
		GetAnalytics:      analytics,
		GetProgress:       query.NewGetProgressHandler(progressRepo),
		GetSessions:       query.NewGetSessionsHandler(sessionRepo),
		GetAchievements:   query.NewGetAchievementsHandler(catalogRepo, unlockRepo),
		GetLeaderboard:    query.NewGetLeaderboardHandler(board, pointsRepo),
		Logger:            log,
		Database:          db,
	})

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", logger.Err(err))
		return err
	}

	log.Info("server stopped")
	return nil
}
