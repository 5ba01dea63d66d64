// Package main is the entry point for the background worker. The worker runs
// the periodic catch-up achievement sweep and rebuilds the points leaderboard
// projection from the balances table.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prepdeck/prepdeck-backend/config"
	"github.com/prepdeck/prepdeck-backend/internal/application/command"
	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/prepdeck/prepdeck-backend/internal/infrastructure/persistence/redis"
	"github.com/prepdeck/prepdeck-backend/internal/infrastructure/scheduler"
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
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Logging.Level),
		AddCaller: cfg.Logging.AddCaller,
	})
	log.Info("starting worker", logger.String("env", string(cfg.App.Environment)))

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler disabled; worker has nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Stores
	// ─────────────────────────────────────────────────────────────────────────
	db, err := postgres.NewConnectionFromURL(ctx, cfg.DatabaseDSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	progressRepo := postgres.NewProgressRepository(db)
	responseRepo := postgres.NewResponseRepository(db)
	streakRepo := postgres.NewStreakRepository(db)
	pointsRepo := postgres.NewPointsRepository(db)
	catalogRepo := postgres.NewAchievementRepository(db)
	unlockRepo := postgres.NewUnlockRepository(db)

	var board points.Leaderboard
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
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Jobs
	// ─────────────────────────────────────────────────────────────────────────
	check := command.NewCheckAchievementsHandler(
		catalogRepo, unlockRepo, responseRepo, progressRepo, pointsRepo, streakRepo,
		command.UUIDGenerator{}, timeutil.SystemClock{}, nil, log,
	)

	sched := scheduler.New(
		scheduler.Config{
			SweepInterval:   cfg.Scheduler.AchievementSweepInterval,
			RebuildInterval: cfg.Scheduler.RebuildLeaderboardInterval,
			JobTimeout:      cfg.Scheduler.JobTimeout,
		},
		progressRepo,
		check,
		pointsRepo,
		board,
		log,
	)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Wait for shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	sched.Stop()
	log.Info("worker stopped")
	return nil
}
