// Package scheduler runs the worker's periodic jobs: the catch-up achievement
// sweep and the leaderboard rebuild.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/prepdeck/prepdeck-backend/internal/application/command"
	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
	"github.com/prepdeck/prepdeck-backend/pkg/retry"
)

// UserLister enumerates users with ledger activity. Implemented by the
// postgres progress repository.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// rebuildBatchSize caps how many balances one rebuild reads.
const rebuildBatchSize = 10000

// Config contains job intervals and the per-job timeout.
type Config struct {
	// SweepInterval is how often every user is re-checked against the
	// achievement catalog. The event path already checks on each activity;
	// the sweep catches users whose unlock was missed (process restart,
	// catalog change).
	SweepInterval time.Duration

	// RebuildInterval is how often the leaderboard projection is rebuilt from
	// the balances table.
	RebuildInterval time.Duration

	JobTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SweepInterval:   time.Hour,
		RebuildInterval: 10 * time.Minute,
		JobTimeout:      5 * time.Minute,
	}
}

// Scheduler owns the gocron instance and the job wiring.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       Config

	users    UserLister
	check    *command.CheckAchievementsHandler
	balances points.Repository
	board    points.Leaderboard

	log *logger.Logger
}

// New creates a scheduler. board may be nil; the rebuild job is then skipped.
func New(
	cfg Config,
	users UserLister,
	check *command.CheckAchievementsHandler,
	balances points.Repository,
	board points.Leaderboard,
	log *logger.Logger,
) *Scheduler {
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cfg:       cfg,
		users:     users,
		check:     check,
		balances:  balances,
		board:     board,
		log:       log,
	}
}

// Start registers the jobs and begins running them asynchronously.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.cfg.SweepInterval).Do(s.runAchievementSweep); err != nil {
		return err
	}
	if s.board != nil {
		if _, err := s.scheduler.Every(s.cfg.RebuildInterval).Do(s.runLeaderboardRebuild); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	s.log.Info("scheduler started",
		logger.Duration("sweep_interval", s.cfg.SweepInterval),
		logger.Duration("rebuild_interval", s.cfg.RebuildInterval),
	)
	return nil
}

// Stop blocks until running jobs finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

// runAchievementSweep re-checks every active user against the catalog. A
// failure for one user is logged and the sweep moves on; a failure to list
// users is retried with backoff.
func (s *Scheduler) runAchievementSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	var userIDs []string
	err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
		var listErr error
		userIDs, listErr = s.users.ListUserIDs(ctx)
		return listErr
	})
	if err != nil {
		s.log.Error("achievement sweep: failed to list users", logger.Err(err))
		return
	}

	unlocked := 0
	for _, userID := range userIDs {
		result, err := s.check.Handle(ctx, userID)
		if err != nil {
			s.log.Warn("achievement sweep: user check failed",
				logger.String("user_id", userID),
				logger.Err(err),
			)
			continue
		}
		unlocked += len(result.Unlocked)
	}

	s.log.Info("achievement sweep finished",
		logger.Int("users", len(userIDs)),
		logger.Int("unlocked", unlocked),
	)
}

// runLeaderboardRebuild replaces the projection with the current balances.
func (s *Scheduler) runLeaderboardRebuild() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
		balances, err := s.balances.TopBalances(ctx, rebuildBatchSize)
		if err != nil {
			return err
		}
		return s.board.Rebuild(ctx, balances)
	})
	if err != nil {
		s.log.Error("leaderboard rebuild failed", logger.Err(err))
		return
	}

	s.log.Debug("leaderboard rebuilt")
}
