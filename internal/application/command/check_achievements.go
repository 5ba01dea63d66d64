package command

import (
	"context"

	"github.com/prepdeck/prepdeck-backend/internal/domain/achievement"
	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/internal/domain/streak"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
	"github.com/prepdeck/prepdeck-backend/pkg/timeutil"
)

// CheckAchievementsResult contains the outcome of one achievement sweep.
type CheckAchievementsResult struct {
	// UserID is the user that was checked.
	UserID string

	// Stats is the snapshot the catalog was evaluated against.
	Stats achievement.StatsSnapshot

	// Unlocked lists the achievements newly unlocked by this sweep.
	Unlocked []*achievement.Achievement
}

// CheckAchievementsHandler evaluates the full catalog against the user's
// current aggregate statistics and records every newly qualified achievement
// exactly once. Re-running with unchanged stats is a no-op: the unlocked set
// is consulted first, and the unique (user, achievement) constraint at the
// store layer catches any race two sweeps might have.
type CheckAchievementsHandler struct {
	catalog   achievement.CatalogRepository
	unlocks   achievement.UnlockRepository
	responses progress.ResponseRepository
	rows      progress.Repository
	balances  points.Repository
	streaks   streak.Repository
	checker   *achievement.Checker
	ids       IDGenerator
	clock     timeutil.Clock
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewCheckAchievementsHandler creates a CheckAchievementsHandler.
func NewCheckAchievementsHandler(
	catalog achievement.CatalogRepository,
	unlocks achievement.UnlockRepository,
	responses progress.ResponseRepository,
	rows progress.Repository,
	balances points.Repository,
	streaks streak.Repository,
	ids IDGenerator,
	clock timeutil.Clock,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *CheckAchievementsHandler {
	if publisher == nil {
		publisher = shared.NoopPublisher{}
	}
	return &CheckAchievementsHandler{
		catalog:   catalog,
		unlocks:   unlocks,
		responses: responses,
		rows:      rows,
		balances:  balances,
		streaks:   streaks,
		checker:   achievement.NewChecker(),
		ids:       ids,
		clock:     clock,
		publisher: publisher,
		log:       log,
	}
}

// Handle runs one sweep. If loading the catalog or the statistics fails, the
// sweep stops before producing any unlock side effects; the caller decides
// whether and when to retry.
func (h *CheckAchievementsHandler) Handle(ctx context.Context, userID string) (*CheckAchievementsResult, error) {
	const op = "CheckAchievements"

	if userID == "" {
		return nil, shared.NewDomainError("achievement", op, shared.ErrEmptyValue, "user ID is required")
	}

	catalog, err := h.catalog.List(ctx)
	if err != nil {
		return nil, shared.WrapStorage("achievement", op, err)
	}

	unlockedIDs, err := h.unlocks.ListIDsByUser(ctx, userID)
	if err != nil {
		return nil, shared.WrapStorage("achievement", op, err)
	}

	stats, err := h.buildStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	qualified := h.checker.NewlyQualified(catalog, unlockedIDs, stats)

	result := &CheckAchievementsResult{
		UserID: userID,
		Stats:  stats,
	}

	for _, a := range qualified {
		unlock, err := achievement.NewUnlock(h.ids.NewID(), userID, a.ID, h.clock.Now())
		if err != nil {
			return result, shared.WrapError("achievement", op, shared.ErrInvalidInput, "invalid unlock", err)
		}

		if err := h.unlocks.Create(ctx, unlock); err != nil {
			// A concurrent sweep already granted it; exactly-once holds.
			if shared.IsAlreadyExists(err) {
				continue
			}
			return result, shared.WrapStorage("achievement", op, err)
		}

		result.Unlocked = append(result.Unlocked, a)

		if err := h.publisher.Publish(shared.NewAchievementUnlockedEvent(userID, a.ID, a.Title)); err != nil && h.log != nil {
			h.log.Warn("failed to publish unlock event", logger.Err(err))
		}
	}

	if h.log != nil && len(result.Unlocked) > 0 {
		h.log.Info("achievements unlocked",
			logger.String("user_id", userID),
			logger.Int("count", len(result.Unlocked)),
		)
	}

	return result, nil
}

// buildStats computes the aggregate snapshot the criteria are evaluated
// against. Streak and points default to zero when the user has no row; any
// real store failure aborts the sweep.
func (h *CheckAchievementsHandler) buildStats(ctx context.Context, userID string) (achievement.StatsSnapshot, error) {
	const op = "CheckAchievements"

	total, correct, err := h.responses.CountByUser(ctx, progress.UserID(userID))
	if err != nil {
		return nil, shared.WrapStorage("achievement", op, err)
	}

	completed, err := h.rows.CountCompleted(ctx, progress.UserID(userID))
	if err != nil {
		return nil, shared.WrapStorage("achievement", op, err)
	}

	stats := achievement.StatsSnapshot{
		achievement.StatTotalResponses:   total,
		achievement.StatCorrectResponses: correct,
		achievement.StatCompletedTopics:  completed,
	}

	balance, err := h.balances.GetByUser(ctx, userID)
	switch {
	case err == nil:
		stats[achievement.StatTotalPoints] = balance.TotalPoints
	case shared.IsNotFound(err):
		stats[achievement.StatTotalPoints] = 0
	default:
		return nil, shared.WrapStorage("achievement", op, err)
	}

	s, err := h.streaks.GetByUser(ctx, userID)
	switch {
	case err == nil:
		stats[achievement.StatCurrentStreak] = s.Current
	case shared.IsNotFound(err):
		stats[achievement.StatCurrentStreak] = 0
	default:
		return nil, shared.WrapStorage("achievement", op, err)
	}

	return stats, nil
}
