// Package query contains read operations (CQRS - Queries). Queries are pure
// reads: they never mutate ledger state and they treat missing per-user rows
// as zero-valued defaults rather than failures.
package query

import (
	"context"

	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/internal/domain/streak"
)

// GetAnalyticsHandler computes the per-user analytics snapshot by reading and
// reducing stored rows. An optional cache short-circuits repeated reads.
type GetAnalyticsHandler struct {
	rows      progress.Repository
	responses progress.ResponseRepository
	streaks   streak.Repository
	balances  points.Repository
	cache     progress.AnalyticsCache
}

// NewGetAnalyticsHandler creates a GetAnalyticsHandler.
func NewGetAnalyticsHandler(
	rows progress.Repository,
	responses progress.ResponseRepository,
	streaks streak.Repository,
	balances points.Repository,
) *GetAnalyticsHandler {
	return &GetAnalyticsHandler{
		rows:      rows,
		responses: responses,
		streaks:   streaks,
		balances:  balances,
	}
}

// SetCache attaches a snapshot cache. Reads stay correct without one; the
// cache only trades staleness (bounded by its TTL and write invalidation) for
// fewer store round trips.
func (h *GetAnalyticsHandler) SetCache(cache progress.AnalyticsCache) {
	h.cache = cache
}

// Handle returns the snapshot for a user. A brand-new user with no rows
// anywhere gets an all-zero snapshot, not an error.
func (h *GetAnalyticsHandler) Handle(ctx context.Context, userID string) (progress.AnalyticsSnapshot, error) {
	const op = "GetAnalytics"

	var zero progress.AnalyticsSnapshot

	if userID == "" {
		return zero, shared.NewDomainError("progress", op, shared.ErrEmptyValue, "user ID is required")
	}

	if h.cache != nil {
		if snap, err := h.cache.Get(ctx, userID); err == nil {
			return snap, nil
		}
	}

	uid := progress.UserID(userID)

	responses, err := h.responses.ListByUser(ctx, uid)
	if err != nil {
		return zero, shared.WrapStorage("progress", op, err)
	}

	rows, err := h.rows.ListByUser(ctx, uid)
	if err != nil {
		return zero, shared.WrapStorage("progress", op, err)
	}

	streakDays, longest := 0, 0
	s, err := h.streaks.GetByUser(ctx, userID)
	switch {
	case err == nil:
		streakDays, longest = s.Current, s.Longest
	case shared.IsNotFound(err):
		// No qualifying activity yet.
	default:
		return zero, shared.WrapStorage("progress", op, err)
	}

	totalPoints := 0
	b, err := h.balances.GetByUser(ctx, userID)
	switch {
	case err == nil:
		totalPoints = b.TotalPoints
	case shared.IsNotFound(err):
		// No awards yet.
	default:
		return zero, shared.WrapStorage("progress", op, err)
	}

	snap := progress.BuildAnalytics(responses, rows, streakDays, longest, totalPoints)

	if h.cache != nil {
		// Best effort; a failed store just means the next read recomputes.
		_ = h.cache.Set(ctx, userID, snap)
	}

	return snap, nil
}
