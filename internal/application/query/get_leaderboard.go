package query

import (
	"context"

	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

// DefaultLeaderboardSize is used when the caller does not ask for a specific
// number of entries.
const DefaultLeaderboardSize = 10

// GetLeaderboardHandler reads the points ranking. It prefers the cached
// projection and falls back to the store when the cache is unavailable, so a
// cold or flushed cache degrades to a slower read instead of an error.
type GetLeaderboardHandler struct {
	board    points.Leaderboard
	balances points.Repository
}

// NewGetLeaderboardHandler creates a GetLeaderboardHandler. board may be nil;
// reads then always go to the store.
func NewGetLeaderboardHandler(board points.Leaderboard, balances points.Repository) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{board: board, balances: balances}
}

// Handle returns the top scorers in descending order of points.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, limit int) ([]points.LeaderboardEntry, error) {
	const op = "GetLeaderboard"

	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	if h.board != nil {
		entries, err := h.board.Top(ctx, limit)
		if err == nil {
			return entries, nil
		}
	}

	balances, err := h.balances.TopBalances(ctx, limit)
	if err != nil {
		return nil, shared.WrapStorage("points", op, err)
	}

	entries := make([]points.LeaderboardEntry, 0, len(balances))
	for i, b := range balances {
		entries = append(entries, points.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      b.UserID,
			TotalPoints: b.TotalPoints,
		})
	}
	return entries, nil
}

// RankOf returns a single user's 1-based rank. Users without a score get
// rank 0 and no error.
func (h *GetLeaderboardHandler) RankOf(ctx context.Context, userID string) (int, error) {
	const op = "GetLeaderboardRank"

	if userID == "" {
		return 0, shared.NewDomainError("points", op, shared.ErrEmptyValue, "user ID is required")
	}
	if h.board == nil {
		return 0, nil
	}

	rank, err := h.board.Rank(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return 0, nil
		}
		return 0, shared.WrapStorage("points", op, err)
	}
	return rank, nil
}
