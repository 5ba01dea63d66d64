package points

import "context"

// LeaderboardEntry is one row of the points leaderboard projection.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	TotalPoints int    `json:"total_points"`
}

// Leaderboard is the projection port for ranking users by total points. It is
// a cache rebuilt from the balances table, typically implemented on a Redis
// sorted set; the table stays the source of truth.
type Leaderboard interface {
	// SetScore records a user's current total.
	SetScore(ctx context.Context, userID string, totalPoints int) error

	// Top returns the highest totals, best first.
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// Rank returns a user's 1-based rank, or shared.ErrNotFound (wrapped)
	// when the user has no score yet.
	Rank(ctx context.Context, userID string) (int, error)

	// Rebuild replaces the projection with the given balances.
	Rebuild(ctx context.Context, balances []*Balance) error
}
