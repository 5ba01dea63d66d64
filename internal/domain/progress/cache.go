package progress

import "context"

// AnalyticsCache is the projection port for cached analytics snapshots. The
// stored rows stay the source of truth; the cache only short-circuits repeated
// reads and is invalidated whenever a ledger write changes the user's stats.
type AnalyticsCache interface {
	// Get returns the cached snapshot, or shared.ErrNotFound (wrapped) on miss.
	Get(ctx context.Context, userID string) (AnalyticsSnapshot, error)

	// Set stores a snapshot.
	Set(ctx context.Context, userID string, snap AnalyticsSnapshot) error

	// Invalidate drops the cached snapshot for a user.
	Invalidate(ctx context.Context, userID string) error
}
