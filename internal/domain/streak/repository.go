package streak

import "context"

// Repository defines persistence for streak rows. One row per user, enforced
// by a unique constraint at the store layer so concurrent first-touches
// cannot create duplicates.
type Repository interface {
	// GetByUser returns the streak row for a user, or shared.ErrNotFound
	// (wrapped) when the user has never had a qualifying activity.
	GetByUser(ctx context.Context, userID string) (*Streak, error)

	// Create inserts the first streak row for a user.
	Create(ctx context.Context, s *Streak) error

	// Update overwrites an existing streak row.
	Update(ctx context.Context, s *Streak) error
}
