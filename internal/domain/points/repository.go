package points

import "context"

// Repository defines persistence for points balances. One row per user,
// enforced by a unique constraint at the store layer.
type Repository interface {
	// GetByUser returns the balance for a user, or shared.ErrNotFound
	// (wrapped) when no points were ever awarded.
	GetByUser(ctx context.Context, userID string) (*Balance, error)

	// Create inserts the first balance row for a user.
	Create(ctx context.Context, b *Balance) error

	// Increment atomically adds amount to an existing balance and returns the
	// new total. The increment happens in a single statement at the store
	// layer, so concurrent awards for the same user cannot lose updates.
	Increment(ctx context.Context, userID string, amount int) (newTotal int, err error)

	// TopBalances returns the highest balances, largest first. Used to rebuild
	// the leaderboard projection.
	TopBalances(ctx context.Context, limit int) ([]*Balance, error)
}
