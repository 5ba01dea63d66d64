package achievement

import "context"

// CatalogRepository defines persistence for the global achievement catalog.
type CatalogRepository interface {
	// List returns the full catalog ordered by title.
	List(ctx context.Context) ([]*Achievement, error)

	// GetByID returns one catalog entry, or shared.ErrNotFound (wrapped).
	GetByID(ctx context.Context, id string) (*Achievement, error)

	// Create inserts a catalog entry.
	Create(ctx context.Context, a *Achievement) error

	// Update overwrites a catalog entry.
	Update(ctx context.Context, a *Achievement) error

	// Delete removes a catalog entry.
	Delete(ctx context.Context, id string) error
}

// UnlockRepository defines persistence for the per-user unlock ledger.
// A unique (user_id, achievement_id) constraint at the store layer backs the
// exactly-once invariant even when two checks race.
type UnlockRepository interface {
	// ListByUser returns all unlocks for a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Unlock, error)

	// ListIDsByUser returns the set of unlocked achievement IDs for a user.
	ListIDsByUser(ctx context.Context, userID string) (map[string]struct{}, error)

	// Exists reports whether the (user, achievement) pairing is unlocked.
	Exists(ctx context.Context, userID, achievementID string) (bool, error)

	// Create inserts an unlock row. Returns shared.ErrAlreadyExists (wrapped)
	// when the pairing is already present.
	Create(ctx context.Context, u *Unlock) error

	// ListDetailsByUser returns unlocks joined with catalog details.
	ListDetailsByUser(ctx context.Context, userID string) ([]*UnlockedDetail, error)
}
