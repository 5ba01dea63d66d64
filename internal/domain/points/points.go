// Package points contains the monotonically increasing per-user points
// balance. Points are only ever awarded, never decremented or reset, by any
// operation in this module. This is a pure domain layer with zero external
// dependencies.
package points

import (
	"errors"
	"time"
)

// Domain errors for the points package.
var (
	ErrInvalidUserID    = errors.New("points: invalid user ID")
	ErrNonPositiveAward = errors.New("points: award amount must be positive")
)

// Award sizes used by the ledger. One flat bonus per progress update, and a
// per-correct-answer bonus for finished practice sessions.
const (
	ProgressUpdateAward   = 10
	PerCorrectAnswerAward = 10
)

// Balance is the one-row-per-user points ledger.
type Balance struct {
	UserID      string
	TotalPoints int
	UpdatedAt   time.Time
}

// NewBalance creates the balance row for a user's first award. Awards of zero
// or less are rejected before any store call so the monotonicity invariant
// can never be corrupted.
func NewBalance(userID string, amount int, now time.Time) (*Balance, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrNonPositiveAward
	}
	return &Balance{
		UserID:      userID,
		TotalPoints: amount,
		UpdatedAt:   now.UTC(),
	}, nil
}

// Add applies an award to the balance.
func (b *Balance) Add(amount int, now time.Time) error {
	if amount <= 0 {
		return ErrNonPositiveAward
	}
	b.TotalPoints += amount
	b.UpdatedAt = now.UTC()
	return nil
}
