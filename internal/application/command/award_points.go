package command

import (
	"context"

	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
	"github.com/prepdeck/prepdeck-backend/pkg/timeutil"
)

// AwardPointsResult contains the outcome of a points award.
type AwardPointsResult struct {
	UserID   string
	Amount   int
	NewTotal int
}

// AwardPointsHandler adds to a user's monotonically increasing points
// balance. Non-positive amounts are rejected with a validation error before
// any store call; nothing in this module ever decrements a balance.
type AwardPointsHandler struct {
	balances  points.Repository
	clock     timeutil.Clock
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewAwardPointsHandler creates an AwardPointsHandler.
func NewAwardPointsHandler(balances points.Repository, clock timeutil.Clock, publisher shared.EventPublisher, log *logger.Logger) *AwardPointsHandler {
	if publisher == nil {
		publisher = shared.NoopPublisher{}
	}
	return &AwardPointsHandler{
		balances:  balances,
		clock:     clock,
		publisher: publisher,
		log:       log,
	}
}

// Handle awards amount points to the user. reason is carried on the emitted
// event for audit purposes (e.g. "progress_update", "practice_session").
func (h *AwardPointsHandler) Handle(ctx context.Context, userID string, amount int, reason string) (*AwardPointsResult, error) {
	const op = "AwardPoints"

	if userID == "" {
		return nil, shared.NewDomainError("points", op, shared.ErrEmptyValue, "user ID is required")
	}
	if amount <= 0 {
		return nil, shared.WrapError("points", op, shared.ErrValueOutOfRange, "award must be positive", points.ErrNonPositiveAward)
	}

	newTotal, err := h.balances.Increment(ctx, userID, amount)
	switch {
	case err == nil:
		// Existing balance bumped atomically at the store layer.
	case shared.IsNotFound(err):
		newTotal, err = h.createBalance(ctx, userID, amount)
		if err != nil {
			return nil, err
		}
	default:
		return nil, shared.WrapStorage("points", op, err)
	}

	if err := h.publisher.Publish(shared.NewPointsAwardedEvent(userID, amount, newTotal, reason)); err != nil && h.log != nil {
		h.log.Warn("failed to publish points event", logger.Err(err))
	}

	return &AwardPointsResult{
		UserID:   userID,
		Amount:   amount,
		NewTotal: newTotal,
	}, nil
}

// createBalance handles the first-ever award for a user. If a concurrent
// award wins the insert, fall back to the atomic increment.
func (h *AwardPointsHandler) createBalance(ctx context.Context, userID string, amount int) (int, error) {
	const op = "AwardPoints"

	b, err := points.NewBalance(userID, amount, h.clock.Now())
	if err != nil {
		return 0, shared.WrapError("points", op, shared.ErrInvalidInput, "invalid balance", err)
	}

	if err := h.balances.Create(ctx, b); err != nil {
		if shared.IsAlreadyExists(err) {
			newTotal, incErr := h.balances.Increment(ctx, userID, amount)
			if incErr != nil {
				return 0, shared.WrapStorage("points", op, incErr)
			}
			return newTotal, nil
		}
		return 0, shared.WrapStorage("points", op, err)
	}

	return b.TotalPoints, nil
}
