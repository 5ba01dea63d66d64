// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/internal/domain/streak"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
	"github.com/prepdeck/prepdeck-backend/pkg/timeutil"
)

// TouchStreakResult describes what a touch did to the user's streak.
type TouchStreakResult struct {
	// UserID is the user whose streak was touched.
	UserID string

	// Transition is the state-machine transition that happened.
	Transition streak.Transition

	// CurrentStreak is the streak after the touch.
	CurrentStreak int

	// LongestStreak is the longest streak after the touch.
	LongestStreak int
}

// TouchStreakHandler registers that a user performed a qualifying activity on
// the current calendar day (UTC). Touching is idempotent within a day: only
// the first touch of a day can change the row.
type TouchStreakHandler struct {
	streaks   streak.Repository
	clock     timeutil.Clock
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewTouchStreakHandler creates a TouchStreakHandler.
func NewTouchStreakHandler(streaks streak.Repository, clock timeutil.Clock, publisher shared.EventPublisher, log *logger.Logger) *TouchStreakHandler {
	if publisher == nil {
		publisher = shared.NoopPublisher{}
	}
	return &TouchStreakHandler{
		streaks:   streaks,
		clock:     clock,
		publisher: publisher,
		log:       log,
	}
}

// Handle advances the streak state machine for today.
func (h *TouchStreakHandler) Handle(ctx context.Context, userID string) (*TouchStreakResult, error) {
	const op = "TouchStreak"

	if userID == "" {
		return nil, shared.NewDomainError("streak", op, shared.ErrEmptyValue, "user ID is required")
	}

	now := h.clock.Now()

	current, err := h.streaks.GetByUser(ctx, userID)
	switch {
	case err == nil:
		// Existing row, run the transition.
	case shared.IsNotFound(err):
		return h.start(ctx, userID, now)
	default:
		return nil, shared.WrapStorage("streak", op, err)
	}

	transition := current.Touch(now)
	if transition == streak.TransitionNoop {
		return &TouchStreakResult{
			UserID:        userID,
			Transition:    transition,
			CurrentStreak: current.Current,
			LongestStreak: current.Longest,
		}, nil
	}

	if err := h.streaks.Update(ctx, current); err != nil {
		return nil, shared.WrapStorage("streak", op, err)
	}

	eventType := shared.EventStreakExtended
	if transition == streak.TransitionReset {
		eventType = shared.EventStreakReset
	}
	h.publish(shared.NewStreakChangedEvent(eventType, userID, current.Current, current.Longest))

	return &TouchStreakResult{
		UserID:        userID,
		Transition:    transition,
		CurrentStreak: current.Current,
		LongestStreak: current.Longest,
	}, nil
}

// start creates the row for a first-ever qualifying activity.
func (h *TouchStreakHandler) start(ctx context.Context, userID string, now time.Time) (*TouchStreakResult, error) {
	const op = "TouchStreak"

	s, err := streak.Start(userID, now)
	if err != nil {
		return nil, shared.WrapError("streak", op, shared.ErrInvalidInput, "invalid streak", err)
	}

	if err := h.streaks.Create(ctx, s); err != nil {
		// A concurrent first touch won the insert; the unique constraint on
		// user_id makes that loss harmless - today is already counted.
		if shared.IsAlreadyExists(err) {
			existing, getErr := h.streaks.GetByUser(ctx, userID)
			if getErr != nil {
				return nil, shared.WrapStorage("streak", op, getErr)
			}
			return &TouchStreakResult{
				UserID:        userID,
				Transition:    streak.TransitionNoop,
				CurrentStreak: existing.Current,
				LongestStreak: existing.Longest,
			}, nil
		}
		return nil, shared.WrapStorage("streak", op, err)
	}

	h.publish(shared.NewStreakChangedEvent(shared.EventStreakStarted, userID, s.Current, s.Longest))

	return &TouchStreakResult{
		UserID:        userID,
		Transition:    streak.TransitionStarted,
		CurrentStreak: s.Current,
		LongestStreak: s.Longest,
	}, nil
}

func (h *TouchStreakHandler) publish(event shared.Event) {
	if err := h.publisher.Publish(event); err != nil && h.log != nil {
		h.log.Warn("failed to publish streak event", logger.Err(err))
	}
}
