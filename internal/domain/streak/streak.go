// Package streak contains the consecutive-day activity streak state machine.
// Streak correctness depends entirely on wall-clock calendar dates in UTC,
// never on elapsed seconds. This is a pure domain layer with zero external
// dependencies.
package streak

import (
	"errors"
	"time"

	"github.com/prepdeck/prepdeck-backend/pkg/timeutil"
)

// Domain errors for the streak package.
var (
	ErrInvalidUserID = errors.New("streak: invalid user ID")
)

// Transition describes what a Touch did to the streak.
type Transition int

const (
	// TransitionStarted - first qualifying activity ever, streak created at 1.
	TransitionStarted Transition = iota

	// TransitionNoop - already touched today; calling again the same calendar
	// day never inflates the streak.
	TransitionNoop

	// TransitionExtended - last activity was exactly yesterday, streak grew.
	TransitionExtended

	// TransitionReset - last activity was two or more days ago, streak
	// restarted at 1. The longest streak is kept.
	TransitionReset
)

// String returns a readable name for the transition.
func (t Transition) String() string {
	switch t {
	case TransitionStarted:
		return "started"
	case TransitionNoop:
		return "noop"
	case TransitionExtended:
		return "extended"
	case TransitionReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Streak is the one-row-per-user streak ledger. Invariant after any update:
// Longest == max(Longest, Current), Current >= 1 once the row exists.
type Streak struct {
	UserID           string
	Current          int
	Longest          int
	LastActivityDate time.Time // date-only, midnight UTC
	UpdatedAt        time.Time
}

// Start creates the streak row for a user's first qualifying activity.
func Start(userID string, today time.Time) (*Streak, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	day := timeutil.StartOfDay(today)
	return &Streak{
		UserID:           userID,
		Current:          1,
		Longest:          1,
		LastActivityDate: day,
		UpdatedAt:        today.UTC(),
	}, nil
}

// Touch registers a qualifying activity on the given day and advances the
// state machine. The states are derived from the stored date delta:
//
//	delta == 0  -> active today, no-op
//	delta == 1  -> extend pending, increment
//	delta >= 2  -> broken, reset to 1
//
// Negative deltas (clock skew, a backdated touch) are treated as already
// counted rather than rewinding the ledger.
func (s *Streak) Touch(today time.Time) Transition {
	day := timeutil.StartOfDay(today)
	delta := timeutil.DaysBetween(s.LastActivityDate, day)

	switch {
	case delta <= 0:
		return TransitionNoop
	case delta == 1:
		s.Current++
		if s.Current > s.Longest {
			s.Longest = s.Current
		}
		s.LastActivityDate = day
		s.UpdatedAt = today.UTC()
		return TransitionExtended
	default:
		s.Current = 1
		s.LastActivityDate = day
		s.UpdatedAt = today.UTC()
		return TransitionReset
	}
}

// IsActiveOn reports whether the streak was touched on the given day.
func (s *Streak) IsActiveOn(day time.Time) bool {
	return timeutil.SameDay(s.LastActivityDate, day)
}
