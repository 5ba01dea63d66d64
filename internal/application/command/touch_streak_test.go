package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/internal/domain/streak"
	"github.com/prepdeck/prepdeck-backend/pkg/timeutil"
)

func TestTouchStreak_FirstTouchStarts(t *testing.T) {
	repo := newFakeStreakRepo()
	pub := &capturePublisher{}
	h := NewTouchStreakHandler(repo, timeutil.FixedClock{T: testNow}, pub, nil)

	result, err := h.Handle(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, streak.TransitionStarted, result.Transition)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, result.LongestStreak)
	assert.Len(t, pub.ofType(shared.EventStreakStarted), 1)
}

func TestTouchStreak_SameDayIsNoop(t *testing.T) {
	repo := newFakeStreakRepo()
	pub := &capturePublisher{}
	h := NewTouchStreakHandler(repo, timeutil.FixedClock{T: testNow}, pub, nil)

	_, err := h.Handle(context.Background(), "user-1")
	assert.NoError(t, err)

	result, err := h.Handle(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, streak.TransitionNoop, result.Transition)
	assert.Equal(t, 1, result.CurrentStreak)

	// Only the start emitted an event; no-ops are silent.
	assert.Len(t, pub.events, 1)
}

func TestTouchStreak_NextDayExtends(t *testing.T) {
	repo := newFakeStreakRepo()
	pub := &capturePublisher{}

	day1 := NewTouchStreakHandler(repo, timeutil.FixedClock{T: testNow}, pub, nil)
	_, err := day1.Handle(context.Background(), "user-1")
	assert.NoError(t, err)

	day2 := NewTouchStreakHandler(repo, timeutil.FixedClock{T: testNow.Add(24 * time.Hour)}, pub, nil)
	result, err := day2.Handle(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, streak.TransitionExtended, result.Transition)
	assert.Equal(t, 2, result.CurrentStreak)
	assert.Equal(t, 2, result.LongestStreak)
	assert.Len(t, pub.ofType(shared.EventStreakExtended), 1)
}

func TestTouchStreak_GapResetsKeepsLongest(t *testing.T) {
	repo := newFakeStreakRepo()
	pub := &capturePublisher{}

	for i := 0; i < 3; i++ {
		h := NewTouchStreakHandler(repo, timeutil.FixedClock{T: testNow.Add(time.Duration(i) * 24 * time.Hour)}, pub, nil)
		_, err := h.Handle(context.Background(), "user-1")
		assert.NoError(t, err)
	}

	late := NewTouchStreakHandler(repo, timeutil.FixedClock{T: testNow.Add(10 * 24 * time.Hour)}, pub, nil)
	result, err := late.Handle(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, streak.TransitionReset, result.Transition)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 3, result.LongestStreak)
	assert.Len(t, pub.ofType(shared.EventStreakReset), 1)
}

func TestTouchStreak_EmptyUserID(t *testing.T) {
	h := NewTouchStreakHandler(newFakeStreakRepo(), timeutil.FixedClock{T: testNow}, nil, nil)

	_, err := h.Handle(context.Background(), "")
	assert.True(t, shared.IsValidation(err))
}

func TestTouchStreak_ConcurrentFirstTouchLosesInsert(t *testing.T) {
	// Another process wins the insert between our read and our create. The
	// unique constraint rejects us and the touch resolves to a no-op: today is
	// already counted.
	winner, _ := streak.Start("user-1", testNow)
	repo := &racingStreakRepo{winner: winner}

	h := NewTouchStreakHandler(repo, timeutil.FixedClock{T: testNow}, nil, nil)

	result, err := h.Handle(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, streak.TransitionNoop, result.Transition)
	assert.Equal(t, 1, result.CurrentStreak)
}

// racingStreakRepo misses the first read, rejects the insert as a duplicate,
// and serves the winner's row afterwards.
type racingStreakRepo struct {
	winner *streak.Streak
	reads  int
}

func (r *racingStreakRepo) GetByUser(context.Context, string) (*streak.Streak, error) {
	r.reads++
	if r.reads == 1 {
		return nil, notFoundErr("streak")
	}
	cp := *r.winner
	return &cp, nil
}

func (r *racingStreakRepo) Create(context.Context, *streak.Streak) error {
	return alreadyExistsErr("streak")
}

func (r *racingStreakRepo) Update(context.Context, *streak.Streak) error {
	return nil
}
