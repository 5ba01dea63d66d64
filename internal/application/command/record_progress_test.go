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

type progressFixture struct {
	handler *RecordProgressHandler
	rows    *fakeProgressRepo
	streaks *fakeStreakRepo
	points  *fakePointsRepo
	pub     *capturePublisher
}

func newProgressFixture(clock timeutil.Clock) *progressFixture {
	rows := newFakeProgressRepo()
	streaks := newFakeStreakRepo()
	balances := newFakePointsRepo()
	pub := &capturePublisher{}

	touch := NewTouchStreakHandler(streaks, clock, pub, nil)
	award := NewAwardPointsHandler(balances, clock, pub, nil)

	return &progressFixture{
		handler: NewRecordProgressHandler(rows, touch, award, &seqIDs{}, clock, pub, nil),
		rows:    rows,
		streaks: streaks,
		points:  balances,
		pub:     pub,
	}
}

func TestRecordProgress_FirstEventCreatesRow(t *testing.T) {
	f := newProgressFixture(timeutil.FixedClock{T: testNow})

	result, err := f.handler.Handle(context.Background(), RecordProgressCommand{
		UserID:               "user-1",
		TopicID:              "topic-algebra",
		CompletionPercentage: 50,
		TimeSpentSeconds:     30,
	})
	assert.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, 50, result.Progress.CompletionPercentage)
	assert.Equal(t, 30, result.Progress.TimeSpentSeconds)

	assert.Equal(t, streak.TransitionStarted, result.Streak.Transition)
	assert.Equal(t, 1, result.Streak.CurrentStreak)

	assert.Equal(t, 10, result.Points.Amount)
	assert.Equal(t, 10, result.Points.NewTotal)

	assert.Len(t, f.pub.ofType(shared.EventProgressRecorded), 1)
}

func TestRecordProgress_SecondEventUpdatesRow(t *testing.T) {
	f := newProgressFixture(timeutil.FixedClock{T: testNow})
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, RecordProgressCommand{
		UserID: "user-1", TopicID: "topic-algebra", CompletionPercentage: 50, TimeSpentSeconds: 30,
	})
	assert.NoError(t, err)

	result, err := f.handler.Handle(ctx, RecordProgressCommand{
		UserID: "user-1", TopicID: "topic-algebra", CompletionPercentage: 100, TimeSpentSeconds: 20,
	})
	assert.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, 100, result.Progress.CompletionPercentage, "percentage is overwritten")
	assert.Equal(t, 50, result.Progress.TimeSpentSeconds, "time accumulates")
	assert.True(t, result.Progress.IsCompleted())

	// Same day: streak stays at 1, both events still award the flat bonus.
	assert.Equal(t, streak.TransitionNoop, result.Streak.Transition)
	assert.Equal(t, 20, result.Points.NewTotal)
}

func TestRecordProgress_SeparateTopicsSeparateRows(t *testing.T) {
	f := newProgressFixture(timeutil.FixedClock{T: testNow})
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, RecordProgressCommand{
		UserID: "user-1", TopicID: "topic-algebra", CompletionPercentage: 50, TimeSpentSeconds: 30,
	})
	assert.NoError(t, err)

	result, err := f.handler.Handle(ctx, RecordProgressCommand{
		UserID: "user-1", TopicID: "topic-geometry", CompletionPercentage: 10, TimeSpentSeconds: 5,
	})
	assert.NoError(t, err)
	assert.True(t, result.Created)
	assert.Len(t, f.rows.rows, 2)
}

func TestRecordProgress_NextDayExtendsStreak(t *testing.T) {
	f := newProgressFixture(timeutil.FixedClock{T: testNow})
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, RecordProgressCommand{
		UserID: "user-1", TopicID: "topic-algebra", CompletionPercentage: 50, TimeSpentSeconds: 30,
	})
	assert.NoError(t, err)

	// Same stores, next calendar day.
	clock := timeutil.FixedClock{T: testNow.Add(24 * time.Hour)}
	touch := NewTouchStreakHandler(f.streaks, clock, nil, nil)
	award := NewAwardPointsHandler(f.points, clock, nil, nil)
	h := NewRecordProgressHandler(f.rows, touch, award, &seqIDs{}, clock, nil, nil)

	result, err := h.Handle(ctx, RecordProgressCommand{
		UserID: "user-1", TopicID: "topic-algebra", CompletionPercentage: 70, TimeSpentSeconds: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, streak.TransitionExtended, result.Streak.Transition)
	assert.Equal(t, 2, result.Streak.CurrentStreak)
}

func TestRecordProgress_Validation(t *testing.T) {
	f := newProgressFixture(timeutil.FixedClock{T: testNow})
	ctx := context.Background()

	cases := []RecordProgressCommand{
		{UserID: "", TopicID: "topic-1", CompletionPercentage: 50},
		{UserID: "user-1", TopicID: "", CompletionPercentage: 50},
		{UserID: "user-1", TopicID: "topic-1", CompletionPercentage: 101},
		{UserID: "user-1", TopicID: "topic-1", CompletionPercentage: -1},
		{UserID: "user-1", TopicID: "topic-1", CompletionPercentage: 50, TimeSpentSeconds: -1},
	}
	for _, cmd := range cases {
		_, err := f.handler.Handle(ctx, cmd)
		assert.True(t, shared.IsValidation(err), "command %+v should fail validation", cmd)
	}

	assert.Empty(t, f.rows.rows)
	assert.Empty(t, f.streaks.rows, "no side effects on rejected commands")
	assert.Empty(t, f.points.rows)
}

func TestRecordProgress_ConfiguredAwardAmount(t *testing.T) {
	f := newProgressFixture(timeutil.FixedClock{T: testNow})
	f.handler.SetAwardAmount(25)

	result, err := f.handler.Handle(context.Background(), RecordProgressCommand{
		UserID: "user-1", TopicID: "topic-1", CompletionPercentage: 10, TimeSpentSeconds: 5,
	})
	assert.NoError(t, err)
	assert.Equal(t, 25, result.Points.Amount)
}

func TestRecordProgress_NonPositiveAwardOverrideIgnored(t *testing.T) {
	f := newProgressFixture(timeutil.FixedClock{T: testNow})
	f.handler.SetAwardAmount(0)
	f.handler.SetAwardAmount(-5)

	result, err := f.handler.Handle(context.Background(), RecordProgressCommand{
		UserID: "user-1", TopicID: "topic-1", CompletionPercentage: 10, TimeSpentSeconds: 5,
	})
	assert.NoError(t, err)
	assert.Equal(t, 10, result.Points.Amount)
}
