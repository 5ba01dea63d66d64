package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

func TestGetProgress(t *testing.T) {
	rows := &fakeProgressRepo{}
	ctx := context.Background()

	p1, _ := progress.NewTopicProgress("p-1", "user-1", "topic-1", 50, 100, testNow)
	p2, _ := progress.NewTopicProgress("p-2", "user-1", "topic-2", 80, 200, testNow)
	other, _ := progress.NewTopicProgress("p-3", "user-2", "topic-1", 10, 10, testNow)
	assert.NoError(t, rows.Create(ctx, p1))
	assert.NoError(t, rows.Create(ctx, p2))
	assert.NoError(t, rows.Create(ctx, other))

	h := NewGetProgressHandler(rows)
	result, err := h.Handle(ctx, "user-1")
	assert.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestGetProgress_NoRows(t *testing.T) {
	h := NewGetProgressHandler(&fakeProgressRepo{})

	result, err := h.Handle(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.NotNil(t, result, "empty slice, not nil, so the API renders []")
	assert.Empty(t, result)
}

func TestGetProgress_EmptyUserID(t *testing.T) {
	h := NewGetProgressHandler(&fakeProgressRepo{})

	_, err := h.Handle(context.Background(), "")
	assert.True(t, shared.IsValidation(err))
}

func TestGetSessions(t *testing.T) {
	sessions := &fakeSessionRepo{}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s, err := progress.NewPracticeSession("s", "user-1", "subj-1", "topic-1", 10, 5, 60, testNow)
		assert.NoError(t, err)
		assert.NoError(t, sessions.Create(ctx, s))
	}

	h := NewGetSessionsHandler(sessions)

	result, err := h.Handle(ctx, "user-1", 3)
	assert.NoError(t, err)
	assert.Len(t, result, 3)

	all, err := h.Handle(ctx, "user-1", 0)
	assert.NoError(t, err)
	assert.Len(t, all, 5, "zero limit falls back to the default window")
}

func TestGetSessions_EmptyUserID(t *testing.T) {
	h := NewGetSessionsHandler(&fakeSessionRepo{})

	_, err := h.Handle(context.Background(), "", 10)
	assert.True(t, shared.IsValidation(err))
}
