package query

import (
	"context"

	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

// GetProgressHandler lists a user's per-topic progress rows.
type GetProgressHandler struct {
	rows progress.Repository
}

// NewGetProgressHandler creates a GetProgressHandler.
func NewGetProgressHandler(rows progress.Repository) *GetProgressHandler {
	return &GetProgressHandler{rows: rows}
}

// Handle returns every progress row the user has. A user with no activity
// gets an empty slice.
func (h *GetProgressHandler) Handle(ctx context.Context, userID string) ([]*progress.TopicProgress, error) {
	const op = "GetProgress"

	if userID == "" {
		return nil, shared.NewDomainError("progress", op, shared.ErrEmptyValue, "user ID is required")
	}

	rows, err := h.rows.ListByUser(ctx, progress.UserID(userID))
	if err != nil {
		return nil, shared.WrapStorage("progress", op, err)
	}
	if rows == nil {
		rows = []*progress.TopicProgress{}
	}
	return rows, nil
}

// GetSessionsHandler lists a user's recent practice sessions.
type GetSessionsHandler struct {
	sessions progress.SessionRepository
}

// NewGetSessionsHandler creates a GetSessionsHandler.
func NewGetSessionsHandler(sessions progress.SessionRepository) *GetSessionsHandler {
	return &GetSessionsHandler{sessions: sessions}
}

// DefaultSessionLimit bounds the history returned when the caller does not
// ask for a specific window.
const DefaultSessionLimit = 20

// Handle returns the newest sessions first, at most limit rows.
func (h *GetSessionsHandler) Handle(ctx context.Context, userID string, limit int) ([]*progress.PracticeSession, error) {
	const op = "GetSessions"

	if userID == "" {
		return nil, shared.NewDomainError("progress", op, shared.ErrEmptyValue, "user ID is required")
	}
	if limit <= 0 {
		limit = DefaultSessionLimit
	}

	sessions, err := h.sessions.ListByUser(ctx, progress.UserID(userID), limit)
	if err != nil {
		return nil, shared.WrapStorage("progress", op, err)
	}
	if sessions == nil {
		sessions = []*progress.PracticeSession{}
	}
	return sessions, nil
}
