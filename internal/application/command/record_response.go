package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
	"github.com/prepdeck/prepdeck-backend/pkg/timeutil"
)

// RecordResponseCommand contains one answered question or flashcard.
type RecordResponseCommand struct {
	UserID           string
	QuestionID       string
	IsCorrect        bool
	TimeTakenSeconds int
}

// Validate rejects invalid input before any store call.
func (c RecordResponseCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("record_response: user_id is required")
	}
	if c.QuestionID == "" {
		return errors.New("record_response: question_id is required")
	}
	if c.TimeTakenSeconds < 0 {
		return fmt.Errorf("record_response: time_taken %d cannot be negative", c.TimeTakenSeconds)
	}
	return nil
}

// RecordResponseHandler appends a response row. Responses are the raw events
// behind the analytics snapshot and the achievement statistics; the table is
// append-only and rows are never edited.
type RecordResponseHandler struct {
	responses progress.ResponseRepository
	ids       IDGenerator
	clock     timeutil.Clock
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewRecordResponseHandler creates a RecordResponseHandler.
func NewRecordResponseHandler(responses progress.ResponseRepository, ids IDGenerator, clock timeutil.Clock, publisher shared.EventPublisher, log *logger.Logger) *RecordResponseHandler {
	if publisher == nil {
		publisher = shared.NoopPublisher{}
	}
	return &RecordResponseHandler{
		responses: responses,
		ids:       ids,
		clock:     clock,
		publisher: publisher,
		log:       log,
	}
}

// Handle appends the response row.
func (h *RecordResponseHandler) Handle(ctx context.Context, cmd RecordResponseCommand) (*progress.Response, error) {
	const op = "RecordResponse"

	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("progress", op, shared.ErrValidation, "invalid command", err)
	}

	r, err := progress.NewResponse(h.ids.NewID(), progress.UserID(cmd.UserID), cmd.QuestionID, cmd.IsCorrect, cmd.TimeTakenSeconds, h.clock.Now().UTC())
	if err != nil {
		return nil, shared.WrapError("progress", op, shared.ErrValidation, "invalid response", err)
	}

	if err := h.responses.Create(ctx, r); err != nil {
		return nil, shared.WrapStorage("progress", op, err)
	}

	event := shared.NewResponseRecordedEvent(cmd.UserID, cmd.QuestionID, cmd.IsCorrect)
	if err := h.publisher.Publish(event); err != nil && h.log != nil {
		h.log.Warn("failed to publish response event", logger.Err(err))
	}

	return r, nil
}
