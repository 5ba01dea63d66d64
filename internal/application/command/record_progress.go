package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
	"github.com/prepdeck/prepdeck-backend/pkg/timeutil"
)

// RecordProgressCommand contains one study event for a (user, topic) pair:
// finishing a quiz question, a flashcard session, or a topic.
type RecordProgressCommand struct {
	// UserID is the stable identifier supplied by the external auth provider.
	UserID string

	// TopicID is the topic being studied.
	TopicID string

	// CompletionPercentage is the topic's new completion value in [0,100].
	// It overwrites the stored value; it is not merged or maxed.
	CompletionPercentage int

	// TimeSpentSeconds is the incremental time to add, not an absolute total.
	TimeSpentSeconds int
}

// Validate rejects invalid input before any store call.
func (c RecordProgressCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("record_progress: user_id is required")
	}
	if c.TopicID == "" {
		return errors.New("record_progress: topic_id is required")
	}
	if c.CompletionPercentage < 0 || c.CompletionPercentage > 100 {
		return fmt.Errorf("record_progress: completion_percentage %d out of range [0,100]", c.CompletionPercentage)
	}
	if c.TimeSpentSeconds < 0 {
		return fmt.Errorf("record_progress: time_spent %d cannot be negative", c.TimeSpentSeconds)
	}
	return nil
}

// RecordProgressResult contains the outcome of a recorded study event.
type RecordProgressResult struct {
	// Created is true when this was the first event for the (user, topic) pair.
	Created bool

	// Progress is the row after the update.
	Progress *progress.TopicProgress

	// Streak is the streak outcome of the chained touch.
	Streak *TouchStreakResult

	// Points is the outcome of the chained award.
	Points *AwardPointsResult
}

// RecordProgressHandler applies a study event to the progress ledger and runs
// the unconditional side effects: touch the streak, then award the flat
// progress bonus. The three writes hit three tables and are not wrapped in a
// store transaction; a per-user lock serializes same-user chains within this
// process so they cannot interleave.
type RecordProgressHandler struct {
	rows      progress.Repository
	touch     *TouchStreakHandler
	points    *AwardPointsHandler
	ids       IDGenerator
	clock     timeutil.Clock
	publisher shared.EventPublisher
	locks     *userLocks
	award     int
	log       *logger.Logger
}

// NewRecordProgressHandler creates a RecordProgressHandler.
func NewRecordProgressHandler(
	rows progress.Repository,
	touch *TouchStreakHandler,
	awardHandler *AwardPointsHandler,
	ids IDGenerator,
	clock timeutil.Clock,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RecordProgressHandler {
	if publisher == nil {
		publisher = shared.NoopPublisher{}
	}
	return &RecordProgressHandler{
		rows:      rows,
		touch:     touch,
		points:    awardHandler,
		ids:       ids,
		clock:     clock,
		publisher: publisher,
		locks:     newUserLocks(),
		award:     points.ProgressUpdateAward,
		log:       log,
	}
}

// SetAwardAmount overrides the per-event points award. Used when deployments
// configure a different amount; non-positive values keep the default.
func (h *RecordProgressHandler) SetAwardAmount(amount int) {
	if amount > 0 {
		h.award = amount
	}
}

// Handle records the study event. On success the streak has been touched and
// the flat bonus awarded; a failure in either side effect is returned after
// the progress write and leaves the progress row in place (no rollback - the
// chain is deliberately non-transactional).
func (h *RecordProgressHandler) Handle(ctx context.Context, cmd RecordProgressCommand) (*RecordProgressResult, error) {
	const op = "RecordProgress"

	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("progress", op, shared.ErrValidation, "invalid command", err)
	}

	release := h.locks.acquire(cmd.UserID)
	defer release()

	userID := progress.UserID(cmd.UserID)
	topicID := progress.TopicID(cmd.TopicID)
	now := h.clock.Now().UTC()

	row, err := h.rows.GetByUserAndTopic(ctx, userID, topicID)
	created := false
	switch {
	case err == nil:
		if applyErr := row.ApplyStudyEvent(cmd.CompletionPercentage, cmd.TimeSpentSeconds, now); applyErr != nil {
			return nil, shared.WrapError("progress", op, shared.ErrValidation, "invalid study event", applyErr)
		}
		if err := h.rows.Update(ctx, row); err != nil {
			return nil, shared.WrapStorage("progress", op, err)
		}
	case shared.IsNotFound(err):
		row, err = progress.NewTopicProgress(h.ids.NewID(), userID, topicID, cmd.CompletionPercentage, cmd.TimeSpentSeconds, now)
		if err != nil {
			return nil, shared.WrapError("progress", op, shared.ErrValidation, "invalid progress row", err)
		}
		if err := h.rows.Create(ctx, row); err != nil {
			return nil, shared.WrapStorage("progress", op, err)
		}
		created = true
	default:
		return nil, shared.WrapStorage("progress", op, err)
	}

	streakResult, err := h.touch.Handle(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	pointsResult, err := h.points.Handle(ctx, cmd.UserID, h.award, "progress_update")
	if err != nil {
		return nil, err
	}

	event := shared.NewProgressRecordedEvent(cmd.UserID, cmd.TopicID, row.CompletionPercentage, cmd.TimeSpentSeconds, row.IsCompleted())
	if err := h.publisher.Publish(event); err != nil && h.log != nil {
		h.log.Warn("failed to publish progress event", logger.Err(err))
	}

	if h.log != nil {
		h.log.Debug("progress recorded",
			logger.String("user_id", cmd.UserID),
			logger.String("topic_id", cmd.TopicID),
			logger.Int("completion", row.CompletionPercentage),
			logger.Bool("created", created),
			logger.String("streak_transition", streakResult.Transition.String()),
		)
	}

	return &RecordProgressResult{
		Created:  created,
		Progress: row,
		Streak:   streakResult,
		Points:   pointsResult,
	}, nil
}
