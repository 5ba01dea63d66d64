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

// RecordSessionCommand summarizes one finished practice run.
type RecordSessionCommand struct {
	UserID             string
	SubjectID          string
	TopicID            string
	QuestionsAttempted int
	QuestionsCorrect   int
	DurationSeconds    int
}

// Validate rejects invalid input before any store call.
func (c RecordSessionCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("record_session: user_id is required")
	}
	if c.TopicID == "" {
		return errors.New("record_session: topic_id is required")
	}
	if c.QuestionsAttempted < 0 || c.QuestionsCorrect < 0 {
		return errors.New("record_session: question counts cannot be negative")
	}
	if c.QuestionsCorrect > c.QuestionsAttempted {
		return fmt.Errorf("record_session: correct %d exceeds attempted %d", c.QuestionsCorrect, c.QuestionsAttempted)
	}
	if c.DurationSeconds < 0 {
		return errors.New("record_session: duration cannot be negative")
	}
	return nil
}

// RecordSessionResult contains the outcome of a recorded practice session.
type RecordSessionResult struct {
	Session *progress.PracticeSession
	Streak  *TouchStreakResult

	// Points is nil when the session had no correct answers (zero awards are
	// skipped, not recorded as zero-point rows).
	Points *AwardPointsResult
}

// RecordSessionHandler persists a practice session summary, touches the
// streak, and awards the per-correct-answer bonus.
type RecordSessionHandler struct {
	sessions   progress.SessionRepository
	touch      *TouchStreakHandler
	award      *AwardPointsHandler
	ids        IDGenerator
	clock      timeutil.Clock
	publisher  shared.EventPublisher
	locks      *userLocks
	perCorrect int
	log        *logger.Logger
}

// NewRecordSessionHandler creates a RecordSessionHandler.
func NewRecordSessionHandler(
	sessions progress.SessionRepository,
	touch *TouchStreakHandler,
	award *AwardPointsHandler,
	ids IDGenerator,
	clock timeutil.Clock,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RecordSessionHandler {
	if publisher == nil {
		publisher = shared.NoopPublisher{}
	}
	return &RecordSessionHandler{
		sessions:   sessions,
		touch:      touch,
		award:      award,
		ids:        ids,
		clock:      clock,
		publisher:  publisher,
		locks:      newUserLocks(),
		perCorrect: points.PerCorrectAnswerAward,
		log:        log,
	}
}

// SetPerCorrectAward overrides the per-correct-answer bonus. Non-positive
// values keep the default.
func (h *RecordSessionHandler) SetPerCorrectAward(amount int) {
	if amount > 0 {
		h.perCorrect = amount
	}
}

// Handle records the session and runs the streak/points side effects.
func (h *RecordSessionHandler) Handle(ctx context.Context, cmd RecordSessionCommand) (*RecordSessionResult, error) {
	const op = "RecordSession"

	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("progress", op, shared.ErrValidation, "invalid command", err)
	}

	release := h.locks.acquire(cmd.UserID)
	defer release()

	s, err := progress.NewPracticeSession(
		h.ids.NewID(),
		progress.UserID(cmd.UserID),
		cmd.SubjectID,
		progress.TopicID(cmd.TopicID),
		cmd.QuestionsAttempted,
		cmd.QuestionsCorrect,
		cmd.DurationSeconds,
		h.clock.Now().UTC(),
	)
	if err != nil {
		return nil, shared.WrapError("progress", op, shared.ErrValidation, "invalid session", err)
	}

	if err := h.sessions.Create(ctx, s); err != nil {
		return nil, shared.WrapStorage("progress", op, err)
	}

	streakResult, err := h.touch.Handle(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	var pointsResult *AwardPointsResult
	if bonus := cmd.QuestionsCorrect * h.perCorrect; bonus > 0 {
		pointsResult, err = h.award.Handle(ctx, cmd.UserID, bonus, "practice_session")
		if err != nil {
			return nil, err
		}
	}

	event := shared.NewSessionRecordedEvent(cmd.UserID, cmd.TopicID, cmd.QuestionsAttempted, cmd.QuestionsCorrect)
	if err := h.publisher.Publish(event); err != nil && h.log != nil {
		h.log.Warn("failed to publish session event", logger.Err(err))
	}

	return &RecordSessionResult{
		Session: s,
		Streak:  streakResult,
		Points:  pointsResult,
	}, nil
}
