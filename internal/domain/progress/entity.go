// Package progress contains the domain model for per-topic study progress,
// answered-question responses, and derived analytics. This is a pure domain
// layer with zero external dependencies.
package progress

import (
	"errors"
	"time"
)

// Domain errors for the progress package.
var (
	ErrInvalidUserID      = errors.New("progress: invalid user ID")
	ErrInvalidTopicID     = errors.New("progress: invalid topic ID")
	ErrInvalidQuestionID  = errors.New("progress: invalid question ID")
	ErrPercentOutOfRange  = errors.New("progress: completion percentage must be in [0,100]")
	ErrNegativeTimeSpent  = errors.New("progress: time spent cannot be negative")
	ErrNegativeTimeTaken  = errors.New("progress: time taken cannot be negative")
	ErrNegativeAttempted  = errors.New("progress: attempted count cannot be negative")
	ErrCorrectExceedsTotal = errors.New("progress: correct count cannot exceed attempted count")
)

// UserID identifies a user. Identity itself is owned by the external auth
// provider; the ledger only requires a stable non-empty identifier.
type UserID string

// IsValid checks that the user ID is non-empty.
func (u UserID) IsValid() bool {
	return u != ""
}

// String returns the string representation of UserID.
func (u UserID) String() string {
	return string(u)
}

// TopicID identifies a study topic.
type TopicID string

// IsValid checks that the topic ID is non-empty.
func (t TopicID) IsValid() bool {
	return t != ""
}

// String returns the string representation of TopicID.
func (t TopicID) String() string {
	return string(t)
}

// CompletedPercentage is the completion value that marks a topic as done.
const CompletedPercentage = 100

// TopicProgress is the ledger row for one (user, topic) pair. Created on the
// first study event for a topic and updated on every subsequent one; never
// deleted in normal operation.
type TopicProgress struct {
	ID                   string
	UserID               UserID
	TopicID              TopicID
	CompletionPercentage int
	TimeSpentSeconds     int // cumulative
	LastStudied          time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewTopicProgress creates the first progress row for a (user, topic) pair.
func NewTopicProgress(id string, userID UserID, topicID TopicID, completionPercentage, timeSpentSeconds int, now time.Time) (*TopicProgress, error) {
	if id == "" {
		return nil, errors.New("progress: invalid progress ID")
	}
	if !userID.IsValid() {
		return nil, ErrInvalidUserID
	}
	if !topicID.IsValid() {
		return nil, ErrInvalidTopicID
	}
	if completionPercentage < 0 || completionPercentage > 100 {
		return nil, ErrPercentOutOfRange
	}
	if timeSpentSeconds < 0 {
		return nil, ErrNegativeTimeSpent
	}

	return &TopicProgress{
		ID:                   id,
		UserID:               userID,
		TopicID:              topicID,
		CompletionPercentage: completionPercentage,
		TimeSpentSeconds:     timeSpentSeconds,
		LastStudied:          now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// ApplyStudyEvent records a new study event against an existing row. The
// completion percentage is overwritten, not maxed: the client reports the
// topic's current value and the ledger records it, so a stale client can
// regress it. Time spent accumulates.
func (p *TopicProgress) ApplyStudyEvent(completionPercentage, timeSpentDeltaSeconds int, now time.Time) error {
	if completionPercentage < 0 || completionPercentage > 100 {
		return ErrPercentOutOfRange
	}
	if timeSpentDeltaSeconds < 0 {
		return ErrNegativeTimeSpent
	}

	p.CompletionPercentage = completionPercentage
	p.TimeSpentSeconds += timeSpentDeltaSeconds
	p.LastStudied = now
	p.UpdatedAt = now
	return nil
}

// IsCompleted reports whether the topic has reached full completion.
func (p *TopicProgress) IsCompleted() bool {
	return p.CompletionPercentage >= CompletedPercentage
}

// Response is one answered question or flashcard. Rows are append-only and
// feed the aggregate statistics consumed by analytics and achievements.
type Response struct {
	ID               string
	UserID           UserID
	QuestionID       string
	IsCorrect        bool
	TimeTakenSeconds int
	AnsweredAt       time.Time
}

// NewResponse creates a response record.
func NewResponse(id string, userID UserID, questionID string, isCorrect bool, timeTakenSeconds int, now time.Time) (*Response, error) {
	if id == "" {
		return nil, errors.New("progress: invalid response ID")
	}
	if !userID.IsValid() {
		return nil, ErrInvalidUserID
	}
	if questionID == "" {
		return nil, ErrInvalidQuestionID
	}
	if timeTakenSeconds < 0 {
		return nil, ErrNegativeTimeTaken
	}

	return &Response{
		ID:               id,
		UserID:           userID,
		QuestionID:       questionID,
		IsCorrect:        isCorrect,
		TimeTakenSeconds: timeTakenSeconds,
		AnsweredAt:       now,
	}, nil
}

// PracticeSession summarizes one finished practice run (a batch of quiz
// questions or a flashcard session) for a topic.
type PracticeSession struct {
	ID                 string
	UserID             UserID
	SubjectID          string
	TopicID            TopicID
	QuestionsAttempted int
	QuestionsCorrect   int
	DurationSeconds    int
	CompletedAt        time.Time
}

// NewPracticeSession creates a practice session record.
func NewPracticeSession(id string, userID UserID, subjectID string, topicID TopicID, attempted, correct, durationSeconds int, now time.Time) (*PracticeSession, error) {
	if id == "" {
		return nil, errors.New("progress: invalid session ID")
	}
	if !userID.IsValid() {
		return nil, ErrInvalidUserID
	}
	if !topicID.IsValid() {
		return nil, ErrInvalidTopicID
	}
	if attempted < 0 || correct < 0 {
		return nil, ErrNegativeAttempted
	}
	if correct > attempted {
		return nil, ErrCorrectExceedsTotal
	}
	if durationSeconds < 0 {
		return nil, ErrNegativeTimeSpent
	}

	return &PracticeSession{
		ID:                 id,
		UserID:             userID,
		SubjectID:          subjectID,
		TopicID:            topicID,
		QuestionsAttempted: attempted,
		QuestionsCorrect:   correct,
		DurationSeconds:    durationSeconds,
		CompletedAt:        now,
	}, nil
}
