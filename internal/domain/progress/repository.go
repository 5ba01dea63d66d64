package progress

import "context"

// Repository defines persistence for per-topic progress rows. Implementations
// return shared.ErrNotFound (wrapped) when a row is legitimately absent;
// callers treat that as the valid initial state for a (user, topic) pair.
type Repository interface {
	// GetByUserAndTopic returns the progress row for one (user, topic) pair.
	GetByUserAndTopic(ctx context.Context, userID UserID, topicID TopicID) (*TopicProgress, error)

	// Create inserts the first progress row for a (user, topic) pair.
	Create(ctx context.Context, p *TopicProgress) error

	// Update overwrites an existing progress row.
	Update(ctx context.Context, p *TopicProgress) error

	// ListByUser returns all progress rows for a user.
	ListByUser(ctx context.Context, userID UserID) ([]*TopicProgress, error)

	// CountCompleted returns the number of topics the user has fully completed.
	CountCompleted(ctx context.Context, userID UserID) (int, error)
}

// ResponseRepository defines persistence for answered-question rows.
// The table is append-only.
type ResponseRepository interface {
	// Create inserts a response row.
	Create(ctx context.Context, r *Response) error

	// ListByUser returns all responses for a user.
	ListByUser(ctx context.Context, userID UserID) ([]*Response, error)

	// CountByUser returns total and correct response counts for a user.
	CountByUser(ctx context.Context, userID UserID) (total, correct int, err error)
}

// SessionRepository defines persistence for practice session rows.
type SessionRepository interface {
	// Create inserts a practice session row.
	Create(ctx context.Context, s *PracticeSession) error

	// ListByUser returns the most recent sessions for a user, newest first.
	ListByUser(ctx context.Context, userID UserID, limit int) ([]*PracticeSession, error)
}
