package postgres

import (
	"context"
	"fmt"

	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ResponseRepository implements progress.ResponseRepository for PostgreSQL.
type ResponseRepository struct {
	conn *Connection
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(conn *Connection) *ResponseRepository {
	return &ResponseRepository{conn: conn}
}

// Create appends a response row.
func (r *ResponseRepository) Create(ctx context.Context, resp *progress.Response) error {
	query := `
		INSERT INTO user_responses (id, user_id, question_id, is_correct, time_taken_seconds, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		resp.ID,
		resp.UserID.String(),
		resp.QuestionID,
		resp.IsCorrect,
		resp.TimeTakenSeconds,
		resp.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

// ListByUser returns every response the user has recorded, oldest first.
func (r *ResponseRepository) ListByUser(ctx context.Context, userID progress.UserID) ([]*progress.Response, error) {
	query := `
		SELECT id, user_id, question_id, is_correct, time_taken_seconds, answered_at
		FROM user_responses
		WHERE user_id = $1
		ORDER BY answered_at ASC
	`

	rows, err := r.conn.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var result []*progress.Response
	for rows.Next() {
		var resp progress.Response
		var uid string
		if err := rows.Scan(&resp.ID, &uid, &resp.QuestionID, &resp.IsCorrect, &resp.TimeTakenSeconds, &resp.AnsweredAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		resp.UserID = progress.UserID(uid)
		result = append(result, &resp)
	}
	return result, rows.Err()
}

// CountByUser returns the total and correct response counts in one query.
func (r *ResponseRepository) CountByUser(ctx context.Context, userID progress.UserID) (total int, correct int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_correct)
		FROM user_responses
		WHERE user_id = $1
	`

	if err := r.conn.QueryRow(ctx, query, userID.String()).Scan(&total, &correct); err != nil {
		return 0, 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return total, correct, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository implements progress.SessionRepository for PostgreSQL.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// Create appends a practice session row.
func (r *SessionRepository) Create(ctx context.Context, s *progress.PracticeSession) error {
	query := `
		INSERT INTO user_practice_sessions (
			id, user_id, subject_id, topic_id, questions_attempted,
			questions_correct, duration_seconds, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.UserID.String(),
		s.SubjectID,
		s.TopicID.String(),
		s.QuestionsAttempted,
		s.QuestionsCorrect,
		s.DurationSeconds,
		s.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create practice session: %w", err)
	}
	return nil
}

// ListByUser returns the newest sessions first, at most limit rows.
func (r *SessionRepository) ListByUser(ctx context.Context, userID progress.UserID, limit int) ([]*progress.PracticeSession, error) {
	query := `
		SELECT id, user_id, subject_id, topic_id, questions_attempted,
		       questions_correct, duration_seconds, recorded_at
		FROM user_practice_sessions
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice sessions: %w", err)
	}
	defer rows.Close()

	var result []*progress.PracticeSession
	for rows.Next() {
		var s progress.PracticeSession
		var uid, topicID string
		err := rows.Scan(
			&s.ID,
			&uid,
			&s.SubjectID,
			&topicID,
			&s.QuestionsAttempted,
			&s.QuestionsCorrect,
			&s.DurationSeconds,
			&s.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan practice session: %w", err)
		}
		s.UserID = progress.UserID(uid)
		s.TopicID = progress.TopicID(topicID)
		result = append(result, &s)
	}
	return result, rows.Err()
}
