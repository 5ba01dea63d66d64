package postgres

import (
	"context"
	"fmt"

	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progress.Repository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

const progressColumns = `id, user_id, topic_id, completion_percentage, time_spent_seconds, last_studied, created_at, updated_at`

// GetByUserAndTopic returns the row for one (user, topic) pair.
func (r *ProgressRepository) GetByUserAndTopic(ctx context.Context, userID progress.UserID, topicID progress.TopicID) (*progress.TopicProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_progress WHERE user_id = $1 AND topic_id = $2`, progressColumns)

	row := r.conn.QueryRow(ctx, query, userID.String(), topicID.String())
	return r.scanProgress(row)
}

// Create inserts a new progress row.
func (r *ProgressRepository) Create(ctx context.Context, p *progress.TopicProgress) error {
	query := `
		INSERT INTO user_progress (
			id, user_id, topic_id, completion_percentage, time_spent_seconds,
			last_studied, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		p.UserID.String(),
		p.TopicID.String(),
		p.CompletionPercentage,
		p.TimeSpentSeconds,
		p.LastStudied,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("progress", "Create", shared.ErrAlreadyExists, "progress row already exists")
		}
		return fmt.Errorf("failed to create progress row: %w", err)
	}
	return nil
}

// Update overwrites an existing progress row.
func (r *ProgressRepository) Update(ctx context.Context, p *progress.TopicProgress) error {
	query := `
		UPDATE user_progress
		SET completion_percentage = $1, time_spent_seconds = $2, last_studied = $3, updated_at = $4
		WHERE id = $5
	`

	tag, err := r.conn.Exec(ctx, query,
		p.CompletionPercentage,
		p.TimeSpentSeconds,
		p.LastStudied,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("progress", "Update", shared.ErrNotFound, "progress row not found")
	}
	return nil
}

// ListByUser returns every progress row for a user.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID progress.UserID) ([]*progress.TopicProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_progress WHERE user_id = $1 ORDER BY updated_at DESC`, progressColumns)

	rows, err := r.conn.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list progress rows: %w", err)
	}
	defer rows.Close()

	var result []*progress.TopicProgress
	for rows.Next() {
		p, err := r.scanProgress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// CountCompleted returns how many topics the user has fully completed.
func (r *ProgressRepository) CountCompleted(ctx context.Context, userID progress.UserID) (int, error) {
	query := `SELECT COUNT(*) FROM user_progress WHERE user_id = $1 AND completion_percentage = 100`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed topics: %w", err)
	}
	return count, nil
}

// ListUserIDs returns every user with ledger activity. Used by the worker's
// catch-up achievement sweep.
func (r *ProgressRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT user_id FROM user_progress
		UNION
		SELECT user_id FROM user_responses
		UNION
		SELECT user_id FROM user_practice_sessions
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ProgressRepository) scanProgress(row pgx.Row) (*progress.TopicProgress, error) {
	var p progress.TopicProgress
	var userID, topicID string

	err := row.Scan(
		&p.ID,
		&userID,
		&topicID,
		&p.CompletionPercentage,
		&p.TimeSpentSeconds,
		&p.LastStudied,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("progress", "Get", shared.ErrNotFound, "progress row not found")
		}
		return nil, fmt.Errorf("failed to scan progress row: %w", err)
	}

	p.UserID = progress.UserID(userID)
	p.TopicID = progress.TopicID(topicID)
	return &p, nil
}
