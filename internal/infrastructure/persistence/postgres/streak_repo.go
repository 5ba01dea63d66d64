package postgres

import (
	"context"
	"fmt"

	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/internal/domain/streak"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StreakRepository implements streak.Repository for PostgreSQL.
type StreakRepository struct {
	conn *Connection
}

// NewStreakRepository creates a new StreakRepository.
func NewStreakRepository(conn *Connection) *StreakRepository {
	return &StreakRepository{conn: conn}
}

// GetByUser returns the streak row for a user.
func (r *StreakRepository) GetByUser(ctx context.Context, userID string) (*streak.Streak, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_activity_date, updated_at
		FROM user_streaks
		WHERE user_id = $1
	`

	var s streak.Streak
	err := r.conn.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.Current,
		&s.Longest,
		&s.LastActivityDate,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("streak", "GetByUser", shared.ErrNotFound, "streak not found")
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	// Stored as timestamptz; the domain works in midnight-UTC days.
	s.LastActivityDate = s.LastActivityDate.UTC()
	return &s, nil
}

// Create inserts the first streak row for a user.
func (r *StreakRepository) Create(ctx context.Context, s *streak.Streak) error {
	query := `
		INSERT INTO user_streaks (user_id, current_streak, longest_streak, last_activity_date, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query, s.UserID, s.Current, s.Longest, s.LastActivityDate, s.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("streak", "Create", shared.ErrAlreadyExists, "streak already exists")
		}
		return fmt.Errorf("failed to create streak: %w", err)
	}
	return nil
}

// Update overwrites an existing streak row.
func (r *StreakRepository) Update(ctx context.Context, s *streak.Streak) error {
	query := `
		UPDATE user_streaks
		SET current_streak = $1, longest_streak = $2, last_activity_date = $3, updated_at = $4
		WHERE user_id = $5
	`

	tag, err := r.conn.Exec(ctx, query, s.Current, s.Longest, s.LastActivityDate, s.UpdatedAt, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("streak", "Update", shared.ErrNotFound, "streak not found")
	}
	return nil
}
