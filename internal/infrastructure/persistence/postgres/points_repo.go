package postgres

import (
	"context"
	"fmt"

	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// POINTS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PointsRepository implements points.Repository for PostgreSQL.
type PointsRepository struct {
	conn *Connection
}

// NewPointsRepository creates a new PointsRepository.
func NewPointsRepository(conn *Connection) *PointsRepository {
	return &PointsRepository{conn: conn}
}

// GetByUser returns the balance row for a user.
func (r *PointsRepository) GetByUser(ctx context.Context, userID string) (*points.Balance, error) {
	query := `SELECT user_id, total_points, updated_at FROM user_points WHERE user_id = $1`

	var b points.Balance
	err := r.conn.QueryRow(ctx, query, userID).Scan(&b.UserID, &b.TotalPoints, &b.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("points", "GetByUser", shared.ErrNotFound, "balance not found")
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &b, nil
}

// Create inserts the first balance row for a user.
func (r *PointsRepository) Create(ctx context.Context, b *points.Balance) error {
	query := `INSERT INTO user_points (user_id, total_points, updated_at) VALUES ($1, $2, $3)`

	_, err := r.conn.Exec(ctx, query, b.UserID, b.TotalPoints, b.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("points", "Create", shared.ErrAlreadyExists, "balance already exists")
		}
		return fmt.Errorf("failed to create balance: %w", err)
	}
	return nil
}

// Increment adds amount to the balance in one statement. The single UPDATE
// makes concurrent awards for the same user serialize at the row lock instead
// of losing updates.
func (r *PointsRepository) Increment(ctx context.Context, userID string, amount int) (int, error) {
	query := `
		UPDATE user_points
		SET total_points = total_points + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING total_points
	`

	var newTotal int
	err := r.conn.QueryRow(ctx, query, amount, userID).Scan(&newTotal)
	if err != nil {
		if IsNoRows(err) {
			return 0, shared.NewDomainError("points", "Increment", shared.ErrNotFound, "balance not found")
		}
		return 0, fmt.Errorf("failed to increment balance: %w", err)
	}
	return newTotal, nil
}

// TopBalances returns the highest balances, largest first.
func (r *PointsRepository) TopBalances(ctx context.Context, limit int) ([]*points.Balance, error) {
	query := `
		SELECT user_id, total_points, updated_at
		FROM user_points
		ORDER BY total_points DESC, user_id ASC
		LIMIT $1
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top balances: %w", err)
	}
	defer rows.Close()

	var result []*points.Balance
	for rows.Next() {
		var b points.Balance
		if err := rows.Scan(&b.UserID, &b.TotalPoints, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		result = append(result, &b)
	}
	return result, rows.Err()
}
