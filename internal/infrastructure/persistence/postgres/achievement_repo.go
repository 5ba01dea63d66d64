package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prepdeck/prepdeck-backend/internal/domain/achievement"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT CATALOG REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements achievement.CatalogRepository for
// PostgreSQL. Criteria are stored as a JSONB map of statistic name to
// threshold and re-validated against the closed statistic set on load.
type AchievementRepository struct {
	conn *Connection
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{conn: conn}
}

// List returns the full catalog ordered by title.
func (r *AchievementRepository) List(ctx context.Context) ([]*achievement.Achievement, error) {
	query := `SELECT id, title, description, icon, criteria, created_at FROM achievements ORDER BY title`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var result []*achievement.Achievement
	for rows.Next() {
		a, err := r.scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// GetByID returns one catalog entry.
func (r *AchievementRepository) GetByID(ctx context.Context, id string) (*achievement.Achievement, error) {
	query := `SELECT id, title, description, icon, criteria, created_at FROM achievements WHERE id = $1`

	return r.scanAchievement(r.conn.QueryRow(ctx, query, id))
}

// Create inserts a catalog entry.
func (r *AchievementRepository) Create(ctx context.Context, a *achievement.Achievement) error {
	criteriaJSON, err := json.Marshal(a.Criteria.ToMap())
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}

	query := `
		INSERT INTO achievements (id, title, description, icon, criteria, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.conn.Exec(ctx, query, a.ID, a.Title, a.Description, a.Icon, criteriaJSON, a.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("achievement", "Create", shared.ErrAlreadyExists, "achievement already exists")
		}
		return fmt.Errorf("failed to create achievement: %w", err)
	}
	return nil
}

// Update overwrites a catalog entry.
func (r *AchievementRepository) Update(ctx context.Context, a *achievement.Achievement) error {
	criteriaJSON, err := json.Marshal(a.Criteria.ToMap())
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}

	query := `
		UPDATE achievements
		SET title = $1, description = $2, icon = $3, criteria = $4
		WHERE id = $5
	`

	tag, err := r.conn.Exec(ctx, query, a.Title, a.Description, a.Icon, criteriaJSON, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update achievement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("achievement", "Update", shared.ErrNotFound, "achievement not found")
	}
	return nil
}

// Delete removes a catalog entry. Unlock rows cascade.
func (r *AchievementRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM achievements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete achievement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("achievement", "Delete", shared.ErrNotFound, "achievement not found")
	}
	return nil
}

func (r *AchievementRepository) scanAchievement(row pgx.Row) (*achievement.Achievement, error) {
	var a achievement.Achievement
	var criteriaJSON []byte

	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Icon, &criteriaJSON, &a.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("achievement", "Get", shared.ErrNotFound, "achievement not found")
		}
		return nil, fmt.Errorf("failed to scan achievement: %w", err)
	}

	raw := make(map[string]int)
	if err := json.Unmarshal(criteriaJSON, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal criteria: %w", err)
	}
	criteria, err := achievement.ParseCriteria(raw)
	if err != nil {
		return nil, fmt.Errorf("stored criteria invalid for achievement %s: %w", a.ID, err)
	}
	a.Criteria = criteria

	return &a, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UNLOCK REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UnlockRepository implements achievement.UnlockRepository for PostgreSQL.
type UnlockRepository struct {
	conn *Connection
}

// NewUnlockRepository creates a new UnlockRepository.
func NewUnlockRepository(conn *Connection) *UnlockRepository {
	return &UnlockRepository{conn: conn}
}

// ListByUser returns all unlocks for a user, newest first.
func (r *UnlockRepository) ListByUser(ctx context.Context, userID string) ([]*achievement.Unlock, error) {
	query := `
		SELECT id, user_id, achievement_id, unlocked_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY unlocked_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}
	defer rows.Close()

	var result []*achievement.Unlock
	for rows.Next() {
		var u achievement.Unlock
		if err := rows.Scan(&u.ID, &u.UserID, &u.AchievementID, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unlock: %w", err)
		}
		result = append(result, &u)
	}
	return result, rows.Err()
}

// ListIDsByUser returns the set of unlocked achievement IDs for a user.
func (r *UnlockRepository) ListIDsByUser(ctx context.Context, userID string) (map[string]struct{}, error) {
	query := `SELECT achievement_id FROM user_achievements WHERE user_id = $1`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocked IDs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan unlocked ID: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Exists reports whether the (user, achievement) pairing is unlocked.
func (r *UnlockRepository) Exists(ctx context.Context, userID, achievementID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_achievements WHERE user_id = $1 AND achievement_id = $2)`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, userID, achievementID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check unlock: %w", err)
	}
	return exists, nil
}

// Create inserts an unlock row.
func (r *UnlockRepository) Create(ctx context.Context, u *achievement.Unlock) error {
	query := `
		INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.Exec(ctx, query, u.ID, u.UserID, u.AchievementID, u.UnlockedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("achievement", "CreateUnlock", shared.ErrAlreadyExists, "achievement already unlocked")
		}
		return fmt.Errorf("failed to create unlock: %w", err)
	}
	return nil
}

// ListDetailsByUser returns unlocks joined with catalog details, newest first.
func (r *UnlockRepository) ListDetailsByUser(ctx context.Context, userID string) ([]*achievement.UnlockedDetail, error) {
	query := `
		SELECT ua.id, ua.achievement_id, a.title, a.description, a.icon, ua.unlocked_at
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
		ORDER BY ua.unlocked_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlock details: %w", err)
	}
	defer rows.Close()

	var result []*achievement.UnlockedDetail
	for rows.Next() {
		var d achievement.UnlockedDetail
		if err := rows.Scan(&d.UnlockID, &d.Achievement, &d.Title, &d.Description, &d.Icon, &d.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unlock detail: %w", err)
		}
		result = append(result, &d)
	}
	return result, rows.Err()
}
