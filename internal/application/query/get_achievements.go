package query

import (
	"context"

	"github.com/prepdeck/prepdeck-backend/internal/domain/achievement"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

// GetAchievementsHandler serves the achievement read surface: the full
// catalog and a user's unlocked list.
type GetAchievementsHandler struct {
	catalog achievement.CatalogRepository
	unlocks achievement.UnlockRepository
}

// NewGetAchievementsHandler creates a GetAchievementsHandler.
func NewGetAchievementsHandler(catalog achievement.CatalogRepository, unlocks achievement.UnlockRepository) *GetAchievementsHandler {
	return &GetAchievementsHandler{catalog: catalog, unlocks: unlocks}
}

// Catalog returns every achievement definition.
func (h *GetAchievementsHandler) Catalog(ctx context.Context) ([]*achievement.Achievement, error) {
	const op = "GetCatalog"

	list, err := h.catalog.List(ctx)
	if err != nil {
		return nil, shared.WrapStorage("achievement", op, err)
	}
	if list == nil {
		list = []*achievement.Achievement{}
	}
	return list, nil
}

// ByUser returns the user's unlocks joined with their catalog entries, newest
// first. A user with no unlocks gets an empty slice.
func (h *GetAchievementsHandler) ByUser(ctx context.Context, userID string) ([]*achievement.UnlockedDetail, error) {
	const op = "GetUserAchievements"

	if userID == "" {
		return nil, shared.NewDomainError("achievement", op, shared.ErrEmptyValue, "user ID is required")
	}

	details, err := h.unlocks.ListDetailsByUser(ctx, userID)
	if err != nil {
		return nil, shared.WrapStorage("achievement", op, err)
	}
	if details == nil {
		details = []*achievement.UnlockedDetail{}
	}
	return details, nil
}
