package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prepdeck/prepdeck-backend/internal/domain/achievement"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
)

func TestGetAchievements_Catalog(t *testing.T) {
	catalog := &fakeCatalogRepo{}
	ctx := context.Background()

	a, err := achievement.New("ach-1", "First Steps", "", "", map[string]int{"totalResponses": 1}, testNow)
	assert.NoError(t, err)
	assert.NoError(t, catalog.Create(ctx, a))

	h := NewGetAchievementsHandler(catalog, &fakeUnlockRepo{})

	list, err := h.Catalog(ctx)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "First Steps", list[0].Title)
}

func TestGetAchievements_EmptyCatalog(t *testing.T) {
	h := NewGetAchievementsHandler(&fakeCatalogRepo{}, &fakeUnlockRepo{})

	list, err := h.Catalog(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetAchievements_ByUser(t *testing.T) {
	unlocks := &fakeUnlockRepo{
		details: []*achievement.UnlockedDetail{
			{UnlockID: "unl-1", Achievement: "ach-1", Title: "First Steps", UnlockedAt: testNow},
		},
	}
	h := NewGetAchievementsHandler(&fakeCatalogRepo{}, unlocks)

	details, err := h.ByUser(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, details, 1)
	assert.Equal(t, "ach-1", details[0].Achievement)
}

func TestGetAchievements_ByUserNoUnlocks(t *testing.T) {
	h := NewGetAchievementsHandler(&fakeCatalogRepo{}, &fakeUnlockRepo{})

	details, err := h.ByUser(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.NotNil(t, details)
	assert.Empty(t, details)
}

func TestGetAchievements_ByUserEmptyID(t *testing.T) {
	h := NewGetAchievementsHandler(&fakeCatalogRepo{}, &fakeUnlockRepo{})

	_, err := h.ByUser(context.Background(), "")
	assert.True(t, shared.IsValidation(err))
}
