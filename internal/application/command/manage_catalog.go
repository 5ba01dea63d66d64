package command

import (
	"context"
	"errors"

	"github.com/prepdeck/prepdeck-backend/internal/domain/achievement"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/pkg/timeutil"
)

// CatalogEntryCommand contains the administrator-supplied fields of an
// achievement catalog entry. Criteria arrive as the raw key->threshold
// mapping and are validated against the closed statistic set before any
// store call.
type CatalogEntryCommand struct {
	Title       string
	Description string
	Icon        string
	Criteria    map[string]int
}

// Validate rejects invalid input.
func (c CatalogEntryCommand) Validate() error {
	if c.Title == "" {
		return errors.New("catalog: title is required")
	}
	if len(c.Criteria) == 0 {
		return errors.New("catalog: criteria are required")
	}
	_, err := achievement.ParseCriteria(c.Criteria)
	return err
}

// ManageCatalogHandler implements the administrator CRUD surface for the
// achievement catalog. These operations are reference-data maintenance, not
// part of the runtime unlock flow.
type ManageCatalogHandler struct {
	catalog achievement.CatalogRepository
	ids     IDGenerator
	clock   timeutil.Clock
}

// NewManageCatalogHandler creates a ManageCatalogHandler.
func NewManageCatalogHandler(catalog achievement.CatalogRepository, ids IDGenerator, clock timeutil.Clock) *ManageCatalogHandler {
	return &ManageCatalogHandler{catalog: catalog, ids: ids, clock: clock}
}

// Create inserts a new catalog entry.
func (h *ManageCatalogHandler) Create(ctx context.Context, cmd CatalogEntryCommand) (*achievement.Achievement, error) {
	const op = "CreateAchievement"

	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("achievement", op, shared.ErrValidation, "invalid catalog entry", err)
	}

	a, err := achievement.New(h.ids.NewID(), cmd.Title, cmd.Description, cmd.Icon, cmd.Criteria, h.clock.Now())
	if err != nil {
		return nil, shared.WrapError("achievement", op, shared.ErrValidation, "invalid catalog entry", err)
	}

	if err := h.catalog.Create(ctx, a); err != nil {
		return nil, shared.WrapStorage("achievement", op, err)
	}
	return a, nil
}

// Update overwrites an existing catalog entry.
func (h *ManageCatalogHandler) Update(ctx context.Context, id string, cmd CatalogEntryCommand) (*achievement.Achievement, error) {
	const op = "UpdateAchievement"

	if id == "" {
		return nil, shared.NewDomainError("achievement", op, shared.ErrInvalidID, "achievement ID is required")
	}
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("achievement", op, shared.ErrValidation, "invalid catalog entry", err)
	}

	existing, err := h.catalog.GetByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapStorage("achievement", op, err)
	}

	criteria, err := achievement.ParseCriteria(cmd.Criteria)
	if err != nil {
		return nil, shared.WrapError("achievement", op, shared.ErrValidation, "invalid criteria", err)
	}

	existing.Title = cmd.Title
	existing.Description = cmd.Description
	existing.Icon = cmd.Icon
	existing.Criteria = criteria

	if err := h.catalog.Update(ctx, existing); err != nil {
		return nil, shared.WrapStorage("achievement", op, err)
	}
	return existing, nil
}

// Delete removes a catalog entry. Unlock rows referencing it are kept; they
// are a historical ledger.
func (h *ManageCatalogHandler) Delete(ctx context.Context, id string) error {
	const op = "DeleteAchievement"

	if id == "" {
		return shared.NewDomainError("achievement", op, shared.ErrInvalidID, "achievement ID is required")
	}
	if err := h.catalog.Delete(ctx, id); err != nil {
		if shared.IsNotFound(err) {
			return err
		}
		return shared.WrapStorage("achievement", op, err)
	}
	return nil
}
