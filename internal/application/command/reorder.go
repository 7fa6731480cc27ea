package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ReorderCommand moves one item up or down among its siblings.
// ParentID is the part for sections and the section for steps.
type ReorderCommand struct {
	Level     curriculum.Level     `validate:"required,oneof=part section step"`
	ParentID  int64                `validate:"gte=0"`
	ItemID    int64                `validate:"gt=0"`
	Direction curriculum.Direction `validate:"required,oneof=up down"`
}

// Scope returns the ordering scope of the command.
func (c ReorderCommand) Scope() curriculum.Scope {
	return curriculum.Scope{Level: c.Level, ParentID: c.ParentID}
}

// ReorderResult reports whether the item moved. A boundary item does not.
type ReorderResult struct {
	Moved bool
}

// ReorderHandler handles ReorderCommand.
type ReorderHandler struct {
	repo   curriculum.Repository
	cache  curriculum.TreeCache // optional
	logger *slog.Logger
}

// NewReorderHandler creates a new ReorderHandler.
func NewReorderHandler(repo curriculum.Repository, cache curriculum.TreeCache, logger *slog.Logger) *ReorderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReorderHandler{
		repo:   repo,
		cache:  cache,
		logger: logger.With("handler", "reorder"),
	}
}

// Handle swaps the item with its nearest neighbor in the given direction.
func (h *ReorderHandler) Handle(ctx context.Context, cmd ReorderCommand) (*ReorderResult, error) {
	if err := validateInput("curriculum", "Reorder", cmd); err != nil {
		return nil, err
	}
	scope := cmd.Scope()
	if err := scope.Validate(); err != nil {
		return nil, shared.WrapError("curriculum", "Reorder", shared.ErrValidation, "invalid ordering scope", err)
	}

	moved, err := h.repo.Reorder(ctx, scope, cmd.ItemID, cmd.Direction)
	if err != nil {
		return nil, fmt.Errorf("reorder: %w", shared.Persistence("Reorder", err))
	}

	if moved {
		h.logger.Info("curriculum item moved",
			"scope", scope.String(),
			"item_id", cmd.ItemID,
			"direction", cmd.Direction,
		)
		invalidateTree(ctx, h.cache, h.logger)
	}

	return &ReorderResult{Moved: moved}, nil
}
