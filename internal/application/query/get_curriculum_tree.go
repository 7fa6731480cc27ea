// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CURRICULUM TREE QUERY
// Returns the whole catalog sorted by (order_index, id) at every level.
// The assembled tree is cached; any cache failure falls back to the store.
// ══════════════════════════════════════════════════════════════════════════════

// GetCurriculumTreeHandler loads the curriculum tree.
type GetCurriculumTreeHandler struct {
	repo   curriculum.Repository
	cache  curriculum.TreeCache // optional
	ttl    time.Duration
	logger *slog.Logger
}

// NewGetCurriculumTreeHandler creates a new GetCurriculumTreeHandler.
func NewGetCurriculumTreeHandler(
	repo curriculum.Repository,
	cache curriculum.TreeCache,
	ttl time.Duration,
	logger *slog.Logger,
) *GetCurriculumTreeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetCurriculumTreeHandler{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("handler", "get_curriculum_tree"),
	}
}

// Handle returns the tree. A tree loaded while the catalog was being
// changed is returned to the caller but never written back to the cache.
func (h *GetCurriculumTreeHandler) Handle(ctx context.Context) (curriculum.Tree, error) {
	if h.cache == nil {
		return h.load(ctx)
	}

	tree, err := h.cache.GetTree(ctx)
	if err == nil {
		return tree, nil
	}
	h.logger.Debug("curriculum cache miss", "error", err)

	gen, genErr := h.cache.Generation(ctx)

	tree, err = h.load(ctx)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		h.logger.Warn("curriculum cache generation unavailable, skipping refill", "error", genErr)
		return tree, nil
	}
	stored, err := h.cache.SetTree(ctx, tree, gen, h.ttl)
	switch {
	case err != nil:
		h.logger.Warn("failed to cache curriculum tree", "error", err)
	case !stored:
		h.logger.Debug("catalog changed during load, cache refill dropped", "generation", gen)
	}
	return tree, nil
}

func (h *GetCurriculumTreeHandler) load(ctx context.Context) (curriculum.Tree, error) {
	parts, err := h.repo.ListParts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_curriculum_tree: %w", shared.Persistence("ListParts", err))
	}
	sections, err := h.repo.ListSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_curriculum_tree: %w", shared.Persistence("ListSections", err))
	}
	steps, err := h.repo.ListSteps(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_curriculum_tree: %w", shared.Persistence("ListSteps", err))
	}
	return curriculum.BuildTree(parts, sections, steps), nil
}
