package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CURRICULUM ADMIN COMMANDS
// Create, rename and delete parts, sections and steps. New items are appended
// at the end of their scope. Every successful write drops the cached tree.
// ══════════════════════════════════════════════════════════════════════════════

// CreatePartCommand creates a top-level part.
type CreatePartCommand struct {
	Title string `validate:"required,max=255"`
}

// CreateSectionCommand creates a section inside a part.
type CreateSectionCommand struct {
	PartID        int64   `validate:"gt=0"`
	Title         string  `validate:"required,max=255"`
	ReferenceLink *string `validate:"omitempty,url"`
	DurationDays  *int    `validate:"omitempty,gt=0"`
}

// CreateStepCommand creates a step inside a section. Kind defaults to simple.
type CreateStepCommand struct {
	SectionID              int64   `validate:"gt=0"`
	Title                  string  `validate:"required,max=255"`
	Kind                   string  `validate:"omitempty,oneof=simple video photo"`
	ReferenceLink          *string `validate:"omitempty,url"`
	PlannedDurationMinutes *int    `validate:"omitempty,gt=0"`
}

// RenameCommand renames an item on any level.
type RenameCommand struct {
	Level curriculum.Level `validate:"required,oneof=part section step"`
	ID    int64            `validate:"gt=0"`
	Title string           `validate:"required,max=255"`
}

// DeleteCommand deletes an item on any level together with its children.
type DeleteCommand struct {
	Level curriculum.Level `validate:"required,oneof=part section step"`
	ID    int64            `validate:"gt=0"`
}

// CurriculumHandler handles curriculum admin commands.
type CurriculumHandler struct {
	repo   curriculum.Repository
	cache  curriculum.TreeCache // optional
	logger *slog.Logger
}

// NewCurriculumHandler creates a new CurriculumHandler.
func NewCurriculumHandler(repo curriculum.Repository, cache curriculum.TreeCache, logger *slog.Logger) *CurriculumHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CurriculumHandler{
		repo:   repo,
		cache:  cache,
		logger: logger.With("handler", "curriculum"),
	}
}

// CreatePart appends a part.
func (h *CurriculumHandler) CreatePart(ctx context.Context, cmd CreatePartCommand) (*curriculum.Part, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	if err := validateInput("curriculum", "CreatePart", cmd); err != nil {
		return nil, err
	}

	part, err := h.repo.CreatePart(ctx, cmd.Title)
	if err != nil {
		return nil, fmt.Errorf("create_part: %w", shared.Persistence("CreatePart", err))
	}

	h.logger.Info("part created", "part_id", part.ID, "order_index", part.OrderIndex)
	h.invalidate(ctx)
	return part, nil
}

// CreateSection appends a section to its part.
func (h *CurriculumHandler) CreateSection(ctx context.Context, cmd CreateSectionCommand) (*curriculum.Section, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.ReferenceLink = trimOptional(cmd.ReferenceLink)
	if err := validateInput("curriculum", "CreateSection", cmd); err != nil {
		return nil, err
	}

	section, err := h.repo.CreateSection(ctx, curriculum.Section{
		PartID:        cmd.PartID,
		Title:         cmd.Title,
		ReferenceLink: cmd.ReferenceLink,
		DurationDays:  cmd.DurationDays,
	})
	if err != nil {
		return nil, fmt.Errorf("create_section: %w", shared.Persistence("CreateSection", err))
	}

	h.logger.Info("section created",
		"section_id", section.ID,
		"part_id", section.PartID,
		"order_index", section.OrderIndex,
	)
	h.invalidate(ctx)
	return section, nil
}

// CreateStep appends a step to its section.
func (h *CurriculumHandler) CreateStep(ctx context.Context, cmd CreateStepCommand) (*curriculum.Step, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.ReferenceLink = trimOptional(cmd.ReferenceLink)
	if cmd.Kind == "" {
		cmd.Kind = string(curriculum.StepKindSimple)
	}
	if err := validateInput("curriculum", "CreateStep", cmd); err != nil {
		return nil, err
	}

	kind := curriculum.StepKind(cmd.Kind)
	if !kind.IsValid() {
		return nil, shared.ErrInvalidStepKind
	}

	step, err := h.repo.CreateStep(ctx, curriculum.Step{
		SectionID:              cmd.SectionID,
		Title:                  cmd.Title,
		Kind:                   kind,
		ReferenceLink:          cmd.ReferenceLink,
		PlannedDurationMinutes: cmd.PlannedDurationMinutes,
	})
	if err != nil {
		return nil, fmt.Errorf("create_step: %w", shared.Persistence("CreateStep", err))
	}

	h.logger.Info("step created",
		"step_id", step.ID,
		"section_id", step.SectionID,
		"kind", step.Kind,
		"order_index", step.OrderIndex,
	)
	h.invalidate(ctx)
	return step, nil
}

// Rename updates the title of a part, section or step.
func (h *CurriculumHandler) Rename(ctx context.Context, cmd RenameCommand) error {
	cmd.Title = strings.TrimSpace(cmd.Title)
	if err := validateInput("curriculum", "Rename", cmd); err != nil {
		return err
	}

	var err error
	switch cmd.Level {
	case curriculum.LevelPart:
		err = h.repo.RenamePart(ctx, cmd.ID, cmd.Title)
	case curriculum.LevelSection:
		err = h.repo.RenameSection(ctx, cmd.ID, cmd.Title)
	default:
		err = h.repo.RenameStep(ctx, cmd.ID, cmd.Title)
	}
	if err != nil {
		return fmt.Errorf("rename_%s: %w", cmd.Level, shared.Persistence("Rename", err))
	}

	h.logger.Info("curriculum item renamed", "level", cmd.Level, "id", cmd.ID)
	h.invalidate(ctx)
	return nil
}

// Delete removes a part, section or step with everything below it.
func (h *CurriculumHandler) Delete(ctx context.Context, cmd DeleteCommand) error {
	if err := validateInput("curriculum", "Delete", cmd); err != nil {
		return err
	}

	var err error
	switch cmd.Level {
	case curriculum.LevelPart:
		err = h.repo.DeletePart(ctx, cmd.ID)
	case curriculum.LevelSection:
		err = h.repo.DeleteSection(ctx, cmd.ID)
	default:
		err = h.repo.DeleteStep(ctx, cmd.ID)
	}
	if err != nil {
		return fmt.Errorf("delete_%s: %w", cmd.Level, shared.Persistence("Delete", err))
	}

	h.logger.Info("curriculum item deleted", "level", cmd.Level, "id", cmd.ID)
	h.invalidate(ctx)
	return nil
}

func (h *CurriculumHandler) invalidate(ctx context.Context) {
	invalidateTree(ctx, h.cache, h.logger)
}

// invalidateTree drops the cached tree; failures are only logged.
func invalidateTree(ctx context.Context, cache curriculum.TreeCache, logger *slog.Logger) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateTree(ctx); err != nil {
		logger.Warn("failed to invalidate curriculum cache", "error", err)
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
