package command

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORT CURRICULUM COMMAND
// Loads a YAML document and applies it through the regular create commands,
// so order indexes follow the document order.
// ══════════════════════════════════════════════════════════════════════════════

// CurriculumDocument is the YAML shape of a curriculum file.
type CurriculumDocument struct {
	Parts []PartDocument `yaml:"parts" validate:"dive"`
}

// PartDocument is one part of a curriculum file.
type PartDocument struct {
	Title    string            `yaml:"title" validate:"required,max=255"`
	Sections []SectionDocument `yaml:"sections" validate:"dive"`
}

// SectionDocument is one section of a curriculum file.
type SectionDocument struct {
	Title         string         `yaml:"title" validate:"required,max=255"`
	ReferenceLink *string        `yaml:"reference_link" validate:"omitempty,url"`
	DurationDays  *int           `yaml:"duration_days" validate:"omitempty,gt=0"`
	Steps         []StepDocument `yaml:"steps" validate:"dive"`
}

// StepDocument is one step of a curriculum file.
type StepDocument struct {
	Title                  string  `yaml:"title" validate:"required,max=255"`
	Kind                   string  `yaml:"kind" validate:"omitempty,oneof=simple video photo"`
	ReferenceLink          *string `yaml:"reference_link" validate:"omitempty,url"`
	PlannedDurationMinutes *int    `yaml:"planned_duration_minutes" validate:"omitempty,gt=0"`
}

// ImportCurriculumCommand contains the raw YAML document.
type ImportCurriculumCommand struct {
	Data []byte

	// OnlyIfEmpty skips the import when the catalog already has parts.
	OnlyIfEmpty bool
}

// ImportCurriculumResult counts created items.
type ImportCurriculumResult struct {
	Skipped  bool
	Parts    int
	Sections int
	Steps    int
}

// ImportCurriculumHandler handles ImportCurriculumCommand.
type ImportCurriculumHandler struct {
	repo    curriculum.Repository
	creator *CurriculumHandler
	logger  *slog.Logger
}

// NewImportCurriculumHandler creates a new ImportCurriculumHandler.
func NewImportCurriculumHandler(repo curriculum.Repository, creator *CurriculumHandler, logger *slog.Logger) *ImportCurriculumHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportCurriculumHandler{
		repo:    repo,
		creator: creator,
		logger:  logger.With("handler", "import_curriculum"),
	}
}

// ParseCurriculum decodes and validates a curriculum document.
func ParseCurriculum(data []byte) (*CurriculumDocument, error) {
	var doc CurriculumDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, shared.WrapError("curriculum", "Import", shared.ErrValidation, "malformed curriculum file", err)
	}
	if err := validateInput("curriculum", "Import", doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Handle validates the whole document before the first write. The emptiness
// check and the writes run under the catalog import lock, so two instances
// seeding the same file at startup import it once. A failure in the middle
// of the import leaves the items created so far in place.
func (h *ImportCurriculumHandler) Handle(ctx context.Context, cmd ImportCurriculumCommand) (*ImportCurriculumResult, error) {
	doc, err := ParseCurriculum(cmd.Data)
	if err != nil {
		return nil, err
	}

	var res *ImportCurriculumResult
	err = h.repo.WithImportLock(ctx, func(ctx context.Context) error {
		if cmd.OnlyIfEmpty {
			parts, err := h.repo.ListParts(ctx)
			if err != nil {
				return fmt.Errorf("import_curriculum: %w", shared.Persistence("ListParts", err))
			}
			if len(parts) > 0 {
				h.logger.Info("catalog is not empty, import skipped", "parts", len(parts))
				res = &ImportCurriculumResult{Skipped: true}
				return nil
			}
		}
		res = &ImportCurriculumResult{}
		return h.apply(ctx, doc, res)
	})
	if err != nil {
		return res, err
	}

	if !res.Skipped {
		h.logger.Info("curriculum imported",
			"parts", res.Parts,
			"sections", res.Sections,
			"steps", res.Steps,
		)
	}
	return res, nil
}

func (h *ImportCurriculumHandler) apply(ctx context.Context, doc *CurriculumDocument, res *ImportCurriculumResult) error {
	for _, pd := range doc.Parts {
		part, err := h.creator.CreatePart(ctx, CreatePartCommand{Title: pd.Title})
		if err != nil {
			return fmt.Errorf("import_curriculum: part %q: %w", pd.Title, err)
		}
		res.Parts++

		for _, sd := range pd.Sections {
			section, err := h.creator.CreateSection(ctx, CreateSectionCommand{
				PartID:        part.ID,
				Title:         sd.Title,
				ReferenceLink: sd.ReferenceLink,
				DurationDays:  sd.DurationDays,
			})
			if err != nil {
				return fmt.Errorf("import_curriculum: section %q: %w", sd.Title, err)
			}
			res.Sections++

			for _, st := range sd.Steps {
				_, err := h.creator.CreateStep(ctx, CreateStepCommand{
					SectionID:              section.ID,
					Title:                  st.Title,
					Kind:                   st.Kind,
					ReferenceLink:          st.ReferenceLink,
					PlannedDurationMinutes: st.PlannedDurationMinutes,
				})
				if err != nil {
					return fmt.Errorf("import_curriculum: step %q: %w", st.Title, err)
				}
				res.Steps++
			}
		}
	}
	return nil
}
