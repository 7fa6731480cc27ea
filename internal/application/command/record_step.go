package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/progress"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD STEP COMMANDS
// Simple steps are toggled by the trainer; video and photo steps are passed
// by attaching media.
// ══════════════════════════════════════════════════════════════════════════════

// ToggleStepCommand flips the result of a simple step in a session.
type ToggleStepCommand struct {
	SessionID int64 `validate:"gt=0"`
	StepID    int64 `validate:"gt=0"`
	ActorID   int64 `validate:"gt=0"`
}

// ToggleStepResult is the state after the toggle.
type ToggleStepResult struct {
	IsPassed bool
}

// SubmitMediaCommand passes a media step with an attachment reference.
type SubmitMediaCommand struct {
	SessionID int64  `validate:"gt=0"`
	StepID    int64  `validate:"gt=0"`
	ActorID   int64  `validate:"gt=0"`
	MediaRef  string `validate:"max=1024"`
}

// RecordStepHandler handles step result commands.
type RecordStepHandler struct {
	progress   progress.Repository
	curriculum curriculum.Repository
	internship internship.Repository
	logger     *slog.Logger
	now        Clock
}

// NewRecordStepHandler creates a new RecordStepHandler.
func NewRecordStepHandler(
	progressRepo progress.Repository,
	curriculumRepo curriculum.Repository,
	internshipRepo internship.Repository,
	logger *slog.Logger,
	now Clock,
) *RecordStepHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &RecordStepHandler{
		progress:   progressRepo,
		curriculum: curriculumRepo,
		internship: internshipRepo,
		logger:     logger.With("handler", "record_step"),
		now:        now,
	}
}

// Toggle flips a simple step. It does not require the session to be active.
func (h *RecordStepHandler) Toggle(ctx context.Context, cmd ToggleStepCommand) (*ToggleStepResult, error) {
	if err := validateInput("progress", "Toggle", cmd); err != nil {
		return nil, err
	}

	step, err := h.load(ctx, cmd.SessionID, cmd.StepID)
	if err != nil {
		return nil, fmt.Errorf("record_step: %w", err)
	}
	if step.Kind != curriculum.StepKindSimple {
		return nil, shared.ErrToggleNotAllowed
	}

	passed, err := h.progress.Toggle(ctx, cmd.SessionID, cmd.StepID, cmd.ActorID, h.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("record_step: %w", shared.Persistence("Toggle", err))
	}

	h.logger.Debug("step toggled",
		"session_id", cmd.SessionID,
		"step_id", cmd.StepID,
		"actor_id", cmd.ActorID,
		"is_passed", passed,
	)
	return &ToggleStepResult{IsPassed: passed}, nil
}

// SubmitMedia marks a video or photo step passed with the given media.
func (h *RecordStepHandler) SubmitMedia(ctx context.Context, cmd SubmitMediaCommand) error {
	if err := validateInput("progress", "SubmitMedia", cmd); err != nil {
		return err
	}
	mediaRef := strings.TrimSpace(cmd.MediaRef)
	if mediaRef == "" {
		return shared.ErrEmptyMediaRef
	}

	step, err := h.load(ctx, cmd.SessionID, cmd.StepID)
	if err != nil {
		return fmt.Errorf("record_step: %w", err)
	}
	if !step.Kind.IsMedia() {
		return shared.ErrMediaNotAllowed
	}

	if err := h.progress.SaveMedia(ctx, cmd.SessionID, cmd.StepID, cmd.ActorID, mediaRef, h.now().UTC()); err != nil {
		return fmt.Errorf("record_step: %w", shared.Persistence("SaveMedia", err))
	}

	h.logger.Debug("step media saved",
		"session_id", cmd.SessionID,
		"step_id", cmd.StepID,
		"kind", step.Kind,
	)
	return nil
}

func (h *RecordStepHandler) load(ctx context.Context, sessionID, stepID int64) (*curriculum.Step, error) {
	if _, err := h.internship.GetSession(ctx, sessionID); err != nil {
		return nil, shared.Persistence("GetSession", err)
	}
	step, err := h.curriculum.GetStep(ctx, stepID)
	if err != nil {
		return nil, shared.Persistence("GetStep", err)
	}
	return step, nil
}
