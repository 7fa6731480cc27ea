package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/outbox"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE TRAINING COMMAND
// Flow: Load → Force Finish → Sync Schedule → Advance Days (skipped for a
// canceled session) →
//
//	Freeze Denominator → Publish Event
//
// ══════════════════════════════════════════════════════════════════════════════

// CompleteTrainingCommand identifies the trainee's closing session.
type CompleteTrainingCommand struct {
	SessionID int64 `validate:"gt=0"`
	TraineeID int64 `validate:"gt=0"`
}

// CompleteTrainingResult contains the closed session and the snapshot state.
type CompleteTrainingResult struct {
	Session *internship.Session

	// Frozen is true when this call took the snapshot.
	Frozen bool

	// TotalSteps is the frozen denominator now in effect.
	TotalSteps int
}

// CompleteTrainingHandler handles CompleteTrainingCommand.
type CompleteTrainingHandler struct {
	deps       LifecycleDeps
	curriculum curriculum.Repository
}

// NewCompleteTrainingHandler creates a new CompleteTrainingHandler.
func NewCompleteTrainingHandler(deps LifecycleDeps, curriculumRepo curriculum.Repository) *CompleteTrainingHandler {
	return &CompleteTrainingHandler{
		deps:       deps.withDefaults("complete_training"),
		curriculum: curriculumRepo,
	}
}

// Handle closes the session regardless of the active guard and freezes the
// catalog size on first completion only.
func (h *CompleteTrainingHandler) Handle(ctx context.Context, cmd CompleteTrainingCommand) (*CompleteTrainingResult, error) {
	if err := validateInput("internship", "CompleteTraining", cmd); err != nil {
		return nil, err
	}

	session, err := h.deps.Internship.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return nil, fmt.Errorf("complete_training: %w", shared.Persistence("GetSession", err))
	}
	if session.TraineeID != cmd.TraineeID {
		return nil, shared.WrapError("internship", "CompleteTraining", shared.ErrNotFound,
			"session not found for trainee", shared.ErrSessionNotFound)
	}

	trainee, err := h.deps.Internship.GetTrainee(ctx, cmd.TraineeID)
	if err != nil {
		return nil, fmt.Errorf("complete_training: %w", shared.Persistence("GetTrainee", err))
	}

	now := h.deps.Now().UTC()
	if err := h.deps.Internship.ForceFinishSession(ctx, session.ID, now); err != nil {
		return nil, fmt.Errorf("complete_training: %w", shared.Persistence("ForceFinishSession", err))
	}
	if session.FinishedAt == nil {
		session.FinishedAt = &now
	}

	// A canceled day never happened: it neither closes a schedule record nor
	// counts toward intern days.
	if !session.IsCanceled {
		h.deps.syncFinish(ctx, trainee, session, now)

		if err := h.deps.Internship.AdvanceInternDays(ctx, trainee.ID, session.DayNumber); err != nil {
			return nil, fmt.Errorf("complete_training: %w", shared.Persistence("AdvanceInternDays", err))
		}
	}

	total, err := h.curriculum.CountSteps(ctx)
	if err != nil {
		return nil, fmt.Errorf("complete_training: %w", shared.Persistence("CountSteps", err))
	}

	frozen, err := h.deps.Internship.FreezeTrainingCompletion(ctx, trainee.ID, now, total)
	if err != nil {
		return nil, fmt.Errorf("complete_training: %w", shared.Persistence("FreezeTrainingCompletion", err))
	}

	effective := total
	if !frozen {
		effective = trainee.Denominator(total)
	}

	h.deps.Logger.Info("training completed",
		"trainee_id", trainee.ID,
		"session_id", session.ID,
		"frozen", frozen,
		"total_steps", effective,
	)

	payload := internshipPayload(trainee, session)
	payload.TrainingCompleted = true
	h.deps.publish(ctx, outbox.EventInternshipFinished, payload)

	return &CompleteTrainingResult{Session: session, Frozen: frozen, TotalSteps: effective}, nil
}
