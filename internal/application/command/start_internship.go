package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/outbox"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// START INTERNSHIP COMMAND
// Opens a new training day for a trainee.
// ══════════════════════════════════════════════════════════════════════════════

// StartInternshipCommand contains the data to start a session.
type StartInternshipCommand struct {
	TraineeID    int64 `validate:"gt=0"`
	TrainerID    int64 `validate:"gt=0"`
	TradePointID int64 `validate:"gt=0"`
	WasLate      bool
}

// StartInternshipResult is the started session.
type StartInternshipResult struct {
	Session *internship.Session
}

// StartInternshipHandler handles StartInternshipCommand.
type StartInternshipHandler struct {
	deps LifecycleDeps
}

// NewStartInternshipHandler creates a new StartInternshipHandler.
func NewStartInternshipHandler(deps LifecycleDeps) *StartInternshipHandler {
	return &StartInternshipHandler{deps: deps.withDefaults("start_internship")}
}

// Handle starts a session with day_number = intern_days_completed + 1.
func (h *StartInternshipHandler) Handle(ctx context.Context, cmd StartInternshipCommand) (*StartInternshipResult, error) {
	if err := validateInput("internship", "Start", cmd); err != nil {
		return nil, err
	}

	trainee, err := h.deps.Internship.GetTrainee(ctx, cmd.TraineeID)
	if err != nil {
		return nil, fmt.Errorf("start_internship: %w", shared.Persistence("GetTrainee", err))
	}
	if !trainee.IsTrainee() {
		return nil, shared.ErrNotTrainee
	}

	_, err = h.deps.Internship.GetActiveSession(ctx, cmd.TraineeID)
	switch {
	case err == nil:
		return nil, shared.ErrSessionAlreadyActive
	case !errors.Is(err, shared.ErrSessionNotFound):
		return nil, fmt.Errorf("start_internship: %w", shared.Persistence("GetActiveSession", err))
	}

	session, err := h.deps.Internship.CreateSession(ctx, internship.Session{
		TraineeID:    trainee.ID,
		DayNumber:    trainee.NextDayNumber(),
		StartedAt:    h.deps.Now().UTC(),
		StartedBy:    cmd.TrainerID,
		TradePointID: cmd.TradePointID,
		WasLate:      cmd.WasLate,
	})
	if err != nil {
		return nil, fmt.Errorf("start_internship: %w", shared.Persistence("CreateSession", err))
	}

	h.deps.Logger.Info("internship session started",
		"trainee_id", trainee.ID,
		"session_id", session.ID,
		"day_number", session.DayNumber,
		"trade_point_id", session.TradePointID,
	)

	h.deps.syncStart(ctx, trainee, session)
	h.deps.publish(ctx, outbox.EventInternshipStarted, internshipPayload(trainee, session))

	return &StartInternshipResult{Session: session}, nil
}
