package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// CancelInternshipCommand identifies the session to cancel.
type CancelInternshipCommand struct {
	SessionID int64 `validate:"gt=0"`
}

// CancelInternshipHandler handles CancelInternshipCommand. Canceling is
// terminal whatever the prior state; the session stops counting towards
// overall progress. No schedule sync and no outbox event.
type CancelInternshipHandler struct {
	deps LifecycleDeps
}

// NewCancelInternshipHandler creates a new CancelInternshipHandler.
func NewCancelInternshipHandler(deps LifecycleDeps) *CancelInternshipHandler {
	return &CancelInternshipHandler{deps: deps.withDefaults("cancel_internship")}
}

// Handle cancels the session and returns it in its canceled state.
func (h *CancelInternshipHandler) Handle(ctx context.Context, cmd CancelInternshipCommand) (*internship.Session, error) {
	if err := validateInput("internship", "Cancel", cmd); err != nil {
		return nil, err
	}

	session, err := h.deps.Internship.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return nil, fmt.Errorf("cancel_internship: %w", shared.Persistence("GetSession", err))
	}

	now := h.deps.Now().UTC()
	if err := h.deps.Internship.CancelSession(ctx, session.ID, now); err != nil {
		return nil, fmt.Errorf("cancel_internship: %w", shared.Persistence("CancelSession", err))
	}

	session.IsCanceled = true
	session.FinishedAt = &now

	h.deps.Logger.Info("internship session canceled",
		"trainee_id", session.TraineeID,
		"session_id", session.ID,
	)
	return session, nil
}
