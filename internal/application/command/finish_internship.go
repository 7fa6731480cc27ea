package command

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/outbox"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FINISH INTERNSHIP COMMAND
// Closes an active session. Repeated calls are no-ops.
// ══════════════════════════════════════════════════════════════════════════════

// FinishInternshipCommand contains the session to finish and optional notes.
type FinishInternshipCommand struct {
	SessionID int64  `validate:"gt=0"`
	Issues    string `validate:"max=4000"`
	Comment   string `validate:"max=4000"`
}

// FinishInternshipResult reports whether this call finished the session.
type FinishInternshipResult struct {
	Finished bool
	Session  *internship.Session
}

// FinishInternshipHandler handles FinishInternshipCommand.
type FinishInternshipHandler struct {
	deps LifecycleDeps
}

// NewFinishInternshipHandler creates a new FinishInternshipHandler.
func NewFinishInternshipHandler(deps LifecycleDeps) *FinishInternshipHandler {
	return &FinishInternshipHandler{deps: deps.withDefaults("finish_internship")}
}

// Handle finishes the session if it is active. A session that is already
// finished or canceled is returned unchanged with Finished=false.
func (h *FinishInternshipHandler) Handle(ctx context.Context, cmd FinishInternshipCommand) (*FinishInternshipResult, error) {
	if err := validateInput("internship", "Finish", cmd); err != nil {
		return nil, err
	}

	session, err := h.deps.Internship.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return nil, fmt.Errorf("finish_internship: %w", shared.Persistence("GetSession", err))
	}

	now := h.deps.Now().UTC()
	notes := internship.NewFinishNotes(cmd.Issues, cmd.Comment)

	finished, err := h.deps.Internship.FinishSession(ctx, session.ID, now, notes)
	if err != nil {
		return nil, fmt.Errorf("finish_internship: %w", shared.Persistence("FinishSession", err))
	}
	if !finished {
		return h.alreadyClosed(ctx, session.ID)
	}

	session.FinishedAt = &now
	if notes.Issues != nil {
		session.Issues = notes.Issues
	}
	if notes.Comment != nil {
		session.Comment = notes.Comment
	}

	if err := h.complete(ctx, session, now); err != nil {
		return nil, err
	}

	h.deps.Logger.Info("internship session finished",
		"trainee_id", session.TraineeID,
		"session_id", session.ID,
		"day_number", session.DayNumber,
		"with_notes", !notes.IsEmpty(),
	)
	return &FinishInternshipResult{Finished: true, Session: session}, nil
}

// alreadyClosed handles a finish that found the session inactive. A session
// finished by an earlier call that failed before advancing the day counter
// gets the rest of that finish applied now; finished_at is left as stored.
func (h *FinishInternshipHandler) alreadyClosed(ctx context.Context, sessionID int64) (*FinishInternshipResult, error) {
	session, err := h.deps.Internship.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("finish_internship: %w", shared.Persistence("GetSession", err))
	}
	if session.State() != internship.SessionStateFinished {
		h.deps.Logger.Debug("session is not active, finish skipped",
			"session_id", session.ID,
			"state", session.State(),
		)
		return &FinishInternshipResult{Finished: false, Session: session}, nil
	}

	trainee, err := h.deps.Internship.GetTrainee(ctx, session.TraineeID)
	if err != nil {
		return nil, fmt.Errorf("finish_internship: %w", shared.Persistence("GetTrainee", err))
	}
	if trainee.InternDaysCompleted >= session.DayNumber {
		h.deps.Logger.Debug("session already finished, finish skipped", "session_id", session.ID)
		return &FinishInternshipResult{Finished: false, Session: session}, nil
	}

	h.deps.Logger.Warn("resuming interrupted finish",
		"trainee_id", session.TraineeID,
		"session_id", session.ID,
		"day_number", session.DayNumber,
		"intern_days_completed", trainee.InternDaysCompleted,
	)
	if err := h.complete(ctx, session, *session.FinishedAt); err != nil {
		return nil, err
	}
	return &FinishInternshipResult{Finished: false, Session: session}, nil
}

// complete runs everything that follows the finished_at write.
func (h *FinishInternshipHandler) complete(ctx context.Context, session *internship.Session, at time.Time) error {
	if err := h.deps.Internship.AdvanceInternDays(ctx, session.TraineeID, session.DayNumber); err != nil {
		return fmt.Errorf("finish_internship: %w", shared.Persistence("AdvanceInternDays", err))
	}

	trainee := h.deps.loadTrainee(ctx, session.TraineeID, session.ID)
	if trainee != nil {
		h.deps.syncFinish(ctx, trainee, session, at)
	}
	h.deps.publish(ctx, outbox.EventInternshipFinished, internshipPayload(trainee, session))
	return nil
}
