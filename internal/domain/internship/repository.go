package internship

import (
	"context"
	"time"
)

// Repository defines the interface for trainee and session persistence.
// None of the methods retry; every failure is returned to the caller.
type Repository interface {
	// Trainees

	// GetTrainee returns a trainee by user ID.
	GetTrainee(ctx context.Context, id int64) (*Trainee, error)

	// AdvanceInternDays sets intern_days_completed = max(current, dayNumber).
	AdvanceInternDays(ctx context.Context, traineeID int64, dayNumber int) error

	// FreezeTrainingCompletion stores the completion time and the catalog
	// size only if they are unset. Returns true when this call froze them.
	FreezeTrainingCompletion(ctx context.Context, traineeID int64, at time.Time, totalSteps int) (bool, error)

	// Sessions

	// GetSession returns a session by ID.
	GetSession(ctx context.Context, id int64) (*Session, error)

	// GetActiveSession returns the trainee's active session or ErrSessionNotFound.
	GetActiveSession(ctx context.Context, traineeID int64) (*Session, error)

	// ListSessions returns the trainee's sessions, newest first.
	ListSessions(ctx context.Context, traineeID int64) ([]*Session, error)

	// CreateSession stores a new session and returns it with its ID.
	// Returns ErrSessionAlreadyActive if the trainee already has one.
	CreateSession(ctx context.Context, s Session) (*Session, error)

	// FinishSession sets finished_at (and notes) only if the session is
	// active. Returns true when this call finished it.
	FinishSession(ctx context.Context, id int64, at time.Time, notes FinishNotes) (bool, error)

	// ForceFinishSession sets finished_at if it is still unset, whatever the
	// cancel flag.
	ForceFinishSession(ctx context.Context, id int64, at time.Time) error

	// CancelSession sets is_canceled and finished_at unconditionally.
	CancelSession(ctx context.Context, id int64, at time.Time) error
}
