package progress

import (
	"context"
	"time"
)

// Repository defines the interface for step result persistence.
type Repository interface {
	// SessionResults returns all step results of one session.
	SessionResults(ctx context.Context, sessionID int64) ([]StepResult, error)

	// OverallResults returns, per step, the highest-precedence result over
	// the trainee's non-canceled sessions (see Outranks).
	OverallResults(ctx context.Context, traineeID int64) (OverallMap, error)

	// Toggle applies ApplyToggle atomically and returns the new is_passed.
	Toggle(ctx context.Context, sessionID, stepID, actorID int64, at time.Time) (bool, error)

	// SaveMedia applies ApplyMedia atomically.
	SaveMedia(ctx context.Context, sessionID, stepID, actorID int64, mediaRef string, at time.Time) error
}
