package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/internship-hub/internal/domain/progress"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progress.Repository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// SessionResults returns all step results of one session.
func (r *ProgressRepository) SessionResults(ctx context.Context, sessionID int64) ([]progress.StepResult, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT session_id, step_id, is_passed, checked_at, checked_by, media_ref
		FROM step_results
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session results: %w", err)
	}
	defer rows.Close()

	var results []progress.StepResult
	for rows.Next() {
		var res progress.StepResult
		if err := rows.Scan(&res.SessionID, &res.StepID, &res.IsPassed, &res.CheckedAt, &res.CheckedBy, &res.MediaRef); err != nil {
			return nil, fmt.Errorf("failed to scan step result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// OverallResults picks one row per step over non-canceled sessions. The
// ORDER BY matches progress.Outranks.
func (r *ProgressRepository) OverallResults(ctx context.Context, traineeID int64) (progress.OverallMap, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT DISTINCT ON (r.step_id)
			r.step_id, r.session_id, r.is_passed, r.checked_at, r.checked_by
		FROM step_results r
		JOIN sessions s ON s.id = r.session_id
		WHERE s.trainee_id = $1 AND NOT s.is_canceled
		ORDER BY r.step_id, r.is_passed DESC, r.checked_at DESC NULLS LAST, r.session_id DESC
	`, traineeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall results: %w", err)
	}
	defer rows.Close()

	m := make(progress.OverallMap)
	for rows.Next() {
		var stepID int64
		var mark progress.OverallMark
		if err := rows.Scan(&stepID, &mark.SessionID, &mark.IsPassed, &mark.CheckedAt, &mark.CheckedBy); err != nil {
			return nil, fmt.Errorf("failed to scan overall result: %w", err)
		}
		m[stepID] = mark
	}
	return m, rows.Err()
}

// Toggle is a single upsert: insert as passed, or flip the existing row and
// set or clear the checker fields. Old-row values are read in the SET list.
func (r *ProgressRepository) Toggle(ctx context.Context, sessionID, stepID, actorID int64, at time.Time) (bool, error) {
	var passed bool
	err := r.conn.QueryRow(ctx, `
		INSERT INTO step_results (session_id, step_id, is_passed, checked_at, checked_by)
		VALUES ($1, $2, TRUE, $4, $3)
		ON CONFLICT (session_id, step_id) DO UPDATE SET
			is_passed  = NOT step_results.is_passed,
			checked_at = CASE WHEN step_results.is_passed THEN NULL ELSE EXCLUDED.checked_at END,
			checked_by = CASE WHEN step_results.is_passed THEN NULL ELSE EXCLUDED.checked_by END
		RETURNING is_passed
	`, sessionID, stepID, actorID, at).Scan(&passed)
	if err != nil {
		return false, mapResultError("Toggle", err)
	}
	return passed, nil
}

// SaveMedia upserts a passed row with the media reference.
func (r *ProgressRepository) SaveMedia(ctx context.Context, sessionID, stepID, actorID int64, mediaRef string, at time.Time) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO step_results (session_id, step_id, is_passed, checked_at, checked_by, media_ref)
		VALUES ($1, $2, TRUE, $4, $3, $5)
		ON CONFLICT (session_id, step_id) DO UPDATE SET
			is_passed  = TRUE,
			checked_at = EXCLUDED.checked_at,
			checked_by = EXCLUDED.checked_by,
			media_ref  = EXCLUDED.media_ref
	`, sessionID, stepID, actorID, at, mediaRef)
	if err != nil {
		return mapResultError("SubmitMedia", err)
	}
	return nil
}

func mapResultError(op string, err error) error {
	if IsForeignKeyViolation(err) {
		return shared.WrapError("progress", op, shared.ErrNotFound, "session or step not found", err)
	}
	return fmt.Errorf("failed to write step result: %w", err)
}
