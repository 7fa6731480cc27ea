package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// INTERNSHIP REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// InternshipRepository implements internship.Repository for PostgreSQL.
type InternshipRepository struct {
	conn *Connection
}

// NewInternshipRepository creates a new InternshipRepository.
func NewInternshipRepository(conn *Connection) *InternshipRepository {
	return &InternshipRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Trainees
// ─────────────────────────────────────────────────────────────────────────────

// GetTrainee returns a trainee by user ID.
func (r *InternshipRepository) GetTrainee(ctx context.Context, id int64) (*internship.Trainee, error) {
	var t internship.Trainee
	var status string
	err := r.conn.QueryRow(ctx, `
		SELECT id, full_name, staff_status, intern_days_completed,
			   training_completed_at, training_total_steps_at_completion,
			   candidate_id, planned_trade_point_id, mentor_id
		FROM trainees
		WHERE id = $1
	`, id).Scan(
		&t.ID, &t.FullName, &status, &t.InternDaysCompleted,
		&t.TrainingCompletedAt, &t.TrainingTotalStepsAtCompletion,
		&t.CandidateID, &t.PlannedTradePointID, &t.MentorID,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrTraineeNotFound
		}
		return nil, fmt.Errorf("failed to get trainee: %w", err)
	}
	t.StaffStatus = internship.StaffStatus(status)
	return &t, nil
}

// AdvanceInternDays raises the completed-days counter, never lowering it.
func (r *InternshipRepository) AdvanceInternDays(ctx context.Context, traineeID int64, dayNumber int) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE trainees
		SET intern_days_completed = GREATEST(intern_days_completed, $2)
		WHERE id = $1
	`, traineeID, dayNumber)
	if err != nil {
		return fmt.Errorf("failed to advance intern days: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrTraineeNotFound
	}
	return nil
}

// FreezeTrainingCompletion stores the snapshot only if it is unset.
func (r *InternshipRepository) FreezeTrainingCompletion(ctx context.Context, traineeID int64, at time.Time, totalSteps int) (bool, error) {
	tag, err := r.conn.Exec(ctx, `
		UPDATE trainees
		SET training_completed_at = $2,
			training_total_steps_at_completion = $3
		WHERE id = $1
		  AND training_completed_at IS NULL
		  AND training_total_steps_at_completion IS NULL
	`, traineeID, at, totalSteps)
	if err != nil {
		return false, fmt.Errorf("failed to freeze training completion: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

const sessionColumns = `id, trainee_id, day_number, started_at, finished_at, started_by,
	trade_point_id, was_late, is_canceled, comment, issues`

func scanSession(row pgx.Row) (*internship.Session, error) {
	var s internship.Session
	err := row.Scan(&s.ID, &s.TraineeID, &s.DayNumber, &s.StartedAt, &s.FinishedAt, &s.StartedBy,
		&s.TradePointID, &s.WasLate, &s.IsCanceled, &s.Comment, &s.Issues)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession returns a session by ID.
func (r *InternshipRepository) GetSession(ctx context.Context, id int64) (*internship.Session, error) {
	s, err := scanSession(r.conn.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// GetActiveSession returns the trainee's active session.
func (r *InternshipRepository) GetActiveSession(ctx context.Context, traineeID int64) (*internship.Session, error) {
	s, err := scanSession(r.conn.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE trainee_id = $1 AND finished_at IS NULL AND NOT is_canceled
		ORDER BY started_at DESC
		LIMIT 1
	`, traineeID))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return s, nil
}

// ListSessions returns the trainee's sessions, newest first.
func (r *InternshipRepository) ListSessions(ctx context.Context, traineeID int64) ([]*internship.Session, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE trainee_id = $1
		ORDER BY started_at DESC, id DESC
	`, traineeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*internship.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CreateSession stores a new active session. The partial unique index
// rejects a second active session for the same trainee.
func (r *InternshipRepository) CreateSession(ctx context.Context, s internship.Session) (*internship.Session, error) {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO sessions (trainee_id, day_number, started_at, started_by, trade_point_id, was_late)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, s.TraineeID, s.DayNumber, s.StartedAt, s.StartedBy, s.TradePointID, s.WasLate).Scan(&s.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, shared.ErrSessionAlreadyActive
		}
		if IsForeignKeyViolation(err) {
			return nil, shared.ErrTraineeNotFound
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.FinishedAt = nil
	s.IsCanceled = false
	return &s, nil
}

// FinishSession closes an active session. Notes are written only when set.
func (r *InternshipRepository) FinishSession(ctx context.Context, id int64, at time.Time, notes internship.FinishNotes) (bool, error) {
	tag, err := r.conn.Exec(ctx, `
		UPDATE sessions
		SET finished_at = $2,
			issues = COALESCE($3, issues),
			comment = COALESCE($4, comment)
		WHERE id = $1 AND finished_at IS NULL AND NOT is_canceled
	`, id, at, notes.Issues, notes.Comment)
	if err != nil {
		return false, fmt.Errorf("failed to finish session: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ForceFinishSession sets finished_at if it is still unset.
func (r *InternshipRepository) ForceFinishSession(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE sessions SET finished_at = COALESCE(finished_at, $2) WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to force finish session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrSessionNotFound
	}
	return nil
}

// CancelSession marks the session canceled and finished.
func (r *InternshipRepository) CancelSession(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE sessions SET is_canceled = TRUE, finished_at = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to cancel session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrSessionNotFound
	}
	return nil
}
