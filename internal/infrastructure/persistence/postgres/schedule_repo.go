package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/internship-hub/internal/domain/schedule"
)

// ScheduleRepository implements schedule.Repository for PostgreSQL.
type ScheduleRepository struct {
	conn *Connection
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(conn *Connection) *ScheduleRepository {
	return &ScheduleRepository{conn: conn}
}

const scheduleColumns = `id, candidate_id, trainee_id, trade_point_id, mentor_id, planned_date,
	planned_time_from, planned_time_to, status, session_id, started_at, finished_at`

func scanRecord(row pgx.Row) (*schedule.Record, error) {
	var rec schedule.Record
	var status string
	err := row.Scan(&rec.ID, &rec.CandidateID, &rec.TraineeID, &rec.TradePointID, &rec.MentorID,
		&rec.PlannedDate, &rec.PlannedTimeFrom, &rec.PlannedTimeTo, &status,
		&rec.SessionID, &rec.StartedAt, &rec.FinishedAt)
	if err != nil {
		return nil, err
	}
	rec.Status = schedule.Status(status)
	return &rec, nil
}

// FindPlanned returns the candidate's planned records, earliest first.
func (r *ScheduleRepository) FindPlanned(ctx context.Context, candidateID int64) ([]*schedule.Record, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+scheduleColumns+`
		FROM schedule_records
		WHERE candidate_id = $1 AND status = 'planned'
		ORDER BY planned_date, planned_time_from, id
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query planned records: %w", err)
	}
	defer rows.Close()

	var records []*schedule.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FindBySession returns the record linked to a session.
func (r *ScheduleRepository) FindBySession(ctx context.Context, sessionID int64) (*schedule.Record, error) {
	rec, err := scanRecord(r.conn.QueryRow(ctx, `
		SELECT `+scheduleColumns+`
		FROM schedule_records
		WHERE session_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, sessionID))
	if err != nil {
		if IsNoRows(err) {
			return nil, schedule.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get schedule record: %w", err)
	}
	return rec, nil
}

// Create stores a new record.
func (r *ScheduleRepository) Create(ctx context.Context, rec schedule.Record) (*schedule.Record, error) {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO schedule_records (
			candidate_id, trainee_id, trade_point_id, mentor_id, planned_date,
			planned_time_from, planned_time_to, status, session_id, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, rec.CandidateID, rec.TraineeID, rec.TradePointID, rec.MentorID, rec.PlannedDate,
		rec.PlannedTimeFrom, rec.PlannedTimeTo, string(rec.Status), rec.SessionID, rec.StartedAt, rec.FinishedAt,
	).Scan(&rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule record: %w", err)
	}
	return &rec, nil
}

// Update overwrites status, links and timestamps.
func (r *ScheduleRepository) Update(ctx context.Context, rec *schedule.Record) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE schedule_records SET
			trainee_id = $2,
			trade_point_id = $3,
			status = $4,
			session_id = $5,
			started_at = $6,
			finished_at = $7
		WHERE id = $1
	`, rec.ID, rec.TraineeID, rec.TradePointID, string(rec.Status), rec.SessionID, rec.StartedAt, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to update schedule record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrRecordNotFound
	}
	return nil
}
