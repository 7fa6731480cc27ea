// Package schedule mirrors the external scheduling record of a candidate's
// training day. The mirror is kept loosely aligned with sessions.
package schedule

import (
	"context"
	"time"

	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// Status of a schedule record.
type Status string

const (
	StatusPlanned  Status = "planned"
	StatusStarted  Status = "started"
	StatusFinished Status = "finished"
)

// ErrRecordNotFound is returned when no record matches.
var ErrRecordNotFound = shared.NewDomainError("schedule", "Find", shared.ErrNotFound, "schedule record not found")

// Record is the external scheduling record.
type Record struct {
	ID              int64
	CandidateID     int64
	TraineeID       *int64
	TradePointID    *int64
	MentorID        *int64
	PlannedDate     time.Time
	PlannedTimeFrom string // "15:04"
	PlannedTimeTo   string // "15:04"
	Status          Status
	SessionID       *int64
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

// MarkStarted links the record to a started session.
func (r *Record) MarkStarted(traineeID, sessionID, tradePointID int64, at time.Time) {
	r.Status = StatusStarted
	r.TraineeID = &traineeID
	r.SessionID = &sessionID
	r.TradePointID = &tradePointID
	r.StartedAt = &at
}

// MarkFinished closes the record. A record that never left "planned" also
// gets the session link and a start time equal to the finish time.
func (r *Record) MarkFinished(traineeID, sessionID int64, at time.Time) {
	if r.StartedAt == nil {
		r.StartedAt = &at
	}
	if r.SessionID == nil {
		r.SessionID = &sessionID
	}
	if r.TraineeID == nil {
		r.TraineeID = &traineeID
	}
	r.Status = StatusFinished
	r.FinishedAt = &at
}

// Repository defines the interface for schedule record persistence.
type Repository interface {
	// FindPlanned returns the candidate's planned records, earliest planned date first.
	FindPlanned(ctx context.Context, candidateID int64) ([]*Record, error)

	// FindBySession returns the record linked to a session or ErrRecordNotFound.
	FindBySession(ctx context.Context, sessionID int64) (*Record, error)

	// Create stores a new record and returns it with its ID.
	Create(ctx context.Context, r Record) (*Record, error)

	// Update overwrites status, links and timestamps of a record.
	Update(ctx context.Context, r *Record) error
}
