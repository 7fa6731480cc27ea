// Package outbox contains lifecycle notifications queued for asynchronous,
// at-least-once delivery to external systems. Delivery is done by a separate
// relay that must tolerate duplicates.
package outbox

import (
	"context"
	"encoding/json"
	"time"
)

// EventType is the kind of lifecycle notification.
type EventType string

const (
	EventInternshipStarted  EventType = "internship_started"
	EventInternshipFinished EventType = "internship_finished"
)

// Event is one immutable outbox row.
type Event struct {
	ID          string
	Destination string
	EventType   EventType
	Payload     json.RawMessage
	DedupeKey   string
	CreatedAt   time.Time
}

// Repository appends events. Rows are never updated by this service.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Publisher enqueues a notification. Implementations build the row (ID,
// dedupe key, timestamp) from the payload.
type Publisher interface {
	Publish(ctx context.Context, destination string, eventType EventType, payload any) error
}

// InternshipPayload is the body of started/finished notifications.
type InternshipPayload struct {
	TraineeID         int64      `json:"trainee_id"`
	SessionID         int64      `json:"session_id"`
	DayNumber         int        `json:"day_number"`
	TradePointID      int64      `json:"trade_point_id"`
	StartedBy         int64      `json:"started_by"`
	WasLate           bool       `json:"was_late"`
	StartedAt         time.Time  `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	CandidateID       *int64     `json:"candidate_id,omitempty"`
	TrainingCompleted bool       `json:"training_completed,omitempty"`
}
