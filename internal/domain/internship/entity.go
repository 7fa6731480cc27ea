// Package internship contains trainees and their day-by-day training sessions.
// This is a pure domain layer with zero external dependencies.
package internship

import (
	"strings"
	"time"
)

// StaffStatus is the employment status of a user.
type StaffStatus string

const (
	StaffStatusTrainee   StaffStatus = "trainee"
	StaffStatusEmployee  StaffStatus = "employee"
	StaffStatusDismissed StaffStatus = "dismissed"
)

// Trainee is the subset of a user record the tracker works with.
type Trainee struct {
	ID          int64
	FullName    string
	StaffStatus StaffStatus

	// InternDaysCompleted is the high-water mark of finished day numbers.
	// It never decreases.
	InternDaysCompleted int

	// Set once at first training completion and never overwritten.
	TrainingCompletedAt            *time.Time
	TrainingTotalStepsAtCompletion *int

	// Link to the external scheduling system and the plan known for it.
	CandidateID         *int64
	PlannedTradePointID *int64
	MentorID            *int64
}

// IsTrainee checks if the user may start training sessions.
func (t *Trainee) IsTrainee() bool {
	return t.StaffStatus == StaffStatusTrainee
}

// NextDayNumber returns the day number of the next session.
func (t *Trainee) NextDayNumber() int {
	return t.InternDaysCompleted + 1
}

// IsTrainingCompleted reports whether the frozen snapshot has been taken.
func (t *Trainee) IsTrainingCompleted() bool {
	return t.TrainingCompletedAt != nil
}

// Denominator returns the step count to measure the trainee against: the
// frozen snapshot after completion, otherwise the live catalog size.
func (t *Trainee) Denominator(liveTotal int) int {
	if t.TrainingTotalStepsAtCompletion != nil {
		return *t.TrainingTotalStepsAtCompletion
	}
	return liveTotal
}

// SessionState is the lifecycle state of a session.
type SessionState string

const (
	SessionStateActive   SessionState = "active"
	SessionStateFinished SessionState = "finished"
	SessionStateCanceled SessionState = "canceled"
)

// Session is one day of training for one trainee.
type Session struct {
	ID           int64
	TraineeID    int64
	DayNumber    int
	StartedAt    time.Time
	FinishedAt   *time.Time
	StartedBy    int64
	TradePointID int64
	WasLate      bool
	IsCanceled   bool
	Comment      *string
	Issues       *string
}

// IsActive reports finished_at IS NULL AND is_canceled = false.
func (s *Session) IsActive() bool {
	return s.FinishedAt == nil && !s.IsCanceled
}

// State returns the lifecycle state. Canceled wins over finished.
func (s *Session) State() SessionState {
	switch {
	case s.IsCanceled:
		return SessionStateCanceled
	case s.FinishedAt != nil:
		return SessionStateFinished
	default:
		return SessionStateActive
	}
}

// Duration returns the session length, up to now for an active session.
func (s *Session) Duration(now time.Time) time.Duration {
	if s.FinishedAt != nil {
		return s.FinishedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// FinishNotes are optional free-text notes stored when a session is finished.
type FinishNotes struct {
	Issues  *string
	Comment *string
}

// NewFinishNotes trims both texts and drops the empty ones.
func NewFinishNotes(issues, comment string) FinishNotes {
	return FinishNotes{Issues: nonEmpty(issues), Comment: nonEmpty(comment)}
}

// IsEmpty reports whether there is nothing to store.
func (n FinishNotes) IsEmpty() bool {
	return n.Issues == nil && n.Comment == nil
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
