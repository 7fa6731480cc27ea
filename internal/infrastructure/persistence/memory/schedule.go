package memory

import (
	"context"
	"sort"

	"github.com/alem-hub/internship-hub/internal/domain/outbox"
	"github.com/alem-hub/internship-hub/internal/domain/schedule"
)

// ScheduleRepository implements schedule.Repository.
type ScheduleRepository struct {
	s *Store
}

var _ schedule.Repository = (*ScheduleRepository)(nil)

// FindPlanned returns the candidate's planned records, earliest first.
func (r *ScheduleRepository) FindPlanned(_ context.Context, candidateID int64) ([]*schedule.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*schedule.Record
	for _, rec := range r.s.records {
		if rec.CandidateID == candidateID && rec.Status == schedule.StatusPlanned {
			out = append(out, ptr(rec))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PlannedDate.Equal(out[j].PlannedDate) {
			return out[i].PlannedDate.Before(out[j].PlannedDate)
		}
		if out[i].PlannedTimeFrom != out[j].PlannedTimeFrom {
			return out[i].PlannedTimeFrom < out[j].PlannedTimeFrom
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FindBySession returns the newest record linked to a session.
func (r *ScheduleRepository) FindBySession(_ context.Context, sessionID int64) (*schedule.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := len(r.s.records) - 1; i >= 0; i-- {
		rec := r.s.records[i]
		if rec.SessionID != nil && *rec.SessionID == sessionID {
			return ptr(rec), nil
		}
	}
	return nil, schedule.ErrRecordNotFound
}

// Create stores a new record.
func (r *ScheduleRepository) Create(_ context.Context, rec schedule.Record) (*schedule.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec.ID = r.s.id()
	r.s.records = append(r.s.records, rec)
	return &rec, nil
}

// Update overwrites a record.
func (r *ScheduleRepository) Update(_ context.Context, rec *schedule.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.records {
		if r.s.records[i].ID == rec.ID {
			r.s.records[i] = *rec
			return nil
		}
	}
	return schedule.ErrRecordNotFound
}

// OutboxRepository implements outbox.Repository.
type OutboxRepository struct {
	s *Store
}

var _ outbox.Repository = (*OutboxRepository)(nil)

// Append stores one event.
func (r *OutboxRepository) Append(_ context.Context, e outbox.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, e)
	return nil
}
