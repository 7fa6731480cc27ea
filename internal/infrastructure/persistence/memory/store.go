// Package memory implements every repository port in process memory. It is
// used by tests and by local runs without DATABASE_URL. All repositories of
// one Store share a single lock, so each call is atomic.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/outbox"
	"github.com/alem-hub/internship-hub/internal/domain/progress"
	"github.com/alem-hub/internship-hub/internal/domain/schedule"
)

type resultKey struct {
	sessionID int64
	stepID    int64
}

// Store holds all tables.
type Store struct {
	mu sync.RWMutex

	// importMu is held across a whole import, which takes mu per write.
	importMu sync.Mutex

	parts    map[int64]curriculum.Part
	sections map[int64]curriculum.Section
	steps    map[int64]curriculum.Step

	trainees map[int64]internship.Trainee
	sessions map[int64]internship.Session
	results  map[resultKey]progress.StepResult

	records []schedule.Record
	events  []outbox.Event

	nextID int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		parts:    make(map[int64]curriculum.Part),
		sections: make(map[int64]curriculum.Section),
		steps:    make(map[int64]curriculum.Step),
		trainees: make(map[int64]internship.Trainee),
		sessions: make(map[int64]internship.Session),
		results:  make(map[resultKey]progress.StepResult),
	}
}

// Curriculum returns the curriculum.Repository view of the store.
func (s *Store) Curriculum() *CurriculumRepository { return &CurriculumRepository{s: s} }

// Progress returns the progress.Repository view of the store.
func (s *Store) Progress() *ProgressRepository { return &ProgressRepository{s: s} }

// Internship returns the internship.Repository view of the store.
func (s *Store) Internship() *InternshipRepository { return &InternshipRepository{s: s} }

// Schedule returns the schedule.Repository view of the store.
func (s *Store) Schedule() *ScheduleRepository { return &ScheduleRepository{s: s} }

// Outbox returns the outbox.Repository view of the store.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{s: s} }

// PutTrainee inserts or replaces a trainee. Trainees are owned by the
// surrounding user directory, so there is no create operation in the port.
func (s *Store) PutTrainee(t internship.Trainee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trainees[t.ID] = t
}

// PutScheduleRecord inserts a record as the external scheduler would.
func (s *Store) PutScheduleRecord(r schedule.Record) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.records = append(s.records, r)
	return r.ID
}

// ScheduleRecords returns a copy of all schedule records.
func (s *Store) ScheduleRecords() []schedule.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schedule.Record(nil), s.records...)
}

// Events returns a copy of all outbox rows in append order.
func (s *Store) Events() []outbox.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]outbox.Event(nil), s.events...)
}

// id must be called with the write lock held.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func ptr[T any](v T) *T { return &v }

func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return ptr(*t)
}

func sortedValues[K comparable, V any](m map[K]V, less func(a, b V) bool) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
