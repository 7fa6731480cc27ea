package memory

import (
	"context"
	"sort"
	"time"

	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/progress"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Trainees and sessions
// ─────────────────────────────────────────────────────────────────────────────

// InternshipRepository implements internship.Repository.
type InternshipRepository struct {
	s *Store
}

var _ internship.Repository = (*InternshipRepository)(nil)

// GetTrainee returns a trainee by ID.
func (r *InternshipRepository) GetTrainee(_ context.Context, id int64) (*internship.Trainee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.trainees[id]
	if !ok {
		return nil, shared.ErrTraineeNotFound
	}
	return &t, nil
}

// AdvanceInternDays raises the completed-days counter.
func (r *InternshipRepository) AdvanceInternDays(_ context.Context, traineeID int64, dayNumber int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trainees[traineeID]
	if !ok {
		return shared.ErrTraineeNotFound
	}
	t.InternDaysCompleted = max(t.InternDaysCompleted, dayNumber)
	r.s.trainees[traineeID] = t
	return nil
}

// FreezeTrainingCompletion stores the snapshot only if it is unset.
func (r *InternshipRepository) FreezeTrainingCompletion(_ context.Context, traineeID int64, at time.Time, totalSteps int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trainees[traineeID]
	if !ok {
		return false, shared.ErrTraineeNotFound
	}
	if t.TrainingCompletedAt != nil || t.TrainingTotalStepsAtCompletion != nil {
		return false, nil
	}
	t.TrainingCompletedAt = ptr(at)
	t.TrainingTotalStepsAtCompletion = ptr(totalSteps)
	r.s.trainees[traineeID] = t
	return true, nil
}

// GetSession returns a session by ID.
func (r *InternshipRepository) GetSession(_ context.Context, id int64) (*internship.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	return &sess, nil
}

// GetActiveSession returns the trainee's active session.
func (r *InternshipRepository) GetActiveSession(_ context.Context, traineeID int64) (*internship.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if sess := r.s.activeSession(traineeID); sess != nil {
		return sess, nil
	}
	return nil, shared.ErrSessionNotFound
}

// ListSessions returns the trainee's sessions, newest first.
func (r *InternshipRepository) ListSessions(_ context.Context, traineeID int64) ([]*internship.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*internship.Session
	for _, sess := range r.s.sessions {
		if sess.TraineeID == traineeID {
			out = append(out, ptr(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// CreateSession stores a new active session, rejecting a second active one.
func (r *InternshipRepository) CreateSession(_ context.Context, sess internship.Session) (*internship.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trainees[sess.TraineeID]; !ok {
		return nil, shared.ErrTraineeNotFound
	}
	if r.s.activeSession(sess.TraineeID) != nil {
		return nil, shared.ErrSessionAlreadyActive
	}
	sess.ID = r.s.id()
	sess.FinishedAt = nil
	sess.IsCanceled = false
	r.s.sessions[sess.ID] = sess
	return &sess, nil
}

// FinishSession closes an active session.
func (r *InternshipRepository) FinishSession(_ context.Context, id int64, at time.Time, notes internship.FinishNotes) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || !sess.IsActive() {
		return false, nil
	}
	sess.FinishedAt = ptr(at)
	if notes.Issues != nil {
		sess.Issues = ptr(*notes.Issues)
	}
	if notes.Comment != nil {
		sess.Comment = ptr(*notes.Comment)
	}
	r.s.sessions[id] = sess
	return true, nil
}

// ForceFinishSession sets finished_at if it is unset.
func (r *InternshipRepository) ForceFinishSession(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return shared.ErrSessionNotFound
	}
	if sess.FinishedAt == nil {
		sess.FinishedAt = ptr(at)
	}
	r.s.sessions[id] = sess
	return nil
}

// CancelSession marks the session canceled and finished.
func (r *InternshipRepository) CancelSession(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return shared.ErrSessionNotFound
	}
	sess.IsCanceled = true
	sess.FinishedAt = ptr(at)
	r.s.sessions[id] = sess
	return nil
}

func (s *Store) activeSession(traineeID int64) *internship.Session {
	for _, sess := range s.sessions {
		if sess.TraineeID == traineeID && sess.IsActive() {
			return ptr(sess)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Step results
// ─────────────────────────────────────────────────────────────────────────────

// ProgressRepository implements progress.Repository.
type ProgressRepository struct {
	s *Store
}

var _ progress.Repository = (*ProgressRepository)(nil)

// SessionResults returns all results of one session.
func (r *ProgressRepository) SessionResults(_ context.Context, sessionID int64) ([]progress.StepResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []progress.StepResult
	for k, res := range r.s.results {
		if k.sessionID == sessionID {
			out = append(out, copyResult(res))
		}
	}
	return out, nil
}

// OverallResults builds the overall map over the trainee's non-canceled sessions.
func (r *ProgressRepository) OverallResults(_ context.Context, traineeID int64) (progress.OverallMap, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var rows []progress.StepResult
	for k, res := range r.s.results {
		sess, ok := r.s.sessions[k.sessionID]
		if !ok || sess.TraineeID != traineeID || sess.IsCanceled {
			continue
		}
		rows = append(rows, copyResult(res))
	}
	return progress.BuildOverall(rows), nil
}

// Toggle flips the result of a simple step.
func (r *ProgressRepository) Toggle(_ context.Context, sessionID, stepID, actorID int64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkResultRefs(sessionID, stepID); err != nil {
		return false, err
	}
	key := resultKey{sessionID: sessionID, stepID: stepID}
	var existing *progress.StepResult
	if res, ok := r.s.results[key]; ok {
		existing = &res
	}
	next := progress.ApplyToggle(existing, sessionID, stepID, actorID, at)
	r.s.results[key] = next
	return next.IsPassed, nil
}

// SaveMedia stores a passed result with the media reference.
func (r *ProgressRepository) SaveMedia(_ context.Context, sessionID, stepID, actorID int64, mediaRef string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkResultRefs(sessionID, stepID); err != nil {
		return err
	}
	key := resultKey{sessionID: sessionID, stepID: stepID}
	var existing *progress.StepResult
	if res, ok := r.s.results[key]; ok {
		existing = &res
	}
	r.s.results[key] = progress.ApplyMedia(existing, sessionID, stepID, actorID, mediaRef, at)
	return nil
}

func (s *Store) checkResultRefs(sessionID, stepID int64) error {
	if _, ok := s.sessions[sessionID]; !ok {
		return shared.ErrSessionNotFound
	}
	if _, ok := s.steps[stepID]; !ok {
		return shared.ErrStepNotFound
	}
	return nil
}

func copyResult(r progress.StepResult) progress.StepResult {
	r.CheckedAt = timePtr(r.CheckedAt)
	if r.CheckedBy != nil {
		r.CheckedBy = ptr(*r.CheckedBy)
	}
	if r.MediaRef != nil {
		r.MediaRef = ptr(*r.MediaRef)
	}
	return r
}
