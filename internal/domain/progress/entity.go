// Package progress computes per-session and cumulative step completion.
// This is a pure domain layer with zero external dependencies.
package progress

import (
	"math"
	"time"
)

// StepResult is the completion record of one step within one session.
// (SessionID, StepID) is unique.
type StepResult struct {
	SessionID int64
	StepID    int64
	IsPassed  bool
	CheckedAt *time.Time
	CheckedBy *int64
	MediaRef  *string
}

// Mark is the state of one step as seen by a progress map.
type Mark struct {
	IsPassed  bool
	CheckedAt *time.Time
	CheckedBy *int64
}

// OverallMark is a Mark together with the session that produced it.
type OverallMark struct {
	Mark
	SessionID int64
}

// Passer reports whether a step counts as passed.
type Passer interface {
	Passed(stepID int64) bool
}

// SessionMap is the exact state of one session. Absent entries mean the step
// was not attempted in that session.
type SessionMap map[int64]Mark

// Passed implements Passer.
func (m SessionMap) Passed(stepID int64) bool {
	return m[stepID].IsPassed
}

// OverallMap is the cumulative state of a trainee over all non-canceled sessions.
type OverallMap map[int64]OverallMark

// Passed implements Passer.
func (m OverallMap) Passed(stepID int64) bool {
	return m[stepID].IsPassed
}

// NewSessionMap builds a session map from the rows of one session.
func NewSessionMap(results []StepResult) SessionMap {
	m := make(SessionMap, len(results))
	for _, r := range results {
		m[r.StepID] = Mark{IsPassed: r.IsPassed, CheckedAt: r.CheckedAt, CheckedBy: r.CheckedBy}
	}
	return m
}

// Outranks reports whether a takes precedence over b for the same step.
// Passed beats not passed; then the later checked_at wins (unset is oldest);
// exact ties go to the larger session ID.
func Outranks(a, b OverallMark) bool {
	if a.IsPassed != b.IsPassed {
		return a.IsPassed
	}
	switch {
	case a.CheckedAt == nil && b.CheckedAt != nil:
		return false
	case a.CheckedAt != nil && b.CheckedAt == nil:
		return true
	case a.CheckedAt != nil && b.CheckedAt != nil && !a.CheckedAt.Equal(*b.CheckedAt):
		return a.CheckedAt.After(*b.CheckedAt)
	}
	return a.SessionID > b.SessionID
}

// BuildOverall selects, per step, the highest-precedence result. Callers must
// pass only results of non-canceled sessions.
func BuildOverall(results []StepResult) OverallMap {
	m := make(OverallMap)
	for _, r := range results {
		candidate := OverallMark{
			Mark:      Mark{IsPassed: r.IsPassed, CheckedAt: r.CheckedAt, CheckedBy: r.CheckedBy},
			SessionID: r.SessionID,
		}
		current, ok := m[r.StepID]
		if !ok || Outranks(candidate, current) {
			m[r.StepID] = candidate
		}
	}
	return m
}

// Summary is a done/total rollup.
type Summary struct {
	Done    int `json:"done"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Rollup counts passed steps among stepIDs.
func Rollup(p Passer, stepIDs []int64) Summary {
	done := 0
	for _, id := range stepIDs {
		if p.Passed(id) {
			done++
		}
	}
	return NewSummary(done, len(stepIDs))
}

// NewSummary computes percent = round(done*100/total), 0 for an empty total.
func NewSummary(done, total int) Summary {
	s := Summary{Done: done, Total: total}
	if total > 0 {
		s.Percent = int(math.Round(float64(done) * 100 / float64(total)))
	}
	return s
}

// ApplyToggle returns the row after a toggle. A missing row becomes passed;
// an existing row flips, setting checker fields when it becomes passed and
// clearing them otherwise.
func ApplyToggle(existing *StepResult, sessionID, stepID, actorID int64, now time.Time) StepResult {
	if existing == nil {
		return StepResult{
			SessionID: sessionID,
			StepID:    stepID,
			IsPassed:  true,
			CheckedAt: &now,
			CheckedBy: &actorID,
		}
	}
	next := *existing
	next.IsPassed = !existing.IsPassed
	if next.IsPassed {
		next.CheckedAt = &now
		next.CheckedBy = &actorID
	} else {
		next.CheckedAt = nil
		next.CheckedBy = nil
	}
	return next
}

// ApplyMedia returns the row after a media submission: always passed.
func ApplyMedia(existing *StepResult, sessionID, stepID, actorID int64, mediaRef string, now time.Time) StepResult {
	next := StepResult{SessionID: sessionID, StepID: stepID}
	if existing != nil {
		next = *existing
	}
	next.IsPassed = true
	next.CheckedAt = &now
	next.CheckedBy = &actorID
	next.MediaRef = &mediaRef
	return next
}
