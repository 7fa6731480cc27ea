package http

import (
	"sort"
	"time"

	"github.com/alem-hub/internship-hub/internal/application/query"
	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// CURRICULUM VIEWS
// ══════════════════════════════════════════════════════════════════════════════

type partView struct {
	ID         int64          `json:"id"`
	Title      string         `json:"title"`
	OrderIndex int            `json:"order_index"`
	Sections   []*sectionView `json:"sections"`
}

type sectionView struct {
	ID            int64       `json:"id"`
	PartID        int64       `json:"part_id"`
	Title         string      `json:"title"`
	OrderIndex    int         `json:"order_index"`
	ReferenceLink *string     `json:"reference_link,omitempty"`
	DurationDays  *int        `json:"duration_days,omitempty"`
	Steps         []*stepView `json:"steps"`
}

type stepView struct {
	ID                     int64   `json:"id"`
	PartID                 int64   `json:"part_id"`
	SectionID              int64   `json:"section_id"`
	Title                  string  `json:"title"`
	Kind                   string  `json:"kind"`
	OrderIndex             int     `json:"order_index"`
	ReferenceLink          *string `json:"reference_link,omitempty"`
	PlannedDurationMinutes *int    `json:"planned_duration_minutes,omitempty"`
}

func presentPart(p *curriculum.Part) *partView {
	v := &partView{
		ID:         p.ID,
		Title:      p.Title,
		OrderIndex: p.OrderIndex,
		Sections:   make([]*sectionView, 0, len(p.Sections)),
	}
	for _, s := range p.Sections {
		v.Sections = append(v.Sections, presentSection(s))
	}
	return v
}

func presentSection(s *curriculum.Section) *sectionView {
	v := &sectionView{
		ID:            s.ID,
		PartID:        s.PartID,
		Title:         s.Title,
		OrderIndex:    s.OrderIndex,
		ReferenceLink: s.ReferenceLink,
		DurationDays:  s.DurationDays,
		Steps:         make([]*stepView, 0, len(s.Steps)),
	}
	for _, st := range s.Steps {
		v.Steps = append(v.Steps, presentStep(st))
	}
	return v
}

func presentStep(s *curriculum.Step) *stepView {
	return &stepView{
		ID:                     s.ID,
		PartID:                 s.PartID,
		SectionID:              s.SectionID,
		Title:                  s.Title,
		Kind:                   string(s.Kind),
		OrderIndex:             s.OrderIndex,
		ReferenceLink:          s.ReferenceLink,
		PlannedDurationMinutes: s.PlannedDurationMinutes,
	}
}

func presentTree(tree curriculum.Tree) []*partView {
	out := make([]*partView, 0, len(tree))
	for _, p := range tree {
		out = append(out, presentPart(p))
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION AND PROGRESS VIEWS
// ══════════════════════════════════════════════════════════════════════════════

type sessionView struct {
	ID           int64      `json:"id"`
	TraineeID    int64      `json:"trainee_id"`
	DayNumber    int        `json:"day_number"`
	State        string     `json:"state"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	StartedBy    int64      `json:"started_by"`
	TradePointID int64      `json:"trade_point_id"`
	WasLate      bool       `json:"was_late"`
	IsCanceled   bool       `json:"is_canceled"`
	Comment      *string    `json:"comment,omitempty"`
	Issues       *string    `json:"issues,omitempty"`
}

func presentSession(s *internship.Session) *sessionView {
	if s == nil {
		return nil
	}
	return &sessionView{
		ID:           s.ID,
		TraineeID:    s.TraineeID,
		DayNumber:    s.DayNumber,
		State:        string(s.State()),
		StartedAt:    s.StartedAt,
		FinishedAt:   s.FinishedAt,
		StartedBy:    s.StartedBy,
		TradePointID: s.TradePointID,
		WasLate:      s.WasLate,
		IsCanceled:   s.IsCanceled,
		Comment:      s.Comment,
		Issues:       s.Issues,
	}
}

type markView struct {
	StepID    int64      `json:"step_id"`
	IsPassed  bool       `json:"is_passed"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	CheckedBy *int64     `json:"checked_by,omitempty"`
	SessionID int64      `json:"session_id,omitempty"`
}

func presentSessionMarks(m progress.SessionMap) []markView {
	out := make([]markView, 0, len(m))
	for stepID, mark := range m {
		out = append(out, markView{
			StepID:    stepID,
			IsPassed:  mark.IsPassed,
			CheckedAt: mark.CheckedAt,
			CheckedBy: mark.CheckedBy,
		})
	}
	sortMarks(out)
	return out
}

func presentOverallMarks(m progress.OverallMap) []markView {
	out := make([]markView, 0, len(m))
	for stepID, mark := range m {
		out = append(out, markView{
			StepID:    stepID,
			IsPassed:  mark.IsPassed,
			CheckedAt: mark.CheckedAt,
			CheckedBy: mark.CheckedBy,
			SessionID: mark.SessionID,
		})
	}
	sortMarks(out)
	return out
}

func sortMarks(marks []markView) {
	sort.Slice(marks, func(i, j int) bool { return marks[i].StepID < marks[j].StepID })
}

type sessionProgressView struct {
	Session *sessionView     `json:"session"`
	Summary progress.Summary `json:"summary"`
	Marks   []markView       `json:"marks"`
}

func presentSessionProgress(p *query.SessionProgress) *sessionProgressView {
	return &sessionProgressView{
		Session: presentSession(p.Session),
		Summary: p.Summary,
		Marks:   presentSessionMarks(p.Marks),
	}
}

type traineeProgressView struct {
	TraineeID           int64                `json:"trainee_id"`
	InternDaysCompleted int                  `json:"intern_days_completed"`
	TrainingCompleted   bool                 `json:"training_completed"`
	Frozen              bool                 `json:"frozen"`
	Overall             progress.Summary     `json:"overall"`
	Parts               []query.PartProgress `json:"parts"`
	Marks               []markView           `json:"marks"`
}

func presentTraineeProgress(p *query.TraineeProgress) *traineeProgressView {
	return &traineeProgressView{
		TraineeID:           p.TraineeID,
		InternDaysCompleted: p.InternDaysCompleted,
		TrainingCompleted:   p.TrainingCompleted,
		Frozen:              p.Frozen,
		Overall:             p.Overall,
		Parts:               p.Parts,
		Marks:               presentOverallMarks(p.Marks),
	}
}
