package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/progress"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERIES
// Per-session state, the cumulative overall state of a trainee, and the
// trainee summary measured against the frozen denominator when present.
// ══════════════════════════════════════════════════════════════════════════════

// PartProgress is the rollup of one part.
type PartProgress struct {
	PartID  int64            `json:"part_id"`
	Title   string           `json:"title"`
	Summary progress.Summary `json:"summary"`
}

// SessionProgress is the state of one session with its rollup over the
// live catalog.
type SessionProgress struct {
	Session *internship.Session
	Marks   progress.SessionMap
	Summary progress.Summary
}

// TraineeProgress is the cumulative progress of a trainee.
type TraineeProgress struct {
	TraineeID           int64
	InternDaysCompleted int
	TrainingCompleted   bool

	// Frozen is true when Overall is measured against the snapshot taken at
	// training completion instead of the live catalog size.
	Frozen  bool
	Overall progress.Summary
	Parts   []PartProgress
	Marks   progress.OverallMap
}

// GetProgressHandler serves progress reads.
type GetProgressHandler struct {
	progress   progress.Repository
	internship internship.Repository
	tree       *GetCurriculumTreeHandler
	logger     *slog.Logger
}

// NewGetProgressHandler creates a new GetProgressHandler.
func NewGetProgressHandler(
	progressRepo progress.Repository,
	internshipRepo internship.Repository,
	tree *GetCurriculumTreeHandler,
	logger *slog.Logger,
) *GetProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetProgressHandler{
		progress:   progressRepo,
		internship: internshipRepo,
		tree:       tree,
		logger:     logger.With("handler", "get_progress"),
	}
}

// SessionMap returns the exact state of one session. Absent steps were not
// attempted in it.
func (h *GetProgressHandler) SessionMap(ctx context.Context, sessionID int64) (progress.SessionMap, error) {
	if _, err := h.internship.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("session_map: %w", shared.Persistence("GetSession", err))
	}
	results, err := h.progress.SessionResults(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session_map: %w", shared.Persistence("SessionResults", err))
	}
	return progress.NewSessionMap(results), nil
}

// OverallMap returns the cumulative state over non-canceled sessions.
func (h *GetProgressHandler) OverallMap(ctx context.Context, traineeID int64) (progress.OverallMap, error) {
	if _, err := h.internship.GetTrainee(ctx, traineeID); err != nil {
		return nil, fmt.Errorf("overall_map: %w", shared.Persistence("GetTrainee", err))
	}
	m, err := h.progress.OverallResults(ctx, traineeID)
	if err != nil {
		return nil, fmt.Errorf("overall_map: %w", shared.Persistence("OverallResults", err))
	}
	return m, nil
}

// Session returns one session with its marks and rollup.
func (h *GetProgressHandler) Session(ctx context.Context, sessionID int64) (*SessionProgress, error) {
	session, err := h.internship.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session_progress: %w", shared.Persistence("GetSession", err))
	}
	results, err := h.progress.SessionResults(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session_progress: %w", shared.Persistence("SessionResults", err))
	}
	tree, err := h.tree.Handle(ctx)
	if err != nil {
		return nil, fmt.Errorf("session_progress: %w", err)
	}

	marks := progress.NewSessionMap(results)
	return &SessionProgress{
		Session: session,
		Marks:   marks,
		Summary: progress.Rollup(marks, tree.StepIDs()),
	}, nil
}

// Trainee returns the cumulative progress of a trainee with per-part rollups.
func (h *GetProgressHandler) Trainee(ctx context.Context, traineeID int64) (*TraineeProgress, error) {
	trainee, err := h.internship.GetTrainee(ctx, traineeID)
	if err != nil {
		return nil, fmt.Errorf("trainee_progress: %w", shared.Persistence("GetTrainee", err))
	}
	marks, err := h.progress.OverallResults(ctx, traineeID)
	if err != nil {
		return nil, fmt.Errorf("trainee_progress: %w", shared.Persistence("OverallResults", err))
	}
	tree, err := h.tree.Handle(ctx)
	if err != nil {
		return nil, fmt.Errorf("trainee_progress: %w", err)
	}

	return &TraineeProgress{
		TraineeID:           trainee.ID,
		InternDaysCompleted: trainee.InternDaysCompleted,
		TrainingCompleted:   trainee.IsTrainingCompleted(),
		Frozen:              trainee.TrainingTotalStepsAtCompletion != nil,
		Overall:             OverallSummary(trainee, marks, tree),
		Parts:               PartSummaries(marks, tree),
		Marks:               marks,
	}, nil
}

// OverallSummary rolls up the trainee over the live catalog, or over the
// frozen step count after training completion. Done is capped at the
// denominator so percent never exceeds 100.
func OverallSummary(trainee *internship.Trainee, marks progress.Passer, tree curriculum.Tree) progress.Summary {
	live := progress.Rollup(marks, tree.StepIDs())
	total := trainee.Denominator(live.Total)
	if total == live.Total {
		return live
	}
	return progress.NewSummary(min(live.Done, total), total)
}

// PartSummaries rolls up every part in display order.
func PartSummaries(marks progress.Passer, tree curriculum.Tree) []PartProgress {
	out := make([]PartProgress, 0, len(tree))
	for _, p := range tree {
		out = append(out, PartProgress{
			PartID:  p.ID,
			Title:   p.Title,
			Summary: progress.Rollup(marks, p.StepIDs()),
		})
	}
	return out
}
