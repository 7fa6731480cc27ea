package command_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alem-hub/internship-hub/internal/application/command"
	"github.com/alem-hub/internship-hub/internal/application/query"
	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/outbox"
	"github.com/alem-hub/internship-hub/internal/infrastructure/messaging"
	"github.com/alem-hub/internship-hub/internal/infrastructure/persistence/memory"
)

const (
	traineeID = int64(1000)
	trainerID = int64(2000)
	pointID   = int64(3000)
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// env wires every handler to one in-memory store.
type env struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	clock *fakeClock
	deps  command.LifecycleDeps

	start    *command.StartInternshipHandler
	finish   *command.FinishInternshipHandler
	cancel   *command.CancelInternshipHandler
	complete *command.CompleteTrainingHandler
	steps    *command.RecordStepHandler
	catalog  *command.CurriculumHandler
	tree     *query.GetCurriculumTreeHandler
	progress *query.GetProgressHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		t:     t,
		ctx:   context.Background(),
		store: memory.NewStore(),
		clock: &fakeClock{now: time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)},
	}
	publisher := messaging.NewOutboxPublisher(e.store.Outbox(), discard).WithClock(e.clock.Now)
	e.deps = command.LifecycleDeps{
		Internship:  e.store.Internship(),
		Publisher:   publisher,
		Destination: "hr_system",
		Logger:      discard,
		Now:         e.clock.Now,
	}
	e.rewire()
	e.store.PutTrainee(internship.Trainee{ID: traineeID, FullName: "Aigerim", StaffStatus: internship.StaffStatusTrainee})
	return e
}

// rewire rebuilds the handlers after deps were changed.
func (e *env) rewire() {
	e.start = command.NewStartInternshipHandler(e.deps)
	e.finish = command.NewFinishInternshipHandler(e.deps)
	e.cancel = command.NewCancelInternshipHandler(e.deps)
	e.complete = command.NewCompleteTrainingHandler(e.deps, e.store.Curriculum())
	e.steps = command.NewRecordStepHandler(e.store.Progress(), e.store.Curriculum(), e.store.Internship(), discard, e.clock.Now)
	e.catalog = command.NewCurriculumHandler(e.store.Curriculum(), nil, discard)
	e.tree = query.NewGetCurriculumTreeHandler(e.store.Curriculum(), nil, time.Minute, discard)
	e.progress = query.NewGetProgressHandler(e.store.Progress(), e.store.Internship(), e.tree, discard)
}

// seedSteps creates one part with one section holding n steps of kind.
func (e *env) seedSteps(n int, kind curriculum.StepKind) []int64 {
	e.t.Helper()
	part, err := e.catalog.CreatePart(e.ctx, command.CreatePartCommand{Title: fmt.Sprintf("Part %d", e.clock.now.UnixNano())})
	require.NoError(e.t, err)
	sec, err := e.catalog.CreateSection(e.ctx, command.CreateSectionCommand{PartID: part.ID, Title: "Section"})
	require.NoError(e.t, err)

	ids := make([]int64, 0, n)
	for i := range n {
		st, err := e.catalog.CreateStep(e.ctx, command.CreateStepCommand{
			SectionID: sec.ID,
			Title:     fmt.Sprintf("Step %d", i+1),
			Kind:      string(kind),
		})
		require.NoError(e.t, err)
		ids = append(ids, st.ID)
	}
	return ids
}

func (e *env) startSession() *internship.Session {
	e.t.Helper()
	res, err := e.start.Handle(e.ctx, command.StartInternshipCommand{
		TraineeID:    traineeID,
		TrainerID:    trainerID,
		TradePointID: pointID,
	})
	require.NoError(e.t, err)
	return res.Session
}

func (e *env) pass(sessionID int64, stepIDs ...int64) {
	e.t.Helper()
	for _, id := range stepIDs {
		res, err := e.steps.Toggle(e.ctx, command.ToggleStepCommand{SessionID: sessionID, StepID: id, ActorID: trainerID})
		require.NoError(e.t, err)
		require.True(e.t, res.IsPassed)
	}
}

func (e *env) overallPercent() int {
	e.t.Helper()
	p, err := e.progress.Trainee(e.ctx, traineeID)
	require.NoError(e.t, err)
	return p.Overall.Percent
}

func (e *env) eventTypes() []outbox.EventType {
	var out []outbox.EventType
	for _, ev := range e.store.Events() {
		out = append(out, ev.EventType)
	}
	return out
}

var errBoom = errors.New("boom")

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, string, outbox.EventType, any) error {
	p.calls++
	return errBoom
}

type failingSync struct{ starts, finishes int }

func (s *failingSync) OnStart(context.Context, *internship.Trainee, *internship.Session) error {
	s.starts++
	return errBoom
}

func (s *failingSync) OnFinish(context.Context, *internship.Trainee, *internship.Session, time.Time) error {
	s.finishes++
	return errBoom
}

// flakyAdvance fails the first AdvanceInternDays call.
type flakyAdvance struct {
	internship.Repository
	failed bool
}

func (r *flakyAdvance) AdvanceInternDays(ctx context.Context, traineeID int64, dayNumber int) error {
	if !r.failed {
		r.failed = true
		return errBoom
	}
	return r.Repository.AdvanceInternDays(ctx, traineeID, dayNumber)
}
