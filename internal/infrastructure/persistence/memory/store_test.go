package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/outbox"
	"github.com/alem-hub/internship-hub/internal/domain/schedule"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

var t0 = time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)

func seedCatalog(t *testing.T, repo *CurriculumRepository) (part *curriculum.Part, sec *curriculum.Section, steps []*curriculum.Step) {
	t.Helper()
	ctx := context.Background()

	part, err := repo.CreatePart(ctx, "Basics")
	require.NoError(t, err)
	sec, err = repo.CreateSection(ctx, curriculum.Section{PartID: part.ID, Title: "Safety"})
	require.NoError(t, err)
	for _, title := range []string{"Uniform", "Fire exits", "First aid"} {
		st, err := repo.CreateStep(ctx, curriculum.Step{SectionID: sec.ID, Title: title, Kind: curriculum.StepKindSimple})
		require.NoError(t, err)
		steps = append(steps, st)
	}
	return part, sec, steps
}

func TestCurriculum_CreateAppendsDenseOrder(t *testing.T) {
	store := NewStore()
	repo := store.Curriculum()

	part, sec, steps := seedCatalog(t, repo)

	assert.Equal(t, 1, part.OrderIndex)
	assert.Equal(t, 1, sec.OrderIndex)
	for i, st := range steps {
		assert.Equal(t, i+1, st.OrderIndex)
		assert.Equal(t, part.ID, st.PartID, "part is derived from the section")
	}

	second, err := repo.CreatePart(context.Background(), "Service")
	require.NoError(t, err)
	assert.Equal(t, 2, second.OrderIndex)
}

func TestCurriculum_CreateAfterGapUsesMax(t *testing.T) {
	store := NewStore()
	repo := store.Curriculum()
	part, _, _ := seedCatalog(t, repo)
	store.SetOrderIndex(curriculum.LevelPart, part.ID, 10)

	next, err := repo.CreatePart(context.Background(), "Later")
	require.NoError(t, err)
	assert.Equal(t, 11, next.OrderIndex)
}

func TestCurriculum_CreateUnderMissingParent(t *testing.T) {
	repo := NewStore().Curriculum()
	ctx := context.Background()

	_, err := repo.CreateSection(ctx, curriculum.Section{PartID: 42, Title: "x"})
	assert.ErrorIs(t, err, shared.ErrPartNotFound)

	_, err = repo.CreateStep(ctx, curriculum.Step{SectionID: 42, Title: "x"})
	assert.ErrorIs(t, err, shared.ErrSectionNotFound)
}

func TestCurriculum_Reorder(t *testing.T) {
	repo := NewStore().Curriculum()
	ctx := context.Background()
	_, sec, steps := seedCatalog(t, repo)
	scope := curriculum.StepsScope(sec.ID)

	moved, err := repo.Reorder(ctx, scope, steps[0].ID, curriculum.DirectionDown)
	require.NoError(t, err)
	assert.True(t, moved)

	list, err := repo.ListSteps(ctx)
	require.NoError(t, err)
	tree := curriculum.BuildTree([]curriculum.Part{{ID: sec.PartID}}, []curriculum.Section{*sec}, list)
	assert.Equal(t, []int64{steps[1].ID, steps[0].ID, steps[2].ID}, tree.StepIDs())

	moved, err = repo.Reorder(ctx, scope, steps[1].ID, curriculum.DirectionUp)
	require.NoError(t, err)
	assert.False(t, moved, "first item stays in place")

	_, err = repo.Reorder(ctx, scope, 999, curriculum.DirectionUp)
	assert.ErrorIs(t, err, shared.ErrStepNotFound)

	_, err = repo.Reorder(ctx, curriculum.StepsScope(0), steps[0].ID, curriculum.DirectionUp)
	assert.True(t, shared.IsValidation(err))
}

func TestCurriculum_RenameAndDeleteMissing(t *testing.T) {
	repo := NewStore().Curriculum()
	ctx := context.Background()

	assert.ErrorIs(t, repo.RenamePart(ctx, 1, "x"), shared.ErrPartNotFound)
	assert.ErrorIs(t, repo.RenameSection(ctx, 1, "x"), shared.ErrSectionNotFound)
	assert.ErrorIs(t, repo.RenameStep(ctx, 1, "x"), shared.ErrStepNotFound)
	assert.ErrorIs(t, repo.DeletePart(ctx, 1), shared.ErrPartNotFound)
	assert.ErrorIs(t, repo.DeleteSection(ctx, 1), shared.ErrSectionNotFound)
	assert.ErrorIs(t, repo.DeleteStep(ctx, 1), shared.ErrStepNotFound)
}

func TestCurriculum_DeletePartCascades(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	part, _, steps := seedCatalog(t, store.Curriculum())

	store.PutTrainee(internship.Trainee{ID: 7, StaffStatus: internship.StaffStatusTrainee})
	sess, err := store.Internship().CreateSession(ctx, internship.Session{TraineeID: 7, DayNumber: 1, StartedAt: t0})
	require.NoError(t, err)
	_, err = store.Progress().Toggle(ctx, sess.ID, steps[0].ID, 1, t0)
	require.NoError(t, err)

	require.NoError(t, store.Curriculum().DeletePart(ctx, part.ID))

	n, err := store.Curriculum().CountSteps(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	results, err := store.Progress().SessionResults(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, results, "results of deleted steps are removed")
}

func TestInternship_SingleActiveSession(t *testing.T) {
	store := NewStore()
	repo := store.Internship()
	ctx := context.Background()
	store.PutTrainee(internship.Trainee{ID: 7, StaffStatus: internship.StaffStatusTrainee})

	first, err := repo.CreateSession(ctx, internship.Session{TraineeID: 7, DayNumber: 1, StartedAt: t0})
	require.NoError(t, err)

	_, err = repo.CreateSession(ctx, internship.Session{TraineeID: 7, DayNumber: 1, StartedAt: t0})
	assert.ErrorIs(t, err, shared.ErrSessionAlreadyActive)

	require.NoError(t, repo.CancelSession(ctx, first.ID, t0.Add(time.Hour)))
	second, err := repo.CreateSession(ctx, internship.Session{TraineeID: 7, DayNumber: 1, StartedAt: t0.Add(2 * time.Hour)})
	require.NoError(t, err)

	active, err := repo.GetActiveSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	list, err := repo.ListSessions(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
}

func TestInternship_CreateSessionUnknownTrainee(t *testing.T) {
	_, err := NewStore().Internship().CreateSession(context.Background(), internship.Session{TraineeID: 1})
	assert.ErrorIs(t, err, shared.ErrTraineeNotFound)
}

func TestInternship_FinishIsConditional(t *testing.T) {
	store := NewStore()
	repo := store.Internship()
	ctx := context.Background()
	store.PutTrainee(internship.Trainee{ID: 7})
	sess, err := repo.CreateSession(ctx, internship.Session{TraineeID: 7, StartedAt: t0})
	require.NoError(t, err)

	ok, err := repo.FinishSession(ctx, sess.ID, t0.Add(time.Hour), internship.NewFinishNotes("none", ""))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.FinishSession(ctx, sess.ID, t0.Add(2*time.Hour), internship.FinishNotes{})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), *got.FinishedAt)
	assert.Equal(t, "none", *got.Issues)

	ok, err = repo.FinishSession(ctx, 999, t0, internship.FinishNotes{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInternship_ForceFinishKeepsFirstTimestamp(t *testing.T) {
	store := NewStore()
	repo := store.Internship()
	ctx := context.Background()
	store.PutTrainee(internship.Trainee{ID: 7})
	sess, err := repo.CreateSession(ctx, internship.Session{TraineeID: 7, StartedAt: t0})
	require.NoError(t, err)

	require.NoError(t, repo.ForceFinishSession(ctx, sess.ID, t0.Add(time.Hour)))
	require.NoError(t, repo.ForceFinishSession(ctx, sess.ID, t0.Add(3*time.Hour)))

	got, err := repo.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), *got.FinishedAt)
}

func TestInternship_AdvanceAndFreeze(t *testing.T) {
	store := NewStore()
	repo := store.Internship()
	ctx := context.Background()
	store.PutTrainee(internship.Trainee{ID: 7, InternDaysCompleted: 3})

	require.NoError(t, repo.AdvanceInternDays(ctx, 7, 2))
	tr, err := repo.GetTrainee(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.InternDaysCompleted, "counter never decreases")

	require.NoError(t, repo.AdvanceInternDays(ctx, 7, 5))
	tr, _ = repo.GetTrainee(ctx, 7)
	assert.Equal(t, 5, tr.InternDaysCompleted)

	frozen, err := repo.FreezeTrainingCompletion(ctx, 7, t0, 10)
	require.NoError(t, err)
	assert.True(t, frozen)

	frozen, err = repo.FreezeTrainingCompletion(ctx, 7, t0.Add(time.Hour), 15)
	require.NoError(t, err)
	assert.False(t, frozen)

	tr, _ = repo.GetTrainee(ctx, 7)
	assert.Equal(t, 10, *tr.TrainingTotalStepsAtCompletion)
	assert.Equal(t, t0, *tr.TrainingCompletedAt)

	assert.ErrorIs(t, repo.AdvanceInternDays(ctx, 99, 1), shared.ErrTraineeNotFound)
}

func TestProgress_OverallExcludesCanceled(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_, _, steps := seedCatalog(t, store.Curriculum())
	store.PutTrainee(internship.Trainee{ID: 7})

	sess, err := store.Internship().CreateSession(ctx, internship.Session{TraineeID: 7, StartedAt: t0})
	require.NoError(t, err)
	_, err = store.Progress().Toggle(ctx, sess.ID, steps[0].ID, 1, t0)
	require.NoError(t, err)

	overall, err := store.Progress().OverallResults(ctx, 7)
	require.NoError(t, err)
	assert.True(t, overall.Passed(steps[0].ID))

	require.NoError(t, store.Internship().CancelSession(ctx, sess.ID, t0.Add(time.Hour)))
	overall, err = store.Progress().OverallResults(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, overall)
}

func TestProgress_UnknownReferences(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_, _, steps := seedCatalog(t, store.Curriculum())

	_, err := store.Progress().Toggle(ctx, 999, steps[0].ID, 1, t0)
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)

	store.PutTrainee(internship.Trainee{ID: 7})
	sess, err := store.Internship().CreateSession(ctx, internship.Session{TraineeID: 7, StartedAt: t0})
	require.NoError(t, err)
	err = store.Progress().SaveMedia(ctx, sess.ID, 999, 1, "ref", t0)
	assert.ErrorIs(t, err, shared.ErrStepNotFound)
}

func TestSchedule_FindPlannedOrder(t *testing.T) {
	store := NewStore()
	repo := store.Schedule()
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	late := store.PutScheduleRecord(schedule.Record{CandidateID: 1, PlannedDate: day(12), PlannedTimeFrom: "09:00", Status: schedule.StatusPlanned})
	early := store.PutScheduleRecord(schedule.Record{CandidateID: 1, PlannedDate: day(11), PlannedTimeFrom: "10:00", Status: schedule.StatusPlanned})
	store.PutScheduleRecord(schedule.Record{CandidateID: 1, PlannedDate: day(10), Status: schedule.StatusFinished})
	store.PutScheduleRecord(schedule.Record{CandidateID: 2, PlannedDate: day(9), Status: schedule.StatusPlanned})

	planned, err := repo.FindPlanned(ctx, 1)
	require.NoError(t, err)
	require.Len(t, planned, 2)
	assert.Equal(t, early, planned[0].ID)
	assert.Equal(t, late, planned[1].ID)

	_, err = repo.FindBySession(ctx, 5)
	assert.ErrorIs(t, err, schedule.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &schedule.Record{ID: 999}), schedule.ErrRecordNotFound)
}

func TestOutbox_Append(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Outbox().Append(context.Background(), outbox.Event{ID: "a", EventType: outbox.EventInternshipStarted}))
	require.NoError(t, store.Outbox().Append(context.Background(), outbox.Event{ID: "b", EventType: outbox.EventInternshipFinished}))

	events := store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, outbox.EventInternshipFinished, events[1].EventType)
}
