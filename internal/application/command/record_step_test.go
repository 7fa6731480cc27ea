package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/internship-hub/internal/application/command"
	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

func TestToggle_FlipsSimpleStep(t *testing.T) {
	e := newEnv(t)
	steps := e.seedSteps(1, curriculum.StepKindSimple)
	session := e.startSession()
	cmd := command.ToggleStepCommand{SessionID: session.ID, StepID: steps[0], ActorID: trainerID}

	first, err := e.steps.Toggle(e.ctx, cmd)
	require.NoError(t, err)
	assert.True(t, first.IsPassed)

	second, err := e.steps.Toggle(e.ctx, cmd)
	require.NoError(t, err)
	assert.False(t, second.IsPassed)

	marks, err := e.progress.SessionMap(e.ctx, session.ID)
	require.NoError(t, err)
	require.Contains(t, marks, steps[0])
	assert.False(t, marks[steps[0]].IsPassed)
	assert.Nil(t, marks[steps[0]].CheckedAt)
}

func TestToggle_WorksOnFinishedSession(t *testing.T) {
	e := newEnv(t)
	steps := e.seedSteps(1, curriculum.StepKindSimple)
	session := e.startSession()
	_, err := e.finish.Handle(e.ctx, command.FinishInternshipCommand{SessionID: session.ID})
	require.NoError(t, err)

	e.pass(session.ID, steps[0])
}

func TestToggle_Rejections(t *testing.T) {
	e := newEnv(t)
	video := e.seedSteps(1, curriculum.StepKindVideo)
	session := e.startSession()

	_, err := e.steps.Toggle(e.ctx, command.ToggleStepCommand{SessionID: session.ID, StepID: video[0], ActorID: trainerID})
	assert.ErrorIs(t, err, shared.ErrToggleNotAllowed)

	_, err = e.steps.Toggle(e.ctx, command.ToggleStepCommand{SessionID: session.ID, StepID: 999, ActorID: trainerID})
	assert.ErrorIs(t, err, shared.ErrStepNotFound)

	_, err = e.steps.Toggle(e.ctx, command.ToggleStepCommand{SessionID: 999, StepID: video[0], ActorID: trainerID})
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)

	_, err = e.steps.Toggle(e.ctx, command.ToggleStepCommand{SessionID: session.ID, StepID: video[0]})
	assert.True(t, shared.IsValidation(err))
}

func TestSubmitMedia(t *testing.T) {
	e := newEnv(t)
	photo := e.seedSteps(1, curriculum.StepKindPhoto)
	simple := e.seedSteps(1, curriculum.StepKindSimple)
	session := e.startSession()

	err := e.steps.SubmitMedia(e.ctx, command.SubmitMediaCommand{
		SessionID: session.ID,
		StepID:    photo[0],
		ActorID:   trainerID,
		MediaRef:  "  file-123  ",
	})
	require.NoError(t, err)

	results, err := e.store.Progress().SessionResults(e.ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsPassed)
	assert.Equal(t, "file-123", *results[0].MediaRef)
	assert.Equal(t, e.clock.now, *results[0].CheckedAt)

	err = e.steps.SubmitMedia(e.ctx, command.SubmitMediaCommand{SessionID: session.ID, StepID: simple[0], ActorID: trainerID, MediaRef: "x"})
	assert.ErrorIs(t, err, shared.ErrMediaNotAllowed)

	err = e.steps.SubmitMedia(e.ctx, command.SubmitMediaCommand{SessionID: session.ID, StepID: photo[0], ActorID: trainerID, MediaRef: "   "})
	assert.ErrorIs(t, err, shared.ErrEmptyMediaRef)
}
