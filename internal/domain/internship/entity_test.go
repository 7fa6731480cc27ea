package internship

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainee_Denominator(t *testing.T) {
	tr := &Trainee{ID: 1, StaffStatus: StaffStatusTrainee}
	assert.Equal(t, 15, tr.Denominator(15))
	assert.False(t, tr.IsTrainingCompleted())

	frozen := 10
	now := time.Now()
	tr.TrainingTotalStepsAtCompletion = &frozen
	tr.TrainingCompletedAt = &now
	assert.Equal(t, 10, tr.Denominator(15))
	assert.True(t, tr.IsTrainingCompleted())
}

func TestTrainee_NextDayNumber(t *testing.T) {
	assert.Equal(t, 1, (&Trainee{}).NextDayNumber())
	assert.Equal(t, 4, (&Trainee{InternDaysCompleted: 3}).NextDayNumber())
}

func TestTrainee_IsTrainee(t *testing.T) {
	assert.True(t, (&Trainee{StaffStatus: StaffStatusTrainee}).IsTrainee())
	assert.False(t, (&Trainee{StaffStatus: StaffStatusEmployee}).IsTrainee())
	assert.False(t, (&Trainee{StaffStatus: StaffStatusDismissed}).IsTrainee())
}

func TestSession_State(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	s := &Session{StartedAt: start}
	assert.True(t, s.IsActive())
	assert.Equal(t, SessionStateActive, s.State())
	assert.Equal(t, 2*time.Hour, s.Duration(start.Add(2*time.Hour)))

	s.FinishedAt = &end
	assert.False(t, s.IsActive())
	assert.Equal(t, SessionStateFinished, s.State())
	assert.Equal(t, 8*time.Hour, s.Duration(end.Add(time.Hour)))

	s.IsCanceled = true
	assert.Equal(t, SessionStateCanceled, s.State(), "canceled wins over finished")
}

func TestNewFinishNotes(t *testing.T) {
	notes := NewFinishNotes("  late delivery ", "   ")
	require.NotNil(t, notes.Issues)
	assert.Equal(t, "late delivery", *notes.Issues)
	assert.Nil(t, notes.Comment)
	assert.False(t, notes.IsEmpty())

	assert.True(t, NewFinishNotes("", " ").IsEmpty())
}
