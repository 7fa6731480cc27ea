package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func at(minutes int) *time.Time {
	t := base.Add(time.Duration(minutes) * time.Minute)
	return &t
}

func TestOutranks(t *testing.T) {
	passed := OverallMark{Mark: Mark{IsPassed: true, CheckedAt: at(0)}, SessionID: 1}
	failedLater := OverallMark{Mark: Mark{IsPassed: false, CheckedAt: at(60)}, SessionID: 2}
	assert.True(t, Outranks(passed, failedLater), "passed beats not passed")
	assert.False(t, Outranks(failedLater, passed))

	early := OverallMark{Mark: Mark{IsPassed: true, CheckedAt: at(0)}, SessionID: 5}
	late := OverallMark{Mark: Mark{IsPassed: true, CheckedAt: at(10)}, SessionID: 1}
	assert.True(t, Outranks(late, early), "later check wins")

	unset := OverallMark{Mark: Mark{IsPassed: false}, SessionID: 9}
	set := OverallMark{Mark: Mark{IsPassed: false, CheckedAt: at(0)}, SessionID: 1}
	assert.True(t, Outranks(set, unset), "unset checked_at is oldest")
	assert.False(t, Outranks(unset, set))

	tieA := OverallMark{Mark: Mark{IsPassed: true, CheckedAt: at(5)}, SessionID: 3}
	tieB := OverallMark{Mark: Mark{IsPassed: true, CheckedAt: at(5)}, SessionID: 4}
	assert.True(t, Outranks(tieB, tieA), "exact tie goes to larger session")
	assert.False(t, Outranks(tieA, tieB))
}

func TestBuildOverall_StickyCompletion(t *testing.T) {
	results := []StepResult{
		{SessionID: 1, StepID: 100, IsPassed: true, CheckedAt: at(0)},
		{SessionID: 2, StepID: 100, IsPassed: false},
		{SessionID: 2, StepID: 200, IsPassed: false},
	}

	m := BuildOverall(results)

	require.Contains(t, m, int64(100))
	assert.True(t, m.Passed(100))
	assert.Equal(t, int64(1), m[100].SessionID)
	assert.False(t, m.Passed(200))
	assert.False(t, m.Passed(300))
}

func TestBuildOverall_LatestPassWins(t *testing.T) {
	by1, by2 := int64(7), int64(8)
	results := []StepResult{
		{SessionID: 1, StepID: 100, IsPassed: true, CheckedAt: at(0), CheckedBy: &by1},
		{SessionID: 2, StepID: 100, IsPassed: true, CheckedAt: at(30), CheckedBy: &by2},
	}

	m := BuildOverall(results)

	assert.Equal(t, int64(2), m[100].SessionID)
	assert.Equal(t, by2, *m[100].CheckedBy)
}

func TestRollup(t *testing.T) {
	m := SessionMap{1: {IsPassed: true}, 2: {IsPassed: true}, 3: {IsPassed: false}, 99: {IsPassed: true}}

	s := Rollup(m, []int64{1, 2, 3, 4, 5})
	assert.Equal(t, Summary{Done: 2, Total: 5, Percent: 40}, s)

	assert.Equal(t, Summary{}, Rollup(m, nil), "empty total is 0 percent")
}

func TestNewSummary_Rounds(t *testing.T) {
	assert.Equal(t, 33, NewSummary(1, 3).Percent)
	assert.Equal(t, 67, NewSummary(2, 3).Percent)
	assert.Equal(t, 100, NewSummary(3, 3).Percent)
	assert.Equal(t, 0, NewSummary(0, 0).Percent)
}

func TestApplyToggle(t *testing.T) {
	now := base

	first := ApplyToggle(nil, 1, 100, 7, now)
	assert.True(t, first.IsPassed)
	require.NotNil(t, first.CheckedAt)
	assert.Equal(t, now, *first.CheckedAt)
	assert.Equal(t, int64(7), *first.CheckedBy)

	second := ApplyToggle(&first, 1, 100, 8, now.Add(time.Minute))
	assert.False(t, second.IsPassed)
	assert.Nil(t, second.CheckedAt)
	assert.Nil(t, second.CheckedBy)

	third := ApplyToggle(&second, 1, 100, 9, now.Add(2*time.Minute))
	assert.True(t, third.IsPassed)
	assert.Equal(t, int64(9), *third.CheckedBy)
}

func TestApplyToggle_KeepsMediaRef(t *testing.T) {
	ref := "s3://media/1.mp4"
	existing := StepResult{SessionID: 1, StepID: 100, IsPassed: true, MediaRef: &ref}

	next := ApplyToggle(&existing, 1, 100, 7, base)
	assert.False(t, next.IsPassed)
	assert.Equal(t, &ref, next.MediaRef)
}

func TestApplyMedia(t *testing.T) {
	fresh := ApplyMedia(nil, 1, 100, 7, "photo-1", base)
	assert.True(t, fresh.IsPassed)
	assert.Equal(t, "photo-1", *fresh.MediaRef)
	assert.Equal(t, int64(1), fresh.SessionID)

	failed := StepResult{SessionID: 1, StepID: 100, IsPassed: false}
	replaced := ApplyMedia(&failed, 1, 100, 8, "photo-2", base.Add(time.Hour))
	assert.True(t, replaced.IsPassed, "media submission always passes")
	assert.Equal(t, "photo-2", *replaced.MediaRef)
	assert.Equal(t, int64(8), *replaced.CheckedBy)
}

func TestNewSessionMap(t *testing.T) {
	m := NewSessionMap([]StepResult{
		{SessionID: 1, StepID: 100, IsPassed: true},
		{SessionID: 1, StepID: 200, IsPassed: false},
	})

	assert.Len(t, m, 2)
	assert.True(t, m.Passed(100))
	assert.False(t, m.Passed(200))
	_, attempted := m[300]
	assert.False(t, attempted)
}
