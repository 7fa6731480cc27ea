package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MarkStarted(t *testing.T) {
	at := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
	r := &Record{ID: 1, CandidateID: 50, Status: StatusPlanned}

	r.MarkStarted(7, 100, 3, at)

	assert.Equal(t, StatusStarted, r.Status)
	assert.Equal(t, int64(7), *r.TraineeID)
	assert.Equal(t, int64(100), *r.SessionID)
	assert.Equal(t, int64(3), *r.TradePointID)
	assert.Equal(t, at, *r.StartedAt)
	assert.Nil(t, r.FinishedAt)
}

func TestRecord_MarkFinished_KeepsStart(t *testing.T) {
	start := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	r := &Record{ID: 1, Status: StatusPlanned}
	r.MarkStarted(7, 100, 3, start)

	r.MarkFinished(7, 100, end)

	assert.Equal(t, StatusFinished, r.Status)
	assert.Equal(t, start, *r.StartedAt)
	assert.Equal(t, end, *r.FinishedAt)
}

func TestRecord_MarkFinished_FromPlanned(t *testing.T) {
	end := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	r := &Record{ID: 1, Status: StatusPlanned}

	r.MarkFinished(7, 100, end)

	require.NotNil(t, r.StartedAt)
	assert.Equal(t, end, *r.StartedAt)
	assert.Equal(t, int64(100), *r.SessionID)
	assert.Equal(t, int64(7), *r.TraineeID)
}
