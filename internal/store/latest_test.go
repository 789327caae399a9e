package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
)

func TestLatestStoreEmpty(t *testing.T) {
	s := NewLatestStore()

	_, err := s.GetLatest()
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok := s.Latest()
	assert.False(t, ok)
	assert.False(t, s.Status().HasSnapshot)
}

func TestLatestStoreKeepsSnapshotOnFailure(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewLatestStore()
	s.now = func() time.Time { return now }

	snap := airquality.Snapshot{Station: "NL10938", Index: 4, Category: "moderate", Timestamp: now}
	s.SaveSnapshot(snap)

	now = now.Add(5 * time.Minute)
	s.RecordFailure(errors.New("timeout"))
	s.RecordFailure(errors.New("timeout again"))

	got, err := s.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	st := s.Status()
	assert.True(t, st.HasSnapshot)
	assert.False(t, st.LastUpdateOK)
	assert.Equal(t, 2, st.Failures)
	assert.Equal(t, "timeout again", st.LastError)
	assert.Equal(t, now, st.LastAttempt)
	assert.Equal(t, now.Add(-5*time.Minute), st.LastSuccess)
}

func TestLatestStoreSuccessResetsFailures(t *testing.T) {
	s := NewLatestStore()
	s.RecordFailure(errors.New("boom"))
	s.SaveSnapshot(airquality.Snapshot{Station: "NL01485", Index: 12, Category: "no data available"})

	st := s.Status()
	assert.Zero(t, st.Failures)
	assert.Empty(t, st.LastError)
	assert.True(t, st.LastUpdateOK)
}
