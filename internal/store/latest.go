package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
)

var (
	// ErrNotFound is returned before the first successful refresh.
	ErrNotFound = errors.New("no air quality snapshot yet")
)

// Status summarises the refresh history kept next to the latest snapshot.
type Status struct {
	LastAttempt  time.Time `json:"lastAttempt"`
	LastSuccess  time.Time `json:"lastSuccess"`
	LastError    string    `json:"lastError,omitempty"`
	Failures     int       `json:"consecutiveFailures"`
	HasSnapshot  bool      `json:"hasSnapshot"`
	LastUpdateOK bool      `json:"lastUpdateSuccess"`
}

// LatestStore is a concurrency-safe holder of the most recent snapshot.
// A failed refresh is recorded in the status but never clears the snapshot.
type LatestStore struct {
	mu sync.RWMutex

	snapshot airquality.Snapshot
	status   Status

	now func() time.Time
}

// NewLatestStore creates an empty LatestStore.
func NewLatestStore() *LatestStore {
	return &LatestStore{now: time.Now}
}

// SaveSnapshot replaces the held snapshot wholesale.
func (s *LatestStore) SaveSnapshot(snapshot airquality.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.snapshot = snapshot
	s.status.LastAttempt = now
	s.status.LastSuccess = now
	s.status.LastError = ""
	s.status.Failures = 0
	s.status.HasSnapshot = true
	s.status.LastUpdateOK = true
}

// RecordFailure notes a failed refresh and keeps the previous snapshot.
func (s *LatestStore) RecordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.LastAttempt = s.now().UTC()
	s.status.LastUpdateOK = false
	s.status.Failures++
	if err != nil {
		s.status.LastError = err.Error()
	}
}

// GetLatest returns the most recent snapshot.
func (s *LatestStore) GetLatest() (airquality.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.status.HasSnapshot {
		return airquality.Snapshot{}, ErrNotFound
	}
	return s.snapshot, nil
}

// Latest implements airquality.SnapshotSource.
func (s *LatestStore) Latest() (airquality.Snapshot, bool) {
	snap, err := s.GetLatest()
	return snap, err == nil
}

// Status returns a copy of the refresh status.
func (s *LatestStore) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
