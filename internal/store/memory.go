package store

import (
	"errors"

	"go.uber.org/atomic"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

var (
	// ErrNotFound is returned when no snapshot has been published yet.
	ErrNotFound = errors.New("no weather snapshot published")
)

// MemoryStore holds the single current snapshot. Publish swaps the pointer
// atomically, so readers see either the previous or the new snapshot in
// full. Published snapshots must not be modified.
type MemoryStore struct {
	current atomic.Pointer[weather.Snapshot]
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Publish replaces the current snapshot. A nil snapshot is ignored.
func (s *MemoryStore) Publish(snapshot *weather.Snapshot) {
	if snapshot == nil {
		return
	}
	s.current.Store(snapshot)
}

// Latest returns the current snapshot.
func (s *MemoryStore) Latest() (*weather.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotFound
	}
	return snap, nil
}
