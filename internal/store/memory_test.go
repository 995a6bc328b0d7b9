package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

func TestMemoryStore_LatestEmpty(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Latest(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest() error = %v, want %v", err, ErrNotFound)
	}
}

func TestMemoryStore_PublishReplaces(t *testing.T) {
	s := NewMemoryStore()
	first := &weather.Snapshot{ID: "first"}
	second := &weather.Snapshot{ID: "second"}

	s.Publish(first)
	s.Publish(nil)
	got, err := s.Latest()
	if err != nil || got.ID != "first" {
		t.Fatalf("Latest() = %v, %v; want first", got, err)
	}

	s.Publish(second)
	got, _ = s.Latest()
	if got.ID != "second" {
		t.Errorf("Latest().ID = %q, want second", got.ID)
	}
}

func TestMemoryStore_ConcurrentReaders(t *testing.T) {
	s := NewMemoryStore()
	s.Publish(&weather.Snapshot{ID: "a"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap, err := s.Latest()
				if err != nil || (snap.ID != "a" && snap.ID != "b") {
					t.Errorf("Latest() = %v, %v", snap, err)
					return
				}
			}
		}()
	}
	s.Publish(&weather.Snapshot{ID: "b"})
	wg.Wait()
}
