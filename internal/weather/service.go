package weather

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/city-weather-analytics/internal/metrics"
)

// Fetcher collects one reading per city.
type Fetcher interface {
	FetchAll(ctx context.Context, cities []City) []RawReading
}

// Service orchestrates a refresh cycle and publishes snapshots to the store.
type Service struct {
	registry *Registry
	fetcher  Fetcher
	store    Store
	logger   *slog.Logger

	// refreshMu serializes refresh cycles.
	refreshMu sync.Mutex

	// OnPublish, when set, is called with every published snapshot.
	OnPublish func(*Snapshot)
}

// NewService creates a new Service.
func NewService(registry *Registry, fetcher Fetcher, store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		fetcher:  fetcher,
		store:    store,
		logger:   logger,
	}
}

// Refresh runs one full pass: fetch every city, build the dataset,
// summarize it and publish the resulting snapshot. Partial or total fetch
// failure still publishes; the failed count is on the snapshot's Dataset.
// If ctx ends during the pass nothing is published and ctx's error is
// returned.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	cities := s.registry.Cities()
	s.logger.Info("refresh started", "cities", len(cities))

	readings := s.fetcher.FetchAll(ctx, cities)
	if err := ctx.Err(); err != nil {
		s.logger.Warn("refresh abandoned; keeping previous snapshot", "err", err)
		return nil, err
	}

	ds := Build(readings)
	snapshot := &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Dataset:   ds,
		Insights:  Summarize(ds),
	}
	s.store.Publish(snapshot)

	metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	metrics.SnapshotCities.WithLabelValues("ok").Set(float64(ds.Len()))
	metrics.SnapshotCities.WithLabelValues("failed").Set(float64(ds.FailedCount()))
	metrics.LastRefreshTimestamp.Set(float64(snapshot.CreatedAt.Unix()))

	switch {
	case ds.Empty():
		s.logger.Error("refresh produced no data", "coverage", ds.Coverage())
	case ds.Partial():
		s.logger.Warn("refresh completed with missing cities",
			"coverage", ds.Coverage(),
			"failed", ds.FailedCities(),
		)
	default:
		s.logger.Info("refresh completed", "snapshot", snapshot.ID, "cities", ds.Len())
	}

	if s.OnPublish != nil {
		s.OnPublish(snapshot)
	}
	return snapshot, nil
}

// Latest delegates to the underlying store.
func (s *Service) Latest() (*Snapshot, error) {
	return s.store.Latest()
}

// Cities returns the registry's cities in order.
func (s *Service) Cities() []City {
	return s.registry.Cities()
}
