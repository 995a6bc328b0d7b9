package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

// Refresher runs one refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context) (*weather.Snapshot, error)
}

// Scheduler periodically refreshes the weather snapshot.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. timeout bounds each refresh cycle and
// defaults to the interval.
func New(service Refresher, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately. Runs never overlap.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	s.logger.Info("scheduler: running weather refresh job")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	snap, err := s.service.Refresh(ctx)
	if err != nil {
		s.logger.Error("scheduler: refresh failed", "err", err)
		return
	}
	s.logger.Info("scheduler: completed weather refresh job",
		"snapshot", snap.ID,
		"coverage", snap.Dataset.Coverage(),
	)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
