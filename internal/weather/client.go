package weather

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/i474232898/city-weather-analytics/internal/metrics"
)

// ClientConfig controls fetch pacing.
type ClientConfig struct {
	// Timeout bounds a single city's fetch, retries included.
	Timeout time.Duration
	// Spacing is the minimum gap between the starts of consecutive requests.
	Spacing time.Duration
	// MaxConcurrency bounds in-flight requests. Values below 1 mean sequential.
	MaxConcurrency int
}

// Client fetches one RawReading per city from a Provider.
type Client struct {
	provider Provider
	cfg      ClientConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewClient creates a Client. A zero Timeout falls back to 10 seconds.
func NewClient(provider Provider, cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Fetch performs one provider call for city. It never returns an error;
// failures are reported as a failed RawReading.
func (c *Client) Fetch(ctx context.Context, city City) RawReading {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	obs, err := c.provider.Fetch(ctx, city)
	metrics.FetchLatency.WithLabelValues(c.provider.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FetchesTotal.WithLabelValues(c.provider.Name(), city.Name, string(StatusFailed)).Inc()
		c.logger.Warn("fetch failed",
			"provider", c.provider.Name(),
			"city", city.Name,
			"err", err,
		)
		return FailedReading(city.Name, c.now(), err)
	}

	metrics.FetchesTotal.WithLabelValues(c.provider.Name(), city.Name, string(StatusOK)).Inc()
	c.logger.Debug("fetched",
		"provider", c.provider.Name(),
		"city", city.Name,
		"temperature_c", obs.TemperatureC,
		"humidity_pct", obs.HumidityPct,
		"wind_speed_ms", obs.WindSpeedMS,
	)
	return OKReading(city.Name, c.now(), obs)
}

// FetchAll fetches every city and returns the readings in input order,
// whatever order the requests complete in. One city's failure or slowness
// does not affect the others. Cities not started before ctx ends are
// reported as failed.
func (c *Client) FetchAll(ctx context.Context, cities []City) []RawReading {
	readings := make([]RawReading, len(cities))
	sem := make(chan struct{}, c.cfg.MaxConcurrency)

	var wg sync.WaitGroup
	for i, city := range cities {
		if err := ctx.Err(); err != nil {
			readings[i] = FailedReading(city.Name, c.now(), err)
			continue
		}
		if i > 0 && c.cfg.Spacing > 0 {
			if err := sleep(ctx, c.cfg.Spacing); err != nil {
				readings[i] = FailedReading(city.Name, c.now(), err)
				continue
			}
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			readings[i] = FailedReading(city.Name, c.now(), ctx.Err())
			continue
		}

		wg.Add(1)
		go func(i int, city City) {
			defer wg.Done()
			defer func() { <-sem }()
			readings[i] = c.Fetch(ctx, city)
		}(i, city)
	}
	wg.Wait()

	return readings
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
