package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityweather_fetches_total",
			Help: "Total per-city provider fetches",
		},
		[]string{"provider", "city", "status"},
	)

	FetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cityweather_fetch_latency_seconds",
			Help:    "Per-city provider fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cityweather_refresh_duration_seconds",
			Help:    "Duration of a full refresh cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotCities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cityweather_snapshot_cities",
			Help: "Cities in the latest published snapshot by outcome",
		},
		[]string{"outcome"},
	)

	LastRefreshTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cityweather_last_refresh_timestamp_seconds",
			Help: "Unix time of the latest published snapshot",
		},
	)
)
