package weather

import (
	"context"
)

// Provider abstracts a weather data source (e.g. Open-Meteo, OpenWeatherMap, WeatherAPI).
// Implementations must return values already normalized to °C, % and m/s.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city City) (Observation, error)
}

// Store is the contract the snapshot store must satisfy. Publish replaces
// the current snapshot atomically.
type Store interface {
	Publish(snapshot *Snapshot)
	Latest() (*Snapshot, error)
}
