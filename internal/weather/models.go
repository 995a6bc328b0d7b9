package weather

import (
	"encoding/json"
	"fmt"
	"time"
)

// City is a monitored place, keyed by Name.
type City struct {
	Name      string  `json:"city" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// Key returns a canonical string key for indexing this city.
func (c City) Key() string {
	return c.Name
}

// Observation is a provider reading normalized to °C, % and m/s.
type Observation struct {
	TemperatureC float64
	HumidityPct  float64
	WindSpeedMS  float64
	ObservedAt   time.Time
}

// ReadingStatus tags a RawReading as usable or not.
type ReadingStatus string

const (
	StatusOK     ReadingStatus = "ok"
	StatusFailed ReadingStatus = "failed"
)

// RawReading is the outcome of one fetch for one city. Values is nil
// unless Status is StatusOK.
type RawReading struct {
	City      string        `json:"city"`
	Status    ReadingStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Values    *Observation  `json:"-"`
}

// OKReading builds a successful reading.
func OKReading(city string, fetchedAt time.Time, obs Observation) RawReading {
	return RawReading{
		City:      city,
		Status:    StatusOK,
		FetchedAt: fetchedAt,
		Values:    &obs,
	}
}

// FailedReading builds a failed reading carrying the error text as reason.
func FailedReading(city string, fetchedAt time.Time, err error) RawReading {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return RawReading{
		City:      city,
		Status:    StatusFailed,
		Reason:    reason,
		FetchedAt: fetchedAt,
	}
}

// OK reports whether the reading carries values.
func (r RawReading) OK() bool {
	return r.Status == StatusOK && r.Values != nil
}

// WeatherRow is one city's normalized and enriched observation.
type WeatherRow struct {
	City         string  `json:"city"`
	TemperatureC float64 `json:"temperatureC"`
	TemperatureF float64 `json:"temperatureF"`
	HumidityPct  float64 `json:"humidityPct"`
	WindSpeedMS  float64 `json:"windSpeedMs"`
	WindSpeedMPH float64 `json:"windSpeedMph"`
}

// Optional is an aggregate that may be missing. The zero value means
// "no data" and encodes as JSON null, never as 0.
type Optional[T any] struct {
	value T
	valid bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, valid: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.valid
}

// Valid reports whether a value is present.
func (o Optional[T]) Valid() bool {
	return o.valid
}

// String renders the value, or "n/a" when there is no data.
func (o Optional[T]) String() string {
	if !o.valid {
		return "n/a"
	}
	return fmt.Sprint(o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// TemperatureStats summarizes the temperature column.
type TemperatureStats struct {
	Avg         Optional[float64] `json:"avgC"`
	AvgF        Optional[float64] `json:"avgF"`
	Min         Optional[float64] `json:"minC"`
	Max         Optional[float64] `json:"maxC"`
	HottestCity Optional[string]  `json:"hottestCity"`
	ColdestCity Optional[string]  `json:"coldestCity"`
}

// HumidityStats summarizes the humidity column.
type HumidityStats struct {
	Avg            Optional[float64] `json:"avg"`
	Min            Optional[float64] `json:"min"`
	Max            Optional[float64] `json:"max"`
	MostHumidCity  Optional[string]  `json:"mostHumidCity"`
	LeastHumidCity Optional[string]  `json:"leastHumidCity"`
}

// WindStats summarizes the wind speed columns.
type WindStats struct {
	AvgMS        Optional[float64] `json:"avgMs"`
	AvgMPH       Optional[float64] `json:"avgMph"`
	WindiestCity Optional[string]  `json:"windiestCity"`
	CalmestCity  Optional[string]  `json:"calmestCity"`
}

// Insights are aggregate statistics derived from a single Dataset.
type Insights struct {
	TotalCities int              `json:"totalCities"`
	Temperature TemperatureStats `json:"temperatureStats"`
	Humidity    HumidityStats    `json:"humidityStats"`
	Wind        WindStats        `json:"windStats"`
}

// Snapshot is the immutable result of one refresh cycle. Dataset and
// Insights always come from the same cycle.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"` // always UTC
	Dataset   Dataset   `json:"-"`
	Insights  Insights  `json:"insights"`
}
