package weather

import (
	"fmt"
	"math"
)

const (
	// mphPerMS converts metres per second to miles per hour.
	mphPerMS = 2.237
	// precision is the number of decimal places kept on every stored value.
	precision = 1
)

// Dataset is the ordered set of rows produced by one refresh cycle.
type Dataset struct {
	rows      []WeatherRow
	failed    []string
	requested int
}

// Build turns raw readings into a Dataset. Failed readings, readings with
// missing or non-finite values, and repeated city names are excluded;
// everything except repeats is counted as a failure.
func Build(readings []RawReading) Dataset {
	ds := Dataset{
		rows:      make([]WeatherRow, 0, len(readings)),
		requested: len(readings),
	}

	seen := make(map[string]struct{}, len(readings))
	for _, r := range readings {
		if _, dup := seen[r.City]; dup {
			ds.requested--
			continue
		}
		seen[r.City] = struct{}{}

		if !r.OK() || !complete(r.Values) {
			ds.failed = append(ds.failed, r.City)
			continue
		}
		ds.rows = append(ds.rows, newRow(r.City, *r.Values))
	}

	return ds
}

func complete(o *Observation) bool {
	if o == nil {
		return false
	}
	for _, v := range []float64{o.TemperatureC, o.HumidityPct, o.WindSpeedMS} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func newRow(city string, o Observation) WeatherRow {
	return WeatherRow{
		City:         city,
		TemperatureC: round(o.TemperatureC),
		TemperatureF: round(CelsiusToFahrenheit(o.TemperatureC)),
		HumidityPct:  round(o.HumidityPct),
		WindSpeedMS:  round(o.WindSpeedMS),
		WindSpeedMPH: round(MSToMPH(o.WindSpeedMS)),
	}
}

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// MSToMPH converts m/s to mph.
func MSToMPH(ms float64) float64 {
	return ms * mphPerMS
}

// round rounds half away from zero to the dataset precision.
func round(v float64) float64 {
	p := math.Pow(10, precision)
	return math.Round(v*p) / p
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.rows)
}

// Empty reports whether no city produced a row.
func (d Dataset) Empty() bool {
	return len(d.rows) == 0
}

// Rows returns a copy of the rows in registry order.
func (d Dataset) Rows() []WeatherRow {
	out := make([]WeatherRow, len(d.rows))
	copy(out, d.rows)
	return out
}

// FailedCount is the number of cities that did not produce a row.
func (d Dataset) FailedCount() int {
	return len(d.failed)
}

// FailedCities lists the cities that did not produce a row, in registry order.
func (d Dataset) FailedCities() []string {
	out := make([]string, len(d.failed))
	copy(out, d.failed)
	return out
}

// Requested is the number of distinct cities that were fetched.
func (d Dataset) Requested() int {
	return d.requested
}

// Partial reports whether at least one city is missing.
func (d Dataset) Partial() bool {
	return len(d.failed) > 0
}

// Coverage renders the "N of M cities unavailable" indicator.
func (d Dataset) Coverage() string {
	return fmt.Sprintf("%d of %d cities unavailable", len(d.failed), d.requested)
}

// Columns is the columnar view of a Dataset, used for charts.
type Columns struct {
	Cities       []string  `json:"cities"`
	TemperatureC []float64 `json:"temperatureC"`
	TemperatureF []float64 `json:"temperatureF"`
	HumidityPct  []float64 `json:"humidityPct"`
	WindSpeedMS  []float64 `json:"windSpeedMs"`
	WindSpeedMPH []float64 `json:"windSpeedMph"`
}

// Columns returns the dataset split into one slice per column.
func (d Dataset) Columns() Columns {
	n := len(d.rows)
	c := Columns{
		Cities:       make([]string, 0, n),
		TemperatureC: make([]float64, 0, n),
		TemperatureF: make([]float64, 0, n),
		HumidityPct:  make([]float64, 0, n),
		WindSpeedMS:  make([]float64, 0, n),
		WindSpeedMPH: make([]float64, 0, n),
	}
	for _, r := range d.rows {
		c.Cities = append(c.Cities, r.City)
		c.TemperatureC = append(c.TemperatureC, r.TemperatureC)
		c.TemperatureF = append(c.TemperatureF, r.TemperatureF)
		c.HumidityPct = append(c.HumidityPct, r.HumidityPct)
		c.WindSpeedMS = append(c.WindSpeedMS, r.WindSpeedMS)
		c.WindSpeedMPH = append(c.WindSpeedMPH, r.WindSpeedMPH)
	}
	return c
}

// RecordHeader is the column order of Records.
var RecordHeader = []string{
	"city", "temperature_c", "temperature_f", "humidity_pct", "wind_speed_ms", "wind_speed_mph",
}

// Record is one flat export row.
type Record struct {
	City         string  `json:"city"`
	TemperatureC float64 `json:"temperature_c"`
	TemperatureF float64 `json:"temperature_f"`
	HumidityPct  float64 `json:"humidity_pct"`
	WindSpeedMS  float64 `json:"wind_speed_ms"`
	WindSpeedMPH float64 `json:"wind_speed_mph"`
}

// Records returns the tabular export view in dataset order.
func (d Dataset) Records() []Record {
	out := make([]Record, 0, len(d.rows))
	for _, r := range d.rows {
		out = append(out, Record(r))
	}
	return out
}
