package chart

import (
	"fmt"
	"image/color"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

// Chart names accepted by SeriesFor.
const (
	Temperature = "temperature"
	Humidity    = "humidity"
	Wind        = "wind"
)

// Names lists the available charts in display order.
var Names = []string{Temperature, Humidity, Wind}

// SeriesFor picks the column backing the named chart.
func SeriesFor(name string, cols weather.Columns) (Series, error) {
	s := Series{Labels: cols.Cities}
	switch name {
	case Temperature:
		s.Title, s.Unit, s.Values = "Temperature by city", "C", cols.TemperatureC
		s.Color = color.RGBA{231, 111, 81, 255}
	case Humidity:
		s.Title, s.Unit, s.Values = "Humidity by city", "%", cols.HumidityPct
		s.Color = color.RGBA{42, 157, 143, 255}
	case Wind:
		s.Title, s.Unit, s.Values = "Wind speed by city", "mph", cols.WindSpeedMPH
		s.Color = color.RGBA{38, 70, 83, 255}
	default:
		return Series{}, fmt.Errorf("unknown chart %q", name)
	}
	return s, nil
}
