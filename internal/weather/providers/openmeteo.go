package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

// DefaultOpenMeteoURL is the Open-Meteo forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	breakers *breakerSet
}

func NewOpenMeteoProvider(cfg HTTPClientConfig, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  baseURL,
		httpCfg:  cfg,
		breakers: newBreakerSet("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoResponse struct {
	CurrentUnits struct {
		Temperature string `json:"temperature_2m"`
		WindSpeed   string `json:"wind_speed_10m"`
	} `json:"current_units"`
	Current *struct {
		Time        string   `json:"time"`
		Temperature *float64 `json:"temperature_2m"`
		Humidity    *float64 `json:"relative_humidity_2m"`
		WindSpeed   *float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, city weather.City) (weather.Observation, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(city.Latitude, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(city.Longitude, 'f', 4, 64))
		values.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m")
		values.Set("wind_speed_unit", "ms")
		values.Set("timezone", "GMT")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.breakers.get(city.Key()), buildRequest)
	if err != nil {
		return weather.Observation{}, err
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", errMalformed, err)
	}

	cur := payload.Current
	if cur == nil || cur.Temperature == nil || cur.Humidity == nil || cur.WindSpeed == nil {
		return weather.Observation{}, fmt.Errorf("%w: missing current temperature, humidity or wind speed", errMalformed)
	}

	tempC, err := normalizeTemperature(*cur.Temperature, payload.CurrentUnits.Temperature)
	if err != nil {
		return weather.Observation{}, err
	}
	windMS, err := normalizeWindSpeed(*cur.WindSpeed, payload.CurrentUnits.WindSpeed)
	if err != nil {
		return weather.Observation{}, err
	}

	ts, err := time.Parse("2006-01-02T15:04", cur.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.Observation{
		TemperatureC: tempC,
		HumidityPct:  *cur.Humidity,
		WindSpeedMS:  windMS,
		ObservedAt:   ts.UTC(),
	}, nil
}

// normalizeTemperature converts a temperature in the given unit to °C.
// An empty unit is taken to be °C.
func normalizeTemperature(v float64, unit string) (float64, error) {
	switch unit {
	case "", "°C", "C", "celsius":
		return v, nil
	case "°F", "F", "fahrenheit":
		return (v - 32) * 5 / 9, nil
	default:
		return 0, fmt.Errorf("%w: unknown temperature unit %q", errMalformed, unit)
	}
}

// normalizeWindSpeed converts a wind speed in the given unit to m/s.
// An empty unit is taken to be m/s.
func normalizeWindSpeed(v float64, unit string) (float64, error) {
	switch unit {
	case "", "m/s", "ms":
		return v, nil
	case "km/h", "kmh":
		return v / 3.6, nil
	case "mp/h", "mph":
		return v / 2.23694, nil
	case "kn", "kt":
		return v * 0.514444, nil
	default:
		return 0, fmt.Errorf("%w: unknown wind speed unit %q", errMalformed, unit)
	}
}
