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

// DefaultOpenWeatherURL is the OpenWeatherMap current weather endpoint.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	httpCfg  HTTPClientConfig
	breakers *breakerSet
}

func NewOpenWeatherProvider(cfg HTTPClientConfig, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherProvider{
		name:     "openweathermap",
		apiKey:   apiKey,
		baseURL:  baseURL,
		httpCfg:  cfg,
		breakers: newBreakerSet("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, city weather.City) (weather.Observation, error) {
	if p.apiKey == "" {
		return weather.Observation{}, fmt.Errorf("openweather: %w", errMissingKey)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		// metric gives °C and m/s
		values.Set("units", "metric")
		values.Set("lat", strconv.FormatFloat(city.Latitude, 'f', 4, 64))
		values.Set("lon", strconv.FormatFloat(city.Longitude, 'f', 4, 64))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.breakers.get(city.Key()), buildRequest)
	if err != nil {
		return weather.Observation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Dt   int64 `json:"dt"`
		Main *struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Wind *struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if payload.Main == nil || payload.Main.Temp == nil || payload.Main.Humidity == nil ||
		payload.Wind == nil || payload.Wind.Speed == nil {
		return weather.Observation{}, fmt.Errorf("%w: missing main.temp, main.humidity or wind.speed", errMalformed)
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	return weather.Observation{
		TemperatureC: *payload.Main.Temp,
		HumidityPct:  *payload.Main.Humidity,
		WindSpeedMS:  *payload.Wind.Speed,
		ObservedAt:   ts,
	}, nil
}
