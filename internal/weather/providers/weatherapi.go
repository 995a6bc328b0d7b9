package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

// DefaultWeatherAPIURL is the WeatherAPI.com current conditions endpoint.
const DefaultWeatherAPIURL = "https://api.weatherapi.com/v1/current.json"

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name     string
	apiKey   string
	baseURL  string
	httpCfg  HTTPClientConfig
	breakers *breakerSet
}

func NewWeatherAPIProvider(cfg HTTPClientConfig, apiKey, baseURL string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = DefaultWeatherAPIURL
	}
	return &WeatherAPIProvider{
		name:     "weatherapi",
		apiKey:   apiKey,
		baseURL:  baseURL,
		httpCfg:  cfg,
		breakers: newBreakerSet("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, city weather.City) (weather.Observation, error) {
	if p.apiKey == "" {
		return weather.Observation{}, fmt.Errorf("weatherapi: %w", errMissingKey)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI accepts "lat,lon" in q.
		values.Set("q", fmt.Sprintf("%.4f,%.4f", city.Latitude, city.Longitude))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.breakers.get(city.Key()), buildRequest)
	if err != nil {
		return weather.Observation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current *struct {
			LastUpdatedEpoch int64    `json:"last_updated_epoch"`
			TempC            *float64 `json:"temp_c"`
			Humidity         *float64 `json:"humidity"`
			WindKph          *float64 `json:"wind_kph"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	cur := payload.Current
	if cur == nil || cur.TempC == nil || cur.Humidity == nil || cur.WindKph == nil {
		return weather.Observation{}, fmt.Errorf("%w: missing current temp_c, humidity or wind_kph", errMalformed)
	}

	ts := time.Now().UTC()
	if cur.LastUpdatedEpoch > 0 {
		ts = time.Unix(cur.LastUpdatedEpoch, 0).UTC()
	}

	windMS, err := normalizeWindSpeed(*cur.WindKph, "km/h")
	if err != nil {
		return weather.Observation{}, err
	}

	return weather.Observation{
		TemperatureC: *cur.TempC,
		HumidityPct:  *cur.Humidity,
		WindSpeedMS:  windMS,
		ObservedAt:   ts,
	}, nil
}
