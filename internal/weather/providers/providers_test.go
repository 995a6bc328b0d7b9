package providers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

var london = weather.City{Name: "London", Latitude: 51.5074, Longitude: -0.1278}

func testHTTPConfig(retries int) HTTPClientConfig {
	return HTTPClientConfig{
		Client: &http.Client{Timeout: 2 * time.Second},
		Backoff: BackoffConfig{
			MaxRetries:      retries,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestOpenMeteo_Fetch(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{
			"latitude":        q.Get("latitude"),
			"longitude":       q.Get("longitude"),
			"wind_speed_unit": q.Get("wind_speed_unit"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"current_units": {"temperature_2m": "°C", "wind_speed_10m": "m/s"},
			"current": {"time": "2024-05-01T12:00", "temperature_2m": 12.7, "relative_humidity_2m": 84, "wind_speed_10m": 6.2}
		}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(testHTTPConfig(0), srv.URL)
	obs, err := p.Fetch(context.Background(), london)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if obs.TemperatureC != 12.7 || obs.HumidityPct != 84 || obs.WindSpeedMS != 6.2 {
		t.Errorf("Fetch() = %+v", obs)
	}
	if want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC); !obs.ObservedAt.Equal(want) {
		t.Errorf("ObservedAt = %v, want %v", obs.ObservedAt, want)
	}
	if query["latitude"] != "51.5074" || query["longitude"] != "-0.1278" || query["wind_speed_unit"] != "ms" {
		t.Errorf("unexpected query %v", query)
	}
}

func TestOpenMeteo_NormalizesUnits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"current_units": {"temperature_2m": "°F", "wind_speed_10m": "km/h"},
			"current": {"time": "2024-05-01T12:00", "temperature_2m": 68, "relative_humidity_2m": 50, "wind_speed_10m": 36}
		}`))
	}))
	defer srv.Close()

	obs, err := NewOpenMeteoProvider(testHTTPConfig(0), srv.URL).Fetch(context.Background(), london)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !almostEqual(obs.TemperatureC, 20) {
		t.Errorf("TemperatureC = %v, want 20", obs.TemperatureC)
	}
	if !almostEqual(obs.WindSpeedMS, 10) {
		t.Errorf("WindSpeedMS = %v, want 10", obs.WindSpeedMS)
	}
}

func TestOpenMeteo_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "no current block", body: `{"current_units": {}}`},
		{name: "missing humidity", body: `{"current": {"temperature_2m": 10, "wind_speed_10m": 1}}`},
		{name: "unknown unit", body: `{"current_units": {"temperature_2m": "K"}, "current": {"temperature_2m": 280, "relative_humidity_2m": 50, "wind_speed_10m": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenMeteoProvider(testHTTPConfig(0), srv.URL).Fetch(context.Background(), london)
			if !errors.Is(err, errMalformed) {
				t.Errorf("Fetch() error = %v, want %v", err, errMalformed)
			}
		})
	}
}

func TestOpenMeteo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"current": {"temperature_2m": 5, "relative_humidity_2m": 60, "wind_speed_10m": 2}}`))
	}))
	defer srv.Close()

	obs, err := NewOpenMeteoProvider(testHTTPConfig(2), srv.URL).Fetch(context.Background(), london)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if obs.TemperatureC != 5 {
		t.Errorf("TemperatureC = %v, want 5", obs.TemperatureC)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
}

func TestOpenMeteo_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOpenMeteoProvider(testHTTPConfig(2), srv.URL).Fetch(context.Background(), london)
	if !errors.Is(err, errRateLimited) {
		t.Fatalf("Fetch() error = %v, want %v", err, errRateLimited)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestOpenMeteo_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOpenMeteoProvider(testHTTPConfig(3), srv.URL).Fetch(context.Background(), london)
	if !errors.Is(err, errUnexpected) {
		t.Fatalf("Fetch() error = %v, want %v", err, errUnexpected)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}

func TestOpenMeteo_CircuitOpensPerCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") == "51.5074" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"current": {"temperature_2m": 5, "relative_humidity_2m": 60, "wind_speed_10m": 2}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(testHTTPConfig(0), srv.URL)
	for i := 0; i < 5; i++ {
		if _, err := p.Fetch(context.Background(), london); !errors.Is(err, errServerError) {
			t.Fatalf("attempt %d: error = %v, want %v", i, err, errServerError)
		}
	}
	if _, err := p.Fetch(context.Background(), london); !errors.Is(err, errCircuitOpen) {
		t.Errorf("error after repeated failures = %v, want %v", err, errCircuitOpen)
	}

	paris := weather.City{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}
	if _, err := p.Fetch(context.Background(), paris); err != nil {
		t.Errorf("other city affected by open circuit: %v", err)
	}
}

func TestOpenMeteo_NoHTTPClient(t *testing.T) {
	_, err := NewOpenMeteoProvider(HTTPClientConfig{}, "http://127.0.0.1:1").Fetch(context.Background(), london)
	if !errors.Is(err, errNoHTTPClient) {
		t.Errorf("Fetch() error = %v, want %v", err, errNoHTTPClient)
	}
}

func TestOpenWeather_Fetch(t *testing.T) {
	var appid, units string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appid = r.URL.Query().Get("appid")
		units = r.URL.Query().Get("units")
		_, _ = w.Write([]byte(`{"dt": 1714564800, "main": {"temp": 28.5, "humidity": 78}, "wind": {"speed": 3.2}}`))
	}))
	defer srv.Close()

	obs, err := NewOpenWeatherProvider(testHTTPConfig(0), "secret", srv.URL).Fetch(context.Background(), london)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if obs.TemperatureC != 28.5 || obs.HumidityPct != 78 || obs.WindSpeedMS != 3.2 {
		t.Errorf("Fetch() = %+v", obs)
	}
	if !obs.ObservedAt.Equal(time.Unix(1714564800, 0)) {
		t.Errorf("ObservedAt = %v", obs.ObservedAt)
	}
	if appid != "secret" || units != "metric" {
		t.Errorf("appid = %q, units = %q", appid, units)
	}
}

func TestOpenWeather_MissingKey(t *testing.T) {
	_, err := NewOpenWeatherProvider(testHTTPConfig(0), "", "http://127.0.0.1:1").Fetch(context.Background(), london)
	if !errors.Is(err, errMissingKey) {
		t.Errorf("Fetch() error = %v, want %v", err, errMissingKey)
	}
}

func TestWeatherAPI_Fetch(t *testing.T) {
	var q string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"current": {"last_updated_epoch": 1714564800, "temp_c": 12.7, "humidity": 84, "wind_kph": 36}}`))
	}))
	defer srv.Close()

	obs, err := NewWeatherAPIProvider(testHTTPConfig(0), "secret", srv.URL).Fetch(context.Background(), london)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if obs.TemperatureC != 12.7 || obs.HumidityPct != 84 || !almostEqual(obs.WindSpeedMS, 10) {
		t.Errorf("Fetch() = %+v", obs)
	}
	if q != "51.5074,-0.1278" {
		t.Errorf("q = %q", q)
	}
}

func TestWeatherAPI_MissingKey(t *testing.T) {
	_, err := NewWeatherAPIProvider(testHTTPConfig(0), "", "").Fetch(context.Background(), london)
	if !errors.Is(err, errMissingKey) {
		t.Errorf("Fetch() error = %v, want %v", err, errMissingKey)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantErr  bool
	}{
		{name: "", wantName: OpenMeteo},
		{name: OpenMeteo, wantName: OpenMeteo},
		{name: OpenWeather, wantName: OpenWeather},
		{name: WeatherAPI, wantName: WeatherAPI},
		{name: "darksky", wantErr: true},
	}

	for _, tt := range tests {
		p, err := New(Options{Name: tt.name, HTTP: testHTTPConfig(0)})
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q) error = %v", tt.name, err)
		}
		if p.Name() != tt.wantName {
			t.Errorf("New(%q).Name() = %q, want %q", tt.name, p.Name(), tt.wantName)
		}
	}
}
