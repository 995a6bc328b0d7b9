package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level
	Port     string `validate:"required,numeric"`

	// Provider selects the upstream weather API.
	Provider          string `validate:"oneof=openmeteo openweathermap weatherapi"`
	ProviderBaseURL   string `validate:"omitempty,url"`
	OpenWeatherAPIKey string `validate:"required_if=Provider openweathermap"`
	WeatherAPIKey     string `validate:"required_if=Provider weatherapi"`

	// FetchTimeout bounds one city's fetch including retries.
	FetchTimeout time.Duration `validate:"gt=0"`
	// RequestSpacing is the minimum gap between consecutive request starts.
	RequestSpacing time.Duration `validate:"gte=0"`
	MaxConcurrency int           `validate:"gte=1"`
	FetchRetries   int           `validate:"gte=0,lte=10"`

	// RefreshInterval controls how often the snapshot is rebuilt.
	RefreshInterval time.Duration `validate:"gte=1m"`

	// OutputCSVFile is rewritten after every refresh; empty disables it.
	OutputCSVFile string

	Cities []weather.City `validate:"required,min=1,dive"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		AppEnv:            strings.TrimSpace(getenvDefault("APP_ENV", "dev")),
		Port:              getenvDefault("PORT", "8080"),
		Provider:          strings.ToLower(getenvDefault("WEATHER_PROVIDER", "openmeteo")),
		ProviderBaseURL:   os.Getenv("WEATHER_PROVIDER_BASE_URL"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		OutputCSVFile:     getenvDefault("OUTPUT_CSV_FILE", "weather_data.csv"),
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"FETCH_TIMEOUT", "10s", &cfg.FetchTimeout},
		{"REQUEST_SPACING", "100ms", &cfg.RequestSpacing},
		{"REFRESH_INTERVAL", "15m", &cfg.RefreshInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if cfg.MaxConcurrency, err = getenvInt("MAX_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.FetchRetries, err = getenvInt("FETCH_RETRIES", 2); err != nil {
		return nil, err
	}

	cfg.Cities = weather.DefaultCities()
	if raw := strings.TrimSpace(os.Getenv("WEATHER_CITIES")); raw != "" {
		cities, err := ParseCities(raw)
		if err != nil {
			return nil, err
		}
		cfg.Cities = cities
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ParseCities parses "Name:lat:lon" entries separated by commas.
func ParseCities(raw string) ([]weather.City, error) {
	var cities []weather.City
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid WEATHER_CITIES entry %q (want Name:lat:lon)", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", entry, err)
		}
		cities = append(cities, weather.City{
			Name:      strings.TrimSpace(parts[0]),
			Latitude:  lat,
			Longitude: lon,
		})
	}
	if len(cities) == 0 {
		return nil, weather.ErrEmptyRegistry
	}
	return cities, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
