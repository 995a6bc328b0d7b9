package providers

import (
	"fmt"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

const (
	OpenMeteo   = "openmeteo"
	OpenWeather = "openweathermap"
	WeatherAPI  = "weatherapi"
)

// Options selects and configures a provider.
type Options struct {
	Name    string
	BaseURL string
	APIKey  string
	HTTP    HTTPClientConfig
}

// New returns the provider named in opts.
func New(opts Options) (weather.Provider, error) {
	switch opts.Name {
	case OpenMeteo, "":
		return NewOpenMeteoProvider(opts.HTTP, opts.BaseURL), nil
	case OpenWeather:
		return NewOpenWeatherProvider(opts.HTTP, opts.APIKey, opts.BaseURL), nil
	case WeatherAPI:
		return NewWeatherAPIProvider(opts.HTTP, opts.APIKey, opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", opts.Name)
	}
}
