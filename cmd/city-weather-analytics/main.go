package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/i474232898/city-weather-analytics/internal/config"
	"github.com/i474232898/city-weather-analytics/internal/export"
	"github.com/i474232898/city-weather-analytics/internal/logging"
	"github.com/i474232898/city-weather-analytics/internal/store"
	"github.com/i474232898/city-weather-analytics/internal/weather"
	"github.com/i474232898/city-weather-analytics/internal/weather/providers"
)

const appName = "city-weather-analytics"

type CLI struct {
	EnvFile string `name:"env-file" default:".env" help:"Environment file to load before reading configuration."`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Serve the dashboard API and refresh the snapshot periodically."`
	Collect CollectCmd `cmd:"" help:"Run one refresh cycle, print the results and write the CSV export."`
}

// pipeline holds the wired components shared by all commands.
type pipeline struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	service *weather.Service
	// refreshTimeout bounds one full refresh cycle.
	refreshTimeout time.Duration
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name(appName),
		kong.Description("Current weather analytics for a fixed list of world cities."),
		kong.UsageOnError(),
	)

	if err := godotenv.Load(cli.EnvFile); err != nil {
		slog.Info("no env file loaded", "path", cli.EnvFile, "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.AppEnv, cfg.LogLevel, appName)
	slog.SetDefault(logger)

	rt, err := newPipeline(cfg, logger)
	if err != nil {
		logger.Error("failed to initialise", "err", err)
		os.Exit(1)
	}

	kctx.FatalIfErrorf(kctx.Run(rt))
}

func newPipeline(cfg *config.AppConfig, logger *slog.Logger) (*pipeline, error) {
	registry, err := weather.NewRegistry(cfg.Cities)
	if err != nil {
		return nil, fmt.Errorf("city registry: %w", err)
	}

	// Shared HTTP client for outbound provider calls; per-fetch deadlines
	// come from the request context.
	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	httpCfg := providers.DefaultHTTPClientConfig(httpClient)
	httpCfg.Backoff.MaxRetries = cfg.FetchRetries

	provider, err := providers.New(providers.Options{
		Name:    cfg.Provider,
		BaseURL: cfg.ProviderBaseURL,
		APIKey:  apiKeyFor(cfg),
		HTTP:    httpCfg,
	})
	if err != nil {
		return nil, err
	}

	client := weather.NewClient(provider, weather.ClientConfig{
		Timeout:        cfg.FetchTimeout,
		Spacing:        cfg.RequestSpacing,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger)

	service := weather.NewService(registry, client, store.NewMemoryStore(), logger)
	if cfg.OutputCSVFile != "" {
		service.OnPublish = func(snap *weather.Snapshot) {
			if err := export.WriteCSVFile(cfg.OutputCSVFile, snap.Dataset.Records()); err != nil {
				logger.Error("csv export failed", "path", cfg.OutputCSVFile, "err", err)
				return
			}
			logger.Debug("csv export written", "path", cfg.OutputCSVFile, "rows", snap.Dataset.Len())
		}
	}

	n := time.Duration(registry.Len())
	return &pipeline{
		cfg:            cfg,
		logger:         logger,
		service:        service,
		refreshTimeout: n*cfg.RequestSpacing + n*cfg.FetchTimeout,
	}, nil
}

func apiKeyFor(cfg *config.AppConfig) string {
	switch cfg.Provider {
	case providers.OpenWeather:
		return cfg.OpenWeatherAPIKey
	case providers.WeatherAPI:
		return cfg.WeatherAPIKey
	default:
		return ""
	}
}
