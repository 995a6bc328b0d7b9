package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/city-weather-analytics/internal/api/http"
	"github.com/i474232898/city-weather-analytics/internal/scheduler"
	"github.com/i474232898/city-weather-analytics/internal/weather"
)

type ServeCmd struct{}

func (c *ServeCmd) Run(rt *pipeline) error {
	// Scheduler that refreshes immediately and then periodically.
	sched := scheduler.New(rt.service, rt.cfg.RefreshInterval, rt.refreshTimeout, rt.logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          rt.refreshTimeout + 10*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, rt.service, rt.refreshTimeout)

	go func() {
		rt.logger.Info("http server listening", "port", rt.cfg.Port)
		if err := app.Listen(":" + rt.cfg.Port); err != nil {
			rt.logger.Error("fiber server stopped", "err", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	return nil
}

type CollectCmd struct{}

func (c *CollectCmd) Run(rt *pipeline) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, rt.refreshTimeout)
	defer cancel()

	snap, err := rt.service.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	if err := printSnapshot(os.Stdout, snap); err != nil {
		return err
	}
	if rt.cfg.OutputCSVFile != "" {
		fmt.Printf("\nData exported to: %s\n", rt.cfg.OutputCSVFile)
	}
	if snap.Dataset.Empty() {
		return fmt.Errorf("no weather data could be collected (%s)", snap.Dataset.Coverage())
	}
	return nil
}

// printSnapshot writes a plain-text table followed by the key insights.
func printSnapshot(w io.Writer, snap *weather.Snapshot) error {
	ds := snap.Dataset
	fmt.Fprintf(w, "Collected weather data for %d cities (%s)\n\n", ds.Len(), ds.Coverage())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "City\tTemp (C)\tTemp (F)\tHumidity (%)\tWind (m/s)\tWind (mph)\t")
	for _, r := range ds.Rows() {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.0f\t%.1f\t%.1f\t\n",
			r.City, r.TemperatureC, r.TemperatureF, r.HumidityPct, r.WindSpeedMS, r.WindSpeedMPH)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	ins := snap.Insights
	fmt.Fprintln(w, "\nKey insights:")
	fmt.Fprintf(w, "  Hottest:    %s\n", ins.Temperature.HottestCity)
	fmt.Fprintf(w, "  Coldest:    %s\n", ins.Temperature.ColdestCity)
	fmt.Fprintf(w, "  Most humid: %s\n", ins.Humidity.MostHumidCity)
	fmt.Fprintf(w, "  Windiest:   %s\n", ins.Wind.WindiestCity)
	fmt.Fprintf(w, "  Avg temp:   %s C\n", ins.Temperature.Avg)
	if failed := ds.FailedCities(); len(failed) > 0 {
		fmt.Fprintf(w, "  Unavailable: %v\n", failed)
	}
	return nil
}
