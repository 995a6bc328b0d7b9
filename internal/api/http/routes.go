package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/city-weather-analytics/internal/chart"
	"github.com/i474232898/city-weather-analytics/internal/export"
	"github.com/i474232898/city-weather-analytics/internal/store"
	"github.com/i474232898/city-weather-analytics/internal/weather"
)

var validate = validator.New()

// Service is what the HTTP layer needs from the weather pipeline.
type Service interface {
	Refresh(ctx context.Context) (*weather.Snapshot, error)
	Latest() (*weather.Snapshot, error)
	Cities() []weather.City
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. refreshTimeout
// bounds a manual refresh.
func RegisterRoutes(app *fiber.App, service Service, refreshTimeout time.Duration) {
	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":        "ok",
			"service":       "city-weather-analytics",
			"dataAvailable": false,
			"lastUpdate":    nil,
		}
		if snap, err := service.Latest(); err == nil {
			resp["dataAvailable"] = !snap.Dataset.Empty()
			resp["lastUpdate"] = snap.CreatedAt
		}
		return c.JSON(resp)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"cities": service.Cities()})
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		snap, err := latest(service)
		if err != nil {
			return err
		}
		return c.JSON(newSnapshotResponse(snap))
	})

	v1.Get("/insights", func(c *fiber.Ctx) error {
		snap, err := latest(service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"snapshotId":  snap.ID,
			"lastUpdated": snap.CreatedAt,
			"coverage":    snap.Dataset.Coverage(),
			"insights":    snap.Insights,
		})
	})

	v1.Get("/charts/:name", func(c *fiber.Ctx) error {
		series, snap, err := chartSeries(c, service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"chart":      c.Params("name"),
			"title":      series.Title,
			"unit":       series.Unit,
			"labels":     series.Labels,
			"values":     series.Values,
			"snapshotId": snap.ID,
		})
	})

	v1.Get("/charts/:name/image", func(c *fiber.Ctx) error {
		series, _, err := chartSeries(c, service)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := chart.RenderBar(&buf, series); err != nil {
			if errors.Is(err, chart.ErrNoData) {
				return fiber.NewError(fiber.StatusNotFound, "no data available for chart")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
		}
		c.Type("png")
		return c.Send(buf.Bytes())
	})

	v1.Get("/export.csv", func(c *fiber.Ctx) error {
		snap, err := latest(service)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, snap.Dataset.Records()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to export csv")
		}
		c.Attachment(fmt.Sprintf("weather_data_%s.csv", snap.CreatedAt.Format("20060102_150405")))
		c.Type("csv")
		return c.Send(buf.Bytes())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), refreshTimeout)
		defer cancel()

		snap, err := service.Refresh(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "refresh did not complete")
		}
		return c.JSON(fiber.Map{
			"status":      "success",
			"snapshotId":  snap.ID,
			"lastUpdated": snap.CreatedAt,
			"totalCities": snap.Insights.TotalCities,
			"failedCount": snap.Dataset.FailedCount(),
			"coverage":    snap.Dataset.Coverage(),
		})
	})
}

// snapshotResponse is the full dashboard payload.
type snapshotResponse struct {
	SnapshotID      string           `json:"snapshotId"`
	LastUpdated     time.Time        `json:"lastUpdated"`
	TotalCities     int              `json:"totalCities"`
	RequestedCities int              `json:"requestedCities"`
	FailedCount     int              `json:"failedCount"`
	FailedCities    []string         `json:"failedCities"`
	Coverage        string           `json:"coverage"`
	Data            []weather.Record `json:"data"`
	Insights        weather.Insights `json:"insights"`
}

func newSnapshotResponse(snap *weather.Snapshot) snapshotResponse {
	ds := snap.Dataset
	return snapshotResponse{
		SnapshotID:      snap.ID,
		LastUpdated:     snap.CreatedAt,
		TotalCities:     ds.Len(),
		RequestedCities: ds.Requested(),
		FailedCount:     ds.FailedCount(),
		FailedCities:    ds.FailedCities(),
		Coverage:        ds.Coverage(),
		Data:            ds.Records(),
		Insights:        snap.Insights,
	}
}

func latest(service Service) (*weather.Snapshot, error) {
	snap, err := service.Latest()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusServiceUnavailable, "weather data not available yet")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load weather data")
	}
	return snap, nil
}

// chartQuery holds the path parameter identifying a chart.
type chartQuery struct {
	Name string `validate:"required,oneof=temperature humidity wind"`
}

func chartSeries(c *fiber.Ctx, service Service) (chart.Series, *weather.Snapshot, error) {
	q := chartQuery{Name: c.Params("name")}
	if err := validate.Struct(q); err != nil {
		return chart.Series{}, nil, fiber.NewError(fiber.StatusNotFound, "chart not found")
	}

	snap, err := latest(service)
	if err != nil {
		return chart.Series{}, nil, err
	}

	series, err := chart.SeriesFor(q.Name, snap.Dataset.Columns())
	if err != nil {
		return chart.Series{}, nil, fiber.NewError(fiber.StatusNotFound, "chart not found")
	}
	return series, snap, nil
}

// ErrorHandler renders errors as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
