package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

// WriteCSV writes the records with a header row.
func WriteCSV(w io.Writer, records []weather.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(weather.RecordHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.City,
			formatFloat(r.TemperatureC),
			formatFloat(r.TemperatureF),
			formatFloat(r.HumidityPct),
			formatFloat(r.WindSpeedMS),
			formatFloat(r.WindSpeedMPH),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile replaces path with the CSV export. The file is written to a
// temporary sibling first and renamed into place.
func WriteCSVFile(path string, records []weather.Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".weather-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
