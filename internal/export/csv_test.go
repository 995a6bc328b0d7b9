package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/i474232898/city-weather-analytics/internal/weather"
)

var sample = []weather.Record{
	{City: "Mumbai", TemperatureC: 28.5, TemperatureF: 83.3, HumidityPct: 78, WindSpeedMS: 3.2, WindSpeedMPH: 7.2},
	{City: "Rio de Janeiro, BR", TemperatureC: -0.5, TemperatureF: 31.1, HumidityPct: 60, WindSpeedMS: 0, WindSpeedMPH: 0},
}

const sampleCSV = "city,temperature_c,temperature_f,humidity_pct,wind_speed_ms,wind_speed_mph\n" +
	"Mumbai,28.5,83.3,78.0,3.2,7.2\n" +
	"\"Rio de Janeiro, BR\",-0.5,31.1,60.0,0.0,0.0\n"

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := buf.String(); got != sampleCSV {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", got, sampleCSV)
	}
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	want := "city,temperature_c,temperature_f,humidity_pct,wind_speed_ms,wind_speed_mph\n"
	if buf.String() != want {
		t.Errorf("WriteCSV(nil) = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSVFile_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "weather_data.csv")

	if err := WriteCSVFile(path, sample[:1]); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}
	if err := WriteCSVFile(path, sample); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != sampleCSV {
		t.Errorf("file contents =\n%s\nwant\n%s", b, sampleCSV)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("export dir has %d entries, want only the csv file", len(entries))
	}
}
