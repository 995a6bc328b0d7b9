package weather

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyRegistry is returned when no cities are configured.
	ErrEmptyRegistry = errors.New("city registry is empty")
	// ErrDuplicateCity is returned when two cities share a name.
	ErrDuplicateCity = errors.New("duplicate city name")
	// ErrInvalidCity is returned for blank names or out-of-range coordinates.
	ErrInvalidCity = errors.New("invalid city")
)

var validate = validator.New()

// Registry is the fixed, ordered list of monitored cities.
type Registry struct {
	cities []City
}

// NewRegistry validates cities and freezes their order.
func NewRegistry(cities []City) (*Registry, error) {
	if len(cities) == 0 {
		return nil, ErrEmptyRegistry
	}

	seen := make(map[string]struct{}, len(cities))
	frozen := make([]City, 0, len(cities))
	for i, c := range cities {
		c.Name = strings.TrimSpace(c.Name)
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("%w at index %d (%q): %v", ErrInvalidCity, i, c.Name, err)
		}
		if _, dup := seen[c.Key()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCity, c.Name)
		}
		seen[c.Key()] = struct{}{}
		frozen = append(frozen, c)
	}

	return &Registry{cities: frozen}, nil
}

// Cities returns the cities in registry order. The slice is a copy.
func (r *Registry) Cities() []City {
	out := make([]City, len(r.cities))
	copy(out, r.cities)
	return out
}

// Len returns the number of cities.
func (r *Registry) Len() int {
	return len(r.cities)
}

// DefaultCities are the ten world cities tracked out of the box.
func DefaultCities() []City {
	return []City{
		{Name: "New York", Latitude: 40.7128, Longitude: -74.0060},
		{Name: "Tokyo", Latitude: 35.6895, Longitude: 139.6917},
		{Name: "London", Latitude: 51.5074, Longitude: -0.1278},
		{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
		{Name: "Berlin", Latitude: 52.5200, Longitude: 13.4050},
		{Name: "Sydney", Latitude: -33.8688, Longitude: 151.2093},
		{Name: "Mumbai", Latitude: 19.0760, Longitude: 72.8777},
		{Name: "Cape Town", Latitude: -33.9249, Longitude: 18.4241},
		{Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173},
		{Name: "Rio de Janeiro", Latitude: -22.9068, Longitude: -43.1729},
	}
}
