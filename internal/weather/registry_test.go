package weather

import (
	"errors"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name    string
		cities  []City
		wantErr error
	}{
		{name: "defaults", cities: DefaultCities()},
		{name: "empty", cities: nil, wantErr: ErrEmptyRegistry},
		{
			name: "duplicate",
			cities: []City{
				{Name: "Paris", Latitude: 48.85, Longitude: 2.35},
				{Name: " Paris ", Latitude: 48.85, Longitude: 2.35},
			},
			wantErr: ErrDuplicateCity,
		},
		{name: "blank name", cities: []City{{Name: "  ", Latitude: 1, Longitude: 1}}, wantErr: ErrInvalidCity},
		{name: "latitude out of range", cities: []City{{Name: "X", Latitude: 91, Longitude: 0}}, wantErr: ErrInvalidCity},
		{name: "longitude out of range", cities: []City{{Name: "X", Latitude: 0, Longitude: -180.5}}, wantErr: ErrInvalidCity},
		{name: "boundaries", cities: []City{{Name: "Pole", Latitude: -90, Longitude: 180}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.cities)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewRegistry() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRegistry() error = %v", err)
			}
			if reg.Len() != len(tt.cities) {
				t.Errorf("Len() = %d, want %d", reg.Len(), len(tt.cities))
			}
		})
	}
}

func TestRegistry_CitiesIsOrderedCopy(t *testing.T) {
	reg, err := NewRegistry(DefaultCities())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	cities := reg.Cities()
	if cities[0].Name != "New York" || cities[len(cities)-1].Name != "Rio de Janeiro" {
		t.Errorf("unexpected order: first %q last %q", cities[0].Name, cities[len(cities)-1].Name)
	}

	cities[0].Name = "changed"
	if reg.Cities()[0].Name != "New York" {
		t.Error("mutating Cities() result changed the registry")
	}
}
