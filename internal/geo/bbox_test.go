package geo_test

import (
	"math"
	"testing"

	"github.com/Oxyrus/virtualtourist/internal/geo"
)

func TestBoundingBoxInterior(t *testing.T) {
	box := geo.BoundingBox(39.5, -98.35)

	if got, want := box.String(), "-99.35,38.5,-97.35,40.5"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBoundingBoxClampsAtBounds(t *testing.T) {
	box := geo.BoundingBox(90, 180)

	if box.North != 90 {
		t.Fatalf("expected north clamped to 90, got %v", box.North)
	}
	if box.East != 180 {
		t.Fatalf("expected east clamped to 180, got %v", box.East)
	}
	if got, want := box.String(), "179,89,180,90"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	box = geo.BoundingBox(-90, -180)
	if box.South != -90 || box.West != -180 {
		t.Fatalf("expected south/west clamped, got %+v", box)
	}
}

func TestBoundingBoxStaysWithinBounds(t *testing.T) {
	for lat := -90.0; lat <= 90.0; lat += 7.5 {
		for lon := -180.0; lon <= 180.0; lon += 11.25 {
			box := geo.BoundingBox(lat, lon)

			if box.West > box.East {
				t.Fatalf("west > east for (%v, %v): %+v", lat, lon, box)
			}
			if box.South > box.North {
				t.Fatalf("south > north for (%v, %v): %+v", lat, lon, box)
			}
			if box.West < geo.MinLongitude || box.East > geo.MaxLongitude {
				t.Fatalf("longitude out of range for (%v, %v): %+v", lat, lon, box)
			}
			if box.South < geo.MinLatitude || box.North > geo.MaxLatitude {
				t.Fatalf("latitude out of range for (%v, %v): %+v", lat, lon, box)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"corner", 90, -180, false},
		{"latitude too high", 90.01, 0, true},
		{"longitude too low", 0, -180.5, true},
		{"nan", math.NaN(), 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := geo.Validate(tc.lat, tc.lon)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate(%v, %v) error = %v, wantErr %v", tc.lat, tc.lon, err, tc.wantErr)
			}
		})
	}
}
