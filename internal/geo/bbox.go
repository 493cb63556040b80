// Package geo builds the bounding boxes used to scope photo searches.
package geo

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// HalfWidth is the longitude distance from the centre to each side of a box.
	HalfWidth = 1.0
	// HalfHeight is the latitude distance from the centre to the top and bottom.
	HalfHeight = 1.0

	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Box is a lat/lon rectangle.
type Box struct {
	West  float64
	South float64
	East  float64
	North float64
}

// BoundingBox centres a box on the coordinate, clamped to the valid ranges.
func BoundingBox(lat, lon float64) Box {
	return Box{
		West:  math.Max(lon-HalfWidth, MinLongitude),
		South: math.Max(lat-HalfHeight, MinLatitude),
		East:  math.Min(lon+HalfWidth, MaxLongitude),
		North: math.Min(lat+HalfHeight, MaxLatitude),
	}
}

// String renders the box as "west,south,east,north".
func (b Box) String() string {
	return formatCoord(b.West) + "," + formatCoord(b.South) + "," +
		formatCoord(b.East) + "," + formatCoord(b.North)
}

// Validate rejects coordinates outside the valid latitude and longitude ranges.
func Validate(lat, lon float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return fmt.Errorf("geo: latitude %v out of range [%v, %v]", lat, MinLatitude, MaxLatitude)
	}
	if math.IsNaN(lon) || lon < MinLongitude || lon > MaxLongitude {
		return fmt.Errorf("geo: longitude %v out of range [%v, %v]", lon, MinLongitude, MaxLongitude)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
