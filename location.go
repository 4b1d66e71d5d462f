package georec

import (
	"math"
	"strconv"
)

// CoordinatePrecision is the number of fixed-point units per degree.
const CoordinatePrecision = 10_000_000

// Location is a fixed-point geographic coordinate: X is longitude and Y is
// latitude, both in units of 1e-7 degrees.
//
// The zero Location is a real place (0°, 0°). Whether an element carries a
// location at all is recorded separately, see Element.HasLoc.
type Location struct {
	X int32
	Y int32
}

// LocationFromDegrees rounds lon/lat to the nearest fixed-point Location.
func LocationFromDegrees(lon, lat float64) Location {
	return Location{X: degreesToFixed(lon), Y: degreesToFixed(lat)}
}

func degreesToFixed(v float64) int32 {
	return int32(math.Round(v * CoordinatePrecision))
}

func (l Location) Lon() float64 {
	return float64(l.X) / CoordinatePrecision
}

func (l Location) Lat() float64 {
	return float64(l.Y) / CoordinatePrecision
}

// Valid reports whether the location lies within -180..180, -90..90.
func (l Location) Valid() bool {
	return l.X >= -180*CoordinatePrecision && l.X <= 180*CoordinatePrecision &&
		l.Y >= -90*CoordinatePrecision && l.Y <= 90*CoordinatePrecision
}

func (l Location) String() string {
	return "(" + formatFixed(l.X) + " " + formatFixed(l.Y) + ")"
}

func formatFixed(v int32) string {
	return strconv.FormatFloat(float64(v)/CoordinatePrecision, 'f', 7, 64)
}
