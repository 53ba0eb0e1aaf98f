// Package geo holds the coordinate type shared by the scoring and
// filtering subsystems, plus the small amount of spherical geometry
// they need.
package geo

import (
	"math"
	"strconv"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Sanitize clamps latitude to [-90, 90] and longitude to [-180, 180].
// Non-finite inputs are treated as zero. Out-of-range coordinates are
// clamped rather than rejected; this is the sanitization boundary for
// every coordinate entering the core.
func Sanitize(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: clamp(lat, -90, 90),
		Lon: clamp(lon, -180, 180),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Key returns a canonical string key for this coordinate with the given
// number of decimal places. 6 places (~0.11 m) identifies a physical spot
// for deduplication; 4 places (~11 m) buckets nearby points for caching.
func (c Coordinate) Key(places int) string {
	return formatRounded(c.Lat, places) + "," + formatRounded(c.Lon, places)
}

func formatRounded(v float64, places int) string {
	scale := math.Pow(10, float64(places))
	r := math.Round(v*scale) / scale
	if r == 0 {
		// math.Round keeps the sign of negative zero; "-0.000000" and
		// "0.000000" must share a key.
		r = 0
	}
	return strconv.FormatFloat(r, 'f', places, 64)
}

// Distance returns the great-circle distance between two coordinates in
// kilometers, using the haversine formula.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
