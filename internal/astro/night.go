// Package astro computes the astronomical-night window for a location,
// with graceful handling of high latitudes where the sun never drops 18
// degrees below the horizon (polar day, midsummer twilight).
package astro

import (
	"time"

	"github.com/sj14/astral/pkg/astral"

	"github.com/astropoint/skyquality/internal/geo"
)

// NightWindow is the interval during which the sun stays more than 18
// degrees below the horizon. A zero-length window (Start == End) means
// astronomical night does not occur on that date at that location.
type NightWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the window.
func (w NightWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// IsZero reports whether the window has no extent.
func (w NightWindow) IsZero() bool {
	return !w.End.After(w.Start)
}

// Contains reports whether t falls inside the window (inclusive start,
// exclusive end).
func (w NightWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ComputeNightWindow returns the astronomical-night window starting on the
// evening of the given calendar date (UTC): dusk on that date through dawn
// on the following date. Pure and deterministic; it never fails. When the
// -18 degree threshold is not reached on either side, the returned window
// is zero-length and anchored at midnight UTC of the date; callers must
// check IsZero.
func ComputeNightWindow(coord geo.Coordinate, date time.Time) NightWindow {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	observer := astral.Observer{Latitude: coord.Lat, Longitude: coord.Lon}

	dusk, duskErr := astral.Dusk(observer, day, astral.DepressionAstronomical)
	dawn, dawnErr := astral.Dawn(observer, day.AddDate(0, 0, 1), astral.DepressionAstronomical)

	// At high latitudes astral reports an error when the sun never reaches
	// the requested depression; a missing astronomical night surfaces as an
	// empty window, never a substitute twilight.
	if duskErr != nil || dawnErr != nil {
		return NightWindow{Start: day, End: day}
	}

	dusk = dusk.UTC()
	dawn = dawn.UTC()

	if !dawn.After(dusk) {
		return NightWindow{Start: day, End: day}
	}

	return NightWindow{Start: dusk, End: dawn}
}
