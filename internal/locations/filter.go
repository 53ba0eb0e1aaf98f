// Package locations deduplicates and filters candidate observation
// sites around a reference point.
package locations

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/astropoint/skyquality/internal/cache"
	"github.com/astropoint/skyquality/internal/geo"
)

// DefaultMaxResults caps the accepted candidates in calculated mode.
// Accumulation stops at the cap, preserving input order; completeness
// beyond it is traded for bounded cost on very large candidate sets.
const DefaultMaxResults = 50

// DefaultGeocodeTTL is how long a water classification stays cached.
// Land/water does not change; the TTL only bounds memory.
const DefaultGeocodeTTL = 24 * time.Hour

// Place is the reverse-geocoding answer the filter cares about.
type Place struct {
	Name    string `json:"name"`
	IsWater bool   `json:"isWater"`
}

// ReverseGeocoder classifies a coordinate. Used here only for the
// open-water exclusion; errors make the check fail open.
type ReverseGeocoder interface {
	Name() string
	ReverseGeocode(ctx context.Context, coord geo.Coordinate) (Place, error)
}

// Candidate is one potential observation site. Identity for
// deduplication is the coordinate rounded to 6 decimal places, not the
// ID: two differently-identified entries at the same rounded coordinate
// are duplicates and the first seen wins.
type Candidate struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Coordinate       geo.Coordinate `json:"coordinate"`
	Certified        bool           `json:"certified"`
	IsDarkSkyReserve bool           `json:"isDarkSkyReserve"`

	// DistanceKm from the reference point, filled in by Filter when a
	// reference is given.
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

func (c Candidate) certified() bool {
	return c.Certified || c.IsDarkSkyReserve
}

// Mode selects which partition Filter returns.
type Mode string

const (
	// ModeCertified returns certified/dark-sky-reserve sites. They are
	// authoritative: never distance- or water-filtered.
	ModeCertified Mode = "certified"
	// ModeCalculated returns non-certified sites, water-excluded and
	// optionally radius-filtered, capped at MaxResults.
	ModeCalculated Mode = "calculated"
)

// Engine filters candidate lists. A nil geocoder disables the water
// check (everything is kept, consistent with failing open). Geocoder
// answers are cached behind a coalescing TTL cache keyed by the
// 6-decimal coordinate, so repeated filter calls over overlapping
// candidate sets issue one reverse-geocode fetch per physical spot.
type Engine struct {
	geocoder   ReverseGeocoder
	places     *cache.Coalescing[Place]
	geocodeTTL time.Duration
	maxResults int
}

// NewEngine creates an Engine with the default result cap. A
// geocodeTTL of 0 falls back to DefaultGeocodeTTL.
func NewEngine(geocoder ReverseGeocoder, geocodeTTL time.Duration) *Engine {
	if geocodeTTL == 0 {
		geocodeTTL = DefaultGeocodeTTL
	}
	return &Engine{
		geocoder:   geocoder,
		places:     cache.NewCoalescing[Place](),
		geocodeTTL: geocodeTTL,
		maxResults: DefaultMaxResults,
	}
}

// Filter deduplicates candidates and applies the mode's rules. The
// reference point may be nil; radiusKm <= 0 disables the radius filter.
// Output preserves input order. Certified-before-other ordering is not
// enforced here; callers combine partitions as needed.
func (e *Engine) Filter(ctx context.Context, candidates []Candidate, reference *geo.Coordinate, radiusKm float64, mode Mode) []Candidate {
	certified, other := partition(candidates)

	if mode == ModeCertified {
		out := make([]Candidate, 0, len(certified))
		for _, c := range certified {
			out = append(out, e.finalize(c, reference))
		}
		return out
	}

	out := make([]Candidate, 0, min(len(other), e.maxResults))
	for _, c := range other {
		if len(out) >= e.maxResults {
			break
		}
		if e.isOpenWater(ctx, c) {
			continue
		}
		if reference != nil && radiusKm > 0 {
			if geo.Distance(*reference, c.Coordinate) > radiusKm {
				continue
			}
		}
		out = append(out, e.finalize(c, reference))
	}
	return out
}

// partition splits candidates into certified and other, deduplicating
// each partition by 6-decimal coordinate key. First occurrence wins;
// later duplicates are dropped silently.
func partition(candidates []Candidate) (certified, other []Candidate) {
	seenCertified := make(map[string]struct{})
	seenOther := make(map[string]struct{})

	for _, c := range candidates {
		key := c.Coordinate.Key(6)
		if c.certified() {
			if _, dup := seenCertified[key]; dup {
				continue
			}
			seenCertified[key] = struct{}{}
			certified = append(certified, c)
		} else {
			if _, dup := seenOther[key]; dup {
				continue
			}
			seenOther[key] = struct{}{}
			other = append(other, c)
		}
	}
	return certified, other
}

// isOpenWater reports whether the candidate is confidently classified as
// open water. Classification errors keep the candidate: availability of
// results wins over precision. Lookups go through the coalescing cache;
// failures are never cached, so a later call retries the geocoder.
func (e *Engine) isOpenWater(ctx context.Context, c Candidate) bool {
	if e.geocoder == nil {
		return false
	}
	coord := c.Coordinate
	place, err := e.places.Get(ctx, coord.Key(6), e.geocodeTTL, func(fctx context.Context) (Place, error) {
		return e.geocoder.ReverseGeocode(fctx, coord)
	})
	if err != nil {
		log.Printf("locations: water check failed for %s via %s: %v; keeping candidate",
			coord.Key(6), e.geocoder.Name(), err)
		return false
	}
	return place.IsWater
}

func (e *Engine) finalize(c Candidate, reference *geo.Coordinate) Candidate {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if reference != nil && c.DistanceKm == nil {
		d := geo.Distance(*reference, c.Coordinate)
		c.DistanceKm = &d
	}
	return c
}
