// Package siqs computes the Sky-Intelligence-Quality-Score: a composite
// 0-10 stargazing viability score derived from weather, light pollution
// and the astronomical-night window of a location.
package siqs

import (
	"time"

	"github.com/astropoint/skyquality/internal/geo"
)

// CloudSample is a single timestamped cloud-cover reading (percent).
type CloudSample struct {
	Time     time.Time `json:"time"`
	CoverPct float64   `json:"coverPct"`
}

// WeatherSample is the normalized weather input for scoring. Numeric
// fields are pointers: a nil field means the provider did not report it,
// and the corresponding factor is omitted from the score instead of
// defaulting to a sentinel value.
type WeatherSample struct {
	Temperature   *float64 `json:"temperatureC"`
	Humidity      *float64 `json:"humidityPercent"`
	WindSpeed     *float64 `json:"windSpeedMs"`
	Precipitation *float64 `json:"precipMm"`

	// CloudCover is the instantaneous overall cover, carried for
	// display only. Scoring uses CloudSamples, the hourly readings
	// windowed over the night.
	CloudCover   *float64      `json:"cloudCoverPct"`
	CloudSamples []CloudSample `json:"cloudSamples,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Factor is one independently normalized component of the composite
// score. The factor list is ordered for display; scoring itself is a
// weighted mean and does not depend on order.
type Factor struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"` // 0 (worst) .. 10 (best)
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Factor names, in display order.
const (
	FactorCloudCover     = "cloud_cover"
	FactorLightPollution = "light_pollution"
	FactorHumidity       = "humidity"
	FactorWind           = "wind"
	FactorPrecipitation  = "precipitation"
)

// Result is an immutable scoring outcome. Once produced (and possibly
// cached) it is never mutated.
type Result struct {
	Score    float64  `json:"score"` // 0..10
	IsViable bool     `json:"isViable"`
	Factors  []Factor `json:"factors"`

	Coordinate      geo.Coordinate `json:"coordinate"`
	CalculationType string         `json:"calculationType"`
	Timestamp       time.Time      `json:"timestamp"`
}

// Calculation types recorded in Result metadata.
const (
	// CalculationStandard means a real night window was available.
	CalculationStandard = "standard"
	// CalculationPolarFallback means the night window had zero length
	// (polar summer) and the cloud factor was omitted.
	CalculationPolarFallback = "polar_fallback"
)
