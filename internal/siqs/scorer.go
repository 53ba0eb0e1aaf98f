package siqs

import (
	"fmt"
	"time"

	"github.com/astropoint/skyquality/internal/astro"
	"github.com/astropoint/skyquality/internal/geo"
	"github.com/astropoint/skyquality/internal/lightpollution"
)

// ViabilityThreshold is the composite score at or above which a night is
// considered viable for observation. The boundary is inclusive.
const ViabilityThreshold = 5.0

// Factor weights. Omitted factors drop out of both numerator and
// denominator, so a location is not penalized merely because auxiliary
// data was unavailable.
const (
	weightCloud          = 0.40
	weightLightPollution = 0.30
	weightHumidity       = 0.10
	weightWind           = 0.10
	weightPrecipitation  = 0.10
)

// Saturation points for the atmospheric penalties: at or beyond these
// values the factor bottoms out at 0.
const (
	windSaturationMS     = 15.0
	precipSaturationMM   = 5.0
	humiditySaturationPc = 100.0
)

// ComputeScore combines a weather sample, the night window and a
// light-pollution estimate into a composite score with a per-factor
// breakdown. Pure and total: any missing input shrinks the factor list
// instead of failing the computation.
func ComputeScore(coord geo.Coordinate, weather WeatherSample, window astro.NightWindow, light lightpollution.Estimate) Result {
	var factors []Factor

	if f, ok := cloudFactor(weather, window); ok {
		factors = append(factors, f)
	}
	if light.Bortle != nil {
		factors = append(factors, lightPollutionFactor(*light.Bortle))
	}
	if weather.Humidity != nil {
		factors = append(factors, penaltyFactor(
			FactorHumidity, weightHumidity, *weather.Humidity, humiditySaturationPc,
			fmt.Sprintf("relative humidity %.0f%%", *weather.Humidity)))
	}
	if weather.WindSpeed != nil {
		factors = append(factors, penaltyFactor(
			FactorWind, weightWind, *weather.WindSpeed, windSaturationMS,
			fmt.Sprintf("wind %.1f m/s", *weather.WindSpeed)))
	}
	if weather.Precipitation != nil {
		factors = append(factors, penaltyFactor(
			FactorPrecipitation, weightPrecipitation, *weather.Precipitation, precipSaturationMM,
			fmt.Sprintf("precipitation %.1f mm", *weather.Precipitation)))
	}

	score := weightedMean(factors)

	calcType := CalculationStandard
	if window.IsZero() {
		calcType = CalculationPolarFallback
	}

	return Result{
		Score:           score,
		IsViable:        score >= ViabilityThreshold,
		Factors:         factors,
		Coordinate:      coord,
		CalculationType: calcType,
		Timestamp:       time.Now().UTC(),
	}
}

// cloudFactor scores cloud cover during the night window, using only
// hourly samples whose timestamps fall inside it. With a zero-length
// window, or when no sample lands inside the window (a date beyond the
// forecast horizon), the factor is omitted entirely: it affects neither
// numerator nor denominator. The instantaneous reading is never scored
// against a night it does not describe.
func cloudFactor(weather WeatherSample, window astro.NightWindow) (Factor, bool) {
	if window.IsZero() {
		return Factor{}, false
	}

	var sum float64
	var n int
	for _, s := range weather.CloudSamples {
		if window.Contains(s.Time) {
			sum += s.CoverPct
			n++
		}
	}
	if n == 0 {
		return Factor{}, false
	}
	cover := sum / float64(n)

	return Factor{
		Name:        FactorCloudCover,
		Score:       clampScore(10 * (1 - cover/100)),
		Weight:      weightCloud,
		Description: fmt.Sprintf("mean cloud cover %.0f%% during astronomical night", cover),
	}, true
}

// lightPollutionFactor maps Bortle 1 to 10 and Bortle 9 to 0, linearly.
func lightPollutionFactor(bortle float64) Factor {
	if bortle < 1 {
		bortle = 1
	}
	if bortle > 9 {
		bortle = 9
	}
	return Factor{
		Name:        FactorLightPollution,
		Score:       clampScore(10 * (9 - bortle) / 8),
		Weight:      weightLightPollution,
		Description: fmt.Sprintf("Bortle class %.1f sky", bortle),
	}
}

// penaltyFactor scores an adverse condition linearly: 10 at zero,
// 0 at or beyond the saturation value. Monotonic in the condition.
func penaltyFactor(name string, weight, value, saturation float64, desc string) Factor {
	return Factor{
		Name:        name,
		Score:       clampScore(10 * (1 - value/saturation)),
		Weight:      weight,
		Description: desc,
	}
}

func weightedMean(factors []Factor) float64 {
	if len(factors) == 0 {
		return 0
	}
	var num, den float64
	for _, f := range factors {
		num += f.Weight * f.Score
		den += f.Weight
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
