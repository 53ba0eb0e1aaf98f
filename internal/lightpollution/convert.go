// Package lightpollution converts between the three common night-sky
// darkness measures: the Bortle class (1-9), sky brightness in magnitudes
// per square arcsecond (MPSAS), and the naked-eye limiting magnitude
// (NELM).
package lightpollution

import "math"

// bandEdges[i] is the MPSAS value at the bright end of Bortle class i+1;
// bandEdges[i+1] the dark end of the next class. Anchored at published
// class boundaries, with the class 8/9 edges extended to cover inner-city
// skies down to 16.0 MPSAS.
var bandEdges = [10]float64{
	22.00, // class 1, dark edge
	21.99,
	21.89,
	21.69,
	20.49,
	19.50,
	18.94,
	18.38,
	17.80,
	16.00, // class 9, bright edge
}

// Estimate is a light-pollution reading with nullable fields. When the
// Bortle class is unavailable the derived fields stay nil as well; absent
// data propagates as absence, never as an approximated value.
type Estimate struct {
	Bortle *float64 `json:"bortleScale"`
	MPSAS  *float64 `json:"sqm"`
	NELM   *float64 `json:"nelm"`
}

// FromBortle builds a full estimate from a Bortle class, deriving MPSAS
// and NELM. Out-of-range input clamps to class 1 or 9.
func FromBortle(bortle float64) Estimate {
	b := clampBortle(bortle)
	m := BortleToMPSAS(b)
	n := MPSASToNELM(m)
	return Estimate{Bortle: &b, MPSAS: &m, NELM: &n}
}

// FromBrightness builds an estimate from a raw 0-255 brightness sample.
func FromBrightness(raw int) Estimate {
	m := BrightnessToMPSAS(raw)
	b := float64(MPSASToBortle(m))
	n := MPSASToNELM(m)
	return Estimate{Bortle: &b, MPSAS: &m, NELM: &n}
}

// Unknown is the estimate with every field absent.
func Unknown() Estimate {
	return Estimate{}
}

// BortleToMPSAS converts a (possibly fractional) Bortle class to an MPSAS
// value by linear interpolation inside the class band. Values outside
// [1, 9] clamp to the corresponding edge.
func BortleToMPSAS(bortle float64) float64 {
	b := clampBortle(bortle)

	class := int(math.Floor(b))
	if class >= 9 {
		class = 9
	}
	frac := b - float64(class)

	upper := bandEdges[class-1]
	lower := bandEdges[class]
	return upper - frac*(upper-lower)
}

// MPSASToBortle classifies an MPSAS value into a Bortle class 1-9.
func MPSASToBortle(mpsas float64) int {
	for class := 1; class <= 9; class++ {
		if mpsas >= bandEdges[class] {
			return class
		}
	}
	return 9
}

// MPSASToNELM converts sky brightness to naked-eye limiting magnitude
// using the commonly cited inverse of Schaefer's NELM-to-SQM relation.
func MPSASToNELM(mpsas float64) float64 {
	return 7.93 - 5*math.Log10(1+math.Pow(10, 4.316-mpsas/5))
}

// BrightnessToMPSAS maps a raw 8-bit brightness sample onto the
// [16.0, 22.0] MPSAS band: the reading is inverted (255 = brightest
// pixel value but no darkness signal) and passed through a logarithmic
// transform. This is a calibration-free approximation, not a physical
// model; 255 deliberately lands on the bright edge (16.0 MPSAS) so a
// missing signal reads as the most light-polluted class.
func BrightnessToMPSAS(raw int) float64 {
	if raw < 0 {
		raw = 0
	}
	if raw > 255 {
		raw = 255
	}

	darkness := float64(255-raw) / 255
	return 16.0 + 6.0*math.Log10(1+9*darkness)
}

func clampBortle(b float64) float64 {
	if math.IsNaN(b) || b < 1 {
		return 1
	}
	if b > 9 {
		return 9
	}
	return b
}
