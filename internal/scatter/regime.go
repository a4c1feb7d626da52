package scatter

import (
	"math"

	"github.com/lgpang/smash/pkg/particle"
)

// Regime is the energy window in which string excitation gradually takes
// over from resonance physics.
type Regime struct {
	Center    float64
	HalfWidth float64
}

var (
	NucleonNucleonRegime = Regime{Center: 4.5, HalfWidth: 0.5}
	PionNucleonRegime    = Regime{Center: 2.05, HalfWidth: 0.15}
)

// StringProbability is the probability of string treatment at sqrtS:
// 0 below the window, 1 above it and 0.5 + 0.5 sin(pi/2 (sqrtS-center)/halfWidth)
// inside.
func (r Regime) StringProbability(sqrtS float64) float64 {
	switch {
	case sqrtS > r.Center+r.HalfWidth:
		return 1
	case sqrtS > r.Center-r.HalfWidth:
		return 0.5 + 0.5*math.Sin(0.5*math.Pi*(sqrtS-r.Center)/r.HalfWidth)
	default:
		return 0
	}
}

// RegimeFor returns the mixing window of the pair. Only nucleon-nucleon and
// pion-nucleon pairs can be treated with strings.
func RegimeFor(a, b *particle.Type) (Regime, bool) {
	switch {
	case a.IsNucleon() && b.IsNucleon():
		return NucleonNucleonRegime, true
	case (a.PDG.IsPion() && b.IsNucleon()) || (a.IsNucleon() && b.PDG.IsPion()):
		return PionNucleonRegime, true
	default:
		return Regime{}, false
	}
}

// UseStrings decides once per action whether the pair goes through string
// excitation. A random number is drawn only inside the mixing window.
func UseStrings(a, b *particle.Type, sqrtS float64, enabled bool, rng Random) bool {
	if !enabled {
		return false
	}
	r, ok := RegimeFor(a, b)
	if !ok {
		return false
	}
	switch p := r.StringProbability(sqrtS); {
	case p >= 1:
		return true
	case p <= 0:
		return false
	default:
		return p > rng.Float64()
	}
}
