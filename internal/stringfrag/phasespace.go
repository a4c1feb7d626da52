package stringfrag

import (
	"errors"
	"math"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/particle"
)

// ErrBelowThreshold is returned when the collision energy cannot produce
// anything beyond the incoming masses.
var ErrBelowThreshold = errors.New("collision energy below string threshold")

// meanPT is the mean transverse momentum of string hadrons, GeV.
const meanPT = 0.35

// Species resolves PDG codes to particle types.
type Species interface {
	Find(code particle.PdgCode) (*particle.Type, error)
}

// Hadron is one final-state hadron in the CM frame.
type Hadron struct {
	PDG      particle.PdgCode
	Momentum fmom.PxPyPzE
}

// massOf resolves the mass of code. K_S and K_L are not catalog species and
// take the neutral kaon mass.
func massOf(species Species, code particle.PdgCode) (float64, error) {
	if code.IsNeutralKaonMixture() {
		code = particle.KZero
	}
	t, err := species.Find(code)
	if err != nil {
		return 0, err
	}
	return t.Mass, nil
}

// beamRapidity is the CM rapidity of the incoming pair with masses ma, mb.
func beamRapidity(sqrtS, ma, mb float64) float64 {
	return math.Acosh(math.Max(1, sqrtS/(ma+mb)))
}

// distribute assigns CM momenta along the z axis to particles of the given
// masses around the rapidity hints. The total three-momentum vanishes and the
// energies add up to sqrtS. It fails when the masses do not fit or no
// non-trivial configuration was drawn.
func distribute(rng kinematics.Random, sqrtS float64, masses, rapidities []float64) ([]fmom.PxPyPzE, bool) {
	n := len(masses)
	sumM := 0.0
	for _, m := range masses {
		sumM += m
	}
	if n < 2 || sumM >= sqrtS {
		return nil, false
	}

	ps := make([]r3.Vec, n)
	var total r3.Vec
	for i, m := range masses {
		pt := -meanPT * math.Log(1-rng.Float64())
		phi := 2 * math.Pi * rng.Float64()
		mt := math.Sqrt(m*m + pt*pt)
		ps[i] = r3.Vec{X: pt * math.Cos(phi), Y: pt * math.Sin(phi), Z: mt * math.Sinh(rapidities[i])}
		total = r3.Add(total, ps[i])
	}
	shift := r3.Scale(-1/float64(n), total)
	for i := range ps {
		ps[i] = r3.Add(ps[i], shift)
	}

	energy := func(scale float64) float64 {
		e := 0.0
		for i, m := range masses {
			e += math.Sqrt(m*m + scale*scale*r3.Norm2(ps[i]))
		}
		return e
	}
	hi := 1.0
	for energy(hi) < sqrtS {
		hi *= 2
		if hi > 1e9 {
			return nil, false
		}
	}
	lo := 0.0
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		if energy(mid) < sqrtS {
			lo = mid
		} else {
			hi = mid
		}
	}
	scale := 0.5 * (lo + hi)

	out := make([]fmom.PxPyPzE, n)
	for i, m := range masses {
		out[i] = kinematics.OnShell(m, r3.Scale(scale, ps[i]))
	}
	return out, true
}

// producedCodes draws n produced hadrons with zero net charge and
// strangeness: neutral pions, charged pion pairs and kaon pairs.
func producedCodes(rng kinematics.Random, n int) []particle.PdgCode {
	const (
		kaonPairFraction = 0.08
		pionPairFraction = 0.6
	)
	out := make([]particle.PdgCode, 0, n)
	for len(out) < n {
		u := rng.Float64()
		room := n-len(out) >= 2
		switch {
		case room && u < kaonPairFraction:
			if rng.Float64() < 0.5 {
				out = append(out, particle.KPlus, -particle.KPlus)
			} else {
				out = append(out, particle.KShort, particle.KLong)
			}
		case room && u < kaonPairFraction+pionPairFraction:
			out = append(out, particle.PiPlus, particle.PiMinus)
		default:
			out = append(out, particle.PiZero)
		}
	}
	return out
}

// poisson draws from a Poisson distribution with the given mean.
func poisson(rng kinematics.Random, mean float64) int {
	limit := math.Exp(-mean)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}
