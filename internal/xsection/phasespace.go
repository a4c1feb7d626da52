package xsection

import (
	"gonum.org/v1/gonum/integrate"

	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/particle"
)

// phaseSpacePoints is the grid resolution per unstable species.
const phaseSpacePoints = 60

// EffectiveMomentum is the final-state CM momentum of a+b at srts, folded
// with the spectral functions of the unstable species. For two stable
// species it is the plain CM momentum at the pole masses.
func EffectiveMomentum(srts float64, a, b *particle.Type) float64 {
	switch {
	case a.IsStable() && b.IsStable():
		return kinematics.PCM(srts, a.Mass, b.Mass)
	case a.IsStable():
		return foldMomentum(srts-a.Mass, b, func(m float64) float64 {
			return kinematics.PCM(srts, a.Mass, m)
		})
	case b.IsStable():
		return foldMomentum(srts-b.Mass, a, func(m float64) float64 {
			return kinematics.PCM(srts, m, b.Mass)
		})
	default:
		return foldMomentum(srts-b.MinMass(), a, func(ma float64) float64 {
			return foldMomentum(srts-ma, b, func(mb float64) float64 {
				return kinematics.PCM(srts, ma, mb)
			})
		})
	}
}

// foldMomentum integrates A_t(m) f(m) over [MinMass, maxMass].
func foldMomentum(maxMass float64, t *particle.Type, f func(m float64) float64) float64 {
	lo := t.MinMass()
	if maxMass <= lo {
		return 0
	}
	xs := make([]float64, phaseSpacePoints)
	fs := make([]float64, phaseSpacePoints)
	step := (maxMass - lo) / float64(phaseSpacePoints-1)
	for i := range xs {
		m := lo + float64(i)*step
		xs[i] = m
		fs[i] = t.SpectralFunction(m) * f(m)
	}
	return integrate.Trapezoidal(xs, fs)
}
