// Package kinematics collects the relativistic two-body helpers used by the
// scattering engine. Four-momenta are go-hep fmom.PxPyPzE values, positions
// and velocities are gonum r3 vectors.
package kinematics

import (
	"math"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Random is the uniform [0,1) source consumed by the samplers.
type Random interface {
	Float64() float64
}

// PCMSqr returns the squared center-of-momentum momentum of a two-body
// system with invariant mass srts. It is negative below threshold.
func PCMSqr(srts, m1, m2 float64) float64 {
	s := srts * srts
	sum := m1 + m2
	diff := m1 - m2
	return (s - sum*sum) * (s - diff*diff) / (4 * s)
}

// PCM returns the center-of-momentum momentum, zero below threshold.
func PCM(srts, m1, m2 float64) float64 {
	psqr := PCMSqr(srts, m1, m2)
	if psqr <= 0 {
		return 0
	}
	return math.Sqrt(psqr)
}

// PlabFromS returns the projectile momentum in the rest frame of the target.
func PlabFromS(s, mProjectile, mTarget float64) float64 {
	sum := mProjectile + mTarget
	diff := mProjectile - mTarget
	arg := (s - sum*sum) * (s - diff*diff)
	if arg <= 0 {
		return 0
	}
	return math.Sqrt(arg) / (2 * mTarget)
}

// New builds a four-momentum from energy and three-momentum.
func New(e float64, p r3.Vec) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(p.X, p.Y, p.Z, e)
}

// OnShell builds the four-momentum of a particle with mass m and three-momentum p.
func OnShell(m float64, p r3.Vec) fmom.PxPyPzE {
	return New(math.Sqrt(m*m+r3.Norm2(p)), p)
}

// ThreeMomentum returns the spatial part of p.
func ThreeMomentum(p fmom.PxPyPzE) r3.Vec {
	return r3.Vec{X: p.Px(), Y: p.Py(), Z: p.Pz()}
}

// Mass returns the invariant mass of p.
func Mass(p fmom.PxPyPzE) float64 {
	return p.M()
}

// Sum adds four-momenta component-wise.
func Sum(ps ...fmom.PxPyPzE) fmom.PxPyPzE {
	var out fmom.PxPyPzE
	for _, p := range ps {
		out.P4.X += p.P4.X
		out.P4.Y += p.P4.Y
		out.P4.Z += p.P4.Z
		out.P4.T += p.P4.T
	}
	return out
}

// Velocity returns p/E. A zero-energy vector has zero velocity.
func Velocity(p fmom.PxPyPzE) r3.Vec {
	e := p.E()
	if e == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/e, ThreeMomentum(p))
}

// Gamma returns the Lorentz factor of velocity beta.
func Gamma(beta r3.Vec) float64 {
	return 1 / math.Sqrt(1-r3.Norm2(beta))
}

// Boost returns p as seen from a frame in which the original frame moves with
// velocity beta. Boosting a CM-frame momentum by the CM velocity yields the
// lab-frame momentum; boosting by the negated velocity goes the other way.
func Boost(p fmom.PxPyPzE, beta r3.Vec) fmom.PxPyPzE {
	if beta == (r3.Vec{}) {
		return p
	}
	b := fmom.Boost(&p, beta)
	return fmom.NewPxPyPzE(b.Px(), b.Py(), b.Pz(), b.E())
}

// TwoBody returns the back-to-back CM momenta of two particles with masses
// m1 and m2 sharing energy srts, particle 1 flying along dir (unit vector).
func TwoBody(srts, m1, m2 float64, dir r3.Vec) (fmom.PxPyPzE, fmom.PxPyPzE) {
	pcm := PCM(srts, m1, m2)
	p3 := r3.Scale(pcm, dir)
	return OnShell(m1, p3), OnShell(m2, r3.Scale(-1, p3))
}
