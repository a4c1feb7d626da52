package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AngularDistribution samples the outgoing direction of a two-body final
// state in its CM frame. axis is the unit direction of the first incoming
// particle in that frame; pcm is the outgoing CM momentum.
type AngularDistribution interface {
	Direction(rng Random, axis r3.Vec, pcm float64) r3.Vec
}

// Isotropic samples directions uniformly on the unit sphere.
type Isotropic struct{}

// Direction implements AngularDistribution.
func (Isotropic) Direction(rng Random, _ r3.Vec, _ float64) r3.Vec {
	return IsotropicDirection(rng)
}

// ForwardPeaked samples dsigma/dt ~ exp(Slope*t) with t in [-4 pcm^2, 0],
// relative to the incoming axis.
type ForwardPeaked struct {
	Slope float64 // GeV^-2
}

// Direction implements AngularDistribution.
func (f ForwardPeaked) Direction(rng Random, axis r3.Vec, pcm float64) r3.Vec {
	if f.Slope <= 0 || pcm <= 0 || r3.Norm2(axis) == 0 {
		return IsotropicDirection(rng)
	}
	p2 := pcm * pcm
	tMin := -4 * p2
	low := math.Exp(f.Slope * tMin)
	t := math.Log(low+rng.Float64()*(1-low)) / f.Slope
	cosTheta := clampCos(1 + t/(2*p2))
	phi := 2 * math.Pi * rng.Float64()
	return RotateToAxis(FromAngles(cosTheta, phi), axis)
}

// CugnonSlope is the NN elastic t-slope as a function of the lab momentum.
func CugnonSlope(plab float64) float64 {
	if plab < 2 {
		p8 := math.Pow(plab, 8)
		return 5.5 * p8 / (7.7 + p8)
	}
	return 5.334 + 0.67*(plab-2)
}

// IsotropicDirection draws a unit vector uniformly on the sphere.
func IsotropicDirection(rng Random) r3.Vec {
	cosTheta := 1 - 2*rng.Float64()
	phi := 2 * math.Pi * rng.Float64()
	return FromAngles(cosTheta, phi)
}

// FromAngles builds a unit vector from polar cosine and azimuth.
func FromAngles(cosTheta, phi float64) r3.Vec {
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	return r3.Vec{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
}

// RotateToAxis maps v, expressed with the z axis as pole, into the frame
// whose pole is axis.
func RotateToAxis(v, axis r3.Vec) r3.Vec {
	z := r3.Unit(axis)
	helper := r3.Vec{X: 1}
	if math.Abs(z.X) > 0.9 {
		helper = r3.Vec{Y: 1}
	}
	x := r3.Unit(r3.Cross(helper, z))
	y := r3.Cross(z, x)
	return r3.Add(r3.Add(r3.Scale(v.X, x), r3.Scale(v.Y, y)), r3.Scale(v.Z, z))
}

func clampCos(c float64) float64 {
	if c > 1 {
		return 1
	}
	if c < -1 {
		return -1
	}
	return c
}
