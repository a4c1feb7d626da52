// Package xsection maps incoming species and collision energy to reaction
// channel weights. Cross sections are in mb, energies in GeV.
package xsection

import (
	"math"

	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/particle"
)

// plabNN is the lab momentum of a nucleon hitting a nucleon at rest.
func plabNN(s float64) float64 {
	return kinematics.PlabFromS(s, kinematics.NucleonMass, kinematics.NucleonMass)
}

// PPElastic is the pp (and nn) elastic cross section.
func PPElastic(s float64) float64 {
	m := kinematics.NucleonMass
	p := plabNN(s)
	switch {
	case p < 0.435:
		return 5.12*m/(s-4*m*m) + 1.67
	case p < 0.8:
		return 23.5 + 1000*math.Pow(p-0.7, 4)
	case p < 2.0:
		return 1250/(p+50) - 4*math.Pow(p-1.3, 2)
	case p < 2.776:
		return 77 / (p + 1.5)
	default:
		return nnElasticHighEnergy(p)
	}
}

// NPElastic is the np elastic cross section.
func NPElastic(s float64) float64 {
	m := kinematics.NucleonMass
	p := plabNN(s)
	switch {
	case p < 0.525:
		return 17.05*m/(s-4*m*m) - 6.83
	case p < 0.8:
		return 33 + 196*math.Pow(math.Abs(p-0.95), 2.5)
	case p < 2.0:
		return 31 / math.Sqrt(p)
	case p < 2.776:
		return 77 / (p + 1.5)
	default:
		return nnElasticHighEnergy(p)
	}
}

func nnElasticHighEnergy(p float64) float64 {
	logp := math.Log(p)
	return 11.9 + 26.9*math.Pow(p, -1.21) + 0.169*logp*logp - 1.85*logp
}

// PPbarElastic is the proton-antiproton elastic cross section.
func PPbarElastic(s float64) float64 {
	p := plabNN(s)
	switch {
	case p < 0.3:
		return 78.6
	case p < 5:
		return 31.6 + 18.3/p - 1.1/(p*p) - 3.8*p
	default:
		logp := math.Log(p)
		return 10.2 + 52.7*math.Pow(p, -1.16) + 0.125*logp*logp - 1.28*logp
	}
}

// PPbarTotal is the proton-antiproton total cross section.
func PPbarTotal(s float64) float64 {
	p := plabNN(s)
	switch {
	case p < 0.3:
		return 271.6 * math.Exp(-1.1*p*p)
	case p < 5:
		return 75 + 43.1/p + 2.6/(p*p) - 3.9*p
	default:
		logp := math.Log(p)
		return 38.4 + 77.6*math.Pow(p, -0.64) + 0.26*logp*logp - 1.2*logp
	}
}

// PiPlusPElastic is the pi+ p elastic background. Below a lab momentum of
// 1 GeV the value is held constant; resonances carry the energy dependence there.
func PiPlusPElastic(s float64) float64 {
	p := math.Max(1, kinematics.PlabFromS(s, kinematics.PionMass, kinematics.NucleonMass))
	logp := math.Log(p)
	return 11.4*math.Pow(p, -0.4) + 0.079*logp*logp
}

// PiMinusPElastic is the pi- p elastic background, see PiPlusPElastic.
func PiMinusPElastic(s float64) float64 {
	p := math.Max(1, kinematics.PlabFromS(s, kinematics.PionMass, kinematics.NucleonMass))
	logp := math.Log(p)
	return 1.76 + 11.2*math.Pow(p, -0.64) + 0.043*logp*logp
}

// highEnergyFit is the PDG form Z + H ln^2(s/sab) + R1 (s/sab)^-eta1 + sign R2 (s/sab)^-eta2.
type highEnergyFit struct {
	p, r1, r2 float64
	r2Sign    float64
}

const (
	fitH    = 0.2720
	fitM    = 2.1206
	fitEta1 = 0.4473
	fitEta2 = 0.5486
)

var (
	ppFit     = highEnergyFit{p: 34.41, r1: 13.07, r2: 7.394, r2Sign: -1}
	npFit     = highEnergyFit{p: 34.71, r1: 12.52, r2: 6.66, r2Sign: -1}
	ppbarFit  = highEnergyFit{p: 34.41, r1: 13.07, r2: 7.394, r2Sign: 1}
	piPlusFit = highEnergyFit{p: 18.75, r1: 9.56, r2: 1.767, r2Sign: -1}
	piMinFit  = highEnergyFit{p: 18.75, r1: 9.56, r2: 1.767, r2Sign: 1}
)

func (f highEnergyFit) eval(s, m1, m2 float64) float64 {
	sab := (m1 + m2 + fitM) * (m1 + m2 + fitM)
	x := s / sab
	lx := math.Log(x)
	return fitH*lx*lx + f.p + f.r1*math.Pow(x, -fitEta1) + f.r2Sign*f.r2*math.Pow(x, -fitEta2)
}

// PPHighEnergy is the pp total cross section fit.
func PPHighEnergy(s float64) float64 {
	return ppFit.eval(s, kinematics.NucleonMass, kinematics.NucleonMass)
}

// NPHighEnergy is the np total cross section fit.
func NPHighEnergy(s float64) float64 {
	return npFit.eval(s, kinematics.NucleonMass, kinematics.NucleonMass)
}

// PPbarHighEnergy is the p pbar total cross section fit.
func PPbarHighEnergy(s float64) float64 {
	return ppbarFit.eval(s, kinematics.NucleonMass, kinematics.NucleonMass)
}

// PiPlusPHighEnergy is the pi+ p total cross section fit.
func PiPlusPHighEnergy(s float64) float64 {
	return piPlusFit.eval(s, kinematics.PionMass, kinematics.NucleonMass)
}

// PiMinusPHighEnergy is the pi- p total cross section fit.
func PiMinusPHighEnergy(s float64) float64 {
	return piMinFit.eval(s, kinematics.PionMass, kinematics.NucleonMass)
}

// pairKind classifies an incoming pair for the parametrizations.
type pairKind int

const (
	pairOther pairKind = iota
	pairNNSameIsospin
	pairNNMixedIsospin
	pairNNbar
	pairPiNLikeCharge
	pairPiNUnlikeCharge
	pairPi0N
)

func classify(a, b *particle.Type) pairKind {
	if a.IsNucleon() && b.IsNucleon() {
		if a.AntiparticleSign() != b.AntiparticleSign() {
			return pairNNbar
		}
		if a.PDG == b.PDG {
			return pairNNSameIsospin
		}
		return pairNNMixedIsospin
	}
	pion, nucleon := a, b
	if b.PDG.IsPion() {
		pion, nucleon = b, a
	}
	if pion.PDG.IsPion() && nucleon.IsNucleon() {
		if pion.PDG == particle.PiZero {
			return pairPi0N
		}
		// pi+ p and pi- n are pure isospin 3/2
		nucleonI3 := nucleon.BaryonNumber
		if nucleon.PDG.Abs() == particle.Neutron {
			nucleonI3 = -nucleonI3
		}
		if pion.Charge*nucleonI3 > 0 {
			return pairPiNLikeCharge
		}
		return pairPiNUnlikeCharge
	}
	return pairOther
}

// ElasticParametrization is the energy-dependent elastic cross section of
// the pair. Pairs without a parametrization get zero.
func ElasticParametrization(a, b *particle.Type, sqrtS float64) float64 {
	s := sqrtS * sqrtS
	var xs float64
	switch classify(a, b) {
	case pairNNSameIsospin:
		xs = PPElastic(s)
	case pairNNMixedIsospin:
		xs = NPElastic(s)
	case pairNNbar:
		xs = PPbarElastic(s)
	case pairPiNLikeCharge:
		xs = PiPlusPElastic(s)
	case pairPiNUnlikeCharge:
		xs = PiMinusPElastic(s)
	case pairPi0N:
		xs = 0.5 * (PiPlusPElastic(s) + PiMinusPElastic(s))
	}
	return math.Max(0, xs)
}

// Elastic is the elastic weight: the configured constant when
// elasticParameter is non-negative, the parametrization otherwise.
func Elastic(elasticParameter float64, a, b *particle.Type, sqrtS float64) float64 {
	if elasticParameter >= 0 {
		return elasticParameter
	}
	return ElasticParametrization(a, b, sqrtS)
}

// HighEnergy is the total cross section used above the resonance region.
// Pairs without a dedicated fit are scaled with the additive quark model.
func HighEnergy(a, b *particle.Type, sqrtS float64) float64 {
	s := sqrtS * sqrtS
	switch classify(a, b) {
	case pairNNSameIsospin:
		return PPHighEnergy(s)
	case pairNNMixedIsospin:
		return NPHighEnergy(s)
	case pairNNbar:
		return PPbarHighEnergy(s)
	case pairPiNLikeCharge:
		return PiPlusPHighEnergy(s)
	case pairPiNUnlikeCharge:
		return PiMinusPHighEnergy(s)
	case pairPi0N:
		return 0.5 * (PiPlusPHighEnergy(s) + PiMinusPHighEnergy(s))
	}
	aBaryon, bBaryon := a.IsBaryon(), b.IsBaryon()
	switch {
	case aBaryon && bBaryon:
		if a.BaryonNumber != b.BaryonNumber {
			return PPbarHighEnergy(s)
		}
		return PPHighEnergy(s)
	case aBaryon || bBaryon:
		return 0.5 * (PiPlusPHighEnergy(s) + PiMinusPHighEnergy(s))
	default:
		// two mesons carry 2*2 of the 3*2 quark pairs of a meson-baryon system
		return 2.0 / 3.0 * 0.5 * (PiPlusPHighEnergy(s) + PiMinusPHighEnergy(s))
	}
}

// StringAggregate is the cross section assigned to string excitation.
func StringAggregate(a, b *particle.Type, sqrtS float64) float64 {
	return math.Max(0, HighEnergy(a, b, sqrtS)-ElasticParametrization(a, b, sqrtS))
}

// stringHard is xs0 * ln(sqrtS/e0)^lambda above e0.
func stringHard(sqrtS, xs0, e0, lambda float64) float64 {
	if sqrtS < e0 {
		return 0
	}
	return xs0 * math.Pow(math.Log(sqrtS/e0), lambda)
}

// StringHard is the hard (multi-parton) cross section entering the
// soft/hard split of non-diffractive string excitation.
func StringHard(a, b *particle.Type, sqrtS float64) float64 {
	switch {
	case a.IsBaryon() && b.IsBaryon():
		return stringHard(sqrtS, 0.087, 4.1, 3.8)
	case a.IsBaryon() || b.IsBaryon():
		return stringHard(sqrtS, 0.042, 3.5, 3.6)
	default:
		return stringHard(sqrtS, 0.013, 2.3, 4.7)
	}
}
