package stringfrag

import (
	"fmt"
	"log/slog"
	"math"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/logger"
	"github.com/lgpang/smash/pkg/particle"
)

// Diffractive cross-section scales for two baryons, mb.
const (
	singleDiffractiveScale = 4.5
	doubleDiffractiveScale = 2.0
)

// leadingScaling is the cross-section scaling of hadrons carrying a
// valence quark of an excited string.
const leadingScaling = 0.5

// SoftProcess is the reference soft string process.
type SoftProcess struct {
	species       Species
	rng           kinematics.Random
	formationTime float64
	log           *slog.Logger

	types   [2]*particle.Type
	time    float64
	gammaCM float64
	sqrtS   float64
	axis    r3.Vec
	mpi     float64
	final   []particle.Data
}

// NewSoftProcess creates a soft string process. formationTime is the proper
// formation time of string fragments in fm.
func NewSoftProcess(species Species, rng kinematics.Random, formationTime float64) *SoftProcess {
	return &SoftProcess{
		species:       species,
		rng:           rng,
		formationTime: formationTime,
		log:           logger.Area("SoftString"),
	}
}

// Init prepares the process for one collision at the given time. gammaCM is
// the Lorentz factor of the pair CM frame.
func (s *SoftProcess) Init(incoming [2]particle.Data, time, gammaCM float64) error {
	mpi, err := massOf(s.species, particle.PiZero)
	if err != nil {
		return err
	}
	total := kinematics.Sum(incoming[0].Momentum, incoming[1].Momentum)
	beta := kinematics.Velocity(total)
	axis := kinematics.ThreeMomentum(kinematics.Boost(incoming[0].Momentum, r3.Scale(-1, beta)))
	if r3.Norm2(axis) == 0 {
		axis = r3.Vec{Z: 1}
	}
	s.types = [2]*particle.Type{incoming[0].Type, incoming[1].Type}
	s.time = time
	s.gammaCM = gammaCM
	s.sqrtS = kinematics.Mass(total)
	s.axis = r3.Unit(axis)
	s.mpi = mpi
	s.final = nil
	return nil
}

// FinalState returns the hadrons of the last successful subprocess in the CM
// frame.
func (s *SoftProcess) FinalState() []particle.Data {
	out := make([]particle.Data, len(s.final))
	copy(out, s.final)
	return out
}

// NextSDiff samples single-diffractive excitation. With projectileSurvives
// the first incoming particle stays intact (A+B -> A+X), otherwise the
// second does (A+B -> X+B).
func (s *SoftProcess) NextSDiff(projectileSurvives bool) bool {
	intact, excited := 0, 1
	if !projectileSurvives {
		intact, excited = 1, 0
	}
	mIntact := s.types[intact].Mass
	mExcited := s.types[excited].Mass
	mx, ok := s.diffractiveMass(mExcited, s.sqrtS-mIntact)
	if !ok {
		return false
	}
	masses := [2]float64{mIntact, mx}
	if !projectileSurvives {
		masses = [2]float64{mx, mIntact}
	}
	pair, ok := s.twoBody(masses)
	if !ok {
		return false
	}
	pIntact, pExcited := pair[0], pair[1]
	if !projectileSurvives {
		pIntact, pExcited = pair[1], pair[0]
	}
	fragments, ok := s.fragment(s.types[excited], mx, pExcited)
	if !ok {
		return false
	}
	survivor := s.newHadron(s.types[intact], s.rotate(pIntact), s.time, 1)
	if projectileSurvives {
		s.final = append([]particle.Data{survivor}, fragments...)
	} else {
		s.final = append(fragments, survivor)
	}
	return true
}

// NextDDiff samples double-diffractive excitation of both particles.
func (s *SoftProcess) NextDDiff() bool {
	ma, mb := s.types[0].Mass, s.types[1].Mass
	mxa, ok := s.diffractiveMass(ma, s.sqrtS-mb-s.mpi)
	if !ok {
		return false
	}
	mxb, ok := s.diffractiveMass(mb, s.sqrtS-mxa)
	if !ok {
		return false
	}
	pair, ok := s.twoBody([2]float64{mxa, mxb})
	if !ok {
		return false
	}
	fa, ok := s.fragment(s.types[0], mxa, pair[0])
	if !ok {
		return false
	}
	fb, ok := s.fragment(s.types[1], mxb, pair[1])
	if !ok {
		return false
	}
	s.final = append(fa, fb...)
	return true
}

// NextNDiffSoft samples soft non-diffractive excitation: two strings
// stretched between the incoming valence quarks fragment into the leading
// hadrons plus produced pions and kaon pairs.
func (s *SoftProcess) NextNDiffSoft() bool {
	ma, mb := s.types[0].Mass, s.types[1].Mass
	s0 := (ma + mb) * (ma + mb)
	mean := math.Max(0.5, math.Log(s.sqrtS*s.sqrtS/s0))
	codes := producedCodes(s.rng, 1+poisson(s.rng, mean-1))
	yBeam := beamRapidity(s.sqrtS, ma, mb)

	masses := []float64{ma, mb}
	rapidities := []float64{
		yBeam * (0.3 + 0.5*s.rng.Float64()),
		-yBeam * (0.3 + 0.5*s.rng.Float64()),
	}
	types := []*particle.Type{s.types[0], s.types[1]}
	for _, code := range codes {
		t, err := s.resolve(code)
		if err != nil {
			return false
		}
		types = append(types, t)
		masses = append(masses, t.Mass)
		rapidities = append(rapidities, yBeam*0.6*(2*s.rng.Float64()-1))
	}
	momenta, ok := distribute(s.rng, s.sqrtS, masses, rapidities)
	if !ok {
		return false
	}
	tForm := s.time + s.formationTime*s.gammaCM
	s.final = make([]particle.Data, len(types))
	for i, t := range types {
		scaling := 0.0
		if i < 2 {
			scaling = leadingScaling
		}
		s.final[i] = s.newHadron(t, s.rotate(momenta[i]), tForm, scaling)
	}
	return true
}

// CrossSectionsDiffractive returns the (A+B->A+X, A+B->X+B, double
// diffractive) cross sections of the pair in mb.
func (s *SoftProcess) CrossSectionsDiffractive(a, b particle.PdgCode, sqrtS float64) ([3]float64, error) {
	ta, err := s.species.Find(a)
	if err != nil {
		return [3]float64{}, err
	}
	tb, err := s.species.Find(b)
	if err != nil {
		return [3]float64{}, err
	}
	mpi, err := massOf(s.species, particle.PiZero)
	if err != nil {
		return [3]float64{}, err
	}
	f := quarkFactor(ta) * quarkFactor(tb)
	rise := func(threshold, width float64) float64 {
		if sqrtS <= threshold {
			return 0
		}
		return 1 - math.Exp(-(sqrtS-threshold)/width)
	}
	sd := singleDiffractiveScale * f * rise(ta.Mass+tb.Mass+mpi, 1.5)
	dd := doubleDiffractiveScale * f * rise(ta.Mass+tb.Mass+2*mpi, 3.0)
	return [3]float64{sd, sd, dd}, nil
}

// quarkFactor is the valence-quark count relative to a baryon.
func quarkFactor(t *particle.Type) float64 {
	if t.IsBaryon() {
		return 1
	}
	return 2.0 / 3.0
}

// diffractiveMass draws M from dM^2/M^2 between m+m_pi and maxMass.
func (s *SoftProcess) diffractiveMass(m, maxMass float64) (float64, bool) {
	lo := m + s.mpi
	if maxMass <= lo {
		return 0, false
	}
	ratio := (maxMass * maxMass) / (lo * lo)
	return lo * math.Sqrt(math.Pow(ratio, s.rng.Float64())), true
}

// twoBody places two objects back to back in the CM frame with limited
// transverse momentum, the first one moving along the collision axis.
func (s *SoftProcess) twoBody(masses [2]float64) ([2]fmom.PxPyPzE, bool) {
	y := beamRapidity(s.sqrtS, masses[0], masses[1])
	momenta, ok := distribute(s.rng, s.sqrtS, masses[:], []float64{y, -y})
	if !ok {
		return [2]fmom.PxPyPzE{}, false
	}
	return [2]fmom.PxPyPzE{momenta[0], momenta[1]}, true
}

// fragment decays an excited state of t with mass mx and CM momentum p into
// t plus produced hadrons, rotated onto the collision axis.
func (s *SoftProcess) fragment(t *particle.Type, mx float64, p fmom.PxPyPzE) ([]particle.Data, bool) {
	maxProduced := int((mx - t.Mass) / s.mpi)
	if maxProduced < 1 {
		return nil, false
	}
	n := 1 + poisson(s.rng, math.Log(mx/t.Mass))
	if n > maxProduced {
		n = maxProduced
	}
	types := []*particle.Type{t}
	masses := []float64{t.Mass}
	rapidities := []float64{0.5 * (2*s.rng.Float64() - 1)}
	for _, code := range producedCodes(s.rng, n) {
		pt, err := s.resolve(code)
		if err != nil {
			return nil, false
		}
		types = append(types, pt)
		masses = append(masses, pt.Mass)
		rapidities = append(rapidities, 0.5*(2*s.rng.Float64()-1))
	}
	rest, ok := distribute(s.rng, mx, masses, rapidities)
	if !ok {
		return nil, false
	}
	beta := kinematics.Velocity(p)
	tForm := s.time + s.formationTime*s.gammaCM
	out := make([]particle.Data, len(types))
	for i, pt := range types {
		scaling := 0.0
		if i == 0 {
			scaling = leadingScaling
		}
		out[i] = s.newHadron(pt, s.rotate(kinematics.Boost(rest[i], beta)), tForm, scaling)
	}
	return out, true
}

// resolve maps a produced code onto a catalog species; neutral kaon
// mixtures become K0 or K0bar with equal probability.
func (s *SoftProcess) resolve(code particle.PdgCode) (*particle.Type, error) {
	if code.IsNeutralKaonMixture() {
		code = particle.KZero
		if s.rng.Float64() < 0.5 {
			code = particle.KZeroBar
		}
	}
	t, err := s.species.Find(code)
	if err != nil {
		s.log.Error("unknown hadron in soft string", "pdg", code, "error", err)
		return nil, fmt.Errorf("soft string hadron: %w", err)
	}
	return t, nil
}

// rotate maps a momentum built along z onto the collision axis.
func (s *SoftProcess) rotate(p fmom.PxPyPzE) fmom.PxPyPzE {
	return kinematics.New(p.E(), kinematics.RotateToAxis(kinematics.ThreeMomentum(p), s.axis))
}

func (s *SoftProcess) newHadron(t *particle.Type, p fmom.PxPyPzE, formation, scaling float64) particle.Data {
	d := particle.NewData(t)
	d.Momentum = p
	d.FormationTime = formation
	d.XSecScaling = scaling
	return d
}
