// Package scatter implements the two-body scattering action: it enumerates
// the reaction channels of an incoming pair, selects one by its cross
// section and produces the outgoing particles.
package scatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lgpang/smash/internal/stringfrag"
	"github.com/lgpang/smash/internal/xsection"
	"github.com/lgpang/smash/pkg/particle"
)

var (
	ErrInvalidProcess            = errors.New("invalid process type")
	ErrInvalidResonanceFormation = errors.New("resonance formation requires exactly one outgoing particle")
	ErrStringProcessUnset        = errors.New("soft string process is not set")
	ErrHardGeneratorUnset        = errors.New("hard event generator is not set")
	ErrTooManyTries              = errors.New("too many tries in soft string excitation")
	ErrAlreadyFinalized          = errors.New("final state already generated")
)

// maxSoftStringTries bounds the sampling of one soft string subprocess.
const maxSoftStringTries = 10000

// Random is the uniform source of an action. Int63 seeds the hard-event
// generator.
type Random interface {
	Float64() float64
	Int63() int64
}

// HardEventGenerator produces hard string events in the CM frame with beam A
// along +z.
type HardEventGenerator interface {
	Init(a, b particle.PdgCode, sqrtS float64, seed int64) error
	Next() bool
	Event() []stringfrag.Hadron
}

// SoftStringProcess samples soft string subprocesses in the CM frame.
type SoftStringProcess interface {
	Init(incoming [2]particle.Data, time, gammaCM float64) error
	NextSDiff(projectileSurvives bool) bool
	NextDDiff() bool
	NextNDiffSoft() bool
	FinalState() []particle.Data
	CrossSectionsDiffractive(a, b particle.PdgCode, sqrtS float64) ([3]float64, error)
}

// Physics bundles the collaborators shared by actions. It is not safe for
// concurrent use: actions sharing one Physics must not generate final states
// concurrently.
type Physics struct {
	Species    xsection.Species
	Resonances *xsection.ResonanceIndex
	Rand       Random
	Hard       HardEventGenerator
	Soft       SoftStringProcess

	// Isotropic disables forward-peaked elastic nucleon-nucleon scattering.
	Isotropic bool
	// StringFormationTime is the proper formation time of string hadrons, fm.
	StringFormationTime float64
}

// NewPhysics creates collaborators over species with a resonance candidate
// cache of the default size. The string collaborators are left unset.
func NewPhysics(species xsection.Species, rng Random) (*Physics, error) {
	idx, err := xsection.NewResonanceIndex(species, xsection.DefaultCandidateCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create resonance index: %w", err)
	}
	return &Physics{
		Species:             species,
		Resonances:          idx,
		Rand:                rng,
		StringFormationTime: 1.0,
	}, nil
}

// NNbarTreatment selects how nucleon-antinucleon annihilation is handled.
type NNbarTreatment int

const (
	// NNbarNoAnnihilation leaves annihilation out.
	NNbarNoAnnihilation NNbarTreatment = iota
	// NNbarResonances annihilates into rho0 h1(1170) and adds the reverse
	// creation process for detailed balance.
	NNbarResonances
	// NNbarStrings leaves annihilation to string excitation.
	NNbarStrings
)

// ParseNNbarTreatment maps a configuration value onto a treatment.
func ParseNNbarTreatment(s string) (NNbarTreatment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "no annihilation", "none":
		return NNbarNoAnnihilation, nil
	case "resonances":
		return NNbarResonances, nil
	case "strings":
		return NNbarStrings, nil
	}
	return 0, fmt.Errorf("unknown NNbar treatment %q", s)
}

func (t NNbarTreatment) String() string {
	switch t {
	case NNbarNoAnnihilation:
		return "no annihilation"
	case NNbarResonances:
		return "resonances"
	case NNbarStrings:
		return "strings"
	default:
		return fmt.Sprintf("NNbarTreatment(%d)", int(t))
	}
}

// Options selects the channel families added by AddAllProcesses.
type Options struct {
	// ElasticParameter is a constant elastic cross section in mb; negative
	// values select the energy-dependent parametrization.
	ElasticParameter float64
	TwoToOne         bool
	Included         xsection.ReactionSet
	// LowSNNCut excludes elastic nucleon-nucleon scattering below this sqrt(s).
	LowSNNCut float64
	Strings   bool
	NNbar     NNbarTreatment
}

// DefaultOptions enables every channel family except NNbar annihilation.
func DefaultOptions() Options {
	return Options{
		ElasticParameter: -1,
		TwoToOne:         true,
		Included:         xsection.AllReactions,
		LowSNNCut:        1.98,
		Strings:          true,
		NNbar:            NNbarNoAnnihilation,
	}
}
