package scatter

import (
	"fmt"
	"math"
	"sort"

	"go-hep.org/x/hep/fmom"

	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/particle"
)

// suppressionFactor mimics coherence effects on the leading string hadrons.
const suppressionFactor = 0.7

// leadingScaling is the cross-section scaling of the hadrons ordered by
// longitudinal momentum; the rest start with zero.
func leadingScaling(index int, baryonic bool) float64 {
	switch {
	case baryonic && index == 0:
		return suppressionFactor * 0.66
	case baryonic && index == 1:
		return suppressionFactor * 0.34
	case !baryonic && index < 2:
		return suppressionFactor * 0.5
	default:
		return 0
	}
}

// stringExcitationHard runs the hard-event generator until it accepts an
// event and converts its hadrons into outgoing particles in the CM frame.
func (a *Action) stringExcitationHard() ([]particle.Data, error) {
	hard := a.phys.Hard
	if hard == nil {
		return nil, fmt.Errorf("%w: %s", ErrHardGeneratorUnset, a.pair())
	}
	srts := a.SqrtS()
	seed := a.phys.Rand.Int63()
	if err := hard.Init(a.incoming[0].Type.PDG, a.incoming[1].Type.PDG, srts, seed); err != nil {
		return nil, fmt.Errorf("hard string for %s: %w", a.pair(), err)
	}
	for !hard.Next() {
	}

	hadrons := hard.Event()
	out := make([]particle.Data, 0, len(hadrons))
	for _, h := range hadrons {
		code := h.PDG
		if code.IsNeutralKaonMixture() {
			if a.phys.Rand.Float64() <= 0.5 {
				code = particle.KZero
			} else {
				code = particle.KZeroBar
			}
		}
		t, err := a.phys.Species.Find(code)
		if err != nil {
			return nil, fmt.Errorf("hard string hadron for %s: %w", a.pair(), err)
		}
		d := particle.NewData(t)
		d.Momentum = h.Momentum
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Momentum.Pz()) > math.Abs(out[j].Momentum.Pz())
	})

	baryonic := a.incoming[0].IsBaryon() || a.incoming[1].IsBaryon()
	axis := a.cmAxis()
	beta := a.BetaCM()
	for i := range out {
		p := out[i].Momentum
		out[i].Momentum = kinematics.New(p.E(), kinematics.RotateToAxis(kinematics.ThreeMomentum(p), axis))
		out[i].XSecScaling = leadingScaling(i, baryonic)
		gammaLab := kinematics.Gamma(kinematics.Velocity(kinematics.Boost(out[i].Momentum, beta)))
		out[i].FormationTime = a.time + a.phys.StringFormationTime*gammaLab
	}
	a.inheritUnformed(out)
	a.logMomentumBalance(out)
	return out, nil
}

// stringExcitationSoft picks a soft subprocess from the string sub-cross
// sections and samples it with a bounded number of tries.
func (a *Action) stringExcitationSoft() ([]particle.Data, error) {
	soft := a.phys.Soft
	if soft == nil {
		return nil, fmt.Errorf("%w: %s", ErrStringProcessUnset, a.pair())
	}
	if err := soft.Init(a.incoming, a.time, a.GammaCM()); err != nil {
		return nil, fmt.Errorf("soft string for %s: %w", a.pair(), err)
	}

	cum := a.stringCumulative
	r := cum[4] * a.phys.Rand.Float64()
	subprocess := -1
	for i := 0; i < 4; i++ {
		if r >= cum[i] && r < cum[i+1] {
			subprocess = i
			break
		}
	}
	var next func() bool
	switch subprocess {
	case 0:
		next = func() bool { return soft.NextSDiff(true) }
	case 1:
		next = func() bool { return soft.NextSDiff(false) }
	case 2:
		next = soft.NextDDiff
	case 3:
		next = soft.NextNDiffSoft
	default:
		return nil, fmt.Errorf("%w: no soft string subprocess for %s", ErrInvalidProcess, a.pair())
	}

	success := false
	for try := 0; try < maxSoftStringTries && !success; try++ {
		success = next()
	}
	if !success {
		return nil, fmt.Errorf("%w: subprocess %d for %s", ErrTooManyTries, subprocess, a.pair())
	}
	out := soft.FinalState()
	a.inheritUnformed(out)
	a.logMomentumBalance(out)
	return out, nil
}

// inheritUnformed scales string products of a still-forming incoming
// particle by its scaling factor and delays them to its formation time.
func (a *Action) inheritUnformed(out []particle.Data) {
	tIn, scaling := a.latestIncoming()
	if tIn <= a.time {
		return
	}
	for i := range out {
		out[i].XSecScaling *= scaling
		if tIn > out[i].FormationTime {
			out[i].FormationTime = tIn
		}
	}
}

func (a *Action) logMomentumBalance(out []particle.Data) {
	var sum fmom.PxPyPzE
	for _, d := range out {
		sum = kinematics.Sum(sum, d.Momentum)
	}
	a.log.Debug("string momentum balance",
		"action", a.id, "sqrt_s", a.SqrtS(), "hadrons", len(out),
		"outgoing_e", sum.E(), "outgoing_p", kinematics.ThreeMomentum(sum))
}
