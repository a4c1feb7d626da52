package scatter

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/particle"
)

// GenerateFinalState selects one channel and produces its outgoing
// particles. Outgoing momenta are returned in the computational frame;
// produced particles sit at the interaction point. It can run once per
// action; on error no outgoing state is recorded.
func (a *Action) GenerateFinalState() error {
	if a.finalized {
		return fmt.Errorf("%w: action %s", ErrAlreadyFinalized, a.id)
	}
	a.log.Debug("incoming particles", "action", a.id, "a", a.incoming[0].String(), "b", a.incoming[1].String())

	branch, err := collision.Choose(&a.branches, a.phys.Rand)
	if err != nil {
		return fmt.Errorf("%w: %s", err, a.pair())
	}
	a.log.Debug("chosen channel", "action", a.id, "channel", branch.String())

	var out []particle.Data
	switch branch.Process() {
	case collision.Elastic:
		out = a.elasticScattering()
	case collision.TwoToOne:
		out, err = a.resonanceFormation(branch)
	case collision.TwoToTwo:
		out, err = a.inelasticScattering(branch)
	case collision.StringSoft:
		out, err = a.stringExcitationSoft()
	case collision.StringHard:
		out, err = a.stringExcitationHard()
	default:
		err = fmt.Errorf("%w: %s was requested for %s", ErrInvalidProcess, branch.Process(), a.pair())
	}
	if err != nil {
		return err
	}

	point := a.InteractionPoint()
	beta := a.BetaCM()
	for i := range out {
		if branch.Process() != collision.Elastic {
			out[i].Position = point
		}
		out[i].Momentum = kinematics.Boost(out[i].Momentum, beta)
	}

	a.process = branch.Process()
	a.partial = branch.Weight()
	a.outgoing = out
	a.finalized = true
	return nil
}

// cmAxis is the direction of the first incoming particle in the CM frame.
func (a *Action) cmAxis() r3.Vec {
	p := kinematics.Boost(a.incoming[0].Momentum, r3.Scale(-1, a.BetaCM()))
	axis := kinematics.ThreeMomentum(p)
	if r3.Norm2(axis) == 0 {
		return r3.Vec{Z: 1}
	}
	return r3.Unit(axis)
}

// angularDistribution is forward peaked for nucleon-nucleon elastic
// scattering unless isotropy is configured.
func (a *Action) angularDistribution(elastic bool) kinematics.AngularDistribution {
	ta, tb := a.incoming[0].Type, a.incoming[1].Type
	if a.phys.Isotropic || !elastic || !ta.IsNucleon() || !tb.IsNucleon() {
		return kinematics.Isotropic{}
	}
	plab := kinematics.PlabFromS(a.MandelstamS(), ta.Mass, tb.Mass)
	return kinematics.ForwardPeaked{Slope: kinematics.CugnonSlope(plab)}
}

// sampleAngles sets back-to-back CM momenta for two outgoing particles with
// the given masses.
func (a *Action) sampleAngles(out []particle.Data, m1, m2 float64, elastic bool) {
	srts := a.SqrtS()
	pcm := kinematics.PCM(srts, m1, m2)
	dir := a.angularDistribution(elastic).Direction(a.phys.Rand, a.cmAxis(), pcm)
	out[0].Momentum, out[1].Momentum = kinematics.TwoBody(srts, m1, m2, dir)
}

// elasticScattering keeps the incoming particles, formation state included,
// and only resamples their momenta.
func (a *Action) elasticScattering() []particle.Data {
	out := []particle.Data{a.incoming[0], a.incoming[1]}
	a.sampleAngles(out, a.incoming[0].EffectiveMass(), a.incoming[1].EffectiveMass(), true)
	return out
}

func (a *Action) resonanceFormation(b collision.Branch) ([]particle.Data, error) {
	out := b.Particles()
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: got %d for %s", ErrInvalidResonanceFormation, len(out), a.pair())
	}
	out[0].Momentum = kinematics.New(a.SqrtS(), r3.Vec{})
	a.assignFormationTime(out)
	a.log.Debug("resonance formed", "action", a.id, "resonance", out[0].Type.Name, "mass", a.SqrtS())
	return out, nil
}

func (a *Action) inelasticScattering(b collision.Branch) ([]particle.Data, error) {
	out := b.Particles()
	if len(out) != 2 {
		return nil, fmt.Errorf("%w: 2->2 channel with %d outgoing particles for %s", ErrInvalidProcess, len(out), a.pair())
	}
	m1, m2 := a.sampleMasses(out[0].Type, out[1].Type)
	a.sampleAngles(out, m1, m2, false)
	a.assignFormationTime(out)
	return out, nil
}

// sampleMasses draws the masses of two outgoing species; unstable ones
// follow their spectral functions up to the available energy.
func (a *Action) sampleMasses(t1, t2 *particle.Type) (float64, float64) {
	srts := a.SqrtS()
	switch {
	case t1.IsStable() && t2.IsStable():
		return t1.Mass, t2.Mass
	case t2.IsStable():
		return t1.SampleMass(a.phys.Rand, srts-t2.Mass), t2.Mass
	case t1.IsStable():
		return t1.Mass, t2.SampleMass(a.phys.Rand, srts-t1.Mass)
	default:
		m1 := t1.SampleMass(a.phys.Rand, srts-t2.MinMass())
		return m1, t2.SampleMass(a.phys.Rand, srts-m1)
	}
}

// latestIncoming is the later incoming formation time and the scaling factor
// of the particle it belongs to.
func (a *Action) latestIncoming() (float64, float64) {
	p0, p1 := a.incoming[0], a.incoming[1]
	if p0.FormationTime > p1.FormationTime {
		return p0.FormationTime, p0.XSecScaling
	}
	return p1.FormationTime, p1.XSecScaling
}

// assignFormationTime lets the products of an unformed incoming particle
// inherit its formation time and scaling factor; otherwise they are formed
// at the execution time. Used for 2->1 and 2->2 products.
func (a *Action) assignFormationTime(out []particle.Data) {
	tIn, scaling := a.latestIncoming()
	for i := range out {
		if tIn > a.time {
			out[i].FormationTime = tIn
			out[i].XSecScaling = scaling
		} else {
			out[i].FormationTime = a.time
			out[i].XSecScaling = 1
		}
	}
}
