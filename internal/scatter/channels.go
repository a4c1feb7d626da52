package scatter

import (
	"fmt"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/internal/xsection"
	"github.com/lgpang/smash/pkg/particle"
)

// AddAllProcesses registers every channel of the pair allowed by opts.
// Whether strings or resonances describe the inelastic part is decided once
// for this action.
func (a *Action) AddAllProcesses(opts Options) error {
	ta, tb := a.incoming[0].Type, a.incoming[1].Type
	srts := a.SqrtS()
	bothNucleons := ta.IsNucleon() && tb.IsNucleon()

	useStrings := UseStrings(ta, tb, srts, opts.Strings, a.phys.Rand)
	rejectElastic := bothNucleons &&
		ta.AntiparticleSign() == tb.AntiparticleSign() &&
		srts < opts.LowSNNCut

	if opts.Included.Has(xsection.ReactionElastic) && !rejectElastic {
		a.AddCollision(a.ElasticCrossSection(opts.ElasticParameter))
	}
	if useStrings {
		bs, err := a.StringExcitationCrossSections()
		if err != nil {
			return err
		}
		a.AddCollisions(bs)
	} else {
		if opts.TwoToOne {
			a.AddCollisions(a.ResonanceCrossSections())
		}
		if opts.Included.Inelastic() {
			a.AddCollisions(a.TwoToTwoCrossSections(opts.Included))
		}
	}

	if opts.NNbar == NNbarResonances {
		if ta.IsNucleon() && tb.PDG == -ta.PDG {
			b, err := a.NNbarAnnihilationCrossSection()
			if err != nil {
				return err
			}
			a.AddCollision(b)
		}
		if (ta.PDG == particle.Rho0 && tb.PDG == particle.H1) ||
			(ta.PDG == particle.H1 && tb.PDG == particle.Rho0) {
			bs, err := a.NNbarCreationCrossSections()
			if err != nil {
				return err
			}
			a.AddCollisions(bs)
		}
	}

	a.log.Debug("channels registered",
		"action", a.id, "pair", a.pair(), "sqrt_s", srts, "strings", useStrings,
		"channels", a.branches.Len(), "total_mb", a.RawWeight())
	return nil
}

// ElasticCrossSection is the elastic channel.
func (a *Action) ElasticCrossSection(elasticParameter float64) collision.Branch {
	ta, tb := a.incoming[0].Type, a.incoming[1].Type
	w := xsection.Elastic(elasticParameter, ta, tb, a.SqrtS())
	return collision.NewBranch(collision.Elastic, w, ta, tb)
}

// ResonanceCrossSections lists the 2->1 channels.
func (a *Action) ResonanceCrossSections() []collision.Branch {
	bs := a.phys.Resonances.ResonanceBranches(&a.incoming[0], &a.incoming[1], a.SqrtS(), a.CMMomentumSqr())
	for _, b := range bs {
		a.log.Debug("found resonance", "action", a.id, "channel", b.String())
	}
	return bs
}

// TwoToTwoCrossSections lists the inelastic 2->2 channels of the enabled
// families.
func (a *Action) TwoToTwoCrossSections(included xsection.ReactionSet) []collision.Branch {
	return xsection.TwoToTwo(a.phys.Species, included, &a.incoming[0], &a.incoming[1], a.SqrtS())
}

// StringExcitationCrossSections partitions the string cross section into
// soft and hard channels and records the sub-cross sections used to pick a
// soft subprocess later.
func (a *Action) StringExcitationCrossSections() ([]collision.Branch, error) {
	ta, tb := a.incoming[0].Type, a.incoming[1].Type
	srts := a.SqrtS()
	aggregate := xsection.StringAggregate(ta, tb, srts)
	if aggregate <= 0 {
		return nil, nil
	}
	if a.phys.Soft == nil {
		return nil, fmt.Errorf("%w: %s", ErrStringProcessUnset, a.pair())
	}
	diffractive, err := a.phys.Soft.CrossSectionsDiffractive(
		xsection.DiffractiveRepresentative(ta), xsection.DiffractiveRepresentative(tb), srts)
	if err != nil {
		return nil, fmt.Errorf("diffractive cross sections for %s: %w", a.pair(), err)
	}
	p, err := xsection.PartitionString(aggregate, diffractive, xsection.StringHard(ta, tb, srts))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.pair(), err)
	}
	a.stringCumulative = p.Cumulative()
	a.log.Debug("string cross sections",
		"action", a.id, "single_diffractive_AX", p.AX, "single_diffractive_XB", p.XB,
		"double_diffractive", p.DD, "soft_non_diffractive", p.SoftND, "hard_non_diffractive", p.HardND)
	return xsection.StringBranches(p), nil
}

// NNbarAnnihilationCrossSection is the N Nbar -> rho0 h1(1170) channel. It
// takes what the channels registered so far leave of the total cross
// section, so it must be added last.
func (a *Action) NNbarAnnihilationCrossSection() (collision.Branch, error) {
	b, err := xsection.NNbarAnnihilation(a.phys.Species, a.SqrtS(), a.RawWeight())
	if err != nil {
		return collision.Branch{}, fmt.Errorf("NNbar annihilation for %s: %w", a.pair(), err)
	}
	return b, nil
}

// NNbarCreationCrossSections are the rho0 h1(1170) -> N Nbar channels.
func (a *Action) NNbarCreationCrossSections() ([]collision.Branch, error) {
	bs, err := xsection.NNbarCreation(a.phys.Species, a.incoming[0].Type, a.incoming[1].Type, a.SqrtS(), a.CMMomentum())
	if err != nil {
		return nil, fmt.Errorf("NNbar creation for %s: %w", a.pair(), err)
	}
	return bs, nil
}
