package xsection

import (
	"fmt"
	"math"
	"strings"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/particle"
)

// Reaction is one switchable family of 2->2 reactions.
type Reaction uint8

const (
	// ReactionElastic is elastic scattering.
	ReactionElastic Reaction = 1 << iota
	// ReactionNNToNR is N N -> N R for unstable baryons R.
	ReactionNNToNR
	// ReactionNNToDR is N N -> Delta R for unstable baryons R.
	ReactionNNToDR
)

var reactionNames = map[string]Reaction{
	"elastic":  ReactionElastic,
	"nn_to_nr": ReactionNNToNR,
	"nn_to_dr": ReactionNNToDR,
}

// ReactionSet is a bitset of Reaction values.
type ReactionSet uint8

// AllReactions enables every 2->2 family.
const AllReactions = ReactionSet(ReactionElastic | ReactionNNToNR | ReactionNNToDR)

// ParseReactions builds a set from reaction names. "all" enables every family.
func ParseReactions(names []string) (ReactionSet, error) {
	var set ReactionSet
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "all" {
			set = AllReactions
			continue
		}
		r, ok := reactionNames[n]
		if !ok {
			return 0, fmt.Errorf("unknown 2->2 reaction %q", name)
		}
		set |= ReactionSet(r)
	}
	return set, nil
}

// Has reports whether r is enabled.
func (s ReactionSet) Has(r Reaction) bool {
	return s&ReactionSet(r) != 0
}

// Inelastic reports whether any inelastic family is enabled.
func (s ReactionSet) Inelastic() bool {
	return s&^ReactionSet(ReactionElastic) != 0
}

func (s ReactionSet) String() string {
	var names []string
	for _, n := range []string{"elastic", "nn_to_nr", "nn_to_dr"} {
		if s.Has(reactionNames[n]) {
			names = append(names, n)
		}
	}
	return strings.Join(names, ",")
}

// deltaPDG are the Delta(1232) charge states.
var deltaPDG = []particle.PdgCode{2224, 2214, 2114, 1114}

// NNInelastic is the inelastic nucleon-nucleon cross section below the
// string regime.
func NNInelastic(a, b *particle.Type, sqrtS float64) float64 {
	s := sqrtS * sqrtS
	switch classify(a, b) {
	case pairNNSameIsospin:
		return math.Max(0, PPHighEnergy(s)-PPElastic(s))
	case pairNNMixedIsospin:
		return math.Max(0, NPHighEnergy(s)-NPElastic(s))
	}
	return 0
}

type twoToTwoCandidate struct {
	reaction Reaction
	c, d     *particle.Type
	weight   float64
}

// TwoToTwo lists the enabled inelastic nucleon-nucleon branches N N -> N R
// and N N -> Delta R. The inelastic cross section is shared among all open
// charge-conserving final states in proportion to (2J_c+1)(2J_d+1) p_f/p_i,
// with p_f folded over the spectral functions; families that are not enabled
// keep their share out of the list. Other pairs get no branches.
func TwoToTwo(species Species, reactions ReactionSet, a, b *particle.Data, sqrtS float64) []collision.Branch {
	if !reactions.Has(ReactionNNToNR) && !reactions.Has(ReactionNNToDR) {
		return nil
	}
	ta, tb := a.Type, b.Type
	if !ta.IsNucleon() || !tb.IsNucleon() || ta.AntiparticleSign() != tb.AntiparticleSign() {
		return nil
	}
	inelastic := NNInelastic(ta, tb, sqrtS)
	pInitial := kinematics.PCM(sqrtS, a.EffectiveMass(), b.EffectiveMass())
	if inelastic <= 0 || pInitial <= 0 {
		return nil
	}

	sign := ta.AntiparticleSign()
	var nucleons, deltas, resonances []*particle.Type
	for _, t := range species.All() {
		if t.BaryonNumber != sign {
			continue
		}
		switch {
		case t.IsNucleon():
			nucleons = append(nucleons, t)
		case t.IsStable():
		default:
			resonances = append(resonances, t)
			for _, code := range deltaPDG {
				if t.PDG == particle.PdgCode(sign)*code {
					deltas = append(deltas, t)
				}
			}
		}
	}

	var candidates []twoToTwoCandidate
	sum := 0.0
	add := func(r Reaction, c, d *particle.Type) {
		if !Conserves(c.Charge+d.Charge, c.BaryonNumber+d.BaryonNumber, ta, tb) {
			return
		}
		if sqrtS <= c.MinMass()+d.MinMass() {
			return
		}
		w := float64((c.Spin+1)*(d.Spin+1)) * EffectiveMomentum(sqrtS, c, d) / pInitial
		if w <= 0 {
			return
		}
		candidates = append(candidates, twoToTwoCandidate{reaction: r, c: c, d: d, weight: w})
		sum += w
	}
	for _, n := range nucleons {
		for _, r := range resonances {
			add(ReactionNNToNR, n, r)
		}
	}
	for i, d := range deltas {
		for _, r := range resonances {
			// each unordered Delta Delta pair once
			if isDelta(r, deltas[:i]) {
				continue
			}
			add(ReactionNNToDR, d, r)
		}
	}
	if sum <= 0 {
		return nil
	}

	var out []collision.Branch
	for _, c := range candidates {
		if !reactions.Has(c.reaction) {
			continue
		}
		w := inelastic * c.weight / sum
		if w > NoiseFloor {
			out = append(out, collision.NewBranch(collision.TwoToTwo, w, c.c, c.d))
		}
	}
	return out
}

func isDelta(t *particle.Type, deltas []*particle.Type) bool {
	for _, d := range deltas {
		if t == d {
			return true
		}
	}
	return false
}
