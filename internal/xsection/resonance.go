package xsection

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/particle"
)

// NoiseFloor is the smallest channel weight kept in a branch list, in mb.
const NoiseFloor = 1e-6

// DefaultCandidateCacheSize bounds the number of cached incoming pairs.
const DefaultCandidateCacheSize = 512

// Species is the read-only view of the particle catalog used here.
type Species interface {
	All() []*particle.Type
	Find(code particle.PdgCode) (*particle.Type, error)
}

type pairKey struct {
	a, b particle.PdgCode
}

func newPairKey(a, b particle.PdgCode) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// ResonanceIndex lists, per incoming pair, the resonances with a decay mode
// into that pair. Candidate lists are cached; weights are not.
type ResonanceIndex struct {
	species Species
	cache   *lru.Cache[pairKey, []*particle.Type]
}

// NewResonanceIndex creates an index over species with a candidate cache of
// the given size.
func NewResonanceIndex(species Species, size int) (*ResonanceIndex, error) {
	if size <= 0 {
		size = DefaultCandidateCacheSize
	}
	cache, err := lru.New[pairKey, []*particle.Type](size)
	if err != nil {
		return nil, err
	}
	return &ResonanceIndex{species: species, cache: cache}, nil
}

// Candidates are the unstable species that can be formed from a and b.
func (r *ResonanceIndex) Candidates(a, b *particle.Type) []*particle.Type {
	key := newPairKey(a.PDG, b.PDG)
	if c, ok := r.cache.Get(key); ok {
		return c
	}
	var out []*particle.Type
	for _, t := range r.species.All() {
		if t.IsStable() || t == a || t == b {
			continue
		}
		if !Conserves(t.Charge, t.BaryonNumber, a, b) {
			continue
		}
		for _, mode := range t.Decays {
			if (mode.Products[0] == a.PDG && mode.Products[1] == b.PDG) ||
				(mode.Products[0] == b.PDG && mode.Products[1] == a.PDG) {
				out = append(out, t)
				break
			}
		}
	}
	r.cache.Add(key, out)
	return out
}

// Conserves reports whether a final state with the given charge and baryon
// number is reachable from a and b.
func Conserves(charge, baryon int, a, b *particle.Type) bool {
	return charge == a.Charge+b.Charge && baryon == a.BaryonNumber+b.BaryonNumber
}

// ResonanceFormation is the 2->1 cross section for forming res from a and b:
//
//	sigma = (2J_R+1)/((2J_a+1)(2J_b+1)) * sym * 2 pi^2/p^2 * A(srts) * Gamma_in * (hbar c)^2/fm2mb
//
// with sym = 2 for identical incoming species. Zero when the resonance
// cannot be reached with conserved charge and baryon number, when it is the
// same species as an incoming particle, or below its threshold.
func ResonanceFormation(res *particle.Type, a, b *particle.Data, srts, pcmSqr float64) float64 {
	if res.IsStable() || res == a.Type || res == b.Type {
		return 0
	}
	if !Conserves(res.Charge, res.BaryonNumber, a.Type, b.Type) {
		return 0
	}
	if srts <= res.MinMass() || pcmSqr <= 0 {
		return 0
	}
	gammaIn := res.PartialInWidth(srts, a, b)
	if gammaIn <= 0 {
		return 0
	}
	spin := float64(res.Spin+1) / float64((a.Type.Spin+1)*(b.Type.Spin+1))
	sym := 1.0
	if a.Type == b.Type {
		sym = 2
	}
	hc := kinematics.HBarC
	return spin * sym * 2 * math.Pi * math.Pi / pcmSqr * res.SpectralFunction(srts) * gammaIn * hc * hc / kinematics.FmSqrToMb
}

// ResonanceBranches lists the TwoToOne branches above NoiseFloor.
func (r *ResonanceIndex) ResonanceBranches(a, b *particle.Data, srts, pcmSqr float64) []collision.Branch {
	var out []collision.Branch
	for _, res := range r.Candidates(a.Type, b.Type) {
		w := ResonanceFormation(res, a, b, srts, pcmSqr)
		if w > NoiseFloor {
			out = append(out, collision.NewBranch(collision.TwoToOne, w, res))
		}
	}
	return out
}
