package xsection

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/pkg/particle"
)

func catalog(t *testing.T) *particle.Catalog {
	t.Helper()
	c, err := particle.DefaultCatalog()
	require.NoError(t, err)
	return c
}

func find(t *testing.T, c *particle.Catalog, code particle.PdgCode) *particle.Type {
	t.Helper()
	tp, err := c.Find(code)
	require.NoError(t, err)
	return tp
}

func TestNucleonNucleonParametrizations(t *testing.T) {
	s := 25.0
	assert.InDelta(t, 9.6, PPElastic(s), 0.5)
	assert.InDelta(t, 39.4, PPHighEnergy(s), 1.0)
	assert.Greater(t, PPbarHighEnergy(s), PPHighEnergy(s))
	assert.Greater(t, PPbarTotal(s), PPbarElastic(s))

	// low-energy branches are positive just above threshold
	assert.Greater(t, PPElastic(4.0), 0.0)
	assert.Greater(t, NPElastic(4.0), 0.0)
	assert.InDelta(t, 23.5, PPElastic(4.0), 0.1)
}

func TestElastic(t *testing.T) {
	c := catalog(t)
	p := find(t, c, particle.Proton)
	n := find(t, c, particle.Neutron)
	pip := find(t, c, particle.PiPlus)
	pim := find(t, c, particle.PiMinus)

	assert.Equal(t, 10.0, Elastic(10, p, p, 3.0))
	assert.Equal(t, 0.0, Elastic(0, p, p, 3.0))
	assert.Equal(t, PPElastic(9.0), Elastic(-1, p, p, 3.0))
	assert.Equal(t, PPElastic(9.0), Elastic(-1, n, n, 3.0))
	assert.Equal(t, NPElastic(9.0), Elastic(-1, p, n, 3.0))
	assert.Equal(t, PiPlusPElastic(9.0), Elastic(-1, pip, p, 3.0))
	assert.Equal(t, PiMinusPElastic(9.0), Elastic(-1, p, pim, 3.0))
	assert.Equal(t, PiPlusPElastic(9.0), Elastic(-1, pim, n, 3.0))
	assert.Equal(t, 0.0, Elastic(-1, pip, pim, 3.0))
}

func TestHighEnergyAndStringAggregate(t *testing.T) {
	c := catalog(t)
	p := find(t, c, particle.Proton)
	pbar := find(t, c, -particle.Proton)
	pip := find(t, c, particle.PiPlus)
	pim := find(t, c, particle.PiMinus)

	assert.Equal(t, PPbarHighEnergy(36), HighEnergy(p, pbar, 6))
	assert.InDelta(t, 27, HighEnergy(pip, p, 3), 1.5)
	assert.Greater(t, HighEnergy(pip, pim, 3), 0.0)
	assert.Less(t, HighEnergy(pip, pim, 3), HighEnergy(pip, p, 3))

	agg := StringAggregate(p, p, 5)
	assert.InDelta(t, PPHighEnergy(25)-PPElastic(25), agg, 1e-12)
	assert.Greater(t, agg, 0.0)
}

func TestStringHard(t *testing.T) {
	c := catalog(t)
	p := find(t, c, particle.Proton)
	pip := find(t, c, particle.PiPlus)

	assert.Equal(t, 0.0, StringHard(p, p, 4.0))
	assert.InDelta(t, 0.087*math.Pow(math.Log(10/4.1), 3.8), StringHard(p, p, 10), 1e-12)
	assert.InDelta(t, 0.042*math.Pow(math.Log(10/3.5), 3.6), StringHard(pip, p, 10), 1e-12)
	assert.InDelta(t, 0.013*math.Pow(math.Log(10/2.3), 4.7), StringHard(pip, pip, 10), 1e-12)
}

func TestResonanceFormationDelta(t *testing.T) {
	c := catalog(t)
	pip := particle.NewData(find(t, c, particle.PiPlus))
	p := particle.NewData(find(t, c, particle.Proton))
	delta := find(t, c, 2224)

	srts := 1.232
	pcmSqr := pcmSqr(srts, 0.138, 0.938)
	xs := ResonanceFormation(delta, &pip, &p, srts, pcmSqr)
	assert.Greater(t, xs, 100.0)
	assert.Less(t, xs, 300.0)

	// below threshold
	assert.Equal(t, 0.0, ResonanceFormation(delta, &pip, &p, 1.0, pcmSqr))
}

func pcmSqr(srts, m1, m2 float64) float64 {
	s := srts * srts
	return (s - (m1+m2)*(m1+m2)) * (s - (m1-m2)*(m1-m2)) / (4 * s)
}

func TestResonanceFormationZeroWithoutConservation(t *testing.T) {
	c := catalog(t)
	all := c.All()
	for _, ta := range all {
		for _, tb := range all {
			a, b := particle.NewData(ta), particle.NewData(tb)
			srts := ta.Mass + tb.Mass + 0.3
			p2 := pcmSqr(srts, ta.Mass, tb.Mass)
			for _, res := range all {
				if Conserves(res.Charge, res.BaryonNumber, ta, tb) {
					continue
				}
				assert.Equal(t, 0.0, ResonanceFormation(res, &a, &b, srts, p2),
					"%s %s -> %s", ta.Name, tb.Name, res.Name)
			}
		}
	}
}

func TestResonanceBranches(t *testing.T) {
	c := catalog(t)
	idx, err := NewResonanceIndex(c, 16)
	require.NoError(t, err)

	pim := particle.NewData(find(t, c, particle.PiMinus))
	p := particle.NewData(find(t, c, particle.Proton))
	srts := 1.5
	branches := idx.ResonanceBranches(&pim, &p, srts, pcmSqr(srts, 0.138, 0.938))
	require.NotEmpty(t, branches)
	for _, b := range branches {
		assert.Equal(t, collision.TwoToOne, b.Process())
		assert.Greater(t, b.Weight(), NoiseFloor)
		require.Len(t, b.Types(), 1)
		assert.Equal(t, 0, b.Types()[0].Charge)
		assert.Equal(t, 1, b.Types()[0].BaryonNumber)
	}

	first := idx.Candidates(pim.Type, p.Type)
	again := idx.Candidates(p.Type, pim.Type)
	assert.Equal(t, first, again)

	// two protons form nothing
	pp := idx.ResonanceBranches(&p, &p, 2.5, pcmSqr(2.5, 0.938, 0.938))
	assert.Empty(t, pp)
}

func TestResonanceSkipsIncomingSpecies(t *testing.T) {
	c := catalog(t)
	idx, err := NewResonanceIndex(c, 0)
	require.NoError(t, err)
	rho := find(t, c, particle.Rho0)
	pi0 := find(t, c, particle.PiZero)
	for _, res := range idx.Candidates(rho, pi0) {
		assert.NotSame(t, rho, res)
	}
}

func TestPartitionStringSums(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		agg := 50 * rng.Float64()
		diff := [3]float64{30 * rng.Float64(), 30 * rng.Float64(), 30 * rng.Float64()}
		if i%5 == 0 {
			diff[0], diff[1] = 0, 0
		}
		hard := 20 * rng.Float64()
		p, err := PartitionString(agg, diff, hard)
		require.NoError(t, err)
		assert.InDelta(t, agg, p.Total(), 1e-6)
		for _, v := range []float64{p.AX, p.XB, p.DD, p.SoftND, p.HardND} {
			assert.GreaterOrEqual(t, v, 0.0)
		}
		cum := p.Cumulative()
		assert.Equal(t, 0.0, cum[0])
		assert.InDelta(t, p.Total(), cum[5], 1e-12)
	}
}

func TestPartitionStringRebalancing(t *testing.T) {
	// diffractive pieces fit: the remainder is non-diffractive
	p, err := PartitionString(30, [3]float64{4, 4, 2}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4, p.AX, 1e-12)
	assert.InDelta(t, 2, p.DD, 1e-12)
	assert.InDelta(t, 20, p.SoftND, 1e-12)
	assert.Equal(t, 0.0, p.HardND)

	// double-diffractive shrinks first, single-diffractive is kept
	p, err = PartitionString(10, [3]float64{3, 3, 8}, 5)
	require.NoError(t, err)
	assert.InDelta(t, 3, p.AX, 1e-12)
	assert.InDelta(t, 3, p.XB, 1e-12)
	assert.InDelta(t, 4, p.DD, 1e-12)
	assert.Equal(t, 0.0, p.SoftND+p.HardND)

	// single-diffractive alone exceeds the aggregate
	p, err = PartitionString(10, [3]float64{10, 5, 1}, 5)
	require.NoError(t, err)
	assert.InDelta(t, 20.0/3, p.AX, 1e-9)
	assert.InDelta(t, 10.0/3, p.XB, 1e-9)
	assert.Equal(t, 0.0, p.DD)

	// no single-diffractive part: double-diffractive takes all of it
	p, err = PartitionString(5, [3]float64{0, 0, 8}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.AX+p.XB)
	assert.InDelta(t, 5, p.DD, 1e-12)
	assert.False(t, math.IsNaN(p.Total()))

	// soft/hard split
	p, err = PartitionString(10, [3]float64{}, 10)
	require.NoError(t, err)
	assert.InDelta(t, 10*math.Exp(-1), p.SoftND, 1e-12)
	assert.InDelta(t, 10*(1-math.Exp(-1)), p.HardND, 1e-12)

	p, err = PartitionString(0, [3]float64{1, 1, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, StringPartition{}, p)
}

func TestStringBranches(t *testing.T) {
	p := StringPartition{AX: 1, XB: 2, DD: 3, SoftND: 4, HardND: 5}
	branches := StringBranches(p)
	require.Len(t, branches, 2)
	assert.Equal(t, collision.StringSoft, branches[0].Process())
	assert.InDelta(t, 10, branches[0].Weight(), 1e-12)
	assert.Equal(t, collision.StringHard, branches[1].Process())
	assert.InDelta(t, 5, branches[1].Weight(), 1e-12)

	assert.Len(t, StringBranches(StringPartition{SoftND: 1}), 1)
	assert.Empty(t, StringBranches(StringPartition{}))
}

func TestDiffractiveRepresentative(t *testing.T) {
	c := catalog(t)
	assert.Equal(t, particle.Proton, DiffractiveRepresentative(find(t, c, particle.Neutron)))
	assert.Equal(t, -particle.Proton, DiffractiveRepresentative(find(t, c, -particle.Neutron)))
	assert.Equal(t, particle.PiPlus, DiffractiveRepresentative(find(t, c, particle.PiZero)))
}

func TestParseReactions(t *testing.T) {
	set, err := ParseReactions([]string{"Elastic", "nn_to_nr"})
	require.NoError(t, err)
	assert.True(t, set.Has(ReactionElastic))
	assert.True(t, set.Has(ReactionNNToNR))
	assert.False(t, set.Has(ReactionNNToDR))
	assert.True(t, set.Inelastic())
	assert.Equal(t, "elastic,nn_to_nr", set.String())

	set, err = ParseReactions([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, AllReactions, set)

	set, err = ParseReactions([]string{"elastic"})
	require.NoError(t, err)
	assert.False(t, set.Inelastic())

	_, err = ParseReactions([]string{"bogus"})
	assert.Error(t, err)
}

func TestTwoToTwoNucleonNucleon(t *testing.T) {
	c := catalog(t)
	p := particle.NewData(find(t, c, particle.Proton))
	n := particle.NewData(find(t, c, particle.Neutron))

	// below the pion production threshold nothing opens
	assert.Empty(t, TwoToTwo(c, AllReactions, &p, &p, 2.0))

	srts := 2.5
	all := TwoToTwo(c, AllReactions, &p, &p, srts)
	require.NotEmpty(t, all)
	sum := 0.0
	for _, b := range all {
		assert.Equal(t, collision.TwoToTwo, b.Process())
		types := b.Types()
		require.Len(t, types, 2)
		assert.Equal(t, 2, types[0].Charge+types[1].Charge)
		assert.Equal(t, 2, types[0].BaryonNumber+types[1].BaryonNumber)
		sum += b.Weight()
	}
	assert.InDelta(t, NNInelastic(p.Type, p.Type, srts), sum, 1e-4)

	nr := TwoToTwo(c, ReactionSet(ReactionNNToNR), &p, &n, srts)
	require.NotEmpty(t, nr)
	nrSum := 0.0
	for _, b := range nr {
		assert.True(t, b.Types()[0].IsNucleon())
		nrSum += b.Weight()
	}
	assert.Less(t, nrSum, NNInelastic(p.Type, n.Type, srts)+1e-9)

	assert.Empty(t, TwoToTwo(c, ReactionSet(ReactionElastic), &p, &p, srts))

	pip := particle.NewData(find(t, c, particle.PiPlus))
	assert.Empty(t, TwoToTwo(c, AllReactions, &pip, &p, srts))
}

func TestNNbarAnnihilation(t *testing.T) {
	c := catalog(t)
	b, err := NNbarAnnihilation(c, 2.0, 20)
	require.NoError(t, err)
	assert.Equal(t, collision.TwoToTwo, b.Process())
	assert.InDelta(t, PPbarTotal(4)-20, b.Weight(), 1e-12)
	types := b.Types()
	require.Len(t, types, 2)
	assert.Equal(t, particle.H1, types[0].PDG)
	assert.Equal(t, particle.Rho0, types[1].PDG)

	b, err = NNbarAnnihilation(c, 2.0, 1e6)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.Weight())
}

func TestNNbarCreation(t *testing.T) {
	c := catalog(t)
	rho := find(t, c, particle.Rho0)
	h1 := find(t, c, particle.H1)

	branches, err := NNbarCreation(c, rho, h1, 1.8, 0.5)
	require.NoError(t, err)
	assert.Empty(t, branches)

	srts := 2.2
	pcm := math.Sqrt(pcmSqr(srts, rho.Mass, h1.Mass))
	branches, err = NNbarCreation(c, rho, h1, srts, pcm)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	for _, b := range branches {
		assert.Equal(t, collision.TwoToTwo, b.Process())
		assert.Greater(t, b.Weight(), 0.0)
		types := b.Types()
		assert.Equal(t, types[0].PDG, -types[1].PDG)
	}
}

func TestDetailedBalanceFactor(t *testing.T) {
	c := catalog(t)
	p := find(t, c, particle.Proton)
	pbar := find(t, c, -particle.Proton)
	pip := find(t, c, particle.PiPlus)
	pim := find(t, c, particle.PiMinus)

	// stable in and out with equal masses: spin ratio only
	srts := 3.0
	pcm := math.Sqrt(pcmSqr(srts, 0.938, 0.938))
	assert.InDelta(t, 1.0, DetailedBalanceFactor(srts, pcm, p, pbar, p, pbar), 1e-9)
	assert.InDelta(t, 2.0, DetailedBalanceFactor(srts, pcm, p, p, p, pbar), 1e-9)

	f := DetailedBalanceFactor(srts, math.Sqrt(pcmSqr(srts, 0.138, 0.138)), pip, pim, p, pbar)
	assert.Greater(t, f, 1.0)
	assert.Equal(t, 0.0, DetailedBalanceFactor(srts, 0, pip, pim, p, pbar))
}

func TestEffectiveMomentum(t *testing.T) {
	c := catalog(t)
	p := find(t, c, particle.Proton)
	delta := find(t, c, 2224)

	assert.InDelta(t, math.Sqrt(pcmSqr(3, 0.938, 0.938)), EffectiveMomentum(3, p, p), 1e-12)
	assert.Equal(t, 0.0, EffectiveMomentum(2.0, p, delta))
	folded := EffectiveMomentum(2.5, p, delta)
	assert.Greater(t, folded, 0.0)
	assert.Less(t, folded, math.Sqrt(pcmSqr(2.5, 0.938, delta.MinMass())))
}
