package particle

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lgpang/smash/pkg/kinematics"
)

func defaultCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return c
}

func TestDefaultCatalog(t *testing.T) {
	c := defaultCatalog(t)

	p, err := c.Find(Proton)
	require.NoError(t, err)
	assert.True(t, p.IsStable())
	assert.True(t, p.IsNucleon())
	assert.Equal(t, 1, p.BaryonNumber)
	assert.Equal(t, 0.938, p.MinMass())

	pbar, err := c.Find(-Proton)
	require.NoError(t, err)
	assert.Equal(t, "pbar", pbar.Name)
	assert.Equal(t, -1, pbar.Charge)
	assert.Equal(t, -1, pbar.BaryonNumber)
	assert.Equal(t, -1, pbar.AntiparticleSign())
	assert.Same(t, pbar, c.Antiparticle(p))

	pi0, err := c.Find(PiZero)
	require.NoError(t, err)
	assert.Same(t, pi0, c.Antiparticle(pi0))

	_, err = c.Find(PdgCode(999999))
	assert.Error(t, err)
}

func TestAntiparticleDecaysAreConjugated(t *testing.T) {
	c := defaultCatalog(t)
	antiDelta, err := c.Find(-2224)
	require.NoError(t, err)
	require.Len(t, antiDelta.Decays, 1)
	assert.ElementsMatch(t, []PdgCode{-Proton, PiMinus}, antiDelta.Decays[0].Products[:])
	assert.Equal(t, -2, antiDelta.Charge)
}

func TestMinMass(t *testing.T) {
	c := defaultCatalog(t)
	delta, err := c.Find(2224)
	require.NoError(t, err)
	assert.InDelta(t, 0.938+0.138, delta.MinMass(), 1e-12)

	h1, err := c.Find(H1)
	require.NoError(t, err)
	assert.InDelta(t, 3*0.138, h1.MinMass(), 1e-12)
}

func TestSpectralFunctionNormalized(t *testing.T) {
	c := defaultCatalog(t)
	for _, code := range []PdgCode{2214, 12212, Rho0} {
		rt, err := c.Find(code)
		require.NoError(t, err)

		lo, hi := rt.MinMass(), rt.Mass+20*rt.Width
		n := 20000
		step := (hi - lo) / float64(n)
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += rt.SpectralFunction(lo+(float64(i)+0.5)*step) * step
		}
		assert.InDelta(t, 1.0, sum, 0.02, rt.Name)
		assert.Equal(t, 0.0, rt.SpectralFunction(rt.MinMass()-0.01))
	}
}

func TestPartialInWidthAtPole(t *testing.T) {
	c := defaultCatalog(t)
	delta, err := c.Find(2214)
	require.NoError(t, err)
	p, _ := c.Find(Proton)
	pi0, _ := c.Find(PiZero)
	piPlus, _ := c.Find(PiPlus)

	a, b := NewData(p), NewData(pi0)
	assert.InDelta(t, 0.117*0.6667, delta.PartialInWidth(delta.Mass, &a, &b), 1e-9)

	// order of the incoming pair does not matter
	assert.InDelta(t, 0.117*0.6667, delta.PartialInWidth(delta.Mass, &b, &a), 1e-9)

	// p pi+ cannot form a Delta+
	c2 := NewData(piPlus)
	assert.Equal(t, 0.0, delta.PartialInWidth(delta.Mass, &a, &c2))

	// below threshold
	assert.Equal(t, 0.0, delta.PartialInWidth(1.0, &a, &b))
}

func TestSampleMass(t *testing.T) {
	c := defaultCatalog(t)
	rng := rand.New(rand.NewSource(42))
	delta, _ := c.Find(2224)
	for i := 0; i < 200; i++ {
		m := delta.SampleMass(rng, 1.6)
		assert.GreaterOrEqual(t, m, delta.MinMass())
		assert.LessOrEqual(t, m, 1.6)
	}
	p, _ := c.Find(Proton)
	assert.Equal(t, 0.938, p.SampleMass(rng, 2.0))
}

func TestDataEffectiveMass(t *testing.T) {
	c := defaultCatalog(t)
	p, _ := c.Find(Proton)
	d := NewData(p)
	assert.Equal(t, 1.0, d.XSecScaling)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, 0.938, d.EffectiveMass())

	d.Momentum = kinematics.OnShell(0.9, r3.Vec{Z: 0.4})
	assert.InDelta(t, 0.9, d.EffectiveMass(), 1e-9)
}

func TestDataBoosted(t *testing.T) {
	c := defaultCatalog(t)
	p, _ := c.Find(Proton)
	d := NewData(p)
	d.Momentum = kinematics.OnShell(p.Mass, r3.Vec{})
	d.Position = FourPosition{T: 0, R: r3.Vec{X: 1}}

	b := d.Boosted(r3.Vec{Z: 0.6})
	assert.InDelta(t, 1.25*p.Mass, b.Momentum.E(), 1e-9)
	assert.InDelta(t, 0.75*p.Mass, b.Momentum.Pz(), 1e-9)
	assert.InDelta(t, 1.0, b.Position.R.X, 1e-12)
	assert.Equal(t, d.ID, b.ID)
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "particles: []"},
		{"bad yaml", "particles: ["},
		{"zero mass", "particles:\n  - {name: x, pdg: 1, mass: 0}"},
		{"unstable without decays", "particles:\n  - {name: x, pdg: 1, mass: 1, width: 0.1}"},
		{"duplicate", "particles:\n  - {name: x, pdg: 1, mass: 1}\n  - {name: y, pdg: 1, mass: 1}"},
		{"unknown product", "particles:\n  - {name: x, pdg: 1, mass: 1, width: 0.1, decays: [{products: [5, 6], br: 1}]}"},
		{"branching ratios", "particles:\n  - {name: a, pdg: 2, mass: 0.1}\n  - {name: x, pdg: 1, mass: 1, width: 0.1, decays: [{products: [2, 2], br: 0.5}]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalogYAML([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "particles.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalogYAML, 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c.All(), len(defaultCatalog(t).All()))
	_, err = c.Find(Proton)
	assert.NoError(t, err)

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	c := defaultCatalog(t)

	p, err := c.Lookup("p")
	require.NoError(t, err)
	assert.Equal(t, Proton, p.PDG)

	pbar, err := c.Lookup("-2212")
	require.NoError(t, err)
	assert.Equal(t, "pbar", pbar.Name)

	pim, err := c.Lookup(" pi- ")
	require.NoError(t, err)
	assert.Equal(t, PiMinus, pim.PDG)

	_, err = c.Lookup("graviton")
	assert.Error(t, err)
	_, err = c.Lookup("99999")
	assert.Error(t, err)
}
