package particle

import (
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/lgpang/smash/pkg/kinematics"
)

// widthCutoff separates stable species from resonances.
const widthCutoff = 1e-5

// spectralGridPoints is the resolution of the spectral-function normalization grid.
const spectralGridPoints = 4000

// DecayMode is a two-body decay channel of a resonance.
type DecayMode struct {
	Products       [2]PdgCode
	BranchingRatio float64
	L              int // orbital angular momentum
}

// Type is one particle species.
type Type struct {
	Name         string
	PDG          PdgCode
	Mass         float64 // pole mass, GeV
	Width        float64 // width at the pole, GeV
	Spin         int     // twice the spin
	Charge       int
	BaryonNumber int
	Decays       []DecayMode

	minMass  float64
	products [][2]*Type
	norm     float64
}

// IsStable reports whether the species is treated as stable.
func (t *Type) IsStable() bool {
	return t.Width < widthCutoff
}

// IsNucleon reports whether the species is a (anti)nucleon.
func (t *Type) IsNucleon() bool {
	return t.PDG.IsNucleon()
}

// IsBaryon reports whether the species carries baryon number.
func (t *Type) IsBaryon() bool {
	return t.BaryonNumber != 0
}

// AntiparticleSign is the sign of the PDG code.
func (t *Type) AntiparticleSign() int {
	return t.PDG.AntiparticleSign()
}

// MinMass is the lowest mass the species can be produced with.
func (t *Type) MinMass() float64 {
	return t.minMass
}

func (t *Type) String() string {
	return t.Name
}

// TotalWidth is the mass-dependent width, summed over decay modes.
func (t *Type) TotalWidth(m float64) float64 {
	if t.IsStable() {
		return 0
	}
	w := 0.0
	for i, mode := range t.Decays {
		a, b := t.products[i][0], t.products[i][1]
		w += t.modeWidth(mode, m, a.Mass, b.Mass, a.MinMass()+b.MinMass())
	}
	return w
}

// modeWidth scales the on-shell partial width to mass m with the
// (p/p0)^(2L+1) M0/m phase-space factor.
func (t *Type) modeWidth(mode DecayMode, m, m1, m2, threshold float64) float64 {
	if m <= threshold {
		return 0
	}
	gamma0 := t.Width * mode.BranchingRatio
	p0 := kinematics.PCM(t.Mass, m1, m2)
	if p0 <= 0 {
		return gamma0
	}
	p := kinematics.PCM(m, m1, m2)
	if p <= 0 {
		return 0
	}
	return gamma0 * t.Mass / m * math.Pow(p/p0, float64(2*mode.L+1))
}

// PartialInWidth is the width of the channel a+b -> t at invariant mass srts,
// using the incoming effective masses. Zero when t has no such decay mode.
func (t *Type) PartialInWidth(srts float64, a, b *Data) float64 {
	if t.IsStable() {
		return 0
	}
	ma, mb := a.EffectiveMass(), b.EffectiveMass()
	for i, mode := range t.Decays {
		if !mode.matches(a.Type.PDG, b.Type.PDG) {
			continue
		}
		pa, pb := t.products[i][0], t.products[i][1]
		gamma0 := t.Width * mode.BranchingRatio
		p0 := kinematics.PCM(t.Mass, pa.Mass, pb.Mass)
		p := kinematics.PCM(srts, ma, mb)
		if p <= 0 {
			return 0
		}
		if p0 <= 0 {
			return gamma0
		}
		return gamma0 * t.Mass / srts * math.Pow(p/p0, float64(2*mode.L+1))
	}
	return 0
}

// SpectralFunction is the normalized relativistic Breit-Wigner distribution
// of the species mass, in GeV^-1.
func (t *Type) SpectralFunction(m float64) float64 {
	if t.IsStable() || t.norm <= 0 {
		return 0
	}
	return t.breitWigner(m) / t.norm
}

func (t *Type) breitWigner(m float64) float64 {
	if m <= t.minMass {
		return 0
	}
	g := t.TotalWidth(m)
	m2 := m * m
	d := m2 - t.Mass*t.Mass
	return 2 / math.Pi * m2 * g / (d*d + m2*g*g)
}

// normalize integrates the unnormalized Breit-Wigner on a fixed grid.
func (t *Type) normalize() {
	if t.IsStable() {
		return
	}
	hi := t.Mass + 20*t.Width
	if hi < t.minMass+1 {
		hi = t.minMass + 1
	}
	xs := make([]float64, spectralGridPoints)
	fs := make([]float64, spectralGridPoints)
	step := (hi - t.minMass) / float64(spectralGridPoints-1)
	for i := range xs {
		xs[i] = t.minMass + float64(i)*step
		fs[i] = t.breitWigner(xs[i])
	}
	t.norm = integrate.Trapezoidal(xs, fs)
}

// SampleMass draws a mass from the spectral function restricted to
// [MinMass, maxMass]. Stable species, or an empty interval, return the pole
// mass clipped to maxMass.
func (t *Type) SampleMass(rng kinematics.Random, maxMass float64) float64 {
	if t.IsStable() || maxMass <= t.minMass {
		return math.Min(t.Mass, maxMass)
	}
	peak := 0.0
	const scan = 200
	step := (maxMass - t.minMass) / scan
	for i := 0; i <= scan; i++ {
		if v := t.breitWigner(t.minMass + float64(i)*step); v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return math.Min(t.Mass, maxMass)
	}
	// the grid can miss the true maximum of a narrow peak
	peak *= 1.2
	for try := 0; try < 100000; try++ {
		m := t.minMass + rng.Float64()*(maxMass-t.minMass)
		if rng.Float64()*peak < t.breitWigner(m) {
			return m
		}
	}
	return math.Min(t.Mass, maxMass)
}

func (d DecayMode) matches(a, b PdgCode) bool {
	return (d.Products[0] == a && d.Products[1] == b) ||
		(d.Products[0] == b && d.Products[1] == a)
}
