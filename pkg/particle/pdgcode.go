package particle

import "strconv"

// PdgCode is a Monte Carlo particle numbering scheme code.
type PdgCode int32

// Codes referenced by the scattering engine.
const (
	Proton   PdgCode = 2212
	Neutron  PdgCode = 2112
	PiPlus   PdgCode = 211
	PiZero   PdgCode = 111
	PiMinus  PdgCode = -211
	KPlus    PdgCode = 321
	KZero    PdgCode = 311
	KZeroBar PdgCode = -311
	KShort   PdgCode = 310
	KLong    PdgCode = 130
	Eta      PdgCode = 221
	Rho0     PdgCode = 113
	H1       PdgCode = 10223
)

// IsNucleon reports whether c is a (anti)proton or (anti)neutron.
func (c PdgCode) IsNucleon() bool {
	a := c.Abs()
	return a == Proton || a == Neutron
}

// IsPion reports whether c is a charged or neutral pion.
func (c PdgCode) IsPion() bool {
	return c == PiPlus || c == PiZero || c == PiMinus
}

// IsNeutralKaonMixture reports whether c is K_S or K_L, which the catalog
// only knows through K0 and K0bar.
func (c PdgCode) IsNeutralKaonMixture() bool {
	return c == KShort || c == KLong
}

// Abs drops the antiparticle sign.
func (c PdgCode) Abs() PdgCode {
	if c < 0 {
		return -c
	}
	return c
}

// AntiparticleSign is -1 for codes carrying the antiparticle sign, +1 otherwise.
func (c PdgCode) AntiparticleSign() int {
	if c < 0 {
		return -1
	}
	return 1
}

func (c PdgCode) String() string {
	return strconv.FormatInt(int64(c), 10)
}
