package collision

import "fmt"

// ProcessType is the kind of reaction a branch describes.
type ProcessType int

const (
	// None marks an action that has not selected a channel yet.
	None ProcessType = iota
	// Elastic is 2->2 scattering without change of species.
	Elastic
	// TwoToOne is resonance formation.
	TwoToOne
	// TwoToTwo is inelastic 2->2 scattering.
	TwoToTwo
	// StringSoft is soft string excitation (diffractive or soft non-diffractive).
	StringSoft
	// StringHard is hard non-diffractive string excitation.
	StringHard
)

func (p ProcessType) String() string {
	switch p {
	case None:
		return "None"
	case Elastic:
		return "Elastic"
	case TwoToOne:
		return "TwoToOne"
	case TwoToTwo:
		return "TwoToTwo"
	case StringSoft:
		return "StringSoft"
	case StringHard:
		return "StringHard"
	default:
		return fmt.Sprintf("ProcessType(%d)", int(p))
	}
}

// IsString reports whether the process goes through string fragmentation.
func (p ProcessType) IsString() bool {
	return p == StringSoft || p == StringHard
}
