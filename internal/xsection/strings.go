package xsection

import (
	"errors"
	"fmt"
	"math"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/pkg/particle"
)

// ErrPartitionMismatch reports string sub-cross sections that do not add up
// to the aggregate.
var ErrPartitionMismatch = errors.New("string partition does not sum to aggregate")

// partitionTolerance is the absolute tolerance of the partition sum, in mb.
const partitionTolerance = 1e-6

// StringPartition splits the string excitation cross section into
// single-diffractive (A+B->A+X, A+B->X+B), double-diffractive and soft/hard
// non-diffractive pieces.
type StringPartition struct {
	AX     float64
	XB     float64
	DD     float64
	SoftND float64
	HardND float64
}

// Total is the sum of all five pieces.
func (p StringPartition) Total() float64 {
	return p.AX + p.XB + p.DD + p.SoftND + p.HardND
}

// Soft is everything but the hard non-diffractive piece.
func (p StringPartition) Soft() float64 {
	return p.AX + p.XB + p.DD + p.SoftND
}

// Cumulative returns the running sums (0, AX, +XB, +DD, +SoftND, +HardND).
func (p StringPartition) Cumulative() [6]float64 {
	var c [6]float64
	c[1] = p.AX
	c[2] = c[1] + p.XB
	c[3] = c[2] + p.DD
	c[4] = c[3] + p.SoftND
	c[5] = c[4] + p.HardND
	return c
}

// PartitionString rebalances the diffractive triple (AX, XB, DD) against the
// aggregate so that all pieces sum to it. When the diffractive pieces exceed
// the aggregate the single-diffractive ones shrink first and nothing is left
// for non-diffractive excitation. The non-diffractive remainder is then
// split with soft = nd * exp(-hard/nd).
func PartitionString(aggregate float64, diffractive [3]float64, hard float64) (StringPartition, error) {
	if aggregate <= 0 {
		return StringPartition{}, nil
	}
	ax := math.Max(0, diffractive[0])
	xb := math.Max(0, diffractive[1])
	dd := math.Max(0, diffractive[2])
	single := ax + xb

	ndAll := math.Max(0, aggregate-(single+dd))
	diff := aggregate - ndAll
	dd = math.Max(0, diff-single)
	if single > 0 {
		scale := (diff - dd) / single
		ax *= scale
		xb *= scale
	}

	p := StringPartition{AX: ax, XB: xb, DD: dd}
	if ndAll > 0 {
		p.SoftND = ndAll * math.Exp(-math.Max(0, hard)/ndAll)
		p.HardND = ndAll - p.SoftND
	}
	if math.Abs(p.Total()-aggregate) > partitionTolerance {
		return p, fmt.Errorf("%w: %.9g != %.9g", ErrPartitionMismatch, p.Total(), aggregate)
	}
	return p, nil
}

// StringBranches lists a StringSoft branch for everything but hard
// non-diffractive excitation and a StringHard branch for the rest, skipping
// empty ones.
func StringBranches(p StringPartition) []collision.Branch {
	var out []collision.Branch
	if soft := p.Soft(); soft > 0 {
		out = append(out, collision.NewBranch(collision.StringSoft, soft))
	}
	if p.HardND > 0 {
		out = append(out, collision.NewBranch(collision.StringHard, p.HardND))
	}
	return out
}

// DiffractiveRepresentative is the species the diffractive cross sections
// are evaluated for: protons for baryons, antiprotons for antibaryons and
// positive pions for mesons.
func DiffractiveRepresentative(t *particle.Type) particle.PdgCode {
	switch {
	case t.BaryonNumber > 0:
		return particle.Proton
	case t.BaryonNumber < 0:
		return -particle.Proton
	default:
		return particle.PiPlus
	}
}
