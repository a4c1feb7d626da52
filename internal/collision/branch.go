package collision

import (
	"fmt"
	"strings"

	"github.com/lgpang/smash/pkg/particle"
)

// Branch is one candidate reaction channel. Weight is a cross section in mb.
// String branches carry no outgoing types; their final state is produced by
// the fragmentation collaborators.
type Branch struct {
	process ProcessType
	weight  float64
	types   []*particle.Type
}

// NewBranch creates a branch. Negative weights are clamped to zero.
func NewBranch(process ProcessType, weight float64, types ...*particle.Type) Branch {
	if weight < 0 {
		weight = 0
	}
	out := make([]*particle.Type, len(types))
	copy(out, types)
	return Branch{process: process, weight: weight, types: out}
}

// Process returns the reaction kind.
func (b Branch) Process() ProcessType { return b.process }

// Weight returns the cross section of the branch.
func (b Branch) Weight() float64 { return b.weight }

// Types returns a copy of the outgoing species list.
func (b Branch) Types() []*particle.Type {
	out := make([]*particle.Type, len(b.types))
	copy(out, b.types)
	return out
}

// Particles builds fresh outgoing particles, one per outgoing type.
func (b Branch) Particles() []particle.Data {
	out := make([]particle.Data, len(b.types))
	for i, t := range b.types {
		out[i] = particle.NewData(t)
	}
	return out
}

func (b Branch) String() string {
	names := make([]string, len(b.types))
	for i, t := range b.types {
		names[i] = t.Name
	}
	return fmt.Sprintf("%s[%s] %.6g mb", b.process, strings.Join(names, " "), b.weight)
}

// BranchList is an ordered, append-only list of branches together with the
// cumulative sum of their weights.
type BranchList struct {
	branches   []Branch
	cumulative []float64
	total      float64
}

// Add appends one branch.
func (l *BranchList) Add(b Branch) {
	l.total += b.weight
	l.branches = append(l.branches, b)
	l.cumulative = append(l.cumulative, l.total)
}

// AddAll appends branches in order.
func (l *BranchList) AddAll(bs []Branch) {
	for _, b := range bs {
		l.Add(b)
	}
}

// Len is the number of branches.
func (l *BranchList) Len() int { return len(l.branches) }

// Total is the sum of all weights.
func (l *BranchList) Total() float64 { return l.total }

// Branches returns a copy of the branch slice.
func (l *BranchList) Branches() []Branch {
	out := make([]Branch, len(l.branches))
	copy(out, l.branches)
	return out
}

// Cumulative returns a copy of the running sums; element i is the sum of
// weights 0..i.
func (l *BranchList) Cumulative() []float64 {
	out := make([]float64, len(l.cumulative))
	copy(out, l.cumulative)
	return out
}
