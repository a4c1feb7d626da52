package collision

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoChannel is returned when selection is attempted on an empty list or a
// list with no positive weight. It signals a defect upstream in channel
// construction.
var ErrNoChannel = errors.New("no reaction channel to choose from")

// Random is the uniform [0,1) source used for selection.
type Random interface {
	Float64() float64
}

// Choose draws one uniform number and returns the selected branch.
func Choose(l *BranchList, rng Random) (Branch, error) {
	if err := checkSelectable(l); err != nil {
		return Branch{}, err
	}
	return ChooseWithDraw(l, l.total*rng.Float64())
}

// ChooseWithDraw returns the first branch whose cumulative upper bound
// exceeds r, for r in [0, Total()). Negative draws count as zero and draws at
// or above the total select the last branch with positive weight.
func ChooseWithDraw(l *BranchList, r float64) (Branch, error) {
	if err := checkSelectable(l); err != nil {
		return Branch{}, err
	}
	if r < 0 {
		r = 0
	}
	i := sort.Search(len(l.cumulative), func(i int) bool { return l.cumulative[i] > r })
	if i == len(l.cumulative) {
		i = lastPositive(l)
	}
	return l.branches[i], nil
}

func checkSelectable(l *BranchList) error {
	if l == nil || len(l.branches) == 0 {
		return fmt.Errorf("%w: empty branch list", ErrNoChannel)
	}
	if !(l.total > 0) {
		return fmt.Errorf("%w: total weight %g", ErrNoChannel, l.total)
	}
	return nil
}

func lastPositive(l *BranchList) int {
	for i := len(l.branches) - 1; i >= 0; i-- {
		if l.branches[i].weight > 0 {
			return i
		}
	}
	return len(l.branches) - 1
}
