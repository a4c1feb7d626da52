package scatter

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/particle"
)

// ErrBelowPairThreshold is returned when sqrt(s) cannot put both particles on their pole mass.
var ErrBelowPairThreshold = errors.New("sqrt(s) below the pole masses of the pair")

// pairSeparation is the distance along z between the particles of a head-on pair, fm.
const pairSeparation = 1.0

// HeadOnPair builds particles of types ta and tb at their pole masses,
// colliding along z in their CM frame with invariant mass sqrtS. Both
// sit at time t; a comes from negative z.
func HeadOnPair(ta, tb *particle.Type, sqrtS, t float64) (particle.Data, particle.Data, error) {
	if sqrtS <= ta.Mass+tb.Mass {
		return particle.Data{}, particle.Data{}, fmt.Errorf("%w: %s+%s at %.4f GeV", ErrBelowPairThreshold, ta.Name, tb.Name, sqrtS)
	}
	pa, pb := kinematics.TwoBody(sqrtS, ta.Mass, tb.Mass, r3.Vec{Z: 1})
	da, db := particle.NewData(ta), particle.NewData(tb)
	da.Momentum, db.Momentum = pa, pb
	da.Position = particle.FourPosition{T: t, R: r3.Vec{Z: -pairSeparation / 2}}
	db.Position = particle.FourPosition{T: t, R: r3.Vec{Z: pairSeparation / 2}}
	return da, db, nil
}
