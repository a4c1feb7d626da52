package particle

import (
	"fmt"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/utils"
)

// FourPosition is a space-time point in fm.
type FourPosition struct {
	T float64
	R r3.Vec
}

// Data is one particle instance.
type Data struct {
	ID            string
	Type          *Type
	Momentum      fmom.PxPyPzE
	Position      FourPosition
	FormationTime float64
	// XSecScaling is the fraction of the full cross section the particle
	// interacts with while it is still forming.
	XSecScaling float64
}

// NewData creates a fully formed particle of type t at rest, without momentum.
func NewData(t *Type) Data {
	return Data{
		ID:          utils.NewParticleID(),
		Type:        t,
		XSecScaling: 1,
	}
}

// EffectiveMass is the invariant mass of the momentum, or the pole mass when
// no momentum has been set.
func (d *Data) EffectiveMass() float64 {
	if d.Momentum.E() == 0 {
		return d.Type.Mass
	}
	return kinematics.Mass(d.Momentum)
}

// IsBaryon reports whether the particle carries baryon number.
func (d *Data) IsBaryon() bool {
	return d.Type.IsBaryon()
}

// Velocity is the three-velocity of the particle.
func (d *Data) Velocity() r3.Vec {
	return kinematics.Velocity(d.Momentum)
}

// Boosted returns a copy with momentum and position boosted by beta.
func (d Data) Boosted(beta r3.Vec) Data {
	d.Momentum = kinematics.Boost(d.Momentum, beta)
	x := kinematics.Boost(kinematics.New(d.Position.T, d.Position.R), beta)
	d.Position = FourPosition{T: x.E(), R: kinematics.ThreeMomentum(x)}
	return d
}

func (d Data) String() string {
	return fmt.Sprintf("%s(%s) p=(%.4g, %.4g, %.4g, %.4g)",
		d.Type.Name, d.Type.PDG, d.Momentum.E(), d.Momentum.Px(), d.Momentum.Py(), d.Momentum.Pz())
}
