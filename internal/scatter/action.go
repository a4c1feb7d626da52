package scatter

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/logger"
	"github.com/lgpang/smash/pkg/particle"
	"github.com/lgpang/smash/pkg/utils"
)

// Action is one candidate two-body scattering. It owns copies of the
// incoming particles; channels are added first, then GenerateFinalState
// selects one and produces the outgoing particles.
type Action struct {
	id       string
	incoming [2]particle.Data
	time     float64
	phys     *Physics
	log      *slog.Logger

	branches collision.BranchList
	// stringCumulative are the running sums of the string sub-cross
	// sections: 0, AX, +XB, +DD, +soft ND, +hard ND.
	stringCumulative [6]float64

	process   collision.ProcessType
	partial   float64
	outgoing  []particle.Data
	finalized bool
}

// NewAction creates the action of particles a and b meeting at time.
func NewAction(a, b particle.Data, time float64, phys *Physics) *Action {
	return &Action{
		id:       utils.NewActionID(),
		incoming: [2]particle.Data{a, b},
		time:     time,
		phys:     phys,
		log:      logger.Area("ScatterAction"),
	}
}

// ID is the unique action identifier.
func (a *Action) ID() string { return a.id }

// Time is the execution time of the action, fm.
func (a *Action) Time() float64 { return a.time }

// Incoming returns copies of the incoming particles.
func (a *Action) Incoming() [2]particle.Data { return a.incoming }

// AddCollision appends one channel.
func (a *Action) AddCollision(b collision.Branch) {
	a.branches.Add(b)
}

// AddCollisions appends channels in order.
func (a *Action) AddCollisions(bs []collision.Branch) {
	a.branches.AddAll(bs)
}

// RawWeight is the total cross section of all channels, mb.
func (a *Action) RawWeight() float64 { return a.branches.Total() }

// PartialWeight is the cross section of the selected channel, mb.
func (a *Action) PartialWeight() float64 { return a.partial }

// ProcessType is the kind of the selected channel, None before selection.
func (a *Action) ProcessType() collision.ProcessType { return a.process }

// OutgoingParticles returns the produced particles in the computational frame.
func (a *Action) OutgoingParticles() []particle.Data {
	out := make([]particle.Data, len(a.outgoing))
	copy(out, a.outgoing)
	return out
}

// Branches returns the registered channels.
func (a *Action) Branches() []collision.Branch { return a.branches.Branches() }

// StringCumulative returns the running sums of the string sub-cross sections.
func (a *Action) StringCumulative() [6]float64 { return a.stringCumulative }

// TotalMomentum is the summed incoming four-momentum.
func (a *Action) TotalMomentum() fmom.PxPyPzE {
	return kinematics.Sum(a.incoming[0].Momentum, a.incoming[1].Momentum)
}

// MandelstamS is the squared invariant mass of the pair.
func (a *Action) MandelstamS() float64 {
	p := a.TotalMomentum()
	return p.E()*p.E() - r3.Norm2(kinematics.ThreeMomentum(p))
}

// SqrtS is the invariant mass of the pair, GeV.
func (a *Action) SqrtS() float64 {
	return math.Sqrt(math.Max(0, a.MandelstamS()))
}

// BetaCM is the velocity of the CM frame.
func (a *Action) BetaCM() r3.Vec {
	return kinematics.Velocity(a.TotalMomentum())
}

// GammaCM is the Lorentz factor of the CM frame.
func (a *Action) GammaCM() float64 {
	return kinematics.Gamma(a.BetaCM())
}

// CMMomentum is the incoming momentum in the CM frame.
func (a *Action) CMMomentum() float64 {
	return kinematics.PCM(a.SqrtS(), a.incoming[0].EffectiveMass(), a.incoming[1].EffectiveMass())
}

// CMMomentumSqr is the squared incoming momentum in the CM frame.
func (a *Action) CMMomentumSqr() float64 {
	return kinematics.PCMSqr(a.SqrtS(), a.incoming[0].EffectiveMass(), a.incoming[1].EffectiveMass())
}

// InteractionPoint is the mean incoming position at the execution time.
func (a *Action) InteractionPoint() particle.FourPosition {
	r := r3.Scale(0.5, r3.Add(a.incoming[0].Position.R, a.incoming[1].Position.R))
	return particle.FourPosition{T: a.time, R: r}
}

// TransverseDistanceSqr is the squared distance of closest approach of the
// pair in the CM frame, dr^2 - (dr.dp)^2/dp^2. Without relative momentum it
// is the squared distance.
func (a *Action) TransverseDistanceSqr() float64 {
	toCM := r3.Scale(-1, a.BetaCM())
	pa := a.incoming[0].Boosted(toCM)
	pb := a.incoming[1].Boosted(toCM)
	dr := r3.Sub(pa.Position.R, pb.Position.R)
	dp := r3.Sub(kinematics.ThreeMomentum(pa.Momentum), kinematics.ThreeMomentum(pb.Momentum))
	a.log.Debug("transverse distance",
		"action", a.id, "position_difference", dr, "momentum_difference", dp)

	dp2 := r3.Norm2(dp)
	dr2 := r3.Norm2(dr)
	if dp2 < kinematics.ReallySmall {
		return dr2
	}
	dpdr := r3.Dot(dr, dp)
	return dr2 - dpdr*dpdr/dp2
}

// pair formats the incoming PDG codes for error messages.
func (a *Action) pair() string {
	return fmt.Sprintf("PDG codes %s, %s", a.incoming[0].Type.PDG, a.incoming[1].Type.PDG)
}

func (a *Action) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scatter of [%s, %s]", a.incoming[0], a.incoming[1])
	if !a.finalized {
		sb.WriteString(" (not performed)")
		return sb.String()
	}
	parts := make([]string, len(a.outgoing))
	for i, d := range a.outgoing {
		parts[i] = d.String()
	}
	fmt.Fprintf(&sb, " to [%s] via %s", strings.Join(parts, ", "), a.process)
	return sb.String()
}
