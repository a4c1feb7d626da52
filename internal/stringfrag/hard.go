package stringfrag

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/lgpang/smash/pkg/logger"
	"github.com/lgpang/smash/pkg/particle"
	"github.com/lgpang/smash/pkg/utils"
)

// ClusterGenerator is the reference hard-event generator. Beam remnants keep
// their species and fly close to the beam rapidities; pions and kaon pairs
// are produced in between, with a multiplicity growing logarithmically
// with the collision energy.
type ClusterGenerator struct {
	species Species
	log     *slog.Logger

	rng    *utils.RandSource
	beams  [2]particle.PdgCode
	masses [2]float64
	sqrtS  float64
	event  []Hadron
}

// NewClusterGenerator creates a generator resolving masses from species.
func NewClusterGenerator(species Species) *ClusterGenerator {
	return &ClusterGenerator{species: species, log: logger.Area("HardString")}
}

// Init prepares events for beams a (along +z) and b at energy sqrtS.
func (g *ClusterGenerator) Init(a, b particle.PdgCode, sqrtS float64, seed int64) error {
	ma, err := massOf(g.species, a)
	if err != nil {
		return fmt.Errorf("hard string beam A: %w", err)
	}
	mb, err := massOf(g.species, b)
	if err != nil {
		return fmt.Errorf("hard string beam B: %w", err)
	}
	mpi, err := massOf(g.species, particle.PiZero)
	if err != nil {
		return err
	}
	if sqrtS <= ma+mb+mpi {
		return fmt.Errorf("%w: %s+%s at %.4g GeV", ErrBelowThreshold, a, b, sqrtS)
	}
	g.rng = utils.NewRandSource(seed)
	g.beams = [2]particle.PdgCode{a, b}
	g.masses = [2]float64{ma, mb}
	g.sqrtS = sqrtS
	g.event = nil
	g.log.Debug("hard string initialized", "beam_a", a, "beam_b", b, "sqrt_s", sqrtS, "seed", seed)
	return nil
}

// meanProduced is the mean number of produced hadrons at sqrtS.
func (g *ClusterGenerator) meanProduced() float64 {
	s0 := (g.masses[0] + g.masses[1]) * (g.masses[0] + g.masses[1])
	return math.Max(0.5, 1.5*math.Log(g.sqrtS*g.sqrtS/s0))
}

// Next generates one event. It reports false when the drawn configuration
// does not fit the available energy; callers retry.
func (g *ClusterGenerator) Next() bool {
	if g.rng == nil {
		return false
	}
	n := 1 + poisson(g.rng, g.meanProduced()-1)
	codes := append([]particle.PdgCode{g.beams[0], g.beams[1]}, producedCodes(g.rng, n)...)

	yBeam := beamRapidity(g.sqrtS, g.masses[0], g.masses[1])
	masses := make([]float64, len(codes))
	rapidities := make([]float64, len(codes))
	for i, code := range codes {
		m, err := massOf(g.species, code)
		if err != nil {
			g.log.Error("unknown hadron in hard string", "pdg", code, "error", err)
			return false
		}
		masses[i] = m
		switch i {
		case 0:
			rapidities[i] = yBeam * (0.5 + 0.5*g.rng.Float64())
		case 1:
			rapidities[i] = -yBeam * (0.5 + 0.5*g.rng.Float64())
		default:
			rapidities[i] = yBeam * 0.8 * (2*g.rng.Float64() - 1)
		}
	}
	momenta, ok := distribute(g.rng, g.sqrtS, masses, rapidities)
	if !ok {
		g.event = nil
		return false
	}
	g.event = make([]Hadron, len(codes))
	for i, code := range codes {
		g.event[i] = Hadron{PDG: code, Momentum: momenta[i]}
	}
	return true
}

// Event returns the final hadrons of the last successful Next.
func (g *ClusterGenerator) Event() []Hadron {
	out := make([]Hadron, len(g.event))
	copy(out, g.event)
	return out
}
