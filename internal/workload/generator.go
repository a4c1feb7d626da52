// Package workload schedules batches of collisions into an engine.
package workload

import (
	"fmt"

	"github.com/lgpang/smash/internal/engine"
	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/pkg/config"
	"github.com/lgpang/smash/pkg/particle"
	"github.com/lgpang/smash/pkg/utils"
)

// Arrival types of collision times within a batch window
const (
	ArrivalFixed    = "fixed"
	ArrivalConstant = "constant"
	ArrivalUniform  = "uniform"
	ArrivalPoisson  = "poisson"
)

// Generator generates collision times for a batch
type Generator struct {
	rng *utils.RandSource
}

// NewGenerator creates a new generator
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: utils.NewRandSource(seed),
	}
}

// Times returns batch.Events collision times in [batch.Time, batch.Time+batch.Window]
// following batch.Arrival. An empty arrival type means fixed.
func (g *Generator) Times(batch config.Batch) ([]float64, error) {
	if batch.Events <= 0 {
		return nil, fmt.Errorf("events must be positive, got %d", batch.Events)
	}
	if batch.Window < 0 {
		return nil, fmt.Errorf("window cannot be negative, got %f", batch.Window)
	}

	times := make([]float64, batch.Events)
	start, window, n := batch.Time, batch.Window, batch.Events
	switch batch.Arrival {
	case "", ArrivalFixed:
		for i := range times {
			times[i] = start
		}
	case ArrivalConstant:
		step := window / float64(n)
		for i := range times {
			times[i] = start + float64(i)*step
		}
	case ArrivalUniform:
		for i := range times {
			times[i] = g.rng.UniformFloat64(start, start+window)
		}
	case ArrivalPoisson:
		// exponential gaps with mean window/n, cut at the window end
		t := start
		for i := range times {
			if window > 0 {
				t += g.rng.ExpFloat64(float64(n) / window)
				if t > start+window {
					t = start + window
				}
			}
			times[i] = t
		}
	default:
		return nil, fmt.Errorf("unknown arrival type %q (must be fixed, constant, uniform, or poisson)", batch.Arrival)
	}
	return times, nil
}

// ScheduleCollisions schedules one head-on ta+tb action per collision time
// and returns the number of scheduled actions.
func (g *Generator) ScheduleCollisions(eng *engine.Engine, phys *scatter.Physics, ta, tb *particle.Type, batch config.Batch) (int, error) {
	times, err := g.Times(batch)
	if err != nil {
		return 0, err
	}
	for _, t := range times {
		a, b, err := scatter.HeadOnPair(ta, tb, batch.SqrtS, t)
		if err != nil {
			return 0, err
		}
		eng.Schedule(scatter.NewAction(a, b, t, phys))
	}
	return len(times), nil
}
