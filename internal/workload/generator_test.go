package workload

import (
	"context"
	"sort"
	"testing"

	"github.com/lgpang/smash/internal/engine"
	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/internal/xsection"
	"github.com/lgpang/smash/pkg/config"
	"github.com/lgpang/smash/pkg/particle"
	"github.com/lgpang/smash/pkg/utils"
)

func TestNewGenerator(t *testing.T) {
	g := NewGenerator(12345)
	if g == nil {
		t.Fatalf("expected non-nil generator")
	}
}

func TestGeneratorFixedTimes(t *testing.T) {
	g := NewGenerator(12345)
	times, err := g.Times(config.Batch{Events: 4, Time: 2.5, Window: 10})
	if err != nil {
		t.Fatalf("Times error: %v", err)
	}
	for _, tm := range times {
		if tm != 2.5 {
			t.Fatalf("expected all times at 2.5, got %v", times)
		}
	}
}

func TestGeneratorConstantTimes(t *testing.T) {
	g := NewGenerator(12345)
	times, err := g.Times(config.Batch{Events: 4, Time: 1, Window: 2, Arrival: ArrivalConstant})
	if err != nil {
		t.Fatalf("Times error: %v", err)
	}
	want := []float64{1, 1.5, 2, 2.5}
	for i := range want {
		if times[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, times)
		}
	}
}

func TestGeneratorRandomTimesStayInWindow(t *testing.T) {
	for _, arrival := range []string{ArrivalUniform, ArrivalPoisson} {
		g := NewGenerator(12345)
		times, err := g.Times(config.Batch{Events: 500, Time: 1, Window: 4, Arrival: arrival})
		if err != nil {
			t.Fatalf("%s: Times error: %v", arrival, err)
		}
		if len(times) != 500 {
			t.Fatalf("%s: expected 500 times, got %d", arrival, len(times))
		}
		for _, tm := range times {
			if tm < 1 || tm > 5 {
				t.Fatalf("%s: time %v outside [1, 5]", arrival, tm)
			}
		}
	}
}

func TestGeneratorPoissonTimesIncrease(t *testing.T) {
	g := NewGenerator(12345)
	times, err := g.Times(config.Batch{Events: 100, Window: 100, Arrival: ArrivalPoisson})
	if err != nil {
		t.Fatalf("Times error: %v", err)
	}
	if !sort.Float64sAreSorted(times) {
		t.Fatalf("expected non-decreasing poisson times")
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	batch := config.Batch{Events: 20, Window: 3, Arrival: ArrivalUniform}
	a, _ := NewGenerator(7).Times(batch)
	b, _ := NewGenerator(7).Times(batch)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical sequences for the same seed")
		}
	}
}

func TestGeneratorErrors(t *testing.T) {
	g := NewGenerator(12345)
	if _, err := g.Times(config.Batch{Events: 0}); err == nil {
		t.Fatalf("expected error for zero events")
	}
	if _, err := g.Times(config.Batch{Events: 1, Window: -1}); err == nil {
		t.Fatalf("expected error for negative window")
	}
	if _, err := g.Times(config.Batch{Events: 1, Arrival: "bursty"}); err == nil {
		t.Fatalf("expected error for unknown arrival type")
	}
}

func TestScheduleCollisions(t *testing.T) {
	catalog, err := particle.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	phys, err := scatter.NewPhysics(catalog, utils.NewRandSource(3))
	if err != nil {
		t.Fatalf("NewPhysics: %v", err)
	}
	proton, _ := catalog.Find(particle.Proton)

	eng := engine.NewEngine("test-run", scatter.Options{
		ElasticParameter: 20,
		Included:         xsection.ReactionSet(xsection.ReactionElastic),
	})
	var times []float64
	eng.SetObserver(func(a *scatter.Action, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		times = append(times, a.Time())
	})

	g := NewGenerator(12345)
	n, err := g.ScheduleCollisions(eng, phys, proton, proton, config.Batch{SqrtS: 2.2, Events: 30, Window: 5, Arrival: ArrivalUniform})
	if err != nil {
		t.Fatalf("ScheduleCollisions error: %v", err)
	}
	if n != 30 || eng.Pending() != 30 {
		t.Fatalf("expected 30 scheduled actions, got %d", eng.Pending())
	}

	if err := eng.ExecuteAll(context.Background()); err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}
	if !sort.Float64sAreSorted(times) {
		t.Fatalf("expected actions executed in time order")
	}

	if _, err := g.ScheduleCollisions(eng, phys, proton, proton, config.Batch{SqrtS: 1.0, Events: 1}); err == nil {
		t.Fatalf("expected error below pair threshold")
	}
}
