package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/internal/xsection"
	"github.com/lgpang/smash/pkg/utils"
)

func newRand(seed int64) *utils.RandSource {
	return utils.NewRandSource(seed)
}

func elasticOnly() scatter.Options {
	return scatter.Options{
		ElasticParameter: 10,
		Included:         xsection.ReactionSet(xsection.ReactionElastic),
	}
}

func TestNewEngine(t *testing.T) {
	engine := NewEngine("test-run", scatter.DefaultOptions())
	if engine == nil {
		t.Fatal("NewEngine returned nil")
	}
	if engine.Pending() != 0 {
		t.Error("New engine should have an empty queue")
	}
	if engine.GetRunManager() == nil {
		t.Error("Run manager should not be nil")
	}
	if engine.Collector() == nil {
		t.Error("Collector should not be nil")
	}
}

func TestEngineExecuteAllInTimeOrder(t *testing.T) {
	phys := newPhysics(t, 7)
	engine := NewEngine("order", elasticOnly())

	for _, tm := range []float64{3, 1, 2} {
		engine.Schedule(newAction(t, phys, 2.5, tm))
	}

	var times []float64
	engine.SetObserver(func(a *scatter.Action, err error) {
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		times = append(times, a.Time())
	})

	if err := engine.ExecuteAll(context.Background()); err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}
	if len(times) != 3 || times[0] != 1 || times[1] != 2 || times[2] != 3 {
		t.Fatalf("Expected execution order [1 2 3], got %v", times)
	}

	run := engine.GetRunManager().GetRun()
	if run.Status != RunStatusCompleted {
		t.Errorf("Expected completed run, got %s", run.Status)
	}
	if run.Performed != 3 || run.ByProcess["Elastic"] != 3 {
		t.Errorf("Expected 3 elastic actions, got %d (%v)", run.Performed, run.ByProcess)
	}
	if run.LastTime != 3 {
		t.Errorf("Expected last time 3, got %v", run.LastTime)
	}

	stats := engine.Stats()
	if stats.Total != 3 || stats.Channels[0].Channel != "p p" {
		t.Errorf("Unexpected statistics %+v", stats)
	}
	if stats.MeanRawWeight != 10 {
		t.Errorf("Expected mean raw weight 10, got %v", stats.MeanRawWeight)
	}
}

func TestEngineKeepsPreparedChannels(t *testing.T) {
	phys := newPhysics(t, 7)
	engine := NewEngine("prepared", scatter.DefaultOptions())

	a := newAction(t, phys, 2.5, 1)
	a.AddCollision(a.ElasticCrossSection(5))
	engine.Schedule(a)

	if err := engine.ExecuteAll(context.Background()); err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}
	if len(a.Branches()) != 1 {
		t.Errorf("Expected the prepared channel only, got %d", len(a.Branches()))
	}
	if a.ProcessType() != collision.Elastic {
		t.Errorf("Expected elastic, got %s", a.ProcessType())
	}
}

func TestEngineCountsFailures(t *testing.T) {
	phys := newPhysics(t, 7)
	// no channel family enabled: every action has zero total weight
	engine := NewEngine("failing", scatter.Options{})
	engine.Schedule(newAction(t, phys, 2.5, 1))
	engine.Schedule(newAction(t, phys, 2.5, 2))

	var errs []error
	engine.SetObserver(func(_ *scatter.Action, err error) {
		errs = append(errs, err)
	})

	if err := engine.ExecuteAll(context.Background()); err != nil {
		t.Fatalf("Failing actions should not stop the run: %v", err)
	}
	if len(errs) != 2 {
		t.Fatalf("Expected 2 observed actions, got %d", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, collision.ErrNoChannel) {
			t.Errorf("Expected ErrNoChannel, got %v", err)
		}
	}

	run := engine.GetRunManager().GetRun()
	if run.Failed != 2 || run.Performed != 0 {
		t.Errorf("Expected 2 failures, got %d failed / %d performed", run.Failed, run.Performed)
	}
	if engine.Stats().Failed != 2 {
		t.Errorf("Expected collector to count 2 failures")
	}
}

func TestEngineCancelledContext(t *testing.T) {
	phys := newPhysics(t, 7)
	engine := NewEngine("cancelled", elasticOnly())
	engine.Schedule(newAction(t, phys, 2.5, 1))
	engine.Schedule(newAction(t, phys, 2.5, 2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.ExecuteAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if engine.Pending() != 2 {
		t.Errorf("Cancelled run should leave actions queued")
	}
	if engine.GetRunManager().GetRun().Status != RunStatusCancelled {
		t.Errorf("Expected cancelled status")
	}
}

func TestEngineCancelBetweenActions(t *testing.T) {
	phys := newPhysics(t, 7)
	engine := NewEngine("partial", elasticOnly())
	for i := 0; i < 5; i++ {
		engine.Schedule(newAction(t, phys, 2.5, float64(i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	performed := 0
	engine.SetObserver(func(_ *scatter.Action, _ error) {
		performed++
		if performed == 2 {
			cancel()
		}
	})

	if err := engine.ExecuteAll(ctx); err == nil {
		t.Fatal("Expected cancellation error")
	}
	if performed != 2 {
		t.Errorf("Expected 2 performed actions, got %d", performed)
	}
	if engine.Pending() != 3 {
		t.Errorf("Expected 3 actions left, got %d", engine.Pending())
	}
}

func TestEngineStop(t *testing.T) {
	phys := newPhysics(t, 7)
	engine := NewEngine("stopped", elasticOnly())
	engine.Schedule(newAction(t, phys, 2.5, 1))

	engine.Stop()
	if engine.Pending() != 0 {
		t.Error("Stop should clear the queue")
	}
	if err := engine.ExecuteAll(context.Background()); err == nil {
		t.Error("ExecuteAll after Stop should report the stop")
	}
}

func TestEngineGetStats(t *testing.T) {
	phys := newPhysics(t, 7)
	engine := NewEngine("stats", elasticOnly())
	engine.Schedule(newAction(t, phys, 2.5, 1))
	engine.Schedule(newAction(t, phys, 2.5, 2))

	stats := engine.GetStats()
	if stats["actions_in_queue"] != 2 {
		t.Errorf("Expected 2 queued actions, got %v", stats["actions_in_queue"])
	}
	if stats["actions_scheduled"] != int64(2) {
		t.Errorf("Expected 2 scheduled actions, got %v", stats["actions_scheduled"])
	}
	if stats["status"] != RunStatusPending {
		t.Errorf("Expected pending status, got %v", stats["status"])
	}
}
