package engine

import (
	"testing"

	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/pkg/particle"
)

func TestNewActionQueue(t *testing.T) {
	aq := NewActionQueue()
	if aq == nil {
		t.Fatal("NewActionQueue returned nil")
	}
	if !aq.IsEmpty() {
		t.Error("New action queue should be empty")
	}
	if aq.Next() != nil || aq.Peek() != nil {
		t.Error("Empty queue should return nil")
	}
}

func TestActionQueueOrdersByTime(t *testing.T) {
	phys := newPhysics(t, 1)
	aq := NewActionQueue()

	late := newAction(t, phys, 2.0, 3.0)
	early := newAction(t, phys, 2.0, 0.5)
	middle := newAction(t, phys, 2.0, 1.0)
	aq.Schedule(late)
	aq.Schedule(early)
	aq.Schedule(middle)

	if aq.Size() != 3 {
		t.Fatalf("Expected queue size 3, got %d", aq.Size())
	}
	if aq.Peek() != early {
		t.Error("Peek should return the earliest action")
	}
	if aq.Size() != 3 {
		t.Error("Peek should not remove the action")
	}
	for i, want := range []*scatter.Action{early, middle, late} {
		if got := aq.Next(); got != want {
			t.Errorf("Position %d: expected action at t=%v, got t=%v", i, want.Time(), got.Time())
		}
	}
	if !aq.IsEmpty() {
		t.Error("Queue should be empty after draining")
	}
}

func TestActionQueueTiesKeepInsertionOrder(t *testing.T) {
	phys := newPhysics(t, 1)
	aq := NewActionQueue()

	actions := make([]*scatter.Action, 5)
	for i := range actions {
		actions[i] = newAction(t, phys, 2.0, 1.0)
		aq.Schedule(actions[i])
	}
	for i := range actions {
		if got := aq.Next(); got != actions[i] {
			t.Fatalf("Tie %d returned out of insertion order", i)
		}
	}
}

func TestActionQueueClear(t *testing.T) {
	phys := newPhysics(t, 1)
	aq := NewActionQueue()
	aq.Schedule(newAction(t, phys, 2.0, 1.0))
	aq.Schedule(newAction(t, phys, 2.0, 2.0))

	aq.Clear()
	if !aq.IsEmpty() {
		t.Error("Queue should be empty after Clear")
	}
}

// newPhysics and newAction are shared by the package tests.
func newPhysics(t *testing.T, seed int64) *scatter.Physics {
	t.Helper()
	catalog, err := particle.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	phys, err := scatter.NewPhysics(catalog, newRand(seed))
	if err != nil {
		t.Fatalf("NewPhysics: %v", err)
	}
	return phys
}

func newAction(t *testing.T, phys *scatter.Physics, sqrtS, time float64) *scatter.Action {
	t.Helper()
	proton, err := phys.Species.Find(particle.Proton)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	a, b, err := scatter.HeadOnPair(proton, proton, sqrtS, time)
	if err != nil {
		t.Fatalf("HeadOnPair: %v", err)
	}
	return scatter.NewAction(a, b, time, phys)
}
