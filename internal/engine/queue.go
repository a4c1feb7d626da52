package engine

import (
	"container/heap"
	"sync"

	"github.com/lgpang/smash/internal/scatter"
)

// queued is an action with its insertion order, used to break time ties.
type queued struct {
	action *scatter.Action
	seq    int64
}

// ActionQueue is a priority queue of actions ordered by execution time
type ActionQueue struct {
	items []queued
	next  int64
	mu    sync.RWMutex
}

// NewActionQueue creates a new action queue
func NewActionQueue() *ActionQueue {
	aq := &ActionQueue{
		items: make([]queued, 0),
	}
	heap.Init(aq)
	return aq
}

// Len returns the number of queued actions
func (aq *ActionQueue) Len() int {
	return len(aq.items)
}

// Less orders by time, then by insertion order
func (aq *ActionQueue) Less(i, j int) bool {
	ti, tj := aq.items[i].action.Time(), aq.items[j].action.Time()
	if ti != tj {
		return ti < tj
	}
	return aq.items[i].seq < aq.items[j].seq
}

// Swap swaps two queued actions
func (aq *ActionQueue) Swap(i, j int) {
	aq.items[i], aq.items[j] = aq.items[j], aq.items[i]
}

// Push adds an item to the heap; use Schedule instead
func (aq *ActionQueue) Push(x interface{}) {
	aq.items = append(aq.items, x.(queued))
}

// Pop removes the last heap item; use Next instead
func (aq *ActionQueue) Pop() interface{} {
	old := aq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = queued{} // avoid memory leak
	aq.items = old[0 : n-1]
	return item
}

// Schedule adds an action to the queue (thread-safe)
func (aq *ActionQueue) Schedule(a *scatter.Action) {
	aq.mu.Lock()
	defer aq.mu.Unlock()
	heap.Push(aq, queued{action: a, seq: aq.next})
	aq.next++
}

// Next removes and returns the earliest action, nil when empty (thread-safe)
func (aq *ActionQueue) Next() *scatter.Action {
	aq.mu.Lock()
	defer aq.mu.Unlock()
	if aq.Len() == 0 {
		return nil
	}
	return heap.Pop(aq).(queued).action
}

// Peek returns the earliest action without removing it (thread-safe)
func (aq *ActionQueue) Peek() *scatter.Action {
	aq.mu.RLock()
	defer aq.mu.RUnlock()
	if aq.Len() == 0 {
		return nil
	}
	return aq.items[0].action
}

// Clear removes all actions from the queue (thread-safe)
func (aq *ActionQueue) Clear() {
	aq.mu.Lock()
	defer aq.mu.Unlock()
	aq.items = make([]queued, 0)
	heap.Init(aq)
}

// Size returns the current queue size (thread-safe)
func (aq *ActionQueue) Size() int {
	aq.mu.RLock()
	defer aq.mu.RUnlock()
	return aq.Len()
}

// IsEmpty returns true if the queue is empty (thread-safe)
func (aq *ActionQueue) IsEmpty() bool {
	return aq.Size() == 0
}
