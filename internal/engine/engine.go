// Package engine executes batches of scattering actions in time order.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/lgpang/smash/internal/metrics"
	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/pkg/logger"
)

// Observer is called after every executed action with the outcome of
// its final-state generation.
type Observer func(a *scatter.Action, err error)

// Engine drains an ActionQueue, performing each action in turn
type Engine struct {
	queue      *ActionQueue
	runManager *RunManager
	collector  *metrics.Collector
	options    scatter.Options
	observer   Observer
	logger     *slog.Logger
	scheduled  int64
}

// NewEngine creates a new engine. Channels of scheduled actions that have
// none yet are filled in with opts at execution time.
func NewEngine(runID string, opts scatter.Options) *Engine {
	return &Engine{
		queue:      NewActionQueue(),
		runManager: NewRunManager(runID),
		collector:  metrics.NewCollector(),
		options:    opts,
		logger:     logger.Area("Engine"),
	}
}

// SetObserver registers a callback for executed actions
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// Schedule queues an action
func (e *Engine) Schedule(a *scatter.Action) {
	atomic.AddInt64(&e.scheduled, 1)
	e.queue.Schedule(a)

	e.logger.Debug("Action scheduled",
		"action_id", a.ID(),
		"time", a.Time(),
		"queue_size", e.queue.Size())
}

// ExecuteAll performs queued actions in order of increasing time until the
// queue is empty. Cancellation is checked between actions; a cancelled
// run leaves the remaining actions queued. Failing actions are counted and
// logged, they do not stop the run.
func (e *Engine) ExecuteAll(ctx context.Context) error {
	e.logger.Info("Starting run",
		"run_id", e.runManager.run.ID,
		"queued", e.queue.Size())

	e.runManager.Start()
	e.collector.Start()
	defer e.collector.Stop()

	for {
		select {
		case <-ctx.Done():
			e.runManager.Cancelled(ctx.Err())
			e.logger.Info("Run cancelled", "remaining", e.queue.Size())
			return fmt.Errorf("run cancelled: %w", ctx.Err())
		case <-e.runManager.Context().Done():
			e.runManager.Cancelled(e.runManager.Context().Err())
			e.logger.Info("Run stopped", "remaining", e.queue.Size())
			return fmt.Errorf("run stopped: %w", e.runManager.Context().Err())
		default:
		}

		if e.queue.IsEmpty() {
			break
		}
		a := e.queue.Next()
		err := e.perform(a)
		if e.observer != nil {
			e.observer(a, err)
		}
	}

	e.runManager.Complete()
	run := e.runManager.GetRun()
	e.logger.Info("Run completed",
		"run_id", run.ID,
		"duration", run.Duration,
		"performed", run.Performed,
		"failed", run.Failed)
	return nil
}

// perform adds channels when the action has none, then generates its final state.
func (e *Engine) perform(a *scatter.Action) error {
	err := e.generate(a)
	if err != nil {
		e.runManager.RecordFailure(a.Time())
		metrics.RecordError(e.collector, a.Time(), pairName(a))
		e.logger.Error("Action failed",
			"action_id", a.ID(),
			"time", a.Time(),
			"error", err)
		return err
	}

	e.runManager.RecordPerformed(a.ProcessType().String(), a.Time())
	metrics.RecordAction(e.collector, a)
	e.logger.Debug("Action performed",
		"action_id", a.ID(),
		"process", a.ProcessType(),
		"outgoing", len(a.OutgoingParticles()))
	return nil
}

func (e *Engine) generate(a *scatter.Action) error {
	if len(a.Branches()) == 0 {
		if err := a.AddAllProcesses(e.options); err != nil {
			return err
		}
	}
	return a.GenerateFinalState()
}

func pairName(a *scatter.Action) string {
	in := a.Incoming()
	return in[0].Type.Name + "+" + in[1].Type.Name
}

// GetRunManager returns the run manager
func (e *Engine) GetRunManager() *RunManager {
	return e.runManager
}

// Pending is the number of actions still queued
func (e *Engine) Pending() int {
	return e.queue.Size()
}

// Collector returns the statistics collector of the run
func (e *Engine) Collector() *metrics.Collector {
	return e.collector
}

// Stats folds the collected outcomes into per-channel statistics
func (e *Engine) Stats() *metrics.CollisionStats {
	return metrics.ConvertToCollisionStats(e.collector)
}

// Stop cancels the run and drops queued actions
func (e *Engine) Stop() {
	e.runManager.Cancel()
	e.queue.Clear()
	e.logger.Info("Run stopped")
}

// GetStats returns current run statistics
func (e *Engine) GetStats() map[string]interface{} {
	stats := e.runManager.GetStats()
	stats["actions_in_queue"] = e.Pending()
	stats["actions_scheduled"] = atomic.LoadInt64(&e.scheduled)
	return stats
}
