package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RunStatus is the lifecycle state of a batch run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// Run is the state of one batch of actions
type Run struct {
	ID        string            `json:"id"`
	Status    RunStatus         `json:"status"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
	Duration  time.Duration     `json:"duration"`
	Performed int64             `json:"performed"`
	Failed    int64             `json:"failed"`
	ByProcess map[string]int64  `json:"by_process"`
	LastTime  float64           `json:"last_time"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RunManager manages the lifecycle of a batch run
type RunManager struct {
	run    *Run
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRunManager creates a new run manager
func NewRunManager(runID string) *RunManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &RunManager{
		run: &Run{
			ID:        runID,
			Status:    RunStatusPending,
			StartTime: time.Now(),
			ByProcess: make(map[string]int64),
			Metadata:  make(map[string]string),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start marks the run as started
func (rm *RunManager) Start() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.run.Status = RunStatusRunning
	rm.run.StartTime = time.Now()
}

// Complete marks the run as completed
func (rm *RunManager) Complete() {
	rm.finish(RunStatusCompleted, nil)
}

// Cancelled marks the run as stopped before the queue drained
func (rm *RunManager) Cancelled(err error) {
	rm.finish(RunStatusCancelled, err)
}

// Fail marks the run as failed
func (rm *RunManager) Fail(err error) {
	rm.finish(RunStatusFailed, err)
}

func (rm *RunManager) finish(status RunStatus, err error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.run.Status = status
	rm.run.EndTime = time.Now()
	rm.run.Duration = rm.run.EndTime.Sub(rm.run.StartTime)
	if err != nil {
		rm.run.Error = err.Error()
	}
}

// Cancel cancels the run
func (rm *RunManager) Cancel() {
	rm.cancel()
}

// Context returns the run's context
func (rm *RunManager) Context() context.Context {
	return rm.ctx
}

// RecordPerformed counts a finalized action of the given process at time t
func (rm *RunManager) RecordPerformed(process string, t float64) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.run.Performed++
	rm.run.ByProcess[process]++
	rm.run.LastTime = t
}

// RecordFailure counts an action whose final state could not be generated
func (rm *RunManager) RecordFailure(t float64) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.run.Failed++
	rm.run.LastTime = t
}

// GetRun returns a copy of the current run state (thread-safe)
func (rm *RunManager) GetRun() *Run {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	runCopy := *rm.run
	runCopy.ByProcess = make(map[string]int64, len(rm.run.ByProcess))
	for k, v := range rm.run.ByProcess {
		runCopy.ByProcess[k] = v
	}
	runCopy.Metadata = make(map[string]string, len(rm.run.Metadata))
	for k, v := range rm.run.Metadata {
		runCopy.Metadata[k] = v
	}
	return &runCopy
}

// SetMetadata sets a metadata value
func (rm *RunManager) SetMetadata(key, value string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.run.Metadata[key] = value
}

// GetStats returns current run statistics
func (rm *RunManager) GetStats() map[string]interface{} {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	elapsed := time.Since(rm.run.StartTime)
	if !rm.run.EndTime.IsZero() {
		elapsed = rm.run.Duration
	}
	rate := 0.0
	if elapsed > 0 {
		rate = float64(rm.run.Performed) / elapsed.Seconds()
	}

	return map[string]interface{}{
		"status":          rm.run.Status,
		"elapsed":         elapsed.String(),
		"performed":       rm.run.Performed,
		"failed":          rm.run.Failed,
		"last_time_fm":    rm.run.LastTime,
		"actions_per_sec": fmt.Sprintf("%.2f", rate),
	}
}
