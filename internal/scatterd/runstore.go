package scatterd

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lgpang/smash/internal/engine"
	"github.com/lgpang/smash/internal/metrics"
)

// DefaultRunHistory is the number of batch records kept by NewRunStore.
const DefaultRunHistory = 256

// RunRecord is a finished batch: its request, run state and statistics.
type RunRecord struct {
	Request BatchRequest            `json:"request"`
	Run     *engine.Run             `json:"run"`
	Stats   *metrics.CollisionStats `json:"stats,omitempty"`
}

// RunStore keeps the most recent batch records; older records are evicted.
type RunStore struct {
	mu   sync.Mutex
	runs *lru.Cache[string, *RunRecord]
}

func NewRunStore(size int) (*RunStore, error) {
	if size <= 0 {
		size = DefaultRunHistory
	}
	cache, err := lru.New[string, *RunRecord](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create run store: %w", err)
	}
	return &RunStore{runs: cache}, nil
}

// Put stores rec under its run ID.
func (s *RunStore) Put(rec *RunRecord) error {
	if rec == nil || rec.Run == nil || rec.Run.ID == "" {
		return fmt.Errorf("run record without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runs.Contains(rec.Run.ID) {
		return fmt.Errorf("run already exists: %s", rec.Run.ID)
	}
	s.runs.Add(rec.Run.ID, rec)
	return nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs.Peek(runID)
}

// List returns up to limit records, newest first. A non-positive limit
// defaults to 50.
func (s *RunStore) List(limit int) []*RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	keys := s.runs.Keys()
	out := make([]*RunRecord, 0, min(limit, len(keys)))
	for i := len(keys) - 1; i >= 0 && len(out) < limit; i-- {
		if rec, ok := s.runs.Peek(keys[i]); ok {
			out = append(out, rec)
		}
	}
	return out
}

func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs.Len()
}
