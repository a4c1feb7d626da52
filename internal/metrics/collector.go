package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lgpang/smash/pkg/utils"
)

// Point is one recorded observation. Time is the simulation time in fm of
// the action that produced it.
type Point struct {
	Time   float64           `json:"time"`
	Name   string            `json:"name"`
	Value  float64           `json:"value"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Aggregation summarizes the points of one metric/label combination.
type Aggregation struct {
	Count  int64   `json:"count"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// Summary is a snapshot of everything collected so far.
type Summary struct {
	StartTime    time.Time               `json:"start_time"`
	EndTime      time.Time               `json:"end_time"`
	Duration     time.Duration           `json:"duration"`
	Metrics      map[string][]float64    `json:"metrics"`
	Aggregations map[string]*Aggregation `json:"aggregations"`
}

// Collector collects per-action observations of a batch of collisions
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	// metric name -> label key -> points
	series map[string]map[string][]*Point

	// metric name -> label key -> cached aggregation
	aggregations map[string]map[string]*Aggregation
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		startTime:    time.Now(),
		series:       make(map[string]map[string][]*Point),
		aggregations: make(map[string]map[string]*Aggregation),
	}
}

// Start marks the start of collection
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of collection
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// Record stores a value observed at simulation time t
func (c *Collector) Record(name string, value, t float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	if c.series[name] == nil {
		c.series[name] = make(map[string][]*Point)
	}
	c.series[name][key] = append(c.series[name][key], &Point{
		Time:   t,
		Name:   name,
		Value:  value,
		Labels: copyLabels(labels),
	})
	// invalidate the cached aggregation
	if c.aggregations[name] != nil {
		delete(c.aggregations[name], key)
	}
}

// Count is the number of points of a metric/label combination
func (c *Collector) Count(name string, labels map[string]string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pointsUnsafe(name, labelKey(labels)))
}

// GetOrComputeAggregation gets the cached aggregation or computes it
func (c *Collector) GetOrComputeAggregation(name string, labels map[string]string) *Aggregation {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	if c.aggregations[name] == nil {
		c.aggregations[name] = make(map[string]*Aggregation)
	}
	if agg, ok := c.aggregations[name][key]; ok {
		return agg
	}

	points := c.pointsUnsafe(name, key)
	if len(points) == 0 {
		return nil
	}
	agg := calculateAggregation(points)
	c.aggregations[name][key] = agg
	return agg
}

// GetSummary returns a summary of all collected metrics. Aggregations are
// taken over all label combinations of a metric.
func (c *Collector) GetSummary() *Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := &Summary{
		StartTime:    c.startTime,
		EndTime:      c.endTime,
		Duration:     c.endTime.Sub(c.startTime),
		Metrics:      make(map[string][]float64),
		Aggregations: make(map[string]*Aggregation),
	}

	for name, byLabel := range c.series {
		var all []*Point
		values := make([]float64, 0)
		for _, points := range byLabel {
			all = append(all, points...)
			for _, p := range points {
				values = append(values, p.Value)
			}
		}
		summary.Metrics[name] = values
		if agg := calculateAggregation(all); agg != nil {
			summary.Aggregations[name] = agg
		}
	}
	return summary
}

// GetMetricNames returns all metric names that have been collected, sorted
func (c *Collector) GetMetricNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetLabelsForMetric returns all label combinations recorded for a metric
func (c *Collector) GetLabelsForMetric(name string) []map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.series[name] == nil {
		return nil
	}
	labelsList := make([]map[string]string, 0, len(c.series[name]))
	for _, points := range c.series[name] {
		if len(points) > 0 {
			labelsList = append(labelsList, copyLabels(points[0].Labels))
		}
	}
	return labelsList
}

// pointsUnsafe returns points without locking (caller must hold lock)
func (c *Collector) pointsUnsafe(name, key string) []*Point {
	if c.series[name] == nil {
		return nil
	}
	return c.series[name][key]
}

// labelKey creates a key from labels for map lookup
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

func calculateAggregation(points []*Point) *Aggregation {
	if len(points) == 0 {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	m := utils.ComputeMoments(values)
	sorted := utils.SortedCopy(values)

	return &Aggregation{
		Count:  int64(m.N),
		Sum:    m.Sum,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   m.Mean,
		StdDev: m.StdDev(),
		P50:    utils.Quantile(sorted, 0.50),
		P95:    utils.Quantile(sorted, 0.95),
		P99:    utils.Quantile(sorted, 0.99),
	}
}
