package metrics

import (
	"sort"
	"strings"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/pkg/particle"
)

// Common metric names
const (
	MetricCollisionCount      = "collision_count"
	MetricCollisionErrorCount = "collision_error_count"
	MetricRawWeight           = "raw_weight_mb"
	MetricPartialWeight       = "partial_weight_mb"
	MetricMultiplicity        = "outgoing_multiplicity"
)

// Finalized is what the collector needs from a performed action.
type Finalized interface {
	Time() float64
	ProcessType() collision.ProcessType
	RawWeight() float64
	PartialWeight() float64
	OutgoingParticles() []particle.Data
}

// RecordAction records the outcome of one finalized action
func RecordAction(collector *Collector, a Finalized) {
	labels := CreateChannelLabels(a.ProcessType(), a.OutgoingParticles())
	t := a.Time()
	collector.Record(MetricCollisionCount, 1, t, labels)
	collector.Record(MetricRawWeight, a.RawWeight(), t, labels)
	collector.Record(MetricPartialWeight, a.PartialWeight(), t, labels)
	collector.Record(MetricMultiplicity, float64(len(a.OutgoingParticles())), t, labels)
}

// RecordError records an action whose final state could not be generated
func RecordError(collector *Collector, t float64, pair string) {
	collector.Record(MetricCollisionErrorCount, 1, t, CreatePairLabels(pair))
}

// CreateProcessLabels creates a labels map for a process type
func CreateProcessLabels(p collision.ProcessType) map[string]string {
	return map[string]string{
		"process": p.String(),
	}
}

// CreateChannelLabels labels an outcome by process and final-state names.
// String processes only carry the process, their final states vary event by event.
func CreateChannelLabels(p collision.ProcessType, out []particle.Data) map[string]string {
	labels := CreateProcessLabels(p)
	if p.IsString() {
		return labels
	}
	names := make([]string, 0, len(out))
	for _, d := range out {
		names = append(names, d.Type.Name)
	}
	labels["channel"] = strings.Join(names, " ")
	return labels
}

// CreatePairLabels creates a labels map for an incoming pair
func CreatePairLabels(pair string) map[string]string {
	return map[string]string{
		"pair": pair,
	}
}

// ChannelCount is how often one outcome occurred.
type ChannelCount struct {
	Process  string  `json:"process"`
	Channel  string  `json:"channel,omitempty"`
	Count    int64   `json:"count"`
	Fraction float64 `json:"fraction"`

	// MeanPartialWeight is the mean partial cross section of the outcome in mb.
	MeanPartialWeight float64 `json:"mean_partial_weight_mb"`
}

// CollisionStats is the batch summary of performed actions.
type CollisionStats struct {
	Total            int64            `json:"total"`
	Failed           int64            `json:"failed"`
	ByProcess        map[string]int64 `json:"by_process"`
	Channels         []ChannelCount   `json:"channels"`
	MeanRawWeight    float64          `json:"mean_raw_weight_mb"`
	MeanMultiplicity float64          `json:"mean_multiplicity"`

	// Distributions aggregates every non-count metric over all outcomes.
	Distributions map[string]*Aggregation `json:"distributions,omitempty"`
}

// ConvertToCollisionStats folds the collector contents into CollisionStats.
// Channels are sorted by decreasing count.
func ConvertToCollisionStats(collector *Collector) *CollisionStats {
	stats := &CollisionStats{
		ByProcess:     make(map[string]int64),
		Channels:      make([]ChannelCount, 0),
		Distributions: make(map[string]*Aggregation),
	}

	for _, labels := range collector.GetLabelsForMetric(MetricCollisionCount) {
		n := int64(collector.Count(MetricCollisionCount, labels))
		stats.Total += n
		stats.ByProcess[labels["process"]] += n
		cc := ChannelCount{
			Process: labels["process"],
			Channel: labels["channel"],
			Count:   n,
		}
		if agg := collector.GetOrComputeAggregation(MetricPartialWeight, labels); agg != nil {
			cc.MeanPartialWeight = agg.Mean
		}
		stats.Channels = append(stats.Channels, cc)
	}
	for _, labels := range collector.GetLabelsForMetric(MetricCollisionErrorCount) {
		stats.Failed += int64(collector.Count(MetricCollisionErrorCount, labels))
	}

	for i := range stats.Channels {
		if stats.Total > 0 {
			stats.Channels[i].Fraction = float64(stats.Channels[i].Count) / float64(stats.Total)
		}
	}
	sort.Slice(stats.Channels, func(i, j int) bool {
		if stats.Channels[i].Count != stats.Channels[j].Count {
			return stats.Channels[i].Count > stats.Channels[j].Count
		}
		if stats.Channels[i].Process != stats.Channels[j].Process {
			return stats.Channels[i].Process < stats.Channels[j].Process
		}
		return stats.Channels[i].Channel < stats.Channels[j].Channel
	})

	summary := collector.GetSummary()
	if agg := summary.Aggregations[MetricRawWeight]; agg != nil {
		stats.MeanRawWeight = agg.Mean
	}
	if agg := summary.Aggregations[MetricMultiplicity]; agg != nil {
		stats.MeanMultiplicity = agg.Mean
	}
	for _, name := range collector.GetMetricNames() {
		if name == MetricCollisionCount || name == MetricCollisionErrorCount {
			continue
		}
		if agg := summary.Aggregations[name]; agg != nil {
			stats.Distributions[name] = agg
		}
	}
	return stats
}
