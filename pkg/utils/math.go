package utils

import (
	"math"
	"sort"
)

// Moments are the sum, mean and population variance of a sample.
type Moments struct {
	N        int
	Sum      float64
	Mean     float64
	Variance float64
}

// StdDev is the population standard deviation.
func (m Moments) StdDev() float64 {
	return math.Sqrt(m.Variance)
}

// ComputeMoments accumulates values in one pass (Welford). An empty sample
// has zero moments.
func ComputeMoments(values []float64) Moments {
	var m Moments
	var m2 float64
	for _, v := range values {
		m.N++
		m.Sum += v
		delta := v - m.Mean
		m.Mean += delta / float64(m.N)
		m2 += delta * (v - m.Mean)
	}
	if m.N > 0 {
		m.Variance = m2 / float64(m.N)
	}
	return m
}

// SortedCopy returns values in ascending order without reordering the input.
func SortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// Quantile returns the q-quantile, q in [0, 1], of ascending values with
// linear interpolation between neighbours.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	q = math.Min(1, math.Max(0, q))
	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	w := index - float64(lower)
	return sorted[lower]*(1-w) + sorted[upper]*w
}
