package report

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Percentile estimates the q-th percentile (0 < q <= 100) of sorted values
// by linear interpolation between the two nearest ranks. The input must be
// sorted ascending; an empty input returns NaN.
func Percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	position := float64(len(sorted)-1) * (q / 100)
	lower := int(position)
	upper := lower + 1
	if upper > len(sorted)-1 {
		upper = len(sorted) - 1
	}
	weight := position - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Summarize sorts a copy of the latency samples and computes the requested
// percentiles plus the maximum.
func Summarize(latenciesMs, percentiles []float64) LatencySummary {
	s := LatencySummary{
		Count:       len(latenciesMs),
		Percentiles: make(map[string]float64, len(percentiles)),
	}
	if len(latenciesMs) == 0 {
		return s
	}

	sorted := make([]float64, len(latenciesMs))
	copy(sorted, latenciesMs)
	sort.Float64s(sorted)

	for _, q := range percentiles {
		s.Percentiles[PercentileLabel(q)] = Percentile(sorted, q)
	}
	s.Max = sorted[len(sorted)-1]
	return s
}

// LatencySummary holds per-run latency statistics in milliseconds.
type LatencySummary struct {
	// Count is the number of samples summarized, which is less than the
	// attempt count when the sample cap truncated collection.
	Count int `json:"count"`

	// Percentiles maps labels like "p50" and "p99_9" to interpolated values.
	Percentiles map[string]float64 `json:"percentiles"`

	// Max is the largest observed latency.
	Max float64 `json:"max"`
}

// PercentileLabel renders a quantile as a stable report key: 50 -> "p50",
// 99.9 -> "p99_9".
func PercentileLabel(q float64) string {
	return "p" + strings.ReplaceAll(strconv.FormatFloat(q, 'f', -1, 64), ".", "_")
}

// mean returns the arithmetic mean of values, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev returns the sample standard deviation, 0 when fewer than two values
// exist.
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
