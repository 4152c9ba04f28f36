// Package profiling computes the descriptive summaries shown in table cells.
package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Summary holds the descriptive statistics of one set of valid observations.
// Fields that cannot be computed (for example SD with one observation) are NaN.
type Summary struct {
	N      int
	Mean   float64
	SD     float64
	Median float64
	Q1     float64
	Q3     float64
	Min    float64
	Max    float64
}

func emptySummary() Summary {
	nan := math.NaN()
	return Summary{Mean: nan, SD: nan, Median: nan, Q1: nan, Q3: nan, Min: nan, Max: nan}
}

// Summarize computes the summary of data, skipping NaN entries
func Summarize(data []float64) Summary {
	valid := Valid(data)
	sum := emptySummary()
	sum.N = len(valid)
	if sum.N == 0 {
		return sum
	}

	sample := stats.Float64Data(valid)
	if mean, err := sample.Mean(); err == nil {
		sum.Mean = mean
	}
	if median, err := sample.Median(); err == nil {
		sum.Median = median
	}
	if min, err := sample.Min(); err == nil {
		sum.Min = min
	}
	if max, err := sample.Max(); err == nil {
		sum.Max = max
	}
	if sum.N > 1 {
		if sd, err := stats.StandardDeviationSample(sample); err == nil {
			sum.SD = sd
		}
	}

	sorted := append([]float64(nil), valid...)
	sort.Float64s(sorted)
	sum.Q1 = quantileSorted(sorted, 0.25)
	sum.Q3 = quantileSorted(sorted, 0.75)
	return sum
}

// Quantile returns the type-7 (linear interpolation between order
// statistics) quantile of the non-NaN values in data
func Quantile(data []float64, p float64) float64 {
	sorted := Valid(data)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || p < 0 || p > 1 || math.IsNaN(p) {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Valid returns a copy of data without NaN entries
func Valid(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
