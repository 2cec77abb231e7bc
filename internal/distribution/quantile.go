// Package distribution computes histograms, box statistics and kernel
// density estimates over plain float samples.
package distribution

import (
	"math"
	"sort"
)

// Quantile returns the q-quantile of an ascending sample using linear
// interpolation between closest ranks (h = (n-1)q). It returns NaN for an
// empty sample.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Sorted returns an ascending copy of xs.
func Sorted(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// Median is Quantile(0.5) over an unsorted sample.
func Median(xs []float64) float64 {
	return Quantile(Sorted(xs), 0.5)
}
