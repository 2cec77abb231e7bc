package distribution

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
)

// Grid sizes for the density family.
const (
	DensityGridPoints = 100
	ViolinGridPoints  = 50
	// gridWiden extends the evaluation grid this many bandwidths past the data.
	gridWiden = 3
)

// ScottBandwidth estimates a Gaussian kernel bandwidth with Scott's rule,
// falling back to 1 when the sample has no spread.
func ScottBandwidth(xs []float64) float64 {
	if len(xs) < 2 {
		return 1
	}
	bw := stats.BandwidthScott(stats.Sample{Xs: xs})
	if bw <= 0 || math.IsNaN(bw) || math.IsInf(bw, 0) {
		return 1
	}
	return bw
}

// Grid returns n evenly spaced points covering [lo-3bw, hi+3bw].
func Grid(lo, hi, bw float64, n int) []float64 {
	return vec.Linspace(lo-gridWiden*bw, hi+gridWiden*bw, n)
}

// GridFor builds the evaluation grid for a sample.
func GridFor(xs []float64, bw float64, n int) []float64 {
	lo, hi := stats.Bounds(xs)
	return Grid(lo, hi, bw, n)
}

// KDE evaluates a Gaussian kernel density estimate of xs at every grid point.
func KDE(xs []float64, bw float64, grid []float64) []float64 {
	if len(xs) == 0 {
		return make([]float64, len(grid))
	}
	kde := &stats.KDE{
		Sample:    stats.Sample{Xs: xs},
		Kernel:    stats.GaussianKernel,
		Bandwidth: bw,
	}
	return vec.Map(func(x float64) float64 {
		y := kde.PDF(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return 0
		}
		return y
	}, grid)
}
