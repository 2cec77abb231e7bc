package distribution

import (
	"github.com/aclements/go-moremath/stats"
)

// DefaultBins is used when the caller does not request a bin count.
const DefaultBins = 20

// Bin is one histogram bucket. Every bin is [Start, End) except the last,
// which is closed on both sides.
type Bin struct {
	Start float64
	End   float64
	Count int
	// Value is Count, the density, or the running total depending on the
	// histogram options.
	Value float64
}

// HistogramOptions select the reported value of each bin.
type HistogramOptions struct {
	Bins       int
	Normalize  bool
	Cumulative bool
}

// Histogram is the result of binning a sample.
type Histogram struct {
	Bins  []Bin
	Min   float64
	Max   float64
	Total int
}

// NewHistogram bins xs into equal-width bins over the observed range. A
// sample with zero range lands in a single bin.
func NewHistogram(xs []float64, opts HistogramOptions) Histogram {
	nbins := opts.Bins
	if nbins <= 0 {
		nbins = DefaultBins
	}
	h := Histogram{Total: len(xs)}
	if len(xs) == 0 {
		return h
	}
	lo, hi := stats.Bounds(xs)
	h.Min, h.Max = lo, hi

	var counts []uint
	if hi == lo {
		counts = []uint{uint(len(xs))}
		h.Bins = []Bin{{Start: lo, End: hi}}
	} else {
		lh := stats.NewLinearHist(lo, hi, nbins)
		for _, x := range xs {
			lh.Add(x)
		}
		_, inner, high := lh.Counts()
		counts = append([]uint(nil), inner...)
		// The maximum sits on the upper edge; the last bin is closed.
		counts[len(counts)-1] += high
		width := (hi - lo) / float64(nbins)
		h.Bins = make([]Bin, nbins)
		for i := range h.Bins {
			h.Bins[i].Start = lo + float64(i)*width
			h.Bins[i].End = lo + float64(i+1)*width
		}
		h.Bins[nbins-1].End = hi
	}

	n := float64(len(xs))
	running := 0
	for i := range h.Bins {
		c := int(counts[i])
		h.Bins[i].Count = c
		running += c
		switch {
		case opts.Cumulative && opts.Normalize:
			h.Bins[i].Value = float64(running) / n
		case opts.Cumulative:
			h.Bins[i].Value = float64(running)
		case opts.Normalize:
			width := h.Bins[i].End - h.Bins[i].Start
			if width == 0 {
				width = 1
			}
			h.Bins[i].Value = float64(c) / (n * width)
		default:
			h.Bins[i].Value = float64(c)
		}
	}
	return h
}
