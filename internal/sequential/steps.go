// Package sequential implements order-dependent transforms: waterfall,
// funnel, running totals, rolling means, candlesticks and task timelines.
package sequential

import "github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"

// Step is one bar of a waterfall.
type Step struct {
	Label     string
	Key       any
	Value     float64
	Start     float64
	End       float64
	Direction string
}

// Waterfall chains groups in their given order. The first step starts at
// baseline and each later step starts where the previous one ended.
func Waterfall(groups []aggregate.Group, baseline float64) []Step {
	steps := make([]Step, len(groups))
	running := baseline
	for i, g := range groups {
		dir := "increase"
		if g.Value < 0 {
			dir = "decrease"
		}
		steps[i] = Step{
			Label:     g.Label(),
			Key:       g.KeyValue(),
			Value:     g.Value,
			Start:     running,
			End:       running + g.Value,
			Direction: dir,
		}
		running += g.Value
	}
	return steps
}

// Stage is one level of a funnel.
type Stage struct {
	Label string
	Key   any
	Value float64
	// ConversionRate is Value relative to the first stage, as a percentage.
	ConversionRate float64
	// StepRate is Value relative to the previous stage, as a percentage.
	StepRate float64
	// Share is Value relative to the sum of all stages, as a percentage.
	Share float64
}

// Funnel keeps the given stage order. Rates against a zero denominator are zero.
func Funnel(groups []aggregate.Group) []Stage {
	total := 0.0
	for _, g := range groups {
		total += g.Value
	}
	stages := make([]Stage, len(groups))
	for i, g := range groups {
		s := Stage{Label: g.Label(), Key: g.KeyValue(), Value: g.Value}
		if total != 0 {
			s.Share = g.Value / total * 100
		}
		if first := groups[0].Value; first != 0 {
			s.ConversionRate = g.Value / first * 100
		}
		if i == 0 {
			if g.Value != 0 {
				s.StepRate = 100
			}
		} else if prev := groups[i-1].Value; prev != 0 {
			s.StepRate = g.Value / prev * 100
		}
		stages[i] = s
	}
	return stages
}

// Cumulative returns the running totals of ys.
func Cumulative(ys []float64) []float64 {
	out := make([]float64, len(ys))
	sum := 0.0
	for i, y := range ys {
		sum += y
		out[i] = sum
	}
	return out
}

// Rolling returns the trailing mean over a window of w points. Leading
// positions average the points available so far.
func Rolling(ys []float64, w int) []float64 {
	if w <= 1 {
		return append([]float64(nil), ys...)
	}
	out := make([]float64, len(ys))
	sum := 0.0
	for i, y := range ys {
		sum += y
		if i >= w {
			sum -= ys[i-w]
		}
		n := i + 1
		if n > w {
			n = w
		}
		out[i] = sum / float64(n)
	}
	return out
}
