package distribution

// BoxStats is the five-number summary plus Tukey fences.
type BoxStats struct {
	Count       int
	Min         float64
	Q1          float64
	Median      float64
	Q3          float64
	Max         float64
	IQR         float64
	LowerFence  float64
	UpperFence  float64
	WhiskerLow  float64
	WhiskerHigh float64
	Outliers    []float64
}

// Box computes box-plot statistics. Points strictly outside
// [Q1-1.5*IQR, Q3+1.5*IQR] are outliers; whiskers stop at the most extreme
// points inside the fences. ok is false for an empty sample.
func Box(xs []float64) (BoxStats, bool) {
	if len(xs) == 0 {
		return BoxStats{}, false
	}
	s := Sorted(xs)
	b := BoxStats{
		Count:  len(s),
		Min:    s[0],
		Max:    s[len(s)-1],
		Q1:     Quantile(s, 0.25),
		Median: Quantile(s, 0.5),
		Q3:     Quantile(s, 0.75),
	}
	b.IQR = b.Q3 - b.Q1
	b.LowerFence = b.Q1 - 1.5*b.IQR
	b.UpperFence = b.Q3 + 1.5*b.IQR
	b.WhiskerLow, b.WhiskerHigh = b.Max, b.Min
	b.Outliers = []float64{}
	for _, x := range s {
		if x < b.LowerFence || x > b.UpperFence {
			b.Outliers = append(b.Outliers, x)
			continue
		}
		if x < b.WhiskerLow {
			b.WhiskerLow = x
		}
		if x > b.WhiskerHigh {
			b.WhiskerHigh = x
		}
	}
	return b, true
}
