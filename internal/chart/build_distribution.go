package chart

import (
	"fmt"

	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/distribution"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// sample is the non-missing values of one group.
type sample struct {
	name   string
	values []float64
}

// samples partitions the value column by group in first-seen order. Without a
// group column the whole column forms one sample named after it. Groups with
// no values are skipped.
func samples(ds *dataset.Dataset, o *Options, group, value string) ([]sample, error) {
	if group == "" {
		c, ok := ds.Column(value)
		if !ok {
			return nil, domain.ErrUnknownColumn("value", value)
		}
		xs := c.Floats()
		if len(xs) == 0 {
			return nil, nil
		}
		return []sample{{name: value, values: xs}}, nil
	}
	groups, err := aggregate.Partition(ds, []string{group}, value, aggregate.Options{})
	if err != nil {
		return nil, err
	}
	if o.Sort == aggregate.SortLabel || o.Sort == aggregate.SortKey {
		aggregate.Sort(groups, o.Sort, o.Desc)
	}
	var out []sample
	for _, g := range groups {
		if len(g.Values) > 0 {
			out = append(out, sample{name: g.Label(), values: g.Values})
		}
	}
	return out, nil
}

func pooled(ss []sample) []float64 {
	var xs []float64
	for _, s := range ss {
		xs = append(xs, s.values...)
	}
	return xs
}

func bandwidth(o *Options, xs []float64) float64 {
	if o.Bandwidth > 0 {
		return o.Bandwidth
	}
	return distribution.ScottBandwidth(xs)
}

func buildHistogram(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	c, _ := ds.Column(o.X)
	xs := c.Floats()
	h := distribution.NewHistogram(xs, distribution.HistogramOptions{
		Bins:       o.Bins,
		Normalize:  o.Normalize,
		Cumulative: o.Cumulative,
	})
	data := make([]domain.Record, len(h.Bins))
	for i, b := range h.Bins {
		data[i] = domain.Record{
			"bin":       fmt.Sprintf("%.2f-%.2f", b.Start, b.End),
			"bin_start": b.Start,
			"bin_end":   b.End,
			"count":     b.Count,
			"value":     b.Value,
		}
	}
	return &domain.ChartResult{Data: data, Metadata: map[string]any{
		"column":       o.X,
		"bins":         len(h.Bins),
		"min_value":    h.Min,
		"max_value":    h.Max,
		"total_values": h.Total,
		"normalize":    o.Normalize,
		"cumulative":   o.Cumulative,
	}}, nil
}

func boxRecord(name string, b distribution.BoxStats, showOutliers bool) domain.Record {
	rec := domain.Record{
		"group":         name,
		"count":         b.Count,
		"min":           b.Min,
		"q1":            b.Q1,
		"median":        b.Median,
		"q3":            b.Q3,
		"max":           b.Max,
		"iqr":           b.IQR,
		"lower_fence":   b.LowerFence,
		"upper_fence":   b.UpperFence,
		"whisker_low":   b.WhiskerLow,
		"whisker_high":  b.WhiskerHigh,
		"outlier_count": len(b.Outliers),
	}
	if showOutliers {
		rec["outliers"] = b.Outliers
	}
	return rec
}

func boxMeta(o *Options, group string) map[string]any {
	return map[string]any{
		"y_column":        o.Y,
		"group_column":    nullable(group),
		"quartiles":       []float64{0.25, 0.5, 0.75},
		"quartile_method": "linear",
	}
}

func buildBox(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	group := firstNonEmpty(o.X, o.ColorBy)
	ss, err := samples(ds, o, group, o.Y)
	if err != nil {
		return nil, err
	}
	data := make([]domain.Record, 0, len(ss))
	for _, s := range ss {
		b, _ := distribution.Box(s.values)
		data = append(data, boxRecord(s.name, b, o.ShowOutliers))
	}
	meta := boxMeta(o, group)
	meta["total_groups"] = len(data)
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

func buildViolin(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	group := firstNonEmpty(o.X, o.ColorBy)
	ss, err := samples(ds, o, group, o.Y)
	if err != nil {
		return nil, err
	}
	bw := bandwidth(o, pooled(ss))
	data := make([]domain.Record, 0, len(ss))
	for _, s := range ss {
		b, _ := distribution.Box(s.values)
		rec := boxRecord(s.name, b, o.ShowOutliers)
		grid := distribution.GridFor(s.values, bw, distribution.ViolinGridPoints)
		rec["bandwidth"] = bw
		rec["density_x"] = grid
		rec["density_y"] = distribution.KDE(s.values, bw, grid)
		data = append(data, rec)
	}
	meta := boxMeta(o, group)
	meta["bandwidth"] = bw
	meta["total_groups"] = len(data)
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

// buildDensity serves density and ridgeline. Every curve is evaluated on one
// shared grid so curves stay comparable; ridgeline adds a vertical offset per
// curve equal to the tallest peak.
func buildDensity(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	group := firstNonEmpty(o.ColorBy, o.GroupBy)
	ss, err := samples(ds, o, group, o.X)
	if err != nil {
		return nil, err
	}
	all := pooled(ss)
	bw := bandwidth(o, all)
	meta := map[string]any{
		"x_column":     o.X,
		"group_column": nullable(group),
		"bandwidth":    bw,
		"grid_points":  distribution.DensityGridPoints,
		"total_curves": len(ss),
	}
	if len(all) == 0 {
		return &domain.ChartResult{Data: []domain.Record{}, Metadata: meta}, nil
	}
	grid := distribution.GridFor(all, bw, distribution.DensityGridPoints)

	curves := make([][]float64, len(ss))
	spacing := 0.0
	for i, s := range ss {
		curves[i] = distribution.KDE(s.values, bw, grid)
		for _, y := range curves[i] {
			spacing = max(spacing, y)
		}
	}
	if spacing == 0 {
		spacing = 1
	}

	data := make([]domain.Record, len(ss))
	for i, s := range ss {
		rec := domain.Record{
			"group":   s.name,
			"index":   i,
			"x":       grid,
			"density": curves[i],
		}
		if o.Type == domain.ChartRidgeline {
			rec["offset"] = float64(i) * spacing
		}
		data[i] = rec
	}
	if o.Type == domain.ChartRidgeline {
		meta["chart_subtype"] = "ridgeline"
		meta["ridge_spacing"] = spacing
	}
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}
