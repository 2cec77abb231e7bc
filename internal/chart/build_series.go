package chart

import (
	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
	"github.com/kmmelissat/analisis-al-instante-api/internal/sequential"
	"github.com/kmmelissat/analisis-al-instante-api/internal/series"
)

// buildLine serves line and area. A split column turns a line into grouped
// series and an area into stacked series.
func buildLine(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	if o.Type == domain.ChartLine {
		if by := firstNonEmpty(o.GroupBy, o.ColorBy); by != "" {
			return pivotChart(ds, o, by, series.Grouped)
		}
	} else if by := firstNonEmpty(o.StackBy, o.ColorBy); by != "" {
		return pivotChart(ds, o, by, series.Stacked)
	}

	fallback := aggregate.SortNone
	if sequentialX(ds, o.X) {
		fallback = aggregate.SortKey
	}
	groups, err := groupAndOrder(ds, o, []string{o.X}, o.Y, fallback)
	if err != nil {
		return nil, err
	}
	yKey := valueKey(o)
	meta := map[string]any{
		"x_column":       o.X,
		"y_column":       yKey,
		"cumulative":     o.Cumulative,
		"rolling_window": nil,
		"chart_subtype":  "simple",
	}
	groups = trim(groups, o, false, meta)

	ys := make([]float64, len(groups))
	for i, g := range groups {
		ys[i] = g.Value
	}
	if o.RollingWindow > 0 {
		ys = sequential.Rolling(ys, o.RollingWindow)
		meta["rolling_window"] = o.RollingWindow
	}
	if o.Cumulative {
		ys = sequential.Cumulative(ys)
	}
	data := make([]domain.Record, len(groups))
	for i, g := range groups {
		data[i] = domain.Record{o.X: g.KeyValue(), yKey: ys[i]}
	}
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

func buildStacked(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	return pivotChart(ds, o, o.StackBy, series.Stacked)
}

func buildGrouped(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	return pivotChart(ds, o, o.GroupBy, series.Grouped)
}

func pivotChart(ds *dataset.Dataset, o *Options, by string, mode series.Mode) (*domain.ChartResult, error) {
	order := o.Sort
	if order == aggregate.SortNone && sequentialX(ds, o.X) {
		order = aggregate.SortKey
	}
	res, err := series.Pivot(ds, o.X, o.Y, by, series.Options{
		Mode:      mode,
		Func:      o.Agg,
		TimeUnit:  o.TimeUnit,
		Order:     order,
		Desc:      o.Desc,
		Normalize: o.Normalize,
	})
	if err != nil {
		return nil, err
	}

	meta := map[string]any{
		"x_column":     o.X,
		"y_column":     valueKey(o),
		"group_column": by,
	}
	keep := map[string]bool{}
	if o.Limit > 0 && len(res.Categories) > o.Limit {
		meta["truncated"] = true
		meta["omitted_groups"] = len(res.Categories) - o.Limit
		res.Categories = res.Categories[:o.Limit]
		res.Totals = res.Totals[:o.Limit]
	}
	for _, k := range res.Categories {
		keep[k.Label] = true
	}

	names := make([]string, len(res.Series))
	data := make([]domain.Record, len(res.Series))
	for i, s := range res.Series {
		names[i] = s.Name
		points := make([]map[string]any, 0, len(s.Points))
		for _, p := range s.Points {
			if !keep[p.Label] {
				continue
			}
			pt := map[string]any{"x": p.X, "y": p.Y}
			if mode == series.Stacked {
				pt["start"] = p.Start
				pt["end"] = p.End
			}
			points = append(points, pt)
		}
		data[i] = domain.Record{"series": s.Name, "points": points}
	}
	meta["x_categories"] = labelsOf(res.Categories)
	meta["series"] = names
	if mode == series.Stacked {
		meta["totals"] = res.Totals
		meta["normalize"] = o.Normalize
		meta["chart_subtype"] = "stacked"
	} else {
		meta["chart_subtype"] = "grouped"
	}
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
