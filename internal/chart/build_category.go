package chart

import (
	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
	"github.com/kmmelissat/analisis-al-instante-api/internal/sequential"
)

func buildBar(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	keys := []string{o.X}
	if o.ColorBy != "" && o.ColorBy != o.X {
		keys = append(keys, o.ColorBy)
	}
	groups, err := groupAndOrder(ds, o, keys, o.Y, aggregate.SortNone)
	if err != nil {
		return nil, err
	}
	meta := map[string]any{
		"x_column":     o.X,
		"y_column":     valueKey(o),
		"color_column": nullable(o.ColorBy),
	}
	groups = trim(groups, o, false, meta)

	total := sumValues(groups)
	yKey := valueKey(o)
	data := make([]domain.Record, len(groups))
	for i, g := range groups {
		rec := domain.Record{o.X: g.KeyValue(), yKey: g.Value}
		if len(g.Keys) > 1 {
			rec[o.ColorBy] = g.Keys[1].Value
		}
		if o.Percentage {
			rec["percentage"] = percent(g.Value, total)
		}
		data[i] = rec
	}
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

// buildPie serves pie and donut. Excluded slices fold into "Other". With
// percentage set, value holds the slice's share and raw_value the aggregate.
func buildPie(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	groups, err := groupAndOrder(ds, o, []string{o.X}, o.Y, aggregate.SortNone)
	if err != nil {
		return nil, err
	}
	meta := map[string]any{
		"column":        o.X,
		"value_column":  nullable(o.Y),
		"chart_subtype": string(o.Type),
		"percentage":    true,
	}
	groups = trim(groups, o, true, meta)
	total := sumValues(groups)
	data := make([]domain.Record, len(groups))
	for i, g := range groups {
		share := percent(g.Value, total)
		rec := domain.Record{"label": g.Label(), "value": g.Value, "percentage": share}
		if o.Percentage {
			rec["value"] = share
			rec["raw_value"] = g.Value
		}
		data[i] = rec
	}
	meta["total_value"] = total
	meta["total_categories"] = len(data)
	if o.Type == domain.ChartDonut {
		meta["inner_radius"] = o.InnerRadius
	}
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

// buildWaterfall keeps first-seen step order regardless of sort parameters.
func buildWaterfall(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	groups, err := aggregate.By(ds, []string{o.X}, o.Y, o.Agg, aggregate.Options{TimeUnit: o.TimeUnit})
	if err != nil {
		return nil, err
	}
	steps := sequential.Waterfall(groups, o.Baseline)
	data := make([]domain.Record, len(steps))
	change := 0.0
	for i, s := range steps {
		data[i] = domain.Record{
			"step":             s.Key,
			"value":            s.Value,
			"cumulative_start": s.Start,
			"cumulative_end":   s.End,
			"direction":        s.Direction,
		}
		change += s.Value
	}
	return &domain.ChartResult{Data: data, Metadata: map[string]any{
		"x_column":     o.X,
		"y_column":     o.Y,
		"baseline":     o.Baseline,
		"total_change": change,
		"final_total":  o.Baseline + change,
	}}, nil
}

func buildFunnel(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	groups, err := groupAndOrder(ds, o, []string{o.X}, o.Y, aggregate.SortNone)
	if err != nil {
		return nil, err
	}
	meta := map[string]any{"stage_column": o.X, "value_column": o.Y}
	groups = trim(groups, o, false, meta)
	stages := sequential.Funnel(groups)
	data := make([]domain.Record, len(stages))
	for i, s := range stages {
		data[i] = domain.Record{
			"stage":           s.Key,
			"value":           s.Value,
			"conversion_rate": s.ConversionRate,
			"step_rate":       s.StepRate,
			"percentage":      s.Share,
		}
	}
	meta["total_value"] = sumValues(groups)
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

func sumValues(groups []aggregate.Group) float64 {
	total := 0.0
	for _, g := range groups {
		total += g.Value
	}
	return total
}

func percent(v, total float64) float64 {
	if total == 0 {
		return 0
	}
	return v / total * 100
}
