package chart

import (
	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
	"github.com/kmmelissat/analisis-al-instante-api/internal/sequential"
)

func buildCandlestick(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	cols := sequential.PriceColumns{Price: o.Y, Open: o.Open, High: o.High, Low: o.Low, Close: o.Close}
	priceColumns := map[string]any{"price": nil, "open": nil, "high": nil, "low": nil, "close": nil}
	if o.Y != "" {
		cols = sequential.PriceColumns{Price: o.Y}
		priceColumns["price"] = o.Y
	} else {
		priceColumns["open"], priceColumns["high"] = o.Open, o.High
		priceColumns["low"], priceColumns["close"] = o.Low, o.Close
	}
	candles, err := sequential.Candles(ds, o.X, cols, o.TimeUnit)
	if err != nil {
		return nil, err
	}
	data := make([]domain.Record, len(candles))
	for i, c := range candles {
		data[i] = domain.Record{"x": c.X, "open": c.Open, "high": c.High, "low": c.Low, "close": c.Close}
	}
	return &domain.ChartResult{Data: data, Metadata: map[string]any{
		"x_column":      o.X,
		"price_columns": priceColumns,
	}}, nil
}

func buildGantt(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	tasks, skipped, err := sequential.Tasks(ds, o.X, o.Start, o.End)
	if err != nil {
		return nil, err
	}
	data := make([]domain.Record, len(tasks))
	for i, t := range tasks {
		data[i] = domain.Record{"task": t.Name, "start": t.Start, "end": t.End, "duration": t.Duration}
	}
	unit := "units"
	if c, _ := ds.Column(o.Start); c.Role == dataset.RoleTemporal {
		unit = "seconds"
	}
	return &domain.ChartResult{Data: data, Metadata: map[string]any{
		"task_column":   o.X,
		"start_column":  o.Start,
		"end_column":    o.End,
		"duration_unit": unit,
		"skipped_rows":  skipped,
	}}, nil
}

// flows aggregates (source, target) pairs in first-seen order and returns the
// union of node labels in first-seen order.
func flows(ds *dataset.Dataset, o *Options) ([]aggregate.Group, []string, error) {
	groups, err := aggregate.By(ds, []string{o.X, o.Y}, o.Z, o.Agg, aggregate.Options{TimeUnit: o.TimeUnit})
	if err != nil {
		return nil, nil, err
	}
	var nodes []string
	seen := map[string]bool{}
	for _, g := range groups {
		for _, k := range g.Keys {
			if !seen[k.Label] {
				seen[k.Label] = true
				nodes = append(nodes, k.Label)
			}
		}
	}
	return groups, nodes, nil
}

func flowMeta(o *Options) map[string]any {
	value := o.Z
	if o.Agg == aggregate.Count {
		value = "count"
	}
	return map[string]any{"source_column": o.X, "target_column": o.Y, "value_column": value}
}

func buildSankey(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	groups, nodes, err := flows(ds, o)
	if err != nil {
		return nil, err
	}
	data := make([]domain.Record, len(groups))
	for i, g := range groups {
		data[i] = domain.Record{"source": g.Keys[0].Label, "target": g.Keys[1].Label, "value": g.Value}
	}
	meta := flowMeta(o)
	meta["nodes"] = nodes
	if nodes == nil {
		meta["nodes"] = []string{}
	}
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

// buildChord emits the dense square matrix over every node label.
func buildChord(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	groups, labels, err := flows(ds, o)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	matrix := make([][]float64, len(labels))
	for i := range matrix {
		matrix[i] = make([]float64, len(labels))
	}
	for _, g := range groups {
		matrix[index[g.Keys[0].Label]][index[g.Keys[1].Label]] += g.Value
	}
	data := make([]domain.Record, 0, len(labels)*len(labels))
	for i, src := range labels {
		for j, dst := range labels {
			data = append(data, domain.Record{"source": src, "target": dst, "value": matrix[i][j]})
		}
	}
	meta := flowMeta(o)
	if labels == nil {
		labels = []string{}
	}
	meta["labels"] = labels
	meta["matrix"] = matrix
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}
