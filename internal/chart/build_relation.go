package chart

import (
	"sort"

	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Bubble sizes are rescaled into [bubbleMinSize, bubbleMinSize+bubbleSpan].
const (
	bubbleMinSize  = 10
	bubbleSpan     = 40
	bubbleFlatSize = 25
)

// encodings returns the optional per-point encoding columns present in o.
func encodings(o *Options) []string {
	var out []string
	seen := map[string]bool{o.X: true, o.Y: true}
	for _, name := range []string{o.ColorBy, o.SizeBy, o.ShapeBy, o.OpacityBy} {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func buildScatter(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	xc, _ := ds.Column(o.X)
	yc, _ := ds.Column(o.Y)
	enc := encodings(o)
	meta := map[string]any{
		"x_column":     o.X,
		"y_column":     o.Y,
		"color_column": nullable(o.ColorBy),
	}
	var data []domain.Record
	kept := 0
	for row := 0; row < ds.Rows(); row++ {
		if xc.Missing(row) || yc.Missing(row) {
			continue
		}
		kept++
		if o.Limit > 0 && len(data) >= o.Limit {
			continue
		}
		rec := domain.Record{"x": xc.Value(row), "y": yc.Value(row)}
		for _, name := range enc {
			c, _ := ds.Column(name)
			rec[name] = c.Value(row)
		}
		data = append(data, rec)
	}
	if omitted := kept - len(data); omitted > 0 {
		meta["truncated"] = true
		meta["omitted_points"] = omitted
	}
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

func buildBubble(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	xc, _ := ds.Column(o.X)
	yc, _ := ds.Column(o.Y)
	sc, _ := ds.Column(o.SizeBy)
	optional := map[string]string{"color": o.ColorBy, "shape": o.ShapeBy, "opacity": o.OpacityBy}

	var rows []int
	lo, hi := 0.0, 0.0
	for row := 0; row < ds.Rows(); row++ {
		s, ok := sc.Float(row)
		if !ok || xc.Missing(row) || yc.Missing(row) {
			continue
		}
		if len(rows) == 0 || s < lo {
			lo = s
		}
		if len(rows) == 0 || s > hi {
			hi = s
		}
		rows = append(rows, row)
	}
	if o.Limit > 0 && len(rows) > o.Limit {
		rows = rows[:o.Limit]
	}

	data := make([]domain.Record, len(rows))
	for i, row := range rows {
		x, _ := xc.Float(row)
		y, _ := yc.Float(row)
		s, _ := sc.Float(row)
		size := float64(bubbleFlatSize)
		if hi > lo {
			size = bubbleMinSize + bubbleSpan*(s-lo)/(hi-lo)
		}
		rec := domain.Record{"x": x, "y": y, "size": size, "original_size": s}
		for key, name := range optional {
			if name == "" {
				continue
			}
			c, _ := ds.Column(name)
			rec[key] = c.Value(row)
		}
		data[i] = rec
	}
	return &domain.ChartResult{Data: data, Metadata: map[string]any{
		"x_column":     o.X,
		"y_column":     o.Y,
		"size_column":  o.SizeBy,
		"color_column": nullable(o.ColorBy),
		"size_range":   map[string]any{"min": lo, "max": hi},
	}}, nil
}

// buildHeatmap emits a dense grid. Cells without rows are zero.
func buildHeatmap(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	groups, err := aggregate.By(ds, []string{o.X, o.Y}, o.Z, o.Agg, aggregate.Options{TimeUnit: o.TimeUnit})
	if err != nil {
		return nil, err
	}
	var xs, ys []aggregate.Key
	xi, yi := map[string]int{}, map[string]int{}
	cells := map[[2]string]float64{}
	for _, g := range groups {
		xk, yk := g.Keys[0], g.Keys[1]
		if _, ok := xi[xk.Label]; !ok {
			xi[xk.Label] = len(xs)
			xs = append(xs, xk)
		}
		if _, ok := yi[yk.Label]; !ok {
			yi[yk.Label] = len(ys)
			ys = append(ys, yk)
		}
		cells[[2]string{xk.Label, yk.Label}] = g.Value
	}
	orderKeys(xs, o, sequentialX(ds, o.X))
	orderKeys(ys, o, sequentialX(ds, o.Y))

	data := make([]domain.Record, 0, len(xs)*len(ys))
	lo, hi := 0.0, 0.0
	for y, yk := range ys {
		for x, xk := range xs {
			v := cells[[2]string{xk.Label, yk.Label}]
			if len(data) == 0 || v < lo {
				lo = v
			}
			if len(data) == 0 || v > hi {
				hi = v
			}
			data = append(data, domain.Record{
				"x": xk.Label, "y": yk.Label, "value": v, "x_index": x, "y_index": y,
			})
		}
	}
	valueColumn := o.Z
	if o.Agg == aggregate.Count {
		valueColumn = "count"
	}
	return &domain.ChartResult{Data: data, Metadata: map[string]any{
		"x_column":     o.X,
		"y_column":     o.Y,
		"value_column": valueColumn,
		"x_categories": labelsOf(xs),
		"y_categories": labelsOf(ys),
		"min_value":    lo,
		"max_value":    hi,
	}}, nil
}

// orderKeys sorts heatmap axes by key when requested or when the column is
// sequential; otherwise first-seen order stays.
func orderKeys(keys []aggregate.Key, o *Options, sequential bool) {
	if !sequential && o.Sort != aggregate.SortKey && o.Sort != aggregate.SortLabel {
		return
	}
	coll := aggregate.NewCollator()
	sort.SliceStable(keys, func(i, j int) bool {
		c := aggregate.CompareKeys(coll, keys[i], keys[j])
		if o.Desc {
			return c > 0
		}
		return c < 0
	})
}

// buildRadar reduces every axis column per group. An undefined reduction
// plots as zero.
func buildRadar(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	group := firstNonEmpty(o.GroupBy, o.X)
	var keys []string
	if group != "" {
		keys = []string{group}
	}

	var names []string
	values := map[string][]map[string]any{}
	for _, axis := range o.RadarAxes {
		groups, err := aggregate.Partition(ds, keys, axis, aggregate.Options{})
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			name := "Data"
			if len(g.Keys) > 0 {
				name = g.Label()
			}
			if _, ok := values[name]; !ok {
				names = append(names, name)
			}
			v, ok := 0.0, false
			if o.Agg == aggregate.Count {
				v, ok = float64(len(g.Values)), true
			} else {
				v, ok = o.Agg.Apply(g.Values)
			}
			if !ok {
				v = 0
			}
			values[name] = append(values[name], map[string]any{"axis": axis, "value": v})
		}
	}

	data := make([]domain.Record, len(names))
	for i, name := range names {
		data[i] = domain.Record{"group": name, "values": values[name]}
	}
	return &domain.ChartResult{Data: data, Metadata: map[string]any{
		"axes":         o.RadarAxes,
		"group_column": nullable(group),
		"total_series": len(data),
	}}, nil
}
