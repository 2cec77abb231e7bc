package chart

import (
	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
	"github.com/kmmelissat/analisis-al-instante-api/internal/hierarchy"
)

// treeLevels returns x_axis, color_by and any extra levels, without repeats.
func treeLevels(o *Options) []string {
	var out []string
	seen := map[string]bool{}
	for _, name := range append([]string{o.X, o.ColorBy}, o.Levels...) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// buildTree serves treemap and sunburst. Top-level nodes past the limit fold
// into "Other".
func buildTree(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error) {
	levels := treeLevels(o)
	opts := hierarchy.Options{}
	switch o.Sort {
	case aggregate.SortLabel, aggregate.SortKey:
		opts = hierarchy.Options{Order: aggregate.SortLabel, Asc: !o.Desc}
	case aggregate.SortValue:
		opts = hierarchy.Options{Order: aggregate.SortValue, Asc: !o.Desc}
	}
	nodes, err := hierarchy.Build(ds, levels, o.Y, o.Agg, opts)
	if err != nil {
		return nil, err
	}

	orientation := "rectangular"
	if o.Type == domain.ChartSunburst {
		orientation = "radial"
	}
	meta := map[string]any{
		"category_column": o.X,
		"value_column":    o.Y,
		"levels":          levels,
		"hierarchical":    len(levels) > 1,
		"orientation":     orientation,
	}
	if o.Limit > 0 && len(nodes) > o.Limit {
		other := &hierarchy.Node{Name: aggregate.OtherLabel}
		for _, n := range nodes[o.Limit:] {
			other.Value += n.Value
			other.Percentage += n.Percentage
		}
		meta["truncated"] = true
		meta["omitted_groups"] = len(nodes) - o.Limit
		nodes = append(nodes[:o.Limit:o.Limit], other)
	}
	meta["depth"] = hierarchy.Depth(nodes)

	data := make([]domain.Record, len(nodes))
	for i, n := range nodes {
		data[i] = nodeRecord(n)
	}
	meta["total_categories"] = len(data)
	return &domain.ChartResult{Data: data, Metadata: meta}, nil
}

func nodeRecord(n *hierarchy.Node) domain.Record {
	children := make([]domain.Record, len(n.Children))
	for i, c := range n.Children {
		children[i] = nodeRecord(c)
	}
	return domain.Record{
		"name":       n.Name,
		"value":      n.Value,
		"percentage": n.Percentage,
		"children":   children,
	}
}
