// Package chart resolves chart requests against a dataset and shapes the
// render-ready records for every supported chart type.
package chart

import (
	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// builder shapes one chart type from resolved options.
type builder func(ds *dataset.Dataset, o *Options) (*domain.ChartResult, error)

// Engine dispatches chart requests to per-type builders. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	builders map[domain.ChartType]builder
}

// NewEngine creates an Engine with every chart type registered.
func NewEngine() *Engine {
	return &Engine{builders: map[domain.ChartType]builder{
		domain.ChartBar:         buildBar,
		domain.ChartPie:         buildPie,
		domain.ChartDonut:       buildPie,
		domain.ChartWaterfall:   buildWaterfall,
		domain.ChartFunnel:      buildFunnel,
		domain.ChartLine:        buildLine,
		domain.ChartArea:        buildLine,
		domain.ChartStackedBar:  buildStacked,
		domain.ChartStackedArea: buildStacked,
		domain.ChartGroupedBar:  buildGrouped,
		domain.ChartMultiLine:   buildGrouped,
		domain.ChartHistogram:   buildHistogram,
		domain.ChartBox:         buildBox,
		domain.ChartViolin:      buildViolin,
		domain.ChartDensity:     buildDensity,
		domain.ChartRidgeline:   buildDensity,
		domain.ChartScatter:     buildScatter,
		domain.ChartBubble:      buildBubble,
		domain.ChartHeatmap:     buildHeatmap,
		domain.ChartRadar:       buildRadar,
		domain.ChartTreemap:     buildTree,
		domain.ChartSunburst:    buildTree,
		domain.ChartCandlestick: buildCandlestick,
		domain.ChartGantt:       buildGantt,
		domain.ChartSankey:      buildSankey,
		domain.ChartChord:       buildChord,
	}}
}

// Render resolves params for chartType and builds the chart data.
func (e *Engine) Render(ds *dataset.Dataset, chartType domain.ChartType, params map[string]any) (*domain.ChartResult, error) {
	build, ok := e.builders[chartType]
	if !ok {
		return nil, &domain.UnsupportedChartTypeError{ChartType: string(chartType)}
	}
	opts, err := Resolve(chartType, params, ds)
	if err != nil {
		return nil, err
	}
	res, err := build(ds, opts)
	if err != nil {
		return nil, err
	}
	if res.Metadata == nil {
		res.Metadata = map[string]any{}
	}
	res.Metadata["chart_type"] = string(chartType)
	if opts.Agg != "" {
		res.Metadata["aggregation"] = string(opts.Agg)
	}
	if opts.AggDefaulted {
		res.Metadata["aggregation_defaulted"] = true
	}
	res.Finalize()
	return res, nil
}

// valueKey names the aggregated field of category records.
func valueKey(o *Options) string {
	if o.Y == "" {
		return "count"
	}
	return o.Y
}

// nullable returns nil for an empty column name so metadata reports JSON null.
func nullable(name string) any {
	if name == "" {
		return nil
	}
	return name
}

// sequentialX reports whether x should be ordered by magnitude by default.
// Numeric and temporal axes are, whatever their row order.
func sequentialX(ds *dataset.Dataset, x string) bool {
	p, ok := ds.Profile().Column(x)
	return ok && (p.Role == dataset.RoleNumeric || p.Role == dataset.RoleTemporal)
}

// groupAndOrder aggregates value by keys and applies the requested order,
// falling back to fallback when no order was requested.
func groupAndOrder(ds *dataset.Dataset, o *Options, keys []string, value string, fallback aggregate.SortBy) ([]aggregate.Group, error) {
	groups, err := aggregate.By(ds, keys, value, o.Agg, aggregate.Options{TimeUnit: o.TimeUnit})
	if err != nil {
		return nil, err
	}
	by, desc := o.Sort, o.Desc
	if by == aggregate.SortNone {
		by = fallback
	}
	aggregate.Sort(groups, by, desc)
	return groups, nil
}

// trim applies limit and threshold and records truncation in meta.
func trim(groups []aggregate.Group, o *Options, fold bool, meta map[string]any) []aggregate.Group {
	kept, info := aggregate.Trim(groups, aggregate.TrimOptions{Limit: o.Limit, Threshold: o.Threshold, Fold: fold})
	if info.Omitted > 0 {
		meta["truncated"] = true
		meta["omitted_groups"] = info.Omitted
	}
	return kept
}

func labelsOf(keys []aggregate.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Label
	}
	return out
}
