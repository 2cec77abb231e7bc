package chart

import (
	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Parameter names.
const (
	ParamXAxis            = "x_axis"
	ParamYAxis            = "y_axis"
	ParamZAxis            = "z_axis"
	ParamColorBy          = "color_by"
	ParamSizeBy           = "size_by"
	ParamShapeBy          = "shape_by"
	ParamOpacityBy        = "opacity_by"
	ParamGroupBy          = "group_by"
	ParamStackBy          = "stack_by"
	ParamOpen             = "open"
	ParamHigh             = "high"
	ParamLow              = "low"
	ParamClose            = "close"
	ParamStart            = "start"
	ParamEnd              = "end"
	ParamLevels           = "levels"
	ParamAggregation      = "aggregation"
	ParamBins             = "bins"
	ParamBandwidth        = "bandwidth"
	ParamThreshold        = "threshold"
	ParamSortBy           = "sort_by"
	ParamSortOrder        = "sort_order"
	ParamLimit            = "limit"
	ParamTimeUnit         = "time_unit"
	ParamRollingWindow    = "rolling_window"
	ParamNormalize        = "normalize"
	ParamPercentage       = "percentage"
	ParamCumulative       = "cumulative"
	ParamShowOutliers     = "show_outliers"
	ParamInnerRadius      = "inner_radius"
	ParamBaseline         = "baseline"
	ParamAdditionalParams = "additional_params"
)

// columnParams lists every column-valued parameter in validation order.
var columnParams = []string{
	ParamXAxis, ParamYAxis, ParamZAxis, ParamColorBy, ParamSizeBy, ParamShapeBy,
	ParamOpacityBy, ParamGroupBy, ParamStackBy, ParamOpen, ParamHigh, ParamLow,
	ParamClose, ParamStart, ParamEnd,
}

// requirement is one required parameter. When the parameter is absent the
// first present alias is used in its place.
type requirement struct {
	param   string
	aliases []string
}

func req(param string, aliases ...string) requirement {
	return requirement{param: param, aliases: aliases}
}

// typeSpec is the per-chart-type parameter contract.
type typeSpec struct {
	required []requirement
	// missing overrides the "<param> is required" message.
	missing string
	// numeric parameters must reference numeric columns.
	numeric []string
	// value is the parameter holding the aggregated column, if any.
	value string
	// defaultAgg applies when a value column is present and no
	// aggregation was requested.
	defaultAgg aggregate.Func
	// proportional charts fold trimmed groups into "Other".
	proportional bool
	// optional lists the optional parameters advertised to clients.
	optional []string
}

const bothAxes = "Both x_axis and y_axis are required"

var (
	categoryOptional = []string{ParamYAxis, ParamAggregation, ParamSortBy, ParamSortOrder, ParamLimit, ParamThreshold, ParamTimeUnit, ParamPercentage}
	seriesOptional   = []string{ParamAggregation, ParamSortBy, ParamSortOrder, ParamLimit, ParamTimeUnit}
	densityOptional  = []string{ParamBandwidth, ParamColorBy, ParamGroupBy}
)

var specs = map[domain.ChartType]typeSpec{
	domain.ChartBar: {
		required: []requirement{req(ParamXAxis)}, value: ParamYAxis, defaultAgg: aggregate.Sum,
		optional: append([]string{ParamColorBy}, categoryOptional...),
	},
	domain.ChartPie: {
		required: []requirement{req(ParamXAxis)}, value: ParamYAxis, defaultAgg: aggregate.Sum,
		proportional: true, optional: categoryOptional,
	},
	domain.ChartDonut: {
		required: []requirement{req(ParamXAxis)}, value: ParamYAxis, defaultAgg: aggregate.Sum,
		proportional: true, optional: append([]string{ParamInnerRadius}, categoryOptional...),
	},
	domain.ChartLine: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		value: ParamYAxis, defaultAgg: aggregate.Sum,
		optional: append([]string{ParamCumulative, ParamRollingWindow, ParamColorBy, ParamGroupBy}, seriesOptional...),
	},
	domain.ChartArea: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		value: ParamYAxis, defaultAgg: aggregate.Sum,
		optional: append([]string{ParamCumulative, ParamRollingWindow, ParamStackBy, ParamColorBy, ParamNormalize}, seriesOptional...),
	},
	domain.ChartScatter: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		optional: []string{ParamColorBy, ParamSizeBy, ParamShapeBy, ParamOpacityBy, ParamLimit},
	},
	domain.ChartBubble: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis), req(ParamSizeBy)},
		missing:  "x_axis, y_axis, and size_by are required for bubble charts",
		numeric:  []string{ParamXAxis, ParamYAxis, ParamSizeBy},
		optional: []string{ParamColorBy, ParamShapeBy, ParamOpacityBy, ParamLimit},
	},
	domain.ChartHistogram: {
		required: []requirement{req(ParamXAxis)}, numeric: []string{ParamXAxis},
		optional: []string{ParamBins, ParamNormalize, ParamCumulative},
	},
	domain.ChartBox: {
		required: []requirement{req(ParamYAxis)}, numeric: []string{ParamYAxis},
		optional: []string{ParamXAxis, ParamColorBy, ParamShowOutliers},
	},
	domain.ChartViolin: {
		required: []requirement{req(ParamYAxis)}, numeric: []string{ParamYAxis},
		optional: []string{ParamXAxis, ParamColorBy, ParamBandwidth},
	},
	domain.ChartDensity: {
		required: []requirement{req(ParamXAxis)}, numeric: []string{ParamXAxis}, optional: densityOptional,
	},
	domain.ChartRidgeline: {
		required: []requirement{req(ParamXAxis)}, numeric: []string{ParamXAxis}, optional: densityOptional,
	},
	domain.ChartHeatmap: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		value: ParamZAxis, defaultAgg: aggregate.Mean,
		optional: []string{ParamZAxis, ParamColorBy, ParamAggregation},
	},
	domain.ChartRadar: {
		defaultAgg: aggregate.Mean,
		optional:   []string{ParamXAxis, ParamGroupBy, ParamColorBy, ParamAggregation, ParamLimit},
	},
	domain.ChartTreemap: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		value: ParamYAxis, defaultAgg: aggregate.Sum, proportional: true,
		optional: []string{ParamColorBy, ParamLevels, ParamAggregation, ParamSortOrder, ParamLimit},
	},
	domain.ChartSunburst: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		value: ParamYAxis, defaultAgg: aggregate.Sum, proportional: true,
		optional: []string{ParamColorBy, ParamLevels, ParamAggregation, ParamSortOrder, ParamLimit},
	},
	domain.ChartWaterfall: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		value: ParamYAxis, defaultAgg: aggregate.Sum,
		optional: []string{ParamAggregation, ParamBaseline},
	},
	domain.ChartFunnel: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		value: ParamYAxis, defaultAgg: aggregate.Sum,
		optional: []string{ParamAggregation, ParamSortBy, ParamSortOrder, ParamLimit},
	},
	domain.ChartStackedBar: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis), req(ParamStackBy, ParamColorBy)},
		value:    ParamYAxis, defaultAgg: aggregate.Sum,
		optional: append([]string{ParamNormalize}, seriesOptional...),
	},
	domain.ChartStackedArea: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis), req(ParamStackBy, ParamColorBy)},
		value:    ParamYAxis, defaultAgg: aggregate.Sum,
		optional: append([]string{ParamNormalize}, seriesOptional...),
	},
	domain.ChartGroupedBar: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis), req(ParamGroupBy, ParamStackBy, ParamColorBy)},
		value:    ParamYAxis, defaultAgg: aggregate.Sum,
		optional: seriesOptional,
	},
	domain.ChartMultiLine: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis), req(ParamGroupBy, ParamColorBy)},
		value:    ParamYAxis, defaultAgg: aggregate.Sum,
		optional: seriesOptional,
	},
	domain.ChartCandlestick: {
		required: []requirement{req(ParamXAxis)},
		numeric:  []string{ParamYAxis, ParamOpen, ParamHigh, ParamLow, ParamClose},
		optional: []string{ParamYAxis, ParamOpen, ParamHigh, ParamLow, ParamClose, ParamTimeUnit},
	},
	domain.ChartGantt: {
		required: []requirement{req(ParamXAxis), req(ParamStart), req(ParamEnd)},
	},
	domain.ChartSankey: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		value: ParamZAxis, defaultAgg: aggregate.Sum,
		optional: []string{ParamZAxis, ParamAggregation},
	},
	domain.ChartChord: {
		required: []requirement{req(ParamXAxis), req(ParamYAxis)}, missing: bothAxes,
		value: ParamZAxis, defaultAgg: aggregate.Sum,
		optional: []string{ParamZAxis, ParamAggregation},
	},
}

// TypeInfo describes a chart type's parameter contract for clients.
type TypeInfo struct {
	Type     domain.ChartType `json:"type"`
	Title    string           `json:"title"`
	Required []string         `json:"required"`
	Optional []string         `json:"optional"`
}

// Types lists every chart type with its required and optional parameters.
func Types() []TypeInfo {
	out := make([]TypeInfo, 0, len(specs))
	for _, ct := range domain.ChartTypes() {
		s := specs[ct]
		info := TypeInfo{Type: ct, Title: ct.Title(), Required: []string{}, Optional: s.optional}
		for _, r := range s.required {
			info.Required = append(info.Required, r.param)
		}
		if info.Optional == nil {
			info.Optional = []string{}
		}
		out = append(out, info)
	}
	return out
}
