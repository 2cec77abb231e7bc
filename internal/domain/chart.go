package domain

import "strings"

// ChartType identifies one of the supported output shapes.
type ChartType string

// Supported chart types.
const (
	ChartBar         ChartType = "bar"
	ChartLine        ChartType = "line"
	ChartScatter     ChartType = "scatter"
	ChartHistogram   ChartType = "histogram"
	ChartPie         ChartType = "pie"
	ChartBox         ChartType = "box"
	ChartArea        ChartType = "area"
	ChartDonut       ChartType = "donut"
	ChartViolin      ChartType = "violin"
	ChartHeatmap     ChartType = "heatmap"
	ChartBubble      ChartType = "bubble"
	ChartRadar       ChartType = "radar"
	ChartTreemap     ChartType = "treemap"
	ChartSunburst    ChartType = "sunburst"
	ChartDensity     ChartType = "density"
	ChartRidgeline   ChartType = "ridgeline"
	ChartCandlestick ChartType = "candlestick"
	ChartWaterfall   ChartType = "waterfall"
	ChartFunnel      ChartType = "funnel"
	ChartGantt       ChartType = "gantt"
	ChartSankey      ChartType = "sankey"
	ChartChord       ChartType = "chord"
	ChartStackedBar  ChartType = "stacked_bar"
	ChartGroupedBar  ChartType = "grouped_bar"
	ChartMultiLine   ChartType = "multi_line"
	ChartStackedArea ChartType = "stacked_area"
)

var allChartTypes = []ChartType{
	ChartBar, ChartLine, ChartScatter, ChartHistogram, ChartPie, ChartBox,
	ChartArea, ChartDonut, ChartViolin, ChartHeatmap, ChartBubble, ChartRadar,
	ChartTreemap, ChartSunburst, ChartDensity, ChartRidgeline, ChartCandlestick,
	ChartWaterfall, ChartFunnel, ChartGantt, ChartSankey, ChartChord,
	ChartStackedBar, ChartGroupedBar, ChartMultiLine, ChartStackedArea,
}

// ChartTypes returns every supported chart type in declaration order.
func ChartTypes() []ChartType {
	out := make([]ChartType, len(allChartTypes))
	copy(out, allChartTypes)
	return out
}

// ParseChartType normalizes s and checks it against the supported set.
func ParseChartType(s string) (ChartType, error) {
	ct := ChartType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allChartTypes {
		if ct == known {
			return ct, nil
		}
	}
	return "", &UnsupportedChartTypeError{ChartType: s}
}

// Title renders the chart type for display, e.g. "stacked_bar" -> "Stacked Bar".
func (c ChartType) Title() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Record is a single output row. Keys are chart specific.
type Record = map[string]any

// ChartRequest is the raw, unvalidated request for chart data.
type ChartRequest struct {
	FileID     string         `json:"file_id" yaml:"file_id"`
	ChartType  string         `json:"chart_type" yaml:"chart_type"`
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
}

// ChartResult is the render-ready output of the engine.
type ChartResult struct {
	Data     []Record       `json:"data"`
	Metadata map[string]any `json:"metadata"`
}

// Finalize stamps total_points from the record count.
func (r *ChartResult) Finalize() {
	if r.Data == nil {
		r.Data = []Record{}
	}
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	r.Metadata["total_points"] = len(r.Data)
}

// ChartResponse is a ChartResult annotated for API consumers.
type ChartResponse struct {
	ChartType string         `json:"chart_type"`
	Data      []Record       `json:"data"`
	Metadata  map[string]any `json:"metadata"`
	Title     string         `json:"title"`
}

// ChartTitle builds the display title "<Type> Chart - x vs y".
func ChartTitle(ct ChartType, params map[string]any) string {
	title := ct.Title() + " Chart"
	if x, ok := params["x_axis"].(string); ok && x != "" {
		title += " - " + x
	}
	if y, ok := params["y_axis"].(string); ok && y != "" {
		title += " vs " + y
	}
	return title
}
