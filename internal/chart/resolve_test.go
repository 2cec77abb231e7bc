package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

func resolveDataset(t *testing.T) *dataset.Dataset {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	return mustDataset(t,
		dataset.Categorical("region", []string{"North", "South"}, nil),
		dataset.Categorical("product", []string{"a", "b"}, nil),
		dataset.Numeric("amt", []float64{1, 2}, nil),
		dataset.Temporal("when", []time.Time{day(1), day(2)}, nil),
	)
}

func TestResolve_AliasFillsRequired(t *testing.T) {
	o, err := Resolve(domain.ChartGroupedBar, map[string]any{
		"x_axis": "region", "y_axis": "amt", "color_by": "product",
	}, resolveDataset(t))
	require.NoError(t, err)
	assert.Equal(t, "product", o.GroupBy)
	assert.Equal(t, aggregate.Sum, o.Agg)
	assert.True(t, o.AggDefaulted)
}

func TestResolve_AdditionalParamsMerged(t *testing.T) {
	o, err := Resolve(domain.ChartHistogram, map[string]any{
		"x_axis":            "amt",
		"bins":              5,
		"additional_params": map[string]any{"bins": 9, "normalize": "yes"},
	}, resolveDataset(t))
	require.NoError(t, err)
	assert.Equal(t, 5, o.Bins)
	assert.True(t, o.Normalize)
}

func TestResolve_SortMapping(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   aggregate.SortBy
		desc   bool
	}{
		{"none requested", map[string]any{}, aggregate.SortNone, false},
		{"order only sorts by value", map[string]any{"sort_order": "desc"}, aggregate.SortValue, true},
		{"x column sorts by key", map[string]any{"sort_by": "region"}, aggregate.SortKey, false},
		{"y column sorts by value", map[string]any{"sort_by": "amt", "sort_order": "desc"}, aggregate.SortValue, true},
		{"label", map[string]any{"sort_by": "label"}, aggregate.SortLabel, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := map[string]any{"x_axis": "region", "y_axis": "amt"}
			for k, v := range tt.params {
				params[k] = v
			}
			o, err := Resolve(domain.ChartBar, params, resolveDataset(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.Sort)
			assert.Equal(t, tt.desc, o.Desc)
		})
	}
}

func TestResolve_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		ct     domain.ChartType
		params map[string]any
		field  string
	}{
		{"bad aggregation", domain.ChartBar, map[string]any{"x_axis": "region", "aggregation": "mode"}, ParamAggregation},
		{"zero bins", domain.ChartHistogram, map[string]any{"x_axis": "amt", "bins": 0}, ParamBins},
		{"too many bins", domain.ChartHistogram, map[string]any{"x_axis": "amt", "bins": 2e9}, ParamBins},
		{"x doubles as y", domain.ChartBar, map[string]any{"x_axis": "amt", "y_axis": "amt"}, ParamYAxis},
		{"color doubles as y", domain.ChartBar, map[string]any{"x_axis": "region", "y_axis": "amt", "color_by": "amt"}, ParamColorBy},
		{"fractional limit", domain.ChartBar, map[string]any{"x_axis": "region", "limit": 1.5}, ParamLimit},
		{"inner radius out of range", domain.ChartDonut, map[string]any{"x_axis": "region", "inner_radius": 1}, ParamInnerRadius},
		{"bad sort order", domain.ChartBar, map[string]any{"x_axis": "region", "sort_order": "sideways"}, ParamSortOrder},
		{"bad time unit", domain.ChartLine, map[string]any{"x_axis": "when", "y_axis": "amt", "time_unit": "decade"}, ParamTimeUnit},
		{"unknown level", domain.ChartTreemap, map[string]any{"x_axis": "region", "y_axis": "amt", "levels": []any{"nope"}}, ParamLevels},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.ct, tt.params, resolveDataset(t))
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestResolve_BinsBounds(t *testing.T) {
	o, err := Resolve(domain.ChartHistogram, map[string]any{"x_axis": "amt", "bins": MaxBins}, resolveDataset(t))
	require.NoError(t, err)
	assert.Equal(t, MaxBins, o.Bins)

	_, err = Resolve(domain.ChartHistogram, map[string]any{"x_axis": "amt", "bins": MaxBins + 1}, resolveDataset(t))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, domain.CodeInvalidParameter, ve.Code)
	assert.Equal(t, "bins must be between 1 and 1000", ve.Message)
}

func TestResolve_FirstInvalidFlagWins(t *testing.T) {
	raw := map[string]any{
		"x_axis":        "amt",
		"show_outliers": "maybe",
		"cumulative":    "maybe",
		"percentage":    "maybe",
		"normalize":     "maybe",
	}
	for i := 0; i < 20; i++ {
		_, err := Resolve(domain.ChartHistogram, raw, resolveDataset(t))
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, ParamNormalize, ve.Field)
	}

	delete(raw, "normalize")
	_, err := Resolve(domain.ChartHistogram, raw, resolveDataset(t))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ParamPercentage, ve.Field)
}

func TestResolve_TypeChecks(t *testing.T) {
	_, err := Resolve(domain.ChartLine, map[string]any{
		"x_axis": "region", "y_axis": "amt", "time_unit": "month",
	}, resolveDataset(t))
	var te *domain.TypeMismatchError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "temporal", te.Want)

	_, err = Resolve(domain.ChartBar, map[string]any{
		"x_axis": "region", "y_axis": "product", "aggregation": "sum",
	}, resolveDataset(t))
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ParamYAxis, te.Field)

	o, err := Resolve(domain.ChartBar, map[string]any{
		"x_axis": "region", "y_axis": "product", "aggregation": "count",
	}, resolveDataset(t))
	require.NoError(t, err)
	assert.Equal(t, aggregate.Count, o.Agg)
}

func TestResolve_CandlestickNeedsPriceColumns(t *testing.T) {
	_, err := Resolve(domain.ChartCandlestick, map[string]any{"x_axis": "when", "open": "amt"}, resolveDataset(t))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, domain.CodeMissingParameter, ve.Code)
	assert.Equal(t, ParamHigh, ve.Field)
}
