package chart

import (
	"strings"

	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Resolve validates raw parameters against the chart type's contract and the
// dataset, applies defaults and returns the typed options. The first failing
// parameter is reported.
func Resolve(ct domain.ChartType, raw map[string]any, ds *dataset.Dataset) (*Options, error) {
	spec, ok := specs[ct]
	if !ok {
		return nil, &domain.UnsupportedChartTypeError{ChartType: string(ct)}
	}
	p := mergeAdditional(raw)
	o := &Options{Type: ct}

	for _, param := range columnParams {
		name, err := p.str(param)
		if err != nil {
			return nil, err
		}
		o.setColumn(param, name)
	}
	levels, err := p.list(ParamLevels)
	if err != nil {
		return nil, err
	}
	o.Levels = levels

	if err := checkRequired(o, spec); err != nil {
		return nil, err
	}
	if err := checkColumns(o, ds); err != nil {
		return nil, err
	}
	if err := checkDistinct(o); err != nil {
		return nil, err
	}
	if err := parseScalars(o, p); err != nil {
		return nil, err
	}
	if err := resolveAggregation(o, p, spec); err != nil {
		return nil, err
	}
	if err := checkTypes(o, spec, ds); err != nil {
		return nil, err
	}
	if err := checkPreconditions(o, ds); err != nil {
		return nil, err
	}
	return o, nil
}

// mergeAdditional folds additional_params into the top-level map. Explicit
// top-level keys win.
func mergeAdditional(raw map[string]any) params {
	p := make(params, len(raw))
	if extra, ok := raw[ParamAdditionalParams].(map[string]any); ok {
		for k, v := range extra {
			p[k] = v
		}
	}
	for k, v := range raw {
		if k == ParamAdditionalParams {
			continue
		}
		if v == nil {
			if _, set := p[k]; set {
				continue
			}
		}
		p[k] = v
	}
	return p
}

func checkRequired(o *Options, spec typeSpec) error {
	for _, r := range spec.required {
		if o.column(r.param) != "" {
			continue
		}
		found := false
		for _, alias := range r.aliases {
			if name := o.column(alias); name != "" {
				o.setColumn(r.param, name)
				found = true
				break
			}
		}
		if !found {
			return domain.ErrMissingParameter(r.param, spec.missing)
		}
	}
	if o.Type == domain.ChartCandlestick && o.Y == "" {
		ohlc := []string{o.Open, o.High, o.Low, o.Close}
		for i, name := range ohlc {
			if name == "" {
				field := []string{ParamOpen, ParamHigh, ParamLow, ParamClose}[i]
				return domain.ErrMissingParameter(field, "y_axis or open, high, low and close are required for candlestick charts")
			}
		}
	}
	return nil
}

func checkColumns(o *Options, ds *dataset.Dataset) error {
	for _, param := range columnParams {
		name := o.column(param)
		if name == "" {
			continue
		}
		if _, ok := ds.Column(name); !ok {
			return domain.ErrUnknownColumn(param, name)
		}
	}
	for _, name := range o.Levels {
		if _, ok := ds.Column(name); !ok {
			return domain.ErrUnknownColumn(ParamLevels, name)
		}
	}
	return nil
}

// checkDistinct rejects a value column that doubles as a key column, since
// both would be written to the same record field.
func checkDistinct(o *Options) error {
	if o.Y == "" {
		return nil
	}
	if o.X == o.Y {
		return domain.ErrInvalidParameter(ParamYAxis, "y_axis must differ from x_axis")
	}
	if o.ColorBy == o.Y {
		return domain.ErrInvalidParameter(ParamColorBy, "color_by must differ from y_axis")
	}
	return nil
}

func parseScalars(o *Options, p params) error {
	var err error
	var ok bool

	if o.Bins, ok, err = p.integer(ParamBins); err != nil {
		return err
	} else if ok && (o.Bins < 1 || o.Bins > MaxBins) {
		return domain.ErrInvalidParameter(ParamBins, "bins must be between 1 and %d", MaxBins)
	}
	if o.Limit, ok, err = p.integer(ParamLimit); err != nil {
		return err
	} else if ok && o.Limit < 1 {
		return domain.ErrInvalidParameter(ParamLimit, "limit must be at least 1")
	}
	if o.RollingWindow, ok, err = p.integer(ParamRollingWindow); err != nil {
		return err
	} else if ok && o.RollingWindow < 1 {
		return domain.ErrInvalidParameter(ParamRollingWindow, "rolling_window must be at least 1")
	}
	if o.Bandwidth, ok, err = p.number(ParamBandwidth); err != nil {
		return err
	} else if ok && o.Bandwidth <= 0 {
		return &domain.ValidationError{Code: domain.CodeInvalidBandwidth, Field: ParamBandwidth, Message: "bandwidth must be greater than 0"}
	}
	o.InnerRadius = DefaultInnerRadius
	if r, ok, err := p.number(ParamInnerRadius); err != nil {
		return err
	} else if ok {
		if r <= 0 || r >= 1 {
			return domain.ErrInvalidParameter(ParamInnerRadius, "inner_radius must be between 0 and 1")
		}
		o.InnerRadius = r
	}
	if t, ok, err := p.number(ParamThreshold); err != nil {
		return err
	} else if ok {
		o.Threshold = &t
	}
	if o.Baseline, _, err = p.number(ParamBaseline); err != nil {
		return err
	}

	for _, flag := range []struct {
		key string
		dst *bool
	}{
		{ParamNormalize, &o.Normalize},
		{ParamPercentage, &o.Percentage},
		{ParamCumulative, &o.Cumulative},
		{ParamShowOutliers, &o.ShowOutliers},
	} {
		if *flag.dst, err = p.boolean(flag.key); err != nil {
			return err
		}
	}

	unit, err := p.str(ParamTimeUnit)
	if err != nil {
		return err
	}
	if unit != "" {
		tu, ok := aggregate.ParseTimeUnit(unit)
		if !ok {
			return domain.ErrInvalidParameter(ParamTimeUnit, "time_unit must be one of day, week, month, quarter, year")
		}
		o.TimeUnit = tu
	}
	return parseSort(o, p)
}

func parseSort(o *Options, p params) error {
	sortBy, err := p.str(ParamSortBy)
	if err != nil {
		return err
	}
	order, err := p.str(ParamSortOrder)
	if err != nil {
		return err
	}
	switch strings.ToLower(order) {
	case "", "asc", "ascending":
	case "desc", "descending":
		o.Desc = true
	case "none":
		return nil
	default:
		return domain.ErrInvalidParameter(ParamSortOrder, "sort_order must be asc, desc or none")
	}

	switch {
	case sortBy == "" && order == "":
		o.Sort = aggregate.SortNone
	case sortBy == "", strings.EqualFold(sortBy, "value"):
		o.Sort = aggregate.SortValue
	case strings.EqualFold(sortBy, "label"):
		o.Sort = aggregate.SortLabel
	case sortBy == o.X:
		o.Sort = aggregate.SortKey
	case sortBy == o.Y || (sortBy == o.Z && o.Z != ""):
		o.Sort = aggregate.SortValue
	default:
		return domain.ErrInvalidParameter(ParamSortBy, "sort_by must be value, label, or the x or y column")
	}
	return nil
}

func resolveAggregation(o *Options, p params, spec typeSpec) error {
	name, err := p.str(ParamAggregation)
	if err != nil {
		return err
	}
	if name != "" {
		fn, ok := aggregate.ParseFunc(name)
		if !ok {
			return domain.ErrInvalidParameter(ParamAggregation, "aggregation must be one of count, sum, mean, median, min, max, std, var")
		}
		o.Agg = fn
	}

	hasValue := spec.value != "" && o.column(spec.value) != ""
	if o.Type == domain.ChartHeatmap && o.Z == "" && o.ColorBy != "" {
		o.Z = o.ColorBy
		hasValue = true
	}
	if o.Type == domain.ChartRadar {
		hasValue = true
	}
	switch {
	case !hasValue && spec.value != "":
		o.Agg = aggregate.Count
	case o.Agg == "" && spec.defaultAgg != "":
		o.Agg = spec.defaultAgg
		o.AggDefaulted = true
	}
	return nil
}

func checkTypes(o *Options, spec typeSpec, ds *dataset.Dataset) error {
	requireRole := func(param, name string, want ...dataset.Role) error {
		if name == "" {
			return nil
		}
		c, _ := ds.Column(name)
		for _, r := range want {
			if c.Role == r {
				return nil
			}
		}
		wantNames := make([]string, len(want))
		for i, r := range want {
			wantNames[i] = string(r)
		}
		return &domain.TypeMismatchError{Field: param, Column: name, Want: strings.Join(wantNames, " or "), Got: string(c.Role)}
	}

	for _, param := range spec.numeric {
		if err := requireRole(param, o.column(param), dataset.RoleNumeric); err != nil {
			return err
		}
	}
	if spec.value != "" && o.Agg != aggregate.Count {
		if err := requireRole(spec.value, o.column(spec.value), dataset.RoleNumeric); err != nil {
			return err
		}
	}
	if o.Type == domain.ChartGantt {
		if err := requireRole(ParamStart, o.Start, dataset.RoleNumeric, dataset.RoleTemporal); err != nil {
			return err
		}
		if err := requireRole(ParamEnd, o.End, dataset.RoleNumeric, dataset.RoleTemporal); err != nil {
			return err
		}
	}
	if o.TimeUnit != aggregate.NoTimeUnit {
		if err := requireRole(ParamXAxis, o.X, dataset.RoleTemporal); err != nil {
			return err
		}
	}
	return nil
}

func checkPreconditions(o *Options, ds *dataset.Dataset) error {
	switch o.Type {
	case domain.ChartRadar:
		var axes []string
		for _, name := range ds.Profile().NumericColumns() {
			if name != o.X {
				axes = append(axes, name)
			}
		}
		if len(axes) < minRadarAxes {
			return domain.ErrInsufficientData(domain.CodeInsufficientNumericColumns, "Radar charts require at least 3 numeric columns")
		}
		limit := DefaultRadarAxes
		if o.Limit > 0 {
			limit = max(o.Limit, minRadarAxes)
		}
		if len(axes) > limit {
			axes = axes[:limit]
		}
		o.RadarAxes = axes
		if o.GroupBy == "" {
			o.GroupBy = o.ColorBy
		}
	case domain.ChartHeatmap:
		if ds.Rows() == 0 {
			return domain.ErrInsufficientData(domain.CodeEmptyDataset, "Heatmap requires at least one row")
		}
	}
	return nil
}
