package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Defaults.
const (
	DefaultInnerRadius = 0.4
	DefaultRadarAxes   = 8
	minRadarAxes       = 3

	// MaxBins caps histogram bins; each bin becomes one record.
	MaxBins = 1000
)

// Options is a fully resolved chart request. Builders read only this struct.
type Options struct {
	Type domain.ChartType

	X, Y, Z   string
	ColorBy   string
	SizeBy    string
	ShapeBy   string
	OpacityBy string
	GroupBy   string
	StackBy   string
	Open      string
	High      string
	Low       string
	Close     string
	Start     string
	End       string
	Levels    []string

	Agg          aggregate.Func
	AggDefaulted bool

	Bins          int
	Bandwidth     float64
	Threshold     *float64
	Sort          aggregate.SortBy
	Desc          bool
	Limit         int
	TimeUnit      aggregate.TimeUnit
	RollingWindow int
	Normalize     bool
	Percentage    bool
	Cumulative    bool
	ShowOutliers  bool
	InnerRadius   float64
	Baseline      float64

	// RadarAxes are the numeric columns plotted by a radar chart.
	RadarAxes []string
}

// column returns the column name bound to a column parameter.
func (o *Options) column(param string) string {
	switch param {
	case ParamXAxis:
		return o.X
	case ParamYAxis:
		return o.Y
	case ParamZAxis:
		return o.Z
	case ParamColorBy:
		return o.ColorBy
	case ParamSizeBy:
		return o.SizeBy
	case ParamShapeBy:
		return o.ShapeBy
	case ParamOpacityBy:
		return o.OpacityBy
	case ParamGroupBy:
		return o.GroupBy
	case ParamStackBy:
		return o.StackBy
	case ParamOpen:
		return o.Open
	case ParamHigh:
		return o.High
	case ParamLow:
		return o.Low
	case ParamClose:
		return o.Close
	case ParamStart:
		return o.Start
	case ParamEnd:
		return o.End
	}
	return ""
}

func (o *Options) setColumn(param, name string) {
	switch param {
	case ParamXAxis:
		o.X = name
	case ParamYAxis:
		o.Y = name
	case ParamZAxis:
		o.Z = name
	case ParamColorBy:
		o.ColorBy = name
	case ParamSizeBy:
		o.SizeBy = name
	case ParamShapeBy:
		o.ShapeBy = name
	case ParamOpacityBy:
		o.OpacityBy = name
	case ParamGroupBy:
		o.GroupBy = name
	case ParamStackBy:
		o.StackBy = name
	case ParamOpen:
		o.Open = name
	case ParamHigh:
		o.High = name
	case ParamLow:
		o.Low = name
	case ParamClose:
		o.Close = name
	case ParamStart:
		o.Start = name
	case ParamEnd:
		o.End = name
	}
}

// params wraps the raw parameter map with typed accessors.
type params map[string]any

func (p params) present(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

func (p params) str(key string) (string, error) {
	if !p.present(key) {
		return "", nil
	}
	s, ok := p[key].(string)
	if !ok {
		return "", domain.ErrInvalidParameter(key, "%s must be a string", key)
	}
	return strings.TrimSpace(s), nil
}

func (p params) list(key string) ([]string, error) {
	if !p.present(key) {
		return nil, nil
	}
	switch v := p[key].(type) {
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, domain.ErrInvalidParameter(key, "%s must be a list of column names", key)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, domain.ErrInvalidParameter(key, "%s must be a list of column names", key)
}

func (p params) number(key string) (float64, bool, error) {
	if !p.present(key) {
		return 0, false, nil
	}
	var f float64
	switch v := p[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false, domain.ErrInvalidParameter(key, "%s must be a number", key)
		}
		f = parsed
	default:
		return 0, false, domain.ErrInvalidParameter(key, "%s must be a number", key)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, domain.ErrInvalidParameter(key, "%s must be finite", key)
	}
	return f, true, nil
}

func (p params) integer(key string) (int, bool, error) {
	f, ok, err := p.number(key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false, domain.ErrInvalidParameter(key, "%s must be an integer", key)
	}
	return int(f), true, nil
}

func (p params) boolean(key string) (bool, error) {
	if !p.present(key) {
		return false, nil
	}
	switch v := p[key].(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	}
	return false, domain.ErrInvalidParameter(key, "%s must be a boolean", key)
}
