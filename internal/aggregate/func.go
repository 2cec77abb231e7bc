// Package aggregate groups dataset rows by one or two key columns and
// reduces each group with an aggregation function.
package aggregate

import (
	"math"
	"strings"

	"github.com/aclements/go-moremath/stats"

	"github.com/kmmelissat/analisis-al-instante-api/internal/distribution"
)

// Func is an aggregation function.
type Func string

// Aggregation functions.
const (
	Count  Func = "count"
	Sum    Func = "sum"
	Mean   Func = "mean"
	Median Func = "median"
	Min    Func = "min"
	Max    Func = "max"
	Std    Func = "std"
	Var    Func = "var"
)

// Funcs lists every aggregation function.
var Funcs = []Func{Count, Sum, Mean, Median, Min, Max, Std, Var}

// ParseFunc accepts the canonical names and the avg/average aliases.
func ParseFunc(s string) (Func, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "count":
		return Count, true
	case "sum":
		return Sum, true
	case "mean", "avg", "average":
		return Mean, true
	case "median":
		return Median, true
	case "min":
		return Min, true
	case "max":
		return Max, true
	case "std", "stddev":
		return Std, true
	case "var", "variance":
		return Var, true
	}
	return "", false
}

// Apply reduces xs. ok is false when the result is undefined: mean, median,
// min and max of an empty sample, or std and var of fewer than two values.
// Count is the number of values; callers counting rows use the group size.
func (f Func) Apply(xs []float64) (v float64, ok bool) {
	switch f {
	case Count:
		return float64(len(xs)), true
	case Sum:
		s := 0.0
		for _, x := range xs {
			s += x
		}
		return s, true
	}
	if len(xs) == 0 {
		return 0, false
	}
	switch f {
	case Mean:
		v = stats.Mean(xs)
	case Median:
		v = distribution.Median(xs)
	case Min:
		v, _ = stats.Bounds(xs)
	case Max:
		_, v = stats.Bounds(xs)
	case Std:
		if len(xs) < 2 {
			return 0, false
		}
		v = stats.StdDev(xs)
	case Var:
		if len(xs) < 2 {
			return 0, false
		}
		v = stats.Variance(xs)
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
