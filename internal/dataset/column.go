// Package dataset holds the typed, immutable columnar table that every chart
// request reads from.
package dataset

import (
	"math"
	"strconv"
	"time"
)

// Role is the declared kind of a column.
type Role string

// Column roles.
const (
	RoleCategorical Role = "categorical"
	RoleNumeric     Role = "numeric"
	RoleTemporal    Role = "temporal"
)

// ParseRole accepts the canonical role names plus a few common synonyms.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "categorical", "category", "string", "text":
		return RoleCategorical, true
	case "numeric", "number", "float", "int", "integer":
		return RoleNumeric, true
	case "temporal", "datetime", "date", "time", "timestamp":
		return RoleTemporal, true
	}
	return "", false
}

// Column is a single named, typed column. Exactly one of the value slices is
// populated, chosen by Role. A false entry in valid marks a missing value.
type Column struct {
	Name string
	Role Role

	strs  []string
	nums  []float64
	times []time.Time
	valid []bool
}

// Categorical builds a categorical column. A nil valid slice means every
// value is present.
func Categorical(name string, values []string, valid []bool) *Column {
	return &Column{Name: name, Role: RoleCategorical, strs: values, valid: fillValid(len(values), valid)}
}

// Numeric builds a numeric column. NaN and infinite values are treated as missing.
func Numeric(name string, values []float64, valid []bool) *Column {
	v := fillValid(len(values), valid)
	for i, x := range values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			v[i] = false
		}
	}
	return &Column{Name: name, Role: RoleNumeric, nums: values, valid: v}
}

// Temporal builds a temporal column.
func Temporal(name string, values []time.Time, valid []bool) *Column {
	return &Column{Name: name, Role: RoleTemporal, times: values, valid: fillValid(len(values), valid)}
}

func fillValid(n int, valid []bool) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = valid == nil || (i < len(valid) && valid[i])
	}
	return out
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.valid) }

// Missing reports whether row i has no value.
func (c *Column) Missing(i int) bool { return !c.valid[i] }

// MissingCount returns the number of missing values.
func (c *Column) MissingCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Float returns row i as a number. Temporal values are Unix seconds;
// categorical values are never numeric.
func (c *Column) Float(i int) (float64, bool) {
	if !c.valid[i] {
		return 0, false
	}
	switch c.Role {
	case RoleNumeric:
		return c.nums[i], true
	case RoleTemporal:
		return float64(c.times[i].UnixNano()) / 1e9, true
	}
	return 0, false
}

// Time returns row i of a temporal column.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.Role != RoleTemporal || !c.valid[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// Label returns row i rendered as a string key.
func (c *Column) Label(i int) (string, bool) {
	if !c.valid[i] {
		return "", false
	}
	switch c.Role {
	case RoleNumeric:
		return FormatNumber(c.nums[i]), true
	case RoleTemporal:
		return FormatTime(c.times[i]), true
	}
	return c.strs[i], true
}

// Value returns row i as a JSON-friendly native value, or nil when missing.
func (c *Column) Value(i int) any {
	if !c.valid[i] {
		return nil
	}
	switch c.Role {
	case RoleNumeric:
		return c.nums[i]
	case RoleTemporal:
		return FormatTime(c.times[i])
	}
	return c.strs[i]
}

// Floats returns the non-missing numeric values in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.valid))
	for i := range c.valid {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// FormatNumber renders integral values without a fractional part.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatTime renders midnight UTC values as dates and everything else as RFC 3339.
func FormatTime(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
