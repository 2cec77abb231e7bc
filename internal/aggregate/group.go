package aggregate

import (
	"math"
	"strings"

	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Labels for synthetic groups.
const (
	MissingLabel = "(missing)"
	OtherLabel   = "Other"
)

// Key is one component of a group key.
type Key struct {
	Label string
	// Value is the native output value: a number for numeric keys, the
	// label otherwise.
	Value any
	// Order ranks numeric and temporal keys; NaN for categorical or
	// missing keys.
	Order float64
}

// Group is a set of rows sharing the same key tuple.
type Group struct {
	Keys  []Key
	Value float64
	Rows  int
	// Values holds the group's non-missing values of the value column.
	Values []float64
}

// Label returns the label of the first key.
func (g Group) Label() string { return g.Keys[0].Label }

// KeyValue returns the native value of the first key.
func (g Group) KeyValue() any { return g.Keys[0].Value }

// Options tune grouping.
type Options struct {
	TimeUnit TimeUnit
}

// Partition splits the rows of ds into groups keyed by the given columns in
// first-seen order. Rows with a missing key land in a "(missing)" bucket. No
// reduction happens; Value is zero.
func Partition(ds *dataset.Dataset, keys []string, value string, opts Options) ([]Group, error) {
	keyCols := make([]*dataset.Column, len(keys))
	for i, k := range keys {
		c, ok := ds.Column(k)
		if !ok {
			return nil, domain.ErrUnknownColumn("group key", k)
		}
		keyCols[i] = c
	}
	var valCol *dataset.Column
	if value != "" {
		c, ok := ds.Column(value)
		if !ok {
			return nil, domain.ErrUnknownColumn("value", value)
		}
		valCol = c
	}

	var groups []Group
	index := make(map[string]int)
	parts := make([]string, len(keyCols))
	rowKeys := make([]Key, len(keyCols))
	for row := 0; row < ds.Rows(); row++ {
		for i, c := range keyCols {
			rowKeys[i] = KeyOf(c, row, opts.TimeUnit)
			parts[i] = rowKeys[i].Label
		}
		id := strings.Join(parts, "\x00")
		gi, ok := index[id]
		if !ok {
			gi = len(groups)
			index[id] = gi
			groups = append(groups, Group{Keys: append([]Key(nil), rowKeys...)})
		}
		g := &groups[gi]
		g.Rows++
		if valCol != nil {
			if v, ok := valCol.Float(row); ok {
				g.Values = append(g.Values, v)
			}
		}
	}
	return groups, nil
}

// By groups rows and reduces each group with fn. Count counts rows and
// ignores the value column. Groups whose reduction is undefined are omitted.
func By(ds *dataset.Dataset, keys []string, value string, fn Func, opts Options) ([]Group, error) {
	if fn == Count {
		value = ""
	}
	groups, err := Partition(ds, keys, value, opts)
	if err != nil {
		return nil, err
	}
	out := groups[:0]
	for _, g := range groups {
		if fn == Count {
			g.Value = float64(g.Rows)
			out = append(out, g)
			continue
		}
		v, ok := fn.Apply(g.Values)
		if !ok {
			continue
		}
		g.Value = v
		out = append(out, g)
	}
	return out, nil
}

// KeyOf builds the group key for one row of c.
func KeyOf(c *dataset.Column, row int, unit TimeUnit) Key {
	if c.Missing(row) {
		return Key{Label: MissingLabel, Value: MissingLabel, Order: math.NaN()}
	}
	switch c.Role {
	case dataset.RoleNumeric:
		v, _ := c.Float(row)
		return Key{Label: dataset.FormatNumber(v), Value: v, Order: v}
	case dataset.RoleTemporal:
		t, _ := c.Time(row)
		if unit != NoTimeUnit {
			start, label := unit.Bucket(t)
			return Key{Label: label, Value: label, Order: float64(start.Unix())}
		}
		label := dataset.FormatTime(t)
		return Key{Label: label, Value: label, Order: float64(t.UnixNano()) / 1e9}
	}
	label, _ := c.Label(row)
	return Key{Label: label, Value: label, Order: math.NaN()}
}
