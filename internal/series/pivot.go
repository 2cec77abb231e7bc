// Package series pivots grouped data into one aligned series per group value.
package series

import (
	"sort"

	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
)

// Mode selects how absent (x, series) combinations are handled.
type Mode int

// Pivot modes.
const (
	// Grouped leaves absent combinations out of the series.
	Grouped Mode = iota
	// Stacked fills absent combinations with zero and records running
	// start/end offsets per x position.
	Stacked
)

// Point is one (x, y) observation of a series.
type Point struct {
	X     any
	Label string
	Y     float64
	Start float64
	End   float64
}

// Series is the ordered points for one group value.
type Series struct {
	Name   string
	Points []Point
}

// Result is a pivot table with a shared x order.
type Result struct {
	Categories []aggregate.Key
	Series     []Series
	// Totals holds the pre-normalization sum per category.
	Totals []float64
}

// Options tune the pivot.
type Options struct {
	Mode     Mode
	Func     aggregate.Func
	TimeUnit aggregate.TimeUnit
	// Order sorts the shared x categories; SortValue orders by category total.
	Order aggregate.SortBy
	Desc  bool
	// Normalize rescales each stacked x position to sum to 100.
	Normalize bool
}

// Pivot groups ds by (x, by), reduces y with opts.Func and aligns every series
// to the union of x categories.
func Pivot(ds *dataset.Dataset, x, y, by string, opts Options) (Result, error) {
	groups, err := aggregate.By(ds, []string{x, by}, y, opts.Func, aggregate.Options{TimeUnit: opts.TimeUnit})
	if err != nil {
		return Result{}, err
	}

	var res Result
	catIndex := map[string]int{}
	var seriesNames []string
	seriesIndex := map[string]int{}
	cells := map[[2]int]float64{}
	for _, g := range groups {
		xk, sk := g.Keys[0], g.Keys[1]
		ci, ok := catIndex[xk.Label]
		if !ok {
			ci = len(res.Categories)
			catIndex[xk.Label] = ci
			res.Categories = append(res.Categories, xk)
		}
		si, ok := seriesIndex[sk.Label]
		if !ok {
			si = len(seriesNames)
			seriesIndex[sk.Label] = si
			seriesNames = append(seriesNames, sk.Label)
		}
		cells[[2]int{ci, si}] = g.Value
	}

	totals := make([]float64, len(res.Categories))
	for k, v := range cells {
		totals[k[0]] += v
	}

	order := make([]int, len(res.Categories))
	for i := range order {
		order[i] = i
	}
	if opts.Order != aggregate.SortNone {
		coll := aggregate.NewCollator()
		sort.SliceStable(order, func(i, j int) bool {
			a, b := order[i], order[j]
			if opts.Desc {
				a, b = b, a
			}
			switch opts.Order {
			case aggregate.SortValue:
				return totals[a] < totals[b]
			case aggregate.SortLabel:
				return coll.CompareString(res.Categories[a].Label, res.Categories[b].Label) < 0
			}
			return aggregate.CompareKeys(coll, res.Categories[a], res.Categories[b]) < 0
		})
	}

	cats := make([]aggregate.Key, len(order))
	res.Totals = make([]float64, len(order))
	for pos, ci := range order {
		cats[pos] = res.Categories[ci]
		res.Totals[pos] = totals[ci]
	}
	res.Categories = cats

	res.Series = make([]Series, len(seriesNames))
	for si, name := range seriesNames {
		res.Series[si].Name = name
	}
	offsets := make([]float64, len(order))
	for si := range seriesNames {
		for pos, ci := range order {
			v, present := cells[[2]int{ci, si}]
			if !present && opts.Mode == Grouped {
				continue
			}
			if opts.Mode == Stacked && opts.Normalize {
				if res.Totals[pos] != 0 {
					v = v / res.Totals[pos] * 100
				} else {
					v = 0
				}
			}
			p := Point{X: res.Categories[pos].Value, Label: res.Categories[pos].Label, Y: v}
			if opts.Mode == Stacked {
				p.Start = offsets[pos]
				p.End = offsets[pos] + v
				offsets[pos] = p.End
			}
			res.Series[si].Points = append(res.Series[si].Points, p)
		}
	}
	return res, nil
}
