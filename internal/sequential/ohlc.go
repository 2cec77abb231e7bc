package sequential

import (
	"sort"

	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Candle is one OHLC bucket.
type Candle struct {
	X     any
	Label string
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// PriceColumns names the OHLC inputs. Either Price or all four of
// Open/High/Low/Close are set.
type PriceColumns struct {
	Price string
	Open  string
	High  string
	Low   string
	Close string
}

type bucket struct {
	key  aggregate.Key
	rows []int
}

// Candles collapses rows sharing an x bucket into one candle, ordered by x.
// With explicit columns a candle takes the first open, highest high, lowest
// low and last close; with a single price column the same is derived from
// the price series. Buckets without any price are skipped.
func Candles(ds *dataset.Dataset, x string, cols PriceColumns, unit aggregate.TimeUnit) ([]Candle, error) {
	xc, ok := ds.Column(x)
	if !ok {
		return nil, domain.ErrUnknownColumn("x_axis", x)
	}
	lookup := func(field, name string) (*dataset.Column, error) {
		c, ok := ds.Column(name)
		if !ok {
			return nil, domain.ErrUnknownColumn(field, name)
		}
		return c, nil
	}

	var open, high, low, closeCol *dataset.Column
	var err error
	if cols.Price != "" {
		if open, err = lookup("y_axis", cols.Price); err != nil {
			return nil, err
		}
		high, low, closeCol = open, open, open
	} else {
		if open, err = lookup("open", cols.Open); err != nil {
			return nil, err
		}
		if high, err = lookup("high", cols.High); err != nil {
			return nil, err
		}
		if low, err = lookup("low", cols.Low); err != nil {
			return nil, err
		}
		if closeCol, err = lookup("close", cols.Close); err != nil {
			return nil, err
		}
	}

	var buckets []*bucket
	index := map[string]*bucket{}
	for row := 0; row < ds.Rows(); row++ {
		k := aggregate.KeyOf(xc, row, unit)
		b, ok := index[k.Label]
		if !ok {
			b = &bucket{key: k}
			index[k.Label] = b
			buckets = append(buckets, b)
		}
		b.rows = append(b.rows, row)
	}
	coll := aggregate.NewCollator()
	sort.SliceStable(buckets, func(i, j int) bool {
		return aggregate.CompareKeys(coll, buckets[i].key, buckets[j].key) < 0
	})

	candles := make([]Candle, 0, len(buckets))
	for _, b := range buckets {
		c := Candle{X: b.key.Value, Label: b.key.Label}
		var haveOpen, haveHigh, haveLow, haveClose bool
		for _, row := range b.rows {
			if v, ok := open.Float(row); ok && !haveOpen {
				c.Open, haveOpen = v, true
			}
			if v, ok := high.Float(row); ok && (!haveHigh || v > c.High) {
				c.High, haveHigh = v, true
			}
			if v, ok := low.Float(row); ok && (!haveLow || v < c.Low) {
				c.Low, haveLow = v, true
			}
			if v, ok := closeCol.Float(row); ok {
				c.Close, haveClose = v, true
			}
		}
		if haveOpen && haveHigh && haveLow && haveClose {
			candles = append(candles, c)
		}
	}
	return candles, nil
}
