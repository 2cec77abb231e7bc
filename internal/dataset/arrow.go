package dataset

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// FromArrow converts an Arrow record batch into a Dataset. Column roles follow
// the Arrow schema types; Arrow nulls become missing values.
func FromArrow(rec arrow.Record) (*Dataset, error) {
	schema := rec.Schema()
	cols := make([]*Column, 0, int(rec.NumCols()))
	for i := 0; i < int(rec.NumCols()); i++ {
		name := schema.Field(i).Name
		c, err := arrowColumn(name, rec.Column(i))
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

type nullable interface {
	Len() int
	IsNull(i int) bool
}

func numericFrom[A nullable](name string, arr A, get func(A, int) float64) *Column {
	n := arr.Len()
	nums := make([]float64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		if arr.IsNull(i) {
			continue
		}
		nums[i], valid[i] = get(arr, i), true
	}
	return Numeric(name, nums, valid)
}

func temporalFrom[A nullable](name string, arr A, get func(A, int) time.Time) *Column {
	n := arr.Len()
	times := make([]time.Time, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		if arr.IsNull(i) {
			continue
		}
		times[i], valid[i] = get(arr, i), true
	}
	return Temporal(name, times, valid)
}

func categoricalFrom[A nullable](name string, arr A, get func(A, int) string) *Column {
	n := arr.Len()
	strs := make([]string, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		if arr.IsNull(i) {
			continue
		}
		strs[i], valid[i] = get(arr, i), true
	}
	return Categorical(name, strs, valid)
}

func arrowColumn(name string, col arrow.Array) (*Column, error) {
	switch a := col.(type) {
	case *array.String:
		return categoricalFrom(name, a, func(a *array.String, i int) string { return a.Value(i) }), nil
	case *array.LargeString:
		return categoricalFrom(name, a, func(a *array.LargeString, i int) string { return a.Value(i) }), nil
	case *array.Boolean:
		return categoricalFrom(name, a, func(a *array.Boolean, i int) string { return strconv.FormatBool(a.Value(i)) }), nil
	case *array.Float64:
		return numericFrom(name, a, func(a *array.Float64, i int) float64 { return a.Value(i) }), nil
	case *array.Float32:
		return numericFrom(name, a, func(a *array.Float32, i int) float64 { return float64(a.Value(i)) }), nil
	case *array.Int64:
		return numericFrom(name, a, func(a *array.Int64, i int) float64 { return float64(a.Value(i)) }), nil
	case *array.Int32:
		return numericFrom(name, a, func(a *array.Int32, i int) float64 { return float64(a.Value(i)) }), nil
	case *array.Int16:
		return numericFrom(name, a, func(a *array.Int16, i int) float64 { return float64(a.Value(i)) }), nil
	case *array.Int8:
		return numericFrom(name, a, func(a *array.Int8, i int) float64 { return float64(a.Value(i)) }), nil
	case *array.Uint64:
		return numericFrom(name, a, func(a *array.Uint64, i int) float64 { return float64(a.Value(i)) }), nil
	case *array.Uint32:
		return numericFrom(name, a, func(a *array.Uint32, i int) float64 { return float64(a.Value(i)) }), nil
	case *array.Uint16:
		return numericFrom(name, a, func(a *array.Uint16, i int) float64 { return float64(a.Value(i)) }), nil
	case *array.Uint8:
		return numericFrom(name, a, func(a *array.Uint8, i int) float64 { return float64(a.Value(i)) }), nil
	case *array.Date32:
		return temporalFrom(name, a, func(a *array.Date32, i int) time.Time { return a.Value(i).ToTime() }), nil
	case *array.Date64:
		return temporalFrom(name, a, func(a *array.Date64, i int) time.Time { return a.Value(i).ToTime() }), nil
	case *array.Timestamp:
		toTime, err := a.DataType().(*arrow.TimestampType).GetToTimeFunc()
		if err != nil {
			return nil, domain.ErrValidation("column %q: %v", name, err)
		}
		return temporalFrom(name, a, func(a *array.Timestamp, i int) time.Time { return toTime(a.Value(i)) }), nil
	}
	return nil, domain.ErrValidation("column %q: unsupported arrow type %s", name, fmt.Sprint(col.DataType()))
}

// ReadArrowStream decodes an Arrow IPC stream. Record batches are
// concatenated column by column before conversion.
func ReadArrowStream(r io.Reader) (*Dataset, error) {
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, domain.ErrValidation("invalid arrow stream: %v", err)
	}
	defer rdr.Release()

	schema := rdr.Schema()
	var batches []arrow.Record
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()
	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		batches = append(batches, rec)
	}
	if err := rdr.Err(); err != nil {
		return nil, domain.ErrValidation("invalid arrow stream: %v", err)
	}
	if len(batches) == 1 {
		return FromArrow(batches[0])
	}

	cols := make([]arrow.Array, schema.NumFields())
	var rows int64
	for _, b := range batches {
		rows += b.NumRows()
	}
	for i := range cols {
		chunks := make([]arrow.Array, len(batches))
		for j, b := range batches {
			chunks[j] = b.Column(i)
		}
		if len(chunks) == 0 {
			bld := array.NewBuilder(memory.DefaultAllocator, schema.Field(i).Type)
			cols[i] = bld.NewArray()
			bld.Release()
			continue
		}
		merged, err := array.Concatenate(chunks, memory.DefaultAllocator)
		if err != nil {
			return nil, domain.ErrValidation("column %q: %v", schema.Field(i).Name, err)
		}
		cols[i] = merged
	}
	rec := array.NewRecord(schema, cols, rows)
	for _, c := range cols {
		c.Release()
	}
	defer rec.Release()
	return FromArrow(rec)
}
