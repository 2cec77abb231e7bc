package dataset

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

func TestNew_RejectsMismatchedLengths(t *testing.T) {
	_, err := New(
		Categorical("a", []string{"x", "y"}, nil),
		Numeric("b", []float64{1}, nil),
	)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, `"b"`)
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	_, err := New(
		Categorical("a", []string{"x"}, nil),
		Numeric("a", []float64{1}, nil),
	)
	require.Error(t, err)
}

func TestNumeric_NaNIsMissing(t *testing.T) {
	c := Numeric("v", []float64{1, nan(), 3}, nil)
	assert.True(t, c.Missing(1))
	assert.Equal(t, []float64{1, 3}, c.Floats())
	assert.Equal(t, 1, c.MissingCount())
}

func TestFromDocument_YAML(t *testing.T) {
	doc, err := DecodeDocument([]byte(`
columns:
  - name: region
    role: categorical
    values: [North, South, null]
  - name: amt
    role: numeric
    values: [100, 25.5, 7]
  - name: day
    role: temporal
    values: ["2024-01-01", "2024-01-02T10:00:00Z", null]
`))
	require.NoError(t, err)

	ds, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, []string{"region", "amt", "day"}, ds.Names())

	region, ok := ds.Column("region")
	require.True(t, ok)
	assert.True(t, region.Missing(2))
	assert.Nil(t, region.Value(2))

	amt, _ := ds.Column("amt")
	assert.Equal(t, 25.5, amt.Value(1))

	day, _ := ds.Column("day")
	assert.Equal(t, "2024-01-01", day.Value(0))
	assert.Equal(t, "2024-01-02T10:00:00Z", day.Value(1))
}

func TestFromDocument_JSONTypeMismatch(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"columns":[{"name":"amt","role":"numeric","values":[1,"two"]}]}`))
	require.NoError(t, err)

	_, err = FromDocument(doc)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, "amt")
}

func TestFromDocument_UnknownRole(t *testing.T) {
	_, err := FromDocument(Document{Columns: []DocumentColumn{{Name: "a", Role: "blob", Values: []any{"x"}}}})
	require.Error(t, err)
}

func TestProfile_Classification(t *testing.T) {
	ds, err := New(
		Categorical("cat", []string{"a", "b", "a", "c"}, nil),
		Numeric("year", []float64{2020, 2021, 2022, 2023}, nil),
		Numeric("score", []float64{1, 1, 2, 1}, nil),
		Numeric("noise", []float64{3.5, 1.2, 9.9, 0.1}, nil),
		Temporal("ts", []time.Time{time.Unix(0, 0), time.Unix(10, 0), time.Unix(5, 0), time.Unix(1, 0)}, nil),
	)
	require.NoError(t, err)

	p := ds.Profile()
	assert.Same(t, p, ds.Profile(), "profile is computed once")

	cat, _ := p.Column("cat")
	assert.True(t, cat.Discrete)
	assert.Equal(t, 3, cat.Distinct)

	year, _ := p.Column("year")
	assert.True(t, year.Sequential)
	assert.False(t, year.Discrete)

	score, _ := p.Column("score")
	assert.True(t, score.Discrete)
	assert.False(t, score.Sequential)

	noise, _ := p.Column("noise")
	assert.False(t, noise.Discrete)

	ts, _ := p.Column("ts")
	assert.True(t, ts.Sequential)

	assert.Equal(t, []string{"year", "score", "noise"}, p.NumericColumns())
}

func TestSummarize(t *testing.T) {
	ds, err := New(
		Categorical("region", []string{"N", "S", "N", "E"}, []bool{true, true, true, false}),
		Numeric("amt", []float64{1, 2, 3, 4}, nil),
	)
	require.NoError(t, err)

	s := Summarize(ds)
	assert.Equal(t, [2]int{4, 2}, s.Shape)
	assert.Equal(t, []string{"amt"}, s.NumericColumns)
	assert.Equal(t, []string{"region"}, s.CategoricalColumns)
	assert.Empty(t, s.DatetimeColumns)
	assert.Equal(t, 1, s.MissingValues["region"])

	d := s.SummaryStats["amt"]
	assert.Equal(t, 4, d.Count)
	assert.InDelta(t, 2.5, d.Mean, 1e-12)
	assert.InDelta(t, 1.75, d.Q25, 1e-12)
	assert.InDelta(t, 2.5, d.Q50, 1e-12)
	assert.InDelta(t, 1.2909944, d.Std, 1e-6)
}

func TestFromArrow(t *testing.T) {
	alloc := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "region", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "amt", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "units", Type: arrow.PrimitiveTypes.Int64},
	}, nil)

	rb := array.NewRecordBuilder(alloc, schema)
	defer rb.Release()
	rb.Field(0).(*array.StringBuilder).AppendValues([]string{"North", "South", ""}, []bool{true, true, false})
	rb.Field(1).(*array.Float64Builder).AppendValues([]float64{100, 0, 50}, []bool{true, false, true})
	rb.Field(2).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	rec := rb.NewRecord()
	defer rec.Release()

	ds, err := FromArrow(rec)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Rows())

	region, _ := ds.Column("region")
	assert.Equal(t, RoleCategorical, region.Role)
	assert.True(t, region.Missing(2))

	amt, _ := ds.Column("amt")
	assert.Equal(t, RoleNumeric, amt.Role)
	assert.Equal(t, []float64{100, 50}, amt.Floats())

	units, _ := ds.Column("units")
	assert.Equal(t, []float64{1, 2, 3}, units.Floats())
}

func TestReadArrowStream_ConcatenatesBatches(t *testing.T) {
	alloc := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "region", Type: arrow.BinaryTypes.String},
		{Name: "amt", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(alloc))
	for _, batch := range []struct {
		regions []string
		amts    []float64
		valid   []bool
	}{
		{[]string{"North", "South"}, []float64{100, 50}, nil},
		{[]string{"North"}, []float64{0}, []bool{false}},
	} {
		rb := array.NewRecordBuilder(alloc, schema)
		rb.Field(0).(*array.StringBuilder).AppendValues(batch.regions, nil)
		rb.Field(1).(*array.Float64Builder).AppendValues(batch.amts, batch.valid)
		rec := rb.NewRecord()
		require.NoError(t, w.Write(rec))
		rec.Release()
		rb.Release()
	}
	require.NoError(t, w.Close())

	ds, err := ReadArrowStream(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Rows())

	amt, _ := ds.Column("amt")
	assert.Equal(t, []float64{100, 50}, amt.Floats())
	assert.True(t, amt.Missing(2))
}

func TestReadArrowStream_RejectsGarbage(t *testing.T) {
	_, err := ReadArrowStream(bytes.NewReader([]byte("not arrow")))
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func nan() float64 { return math.NaN() }
