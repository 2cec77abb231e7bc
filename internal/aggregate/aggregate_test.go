package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
)

func salesDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.Categorical("region", []string{"North", "South", "North", "", "East"}, []bool{true, true, true, false, true}),
		dataset.Categorical("product", []string{"a", "a", "b", "b", "a"}, nil),
		dataset.Numeric("amt", []float64{100, 50, 25, 10, 0}, []bool{true, true, true, true, false}),
	)
	require.NoError(t, err)
	return ds
}

func labels(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Label()
	}
	return out
}

func values(groups []Group) []float64 {
	out := make([]float64, len(groups))
	for i, g := range groups {
		out[i] = g.Value
	}
	return out
}

func TestBy_SumKeepsFirstSeenOrderAndMissingBucket(t *testing.T) {
	groups, err := By(salesDataset(t), []string{"region"}, "amt", Sum, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"North", "South", MissingLabel, "East"}, labels(groups))
	assert.Equal(t, []float64{125, 50, 10, 0}, values(groups))
}

func TestBy_CountIgnoresValueColumn(t *testing.T) {
	groups, err := By(salesDataset(t), []string{"region"}, "amt", Count, Options{})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 1, 1, 1}, values(groups))
}

func TestBy_MeanOmitsEmptyGroups(t *testing.T) {
	groups, err := By(salesDataset(t), []string{"region"}, "amt", Mean, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"North", "South", MissingLabel}, labels(groups))
	assert.InDelta(t, 62.5, groups[0].Value, 1e-12)
}

func TestBy_StdNeedsTwoValues(t *testing.T) {
	groups, err := By(salesDataset(t), []string{"region"}, "amt", Std, Options{})
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, "North", groups[0].Label())
}

func TestBy_TwoKeys(t *testing.T) {
	groups, err := By(salesDataset(t), []string{"region", "product"}, "amt", Sum, Options{})
	require.NoError(t, err)

	require.Len(t, groups, 5)
	assert.Equal(t, "a", groups[0].Keys[1].Label)
	assert.Equal(t, "North", groups[2].Label())
	assert.Equal(t, "b", groups[2].Keys[1].Label)
}

func TestBy_UnknownColumn(t *testing.T) {
	_, err := By(salesDataset(t), []string{"nope"}, "", Count, Options{})
	require.Error(t, err)
}

func TestBy_TimeUnitBuckets(t *testing.T) {
	day := func(s string) time.Time {
		v, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return v
	}
	ds, err := dataset.New(
		dataset.Temporal("when", []time.Time{day("2024-01-05"), day("2024-01-28"), day("2024-02-02"), day("2024-04-10")}, nil),
		dataset.Numeric("v", []float64{1, 2, 3, 4}, nil),
	)
	require.NoError(t, err)

	groups, err := By(ds, []string{"when"}, "v", Sum, Options{TimeUnit: Month})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-04"}, labels(groups))
	assert.Equal(t, []float64{3, 3, 4}, values(groups))

	groups, err = By(ds, []string{"when"}, "v", Sum, Options{TimeUnit: Quarter})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-Q1", "2024-Q2"}, labels(groups))
}

func TestTimeUnit_WeekStartsMonday(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	start, label := Week.Bucket(sunday)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, "2024-03-04", label)
}

func TestSort(t *testing.T) {
	groups, err := By(salesDataset(t), []string{"region"}, "amt", Sum, Options{})
	require.NoError(t, err)

	t.Run("value desc", func(t *testing.T) {
		g := append([]Group(nil), groups...)
		Sort(g, SortValue, true)
		assert.Equal(t, []float64{125, 50, 10, 0}, values(g))
	})

	t.Run("label asc", func(t *testing.T) {
		g := append([]Group(nil), groups...)
		Sort(g, SortLabel, false)
		assert.Equal(t, []string{"East", "North", "South", MissingLabel}, labels(g))
	})

	t.Run("key puts missing last", func(t *testing.T) {
		g := append([]Group(nil), groups...)
		Sort(g, SortKey, false)
		assert.Equal(t, []string{"East", "North", "South", MissingLabel}, labels(g))
	})
}

func TestSort_NumericKeys(t *testing.T) {
	ds, err := dataset.New(dataset.Numeric("n", []float64{10, 2, 33, 2}, nil))
	require.NoError(t, err)
	groups, err := By(ds, []string{"n"}, "", Count, Options{})
	require.NoError(t, err)

	Sort(groups, SortKey, false)
	assert.Equal(t, []string{"2", "10", "33"}, labels(groups))
	assert.Equal(t, 2.0, groups[0].KeyValue())
}

func TestTrim_FoldsIntoOther(t *testing.T) {
	groups := []Group{
		{Keys: []Key{{Label: "a"}}, Value: 40},
		{Keys: []Key{{Label: "b"}}, Value: 30},
		{Keys: []Key{{Label: "c"}}, Value: 20},
		{Keys: []Key{{Label: "d"}}, Value: 10},
	}

	out, info := Trim(groups, TrimOptions{Limit: 2, Fold: true})
	require.Len(t, out, 3)
	assert.Equal(t, OtherLabel, out[2].Label())
	assert.InDelta(t, 30.0, out[2].Value, 1e-12)
	assert.Equal(t, 2, info.Omitted)

	out, info = Trim(groups, TrimOptions{Limit: 2})
	assert.Len(t, out, 2)
	assert.Equal(t, 2, info.Omitted)

	floor := 25.0
	out, _ = Trim(groups, TrimOptions{Threshold: &floor, Fold: true})
	assert.Equal(t, []string{"a", "b", OtherLabel}, labels(out))

	out, info = Trim(groups, TrimOptions{Limit: 10})
	assert.Len(t, out, 4)
	assert.Zero(t, info.Omitted)
}

func TestParseFunc(t *testing.T) {
	f, ok := ParseFunc("AVG")
	require.True(t, ok)
	assert.Equal(t, Mean, f)

	_, ok = ParseFunc("mode")
	assert.False(t, ok)
}

func TestFuncApply(t *testing.T) {
	xs := []float64{4, 1, 3, 2}
	tests := []struct {
		fn   Func
		want float64
	}{
		{Count, 4},
		{Sum, 10},
		{Mean, 2.5},
		{Median, 2.5},
		{Min, 1},
		{Max, 4},
		{Var, 5.0 / 3.0},
	}
	for _, tc := range tests {
		t.Run(string(tc.fn), func(t *testing.T) {
			got, ok := tc.fn.Apply(xs)
			require.True(t, ok)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}

	v, ok := Sum.Apply(nil)
	assert.True(t, ok)
	assert.Zero(t, v)
	_, ok = Mean.Apply(nil)
	assert.False(t, ok)
}
