package dataset

import (
	"github.com/aclements/go-moremath/stats"

	"github.com/kmmelissat/analisis-al-instante-api/internal/distribution"
)

// Describe holds descriptive statistics for one numeric column.
type Describe struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"25%"`
	Q50   float64 `json:"50%"`
	Q75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// Summary is the dataset overview returned to clients.
type Summary struct {
	Shape              [2]int              `json:"shape"`
	Columns            []string            `json:"columns"`
	DataTypes          map[string]Role     `json:"data_types"`
	NumericColumns     []string            `json:"numeric_columns"`
	CategoricalColumns []string            `json:"categorical_columns"`
	DatetimeColumns    []string            `json:"datetime_columns"`
	MissingValues      map[string]int      `json:"missing_values"`
	SummaryStats       map[string]Describe `json:"summary_stats"`
}

// Summarize builds the overview of d. Numeric columns with no values are
// left out of SummaryStats.
func Summarize(d *Dataset) Summary {
	p := d.Profile()
	s := Summary{
		Shape:              [2]int{d.Rows(), len(d.cols)},
		Columns:            d.Names(),
		DataTypes:          make(map[string]Role, len(d.cols)),
		NumericColumns:     p.ColumnsByRole(RoleNumeric),
		CategoricalColumns: p.ColumnsByRole(RoleCategorical),
		DatetimeColumns:    p.ColumnsByRole(RoleTemporal),
		MissingValues:      make(map[string]int, len(d.cols)),
		SummaryStats:       map[string]Describe{},
	}
	for _, c := range d.cols {
		s.DataTypes[c.Name] = c.Role
		s.MissingValues[c.Name] = c.MissingCount()
		if c.Role != RoleNumeric {
			continue
		}
		xs := c.Floats()
		if len(xs) == 0 {
			continue
		}
		sorted := distribution.Sorted(xs)
		lo, hi := stats.Bounds(sorted)
		s.SummaryStats[c.Name] = Describe{
			Count: len(xs),
			Mean:  stats.Mean(xs),
			Std:   stats.StdDev(xs),
			Min:   lo,
			Q25:   distribution.Quantile(sorted, 0.25),
			Q50:   distribution.Quantile(sorted, 0.5),
			Q75:   distribution.Quantile(sorted, 0.75),
			Max:   hi,
		}
	}
	return s
}
