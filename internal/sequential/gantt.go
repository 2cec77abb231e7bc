package sequential

import (
	"time"

	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Task is one timeline bar. Temporal bounds are RFC 3339 strings and the
// duration is in seconds; numeric bounds are passed through.
type Task struct {
	Name     any
	Start    any
	End      any
	Duration float64
}

// Tasks lists one task per row in dataset order. Rows with a missing bound
// or an end before the start are skipped and counted.
func Tasks(ds *dataset.Dataset, task, start, end string) ([]Task, int, error) {
	tc, ok := ds.Column(task)
	if !ok {
		return nil, 0, domain.ErrUnknownColumn("x_axis", task)
	}
	sc, ok := ds.Column(start)
	if !ok {
		return nil, 0, domain.ErrUnknownColumn("start", start)
	}
	ec, ok := ds.Column(end)
	if !ok {
		return nil, 0, domain.ErrUnknownColumn("end", end)
	}

	var tasks []Task
	skipped := 0
	for row := 0; row < ds.Rows(); row++ {
		s, sok := sc.Float(row)
		e, eok := ec.Float(row)
		if !sok || !eok || e < s {
			skipped++
			continue
		}
		name := tc.Value(row)
		if name == nil {
			name = aggregate.MissingLabel
		}
		tasks = append(tasks, Task{
			Name:     name,
			Start:    bound(sc, row, s),
			End:      bound(ec, row, e),
			Duration: e - s,
		})
	}
	return tasks, skipped, nil
}

func bound(c *dataset.Column, row int, v float64) any {
	if t, ok := c.Time(row); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return v
}
