package dataset

import (
	"sync"

	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

// Dataset is an immutable table of equally sized columns. It is safe for
// concurrent readers.
type Dataset struct {
	cols  []*Column
	index map[string]int
	rows  int

	profileOnce sync.Once
	profile     *Profile
}

// New validates and assembles columns into a Dataset.
func New(cols ...*Column) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil || c.Name == "" {
			return nil, domain.ErrValidation("column %d has no name", i)
		}
		if _, dup := d.index[c.Name]; dup {
			return nil, domain.ErrValidation("duplicate column %q", c.Name)
		}
		if i == 0 {
			d.rows = c.Len()
		} else if c.Len() != d.rows {
			return nil, domain.ErrValidation("column %q has %d rows, expected %d", c.Name, c.Len(), d.rows)
		}
		d.index[c.Name] = i
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int { return d.rows }

// Columns returns the columns in declaration order.
func (d *Dataset) Columns() []*Column { return d.cols }

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Names returns the column names in declaration order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Profile returns the column classification, computing it on first use.
func (d *Dataset) Profile() *Profile {
	d.profileOnce.Do(func() {
		d.profile = classify(d)
	})
	return d.profile
}
