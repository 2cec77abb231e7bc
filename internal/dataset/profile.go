package dataset

import "math"

const (
	maxDiscreteCardinality = 20
	maxDiscreteRatio       = 0.5
)

// ColumnProfile describes one column as seen by the chart engine.
type ColumnProfile struct {
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Count    int    `json:"count"`
	Missing  int    `json:"missing"`
	Distinct int    `json:"distinct"`
	// Discrete is true for categorical columns and for integral numeric
	// columns with few distinct values.
	Discrete bool `json:"discrete"`
	// Sequential is true for temporal columns and for numeric columns whose
	// values never decrease in row order.
	Sequential bool `json:"sequential"`
}

// Profile is the per-dataset column classification.
type Profile struct {
	Columns []ColumnProfile
	byName  map[string]int
}

// Column returns the profile for the named column.
func (p *Profile) Column(name string) (ColumnProfile, bool) {
	i, ok := p.byName[name]
	if !ok {
		return ColumnProfile{}, false
	}
	return p.Columns[i], true
}

// NumericColumns lists numeric columns in dataset order.
func (p *Profile) NumericColumns() []string {
	var out []string
	for _, c := range p.Columns {
		if c.Role == RoleNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// ColumnsByRole lists the names of columns with the given role.
func (p *Profile) ColumnsByRole(role Role) []string {
	out := []string{}
	for _, c := range p.Columns {
		if c.Role == role {
			out = append(out, c.Name)
		}
	}
	return out
}

func classify(d *Dataset) *Profile {
	p := &Profile{byName: make(map[string]int, len(d.cols))}
	for i, c := range d.cols {
		p.byName[c.Name] = i
		p.Columns = append(p.Columns, profileColumn(c))
	}
	return p
}

func profileColumn(c *Column) ColumnProfile {
	cp := ColumnProfile{Name: c.Name, Role: c.Role}
	distinct := make(map[string]struct{})
	integral := true
	monotonic := true
	prev, havePrev := 0.0, false

	for i := 0; i < c.Len(); i++ {
		label, ok := c.Label(i)
		if !ok {
			cp.Missing++
			continue
		}
		cp.Count++
		distinct[label] = struct{}{}
		if v, ok := c.Float(i); ok {
			if v != math.Trunc(v) {
				integral = false
			}
			if havePrev && v < prev {
				monotonic = false
			}
			prev, havePrev = v, true
		}
	}
	cp.Distinct = len(distinct)

	switch c.Role {
	case RoleCategorical:
		cp.Discrete = true
	case RoleNumeric:
		cp.Discrete = integral && cp.Distinct <= maxDiscreteCardinality &&
			float64(cp.Distinct) <= maxDiscreteRatio*float64(c.Len())
		cp.Sequential = monotonic && cp.Count > 0
	case RoleTemporal:
		cp.Sequential = true
	}
	return cp
}
