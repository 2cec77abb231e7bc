package aggregate

import "math"

// TrimOptions bound the number of groups kept.
type TrimOptions struct {
	// Limit keeps at most this many groups; zero means no limit.
	Limit int
	// Threshold drops groups whose value is below it; nil disables it.
	Threshold *float64
	// Fold sums every excluded group into a trailing "Other" group.
	Fold bool
}

// Trimmed reports what Trim removed.
type Trimmed struct {
	Omitted    int
	OtherValue float64
}

// Trim applies the threshold, then the limit, in the current group order.
// With Fold set, the excluded groups are summed into one "Other" group
// appended last.
func Trim(groups []Group, opts TrimOptions) ([]Group, Trimmed) {
	var kept, excluded []Group
	for _, g := range groups {
		if opts.Threshold != nil && g.Value < *opts.Threshold {
			excluded = append(excluded, g)
			continue
		}
		if opts.Limit > 0 && len(kept) >= opts.Limit {
			excluded = append(excluded, g)
			continue
		}
		kept = append(kept, g)
	}
	info := Trimmed{Omitted: len(excluded)}
	if len(excluded) == 0 {
		return groups, info
	}
	if opts.Fold {
		other := Other(excluded)
		info.OtherValue = other.Value
		kept = append(kept, other)
	}
	return kept, info
}

// Other sums groups into a synthetic "Other" group.
func Other(groups []Group) Group {
	g := Group{Keys: []Key{{Label: OtherLabel, Value: OtherLabel, Order: math.NaN()}}}
	for _, e := range groups {
		g.Value += e.Value
		g.Rows += e.Rows
		g.Values = append(g.Values, e.Values...)
	}
	return g
}
