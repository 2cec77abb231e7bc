package aggregate

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortBy selects the group ordering.
type SortBy int

// Orderings. SortNone keeps first-seen order.
const (
	SortNone SortBy = iota
	SortValue
	SortLabel
	// SortKey orders numeric and temporal keys by magnitude and falls back
	// to label collation for everything else.
	SortKey
)

// Sort orders groups in place. The sort is stable, so ties keep first-seen order.
func Sort(groups []Group, by SortBy, desc bool) {
	if by == SortNone {
		return
	}
	cmp := comparer(by)
	sort.SliceStable(groups, func(i, j int) bool {
		if desc {
			return cmp(groups[j], groups[i]) < 0
		}
		return cmp(groups[i], groups[j]) < 0
	})
}

func comparer(by SortBy) func(a, b Group) int {
	coll := NewCollator()
	switch by {
	case SortValue:
		return func(a, b Group) int { return compareFloat(a.Value, b.Value) }
	case SortLabel:
		return func(a, b Group) int { return compareLabels(coll, a.Label(), b.Label()) }
	default:
		return func(a, b Group) int { return CompareKeys(coll, a.Keys[0], b.Keys[0]) }
	}
}

// NewCollator returns the collator used for label ordering.
func NewCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric)
}

// CompareKeys orders ranked keys numerically, puts unranked keys (categorical
// or missing) after ranked ones, and collates labels among unranked keys.
func CompareKeys(coll *collate.Collator, a, b Key) int {
	an, bn := math.IsNaN(a.Order), math.IsNaN(b.Order)
	switch {
	case !an && !bn:
		return compareFloat(a.Order, b.Order)
	case !an:
		return -1
	case !bn:
		return 1
	}
	return compareLabels(coll, a.Label, b.Label)
}

// compareLabels collates labels with the missing bucket last.
func compareLabels(coll *collate.Collator, a, b string) int {
	if a == MissingLabel && b != MissingLabel {
		return 1
	}
	if b == MissingLabel && a != MissingLabel {
		return -1
	}
	return coll.CompareString(a, b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
