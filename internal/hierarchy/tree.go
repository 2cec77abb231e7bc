// Package hierarchy builds N-level aggregated trees for treemap and sunburst charts.
package hierarchy

import (
	"sort"

	"github.com/kmmelissat/analisis-al-instante-api/internal/aggregate"
	"github.com/kmmelissat/analisis-al-instante-api/internal/dataset"
)

// Node is one level of the tree. Value aggregates every descendant row.
type Node struct {
	Name       string
	Value      float64
	Percentage float64
	Children   []*Node

	rows   int
	values []float64
	index  map[string]*Node
}

// Options tune ordering. The default orders children by descending value.
type Options struct {
	Order aggregate.SortBy
	Asc   bool
}

// Build groups ds by levels (outermost first) and returns the top-level nodes.
// Nodes whose aggregate is undefined are dropped with their subtree.
func Build(ds *dataset.Dataset, levels []string, value string, fn aggregate.Func, opts Options) ([]*Node, error) {
	if fn == aggregate.Count {
		value = ""
	}
	leaves, err := aggregate.Partition(ds, levels, value, aggregate.Options{})
	if err != nil {
		return nil, err
	}
	root := &Node{index: map[string]*Node{}}
	for _, g := range leaves {
		n := root
		for _, k := range g.Keys {
			child, ok := n.index[k.Label]
			if !ok {
				child = &Node{Name: k.Label, index: map[string]*Node{}}
				n.index[k.Label] = child
				n.Children = append(n.Children, child)
			}
			child.rows += g.Rows
			child.values = append(child.values, g.Values...)
			n = child
		}
	}
	finish(root, fn, opts)
	total := 0.0
	for _, c := range root.Children {
		total += c.Value
	}
	setPercentages(root.Children, total)
	return root.Children, nil
}

func finish(n *Node, fn aggregate.Func, opts Options) {
	kept := n.Children[:0]
	for _, c := range n.Children {
		if fn == aggregate.Count {
			c.Value = float64(c.rows)
		} else {
			v, ok := fn.Apply(c.values)
			if !ok {
				continue
			}
			c.Value = v
		}
		finish(c, fn, opts)
		c.values, c.index = nil, nil
		kept = append(kept, c)
	}
	n.Children = kept
	order(n.Children, opts)
}

func order(nodes []*Node, opts Options) {
	coll := aggregate.NewCollator()
	switch opts.Order {
	case aggregate.SortLabel, aggregate.SortKey:
		sort.SliceStable(nodes, func(i, j int) bool {
			c := coll.CompareString(nodes[i].Name, nodes[j].Name)
			if opts.Asc {
				return c < 0
			}
			return c > 0
		})
	default:
		sort.SliceStable(nodes, func(i, j int) bool {
			if opts.Asc {
				return nodes[i].Value < nodes[j].Value
			}
			return nodes[i].Value > nodes[j].Value
		})
	}
}

func setPercentages(nodes []*Node, total float64) {
	for _, n := range nodes {
		if total != 0 {
			n.Percentage = n.Value / total * 100
		}
		setPercentages(n.Children, n.Value)
	}
}

// Depth returns the number of levels below and including nodes.
func Depth(nodes []*Node) int {
	d := 0
	for _, n := range nodes {
		if cd := 1 + Depth(n.Children); cd > d {
			d = cd
		}
	}
	return d
}
