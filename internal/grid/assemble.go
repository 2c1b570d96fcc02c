package grid

import (
	"sort"
	"strings"

	"hcsgrid/pkg/coords"
)

// MissingPolicy places the unspecified value of an axis relative to the
// explicit values observed on it.
type MissingPolicy int

const (
	// MissingFirst sorts sources lacking an axis before all explicit values.
	MissingFirst MissingPolicy = iota
	// MissingLast sorts them after all explicit values.
	MissingLast
)

type options struct {
	missing MissingPolicy
	stacked []coords.Axis
	dense   bool
}

// Option configures Assemble.
type Option func(*options)

// WithMissingAxis sets the unspecified-value placement. Default MissingFirst.
func WithMissingAxis(p MissingPolicy) Option { return func(o *options) { o.missing = p } }

// WithStackedAxes keeps the given axes out of the position tuple; sources
// differing only on them share a cell.
func WithStackedAxes(axes ...coords.Axis) Option {
	return func(o *options) { o.stacked = append(o.stacked, axes...) }
}

// WithDense lays out the full cross product of observed axis values. Tuples
// with no source become empty placeholder cells.
func WithDense() Option { return func(o *options) { o.dense = true } }

// Assemble lays sources out on a grid. Axis order is the fixed priority
// order (row, column, field, plane, channel, timepoint) followed by ad-hoc
// axes in first-seen order; positions are row-major ranks of the distinct
// tuples. A collision fails the whole pass with *DuplicateCoordinateError;
// a path given twice fails it with *DuplicatePathError.
func Assemble(sources []coords.Source, opts ...Option) (*Grid, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if len(sources) == 0 {
		return &Grid{values: map[coords.Axis][]coords.Value{}, byPath: map[string]int{}}, nil
	}
	stacked := make(map[coords.Axis]bool, len(o.stacked))
	for _, a := range o.stacked {
		stacked[a] = true
	}

	all := axisOrder(sources)
	var layout, stack []coords.Axis
	for _, a := range all {
		if stacked[a] {
			stack = append(stack, a)
		} else {
			layout = append(layout, a)
		}
	}

	cmp := valueComparator(o.missing)
	values := make(map[coords.Axis][]coords.Value, len(layout))
	for _, a := range layout {
		values[a] = distinctValues(sources, a, cmp)
	}

	tuples := make([]Tuple, len(sources))
	distinct := make(map[string]Tuple)
	for i, s := range sources {
		t := tupleOf(s.Coords, layout)
		tuples[i] = t
		distinct[tupleKey(t)] = t
	}
	var ordered []Tuple
	if o.dense {
		ordered = crossProduct(layout, values)
	} else {
		ordered = make([]Tuple, 0, len(distinct))
		for _, t := range distinct {
			ordered = append(ordered, t)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return compareTuples(ordered[i], ordered[j], cmp) < 0 })

	g := &Grid{axes: layout, stacked: stack, values: values, cells: make([]Cell, len(ordered)), byPath: make(map[string]int, len(sources))}
	position := make(map[string]int, len(ordered))
	for i, t := range ordered {
		g.cells[i] = Cell{Position: i, Tuple: t}
		position[tupleKey(t)] = i
	}

	occupied := make(map[string]string, len(sources))
	for i, s := range sources {
		if _, seen := g.byPath[s.Path]; seen {
			return nil, &DuplicatePathError{Path: s.Path}
		}
		key := tupleKey(tuples[i])
		slot := key + "\x01" + string(s.Role) + "\x01" + tupleKey(tupleOf(s.Coords, stack))
		if prev, dup := occupied[slot]; dup {
			return nil, &DuplicateCoordinateError{Coordinates: s.Coords.String(), Role: s.Role, First: prev, Second: s.Path}
		}
		occupied[slot] = s.Path
		pos := position[key]
		g.cells[pos].Sources = append(g.cells[pos].Sources, s)
		g.byPath[s.Path] = pos
		g.sources++
	}
	for i := range g.cells {
		sortSources(g.cells[i].Sources, stack, cmp)
	}
	return g, nil
}

func axisOrder(sources []coords.Source) []coords.Axis {
	present := make(map[coords.Axis]bool)
	var adhoc []coords.Axis
	priority := make(map[coords.Axis]bool, len(coords.PriorityAxes))
	for _, a := range coords.PriorityAxes {
		priority[a] = true
	}
	for _, s := range sources {
		for _, a := range s.Coords.Axes() {
			if present[a] {
				continue
			}
			present[a] = true
			if !priority[a] {
				adhoc = append(adhoc, a)
			}
		}
	}
	var out []coords.Axis
	for _, a := range coords.PriorityAxes {
		if present[a] {
			out = append(out, a)
		}
	}
	return append(out, adhoc...)
}

func valueComparator(p MissingPolicy) func(a, b coords.Value) int {
	return func(a, b coords.Value) int {
		au, bu := a.IsUnspecified(), b.IsUnspecified()
		switch {
		case au && bu:
			return 0
		case au:
			if p == MissingLast {
				return 1
			}
			return -1
		case bu:
			if p == MissingLast {
				return -1
			}
			return 1
		}
		return a.Compare(b)
	}
}

func distinctValues(sources []coords.Source, axis coords.Axis, cmp func(a, b coords.Value) int) []coords.Value {
	seen := make(map[string]coords.Value)
	for _, s := range sources {
		v, _ := s.Coords.Get(axis) // zero Value is unspecified
		seen[valueKey(v)] = v
	}
	out := make([]coords.Value, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return cmp(out[i], out[j]) < 0 })
	return out
}

func tupleOf(r coords.Record, axes []coords.Axis) Tuple {
	t := make(Tuple, len(axes))
	for i, a := range axes {
		t[i], _ = r.Get(a)
	}
	return t
}

func valueKey(v coords.Value) string {
	switch v.Kind() {
	case coords.KindInt:
		return "i" + v.String()
	case coords.KindString:
		return "s" + v.String()
	}
	return "u"
}

func tupleKey(t Tuple) string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = valueKey(v)
	}
	return strings.Join(parts, "\x00")
}

func compareTuples(a, b Tuple, cmp func(a, b coords.Value) int) int {
	for i := range a {
		if c := cmp(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func crossProduct(axes []coords.Axis, values map[coords.Axis][]coords.Value) []Tuple {
	out := []Tuple{{}}
	for _, a := range axes {
		next := make([]Tuple, 0, len(out)*len(values[a]))
		for _, prefix := range out {
			for _, v := range values[a] {
				t := make(Tuple, len(prefix), len(prefix)+1)
				copy(t, prefix)
				next = append(next, append(t, v))
			}
		}
		out = next
	}
	return out
}

func sortSources(src []coords.Source, stack []coords.Axis, cmp func(a, b coords.Value) int) {
	sort.SliceStable(src, func(i, j int) bool {
		if src[i].Role != src[j].Role {
			return src[i].Role < src[j].Role
		}
		if c := compareTuples(tupleOf(src[i].Coords, stack), tupleOf(src[j].Coords, stack), cmp); c != 0 {
			return c < 0
		}
		return src[i].Path < src[j].Path
	})
}
