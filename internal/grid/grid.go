// Package grid assembles coordinate-tagged sources into a deterministic,
// position-addressable layout.
package grid

import (
	"strings"

	"hcsgrid/pkg/coords"
)

// Tuple holds one value per layout axis, aligned with Grid.Axes.
type Tuple []coords.Value

// String renders the tuple as comma separated values.
func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

// Cell is one grid position and the sources sharing its tuple.
type Cell struct {
	Position int
	Tuple    Tuple
	Sources  []coords.Source
}

// Grid is the result of one assembly pass. It is never mutated after
// Assemble returns; a new pass builds a new Grid.
type Grid struct {
	axes    []coords.Axis
	stacked []coords.Axis
	values  map[coords.Axis][]coords.Value
	cells   []Cell
	byPath  map[string]int
	sources int
}

// Axes returns the layout axes in row-major order.
func (g *Grid) Axes() []coords.Axis {
	out := make([]coords.Axis, len(g.axes))
	copy(out, g.axes)
	return out
}

// Stacked returns the axes that distinguish sources within a cell.
func (g *Grid) Stacked() []coords.Axis {
	out := make([]coords.Axis, len(g.stacked))
	copy(out, g.stacked)
	return out
}

// Values returns the sorted distinct values observed on a layout axis,
// including the unspecified placeholder when some source lacked the axis.
func (g *Grid) Values(axis coords.Axis) []coords.Value {
	vs := g.values[axis]
	out := make([]coords.Value, len(vs))
	copy(out, vs)
	return out
}

// Len is the number of positions.
func (g *Grid) Len() int { return len(g.cells) }

// Cell returns the cell at pos.
func (g *Grid) Cell(pos int) (Cell, bool) {
	if pos < 0 || pos >= len(g.cells) {
		return Cell{}, false
	}
	return g.cells[pos], true
}

// Cells returns every cell ordered by position.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Locate returns the position holding the source at path.
func (g *Grid) Locate(path string) (int, bool) {
	pos, ok := g.byPath[path]
	return pos, ok
}

// SourceCount is the total number of sources across all cells.
func (g *Grid) SourceCount() int { return g.sources }
