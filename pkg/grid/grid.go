// Package grid reconstructs dense rectangular heatmap grids from the sparse
// plot list of a field trial study.
//
// Reconstruction first tries a sequential scan that assumes the plots are
// listed row-major and tile a rectangle. When the scan's size check fails the
// grid is rebuilt by coordinate-addressed placement instead. Both paths share
// one cell classification so a plot maps to the same Cell either way.
package grid

import "fmt"

// Path records which reconstruction strategy produced a Grid.
type Path uint8

const (
	PathRectangular Path = iota
	PathIndexed
)

func (p Path) String() string {
	if p == PathIndexed {
		return "indexed"
	}
	return "rectangular"
}

// Grid is a reconstructed rows x columns heatmap. Cells are row-major with
// row 1 first; a Grid is never mutated after construction.
type Grid struct {
	Rows      int
	Columns   int
	Cells     []Cell
	Phenotype string // selected phenotype variable
	TraitName string
	Unit      string
	Path      Path
}

// At returns the cell at the 0-based position (r, c).
func (g *Grid) At(r, c int) Cell {
	if r < 0 || r >= g.Rows || c < 0 || c >= g.Columns {
		panic(fmt.Sprintf("grid: position (%d,%d) outside %dx%d", r, c, g.Rows, g.Columns))
	}
	return g.Cells[r*g.Columns+c]
}

// Values lowers the grid to its flat sentinel-encoded value sequence.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.Cells))
	for i, c := range g.Cells {
		out[i] = c.Float()
	}
	return out
}

// Accessions lowers the grid to its flat accession sequence.
func (g *Grid) Accessions() []string {
	out := make([]string, len(g.Cells))
	for i, c := range g.Cells {
		out[i] = c.AccessionLabel()
	}
	return out
}

// PlotIDs lowers the grid to its flat plot identifier sequence.
func (g *Grid) PlotIDs() []string {
	out := make([]string, len(g.Cells))
	for i, c := range g.Cells {
		out[i] = c.PlotIDLabel()
	}
	return out
}

// Matrix returns the lowered values reshaped to rows, row 1 first.
func (g *Grid) Matrix() [][]float64 {
	values := g.Values()
	m := make([][]float64, g.Rows)
	for r := range m {
		m[r] = values[r*g.Columns : (r+1)*g.Columns]
	}
	return m
}

// Count returns how many cells hold each kind.
func (g *Grid) Count() map[Kind]int {
	counts := make(map[Kind]int, 4)
	for _, c := range g.Cells {
		counts[c.Kind]++
	}
	return counts
}
