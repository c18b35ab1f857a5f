// Package render draws reconstructed study grids as heatmaps.
//
// Every adapter consumes a Heatmap: sentinel-encoded values (NaN for
// discarded or blank plots, +Inf where the phenotype was not measured), the
// parallel accession labels, a title, a unit and a colormap name. Adapters
// scale colours over the finite values only, draw not-applicable and
// discarded cells in their own styles, and put row 1 at the bottom.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/vanderheijden86/plotmap/pkg/grid"
)

// Errors returned for unusable adapter input.
var (
	ErrEmptyGrid         = errors.New("grid has no cells")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Labels used for special cells in hover text and tables.
const (
	LabelNotApplicable = "N/A"
	LabelDiscarded     = "Discarded"
)

// DefaultNAColor paints cells where the phenotype was not measured.
const DefaultNAColor = "#3b3153"

// Heatmap is the input shared by every rendering adapter.
type Heatmap struct {
	Rows       int
	Columns    int
	Values     []float64 // row-major, row 1 first
	Accessions []string  // parallel to Values; may be nil
	PlotIDs    []string  // parallel to Values; may be nil
	Title      string
	Unit       string
	Colormap   string
	NAColor    string // #rrggbb, DefaultNAColor when empty
}

// FromGrid lowers a reconstructed grid into adapter input.
func FromGrid(g *grid.Grid, colormap string) Heatmap {
	return Heatmap{
		Rows:       g.Rows,
		Columns:    g.Columns,
		Values:     g.Values(),
		Accessions: g.Accessions(),
		PlotIDs:    g.PlotIDs(),
		Title:      g.TraitName,
		Unit:       g.Unit,
		Colormap:   colormap,
	}
}

func (h Heatmap) validate() error {
	n := h.Rows * h.Columns
	if h.Rows <= 0 || h.Columns <= 0 {
		return ErrEmptyGrid
	}
	if len(h.Values) != n {
		return fmt.Errorf("values hold %d cells, want %d for %dx%d", len(h.Values), n, h.Rows, h.Columns)
	}
	if h.Accessions != nil && len(h.Accessions) != n {
		return fmt.Errorf("accessions hold %d cells, want %d", len(h.Accessions), n)
	}
	if h.PlotIDs != nil && len(h.PlotIDs) != n {
		return fmt.Errorf("plot ids hold %d cells, want %d", len(h.PlotIDs), n)
	}
	return nil
}

// ValueRange returns the min and max of the finite values, ignoring NaN and
// infinities. ok is false when no finite value exists.
func ValueRange(values []float64) (lo, hi float64, ok bool) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 0, false
	}
	return floats.Min(finite), floats.Max(finite), true
}

// FormatValue renders a value for hover text: integral values print without
// a decimal point and sentinels print "N/A".
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return LabelNotApplicable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type cellKind uint8

const (
	finiteCell cellKind = iota
	naCell
	discardedCell
)

type displayCell struct {
	Row       int // 1-based field row
	Column    int // 1-based field column
	Kind      cellKind
	Value     float64
	Accession string
	PlotID    string
}

// Display is the formatted value.
func (c displayCell) Display() string {
	return FormatValue(c.Value)
}

// HoverLines is the per-cell hover text.
func (c displayCell) HoverLines() []string {
	return []string{
		"Accession: " + c.Accession,
		"Raw value: " + c.Display(),
		fmt.Sprintf("(column: %d, row: %d)", c.Column, c.Row),
	}
}

// layout is a Heatmap prepared for drawing. Cells[0] is the top display row,
// which holds the highest field row.
type layout struct {
	Rows     int
	Columns  int
	Cells    [][]displayCell
	Min      float64
	Max      float64
	HasRange bool
	Colormap Colormap
	NAColor  color.RGBA
	Title    string
	Unit     string
}

func prepare(h Heatmap) (*layout, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	cmap, err := LookupColormap(h.Colormap)
	if err != nil {
		return nil, err
	}

	l := &layout{
		Rows:     h.Rows,
		Columns:  h.Columns,
		Cells:    make([][]displayCell, h.Rows),
		Colormap: cmap,
		NAColor:  parseColor(h.NAColor, parseColor(DefaultNAColor, color.RGBA{A: 0xff})),
		Title:    h.Title,
		Unit:     h.Unit,
	}
	l.Min, l.Max, l.HasRange = ValueRange(h.Values)

	for d := 0; d < h.Rows; d++ {
		row := h.Rows - d
		l.Cells[d] = make([]displayCell, h.Columns)
		for c := 1; c <= h.Columns; c++ {
			i := (row-1)*h.Columns + (c - 1)
			v := h.Values[i]
			cell := displayCell{Row: row, Column: c, Value: v}
			if h.Accessions != nil {
				cell.Accession = h.Accessions[i]
			}
			if h.PlotIDs != nil {
				cell.PlotID = h.PlotIDs[i]
			}
			switch {
			case math.IsNaN(v):
				cell.Kind = discardedCell
				cell.Accession = LabelDiscarded
			case math.IsInf(v, 0):
				cell.Kind = naCell
			}
			l.Cells[d][c-1] = cell
		}
	}
	return l, nil
}

// norm scales a finite value into [0,1] over the layout's range.
func (l *layout) norm(v float64) float64 {
	if !l.HasRange || l.Max == l.Min {
		return 0.5
	}
	return (v - l.Min) / (l.Max - l.Min)
}

func (l *layout) fill(c displayCell) color.RGBA {
	switch c.Kind {
	case naCell:
		return l.NAColor
	case discardedCell:
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	default:
		return l.Colormap.At(l.norm(c.Value))
	}
}

func (l *layout) unitLabel() string {
	return "Units: " + l.Unit
}
