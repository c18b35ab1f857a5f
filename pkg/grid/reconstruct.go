package grid

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/plotmap/pkg/debug"
	"github.com/vanderheijden86/plotmap/pkg/lookup"
	"github.com/vanderheijden86/plotmap/pkg/metrics"
	"github.com/vanderheijden86/plotmap/pkg/model"
)

// ErrUnknownPhenotype is returned when the selected phenotype is not declared
// by the study.
var ErrUnknownPhenotype = errors.New("phenotype not declared by study")

// MaxExtent bounds the rows and columns of a grid placed by index. Plots
// beyond it are skipped like plots with an index below 1.
const MaxExtent = 1024

// FromStudy reconstructs the grid of one phenotype using the study's plots
// and declared shape.
func FromStudy(study *model.Study, selected string) (*Grid, error) {
	return Reconstruct(study.Plots, study.Phenotypes, selected, study.TotalRows, study.TotalColumns)
}

// Reconstruct builds the grid for the selected phenotype. The rectangular
// scan is tried first; if the plots do not tile a rectangle they are placed
// by coordinate instead, trusting totalColumns when it is wider than the
// scanned shape. totalRows is accepted for symmetry with the study document
// but only the declared column count influences placement.
func Reconstruct(plots []model.Plot, phenotypes map[string]model.Phenotype, selected string, totalRows, totalColumns int) (*Grid, error) {
	defer metrics.Timer(metrics.Reconstruct)()

	pheno, ok := phenotypes[selected]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPhenotype, selected)
	}

	g, scan := TryRectangular(plots, selected)
	if g == nil {
		debug.Log("grid: %d plots do not tile %dx%d (declared %dx%d), placing by index",
			len(plots), scan.Rows, scan.Columns, totalRows, totalColumns)
		// the scanned shape never exceeds the largest plot index, so
		// growing over the plots covers it
		g = ByIndex(plots, selected, 0, totalColumns)
		metrics.IndexedPath.Inc()
	} else {
		metrics.RectangularPath.Inc()
	}

	g.Phenotype = selected
	g.TraitName = pheno.Trait.Name
	g.Unit = pheno.Unit
	debug.Log("grid: %s %dx%d via %s path", selected, g.Rows, g.Columns, g.Path)
	return g, nil
}

// Scan is the shape inferred by the rectangular scan.
type Scan struct {
	Rows    int
	Columns int
}

// TryRectangular scans plots in list order expecting them row-major from
// (1,1). It returns nil with the inferred shape when the list does not tile
// rows x columns exactly.
func TryRectangular(plots []model.Plot, selected string) (*Grid, Scan) {
	row, column := 1, 1
	numColumns := 1
	lastColumn := 0
	cells := make([]Cell, 0, len(plots))
	placed := make([]model.Plot, 0, len(plots))

	for _, p := range plots {
		switch {
		case p.RowIndex == row && p.ColumnIndex == column:
			numColumns = max(numColumns, column)
			column++
		case p.RowIndex > row:
			// a new row starts; its first plot is taken as column 1
			numColumns = max(numColumns, column)
			row++
			column = 2
		default:
			continue
		}
		cells = append(cells, classify(p, selected))
		placed = append(placed, p)
		lastColumn = p.ColumnIndex
	}

	scan := Scan{Rows: row, Columns: max(numColumns-1, lastColumn)}
	if len(plots) != scan.Rows*scan.Columns {
		return nil, scan
	}
	// The counters above can be fooled by skipped or shifted plots into a
	// matching count; require every plot at its row-major position.
	if len(placed) != len(plots) {
		return nil, scan
	}
	for i, p := range placed {
		if p.RowIndex != i/scan.Columns+1 || p.ColumnIndex != i%scan.Columns+1 || p.State() == model.StateEmpty {
			return nil, scan
		}
	}

	return &Grid{
		Rows:    scan.Rows,
		Columns: scan.Columns,
		Cells:   cells,
		Path:    PathRectangular,
	}, scan
}

// ByIndex places every plot at (row_index-1, column_index-1) of a grid at
// least rows x columns in size. Positions without a plot stay Vacant. The
// grid grows to cover every plot's coordinates up to MaxExtent on each axis;
// plots outside 1..MaxExtent are skipped.
func ByIndex(plots []model.Plot, selected string, rows, columns int) *Grid {
	rows = min(max(rows, 0), MaxExtent)
	columns = min(max(columns, 0), MaxExtent)
	for _, p := range plots {
		if !inExtent(p) {
			continue
		}
		rows = max(rows, p.RowIndex)
		columns = max(columns, p.ColumnIndex)
	}

	g := &Grid{
		Rows:    rows,
		Columns: columns,
		Cells:   make([]Cell, rows*columns),
		Path:    PathIndexed,
	}
	for _, p := range plots {
		if !inExtent(p) {
			debug.Log("grid: skipping plot at (%d,%d)", p.RowIndex, p.ColumnIndex)
			continue
		}
		state := p.State()
		if state == model.StateEmpty {
			continue
		}
		cell := classify(p, selected)
		if state == model.StateUnclassified {
			// no markers at all: the identifier is not carried over
			cell.PlotID = ""
		}
		g.Cells[(p.RowIndex-1)*columns+(p.ColumnIndex-1)] = cell
	}
	return g
}

func inExtent(p model.Plot) bool {
	return p.RowIndex >= 1 && p.ColumnIndex >= 1 && p.RowIndex <= MaxExtent && p.ColumnIndex <= MaxExtent
}

// classify maps a plot's first row to a cell for the selected phenotype.
func classify(p model.Plot, selected string) Cell {
	row, ok := p.First()
	if !ok {
		return Cell{Kind: Vacant}
	}

	accession := ""
	if row.HasMaterial {
		accession = row.Accession
	}

	switch row.State() {
	case model.StateDiscarded, model.StateBlank:
		return Cell{Kind: Missing, PlotID: row.StudyIndex}
	case model.StateObserved:
		cell := Cell{Kind: NotApplicable, Accession: accession, PlotID: row.StudyIndex}
		if i := lookup.PhenotypeIndex(row.Observations, selected); i >= 0 {
			// a matched observation with no numeric value stays not applicable
			if v := row.Observations[i].Effective(); v.IsNumber() {
				cell.Kind = Measured
				cell.Value = v.Number
			}
		}
		return cell
	default:
		return Cell{Kind: NotApplicable, Accession: accession, PlotID: row.StudyIndex}
	}
}
