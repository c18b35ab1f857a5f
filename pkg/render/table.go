package render

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/plotmap/pkg/phenotype"
)

// TableContent selects what each grid cell of a printed table shows.
type TableContent int

const (
	ShowValues TableContent = iota
	ShowAccessions
)

const (
	maxAccessionWidth   = 14
	maxDescriptionWidth = 40
)

var (
	tableHeader  = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	tableCell    = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	tableSpecial = tableCell.Faint(true)
)

// Table renders the grid for a terminal with the highest row on top, the
// same orientation as the drawn heatmaps.
func Table(h Heatmap, content TableContent) (string, error) {
	l, err := prepare(h)
	if err != nil {
		return "", err
	}

	headers := make([]string, 0, l.Columns+1)
	headers = append(headers, "Row")
	for c := 1; c <= l.Columns; c++ {
		headers = append(headers, strconv.Itoa(c))
	}

	t := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow || col == 0:
				return tableHeader
			case row >= 0 && row < len(l.Cells) && col-1 < l.Columns && l.Cells[row][col-1].Kind != finiteCell:
				return tableSpecial
			default:
				return tableCell
			}
		})

	for _, row := range l.Cells {
		out := make([]string, 0, l.Columns+1)
		out = append(out, strconv.Itoa(row[0].Row))
		for _, c := range row {
			out = append(out, tableText(c, content))
		}
		t.Row(out...)
	}
	return t.String(), nil
}

func tableText(c displayCell, content TableContent) string {
	if content == ShowAccessions {
		return runewidth.Truncate(c.Accession, maxAccessionWidth, "…")
	}
	if c.Kind == discardedCell {
		return LabelDiscarded
	}
	return c.Display()
}

// CatalogTable lists phenotypes with their trait names, units, descriptions
// and ontology references.
func CatalogTable(entries []phenotype.Entry) string {
	t := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Phenotype", "Trait", "Unit", "Description", "Ontology").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return tableHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, e := range entries {
		t.Row(fmt.Sprint(e.Index), e.Name, e.Trait, e.Unit,
			runewidth.Truncate(e.Description, maxDescriptionWidth, "…"), e.SameAs)
	}
	return t.String()
}
