// Package model holds the in-memory representation of a field trial study:
// its declared layout, phenotype definitions and the plot records laid out
// on a row/column grid.
package model

import (
	"sort"
	"strconv"
)

// Study is a fully materialized field trial. It is read-only once loaded.
type Study struct {
	Name         string
	TotalRows    int // declared num_rows, 0 when absent
	TotalColumns int // declared num_columns, 0 when absent
	Phenotypes   map[string]Phenotype
	Plots        []Plot
}

// PhenotypeNames returns the declared phenotype names in sorted order.
func (s *Study) PhenotypeNames() []string {
	names := make([]string, 0, len(s.Phenotypes))
	for name := range s.Phenotypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Phenotype describes a measurable trait and its unit.
type Phenotype struct {
	Name  string // variable name, the key observations refer to
	Trait Trait
	Unit  string
}

// Trait is the descriptive part of a phenotype definition.
type Trait struct {
	Name        string
	Description string
	SameAs      string
}

// Plot is one physical grid cell. RowIndex and ColumnIndex are 1-based.
type Plot struct {
	RowIndex    int
	ColumnIndex int
	Rows        []PlotRow
}

// First returns the plot's first row record. Only the first row is ever
// consulted when deciding a plot's state.
func (p Plot) First() (PlotRow, bool) {
	if len(p.Rows) == 0 {
		return PlotRow{}, false
	}
	return p.Rows[0], true
}

// State classifies the plot by its first row, or StateEmpty when the plot
// carries no row records at all.
func (p Plot) State() CellState {
	row, ok := p.First()
	if !ok {
		return StateEmpty
	}
	return row.State()
}

// PlotRow is a single record within a plot.
type PlotRow struct {
	StudyIndex      string // opaque plot identifier
	Accession       string
	HasMaterial     bool
	Discard         bool
	Blank           bool
	HasObservations bool // the observations key was present, possibly empty
	Observations    []Observation
}

// State derives the cell state from the markers present on the row.
// Marker precedence is discard, blank, observations.
func (r PlotRow) State() CellState {
	switch {
	case r.Discard:
		return StateDiscarded
	case r.Blank:
		return StateBlank
	case r.HasObservations:
		return StateObserved
	default:
		return StateUnclassified
	}
}

// CellState is the kind of content recorded for a plot.
type CellState uint8

const (
	// StateEmpty means the plot entry has no row records.
	StateEmpty CellState = iota
	// StateDiscarded means no material and no observation.
	StateDiscarded
	// StateBlank is a deliberately empty control cell.
	StateBlank
	// StateObserved is a planted accession with zero or more observations.
	StateObserved
	// StateUnclassified has material but no discard, blank or observation
	// markers. It is treated as present-but-missing.
	StateUnclassified
)

func (s CellState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDiscarded:
		return "discarded"
	case StateBlank:
		return "blank"
	case StateObserved:
		return "observed"
	case StateUnclassified:
		return "unclassified"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// Observation is one recorded value of a phenotype on a plot.
type Observation struct {
	Variable  string
	Raw       Value
	Corrected Value
}

// Effective returns the corrected value when present, else the raw value.
func (o Observation) Effective() Value {
	if o.Corrected.Kind != ValueAbsent {
		return o.Corrected
	}
	return o.Raw
}

// ValueKind tells numeric observations apart from textual ones.
type ValueKind uint8

const (
	ValueAbsent ValueKind = iota
	ValueNumber
	ValueText
)

// Value is an observed quantity. Categorical phenotypes record text.
type Value struct {
	Kind   ValueKind
	Number float64
	Text   string
}

// Number builds a numeric Value.
func Number(f float64) Value {
	return Value{Kind: ValueNumber, Number: f}
}

// Text builds a textual Value.
func Text(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// IsNumber reports whether v holds a numeric observation.
func (v Value) IsNumber() bool { return v.Kind == ValueNumber }

// IsText reports whether v holds a textual observation.
func (v Value) IsText() bool { return v.Kind == ValueText }
