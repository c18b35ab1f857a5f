package grid

import "math"

// Kind tags what a reconstructed cell holds. Sentinel floats only appear
// when a Grid is lowered for rendering.
type Kind uint8

const (
	// Vacant is a grid position no plot record was placed at.
	Vacant Kind = iota
	// Missing is a discarded or blank plot: deliberately no data.
	Missing
	// NotApplicable is a physically present plot where the selected
	// phenotype was not measured.
	NotApplicable
	// Measured holds a genuine observation.
	Measured
)

func (k Kind) String() string {
	switch k {
	case Vacant:
		return "vacant"
	case Missing:
		return "missing"
	case NotApplicable:
		return "n/a"
	case Measured:
		return "measured"
	default:
		return "unknown"
	}
}

// Sentinel labels used when lowering cells to flat string sequences.
const (
	AccessionMissing = "NaN"       // discarded or blank plot
	AccessionVacant  = "Discarded" // no plot record at this position
	PlotIDVacant     = "N/A"
)

// Cell is one reconstructed grid position.
type Cell struct {
	Kind      Kind
	Value     float64 // meaningful only when Kind == Measured
	Accession string
	PlotID    string
}

// Float lowers the cell to its sentinel encoding: NaN for vacant and missing
// cells, +Inf for not applicable, the observation otherwise.
func (c Cell) Float() float64 {
	switch c.Kind {
	case Measured:
		return c.Value
	case NotApplicable:
		return math.Inf(1)
	default:
		return math.NaN()
	}
}

// AccessionLabel lowers the accession, substituting sentinel labels.
func (c Cell) AccessionLabel() string {
	switch c.Kind {
	case Vacant:
		return AccessionVacant
	case Missing:
		return AccessionMissing
	default:
		return c.Accession
	}
}

// PlotIDLabel lowers the plot identifier; unset identifiers read "N/A".
func (c Cell) PlotIDLabel() string {
	if c.PlotID == "" {
		return PlotIDVacant
	}
	return c.PlotID
}
