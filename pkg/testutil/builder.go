// Package testutil provides study fixtures and grid assertions for tests.
// All builders and generators produce deterministic output.
package testutil

import (
	"fmt"

	"github.com/vanderheijden86/plotmap/pkg/model"
)

// StudyBuilder assembles a model.Study plot by plot. Plots keep the order in
// which they are added; study_index values are assigned sequentially.
type StudyBuilder struct {
	study model.Study
}

// NewStudy starts a study with no plots or phenotypes.
func NewStudy(name string) *StudyBuilder {
	return &StudyBuilder{study: model.Study{
		Name:       name,
		Phenotypes: make(map[string]model.Phenotype),
	}}
}

// Phenotype declares a phenotype variable with its trait name and unit.
func (b *StudyBuilder) Phenotype(variable, trait, unit string) *StudyBuilder {
	b.study.Phenotypes[variable] = model.Phenotype{
		Name:  variable,
		Trait: model.Trait{Name: trait, Description: trait + " description", SameAs: "CO:" + variable},
		Unit:  unit,
	}
	return b
}

// Declare sets the study's declared num_rows and num_columns.
func (b *StudyBuilder) Declare(rows, columns int) *StudyBuilder {
	b.study.TotalRows = rows
	b.study.TotalColumns = columns
	return b
}

func (b *StudyBuilder) add(r, c int, row model.PlotRow) *StudyBuilder {
	row.StudyIndex = fmt.Sprintf("P%03d", len(b.study.Plots)+1)
	b.study.Plots = append(b.study.Plots, model.Plot{
		RowIndex:    r,
		ColumnIndex: c,
		Rows:        []model.PlotRow{row},
	})
	return b
}

// Discard adds a discarded plot.
func (b *StudyBuilder) Discard(r, c int) *StudyBuilder {
	return b.add(r, c, model.PlotRow{Discard: true})
}

// Blank adds a blank control plot.
func (b *StudyBuilder) Blank(r, c int) *StudyBuilder {
	return b.add(r, c, model.PlotRow{Blank: true})
}

// Observe adds a planted plot with the given observations, possibly none.
func (b *StudyBuilder) Observe(r, c int, accession string, obs ...model.Observation) *StudyBuilder {
	return b.add(r, c, model.PlotRow{
		Accession:       accession,
		HasMaterial:     true,
		HasObservations: true,
		Observations:    obs,
	})
}

// Unclassified adds a plot with material but no markers.
func (b *StudyBuilder) Unclassified(r, c int, accession string) *StudyBuilder {
	return b.add(r, c, model.PlotRow{Accession: accession, HasMaterial: true})
}

// Empty adds a plot entry without any row records.
func (b *StudyBuilder) Empty(r, c int) *StudyBuilder {
	b.study.Plots = append(b.study.Plots, model.Plot{RowIndex: r, ColumnIndex: c})
	return b
}

// Build returns the assembled study. The builder may keep being used; the
// returned study does not share its plot slice.
func (b *StudyBuilder) Build() *model.Study {
	s := b.study
	s.Plots = append([]model.Plot(nil), b.study.Plots...)
	s.Phenotypes = make(map[string]model.Phenotype, len(b.study.Phenotypes))
	for k, v := range b.study.Phenotypes {
		s.Phenotypes[k] = v
	}
	return &s
}

// Obs is a raw numeric observation.
func Obs(variable string, raw float64) model.Observation {
	return model.Observation{Variable: variable, Raw: model.Number(raw)}
}

// Corrected is an observation carrying both raw and corrected values.
func Corrected(variable string, raw, corrected float64) model.Observation {
	return model.Observation{Variable: variable, Raw: model.Number(raw), Corrected: model.Number(corrected)}
}

// TextObs is a categorical observation.
func TextObs(variable, text string) model.Observation {
	return model.Observation{Variable: variable, Raw: model.Text(text)}
}

// Rectangular builds a rows x columns study listed row-major where every plot
// observes variable with value r*100+c and accession "ACC-r-c".
func Rectangular(rows, columns int, variable string) *model.Study {
	b := NewStudy(fmt.Sprintf("rect %dx%d", rows, columns)).
		Phenotype(variable, "Trait "+variable, "unit").
		Declare(rows, columns)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= columns; c++ {
			b.Observe(r, c, fmt.Sprintf("ACC-%d-%d", r, c), Obs(variable, float64(r*100+c)))
		}
	}
	return b.Build()
}
