// Package phenotype builds display metadata for the phenotypes of a study.
//
// Phenotypes that record text anywhere in the plot data are categorical and
// cannot be placed on a numeric heatmap scale, so they are left out of every
// mapping produced here.
package phenotype

import (
	"sort"

	"github.com/vanderheijden86/plotmap/pkg/model"
)

// Field selects which piece of phenotype metadata a mapping carries.
type Field uint8

const (
	FieldTrait Field = iota
	FieldDescription
	FieldSameAs
	FieldUnit
)

func (f Field) String() string {
	switch f {
	case FieldTrait:
		return "trait"
	case FieldDescription:
		return "description"
	case FieldSameAs:
		return "sameAs"
	case FieldUnit:
		return "unit"
	default:
		return "unknown"
	}
}

func (f Field) of(p model.Phenotype) string {
	switch f {
	case FieldDescription:
		return p.Trait.Description
	case FieldSameAs:
		return p.Trait.SameAs
	case FieldUnit:
		return p.Unit
	default:
		return p.Trait.Name
	}
}

// Extract maps every numeric phenotype name of the study to the selected
// metadata field.
func Extract(study *model.Study, field Field) map[string]string {
	out := make(map[string]string, len(study.Phenotypes))
	for name, p := range study.Phenotypes {
		out[name] = field.of(p)
	}
	for name := range TextPhenotypes(study.Plots) {
		delete(out, name)
	}
	return out
}

// TextPhenotypes returns the variables whose effective value is text in any
// plot. Only the first row of each plot is inspected.
//
// TODO: confirm with the data owners whether a plot can carry several rows
// with differing observations; if so this should scan every row.
func TextPhenotypes(plots []model.Plot) map[string]bool {
	text := make(map[string]bool)
	for _, plot := range plots {
		row, ok := plot.First()
		if !ok || !row.HasObservations {
			continue
		}
		for _, obs := range row.Observations {
			if obs.Effective().IsText() {
				text[obs.Variable] = true
			}
		}
	}
	return text
}

// Entry is one line of a study's phenotype catalog.
type Entry struct {
	Index       int // 1-based position in the catalog
	Name        string
	Trait       string
	Unit        string
	Description string
	SameAs      string
}

// Catalog lists the numeric phenotypes of a study sorted by name.
func Catalog(study *model.Study) []Entry {
	traits := Extract(study, FieldTrait)
	units := Extract(study, FieldUnit)
	descriptions := Extract(study, FieldDescription)
	sameAs := Extract(study, FieldSameAs)

	names := make([]string, 0, len(traits))
	for name := range traits {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{
			Index:       i + 1,
			Name:        name,
			Trait:       traits[name],
			Unit:        units[name],
			Description: descriptions[name],
			SameAs:      sameAs[name],
		}
	}
	return entries
}

// Names returns the numeric phenotype names of a study in catalog order.
func Names(study *model.Study) []string {
	entries := Catalog(study)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
