package testutil

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/plotmap/pkg/model"
)

// Document renders a study as the nested results document the loader reads.
// Marker keys (discard, blank, material, observations) appear only when the
// row carries them, so the loader's key-presence rules see the same states.
func Document(study *model.Study) map[string]any {
	phenotypes := make(map[string]any, len(study.Phenotypes))
	for name, p := range study.Phenotypes {
		phenotypes[name] = map[string]any{
			"definition": map[string]any{
				"trait": map[string]any{
					"so:name":        p.Trait.Name,
					"so:description": p.Trait.Description,
					"so:sameAs":      p.Trait.SameAs,
				},
				"unit": map[string]any{"so:name": p.Unit},
			},
		}
	}

	plots := make([]any, 0, len(study.Plots))
	for _, p := range study.Plots {
		rows := make([]any, 0, len(p.Rows))
		for _, r := range p.Rows {
			rows = append(rows, rowDocument(r))
		}
		plots = append(plots, map[string]any{
			"row_index":    p.RowIndex,
			"column_index": p.ColumnIndex,
			"rows":         rows,
		})
	}

	data := map[string]any{
		"so:name":     study.Name,
		"num_rows":    study.TotalRows,
		"num_columns": study.TotalColumns,
		"phenotypes":  phenotypes,
		"plots":       plots,
	}
	return map[string]any{
		"results": []any{
			map[string]any{"results": []any{map[string]any{"data": data}}},
		},
	}
}

func rowDocument(r model.PlotRow) map[string]any {
	doc := map[string]any{"study_index": r.StudyIndex}
	if r.Discard {
		doc["discard"] = true
	}
	if r.Blank {
		doc["blank"] = true
	}
	if r.HasMaterial {
		doc["material"] = map[string]any{"accession": r.Accession}
	}
	if r.HasObservations {
		obs := make([]any, 0, len(r.Observations))
		for _, o := range r.Observations {
			om := map[string]any{"phenotype": map[string]any{"variable": o.Variable}}
			if v, ok := valueDocument(o.Raw); ok {
				om["raw_value"] = v
			}
			if v, ok := valueDocument(o.Corrected); ok {
				om["corrected_value"] = v
			}
			obs = append(obs, om)
		}
		doc["observations"] = obs
	}
	return doc
}

func valueDocument(v model.Value) (any, bool) {
	switch v.Kind {
	case model.ValueNumber:
		return v.Number, true
	case model.ValueText:
		return v.Text, true
	default:
		return nil, false
	}
}

// WriteStudyJSON encodes Document(study) to w.
func WriteStudyJSON(w io.Writer, study *model.Study) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document(study))
}
