// Package loader decodes study documents into model.Study values.
//
// The document is the JSON payload returned by the field trial service:
//
//	{ "results": [ { "results": [ { "data": { "so:name": ..., "num_rows": ...,
//	  "num_columns": ..., "phenotypes": {...}, "plots": [...] } } ] } ] }
//
// A document whose root already holds "plots" is accepted as the data
// object itself.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/plotmap/pkg/debug"
	"github.com/vanderheijden86/plotmap/pkg/lookup"
	"github.com/vanderheijden86/plotmap/pkg/metrics"
	"github.com/vanderheijden86/plotmap/pkg/model"
)

// Errors returned when the document has no usable study.
var (
	ErrNoStudy      = errors.New("document holds no study data")
	ErrMissingPlots = errors.New("study data has no plots array")
)

// LoadFile reads and decodes the study document at path.
func LoadFile(path string) (*model.Study, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open study: %w", err)
	}
	defer f.Close()

	start := time.Now()
	study, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	debug.LogTiming("load "+path, time.Since(start))
	return study, nil
}

// Parse decodes a study document held in memory.
func Parse(data []byte) (*model.Study, error) {
	return Load(bytes.NewReader(data))
}

// Load decodes a study document from r.
func Load(r io.Reader) (*model.Study, error) {
	defer metrics.Timer(metrics.StudyLoad)()

	dec := json.NewDecoder(r)
	dec.UseNumber() // keep numeric vs textual observations distinguishable
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode study document: %w", err)
	}

	data := studyData(doc)
	if data == nil {
		return nil, ErrNoStudy
	}
	return toStudy(data)
}

func studyData(doc map[string]any) map[string]any {
	if _, ok := doc["plots"]; ok {
		return doc
	}
	inner := firstResult(firstResult(doc))
	return lookup.Map(inner, "data")
}

func firstResult(m map[string]any) map[string]any {
	list, ok := m["results"].([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	first, _ := list[0].(map[string]any)
	return first
}

func toStudy(data map[string]any) (*model.Study, error) {
	rawPlots, ok := data["plots"].([]any)
	if !ok {
		return nil, ErrMissingPlots
	}

	study := &model.Study{
		Name:         lookup.String(data, "so:name", ""),
		TotalRows:    intValue(data["num_rows"]),
		TotalColumns: intValue(data["num_columns"]),
		Phenotypes:   make(map[string]model.Phenotype),
		Plots:        make([]model.Plot, 0, len(rawPlots)),
	}

	for name, raw := range lookup.Map(data, "phenotypes") {
		def, _ := raw.(map[string]any)
		study.Phenotypes[name] = model.Phenotype{
			Name: name,
			Trait: model.Trait{
				Name:        lookup.String(def, "definition.trait.so:name", ""),
				Description: lookup.String(def, "definition.trait.so:description", ""),
				SameAs:      lookup.String(def, "definition.trait.so:sameAs", ""),
			},
			Unit: lookup.String(def, "definition.unit.so:name", ""),
		}
	}

	for i, raw := range rawPlots {
		pm, ok := raw.(map[string]any)
		if !ok {
			debug.Log("loader: plot %d is %T, skipping", i, raw)
			continue
		}
		study.Plots = append(study.Plots, parsePlot(pm))
	}

	debug.Log("loader: study %q: %d plots, %d phenotypes, declared %dx%d",
		study.Name, len(study.Plots), len(study.Phenotypes), study.TotalRows, study.TotalColumns)
	return study, nil
}

func parsePlot(pm map[string]any) model.Plot {
	plot := model.Plot{
		RowIndex:    intValue(pm["row_index"]),
		ColumnIndex: intValue(pm["column_index"]),
	}
	rows, _ := pm["rows"].([]any)
	for _, raw := range rows {
		rm, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		plot.Rows = append(plot.Rows, parseRow(rm))
	}
	return plot
}

func parseRow(rm map[string]any) model.PlotRow {
	row := model.PlotRow{
		StudyIndex: stringValue(rm["study_index"]),
		Discard:    lookup.Has(rm, "discard"),
		Blank:      lookup.Has(rm, "blank"),
	}
	if material := lookup.Map(rm, "material"); material != nil {
		row.HasMaterial = true
		row.Accession = stringValue(material["accession"])
	}
	if raw, ok := rm["observations"]; ok {
		row.HasObservations = true
		list, _ := raw.([]any)
		for _, item := range list {
			om, ok := item.(map[string]any)
			if !ok {
				continue
			}
			row.Observations = append(row.Observations, model.Observation{
				Variable:  lookup.String(om, "phenotype.variable", ""),
				Raw:       observedValue(om, "raw_value"),
				Corrected: observedValue(om, "corrected_value"),
			})
		}
	}
	return row
}

func observedValue(om map[string]any, key string) model.Value {
	switch v := om[key].(type) {
	case nil:
		return model.Value{}
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return model.Text(v.String())
		}
		return model.Number(f)
	case float64:
		return model.Number(v)
	case string:
		return model.Text(v)
	default:
		return model.Text(fmt.Sprint(v))
	}
}

// intValue converts a decoded scalar to an int, accepting numeric strings.
// Anything unusable becomes 0, which no 1-based index can match.
func intValue(v any) int {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}
