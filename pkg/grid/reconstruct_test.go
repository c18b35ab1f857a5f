package grid_test

import (
	"errors"
	"math"
	"testing"

	"github.com/vanderheijden86/plotmap/pkg/grid"
	"github.com/vanderheijden86/plotmap/pkg/loader"
	"github.com/vanderheijden86/plotmap/pkg/model"
	"github.com/vanderheijden86/plotmap/pkg/testutil"
)

const height = "PH_M_cm"

func newStudy() *testutil.StudyBuilder {
	return testutil.NewStudy("test").
		Phenotype(height, "Plant height", "cm").
		Phenotype("GY_kg", "Grain yield", "kg")
}

// ============================================================================
// Worked example: mixed 2x2 study
// ============================================================================

func TestReconstruct_Mixed2x2(t *testing.T) {
	study := newStudy().
		Discard(1, 1).
		Observe(1, 2, "ACC1", testutil.Obs(height, 5.0)).
		Unclassified(2, 1, "ACC2").
		Observe(2, 2, "ACC3", testutil.Obs("GY_kg", 1.5)).
		Build()

	g, err := grid.FromStudy(study, height)
	if err != nil {
		t.Fatalf("FromStudy: %v", err)
	}
	if g.Path != grid.PathRectangular {
		t.Errorf("path = %v, want rectangular", g.Path)
	}
	testutil.AssertGridShape(t, g, 2, 2)
	testutil.AssertValues(t, g.Values(), []float64{math.NaN(), 5.0, math.Inf(1), math.Inf(1)})
	testutil.AssertStrings(t, "accessions", g.Accessions(), []string{grid.AccessionMissing, "ACC1", "ACC2", "ACC3"})
	testutil.AssertStrings(t, "plot ids", g.PlotIDs(), []string{"P001", "P002", "P003", "P004"})

	if g.TraitName != "Plant height" || g.Unit != "cm" || g.Phenotype != height {
		t.Errorf("metadata = %q/%q/%q", g.TraitName, g.Unit, g.Phenotype)
	}
}

func TestReconstruct_Mixed2x2_IndexedPath(t *testing.T) {
	study := newStudy().
		Discard(1, 1).
		Observe(1, 2, "ACC1", testutil.Obs(height, 5.0)).
		Unclassified(2, 1, "ACC2").
		Observe(2, 2, "ACC3", testutil.Obs("GY_kg", 1.5)).
		Build()

	g := grid.ByIndex(study.Plots, height, 2, 2)
	testutil.AssertGridShape(t, g, 2, 2)
	testutil.AssertValues(t, g.Values(), []float64{math.NaN(), 5.0, math.Inf(1), math.Inf(1)})
	testutil.AssertStrings(t, "accessions", g.Accessions(), []string{grid.AccessionMissing, "ACC1", "ACC2", "ACC3"})
	// unclassified plots keep no identifier on the indexed path
	testutil.AssertStrings(t, "plot ids", g.PlotIDs(), []string{"P001", "P002", grid.PlotIDVacant, "P004"})
}

// ============================================================================
// Cell classification
// ============================================================================

func TestReconstruct_CellStates(t *testing.T) {
	tests := []struct {
		name      string
		add       func(b *testutil.StudyBuilder)
		wantKind  grid.Kind
		wantValue float64
		wantAcc   string
	}{
		{"discard", func(b *testutil.StudyBuilder) { b.Discard(1, 1) }, grid.Missing, math.NaN(), grid.AccessionMissing},
		{"blank", func(b *testutil.StudyBuilder) { b.Blank(1, 1) }, grid.Missing, math.NaN(), grid.AccessionMissing},
		{"raw value", func(b *testutil.StudyBuilder) {
			b.Observe(1, 1, "A", testutil.Obs(height, 12.5))
		}, grid.Measured, 12.5, "A"},
		{"corrected wins", func(b *testutil.StudyBuilder) {
			b.Observe(1, 1, "A", testutil.Corrected(height, 10, 11))
		}, grid.Measured, 11, "A"},
		{"first matching observation", func(b *testutil.StudyBuilder) {
			b.Observe(1, 1, "A", testutil.Obs("GY_kg", 1), testutil.Obs(height, 2), testutil.Obs(height, 3))
		}, grid.Measured, 2, "A"},
		{"other phenotype only", func(b *testutil.StudyBuilder) {
			b.Observe(1, 1, "A", testutil.Obs("GY_kg", 1))
		}, grid.NotApplicable, math.Inf(1), "A"},
		{"empty observation list", func(b *testutil.StudyBuilder) {
			b.Observe(1, 1, "A")
		}, grid.NotApplicable, math.Inf(1), "A"},
		{"matched without values", func(b *testutil.StudyBuilder) {
			b.Observe(1, 1, "A", model.Observation{Variable: height})
		}, grid.NotApplicable, math.Inf(1), "A"},
		{"matched text value", func(b *testutil.StudyBuilder) {
			b.Observe(1, 1, "A", testutil.TextObs(height, "tall"))
		}, grid.NotApplicable, math.Inf(1), "A"},
		{"unclassified", func(b *testutil.StudyBuilder) { b.Unclassified(1, 1, "A") }, grid.NotApplicable, math.Inf(1), "A"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newStudy()
			tc.add(b)
			g, err := grid.FromStudy(b.Build(), height)
			if err != nil {
				t.Fatalf("FromStudy: %v", err)
			}
			testutil.AssertGridShape(t, g, 1, 1)
			cell := g.At(0, 0)
			if cell.Kind != tc.wantKind {
				t.Errorf("kind = %v, want %v", cell.Kind, tc.wantKind)
			}
			if got := cell.Float(); !testutil.SameFloat(got, tc.wantValue) {
				t.Errorf("value = %v, want %v", got, tc.wantValue)
			}
			if got := cell.AccessionLabel(); got != tc.wantAcc {
				t.Errorf("accession = %q, want %q", got, tc.wantAcc)
			}
		})
	}
}

func TestReconstruct_AccessionRequiresMaterial(t *testing.T) {
	study := newStudy().Build()
	study.Plots = []model.Plot{
		{RowIndex: 1, ColumnIndex: 1, Rows: []model.PlotRow{{
			StudyIndex:      "P1",
			Accession:       "stale",
			HasObservations: true,
			Observations:    []model.Observation{testutil.Obs(height, 7)},
		}}},
		{RowIndex: 1, ColumnIndex: 2, Rows: []model.PlotRow{{
			StudyIndex:  "P2",
			Accession:   "ACC9",
			HasMaterial: true,
		}}},
	}

	g, err := grid.FromStudy(study, height)
	if err != nil {
		t.Fatalf("FromStudy: %v", err)
	}
	testutil.AssertStrings(t, "accessions", g.Accessions(), []string{"", "ACC9"})
	if got := g.At(0, 0); got.Kind != grid.Measured || got.Value != 7 {
		t.Errorf("cell = %+v", got)
	}
}

func TestReconstruct_UnknownPhenotype(t *testing.T) {
	study := newStudy().Observe(1, 1, "A", testutil.Obs(height, 1)).Build()
	_, err := grid.FromStudy(study, "nope")
	if !errors.Is(err, grid.ErrUnknownPhenotype) {
		t.Fatalf("err = %v, want ErrUnknownPhenotype", err)
	}
}

// ============================================================================
// Rectangular scan
// ============================================================================

func TestTryRectangular_SingleRow(t *testing.T) {
	study := testutil.Rectangular(1, 5, height)
	g, scan := grid.TryRectangular(study.Plots, height)
	if g == nil {
		t.Fatalf("single row should tile, scan = %+v", scan)
	}
	testutil.AssertGridShape(t, g, 1, 5)
	testutil.AssertValues(t, g.Values(), []float64{101, 102, 103, 104, 105})
}

func TestTryRectangular_SingleColumn(t *testing.T) {
	study := testutil.Rectangular(4, 1, height)
	g, _ := grid.TryRectangular(study.Plots, height)
	if g == nil {
		t.Fatal("single column should tile")
	}
	testutil.AssertGridShape(t, g, 4, 1)
	testutil.AssertValues(t, g.Values(), []float64{101, 201, 301, 401})
}

func TestTryRectangular_Empty(t *testing.T) {
	g, _ := grid.TryRectangular(nil, height)
	if g == nil {
		t.Fatal("empty plot list tiles a zero-width grid")
	}
	if len(g.Cells) != 0 || g.Rows*g.Columns != 0 {
		t.Errorf("unexpected grid %+v", g)
	}
}

func TestTryRectangular_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		build func() *model.Study
	}{
		{"orphan cell", func() *model.Study {
			b := newStudy()
			for r := 1; r <= 3; r++ {
				for c := 1; c <= 4; c++ {
					b.Observe(r, c, "A", testutil.Obs(height, 1))
				}
			}
			return b.Observe(4, 1, "B", testutil.Obs(height, 2)).Build()
		}},
		{"missing corner", func() *model.Study {
			return newStudy().
				Observe(1, 1, "A").Observe(1, 2, "A").
				Observe(2, 1, "A").
				Build()
		}},
		{"shifted row start", func() *model.Study {
			// counts tile 2x3 but the second row begins at column 2
			return newStudy().
				Observe(1, 1, "A").Observe(1, 2, "A").Observe(1, 3, "A").
				Observe(2, 2, "A").Observe(2, 3, "A").Observe(2, 4, "A").
				Build()
		}},
		{"out of order", func() *model.Study {
			return newStudy().
				Observe(1, 2, "A").Observe(1, 1, "A").
				Observe(2, 1, "A").Observe(2, 2, "A").
				Build()
		}},
		{"plot without rows", func() *model.Study {
			return newStudy().Observe(1, 1, "A").Empty(1, 2).Build()
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			study := tc.build()
			if g, scan := grid.TryRectangular(study.Plots, height); g != nil {
				t.Errorf("expected non-rectangular, got %dx%d (scan %+v)", g.Rows, g.Columns, scan)
			}
		})
	}
}

// ============================================================================
// Indexed fallback
// ============================================================================

func TestReconstruct_OrphanCellFallsBack(t *testing.T) {
	b := newStudy()
	for r := 1; r <= 3; r++ {
		for c := 1; c <= 4; c++ {
			b.Observe(r, c, "A", testutil.Obs(height, float64(r*10+c)))
		}
	}
	study := b.Observe(4, 1, "ORPHAN", testutil.Obs(height, 99)).Build()

	g, err := grid.FromStudy(study, height)
	if err != nil {
		t.Fatalf("FromStudy: %v", err)
	}
	if g.Path != grid.PathIndexed {
		t.Fatalf("path = %v, want indexed", g.Path)
	}
	testutil.AssertGridShape(t, g, 4, 4)

	if got := g.At(3, 0); got.Value != 99 || got.Accession != "ORPHAN" {
		t.Errorf("orphan cell = %+v", got)
	}
	for c := 1; c < 4; c++ {
		cell := g.At(3, c)
		if cell.Kind != grid.Vacant {
			t.Errorf("cell (4,%d) kind = %v, want vacant", c+1, cell.Kind)
		}
		if !math.IsNaN(cell.Float()) || cell.AccessionLabel() != grid.AccessionVacant || cell.PlotIDLabel() != grid.PlotIDVacant {
			t.Errorf("cell (4,%d) lowers to %v/%q/%q", c+1, cell.Float(), cell.AccessionLabel(), cell.PlotIDLabel())
		}
	}
	if got := g.At(2, 3).Value; got != 34 {
		t.Errorf("cell (3,4) = %v, want 34", got)
	}
}

func TestReconstruct_DeclaredColumnsWiden(t *testing.T) {
	// edge plot dropped: 2x3 layout missing (2,3)
	study := newStudy().
		Declare(2, 5).
		Observe(1, 1, "A", testutil.Obs(height, 1)).
		Observe(1, 2, "A", testutil.Obs(height, 2)).
		Observe(1, 3, "A", testutil.Obs(height, 3)).
		Observe(2, 1, "A", testutil.Obs(height, 4)).
		Observe(2, 2, "A", testutil.Obs(height, 5)).
		Build()

	g, err := grid.FromStudy(study, height)
	if err != nil {
		t.Fatalf("FromStudy: %v", err)
	}
	testutil.AssertGridShape(t, g, 2, 5)
	nan := math.NaN()
	testutil.AssertValues(t, g.Values(), []float64{1, 2, 3, nan, nan, 4, 5, nan, nan, nan})
}

func TestReconstruct_DeclaredColumnsIgnoredWhenRectangular(t *testing.T) {
	study := testutil.Rectangular(2, 3, height)
	study.TotalColumns = 10

	g, err := grid.FromStudy(study, height)
	if err != nil {
		t.Fatalf("FromStudy: %v", err)
	}
	if g.Path != grid.PathRectangular {
		t.Errorf("path = %v, want rectangular", g.Path)
	}
	testutil.AssertGridShape(t, g, 2, 3)
}

func TestByIndex_GrowsToCoverPlots(t *testing.T) {
	study := newStudy().
		Observe(1, 1, "A", testutil.Obs(height, 1)).
		Observe(3, 6, "Z", testutil.Obs(height, 2)).
		Observe(0, 2, "bad", testutil.Obs(height, 3)).
		Build()

	g := grid.ByIndex(study.Plots, height, 1, 1)
	testutil.AssertGridShape(t, g, 3, 6)
	if got := g.At(2, 5); got.Accession != "Z" {
		t.Errorf("far corner = %+v", got)
	}
	counts := g.Count()
	if counts[grid.Measured] != 2 {
		t.Errorf("measured cells = %d, want 2 (index 0 plot skipped)", counts[grid.Measured])
	}
}

func TestByIndex_SkipsPlotsBeyondExtent(t *testing.T) {
	study := newStudy().
		Observe(1, 1, "A", testutil.Obs(height, 1)).
		Observe(2, grid.MaxExtent+1, "wide", testutil.Obs(height, 2)).
		Observe(1<<32, 1<<32, "huge", testutil.Obs(height, 3)).
		Build()

	g := grid.ByIndex(study.Plots, height, 1, 1)
	testutil.AssertGridShape(t, g, 1, 1)
	if got := g.At(0, 0); got.Accession != "A" {
		t.Errorf("cell = %+v", got)
	}
}

func TestByIndex_ClampsDeclaredShape(t *testing.T) {
	study := newStudy().Observe(1, 1, "A", testutil.Obs(height, 1)).Build()
	g := grid.ByIndex(study.Plots, height, 1<<40, 1<<40)
	testutil.AssertGridShape(t, g, grid.MaxExtent, grid.MaxExtent)
}

func TestFromStudy_HugeIndexFromDocument(t *testing.T) {
	doc := `{"results":[{"results":[{"data":{
		"so:name":"huge","num_rows":1,"num_columns":1,
		"phenotypes":{"PH_M_cm":{"definition":{"trait":{"so:name":"Plant height"},"unit":{"so:name":"cm"}}}},
		"plots":[
			{"row_index":1,"column_index":1,"rows":[{"study_index":1,"material":{"accession":"A"},
				"observations":[{"phenotype":{"variable":"PH_M_cm"},"raw_value":4}]}]},
			{"row_index":4294967296,"column_index":4294967296,"rows":[{"study_index":2,"discard":true}]}
		]}}]}]}`
	study, err := loader.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	g, err := grid.FromStudy(study, height)
	if err != nil {
		t.Fatalf("FromStudy: %v", err)
	}
	if g.Path != grid.PathIndexed {
		t.Errorf("path = %v, want indexed", g.Path)
	}
	testutil.AssertGridShape(t, g, 1, 1)
	if got := g.At(0, 0); got.Kind != grid.Measured || got.Value != 4 {
		t.Errorf("cell = %+v", got)
	}
}

func TestByIndex_BlankKeepsIdentifier(t *testing.T) {
	study := newStudy().Blank(1, 1).Empty(1, 2).Build()
	g := grid.ByIndex(study.Plots, height, 1, 2)
	testutil.AssertStrings(t, "plot ids", g.PlotIDs(), []string{"P001", grid.PlotIDVacant})
	testutil.AssertStrings(t, "accessions", g.Accessions(), []string{grid.AccessionMissing, grid.AccessionVacant})
}

func TestByIndex_LaterPlotWins(t *testing.T) {
	study := newStudy().
		Observe(1, 1, "first", testutil.Obs(height, 1)).
		Observe(1, 1, "second", testutil.Obs(height, 2)).
		Build()
	g := grid.ByIndex(study.Plots, height, 1, 1)
	if got := g.At(0, 0); got.Accession != "second" || got.Value != 2 {
		t.Errorf("cell = %+v, want the later plot", got)
	}
}

// ============================================================================
// Path equivalence
// ============================================================================

func TestRoundTrip_RectangularMatchesIndexed(t *testing.T) {
	study := newStudy().
		Observe(1, 1, "A1", testutil.Obs(height, 1)).
		Discard(1, 2).
		Observe(1, 3, "A3", testutil.Corrected(height, 3, 3.25)).
		Blank(2, 1).
		Observe(2, 2, "B2", testutil.Obs("GY_kg", 7)).
		Observe(2, 3, "B3", testutil.Obs(height, 6)).
		Build()

	fast, _ := grid.TryRectangular(study.Plots, height)
	if fast == nil {
		t.Fatal("expected rectangular scan to succeed")
	}
	slow := grid.ByIndex(study.Plots, height, 2, 3)
	testutil.AssertSameGrid(t, fast, slow)
}

func TestGrid_Matrix(t *testing.T) {
	g, err := grid.FromStudy(testutil.Rectangular(2, 3, height), height)
	if err != nil {
		t.Fatalf("FromStudy: %v", err)
	}
	m := g.Matrix()
	if len(m) != 2 || len(m[0]) != 3 {
		t.Fatalf("matrix shape %dx%d", len(m), len(m[0]))
	}
	if m[1][2] != 203 {
		t.Errorf("m[1][2] = %v, want 203", m[1][2])
	}
}

func TestGrid_AtPanicsOutOfRange(t *testing.T) {
	g, _ := grid.FromStudy(testutil.Rectangular(1, 1, height), height)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	g.At(1, 0)
}
