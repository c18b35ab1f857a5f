package testutil

import (
	"math"
	"testing"

	"github.com/vanderheijden86/plotmap/pkg/grid"
)

// AssertGridShape verifies the three lowered sequences all hold
// rows*columns entries.
func AssertGridShape(t *testing.T, g *grid.Grid, rows, columns int) {
	t.Helper()
	if g.Rows != rows || g.Columns != columns {
		t.Errorf("grid shape = %dx%d, want %dx%d", g.Rows, g.Columns, rows, columns)
	}
	want := g.Rows * g.Columns
	if n := len(g.Values()); n != want {
		t.Errorf("len(values) = %d, want %d", n, want)
	}
	if n := len(g.Accessions()); n != want {
		t.Errorf("len(accessions) = %d, want %d", n, want)
	}
	if n := len(g.PlotIDs()); n != want {
		t.Errorf("len(plot ids) = %d, want %d", n, want)
	}
}

// SameFloat compares two floats treating NaN as equal to NaN.
func SameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}

// AssertValues compares lowered value sequences, NaN-aware.
func AssertValues(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len(values) = %d, want %d", len(got), len(want))
	}
	for i := range got {
		if !SameFloat(got[i], want[i]) {
			t.Errorf("values[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// AssertStrings compares lowered string sequences.
func AssertStrings(t *testing.T, name string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len(%s) = %d, want %d", name, len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %q, want %q", name, i, got[i], want[i])
		}
	}
}

// AssertSameGrid verifies two grids lower to identical sequences.
func AssertSameGrid(t *testing.T, got, want *grid.Grid) {
	t.Helper()
	if got.Rows != want.Rows || got.Columns != want.Columns {
		t.Fatalf("shape %dx%d, want %dx%d", got.Rows, got.Columns, want.Rows, want.Columns)
	}
	AssertValues(t, got.Values(), want.Values())
	AssertStrings(t, "accessions", got.Accessions(), want.Accessions())
	AssertStrings(t, "plot ids", got.PlotIDs(), want.PlotIDs())
}
