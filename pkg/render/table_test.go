package render

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/plotmap/pkg/phenotype"
)

func TestTable_Values(t *testing.T) {
	out, err := Table(mixed(t), ShowValues)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	lines := strings.Split(out, "\n")

	row2, row1 := -1, -1
	for i, line := range lines {
		switch {
		case strings.Contains(line, " 2 ") && strings.Contains(line, "N/A"):
			row2 = i
		case strings.Contains(line, LabelDiscarded):
			row1 = i
		}
	}
	if row2 < 0 || row1 < 0 {
		t.Fatalf("rows not found in table:\n%s", out)
	}
	if row2 > row1 {
		t.Errorf("row 2 should print above row 1:\n%s", out)
	}
	if !strings.Contains(lines[row1], " 5 ") {
		t.Errorf("row 1 should show the measured value:\n%s", lines[row1])
	}
}

func TestTable_Accessions(t *testing.T) {
	h := mixed(t)
	h.Accessions[1] = "A-VERY-LONG-ACCESSION-NAME"
	out, err := Table(h, ShowAccessions)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if strings.Contains(out, "A-VERY-LONG-ACCESSION-NAME") {
		t.Error("long accession should be truncated")
	}
	if !strings.Contains(out, "A-VERY-LONG-A…") {
		t.Errorf("truncated accession missing:\n%s", out)
	}
	if !strings.Contains(out, "ACC2") {
		t.Errorf("accession ACC2 missing:\n%s", out)
	}
}

func TestTable_Empty(t *testing.T) {
	if _, err := Table(Heatmap{}, ShowValues); err == nil {
		t.Error("expected error for empty grid")
	}
}

func TestCatalogTable(t *testing.T) {
	out := CatalogTable([]phenotype.Entry{
		{Index: 1, Name: "GY_kg", Trait: "Grain yield", Unit: "kg"},
		{Index: 2, Name: "PH_M_cm", Trait: "Plant height", Unit: "cm", SameAs: "CO_321:0000020",
			Description: strings.Repeat("very long description ", 5)},
	})
	for _, want := range []string{"Phenotype", "GY_kg", "Plant height", "cm", "CO_321:0000020", "…"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog table missing %q:\n%s", want, out)
		}
	}
}
