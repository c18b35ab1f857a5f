package render

import (
	"errors"
	"math"
	"testing"
)

func TestLookupColormap(t *testing.T) {
	for _, name := range []string{"Greens", "greens", " VIRIDIS ", "YlGnBu", "hot"} {
		if _, err := LookupColormap(name); err != nil {
			t.Errorf("LookupColormap(%q): %v", name, err)
		}
	}
	if _, err := LookupColormap("sunset"); !errors.Is(err, ErrUnknownColormap) {
		t.Errorf("unknown name: err = %v", err)
	}
	if _, err := LookupColormap("#zzzzzz"); !errors.Is(err, ErrUnknownColormap) {
		t.Errorf("bad hex: err = %v", err)
	}
}

func TestColormap_Endpoints(t *testing.T) {
	cm, err := LookupColormap("greens")
	if err != nil {
		t.Fatal(err)
	}
	if got := css(cm.At(0)); got != "#f7fcf5" {
		t.Errorf("At(0) = %s", got)
	}
	if got := css(cm.At(1)); got != "#00441b" {
		t.Errorf("At(1) = %s", got)
	}
	if cm.At(-3) != cm.At(0) || cm.At(7) != cm.At(1) || cm.At(math.NaN()) != cm.At(0) {
		t.Error("out-of-range input should clamp")
	}
}

func TestColormap_HexPalette(t *testing.T) {
	cm, err := LookupColormap("#336699")
	if err != nil {
		t.Fatal(err)
	}
	if lo, hi := css(cm.At(0)), css(cm.At(1)); lo != lightStart || hi != "#336699" {
		t.Errorf("palette endpoints = %s..%s", lo, hi)
	}
}

func TestColormaps_Sorted(t *testing.T) {
	names := Colormaps()
	if len(names) != len(palettes) {
		t.Fatalf("Colormaps() = %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}
