package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/plotmap/pkg/phenotype"
)

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func phenotypeOptions(entries []phenotype.Entry) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(entries))
	for _, e := range entries {
		label := fmt.Sprintf("%s (%s)", e.Trait, e.Name)
		if e.Unit != "" {
			label += " [" + e.Unit + "]"
		}
		opts = append(opts, huh.NewOption(label, e.Name))
	}
	return opts
}

// pickPhenotype asks which phenotype to draw.
func pickPhenotype(entries []phenotype.Entry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("study has no numeric phenotypes")
	}

	selected := entries[0].Name
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which phenotype should be drawn?").
				Options(phenotypeOptions(entries)...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}
