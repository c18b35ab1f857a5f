package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/plotmap/pkg/model"
)

// LayoutConfig controls random study generation.
type LayoutConfig struct {
	Seed     int64   // random seed, 0 means 42
	Rows     int     // layout rows
	Columns  int     // layout columns
	Variable string  // phenotype variable observed on planted plots
	DropRate float64 // probability a position has no plot record at all
	Shuffle  bool    // list plots in random order instead of row-major
}

// Generate builds a study whose plots are a random mix of discarded, blank,
// observed and unclassified cells on a rows x columns layout.
func Generate(cfg LayoutConfig) *model.Study {
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}
	if cfg.Variable == "" {
		cfg.Variable = "PH_M_cm"
	}
	rng := rand.New(rand.NewSource(seed))

	b := NewStudy(fmt.Sprintf("generated %dx%d seed %d", cfg.Rows, cfg.Columns, seed)).
		Phenotype(cfg.Variable, "Plant height", "cm").
		Phenotype("other", "Other trait", "kg").
		Declare(cfg.Rows, cfg.Columns)

	for r := 1; r <= cfg.Rows; r++ {
		for c := 1; c <= cfg.Columns; c++ {
			if cfg.DropRate > 0 && rng.Float64() < cfg.DropRate {
				continue
			}
			acc := fmt.Sprintf("ACC%d", rng.Intn(50))
			switch rng.Intn(6) {
			case 0:
				b.Discard(r, c)
			case 1:
				b.Blank(r, c)
			case 2:
				b.Unclassified(r, c, acc)
			case 3:
				b.Observe(r, c, acc, Obs("other", rng.Float64()))
			case 4:
				b.Observe(r, c, acc, Corrected(cfg.Variable, float64(rng.Intn(100)), float64(rng.Intn(100))+0.5))
			default:
				b.Observe(r, c, acc, Obs(cfg.Variable, float64(rng.Intn(1000))/10))
			}
		}
	}

	study := b.Build()
	if cfg.Shuffle {
		rng.Shuffle(len(study.Plots), func(i, j int) {
			study.Plots[i], study.Plots[j] = study.Plots[j], study.Plots[i]
		})
	}
	return study
}
