//go:build ignore

// generate_testdata.go creates study documents for benchmarking and manual
// rendering checks.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   tests/testdata/benchmark/small.json   (10 x 12 plots)
//   tests/testdata/benchmark/medium.json  (40 x 50 plots)
//   tests/testdata/benchmark/large.json   (120 x 150 plots)
//   tests/testdata/benchmark/sparse.json  (40 x 50, 30% of positions missing, shuffled)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/plotmap/pkg/testutil"
)

func main() {
	outDir := filepath.Join("tests", "testdata", "benchmark")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", outDir, err)
		os.Exit(1)
	}

	datasets := []struct {
		name string
		cfg  testutil.LayoutConfig
	}{
		{"small", testutil.LayoutConfig{Seed: 1, Rows: 10, Columns: 12}},
		{"medium", testutil.LayoutConfig{Seed: 2, Rows: 40, Columns: 50}},
		{"large", testutil.LayoutConfig{Seed: 3, Rows: 120, Columns: 150}},
		{"sparse", testutil.LayoutConfig{Seed: 4, Rows: 40, Columns: 50, DropRate: 0.3, Shuffle: true}},
	}

	for _, ds := range datasets {
		path := filepath.Join(outDir, ds.name+".json")
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", path, err)
			os.Exit(1)
		}
		study := testutil.Generate(ds.cfg)
		err = testutil.WriteStudyJSON(f, study)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d plots)\n", path, len(study.Plots))
	}
}
