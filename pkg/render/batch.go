package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/plotmap/pkg/debug"
	"github.com/vanderheijden86/plotmap/pkg/grid"
	"github.com/vanderheijden86/plotmap/pkg/model"
)

// Output describes how and where heatmaps are written.
type Output struct {
	Dir      string
	Format   string // png, svg or html
	Colormap string
	CellSize int
	NAColor  string
	Workers  int // concurrent renders in Batch; 1 when zero
}

// Save renders h to path in the given format (png, svg or html) and returns
// the path written.
func Save(path, format string, h Heatmap, cellSize int) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "html":
		return SaveInteractive(InteractiveOptions{Path: path, CellSize: cellSize, Heatmap: h})
	default:
		err := SaveStatic(StaticOptions{Path: path, Format: format, CellSize: cellSize, Heatmap: h})
		return path, err
	}
}

// FileName is the output file name for a phenotype.
func FileName(phenotype, format string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, phenotype)
	if clean == "" {
		clean = "heatmap"
	}
	ext := strings.ToLower(strings.TrimPrefix(format, "."))
	if ext == "" {
		ext = "png"
	}
	return clean + "." + ext
}

// Heatmap reconstructs one phenotype and lowers it for the adapters.
func (o Output) Heatmap(study *model.Study, phenotype string) (Heatmap, error) {
	g, err := grid.FromStudy(study, phenotype)
	if err != nil {
		return Heatmap{}, err
	}
	h := FromGrid(g, o.Colormap)
	h.NAColor = o.NAColor
	return h, nil
}

// writeFile renders one phenotype to file inside o.Dir.
func (o Output) writeFile(study *model.Study, phenotype, file string) (string, error) {
	h, err := o.Heatmap(study, phenotype)
	if err != nil {
		return "", err
	}
	return Save(filepath.Join(o.Dir, file), o.Format, h, o.CellSize)
}

// fileNames gives every phenotype its own file name. Names that sanitize to
// the same file, ignoring case, get a numeric suffix in list order.
func fileNames(phenotypes []string, format string) []string {
	seen := make(map[string]bool, len(phenotypes))
	files := make([]string, len(phenotypes))
	for i, name := range phenotypes {
		file := FileName(name, format)
		ext := filepath.Ext(file)
		base := strings.TrimSuffix(file, ext)
		for n := 2; seen[strings.ToLower(file)]; n++ {
			file = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		seen[strings.ToLower(file)] = true
		files[i] = file
	}
	return files
}

// BatchResult is the outcome for one phenotype.
type BatchResult struct {
	Phenotype string
	Path      string
	Error     error
}

// Batch renders several phenotypes concurrently. Per-phenotype failures are
// reported in the results; the returned error is set only when ctx ends
// before every render started.
func Batch(ctx context.Context, study *model.Study, phenotypes []string, o Output) ([]BatchResult, error) {
	if study == nil {
		return nil, fmt.Errorf("no study")
	}
	defer debug.LogEnterExit(fmt.Sprintf("render: batch of %d", len(phenotypes)))()
	results := make([]BatchResult, len(phenotypes))
	files := fileNames(phenotypes, o.Format)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.Workers, 1))

	for i, name := range phenotypes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{Phenotype: name, Error: err}
				return err
			}
			path, err := o.writeFile(study, name, files[i])
			results[i] = BatchResult{Phenotype: name, Path: path, Error: err}
			debug.LogIf(err != nil, "render: batch %s failed: %v", name, err)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
