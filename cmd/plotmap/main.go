package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/vanderheijden86/plotmap/pkg/config"
	"github.com/vanderheijden86/plotmap/pkg/debug"
	"github.com/vanderheijden86/plotmap/pkg/grid"
	"github.com/vanderheijden86/plotmap/pkg/loader"
	"github.com/vanderheijden86/plotmap/pkg/metrics"
	"github.com/vanderheijden86/plotmap/pkg/model"
	"github.com/vanderheijden86/plotmap/pkg/phenotype"
	"github.com/vanderheijden86/plotmap/pkg/render"
	"github.com/vanderheijden86/plotmap/pkg/version"
	"github.com/vanderheijden86/plotmap/pkg/watcher"
)

// errNoPhenotype is returned when no phenotype was named and no terminal is
// available to ask for one.
var errNoPhenotype = errors.New("no phenotype selected (use -phenotype NAME, -all or -list)")

type options struct {
	study      string
	phenotype  string
	all        bool
	list       bool
	print      bool
	format     string
	colormap   string
	out        string
	configPath string
	watch      bool
	saveConfig bool
	stats      bool
	version    bool
	help       bool
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("plotmap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.study, "study", "", "Study JSON file (required)")
	fs.StringVar(&o.phenotype, "phenotype", "", "Phenotype variable to draw")
	fs.BoolVar(&o.all, "all", false, "Draw every numeric phenotype")
	fs.BoolVar(&o.list, "list", false, "List the study's phenotypes and exit")
	fs.BoolVar(&o.print, "print", false, "Print the grid as a table instead of drawing it")
	fs.StringVar(&o.format, "format", "", "Output format: png, svg or html (default from config)")
	fs.StringVar(&o.colormap, "colormap", "", "Colormap ("+strings.Join(render.Colormaps(), ", ")+") or #rrggbb (default from config)")
	fs.StringVar(&o.out, "out", "", "Output file, or directory with -all")
	fs.StringVar(&o.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/plotmap/config.yaml)")
	fs.BoolVar(&o.watch, "watch", false, "Re-render whenever the study file changes")
	fs.BoolVar(&o.saveConfig, "save-config", false, "Save -format and -colormap into the config file and exit")
	fs.BoolVar(&o.stats, "stats", false, "Print timing statistics on exit")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.BoolVar(&o.help, "help", false, "Show help")
	err := fs.Parse(args)
	return o, fs, err
}

func main() {
	o, fs, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	if o.help {
		fmt.Println("Usage: plotmap -study FILE [options]")
		fmt.Println("\nDraws field-trial study phenotypes as plot-layout heatmaps.")
		fs.SetOutput(os.Stdout)
		fs.PrintDefaults()
		os.Exit(0)
	}
	if o.version {
		fmt.Printf("plotmap %s\n", version.String())
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, o, os.Stdout, os.Stderr)
	if o.stats {
		printStats(os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(o.configPath, stderr)
	if err != nil {
		return err
	}
	debug.Dump("config", cfg)
	if o.saveConfig {
		return saveConfig(stdout, cfg, o)
	}

	if o.study == "" {
		return fmt.Errorf("-study is required")
	}
	if o.all && o.phenotype != "" {
		return fmt.Errorf("-all and -phenotype are mutually exclusive")
	}
	out := outputFor(cfg, o)

	study, err := loader.LoadFile(o.study)
	if err != nil {
		return err
	}
	debug.Log("cli: loaded %s (%q, %d plots)", o.study, study.Name, len(study.Plots))

	if o.list {
		fmt.Fprintf(stdout, "%s: %d phenotypes\n", study.Name, len(phenotype.Names(study)))
		fmt.Fprintln(stdout, render.CatalogTable(phenotype.Catalog(study)))
		return nil
	}

	names, err := selectPhenotypes(study, o)
	if err != nil {
		return err
	}

	if o.print {
		return printTables(stdout, study, names, out)
	}

	if err := renderAll(ctx, stdout, study, names, out, o); err != nil {
		return err
	}
	if !o.watch {
		return nil
	}
	return watchStudy(ctx, stdout, stderr, names, out, o)
}

func loadConfig(path string, stderr io.Writer) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	cfg, err := config.Load()
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

// saveConfig stores the render flags over the loaded config.
func saveConfig(w io.Writer, cfg config.Config, o options) error {
	if o.format != "" {
		cfg.Render.Format = strings.ToLower(o.format)
	}
	if o.colormap != "" {
		cfg.Render.Colormap = o.colormap
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := o.configPath
	if path == "" {
		path = config.ConfigPath()
		if err := config.Save(cfg); err != nil {
			return err
		}
	} else if err := config.SaveTo(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(w, "saved %s\n", path)
	return nil
}

// outputFor merges flags over the config.
func outputFor(cfg config.Config, o options) render.Output {
	out := render.Output{
		Dir:      cfg.OutputDir,
		Format:   cfg.Render.Format,
		Colormap: cfg.Render.Colormap,
		CellSize: cfg.Render.CellSize,
		NAColor:  cfg.Render.NAColor,
		Workers:  cfg.Workers,
	}
	if o.format != "" {
		out.Format = strings.ToLower(o.format)
	}
	if o.colormap != "" {
		out.Colormap = o.colormap
	}
	if o.out != "" && (o.all || filepath.Ext(o.out) == "") {
		out.Dir = o.out
	}
	return out
}

func selectPhenotypes(study *model.Study, o options) ([]string, error) {
	switch {
	case o.all:
		names := phenotype.Names(study)
		if len(names) == 0 {
			return nil, fmt.Errorf("study %q has no numeric phenotypes", study.Name)
		}
		return names, nil
	case o.phenotype != "":
		if _, ok := study.Phenotypes[o.phenotype]; !ok {
			return nil, fmt.Errorf("%w: %q (declared: %s)", grid.ErrUnknownPhenotype, o.phenotype, strings.Join(study.PhenotypeNames(), ", "))
		}
		return []string{o.phenotype}, nil
	case isTerminal():
		name, err := pickPhenotype(phenotype.Catalog(study))
		if err != nil {
			return nil, err
		}
		return []string{name}, nil
	default:
		return nil, errNoPhenotype
	}
}

func printTables(w io.Writer, study *model.Study, names []string, out render.Output) error {
	for _, name := range names {
		h, err := out.Heatmap(study, name)
		if err != nil {
			return err
		}
		table, err := render.Table(h, render.ShowValues)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(w, "%s (%s)\n%s\n", h.Title, name, table)
	}
	return nil
}

// renderAll writes one file per phenotype. A single phenotype with an -out
// file path is written exactly there.
func renderAll(ctx context.Context, w io.Writer, study *model.Study, names []string, out render.Output, o options) error {
	if len(names) == 1 && o.out != "" && filepath.Ext(o.out) != "" {
		format, err := fileFormat(o.out, o.format, out.Format)
		if err != nil {
			return err
		}
		h, err := out.Heatmap(study, names[0])
		if err != nil {
			return err
		}
		path, err := render.Save(o.out, format, h, out.CellSize)
		if err != nil {
			return err
		}
		debug.Log("cli: %s -> %s", names[0], path)
		fmt.Fprintf(w, "wrote %s\n", path)
		return nil
	}

	results, err := render.Batch(ctx, study, names, out)
	if err != nil {
		return err
	}
	var failed []error
	for _, r := range results {
		if r.Error != nil {
			failed = append(failed, fmt.Errorf("%s: %w", r.Phenotype, r.Error))
			continue
		}
		debug.Log("cli: %s -> %s", r.Phenotype, r.Path)
		fmt.Fprintf(w, "wrote %s\n", r.Path)
	}
	return errors.Join(failed...)
}

// fileFormat picks the format for an -out file. A known extension decides
// and an explicit -format has to agree with it; otherwise the flag, then the
// configured format, is used.
func fileFormat(path, flagFormat, fallback string) (string, error) {
	flagFormat = strings.ToLower(flagFormat)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "html":
		if flagFormat != "" && flagFormat != ext {
			return "", fmt.Errorf("-format %s does not match -out %s", flagFormat, path)
		}
		return ext, nil
	}
	if flagFormat != "" {
		return flagFormat, nil
	}
	return fallback, nil
}

func watchStudy(ctx context.Context, stdout, stderr io.Writer, names []string, out render.Output, o options) error {
	w, err := watcher.New(o.study,
		watcher.WithOnChange(func(path string) {
			debug.Log("watch: %s changed", path)
		}),
		watcher.WithOnError(func(err error) {
			fmt.Fprintf(stderr, "watch: %v\n", err)
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	mode := ""
	if w.IsPolling() {
		mode = ", polling"
	}
	fmt.Fprintf(stdout, "watching %s (Ctrl+C to stop%s)\n", w.Path(), mode)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
			debug.Section("reload " + o.study)
			study, err := loader.LoadFile(o.study)
			if err != nil {
				fmt.Fprintf(stderr, "reload: %v\n", err)
				continue
			}
			if err := renderAll(ctx, stdout, study, names, out, o); err != nil {
				fmt.Fprintf(stderr, "render: %v\n", err)
			}
		}
	}
}

func printStats(w io.Writer) {
	for _, s := range metrics.AllTimingStats() {
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "%-20s n=%-4d total=%8.2fms avg=%8.2fms max=%8.2fms\n", s.Name, s.Count, s.TotalMs, s.AvgMs, s.MaxMs)
	}
	for _, c := range metrics.AllCounters() {
		fmt.Fprintf(w, "%-20s %d\n", c.Name(), c.Value())
	}
}
