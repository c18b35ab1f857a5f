package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/plotmap/pkg/debug"
	"github.com/vanderheijden86/plotmap/pkg/metrics"
)

//go:embed templates/heatmap.html.tmpl
var heatmapHTML string

var pageTemplate = template.Must(template.New("heatmap").Parse(heatmapHTML))

// InteractiveOptions configures HTML heatmap export.
type InteractiveOptions struct {
	Path     string // ".html" is enforced
	CellSize int
	Heatmap  Heatmap
}

// hoverCell is one entry of the page's cell table.
type hoverCell struct {
	Row       int      `json:"row"`
	Column    int      `json:"column"`
	Value     string   `json:"value"`
	Accession string   `json:"accession"`
	PlotID    string   `json:"plot_id,omitempty"`
	Hover     []string `json:"hover"`
}

type page struct {
	Title   string
	Unit    string
	Rows    int
	Columns int
	Range   string
	SVG     template.HTML
	Cells   template.JS
}

// SaveInteractive writes a self-contained HTML heatmap and returns the path
// actually written.
func SaveInteractive(opts InteractiveOptions) (string, error) {
	defer metrics.Timer(metrics.RenderInteractive)()

	if opts.Path == "" {
		return "", fmt.Errorf("output path is required")
	}
	out := opts.Path
	if !strings.HasSuffix(strings.ToLower(out), ".html") {
		out = strings.TrimSuffix(out, filepath.Ext(out)) + ".html"
	}

	var buf bytes.Buffer
	if err := RenderInteractive(&buf, opts.Heatmap, opts.CellSize); err != nil {
		return "", err
	}

	if dir := filepath.Dir(out); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create dir: %w", err)
		}
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	debug.Log("render: wrote interactive heatmap to %s (%d bytes)", out, buf.Len())
	return out, nil
}

// RenderInteractive writes the HTML page for h.
func RenderInteractive(w io.Writer, h Heatmap, cellSize int) error {
	l, err := prepare(h)
	if err != nil {
		return err
	}

	var svgBuf bytes.Buffer
	if err := drawSVG(&svgBuf, l, newGeometry(l, cellSize)); err != nil {
		return err
	}

	cells := make([]hoverCell, 0, l.Rows*l.Columns)
	for _, row := range l.Cells {
		for _, c := range row {
			cells = append(cells, hoverCell{
				Row:       c.Row,
				Column:    c.Column,
				Value:     c.Display(),
				Accession: c.Accession,
				PlotID:    c.PlotID,
				Hover:     c.HoverLines(),
			})
		}
	}
	data, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("marshal cells: %w", err)
	}

	rng := "no data"
	if l.HasRange {
		rng = FormatValue(l.Min) + " to " + FormatValue(l.Max)
	}

	return pageTemplate.Execute(w, page{
		Title:   l.Title,
		Unit:    l.Unit,
		Rows:    l.Rows,
		Columns: l.Columns,
		Range:   rng,
		SVG:     template.HTML(stripXMLProlog(svgBuf.String())),
		Cells:   template.JS(data),
	})
}

// stripXMLProlog drops the <?xml ...?> header svgo emits so the SVG can be
// inlined into HTML.
func stripXMLProlog(s string) string {
	if strings.HasPrefix(s, "<?xml") {
		if i := strings.Index(s, "?>"); i >= 0 {
			return strings.TrimLeft(s[i+2:], "\n")
		}
	}
	return s
}
