package render

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/plotmap/pkg/debug"
	"github.com/vanderheijden86/plotmap/pkg/metrics"
)

// DefaultCellSize is the edge length of one plot in pixels.
const DefaultCellSize = 36

// StaticOptions controls static heatmap export.
type StaticOptions struct {
	Path     string // format inferred from extension when Format is empty
	Format   string // "png" or "svg", case-insensitive
	CellSize int    // DefaultCellSize when zero
	Heatmap  Heatmap
}

// SaveStatic renders the heatmap to a PNG or SVG file.
func SaveStatic(opts StaticOptions) error {
	defer metrics.Timer(metrics.RenderStatic)()

	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	format, err := StaticFormat(opts.Path, opts.Format)
	if err != nil {
		return err
	}
	l, err := prepare(opts.Heatmap)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(opts.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}
	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	geo := newGeometry(l, opts.CellSize)
	switch format {
	case "png":
		err = drawPNG(w, l, geo)
	case "svg":
		err = drawSVG(w, l, geo)
	}
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	debug.Log("render: wrote %s %dx%d to %s", format, l.Rows, l.Columns, opts.Path)
	return f.Close()
}

// StaticFormat resolves the output format from an explicit value or the
// path's extension.
func StaticFormat(path, format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "" {
		f = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	switch f {
	case "png", "svg":
		return f, nil
	case "":
		return "png", nil
	default:
		return "", fmt.Errorf("%w %q (want png or svg)", ErrUnsupportedFormat, f)
	}
}

// RenderPNG writes the heatmap as PNG.
func RenderPNG(w io.Writer, h Heatmap, cellSize int) error {
	l, err := prepare(h)
	if err != nil {
		return err
	}
	return drawPNG(w, l, newGeometry(l, cellSize))
}

// RenderSVG writes the heatmap as SVG. Every cell carries its hover text as
// an SVG title.
func RenderSVG(w io.Writer, h Heatmap, cellSize int) error {
	l, err := prepare(h)
	if err != nil {
		return err
	}
	return drawSVG(w, l, newGeometry(l, cellSize))
}

// --- geometry --------------------------------------------------------------

const (
	marginLeft   = 70
	marginTop    = 56
	marginBottom = 56
	barGap       = 28
	barWidth     = 18
	barLabels    = 110
	barSteps     = 64
	minBarHeight = 120
)

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x55, 0x55, 0x55, 0xff}
	colorGridLine = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	colorHatch    = color.RGBA{0x88, 0x88, 0x88, 0xff}
)

type geometry struct {
	Cell   int
	GridX  int
	GridY  int
	GridW  int
	GridH  int
	BarX   int
	BarY   int
	BarH   int
	Width  int
	Height int
	Every  int // tick label stride
}

func newGeometry(l *layout, cellSize int) geometry {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	g := geometry{
		Cell:  cellSize,
		GridX: marginLeft,
		GridY: marginTop,
		GridW: l.Columns * cellSize,
		GridH: l.Rows * cellSize,
	}
	g.BarX = g.GridX + g.GridW + barGap
	g.BarY = g.GridY
	g.BarH = max(g.GridH, minBarHeight)
	g.Width = g.BarX + barWidth + barLabels
	g.Height = g.GridY + max(g.GridH, g.BarH) + marginBottom
	g.Every = tickStride(max(l.Rows, l.Columns), cellSize)
	return g
}

// tickStride thins tick labels so they do not overlap at small cell sizes.
func tickStride(n, cellSize int) int {
	const minSpacing = 18
	if cellSize >= minSpacing || n == 0 {
		return 1
	}
	return int(math.Ceil(float64(minSpacing) / float64(cellSize)))
}

func (g geometry) cellOrigin(displayRow, col int) (int, int) {
	return g.GridX + col*g.Cell, g.GridY + displayRow*g.Cell
}

func (g geometry) showTick(i int) bool {
	return i%g.Every == 0
}

// --- PNG -------------------------------------------------------------------

func drawPNG(w io.Writer, l *layout, geo geometry) error {
	dc := gg.NewContext(geo.Width, geo.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, float64(geo.GridX+geo.GridW/2), float64(geo.GridY)/2, 0.5, 0.5)

	for d, row := range l.Cells {
		for c, cell := range row {
			x, y := geo.cellOrigin(d, c)
			fx, fy, s := float64(x), float64(y), float64(geo.Cell)
			dc.SetColor(l.fill(cell))
			dc.DrawRectangle(fx, fy, s, s)
			dc.Fill()
			if cell.Kind == discardedCell {
				drawHatchPNG(dc, fx, fy, s)
			}
			dc.SetColor(colorGridLine)
			dc.SetLineWidth(0.5)
			dc.DrawRectangle(fx, fy, s, s)
			dc.Stroke()
		}
	}

	drawAxesPNG(dc, l, geo)
	drawColorbarPNG(dc, l, geo)
	return dc.EncodePNG(w)
}

// drawHatchPNG crosses a discarded cell twice in each direction.
func drawHatchPNG(dc *gg.Context, x, y, s float64) {
	dc.SetColor(colorHatch)
	dc.SetLineWidth(1)
	for _, off := range []float64{0, s / 2} {
		dc.DrawLine(x+off, y, x+s, y+s-off)
		dc.DrawLine(x, y+off, x+s-off, y+s)
		dc.DrawLine(x+s-off, y, x, y+s-off)
		dc.DrawLine(x+s, y+off, x+off, y+s)
	}
	dc.Stroke()
}

func drawAxesPNG(dc *gg.Context, l *layout, geo geometry) {
	dc.SetColor(colorSubtle)
	half := float64(geo.Cell) / 2
	for c := 0; c < l.Columns; c++ {
		if !geo.showTick(c) {
			continue
		}
		x := float64(geo.GridX+c*geo.Cell) + half
		dc.DrawStringAnchored(fmt.Sprint(c+1), x, float64(geo.GridY+geo.GridH+12), 0.5, 0.5)
	}
	for d := 0; d < l.Rows; d++ {
		row := l.Rows - d
		if !geo.showTick(row - 1) {
			continue
		}
		y := float64(geo.GridY+d*geo.Cell) + half
		dc.DrawStringAnchored(fmt.Sprint(row), float64(geo.GridX-8), y, 1, 0.5)
	}

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Columns", float64(geo.GridX+geo.GridW/2), float64(geo.GridY+geo.GridH+36), 0.5, 0.5)

	cx, cy := float64(geo.GridX-44), float64(geo.GridY+geo.GridH/2)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), cx, cy)
	dc.DrawStringAnchored("Rows", cx, cy, 0.5, 0.5)
	dc.Pop()
}

func drawColorbarPNG(dc *gg.Context, l *layout, geo geometry) {
	x, y := float64(geo.BarX), float64(geo.BarY)
	bw, bh := float64(barWidth), float64(geo.BarH)

	if !l.HasRange {
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored("no data", x, y+bh/2, 0, 0.5)
		return
	}

	step := bh / barSteps
	for i := 0; i < barSteps; i++ {
		// top of the bar is the maximum
		t := 1 - (float64(i)+0.5)/barSteps
		dc.SetColor(l.Colormap.At(t))
		dc.DrawRectangle(x, y+float64(i)*step, bw, step+0.5)
		dc.Fill()
	}
	dc.SetColor(colorSubtle)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, y, bw, bh)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(FormatValue(l.Max), x+bw+6, y+6, 0, 0.5)
	dc.DrawStringAnchored(FormatValue(l.Min), x+bw+6, y+bh-6, 0, 0.5)
	dc.DrawStringAnchored(l.unitLabel(), x, y+bh+18, 0, 0.5)
}

// --- SVG -------------------------------------------------------------------

func drawSVG(w io.Writer, l *layout, geo geometry) error {
	canvas := svg.New(w)
	canvas.Start(geo.Width, geo.Height)
	canvas.Rect(0, 0, geo.Width, geo.Height, "fill:"+css(colorBackdrop))
	canvas.Text(geo.GridX+geo.GridW/2, geo.GridY/2, l.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:sans-serif;font-weight:bold;text-anchor:middle", css(colorText)))

	canvas.Gid("cells")
	for d, row := range l.Cells {
		for c, cell := range row {
			drawCellSVG(canvas, l, geo, d, c, cell)
		}
	}
	canvas.Gend()

	drawAxesSVG(canvas, l, geo)
	drawColorbarSVG(canvas, l, geo)
	canvas.End()
	return nil
}

func drawCellSVG(canvas *svg.SVG, l *layout, geo geometry, d, c int, cell displayCell) {
	x, y := geo.cellOrigin(d, c)
	s := geo.Cell
	canvas.Group(`class="cell"`, fmt.Sprintf(`data-row="%d"`, cell.Row), fmt.Sprintf(`data-column="%d"`, cell.Column))
	canvas.Title(strings.Join(cell.HoverLines(), "\n"))
	canvas.Rect(x, y, s, s, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:0.5", css(l.fill(cell)), css(colorGridLine)))
	if cell.Kind == discardedCell {
		hatch := fmt.Sprintf("stroke:%s;stroke-width:1", css(colorHatch))
		for _, off := range []int{0, s / 2} {
			canvas.Line(x+off, y, x+s, y+s-off, hatch)
			canvas.Line(x, y+off, x+s-off, y+s, hatch)
			canvas.Line(x+s-off, y, x, y+s-off, hatch)
			canvas.Line(x+s, y+off, x+off, y+s, hatch)
		}
	}
	canvas.Gend()
}

func drawAxesSVG(canvas *svg.SVG, l *layout, geo geometry) {
	tick := fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif", css(colorSubtle))
	label := fmt.Sprintf("fill:%s;font-size:13px;font-family:sans-serif;text-anchor:middle", css(colorText))
	half := geo.Cell / 2

	for c := 0; c < l.Columns; c++ {
		if !geo.showTick(c) {
			continue
		}
		canvas.Text(geo.GridX+c*geo.Cell+half, geo.GridY+geo.GridH+16, fmt.Sprint(c+1), tick+";text-anchor:middle")
	}
	for d := 0; d < l.Rows; d++ {
		row := l.Rows - d
		if !geo.showTick(row - 1) {
			continue
		}
		canvas.Text(geo.GridX-8, geo.GridY+d*geo.Cell+half+4, fmt.Sprint(row), tick+";text-anchor:end")
	}

	canvas.Text(geo.GridX+geo.GridW/2, geo.GridY+geo.GridH+40, "Columns", label)
	cx, cy := geo.GridX-44, geo.GridY+geo.GridH/2
	canvas.Text(cx, cy, "Rows", label, fmt.Sprintf(`transform="rotate(-90 %d %d)"`, cx, cy))
}

func drawColorbarSVG(canvas *svg.SVG, l *layout, geo geometry) {
	text := fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif", css(colorText))
	if !l.HasRange {
		canvas.Text(geo.BarX, geo.BarY+geo.BarH/2, "no data", text)
		return
	}

	canvas.Gid("colorbar")
	step := float64(geo.BarH) / barSteps
	for i := 0; i < barSteps; i++ {
		t := 1 - (float64(i)+0.5)/barSteps
		top := geo.BarY + int(math.Round(float64(i)*step))
		bottom := geo.BarY + int(math.Round(float64(i+1)*step))
		canvas.Rect(geo.BarX, top, barWidth, bottom-top, "fill:"+css(l.Colormap.At(t)))
	}
	canvas.Rect(geo.BarX, geo.BarY, barWidth, geo.BarH, fmt.Sprintf("fill:none;stroke:%s", css(colorSubtle)))
	canvas.Gend()

	canvas.Text(geo.BarX+barWidth+6, geo.BarY+10, FormatValue(l.Max), text)
	canvas.Text(geo.BarX+barWidth+6, geo.BarY+geo.BarH-2, FormatValue(l.Min), text)
	canvas.Text(geo.BarX, geo.BarY+geo.BarH+20, l.unitLabel(), text)
}
