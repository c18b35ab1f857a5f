package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownColormap is returned for colormap names that are neither a
// registered palette nor a #rrggbb colour.
var ErrUnknownColormap = errors.New("unknown colormap")

// Sequential palettes, light to dark unless the palette says otherwise.
var palettes = map[string][]string{
	"greens":  {"#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b"},
	"blues":   {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"reds":    {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
	"oranges": {"#fff5eb", "#fee6ce", "#fdd0a2", "#fdae6b", "#fd8d3c", "#f16913", "#d94801", "#a63603", "#7f2704"},
	"purples": {"#fcfbfd", "#efedf5", "#dadaeb", "#bcbddc", "#9e9ac8", "#807dba", "#6a51a3", "#54278f", "#3f007d"},
	"greys":   {"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"},
	"ylgnbu":  {"#ffffd9", "#edf8b1", "#c7e9b4", "#7fcdbb", "#41b6c4", "#1d91c0", "#225ea8", "#253494", "#081d58"},
	"hot":     {"#000000", "#e60000", "#ffd200", "#ffffff"},
	"viridis": {"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"},
	"plasma":  {"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"},
}

// lightStart is where light palettes built from a single colour begin.
const lightStart = "#f4f6f5"

// Colormap maps a normalized value in [0,1] to a colour.
type Colormap struct {
	Name  string
	stops []colorful.Color
}

// Colormaps lists the registered palette names.
func Colormaps() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupColormap resolves a palette name case-insensitively. A #rrggbb
// colour yields a light palette ending at that colour.
func LookupColormap(name string) (Colormap, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if hexes, ok := palettes[key]; ok {
		stops := make([]colorful.Color, len(hexes))
		for i, h := range hexes {
			c, err := colorful.Hex(h)
			if err != nil {
				return Colormap{}, fmt.Errorf("palette %s: %w", key, err)
			}
			stops[i] = c
		}
		return Colormap{Name: key, stops: stops}, nil
	}

	if strings.HasPrefix(key, "#") {
		end, err := colorful.Hex(key)
		if err != nil {
			return Colormap{}, fmt.Errorf("%w: %q", ErrUnknownColormap, name)
		}
		start, _ := colorful.Hex(lightStart)
		return Colormap{Name: key, stops: []colorful.Color{start, end}}, nil
	}
	return Colormap{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownColormap, name, strings.Join(Colormaps(), ", "))
}

// At returns the colour at t, clamped to [0,1]. NaN maps to the first stop.
func (c Colormap) At(t float64) color.RGBA {
	if len(c.stops) == 0 {
		return color.RGBA{A: 0xff}
	}
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	seg := t * float64(len(c.stops)-1)
	i := int(seg)
	if i >= len(c.stops)-1 {
		return toRGBA(c.stops[len(c.stops)-1])
	}
	if seg == float64(i) {
		return toRGBA(c.stops[i])
	}
	return toRGBA(c.stops[i].BlendLab(c.stops[i+1], seg-float64(i)).Clamped())
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseColor reads a #rrggbb colour, falling back to def.
func parseColor(s string, def color.RGBA) color.RGBA {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return toRGBA(c)
}
