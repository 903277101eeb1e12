package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor represents a straight (non-premultiplied) RGBA color.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"` // 0 = fully transparent, 255 = fully opaque
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // "#RRGGBB" (no alpha)
	RGB  RGBColor  `json:"rgb"`  // RGB components
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// NewColorResult describes c in every supported representation. Colour
// channels are un-premultiplied first; a fully transparent colour reports
// black with zero alpha.
func NewColorResult(c color.Color) ColorResult {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	res := ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B),
		RGB:  RGBColor{R: n.R, G: n.G, B: n.B},
		RGBA: RGBAColor{R: n.R, G: n.G, B: n.B, A: n.A},
	}
	if cf, ok := colorful.MakeColor(c); ok {
		h, s, l := cf.Hsl()
		res.HSL = HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		}
	}
	return res
}

// SampleColor extracts the color value at a specific pixel coordinate.
// It returns an error if (x, y) lies outside the image bounds.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	if !(image.Point{x, y}.In(img.Bounds())) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	res := NewColorResult(img.At(x, y))
	return &res, nil
}

// LabeledPoint represents a pixel coordinate with an optional label.
type LabeledPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// LabeledColorResult combines a color sample with its location and label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// MultiColorResult contains color samples in input order.
type MultiColorResult struct {
	Samples []LabeledColorResult `json:"samples"`
}

// SampleColorsMulti samples every point. Any out-of-bounds point fails the
// whole call; no partial results are returned.
func SampleColorsMulti(img image.Image, points []LabeledPoint) (*MultiColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))

	for _, p := range points {
		c, err := SampleColor(img, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		results = append(results, LabeledColorResult{
			Label: p.Label,
			X:     p.X,
			Y:     p.Y,
			Color: *c,
		})
	}

	return &MultiColorResult{Samples: results}, nil
}

// ColorFrequency represents a quantized color and its share of a region.
type ColorFrequency struct {
	Hex        string   `json:"hex"`
	Percentage float64  `json:"percentage"` // 0-100
	RGB        RGBColor `json:"rgb"`
}

// DominantColors returns up to count of the most common colors in region r
// of buf, most frequent first. Channels are quantized to multiples of 16 so
// near-identical colors group together. Fully transparent pixels are
// ignored.
func DominantColors(buf *pixel.Buffer, r image.Rectangle, count int) []ColorFrequency {
	r = r.Intersect(buf.Bounds())
	counts := make(map[RGBColor]int)
	total := 0

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			n := color.NRGBAModel.Convert(buf.At(x, y)).(color.NRGBA)
			if n.A == 0 {
				continue
			}
			counts[RGBColor{R: n.R / 16 * 16, G: n.G / 16 * 16, B: n.B / 16 * 16}]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, ColorFrequency{
			Hex:        fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        c,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count >= 0 && len(colors) > count {
		colors = colors[:count]
	}
	return colors
}

// ParseColor parses "#RGB", "#RRGGBB", "#RRGGBBAA" or "transparent" into a
// premultiplied pixel colour. The empty string is opaque white.
func ParseColor(s string) (pixel.ColorBgra, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return pixel.White, nil
	case "transparent":
		return pixel.Transparent, nil
	}

	alpha := uint8(255)
	if len(s) == 9 && s[0] == '#' {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return pixel.ColorBgra{}, fmt.Errorf("invalid alpha in color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	cf, err := colorful.Hex(s)
	if err != nil {
		return pixel.ColorBgra{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return pixel.FromColor(color.NRGBA{R: r, G: g, B: b, A: alpha}), nil
}
