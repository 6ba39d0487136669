package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSL holds hue in degrees [0,360) and saturation/lightness in percent [0,100].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

var (
	colorBlack = RGB{R: 0, G: 0, B: 0}
	colorWhite = RGB{R: 255, G: 255, B: 255}
	colorGray  = RGB{R: 128, G: 128, B: 128}
)

func (c RGB) HSL() HSL {
	h, s, l := c.colorful().Hsl()
	return HSL{H: h, S: s * 100, L: l * 100}
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) CSS() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

func (c RGB) CSSAlpha(alpha float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, formatAlpha(alpha))
}

// Spread is the max channel minus the min channel, a cheap saturation proxy.
func (c RGB) Spread() int {
	high := maxInt(int(c.R), maxInt(int(c.G), int(c.B)))
	low := minInt(int(c.R), minInt(int(c.G), int(c.B)))
	return high - low
}

// Grayscale uses the 0.299/0.587/0.114 luma weights.
func (c RGB) Grayscale() RGB {
	luma := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	value := uint8(clampFloat(math.Round(luma), 0, 255))
	return RGB{R: value, G: value, B: value}
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

func (h HSL) RGB() RGB {
	red, green, blue := colorful.Hsl(h.H, h.S/100, h.L/100).Clamped().RGB255()
	return RGB{R: red, G: green, B: blue}
}

// Rounded snaps the triple to whole degrees and whole percentage points.
func (h HSL) Rounded() HSL {
	hue := math.Round(h.H)
	if hue >= 360 {
		hue -= 360
	}
	return HSL{
		H: hue,
		S: clampFloat(math.Round(h.S), 0, 100),
		L: clampFloat(math.Round(h.L), 0, 100),
	}
}

// Distance is the Euclidean distance over the raw (h, s, l) components.
func (h HSL) Distance(other HSL) float64 {
	hDiff := h.H - other.H
	sDiff := h.S - other.S
	lDiff := h.L - other.L
	return math.Sqrt(hDiff*hDiff + sDiff*sDiff + lDiff*lDiff)
}

func hueDelta(left float64, right float64) float64 {
	delta := math.Mod(math.Abs(left-right), 360)
	if delta > 180 {
		delta = 360 - delta
	}
	return delta
}

func formatAlpha(alpha float64) string {
	return fmt.Sprintf("%g", clampFloat(alpha, 0, 1))
}

func clampInt(value int, minimum int, maximum int) int {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}

func clampFloat(value float64, minimum float64, maximum float64) float64 {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}

func minInt(left int, right int) int {
	if left < right {
		return left
	}
	return right
}

func maxInt(left int, right int) int {
	if left > right {
		return left
	}
	return right
}
