// Package phosphor provides the toolkit-neutral core of a CRT ("green
// phosphor") effect compositor that layers procedural scanlines, vignette,
// flicker, glow and redraw sweeps over an already-rendered terminal surface.
//
// This package contains:
//   - Colors, gradients and blend math
//   - The Surface drawing abstraction, a display list and a software raster
//   - Activity tracking and redraw sweep timing
//   - The render passes and the frame Loop state machine
//   - The Compositor and the shared Diagnostic Panel registry
//
// Toolkit-specific packages (gtk, qt, cli, web) provide the Host, Overlay
// and Document implementations that this package drives.
package phosphor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is a straight (non-premultiplied) sRGB color with a fractional alpha,
// matching the rgba() notation used by 2D canvas fill styles.
type Color struct {
	R, G, B uint8
	A       float64 // 0.0 transparent .. 1.0 opaque
}

// Predefined colors
var (
	// PhosphorGreen is the P1 phosphor tint (#33ff33) used by every pass.
	PhosphorGreen = Color{R: 51, G: 255, B: 51, A: 1}
	Black         = Color{A: 1}
	White         = Color{R: 255, G: 255, B: 255, A: 1}
	Transparent   = Color{}

	// Panel status tones
	ToneOK      = PhosphorGreen
	ToneWarn    = Color{R: 255, G: 255, B: 51, A: 1}
	ToneAlert   = Color{R: 255, G: 51, B: 51, A: 1}
	PanelShadow = Color{R: 0, G: 17, B: 0, A: 0.9}
)

// RGBA creates a color from 8-bit channels and a fractional alpha
func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b, A: clamp01(a)}
}

// WithAlpha returns c with its alpha replaced (clamped to [0,1])
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

// ColorAt makes a plain Color usable as a Paint
func (c Color) ColorAt(x, y float64) Color {
	return c
}

// CSS returns the rgba() notation of the color
func (c Color) CSS() string {
	return "rgba(" + strconv.Itoa(int(c.R)) + ", " + strconv.Itoa(int(c.G)) + ", " +
		strconv.Itoa(int(c.B)) + ", " + strconv.FormatFloat(c.A, 'g', 6, 64) + ")"
}

// Hex returns the #rrggbb notation of the color (alpha dropped)
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Floats returns the channels scaled to [0,1] for toolkits that take doubles
func (c Color) Floats() (r, g, b, a float64) {
	return float64(c.R) / 255.0, float64(c.G) / 255.0, float64(c.B) / 255.0, c.A
}

// ParseHex parses "#rgb" or "#rrggbb" into an opaque color
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("phosphor: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("phosphor: invalid hex color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, nil
}

// Lerp linearly interpolates between two colors in premultiplied space,
// which keeps a fade to a transparent stop from darkening the midpoint.
// t=0 returns a, t=1 returns b
func Lerp(a, b Color, t float64) Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	alpha := a.A + (b.A-a.A)*t
	if alpha <= 0 {
		return Transparent
	}
	ch := func(ca, cb uint8) uint8 {
		pa := float64(ca) * a.A
		pb := float64(cb) * b.A
		return to8((pa + (pb-pa)*t) / alpha)
	}
	return Color{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: alpha}
}

// BlendMode selects how a fill is composited onto the existing overlay
type BlendMode uint8

const (
	BlendSourceOver BlendMode = iota // Plain alpha compositing ("source-over")
	BlendScreen                      // Additive brightening ("screen")
	BlendMultiply                    // Multiplicative darkening ("multiply")
	BlendOverlay                     // Multiply darks, screen lights ("overlay")
)

// String returns the canvas globalCompositeOperation name
func (m BlendMode) String() string {
	switch m {
	case BlendScreen:
		return "screen"
	case BlendMultiply:
		return "multiply"
	case BlendOverlay:
		return "overlay"
	default:
		return "source-over"
	}
}

// blendChannel applies the separable blend function B(cb, cs) on [0,1] values
func blendChannel(m BlendMode, cb, cs float64) float64 {
	switch m {
	case BlendScreen:
		// 1 - (1-Dst)*(1-Src)
		return cb + cs - cb*cs
	case BlendMultiply:
		return cb * cs
	case BlendOverlay:
		if cb <= 0.5 {
			return 2 * cb * cs
		}
		return 1 - 2*(1-cb)*(1-cs)
	default:
		return cs
	}
}

// Composite places src over dst using the separable blend mode m, following
// the compositing model of the 2D canvas: the blended color is weighted by
// the destination alpha and the result is source-over composited.
func Composite(dst, src Color, m BlendMode) Color {
	as, ab := src.A, dst.A
	if as <= 0 {
		return dst
	}
	ao := as + ab*(1-as)
	if ao <= 0 {
		return Transparent
	}
	ch := func(cb8, cs8 uint8) uint8 {
		cb := float64(cb8) / 255.0
		cs := float64(cs8) / 255.0
		co := as*(1-ab)*cs + as*ab*blendChannel(m, cb, cs) + (1-as)*ab*cb
		return to8(255.0 * co / ao)
	}
	return Color{R: ch(dst.R, src.R), G: ch(dst.G, src.G), B: ch(dst.B, src.B), A: ao}
}

// MixOver mixes a translucent overlay pixel onto an opaque backdrop with the
// given mix mode, the way a browser applies mix-blend-mode to a stacked canvas.
func MixOver(backdrop, overlay Color, m BlendMode) Color {
	backdrop.A = 1
	return Composite(backdrop, overlay, m)
}

// to8 converts a float channel in [0,255] to uint8 with rounding
func to8(v float64) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 || math.IsNaN(v) {
		return 0
	}
	return uint8(v + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
