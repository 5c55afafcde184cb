package phosphor

import (
	"math"
	"sort"
)

// Paint is anything a rectangle can be filled with: a Color or a *Gradient
type Paint interface {
	ColorAt(x, y float64) Color
}

// Surface is the 2D drawing context of an overlay. Coordinates are in
// backing-store pixels with the origin at the top-left corner.
type Surface interface {
	// Size returns the backing-store dimensions
	Size() (width, height int)
	// Clear resets every pixel to transparent
	Clear()
	// SetBlend selects the compositing operation for following fills
	SetBlend(m BlendMode)
	// SetShadow sets a blurred shadow behind following fills; blur 0 disables it
	SetShadow(c Color, blur float64)
	// FillRect fills the rectangle with p
	FillRect(x, y, w, h float64, p Paint)
}

// GradientKind distinguishes linear and radial gradients
type GradientKind uint8

const (
	GradientLinear GradientKind = iota
	GradientRadial
)

// Stop is one color stop of a gradient, Offset in [0,1]
type Stop struct {
	Offset float64
	Color  Color
}

// Gradient mirrors the canvas gradient objects: a linear gradient runs from
// (X0,Y0) to (X1,Y1); a radial gradient runs from the circle (X0,Y0,R0) to
// the circle (X1,Y1,R1).
type Gradient struct {
	Kind       GradientKind
	X0, Y0, R0 float64
	X1, Y1, R1 float64
	Stops      []Stop
}

// NewLinearGradient creates a linear gradient between two points
func NewLinearGradient(x0, y0, x1, y1 float64) *Gradient {
	return &Gradient{Kind: GradientLinear, X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// NewRadialGradient creates a radial gradient between two circles
func NewRadialGradient(x0, y0, r0, x1, y1, r1 float64) *Gradient {
	return &Gradient{Kind: GradientRadial, X0: x0, Y0: y0, R0: r0, X1: x1, Y1: y1, R1: r1}
}

// AddStop appends a color stop and keeps stops ordered by offset
func (g *Gradient) AddStop(offset float64, c Color) *Gradient {
	g.Stops = append(g.Stops, Stop{Offset: clamp01(offset), Color: c})
	sort.SliceStable(g.Stops, func(i, j int) bool { return g.Stops[i].Offset < g.Stops[j].Offset })
	return g
}

// Param returns the gradient parameter t for the point (x, y), unclamped.
// Radial gradients are evaluated as concentric, centered on (X1,Y1), which
// is the only form the passes use.
func (g *Gradient) Param(x, y float64) float64 {
	switch g.Kind {
	case GradientRadial:
		span := g.R1 - g.R0
		if span == 0 {
			return 0
		}
		return (math.Hypot(x-g.X1, y-g.Y1) - g.R0) / span
	default:
		dx, dy := g.X1-g.X0, g.Y1-g.Y0
		den := dx*dx + dy*dy
		if den == 0 {
			return 0
		}
		return ((x-g.X0)*dx + (y-g.Y0)*dy) / den
	}
}

// ColorAt returns the gradient color at (x, y). Outside the gradient the
// nearest end stop extends, as in the canvas model.
func (g *Gradient) ColorAt(x, y float64) Color {
	return g.At(g.Param(x, y))
}

// At returns the color for the gradient parameter t
func (g *Gradient) At(t float64) Color {
	n := len(g.Stops)
	if n == 0 {
		return Transparent
	}
	if t <= g.Stops[0].Offset {
		return g.Stops[0].Color
	}
	if t >= g.Stops[n-1].Offset {
		return g.Stops[n-1].Color
	}
	for i := 1; i < n; i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t <= b.Offset {
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			return Lerp(a.Color, b.Color, (t-a.Offset)/span)
		}
	}
	return g.Stops[n-1].Color
}

// Rasterize decomposes a paint over a rectangle into solid fills for
// toolkits without native gradients. Colors fill once; vertical linear
// gradients become horizontal bands of the given step; anything else
// becomes step-sized tiles sampled at their centers.
func Rasterize(p Paint, x, y, w, h, step float64, fill func(x, y, w, h float64, c Color)) {
	if w <= 0 || h <= 0 {
		return
	}
	g, ok := p.(*Gradient)
	if !ok {
		fill(x, y, w, h, p.ColorAt(x, y))
		return
	}
	if step < 1 {
		step = 1
	}
	if g.Kind == GradientLinear && g.X0 == g.X1 {
		for by := y; by < y+h; by += step {
			bh := math.Min(step, y+h-by)
			fill(x, by, w, bh, g.ColorAt(x, by+bh/2))
		}
		return
	}
	for ty := y; ty < y+h; ty += step {
		th := math.Min(step, y+h-ty)
		for tx := x; tx < x+w; tx += step {
			tw := math.Min(step, x+w-tx)
			fill(tx, ty, tw, th, g.ColorAt(tx+tw/2, ty+th/2))
		}
	}
}

// Disposable releases a subscription or a scheduled callback.
// Dispose must be safe to call more than once.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function to Disposable
type DisposeFunc func()

// Dispose runs f
func (f DisposeFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Once wraps fn so that repeated Dispose calls run it only the first time
func Once(fn func()) Disposable {
	done := false
	return DisposeFunc(func() {
		if done {
			return
		}
		done = true
		if fn != nil {
			fn()
		}
	})
}

// disposeAll disposes every non-nil entry
func disposeAll(ds []Disposable) {
	for _, d := range ds {
		if d != nil {
			d.Dispose()
		}
	}
}
