package phosphor

import (
	"math"
	"testing"
)

func TestGradientStopsSorted(t *testing.T) {
	g := NewLinearGradient(0, 0, 0, 10).
		AddStop(1, White).
		AddStop(0, Black).
		AddStop(0.5, PhosphorGreen)
	if g.Stops[0].Offset != 0 || g.Stops[1].Offset != 0.5 || g.Stops[2].Offset != 1 {
		t.Fatalf("Stops not sorted: %+v", g.Stops)
	}
	if got := g.At(0.5); got != PhosphorGreen {
		t.Errorf("Expected middle stop at 0.5, got %v", got)
	}
	if got := g.At(-1); got != Black {
		t.Errorf("Expected first stop before start, got %v", got)
	}
	if got := g.At(2); got != White {
		t.Errorf("Expected last stop past end, got %v", got)
	}
}

func TestGradientParam(t *testing.T) {
	lin := NewLinearGradient(0, 10, 0, 30)
	if p := lin.Param(50, 20); math.Abs(p-0.5) > 1e-9 {
		t.Errorf("Linear param at midpoint: expected 0.5, got %v", p)
	}
	if p := lin.Param(0, 10); p != 0 {
		t.Errorf("Linear param at start: expected 0, got %v", p)
	}

	rad := NewRadialGradient(50, 50, 0, 50, 50, 10)
	if p := rad.Param(50, 50); p != 0 {
		t.Errorf("Radial param at center: expected 0, got %v", p)
	}
	if p := rad.Param(56, 58); math.Abs(p-1) > 1e-9 {
		t.Errorf("Radial param on rim: expected 1, got %v", p)
	}

	if got := NewLinearGradient(1, 1, 1, 1).Param(5, 5); got != 0 {
		t.Errorf("Degenerate gradient should yield 0, got %v", got)
	}
	if got := (&Gradient{}).At(0.5); got != Transparent {
		t.Errorf("Gradient without stops should be transparent, got %v", got)
	}
}

func TestRasterize(t *testing.T) {
	count := func(p Paint, w, h, step float64) int {
		n := 0
		Rasterize(p, 0, 0, w, h, step, func(x, y, w, h float64, c Color) { n++ })
		return n
	}

	if n := count(PhosphorGreen, 100, 100, 4); n != 1 {
		t.Errorf("Solid color should fill once, got %d", n)
	}
	vertical := NewLinearGradient(0, 0, 0, 10).AddStop(0, Black).AddStop(1, White)
	if n := count(vertical, 100, 10, 2); n != 5 {
		t.Errorf("Vertical gradient should become 5 bands, got %d", n)
	}
	radial := NewRadialGradient(2, 2, 0, 2, 2, 3).AddStop(0, Black).AddStop(1, White)
	if n := count(radial, 4, 4, 2); n != 4 {
		t.Errorf("Radial gradient should become 4 tiles, got %d", n)
	}
	if n := count(PhosphorGreen, 0, 10, 1); n != 0 {
		t.Errorf("Empty rect should not fill, got %d", n)
	}
}

func TestOnceDisposable(t *testing.T) {
	calls := 0
	d := Once(func() { calls++ })
	d.Dispose()
	d.Dispose()
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}

	DisposeFunc(nil).Dispose()
	disposeAll([]Disposable{nil, Once(func() { calls++ })})
	if calls != 2 {
		t.Errorf("disposeAll should skip nil entries, calls=%d", calls)
	}
}
