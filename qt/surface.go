package phosphorqt

import (
	"math"

	"github.com/mappu/miqt/qt"
	"github.com/phroun/phosphor"
)

// gradientStep is the band/tile size used to rasterize gradients
const gradientStep = 2

// shadowRings is how many rings approximate a blurred shadow
const shadowRings = 4

// painterSurface draws phosphor operations with a QPainter. Gradients are
// decomposed into solid bands since Qt fills here are integer rectangles.
type painterSurface struct {
	p             *qt.QPainter
	width, height int
	shadow        phosphor.Color
	blur          float64
}

func (s *painterSurface) Size() (int, int) { return s.width, s.height }

func (s *painterSurface) Clear() {
	s.p.SetCompositionMode(qt.QPainter__CompositionMode_Clear)
	s.p.FillRect5(0, 0, s.width, s.height, qt.NewQColor2(qt.Transparent))
	s.p.SetCompositionMode(qt.QPainter__CompositionMode_SourceOver)
}

func (s *painterSurface) SetBlend(m phosphor.BlendMode) {
	s.p.SetCompositionMode(compositionFor(m))
}

func (s *painterSurface) SetShadow(c phosphor.Color, blur float64) {
	s.shadow, s.blur = c, blur
}

func (s *painterSurface) FillRect(x, y, w, h float64, p phosphor.Paint) {
	if w <= 0 || h <= 0 {
		return
	}
	if s.blur > 0 && s.shadow.A > 0 {
		step := s.blur / shadowRings
		for i := shadowRings; i >= 1; i-- {
			d := step * float64(i)
			a := s.shadow.A * (1 - float64(i)/(shadowRings+1)) / shadowRings
			s.fill(x-d, y-d, w+2*d, h+2*d, s.shadow.WithAlpha(a))
		}
	}
	phosphor.Rasterize(p, x, y, w, h, gradientStep, s.fill)
}

func (s *painterSurface) fill(x, y, w, h float64, c phosphor.Color) {
	if c.A <= 0 {
		return
	}
	x0, y0 := int(math.Round(x)), int(math.Round(y))
	x1, y1 := int(math.Round(x+w)), int(math.Round(y+h))
	if x1 <= x0 || y1 <= y0 {
		return
	}
	s.p.FillRect5(x0, y0, x1-x0, y1-y0, qColor(c))
}

func qColor(c phosphor.Color) *qt.QColor {
	q := qt.NewQColor3(int(c.R), int(c.G), int(c.B))
	q.SetAlphaF(c.A)
	return q
}

func compositionFor(m phosphor.BlendMode) qt.QPainter__CompositionMode {
	switch m {
	case phosphor.BlendScreen:
		return qt.QPainter__CompositionMode_Screen
	case phosphor.BlendMultiply:
		return qt.QPainter__CompositionMode_Multiply
	case phosphor.BlendOverlay:
		return qt.QPainter__CompositionMode_Overlay
	default:
		return qt.QPainter__CompositionMode_SourceOver
	}
}
