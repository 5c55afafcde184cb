package phosphorgtk

import (
	"github.com/gotk3/gotk3/cairo"
	"github.com/phroun/phosphor"
)

// shadowRings is how many rings approximate a blurred shadow
const shadowRings = 4

// cairoSurface draws phosphor operations with a cairo context. It is only
// valid for the duration of one "draw" signal.
type cairoSurface struct {
	cr            *cairo.Context
	width, height int
	shadow        phosphor.Color
	blur          float64
}

func newCairoSurface(cr *cairo.Context, width, height int) *cairoSurface {
	return &cairoSurface{cr: cr, width: width, height: height}
}

func (s *cairoSurface) Size() (int, int) { return s.width, s.height }

func (s *cairoSurface) Clear() {
	s.cr.Save()
	s.cr.SetOperator(cairo.OPERATOR_CLEAR)
	s.cr.Paint()
	s.cr.Restore()
}

func (s *cairoSurface) SetBlend(m phosphor.BlendMode) {
	s.cr.SetOperator(operatorFor(m))
}

func (s *cairoSurface) SetShadow(c phosphor.Color, blur float64) {
	s.shadow, s.blur = c, blur
}

func (s *cairoSurface) FillRect(x, y, w, h float64, p phosphor.Paint) {
	if w <= 0 || h <= 0 {
		return
	}
	if s.blur > 0 && s.shadow.A > 0 {
		s.fillShadow(x, y, w, h)
	}
	if !s.setSource(p) {
		return
	}
	s.cr.Rectangle(x, y, w, h)
	s.cr.Fill()
}

// fillShadow approximates a gaussian shadow with fading concentric rings
func (s *cairoSurface) fillShadow(x, y, w, h float64) {
	step := s.blur / shadowRings
	for i := shadowRings; i >= 1; i-- {
		d := step * float64(i)
		a := s.shadow.A * (1 - float64(i)/(shadowRings+1)) / shadowRings
		r, g, b, _ := s.shadow.Floats()
		s.cr.SetSourceRGBA(r, g, b, a)
		s.cr.Rectangle(x-d, y-d, w+2*d, h+2*d)
		s.cr.Fill()
	}
}

// setSource installs p as the cairo source; gradients map onto cairo
// patterns, which also interpolate in premultiplied space.
func (s *cairoSurface) setSource(p phosphor.Paint) bool {
	switch v := p.(type) {
	case phosphor.Color:
		s.cr.SetSourceRGBA(v.Floats())
		return true
	case *phosphor.Gradient:
		var pat *cairo.Pattern
		var err error
		if v.Kind == phosphor.GradientRadial {
			pat, err = cairo.NewPatternRadial(v.X0, v.Y0, v.R0, v.X1, v.Y1, v.R1)
		} else {
			pat, err = cairo.NewPatternLinear(v.X0, v.Y0, v.X1, v.Y1)
		}
		if err != nil {
			return false
		}
		for _, st := range v.Stops {
			r, g, b, a := st.Color.Floats()
			pat.AddColorStopRGBA(st.Offset, r, g, b, a)
		}
		s.cr.SetSource(pat)
		return true
	default:
		c := p.ColorAt(0, 0)
		s.cr.SetSourceRGBA(c.Floats())
		return true
	}
}

func operatorFor(m phosphor.BlendMode) cairo.Operator {
	switch m {
	case phosphor.BlendScreen:
		return cairo.OPERATOR_SCREEN
	case phosphor.BlendMultiply:
		return cairo.OPERATOR_MULTIPLY
	case phosphor.BlendOverlay:
		return cairo.OPERATOR_OVERLAY
	default:
		return cairo.OPERATOR_OVER
	}
}
