//go:build js && wasm

package phosphorweb

import (
	"syscall/js"

	"github.com/phroun/phosphor"
)

// canvasSurface draws through a CanvasRenderingContext2D
type canvasSurface struct {
	canvas js.Value
	ctx    js.Value
}

func (s *canvasSurface) Size() (int, int) {
	return s.canvas.Get("width").Int(), s.canvas.Get("height").Int()
}

func (s *canvasSurface) Clear() {
	w, h := s.Size()
	s.ctx.Call("clearRect", 0, 0, w, h)
}

func (s *canvasSurface) SetBlend(m phosphor.BlendMode) {
	s.ctx.Set("globalCompositeOperation", m.String())
}

func (s *canvasSurface) SetShadow(c phosphor.Color, blur float64) {
	s.ctx.Set("shadowColor", c.CSS())
	s.ctx.Set("shadowBlur", blur)
}

func (s *canvasSurface) FillRect(x, y, w, h float64, p phosphor.Paint) {
	s.ctx.Set("fillStyle", s.style(p))
	s.ctx.Call("fillRect", x, y, w, h)
}

// style converts a paint into a fillStyle value
func (s *canvasSurface) style(p phosphor.Paint) any {
	switch p := p.(type) {
	case phosphor.Color:
		return p.CSS()
	case *phosphor.Gradient:
		var g js.Value
		if p.Kind == phosphor.GradientRadial {
			g = s.ctx.Call("createRadialGradient", p.X0, p.Y0, p.R0, p.X1, p.Y1, p.R1)
		} else {
			g = s.ctx.Call("createLinearGradient", p.X0, p.Y0, p.X1, p.Y1)
		}
		for _, st := range p.Stops {
			g.Call("addColorStop", st.Offset, st.Color.CSS())
		}
		return g
	default:
		return p.ColorAt(0, 0).CSS()
	}
}
