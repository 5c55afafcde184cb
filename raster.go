package phosphor

import (
	"image"
	"image/color"
	"math"
)

// Raster is a software Surface backed by a pixel buffer. It is the overlay
// of the cell-grid host (one pixel per cell) and is used to render frames
// headlessly. A pixel is covered by a fill when its center lies inside the
// rectangle.
type Raster struct {
	width, height int
	pix           []Color
	blend         BlendMode
	shadow        Color
	shadowBlur    float64
}

// NewRaster creates a transparent raster of the given size
func NewRaster(width, height int) *Raster {
	r := &Raster{}
	r.Resize(width, height)
	return r
}

// Resize reallocates the buffer; contents are cleared
func (r *Raster) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	r.width, r.height = width, height
	r.pix = make([]Color, width*height)
}

func (r *Raster) Size() (int, int) { return r.width, r.height }

func (r *Raster) Clear() {
	for i := range r.pix {
		r.pix[i] = Transparent
	}
}

func (r *Raster) SetBlend(m BlendMode) { r.blend = m }

// SetShadow records the shadow; a shadow behind a fill that covers the whole
// raster is hidden by the fill itself, so only partial fills spread it.
func (r *Raster) SetShadow(c Color, blur float64) {
	r.shadow, r.shadowBlur = c, blur
}

func (r *Raster) FillRect(x, y, w, h float64, p Paint) {
	if w <= 0 || h <= 0 {
		return
	}
	if r.shadowBlur > 0 && r.shadow.A > 0 {
		r.fillShadow(x, y, w, h)
	}
	x0, y0, x1, y1 := r.span(x, y, w, h)
	for py := y0; py < y1; py++ {
		row := py * r.width
		for px := x0; px < x1; px++ {
			src := p.ColorAt(float64(px)+0.5, float64(py)+0.5)
			r.pix[row+px] = Composite(r.pix[row+px], src, r.blend)
		}
	}
}

// fillShadow spreads a soft halo of the shadow color around the rectangle
func (r *Raster) fillShadow(x, y, w, h float64) {
	blur := r.shadowBlur
	x0, y0, x1, y1 := r.span(x-blur, y-blur, w+2*blur, h+2*blur)
	for py := y0; py < y1; py++ {
		cy := float64(py) + 0.5
		for px := x0; px < x1; px++ {
			cx := float64(px) + 0.5
			dx := math.Max(0, math.Max(x-cx, cx-(x+w)))
			dy := math.Max(0, math.Max(y-cy, cy-(y+h)))
			d := math.Hypot(dx, dy)
			if d == 0 || d >= blur {
				continue
			}
			a := r.shadow.A * (1 - d/blur)
			i := py*r.width + px
			r.pix[i] = Composite(r.pix[i], r.shadow.WithAlpha(a), r.blend)
		}
	}
}

// span converts a float rectangle into the covered pixel index range
func (r *Raster) span(x, y, w, h float64) (x0, y0, x1, y1 int) {
	x0 = clampInt(int(math.Ceil(x-0.5)), 0, r.width)
	y0 = clampInt(int(math.Ceil(y-0.5)), 0, r.height)
	x1 = clampInt(int(math.Ceil(x+w-0.5)), 0, r.width)
	y1 = clampInt(int(math.Ceil(y+h-0.5)), 0, r.height)
	return
}

// At returns the pixel at (x, y); out-of-range reads are transparent
func (r *Raster) At(x, y int) Color {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return Transparent
	}
	return r.pix[y*r.width+x]
}

// Image converts the raster into an image.NRGBA
func (r *Raster) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			c := r.pix[y*r.width+x]
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: to8(c.A * 255)})
		}
	}
	return img
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
