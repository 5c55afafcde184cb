package phosphor

// opKind identifies a recorded drawing operation
type opKind uint8

const (
	opClear opKind = iota
	opBlend
	opShadow
	opFill
)

// Op is one recorded drawing operation
type Op struct {
	kind       opKind
	Blend      BlendMode // for fills, the mode in effect when recorded
	Color      Color     // shadow color
	Blur       float64
	X, Y, W, H float64
	Paint      Paint
}

// DisplayList is a Surface that records a frame instead of drawing it.
// Retained-mode toolkits (GTK, Qt) let the compositor record into it during
// the frame tick and replay it from their paint handler.
type DisplayList struct {
	width, height int
	ops           []Op
	blend         BlendMode
}

// NewDisplayList creates an empty display list with the given backing size
func NewDisplayList(width, height int) *DisplayList {
	return &DisplayList{width: width, height: height}
}

// Resize changes the reported backing size; recorded ops are kept
func (d *DisplayList) Resize(width, height int) {
	d.width, d.height = width, height
}

func (d *DisplayList) Size() (int, int) { return d.width, d.height }

// Clear drops everything recorded so far; a replay starts from a cleared target
func (d *DisplayList) Clear() {
	d.ops = d.ops[:0]
	d.ops = append(d.ops, Op{kind: opClear})
}

func (d *DisplayList) SetBlend(m BlendMode) {
	d.blend = m
	d.ops = append(d.ops, Op{kind: opBlend, Blend: m})
}

func (d *DisplayList) SetShadow(c Color, blur float64) {
	d.ops = append(d.ops, Op{kind: opShadow, Color: c, Blur: blur})
}

func (d *DisplayList) FillRect(x, y, w, h float64, p Paint) {
	d.ops = append(d.ops, Op{kind: opFill, Blend: d.blend, X: x, Y: y, W: w, H: h, Paint: p})
}

// Len returns the number of recorded operations
func (d *DisplayList) Len() int {
	return len(d.ops)
}

// Fills returns the recorded fill operations in order
func (d *DisplayList) Fills() []Op {
	var out []Op
	for _, op := range d.ops {
		if op.kind == opFill {
			out = append(out, op)
		}
	}
	return out
}

// Replay draws the recorded operations onto dst in order
func (d *DisplayList) Replay(dst Surface) {
	for _, op := range d.ops {
		switch op.kind {
		case opClear:
			dst.Clear()
		case opBlend:
			dst.SetBlend(op.Blend)
		case opShadow:
			dst.SetShadow(op.Color, op.Blur)
		case opFill:
			dst.FillRect(op.X, op.Y, op.W, op.H, op.Paint)
		}
	}
}
