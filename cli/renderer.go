package cli

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/phroun/phosphor"
)

// borderCharSet contains the characters for drawing borders
type borderCharSet struct {
	topLeft     rune
	topRight    rune
	bottomLeft  rune
	bottomRight rune
	horizontal  rune
	vertical    rune
	titleLeft   rune
	titleRight  rune
}

var borderStyles = map[BorderStyle]borderCharSet{
	BorderSingle: {
		topLeft: '┌', topRight: '┐', bottomLeft: '└', bottomRight: '┘',
		horizontal: '─', vertical: '│', titleLeft: '┤', titleRight: '├',
	},
	BorderDouble: {
		topLeft: '╔', topRight: '╗', bottomLeft: '╚', bottomRight: '╝',
		horizontal: '═', vertical: '║', titleLeft: '╡', titleRight: '╞',
	},
	BorderHeavy: {
		topLeft: '┏', topRight: '┓', bottomLeft: '┗', bottomRight: '┛',
		horizontal: '━', vertical: '┃', titleLeft: '┫', titleRight: '┣',
	},
	BorderRounded: {
		topLeft: '╭', topRight: '╮', bottomLeft: '╰', bottomRight: '╯',
		horizontal: '─', vertical: '│', titleLeft: '┤', titleRight: '├',
	},
}

// draw repaints the whole screen: content, border and status bar, then the
// visible overlays mixed onto the content cells, then the panel on top.
func (t *Terminal) draw() {
	s := t.screen
	s.Clear()

	x, y, cols, rows := t.contentRect()
	base := t.baseStyle()
	cx, cy := t.drawContent(x, y, cols, rows, base)

	if t.options.BorderStyle != BorderNone {
		t.drawBorder(x-1, y-1, cols, rows, t.options.Title, base)
	}
	if t.options.ShowStatusBar {
		w, h := s.Size()
		t.drawStatusBar(0, h-1, w, base)
	}
	for _, o := range t.overlays {
		if o.visible {
			t.mixOverlay(o, x, y, cols, rows)
		}
	}
	t.doc.draw(base)

	if cx >= 0 {
		s.ShowCursor(cx, cy)
	} else {
		s.HideCursor()
	}
	s.Show()
	t.dirty = false
}

func (t *Terminal) baseStyle() tcell.Style {
	return tcell.StyleDefault.
		Foreground(tcellColor(t.options.Foreground)).
		Background(tcellColor(t.options.Background))
}

// drawContent draws the newest output lines followed by the prompt line and
// returns the cursor position (-1 when the prompt is scrolled out of view).
func (t *Terminal) drawContent(x, y, cols, rows int, style tcell.Style) (cx, cy int) {
	if cols <= 0 || rows <= 0 {
		return -1, -1
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			t.screen.SetContent(x+col, y+row, ' ', nil, style)
		}
	}

	lines := t.Lines()
	prompt := t.options.Prompt + string(t.input)
	visible := append(append([]string(nil), lines...), prompt)
	if len(visible) > rows {
		visible = visible[len(visible)-rows:]
	}
	for i, line := range visible {
		t.putString(x, y+i, cols, line, style)
	}

	cx = x + runewidth.StringWidth(prompt)
	cy = y + len(visible) - 1
	if cx >= x+cols {
		cx = x + cols - 1
	}
	return cx, cy
}

// putString draws s clipped to width cells and returns the cells used
func (t *Terminal) putString(x, y, width int, s string, style tcell.Style) int {
	col := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > width {
			break
		}
		t.screen.SetContent(x+col, y, r, nil, style)
		col += w
	}
	return col
}

// drawBorder draws the window border around the content area
func (t *Terminal) drawBorder(x, y, innerCols, innerRows int, title string, style tcell.Style) {
	bc := t.border
	s := t.screen
	right := x + innerCols + 1
	bottom := y + innerRows + 1

	s.SetContent(x, y, bc.topLeft, nil, style)
	for i := 1; i <= innerCols; i++ {
		s.SetContent(x+i, y, bc.horizontal, nil, style)
	}
	s.SetContent(right, y, bc.topRight, nil, style)

	// Title in top border
	if tw := runewidth.StringWidth(title); title != "" && tw < innerCols-4 {
		padding := (innerCols - tw - 2) / 2
		tx := x + 1 + padding
		s.SetContent(tx, y, bc.titleRight, nil, style)
		s.SetContent(tx+1, y, ' ', nil, style)
		t.putString(tx+2, y, tw, title, style)
		s.SetContent(tx+2+tw, y, ' ', nil, style)
		s.SetContent(tx+3+tw, y, bc.titleLeft, nil, style)
	}

	for row := 1; row <= innerRows; row++ {
		s.SetContent(x, y+row, bc.vertical, nil, style)
		s.SetContent(right, y+row, bc.vertical, nil, style)
	}

	s.SetContent(x, bottom, bc.bottomLeft, nil, style)
	for i := 1; i <= innerCols; i++ {
		s.SetContent(x+i, bottom, bc.horizontal, nil, style)
	}
	s.SetContent(right, bottom, bc.bottomRight, nil, style)
}

// drawStatusBar draws the reverse-video status line
func (t *Terminal) drawStatusBar(x, y, width int, style tcell.Style) {
	_, _, cols, rows := t.contentRect()
	status := fmt.Sprintf(" Lines: %d | Size: %dx%d ", len(t.Lines()), cols, rows)
	if t.options.Status != nil {
		if extra := t.options.Status(); extra != "" {
			status += "| " + extra + " "
		}
	}
	if n := runewidth.StringWidth(status); n < width {
		status += strings.Repeat(" ", width-n)
	}
	t.putString(x, y, width, status, style.Reverse(true))
}

// mixOverlay averages the overlay pixels covering each content cell and
// mixes the result onto the cell's colors with the "overlay" blend mode.
func (t *Terminal) mixOverlay(o *overlay, x, y, cols, rows int) {
	w, h := o.raster.Size()
	if w == 0 || h == 0 || cols == 0 || rows == 0 {
		return
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			px := averageCell(o.raster, col*w/cols, row*h/rows, (col+1)*w/cols, (row+1)*h/rows)
			if px.A <= 0 {
				continue
			}
			mainc, combc, style, _ := t.screen.GetContent(x+col, y+row)
			fg, bg, attr := style.Decompose()
			fgc := phosphor.MixOver(resolveColor(fg, t.options.Foreground), px, phosphor.BlendOverlay)
			bgc := phosphor.MixOver(resolveColor(bg, t.options.Background), px, phosphor.BlendOverlay)
			mixed := tcell.StyleDefault.Attributes(attr).Foreground(tcellColor(fgc)).Background(tcellColor(bgc))
			t.screen.SetContent(x+col, y+row, mainc, combc, mixed)
		}
	}
}

// averageCell averages raster pixels in [x0,x1)x[y0,y1) in premultiplied
// space
func averageCell(r *phosphor.Raster, x0, y0, x1, y1 int) phosphor.Color {
	var pr, pg, pb, pa float64
	n := 0
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			c := r.At(px, py)
			pr += float64(c.R) * c.A
			pg += float64(c.G) * c.A
			pb += float64(c.B) * c.A
			pa += c.A
			n++
		}
	}
	if n == 0 || pa <= 0 {
		return phosphor.Transparent
	}
	return phosphor.RGBA(channel(pr/pa), channel(pg/pa), channel(pb/pa), pa/float64(n))
}

func channel(v float64) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v + 0.5)
}

// resolveColor converts a tcell color, using fallback for the default color
func resolveColor(c tcell.Color, fallback phosphor.Color) phosphor.Color {
	r, g, b := c.RGB()
	if r < 0 {
		return fallback
	}
	return phosphor.RGBA(uint8(r), uint8(g), uint8(b), 1)
}

func tcellColor(c phosphor.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
