package cli

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/phroun/phosphor"
)

// Panel box geometry in cells
const (
	panelWidth  = 36
	panelMargin = 1
	closeLabel  = "[Close]"
)

// panelHint replaces the browser shortcut hint: most terminals cannot tell
// Ctrl+Shift+D from Ctrl+D, so F2 toggles the panel too.
const panelHint = "Ctrl+Shift+D or F2 to toggle"

// Document draws diagnostic panels as boxes in the top-right corner of the
// terminal, above the CRT overlay.
type Document struct {
	term      *Terminal
	panels    []*panelBox
	shortcuts phosphor.Listeners[struct{}]
}

func (d *Document) LookupPanel(id string) (phosphor.PanelNode, bool) {
	for _, p := range d.panels {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

func (d *Document) CreatePanel(id string, onClose func()) (phosphor.PanelNode, error) {
	p := &panelBox{doc: d, id: id, onClose: onClose, visible: true}
	d.panels = append(d.panels, p)
	d.term.dirty = true
	return p, nil
}

// BindShortcut calls fn on Ctrl+Shift+D (where the terminal reports it) and
// on F2
func (d *Document) BindShortcut(fn func()) phosphor.Disposable {
	return d.shortcuts.Add(func(struct{}) { fn() })
}

// shortcut reports whether k toggled the panel
func (d *Document) shortcut(k phosphor.KeyEvent) bool {
	if d.shortcuts.Len() == 0 {
		return false
	}
	plainF2 := k.Key == "F2" && !k.Ctrl && !k.Alt && !k.Meta && !k.Shift
	if !k.IsPanelShortcut() && !plainF2 {
		return false
	}
	d.shortcuts.Emit(struct{}{})
	return true
}

// click handles a primary button press at screen cell (x, y)
func (d *Document) click(x, y int) {
	w, _ := d.term.screen.Size()
	for _, p := range d.panels {
		if !p.Visible() {
			continue
		}
		cx, cy := p.closeAt(w)
		if y == cy && x >= cx && x < cx+len(closeLabel) {
			if p.onClose != nil {
				p.onClose()
			}
			d.term.dirty = true
			return
		}
	}
}

func (d *Document) draw(base tcell.Style) {
	w, _ := d.term.screen.Size()
	for _, p := range d.panels {
		if p.Visible() {
			p.draw(w, base)
		}
	}
}

func (d *Document) drop(p *panelBox) {
	for i, x := range d.panels {
		if x == p {
			d.panels = append(d.panels[:i], d.panels[i+1:]...)
			return
		}
	}
}

// panelBox is a mounted panel
type panelBox struct {
	doc     *Document
	id      string
	fields  []phosphor.PanelField
	onClose func()
	visible bool
	removed bool
}

func (p *panelBox) Update(fields []phosphor.PanelField) {
	if p.removed {
		return
	}
	p.fields = append(p.fields[:0], fields...)
	p.doc.term.dirty = true
}

func (p *panelBox) SetVisible(visible bool) {
	if p.removed {
		return
	}
	p.visible = visible
	p.doc.term.dirty = true
}

func (p *panelBox) Visible() bool {
	return p.visible && !p.removed
}

func (p *panelBox) Remove() error {
	if p.removed {
		return phosphor.ErrPanelGone
	}
	p.removed = true
	p.doc.drop(p)
	p.doc.term.dirty = true
	return nil
}

// origin returns the top-left cell of the box on a screen w cells wide
func (p *panelBox) origin(w int) (int, int) {
	return max(w-panelWidth-panelMargin, 0), panelMargin
}

// closeAt returns where the close label is drawn
func (p *panelBox) closeAt(w int) (int, int) {
	x, y := p.origin(w)
	return x + panelWidth - 2 - len(closeLabel), y + 1
}

func (p *panelBox) draw(w int, base tcell.Style) {
	s := p.doc.term.screen
	x, y := p.origin(w)
	height := len(p.fields) + 5

	bg := phosphor.MixOver(phosphor.Black, phosphor.PanelShadow, phosphor.BlendSourceOver)
	style := base.Background(tcellColor(bg)).Foreground(tcellColor(phosphor.PhosphorGreen))
	bc := borderStyles[BorderSingle]

	for row := 0; row < height; row++ {
		for col := 0; col < panelWidth; col++ {
			r := ' '
			switch {
			case row == 0 && col == 0:
				r = bc.topLeft
			case row == 0 && col == panelWidth-1:
				r = bc.topRight
			case row == height-1 && col == 0:
				r = bc.bottomLeft
			case row == height-1 && col == panelWidth-1:
				r = bc.bottomRight
			case row == 0 || row == height-1:
				r = bc.horizontal
			case col == 0 || col == panelWidth-1:
				r = bc.vertical
			}
			s.SetContent(x+col, y+row, r, nil, style)
		}
	}

	inner := panelWidth - 4
	p.put(x+2, y+1, inner, phosphor.PanelTitle, style.Bold(true))
	cx, cy := p.closeAt(w)
	p.put(cx, cy, len(closeLabel), closeLabel, style)

	for i, f := range p.fields {
		label := f.Label + ": "
		n := p.put(x+2, y+2+i, inner, label, style)
		valueStyle := style
		if f.Tone.A > 0 {
			valueStyle = style.Foreground(tcellColor(f.Tone))
		}
		p.put(x+2+n, y+2+i, inner-n, f.Value, valueStyle)
	}

	dim := phosphor.MixOver(bg, phosphor.PhosphorGreen.WithAlpha(0.7), phosphor.BlendSourceOver)
	p.put(x+2, y+height-2, inner, panelHint, style.Foreground(tcellColor(dim)))
}

func (p *panelBox) put(x, y, width int, text string, style tcell.Style) int {
	if width <= 0 {
		return 0
	}
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "")
	}
	return p.doc.term.putString(x, y, width, text, style)
}
