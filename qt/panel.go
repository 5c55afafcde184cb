package phosphorqt

import (
	"github.com/mappu/miqt/qt"
	"github.com/phroun/phosphor"
)

// Panel geometry in logical pixels
const (
	panelMargin  = 10
	panelWidth   = 250
	panelPadding = 10
	panelLine    = 16
	panelFont    = 9
	closeWidth   = 44
)

// Document hosts the diagnostic panel as a self-painted child widget
// pinned to the top-right corner of parent.
type Document struct {
	parent *qt.QWidget
	panels map[string]*panelWidget
}

// NewDocument creates a panel document inside parent
func NewDocument(parent *qt.QWidget) *Document {
	return &Document{parent: parent, panels: make(map[string]*panelWidget)}
}

func (d *Document) LookupPanel(id string) (phosphor.PanelNode, bool) {
	p, ok := d.panels[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (d *Document) CreatePanel(id string, onClose func()) (phosphor.PanelNode, error) {
	p := &panelWidget{doc: d, id: id, onClose: onClose, visible: true}
	p.widget = qt.NewQWidget(d.parent)
	p.widget.SetObjectName(id)
	p.widget.OnPaintEvent(func(super func(event *qt.QPaintEvent), event *qt.QPaintEvent) {
		p.paint()
	})
	p.widget.OnMousePressEvent(func(super func(event *qt.QMouseEvent), event *qt.QMouseEvent) {
		if event.Button() == qt.LeftButton && p.onCloseButton(event.Pos().X(), event.Pos().Y()) {
			if p.onClose != nil {
				p.onClose()
			}
		}
	})
	p.layout()
	p.widget.Show()
	p.widget.Raise()
	d.panels[id] = p
	return p, nil
}

// BindShortcut registers Ctrl+Shift+D on the parent window
func (d *Document) BindShortcut(fn func()) phosphor.Disposable {
	shortcut := qt.NewQShortcut2(qt.NewQKeySequence2("Ctrl+Shift+D"), d.parent)
	shortcut.SetContext(qt.WindowShortcut)
	shortcut.OnActivated(fn)
	return phosphor.Once(func() {
		shortcut.SetEnabled(false)
		shortcut.DeleteLater()
	})
}

// panelWidget draws the panel rows itself
type panelWidget struct {
	doc     *Document
	id      string
	widget  *qt.QWidget
	fields  []phosphor.PanelField
	onClose func()
	visible bool
	removed bool
}

func (p *panelWidget) layout() {
	rows := len(p.fields)
	if rows == 0 {
		rows = 9
	}
	height := panelPadding*2 + panelLine*(rows+2) + 8
	x := p.doc.parent.Width() - panelWidth - panelMargin
	if x < 0 {
		x = 0
	}
	p.widget.SetGeometry(x, panelMargin, panelWidth, height)
}

func (p *panelWidget) onCloseButton(x, y int) bool {
	return x >= panelWidth-panelPadding-closeWidth && x < panelWidth-panelPadding &&
		y >= panelPadding && y < panelPadding+panelLine
}

func (p *panelWidget) Update(fields []phosphor.PanelField) {
	if p.removed {
		return
	}
	resized := len(fields) != len(p.fields)
	p.fields = append(p.fields[:0], fields...)
	if resized {
		p.layout()
	}
	p.widget.Update()
}

func (p *panelWidget) paint() {
	painter := qt.NewQPainter2(p.widget.QPaintDevice)
	defer painter.End()

	w, h := p.widget.Width(), p.widget.Height()
	fg := qColor(phosphor.PhosphorGreen)

	painter.FillRect5(0, 0, w, h, qColor(phosphor.PanelShadow))
	painter.SetPenWithPen(qt.NewQPen3(fg))
	painter.DrawRect2(0, 0, w-1, h-1)

	font := qt.NewQFont6("Courier New", panelFont)
	font.SetFixedPitch(true)
	painter.SetFont(font)

	y := panelPadding + panelLine - 4
	font.SetBold(true)
	painter.SetFont(font)
	painter.DrawText3(panelPadding, y, phosphor.PanelTitle)
	font.SetBold(false)
	painter.SetFont(font)
	painter.DrawRect2(w-panelPadding-closeWidth, panelPadding, closeWidth, panelLine)
	painter.DrawText3(w-panelPadding-closeWidth+6, y, "Close")

	for _, f := range p.fields {
		y += panelLine
		label := f.Label + ": "
		painter.SetPen(fg)
		painter.DrawText3(panelPadding, y, label)
		if f.Tone.A > 0 {
			painter.SetPen(qColor(f.Tone))
		}
		painter.DrawText3(panelPadding+len(label)*7, y, f.Value)
	}

	y += panelLine + 8
	hint := phosphor.PanelHint
	dim := qColor(phosphor.PhosphorGreen.WithAlpha(0.7))
	painter.SetPen(dim)
	painter.DrawText3(panelPadding, y, hint)
}

func (p *panelWidget) SetVisible(visible bool) {
	if p.removed {
		return
	}
	p.visible = visible
	if visible {
		p.layout()
		p.widget.Show()
		p.widget.Raise()
	} else {
		p.widget.Hide()
	}
}

func (p *panelWidget) Visible() bool {
	return p.visible && !p.removed
}

func (p *panelWidget) Remove() error {
	if p.removed {
		return phosphor.ErrPanelGone
	}
	p.removed = true
	delete(p.doc.panels, p.id)
	p.widget.Hide()
	p.widget.DeleteLater()
	return nil
}
