package phosphorgtk

import (
	"fmt"
	"html"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/phroun/phosphor"
)

// Document hosts the diagnostic panel as a small window kept above parent.
// Panels are tracked per Document, which plays the role of the page.
type Document struct {
	parent *gtk.Window
	panels map[string]*panelWindow
	styled bool
}

// NewDocument creates a panel document for windows owned by parent
func NewDocument(parent *gtk.Window) *Document {
	return &Document{parent: parent, panels: make(map[string]*panelWindow)}
}

func (d *Document) LookupPanel(id string) (phosphor.PanelNode, bool) {
	p, ok := d.panels[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (d *Document) CreatePanel(id string, onClose func()) (phosphor.PanelNode, error) {
	d.applyCSS()

	win, err := gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return nil, err
	}
	win.SetName(id)
	win.SetTitle(phosphor.PanelTitle)
	win.SetDefaultSize(250, -1)
	win.SetResizable(false)
	win.SetKeepAbove(true)
	win.SetSkipTaskbarHint(true)
	if d.parent != nil {
		win.SetTransientFor(d.parent)
	}

	box, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 2)
	if err != nil {
		return nil, err
	}
	box.SetMarginStart(10)
	box.SetMarginEnd(10)
	box.SetMarginTop(10)
	box.SetMarginBottom(10)

	header, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 8)
	if err != nil {
		return nil, err
	}
	title, err := gtk.LabelNew("")
	if err != nil {
		return nil, err
	}
	title.SetMarkup("<b>" + html.EscapeString(phosphor.PanelTitle) + "</b>")
	closeBtn, err := gtk.ButtonNewWithLabel("Close")
	if err != nil {
		return nil, err
	}
	closeBtn.Connect("clicked", func() {
		if onClose != nil {
			onClose()
		}
	})
	header.PackStart(title, true, true, 0)
	header.PackEnd(closeBtn, false, false, 0)
	box.PackStart(header, false, false, 0)

	rows, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 1)
	if err != nil {
		return nil, err
	}
	box.PackStart(rows, false, false, 0)

	hint, err := gtk.LabelNew(phosphor.PanelHint)
	if err != nil {
		return nil, err
	}
	hint.SetName("crt-debug-hint")
	box.PackStart(hint, false, false, 6)

	win.Add(box)

	p := &panelWindow{doc: d, id: id, win: win, rows: rows, visible: true}
	// Closing the window only hides it; the registry decides when it goes away
	win.Connect("delete-event", func() bool {
		if onClose != nil {
			onClose()
		}
		return true
	})
	win.ShowAll()

	d.panels[id] = p
	return p, nil
}

// BindShortcut listens for Ctrl+Shift+D on the parent window
func (d *Document) BindShortcut(fn func()) phosphor.Disposable {
	if d.parent == nil {
		return phosphor.DisposeFunc(nil)
	}
	handle := d.parent.Connect("key-press-event", func(_ interface{}, ev *gdk.Event) bool {
		if keyEvent(gdk.EventKeyNewFromEvent(ev)).IsPanelShortcut() {
			fn()
			return true
		}
		return false
	})
	return phosphor.Once(func() { d.parent.HandlerDisconnect(handle) })
}

// applyCSS installs the panel's green-on-black style once per document
func (d *Document) applyCSS() {
	if d.styled {
		return
	}
	d.styled = true

	provider, err := gtk.CssProviderNew()
	if err != nil {
		return
	}
	fg := phosphor.PhosphorGreen
	css := fmt.Sprintf(`
		#%[1]s {
			background-color: %[2]s;
			border: 1px solid %[3]s;
			color: %[3]s;
			font-family: "Courier New", monospace;
			font-size: 12px;
		}
		#%[1]s button {
			background: none;
			border: 1px solid %[3]s;
			color: %[3]s;
			font-size: 10px;
			padding: 2px 6px;
		}
		#crt-debug-hint {
			font-size: 10px;
			opacity: 0.7;
		}
	`, phosphor.PanelID, phosphor.PanelShadow.CSS(), fg.Hex())

	provider.LoadFromData(css)
	screen, err := gdk.ScreenGetDefault()
	if err == nil {
		gtk.AddProviderForScreen(screen, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	}
}

// panelWindow is a mounted panel
type panelWindow struct {
	doc     *Document
	id      string
	win     *gtk.Window
	rows    *gtk.Box
	labels  []*gtk.Label
	visible bool
	removed bool
}

func (p *panelWindow) Update(fields []phosphor.PanelField) {
	if p.removed {
		return
	}
	for len(p.labels) < len(fields) {
		l, err := gtk.LabelNew("")
		if err != nil {
			return
		}
		l.SetHAlign(gtk.ALIGN_START)
		p.rows.PackStart(l, false, false, 0)
		l.Show()
		p.labels = append(p.labels, l)
	}
	for i, f := range fields {
		p.labels[i].SetMarkup(fieldMarkup(f))
	}
}

func fieldMarkup(f phosphor.PanelField) string {
	value := html.EscapeString(f.Value)
	if f.Tone.A > 0 {
		value = fmt.Sprintf(`<span foreground="%s">%s</span>`, f.Tone.Hex(), value)
	}
	return html.EscapeString(f.Label) + ": " + value
}

func (p *panelWindow) SetVisible(visible bool) {
	if p.removed {
		return
	}
	p.visible = visible
	if visible {
		p.win.Show()
	} else {
		p.win.Hide()
	}
}

func (p *panelWindow) Visible() bool {
	return p.visible && !p.removed
}

func (p *panelWindow) Remove() error {
	if p.removed {
		return phosphor.ErrPanelGone
	}
	p.removed = true
	delete(p.doc.panels, p.id)
	// destroy after the current signal emission finishes
	win := p.win
	glib.IdleAdd(func() bool {
		win.Destroy()
		return false
	})
	return nil
}
