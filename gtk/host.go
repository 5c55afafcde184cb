// Package phosphorgtk attaches the phosphor CRT compositor to GTK3 widgets.
//
// The overlay is drawn from a handler connected after the host widget's own
// "draw" signal: each frame is replayed into a cairo group that is then
// painted with the OVERLAY operator, the same mix a browser applies to a
// stacked canvas with mix-blend-mode: overlay.
package phosphorgtk

import (
	"github.com/gotk3/gotk3/cairo"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/phroun/phosphor"
)

// Host adapts a GTK widget that renders a terminal
type Host struct {
	widget *gtk.Widget
	sched  Scheduler

	keys    phosphor.Listeners[phosphor.KeyEvent]
	data    phosphor.Listeners[[]byte]
	resizes phosphor.Listeners[struct{}]

	handlers []glib.SignalHandle
}

// NewHost wraps w. The widget should be focusable and accept key presses.
func NewHost(w gtk.IWidget) *Host {
	h := &Host{widget: w.ToWidget()}
	h.widget.AddEvents(int(gdk.KEY_PRESS_MASK))
	h.handlers = append(h.handlers,
		h.widget.Connect("key-press-event", h.onKeyPress),
		h.widget.Connect("size-allocate", h.onSizeAllocate),
	)
	return h
}

// Close disconnects the host's signal handlers
func (h *Host) Close() {
	for _, id := range h.handlers {
		h.widget.HandlerDisconnect(id)
	}
	h.handlers = nil
}

// NotifyData reports terminal output; it counts as activity
func (h *Host) NotifyData(b []byte) {
	h.data.Emit(b)
}

func (h *Host) Scheduler() phosphor.Scheduler { return h.sched }

func (h *Host) Viewport() phosphor.Viewport {
	return phosphor.Viewport{
		Width:      h.widget.GetAllocatedWidth(),
		Height:     h.widget.GetAllocatedHeight(),
		PixelRatio: float64(h.widget.GetScaleFactor()),
	}
}

func (h *Host) CreateOverlay() (phosphor.Overlay, error) {
	if !h.widget.GetRealized() {
		return nil, phosphor.ErrNoCanvas
	}
	o := &overlay{widget: h.widget, list: phosphor.NewDisplayList(0, 0)}
	o.handle = h.widget.ConnectAfter("draw", o.onDraw)
	return o, nil
}

func (h *Host) OnKey(fn func(phosphor.KeyEvent)) phosphor.Disposable {
	return h.keys.Add(fn)
}

func (h *Host) OnData(fn func([]byte)) phosphor.Disposable {
	return h.data.Add(fn)
}

func (h *Host) OnResize(fn func()) phosphor.Disposable {
	return h.resizes.Add(func(struct{}) { fn() })
}

func (h *Host) onKeyPress(_ interface{}, ev *gdk.Event) bool {
	h.keys.Emit(keyEvent(gdk.EventKeyNewFromEvent(ev)))
	return false // let the terminal handle it too
}

func (h *Host) onSizeAllocate() {
	h.resizes.Emit(struct{}{})
}

// keyEvent converts a GDK key press into the DOM-style key names used by
// the compositor
func keyEvent(key *gdk.EventKey) phosphor.KeyEvent {
	keyval := key.KeyVal()
	state := key.State()
	ev := phosphor.KeyEvent{
		Shift: state&uint(gdk.SHIFT_MASK) != 0,
		Ctrl:  state&uint(gdk.CONTROL_MASK) != 0,
		Alt:   state&uint(gdk.MOD1_MASK) != 0,
		Meta:  state&uint(gdk.META_MASK) != 0,
	}
	switch keyval {
	case gdk.KEY_Return, gdk.KEY_KP_Enter:
		ev.Key = "Enter"
	case gdk.KEY_BackSpace:
		ev.Key = "Backspace"
	case gdk.KEY_Tab:
		ev.Key = "Tab"
	case gdk.KEY_Escape:
		ev.Key = "Escape"
	default:
		if r := gdk.KeyvalToUnicode(keyval); r != 0 {
			ev.Key = string(r)
		} else {
			ev.Key = "Unidentified"
		}
	}
	return ev
}

// overlay paints the recorded frame after the host widget has drawn
type overlay struct {
	widget  *gtk.Widget
	list    *phosphor.DisplayList
	size    phosphor.OverlaySize
	visible bool
	handle  glib.SignalHandle
	removed bool
}

func (o *overlay) Surface() (phosphor.Surface, error) {
	if o.removed {
		return nil, phosphor.ErrDetached
	}
	return o.list, nil
}

// SetSize resizes the recording. GTK applies the scale factor to cairo
// itself, so the display size is kept for reference only.
func (o *overlay) SetSize(size phosphor.OverlaySize) {
	o.size = size
	o.list.Resize(size.BufferWidth, size.BufferHeight)
}

func (o *overlay) SetVisible(visible bool) {
	o.visible = visible
	o.widget.QueueDraw()
}

func (o *overlay) Present() {
	o.widget.QueueDraw()
}

func (o *overlay) Remove() {
	if o.removed {
		return
	}
	o.removed = true
	o.widget.HandlerDisconnect(o.handle)
	o.widget.QueueDraw()
}

func (o *overlay) onDraw(_ interface{}, cr *cairo.Context) bool {
	if !o.visible || o.removed || o.list.Len() == 0 {
		return false
	}
	w, h := o.list.Size()
	cr.Save()
	cr.Rectangle(0, 0, float64(w), float64(h))
	cr.Clip()
	cr.PushGroup()
	o.list.Replay(newCairoSurface(cr, w, h))
	cr.PopGroupToSource()
	cr.SetOperator(cairo.OPERATOR_OVERLAY)
	cr.Paint()
	cr.Restore()
	return false
}
