// Package phosphorqt attaches the phosphor CRT compositor to Qt5 widgets
// through miqt.
//
// The overlay is a transparent child widget that covers the host widget
// and ignores mouse input. Each frame is painted into a pixmap with the
// per-pass composition modes and then drawn onto the host's pixels with
// CompositionMode_Overlay.
package phosphorqt

import (
	"runtime"

	"github.com/mappu/miqt/qt"
	"github.com/phroun/phosphor"
)

// Host adapts a Qt widget that renders a terminal
type Host struct {
	widget *qt.QWidget
	sched  *Scheduler
	filter *qt.QObject

	keys    phosphor.Listeners[phosphor.KeyEvent]
	data    phosphor.Listeners[[]byte]
	resizes phosphor.Listeners[struct{}]

	overlays []*overlay
}

// NewHost wraps w and starts watching its key and resize events
func NewHost(w *qt.QWidget) *Host {
	h := &Host{widget: w, sched: NewScheduler(w.QObject)}

	h.filter = qt.NewQObject()
	h.filter.OnEventFilter(func(super func(watched *qt.QObject, event *qt.QEvent) bool, watched *qt.QObject, event *qt.QEvent) bool {
		switch event.Type() {
		case qt.QEvent__KeyPress:
			h.keys.Emit(keyEvent(qt.UnsafeNewQKeyEvent(event.UnsafePointer())))
		case qt.QEvent__Resize:
			for _, o := range h.overlays {
				o.fit()
			}
			h.resizes.Emit(struct{}{})
		}
		return super(watched, event)
	})
	w.InstallEventFilter(h.filter)
	return h
}

// Close stops watching the widget
func (h *Host) Close() {
	h.widget.RemoveEventFilter(h.filter)
}

// NotifyData reports terminal output; it counts as activity
func (h *Host) NotifyData(b []byte) {
	h.data.Emit(b)
}

func (h *Host) Scheduler() phosphor.Scheduler { return h.sched }

func (h *Host) Viewport() phosphor.Viewport {
	return phosphor.Viewport{
		Width:      h.widget.Width(),
		Height:     h.widget.Height(),
		PixelRatio: h.widget.DevicePixelRatioF(),
	}
}

func (h *Host) CreateOverlay() (phosphor.Overlay, error) {
	if !h.widget.IsVisible() {
		return nil, phosphor.ErrNoCanvas
	}
	o := &overlay{host: h, list: phosphor.NewDisplayList(0, 0)}
	o.widget = qt.NewQWidget(h.widget)
	o.widget.SetAttribute(qt.WA_TransparentForMouseEvents)
	o.widget.SetFocusPolicy(qt.NoFocus)
	o.widget.OnPaintEvent(func(super func(event *qt.QPaintEvent), event *qt.QPaintEvent) {
		o.paint()
	})
	o.fit()
	o.widget.Hide()
	h.overlays = append(h.overlays, o)
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

func (h *Host) dropOverlay(o *overlay) {
	for i, x := range h.overlays {
		if x == o {
			h.overlays = append(h.overlays[:i], h.overlays[i+1:]...)
			return
		}
	}
}

// keyEvent converts a Qt key press into DOM-style key names
func keyEvent(event *qt.QKeyEvent) phosphor.KeyEvent {
	modifiers := event.Modifiers()
	ev := phosphor.KeyEvent{
		Shift: modifiers&qt.ShiftModifier != 0,
		Ctrl:  modifiers&qt.ControlModifier != 0,
		Alt:   modifiers&qt.AltModifier != 0,
		Meta:  modifiers&qt.MetaModifier != 0,
	}
	// Qt reports Command as Control on macOS
	if runtime.GOOS == "darwin" {
		ev.Ctrl, ev.Meta = ev.Meta, ev.Ctrl
	}

	key := qt.Key(event.Key())
	switch {
	case key == qt.Key_Return || key == qt.Key_Enter:
		ev.Key = "Enter"
	case key == qt.Key_Backspace:
		ev.Key = "Backspace"
	case key == qt.Key_Tab:
		ev.Key = "Tab"
	case key == qt.Key_Escape:
		ev.Key = "Escape"
	case key >= qt.Key_A && key <= qt.Key_Z:
		// Text() holds a control character while Ctrl is down
		r := rune('a' + int(key-qt.Key_A))
		if ev.Shift {
			r -= 'a' - 'A'
		}
		ev.Key = string(r)
	default:
		if text := event.Text(); text != "" {
			ev.Key = text
		} else {
			ev.Key = "Unidentified"
		}
	}
	return ev
}

// overlay is a transparent child widget stacked over the host widget
type overlay struct {
	host    *Host
	widget  *qt.QWidget
	list    *phosphor.DisplayList
	size    phosphor.OverlaySize
	removed bool
}

func (o *overlay) Surface() (phosphor.Surface, error) {
	if o.removed {
		return nil, phosphor.ErrDetached
	}
	return o.list, nil
}

// SetSize resizes the recording. Qt scales widget painting by the device
// pixel ratio itself, so the display size is kept for reference only.
func (o *overlay) SetSize(size phosphor.OverlaySize) {
	o.size = size
	o.list.Resize(size.BufferWidth, size.BufferHeight)
	o.fit()
}

// fit keeps the child widget covering its parent
func (o *overlay) fit() {
	if o.removed {
		return
	}
	o.widget.SetGeometry(0, 0, o.host.widget.Width(), o.host.widget.Height())
	o.widget.Raise()
}

func (o *overlay) SetVisible(visible bool) {
	if o.removed {
		return
	}
	if visible {
		o.widget.Show()
		o.widget.Raise()
	} else {
		o.widget.Hide()
	}
}

func (o *overlay) Present() {
	if !o.removed {
		o.widget.Update()
	}
}

func (o *overlay) Remove() {
	if o.removed {
		return
	}
	o.removed = true
	o.host.dropOverlay(o)
	o.widget.Hide()
	o.widget.DeleteLater()
}

func (o *overlay) paint() {
	w, h := o.list.Size()
	if o.removed || w <= 0 || h <= 0 || o.list.Len() == 0 {
		return
	}

	frame := qt.NewQPixmap2(w, h)
	frame.FillWithFillColor(qt.NewQColor2(qt.Transparent))
	fp := qt.NewQPainter2(frame.QPaintDevice)
	o.list.Replay(&painterSurface{p: fp, width: w, height: h})
	fp.End()

	painter := qt.NewQPainter2(o.widget.QPaintDevice)
	defer painter.End()
	painter.SetCompositionMode(qt.QPainter__CompositionMode_Overlay)
	painter.DrawPixmap9(0, 0, frame)
}
