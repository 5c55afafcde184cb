//go:build js && wasm

package phosphorweb

import (
	"fmt"
	"strconv"
	"syscall/js"

	"github.com/phroun/phosphor"
)

// Host adapts an xterm.js Terminal object
type Host struct {
	term  js.Value
	sched Scheduler

	keys    phosphor.Listeners[phosphor.KeyEvent]
	data    phosphor.Listeners[[]byte]
	resizes phosphor.Listeners[struct{}]

	subs  []js.Value // xterm IDisposable handles
	funcs []js.Func
}

// NewHost subscribes to term's key, data and resize events
func NewHost(term js.Value) (*Host, error) {
	if !term.Truthy() {
		return nil, fmt.Errorf("phosphorweb: no terminal object")
	}
	h := &Host{term: term}
	err := try(func() {
		h.listen("onKey", func(args []js.Value) {
			if len(args) > 0 {
				h.keys.Emit(keyEvent(args[0].Get("domEvent")))
			}
		})
		h.listen("onData", func(args []js.Value) {
			var b []byte
			if len(args) > 0 && args[0].Type() == js.TypeString {
				b = []byte(args[0].String())
			}
			h.data.Emit(b)
		})
		h.listen("onResize", func([]js.Value) {
			h.resizes.Emit(struct{}{})
		})
	})
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("phosphorweb: failed to subscribe to terminal: %w", err)
	}
	return h, nil
}

func (h *Host) listen(event string, fn func([]js.Value)) {
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		fn(args)
		return nil
	})
	h.funcs = append(h.funcs, cb)
	h.subs = append(h.subs, h.term.Call(event, cb))
}

// Close disposes the xterm subscriptions
func (h *Host) Close() {
	for _, s := range h.subs {
		if s.Truthy() {
			try(func() { s.Call("dispose") })
		}
	}
	for _, f := range h.funcs {
		f.Release()
	}
	h.subs, h.funcs = nil, nil
}

func (h *Host) Scheduler() phosphor.Scheduler { return h.sched }

// Viewport reports the window size, which is what xterm's canvas fills
func (h *Host) Viewport() phosphor.Viewport {
	win := js.Global().Get("window")
	return phosphor.Viewport{
		Width:      win.Get("innerWidth").Int(),
		Height:     win.Get("innerHeight").Int(),
		PixelRatio: win.Get("devicePixelRatio").Float(),
	}
}

func (h *Host) CreateOverlay() (phosphor.Overlay, error) {
	el := h.term.Get("element")
	if !el.Truthy() {
		return nil, phosphor.ErrNoCanvas
	}
	canvas := el.Call("querySelector", "canvas")
	if !canvas.Truthy() {
		return nil, phosphor.ErrNoCanvas
	}

	doc := js.Global().Get("document")
	oc := doc.Call("createElement", "canvas")
	ctx := oc.Call("getContext", "2d")
	if !ctx.Truthy() {
		return nil, phosphor.ErrNoContext
	}
	style := oc.Get("style")
	for _, kv := range overlayStyle {
		style.Set(kv[0], kv[1])
	}

	if pos := el.Get("style").Get("position").String(); pos != "relative" && pos != "absolute" {
		el.Get("style").Set("position", "relative")
	}
	canvas.Get("parentNode").Call("insertBefore", oc, canvas.Get("nextSibling"))

	return &overlay{canvas: oc, surface: &canvasSurface{canvas: oc, ctx: ctx}}, nil
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

// keyEvent reads a DOM KeyboardEvent
func keyEvent(ev js.Value) phosphor.KeyEvent {
	if !ev.Truthy() {
		return phosphor.KeyEvent{Key: "Unidentified"}
	}
	return phosphor.KeyEvent{
		Key:   keyName(ev.Get("key").String()),
		Ctrl:  ev.Get("ctrlKey").Bool(),
		Shift: ev.Get("shiftKey").Bool(),
		Alt:   ev.Get("altKey").Bool(),
		Meta:  ev.Get("metaKey").Bool(),
	}
}

// overlay is the stacked <canvas>
type overlay struct {
	canvas  js.Value
	surface *canvasSurface
	removed bool
}

func (o *overlay) Surface() (phosphor.Surface, error) {
	if o.removed {
		return nil, phosphor.ErrDetached
	}
	return o.surface, nil
}

func (o *overlay) SetSize(size phosphor.OverlaySize) {
	o.canvas.Set("width", size.BufferWidth)
	o.canvas.Set("height", size.BufferHeight)
	style := o.canvas.Get("style")
	style.Set("width", px(size.DisplayWidth))
	style.Set("height", px(size.DisplayHeight))
}

func (o *overlay) SetVisible(visible bool) {
	display := "none"
	if visible {
		display = "block"
	}
	o.canvas.Get("style").Set("display", display)
}

// Present is a no-op: the browser composites the canvas itself
func (o *overlay) Present() {}

func (o *overlay) Remove() {
	if o.removed {
		return
	}
	o.removed = true
	if parent := o.canvas.Get("parentNode"); parent.Truthy() {
		try(func() { parent.Call("removeChild", o.canvas) })
	}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// try runs fn and turns a thrown JavaScript exception into an error
func try(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = jsErr
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
