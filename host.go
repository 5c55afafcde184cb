package phosphor

import (
	"errors"
	"math"
)

var (
	// ErrNoCanvas means the host has not mounted its own drawing surface yet
	ErrNoCanvas = errors.New("phosphor: host has no rendered canvas")
	// ErrNoContext means the overlay could not provide a 2D drawing context
	ErrNoContext = errors.New("phosphor: could not get 2D context for overlay")
	// ErrDetached is returned by hosts used after teardown
	ErrDetached = errors.New("phosphor: host detached")
	// ErrPanelGone means the panel node was already removed from the document
	ErrPanelGone = errors.New("phosphor: panel already removed")
)

// KeyEvent is a key press observed on the host terminal
type KeyEvent struct {
	Key   string // DOM-style key name: "Enter", "a", "D", "ArrowUp", ...
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// IsEnter reports whether the key is Enter/Return
func (k KeyEvent) IsEnter() bool {
	return k.Key == "Enter"
}

// IsPanelShortcut reports whether the key is the diagnostic panel toggle
// (Ctrl+Shift+D)
func (k KeyEvent) IsPanelShortcut() bool {
	return k.Ctrl && k.Shift && (k.Key == "D" || k.Key == "d")
}

// Viewport is the host's logical size plus its device pixel ratio
type Viewport struct {
	Width, Height int
	PixelRatio    float64
}

// OverlaySize is what an overlay must be set to for a viewport: the pixel
// buffer matches the logical viewport while the displayed size is scaled by
// the device pixel ratio.
type OverlaySize struct {
	BufferWidth, BufferHeight   int
	DisplayWidth, DisplayHeight float64
}

// SizeFor computes the overlay size for a viewport
func SizeFor(v Viewport) OverlaySize {
	ratio := v.PixelRatio
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	w, h := max(v.Width, 0), max(v.Height, 0)
	return OverlaySize{
		BufferWidth:   w,
		BufferHeight:  h,
		DisplayWidth:  float64(w) * ratio,
		DisplayHeight: float64(h) * ratio,
	}
}

// Overlay is the transparent surface stacked above the host's own canvas
type Overlay interface {
	// Surface returns the overlay's 2D drawing context
	Surface() (Surface, error)
	// SetSize resynchronizes the backing store and displayed size
	SetSize(size OverlaySize)
	// SetVisible shows or hides the overlay
	SetVisible(visible bool)
	// Present hands a finished frame to the toolkit
	Present()
	// Remove detaches the overlay from the host; it is not used afterwards
	Remove()
}

// Host is the terminal the compositor attaches to. All callbacks are
// delivered on the scheduler's thread.
type Host interface {
	// Scheduler returns the host's event loop
	Scheduler() Scheduler
	// Viewport returns the current logical size and pixel ratio
	Viewport() Viewport
	// CreateOverlay stacks a new overlay above the host's primary canvas.
	// It fails with ErrNoCanvas when that canvas is not mounted.
	CreateOverlay() (Overlay, error)
	// OnKey subscribes to key presses
	OnKey(fn func(KeyEvent)) Disposable
	// OnData subscribes to data written to the terminal (used as activity)
	OnData(fn func([]byte)) Disposable
	// OnResize subscribes to size changes
	OnResize(fn func()) Disposable
}

// Observer receives compositor events that other components can react to
type Observer interface {
	// ManualRedraw is called when an Enter key fires a redraw sweep
	ManualRedraw()
	// PowerSurge is called when an idle power surge starts
	PowerSurge()
}

// Listeners is an ordered set of callbacks for one host event stream.
// Backends use it to fan a toolkit signal out to subscribers.
type Listeners[T any] struct {
	next    int
	entries []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// Add subscribes fn; disposing the result unsubscribes it
func (l *Listeners[T]) Add(fn func(T)) Disposable {
	l.next++
	id := l.next
	l.entries = append(l.entries, listener[T]{id: id, fn: fn})
	return Once(func() {
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	})
}

// Emit calls every subscriber in subscription order. Subscribers may
// unsubscribe during Emit.
func (l *Listeners[T]) Emit(v T) {
	for _, e := range l.entries {
		e.fn(v)
	}
}

// Len returns the number of subscribers
func (l *Listeners[T]) Len() int {
	return len(l.entries)
}
