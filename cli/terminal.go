package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/phroun/phosphor"
)

// BorderStyle defines the visual style for the terminal window border
type BorderStyle int

const (
	BorderNone    BorderStyle = iota // No border
	BorderSingle                     // Single-line box drawing characters
	BorderDouble                     // Double-line box drawing characters
	BorderHeavy                      // Heavy/thick box drawing characters
	BorderRounded                    // Rounded corners (single line)
)

// Options configures terminal creation
type Options struct {
	// Display options
	BorderStyle   BorderStyle   // Border style around the content area
	Title         string        // Title displayed in the top border
	ShowStatusBar bool          // Render a status bar on the bottom row
	Status        func() string // Extra text appended to the status bar
	Prompt        string        // Input line prompt (default: "> ")
	Scrollback    int           // Number of output lines kept (default: 1000)

	// Overlay sampling: each cell is covered by Supersample x 2*Supersample
	// overlay pixels (cells are about twice as tall as wide). Default: 2
	Supersample int

	// Colors used for cells drawn with the terminal's default colors
	Foreground phosphor.Color // default: PhosphorGreen
	Background phosphor.Color // default: Black

	Screen tcell.Screen     // Screen to draw on (default: tcell.NewScreen(), initialized by New)
	Now    func() time.Time // Scheduler clock (default: time.Now)
}

// Terminal is a line-oriented terminal drawn with tcell. It implements
// phosphor.Host: the CRT overlay is rasterized per cell and mixed onto the
// colors of every content cell.
type Terminal struct {
	screen  tcell.Screen
	options Options
	owned   bool // screen was created (and must be finalized) by us
	sched   *Scheduler
	border  borderCharSet

	lines []string
	input []rune

	keys    phosphor.Listeners[phosphor.KeyEvent]
	data    phosphor.Listeners[[]byte]
	resizes phosphor.Listeners[struct{}]
	submits phosphor.Listeners[string]

	overlays []*overlay
	doc      *Document

	posts chan func()
	dirty bool
	quit  bool
}

// New creates a terminal on opts.Screen, or on a freshly initialized
// terminal screen when none is given.
func New(opts Options) (*Terminal, error) {
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.Scrollback <= 0 {
		opts.Scrollback = 1000
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 2
	}
	if opts.Foreground == (phosphor.Color{}) {
		opts.Foreground = phosphor.PhosphorGreen
	}
	if opts.Background == (phosphor.Color{}) {
		opts.Background = phosphor.Black
	}

	t := &Terminal{
		screen:  opts.Screen,
		options: opts,
		sched:   NewScheduler(opts.Now),
		posts:   make(chan func(), 64),
		dirty:   true,
	}
	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize screen: %w", err)
		}
		t.screen = screen
		t.owned = true
	}
	if opts.BorderStyle != BorderNone {
		t.border = borderStyles[opts.BorderStyle]
	}
	t.screen.EnableMouse()
	t.doc = &Document{term: t}
	return t, nil
}

// Close restores the host terminal when the screen is ours
func (t *Terminal) Close() {
	t.screen.DisableMouse()
	if t.owned {
		t.screen.Fini()
	}
}

// Screen returns the underlying tcell screen
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// Document returns the panel document drawn over this terminal
func (t *Terminal) Document() *Document {
	return t.doc
}

// Run processes screen events and scheduled callbacks until ctx is done or
// Ctrl+C is pressed. Every callback handed to the compositor runs here.
func (t *Terminal) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go t.screen.ChannelEvents(events, quit)

	wake := time.NewTimer(time.Hour)
	defer wake.Stop()

	t.draw()
	for !t.quit {
		wait := time.Hour
		if next, ok := t.sched.Next(); ok {
			wait = max(time.Until(next), 0)
		}
		wake.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			t.handleEvent(ev)
		case fn := <-t.posts:
			fn()
		case <-wake.C:
			t.sched.RunDue(t.sched.now())
		}

		if t.dirty {
			t.draw()
		}
	}
	return nil
}

// Post runs fn on the event loop; it is the only method safe to call from
// other goroutines.
func (t *Terminal) Post(fn func()) {
	t.posts <- fn
}

// Write appends output to the terminal. Output counts as activity.
func (t *Terminal) Write(p []byte) (int, error) {
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	parts := strings.Split(text, "\n")
	if len(t.lines) == 0 {
		t.lines = append(t.lines, "")
	}
	last := len(t.lines) - 1
	t.lines[last] += parts[0]
	t.lines = append(t.lines, parts[1:]...)
	// the open line after a trailing newline does not count
	if over := len(t.lines) - t.options.Scrollback - 1; over > 0 {
		t.lines = append(t.lines[:0], t.lines[over:]...)
	}
	t.dirty = true
	t.data.Emit(p)
	return len(p), nil
}

// Println writes a line of output
func (t *Terminal) Println(s string) {
	t.Write([]byte(s + "\n"))
}

// Lines returns the output lines, oldest first. The empty line left open
// by a trailing newline is not included.
func (t *Terminal) Lines() []string {
	if n := len(t.lines); n > 0 && t.lines[n-1] == "" {
		return t.lines[:n-1]
	}
	return t.lines
}

// Input returns the text typed on the prompt line so far
func (t *Terminal) Input() string {
	return string(t.input)
}

// OnSubmit subscribes to lines entered at the prompt
func (t *Terminal) OnSubmit(fn func(line string)) phosphor.Disposable {
	return t.submits.Add(fn)
}

func (t *Terminal) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		t.handleKey(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			t.doc.click(x, y)
		}
	case *tcell.EventResize:
		t.screen.Sync()
		t.resizes.Emit(struct{}{})
		t.dirty = true
	}
}

// contentRect returns the area inside the border and above the status bar
func (t *Terminal) contentRect() (x, y, cols, rows int) {
	w, h := t.screen.Size()
	cols, rows = w, h
	if t.options.BorderStyle != BorderNone {
		x, y = 1, 1
		cols -= 2
		rows -= 2
	}
	if t.options.ShowStatusBar {
		rows--
	}
	return x, y, max(cols, 0), max(rows, 0)
}

// phosphor.Host

func (t *Terminal) Scheduler() phosphor.Scheduler { return t.sched }

// Viewport reports the content area in overlay pixels
func (t *Terminal) Viewport() phosphor.Viewport {
	_, _, cols, rows := t.contentRect()
	ss := t.options.Supersample
	return phosphor.Viewport{Width: cols * ss, Height: rows * ss * 2, PixelRatio: 1}
}

func (t *Terminal) CreateOverlay() (phosphor.Overlay, error) {
	if _, _, cols, rows := t.contentRect(); cols == 0 || rows == 0 {
		return nil, phosphor.ErrNoCanvas
	}
	o := &overlay{term: t, raster: phosphor.NewRaster(0, 0)}
	t.overlays = append(t.overlays, o)
	return o, nil
}

func (t *Terminal) OnKey(fn func(phosphor.KeyEvent)) phosphor.Disposable {
	return t.keys.Add(fn)
}

func (t *Terminal) OnData(fn func([]byte)) phosphor.Disposable {
	return t.data.Add(fn)
}

func (t *Terminal) OnResize(fn func()) phosphor.Disposable {
	return t.resizes.Add(func(struct{}) { fn() })
}

func (t *Terminal) dropOverlay(o *overlay) {
	for i, x := range t.overlays {
		if x == o {
			t.overlays = append(t.overlays[:i], t.overlays[i+1:]...)
			t.dirty = true
			return
		}
	}
}

// overlay is a per-cell raster mixed onto the content area when drawn
type overlay struct {
	term    *Terminal
	raster  *phosphor.Raster
	visible bool
	removed bool
}

func (o *overlay) Surface() (phosphor.Surface, error) {
	if o.removed {
		return nil, phosphor.ErrDetached
	}
	return o.raster, nil
}

func (o *overlay) SetSize(size phosphor.OverlaySize) {
	if w, h := o.raster.Size(); w != size.BufferWidth || h != size.BufferHeight {
		o.raster.Resize(size.BufferWidth, size.BufferHeight)
	}
}

func (o *overlay) SetVisible(visible bool) {
	o.visible = visible
	o.term.dirty = true
}

func (o *overlay) Present() {
	if !o.removed {
		o.term.dirty = true
	}
}

func (o *overlay) Remove() {
	if o.removed {
		return
	}
	o.removed = true
	o.term.dropOverlay(o)
}
