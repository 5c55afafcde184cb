package phosphor

import (
	"log"
	"math/rand"
	"os"
	"time"
)

// Default settle delays after Attach
const (
	DefaultSetupDelay = 100 * time.Millisecond
	DefaultPanelDelay = 500 * time.Millisecond
)

// Options configures a Compositor
type Options struct {
	// Effect is the initial tuning. The zero EffectConfig means
	// DefaultEffectConfig(); to start disabled, set Enabled false on a
	// default config or call SetEnabled(false) after New.
	Effect     EffectConfig
	Now        func() time.Time // Clock (default: time.Now)
	Rand       func() float64   // Uniform [0,1) source (default: math/rand)
	Logger     *log.Logger      // Warning sink (default: stderr)
	Panels     *PanelRegistry   // Shared diagnostic panel; nil disables it
	Observer   Observer         // Optional event sink (sound cues etc.)
	Passes     []Pass           // Render passes (default: DefaultPasses())
	SetupDelay time.Duration    // Delay before the overlay is created (default: 100ms)
	PanelDelay time.Duration    // Delay before the panel is requested (default: 500ms)
}

// Compositor owns one overlay and the frame loop that paints the CRT effect
// over a host terminal. It is not safe for concurrent use: every method must
// be called on the host's UI thread, which is also where the host delivers
// events and scheduled callbacks.
type Compositor struct {
	cfg      EffectConfig
	now      func() time.Time
	rand     func() float64
	log      *log.Logger
	panels   *PanelRegistry
	observer Observer
	passes   []Pass
	opts     Options

	host       Host
	sched      Scheduler
	subs       []Disposable
	setupTimer Disposable
	panelTimer Disposable

	overlay   Overlay
	surface   Surface
	startTime time.Time
	loop      *Loop
	inert     bool

	activity *Activity
	manual   ManualRedraw
	surging  bool

	lease *PanelLease
}

// New creates a detached compositor
func New(opts Options) *Compositor {
	if opts.Effect == (EffectConfig{}) {
		opts.Effect = DefaultEffectConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "phosphor: ", log.LstdFlags)
	}
	if opts.Passes == nil {
		opts.Passes = DefaultPasses()
	}
	if opts.SetupDelay <= 0 {
		opts.SetupDelay = DefaultSetupDelay
	}
	if opts.PanelDelay <= 0 {
		opts.PanelDelay = DefaultPanelDelay
	}

	c := &Compositor{
		cfg:      opts.Effect.Normalize(),
		now:      opts.Now,
		rand:     opts.Rand,
		log:      opts.Logger,
		panels:   opts.Panels,
		observer: opts.Observer,
		passes:   opts.Passes,
		opts:     opts,
	}
	c.activity = NewActivity(c.now())
	return c
}

// Attach hooks the compositor to a host terminal. Input tracking starts
// immediately; the overlay is created after the setup delay (so the host's
// own canvas can mount) and the diagnostic panel after the panel delay.
func (c *Compositor) Attach(h Host) {
	if c.host != nil {
		c.warnf("already attached; ignoring second Attach")
		return
	}
	if h == nil || h.Scheduler() == nil {
		c.warnf("host has no scheduler; effect disabled")
		return
	}
	c.host = h
	c.sched = h.Scheduler()
	c.inert = false
	c.loop = NewLoop(c.sched, c.renderFrame)
	c.activity.Touch(c.now())

	c.subs = append(c.subs,
		h.OnKey(c.onKey),
		h.OnData(c.onData),
		h.OnResize(c.onResize),
	)

	c.setupTimer = c.sched.AfterFunc(c.opts.SetupDelay, func() {
		c.setupTimer = nil
		c.setupOverlay()
		if c.cfg.Enabled && !c.inert {
			c.loop.Start()
		}
	})

	if c.panels != nil {
		c.panelTimer = c.sched.AfterFunc(c.opts.PanelDelay, func() {
			c.panelTimer = nil
			c.lease = c.panels.Request(c, c.sched)
		})
	}
}

// Detach stops the loop, drops every subscription, removes the overlay and
// releases the panel. It is idempotent and safe before setup completed or
// from inside a frame callback.
func (c *Compositor) Detach() {
	if c.loop != nil {
		c.loop.Stop()
		c.loop = nil
	}
	if c.setupTimer != nil {
		c.setupTimer.Dispose()
		c.setupTimer = nil
	}
	if c.panelTimer != nil {
		c.panelTimer.Dispose()
		c.panelTimer = nil
	}
	disposeAll(c.subs)
	c.subs = nil

	c.removeOverlay()

	if c.lease != nil {
		c.lease.Release()
		c.lease = nil
	}
	c.host = nil
	c.sched = nil
}

// Attached reports whether the compositor is attached to a host
func (c *Compositor) Attached() bool {
	return c.host != nil
}

func (c *Compositor) setupOverlay() {
	if c.host == nil || c.overlay != nil {
		return
	}
	overlay, err := c.host.CreateOverlay()
	if err != nil {
		c.inert = true
		c.warnf("%v", err)
		return
	}
	surface, err := overlay.Surface()
	if err == nil && surface == nil {
		err = ErrNoContext
	}
	if err != nil {
		overlay.Remove()
		c.inert = true
		c.warnf("%v", err)
		return
	}
	c.overlay = overlay
	c.surface = surface
	c.overlay.SetVisible(c.cfg.Enabled)
	c.resize()
	c.startTime = c.now()
}

func (c *Compositor) removeOverlay() {
	if c.overlay != nil {
		c.overlay.Remove()
	}
	c.overlay = nil
	c.surface = nil
}

// Inert reports whether overlay setup failed and the effect is permanently off
func (c *Compositor) Inert() bool {
	return c.inert
}

// HasOverlay reports whether the overlay is currently mounted
func (c *Compositor) HasOverlay() bool {
	return c.overlay != nil
}

// Loop exposes the frame loop state machine (nil while detached)
func (c *Compositor) Loop() *Loop {
	return c.loop
}

func (c *Compositor) onKey(ev KeyEvent) {
	now := c.now()
	c.activity.Touch(now)
	if ev.IsEnter() && c.manual.Trigger(now, c.rand()) && c.observer != nil {
		c.observer.ManualRedraw()
	}
}

func (c *Compositor) onData([]byte) {
	c.activity.Touch(c.now())
}

func (c *Compositor) onResize() {
	c.resize()
}

// resize resynchronizes the overlay with the host viewport. It runs
// synchronously from the resize notification, ahead of the next frame.
func (c *Compositor) resize() {
	if c.overlay == nil || c.host == nil {
		return
	}
	c.overlay.SetSize(SizeFor(c.host.Viewport()))
}

func (c *Compositor) renderFrame() {
	if !c.cfg.Enabled {
		c.loop.Stop()
		return
	}
	if c.surface == nil {
		return
	}
	c.RenderTo(c.surface, c.now().Sub(c.startTime))
	// a pass or observer may have detached us mid-frame
	if c.overlay != nil {
		c.overlay.Present()
	}
}

// RenderTo clears s and runs every pass for the given time since overlay
// creation, using the compositor's current tuning, idle and sweep state.
func (c *Compositor) RenderTo(s Surface, elapsed time.Duration) {
	now := c.now()
	w, h := s.Size()
	f := &Frame{
		Time:   elapsed.Seconds(),
		Width:  float64(w),
		Height: float64(h),
		Idle:   c.activity.IdleAt(now),
		Config: c.cfg,
		Rand:   c.rand,
	}
	f.ManualProgress, f.ManualActive = c.manual.Progress(now)

	s.Clear()
	for _, p := range c.passes {
		p.Render(s, f)
	}

	if f.Surge && !c.surging && c.observer != nil {
		c.observer.PowerSurge()
	}
	c.surging = f.Surge
}

// SetEnabled starts or stops the frame loop and shows or hides the overlay
func (c *Compositor) SetEnabled(enabled bool) {
	c.cfg.Enabled = enabled
	if c.overlay != nil {
		c.overlay.SetVisible(enabled)
	}
	if c.loop == nil || c.inert {
		return
	}
	if enabled {
		c.loop.Start()
	} else {
		c.loop.Stop()
	}
}

// Enabled reports whether the effect is on
func (c *Compositor) Enabled() bool {
	return c.cfg.Enabled
}

// Toggle flips the enabled state
func (c *Compositor) Toggle() {
	c.SetEnabled(!c.cfg.Enabled)
}

// UpdateOptions merges p into the tuning. A change of Enabled goes through
// SetEnabled so the loop and overlay visibility follow it.
func (c *Compositor) UpdateOptions(p EffectPatch) {
	enabled := c.cfg.Enabled
	c.cfg = c.cfg.Merge(p)
	if c.cfg.Enabled != enabled {
		c.SetEnabled(c.cfg.Enabled)
	}
}

// Options returns a snapshot of the current tuning
func (c *Compositor) Options() EffectConfig {
	return c.cfg
}

// ScanlineIntensity returns the scanline darkness in [0,1]
func (c *Compositor) ScanlineIntensity() float64 { return c.cfg.ScanlineIntensity }

// SetScanlineIntensity sets the scanline darkness, clamped to [0,1]
func (c *Compositor) SetScanlineIntensity(v float64) {
	c.cfg.ScanlineIntensity = clamp01(v)
}

// Curvature returns the screen curvature in [0,1]
func (c *Compositor) Curvature() float64 { return c.cfg.Curvature }

// SetCurvature sets the curvature, clamped to [0,1]
func (c *Compositor) SetCurvature(v float64) {
	c.cfg.Curvature = clamp01(v)
}

// VignetteIntensity returns the vignette strength in [0,1]
func (c *Compositor) VignetteIntensity() float64 { return c.cfg.VignetteIntensity }

// SetVignetteIntensity sets the vignette strength, clamped to [0,1]
func (c *Compositor) SetVignetteIntensity(v float64) {
	c.cfg.VignetteIntensity = clamp01(v)
}

// GlowIntensity returns the bloom strength; 0 skips the glow pass
func (c *Compositor) GlowIntensity() float64 { return c.cfg.GlowIntensity }

// FlickerSpeed returns the time scale of the scanline and flicker oscillators
func (c *Compositor) FlickerSpeed() float64 { return c.cfg.FlickerSpeed }

// ScanlineCount returns the configured number of scanlines
func (c *Compositor) ScanlineCount() int { return c.cfg.ScanlineCount }

// ChromaAberration returns the configured aberration (shown on the panel only)
func (c *Compositor) ChromaAberration() float64 { return c.cfg.ChromaAberration }

// IsIdle reports whether no input has been seen for longer than IdleThreshold
func (c *Compositor) IsIdle() bool {
	return c.activity.IdleAt(c.now())
}

// IdleAt is IsIdle evaluated at an explicit time
func (c *Compositor) IdleAt(t time.Time) bool {
	if t.IsZero() {
		t = c.now()
	}
	return c.activity.IdleAt(t)
}

// ManualRedrawActive reports whether an Enter-triggered sweep is showing
func (c *Compositor) ManualRedrawActive() bool {
	return c.manual.Active(c.now())
}

// SwitchToCSS removes the overlay and nothing else: the frame loop keeps
// ticking (as no-ops) and input tracking stays subscribed until Detach.
func (c *Compositor) SwitchToCSS() {
	c.removeOverlay()
}

// PanelSnapshot implements PanelSource
func (c *Compositor) PanelSnapshot() PanelSnapshot {
	return PanelSnapshot{
		Config: c.cfg,
		Idle:   c.IsIdle(),
	}
}

// PanelLease returns the compositor's panel handle (nil until requested)
func (c *Compositor) PanelLease() *PanelLease {
	return c.lease
}

func (c *Compositor) warnf(format string, args ...any) {
	c.log.Printf("warning: "+format, args...)
}
