package phosphor

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

// attachAndSetup attaches the rig's compositor and lets the setup delay pass
func (r *rig) attachAndSetup(t *testing.T) *fakeOverlay {
	t.Helper()
	r.c.Attach(r.host)
	r.sched.Advance(DefaultSetupDelay)
	o := r.host.overlay()
	if o == nil {
		t.Fatal("Expected overlay after setup delay")
	}
	return o
}

func TestAttachCreatesOverlayAfterDelay(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	r.c.Attach(r.host)

	if r.host.subscriptions() != 3 {
		t.Errorf("Expected key/data/resize subscriptions, got %d", r.host.subscriptions())
	}
	r.sched.Advance(DefaultSetupDelay - time.Millisecond)
	if r.host.overlay() != nil || r.c.HasOverlay() {
		t.Fatal("Overlay should wait for the setup delay")
	}

	r.sched.Advance(time.Millisecond)
	o := r.host.overlay()
	if o == nil {
		t.Fatal("Expected overlay after setup delay")
	}
	if !o.visible {
		t.Error("Enabled overlay should be visible")
	}
	if o.size.BufferWidth != 200 || o.size.BufferHeight != 100 {
		t.Errorf("Overlay not synced to viewport: %+v", o.size)
	}
	if r.c.Loop().State() != LoopRunning || r.sched.PendingFrames() != 1 {
		t.Errorf("Expected running loop with one frame queued")
	}

	r.sched.Frame()
	if o.presents != 1 {
		t.Errorf("Expected one presented frame, got %d", o.presents)
	}
	if len(o.list.Fills()) == 0 {
		t.Error("Expected the frame to draw")
	}
}

func TestDisabledNeverSchedules(t *testing.T) {
	cfg := DefaultEffectConfig()
	cfg.Enabled = false
	r := newRig(cfg, nil)
	o := r.attachAndSetup(t)

	for i := 0; i < 10; i++ {
		r.sched.Advance(time.Second)
		r.sched.Frame()
	}
	if r.sched.PendingFrames() != 0 || r.c.Loop().Frames() != 0 {
		t.Errorf("Disabled compositor scheduled frames")
	}
	if o.visible {
		t.Error("Disabled overlay should stay hidden")
	}
	if o.presents != 0 {
		t.Errorf("Expected no presents, got %d", o.presents)
	}
}

func TestSetEnabledAndToggle(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	o := r.attachAndSetup(t)

	r.c.SetEnabled(false)
	if o.visible || r.sched.PendingFrames() != 0 || r.c.Loop().State() != LoopStopped {
		t.Error("Disabling should hide the overlay and stop the loop")
	}

	r.c.Toggle()
	if !r.c.Enabled() || !o.visible || r.sched.PendingFrames() != 1 {
		t.Error("Toggle should re-enable with one frame queued")
	}

	r.c.SetEnabled(true)
	if r.sched.PendingFrames() != 1 {
		t.Errorf("Enabling twice should not duplicate the loop, got %d frames", r.sched.PendingFrames())
	}
}

func TestUpdateOptions(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	o := r.attachAndSetup(t)

	r.c.UpdateOptions(EffectPatch{ScanlineIntensity: Float(3), ScanlineCount: Int(300)})
	if r.c.ScanlineIntensity() != 1 || r.c.ScanlineCount() != 300 {
		t.Errorf("Unexpected options %+v", r.c.Options())
	}
	if !r.c.Enabled() {
		t.Error("Unrelated patch should not change Enabled")
	}

	r.c.UpdateOptions(EffectPatch{Enabled: Bool(false)})
	if o.visible || r.sched.PendingFrames() != 0 {
		t.Error("Disabling via UpdateOptions should stop the loop and hide the overlay")
	}
}

func TestClampedSetters(t *testing.T) {
	c := New(Options{})

	c.SetScanlineIntensity(5)
	if c.ScanlineIntensity() != 1 {
		t.Errorf("SetScanlineIntensity(5): expected 1, got %v", c.ScanlineIntensity())
	}
	c.SetScanlineIntensity(-2)
	if c.ScanlineIntensity() != 0 {
		t.Errorf("SetScanlineIntensity(-2): expected 0, got %v", c.ScanlineIntensity())
	}
	c.SetCurvature(2)
	if c.Curvature() != 1 {
		t.Errorf("SetCurvature(2): expected 1, got %v", c.Curvature())
	}
	c.SetVignetteIntensity(-1)
	if c.VignetteIntensity() != 0 {
		t.Errorf("SetVignetteIntensity(-1): expected 0, got %v", c.VignetteIntensity())
	}
	c.SetVignetteIntensity(0.42)
	if c.VignetteIntensity() != 0.42 {
		t.Errorf("In-range value should pass through, got %v", c.VignetteIntensity())
	}
}

func TestIdleTracking(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	r.c.Attach(r.host)
	t0 := r.clock.Now()

	if r.c.IdleAt(t0.Add(4999 * time.Millisecond)) {
		t.Error("Should be active 4999ms after attach")
	}
	if !r.c.IdleAt(t0.Add(5001 * time.Millisecond)) {
		t.Error("Should be idle 5001ms after attach")
	}

	r.sched.Advance(6 * time.Second)
	if !r.c.IsIdle() {
		t.Fatal("Expected idle after 6s without input")
	}
	r.host.write([]byte("ls\r\n"))
	if r.c.IsIdle() {
		t.Error("Data should count as activity")
	}

	r.sched.Advance(6 * time.Second)
	r.host.press(KeyEvent{Key: "a"})
	if r.c.IsIdle() {
		t.Error("Key should count as activity")
	}
}

func TestEnterTriggersManualRedraw(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	r.attachAndSetup(t)

	r.roll = 0.9
	r.host.press(KeyEvent{Key: "Enter"})
	if r.c.ManualRedrawActive() || r.obs.manual != 0 {
		t.Error("High roll should not trigger a sweep")
	}

	r.roll = 0.1
	r.host.press(KeyEvent{Key: "x"})
	if r.c.ManualRedrawActive() {
		t.Error("Only Enter may trigger a sweep")
	}
	r.host.press(KeyEvent{Key: "Enter"})
	if !r.c.ManualRedrawActive() || r.obs.manual != 1 {
		t.Error("Low roll on Enter should trigger a sweep")
	}

	r.sched.Advance(ManualRedrawWindow)
	if r.c.ManualRedrawActive() {
		t.Error("Sweep should end after its window")
	}
}

func TestResizeSyncsOverlay(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	o := r.attachAndSetup(t)

	r.host.resize(Viewport{Width: 800, Height: 600, PixelRatio: 2})
	want := OverlaySize{BufferWidth: 800, BufferHeight: 600, DisplayWidth: 1600, DisplayHeight: 1200}
	if o.size != want {
		t.Errorf("Expected %+v, got %+v", want, o.size)
	}
	if w, h := o.list.Size(); w != 800 || h != 600 {
		t.Errorf("Surface not resized before next frame: %dx%d", w, h)
	}
}

func TestSizeFor(t *testing.T) {
	got := SizeFor(Viewport{Width: 10, Height: 5, PixelRatio: 0})
	if got.DisplayWidth != 10 || got.DisplayHeight != 5 {
		t.Errorf("Invalid ratio should fall back to 1, got %+v", got)
	}
	got = SizeFor(Viewport{Width: -3, Height: 4, PixelRatio: 1.5})
	if got.BufferWidth != 0 || got.DisplayHeight != 6 {
		t.Errorf("Unexpected size %+v", got)
	}
}

func TestDetachIdempotent(t *testing.T) {
	doc := newFakeDocument()
	panels := NewPanelRegistry(doc, nil)
	r := newRig(DefaultEffectConfig(), panels)
	o := r.attachAndSetup(t)
	r.sched.Advance(DefaultPanelDelay)
	if panels.Refs() != 1 {
		t.Fatalf("Expected panel reference, got %d", panels.Refs())
	}

	r.c.Detach()
	r.c.Detach()

	if r.host.unsubscribes != 3 {
		t.Errorf("Expected 3 unsubscriptions, got %d", r.host.unsubscribes)
	}
	if o.removeCalls != 1 {
		t.Errorf("Expected overlay removed once, got %d", o.removeCalls)
	}
	if r.sched.PendingFrames() != 0 || r.sched.ActiveTimers() != 0 {
		t.Errorf("Detach left callbacks behind: frames=%d timers=%d", r.sched.PendingFrames(), r.sched.ActiveTimers())
	}
	if panels.Refs() != 0 || panels.Mounted() {
		t.Error("Last detach should unmount the panel")
	}
	if r.c.Attached() {
		t.Error("Expected detached")
	}
}

func TestDetachBeforeSetup(t *testing.T) {
	panels := NewPanelRegistry(newFakeDocument(), nil)
	r := newRig(DefaultEffectConfig(), panels)
	r.c.Attach(r.host)
	r.sched.Advance(50 * time.Millisecond)
	r.c.Detach()
	r.sched.Advance(time.Second)

	if len(r.host.overlays) != 0 {
		t.Error("Overlay created after detach")
	}
	if panels.Refs() != 0 {
		t.Error("Panel requested after detach")
	}
	if r.sched.PendingFrames() != 0 {
		t.Error("Frame scheduled after detach")
	}
}

type detachPass struct {
	c **Compositor
}

func (detachPass) Name() string { return "detach" }

func (p detachPass) Render(Surface, *Frame) { (*p.c).Detach() }

func TestDetachInsideFrame(t *testing.T) {
	clock := newFakeClock()
	sched := newManualScheduler(clock)
	host := newFakeHost(sched)
	logger, _ := newTestLogger()

	var c *Compositor
	c = New(Options{Now: clock.Now, Logger: logger, Passes: []Pass{detachPass{&c}}})
	c.Attach(host)
	sched.Advance(DefaultSetupDelay)
	sched.Frame()

	if sched.PendingFrames() != 0 {
		t.Errorf("Detach inside a frame must not reschedule, got %d", sched.PendingFrames())
	}
	if host.overlay().presents != 0 {
		t.Error("Detached overlay should not be presented")
	}
}

func TestSetupFailureLeavesInert(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	r.host.createErr = ErrNoCanvas
	r.c.Attach(r.host)
	r.sched.Advance(time.Second)

	if !r.c.Inert() || r.c.HasOverlay() {
		t.Error("Expected inert compositor without overlay")
	}
	if r.sched.PendingFrames() != 0 {
		t.Error("Inert compositor should not run frames")
	}
	r.c.SetEnabled(true)
	if r.sched.PendingFrames() != 0 {
		t.Error("Enabling an inert compositor should not start the loop")
	}
	if !strings.Contains(r.logs.String(), "no rendered canvas") {
		t.Errorf("Expected warning in log, got %q", r.logs.String())
	}
	r.c.Detach()
}

func TestSurfaceFailureRemovesOverlay(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	r.host.surfaceErr = errors.New("context lost")
	r.c.Attach(r.host)
	r.sched.Advance(time.Second)

	o := r.host.overlay()
	if o == nil || o.removeCalls != 1 {
		t.Fatal("Overlay without surface should be removed")
	}
	if !r.c.Inert() {
		t.Error("Expected inert compositor")
	}
	if !strings.Contains(r.logs.String(), "context lost") {
		t.Errorf("Expected warning in log, got %q", r.logs.String())
	}
}

func TestSwitchToCSSKeepsLoop(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	o := r.attachAndSetup(t)
	r.c.SwitchToCSS()

	if o.removeCalls != 1 || r.c.HasOverlay() {
		t.Error("SwitchToCSS should remove the overlay")
	}
	if r.c.Loop().State() != LoopRunning {
		t.Error("Loop keeps running after SwitchToCSS")
	}
	r.sched.Frame()
	if r.sched.PendingFrames() != 1 {
		t.Error("Loop should keep ticking as a no-op")
	}
	if r.host.subscriptions() != 3 {
		t.Error("Subscriptions stay live until Detach")
	}

	r.c.Detach()
	if o.removeCalls != 1 {
		t.Errorf("Detach should not remove the overlay again, got %d", o.removeCalls)
	}
	if r.host.subscriptions() != 0 {
		t.Error("Detach should drop subscriptions")
	}
}

func TestPowerSurgeObserved(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	r.c.Attach(r.host)
	r.sched.Advance(6 * time.Second)
	if !r.c.IsIdle() {
		t.Fatal("Expected idle")
	}

	secs := 10 * math.Pi
	peak := time.Duration(secs * float64(time.Second))
	d := NewDisplayList(100, 100)
	r.c.RenderTo(d, peak)
	r.c.RenderTo(d, peak)
	if r.obs.surges != 1 {
		t.Errorf("Expected one surge edge, got %d", r.obs.surges)
	}
	r.c.RenderTo(d, 0)
	r.c.RenderTo(d, peak)
	if r.obs.surges != 2 {
		t.Errorf("Expected a second surge edge, got %d", r.obs.surges)
	}
	r.c.Detach()
}

func TestPanelSnapshot(t *testing.T) {
	r := newRig(DefaultEffectConfig(), nil)
	r.c.Attach(r.host)
	snap := r.c.PanelSnapshot()
	if snap.Idle || snap.Config != r.c.Options() {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
	r.sched.Advance(10 * time.Second)
	if !r.c.PanelSnapshot().Idle {
		t.Error("Snapshot should report idle")
	}
	r.c.Detach()
}

func TestZeroEffectMeansDefaults(t *testing.T) {
	c := New(Options{})
	if c.Options() != DefaultEffectConfig() {
		t.Errorf("Expected default tuning, got %+v", c.Options())
	}

	cfg := DefaultEffectConfig()
	cfg.Enabled = false
	c = New(Options{Effect: cfg})
	if c.Enabled() {
		t.Error("Expected a disabled default config to stay disabled")
	}
	if c.ScanlineCount() != 800 {
		t.Errorf("Expected 800 scanlines, got %d", c.ScanlineCount())
	}
}
