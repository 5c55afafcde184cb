package phosphor

import (
	"math"
	"math/rand"
)

const (
	// AutoSweepSpeed converts elapsed seconds into simulated sweep seconds
	AutoSweepSpeed = 0.25
	// AutoSweepPeriod is the automatic sweep cycle in simulated seconds
	AutoSweepPeriod = 5.0
	// AutoSweepVisible is how much of each cycle the sweep is on screen
	AutoSweepVisible = 3.0

	// IdleFlickerGain amplifies base, rapid and random flicker while idle
	IdleFlickerGain = 2.5

	flickerScale = 0.002
)

// Frame is the per-frame input shared by all passes
type Frame struct {
	Time   float64 // seconds since the overlay was created
	Width  float64
	Height float64
	Idle   bool
	Config EffectConfig

	// Manual sweep state sampled at the start of the frame
	ManualActive   bool
	ManualProgress float64

	// Rand returns uniform values in [0,1)
	Rand func() float64

	// Surge is set by the flicker pass when an idle power surge is showing
	Surge bool
}

func (f *Frame) random() float64 {
	if f.Rand == nil {
		return rand.Float64()
	}
	return f.Rand()
}

// Pass is one step of the per-frame pipeline
type Pass interface {
	Name() string
	Render(s Surface, f *Frame)
}

// DefaultPasses returns the render passes in compositing order. Later passes
// layer over the partially composited result of earlier ones.
func DefaultPasses() []Pass {
	return []Pass{ScanlinePass{}, VignettePass{}, FlickerPass{}, GlowPass{}}
}

// AutoSweep returns the automatic sweep position for a simulated time in
// seconds: visible for the first AutoSweepVisible seconds of every
// AutoSweepPeriod, progressing 0..1 top to bottom.
func AutoSweep(sim float64) (progress float64, visible bool) {
	phase := math.Mod(sim, AutoSweepPeriod)
	if phase < 0 {
		phase += AutoSweepPeriod
	}
	if phase >= AutoSweepVisible {
		return 0, false
	}
	return phase / AutoSweepVisible, true
}

// sweepEnvelope peaks at the middle of the sweep
func sweepEnvelope(progress float64) float64 {
	return math.Sin(progress * math.Pi)
}

// ScanlinePass paints the flickering dark scanlines and at most one bright
// redraw sweep; a manual sweep takes precedence over the automatic one.
type ScanlinePass struct{}

func (ScanlinePass) Name() string { return "scanlines" }

func (p ScanlinePass) Render(s Surface, f *Frame) {
	cfg := f.Config
	width, height := f.Width, f.Height
	if height <= 0 || cfg.ScanlineCount <= 0 {
		return
	}
	// more lines than pixel rows would only overdraw the same rows
	lines := min(cfg.ScanlineCount, int(math.Ceil(height)))
	spacing := height / float64(lines)
	band := math.Max(1, spacing*0.5)
	speed := cfg.FlickerSpeed

	s.SetBlend(BlendSourceOver)
	for i := 0; i < lines; i++ {
		y := float64(i) * spacing
		phase := y * 0.01
		base := math.Sin(f.Time*speed*20 + phase)
		rapid := math.Sin(f.Time*speed*60 + phase)
		slow := math.Sin(f.Time*speed*5 + phase)

		intensity := cfg.ScanlineIntensity * 0.3 *
			(0.2 + 0.05*base + 0.02*rapid + 0.08*slow + 0.05*f.random())
		s.FillRect(0, y, width, band, Black.WithAlpha(math.Max(0, intensity)))
	}

	if f.ManualActive {
		p.manualSweep(s, f)
		return
	}
	if progress, ok := AutoSweep(f.Time * AutoSweepSpeed); ok {
		p.autoSweep(s, f, progress)
	}
}

func (ScanlinePass) manualSweep(s Surface, f *Frame) {
	const (
		lineHeight = 6
		glow       = 16
	)
	y := f.ManualProgress * f.Height
	intensity := 0.5 * sweepEnvelope(f.ManualProgress)

	s.SetBlend(BlendScreen)
	s.FillRect(0, y, f.Width, lineHeight, PhosphorGreen.WithAlpha(intensity))

	g := NewLinearGradient(0, y-glow, 0, y+glow).
		AddStop(0, PhosphorGreen.WithAlpha(0)).
		AddStop(0.5, PhosphorGreen.WithAlpha(intensity*0.4)).
		AddStop(1, PhosphorGreen.WithAlpha(0))
	s.FillRect(0, y-glow, f.Width, 2*glow, g)
}

func (ScanlinePass) autoSweep(s Surface, f *Frame, progress float64) {
	const (
		lineHeight = 4
		glow       = 12
		trail      = 20
	)
	y := progress * f.Height
	intensity := 0.3 * sweepEnvelope(progress)

	s.SetBlend(BlendScreen)
	s.FillRect(0, y, f.Width, lineHeight, PhosphorGreen.WithAlpha(intensity))

	g := NewLinearGradient(0, y-glow, 0, y+lineHeight+glow).
		AddStop(0, PhosphorGreen.WithAlpha(0)).
		AddStop(0.2, PhosphorGreen.WithAlpha(intensity*0.3)).
		AddStop(0.5, PhosphorGreen.WithAlpha(intensity*0.5)).
		AddStop(0.8, PhosphorGreen.WithAlpha(intensity*0.3)).
		AddStop(1, PhosphorGreen.WithAlpha(0))
	s.FillRect(0, y-glow, f.Width, lineHeight+2*glow, g)

	if y > trail {
		t := NewLinearGradient(0, y-trail, 0, y).
			AddStop(0, PhosphorGreen.WithAlpha(0)).
			AddStop(1, PhosphorGreen.WithAlpha(intensity*0.1))
		s.FillRect(0, y-trail, f.Width, trail, t)
	}
}

// VignettePass paints a faint phosphor bloom centered on the viewport that
// fades out at 80% of the half-diagonal.
type VignettePass struct{}

func (VignettePass) Name() string { return "vignette" }

func (VignettePass) Render(s Surface, f *Frame) {
	cx, cy := f.Width/2, f.Height/2
	radius := math.Hypot(cx, cy)
	if radius <= 0 {
		return
	}
	g := NewRadialGradient(cx, cy, 0, cx, cy, radius).
		AddStop(0, PhosphorGreen.WithAlpha(f.Config.VignetteIntensity*0.01)).
		AddStop(0.8, PhosphorGreen.WithAlpha(0)).
		AddStop(1, PhosphorGreen.WithAlpha(0))

	s.SetBlend(BlendSourceOver)
	s.FillRect(0, 0, f.Width, f.Height, g)
}

// FlickerPass models unstable CRT power: a combined oscillator signal
// brightens the whole overlay when positive and darkens it when negative.
// Idle displays drift harder and occasionally surge.
type FlickerPass struct{}

func (FlickerPass) Name() string { return "flicker" }

// Signal returns the combined flicker value for the frame and whether an
// idle power surge contributed to it.
func (FlickerPass) Signal(f *Frame) (total float64, surge bool) {
	t := f.Time
	speed := f.Config.FlickerSpeed
	gain := 1.0
	if f.Idle {
		gain = IdleFlickerGain
	}

	base := math.Sin(t*speed*25) * 0.1 * gain
	rapid := math.Sin(t*speed*120) * 0.05 * gain
	slow := math.Sin(t*speed*8) * 0.03
	random := (f.random() - 0.5) * 0.02 * gain

	cycle, amplitude, gate := t*0.2, 0.01, 0.8
	if f.Idle {
		cycle, amplitude, gate = t*0.15, 0.03, 0.6
	}
	fluctuation := 0.0
	if math.Sin(cycle*0.3) > gate {
		fluctuation = math.Sin(cycle) * amplitude
	}

	powerSurge := 0.0
	surgeCycle := t * 0.05
	if f.Idle && math.Sin(surgeCycle) > 0.95 {
		powerSurge = math.Sin(surgeCycle*20) * 0.05
		surge = true
	}

	total = (base + rapid + slow + random + fluctuation + powerSurge) * flickerScale
	return total, surge
}

func (p FlickerPass) Render(s Surface, f *Frame) {
	total, surge := p.Signal(f)
	f.Surge = surge

	if total > 0 {
		s.SetBlend(BlendScreen)
		s.FillRect(0, 0, f.Width, f.Height, PhosphorGreen.WithAlpha(total))
		return
	}
	s.SetBlend(BlendMultiply)
	s.FillRect(0, 0, f.Width, f.Height, FlickerDarkening(total))
}

// FlickerDarkening returns the opaque multiply color for a non-positive
// flicker signal; green is darkened half as much to keep the phosphor tint.
func FlickerDarkening(total float64) Color {
	d := math.Abs(total) * 50
	return Color{R: to8(255 - d), G: to8(255 - d*0.5), B: to8(255 - d), A: 1}
}

// GlowPass blooms bright content with a soft phosphor shadow and a very
// faint green wash. It is skipped when GlowIntensity is zero.
type GlowPass struct{}

func (GlowPass) Name() string { return "glow" }

func (GlowPass) Render(s Surface, f *Frame) {
	glow := f.Config.GlowIntensity
	if glow == 0 {
		return
	}
	s.SetBlend(BlendSourceOver)
	s.SetShadow(PhosphorGreen, glow*5)
	s.FillRect(0, 0, f.Width, f.Height, PhosphorGreen.WithAlpha(glow*0.005))
	s.SetShadow(PhosphorGreen, 0)
}
