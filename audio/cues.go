// Package audio plays CRT sound cues for compositor events: a short flyback
// tick when a manual redraw sweep fires and a low mains thunk when an idle
// power surge starts.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/phroun/phosphor"
)

// SampleRate is the output rate of every cue
const SampleRate = beep.SampleRate(44100)

// Cue tones
const (
	tickFreq = 1800.0 // flyback tick
	humFreq  = 50.0   // mains hum under the surge thunk
)

// Config tunes the cues
type Config struct {
	Volume float64       // Linear gain, 0 mutes (default: 0.5)
	Tick   time.Duration // Tick length (default: 40ms)
	Thunk  time.Duration // Thunk length (default: 350ms)
}

// DefaultConfig returns the stock cue tuning
func DefaultConfig() Config {
	return Config{
		Volume: 0.5,
		Tick:   40 * time.Millisecond,
		Thunk:  350 * time.Millisecond,
	}
}

// Cues mixes compositor sound cues. It implements phosphor.Observer; cues
// are queued from the UI thread and rendered by the speaker goroutine.
type Cues struct {
	mu      sync.Mutex
	cfg     Config
	mixer   *beep.Mixer
	playing bool
}

var _ phosphor.Observer = (*Cues)(nil)

// New creates a silent cue mixer; call Start to open the speaker
func New(cfg Config) *Cues {
	def := DefaultConfig()
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if cfg.Thunk <= 0 {
		cfg.Thunk = def.Thunk
	}
	return &Cues{cfg: cfg, mixer: &beep.Mixer{}}
}

// Start initializes the speaker and begins playing the mixer
func (c *Cues) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.playing = true
	return nil
}

// Close drops queued cues and releases the speaker
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		c.mixer.Clear()
		return
	}
	speaker.Clear()
	speaker.Close()
	c.mixer.Clear()
	c.playing = false
}

// Mixer is the stream every cue is added to
func (c *Cues) Mixer() *beep.Mixer {
	return c.mixer
}

// ManualRedraw plays the flyback tick
func (c *Cues) ManualRedraw() {
	c.play(c.tick())
}

// PowerSurge plays the mains thunk
func (c *Cues) PowerSurge() {
	c.play(c.thunk())
}

func (c *Cues) play(s beep.Streamer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		speaker.Lock()
		defer speaker.Unlock()
	}
	c.mixer.Add(s)
}

func (c *Cues) tick() beep.Streamer {
	n := SampleRate.N(c.cfg.Tick)
	sine, err := generators.SineTone(SampleRate, tickFreq)
	if err != nil {
		return beep.Silence(n)
	}
	return newVolume(beep.Take(n, &fade{s: sine, total: n}), c.cfg.Volume)
}

func (c *Cues) thunk() beep.Streamer {
	n := SampleRate.N(c.cfg.Thunk)
	return newVolume(beep.Take(n, &hum{sr: SampleRate}), c.cfg.Volume)
}

// newVolume applies a linear gain; math.Log2(0) is -Inf, so 0 is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// fade shapes a tone with a quadratic release over total samples
type fade struct {
	s     beep.Streamer
	pos   int
	total int
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := 0.0
		if f.pos < f.total {
			r := 1 - float64(f.pos)/float64(f.total)
			g = r * r
		}
		samples[i][0] *= g
		samples[i][1] *= g
		f.pos++
	}
	return n, ok
}

func (f *fade) Err() error { return f.s.Err() }

// hum is a decaying mains hum with its first harmonic
type hum struct {
	sr  beep.SampleRate
	pos int
}

func (h *hum) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(h.pos) / float64(h.sr)
		env := math.Exp(-t * 8)
		v := env * (0.7*math.Sin(2*math.Pi*humFreq*t) + 0.3*math.Sin(2*math.Pi*2*humFreq*t))
		samples[i][0] = v
		samples[i][1] = v
		h.pos++
	}
	return len(samples), true
}

func (h *hum) Err() error { return nil }
