package audio

import (
	"math"
	"testing"
	"time"
)

// pull streams n samples from the cue mixer and returns the peak amplitude
func pull(c *Cues, n int) float64 {
	buf := make([][2]float64, n)
	c.Mixer().Stream(buf)
	peak := 0.0
	for _, s := range buf {
		peak = math.Max(peak, math.Abs(s[0]))
	}
	return peak
}

func TestManualRedrawQueuesTick(t *testing.T) {
	c := New(Config{Volume: 1})
	c.ManualRedraw()

	if c.Mixer().Len() != 1 {
		t.Fatalf("Expected 1 queued cue, got %d", c.Mixer().Len())
	}
	peak := pull(c, 512)
	if peak < 0.1 || peak > 1.0 {
		t.Errorf("Expected audible tick within [-1,1], got peak %f", peak)
	}

	// 40ms at 44.1kHz is 1764 samples
	pull(c, 1024)
	pull(c, 1024)
	pull(c, 1024)
	if c.Mixer().Len() != 0 {
		t.Errorf("Expected the tick to finish, got %d cues", c.Mixer().Len())
	}
}

func TestTickFadesOut(t *testing.T) {
	c := New(Config{Volume: 1, Tick: 100 * time.Millisecond})
	c.ManualRedraw()

	head := pull(c, 441)
	pull(c, 3087)
	tail := pull(c, 441)
	if tail >= head {
		t.Errorf("Expected the tick to fade, head %f tail %f", head, tail)
	}
}

func TestPowerSurgeQueuesThunk(t *testing.T) {
	c := New(Config{Volume: 1})
	c.PowerSurge()
	c.PowerSurge()

	if c.Mixer().Len() != 2 {
		t.Fatalf("Expected 2 queued cues, got %d", c.Mixer().Len())
	}
	if peak := pull(c, 2048); peak <= 0 {
		t.Error("Expected an audible thunk")
	}
}

func TestZeroVolumeIsSilent(t *testing.T) {
	c := New(Config{})
	c.ManualRedraw()
	c.PowerSurge()

	if peak := pull(c, 1024); peak != 0 {
		t.Errorf("Expected silence at volume 0, got peak %f", peak)
	}
}

func TestCloseWithoutSpeakerClearsQueue(t *testing.T) {
	c := New(DefaultConfig())
	c.PowerSurge()
	c.Close()
	if c.Mixer().Len() != 0 {
		t.Errorf("Expected empty mixer after Close, got %d", c.Mixer().Len())
	}
}
