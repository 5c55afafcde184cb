package phosphorgtk

import (
	"time"

	"github.com/gotk3/gotk3/glib"
	"github.com/phroun/phosphor"
)

// FrameInterval is the frame pacing used by RequestFrame (~60Hz)
const FrameInterval = 16 * time.Millisecond

// Scheduler runs compositor callbacks on the GLib main loop
type Scheduler struct{}

func (Scheduler) RequestFrame(fn func()) phosphor.Disposable {
	return addTimer(FrameInterval, false, fn)
}

func (Scheduler) AfterFunc(d time.Duration, fn func()) phosphor.Disposable {
	return addTimer(d, false, fn)
}

func (Scheduler) Every(d time.Duration, fn func()) phosphor.Disposable {
	return addTimer(d, true, fn)
}

// timer wraps a GLib timeout source. A source that has already returned
// false is gone, so Dispose only removes sources that are still attached.
type timer struct {
	id      glib.SourceHandle
	fn      func()
	repeat  bool
	done    bool
	running bool
}

func addTimer(d time.Duration, repeat bool, fn func()) *timer {
	t := &timer{fn: fn, repeat: repeat}
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	t.id = glib.TimeoutAdd(uint(ms), t.tick)
	return t
}

func (t *timer) tick() bool {
	if t.done {
		return false
	}
	t.running = true
	t.fn()
	t.running = false
	if !t.repeat {
		t.done = true
	}
	return !t.done
}

func (t *timer) Dispose() {
	if t.done {
		return
	}
	t.done = true
	if !t.running {
		glib.SourceRemove(t.id)
	}
}
