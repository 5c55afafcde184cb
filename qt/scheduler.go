package phosphorqt

import (
	"time"

	"github.com/mappu/miqt/qt"
	"github.com/phroun/phosphor"
)

// FrameInterval is the frame pacing used by RequestFrame (~60Hz)
const FrameInterval = 16 * time.Millisecond

// Scheduler runs compositor callbacks from QTimers on the Qt main thread
type Scheduler struct {
	parent *qt.QObject
}

// NewScheduler creates a scheduler whose timers are owned by parent
func NewScheduler(parent *qt.QObject) *Scheduler {
	return &Scheduler{parent: parent}
}

func (s *Scheduler) RequestFrame(fn func()) phosphor.Disposable {
	return s.start(FrameInterval, false, fn)
}

func (s *Scheduler) AfterFunc(d time.Duration, fn func()) phosphor.Disposable {
	return s.start(d, false, fn)
}

func (s *Scheduler) Every(d time.Duration, fn func()) phosphor.Disposable {
	return s.start(d, true, fn)
}

func (s *Scheduler) start(d time.Duration, repeat bool, fn func()) phosphor.Disposable {
	t := &timer{q: qt.NewQTimer2(s.parent), repeat: repeat, fn: fn}
	t.q.SetSingleShot(!repeat)
	t.q.OnTimeout(t.tick)
	ms := int(d.Milliseconds())
	if ms < 0 {
		ms = 0
	}
	t.q.Start(ms)
	return t
}

type timer struct {
	q      *qt.QTimer
	fn     func()
	repeat bool
	done   bool
}

func (t *timer) tick() {
	if t.done {
		return
	}
	if !t.repeat {
		t.done = true
		t.q.DeleteLater()
	}
	t.fn()
}

func (t *timer) Dispose() {
	if t.done {
		return
	}
	t.done = true
	t.q.Stop()
	t.q.DeleteLater()
}
