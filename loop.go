package phosphor

import "time"

// Scheduler is the host's cooperative event loop. Every callback runs on the
// host's UI thread, one at a time; the returned Disposable cancels a callback
// that has not run yet.
type Scheduler interface {
	// RequestFrame runs fn once before the next display refresh
	RequestFrame(fn func()) Disposable
	// AfterFunc runs fn once after d
	AfterFunc(d time.Duration, fn func()) Disposable
	// Every runs fn every d until disposed
	Every(d time.Duration, fn func()) Disposable
}

// LoopState is the state of a frame Loop
type LoopState uint8

const (
	LoopStopped LoopState = iota
	LoopRunning
)

func (s LoopState) String() string {
	if s == LoopRunning {
		return "running"
	}
	return "stopped"
}

// Loop drives a per-frame callback. Start moves Stopped to Running and
// schedules the first tick; each tick runs the callback and reschedules only
// while still Running; Stop moves to Stopped and cancels the pending tick.
// Stop may be called from inside the callback.
type Loop struct {
	sched   Scheduler
	tick    func()
	state   LoopState
	pending Disposable
	frames  uint64
}

// NewLoop creates a stopped loop
func NewLoop(sched Scheduler, tick func()) *Loop {
	return &Loop{sched: sched, tick: tick}
}

// Start begins ticking; starting a running loop does nothing
func (l *Loop) Start() {
	if l.state == LoopRunning || l.sched == nil {
		return
	}
	l.state = LoopRunning
	l.schedule()
}

// Stop halts the loop and cancels any scheduled tick
func (l *Loop) Stop() {
	l.state = LoopStopped
	if l.pending != nil {
		l.pending.Dispose()
		l.pending = nil
	}
}

// State returns the current loop state
func (l *Loop) State() LoopState {
	return l.state
}

// Pending reports whether a tick is currently scheduled
func (l *Loop) Pending() bool {
	return l.pending != nil
}

// Frames returns how many ticks have run
func (l *Loop) Frames() uint64 {
	return l.frames
}

func (l *Loop) schedule() {
	l.pending = l.sched.RequestFrame(l.run)
}

func (l *Loop) run() {
	l.pending = nil
	if l.state != LoopRunning {
		return
	}
	l.frames++
	if l.tick != nil {
		l.tick()
	}
	if l.state == LoopRunning && l.pending == nil {
		l.schedule()
	}
}
