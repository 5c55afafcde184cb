package cli

import (
	"sort"
	"time"

	"github.com/phroun/phosphor"
)

// FrameInterval paces RequestFrame (~60fps, same as the render ticker)
const FrameInterval = 16 * time.Millisecond

// Scheduler is a timer queue drained by the terminal's event loop. It is
// not safe for concurrent use; every method runs on the loop goroutine.
type Scheduler struct {
	now    func() time.Time
	seq    uint64
	timers []*timer
}

// NewScheduler creates an empty queue using now as its clock
func NewScheduler(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{now: now}
}

func (s *Scheduler) RequestFrame(fn func()) phosphor.Disposable {
	return s.add(FrameInterval, 0, fn)
}

func (s *Scheduler) AfterFunc(d time.Duration, fn func()) phosphor.Disposable {
	return s.add(d, 0, fn)
}

func (s *Scheduler) Every(d time.Duration, fn func()) phosphor.Disposable {
	if d <= 0 {
		d = FrameInterval
	}
	return s.add(d, d, fn)
}

func (s *Scheduler) add(d, every time.Duration, fn func()) *timer {
	s.seq++
	t := &timer{s: s, due: s.now().Add(d), every: every, fn: fn, seq: s.seq}
	s.timers = append(s.timers, t)
	return t
}

func (s *Scheduler) remove(t *timer) {
	for i, x := range s.timers {
		if x == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// Next returns when the earliest pending timer is due
func (s *Scheduler) Next() (time.Time, bool) {
	if len(s.timers) == 0 {
		return time.Time{}, false
	}
	next := s.timers[0].due
	for _, t := range s.timers[1:] {
		if t.due.Before(next) {
			next = t.due
		}
	}
	return next, true
}

// Pending returns the number of scheduled timers
func (s *Scheduler) Pending() int {
	return len(s.timers)
}

// RunDue fires every timer due at or before now, earliest first. Timers
// scheduled by a callback wait for the next call. It returns how many ran.
func (s *Scheduler) RunDue(now time.Time) int {
	var due []*timer
	for _, t := range s.timers {
		if !t.due.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})

	ran := 0
	for _, t := range due {
		// disposed by an earlier callback in this batch
		if t.done {
			continue
		}
		if t.every > 0 {
			t.due = now.Add(t.every)
		} else {
			t.done = true
			s.remove(t)
		}
		t.fn()
		ran++
	}
	return ran
}

type timer struct {
	s     *Scheduler
	due   time.Time
	every time.Duration
	fn    func()
	seq   uint64
	done  bool
}

func (t *timer) Dispose() {
	if t.done {
		return
	}
	t.done = true
	t.s.remove(t)
}
