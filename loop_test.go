package phosphor

import "testing"

func TestLoopStateMachine(t *testing.T) {
	sched := newManualScheduler(newFakeClock())
	ticks := 0
	l := NewLoop(sched, func() { ticks++ })

	if l.State() != LoopStopped || l.Pending() {
		t.Fatalf("New loop should be stopped and idle, got %s", l.State())
	}

	l.Start()
	if l.State() != LoopRunning {
		t.Fatalf("Expected running after Start, got %s", l.State())
	}
	if sched.PendingFrames() != 1 {
		t.Fatalf("Start should schedule exactly one frame, got %d", sched.PendingFrames())
	}

	l.Start()
	if sched.PendingFrames() != 1 {
		t.Errorf("Second Start should not schedule another frame, got %d", sched.PendingFrames())
	}

	for i := 0; i < 3; i++ {
		sched.Frame()
	}
	if ticks != 3 || l.Frames() != 3 {
		t.Errorf("Expected 3 ticks, got %d (frames %d)", ticks, l.Frames())
	}
	if sched.PendingFrames() != 1 {
		t.Errorf("Running loop should keep one frame queued, got %d", sched.PendingFrames())
	}

	l.Stop()
	if l.State() != LoopStopped || l.Pending() {
		t.Error("Stop should cancel the pending frame")
	}
	if sched.PendingFrames() != 0 {
		t.Errorf("Expected no queued frames after Stop, got %d", sched.PendingFrames())
	}
	if sched.Frame() != 0 || ticks != 3 {
		t.Errorf("Stopped loop should not tick, ticks=%d", ticks)
	}
}

func TestLoopStopInsideTick(t *testing.T) {
	sched := newManualScheduler(newFakeClock())
	var l *Loop
	l = NewLoop(sched, func() { l.Stop() })
	l.Start()
	sched.Frame()

	if l.State() != LoopStopped {
		t.Errorf("Expected stopped, got %s", l.State())
	}
	if sched.PendingFrames() != 0 {
		t.Errorf("Stop inside the tick must prevent rescheduling, got %d frames", sched.PendingFrames())
	}
}

func TestLoopRestartInsideTick(t *testing.T) {
	sched := newManualScheduler(newFakeClock())
	var l *Loop
	l = NewLoop(sched, func() {
		l.Stop()
		l.Start()
	})
	l.Start()
	sched.Frame()

	if sched.PendingFrames() != 1 {
		t.Errorf("Restart inside the tick should leave exactly one frame, got %d", sched.PendingFrames())
	}
}

func TestLoopWithoutScheduler(t *testing.T) {
	l := NewLoop(nil, nil)
	l.Start()
	if l.State() != LoopStopped {
		t.Errorf("Loop without scheduler should stay stopped, got %s", l.State())
	}
	l.Stop()
}
