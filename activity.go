package phosphor

import "time"

const (
	// IdleThreshold is how long without input before the display counts as idle
	IdleThreshold = 5000 * time.Millisecond

	// ManualRedrawWindow is how long an Enter-triggered sweep stays on screen
	ManualRedrawWindow = 2000 * time.Millisecond

	// ManualRedrawChance is the probability that an Enter key fires a sweep
	ManualRedrawChance = 0.3
)

// Activity tracks when input was last observed
type Activity struct {
	lastInput time.Time
	threshold time.Duration
}

// NewActivity creates a tracker whose baseline is now
func NewActivity(now time.Time) *Activity {
	return &Activity{lastInput: now, threshold: IdleThreshold}
}

// Touch records input at now
func (a *Activity) Touch(now time.Time) {
	a.lastInput = now
}

// LastInput returns the timestamp of the most recent input
func (a *Activity) LastInput() time.Time {
	return a.lastInput
}

// IdleAt reports whether more than the threshold has passed since the last
// input. The comparison is strict: exactly the threshold is still active.
func (a *Activity) IdleAt(now time.Time) bool {
	return now.Sub(a.lastInput) > a.threshold
}

// ManualRedraw is the transient Enter-key sweep trigger.
// Only one sweep is tracked; a new trigger restarts the window.
type ManualRedraw struct {
	triggered bool
	at        time.Time
}

// Trigger draws roll against ManualRedrawChance and, on success, starts a
// window at now. The draw happens on every call, even while a sweep is
// already showing, and a success overwrites the running window.
func (m *ManualRedraw) Trigger(now time.Time, roll float64) bool {
	if roll >= ManualRedrawChance {
		return false
	}
	m.triggered = true
	m.at = now
	return true
}

// Progress reports whether a sweep is showing at now and how far through
// its window it is (0..1). A lapsed trigger is cleared.
func (m *ManualRedraw) Progress(now time.Time) (progress float64, active bool) {
	if !m.triggered {
		return 0, false
	}
	since := now.Sub(m.at)
	if since >= ManualRedrawWindow {
		m.triggered = false
		return 0, false
	}
	if since < 0 {
		since = 0
	}
	return float64(since) / float64(ManualRedrawWindow), true
}

// Active reports whether a sweep is showing at now
func (m *ManualRedraw) Active(now time.Time) bool {
	_, ok := m.Progress(now)
	return ok
}
