package phosphor

import (
	"fmt"
	"log"
	"os"
	"time"
)

const (
	// PanelID identifies the shared diagnostic panel in its document
	PanelID = "crt-debug-panel"
	// PanelTitle is the panel heading
	PanelTitle = "CRT Shader Debug"
	// PanelHint is shown under the fields
	PanelHint = "Press Ctrl+Shift+D to toggle"
	// PanelRefresh is how often a visible lease redraws the fields
	PanelRefresh = 100 * time.Millisecond
)

// PanelField is one "Label: value" row of the diagnostic panel
type PanelField struct {
	Label string
	Value string
	Tone  Color // Zero means the panel's default text color
}

// PanelSnapshot is what a panel refresh reads from its compositor
type PanelSnapshot struct {
	Config EffectConfig
	Idle   bool
}

// Fields formats the snapshot as panel rows
func (s PanelSnapshot) Fields() []PanelField {
	status := PanelField{Label: "Status", Value: "Disabled", Tone: ToneAlert}
	if s.Config.Enabled {
		status.Value, status.Tone = "Enabled", ToneOK
	}
	mode := PanelField{Label: "Mode", Value: "Active", Tone: ToneOK}
	if s.Idle {
		mode.Value, mode.Tone = "Idle (Enhanced)", ToneWarn
	}
	c := s.Config
	return []PanelField{
		status,
		mode,
		{Label: "Scanlines", Value: fmt.Sprintf("%d", c.ScanlineCount)},
		{Label: "Intensity", Value: fmt.Sprintf("%.3f", c.ScanlineIntensity)},
		{Label: "Curvature", Value: fmt.Sprintf("%.3f", c.Curvature)},
		{Label: "Vignette", Value: fmt.Sprintf("%.3f", c.VignetteIntensity)},
		{Label: "Glow", Value: fmt.Sprintf("%.3f", c.GlowIntensity)},
		{Label: "Flicker", Value: fmt.Sprintf("%.4f", c.FlickerSpeed)},
		{Label: "Aberration", Value: fmt.Sprintf("%.4f", c.ChromaAberration)},
	}
}

// PanelSource provides live values for a panel lease
type PanelSource interface {
	PanelSnapshot() PanelSnapshot
}

// PanelNode is a mounted panel
type PanelNode interface {
	// Update replaces the displayed rows
	Update(fields []PanelField)
	SetVisible(visible bool)
	Visible() bool
	// Remove unmounts the node. It returns ErrPanelGone (or a toolkit
	// error) when something else already tore it down.
	Remove() error
}

// Document is where the panel lives: a browser document, a toolkit window
// or a region of a text screen.
type Document interface {
	// LookupPanel finds a panel already mounted under id
	LookupPanel(id string) (PanelNode, bool)
	// CreatePanel mounts a new visible panel; onClose runs when the user
	// dismisses it from the panel itself
	CreatePanel(id string, onClose func()) (PanelNode, error)
	// BindShortcut calls fn whenever the panel toggle shortcut is pressed
	BindShortcut(fn func()) Disposable
}

// PanelRegistry owns the one shared diagnostic panel and its reference
// count. Every compositor that wants the panel holds a PanelLease; the node
// is unmounted when the last lease is released. Like the rest of the
// package it is confined to the UI thread.
type PanelRegistry struct {
	doc      Document
	log      *log.Logger
	node     PanelNode
	refs     int
	leases   []*PanelLease
	shortcut Disposable
}

// NewPanelRegistry creates an empty registry over doc
func NewPanelRegistry(doc Document, logger *log.Logger) *PanelRegistry {
	if logger == nil {
		logger = log.New(os.Stderr, "phosphor: ", log.LstdFlags)
	}
	return &PanelRegistry{doc: doc, log: logger}
}

// Request takes a reference to the panel for src, mounting it if needed,
// and starts refreshing it from src on sched. It returns nil when the panel
// cannot be created.
func (r *PanelRegistry) Request(src PanelSource, sched Scheduler) *PanelLease {
	if r == nil || r.doc == nil {
		return nil
	}
	switch {
	case r.node != nil:
		r.refs++
	default:
		if node, ok := r.doc.LookupPanel(PanelID); ok {
			r.log.Printf("panel %q already mounted, adopting it", PanelID)
			r.node = node
			r.refs++
		} else {
			node, err := r.doc.CreatePanel(PanelID, r.hideAll)
			if err != nil {
				r.log.Printf("warning: diagnostic panel: %v", err)
				return nil
			}
			r.node = node
			r.refs = 1
		}
		if r.shortcut == nil {
			r.shortcut = r.doc.BindShortcut(r.toggle)
		}
	}

	l := &PanelLease{reg: r, src: src, sched: sched}
	r.leases = append(r.leases, l)
	if r.node.Visible() {
		l.startUpdates()
	}
	return l
}

// Refs returns the live reference count
func (r *PanelRegistry) Refs() int {
	return r.refs
}

// Mounted reports whether the panel node exists
func (r *PanelRegistry) Mounted() bool {
	return r.node != nil
}

// Node returns the mounted panel node, or nil
func (r *PanelRegistry) Node() PanelNode {
	return r.node
}

// Reset invalidates every lease and unmounts the panel
func (r *PanelRegistry) Reset() {
	for _, l := range r.leases {
		l.stopUpdates()
		l.released = true
	}
	r.leases = nil
	r.refs = 0
	r.unmount()
}

func (r *PanelRegistry) release(l *PanelLease) {
	for i, x := range r.leases {
		if x == l {
			r.leases = append(r.leases[:i], r.leases[i+1:]...)
			break
		}
	}
	r.refs--
	if r.refs <= 0 {
		r.refs = 0
		r.unmount()
	}
}

func (r *PanelRegistry) unmount() {
	if r.node != nil {
		if err := r.node.Remove(); err != nil {
			r.log.Printf("warning: panel was already removed: %v", err)
		}
		r.node = nil
	}
	if r.shortcut != nil {
		r.shortcut.Dispose()
		r.shortcut = nil
	}
}

func (r *PanelRegistry) toggle() {
	if r.node == nil {
		return
	}
	if r.node.Visible() {
		r.hideAll()
		return
	}
	r.node.SetVisible(true)
	for _, l := range r.leases {
		l.startUpdates()
	}
}

func (r *PanelRegistry) hideAll() {
	if r.node != nil {
		r.node.SetVisible(false)
	}
	for _, l := range r.leases {
		l.stopUpdates()
	}
}

// PanelLease is one compositor's reference to the shared panel
type PanelLease struct {
	reg      *PanelRegistry
	src      PanelSource
	sched    Scheduler
	timer    Disposable
	released bool
}

// Release stops this lease's refresh and drops its reference. The panel is
// unmounted when no references remain. Releasing twice does nothing.
func (l *PanelLease) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true
	l.stopUpdates()
	l.reg.release(l)
}

// Released reports whether Release has been called
func (l *PanelLease) Released() bool {
	return l.released
}

// Show makes the shared panel visible and resumes this lease's refresh
func (l *PanelLease) Show() {
	if l == nil || l.released || l.reg.node == nil {
		return
	}
	l.reg.node.SetVisible(true)
	l.startUpdates()
}

// Hide hides the shared panel and stops this lease's refresh
func (l *PanelLease) Hide() {
	if l == nil || l.released || l.reg.node == nil {
		return
	}
	l.reg.node.SetVisible(false)
	l.stopUpdates()
}

// Toggle flips panel visibility. The reference count is unaffected.
func (l *PanelLease) Toggle() {
	if l.Visible() {
		l.Hide()
	} else {
		l.Show()
	}
}

// Visible reports whether the shared panel is showing
func (l *PanelLease) Visible() bool {
	return l != nil && !l.released && l.reg.node != nil && l.reg.node.Visible()
}

// Updating reports whether this lease's refresh timer is running
func (l *PanelLease) Updating() bool {
	return l != nil && l.timer != nil
}

func (l *PanelLease) startUpdates() {
	if l.timer != nil || l.sched == nil {
		return
	}
	l.timer = l.sched.Every(PanelRefresh, l.refresh)
	l.refresh()
}

func (l *PanelLease) stopUpdates() {
	if l.timer != nil {
		l.timer.Dispose()
		l.timer = nil
	}
}

func (l *PanelLease) refresh() {
	if l.released || l.reg.node == nil || l.src == nil {
		return
	}
	l.reg.node.Update(l.src.PanelSnapshot().Fields())
}
