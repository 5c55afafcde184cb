package phosphor

import (
	"bytes"
	"log"
	"sort"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: epoch} }

func (c *fakeClock) Now() time.Time { return c.t }

// task is a scheduled callback of the manual scheduler
type task struct {
	seq       int
	due       time.Time
	every     time.Duration
	fn        func()
	cancelled bool
}

// manualScheduler runs callbacks only when the test says so. Frames run on
// Frame(); timers fire in due order as Advance moves the clock.
type manualScheduler struct {
	clock  *fakeClock
	frames []*task
	timers []*task
	seq    int
}

func newManualScheduler(clock *fakeClock) *manualScheduler {
	return &manualScheduler{clock: clock}
}

func (s *manualScheduler) add(list *[]*task, t *task) Disposable {
	s.seq++
	t.seq = s.seq
	*list = append(*list, t)
	return Once(func() { t.cancelled = true })
}

func (s *manualScheduler) RequestFrame(fn func()) Disposable {
	return s.add(&s.frames, &task{fn: fn})
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Disposable {
	return s.add(&s.timers, &task{due: s.clock.t.Add(d), fn: fn})
}

func (s *manualScheduler) Every(d time.Duration, fn func()) Disposable {
	return s.add(&s.timers, &task{due: s.clock.t.Add(d), every: d, fn: fn})
}

// Frame runs the frame callbacks queued before the call and returns how
// many ran
func (s *manualScheduler) Frame() int {
	queued := s.frames
	s.frames = nil
	ran := 0
	for _, t := range queued {
		if t.cancelled {
			continue
		}
		t.cancelled = true
		t.fn()
		ran++
	}
	return ran
}

// PendingFrames counts queued frame callbacks that were not cancelled
func (s *manualScheduler) PendingFrames() int {
	n := 0
	for _, t := range s.frames {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// ActiveTimers counts timers that can still fire
func (s *manualScheduler) ActiveTimers() int {
	n := 0
	for _, t := range s.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due timers in order
func (s *manualScheduler) Advance(d time.Duration) {
	end := s.clock.t.Add(d)
	for {
		next := s.nextDue(end)
		if next == nil {
			break
		}
		s.clock.t = next.due
		if next.every > 0 {
			next.due = next.due.Add(next.every)
		} else {
			next.cancelled = true
		}
		next.fn()
	}
	s.clock.t = end
}

func (s *manualScheduler) nextDue(end time.Time) *task {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].due.Equal(s.timers[j].due) {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].due.Before(s.timers[j].due)
	})
	if len(s.timers) == 0 || s.timers[0].due.After(end) {
		return nil
	}
	return s.timers[0]
}

type fakeOverlay struct {
	list        *DisplayList
	surfaceErr  error
	size        OverlaySize
	visible     bool
	presents    int
	removeCalls int
}

func (o *fakeOverlay) Surface() (Surface, error) {
	if o.surfaceErr != nil {
		return nil, o.surfaceErr
	}
	return o.list, nil
}

func (o *fakeOverlay) SetSize(size OverlaySize) {
	o.size = size
	o.list.Resize(size.BufferWidth, size.BufferHeight)
}

func (o *fakeOverlay) SetVisible(v bool) { o.visible = v }
func (o *fakeOverlay) Present()          { o.presents++ }
func (o *fakeOverlay) Remove()           { o.removeCalls++ }

// fakeHost is a terminal with a manual event loop
type fakeHost struct {
	sched      *manualScheduler
	viewport   Viewport
	createErr  error
	surfaceErr error
	overlays   []*fakeOverlay

	keys    map[int]func(KeyEvent)
	data    map[int]func([]byte)
	resizes map[int]func()
	nextSub int

	unsubscribes int
}

func newFakeHost(sched *manualScheduler) *fakeHost {
	return &fakeHost{
		sched:    sched,
		viewport: Viewport{Width: 200, Height: 100, PixelRatio: 1},
		keys:     map[int]func(KeyEvent){},
		data:     map[int]func([]byte){},
		resizes:  map[int]func(){},
	}
}

func (h *fakeHost) Scheduler() Scheduler { return h.sched }
func (h *fakeHost) Viewport() Viewport   { return h.viewport }

func (h *fakeHost) CreateOverlay() (Overlay, error) {
	if h.createErr != nil {
		return nil, h.createErr
	}
	o := &fakeOverlay{list: NewDisplayList(0, 0), surfaceErr: h.surfaceErr}
	h.overlays = append(h.overlays, o)
	return o, nil
}

func (h *fakeHost) unsubscriber(id int, remove func(int)) Disposable {
	return DisposeFunc(func() {
		before := h.subscriptions()
		remove(id)
		if h.subscriptions() < before {
			h.unsubscribes++
		}
	})
}

func (h *fakeHost) OnKey(fn func(KeyEvent)) Disposable {
	h.nextSub++
	h.keys[h.nextSub] = fn
	return h.unsubscriber(h.nextSub, func(id int) { delete(h.keys, id) })
}

func (h *fakeHost) OnData(fn func([]byte)) Disposable {
	h.nextSub++
	h.data[h.nextSub] = fn
	return h.unsubscriber(h.nextSub, func(id int) { delete(h.data, id) })
}

func (h *fakeHost) OnResize(fn func()) Disposable {
	h.nextSub++
	h.resizes[h.nextSub] = fn
	return h.unsubscriber(h.nextSub, func(id int) { delete(h.resizes, id) })
}

func (h *fakeHost) subscriptions() int {
	return len(h.keys) + len(h.data) + len(h.resizes)
}

func (h *fakeHost) press(ev KeyEvent) {
	for _, fn := range h.keys {
		fn(ev)
	}
}

func (h *fakeHost) write(b []byte) {
	for _, fn := range h.data {
		fn(b)
	}
}

func (h *fakeHost) resize(v Viewport) {
	h.viewport = v
	for _, fn := range h.resizes {
		fn()
	}
}

func (h *fakeHost) overlay() *fakeOverlay {
	if len(h.overlays) == 0 {
		return nil
	}
	return h.overlays[len(h.overlays)-1]
}

type fakeObserver struct {
	manual, surges int
}

func (o *fakeObserver) ManualRedraw() { o.manual++ }
func (o *fakeObserver) PowerSurge()   { o.surges++ }

// fakeDocument holds panel nodes by id
type fakeDocument struct {
	nodes     map[string]*fakeNode
	creates   int
	createErr error
	shortcuts map[int]func()
	nextBind  int
	onClose   func()
}

func newFakeDocument() *fakeDocument {
	return &fakeDocument{nodes: map[string]*fakeNode{}, shortcuts: map[int]func(){}}
}

func (d *fakeDocument) LookupPanel(id string) (PanelNode, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return nil, false
	}
	return n, true
}

func (d *fakeDocument) CreatePanel(id string, onClose func()) (PanelNode, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	d.creates++
	d.onClose = onClose
	n := &fakeNode{doc: d, id: id, visible: true}
	d.nodes[id] = n
	return n, nil
}

func (d *fakeDocument) BindShortcut(fn func()) Disposable {
	d.nextBind++
	id := d.nextBind
	d.shortcuts[id] = fn
	return Once(func() { delete(d.shortcuts, id) })
}

func (d *fakeDocument) pressShortcut() {
	for _, fn := range d.shortcuts {
		fn()
	}
}

type fakeNode struct {
	doc     *fakeDocument
	id      string
	visible bool
	fields  []PanelField
	updates int
	removed bool
}

func (n *fakeNode) Update(fields []PanelField) {
	n.fields = fields
	n.updates++
}

func (n *fakeNode) SetVisible(v bool) { n.visible = v }
func (n *fakeNode) Visible() bool     { return n.visible }

func (n *fakeNode) Remove() error {
	if n.removed {
		return ErrPanelGone
	}
	n.removed = true
	delete(n.doc.nodes, n.id)
	return nil
}

func (n *fakeNode) field(label string) (PanelField, bool) {
	for _, f := range n.fields {
		if f.Label == label {
			return f, true
		}
	}
	return PanelField{}, false
}

func newTestLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

// rig wires a compositor to a fake host on a manual clock
type rig struct {
	clock *fakeClock
	sched *manualScheduler
	host  *fakeHost
	obs   *fakeObserver
	logs  *bytes.Buffer
	roll  float64
	c     *Compositor
}

func newRig(cfg EffectConfig, panels *PanelRegistry) *rig {
	r := &rig{clock: newFakeClock(), obs: &fakeObserver{}, roll: 0.5}
	r.sched = newManualScheduler(r.clock)
	r.host = newFakeHost(r.sched)
	logger, buf := newTestLogger()
	r.logs = buf
	r.c = New(Options{
		Effect:   cfg,
		Now:      r.clock.Now,
		Rand:     func() float64 { return r.roll },
		Logger:   logger,
		Panels:   panels,
		Observer: r.obs,
	})
	return r
}
