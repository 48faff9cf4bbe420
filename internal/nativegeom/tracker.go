package nativegeom

import (
	"sync"
	"time"

	"overlay-hud/internal/viewport"
	"overlay-hud/pkg/geometry"
)

// Sample is one observation of the tracked external window.
type Sample struct {
	Native  NativeRect
	Logical geometry.Rect
	DPR     float64
}

// Source provides the tracked window's current geometry. Implementations
// wrap whatever the platform offers (X11 queries, compositor IPC, a fixed
// rect for tests).
type Source interface {
	Sample() (Sample, error)
}

// Tracker polls a Source on its own cadence, normalizes each sample, and
// publishes an immutable viewport snapshot whenever the resolved geometry
// changes. The callback runs on the tracker goroutine; consumers are
// expected to hand off to their own loop.
type Tracker struct {
	source   Source
	cfg      Config
	interval time.Duration

	mu       sync.Mutex
	wm       *Override
	last     Result
	hasLast  bool
	onChange func(Result, viewport.State)

	stopCh chan struct{}
}

// NewTracker creates a tracker polling source every interval.
func NewTracker(source Source, cfg Config, interval time.Duration) *Tracker {
	return &Tracker{
		source:   source,
		cfg:      cfg,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// OnChange sets the callback invoked with each newly resolved geometry. The
// callback is called from a background goroutine - use appropriate
// synchronization before touching UI or engine state.
func (t *Tracker) OnChange(callback func(Result, viewport.State)) {
	t.mu.Lock()
	t.onChange = callback
	t.mu.Unlock()
}

// SetWMOverride installs a transient window-manager geometry override that
// expires after d. It takes effect on the next poll.
func (t *Tracker) SetWMOverride(rect geometry.Rect, d time.Duration) {
	t.mu.Lock()
	t.wm = &Override{Rect: rect, Deadline: time.Now().Add(d)}
	t.mu.Unlock()
}

// Start begins polling in a background goroutine.
func (t *Tracker) Start() {
	t.stopCh = make(chan struct{})
	go t.watchLoop()
}

// Stop stops the polling goroutine.
func (t *Tracker) Stop() {
	close(t.stopCh)
}

func (t *Tracker) watchLoop() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.Poll(time.Now())
	for {
		select {
		case <-t.stopCh:
			return
		case now := <-ticker.C:
			t.Poll(now)
		}
	}
}

// Poll takes one sample, resolves it, and fires the change callback if the
// resolved geometry differs from the previous poll. Exposed so tests and
// diagnostic tools can drive the tracker without the goroutine.
func (t *Tracker) Poll(now time.Time) {
	sample, err := t.source.Sample()
	if err != nil {
		return
	}

	t.mu.Lock()
	wm := t.wm
	if wm != nil && !wm.Active(now) {
		// Expired: drop it so resolution quietly returns to normal.
		t.wm = nil
		wm = nil
	}
	t.mu.Unlock()

	res := Convert(sample.Native, sample.Logical, sample.DPR, t.cfg, wm, now)

	t.mu.Lock()
	changed := !t.hasLast || res != t.last
	t.last = res
	t.hasLast = true
	cb := t.onChange
	t.mu.Unlock()

	if changed && cb != nil {
		cb(res, viewport.State{
			Width:  res.Rect.Width,
			Height: res.Rect.Height,
			DPR:    sample.DPR,
		})
	}
}

// Last returns the most recently resolved geometry, if any poll has
// succeeded yet.
func (t *Tracker) Last() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.hasLast
}
