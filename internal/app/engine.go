package app

import (
	"log"
	"sort"
	"sync"
	"time"

	"overlay-hud/internal/grouping"
	"overlay-hud/internal/payload"
	"overlay-hud/internal/placement"
	"overlay-hud/internal/remap"
	"overlay-hud/internal/viewport"
	"overlay-hud/pkg/geometry"
)

// Observer receives optional diagnostic callbacks at the engine's stage
// boundaries. All methods are invoked on the render goroutine.
type Observer interface {
	PayloadIngested(item *payload.Item)
	GroupResolved(t *grouping.Transform)
	PayloadRemapped(cmd remap.Command)
}

// ingestOp is one queued mutation from the transport goroutine.
type ingestOp struct {
	item     *payload.Item
	clearKey string
}

// Engine owns the repaint pipeline. Payloads are queued from the transport
// goroutine and drained atomically at the start of each pass; everything
// else runs single-threaded on the render goroutine, so the store, grouping
// engine, and remapper need no coordination among themselves.
type Engine struct {
	cfg      Config
	store    *payload.Store
	groups   *grouping.Engine
	remapper *remap.Remapper
	cache    *placement.Cache

	ingestCh  chan ingestOp
	repaintCh chan struct{}
	stopCh    chan struct{}

	mu           sync.Mutex
	rules        grouping.Rules
	view         viewport.State
	observer     Observer
	paint        func([]remap.Command)
	pendingTimer *time.Timer
	lastPlan     *grouping.Plan
}

// NewEngine creates an engine with the given configuration, grouping rules,
// and placement cache.
func NewEngine(cfg Config, rules grouping.Rules, cache *placement.Cache) *Engine {
	opts := remap.DefaultOptions()
	opts.Metrics = cfg.Metrics

	return &Engine{
		cfg:      cfg,
		store:    payload.NewStore(),
		groups:   grouping.NewEngine(cfg.Metrics),
		remapper: remap.NewRemapper(opts),
		cache:    cache,
		rules:    rules,

		ingestCh:  make(chan ingestOp, 256),
		repaintCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// SetObserver installs the diagnostic observer. Pass nil to remove it.
func (e *Engine) SetObserver(obs Observer) {
	e.mu.Lock()
	e.observer = obs
	e.mu.Unlock()
}

// OnPaint sets the callback receiving each pass's paint command list. The
// callback runs on the render goroutine.
func (e *Engine) OnPaint(paint func([]remap.Command)) {
	e.mu.Lock()
	e.paint = paint
	e.mu.Unlock()
}

// SetRules swaps the grouping rules; the next pass uses them.
func (e *Engine) SetRules(rules grouping.Rules) {
	e.mu.Lock()
	e.rules = rules
	e.mu.Unlock()
	e.requestRepaint()
}

// SetViewport publishes a new viewport snapshot, typically from the window
// tracker's change callback.
func (e *Engine) SetViewport(vs viewport.State) {
	e.mu.Lock()
	e.view = vs
	e.mu.Unlock()
	e.requestRepaint()
}

// Ingest decodes one feed line and queues the resulting mutation. Called
// from the transport goroutine; malformed lines are logged and dropped
// without disturbing anything else.
func (e *Engine) Ingest(line []byte) {
	item, clearKey, clear, err := payload.Decode(line)
	if err != nil {
		log.Printf("engine: dropping payload: %v", err)
		return
	}

	var op ingestOp
	if clear {
		op.clearKey = clearKey
	} else {
		op.item = item
	}

	select {
	case e.ingestCh <- op:
	default:
		// A full queue means the render loop is badly behind; drop
		// rather than block the transport goroutine.
		log.Printf("engine: ingest queue full, dropping payload")
		return
	}
	e.requestRepaint()
}

// Run drives the render loop until Stop. Each wakeup performs one complete
// pass and hands the commands to the paint callback.
func (e *Engine) Run() {
	for {
		select {
		case <-e.stopCh:
			return
		case <-e.repaintCh:
			cmds := e.RenderPass(time.Now())
			e.mu.Lock()
			paint := e.paint
			e.mu.Unlock()
			if paint != nil {
				paint(cmds)
			}
		}
	}
}

// Stop terminates the render loop.
func (e *Engine) Stop() {
	close(e.stopCh)
}

// RenderPass executes one full repaint pass: drain the ingest queue, purge
// expired payloads, group, remap, and record placement. Exported so tests
// and diagnostic binaries can drive the engine synchronously.
func (e *Engine) RenderPass(now time.Time) []remap.Command {
	e.drainIngest(now)
	e.store.Purge(now)

	e.mu.Lock()
	rules := e.rules
	view := e.view
	obs := e.observer
	e.mu.Unlock()

	mapper := viewport.Compute(view.Width, view.Height, view.DPR, e.cfg.Mode)
	live := e.store.DrainLive(now)
	plan := e.groups.Prepare(live, mapper, rules)

	e.mu.Lock()
	e.lastPlan = plan
	e.mu.Unlock()

	var cmds []remap.Command

	// Group backgrounds paint first, beneath their members, in stable key
	// order so overlapping backgrounds keep their stacking across passes.
	groupKeys := make([]string, 0, len(plan.Groups))
	for key := range plan.Groups {
		groupKeys = append(groupKeys, key)
	}
	sort.Strings(groupKeys)

	for _, key := range groupKeys {
		t := plan.Groups[key]
		if obs != nil {
			obs.GroupResolved(t)
		}
		if t.Visible {
			e.cache.Record(t.Key, t.BaseBounds, now)
		}
		if bg, ok := remap.GroupBackground(t); ok {
			cmds = append(cmds, bg)
		}
	}

	for _, item := range live {
		cmd, err := e.remapper.Remap(item, mapper, plan.GroupFor(item))
		if err != nil {
			// One bad payload never prevents the rest from rendering.
			log.Printf("engine: %v", err)
			continue
		}
		if obs != nil {
			obs.PayloadRemapped(cmd)
		}
		cmds = append(cmds, cmd)
	}

	return cmds
}

// PreviewBox returns the persisted preview bounds for a group, honoring the
// group's declared box mode from the most recent pass.
func (e *Engine) PreviewBox(groupKey string) (geometry.Bounds, bool) {
	mode := grouping.PreviewLast
	e.mu.Lock()
	if e.lastPlan != nil {
		if t, ok := e.lastPlan.Groups[groupKey]; ok {
			mode = t.PreviewBoxMode
		}
	}
	e.mu.Unlock()
	return e.cache.Select(groupKey, mode)
}

// ResetPlacement clears the placement cache; the effect is visible to the
// very next read.
func (e *Engine) ResetPlacement() error {
	return e.cache.Reset()
}

func (e *Engine) drainIngest(now time.Time) {
	e.mu.Lock()
	obs := e.observer
	e.mu.Unlock()

	for {
		select {
		case op := <-e.ingestCh:
			if op.item != nil {
				e.store.Set(op.item, now)
				if obs != nil {
					obs.PayloadIngested(op.item)
				}
			} else {
				e.store.Clear(op.clearKey)
			}
		default:
			return
		}
	}
}

// requestRepaint schedules a pass. Requests inside the debounce window
// coalesce into one; a pending debounced repaint is simply superseded by
// the newer request.
func (e *Engine) requestRepaint() {
	if e.cfg.DebounceDisabled || e.cfg.DebounceWindow <= 0 {
		e.signalRepaint()
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pendingTimer != nil {
		return
	}
	e.pendingTimer = time.AfterFunc(e.cfg.DebounceWindow, func() {
		e.mu.Lock()
		e.pendingTimer = nil
		e.mu.Unlock()
		e.signalRepaint()
	})
}

func (e *Engine) signalRepaint() {
	select {
	case e.repaintCh <- struct{}{}:
	default:
	}
}
