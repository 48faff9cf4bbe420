package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overlay-hud/internal/grouping"
	"overlay-hud/internal/payload"
	"overlay-hud/internal/placement"
	"overlay-hud/internal/remap"
	"overlay-hud/internal/viewport"
)

func newTestEngine(t *testing.T, rules grouping.Rules) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DebounceDisabled = true
	cache := placement.Load(filepath.Join(t.TempDir(), "placement.json"))
	e := NewEngine(cfg, rules, cache)
	e.SetViewport(viewport.State{Width: 1280, Height: 960, DPR: 1.0})
	return e
}

func TestEngineIngestToPaintCommands(t *testing.T) {
	e := newTestEngine(t, grouping.Rules{})

	e.Ingest([]byte(`{"id":"m1","plugin":"nav","text":"hello","color":"yellow","x":10,"y":20,"ttl":30}`))
	e.Ingest([]byte(`{"id":"r1","plugin":"nav","shape":"rect","x":0,"y":0,"w":100,"h":50,"fill":"#000000","ttl":30}`))

	cmds := e.RenderPass(time.Now())
	require.Len(t, cmds, 2)
}

func TestEngineBadPayloadNeverBlocksOthers(t *testing.T) {
	e := newTestEngine(t, grouping.Rules{})

	e.Ingest([]byte(`{"id":"good","text":"fine","ttl":30}`))
	e.Ingest([]byte(`this is not json`))
	e.Ingest([]byte(`{"id":"badcolor","text":"x","color":"zz!!","ttl":30}`))

	cmds := e.RenderPass(time.Now())
	require.Len(t, cmds, 1)
	assert.Equal(t, remap.CmdText, cmds[0].Kind)
	assert.Equal(t, "unknown/good", cmds[0].Source)
}

func TestEngineTTLZeroGoneOnNextPass(t *testing.T) {
	e := newTestEngine(t, grouping.Rules{})

	e.Ingest([]byte(`{"id":"p1","text":"blip","ttl":0}`))
	cmds := e.RenderPass(time.Now())
	assert.Empty(t, cmds)
}

func TestEngineClearRemovesItem(t *testing.T) {
	e := newTestEngine(t, grouping.Rules{})

	e.Ingest([]byte(`{"id":"p1","plugin":"nav","text":"shown","ttl":60}`))
	require.Len(t, e.RenderPass(time.Now()), 1)

	// Empty text is an explicit clear regardless of the original TTL.
	e.Ingest([]byte(`{"id":"p1","plugin":"nav","text":""}`))
	assert.Empty(t, e.RenderPass(time.Now()))
}

func TestEngineGroupBackgroundAndPlacement(t *testing.T) {
	rules := grouping.Rules{"nav": {
		IDPrefixes:     []string{"wp-"},
		Background:     "#00000080",
		PreviewBoxMode: grouping.PreviewMax,
	}}
	e := newTestEngine(t, rules)

	e.Ingest([]byte(`{"id":"wp-1","plugin":"nav","shape":"rect","x":100,"y":100,"w":200,"h":80,"fill":"#ffffff","ttl":60}`))
	cmds := e.RenderPass(time.Now())

	// Background rect plus the member rect, background first.
	require.Len(t, cmds, 2)
	assert.Equal(t, remap.CmdRect, cmds[0].Kind)
	assert.Equal(t, "nav/wp-", cmds[0].Source)

	// The pass recorded placement for the visible group.
	box, ok := e.PreviewBox("nav/wp-")
	require.True(t, ok)
	assert.InDelta(t, 200, box.Width(), 1e-9)
	assert.InDelta(t, 80, box.Height(), 1e-9)

	// Reset is visible immediately.
	require.NoError(t, e.ResetPlacement())
	_, ok = e.PreviewBox("nav/wp-")
	assert.False(t, ok)
}

func TestEngineBackgroundOrderStable(t *testing.T) {
	rules := grouping.Rules{"nav": {
		IDPrefixes: []string{"a-", "b-", "c-"},
		Background: "#00000080",
	}}
	e := newTestEngine(t, rules)

	e.Ingest([]byte(`{"id":"c-1","plugin":"nav","shape":"rect","x":10,"y":10,"w":50,"h":50,"fill":"#ffffff","ttl":60}`))
	e.Ingest([]byte(`{"id":"a-1","plugin":"nav","shape":"rect","x":20,"y":20,"w":50,"h":50,"fill":"#ffffff","ttl":60}`))
	e.Ingest([]byte(`{"id":"b-1","plugin":"nav","shape":"rect","x":30,"y":30,"w":50,"h":50,"fill":"#ffffff","ttl":60}`))

	// Backgrounds stack in key order, identically on every pass over an
	// unchanged store.
	want := []string{"nav/a-", "nav/b-", "nav/c-"}
	for pass := 0; pass < 50; pass++ {
		cmds := e.RenderPass(time.Now())
		require.Len(t, cmds, 6)
		var got []string
		for _, cmd := range cmds[:3] {
			got = append(got, cmd.Source)
		}
		require.Equal(t, want, got, "pass %d", pass)
	}
}

type recordingObserver struct {
	ingested int
	groups   int
	remapped int
}

func (r *recordingObserver) PayloadIngested(*payload.Item)     { r.ingested++ }
func (r *recordingObserver) GroupResolved(*grouping.Transform) { r.groups++ }
func (r *recordingObserver) PayloadRemapped(remap.Command)     { r.remapped++ }

func TestEngineObserverStageHooks(t *testing.T) {
	rules := grouping.Rules{"nav": {IDPrefixes: []string{"wp-"}}}
	e := newTestEngine(t, rules)

	obs := &recordingObserver{}
	e.SetObserver(obs)

	e.Ingest([]byte(`{"id":"wp-1","plugin":"nav","text":"a","ttl":30}`))
	e.Ingest([]byte(`{"id":"loose","plugin":"nav","text":"b","ttl":30}`))
	e.RenderPass(time.Now())

	assert.Equal(t, 2, obs.ingested)
	assert.Equal(t, 1, obs.groups)
	assert.Equal(t, 2, obs.remapped)
}

func TestEngineDebounceCoalesces(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DebounceWindow = 20 * time.Millisecond
	cache := placement.Load(filepath.Join(t.TempDir(), "placement.json"))
	e := NewEngine(cfg, grouping.Rules{}, cache)
	e.SetViewport(viewport.State{Width: 1280, Height: 960, DPR: 1.0})

	painted := make(chan int, 16)
	e.OnPaint(func(cmds []remap.Command) { painted <- len(cmds) })
	go e.Run()
	defer e.Stop()

	// Drain the wakeup from SetViewport before the burst, so only the
	// burst's coalescing is measured.
	select {
	case <-painted:
	case <-time.After(time.Second):
	}

	for i := 0; i < 10; i++ {
		e.Ingest([]byte(`{"id":"p1","text":"burst","ttl":30}`))
	}

	// The burst collapses into a single pass inside the debounce window.
	select {
	case n := <-painted:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("no repaint observed")
	}
	select {
	case <-painted:
		t.Fatal("burst was not coalesced into one pass")
	case <-time.After(100 * time.Millisecond):
	}
}
