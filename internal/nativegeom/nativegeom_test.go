package nativegeom

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overlay-hud/internal/viewport"
	"overlay-hud/pkg/geometry"
)

// standardReference is the pre-clamp baseline computation, written out
// independently so the clamp-disabled path can be checked against it.
func standardReference(native, logical geometry.Rect, dpr float64) Result {
	sx := logical.Width / native.Width
	sy := logical.Height / native.Height
	if math.Abs(sx-1) < ratioEpsilon && math.Abs(sy-1) < ratioEpsilon {
		sx, sy = 1/dpr, 1/dpr
	}
	return Result{
		Rect:   geometry.NewRect(native.X*sx, native.Y*sy, native.Width*sx, native.Height*sy),
		ScaleX: sx, ScaleY: sy,
	}
}

func TestClampDisabledMatchesBaseline(t *testing.T) {
	now := time.Now()
	activeWM := &Override{Rect: geometry.NewRect(5, 5, 900, 700), Deadline: now.Add(time.Second)}
	expiredWM := &Override{Rect: geometry.NewRect(5, 5, 900, 700), Deadline: now.Add(-time.Second)}

	tests := []struct {
		name    string
		native  geometry.Rect
		logical geometry.Rect
		dpr     float64
		wm      *Override
	}{
		{name: "fractional dpr 1.25", native: geometry.NewRect(0, 0, 1600, 1000), logical: geometry.NewRect(0, 0, 1600, 1000), dpr: 1.25},
		{name: "fractional dpr 1.5", native: geometry.NewRect(100, 50, 1920, 1080), logical: geometry.NewRect(100, 50, 1920, 1080), dpr: 1.5},
		{name: "integer dpr 1", native: geometry.NewRect(0, 0, 1280, 960), logical: geometry.NewRect(0, 0, 1280, 960), dpr: 1.0},
		{name: "integer dpr 2", native: geometry.NewRect(0, 0, 2560, 1920), logical: geometry.NewRect(0, 0, 2560, 1920), dpr: 2.0},
		{name: "mismatched geometry", native: geometry.NewRect(0, 0, 2560, 1920), logical: geometry.NewRect(0, 0, 1280, 960), dpr: 2.0},
		{name: "expired wm override", native: geometry.NewRect(0, 0, 1920, 1080), logical: geometry.NewRect(0, 0, 1920, 1080), dpr: 1.25, wm: expiredWM},
	}

	// Overrides present in config must be completely unreachable with the
	// clamp disabled.
	cfg := Config{
		ClampEnabled:     false,
		MonitorOverrides: map[string]interface{}{"DP-1": 1.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(NativeRect{Rect: tt.native, Monitor: "DP-1"}, tt.logical, tt.dpr, cfg, tt.wm, now)
			want := standardReference(tt.native, tt.logical, tt.dpr)
			assert.Equal(t, want, got)
		})
	}

	// An active WM override replaces the rect but not the scales, on both
	// paths alike.
	t.Run("active wm override", func(t *testing.T) {
		native := geometry.NewRect(0, 0, 1920, 1080)
		got := Convert(NativeRect{Rect: native}, native, 1.25, cfg, activeWM, now)
		want := standardReference(native, native, 1.25)
		assert.Equal(t, activeWM.Rect, got.Rect)
		assert.Equal(t, want.ScaleX, got.ScaleX)
		assert.Equal(t, want.ScaleY, got.ScaleY)
	})
}

func TestClampPathMonitorOverrides(t *testing.T) {
	native := geometry.NewRect(0, 0, 1920, 1080)

	tests := []struct {
		name      string
		override  interface{}
		wantScale float64 // expected ScaleX; 1/dpr when the override is rejected
	}{
		{name: "valid 1.25", override: 1.25, wantScale: 1 / 1.25},
		{name: "valid int 2", override: 2, wantScale: 0.5},
		{name: "below band", override: 0.2, wantScale: 1 / 1.5},
		{name: "above band", override: 5.0, wantScale: 1 / 1.5},
		{name: "NaN", override: math.NaN(), wantScale: 1 / 1.5},
		{name: "null", override: nil, wantScale: 1 / 1.5},
		{name: "string garbage", override: "big", wantScale: 1 / 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				ClampEnabled:     true,
				MonitorOverrides: map[string]interface{}{"HDMI-1": tt.override},
			}
			got := Convert(NativeRect{Rect: native, Monitor: "HDMI-1"}, native, 1.5, cfg, nil, time.Now())
			assert.InDelta(t, tt.wantScale, got.ScaleX, 1e-9)
			assert.InDelta(t, tt.wantScale, got.ScaleY, 1e-9)
		})
	}
}

func TestClampPathPreservesFractionalDPR(t *testing.T) {
	native := geometry.NewRect(0, 0, 1920, 1080)
	cfg := Config{ClampEnabled: true}

	got := Convert(NativeRect{Rect: native}, native, 1.25, cfg, nil, time.Now())
	assert.InDelta(t, 1/1.25, got.ScaleX, 1e-9)
}

func TestClampPathFallsBackOnGeometryMismatch(t *testing.T) {
	native := geometry.NewRect(0, 0, 2560, 1920)
	logical := geometry.NewRect(0, 0, 1280, 960)
	cfg := Config{
		ClampEnabled:     true,
		MonitorOverrides: map[string]interface{}{"DP-1": 1.25},
	}

	got := Convert(NativeRect{Rect: native, Monitor: "DP-1"}, logical, 2.0, cfg, nil, time.Now())
	want := standardReference(native, logical, 2.0)
	assert.Equal(t, want, got)
}

type stubSource struct {
	sample Sample
}

func (s *stubSource) Sample() (Sample, error) { return s.sample, nil }

func TestTrackerPublishesOnChangeOnly(t *testing.T) {
	native := geometry.NewRect(0, 0, 1920, 1080)
	src := &stubSource{sample: Sample{
		Native: NativeRect{Rect: native}, Logical: native, DPR: 1.0,
	}}

	tr := NewTracker(src, Config{}, time.Hour)
	var calls []viewport.State
	tr.OnChange(func(_ Result, vs viewport.State) { calls = append(calls, vs) })

	now := time.Now()
	tr.Poll(now)
	tr.Poll(now.Add(time.Second)) // unchanged, no callback
	require.Len(t, calls, 1)
	assert.Equal(t, 1920.0, calls[0].Width)

	src.sample.Native.Rect.Width = 1280
	src.sample.Logical.Width = 1280
	tr.Poll(now.Add(2 * time.Second))
	require.Len(t, calls, 2)
	assert.Equal(t, 1280.0, calls[1].Width)
}

func TestTrackerWMOverrideExpires(t *testing.T) {
	native := geometry.NewRect(0, 0, 1920, 1080)
	src := &stubSource{sample: Sample{
		Native: NativeRect{Rect: native}, Logical: native, DPR: 1.0,
	}}

	tr := NewTracker(src, Config{}, time.Hour)
	tr.SetWMOverride(geometry.NewRect(10, 10, 800, 600), 50*time.Millisecond)

	tr.Poll(time.Now())
	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, 800.0, last.Rect.Width)

	// Past the deadline the override is silently dropped.
	tr.Poll(time.Now().Add(time.Second))
	last, _ = tr.Last()
	assert.Equal(t, 1920.0, last.Rect.Width)
}
