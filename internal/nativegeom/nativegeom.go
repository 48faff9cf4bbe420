// Package nativegeom converts the tracked external window's native geometry
// into toolkit-space coordinates. It owns the fractional-DPI handling, the
// opt-in physical-scale clamp with per-monitor overrides, and transient
// window-manager geometry overrides.
package nativegeom

import (
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"overlay-hud/pkg/geometry"
)

const (
	// ratioEpsilon: a logical/native size ratio within this band of 1.0
	// means the toolkit already reports logical units, so fall back to
	// 1/dpr.
	ratioEpsilon = 0.01

	// geomEpsilon: logical and native geometries count as matching when
	// every edge agrees within half a device pixel.
	geomEpsilon = 0.5

	// Per-monitor scale overrides outside this band are ignored outright.
	overrideMin = 0.5
	overrideMax = 3.0
)

// NativeRect is the tracked window's geometry as the OS reports it, tagged
// with the monitor it currently occupies.
type NativeRect struct {
	Rect    geometry.Rect
	Monitor string
}

// Config selects the resolution path and carries the per-monitor scale
// overrides. Override values come straight from user config and may be
// arbitrary JSON garbage; validation happens here, not at load time.
type Config struct {
	ClampEnabled     bool
	MonitorOverrides map[string]interface{}
}

// Override is a transient window-manager geometry correction: a compositor
// reported target frame that replaces the resolved rect until the deadline
// passes.
type Override struct {
	Rect     geometry.Rect
	Deadline time.Time
}

// Active reports whether the override still applies.
func (o Override) Active(now time.Time) bool {
	return !o.Deadline.IsZero() && now.Before(o.Deadline)
}

// Result is the normalized toolkit-space geometry plus the scale that
// produced it.
type Result struct {
	Rect   geometry.Rect
	ScaleX float64
	ScaleY float64
}

// Convert resolves the tracked window's toolkit-space rect. The clamp path
// is only ever entered when cfg.ClampEnabled is set; with the clamp
// disabled, output is bit-for-bit the standard computation regardless of any
// override configuration.
func Convert(native NativeRect, logical geometry.Rect, dpr float64, cfg Config, wm *Override, now time.Time) Result {
	var res Result
	if cfg.ClampEnabled {
		res = convertClamped(native, logical, dpr, cfg)
	} else {
		res = convertStandard(native.Rect, logical, dpr)
	}

	if wm != nil && wm.Active(now) {
		res.Rect = wm.Rect
	}
	return res
}

// convertStandard derives the scale from the ratio of logical to native
// size, falling back to 1/dpr when the toolkit already reports logical
// units. This is the baseline path and must stay independent of all clamp
// feature work.
func convertStandard(native, logical geometry.Rect, dpr float64) Result {
	sx := sizeRatio(logical.Width, native.Width)
	sy := sizeRatio(logical.Height, native.Height)

	if scalar.EqualWithinAbs(sx, 1.0, ratioEpsilon) && scalar.EqualWithinAbs(sy, 1.0, ratioEpsilon) {
		s := invDPR(dpr)
		sx, sy = s, s
	}
	return scaled(native, sx, sy)
}

func convertClamped(native NativeRect, logical geometry.Rect, dpr float64, cfg Config) Result {
	if !geometriesMatch(native.Rect, logical) {
		return convertStandard(native.Rect, logical, dpr)
	}

	if ov, ok := monitorOverride(cfg.MonitorOverrides, native.Monitor); ok {
		log.Printf("nativegeom: applying monitor %q scale override %.3g", native.Monitor, ov)
		s := 1 / ov
		return scaled(native.Rect, s, s)
	}

	// No valid override: preserve the fractional DPR rather than
	// collapsing to integer scaling.
	s := invDPR(dpr)
	return scaled(native.Rect, s, s)
}

func scaled(native geometry.Rect, sx, sy float64) Result {
	return Result{
		Rect: geometry.Rect{
			X:      native.X * sx,
			Y:      native.Y * sy,
			Width:  native.Width * sx,
			Height: native.Height * sy,
		},
		ScaleX: sx,
		ScaleY: sy,
	}
}

func sizeRatio(logical, native float64) float64 {
	if native <= 0 {
		return 1
	}
	return logical / native
}

func invDPR(dpr float64) float64 {
	if dpr <= 0 || math.IsNaN(dpr) || math.IsInf(dpr, 0) {
		return 1
	}
	return 1 / dpr
}

// geometriesMatch reports whether the toolkit's logical rect and the native
// rect already agree, edge by edge, within half a device pixel.
func geometriesMatch(native, logical geometry.Rect) bool {
	return scalar.EqualWithinAbs(native.X, logical.X, geomEpsilon) &&
		scalar.EqualWithinAbs(native.Y, logical.Y, geomEpsilon) &&
		scalar.EqualWithinAbs(native.Width, logical.Width, geomEpsilon) &&
		scalar.EqualWithinAbs(native.Height, logical.Height, geomEpsilon)
}

// monitorOverride validates a raw per-monitor override value. Anything
// non-numeric, non-finite, or outside [overrideMin, overrideMax] is ignored;
// garbage config must never crash or bend the scale.
func monitorOverride(overrides map[string]interface{}, monitor string) (float64, bool) {
	raw, ok := overrides[monitor]
	if !ok {
		return 0, false
	}

	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	default:
		log.Printf("nativegeom: ignoring non-numeric scale override %v for monitor %q", raw, monitor)
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < overrideMin || v > overrideMax {
		log.Printf("nativegeom: ignoring out-of-band scale override %v for monitor %q", v, monitor)
		return 0, false
	}
	return v, true
}
