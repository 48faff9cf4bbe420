// Package app wires the overlay engine together: payload store, grouping,
// remapping, placement cache, the ingest queue, and the debounced render
// loop.
package app

import (
	"time"

	"overlay-hud/internal/nativegeom"
	"overlay-hud/internal/payload"
	"overlay-hud/internal/viewport"
)

// Config carries every engine toggle explicitly; there is no ambient global
// state. main builds one from the prefs file and hands it in.
type Config struct {
	// Mode is the scaling policy for the legacy canvas.
	Mode viewport.Mode

	// Geometry holds the native-geometry normalizer settings (physical
	// clamp, per-monitor overrides).
	Geometry nativegeom.Config

	// DebounceWindow coalesces repaint requests arriving in bursts.
	// DebounceDisabled turns coalescing off for diagnostics; output is
	// unchanged, only timing.
	DebounceWindow   time.Duration
	DebounceDisabled bool

	// TrackInterval is the window-tracker polling cadence.
	TrackInterval time.Duration

	// Metrics drives text extent estimation and font-size resolution.
	Metrics payload.TextMetrics
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Mode:           viewport.ModeFit,
		DebounceWindow: 30 * time.Millisecond,
		TrackInterval:  250 * time.Millisecond,
		Metrics:        payload.DefaultTextMetrics(),
	}
}
