// Package viewport maps the fixed 1280x960 legacy canvas onto the actual
// window under the Fit and Fill scaling policies.
package viewport

import (
	"math"

	"overlay-hud/pkg/geometry"
)

// Legacy canvas dimensions every payload is authored against.
const (
	CanvasWidth  = 1280.0
	CanvasHeight = 960.0
)

// Mode selects the scaling policy.
type Mode int

const (
	// ModeFit scales so the whole canvas is visible, centered, possibly
	// letterboxed.
	ModeFit Mode = iota
	// ModeFill scales so the canvas covers the whole window; one axis
	// overflows past the window edge.
	ModeFill
)

// String returns the config-file name of the mode.
func (m Mode) String() string {
	if m == ModeFill {
		return "fill"
	}
	return "fit"
}

// ParseMode resolves a config token; anything unrecognized is Fit.
func ParseMode(s string) Mode {
	if s == "fill" {
		return ModeFill
	}
	return ModeFit
}

// State is an immutable snapshot of the tracked window's toolkit-space size
// and device pixel ratio. The tracker publishes a fresh snapshot whenever
// geometry changes; readers never see a partial update.
type State struct {
	Width  float64
	Height float64
	DPR    float64
}

// Mapper carries the canvas-to-window transform for one repaint pass. It is
// a pure value: identical inputs to Compute always produce an identical
// Mapper, which the grouping engine relies on for change diffing.
type Mapper struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64
	Mode    Mode
	DPR     float64

	// Overflow flags, Fill mode only: which canvas axis extends past the
	// window edge at the computed scale.
	OverflowX bool
	OverflowY bool

	// Window size the mapper was computed for, kept so downstream
	// consumers can clamp against the visible area.
	WindowW float64
	WindowH float64
}

// Compute derives the mapper for a window size and device pixel ratio.
// Degenerate window dimensions short-circuit to a no-op mapper instead of
// dividing by zero.
func Compute(w, h, dpr float64, mode Mode) Mapper {
	if w <= 0 || h <= 0 {
		return Mapper{ScaleX: 1, ScaleY: 1, Mode: mode, DPR: dpr, WindowW: w, WindowH: h}
	}

	rx := w / CanvasWidth
	ry := h / CanvasHeight

	m := Mapper{Mode: mode, DPR: dpr, WindowW: w, WindowH: h}
	switch mode {
	case ModeFill:
		s := math.Max(rx, ry)
		m.ScaleX, m.ScaleY = s, s
		// Origin pinned to (0,0); the larger ratio's axis fits exactly,
		// the other overflows.
		m.OverflowX = CanvasWidth*s > w
		m.OverflowY = CanvasHeight*s > h
	default:
		s := math.Min(rx, ry)
		m.ScaleX, m.ScaleY = s, s
		m.OffsetX = (w - CanvasWidth*s) / 2
		m.OffsetY = (h - CanvasHeight*s) / 2
	}
	return m
}

// Apply maps a logical canvas point into window coordinates.
func (m Mapper) Apply(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: p.X*m.ScaleX + m.OffsetX,
		Y: p.Y*m.ScaleY + m.OffsetY,
	}
}

// ApplyRect maps a logical canvas rectangle into window coordinates.
func (m Mapper) ApplyRect(r geometry.Rect) geometry.Rect {
	return geometry.Rect{
		X:      r.X*m.ScaleX + m.OffsetX,
		Y:      r.Y*m.ScaleY + m.OffsetY,
		Width:  r.Width * m.ScaleX,
		Height: r.Height * m.ScaleY,
	}
}

// Affine returns the mapper as an affine transform.
func (m Mapper) Affine() geometry.Affine {
	return geometry.Translation(m.OffsetX, m.OffsetY).
		Compose(geometry.Scaling(m.ScaleX, m.ScaleY))
}

// Equal reports whether two mappers produce identical output.
func (m Mapper) Equal(other Mapper) bool {
	return m == other
}
