// Package payload defines the normalized overlay payload model and the
// TTL-keyed store the render loop draws from. Payloads arrive on the legacy
// line feed as JSON, are normalized into Item values, and live until their
// TTL runs out or an explicit clear removes them.
package payload

import (
	"strings"
	"time"

	"overlay-hud/pkg/geometry"
)

// Kind discriminates the payload union.
type Kind int

const (
	KindMessage Kind = iota
	KindRect
	KindVector
)

// String returns the wire-level name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindRect:
		return "rect"
	case KindVector:
		return "vect"
	}
	return "unknown"
}

// SizeToken is a legacy font-size preset. The old protocol only ever shipped
// two: "normal" and "large". Empty means "use the default".
type SizeToken string

const (
	SizeNormal SizeToken = "normal"
	SizeLarge  SizeToken = "large"
)

// Message is a positioned text payload.
type Message struct {
	Text     string
	Color    string
	Position geometry.Point
	Size     SizeToken
}

// RectShape is a filled and/or bordered rectangle payload.
type RectShape struct {
	Rect   geometry.Rect
	Fill   string
	Border string
}

// VectorPoint is one vertex of a vector payload, optionally carrying its own
// marker glyph, label, and colors.
type VectorPoint struct {
	Point     geometry.Point
	Color     string // marker/label color; empty means inherit the stroke color
	Marker    string // glyph name ("cross", "circle"); empty means no marker
	Label     string
	LabelSize SizeToken // per-point preset, overrides the payload-level one
}

// VectorShape is an ordered polyline payload with optional per-point markers
// and labels. All segments share one stroke color.
type VectorShape struct {
	Points    []VectorPoint
	Color     string
	LabelSize SizeToken
}

// Item is a normalized payload with its lifecycle envelope. Exactly one of
// Message, Rect, Vector is meaningful, selected by Kind.
type Item struct {
	ID     string
	Plugin string
	Kind   Kind
	TTL    float64 // seconds, as declared on the wire; <=0 means immediate expiry
	Expiry time.Time

	Message Message
	Rect    RectShape
	Vector  VectorShape
}

// Key returns the store key, unique per plugin+id.
func (it *Item) Key() string {
	return it.Plugin + "/" + it.ID
}

// LogicalBounds returns the item's bounding box on the legacy canvas and
// whether the item is visible. Items with no positive extent (empty message
// text, zero-size rectangle, pointless vector) report visible=false and an
// empty bounds.
func (it *Item) LogicalBounds(metrics TextMetrics) (geometry.Bounds, bool) {
	b := geometry.EmptyBounds()
	switch it.Kind {
	case KindMessage:
		ext := metrics.Extent(it.Message.Text, it.Message.Size)
		if ext.Width <= 0 || ext.Height <= 0 {
			return geometry.EmptyBounds(), false
		}
		r := geometry.NewRect(it.Message.Position.X, it.Message.Position.Y, ext.Width, ext.Height)
		return b.ExtendRect(r), true
	case KindRect:
		if it.Rect.Rect.Empty() {
			return geometry.EmptyBounds(), false
		}
		return b.ExtendRect(it.Rect.Rect), true
	case KindVector:
		if len(it.Vector.Points) == 0 {
			return geometry.EmptyBounds(), false
		}
		for _, p := range it.Vector.Points {
			b = b.ExtendPoint(p.Point)
		}
		return b, true
	}
	return geometry.EmptyBounds(), false
}

// TextMetrics estimates text extents on the legacy canvas and resolves size
// tokens to font point sizes. The legacy canvas never shaped fonts; a flat
// per-character advance is what the original renderer assumed as well.
type TextMetrics struct {
	NormalPoints float64
	LargePoints  float64
	MinPoints    float64
	MaxPoints    float64
}

// DefaultTextMetrics matches the legacy renderer's two presets.
func DefaultTextMetrics() TextMetrics {
	return TextMetrics{NormalPoints: 12, LargePoints: 16, MinPoints: 6, MaxPoints: 32}
}

// Points resolves a size token against the configured min/max point bounds.
func (m TextMetrics) Points(tok SizeToken) float64 {
	pts := m.NormalPoints
	if tok == SizeLarge {
		pts = m.LargePoints
	}
	if m.MinPoints > 0 && pts < m.MinPoints {
		pts = m.MinPoints
	}
	if m.MaxPoints > 0 && pts > m.MaxPoints {
		pts = m.MaxPoints
	}
	return pts
}

// LineAdvance returns the vertical advance for a line rendered at the given
// point size.
func (m TextMetrics) LineAdvance(pts float64) float64 {
	return pts * 1.2
}

// Extent estimates the logical-canvas extent of a text block, honoring
// explicit line breaks. Empty text has zero extent.
func (m TextMetrics) Extent(text string, tok SizeToken) geometry.Size {
	if text == "" {
		return geometry.Size{}
	}
	pts := m.Points(tok)
	var longest int
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if n := len([]rune(line)); n > longest {
			longest = n
		}
	}
	return geometry.NewSize(float64(longest)*pts*0.6, float64(len(lines))*m.LineAdvance(pts))
}
