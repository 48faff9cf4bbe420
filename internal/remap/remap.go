// Package remap turns normalized payloads into paint commands with final
// window-space geometry, applying the viewport mapper and, for grouped
// payloads, the group's Fill correction. The host toolkit draws the
// commands; nothing here touches pixels.
package remap

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"overlay-hud/internal/grouping"
	"overlay-hud/internal/payload"
	"overlay-hud/internal/viewport"
	"overlay-hud/pkg/colorutil"
	"overlay-hud/pkg/geometry"
)

// CommandKind discriminates the paint command union.
type CommandKind int

const (
	CmdText CommandKind = iota
	CmdRect
	CmdVector
)

// TextLine is one rendered line of a text command.
type TextLine struct {
	Position geometry.Point
	Text     string
}

// TextCommand paints one or more lines of text. The first line sits on the
// payload's original baseline; explicit line breaks stack below it.
type TextCommand struct {
	Lines  []TextLine
	Color  color.NRGBA
	Points float64 // resolved font size
}

// RectCommand paints a filled and/or bordered rectangle. A border, when
// present, is always a one-pixel stroke; HasBorder=false means no stroke at
// all, never a default color.
type RectCommand struct {
	Rect      geometry.Rect
	Fill      color.NRGBA
	HasFill   bool
	Border    color.NRGBA
	HasBorder bool
}

// Marker is a glyph drawn at a vector point.
type Marker struct {
	Position geometry.Point
	Glyph    string
	Color    color.NRGBA
}

// Label is a text annotation at a vector point.
type Label struct {
	Position geometry.Point
	Text     string
	Color    color.NRGBA
	Points   float64
}

// VectorCommand paints an ordered polyline with one uniform stroke color,
// plus independently colored per-point markers and labels.
type VectorCommand struct {
	Points  []geometry.Point
	Stroke  color.NRGBA
	Markers []Marker
	Labels  []Label
}

// Command is the tagged paint command union handed to the draw layer.
type Command struct {
	Kind   CommandKind
	Source string // item key, for diagnostics

	Text   TextCommand
	Rect   RectCommand
	Vector VectorCommand
}

// Options configures remapping.
type Options struct {
	Metrics          payload.TextMetrics
	DefaultTextColor color.NRGBA
	MarkerSize       float64 // marker glyph extent, window units
}

// DefaultOptions returns the remapper defaults.
func DefaultOptions() Options {
	return Options{
		Metrics:          payload.DefaultTextMetrics(),
		DefaultTextColor: colorutil.White,
		MarkerSize:       6,
	}
}

// Remapper converts items to paint commands.
type Remapper struct {
	opts Options
}

// NewRemapper creates a remapper with the given options.
func NewRemapper(opts Options) *Remapper {
	return &Remapper{opts: opts}
}

// Remap produces the paint command for one item. group may be nil for
// ungrouped items. An error means the item is dropped from this pass; the
// caller logs it and carries on.
func (r *Remapper) Remap(item *payload.Item, mapper viewport.Mapper, group *grouping.Transform) (Command, error) {
	tf := mapper.Affine()
	sy := mapper.ScaleY
	labelPos := ""
	if group != nil {
		tf = group.Affine().Compose(tf)
		labelPos = group.LabelPosition
		if group.HasTransform {
			sy *= group.InvScaleY
		}
	}

	switch item.Kind {
	case payload.KindMessage:
		return r.remapMessage(item, tf, sy)
	case payload.KindRect:
		return r.remapRect(item, tf)
	case payload.KindVector:
		return r.remapVector(item, tf, sy, labelPos)
	}
	return Command{}, fmt.Errorf("payload %s: unknown kind %d", item.Key(), item.Kind)
}

func (r *Remapper) remapMessage(item *payload.Item, tf geometry.Affine, sy float64) (Command, error) {
	msg := item.Message

	c := r.opts.DefaultTextColor
	if msg.Color != "" {
		parsed, err := colorutil.Parse(msg.Color)
		if err != nil {
			return Command{}, fmt.Errorf("message %s: %w", item.Key(), err)
		}
		c = parsed
	}

	points := clampPoints(r.opts.Metrics.Points(msg.Size)*sy, r.opts.Metrics)
	base := tf.Apply(msg.Position)
	// Line spacing follows the clamped size, so clamped text stays packed
	// to its rendered glyph height rather than the pre-clamp one.
	lineStep := r.opts.Metrics.LineAdvance(points)

	var lines []TextLine
	for i, text := range strings.Split(msg.Text, "\n") {
		lines = append(lines, TextLine{
			Position: geometry.NewPoint(base.X, base.Y+float64(i)*lineStep),
			Text:     text,
		})
	}

	return Command{
		Kind:   CmdText,
		Source: item.Key(),
		Text:   TextCommand{Lines: lines, Color: c, Points: points},
	}, nil
}

func (r *Remapper) remapRect(item *payload.Item, tf geometry.Affine) (Command, error) {
	rect := item.Rect

	cmd := RectCommand{Rect: tf.ApplyRect(rect.Rect)}

	if rect.Fill != "" {
		fill, err := colorutil.Parse(rect.Fill)
		if err != nil {
			return Command{}, fmt.Errorf("rect %s fill: %w", item.Key(), err)
		}
		cmd.Fill = fill
		cmd.HasFill = true
	}

	if rect.Border != "" {
		border, err := colorutil.Parse(rect.Border)
		if err != nil {
			// A border color that fails to parse means "no border",
			// never a substituted default.
			log.Printf("remap: rect %s: dropping border: %v", item.Key(), err)
		} else {
			cmd.Border = border
			cmd.HasBorder = true
		}
	}

	if !cmd.HasFill && !cmd.HasBorder {
		return Command{}, fmt.Errorf("rect %s: nothing to draw", item.Key())
	}

	return Command{Kind: CmdRect, Source: item.Key(), Rect: cmd}, nil
}

func (r *Remapper) remapVector(item *payload.Item, tf geometry.Affine, sy float64, labelPos string) (Command, error) {
	vec := item.Vector

	stroke := r.opts.DefaultTextColor
	if vec.Color != "" {
		parsed, err := colorutil.Parse(vec.Color)
		if err != nil {
			return Command{}, fmt.Errorf("vector %s stroke: %w", item.Key(), err)
		}
		stroke = parsed
	}

	cmd := VectorCommand{Stroke: stroke}
	for _, vp := range vec.Points {
		p := tf.Apply(vp.Point)
		cmd.Points = append(cmd.Points, p)

		pointColor := stroke
		if vp.Color != "" {
			parsed, err := colorutil.Parse(vp.Color)
			if err != nil {
				log.Printf("remap: vector %s: point color falls back to stroke: %v", item.Key(), err)
			} else {
				pointColor = parsed
			}
		}

		if vp.Marker != "" {
			cmd.Markers = append(cmd.Markers, Marker{Position: p, Glyph: vp.Marker, Color: pointColor})
		}
		if vp.Label != "" {
			// Size preset precedence: per-point, then payload-level,
			// then the default.
			tok := vp.LabelSize
			if tok == "" {
				tok = vec.LabelSize
			}
			cmd.Labels = append(cmd.Labels, Label{
				Position: labelAnchor(p, labelPos, r.opts.MarkerSize),
				Text:     vp.Label,
				Color:    pointColor,
				Points:   clampPoints(r.opts.Metrics.Points(tok)*sy, r.opts.Metrics),
			})
		}
	}

	return Command{Kind: CmdVector, Source: item.Key(), Vector: cmd}, nil
}

// labelAnchor offsets a label away from its point per the group's
// label-position policy. Unknown policies read as "right".
func labelAnchor(p geometry.Point, policy string, markerSize float64) geometry.Point {
	d := markerSize
	switch policy {
	case "above":
		return geometry.NewPoint(p.X, p.Y-d*2)
	case "below":
		return geometry.NewPoint(p.X, p.Y+d*2)
	case "left":
		return geometry.NewPoint(p.X-d*2, p.Y)
	default:
		return geometry.NewPoint(p.X+d, p.Y)
	}
}

func clampPoints(pts float64, m payload.TextMetrics) float64 {
	if m.MinPoints > 0 && pts < m.MinPoints {
		return m.MinPoints
	}
	if m.MaxPoints > 0 && pts > m.MaxPoints {
		return m.MaxPoints
	}
	return pts
}

// GroupBackground emits the background paint command for a visible group
// that declares a background color. The declared border width expands the
// fill outward symmetrically; the border itself is always a one-pixel
// stroke along the expanded edge.
func GroupBackground(t *grouping.Transform) (Command, bool) {
	if t == nil || !t.Visible || t.Background == "" {
		return Command{}, false
	}

	fill, err := colorutil.Parse(t.Background)
	if err != nil {
		log.Printf("remap: group %s: unparsable background %q", t.Key, t.Background)
		return Command{}, false
	}

	cmd := RectCommand{
		Rect:    t.WindowBounds.ToRect().Inflate(t.BorderWidth),
		Fill:    fill,
		HasFill: true,
	}

	if t.BorderColor != "" {
		border, err := colorutil.Parse(t.BorderColor)
		if err != nil {
			log.Printf("remap: group %s: dropping border: %v", t.Key, err)
		} else {
			cmd.Border = border
			cmd.HasBorder = true
		}
	}

	return Command{Kind: CmdRect, Source: t.Key, Rect: cmd}, true
}
