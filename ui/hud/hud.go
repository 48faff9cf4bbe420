// Package hud draws the engine's paint commands as fyne canvas objects. The
// engine already produced final window-space geometry; this layer only
// instantiates toolkit primitives, it never repositions anything.
package hud

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"overlay-hud/internal/remap"
	"overlay-hud/pkg/geometry"
)

// View holds the HUD's object tree.
type View struct {
	content *fyne.Container
}

// NewView creates an empty HUD view.
func NewView() *View {
	return &View{content: container.NewWithoutLayout()}
}

// Content returns the root canvas object for embedding in a window.
func (v *View) Content() fyne.CanvasObject {
	return v.content
}

// Render replaces the object tree with the given command list. Must be
// called on the fyne main goroutine.
func (v *View) Render(cmds []remap.Command) {
	v.content.Objects = v.content.Objects[:0]
	for _, cmd := range cmds {
		switch cmd.Kind {
		case remap.CmdText:
			v.addText(cmd.Text)
		case remap.CmdRect:
			v.addRect(cmd.Rect)
		case remap.CmdVector:
			v.addVector(cmd.Vector)
		}
	}
	v.content.Refresh()
}

func (v *View) addText(t remap.TextCommand) {
	for _, line := range t.Lines {
		obj := fynecanvas.NewText(line.Text, t.Color)
		obj.TextSize = float32(t.Points)
		obj.Move(pos(line.Position))
		v.content.Add(obj)
	}
}

func (v *View) addRect(r remap.RectCommand) {
	fill := color.Color(color.NRGBA{})
	if r.HasFill {
		fill = r.Fill
	}
	obj := fynecanvas.NewRectangle(fill)
	if r.HasBorder {
		obj.StrokeColor = r.Border
		obj.StrokeWidth = 1
	}
	obj.Move(pos(geometry.NewPoint(r.Rect.X, r.Rect.Y)))
	obj.Resize(fyne.NewSize(float32(r.Rect.Width), float32(r.Rect.Height)))
	v.content.Add(obj)
}

func (v *View) addVector(vec remap.VectorCommand) {
	for i := 1; i < len(vec.Points); i++ {
		line := fynecanvas.NewLine(vec.Stroke)
		line.StrokeWidth = 1
		line.Position1 = pos(vec.Points[i-1])
		line.Position2 = pos(vec.Points[i])
		v.content.Add(line)
	}

	for _, m := range vec.Markers {
		v.addMarker(m)
	}

	for _, l := range vec.Labels {
		obj := fynecanvas.NewText(l.Text, l.Color)
		obj.TextSize = float32(l.Points)
		obj.Move(pos(l.Position))
		v.content.Add(obj)
	}
}

func (v *View) addMarker(m remap.Marker) {
	const r = float32(4)
	x, y := float32(m.Position.X), float32(m.Position.Y)

	switch m.Glyph {
	case "circle":
		c := fynecanvas.NewCircle(color.NRGBA{})
		c.StrokeColor = m.Color
		c.StrokeWidth = 1
		c.Move(fyne.NewPos(x-r, y-r))
		c.Resize(fyne.NewSize(2*r, 2*r))
		v.content.Add(c)
	default: // "cross" and anything unrecognized
		h := fynecanvas.NewLine(m.Color)
		h.Position1 = fyne.NewPos(x-r, y)
		h.Position2 = fyne.NewPos(x+r, y)
		vl := fynecanvas.NewLine(m.Color)
		vl.Position1 = fyne.NewPos(x, y-r)
		vl.Position2 = fyne.NewPos(x, y+r)
		v.content.Add(h)
		v.content.Add(vl)
	}
}

func pos(p geometry.Point) fyne.Position {
	return fyne.NewPos(float32(p.X), float32(p.Y))
}
