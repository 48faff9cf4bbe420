// maptest prints the viewport mapper for a window size in both scaling
// modes, plus the Fill correction a sample group would get. Useful when
// chasing scaling regressions on odd monitor setups.
package main

import (
	"flag"
	"fmt"

	"overlay-hud/internal/grouping"
	"overlay-hud/internal/payload"
	"overlay-hud/internal/viewport"
	"overlay-hud/pkg/geometry"
)

func main() {
	w := flag.Float64("w", 2560, "window width")
	h := flag.Float64("h", 1440, "window height")
	dpr := flag.Float64("dpr", 1.0, "device pixel ratio")
	gx := flag.Float64("gx", 100, "sample group x")
	gy := flag.Float64("gy", 800, "sample group y")
	gw := flag.Float64("gw", 200, "sample group width")
	gh := flag.Float64("gh", 100, "sample group height")
	flag.Parse()

	for _, mode := range []viewport.Mode{viewport.ModeFit, viewport.ModeFill} {
		m := viewport.Compute(*w, *h, *dpr, mode)
		fmt.Printf("%s: scale=(%.4f, %.4f) offset=(%.1f, %.1f) overflow=(x=%v, y=%v)\n",
			mode, m.ScaleX, m.ScaleY, m.OffsetX, m.OffsetY, m.OverflowX, m.OverflowY)
	}

	rules := grouping.Rules{"maptest": {IDPrefixes: []string{"g-"}}}
	engine := grouping.NewEngine(payload.DefaultTextMetrics())
	mapper := viewport.Compute(*w, *h, *dpr, viewport.ModeFill)

	item := &payload.Item{ID: "g-1", Plugin: "maptest", Kind: payload.KindRect,
		Rect: payload.RectShape{Rect: geometry.NewRect(*gx, *gy, *gw, *gh), Fill: "#ffffff"}}
	plan := engine.Prepare([]*payload.Item{item}, mapper, rules)

	g := plan.Groups["maptest/g-"]
	fmt.Printf("group %s: base=(%.1f,%.1f %.1fx%.1f)\n",
		g.Key, g.BaseBounds.MinX, g.BaseBounds.MinY, g.BaseBounds.Width(), g.BaseBounds.Height())
	if g.HasTransform {
		fmt.Printf("  fill correction: pivot=(%.1f,%.1f) inv=(%.4f,%.4f) d=(%.1f,%.1f)\n",
			g.Pivot.X, g.Pivot.Y, g.InvScaleX, g.InvScaleY, g.DX, g.DY)
		fmt.Printf("  window bounds: (%.1f,%.1f)-(%.1f,%.1f)\n",
			g.WindowBounds.MinX, g.WindowBounds.MinY, g.WindowBounds.MaxX, g.WindowBounds.MaxY)
	} else {
		fmt.Println("  no fill correction needed")
	}
}
