package grouping

import (
	"overlay-hud/internal/payload"
	"overlay-hud/internal/viewport"
	"overlay-hud/pkg/geometry"
)

// Transform is the per-group result of one prepare pass: bounds, anchor, the
// Fill-mode correction (if any), and the group's background paint metadata.
// It is immutable once emitted and consumed read-only by the remapper.
type Transform struct {
	Key    string
	Anchor geometry.Anchor

	// BaseBounds is the union of the visible members' logical geometry.
	BaseBounds geometry.Bounds
	// WindowBounds is the group's bounds in window coordinates after any
	// Fill correction; with no correction it is simply the mapped
	// BaseBounds.
	WindowBounds geometry.Bounds

	// Fill-mode correction: inverse scale around the mapped pivot, then
	// translation. HasTransform is false for Fit-mode groups, Fill groups
	// with no overflow, and groups with no visible members.
	HasTransform         bool
	Pivot                geometry.Point // mapped anchor point, window space
	InvScaleX, InvScaleY float64
	DX, DY               float64

	// Visible is true when at least one member contributed to BaseBounds.
	Visible bool

	// Background paint metadata, carried verbatim from the matched rule.
	Background     string
	BorderColor    string
	BorderWidth    float64
	LabelPosition  string
	PreviewBoxMode PreviewBoxMode
}

// Affine returns the correction as an affine transform in window space, to
// be applied after the viewport mapper. Identity when HasTransform is false.
func (t *Transform) Affine() geometry.Affine {
	if !t.HasTransform {
		return geometry.Identity()
	}
	return geometry.Translation(t.DX, t.DY).
		Compose(geometry.ScaleAbout(t.Pivot, t.InvScaleX, t.InvScaleY))
}

// Plan is the outcome of one prepare pass: every group's transform plus the
// item-to-group membership the remapper consults.
type Plan struct {
	Groups     map[string]*Transform
	Membership map[string]string // item key -> group key
}

// GroupFor returns the transform for an item, or nil for ungrouped items.
func (p *Plan) GroupFor(item *payload.Item) *Transform {
	key, ok := p.Membership[item.Key()]
	if !ok {
		return nil
	}
	return p.Groups[key]
}

// Engine owns group preparation. It carries the anchor cache across repaints
// so a group keeps its pivot when a rule edit drops the explicit anchor.
type Engine struct {
	metrics     payload.TextMetrics
	anchorCache map[string]geometry.Anchor
}

// NewEngine creates a grouping engine using the given text metrics for
// message extent estimation.
func NewEngine(metrics payload.TextMetrics) *Engine {
	return &Engine{
		metrics:     metrics,
		anchorCache: make(map[string]geometry.Anchor),
	}
}

// Prepare partitions the live payloads into groups and computes each group's
// transform for this repaint. Ungrouped payloads are simply absent from the
// membership map. A group whose members are all invisible still appears in
// the plan, with HasTransform=false; that is never an error.
func (e *Engine) Prepare(live []*payload.Item, mapper viewport.Mapper, rules Rules) *Plan {
	plan := &Plan{
		Groups:     make(map[string]*Transform),
		Membership: make(map[string]string),
	}

	type member struct {
		item *payload.Item
		res  resolved
	}
	groups := make(map[string][]member)
	for _, item := range live {
		res, ok := rules.resolve(item.Plugin, item.ID)
		if !ok {
			continue
		}
		plan.Membership[item.Key()] = res.key
		groups[res.key] = append(groups[res.key], member{item: item, res: res})
	}

	for key, members := range groups {
		rule := members[0].res.rule
		mode := members[0].res.mode

		bounds := geometry.EmptyBounds()
		for _, m := range members {
			if b, visible := m.item.LogicalBounds(e.metrics); visible {
				bounds = bounds.Union(b)
			}
		}

		t := &Transform{
			Key:            key,
			Anchor:         e.resolveAnchor(key, rule.Anchor),
			BaseBounds:     bounds,
			Visible:        !bounds.Empty(),
			Background:     rule.Background,
			BorderColor:    rule.BorderColor,
			BorderWidth:    rule.borderWidth(),
			LabelPosition:  rule.LabelPosition,
			PreviewBoxMode: mode,
		}

		if t.Visible {
			e.applyFillCorrection(t, mapper)
		}
		plan.Groups[key] = t
	}

	return plan
}

// resolveAnchor picks the group's pivot: explicit override first, then the
// anchor cached from earlier repaints, then the default.
func (e *Engine) resolveAnchor(key string, explicit geometry.Anchor) geometry.Anchor {
	if explicit.Valid() {
		e.anchorCache[key] = explicit
		return explicit
	}
	if cached, ok := e.anchorCache[key]; ok {
		return cached
	}
	e.anchorCache[key] = geometry.DefaultAnchor
	return geometry.DefaultAnchor
}

// applyFillCorrection computes the anchor-relative inverse scale and the
// pull-back translation for Fill-mode groups whose mapped bounds extend past
// the window on an overflowing axis. Everything else gets the identity.
func (e *Engine) applyFillCorrection(t *Transform, mapper viewport.Mapper) {
	mapped := mapper.ApplyRect(t.BaseBounds.ToRect())

	overflows := mapper.Mode == viewport.ModeFill &&
		((mapper.OverflowX && (mapped.X < 0 || mapped.MaxX() > mapper.WindowW)) ||
			(mapper.OverflowY && (mapped.Y < 0 || mapped.MaxY() > mapper.WindowH)))
	if !overflows {
		t.WindowBounds = geometry.EmptyBounds().ExtendRect(mapped)
		return
	}

	// Undo the Fill scale around the anchor so the group renders at its
	// original logical size, keeping its internal layout rigid.
	pivot := mapper.Apply(t.Anchor.PointIn(t.BaseBounds))
	invX := 1 / mapper.ScaleX
	invY := 1 / mapper.ScaleY

	unscaled := geometry.ScaleAbout(pivot, invX, invY).ApplyRect(mapped)

	dx := pullBack(unscaled.X, unscaled.MaxX(), mapper.WindowW)
	dy := pullBack(unscaled.Y, unscaled.MaxY(), mapper.WindowH)

	t.HasTransform = true
	t.Pivot = pivot
	t.InvScaleX = invX
	t.InvScaleY = invY
	t.DX = dx
	t.DY = dy
	t.WindowBounds = geometry.EmptyBounds().ExtendRect(
		geometry.NewRect(unscaled.X+dx, unscaled.Y+dy, unscaled.Width, unscaled.Height))
}

// pullBack returns the translation moving [min,max] inside [0,limit]. When
// the interval is larger than the window the min edge wins, so the group's
// anchor corner stays visible.
func pullBack(min, max, limit float64) float64 {
	var d float64
	if max > limit {
		d = limit - max
	}
	if min+d < 0 {
		d = -min
	}
	return d
}
