package geometry

// Anchor names a pivot point on a bounding box: a corner, an edge midpoint,
// or the center. Anchors follow compass notation ("nw" is the top-left
// corner, "c" the center).
type Anchor string

// The nine recognized anchor tokens.
const (
	AnchorNW     Anchor = "nw"
	AnchorN      Anchor = "n"
	AnchorNE     Anchor = "ne"
	AnchorW      Anchor = "w"
	AnchorCenter Anchor = "c"
	AnchorE      Anchor = "e"
	AnchorSW     Anchor = "sw"
	AnchorS      Anchor = "s"
	AnchorSE     Anchor = "se"
)

// DefaultAnchor is used when no anchor is declared or the token is unknown.
const DefaultAnchor = AnchorNW

var anchorFractions = map[Anchor][2]float64{
	AnchorNW:     {0, 0},
	AnchorN:      {0.5, 0},
	AnchorNE:     {1, 0},
	AnchorW:      {0, 0.5},
	AnchorCenter: {0.5, 0.5},
	AnchorE:      {1, 0.5},
	AnchorSW:     {0, 1},
	AnchorS:      {0.5, 1},
	AnchorSE:     {1, 1},
}

// Valid returns true if a is one of the nine recognized tokens.
func (a Anchor) Valid() bool {
	_, ok := anchorFractions[a]
	return ok
}

// Fractions returns the anchor's fractional position within a bounding box,
// (0,0) at the min corner through (1,1) at the max corner. Unknown tokens
// resolve as DefaultAnchor.
func (a Anchor) Fractions() (fx, fy float64) {
	f, ok := anchorFractions[a]
	if !ok {
		f = anchorFractions[DefaultAnchor]
	}
	return f[0], f[1]
}

// PointIn resolves the anchor to an absolute point within the bounds.
func (a Anchor) PointIn(b Bounds) Point {
	fx, fy := a.Fractions()
	return b.At(fx, fy)
}
