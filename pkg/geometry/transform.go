package geometry

import (
	"math"
)

// Affine represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type Affine struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) Affine {
	return Affine{A: 1, D: 1, TX: tx, TY: ty}
}

// Scaling returns a scaling transform around the origin.
func Scaling(sx, sy float64) Affine {
	return Affine{A: sx, D: sy}
}

// ScaleAbout returns a transform scaling around a pivot point, so the pivot
// maps to itself.
func ScaleAbout(pivot Point, sx, sy float64) Affine {
	return Affine{
		A: sx, D: sy,
		TX: pivot.X * (1 - sx),
		TY: pivot.Y * (1 - sy),
	}
}

// Apply applies the transform to a point.
func (t Affine) Apply(p Point) Point {
	return Point{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// ApplyRect applies the transform to an axis-aligned rectangle and returns
// the axis-aligned bounding box of the result.
func (t Affine) ApplyRect(r Rect) Rect {
	p1 := t.Apply(Point{X: r.X, Y: r.Y})
	p2 := t.Apply(Point{X: r.MaxX(), Y: r.MaxY()})
	return Rect{
		X:      math.Min(p1.X, p2.X),
		Y:      math.Min(p1.Y, p2.Y),
		Width:  math.Abs(p2.X - p1.X),
		Height: math.Abs(p2.Y - p1.Y),
	}
}

// Compose returns this transform composed with another (this * other), so
// applying the result is equivalent to applying other first, then this.
func (t Affine) Compose(other Affine) Affine {
	return Affine{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// Inverse returns the inverse transform, if it exists.
func (t Affine) Inverse() (Affine, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return Affine{}, false
	}

	invDet := 1.0 / det
	return Affine{
		A:  t.D * invDet,
		B:  -t.B * invDet,
		TX: (t.B*t.TY - t.D*t.TX) * invDet,
		C:  -t.C * invDet,
		D:  t.A * invDet,
		TY: (t.C*t.TX - t.A*t.TY) * invDet,
	}, true
}
