package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsExtend(t *testing.T) {
	b := EmptyBounds()
	require.True(t, b.Empty())
	assert.Equal(t, 0.0, b.Width())
	assert.Equal(t, 0.0, b.Height())

	b = b.ExtendPoint(NewPoint(10, 20))
	require.False(t, b.Empty())
	assert.Equal(t, 0.0, b.Width())

	b = b.ExtendRect(NewRect(5, 25, 20, 10))
	assert.Equal(t, 5.0, b.MinX)
	assert.Equal(t, 20.0, b.MinY)
	assert.Equal(t, 25.0, b.MaxX)
	assert.Equal(t, 35.0, b.MaxY)
	assert.Equal(t, 20.0, b.Width())
	assert.Equal(t, 15.0, b.Height())
}

func TestBoundsUnionWithEmpty(t *testing.T) {
	b := EmptyBounds().ExtendRect(NewRect(0, 0, 10, 10))
	assert.Equal(t, b, b.Union(EmptyBounds()))
	assert.Equal(t, b, EmptyBounds().Union(b))
}

func TestRectInflate(t *testing.T) {
	r := NewRect(10, 10, 20, 20).Inflate(5)
	assert.Equal(t, NewRect(5, 5, 30, 30), r)

	shrunk := NewRect(10, 10, 20, 20).Inflate(-5)
	assert.Equal(t, NewRect(15, 15, 10, 10), shrunk)
}

func TestAnchorFractions(t *testing.T) {
	tests := []struct {
		anchor Anchor
		fx, fy float64
	}{
		{AnchorNW, 0, 0},
		{AnchorN, 0.5, 0},
		{AnchorNE, 1, 0},
		{AnchorW, 0, 0.5},
		{AnchorCenter, 0.5, 0.5},
		{AnchorE, 1, 0.5},
		{AnchorSW, 0, 1},
		{AnchorS, 0.5, 1},
		{AnchorSE, 1, 1},
		{Anchor("bogus"), 0, 0}, // unknown falls back to nw
	}
	for _, tt := range tests {
		t.Run(string(tt.anchor), func(t *testing.T) {
			fx, fy := tt.anchor.Fractions()
			assert.Equal(t, tt.fx, fx)
			assert.Equal(t, tt.fy, fy)
		})
	}
}

func TestAnchorPointIn(t *testing.T) {
	b := EmptyBounds().ExtendRect(NewRect(100, 200, 40, 20))
	assert.Equal(t, NewPoint(100, 200), AnchorNW.PointIn(b))
	assert.Equal(t, NewPoint(120, 210), AnchorCenter.PointIn(b))
	assert.Equal(t, NewPoint(140, 220), AnchorSE.PointIn(b))
}

func TestScaleAbout(t *testing.T) {
	pivot := NewPoint(100, 100)
	m := ScaleAbout(pivot, 0.5, 0.5)

	// Pivot maps to itself.
	assert.Equal(t, pivot, m.Apply(pivot))

	// A point 40 to the right of the pivot ends up 20 to the right.
	got := m.Apply(NewPoint(140, 100))
	assert.InDelta(t, 120, got.X, 1e-9)
	assert.InDelta(t, 100, got.Y, 1e-9)
}

func TestAffineComposeInverse(t *testing.T) {
	m := Translation(30, -10).Compose(Scaling(2, 2))
	p := NewPoint(5, 7)
	q := m.Apply(p)
	assert.InDelta(t, 40, q.X, 1e-9)
	assert.InDelta(t, 4, q.Y, 1e-9)

	inv, ok := m.Inverse()
	require.True(t, ok)
	back := inv.Apply(q)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestAffineInverseSingular(t *testing.T) {
	_, ok := Scaling(0, 1).Inverse()
	assert.False(t, ok)
}
