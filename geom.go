package arbor

import "math"

// Vec2 is a 2D vector used for positions, offsets, and sizes throughout the
// API. The coordinate system has its origin at the top-left, with Y
// increasing downward.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// BoundingBox is an axis-aligned rectangle stored as a center point plus
// half extents. It is used both for node bounds and quadtree cell
// boundaries. A box with negative half extents is empty.
type BoundingBox struct {
	X, Y         float64 // center
	HalfW, HalfH float64
}

// Box constructs a BoundingBox from a center point and half extents.
func Box(x, y, halfW, halfH float64) BoundingBox {
	return BoundingBox{X: x, Y: y, HalfW: halfW, HalfH: halfH}
}

// BoxFromMinMax constructs the BoundingBox spanning the two corners.
func BoxFromMinMax(minX, minY, maxX, maxY float64) BoundingBox {
	return BoundingBox{
		X:     (minX + maxX) / 2,
		Y:     (minY + maxY) / 2,
		HalfW: (maxX - minX) / 2,
		HalfH: (maxY - minY) / 2,
	}
}

// Min returns the top-left corner.
func (b BoundingBox) Min() Vec2 {
	return Vec2{b.X - b.HalfW, b.Y - b.HalfH}
}

// Max returns the bottom-right corner.
func (b BoundingBox) Max() Vec2 {
	return Vec2{b.X + b.HalfW, b.Y + b.HalfH}
}

// Center returns the center point.
func (b BoundingBox) Center() Vec2 {
	return Vec2{b.X, b.Y}
}

// IsEmpty reports whether the box has a negative extent on either axis.
// The zero BoundingBox is a single point and is not empty.
func (b BoundingBox) IsEmpty() bool {
	return b.HalfW < 0 || b.HalfH < 0
}

// ContainsPoint reports whether p lies inside the box. Points on the edge
// are considered inside (inclusive min, inclusive max).
func (b BoundingBox) ContainsPoint(p Vec2) bool {
	return p.X >= b.X-b.HalfW && p.X <= b.X+b.HalfW &&
		p.Y >= b.Y-b.HalfH && p.Y <= b.Y+b.HalfH
}

// Intersects reports whether b and o overlap. Boxes sharing only an edge
// are considered intersecting.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return math.Abs(b.X-o.X) <= b.HalfW+o.HalfW &&
		math.Abs(b.Y-o.Y) <= b.HalfH+o.HalfH
}

// Intersect returns the overlapping region of b and o. The result is empty
// (negative extents) when the boxes do not overlap.
func (b BoundingBox) Intersect(o BoundingBox) BoundingBox {
	minX := math.Max(b.X-b.HalfW, o.X-o.HalfW)
	minY := math.Max(b.Y-b.HalfH, o.Y-o.HalfH)
	maxX := math.Min(b.X+b.HalfW, o.X+o.HalfW)
	maxY := math.Min(b.Y+b.HalfH, o.Y+o.HalfH)
	return BoxFromMinMax(minX, minY, maxX, maxY)
}

// Union returns the smallest box containing both b and o. Empty boxes are
// ignored; the union of two empty boxes is empty.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	minX := math.Min(b.X-b.HalfW, o.X-o.HalfW)
	minY := math.Min(b.Y-b.HalfH, o.Y-o.HalfH)
	maxX := math.Max(b.X+b.HalfW, o.X+o.HalfW)
	maxY := math.Max(b.Y+b.HalfH, o.Y+o.HalfH)
	return BoxFromMinMax(minX, minY, maxX, maxY)
}

// nearlyEqual reports whether two boxes coincide within tolerance on every
// component. Used by the quadtree's boundary-change check.
func (b BoundingBox) nearlyEqual(o BoundingBox, tolerance float64) bool {
	return math.Abs(b.X-o.X) <= tolerance &&
		math.Abs(b.Y-o.Y) <= tolerance &&
		math.Abs(b.HalfW-o.HalfW) <= tolerance &&
		math.Abs(b.HalfH-o.HalfH) <= tolerance
}

// TransformedAABB returns the axis-aligned bounding box of the four corners
// of b mapped through t. For rotation or skew this over-approximates rather
// than producing a tight oriented box.
func (b BoundingBox) TransformedAABB(t Transform) BoundingBox {
	min := b.Min()
	max := b.Max()
	p0 := t.Apply(Vec2{min.X, min.Y})
	p1 := t.Apply(Vec2{max.X, min.Y})
	p2 := t.Apply(Vec2{min.X, max.Y})
	p3 := t.Apply(Vec2{max.X, max.Y})
	minX := math.Min(math.Min(p0.X, p1.X), math.Min(p2.X, p3.X))
	minY := math.Min(math.Min(p0.Y, p1.Y), math.Min(p2.Y, p3.Y))
	maxX := math.Max(math.Max(p0.X, p1.X), math.Max(p2.X, p3.X))
	maxY := math.Max(math.Max(p0.Y, p1.Y), math.Max(p2.Y, p3.Y))
	return BoxFromMinMax(minX, minY, maxX, maxY)
}
