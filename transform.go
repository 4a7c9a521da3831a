package arbor

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Transform is a 2D affine matrix.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Transform [6]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{1, 0, 0, 1, 0, 0}
}

// Translation returns a transform that translates by (x, y).
func Translation(x, y float64) Transform {
	return Transform{1, 0, 0, 1, x, y}
}

// Scaling returns a transform that scales by (sx, sy) about the origin.
func Scaling(sx, sy float64) Transform {
	return Transform{sx, 0, 0, sy, 0, 0}
}

// Rotation returns a transform that rotates by r radians (clockwise, since
// Y increases downward) about the origin.
func Rotation(r float64) Transform {
	sin, cos := math.Sincos(r)
	return Transform{cos, sin, -sin, cos, 0, 0}
}

// Mul composes two transforms: the result applies m after c
// (result = m ∘ c, so result.Apply(p) == m.Apply(c.Apply(p))).
func (m Transform) Mul(c Transform) Transform {
	return Transform{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert returns the inverse transform, or the identity if m is singular
// (determinant ≈ 0).
func (m Transform) Invert() Transform {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return Identity()
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Transform{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply maps a point through the transform.
func (m Transform) Apply(p Vec2) Vec2 {
	return Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Translate returns m composed with a trailing translation by (x, y) in m's
// local space.
func (m Transform) Translate(x, y float64) Transform {
	return m.Mul(Translation(x, y))
}

// GeoM converts the transform to an ebiten.GeoM for draw submission.
func (m Transform) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}
