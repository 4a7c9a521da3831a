package arbor

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Zoom is clamped to this range to keep view matrices invertible.
const (
	minZoom = 0.01
	maxZoom = 256.0
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera controls the view into the canvas: the world-space point it
// centers on, the zoom factor, and the screen viewport size. Its visible
// bounds feed viewport culling and the spatial index boundary.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// ViewportW and ViewportH are the screen viewport size in pixels.
	ViewportW, ViewportH float64

	scrollTween *scrollAnim
	zoomTween   *gween.Tween
}

func newCamera(viewportW, viewportH float64) *Camera {
	return &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
}

// SetViewportSize resizes the screen viewport (e.g. on window resize).
func (c *Camera) SetViewportSize(w, h float64) {
	c.ViewportW = w
	c.ViewportH = h
}

// VisibleBounds returns the world-space region the camera can see.
func (c *Camera) VisibleBounds() BoundingBox {
	zoom := clampZoom(c.Zoom)
	return Box(c.X, c.Y, c.ViewportW/(2*zoom), c.ViewportH/(2*zoom))
}

// ViewTransform returns the world→screen transform.
func (c *Camera) ViewTransform() Transform {
	zoom := clampZoom(c.Zoom)
	view := Translation(c.ViewportW/2, c.ViewportH/2)
	view = view.Mul(Scaling(zoom, zoom))
	return view.Mul(Translation(-c.X, -c.Y))
}

// WorldToScreen converts a world-space point to screen space.
func (c *Camera) WorldToScreen(p Vec2) Vec2 {
	return c.ViewTransform().Apply(p)
}

// ScreenToWorld converts a screen-space point to world space.
func (c *Camera) ScreenToWorld(p Vec2) Vec2 {
	return c.ViewTransform().Invert().Apply(p)
}

// ZoomAt multiplies the zoom by factor while keeping the world point under
// the given screen position fixed, the usual zoom-at-cursor behavior.
func (c *Camera) ZoomAt(screenX, screenY, factor float64) {
	anchor := c.ScreenToWorld(Vec2{screenX, screenY})
	c.Zoom = clampZoom(c.Zoom * factor)
	after := c.ScreenToWorld(Vec2{screenX, screenY})
	c.X += anchor.X - after.X
	c.Y += anchor.Y - after.Y
}

// ScrollTo animates the camera to the given world position over duration
// seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// ZoomTo animates the zoom factor to the given value over duration
// seconds.
func (c *Camera) ZoomTo(zoom float64, duration float32, easeFn ease.TweenFunc) {
	c.zoomTween = gween.New(float32(c.Zoom), float32(clampZoom(zoom)), duration, easeFn)
}

// advance steps active tweens. Called from ModPhase.Advance.
func (c *Camera) advance(dt float32) {
	if anim := c.scrollTween; anim != nil {
		if !anim.doneX {
			x, done := anim.tweenX.Update(dt)
			c.X = float64(x)
			anim.doneX = done
		}
		if !anim.doneY {
			y, done := anim.tweenY.Update(dt)
			c.Y = float64(y)
			anim.doneY = done
		}
		if anim.doneX && anim.doneY {
			c.scrollTween = nil
		}
	}
	if c.zoomTween != nil {
		z, done := c.zoomTween.Update(dt)
		c.Zoom = float64(z)
		if done {
			c.zoomTween = nil
		}
	}
}

func clampZoom(z float64) float64 {
	if z < minZoom {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}
