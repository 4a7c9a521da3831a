package arbor

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// whitePixel is a 1x1 white image stretched into the overlay's line
// segments. Allocated on first use so importing the package never touches
// the GPU.
var whitePixel *ebiten.Image

func debugWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// OverlayOptions configures DrawDebugOverlay.
type OverlayOptions struct {
	// DrawBounds outlines every visible node's world bounds.
	DrawBounds bool
	// DrawIndex outlines the quadtree cells of the spatial index.
	DrawIndex bool
	// BoundsColor and IndexColor default to green and gray.
	BoundsColor color.Color
	IndexColor  color.Color
}

// DrawDebugOverlay renders node world bounds and quadtree cell outlines
// onto dst, using the attached camera's view transform when present. A
// development aid; the actual painting of node content belongs to the
// application's renderer.
func DrawDebugOverlay(dst *ebiten.Image, p *PreparePhase, opts OverlayOptions) {
	g := p.graph("DrawDebugOverlay")

	view := Identity()
	if g.camera != nil {
		view = g.camera.ViewTransform()
	}

	if opts.DrawIndex {
		clr := opts.IndexColor
		if clr == nil {
			clr = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
		}
		drawIndexCells(dst, g.index, view, clr)
	}

	if opts.DrawBounds {
		clr := opts.BoundsColor
		if clr == nil {
			clr = color.RGBA{G: 0xc0, A: 0xff}
		}
		for _, item := range g.drawList(BoundingBox{}) {
			strokeBox(dst, item.Bounds, view, clr)
		}
	}
}

func drawIndexCells(dst *ebiten.Image, q *QuadTree, view Transform, clr color.Color) {
	strokeBox(dst, q.boundary, view, clr)
	if q.divided {
		drawIndexCells(dst, q.northeast, view, clr)
		drawIndexCells(dst, q.northwest, view, clr)
		drawIndexCells(dst, q.southeast, view, clr)
		drawIndexCells(dst, q.southwest, view, clr)
	}
}

// strokeBox draws the outline of a world-space box as four 1px screen-space
// segments.
func strokeBox(dst *ebiten.Image, b BoundingBox, view Transform, clr color.Color) {
	if b.IsEmpty() {
		return
	}
	min := view.Apply(b.Min())
	max := view.Apply(b.Max())
	w := max.X - min.X
	h := max.Y - min.Y
	drawSegment(dst, min.X, min.Y, w, 1, clr)
	drawSegment(dst, min.X, max.Y, w, 1, clr)
	drawSegment(dst, min.X, min.Y, 1, h, clr)
	drawSegment(dst, max.X, min.Y, 1, h, clr)
}

func drawSegment(dst *ebiten.Image, x, y, w, h float64, clr color.Color) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	r, g, b, a := clr.RGBA()
	op.ColorScale.Scale(float32(r)/0xffff, float32(g)/0xffff, float32(b)/0xffff, float32(a)/0xffff)
	dst.DrawImage(debugWhitePixel(), op)
}
