package arbor

import "sort"

// hitTest collects candidates from the spatial index around the point,
// keeps the visible ones whose world bounds contain it, and orders them
// front to back (reverse painter order, topmost first).
func (g *SceneGraph) hitTest(p Vec2) []NodeHandle {
	point := BoundingBox{X: p.X, Y: p.Y}
	g.hitBuf = g.hitBuf[:0]
	for _, h := range g.index.QueryOverlapping(point) {
		n := g.arena.get(h)
		if n == nil || !n.worldBounds.ContainsPoint(p) {
			continue
		}
		if !g.effectivelyVisible(h) {
			continue
		}
		g.hitBuf = append(g.hitBuf, h)
	}
	hits := make([]NodeHandle, len(g.hitBuf))
	copy(hits, g.hitBuf)
	sort.Slice(hits, func(i, j int) bool {
		return g.arena.get(hits[i]).order > g.arena.get(hits[j]).order
	})
	return hits
}

// queryVisible returns the visible nodes whose world bounds intersect the
// viewport, in painter order.
func (g *SceneGraph) queryVisible(viewport BoundingBox) []NodeHandle {
	var out []NodeHandle
	for _, h := range g.index.QueryOverlapping(viewport) {
		n := g.arena.get(h)
		if n == nil || !n.worldBounds.Intersects(viewport) {
			continue
		}
		if !g.effectivelyVisible(h) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		return g.arena.get(out[i]).order < g.arena.get(out[j]).order
	})
	return out
}

// subtreeBounds unions world bounds over the visible subtree rooted at h.
func (g *SceneGraph) subtreeBounds(h NodeHandle) (BoundingBox, bool) {
	n := g.arena.get(h)
	if n == nil {
		return BoundingBox{}, false
	}
	empty := BoundingBox{HalfW: -1, HalfH: -1}
	if !n.visible {
		return empty, true
	}
	acc := empty
	g.unionSubtree(h, &acc)
	return acc, true
}

func (g *SceneGraph) unionSubtree(h NodeHandle, acc *BoundingBox) {
	n := g.arena.get(h)
	if n == nil || !n.visible {
		return
	}
	if h != g.root {
		*acc = acc.Union(n.worldBounds)
	}
	for _, c := range n.children {
		g.unionSubtree(c, acc)
	}
}

// drawList builds the culled, painter-ordered draw list for the renderer.
func (g *SceneGraph) drawList(viewport BoundingBox) []DrawItem {
	if viewport == (BoundingBox{}) {
		if g.camera != nil {
			viewport = g.camera.VisibleBounds()
		} else {
			viewport = g.index.Boundary()
		}
	}
	handles := g.queryVisible(viewport)
	items := make([]DrawItem, 0, len(handles))
	for _, h := range handles {
		n := g.arena.get(h)
		items = append(items, DrawItem{
			Handle:     h,
			ExternalID: n.externalID,
			Transform:  n.worldTransform,
			Bounds:     n.worldBounds,
			Order:      n.order,
		})
	}
	return items
}
