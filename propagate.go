package arbor

import (
	"fmt"
	"time"
)

// flushStats records what a flush did. Populated on every flush; logged to
// stderr in debug mode.
type flushStats struct {
	recomputed int
	visited    int
	indexed    int
	duration   time.Duration
}

// flush commits all pending geometry changes: it resolves document-derived
// bounds, recomputes world transforms and bounds for every dirty node and
// its descendants (parents strictly before children), clears the dirty set,
// and rebuilds the spatial index.
//
// Recomputation cost is proportional to the size of the edit; the traversal
// itself visits every node to reassign painter order and reindex.
func (g *SceneGraph) flush() {
	start := time.Now()

	for h := range g.dirty {
		n := g.arena.get(h)
		if n == nil {
			// Removal deletes its dirty entries; a stale handle here is a bug.
			panic(fmt.Sprintf("arbor: internal: dirty handle %v has no arena entry", h))
		}
		if g.bounds != nil && !n.boundsSet && n.externalID != 0 {
			if b, ok := g.bounds.LocalBounds(n.externalID); ok {
				n.localBounds = b
			}
		}
	}

	var stats flushStats
	g.entriesBuf = g.entriesBuf[:0]
	order := 0
	content := BoundingBox{HalfW: -1, HalfH: -1}
	g.flushNode(g.root, Identity(), BoundingBox{}, false, false, &order, &content, &stats)

	for h := range g.dirty {
		delete(g.dirty, h)
	}

	g.reindex(content)
	stats.indexed = len(g.entriesBuf)
	stats.duration = time.Since(start)
	g.lastFlush = stats
	if g.debug {
		g.debugLogFlush(stats)
	}
}

// flushNode recomputes one node and recurses into its children. A node is
// recomputed when it is dirty or when its parent was recomputed this flush,
// since its world state is a function of the parent's.
//
// parentFrame is the parent's content frame: the parent's world transform
// translated by the center of the parent's local bounds. Children are
// positioned relative to it, so moving a frame moves its content.
func (g *SceneGraph) flushNode(
	h NodeHandle,
	parentFrame Transform,
	parentBounds BoundingBox,
	parentClips bool,
	parentRecomputed bool,
	order *int,
	content *BoundingBox,
	stats *flushStats,
) {
	n := g.arena.get(h)
	stats.visited++

	recompute := n.dirty || parentRecomputed
	if recompute {
		n.worldTransform = parentFrame.Mul(n.localTransform)
		wb := n.localBounds.TransformedAABB(n.worldTransform)
		if parentClips {
			wb = wb.Intersect(parentBounds)
		}
		n.worldBounds = wb
		n.dirty = false
		stats.recomputed++
	}

	n.order = *order
	*order++

	if h != g.root && !n.worldBounds.IsEmpty() {
		g.entriesBuf = append(g.entriesBuf, indexEntry{bounds: n.worldBounds, id: h})
		*content = content.Union(n.worldBounds)
	}

	frame := n.worldTransform.Translate(n.localBounds.X, n.localBounds.Y)
	for _, c := range n.children {
		g.flushNode(c, frame, n.worldBounds, n.clipContent, recompute, order, content, stats)
	}
}

// reindex rebuilds the spatial index over the collected entries. The
// boundary tracks the union of content bounds and the camera's visible
// bounds; within tolerance the previous boundary is kept, otherwise the
// tree is rebuilt with the new one. Rebuilding is O(n) but avoids
// unbounded fragmentation from incremental patching.
func (g *SceneGraph) reindex(content BoundingBox) {
	boundary := content
	if g.camera != nil {
		boundary = boundary.Union(g.camera.VisibleBounds())
	}
	if boundary.IsEmpty() {
		boundary = Box(0, 0, defaultIndexHalfExtent, defaultIndexHalfExtent)
	}
	if g.index.Boundary().nearlyEqual(boundary, quadBoundaryEpsilon) {
		g.index.Clear()
	} else {
		g.index = NewQuadTree(boundary, g.index.Capacity())
	}
	for _, e := range g.entriesBuf {
		g.index.InsertBounds(e.bounds, e.id)
	}
}
