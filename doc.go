// Package arbor is the spatial organization layer for 2D design-canvas
// editors.
//
// Arbor tracks a hierarchy of visual nodes, propagates geometric transforms
// from parent to child, maintains axis-aligned world bounds, and answers
// spatial queries (hit testing, viewport culling) efficiently while the
// hierarchy is edited interactively every frame. It does not own visual
// properties, paint pixels, or dispatch input; those belong to the
// surrounding application.
//
// # Phase cycle
//
// All access goes through a four-phase cycle that guarantees queries never
// observe partially updated state:
//
//	graph := arbor.NewSceneGraph()
//	m := graph.Begin()                       // Modify: edit the hierarchy
//	frame := m.CreateNode(arbor.NodeHandle{}, 0)
//	m.SetLocalBounds(frame, arbor.Box(100, 100, 50, 50))
//	u := m.Commit()                          // Update: flush geometry
//	u.Flush()
//	q := u.Commit()                          // Query: read stable state
//	hits := q.HitTest(arbor.Vec2{X: 110, Y: 95})
//	p := q.Commit()                          // Prepare: build the draw list
//	items := p.DrawList(arbor.BoundingBox{})  // camera viewport by default
//	m = p.Finish()                           // back to Modify
//
// Each phase object exposes only the operations legal in that phase and is
// consumed by the transition to the next; using a consumed phase panics.
//
// # Handles
//
// Nodes are stored in a generation-checked arena and referenced by opaque
// [NodeHandle] values. A handle becomes invalid when its node is removed;
// every operation given an invalid handle fails soft (zero value, false)
// rather than panicking.
//
// # Spatial index
//
// World bounds feed a capacity-subdividing quadtree that backs HitTest,
// QueryVisible, and the prepared draw list. The index is rebuilt during
// Flush and whenever the tracked boundary moves beyond a small tolerance.
//
// # Camera and rendering glue
//
// An optional [Camera] provides pan/zoom, world–screen conversion, and
// animated scrolling (via [gween]). [DrawDebugOverlay] renders world bounds
// and quadtree cells to an ebiten.Image during development, and
// [Transform.GeoM] bridges prepared draw items to [Ebitengine] consumers.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package arbor
