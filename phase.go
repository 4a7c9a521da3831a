package arbor

import "fmt"

// The phase objects realize the Modify → Update → Query → Prepare cycle.
// Each exposes only the operations legal in its phase; the transition
// methods consume the receiver. Go has no move semantics, so consumption is
// enforced at runtime: any call through a consumed (or abandoned) phase
// object panics. Phase misuse is a programming error, not a recoverable
// condition.

// ModPhase is the mutation phase: structural edits and local-state changes
// are applied here and recorded as dirty. World state read before the next
// Flush is stale.
type ModPhase struct {
	g    *SceneGraph
	done bool
}

func (m *ModPhase) graph(op string) *SceneGraph {
	if m.done || m.g.phase != phaseModify {
		panic(fmt.Sprintf("arbor: %s on a consumed ModPhase (graph is in %v)", op, m.g.phase))
	}
	return m.g
}

// CreateNode inserts a new node as the last child of parent. A zero or
// invalid parent handle defaults to the root. ext of zero means the node
// represents no document node.
func (m *ModPhase) CreateNode(parent NodeHandle, ext ExternalID) NodeHandle {
	return m.graph("CreateNode").createNode(parent, ext)
}

// RemoveNode removes a node and, recursively, all its descendants,
// erasing their external-id mappings. Removing the root or an invalid
// handle is a rejected no-op (removed == false). Returns the removed
// node's external id, if it had one.
func (m *ModPhase) RemoveNode(h NodeHandle) (ext ExternalID, removed bool) {
	return m.graph("RemoveNode").removeNode(h)
}

// AddChild reparents child as the last child of parent. It returns false,
// leaving the graph unchanged, if either handle is invalid, parent equals
// child, or parent is a descendant of child.
func (m *ModPhase) AddChild(parent, child NodeHandle) bool {
	return m.graph("AddChild").addChild(parent, child)
}

// SetLocalTransform sets a node's transform relative to its parent's
// content frame and marks it dirty. No-op for invalid handles.
func (m *ModPhase) SetLocalTransform(h NodeHandle, t Transform) {
	m.graph("SetLocalTransform").setLocalTransform(h, t)
}

// SetLocalBounds sets a node's bounds relative to its parent's content
// frame and marks it dirty. An explicit value takes precedence over the
// graph's BoundsSource. No-op for invalid handles.
func (m *ModPhase) SetLocalBounds(h NodeHandle, b BoundingBox) {
	m.graph("SetLocalBounds").setLocalBounds(h, b)
}

// SetVisible toggles a node's visibility. An invisible node and its whole
// subtree are excluded from hit testing and the draw list.
func (m *ModPhase) SetVisible(h NodeHandle, visible bool) {
	m.graph("SetVisible").setVisible(h, visible)
}

// SetClipContent toggles content clipping. When set, descendants' world
// bounds are intersected with this node's world bounds during Flush.
func (m *ModPhase) SetClipContent(h NodeHandle, clip bool) {
	m.graph("SetClipContent").setClipContent(h, clip)
}

// LocalTransform returns a node's current local transform. Local state is
// authoritative during Modify; only world state is stale here.
func (m *ModPhase) LocalTransform(h NodeHandle) (Transform, bool) {
	return m.graph("LocalTransform").getLocalTransform(h)
}

// LocalBounds returns a node's current local bounds.
func (m *ModPhase) LocalBounds(h NodeHandle) (BoundingBox, bool) {
	return m.graph("LocalBounds").getLocalBounds(h)
}

// Children returns a node's ordered child list (traversal order is
// rendering order). The returned slice MUST NOT be mutated.
func (m *ModPhase) Children(h NodeHandle) []NodeHandle {
	return m.graph("Children").children(h)
}

// Parent returns a node's parent, or the zero handle for the root and for
// invalid handles.
func (m *ModPhase) Parent(h NodeHandle) NodeHandle {
	return m.graph("Parent").parentOf(h)
}

// MapExternalID returns the scene node representing the given document
// node.
func (m *ModPhase) MapExternalID(id ExternalID) (NodeHandle, bool) {
	return m.graph("MapExternalID").mapExternalID(id)
}

// Unmap returns the document node a scene node represents.
func (m *ModPhase) Unmap(h NodeHandle) (ExternalID, bool) {
	return m.graph("Unmap").unmap(h)
}

// MarkDirty marks a node for recomputation on the next Flush without
// changing its local state. Useful when the document model behind the
// graph's BoundsSource changed a node's layout.
func (m *ModPhase) MarkDirty(h NodeHandle) {
	m.graph("MarkDirty").markDirty(h)
}

// Advance steps the attached camera's animations (scroll and zoom tweens)
// by dt seconds. No-op without a camera.
func (m *ModPhase) Advance(dt float32) {
	g := m.graph("Advance")
	if g.camera != nil {
		g.camera.advance(dt)
	}
}

// Commit ends the Modify phase and begins the Update phase. The receiver
// is consumed.
func (m *ModPhase) Commit() *UpdatePhase {
	g := m.graph("Commit")
	m.done = true
	g.phase = phaseUpdate
	return &UpdatePhase{g: g}
}

// UpdatePhase flushes pending geometry changes. Between Flush and the next
// Modify mutation, world state satisfies the consistency invariant: every
// non-dirty node's world transform is its parent frame composed with its
// local transform, and its world bounds are the AABB of its transformed
// local bounds.
type UpdatePhase struct {
	g    *SceneGraph
	done bool
}

func (u *UpdatePhase) graph(op string) *SceneGraph {
	if u.done || u.g.phase != phaseUpdate {
		panic(fmt.Sprintf("arbor: %s on a consumed UpdatePhase (graph is in %v)", op, u.g.phase))
	}
	return u.g
}

// Flush recomputes world transforms and bounds for every dirty node and
// its descendants, top-down, then rebuilds the spatial index. Idempotent
// within one Update phase.
func (u *UpdatePhase) Flush() {
	u.graph("Flush").flush()
}

// Commit ends the Update phase and begins the Query phase. Flush is run
// first if it has not been already (the dirty set is non-empty).
func (u *UpdatePhase) Commit() *QueryPhase {
	g := u.graph("Commit")
	if len(g.dirty) > 0 {
		g.flush()
	}
	u.done = true
	g.phase = phaseQuery
	return &QueryPhase{g: g}
}

// QueryPhase allows read-only access to the fully flushed scene graph:
// world state lookups, hit testing, spatial queries, and mapping lookups.
type QueryPhase struct {
	g    *SceneGraph
	done bool
}

func (q *QueryPhase) graph(op string) *SceneGraph {
	if q.done || q.g.phase != phaseQuery {
		panic(fmt.Sprintf("arbor: %s on a consumed QueryPhase (graph is in %v)", op, q.g.phase))
	}
	return q.g
}

// GetWorldTransform returns a node's transform in the root coordinate
// frame. Fails for invalid handles.
func (q *QueryPhase) GetWorldTransform(h NodeHandle) (Transform, bool) {
	return q.graph("GetWorldTransform").getWorldTransform(h)
}

// GetWorldBounds returns a node's axis-aligned bounds in the root
// coordinate frame. Fails for invalid handles.
func (q *QueryPhase) GetWorldBounds(h NodeHandle) (BoundingBox, bool) {
	return q.graph("GetWorldBounds").getWorldBounds(h)
}

// GetLocalTransform returns a node's transform relative to its parent's
// content frame.
func (q *QueryPhase) GetLocalTransform(h NodeHandle) (Transform, bool) {
	return q.graph("GetLocalTransform").getLocalTransform(h)
}

// GetLocalBounds returns a node's bounds relative to its parent's content
// frame.
func (q *QueryPhase) GetLocalBounds(h NodeHandle) (BoundingBox, bool) {
	return q.graph("GetLocalBounds").getLocalBounds(h)
}

// MapExternalID returns the scene node representing the given document
// node.
func (q *QueryPhase) MapExternalID(id ExternalID) (NodeHandle, bool) {
	return q.graph("MapExternalID").mapExternalID(id)
}

// Unmap returns the document node a scene node represents.
func (q *QueryPhase) Unmap(h NodeHandle) (ExternalID, bool) {
	return q.graph("Unmap").unmap(h)
}

// Children returns a node's ordered child list. The returned slice MUST
// NOT be mutated.
func (q *QueryPhase) Children(h NodeHandle) []NodeHandle {
	return q.graph("Children").children(h)
}

// Parent returns a node's parent handle.
func (q *QueryPhase) Parent(h NodeHandle) NodeHandle {
	return q.graph("Parent").parentOf(h)
}

// HitTest returns every visible node whose world bounds contain the given
// world-space point, front to back: the topmost node (last painted) comes
// first. The root is structural and never reported.
func (q *QueryPhase) HitTest(p Vec2) []NodeHandle {
	return q.graph("HitTest").hitTest(p)
}

// QueryVisible returns every visible node whose world bounds intersect the
// viewport, in painter order (back to front), for render culling.
func (q *QueryPhase) QueryVisible(viewport BoundingBox) []NodeHandle {
	return q.graph("QueryVisible").queryVisible(viewport)
}

// SubtreeBounds returns the union of world bounds over the visible subtree
// rooted at h. Fails for invalid handles; empty for invisible subtrees.
func (q *QueryPhase) SubtreeBounds(h NodeHandle) (BoundingBox, bool) {
	return q.graph("SubtreeBounds").subtreeBounds(h)
}

// WorldToLocal converts a world-space point into h's local coordinate
// space.
func (q *QueryPhase) WorldToLocal(h NodeHandle, p Vec2) (Vec2, bool) {
	g := q.graph("WorldToLocal")
	t, ok := g.getWorldTransform(h)
	if !ok {
		return Vec2{}, false
	}
	return t.Invert().Apply(p), true
}

// LocalToWorld converts a point in h's local coordinate space to world
// space.
func (q *QueryPhase) LocalToWorld(h NodeHandle, p Vec2) (Vec2, bool) {
	g := q.graph("LocalToWorld")
	t, ok := g.getWorldTransform(h)
	if !ok {
		return Vec2{}, false
	}
	return t.Apply(p), true
}

// Commit ends the Query phase and begins the Prepare phase.
func (q *QueryPhase) Commit() *PreparePhase {
	g := q.graph("Commit")
	q.done = true
	g.phase = phasePrepare
	return &PreparePhase{g: g}
}

// PreparePhase derives the culled, ordered draw list handed to the
// renderer.
type PreparePhase struct {
	g    *SceneGraph
	done bool
}

func (p *PreparePhase) graph(op string) *SceneGraph {
	if p.done || p.g.phase != phasePrepare {
		panic(fmt.Sprintf("arbor: %s on a consumed PreparePhase (graph is in %v)", op, p.g.phase))
	}
	return p.g
}

// DrawItem is one entry of the prepared draw list: everything the renderer
// needs to paint a node, in world space.
type DrawItem struct {
	Handle     NodeHandle
	ExternalID ExternalID
	Transform  Transform
	Bounds     BoundingBox
	Order      int
}

// DrawList returns the visible nodes intersecting the viewport in painter
// order (back to front). An empty viewport selects the attached camera's
// visible bounds; without a camera the whole index boundary is used.
func (p *PreparePhase) DrawList(viewport BoundingBox) []DrawItem {
	return p.graph("DrawList").drawList(viewport)
}

// Finish ends the cycle, returning the graph to the Modify phase for the
// next frame.
func (p *PreparePhase) Finish() *ModPhase {
	g := p.graph("Finish")
	p.done = true
	g.phase = phaseModify
	return &ModPhase{g: g}
}
