package arbor

// BoundsSource resolves local bounds for nodes whose geometry is derived
// from document-node layout rather than an explicit SetLocalBounds call.
// It is consulted during Flush for every pending node that has an external
// id and no explicitly set bounds.
type BoundsSource interface {
	LocalBounds(id ExternalID) (BoundingBox, bool)
}

// graphPhase tags the phase the graph is currently in. Phase objects check
// it so that an abandoned phase from a previous cycle fails loudly.
type graphPhase uint8

const (
	phaseModify graphPhase = iota
	phaseUpdate
	phaseQuery
	phasePrepare
)

func (p graphPhase) String() string {
	switch p {
	case phaseModify:
		return "Modify"
	case phaseUpdate:
		return "Update"
	case phaseQuery:
		return "Query"
	default:
		return "Prepare"
	}
}

// Default boundary used by the spatial index until the first flush
// establishes content bounds.
const defaultIndexHalfExtent = 1 << 14

// DefaultIndexCapacity is the per-cell entry capacity of the spatial index.
const DefaultIndexCapacity = 8

// SceneGraph owns the node arena, the external-id mapping, the dirty set,
// and the spatial index. It is a single-threaded, synchronous structure;
// all access goes through the phase objects obtained from Begin.
type SceneGraph struct {
	arena nodeArena
	root  NodeHandle

	extToNode map[ExternalID]NodeHandle
	nodeToExt map[NodeHandle]ExternalID

	dirty map[NodeHandle]struct{}

	index  *QuadTree
	camera *Camera
	bounds BoundsSource

	phase graphPhase
	debug bool

	lastFlush flushStats

	// Reused traversal buffers.
	entriesBuf []indexEntry
	hitBuf     []NodeHandle
}

// indexEntry pairs a node's world bounds with its handle for reindexing.
type indexEntry struct {
	bounds BoundingBox
	id     NodeHandle
}

// NewSceneGraph creates a scene graph containing only the root node. The
// root has identity transform, zero bounds, and no external id; it cannot
// be removed.
func NewSceneGraph() *SceneGraph {
	g := &SceneGraph{
		extToNode: make(map[ExternalID]NodeHandle),
		nodeToExt: make(map[NodeHandle]ExternalID),
		dirty:     make(map[NodeHandle]struct{}),
		index: NewQuadTree(
			Box(0, 0, defaultIndexHalfExtent, defaultIndexHalfExtent),
			DefaultIndexCapacity,
		),
		phase: phaseModify,
	}
	root, _ := g.arena.alloc()
	g.root = root
	g.markDirty(root)
	return g
}

// Root returns the handle of the root node.
func (g *SceneGraph) Root() NodeHandle {
	return g.root
}

// SetBoundsSource sets the document-model accessor used to resolve local
// bounds during Flush. Pass nil to clear.
func (g *SceneGraph) SetBoundsSource(src BoundsSource) {
	g.bounds = src
}

// SetDebugMode enables debug mode. When enabled, tree-depth warnings are
// printed and per-flush stats are logged to stderr.
func (g *SceneGraph) SetDebugMode(enabled bool) {
	g.debug = enabled
}

// AttachCamera creates a camera with the given screen viewport size,
// attaches it to the graph, and returns it. The camera's visible bounds
// become part of the spatial index boundary and the default draw-list
// viewport.
func (g *SceneGraph) AttachCamera(viewportW, viewportH float64) *Camera {
	g.camera = newCamera(viewportW, viewportH)
	return g.camera
}

// Camera returns the attached camera, or nil.
func (g *SceneGraph) Camera() *Camera {
	return g.camera
}

// Index returns the spatial index. Valid between a flush and the next
// Modify mutation; exposed for debug overlays and tests.
func (g *SceneGraph) Index() *QuadTree {
	return g.index
}

// Begin starts a new phase cycle in the Modify phase. Phase objects from a
// previous unfinished cycle become stale.
func (g *SceneGraph) Begin() *ModPhase {
	g.phase = phaseModify
	return &ModPhase{g: g}
}

// --- Arena mutations (reached through ModPhase) ---

// createNode inserts a new node as the last child of parent, or of the
// root if parent is zero or invalid. There is no failure mode.
func (g *SceneGraph) createNode(parent NodeHandle, ext ExternalID) NodeHandle {
	if g.arena.get(parent) == nil {
		parent = g.root
	}
	h, n := g.arena.alloc()
	n.parent = parent
	n.externalID = ext
	// alloc may have grown the slot backing array; resolve parent after.
	p := g.arena.get(parent)
	p.children = append(p.children, h)
	if ext != 0 {
		g.extToNode[ext] = h
		g.nodeToExt[h] = ext
	}
	g.markDirty(h)
	if g.debug {
		g.debugCheckTreeDepth(h)
	}
	return h
}

// removeNode detaches a node from its parent and removes it together with
// every descendant, erasing their external-id mappings. The root is never
// removed. Returns the removed node's external id, if any, and whether the
// removal happened.
func (g *SceneGraph) removeNode(h NodeHandle) (ExternalID, bool) {
	if h == g.root {
		return 0, false
	}
	n := g.arena.get(h)
	if n == nil {
		return 0, false
	}
	if p := g.arena.get(n.parent); p != nil {
		p.children = removeHandle(p.children, h)
	}
	ext := n.externalID
	g.removeSubtree(h)
	return ext, true
}

// removeSubtree releases h and all its descendants post-order.
func (g *SceneGraph) removeSubtree(h NodeHandle) {
	n := g.arena.get(h)
	if n == nil {
		return
	}
	for _, c := range n.children {
		g.removeSubtree(c)
	}
	if ext := n.externalID; ext != 0 {
		delete(g.extToNode, ext)
		delete(g.nodeToExt, h)
	}
	delete(g.dirty, h)
	g.arena.release(h)
}

// addChild reparents child under parent, appending it to parent's child
// list. It fails without side effects if either handle is invalid, if
// parent == child, or if parent is a descendant of child (which would
// create a cycle).
func (g *SceneGraph) addChild(parent, child NodeHandle) bool {
	if parent == child {
		return false
	}
	p := g.arena.get(parent)
	c := g.arena.get(child)
	if p == nil || c == nil {
		return false
	}
	if g.isAncestor(child, parent) {
		return false
	}
	if old := g.arena.get(c.parent); old != nil {
		old.children = removeHandle(old.children, child)
	}
	c.parent = parent
	p.children = append(p.children, child)
	g.markDirty(child)
	if g.debug {
		g.debugCheckTreeDepth(child)
	}
	return true
}

// isAncestor reports whether node is an ancestor of descendant (or the
// same node). Walks the parent chain upward from descendant; O(depth).
func (g *SceneGraph) isAncestor(node, descendant NodeHandle) bool {
	for h := descendant; !h.IsZero(); {
		if h == node {
			return true
		}
		n := g.arena.get(h)
		if n == nil {
			return false
		}
		h = n.parent
	}
	return false
}

// children returns the ordered child list of a node. The returned slice
// MUST NOT be mutated by the caller. Empty for leaves and invalid handles.
func (g *SceneGraph) children(h NodeHandle) []NodeHandle {
	n := g.arena.get(h)
	if n == nil {
		return nil
	}
	return n.children
}

// parentOf returns a node's parent handle, or the zero handle for the root
// and for invalid handles.
func (g *SceneGraph) parentOf(h NodeHandle) NodeHandle {
	n := g.arena.get(h)
	if n == nil {
		return NodeHandle{}
	}
	return n.parent
}

// --- Local state setters (reached through ModPhase) ---

func (g *SceneGraph) setLocalTransform(h NodeHandle, t Transform) {
	n := g.arena.get(h)
	if n == nil {
		return
	}
	n.localTransform = t
	g.markDirty(h)
}

func (g *SceneGraph) setLocalBounds(h NodeHandle, b BoundingBox) {
	n := g.arena.get(h)
	if n == nil {
		return
	}
	n.localBounds = b
	n.boundsSet = true
	g.markDirty(h)
}

func (g *SceneGraph) setVisible(h NodeHandle, visible bool) {
	n := g.arena.get(h)
	if n == nil {
		return
	}
	n.visible = visible
	g.markDirty(h)
}

func (g *SceneGraph) setClipContent(h NodeHandle, clip bool) {
	n := g.arena.get(h)
	if n == nil {
		return
	}
	n.clipContent = clip
	g.markDirty(h)
}

func (g *SceneGraph) markDirty(h NodeHandle) {
	n := g.arena.get(h)
	if n == nil {
		return
	}
	n.dirty = true
	g.dirty[h] = struct{}{}
}

// --- Lookups (reached through Query/Prepare phases) ---

func (g *SceneGraph) getWorldTransform(h NodeHandle) (Transform, bool) {
	n := g.arena.get(h)
	if n == nil {
		return Transform{}, false
	}
	return n.worldTransform, true
}

func (g *SceneGraph) getWorldBounds(h NodeHandle) (BoundingBox, bool) {
	n := g.arena.get(h)
	if n == nil {
		return BoundingBox{}, false
	}
	return n.worldBounds, true
}

func (g *SceneGraph) getLocalTransform(h NodeHandle) (Transform, bool) {
	n := g.arena.get(h)
	if n == nil {
		return Transform{}, false
	}
	return n.localTransform, true
}

func (g *SceneGraph) getLocalBounds(h NodeHandle) (BoundingBox, bool) {
	n := g.arena.get(h)
	if n == nil {
		return BoundingBox{}, false
	}
	return n.localBounds, true
}

// mapExternalID returns the scene node representing a document node.
func (g *SceneGraph) mapExternalID(id ExternalID) (NodeHandle, bool) {
	h, ok := g.extToNode[id]
	return h, ok
}

// unmap returns the document node a scene node represents.
func (g *SceneGraph) unmap(h NodeHandle) (ExternalID, bool) {
	id, ok := g.nodeToExt[h]
	return id, ok
}

// effectivelyVisible reports whether h and every ancestor are visible.
func (g *SceneGraph) effectivelyVisible(h NodeHandle) bool {
	for !h.IsZero() {
		n := g.arena.get(h)
		if n == nil || !n.visible {
			return false
		}
		h = n.parent
	}
	return true
}

// removeHandle removes the first occurrence of h from s, preserving order.
func removeHandle(s []NodeHandle, h NodeHandle) []NodeHandle {
	for i, v := range s {
		if v == h {
			copy(s[i:], s[i+1:])
			return s[:len(s)-1]
		}
	}
	return s
}
