package arbor

// ExternalID identifies a node in the externally owned document/content
// model. The zero value means "no document node"; structural nodes such as
// the canvas root carry none.
type ExternalID uint64

// NodeHandle is an opaque, stable reference to a node in the arena. The
// zero NodeHandle refers to no node. A handle becomes invalid when its node
// is removed; operations given an invalid handle fail soft.
type NodeHandle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether the handle is the zero value.
func (h NodeHandle) IsZero() bool {
	return h.gen == 0
}

// graphNode is one spatial entity in the hierarchy. Local geometry is
// expressed in the parent's content frame; world geometry is derived during
// flush and never set directly.
type graphNode struct {
	parent   NodeHandle
	children []NodeHandle

	localTransform Transform
	localBounds    BoundingBox
	boundsSet      bool // explicit SetLocalBounds wins over BoundsSource lookup

	worldTransform Transform
	worldBounds    BoundingBox

	externalID  ExternalID
	visible     bool
	clipContent bool
	dirty       bool

	order int // painter order assigned during flush
}

// nodeArena is a generation-checked slot map. Freed slots are reused with a
// bumped generation so stale handles never resolve to a new occupant.
type nodeArena struct {
	slots []arenaSlot
	free  []uint32
	count int
}

type arenaSlot struct {
	node graphNode
	gen  uint32
	live bool
}

// alloc reserves a slot and returns its handle and node. The node starts as
// a dirty, visible leaf with identity transform and zero bounds.
func (a *nodeArena) alloc() (NodeHandle, *graphNode) {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, arenaSlot{})
		idx = uint32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.gen++
	s.live = true
	s.node = graphNode{
		localTransform: Identity(),
		worldTransform: Identity(),
		visible:        true,
		dirty:          true,
	}
	a.count++
	return NodeHandle{index: idx, gen: s.gen}, &s.node
}

// get resolves a handle, or returns nil if the handle never existed or its
// node was removed.
func (a *nodeArena) get(h NodeHandle) *graphNode {
	if h.gen == 0 || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil
	}
	return &s.node
}

// release frees a slot. Stale or already-freed handles are ignored.
func (a *nodeArena) release(h NodeHandle) {
	if a.get(h) == nil {
		return
	}
	s := &a.slots[h.index]
	s.live = false
	s.node = graphNode{}
	a.free = append(a.free, h.index)
	a.count--
}

// len returns the number of live nodes.
func (a *nodeArena) len() int {
	return a.count
}
