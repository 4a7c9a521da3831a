package arbor

// quadBoundaryEpsilon is the tolerance below which a boundary change is
// ignored rather than triggering a rebuild.
const quadBoundaryEpsilon = 1e-3

// maxQuadDepth bounds subdivision so a degenerate capacity (or coincident
// points) cannot recurse forever. At this depth entries are stored in the
// cell regardless of capacity.
const maxQuadDepth = 8

// QuadEntry is one stored (position, id) pair returned by queries.
type QuadEntry struct {
	Pos Vec2
	ID  NodeHandle
}

// quadEntry is the internal storage form. Entries inserted via InsertBounds
// carry their full bounds and may be stored in multiple quadrants; queries
// deduplicate them.
type quadEntry struct {
	pos       Vec2
	bounds    BoundingBox
	hasBounds bool
	id        NodeHandle
}

// QuadTree is a capacity-subdividing spatial index over a bounded region.
// Each cell holds up to capacity entries; on overflow it lazily subdivides
// into four quadrants of half extent and further insertions descend into
// whichever quadrant accepts them.
//
// The tree has no phase state of its own; it is rebuilt or queried as
// directed by the graph's Update/Query/Prepare phases.
type QuadTree struct {
	boundary BoundingBox
	capacity int
	points   []quadEntry
	divided  bool

	northeast *QuadTree
	northwest *QuadTree
	southeast *QuadTree
	southwest *QuadTree
}

// NewQuadTree creates a quadtree over the given boundary. A capacity of 0
// or less means "always subdivide": entries are pushed down until
// maxQuadDepth.
func NewQuadTree(boundary BoundingBox, capacity int) *QuadTree {
	return &QuadTree{boundary: boundary, capacity: capacity}
}

// Boundary returns the region the tree covers.
func (q *QuadTree) Boundary() BoundingBox {
	return q.boundary
}

// Capacity returns the per-cell entry capacity.
func (q *QuadTree) Capacity() int {
	return q.capacity
}

// Len returns the number of distinct inserted entries. Bounds entries
// stored in several quadrants count once.
func (q *QuadTree) Len() int {
	seen := make(map[NodeHandle]struct{})
	q.countInto(seen)
	return len(seen)
}

func (q *QuadTree) countInto(seen map[NodeHandle]struct{}) {
	for _, e := range q.points {
		seen[e.id] = struct{}{}
	}
	if q.divided {
		q.northeast.countInto(seen)
		q.northwest.countInto(seen)
		q.southeast.countInto(seen)
		q.southwest.countInto(seen)
	}
}

// Insert adds a point entry. It returns false, without growing the tree,
// when the point lies outside the boundary (growth only happens explicitly
// via UpdateBounds).
func (q *QuadTree) Insert(pos Vec2, id NodeHandle) bool {
	if !q.boundary.ContainsPoint(pos) {
		return false
	}
	q.insertPoint(quadEntry{pos: pos, id: id}, 0)
	return true
}

func (q *QuadTree) insertPoint(e quadEntry, depth int) bool {
	if !q.boundary.ContainsPoint(e.pos) {
		return false
	}
	if depth >= maxQuadDepth {
		q.points = append(q.points, e)
		return true
	}
	if len(q.points) < q.capacity {
		q.points = append(q.points, e)
		return true
	}
	if !q.divided {
		q.subdivide()
	}
	// Quadrants contain inclusive edges, so the first accepting quadrant
	// owns an entry exactly on a shared boundary.
	if q.northeast.insertPoint(e, depth+1) {
		return true
	}
	if q.northwest.insertPoint(e, depth+1) {
		return true
	}
	if q.southeast.insertPoint(e, depth+1) {
		return true
	}
	if q.southwest.insertPoint(e, depth+1) {
		return true
	}
	q.points = append(q.points, e)
	return true
}

// InsertBounds adds an entry covering a rectangular region. The entry's
// center is the stored position; cell ownership is decided by full-bounds
// intersection, so one entry may land in several quadrants. Returns false
// when the bounds do not intersect the boundary at all.
func (q *QuadTree) InsertBounds(b BoundingBox, id NodeHandle) bool {
	e := quadEntry{pos: b.Center(), bounds: b, hasBounds: true, id: id}
	return q.insertBounds(e, 0)
}

func (q *QuadTree) insertBounds(e quadEntry, depth int) bool {
	if !q.boundary.Intersects(e.bounds) {
		return false
	}
	if depth >= maxQuadDepth {
		q.points = append(q.points, e)
		return true
	}
	if !q.divided && len(q.points) < q.capacity {
		q.points = append(q.points, e)
		return true
	}
	if !q.divided {
		q.subdivide()
	}
	inserted := false
	if q.northeast.insertBounds(e, depth+1) {
		inserted = true
	}
	if q.northwest.insertBounds(e, depth+1) {
		inserted = true
	}
	if q.southeast.insertBounds(e, depth+1) {
		inserted = true
	}
	if q.southwest.insertBounds(e, depth+1) {
		inserted = true
	}
	if !inserted {
		q.points = append(q.points, e)
	}
	return true
}

// subdivide creates the four child quadrants at half extent.
func (q *QuadTree) subdivide() {
	x := q.boundary.X
	y := q.boundary.Y
	hw := q.boundary.HalfW / 2
	hh := q.boundary.HalfH / 2
	q.northeast = NewQuadTree(Box(x+hw, y-hh, hw, hh), q.capacity)
	q.northwest = NewQuadTree(Box(x-hw, y-hh, hw, hh), q.capacity)
	q.southeast = NewQuadTree(Box(x+hw, y+hh, hw, hh), q.capacity)
	q.southwest = NewQuadTree(Box(x-hw, y+hh, hw, hh), q.capacity)
	q.divided = true
}

// QueryRange returns every entry whose stored position lies inside r
// (inclusive bounds), recursing only into quadrants whose boundary
// intersects r. Entries stored in several quadrants are returned once.
func (q *QuadTree) QueryRange(r BoundingBox) []QuadEntry {
	var out []QuadEntry
	var seen map[NodeHandle]struct{}
	q.queryRange(r, &out, &seen)
	return out
}

func (q *QuadTree) queryRange(r BoundingBox, out *[]QuadEntry, seen *map[NodeHandle]struct{}) {
	if !q.boundary.Intersects(r) {
		return
	}
	for _, e := range q.points {
		if !r.ContainsPoint(e.pos) {
			continue
		}
		if e.hasBounds {
			// Only bounds entries can be duplicated across quadrants.
			if *seen == nil {
				*seen = make(map[NodeHandle]struct{})
			}
			if _, dup := (*seen)[e.id]; dup {
				continue
			}
			(*seen)[e.id] = struct{}{}
		}
		*out = append(*out, QuadEntry{Pos: e.pos, ID: e.id})
	}
	if q.divided {
		q.northeast.queryRange(r, out, seen)
		q.northwest.queryRange(r, out, seen)
		q.southeast.queryRange(r, out, seen)
		q.southwest.queryRange(r, out, seen)
	}
}

// QueryOverlapping returns the ids of all entries whose region overlaps r:
// for bounds entries the full stored bounds are tested, for point entries
// the position. Used for hit testing and culling, where an entry much
// larger than r must still be found.
func (q *QuadTree) QueryOverlapping(r BoundingBox) []NodeHandle {
	var out []NodeHandle
	seen := make(map[NodeHandle]struct{})
	q.queryOverlapping(r, &out, seen)
	return out
}

func (q *QuadTree) queryOverlapping(r BoundingBox, out *[]NodeHandle, seen map[NodeHandle]struct{}) {
	if !q.boundary.Intersects(r) {
		return
	}
	for _, e := range q.points {
		hit := false
		if e.hasBounds {
			hit = e.bounds.Intersects(r)
		} else {
			hit = r.ContainsPoint(e.pos)
		}
		if !hit {
			continue
		}
		if _, dup := seen[e.id]; dup {
			continue
		}
		seen[e.id] = struct{}{}
		*out = append(*out, e.id)
	}
	if q.divided {
		q.northeast.queryOverlapping(r, out, seen)
		q.northwest.queryOverlapping(r, out, seen)
		q.southeast.queryOverlapping(r, out, seen)
		q.southwest.queryOverlapping(r, out, seen)
	}
}

// UpdateBounds retargets the tree to a new boundary. Within tolerance of
// the current boundary it is a no-op; otherwise every entry is collected,
// the tree is reset with the new boundary, and the entries are reinserted.
// An O(n) rebuild, acceptable because boundary changes (viewport resize)
// are infrequent relative to per-frame queries.
func (q *QuadTree) UpdateBounds(newBoundary BoundingBox) {
	if q.boundary.nearlyEqual(newBoundary, quadBoundaryEpsilon) {
		return
	}
	entries := q.collect(nil, make(map[NodeHandle]struct{}))
	q.boundary = newBoundary
	q.clearCells()
	for _, e := range entries {
		if e.hasBounds {
			q.insertBounds(e, 0)
		} else {
			q.insertPoint(e, 0)
		}
	}
}

// Clear removes every entry, keeping the boundary and capacity.
func (q *QuadTree) Clear() {
	q.clearCells()
}

func (q *QuadTree) clearCells() {
	q.points = q.points[:0]
	q.divided = false
	q.northeast = nil
	q.northwest = nil
	q.southeast = nil
	q.southwest = nil
}

// collect gathers every distinct entry in the subtree.
func (q *QuadTree) collect(out []quadEntry, seen map[NodeHandle]struct{}) []quadEntry {
	for _, e := range q.points {
		if e.hasBounds {
			if _, dup := seen[e.id]; dup {
				continue
			}
			seen[e.id] = struct{}{}
		}
		out = append(out, e)
	}
	if q.divided {
		out = q.northeast.collect(out, seen)
		out = q.northwest.collect(out, seen)
		out = q.southeast.collect(out, seen)
		out = q.southwest.collect(out, seen)
	}
	return out
}
