package arbor

import (
	"math"
	"math/rand"
	"testing"
)

// cycle runs Modify→Update→Query for a fresh graph edit, returning the
// query phase.
func commitAndFlush(m *ModPhase) *QueryPhase {
	u := m.Commit()
	u.Flush()
	return u.Commit()
}

// --- Basic propagation ---

func TestFlushIdentity(t *testing.T) {
	g := NewSceneGraph()
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 0)
	m.SetLocalBounds(a, Box(3, 4, 5, 6))
	q := commitAndFlush(m)

	wt, ok := q.GetWorldTransform(a)
	if !ok {
		t.Fatal("world transform should be present")
	}
	assertMatrix(t, "world", wt, Identity())
	wb, _ := q.GetWorldBounds(a)
	assertBounds(t, "world bounds", wb, Box(3, 4, 5, 6))
}

func TestFlushComposesParentTransform(t *testing.T) {
	g := NewSceneGraph()
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 0)
	b := m.CreateNode(a, 0)
	m.SetLocalTransform(a, Translation(10, 0))
	m.SetLocalTransform(b, Translation(0, 5))
	m.SetLocalBounds(b, Box(0, 0, 1, 1))
	q := commitAndFlush(m)

	wt, _ := q.GetWorldTransform(b)
	assertMatrix(t, "composed", wt, Translation(10, 5))
	wb, _ := q.GetWorldBounds(b)
	assertBounds(t, "bounds", wb, Box(10, 5, 1, 1))
}

func TestFlushRotatedChildBounds(t *testing.T) {
	g := NewSceneGraph()
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 0)
	m.SetLocalTransform(a, Rotation(math.Pi/2))
	m.SetLocalBounds(a, Box(0, 0, 4, 1))
	q := commitAndFlush(m)

	wb, _ := q.GetWorldBounds(a)
	assertBounds(t, "rotated AABB", wb, Box(0, 0, 1, 4))
}

// --- Frame offsetting ---

// Reparenting a node under a positioned frame moves its world bounds by
// the frame's bounds center, while its own local bounds stay untouched.
func TestReparentUpdatesWorldPosition(t *testing.T) {
	g := NewSceneGraph()
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 0)
	m.SetLocalBounds(a, Box(10, 10, 20, 20))
	b := m.CreateNode(NodeHandle{}, 0)
	m.SetLocalBounds(b, Box(0, 0, 5, 5))
	q := commitAndFlush(m)

	wb, _ := q.GetWorldBounds(b)
	assertBounds(t, "before reparent", wb, Box(0, 0, 5, 5))

	m = q.Commit().Finish()
	if !m.AddChild(a, b) {
		t.Fatal("reparent should succeed")
	}
	q = commitAndFlush(m)

	wb, _ = q.GetWorldBounds(b)
	assertBounds(t, "after reparent", wb, Box(10, 10, 5, 5))
	lb, _ := q.GetLocalBounds(b)
	assertBounds(t, "local unchanged", lb, Box(0, 0, 5, 5))
}

// --- Incremental recomputation ---

func TestFlushRecomputesOnlyDirtySubtree(t *testing.T) {
	g := NewSceneGraph()
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 0)
	aLeaf := m.CreateNode(a, 0)
	b := m.CreateNode(NodeHandle{}, 0)
	bLeaf1 := m.CreateNode(b, 0)
	m.CreateNode(bLeaf1, 0)
	_ = aLeaf
	commitAndFlush(m).Commit().Finish()

	m = g.Begin()
	m.SetLocalTransform(b, Translation(1, 0))
	commitAndFlush(m)

	// b and its two descendants; a's subtree stays untouched.
	if got := g.lastFlush.recomputed; got != 3 {
		t.Errorf("recomputed = %d, want 3", got)
	}
}

func TestFlushRecomputesDescendantsOfDirtyAncestor(t *testing.T) {
	g := NewSceneGraph()
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 0)
	b := m.CreateNode(a, 0)
	m.SetLocalBounds(b, Box(0, 0, 1, 1))
	q := commitAndFlush(m)
	m = q.Commit().Finish()

	// Only the ancestor is marked, but the child's world state must follow.
	m.SetLocalTransform(a, Translation(100, 0))
	q = commitAndFlush(m)
	wb, _ := q.GetWorldBounds(b)
	assertBounds(t, "descendant follows ancestor", wb, Box(100, 0, 1, 1))
}

func TestFlushIsIdempotent(t *testing.T) {
	g := NewSceneGraph()
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 0)
	m.SetLocalBounds(a, Box(1, 2, 3, 4))
	u := m.Commit()
	u.Flush()
	u.Flush()
	q := u.Commit()
	wb, _ := q.GetWorldBounds(a)
	assertBounds(t, "bounds", wb, Box(1, 2, 3, 4))
	if g.lastFlush.recomputed != 0 {
		t.Errorf("second flush recomputed %d nodes, want 0", g.lastFlush.recomputed)
	}
}

// --- World-state consistency property ---

// Builds a random tree with random local state, flushes, and verifies that
// every node's world transform equals its parent's content frame composed
// with its local transform, and that world bounds are the AABB of its
// transformed local bounds. Then edits a random subset and re-verifies,
// exercising the dirty-subtree path.
func TestWorldStateConsistencyRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	randomTransform := func() Transform {
		return Translation(rng.Float64()*200-100, rng.Float64()*200-100).
			Mul(Rotation(rng.Float64() * 2 * math.Pi)).
			Mul(Scaling(rng.Float64()*2+0.1, rng.Float64()*2+0.1))
	}
	randomBounds := func() BoundingBox {
		return Box(rng.Float64()*100-50, rng.Float64()*100-50,
			rng.Float64()*20+0.5, rng.Float64()*20+0.5)
	}

	g := NewSceneGraph()
	m := g.Begin()
	nodes := []NodeHandle{g.Root()}
	for i := 0; i < 60; i++ {
		parent := nodes[rng.Intn(len(nodes))]
		h := m.CreateNode(parent, 0)
		m.SetLocalTransform(h, randomTransform())
		m.SetLocalBounds(h, randomBounds())
		nodes = append(nodes, h)
	}
	q := commitAndFlush(m)
	verifyWorldState(t, g, q, g.Root(), Identity())

	m = q.Commit().Finish()
	for i := 0; i < 10; i++ {
		h := nodes[rng.Intn(len(nodes))]
		if h == g.Root() {
			continue
		}
		m.SetLocalTransform(h, randomTransform())
	}
	q = commitAndFlush(m)
	verifyWorldState(t, g, q, g.Root(), Identity())
}

func verifyWorldState(t *testing.T, g *SceneGraph, q *QueryPhase, h NodeHandle, parentFrame Transform) {
	t.Helper()
	wt, _ := q.GetWorldTransform(h)
	lt, _ := q.GetLocalTransform(h)
	lb, _ := q.GetLocalBounds(h)
	wb, _ := q.GetWorldBounds(h)

	want := parentFrame.Mul(lt)
	for i := range want {
		if math.Abs(want[i]-wt[i]) > 1e-6 {
			t.Fatalf("world transform mismatch at %v: got %v, want %v", h, wt, want)
		}
	}
	wantBounds := lb.TransformedAABB(wt)
	if math.Abs(wantBounds.X-wb.X) > 1e-6 || math.Abs(wantBounds.Y-wb.Y) > 1e-6 ||
		math.Abs(wantBounds.HalfW-wb.HalfW) > 1e-6 || math.Abs(wantBounds.HalfH-wb.HalfH) > 1e-6 {
		t.Fatalf("world bounds mismatch at %v: got %+v, want %+v", h, wb, wantBounds)
	}

	frame := wt.Translate(lb.X, lb.Y)
	for _, c := range q.Children(h) {
		verifyWorldState(t, g, q, c, frame)
	}
}

// --- Clipping ---

func TestClipContentClampsChildBounds(t *testing.T) {
	g := NewSceneGraph()
	m := g.Begin()
	frame := m.CreateNode(NodeHandle{}, 0)
	m.SetLocalBounds(frame, Box(0, 0, 10, 10))
	m.SetClipContent(frame, true)
	child := m.CreateNode(frame, 0)
	m.SetLocalBounds(child, Box(8, 0, 5, 5)) // pokes out the right edge
	q := commitAndFlush(m)

	wb, _ := q.GetWorldBounds(child)
	assertBounds(t, "clipped", wb, BoxFromMinMax(3, -5, 10, 5))
}

func TestClipContentDisabledByDefault(t *testing.T) {
	g := NewSceneGraph()
	m := g.Begin()
	frame := m.CreateNode(NodeHandle{}, 0)
	m.SetLocalBounds(frame, Box(0, 0, 10, 10))
	child := m.CreateNode(frame, 0)
	m.SetLocalBounds(child, Box(8, 0, 5, 5))
	q := commitAndFlush(m)

	wb, _ := q.GetWorldBounds(child)
	assertBounds(t, "unclipped", wb, Box(8, 0, 5, 5))
}

// --- Document-derived bounds ---

type stubBoundsSource map[ExternalID]BoundingBox

func (s stubBoundsSource) LocalBounds(id ExternalID) (BoundingBox, bool) {
	b, ok := s[id]
	return b, ok
}

func TestBoundsSourceResolvesLayout(t *testing.T) {
	g := NewSceneGraph()
	g.SetBoundsSource(stubBoundsSource{11: Box(5, 5, 2, 2)})
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 11)
	q := commitAndFlush(m)

	wb, _ := q.GetWorldBounds(a)
	assertBounds(t, "from source", wb, Box(5, 5, 2, 2))
}

func TestExplicitBoundsWinOverSource(t *testing.T) {
	g := NewSceneGraph()
	g.SetBoundsSource(stubBoundsSource{11: Box(5, 5, 2, 2)})
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 11)
	m.SetLocalBounds(a, Box(1, 1, 1, 1))
	q := commitAndFlush(m)

	wb, _ := q.GetWorldBounds(a)
	assertBounds(t, "explicit wins", wb, Box(1, 1, 1, 1))
}

func TestMarkDirtyRefreshesSourceBounds(t *testing.T) {
	src := stubBoundsSource{11: Box(5, 5, 2, 2)}
	g := NewSceneGraph()
	g.SetBoundsSource(src)
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 11)
	q := commitAndFlush(m)

	src[11] = Box(9, 9, 3, 3) // document layout changed
	m = q.Commit().Finish()
	m.MarkDirty(a)
	q = commitAndFlush(m)

	wb, _ := q.GetWorldBounds(a)
	assertBounds(t, "refreshed", wb, Box(9, 9, 3, 3))
}
