package arbor

import "testing"

func TestDebugModeFlushStats(t *testing.T) {
	g := NewSceneGraph()
	g.SetDebugMode(true)
	m := g.Begin()
	a := m.CreateNode(NodeHandle{}, 0)
	m.SetLocalBounds(a, Box(0, 0, 5, 5))
	b := m.CreateNode(a, 0)
	m.SetLocalBounds(b, Box(1, 1, 2, 2))
	m.Commit().Commit()

	if g.lastFlush.visited != 3 {
		t.Errorf("visited = %d, want 3", g.lastFlush.visited)
	}
	if g.lastFlush.recomputed != 3 {
		t.Errorf("recomputed = %d, want 3", g.lastFlush.recomputed)
	}
	if g.lastFlush.indexed != 2 {
		t.Errorf("indexed = %d, want 2 (root is never indexed)", g.lastFlush.indexed)
	}
}

func TestDebugTreeDepthCheck(t *testing.T) {
	g := NewSceneGraph()
	g.SetDebugMode(true)
	m := g.Begin()
	parent := NodeHandle{}
	for i := 0; i < 10; i++ {
		parent = m.CreateNode(parent, 0)
	}
	// Well under the warning threshold; just exercises the walk.
	g.debugCheckTreeDepth(parent)
	m.Commit().Commit()
}
