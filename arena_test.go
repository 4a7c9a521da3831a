package arbor

import "testing"

// --- Allocation ---

func TestArenaAllocGet(t *testing.T) {
	var a nodeArena
	h, n := a.alloc()
	if h.IsZero() {
		t.Fatal("alloc returned zero handle")
	}
	if n == nil || a.get(h) != n {
		t.Fatal("get should resolve to the allocated node")
	}
	if !n.visible || !n.dirty {
		t.Error("new nodes start visible and dirty")
	}
	if a.len() != 1 {
		t.Errorf("len = %d, want 1", a.len())
	}
}

func TestArenaZeroHandle(t *testing.T) {
	var a nodeArena
	if a.get(NodeHandle{}) != nil {
		t.Error("zero handle should not resolve")
	}
	a.release(NodeHandle{}) // ignored
}

// --- Invalidation ---

func TestArenaStaleHandle(t *testing.T) {
	var a nodeArena
	h, _ := a.alloc()
	a.release(h)
	if a.get(h) != nil {
		t.Error("released handle should not resolve")
	}
	if a.len() != 0 {
		t.Errorf("len = %d, want 0", a.len())
	}
}

func TestArenaSlotReuseBumpsGeneration(t *testing.T) {
	var a nodeArena
	h1, _ := a.alloc()
	a.release(h1)
	h2, _ := a.alloc()
	if h1.index != h2.index {
		t.Fatalf("slot should be reused (index %d vs %d)", h1.index, h2.index)
	}
	if h1.gen == h2.gen {
		t.Error("generation should change on reuse")
	}
	if a.get(h1) != nil {
		t.Error("old handle must not resolve to the new occupant")
	}
	if a.get(h2) == nil {
		t.Error("new handle should resolve")
	}
}

func TestArenaDoubleRelease(t *testing.T) {
	var a nodeArena
	h, _ := a.alloc()
	a.release(h)
	a.release(h) // must not corrupt the free list
	h2, _ := a.alloc()
	h3, _ := a.alloc()
	if h2 == h3 {
		t.Error("double release leaked a slot into two handles")
	}
}
