package arbor

import (
	"fmt"
	"os"
)

// debugMaxTreeDepth is the depth beyond which a warning is printed in
// debug mode. Interactive documents rarely nest more than a few hundred
// levels; exceeding this usually means a runaway reparenting loop in the
// caller.
const debugMaxTreeDepth = 256

// debugCheckTreeDepth warns on stderr if the ancestor chain of h exceeds
// the threshold. Only called in debug mode.
func (g *SceneGraph) debugCheckTreeDepth(h NodeHandle) {
	depth := 0
	for cur := h; !cur.IsZero(); {
		n := g.arena.get(cur)
		if n == nil {
			break
		}
		depth++
		cur = n.parent
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[arbor] warning: tree depth %d exceeds %d\n",
			depth, debugMaxTreeDepth)
	}
}

// debugLogFlush prints per-flush stats to stderr.
func (g *SceneGraph) debugLogFlush(stats flushStats) {
	_, _ = fmt.Fprintf(os.Stderr,
		"[arbor] flush: recomputed %d/%d nodes | indexed %d | %v\n",
		stats.recomputed, stats.visited, stats.indexed, stats.duration)
}
