package merge

import (
	"testing"

	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/gentree"
)

func elidedDel(mv MV) DelNode {
	return DelNode{Kind: DelElided, Elided: colortree.NewWhite(mv)}
}

func wrapDel(kind gentree.NodeKind, child DelNode) DelNode {
	tree := gentree.Node[gentree.Subtree[DelNode]](kind, []gentree.Subtree[DelNode]{{Node: child}})
	return DelNode{Kind: DelInPlace, InPlace: colortree.NewWhite(tree)}
}

// TestMergeDelNodesBreaksMutualMetavariableCycle exercises spec.md §4.I's
// documented case: metavariable A's deletion-side replacement refers to B,
// and B's refers back to A. Without clearing metavarsDel[id] before
// recursing, resolving A re-enters the populated branch for A a second time
// with the identical pair of node shapes and never terminates.
func TestMergeDelNodesBreaksMutualMetavariableCycle(t *testing.T) {
	const kind gentree.NodeKind = 1
	mvA, mvB := MV(0), MV(1)

	replForA := wrapDel(kind, elidedDel(mvB))
	replForB := wrapDel(kind, elidedDel(mvA))
	metavarsDel := []*DelNode{&replForA, &replForB}

	left := elidedDel(mvA)
	right := wrapDel(kind, elidedDel(mvA))

	merged, ok := mergeDelNodes(left, right, metavarsDel)
	if !ok {
		t.Fatalf("mergeDelNodes failed to unify a resolvable mutual cycle")
	}
	if merged.Kind != DelInPlace {
		t.Fatalf("expected an in-place wrapper, got Kind=%d", merged.Kind)
	}

	for i, repl := range metavarsDel {
		if repl == nil {
			t.Errorf("metavarsDel[%d] should have a final replacement recorded", i)
		}
	}
}
