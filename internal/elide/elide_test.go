package elide_test

import (
	"testing"

	"github.com/qri-io/syndiff/internal/align"
	"github.com/qri-io/syndiff/internal/difftree"
	"github.com/qri-io/syndiff/internal/elide"
	"github.com/qri-io/syndiff/internal/gentree"
	"github.com/qri-io/syndiff/internal/weight"
)

const (
	kindIf gentree.NodeKind = iota + 1
	kindCmp
	kindNot
)

func leaf(s string) *gentree.Raw {
	return &gentree.Raw{Tree: gentree.Leaf[gentree.Subtree[*gentree.Raw]](gentree.NewToken([]byte(s)))}
}

func node(kind gentree.NodeKind, children ...*gentree.Raw) *gentree.Raw {
	subs := make([]gentree.Subtree[*gentree.Raw], len(children))
	for i, c := range children {
		subs[i] = gentree.Subtree[*gentree.Raw]{Node: c}
	}
	return &gentree.Raw{Tree: gentree.Node[gentree.Subtree[*gentree.Raw]](kind, subs)}
}

// TestElisionAcrossAChange exercises the scenario spec.md calls out
// explicitly: editing If(Cmp(x,y), A, B) into If(Not(Cmp(x,y)), A, B)
// should produce Changed(Elided($k), Not(Elided($k))) for the condition,
// not a bare unshared replacement, since the Cmp(x,y) subtree recurs
// unchanged one level down on the insertion side.
func TestElisionAcrossAChange(t *testing.T) {
	cmp := func() *gentree.Raw { return node(kindCmp, leaf("x"), leaf("y")) }

	origin := node(kindIf, cmp(), leaf("A"), leaf("B"))
	edited := node(kindIf, node(kindNot, cmp()), leaf("A"), leaf("B"))

	aligned := align.Align(weight.Weigh(origin), weight.Weigh(edited), align.Minimal)
	spine := elide.Elide(aligned, elide.Options{})

	if spine.Kind != difftree.KindSpine {
		t.Fatalf("expected the If node to zip into a spine, got Kind=%d", spine.Kind)
	}

	var change *difftree.Spine
	gentree.Visit(spine.SpineTree, func(seq difftree.SeqNode) {
		if seq.Kind == difftree.SeqZipped && seq.Zipped.Node.Kind == difftree.KindChanged {
			n := seq.Zipped.Node
			change = &n
		}
	})
	if change == nil {
		t.Fatalf("expected exactly one changed child position (the condition)")
	}

	if !change.ChangedDel.IsElided() {
		t.Fatalf("expected the deletion side (Cmp(x,y)) to be fully elided to a metavariable, got %+v", change.ChangedDel)
	}
	if change.ChangedIns.IsElided() {
		t.Fatalf("expected the insertion side (Not(...)) to stay in place with an elided child, got a bare metavariable")
	}
	insTree := change.ChangedIns.Tree()
	if insTree.IsLeaf() || insTree.Kind() != kindNot {
		t.Fatalf("expected the insertion side to be a Not node, got %+v", insTree)
	}
	if len(insTree.Children()) != 1 || !insTree.Children()[0].Node.IsElided() {
		t.Fatalf("expected Not's single child to be the same elided metavariable")
	}
	if insTree.Children()[0].Node.Metavar() != change.ChangedDel.Metavar() {
		t.Fatalf("deletion and insertion sides should share the same metavariable: del=$%d ins=$%d",
			change.ChangedDel.Metavar(), insTree.Children()[0].Node.Metavar())
	}
}

func TestElisionDisabledKeepsChangesInPlace(t *testing.T) {
	cmp := func() *gentree.Raw { return node(kindCmp, leaf("x"), leaf("y")) }
	origin := node(kindIf, cmp(), leaf("A"), leaf("B"))
	edited := node(kindIf, node(kindNot, cmp()), leaf("A"), leaf("B"))

	aligned := align.Align(weight.Weigh(origin), weight.Weigh(edited), align.Minimal)
	spine := elide.Elide(aligned, elide.Options{SkipElisions: true})

	gentree.Visit(spine.SpineTree, func(seq difftree.SeqNode) {
		if seq.Kind == difftree.SeqZipped && seq.Zipped.Node.Kind == difftree.KindChanged {
			c := seq.Zipped.Node
			if c.ChangedDel.IsElided() || c.ChangedIns.IsElided() {
				t.Fatalf("--no-elisions must never produce a metavariable reference")
			}
		}
	})
}
