package difftree_test

import (
	"testing"

	"github.com/qri-io/syndiff/internal/difftree"
	"github.com/qri-io/syndiff/internal/gentree"
)

func leafChange(s string) difftree.ChangeNode {
	return difftree.InPlace(gentree.Leaf[gentree.Subtree[difftree.ChangeNode]](gentree.NewToken([]byte(s))))
}

func TestSerializeUnchangedLeaf(t *testing.T) {
	spine := difftree.Spine{
		Kind:      difftree.KindSpine,
		SpineTree: gentree.Leaf[difftree.SeqNode](gentree.NewToken([]byte("x"))),
	}
	if got, want := difftree.Serialize(spine), "x"; got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeUnchangedInternal(t *testing.T) {
	spine := difftree.Spine{Kind: difftree.KindUnchanged}
	if got, want := difftree.Serialize(spine), "UNCHANGED![]"; got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeChangedLeaves(t *testing.T) {
	spine := difftree.Spine{
		Kind:       difftree.KindChanged,
		ChangedDel: leafChange("1"),
		ChangedIns: leafChange("2"),
	}
	if got, want := difftree.Serialize(spine), "CHANGED![«1» -> «2»]"; got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeElidedMetavariable(t *testing.T) {
	spine := difftree.Spine{
		Kind:       difftree.KindChanged,
		ChangedDel: difftree.Elided(difftree.Metavariable(3)),
		ChangedIns: leafChange("y"),
	}
	if got, want := difftree.Serialize(spine), "CHANGED![«$3» -> «y»]"; got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeDeletedAndInsertedRuns(t *testing.T) {
	spine := difftree.Spine{
		Kind: difftree.KindSpine,
		SpineTree: gentree.Node[difftree.SeqNode](1, []difftree.SeqNode{
			{
				Kind: difftree.SeqDeleted,
				Deleted: []gentree.Subtree[difftree.ChangeNode]{
					{Node: leafChange("a")},
					{Node: leafChange("b")},
				},
			},
			{
				Kind: difftree.SeqInserted,
				Inserted: []gentree.Subtree[difftree.ChangeNode]{
					{Node: leafChange("c")},
				},
			},
		}),
	}
	got := difftree.Serialize(spine)
	want := "DELETED![a, b]INSERTED![c]"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestIsElidedAndMetavar(t *testing.T) {
	c := difftree.Elided(difftree.Metavariable(7))
	if !c.IsElided() {
		t.Fatalf("expected IsElided() to be true")
	}
	if c.Metavar() != 7 {
		t.Errorf("Metavar() = %d, want 7", c.Metavar())
	}

	inPlace := leafChange("z")
	if inPlace.IsElided() {
		t.Fatalf("expected IsElided() to be false for an in-place node")
	}
}
