package merge

import (
	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/difftree"
	"github.com/qri-io/syndiff/internal/gentree"
)

// FromDiff lifts a plain (unmerged) diff into the shared Spine
// representation, tagged uniformly with Left, so that patch application
// only ever needs to walk one diff shape whether it came from a single
// 2-way diff (component E) or a 3-way merge (components G-J). There is no
// direct counterpart for this in the retrieval pack: the original keeps
// completely separate type families (and separate patch appliers) for the
// two cases, a duplication this package's unified Spine type makes
// unnecessary.
func FromDiff(d difftree.Spine) Spine {
	switch d.Kind {
	case difftree.KindUnchanged:
		return Spine{Kind: SpineUnchangedK}
	case difftree.KindChanged:
		return Spine{Kind: SpineChangedK, Del: withColorDel(d.ChangedDel, colortree.Left), Ins: withColorIns(d.ChangedIns, colortree.Left)}
	default:
		return Spine{Kind: SpineSpineK, Tree: gentree.MapChildren(d.SpineTree, fromDiffSeq)}
	}
}

func fromDiffSeq(n difftree.SeqNode) SpineSeq {
	switch n.Kind {
	case difftree.SeqZipped:
		return SpineSeq{Kind: SpineSeqZipped, Zipped: gentree.Subtree[Spine]{Field: n.Zipped.Field, Node: FromDiff(n.Zipped.Node)}}
	case difftree.SeqDeleted:
		out := make([]gentree.Subtree[DelNode], len(n.Deleted))
		for i, d := range n.Deleted {
			out[i] = gentree.Subtree[DelNode]{Field: d.Field, Node: withColorDel(d.Node, colortree.Left)}
		}
		return SpineSeq{Kind: SpineSeqDeleted, Deleted: out}
	default: // SeqInserted
		out := make([]gentree.Subtree[InsNode], len(n.Inserted))
		for i, ins := range n.Inserted {
			out[i] = gentree.Subtree[InsNode]{Field: ins.Field, Node: withColorIns(ins.Node, colortree.Left)}
		}
		return SpineSeq{Kind: SpineSeqInserted, Inserted: out}
	}
}

// MergeIDIns merges two insertion trees only when they are structurally
// identical modulo color, exported for internal/patch's metavariable
// binding check (two source subtrees proposed for the same metavariable
// must agree).
func MergeIDIns(left, right InsNode) (InsNode, bool) {
	return mergeIDIns(left, right)
}
