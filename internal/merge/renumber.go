package merge

import (
	"github.com/qri-io/syndiff/internal/difftree"
	"github.com/qri-io/syndiff/internal/gentree"
)

// renumberMetavars returns a copy of s with every metavariable identifier
// shifted by offset, and the number of distinct metavariables it uses
// (i.e. offset + count). This is the supplemented metavariable-renumbering
// pass of spec.md §9, grounded on
// _examples/original_source/syndiff/src/merge/metavar_renamer.rs: before
// spine alignment, the left diff's metavariables are renumbered to [0, L)
// and the right diff's to [L, L+R), so identifiers from the two input
// diffs never collide.
func renumberMetavars(s difftree.Spine, offset int) (difftree.Spine, int) {
	maxSeen := -1
	out := renumberSpine(s, offset, &maxSeen)
	return out, offset + maxSeen + 1
}

func renumberSpine(s difftree.Spine, offset int, maxSeen *int) difftree.Spine {
	switch s.Kind {
	case difftree.KindUnchanged:
		return s
	case difftree.KindChanged:
		return difftree.Spine{
			Kind:       difftree.KindChanged,
			ChangedDel: renumberChange(s.ChangedDel, offset, maxSeen),
			ChangedIns: renumberChange(s.ChangedIns, offset, maxSeen),
		}
	default:
		return difftree.Spine{
			Kind:      difftree.KindSpine,
			SpineTree: gentree.MapChildren(s.SpineTree, func(seq difftree.SeqNode) difftree.SeqNode { return renumberSeq(seq, offset, maxSeen) }),
		}
	}
}

func renumberSeq(n difftree.SeqNode, offset int, maxSeen *int) difftree.SeqNode {
	switch n.Kind {
	case difftree.SeqZipped:
		return difftree.SeqNode{
			Kind: difftree.SeqZipped,
			Zipped: gentree.Subtree[difftree.Spine]{
				Field: n.Zipped.Field,
				Node:  renumberSpine(n.Zipped.Node, offset, maxSeen),
			},
		}
	case difftree.SeqDeleted:
		out := make([]gentree.Subtree[difftree.ChangeNode], len(n.Deleted))
		for i, d := range n.Deleted {
			out[i] = gentree.Subtree[difftree.ChangeNode]{Field: d.Field, Node: renumberChange(d.Node, offset, maxSeen)}
		}
		return difftree.SeqNode{Kind: difftree.SeqDeleted, Deleted: out}
	default: // SeqInserted
		out := make([]gentree.Subtree[difftree.ChangeNode], len(n.Inserted))
		for i, ins := range n.Inserted {
			out[i] = gentree.Subtree[difftree.ChangeNode]{Field: ins.Field, Node: renumberChange(ins.Node, offset, maxSeen)}
		}
		return difftree.SeqNode{Kind: difftree.SeqInserted, Inserted: out}
	}
}

func renumberChange(c difftree.ChangeNode, offset int, maxSeen *int) difftree.ChangeNode {
	if c.IsElided() {
		id := int(c.Metavar())
		if id > *maxSeen {
			*maxSeen = id
		}
		return difftree.Elided(difftree.Metavariable(id + offset))
	}
	return difftree.InPlace(gentree.MapSubtrees(c.Tree(), func(sub difftree.ChangeNode) difftree.ChangeNode {
		return renumberChange(sub, offset, maxSeen)
	}))
}
