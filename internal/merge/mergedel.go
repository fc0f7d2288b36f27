package merge

import (
	"errors"

	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/gentree"
)

// ErrDeletionUnificationFailed is returned when two deletion trees that
// ended up paired at a BothChanged or BothDeleted position (via the
// metavariable unification performed while resolving insertions) turn out
// to have incompatible shapes.
var ErrDeletionUnificationFailed = errors.New("merge: deletion unification failed")

// MergeDeletions implements component I: collapse every remaining
// two-sided deletion (BothChanged's left/right DelNode, or a seq-level
// BothDeleted pair) into one DelNode, producing the final merged Spine
// along with the per-metavariable deletion-side replacement table that
// component J's substitution pass consumes.
func MergeDeletions(in InsMerged, nbMetavars int) (*Spine, []*DelNode, error) {
	metavarsDel := make([]*DelNode, nbMetavars)
	out, ok := mergeDelInSpine(in, metavarsDel)
	if !ok {
		return nil, nil, ErrDeletionUnificationFailed
	}
	return &out, metavarsDel, nil
}

func mergeDelInSpine(node InsMerged, metavarsDel []*DelNode) (Spine, bool) {
	switch node.Kind {
	case InsMergedSpineK:
		if node.Tree.IsLeaf() {
			return Spine{Kind: SpineSpineK, Tree: gentree.Leaf[SpineSeq](node.Tree.LeafToken())}, true
		}
		out, ok := mergeDelInSpineSeq(node.Tree.Children(), metavarsDel)
		if !ok {
			return Spine{}, false
		}
		return Spine{Kind: SpineSpineK, Tree: gentree.Node[SpineSeq](node.Tree.Kind(), out)}, true
	case InsMergedUnchangedK:
		return Spine{Kind: SpineUnchangedK}, true
	case InsMergedOneChangeK:
		return Spine{Kind: SpineChangedK, Del: node.Del, Ins: node.Ins}, true
	default: // InsMergedBothChangedK
		del, ok := mergeDelNodes(node.LeftDel, node.RightDel, metavarsDel)
		if !ok {
			return Spine{}, false
		}
		return Spine{Kind: SpineChangedK, Del: del, Ins: node.BothIns}, true
	}
}

func mergeDelInSpineSeq(seq []InsMergedSeq, metavarsDel []*DelNode) ([]SpineSeq, bool) {
	var out []SpineSeq
	for _, n := range seq {
		switch n.Kind {
		case InsMergedSeqZipped:
			sub, ok := mergeDelInSpine(n.Zipped.Node, metavarsDel)
			if !ok {
				return nil, false
			}
			out = append(out, SpineSeq{Kind: SpineSeqZipped, Zipped: gentree.Subtree[Spine]{Field: n.Zipped.Field, Node: sub}})
		case InsMergedSeqBothDeleted:
			del, ok := mergeDelNodes(n.LeftDel, n.RightDel, metavarsDel)
			if !ok {
				return nil, false
			}
			entry := gentree.Subtree[DelNode]{Field: n.DelField, Node: del}
			if last := len(out) - 1; last >= 0 && out[last].Kind == SpineSeqDeleted {
				out[last].Deleted = append(out[last].Deleted, entry)
			} else {
				out = append(out, SpineSeq{Kind: SpineSeqDeleted, Deleted: []gentree.Subtree[DelNode]{entry}})
			}
		case InsMergedSeqInserted:
			out = append(out, SpineSeq{Kind: SpineSeqInserted, Inserted: n.Inserted})
		default: // InsMergedSeqInsertOrderConflict
			out = append(out, SpineSeq{Kind: SpineSeqInsertOrderConflict, OrderConflict: n.OrderConflict})
		}
	}
	return out, true
}

// mergeDelNodes unifies two deletion trees that originate from the same
// spine position (or share a metavariable through metavarsDel): identical
// in-place shapes recurse field-for-field; a MetavariableConflict wrapper
// recurses into its inner deletion, keeping its conflict payload; two
// Elided references to the same metavariable simply join colors; an
// Elided reference to a metavariable against any other deletion records
// that deletion as the metavariable's del-side replacement (unifying with
// any replacement already on file) and keeps the other side's value,
// tagged with the elided reference's color.
func mergeDelNodes(left, right DelNode, metavarsDel []*DelNode) (DelNode, bool) {
	switch {
	case left.Kind == DelInPlace && right.Kind == DelInPlace:
		merged, ok := gentree.MergeSubtreesInto(left.InPlace.Data, right.InPlace.Data, func(l, r DelNode) (DelNode, bool) {
			return mergeDelNodes(l, r, metavarsDel)
		})
		if !ok {
			return DelNode{}, false
		}
		return DelNode{Kind: DelInPlace, InPlace: colortree.Colored[gentree.Tree[gentree.Subtree[DelNode]]]{
			Data: merged, Color: left.InPlace.Color.Join(right.InPlace.Color),
		}}, true

	case left.Kind == DelMetavariableConflict:
		newDel, ok := mergeDelNodes(*left.ConflictDel, right, metavarsDel)
		if !ok {
			return DelNode{}, false
		}
		return DelNode{Kind: DelMetavariableConflict, ConflictMV: left.ConflictMV, ConflictDel: &newDel, ConflictRepl: left.ConflictRepl}, true
	case right.Kind == DelMetavariableConflict:
		newDel, ok := mergeDelNodes(left, *right.ConflictDel, metavarsDel)
		if !ok {
			return DelNode{}, false
		}
		return DelNode{Kind: DelMetavariableConflict, ConflictMV: right.ConflictMV, ConflictDel: &newDel, ConflictRepl: right.ConflictRepl}, true

	case left.Kind == DelElided && right.Kind == DelElided && left.Elided.Data == right.Elided.Data:
		return DelNode{Kind: DelElided, Elided: colortree.Colored[MV]{Data: left.Elided.Data, Color: left.Elided.Color.Join(right.Elided.Color)}}, true

	case left.Kind == DelElided:
		return mergeElidedWithOther(left.Elided, right, metavarsDel)
	case right.Kind == DelElided:
		return mergeElidedWithOther(right.Elided, left, metavarsDel)

	default:
		return DelNode{}, false
	}
}

func mergeElidedWithOther(mv colortree.Colored[MV], other DelNode, metavarsDel []*DelNode) (DelNode, bool) {
	id := mv.Data
	// Take the stored replacement out before recursing, mirroring the
	// grounding source's metavars_del[mv_id].take(): a mutual cross-reference
	// (mv_a's replacement mentions mv_b, mv_b's mentions mv_a back) would
	// otherwise re-enter this same populated slot forever. With the slot
	// cleared during the recursive merge, the inner occurrence falls through
	// to the "not yet populated" branch and the cycle terminates.
	repl := metavarsDel[id]
	metavarsDel[id] = nil
	if repl != nil {
		newRepl, ok := mergeDelNodes(*repl, deepCopyDel(other), metavarsDel)
		if !ok {
			return DelNode{}, false
		}
		metavarsDel[id] = &newRepl
	} else {
		stored := deepCopyDel(other)
		metavarsDel[id] = &stored
	}
	addColors(mv.Color, &other)
	return other, true
}

func addColors(color colortree.Color, d *DelNode) {
	switch d.Kind {
	case DelInPlace:
		gentree.VisitMut(&d.InPlace.Data, func(sub *gentree.Subtree[DelNode]) { addColors(color, &sub.Node) })
		d.InPlace.Color = d.InPlace.Color.Join(color)
	case DelElided:
		d.Elided.Color = d.Elided.Color.Join(color)
	case DelMetavariableConflict:
		addColors(color, d.ConflictDel)
	}
}

func deepCopyDel(d DelNode) DelNode {
	out := d
	switch d.Kind {
	case DelInPlace:
		if d.InPlace.Data.IsLeaf() {
			out.InPlace.Data = gentree.Leaf[gentree.Subtree[DelNode]](d.InPlace.Data.LeafToken())
			return out
		}
		children := make([]gentree.Subtree[DelNode], len(d.InPlace.Data.Children()))
		for i, c := range d.InPlace.Data.Children() {
			children[i] = gentree.Subtree[DelNode]{Field: c.Field, Node: deepCopyDel(c.Node)}
		}
		out.InPlace.Data = gentree.Node[gentree.Subtree[DelNode]](d.InPlace.Data.Kind(), children)
	case DelMetavariableConflict:
		inner := deepCopyDel(*d.ConflictDel)
		out.ConflictDel = &inner
	}
	return out
}
