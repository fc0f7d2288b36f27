package merge

import (
	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/gentree"
)

// MetavarInsReplacements collects, per metavariable id, every insertion-side
// replacement proposed for it while merging insertions; component J's
// substitution pass resolves each list to one final value. Grounded on
// _examples/original_source/syndiff/src/merge/merge_ins.rs's
// MetavarInsReplacementList.
type MetavarInsReplacements [][]InsReplacement

func newMetavarInsReplacements(n int) MetavarInsReplacements {
	return make(MetavarInsReplacements, n)
}

func (m MetavarInsReplacements) push(mv MV, r InsReplacement) {
	m[mv] = append(m[mv], r)
}

// MergeInsertions implements component H: walk an aligned spine, resolving
// every BothChanged position by trying to inline one side's insertion into
// the other side's deletion, and returning the replacement list every
// metavariable accumulated along the way.
func MergeInsertions(a Aligned, nbVars int) (InsMerged, MetavarInsReplacements) {
	status := newMetavarInsReplacements(nbVars)
	out := mergeInsNode(a, status)
	return out, status
}

func mergeInsNode(a Aligned, status MetavarInsReplacements) InsMerged {
	switch a.Kind {
	case AlignedSpineK:
		return InsMerged{
			Kind: InsMergedSpineK,
			Tree: gentree.MapChildren(a.SpineTree, func(seq AlignedSeq) InsMergedSeq { return mergeInsSeqNode(seq, status) }),
		}
	case AlignedUnchangedK:
		return InsMerged{Kind: InsMergedUnchangedK}
	case AlignedOneChangeK:
		del := a.Del
		registerKeptMetavars(&del, status)
		return InsMerged{Kind: InsMergedOneChangeK, Del: del, Ins: a.Ins}
	default: // AlignedBothChangedK
		leftDel, rightDel := a.LeftDel, a.RightDel
		leftInline := canInlineInsInDel(a.LeftIns, rightDel)
		rightInline := canInlineInsInDel(a.RightIns, leftDel)
		switch {
		case leftInline && !rightInline:
			rightDel = inlineInsInDel(a.LeftIns, rightDel, status)
			registerKeptMetavars(&leftDel, status)
			return InsMerged{Kind: InsMergedBothChangedK, LeftDel: rightDel, RightDel: leftDel, BothIns: a.RightIns}
		case rightInline && !leftInline:
			leftDel = inlineInsInDel(a.RightIns, leftDel, status)
			registerKeptMetavars(&rightDel, status)
			return InsMerged{Kind: InsMergedBothChangedK, LeftDel: leftDel, RightDel: rightDel, BothIns: a.LeftIns}
		default: // both or neither inline: merge both insertion trees
			registerKeptMetavars(&leftDel, status)
			registerKeptMetavars(&rightDel, status)
			return InsMerged{Kind: InsMergedBothChangedK, LeftDel: leftDel, RightDel: rightDel, BothIns: mergeInsNodes(a.LeftIns, a.RightIns)}
		}
	}
}

func mergeInsSeqNode(seq AlignedSeq, status MetavarInsReplacements) InsMergedSeq {
	switch seq.Kind {
	case AlignedSeqZipped:
		return InsMergedSeq{Kind: InsMergedSeqZipped, Zipped: gentree.Subtree[InsMerged]{
			Field: seq.Zipped.Field,
			Node:  mergeInsNode(seq.Zipped.Node, status),
		}}
	case AlignedSeqBothDeleted:
		left, right := seq.LeftDel, seq.RightDel
		registerKeptMetavars(&left, status)
		registerKeptMetavars(&right, status)
		return InsMergedSeq{Kind: InsMergedSeqBothDeleted, LeftDel: left, RightDel: right, DelField: seq.DelField}
	case AlignedSeqInserted:
		return InsMergedSeq{Kind: InsMergedSeqInserted, Inserted: seq.Inserted}
	default: // AlignedSeqInsertOrderConflict
		return InsMergedSeq{Kind: InsMergedSeqInsertOrderConflict, OrderConflict: seq.OrderConflict}
	}
}

// canInlineInsInDel reports whether ins can be folded directly into del
// without producing a conflict: always true against an elided or
// already-conflicted del (it simply accretes another replacement
// candidate), and only true against an in-place del when the two trees
// have identical shape field-for-field.
func canInlineInsInDel(ins InsNode, del DelNode) bool {
	switch del.Kind {
	case DelElided, DelMetavariableConflict:
		return true
	case DelInPlace:
		if ins.Kind != InsInPlace {
			return false
		}
		return gentree.Compare(ins.InPlace.Data, del.InPlace.Data, canInlineInsSeqInDel)
	default:
		return false
	}
}

func canInlineInsSeqInDel(insSeq []InsSeqNode, delSeq []gentree.Subtree[DelNode]) bool {
	if len(insSeq) != len(delSeq) {
		return false
	}
	for i := range insSeq {
		if insSeq[i].Kind != InsSeqPlain {
			return false
		}
		if !gentree.SameField(insSeq[i].Plain.Field, delSeq[i].Field) {
			return false
		}
		if !canInlineInsInDel(insSeq[i].Plain.Node, delSeq[i].Node) {
			return false
		}
	}
	return true
}

// inlineInsInDel folds ins into del, recording the replacement(s) every
// touched metavariable now carries. Caller must have already confirmed
// canInlineInsInDel.
func inlineInsInDel(ins InsNode, del DelNode, status MetavarInsReplacements) DelNode {
	switch del.Kind {
	case DelElided:
		repl := InsReplacement{Kind: Inlined, Ins: ins}
		status.push(del.Elided.Data, repl)
		return DelNode{Kind: DelMetavariableConflict, ConflictMV: del.Elided.Data, ConflictDel: &DelNode{Kind: DelElided, Elided: del.Elided}, ConflictRepl: repl}
	case DelMetavariableConflict:
		var repl InsReplacement
		if del.ConflictRepl.Kind == InferFromDel {
			repl = InsReplacement{Kind: Inlined, Ins: ins}
		} else {
			repl = InsReplacement{Kind: Inlined, Ins: mergeInsNodes(del.ConflictRepl.Ins, ins)}
		}
		status.push(del.ConflictMV, repl)
		return DelNode{Kind: DelMetavariableConflict, ConflictMV: del.ConflictMV, ConflictDel: del.ConflictDel, ConflictRepl: repl}
	default: // DelInPlace
		merged, ok := gentree.MergeInto(ins.InPlace.Data, del.InPlace.Data, func(insSeq []InsSeqNode, delSeq []gentree.Subtree[DelNode]) ([]gentree.Subtree[DelNode], bool) {
			if len(insSeq) != len(delSeq) {
				return nil, false
			}
			out := make([]gentree.Subtree[DelNode], len(delSeq))
			for i := range delSeq {
				out[i] = gentree.Subtree[DelNode]{Field: delSeq[i].Field, Node: inlineInsInDel(insSeq[i].Plain.Node, delSeq[i].Node, status)}
			}
			return out, true
		})
		if !ok {
			return del
		}
		return DelNode{Kind: DelInPlace, InPlace: colortree.Colored[gentree.Tree[gentree.Subtree[DelNode]]]{Data: merged, Color: del.InPlace.Color}}
	}
}

// registerKeptMetavars walks a surviving (non-inlined) deletion tree,
// marking every elided metavariable it still references as conflicted so
// that substitution (component J) knows its content must come from the
// deletion side.
func registerKeptMetavars(del *DelNode, status MetavarInsReplacements) {
	switch del.Kind {
	case DelInPlace:
		gentree.VisitMut(&del.InPlace.Data, func(sub *gentree.Subtree[DelNode]) {
			registerKeptMetavars(&sub.Node, status)
		})
	case DelElided:
		mv := del.Elided.Data
		repl := InsReplacement{Kind: InferFromDel}
		status.push(mv, repl)
		*del = DelNode{Kind: DelMetavariableConflict, ConflictMV: mv, ConflictDel: &DelNode{Kind: DelElided, Elided: del.Elided}, ConflictRepl: repl}
	case DelMetavariableConflict:
		status.push(del.ConflictMV, del.ConflictRepl)
		registerKeptMetavars(del.ConflictDel, status)
	}
}

// mergeInsNodes reconciles two insertion trees that could not be inlined
// into one another's deletion: identical shape merges structurally,
// anything else accretes into an InsConflict.
func mergeInsNodes(left, right InsNode) InsNode {
	if left.Kind == InsInPlace && right.Kind == InsInPlace && gentree.Compare(left.InPlace.Data, right.InPlace.Data, canMergeInsSeq) {
		merged, ok := gentree.MergeInto(left.InPlace.Data, right.InPlace.Data, mergeInsSeq)
		if ok {
			return InsNode{Kind: InsInPlace, InPlace: colortree.Colored[gentree.Tree[InsSeqNode]]{
				Data:  merged,
				Color: left.InPlace.Color.Join(right.InPlace.Color),
			}}
		}
	}
	switch {
	case left.Kind == InsConflict && right.Kind == InsConflict:
		return InsNode{Kind: InsConflict, Conflict: append(append([]InsNode{}, left.Conflict...), right.Conflict...)}
	case left.Kind == InsConflict:
		return InsNode{Kind: InsConflict, Conflict: append(append([]InsNode{}, left.Conflict...), right)}
	case right.Kind == InsConflict:
		return InsNode{Kind: InsConflict, Conflict: append(append([]InsNode{}, right.Conflict...), left)}
	default:
		return InsNode{Kind: InsConflict, Conflict: []InsNode{left, right}}
	}
}

func canMergeInsSeq(left, right []InsSeqNode) bool {
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i].Kind == InsSeqInsertOrderConflict || right[i].Kind == InsSeqInsertOrderConflict {
			return false
		}
		if !gentree.SameField(insSeqField(left[i]), insSeqField(right[i])) {
			return false
		}
	}
	return true
}

func mergeInsSeq(left, right []InsSeqNode) ([]InsSeqNode, bool) {
	out := make([]InsSeqNode, len(left))
	for i := range left {
		l, r := left[i], right[i]
		switch {
		case l.Kind == InsSeqPlain && r.Kind == InsSeqPlain:
			out[i] = InsSeqNode{Kind: InsSeqPlain, Plain: gentree.Subtree[InsNode]{Field: l.Plain.Field, Node: mergeInsNodes(l.Plain.Node, r.Plain.Node)}}
		default:
			lf, lnode := insSeqFieldNode(l)
			_, rnode := insSeqFieldNode(r)
			out[i] = InsSeqNode{Kind: InsSeqDeleteConflict, DeleteConflict: gentree.Subtree[InsNode]{Field: lf, Node: mergeInsNodes(lnode, rnode)}}
		}
	}
	return out, true
}

func insSeqField(n InsSeqNode) *gentree.FieldID {
	if n.Kind == InsSeqDeleteConflict {
		return n.DeleteConflict.Field
	}
	return n.Plain.Field
}

func insSeqFieldNode(n InsSeqNode) (*gentree.FieldID, InsNode) {
	if n.Kind == InsSeqDeleteConflict {
		return n.DeleteConflict.Field, n.DeleteConflict.Node
	}
	return n.Plain.Field, n.Plain.Node
}
