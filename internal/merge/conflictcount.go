package merge

import "github.com/qri-io/syndiff/internal/gentree"

// CountConflicts walks a fully substituted Spine and tallies every
// surviving conflict by kind, the supplemented feature grounded on
// _examples/original_source/syndiff/src/merge/conflict_counter.rs.
func CountConflicts(tree Spine) ConflictSummary {
	var s ConflictSummary
	countConflictsInSpine(tree, &s)
	return s
}

func countConflictsInSpine(node Spine, s *ConflictSummary) {
	switch node.Kind {
	case SpineSpineK:
		gentree.Visit(node.Tree, func(seq SpineSeq) { countConflictsInSpineSeq(seq, s) })
	case SpineChangedK:
		countConflictsInDel(node.Del, s)
		countConflictsInIns(node.Ins, s)
	}
}

func countConflictsInSpineSeq(node SpineSeq, s *ConflictSummary) {
	switch node.Kind {
	case SpineSeqZipped:
		countConflictsInSpine(node.Zipped.Node, s)
	case SpineSeqDeleted:
		for _, d := range node.Deleted {
			countConflictsInDel(d.Node, s)
		}
	case SpineSeqInsertOrderConflict:
		s.InsertOrderConflicts++
	}
}

func countConflictsInDel(node DelNode, s *ConflictSummary) {
	switch node.Kind {
	case DelInPlace:
		gentree.Visit(node.InPlace.Data, func(sub gentree.Subtree[DelNode]) { countConflictsInDel(sub.Node, s) })
	case DelMetavariableConflict:
		s.MetavarConflicts++
		countConflictsInDel(*node.ConflictDel, s)
	}
}

func countConflictsInIns(node InsNode, s *ConflictSummary) {
	switch node.Kind {
	case InsInPlace:
		gentree.Visit(node.InPlace.Data, func(sub InsSeqNode) { countConflictsInInsSeq(sub, s) })
	case InsConflict:
		s.InsertConflicts++
	}
}

func countConflictsInInsSeq(node InsSeqNode, s *ConflictSummary) {
	switch node.Kind {
	case InsSeqPlain:
		countConflictsInIns(node.Plain.Node, s)
	case InsSeqDeleteConflict:
		s.InsertConflicts++
		countConflictsInIns(node.DeleteConflict.Node, s)
	case InsSeqInsertOrderConflict:
		s.InsertOrderConflicts++
	}
}
