package merge

import (
	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/gentree"
)

// substState tags the three-phase memoization state of one metavariable's
// substitution, matching the Pending/Processing/Computed states of
// _examples/original_source/syndiff/src/merge/subst.rs's ComputableSubst.
type substState int

const (
	substPending substState = iota
	substProcessing
	substComputed
)

type delSubstEntry struct {
	state    substState
	pending  *DelNode // nil means "no deletion-side replacement was ever recorded"
	computed DelNode
}

type insSubstEntry struct {
	state      substState
	pending    []InsReplacement
	computed   InsNode
	computedOK bool // false once computed means the metavariable's conflict could not be solved
}

type cycleFrame struct {
	mv    MV
	cycle bool
}

// substituter implements component J: resolving every metavariable
// reference to its final content, breaking substitution cycles, and
// cleaning up conflicts that substitution happened to resolve.
type substituter struct {
	delSubst   []delSubstEntry
	insSubst   []insSubstEntry
	cycleStack []cycleFrame
}

func newSubstituter(delSubst []*DelNode, insSubst MetavarInsReplacements) *substituter {
	ds := make([]delSubstEntry, len(delSubst))
	for i, d := range delSubst {
		ds[i] = delSubstEntry{state: substPending, pending: d}
	}
	is := make([]insSubstEntry, len(insSubst))
	for i, r := range insSubst {
		is[i] = insSubstEntry{state: substPending, pending: r}
	}
	return &substituter{delSubst: ds, insSubst: is}
}

// ApplySubstitutions implements component J end to end: substitute every
// metavariable occurrence throughout the merged spine, then drop
// MetavariableConflict wrappers that substitution happened to resolve.
func ApplySubstitutions(tree Spine, delSubst []*DelNode, insSubst MetavarInsReplacements) Spine {
	s := newSubstituter(delSubst, insSubst)
	out := s.substituteSpine(tree)
	s.removeSolvedConflictsInSpine(&out)
	return out
}

// findDelSubst resolves metavariable mv's deletion-side replacement,
// breaking a del-subst cycle (which can only occur among metavariables
// that were unified together) by treating one occurrence as identity.
func (s *substituter) findDelSubst(mv MV) DelNode {
	old := s.delSubst[mv]
	s.delSubst[mv] = delSubstEntry{state: substProcessing}

	var repl DelNode
	switch old.state {
	case substComputed:
		repl = old.computed
	case substProcessing:
		repl = DelNode{Kind: DelElided, Elided: colortree.NewWhite(mv)}
	default: // substPending
		if old.pending == nil {
			repl = DelNode{Kind: DelElided, Elided: colortree.NewWhite(mv)}
		} else {
			repl = *old.pending
			s.substituteInDelNode(&repl)
		}
	}
	s.delSubst[mv] = delSubstEntry{state: substComputed, computed: repl}
	return repl
}

// findInsSubst resolves metavariable mv's insertion-side replacement. A
// cycle through ins_subst means the metavariables involved genuinely
// conflict and all yield a bare metavariable reference instead.
func (s *substituter) findInsSubst(mv MV) InsNode {
	old := s.insSubst[mv]
	s.insSubst[mv] = insSubstEntry{state: substProcessing}

	var result InsNode
	var ok bool
	switch old.state {
	case substComputed:
		result, ok = old.computed, old.computedOK
	case substPending:
		s.cycleStack = append(s.cycleStack, cycleFrame{mv: mv})
		repls := make([]InsNode, 0, len(old.pending))
		for _, r := range old.pending {
			if r.Kind == InferFromDel {
				repls = append(repls, inferInsFromDel(s.findDelSubst(mv)))
			} else {
				ins := r.Ins
				s.substituteInInsNode(&ins)
				repls = append(repls, ins)
			}
		}
		frame := s.cycleStack[len(s.cycleStack)-1]
		s.cycleStack = s.cycleStack[:len(s.cycleStack)-1]
		if !frame.cycle && len(repls) > 0 {
			acc := repls[len(repls)-1]
			ok = true
			for _, r := range repls[:len(repls)-1] {
				merged, mok := mergeIDIns(acc, r)
				if !mok {
					ok = false
					break
				}
				acc = merged
			}
			result = acc
		}
	default: // substProcessing: a cycle closes here
		for i := len(s.cycleStack) - 1; i >= 0; i-- {
			s.cycleStack[i].cycle = true
			if s.cycleStack[i].mv == mv {
				break
			}
		}
	}

	if ok {
		s.insSubst[mv] = insSubstEntry{state: substComputed, computed: result, computedOK: true}
		return result
	}
	s.insSubst[mv] = insSubstEntry{state: substComputed, computedOK: false}
	return InsNode{Kind: InsElided, ElidedMV: mv}
}

func (s *substituter) substituteInDelNode(del *DelNode) {
	switch del.Kind {
	case DelInPlace:
		gentree.VisitMut(&del.InPlace.Data, func(sub *gentree.Subtree[DelNode]) {
			s.substituteInDelNode(&sub.Node)
		})
	case DelElided:
		subst := s.findDelSubst(del.Elided.Data)
		replaceColors(&subst, del.Elided.Color)
		*del = subst
	case DelMetavariableConflict:
		// The insertion-replacement payload is only visited if the
		// conflict survives clean-up.
		s.substituteInDelNode(del.ConflictDel)
	}
}

func (s *substituter) substituteInInsNode(ins *InsNode) {
	switch ins.Kind {
	case InsInPlace:
		gentree.VisitMut(&ins.InPlace.Data, func(sub *InsSeqNode) { s.substituteInInsSeqNode(sub) })
	case InsElided:
		*ins = s.findInsSubst(ins.ElidedMV)
	case InsConflict:
		for i := range ins.Conflict {
			s.substituteInInsNode(&ins.Conflict[i])
		}
		if len(ins.Conflict) == 0 {
			return
		}
		merged := make([]InsNode, 0, len(ins.Conflict))
		cur := ins.Conflict[0]
		for _, next := range ins.Conflict[1:] {
			if m, ok := mergeIDIns(cur, next); ok {
				cur = m
			} else {
				merged = append(merged, cur)
				cur = next
			}
		}
		if len(merged) == 0 {
			*ins = cur
		} else {
			ins.Conflict = append(merged, cur)
		}
	}
}

func (s *substituter) substituteInInsSeqNode(n *InsSeqNode) {
	switch n.Kind {
	case InsSeqPlain:
		s.substituteInInsNode(&n.Plain.Node)
	case InsSeqDeleteConflict:
		s.substituteInInsNode(&n.DeleteConflict.Node)
	case InsSeqInsertOrderConflict:
		for i := range n.OrderConflict {
			for j := range n.OrderConflict[i].Data {
				s.substituteInInsNode(&n.OrderConflict[i].Data[j].Node)
			}
		}
	}
}

func (s *substituter) substituteSpine(sp Spine) Spine {
	switch sp.Kind {
	case SpineSpineK:
		if sp.Tree.IsLeaf() {
			return sp
		}
		return Spine{Kind: SpineSpineK, Tree: gentree.Node[SpineSeq](sp.Tree.Kind(), s.substituteSpineSeq(sp.Tree.Children()))}
	case SpineUnchangedK:
		return sp
	default: // SpineChangedK
		del, ins := sp.Del, sp.Ins
		s.substituteInDelNode(&del)
		s.substituteInInsNode(&ins)
		return Spine{Kind: SpineChangedK, Del: del, Ins: ins}
	}
}

// substituteSpineSeq substitutes every element of a sequence and
// re-coalesces adjacent Deleted runs and resolvable InsertOrderConflict
// entries, mirroring Rust's drain-and-rebuild loop.
func (s *substituter) substituteSpineSeq(seq []SpineSeq) []SpineSeq {
	var out []SpineSeq
	for _, n := range seq {
		switch n.Kind {
		case SpineSeqZipped:
			sub := s.substituteSpine(n.Zipped.Node)
			out = append(out, SpineSeq{Kind: SpineSeqZipped, Zipped: gentree.Subtree[Spine]{Field: n.Zipped.Field, Node: sub}})
		case SpineSeqDeleted:
			delList := make([]gentree.Subtree[DelNode], len(n.Deleted))
			for i, d := range n.Deleted {
				dn := d.Node
				s.substituteInDelNode(&dn)
				delList[i] = gentree.Subtree[DelNode]{Field: d.Field, Node: dn}
			}
			if last := len(out) - 1; last >= 0 && out[last].Kind == SpineSeqDeleted {
				out[last].Deleted = append(out[last].Deleted, delList...)
			} else {
				out = append(out, SpineSeq{Kind: SpineSeqDeleted, Deleted: delList})
			}
		case SpineSeqInserted:
			insList := make([]gentree.Subtree[InsNode], len(n.Inserted))
			for i, ins := range n.Inserted {
				in := ins.Node
				s.substituteInInsNode(&in)
				insList[i] = gentree.Subtree[InsNode]{Field: ins.Field, Node: in}
			}
			out = append(out, SpineSeq{Kind: SpineSeqInserted, Inserted: insList})
		default: // SpineSeqInsertOrderConflict
			conflict := make([]colortree.Colored[[]gentree.Subtree[InsNode]], len(n.OrderConflict))
			for i, c := range n.OrderConflict {
				list := make([]gentree.Subtree[InsNode], len(c.Data))
				for j, ins := range c.Data {
					in := ins.Node
					s.substituteInInsNode(&in)
					list[j] = gentree.Subtree[InsNode]{Field: ins.Field, Node: in}
				}
				conflict[i] = colortree.Colored[[]gentree.Subtree[InsNode]]{Data: list, Color: c.Color}
			}
			if len(conflict) == 0 {
				continue
			}
			cur := conflict[0]
			var remaining []colortree.Colored[[]gentree.Subtree[InsNode]]
			for _, next := range conflict[1:] {
				if merged, ok := mergeColoredInsList(cur, next); ok {
					cur = merged
				} else {
					remaining = append(remaining, cur)
					cur = next
				}
			}
			if len(remaining) == 0 {
				out = append(out, SpineSeq{Kind: SpineSeqInserted, Inserted: cur.Data})
			} else {
				out = append(out, SpineSeq{Kind: SpineSeqInsertOrderConflict, OrderConflict: append(remaining, cur)})
			}
		}
	}
	return out
}

func (s *substituter) removeSolvedConflictsInDel(del *DelNode) {
	switch del.Kind {
	case DelInPlace:
		gentree.VisitMut(&del.InPlace.Data, func(sub *gentree.Subtree[DelNode]) {
			s.removeSolvedConflictsInDel(&sub.Node)
		})
	case DelMetavariableConflict:
		s.removeSolvedConflictsInDel(del.ConflictDel)
		e := s.insSubst[del.ConflictMV]
		switch {
		case e.state == substComputed && e.computedOK:
			*del = *del.ConflictDel
		case e.state == substComputed && !e.computedOK:
			if del.ConflictRepl.Kind == Inlined {
				ins := del.ConflictRepl.Ins
				s.substituteInInsNode(&ins)
				del.ConflictRepl.Ins = ins
			}
		default: // still Pending: never consulted, treat per its own kind
			if del.ConflictRepl.Kind == InferFromDel {
				*del = *del.ConflictDel
			} else {
				ins := del.ConflictRepl.Ins
				s.substituteInInsNode(&ins)
				del.ConflictRepl.Ins = ins
			}
		}
	}
}

func (s *substituter) removeSolvedConflictsInSpine(sp *Spine) {
	switch sp.Kind {
	case SpineSpineK:
		if sp.Tree.IsLeaf() {
			return
		}
		gentree.VisitMut(&sp.Tree, func(sub *SpineSeq) { s.removeSolvedConflictsInSpineSeq(sub) })
	case SpineChangedK:
		s.removeSolvedConflictsInDel(&sp.Del)
	}
}

func (s *substituter) removeSolvedConflictsInSpineSeq(n *SpineSeq) {
	switch n.Kind {
	case SpineSeqZipped:
		s.removeSolvedConflictsInSpine(&n.Zipped.Node)
	case SpineSeqDeleted:
		for i := range n.Deleted {
			s.removeSolvedConflictsInDel(&n.Deleted[i].Node)
		}
	}
}

func replaceColors(del *DelNode, color colortree.Color) {
	switch del.Kind {
	case DelInPlace:
		gentree.VisitMut(&del.InPlace.Data, func(sub *gentree.Subtree[DelNode]) { replaceColors(&sub.Node, color) })
		del.InPlace.Color = color
	case DelElided:
		del.Elided.Color = color
	case DelMetavariableConflict:
		replaceColors(del.ConflictDel, color)
	}
}

func inferInsFromDel(del DelNode) InsNode {
	switch del.Kind {
	case DelInPlace:
		return InsNode{Kind: InsInPlace, InPlace: colortree.NewWhite(gentree.MapChildren(del.InPlace.Data, func(child gentree.Subtree[DelNode]) InsSeqNode {
			return InsSeqNode{Kind: InsSeqPlain, Plain: gentree.Subtree[InsNode]{Field: child.Field, Node: inferInsFromDel(child.Node)}}
		}))}
	case DelElided:
		return InsNode{Kind: InsElided, ElidedMV: del.Elided.Data}
	default: // DelMetavariableConflict
		return inferInsFromDel(*del.ConflictDel)
	}
}

// mergeIDIns merges two insertion trees only when they are identical
// modulo color, grounded on
// _examples/original_source/syndiff/src/merge/id_merger.rs's
// merge_id_ins. Used to fuse redundant conflict branches and resolvable
// insert-order conflicts once substitution has run.
func mergeIDIns(left, right InsNode) (InsNode, bool) {
	switch {
	case left.Kind == InsInPlace && right.Kind == InsInPlace:
		merged, ok := gentree.MergeInto(left.InPlace.Data, right.InPlace.Data, mergeIDInsSeq)
		if !ok {
			return InsNode{}, false
		}
		return InsNode{Kind: InsInPlace, InPlace: colortree.Colored[gentree.Tree[InsSeqNode]]{
			Data: merged, Color: left.InPlace.Color.Join(right.InPlace.Color),
		}}, true
	case left.Kind == InsElided && right.Kind == InsElided && left.ElidedMV == right.ElidedMV:
		return InsNode{Kind: InsElided, ElidedMV: left.ElidedMV}, true
	case left.Kind == InsConflict && right.Kind == InsConflict && len(left.Conflict) == len(right.Conflict):
		out := make([]InsNode, len(left.Conflict))
		for i := range left.Conflict {
			m, ok := mergeIDIns(left.Conflict[i], right.Conflict[i])
			if !ok {
				return InsNode{}, false
			}
			out[i] = m
		}
		return InsNode{Kind: InsConflict, Conflict: out}, true
	default:
		return InsNode{}, false
	}
}

func mergeIDInsSeq(left, right []InsSeqNode) ([]InsSeqNode, bool) {
	if len(left) != len(right) {
		return nil, false
	}
	out := make([]InsSeqNode, len(left))
	for i := range left {
		l, r := left[i], right[i]
		switch {
		case l.Kind == InsSeqPlain && r.Kind == InsSeqPlain && gentree.SameField(l.Plain.Field, r.Plain.Field):
			m, ok := mergeIDIns(l.Plain.Node, r.Plain.Node)
			if !ok {
				return nil, false
			}
			out[i] = InsSeqNode{Kind: InsSeqPlain, Plain: gentree.Subtree[InsNode]{Field: l.Plain.Field, Node: m}}
		case l.Kind == InsSeqDeleteConflict && r.Kind == InsSeqDeleteConflict && gentree.SameField(l.DeleteConflict.Field, r.DeleteConflict.Field):
			m, ok := mergeIDIns(l.DeleteConflict.Node, r.DeleteConflict.Node)
			if !ok {
				return nil, false
			}
			out[i] = InsSeqNode{Kind: InsSeqDeleteConflict, DeleteConflict: gentree.Subtree[InsNode]{Field: l.DeleteConflict.Field, Node: m}}
		case l.Kind == InsSeqInsertOrderConflict && r.Kind == InsSeqInsertOrderConflict && len(l.OrderConflict) == len(r.OrderConflict):
			merged := make([]colortree.Colored[[]gentree.Subtree[InsNode]], len(l.OrderConflict))
			for j := range l.OrderConflict {
				m, ok := mergeColoredInsList(l.OrderConflict[j], r.OrderConflict[j])
				if !ok {
					return nil, false
				}
				merged[j] = m
			}
			out[i] = InsSeqNode{Kind: InsSeqInsertOrderConflict, OrderConflict: merged}
		default:
			return nil, false
		}
	}
	return out, true
}

func mergeColoredInsList(left, right colortree.Colored[[]gentree.Subtree[InsNode]]) (colortree.Colored[[]gentree.Subtree[InsNode]], bool) {
	return colortree.Merge(left, right, func(l, r []gentree.Subtree[InsNode]) ([]gentree.Subtree[InsNode], bool) {
		if len(l) != len(r) {
			return nil, false
		}
		out := make([]gentree.Subtree[InsNode], len(l))
		for i := range l {
			if !gentree.SameField(l[i].Field, r[i].Field) {
				return nil, false
			}
			merged, ok := mergeIDIns(l[i].Node, r[i].Node)
			if !ok {
				return nil, false
			}
			out[i] = gentree.Subtree[InsNode]{Field: l[i].Field, Node: merged}
		}
		return out, true
	})
}
