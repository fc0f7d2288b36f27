// Package patch implements component K: projecting a merged diff back onto
// a concrete source tree, spec.md §4.K. Grounded on
// _examples/original_source/syndiff/src/merge/{metavar_remover,patch}.rs and
// _examples/original_source/syndiff/src/multi_diff_tree/patch.rs.
package patch

import (
	"errors"

	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/difftree"
	"github.com/qri-io/syndiff/internal/gentree"
	"github.com/qri-io/syndiff/internal/merge"
)

var (
	// ErrStructuralMismatch is returned when a diff's deletion structure
	// does not line up with the shape of the provided source tree.
	ErrStructuralMismatch = errors.New("patch: diff does not match source tree structure")
	// ErrMetavarConflict is returned when two source subtrees are bound to
	// the same metavariable with different content.
	ErrMetavarConflict = errors.New("patch: metavariable bound to conflicting content")
	// ErrUnresolvedMetavar is returned when a metavariable occurs on the
	// insertion side with no corresponding deletion-side binding.
	ErrUnresolvedMetavar = errors.New("patch: metavariable appears in insertion but never in deletion")
	// ErrConflictRemaining is returned when the diff still carries an
	// unresolved merge conflict at projection time.
	ErrConflictRemaining = errors.New("patch: conflict remains in diff")
)

// Apply implements component K in full: bind every metavariable to a
// concrete source subtree, substitute insertions, and project the result
// to a fresh concrete tree.
func Apply(diff merge.Spine, source *gentree.Raw) (*gentree.Raw, error) {
	remover := newMetavarRemover()
	removed, err := remover.removeInSpine(diff, source)
	if err != nil {
		return nil, err
	}
	if err := remover.replaceInSpine(&removed); err != nil {
		return nil, err
	}
	return project(removed)
}

// ApplyDiff is the 2-way convenience entry point for a plain diff
// (component E's output, with no second side and no conflicts possible).
func ApplyDiff(diff difftree.Spine, source *gentree.Raw) (*gentree.Raw, error) {
	return Apply(merge.FromDiff(diff), source)
}

// metavarRemover implements step 1 (bind metavariables against source) and
// step 2 (substitute insertions) of component K, grounded on
// metavar_remover.rs's MetavarRemover.
type metavarRemover struct {
	replacements []*merge.InsNode
	conflict     []bool
}

func newMetavarRemover() *metavarRemover {
	return &metavarRemover{}
}

func (r *metavarRemover) ensure(mv merge.MV) {
	if int(mv) < len(r.replacements) {
		return
	}
	replacements := make([]*merge.InsNode, mv+1)
	copy(replacements, r.replacements)
	r.replacements = replacements

	conflict := make([]bool, mv+1)
	copy(conflict, r.conflict)
	r.conflict = conflict
}

func (r *metavarRemover) removeInSpine(s merge.Spine, source *gentree.Raw) (merge.Spine, error) {
	switch s.Kind {
	case merge.SpineSpineK:
		if s.Tree.IsLeaf() != source.Tree.IsLeaf() {
			return merge.Spine{}, ErrStructuralMismatch
		}
		if s.Tree.IsLeaf() {
			if s.Tree.LeafToken().Hash != source.Tree.LeafToken().Hash {
				return merge.Spine{}, ErrStructuralMismatch
			}
			return s, nil
		}
		if s.Tree.Kind() != source.Tree.Kind() {
			return merge.Spine{}, ErrStructuralMismatch
		}
		seq, err := r.removeInSpineSeq(s.Tree.Children(), source.Tree.Children())
		if err != nil {
			return merge.Spine{}, err
		}
		return merge.Spine{Kind: merge.SpineSpineK, Tree: gentree.Node[merge.SpineSeq](s.Tree.Kind(), seq)}, nil

	case merge.SpineUnchangedK:
		// An Unchanged position carries no payload of its own; since by
		// diff construction it denotes a subtree identical to source, it
		// projects exactly like a no-op Changed position.
		return merge.Spine{Kind: merge.SpineChangedK, Del: delFromRaw(source, colortree.White), Ins: insFromRaw(source)}, nil

	default: // SpineChangedK
		del, err := r.removeInDel(s.Del, source)
		if err != nil {
			return merge.Spine{}, err
		}
		return merge.Spine{Kind: merge.SpineChangedK, Del: del, Ins: s.Ins}, nil
	}
}

func (r *metavarRemover) removeInSpineSeq(seq []merge.SpineSeq, sourceChildren []gentree.Subtree[*gentree.Raw]) ([]merge.SpineSeq, error) {
	out := make([]merge.SpineSeq, len(seq))
	idx := 0
	next := func() (*gentree.Subtree[*gentree.Raw], error) {
		if idx >= len(sourceChildren) {
			return nil, ErrStructuralMismatch
		}
		s := &sourceChildren[idx]
		idx++
		return s, nil
	}

	for i, n := range seq {
		switch n.Kind {
		case merge.SpineSeqZipped:
			src, err := next()
			if err != nil {
				return nil, err
			}
			if !gentree.SameField(n.Zipped.Field, src.Field) {
				return nil, ErrStructuralMismatch
			}
			sub, err := r.removeInSpine(n.Zipped.Node, src.Node)
			if err != nil {
				return nil, err
			}
			out[i] = merge.SpineSeq{Kind: merge.SpineSeqZipped, Zipped: gentree.Subtree[merge.Spine]{Field: n.Zipped.Field, Node: sub}}

		case merge.SpineSeqDeleted:
			delList := make([]gentree.Subtree[merge.DelNode], len(n.Deleted))
			for j, d := range n.Deleted {
				src, err := next()
				if err != nil {
					return nil, err
				}
				if !gentree.SameField(d.Field, src.Field) {
					return nil, ErrStructuralMismatch
				}
				dn, err := r.removeInDel(d.Node, src.Node)
				if err != nil {
					return nil, err
				}
				delList[j] = gentree.Subtree[merge.DelNode]{Field: d.Field, Node: dn}
			}
			out[i] = merge.SpineSeq{Kind: merge.SpineSeqDeleted, Deleted: delList}

		default: // SpineSeqInserted, SpineSeqInsertOrderConflict: consume no source
			out[i] = n
		}
	}

	if idx != len(sourceChildren) {
		return nil, ErrStructuralMismatch
	}
	return out, nil
}

func (r *metavarRemover) removeInDel(del merge.DelNode, source *gentree.Raw) (merge.DelNode, error) {
	switch del.Kind {
	case merge.DelInPlace:
		var innerErr error
		merged, ok := gentree.MergeInto(del.InPlace.Data, source.Tree, func(ls []gentree.Subtree[merge.DelNode], rs []gentree.Subtree[*gentree.Raw]) ([]gentree.Subtree[merge.DelNode], bool) {
			if len(ls) != len(rs) {
				return nil, false
			}
			out := make([]gentree.Subtree[merge.DelNode], len(ls))
			for i := range ls {
				if !gentree.SameField(ls[i].Field, rs[i].Field) {
					return nil, false
				}
				d, err := r.removeInDel(ls[i].Node, rs[i].Node)
				if err != nil {
					innerErr = err
					return nil, false
				}
				out[i] = gentree.Subtree[merge.DelNode]{Field: ls[i].Field, Node: d}
			}
			return out, true
		})
		if innerErr != nil {
			return merge.DelNode{}, innerErr
		}
		if !ok {
			return merge.DelNode{}, ErrStructuralMismatch
		}
		return merge.DelNode{Kind: merge.DelInPlace, InPlace: colortree.Colored[gentree.Tree[gentree.Subtree[merge.DelNode]]]{
			Data: merged, Color: del.InPlace.Color,
		}}, nil

	case merge.DelElided:
		mv := del.Elided.Data
		r.ensure(mv)
		repl := insFromRaw(source)
		switch r.replacements[mv] {
		case nil:
			r.replacements[mv] = &repl
		default:
			if _, ok := merge.MergeIDIns(*r.replacements[mv], repl); !ok {
				return merge.DelNode{}, ErrMetavarConflict
			}
		}
		return delFromRaw(source, del.Elided.Color), nil

	default: // DelMetavariableConflict
		r.ensure(del.ConflictMV)
		r.conflict[del.ConflictMV] = true
		inner, err := r.removeInDel(*del.ConflictDel, source)
		if err != nil {
			return merge.DelNode{}, err
		}
		return merge.DelNode{Kind: merge.DelMetavariableConflict, ConflictMV: del.ConflictMV, ConflictDel: &inner, ConflictRepl: del.ConflictRepl}, nil
	}
}

func (r *metavarRemover) replaceInSpine(s *merge.Spine) error {
	switch s.Kind {
	case merge.SpineSpineK:
		var err error
		gentree.VisitMut(&s.Tree, func(sub *merge.SpineSeq) {
			if err == nil {
				err = r.replaceInSpineSeq(sub)
			}
		})
		return err
	case merge.SpineUnchangedK:
		return nil
	default: // SpineChangedK
		if err := r.replaceInDel(&s.Del); err != nil {
			return err
		}
		return r.replaceInIns(&s.Ins)
	}
}

func (r *metavarRemover) replaceInSpineSeq(n *merge.SpineSeq) error {
	switch n.Kind {
	case merge.SpineSeqZipped:
		return r.replaceInSpine(&n.Zipped.Node)
	case merge.SpineSeqDeleted:
		for i := range n.Deleted {
			if err := r.replaceInDel(&n.Deleted[i].Node); err != nil {
				return err
			}
		}
		return nil
	case merge.SpineSeqInserted:
		for i := range n.Inserted {
			if err := r.replaceInIns(&n.Inserted[i].Node); err != nil {
				return err
			}
		}
		return nil
	default: // SpineSeqInsertOrderConflict
		return ErrConflictRemaining
	}
}

func (r *metavarRemover) replaceInDel(d *merge.DelNode) error {
	switch d.Kind {
	case merge.DelInPlace:
		var err error
		gentree.VisitMut(&d.InPlace.Data, func(sub *gentree.Subtree[merge.DelNode]) {
			if err == nil {
				err = r.replaceInDel(&sub.Node)
			}
		})
		return err
	case merge.DelElided:
		// removeInDel always turns every Elided reference it visits into
		// a DelMetavariableConflict or a concrete binding; one surviving
		// here means the diff referenced a metavariable never bound
		// against source.
		return ErrUnresolvedMetavar
	default: // DelMetavariableConflict
		if err := r.replaceInDel(d.ConflictDel); err != nil {
			return err
		}
		if d.ConflictRepl.Kind == merge.Inlined {
			ins := d.ConflictRepl.Ins
			if err := r.replaceInIns(&ins); err != nil {
				return err
			}
			d.ConflictRepl.Ins = ins
		}
		return nil
	}
}

func (r *metavarRemover) replaceInIns(ins *merge.InsNode) error {
	switch ins.Kind {
	case merge.InsInPlace:
		var err error
		gentree.VisitMut(&ins.InPlace.Data, func(sub *merge.InsSeqNode) {
			if err == nil {
				err = r.replaceInInsSeq(sub)
			}
		})
		return err
	case merge.InsElided:
		mv := ins.ElidedMV
		if int(mv) >= len(r.replacements) {
			return ErrUnresolvedMetavar
		}
		if r.conflict[mv] {
			return nil
		}
		if r.replacements[mv] == nil {
			return ErrUnresolvedMetavar
		}
		*ins = *r.replacements[mv]
		return nil
	default: // InsConflict
		for i := range ins.Conflict {
			if err := r.replaceInIns(&ins.Conflict[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

func (r *metavarRemover) replaceInInsSeq(n *merge.InsSeqNode) error {
	switch n.Kind {
	case merge.InsSeqPlain:
		return r.replaceInIns(&n.Plain.Node)
	case merge.InsSeqDeleteConflict:
		return r.replaceInIns(&n.DeleteConflict.Node)
	default: // InsSeqInsertOrderConflict
		for i := range n.OrderConflict {
			for j := range n.OrderConflict[i].Data {
				if err := r.replaceInIns(&n.OrderConflict[i].Data[j].Node); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func insFromRaw(n *gentree.Raw) merge.InsNode {
	if n.Tree.IsLeaf() {
		return merge.InsNode{Kind: merge.InsInPlace, InPlace: colortree.NewWhite(gentree.Leaf[merge.InsSeqNode](n.Tree.LeafToken()))}
	}
	children := make([]merge.InsSeqNode, len(n.Tree.Children()))
	for i, c := range n.Tree.Children() {
		children[i] = merge.InsSeqNode{Kind: merge.InsSeqPlain, Plain: gentree.Subtree[merge.InsNode]{Field: c.Field, Node: insFromRaw(c.Node)}}
	}
	return merge.InsNode{Kind: merge.InsInPlace, InPlace: colortree.NewWhite(gentree.Node[merge.InsSeqNode](n.Tree.Kind(), children))}
}

func delFromRaw(n *gentree.Raw, color colortree.Color) merge.DelNode {
	if n.Tree.IsLeaf() {
		return merge.DelNode{Kind: merge.DelInPlace, InPlace: colortree.Colored[gentree.Tree[gentree.Subtree[merge.DelNode]]]{
			Data: gentree.Leaf[gentree.Subtree[merge.DelNode]](n.Tree.LeafToken()), Color: color,
		}}
	}
	children := make([]gentree.Subtree[merge.DelNode], len(n.Tree.Children()))
	for i, c := range n.Tree.Children() {
		children[i] = gentree.Subtree[merge.DelNode]{Field: c.Field, Node: delFromRaw(c.Node, color)}
	}
	return merge.DelNode{Kind: merge.DelInPlace, InPlace: colortree.Colored[gentree.Tree[gentree.Subtree[merge.DelNode]]]{
		Data: gentree.Node[gentree.Subtree[merge.DelNode]](n.Tree.Kind(), children), Color: color,
	}}
}

// project implements component K step 3: walk a substituted Spine,
// keeping only insertion content, and assemble it into one concrete tree.
func project(s merge.Spine) (*gentree.Raw, error) {
	nodes, err := projectSpine(s)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, ErrStructuralMismatch
	}
	return nodes[0], nil
}

func projectSpine(s merge.Spine) ([]*gentree.Raw, error) {
	switch s.Kind {
	case merge.SpineSpineK:
		if s.Tree.IsLeaf() {
			return []*gentree.Raw{{Tree: gentree.Leaf[gentree.Subtree[*gentree.Raw]](s.Tree.LeafToken())}}, nil
		}
		var children []gentree.Subtree[*gentree.Raw]
		for _, seq := range s.Tree.Children() {
			subs, err := projectSpineSeq(seq)
			if err != nil {
				return nil, err
			}
			children = append(children, subs...)
		}
		return []*gentree.Raw{{Tree: gentree.Node[gentree.Subtree[*gentree.Raw]](s.Tree.Kind(), children)}}, nil
	case merge.SpineUnchangedK:
		// removeInSpine never leaves an Unchanged position in place.
		return nil, ErrStructuralMismatch
	default: // SpineChangedK
		return projectIns(s.Ins)
	}
}

func projectSpineSeq(n merge.SpineSeq) ([]gentree.Subtree[*gentree.Raw], error) {
	switch n.Kind {
	case merge.SpineSeqZipped:
		subs, err := projectSpine(n.Zipped.Node)
		if err != nil {
			return nil, err
		}
		out := make([]gentree.Subtree[*gentree.Raw], len(subs))
		for i, sub := range subs {
			out[i] = gentree.Subtree[*gentree.Raw]{Field: n.Zipped.Field, Node: sub}
		}
		return out, nil
	case merge.SpineSeqDeleted:
		return nil, nil
	case merge.SpineSeqInserted:
		var out []gentree.Subtree[*gentree.Raw]
		for _, ins := range n.Inserted {
			subs, err := projectIns(ins.Node)
			if err != nil {
				return nil, err
			}
			for _, sub := range subs {
				out = append(out, gentree.Subtree[*gentree.Raw]{Field: ins.Field, Node: sub})
			}
		}
		return out, nil
	default: // SpineSeqInsertOrderConflict
		return nil, ErrConflictRemaining
	}
}

func projectIns(n merge.InsNode) ([]*gentree.Raw, error) {
	switch n.Kind {
	case merge.InsInPlace:
		if n.InPlace.Data.IsLeaf() {
			return []*gentree.Raw{{Tree: gentree.Leaf[gentree.Subtree[*gentree.Raw]](n.InPlace.Data.LeafToken())}}, nil
		}
		var children []gentree.Subtree[*gentree.Raw]
		for _, seq := range n.InPlace.Data.Children() {
			subs, err := projectInsSeq(seq)
			if err != nil {
				return nil, err
			}
			children = append(children, subs...)
		}
		return []*gentree.Raw{{Tree: gentree.Node[gentree.Subtree[*gentree.Raw]](n.InPlace.Data.Kind(), children)}}, nil
	case merge.InsElided:
		return nil, ErrUnresolvedMetavar
	default: // InsConflict
		return nil, ErrConflictRemaining
	}
}

func projectInsSeq(n merge.InsSeqNode) ([]gentree.Subtree[*gentree.Raw], error) {
	switch n.Kind {
	case merge.InsSeqPlain:
		subs, err := projectIns(n.Plain.Node)
		if err != nil {
			return nil, err
		}
		out := make([]gentree.Subtree[*gentree.Raw], len(subs))
		for i, sub := range subs {
			out[i] = gentree.Subtree[*gentree.Raw]{Field: n.Plain.Field, Node: sub}
		}
		return out, nil
	default: // InsSeqDeleteConflict, InsSeqInsertOrderConflict
		return nil, ErrConflictRemaining
	}
}
