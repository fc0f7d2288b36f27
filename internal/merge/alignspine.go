package merge

import (
	"errors"

	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/difftree"
	"github.com/qri-io/syndiff/internal/gentree"
)

// ErrSpineShapeMismatch is returned when two spines cannot be zipped: a
// node-kind mismatch, a non-insertion entry-count mismatch, or a field
// label mismatch at a paired position. Corresponds to spec.md §7's
// "merge-shape failure".
var ErrSpineShapeMismatch = errors.New("merge: spine shape mismatch")

// AlignSpines implements component G: given two colored, disjointly
// renumbered spines, produce the aligned-spine intermediate classifying
// every position per spec.md §4.G. Grounded on
// _examples/original_source/syndiff/src/merge/align_spine.rs; the spec's
// literal rule ("both sides must have the same number of non-insertion
// entries; otherwise fail") is followed exactly rather than the source's
// more lenient OneDeleteConflict/BothDeleteConflict degradation — see
// DESIGN.md.
func AlignSpines(left, right difftree.Spine, nextMV int, opts Options) (*Aligned, int, error) {
	mv := nextMV
	a, err := alignSpineNode(left, right, &mv, opts)
	if err != nil {
		return nil, 0, err
	}
	return a, mv, nil
}

func alignSpineNode(l, r difftree.Spine, nextMV *int, opts Options) (*Aligned, error) {
	switch {
	case l.Kind == difftree.KindUnchanged && r.Kind == difftree.KindUnchanged:
		return &Aligned{Kind: AlignedUnchangedK}, nil

	case l.Kind == difftree.KindSpine && r.Kind == difftree.KindSpine:
		return alignSpineSpine(l, r, nextMV, opts)

	case l.Kind == difftree.KindSpine && r.Kind == difftree.KindUnchanged:
		d, i := splitSpineToChange(l, colortree.Left, nextMV)
		return &Aligned{Kind: AlignedOneChangeK, Del: d, Ins: i}, nil
	case r.Kind == difftree.KindSpine && l.Kind == difftree.KindUnchanged:
		d, i := splitSpineToChange(r, colortree.Right, nextMV)
		return &Aligned{Kind: AlignedOneChangeK, Del: d, Ins: i}, nil

	case l.Kind == difftree.KindSpine && r.Kind == difftree.KindChanged:
		d, i := splitSpineToChange(l, colortree.Left, nextMV)
		return &Aligned{
			Kind:     AlignedBothChangedK,
			LeftDel:  d,
			LeftIns:  i,
			RightDel: withColorDel(r.ChangedDel, colortree.Right),
			RightIns: withColorIns(r.ChangedIns, colortree.Right),
		}, nil
	case r.Kind == difftree.KindSpine && l.Kind == difftree.KindChanged:
		d, i := splitSpineToChange(r, colortree.Right, nextMV)
		return &Aligned{
			Kind:     AlignedBothChangedK,
			LeftDel:  withColorDel(l.ChangedDel, colortree.Left),
			LeftIns:  withColorIns(l.ChangedIns, colortree.Left),
			RightDel: d,
			RightIns: i,
		}, nil

	case l.Kind == difftree.KindChanged && r.Kind == difftree.KindChanged:
		return &Aligned{
			Kind:     AlignedBothChangedK,
			LeftDel:  withColorDel(l.ChangedDel, colortree.Left),
			LeftIns:  withColorIns(l.ChangedIns, colortree.Left),
			RightDel: withColorDel(r.ChangedDel, colortree.Right),
			RightIns: withColorIns(r.ChangedIns, colortree.Right),
		}, nil

	case l.Kind == difftree.KindChanged && r.Kind == difftree.KindUnchanged:
		return &Aligned{Kind: AlignedOneChangeK, Del: withColorDel(l.ChangedDel, colortree.Left), Ins: withColorIns(l.ChangedIns, colortree.Left)}, nil
	default: // r.Kind == Changed && l.Kind == Unchanged
		return &Aligned{Kind: AlignedOneChangeK, Del: withColorDel(r.ChangedDel, colortree.Right), Ins: withColorIns(r.ChangedIns, colortree.Right)}, nil
	}
}

func alignSpineSpine(l, r difftree.Spine, nextMV *int, opts Options) (*Aligned, error) {
	lt, rt := l.SpineTree, r.SpineTree
	if lt.IsLeaf() != rt.IsLeaf() {
		return nil, ErrSpineShapeMismatch
	}
	if lt.IsLeaf() {
		if lt.LeafToken().Hash != rt.LeafToken().Hash {
			return nil, ErrSpineShapeMismatch
		}
		return &Aligned{Kind: AlignedSpineK, SpineTree: gentree.Leaf[AlignedSeq](lt.LeafToken())}, nil
	}
	if lt.Kind() != rt.Kind() {
		return nil, ErrSpineShapeMismatch
	}

	out, err := zipSeqLists(lt.Children(), rt.Children(), nextMV, opts)
	if err != nil {
		return nil, err
	}
	return &Aligned{Kind: AlignedSpineK, SpineTree: gentree.Node[AlignedSeq](lt.Kind(), out)}, nil
}

// splitInsertionGaps separates the non-insertion entries of a sequence
// from the insertions around them: gaps[k] holds the insertions
// immediately preceding nonIns[k], and gaps[len(nonIns)] holds any
// trailing insertions after the last non-insertion entry.
func splitInsertionGaps(seq []difftree.SeqNode) ([]difftree.SeqNode, [][]gentree.Subtree[difftree.ChangeNode]) {
	var nonIns []difftree.SeqNode
	gaps := [][]gentree.Subtree[difftree.ChangeNode]{nil}
	for _, s := range seq {
		if s.Kind == difftree.SeqInserted {
			gaps[len(gaps)-1] = append(gaps[len(gaps)-1], s.Inserted...)
		} else {
			nonIns = append(nonIns, s)
			gaps = append(gaps, nil)
		}
	}
	return nonIns, gaps
}

func zipSeqLists(lSeq, rSeq []difftree.SeqNode, nextMV *int, opts Options) ([]AlignedSeq, error) {
	lNon, lGaps := splitInsertionGaps(lSeq)
	rNon, rGaps := splitInsertionGaps(rSeq)
	if len(lNon) != len(rNon) {
		return nil, ErrSpineShapeMismatch
	}

	var out []AlignedSeq
	emitGap := func(li, ri int) {
		left, right := lGaps[li], rGaps[ri]
		if len(left) == 0 && len(right) == 0 {
			return
		}
		if opts.OrderedInsertions && len(left) > 0 && len(right) > 0 {
			out = append(out, AlignedSeq{
				Kind: AlignedSeqInsertOrderConflict,
				OrderConflict: []colortree.Colored[[]gentree.Subtree[InsNode]]{
					{Data: colorizeInsList(left, colortree.Left), Color: colortree.Left},
					{Data: colorizeInsList(right, colortree.Right), Color: colortree.Right},
				},
			})
			return
		}
		combined := make([]gentree.Subtree[InsNode], 0, len(left)+len(right))
		combined = append(combined, colorizeInsList(left, colortree.Left)...)
		combined = append(combined, colorizeInsList(right, colortree.Right)...)
		out = append(out, AlignedSeq{Kind: AlignedSeqInserted, Inserted: combined})
	}

	for i := range lNon {
		emitGap(i, i)
		l, r := lNon[i], rNon[i]
		if l.Kind != r.Kind {
			return nil, ErrSpineShapeMismatch
		}
		switch l.Kind {
		case difftree.SeqZipped:
			if !gentree.SameField(l.Zipped.Field, r.Zipped.Field) {
				return nil, ErrSpineShapeMismatch
			}
			sub, err := alignSpineNode(l.Zipped.Node, r.Zipped.Node, nextMV, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, AlignedSeq{Kind: AlignedSeqZipped, Zipped: gentree.Subtree[Aligned]{Field: l.Zipped.Field, Node: *sub}})
		case difftree.SeqDeleted:
			if len(l.Deleted) != len(r.Deleted) {
				return nil, ErrSpineShapeMismatch
			}
			for k := range l.Deleted {
				if !gentree.SameField(l.Deleted[k].Field, r.Deleted[k].Field) {
					return nil, ErrSpineShapeMismatch
				}
				out = append(out, AlignedSeq{
					Kind:     AlignedSeqBothDeleted,
					LeftDel:  withColorDel(l.Deleted[k].Node, colortree.Left),
					RightDel: withColorDel(r.Deleted[k].Node, colortree.Right),
					DelField: l.Deleted[k].Field,
				})
			}
		}
	}
	emitGap(len(lNon), len(rNon))
	return out, nil
}

func colorizeInsList(list []gentree.Subtree[difftree.ChangeNode], color colortree.Color) []gentree.Subtree[InsNode] {
	out := make([]gentree.Subtree[InsNode], len(list))
	for i, x := range list {
		out[i] = gentree.Subtree[InsNode]{Field: x.Field, Node: withColorIns(x.Node, color)}
	}
	return out
}
