package merge

import (
	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/difftree"
	"github.com/qri-io/syndiff/internal/gentree"
)

// withColorDel lifts a plain ChangeNode into a DelNode tagged with color,
// the deletion-side half of component F's "attach a uniform Color to every
// in-place node", grounded on
// _examples/original_source/syndiff/src/merge/tree.rs's DelNode::with_color.
func withColorDel(c difftree.ChangeNode, color colortree.Color) DelNode {
	if c.IsElided() {
		return DelNode{Kind: DelElided, Elided: colortree.Colored[MV]{Data: MV(c.Metavar()), Color: color}}
	}
	return DelNode{
		Kind: DelInPlace,
		InPlace: colortree.Colored[gentree.Tree[gentree.Subtree[DelNode]]]{
			Data:  gentree.MapSubtrees(c.Tree(), func(sub difftree.ChangeNode) DelNode { return withColorDel(sub, color) }),
			Color: color,
		},
	}
}

// withColorIns lifts a plain ChangeNode into an InsNode tagged with color
// (InsNode::with_color in the same source file). Insertions carry no color
// on their Elided references, matching spec.md §3's InsNode shape.
func withColorIns(c difftree.ChangeNode, color colortree.Color) InsNode {
	if c.IsElided() {
		return InsNode{Kind: InsElided, ElidedMV: MV(c.Metavar())}
	}
	t := c.Tree()
	return InsNode{
		Kind: InsInPlace,
		InPlace: colortree.Colored[gentree.Tree[InsSeqNode]]{
			Data: gentree.MapChildren(t, func(sub gentree.Subtree[difftree.ChangeNode]) InsSeqNode {
				return InsSeqNode{Kind: InsSeqPlain, Plain: gentree.Subtree[InsNode]{
					Field: sub.Field,
					Node:  withColorIns(sub.Node, color),
				}}
			}),
			Color: color,
		},
	}
}

// splitSpineToChange converts an entire DiffSpineNode (including its
// internal Spine structure) into a (DelNode, InsNode) pair, introducing a
// fresh shared metavariable at every point where the spine itself bottoms
// out into Unchanged. It realizes spec.md §4.G's "Spine ∧ Unchanged" rule:
// the unchanged side carries no content of its own, so the paired Spine
// side's own structure is walked to produce both the deletion and the
// insertion view, splitting only where that structure is genuinely
// unchanged all the way down.
func splitSpineToChange(s difftree.Spine, color colortree.Color, nextMV *int) (DelNode, InsNode) {
	switch s.Kind {
	case difftree.KindUnchanged:
		mv := MV(*nextMV)
		*nextMV++
		return DelNode{Kind: DelElided, Elided: colortree.Colored[MV]{Data: mv, Color: color}},
			InsNode{Kind: InsElided, ElidedMV: mv}
	case difftree.KindChanged:
		return withColorDel(s.ChangedDel, color), withColorIns(s.ChangedIns, color)
	default:
		if s.SpineTree.IsLeaf() {
			tok := s.SpineTree.LeafToken()
			return DelNode{Kind: DelInPlace, InPlace: colortree.Colored[gentree.Tree[gentree.Subtree[DelNode]]]{
					Data:  gentree.Leaf[gentree.Subtree[DelNode]](tok),
					Color: color,
				}},
				InsNode{Kind: InsInPlace, InPlace: colortree.Colored[gentree.Tree[InsSeqNode]]{
					Data:  gentree.Leaf[InsSeqNode](tok),
					Color: color,
				}}
		}
		delChildren := make([]gentree.Subtree[DelNode], 0, len(s.SpineTree.Children()))
		insChildren := make([]InsSeqNode, 0, len(s.SpineTree.Children()))
		for _, seq := range s.SpineTree.Children() {
			switch seq.Kind {
			case difftree.SeqZipped:
				d, i := splitSpineToChange(seq.Zipped.Node, color, nextMV)
				delChildren = append(delChildren, gentree.Subtree[DelNode]{Field: seq.Zipped.Field, Node: d})
				insChildren = append(insChildren, InsSeqNode{Kind: InsSeqPlain, Plain: gentree.Subtree[InsNode]{Field: seq.Zipped.Field, Node: i}})
			case difftree.SeqDeleted:
				for _, del := range seq.Deleted {
					delChildren = append(delChildren, gentree.Subtree[DelNode]{Field: del.Field, Node: withColorDel(del.Node, color)})
				}
			case difftree.SeqInserted:
				for _, ins := range seq.Inserted {
					insChildren = append(insChildren, InsSeqNode{Kind: InsSeqPlain, Plain: gentree.Subtree[InsNode]{Field: ins.Field, Node: withColorIns(ins.Node, color)}})
				}
			}
		}
		del := DelNode{Kind: DelInPlace, InPlace: colortree.Colored[gentree.Tree[gentree.Subtree[DelNode]]]{
			Data:  gentree.Node[gentree.Subtree[DelNode]](s.SpineTree.Kind(), delChildren),
			Color: color,
		}}
		ins := InsNode{Kind: InsInPlace, InPlace: colortree.Colored[gentree.Tree[InsSeqNode]]{
			Data:  gentree.Node[InsSeqNode](s.SpineTree.Kind(), insChildren),
			Color: color,
		}}
		return del, ins
	}
}
