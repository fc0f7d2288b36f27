// Package merge implements the three-way merge pipeline of spec.md §4.G-J:
// spine alignment, insertion merging with inlining, deletion unification,
// and metavariable substitution. Grounded throughout on
// _examples/original_source/syndiff/src/merge/{tree,align_spine,merge_ins,
// merge_del,subst}.rs.
package merge

import (
	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/gentree"
)

// MV is the merge-time metavariable identifier type, a separate int type
// mirroring difftree.Metavariable.
type MV int

// DelKind tags a DelNode variant.
type DelKind int

const (
	DelInPlace DelKind = iota
	DelElided
	// DelMetavariableConflict wraps a deletion-side metavariable together
	// with an insertion-side replacement: either an insertion from the other
	// side of the merge inlined into it (spec.md §4.H "inlining"), or
	// InferFromDel for a metavariable kept on the deletion side.
	DelMetavariableConflict
)

// DelNode is the merge-time deletion tree: spec.md §3's DelNode sum type.
type DelNode struct {
	Kind DelKind

	InPlace colortree.Colored[gentree.Tree[gentree.Subtree[DelNode]]]
	Elided  colortree.Colored[MV]

	// valid when Kind == DelMetavariableConflict
	ConflictMV   MV
	ConflictDel  *DelNode
	ConflictRepl InsReplacement
}

// ReplKind tags a MetavarInsReplacement variant.
type ReplKind int

const (
	InferFromDel ReplKind = iota
	Inlined
)

// InsReplacement records, for one metavariable, how its insertion-side
// occurrences should ultimately be realized.
type InsReplacement struct {
	Kind ReplKind
	Ins  InsNode // valid when Kind == Inlined
}

// InsKind tags an InsNode variant.
type InsKind int

const (
	InsInPlace InsKind = iota
	InsElided
	InsConflict
)

// InsNode is the merge-time insertion tree: spec.md §3's InsNode sum type.
type InsNode struct {
	Kind InsKind

	InPlace  colortree.Colored[gentree.Tree[InsSeqNode]]
	ElidedMV MV
	Conflict []InsNode
}

// InsSeqKind tags an InsSeqNode variant.
type InsSeqKind int

const (
	InsSeqPlain InsSeqKind = iota
	InsSeqDeleteConflict
	// InsSeqInsertOrderConflict carries an order conflict that survived
	// flattening from a SpineSeq position into an insertion subtree (a
	// spine position nested under a changed ancestor).
	InsSeqInsertOrderConflict
)

// InsSeqNode is one child position inside an InPlace InsNode.
type InsSeqNode struct {
	Kind InsSeqKind

	Plain          gentree.Subtree[InsNode]
	DeleteConflict gentree.Subtree[InsNode]
	OrderConflict  []colortree.Colored[[]gentree.Subtree[InsNode]]
}

// --- component G/H intermediate: the aligned spine ---

// AlignedKind tags an Aligned node. BothChanged only ever appears in the
// output of component G (spec.md §4.G); the insertion merger (§4.H) turns
// the Aligned tree into an InsMerged tree, where a BothChanged position
// keeps both deletions next to its merged insertion until the deletion
// merger (§4.I) unifies them.
type AlignedKind int

const (
	AlignedSpineK AlignedKind = iota
	AlignedUnchangedK
	AlignedOneChangeK
	AlignedBothChangedK
)

// Aligned is the output of the spine aligner (component G) and the input to
// the insertion merger (component H).
type Aligned struct {
	Kind AlignedKind

	SpineTree gentree.Tree[AlignedSeq]

	// valid when Kind == AlignedOneChangeK
	Del DelNode
	Ins InsNode

	// valid when Kind == AlignedBothChangedK (resolved away by §4.H)
	LeftDel, RightDel DelNode
	LeftIns, RightIns InsNode
}

// AlignedSeqKind tags a sequence element of an Aligned spine.
type AlignedSeqKind int

const (
	AlignedSeqZipped AlignedSeqKind = iota
	AlignedSeqBothDeleted
	AlignedSeqInserted
	AlignedSeqInsertOrderConflict
)

// AlignedSeq is one child position of an Aligned spine.
type AlignedSeq struct {
	Kind AlignedSeqKind

	Zipped gentree.Subtree[Aligned]

	// valid when Kind == AlignedSeqBothDeleted: the same field position
	// deleted independently by both sides, still to be unified by §4.I.
	LeftDel, RightDel DelNode
	DelField          *gentree.FieldID

	// valid when Kind == AlignedSeqInserted
	Inserted []gentree.Subtree[InsNode]

	// valid when Kind == AlignedSeqInsertOrderConflict: concurrent
	// insertions from both sides under --ordered-insertions, whose relative
	// order could not be determined.
	OrderConflict []colortree.Colored[[]gentree.Subtree[InsNode]]
}

// --- component H intermediate: insertion-merged spine ---

// InsMergedKind tags an InsMerged node: component H's output. BothChangedK
// still carries two distinct DelNodes (left and right) — deletion
// unification (component I) is what collapses them into the final Spine's
// single Del.
type InsMergedKind int

const (
	InsMergedSpineK InsMergedKind = iota
	InsMergedUnchangedK
	InsMergedOneChangeK
	InsMergedBothChangedK
)

// InsMerged is the result of resolving every BothChanged position's
// insertions (inlining one side into the other's deletion where possible,
// otherwise merging both insertion trees into a conflict) per spec.md
// §4.H.
type InsMerged struct {
	Kind InsMergedKind

	Tree gentree.Tree[InsMergedSeq]

	// valid when Kind == InsMergedOneChangeK
	Del DelNode
	Ins InsNode

	// valid when Kind == InsMergedBothChangedK
	LeftDel, RightDel DelNode
	BothIns           InsNode
}

// InsMergedSeqKind tags a sequence element of an InsMerged spine.
type InsMergedSeqKind int

const (
	InsMergedSeqZipped InsMergedSeqKind = iota
	InsMergedSeqBothDeleted
	InsMergedSeqInserted
	InsMergedSeqInsertOrderConflict
)

// InsMergedSeq is one child position of an InsMerged spine.
type InsMergedSeq struct {
	Kind InsMergedSeqKind

	Zipped gentree.Subtree[InsMerged]

	LeftDel, RightDel DelNode
	DelField          *gentree.FieldID

	Inserted      []gentree.Subtree[InsNode]
	OrderConflict []colortree.Colored[[]gentree.Subtree[InsNode]]
}

// --- final merged diff ---

// SpineKind tags a merged Spine node.
type SpineKind int

const (
	SpineSpineK SpineKind = iota
	SpineUnchangedK
	SpineChangedK
)

// Spine is the fully merged diff, ready for substitution clean-up (§4.J)
// and patching (§4.K).
type Spine struct {
	Kind SpineKind

	Tree gentree.Tree[SpineSeq]

	Del DelNode
	Ins InsNode
}

// SpineSeqKind tags a sequence element of a merged Spine.
type SpineSeqKind int

const (
	SpineSeqZipped SpineSeqKind = iota
	SpineSeqDeleted
	SpineSeqInserted
	SpineSeqInsertOrderConflict
)

// SpineSeq is one child position of a merged Spine.
type SpineSeq struct {
	Kind SpineSeqKind

	Zipped gentree.Subtree[Spine]

	Deleted  []gentree.Subtree[DelNode]
	Inserted []gentree.Subtree[InsNode]

	OrderConflict []colortree.Colored[[]gentree.Subtree[InsNode]]
}

// Options controls merge behavior per spec.md §6's CLI flags.
type Options struct {
	AllowNestedDeletions bool
	OrderedInsertions    bool
}

// ConflictSummary counts surviving conflicts after a merge, the
// supplemented feature grounded on
// _examples/original_source/syndiff/src/merge/conflict_counter.rs. Unlike
// the original's single running counter, this breaks the count down by
// conflict kind; there is no DeleteConflict category because this
// pipeline never produces the original's seq-level DeleteConflict (see
// the alignspine.go design note).
type ConflictSummary struct {
	MetavarConflicts     int
	InsertConflicts      int
	InsertOrderConflicts int
}

// HasConflicts reports whether any conflict survived the merge.
func (s ConflictSummary) HasConflicts() bool {
	return s.MetavarConflicts+s.InsertConflicts+s.InsertOrderConflicts > 0
}
