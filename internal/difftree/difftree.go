// Package difftree defines the final diff type (component E of spec.md §4):
// a spine of unchanged structure threaded with Changed/Deleted/Inserted
// sites, each referencing shared content through metavariables. It also
// provides the stable textual serializer consumed by the CLI and by tests.
// Grounded on the DiffSpineNode/DiffSpineSeqNode/ChangeNode shapes of
// spec.md §3 and on the equivalent Rust types in
// _examples/original_source/syndiff/src/diff/mod.rs.
package difftree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qri-io/syndiff/internal/gentree"
)

// Metavariable names a placeholder for a subtree shared between the
// deletion and insertion sides of a change.
type Metavariable int

// ChangeNode is either an in-place tree fragment or a reference to a
// metavariable bound elsewhere in the same diff.
type ChangeNode struct {
	elided bool
	mv     Metavariable
	tree   gentree.Tree[gentree.Subtree[ChangeNode]]
}

// InPlace builds a concrete (non-elided) ChangeNode.
func InPlace(tree gentree.Tree[gentree.Subtree[ChangeNode]]) ChangeNode {
	return ChangeNode{tree: tree}
}

// Elided builds a ChangeNode standing for a metavariable occurrence.
func Elided(mv Metavariable) ChangeNode { return ChangeNode{elided: true, mv: mv} }

// IsElided reports whether this node is a metavariable reference.
func (c ChangeNode) IsElided() bool { return c.elided }

// Metavar returns the referenced metavariable; only valid when IsElided.
func (c ChangeNode) Metavar() Metavariable { return c.mv }

// Tree returns the in-place tree fragment; only valid when !IsElided.
func (c ChangeNode) Tree() gentree.Tree[gentree.Subtree[ChangeNode]] { return c.tree }

// Kind tags a Spine node variant.
type Kind int

const (
	KindSpine Kind = iota
	KindUnchanged
	KindChanged
)

// Spine is a DiffSpineNode: unchanged structure, a further spine of
// sequence elements, or a changed site holding both sides of the edit.
type Spine struct {
	Kind Kind

	SpineTree gentree.Tree[SeqNode] // valid when Kind == KindSpine

	ChangedDel ChangeNode // valid when Kind == KindChanged
	ChangedIns ChangeNode
}

// SeqKind tags a SeqNode variant.
type SeqKind int

const (
	SeqZipped SeqKind = iota
	SeqDeleted
	SeqInserted
)

// SeqNode is a DiffSpineSeqNode: a zipped child position, or a coalesced
// run of deletions/insertions at that position.
type SeqNode struct {
	Kind SeqKind

	Zipped gentree.Subtree[Spine]

	Deleted  []gentree.Subtree[ChangeNode]
	Inserted []gentree.Subtree[ChangeNode]
}

// --- textual serialization ---

// Serialize renders a Spine to the tagged text form of spec.md §6:
// CHANGED![«<del>» -> «<ins>»], DELETED![...], INSERTED![...], $k, UNCHANGED![].
func Serialize(s Spine) string {
	var b strings.Builder
	writeSpine(&b, s)
	return b.String()
}

func writeSpine(b *strings.Builder, s Spine) {
	switch s.Kind {
	case KindUnchanged:
		b.WriteString("UNCHANGED![]")
	case KindChanged:
		b.WriteString("CHANGED![«")
		writeChange(b, s.ChangedDel)
		b.WriteString("» -> «")
		writeChange(b, s.ChangedIns)
		b.WriteString("»]")
	default:
		if s.SpineTree.IsLeaf() {
			b.Write(s.SpineTree.LeafToken().Bytes)
			return
		}
		gentree.Visit(s.SpineTree, func(seq SeqNode) { writeSeq(b, seq) })
	}
}

func writeSeq(b *strings.Builder, seq SeqNode) {
	switch seq.Kind {
	case SeqZipped:
		writeSpine(b, seq.Zipped.Node)
	case SeqDeleted:
		b.WriteString("DELETED![")
		for i, d := range seq.Deleted {
			if i > 0 {
				b.WriteString(", ")
			}
			writeChange(b, d.Node)
		}
		b.WriteString("]")
	case SeqInserted:
		b.WriteString("INSERTED![")
		for i, ins := range seq.Inserted {
			if i > 0 {
				b.WriteString(", ")
			}
			writeChange(b, ins.Node)
		}
		b.WriteString("]")
	}
}

func writeChange(b *strings.Builder, c ChangeNode) {
	if c.elided {
		b.WriteString("$")
		b.WriteString(strconv.Itoa(int(c.mv)))
		return
	}
	t := c.tree
	if t.IsLeaf() {
		b.Write(t.LeafToken().Bytes)
		return
	}
	b.WriteString(fmt.Sprintf("kind%d(", t.Kind()))
	for i, sub := range t.Children() {
		if i > 0 {
			b.WriteString(", ")
		}
		writeChange(b, sub.Node)
	}
	b.WriteString(")")
}
