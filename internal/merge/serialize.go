package merge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qri-io/syndiff/internal/colortree"
	"github.com/qri-io/syndiff/internal/gentree"
)

// Serialize renders a merged Spine to the same tagged text form
// difftree.Serialize uses for a plain diff, extended with the conflict
// tags MV_CONFLICT!, CONFLICT!, and INSERT_ORDER_CONFLICT! for surviving
// merge conflicts, so the CLI and tests can print both kinds of diff
// through one consistent textual shape.
func Serialize(s Spine) string {
	var b strings.Builder
	writeSpine(&b, s)
	return b.String()
}

func writeSpine(b *strings.Builder, s Spine) {
	switch s.Kind {
	case SpineUnchangedK:
		b.WriteString("UNCHANGED![]")
	case SpineChangedK:
		b.WriteString("CHANGED![«")
		writeDel(b, s.Del)
		b.WriteString("» -> «")
		writeIns(b, s.Ins)
		b.WriteString("»]")
	default:
		if s.Tree.IsLeaf() {
			b.Write(s.Tree.LeafToken().Bytes)
			return
		}
		gentree.Visit(s.Tree, func(seq SpineSeq) { writeSeq(b, seq) })
	}
}

func writeSeq(b *strings.Builder, seq SpineSeq) {
	switch seq.Kind {
	case SpineSeqZipped:
		writeSpine(b, seq.Zipped.Node)
	case SpineSeqDeleted:
		b.WriteString("DELETED![")
		for i, d := range seq.Deleted {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDel(b, d.Node)
		}
		b.WriteString("]")
	case SpineSeqInserted:
		b.WriteString("INSERTED![")
		for i, ins := range seq.Inserted {
			if i > 0 {
				b.WriteString(", ")
			}
			writeIns(b, ins.Node)
		}
		b.WriteString("]")
	default: // SpineSeqInsertOrderConflict
		writeInsertOrderConflict(b, seq.OrderConflict)
	}
}

// writeInsertOrderConflict renders the alternative insertion runs that
// could not be ordered against each other as
// INSERT_ORDER_CONFLICT![«<list1>», «<list2>», …].
func writeInsertOrderConflict(b *strings.Builder, alts []colortree.Colored[[]gentree.Subtree[InsNode]]) {
	b.WriteString("INSERT_ORDER_CONFLICT![")
	for i, c := range alts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("«")
		for j, ins := range c.Data {
			if j > 0 {
				b.WriteString(", ")
			}
			writeIns(b, ins.Node)
		}
		b.WriteString("»")
	}
	b.WriteString("]")
}

func writeDel(b *strings.Builder, d DelNode) {
	switch d.Kind {
	case DelInPlace:
		t := d.InPlace.Data
		if t.IsLeaf() {
			b.Write(t.LeafToken().Bytes)
			return
		}
		b.WriteString(fmt.Sprintf("kind%d(", t.Kind()))
		for i, sub := range t.Children() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDel(b, sub.Node)
		}
		b.WriteString(")")
	case DelElided:
		b.WriteString("$")
		b.WriteString(strconv.Itoa(int(d.Elided.Data)))
	default: // DelMetavariableConflict
		b.WriteString("MV_CONFLICT![$")
		b.WriteString(strconv.Itoa(int(d.ConflictMV)))
		b.WriteString(": «")
		writeDel(b, *d.ConflictDel)
		b.WriteString("» <- «")
		writeConflictRepl(b, d.ConflictRepl, *d.ConflictDel)
		b.WriteString("»]")
	}
}

// writeConflictRepl renders the insertion-side half of a metavariable
// conflict: the inlined replacement if one was recorded, otherwise the
// del side's own text (no insertion ever challenged it).
func writeConflictRepl(b *strings.Builder, r InsReplacement, del DelNode) {
	if r.Kind == Inlined {
		writeIns(b, r.Ins)
		return
	}
	writeDel(b, del)
}

func writeIns(b *strings.Builder, n InsNode) {
	switch n.Kind {
	case InsInPlace:
		t := n.InPlace.Data
		if t.IsLeaf() {
			b.Write(t.LeafToken().Bytes)
			return
		}
		b.WriteString(fmt.Sprintf("kind%d(", t.Kind()))
		for i, sub := range t.Children() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeInsSeq(b, sub)
		}
		b.WriteString(")")
	case InsElided:
		b.WriteString("$")
		b.WriteString(strconv.Itoa(int(n.ElidedMV)))
	default: // InsConflict: spec.md's plain insertion conflict
		b.WriteString("CONFLICT![")
		for i, alt := range n.Conflict {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("«")
			writeIns(b, alt)
			b.WriteString("»")
		}
		b.WriteString("]")
	}
}

func writeInsSeq(b *strings.Builder, n InsSeqNode) {
	switch n.Kind {
	case InsSeqPlain:
		writeIns(b, n.Plain.Node)
	case InsSeqDeleteConflict:
		b.WriteString("CONFLICT![«")
		writeIns(b, n.DeleteConflict.Node)
		b.WriteString("»]")
	default: // InsSeqInsertOrderConflict
		writeInsertOrderConflict(b, n.OrderConflict)
	}
}
