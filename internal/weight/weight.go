// Package weight computes the deterministic content hash and size weight of
// every subtree of a parsed source file, the foundation every later stage
// (alignment, elision, merge) builds its equality and cost decisions on.
// Grounded on qri-io/deepdiff's tree.go hashing-while-building walk, adapted
// to a two-pass (parse-then-weigh) shape per spec.md §4.B and to the
// explicit HashSum/Weight types of syndiff/src/diff/weight.rs.
package weight

import (
	"hash/fnv"

	"github.com/qri-io/syndiff/internal/gentree"
)

// HashSum is a stable 64-bit content hash of a subtree.
type HashSum uint64

// Weight approximates a subtree's size for the alignment cost model.
type Weight int

// Weight constants from spec.md §3: leaves are worth LeafWeight, an internal
// node contributes NodeWeight plus its children's weights, and
// SpineLeafWeight is the cost of matching a subtree into the spine.
const (
	NodeWeight      Weight = 0
	LeafWeight      Weight = 2
	SpineLeafWeight Weight = 1
)

// Node is a tree annotated with a content hash and a weight at every level.
// Hash equality is the equality relation used throughout the rest of the
// pipeline: two Nodes with equal Hash are treated as interchangeable.
type Node struct {
	Tree   gentree.Tree[gentree.Subtree[*Node]]
	Hash   HashSum
	Weight Weight
}

// Equal reports hash equality, the only equality gentree.Tree built from
// Node payloads needs.
func (n *Node) Equal(o *Node) bool { return n.Hash == o.Hash }

// Weigh performs the bottom-up fold of spec.md §4.B: children are hashed and
// weighed first, then the parent hash is a stable function of (kind, ordered
// field+child-hash sequence) for a node, or of the leaf token bytes for a
// leaf, and the parent weight sums LeafWeight/NodeWeight with all child
// weights.
func Weigh(raw *gentree.Raw) *Node {
	if raw.Tree.IsLeaf() {
		tok := raw.Tree.LeafToken()
		return &Node{
			Tree:   gentree.Leaf[gentree.Subtree[*Node]](tok),
			Hash:   HashSum(tok.Hash),
			Weight: LeafWeight,
		}
	}

	weighedChildren := make([]gentree.Subtree[*Node], len(raw.Tree.Children()))
	h := fnv.New64a()
	writeUint16(h, uint16(raw.Tree.Kind()))
	total := NodeWeight
	for i, sub := range raw.Tree.Children() {
		child := Weigh(sub.Node)
		weighedChildren[i] = gentree.Subtree[*Node]{Field: sub.Field, Node: child}
		total += child.Weight
		writeField(h, sub.Field)
		writeUint64(h, uint64(child.Hash))
	}

	return &Node{
		Tree:   gentree.Node[gentree.Subtree[*Node]](raw.Tree.Kind(), weighedChildren),
		Hash:   HashSum(h.Sum64()),
		Weight: total,
	}
}

func writeField(h interface{ Write([]byte) (int, error) }, f *gentree.FieldID) {
	if f == nil {
		h.Write([]byte{0})
		return
	}
	h.Write([]byte{1, byte(*f), byte(*f >> 8)})
}

func writeUint16(h interface{ Write([]byte) (int, error) }, v uint16) {
	h.Write([]byte{byte(v), byte(v >> 8)})
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	h.Write(b[:])
}
