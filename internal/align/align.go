// Package align implements component C of the diff pipeline: producing an
// AlignedNode (a spine of zipped structure plus deletion/insertion runs)
// from two weighted trees. Two subtree-sequence algorithms are offered,
// chosen via Algorithm: Minimal (A* over the edit graph, always cost
// optimal) and Patience (unique-anchor pivoting, usually much faster on
// sequences with a long untouched prefix/suffix). Grounded on
// syndiff/src/diff/alignment/{mod,minimal,patience}.rs; the public shape of
// AlignedNode/SeqNode mirrors spec.md §4.C exactly.
package align

import (
	"container/heap"
	"sort"

	"github.com/qri-io/syndiff/internal/gentree"
	"github.com/qri-io/syndiff/internal/weight"
)

// Algorithm selects the subtree-sequence alignment strategy.
type Algorithm int

const (
	Minimal Algorithm = iota
	Patience
)

// Kind tags an AlignedNode variant.
type Kind int

const (
	KindSpine Kind = iota
	KindUnchanged
	KindChanged
)

// Node is the output of aligning two weighted trees: either a Spine of
// zipped structure, an Unchanged leaf/subtree (hash-equal on both sides), or
// a Changed pair with no useful zipping found.
type Node struct {
	Kind Kind

	// valid when Kind == KindSpine
	Spine   gentree.Tree[SeqNode]
	DelHash weight.HashSum
	InsHash weight.HashSum

	// valid when Kind == KindUnchanged
	Unchanged *weight.Node

	// valid when Kind == KindChanged
	ChangedDel *weight.Node
	ChangedIns *weight.Node
}

// SeqKind tags a SeqNode variant.
type SeqKind int

const (
	SeqZipped SeqKind = iota
	SeqDeleted
	SeqInserted
)

// SeqNode is one element of an aligned subtree sequence: a zipped pair
// (carrying its field), or a coalesced run of deletions/insertions.
type SeqNode struct {
	Kind SeqKind

	Zipped gentree.Subtree[Node]

	Deleted  []gentree.Subtree[*weight.Node]
	Inserted []gentree.Subtree[*weight.Node]
}

type nodeAlignKind int

const (
	naCopy nodeAlignKind = iota
	naZip
	naReplace
)

type nodeAlignment struct {
	kind nodeAlignKind
	sub  []seqAlignment
}

type seqAlignKind int

const (
	saZip seqAlignKind = iota
	saDelete
	saInsert
)

// seqAlignment orders Zip > Delete > Insert among equal-cost edits, the
// deterministic tie-break spec.md §4.C fixes for reproducible tests.
type seqAlignment struct {
	kind seqAlignKind
	zip  nodeAlignment
}

func (k seqAlignKind) rank() int {
	switch k {
	case saZip:
		return 2
	case saDelete:
		return 1
	default:
		return 0
	}
}

// Align runs component C end to end: compute the cheapest (or patience)
// node alignment between del and ins, then materialize it into an
// AlignedNode.
func Align(del, ins *weight.Node, algo Algorithm) Node {
	_, a := computeNodeAlignment(del, ins, algo)
	return alignNodes(del, ins, a)
}

func computeNodeAlignment(del, ins *weight.Node, algo Algorithm) (weight.Weight, nodeAlignment) {
	if del.Hash == ins.Hash {
		return weight.SpineLeafWeight, nodeAlignment{kind: naCopy}
	}
	if !del.Tree.IsLeaf() && !ins.Tree.IsLeaf() && del.Tree.Kind() == ins.Tree.Kind() {
		var subAlign []seqAlignment
		cost := alignSubtreeSeq(del.Tree.Children(), ins.Tree.Children(), algo, &subAlign)
		if cost < del.Weight+ins.Weight {
			return cost, nodeAlignment{kind: naZip, sub: subAlign}
		}
	}
	return del.Weight + ins.Weight, nodeAlignment{kind: naReplace}
}

func alignNodes(del, ins *weight.Node, a nodeAlignment) Node {
	switch a.kind {
	case naCopy:
		return Node{Kind: KindUnchanged, Unchanged: ins}
	case naZip:
		seq := alignSubtrees(del.Tree.Children(), ins.Tree.Children(), a.sub)
		return Node{
			Kind:    KindSpine,
			Spine:   gentree.Node[SeqNode](del.Tree.Kind(), seq),
			DelHash: del.Hash,
			InsHash: ins.Hash,
		}
	default:
		return Node{Kind: KindChanged, ChangedDel: del, ChangedIns: ins}
	}
}

func alignSubtrees(del, ins []gentree.Subtree[*weight.Node], alignment []seqAlignment) []SeqNode {
	var out []SeqNode
	di, ii := 0, 0
	for _, a := range alignment {
		switch a.kind {
		case saZip:
			d, i := del[di], ins[ii]
			di++
			ii++
			out = append(out, SeqNode{
				Kind: SeqZipped,
				Zipped: gentree.Subtree[Node]{
					Field: i.Field,
					Node:  alignNodes(d.Node, i.Node, a.zip),
				},
			})
		case saDelete:
			d := del[di]
			di++
			if n := len(out); n > 0 && out[n-1].Kind == SeqDeleted {
				out[n-1].Deleted = append(out[n-1].Deleted, d)
			} else {
				out = append(out, SeqNode{Kind: SeqDeleted, Deleted: []gentree.Subtree[*weight.Node]{d}})
			}
		case saInsert:
			i := ins[ii]
			ii++
			if n := len(out); n > 0 && out[n-1].Kind == SeqInserted {
				out[n-1].Inserted = append(out[n-1].Inserted, i)
			} else {
				out = append(out, SeqNode{Kind: SeqInserted, Inserted: []gentree.Subtree[*weight.Node]{i}})
			}
		}
	}
	return out
}

func alignSubtreeSeq(del, ins []gentree.Subtree[*weight.Node], algo Algorithm, out *[]seqAlignment) weight.Weight {
	if algo == Patience {
		return computePatienceAlignment(del, ins, out)
	}
	return computeMinimalAlignment(del, ins, out, algo)
}

// --- Minimal: A* over the edit graph (spec.md §4.C "Minimal") ---

type astarNode struct {
	estCost    weight.Weight
	cost       weight.Weight
	delPos     int
	insPos     int
	hasEdge    bool
	edge       seqAlignment
	heapIndex  int
}

type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].estCost != h[j].estCost {
		return h[i].estCost < h[j].estCost
	}
	// Deterministic tie-break: prefer the edge kind ranked higher (Zip > Delete > Insert).
	ri, rj := -1, -1
	if h[i].hasEdge {
		ri = h[i].edge.kind.rank()
	}
	if h[j].hasEdge {
		rj = h[j].edge.kind.rank()
	}
	return ri > rj
}
func (h astarHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *astarHeap) Push(x any)        { *h = append(*h, x.(*astarNode)) }
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func computeMinimalAlignment(del, ins []gentree.Subtree[*weight.Node], out *[]seqAlignment, algo Algorithm) weight.Weight {
	nDel, nIns := len(del), len(ins)
	visited := make([]*seqAlignment, (nDel+1)*(nIns+1))
	visitedSet := make([]bool, (nDel+1)*(nIns+1))
	idx := func(d, i int) int { return d + i*(nDel+1) }

	h := &astarHeap{}
	heap.Init(h)
	heap.Push(h, &astarNode{
		estCost: weight.SpineLeafWeight * weight.Weight(maxInt(nDel, nIns)),
		delPos:  nDel, insPos: nIns,
	})

	var finalCost weight.Weight
	for h.Len() > 0 {
		n := heap.Pop(h).(*astarNode)
		i := idx(n.delPos, n.insPos)
		if visitedSet[i] {
			continue
		}
		visitedSet[i] = true
		if n.hasEdge {
			e := n.edge
			visited[i] = &e
		} else {
			visited[i] = nil
		}
		if n.delPos == 0 && n.insPos == 0 {
			finalCost = n.cost
			break
		}
		if n.delPos > 0 {
			d := del[n.delPos-1]
			nc := n.cost + d.Node.Weight
			heap.Push(h, &astarNode{
				estCost: nc + weight.SpineLeafWeight*weight.Weight(maxInt(n.delPos-1, n.insPos)),
				cost:    nc, delPos: n.delPos - 1, insPos: n.insPos,
				hasEdge: true, edge: seqAlignment{kind: saDelete},
			})
		}
		if n.insPos > 0 {
			i2 := ins[n.insPos-1]
			nc := n.cost + i2.Node.Weight
			heap.Push(h, &astarNode{
				estCost: nc + weight.SpineLeafWeight*weight.Weight(maxInt(n.delPos, n.insPos-1)),
				cost:    nc, delPos: n.delPos, insPos: n.insPos - 1,
				hasEdge: true, edge: seqAlignment{kind: saInsert},
			})
		}
		if n.delPos > 0 && n.insPos > 0 {
			d := del[n.delPos-1]
			i2 := ins[n.insPos-1]
			if gentree.SameField(d.Field, i2.Field) {
				c, a := computeNodeAlignment(d.Node, i2.Node, algo)
				nc := n.cost + c
				heap.Push(h, &astarNode{
					estCost: nc + weight.SpineLeafWeight*weight.Weight(maxInt(n.delPos-1, n.insPos-1)),
					cost:    nc, delPos: n.delPos - 1, insPos: n.insPos - 1,
					hasEdge: true, edge: seqAlignment{kind: saZip, zip: a},
				})
			}
		}
	}

	cur := [2]int{0, 0}
	for {
		e := visited[idx(cur[0], cur[1])]
		if e == nil {
			break
		}
		switch e.kind {
		case saZip:
			cur[0]++
			cur[1]++
		case saDelete:
			cur[0]++
		case saInsert:
			cur[1]++
		}
		*out = append(*out, *e)
	}
	return finalCost
}

// --- Patience: unique-anchor pivoting (spec.md §4.C "Patience") ---

type identicalNode struct {
	delPos, insPos int
}

// heaviestCommonSubseq finds the maximum-total-weight increasing (by
// insPos, input already ordered by insPos) subsequence of anchors, weighted
// by each anchor's pureWeight. Mirrors the patience-sort/BTreeMap approach
// of syndiff/src/diff/alignment/patience.rs using a slice kept sorted by
// delPos (binary search substitutes for the Rust BTreeMap).
func heaviestCommonSubseq(nodes []identicalNode, weights []weight.Weight) []identicalNode {
	type entry struct {
		delPos   int
		w        weight.Weight
		insPos   int
	}
	var set []entry // kept sorted by delPos ascending
	type predEntry struct {
		node     identicalNode
		prevIns  int
		hasPrev  bool
	}
	pred := make([]predEntry, 0, len(nodes))

	for k, n := range nodes {
		// prevWeight/prevInsPos = best entry with delPos < n.delPos
		lo := sort.Search(len(set), func(i int) bool { return set[i].delPos >= n.delPos })
		var prevWeight weight.Weight
		var prevIns int
		hasPrev := false
		if lo > 0 {
			prevWeight = set[lo-1].w
			prevIns = set[lo-1].insPos
			hasPrev = true
		}
		curWeight := prevWeight + weights[k]

		// Remove dominated entries with delPos >= n.delPos and w <= curWeight.
		hi := lo
		for hi < len(set) && set[hi].w <= curWeight {
			hi++
		}
		set = append(set[:lo], set[hi:]...)

		insertPos := sort.Search(len(set), func(i int) bool { return set[i].delPos >= n.delPos })
		canInsert := insertPos == len(set) || set[insertPos].delPos > n.delPos
		if canInsert {
			newEntry := entry{delPos: n.delPos, w: curWeight, insPos: n.insPos}
			set = append(set, entry{})
			copy(set[insertPos+1:], set[insertPos:])
			set[insertPos] = newEntry
		}

		pred = append(pred, predEntry{node: n, prevIns: prevIns, hasPrev: hasPrev})
	}

	if len(set) == 0 {
		return nil
	}
	finalInsPos := set[len(set)-1].insPos
	hasFinal := true

	var rev []identicalNode
	for hasFinal {
		// find pred entry whose node.insPos == finalInsPos
		k := sort.Search(len(pred), func(i int) bool { return pred[i].node.insPos >= finalInsPos })
		p := pred[k]
		rev = append(rev, p.node)
		finalInsPos = p.prevIns
		hasFinal = p.hasPrev
	}
	// rev is newest-first; patience.rs consumes it in reverse (oldest first).
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

func computeUniqueSubtreesAlignment(del, ins []gentree.Subtree[*weight.Node], out *[]seqAlignment) weight.Weight {
	uniqueDelPos := map[weight.HashSum]int{}
	seenDel := map[weight.HashSum]bool{}
	for i, d := range del {
		if seenDel[d.Node.Hash] {
			delete(uniqueDelPos, d.Node.Hash)
			continue
		}
		seenDel[d.Node.Hash] = true
		uniqueDelPos[d.Node.Hash] = i
	}

	uniqueIns := map[weight.HashSum]bool{}
	seenIns := map[weight.HashSum]bool{}
	for _, i2 := range ins {
		if seenIns[i2.Node.Hash] {
			uniqueIns[i2.Node.Hash] = false
			continue
		}
		seenIns[i2.Node.Hash] = true
		uniqueIns[i2.Node.Hash] = true
	}

	var anchors []identicalNode
	var weights []weight.Weight
	for insPos, i2 := range ins {
		if !uniqueIns[i2.Node.Hash] {
			continue
		}
		delPos, ok := uniqueDelPos[i2.Node.Hash]
		if !ok {
			continue
		}
		anchors = append(anchors, identicalNode{delPos: delPos, insPos: insPos})
		weights = append(weights, i2.Node.Weight)
	}

	his := heaviestCommonSubseq(anchors, weights)
	if len(his) == 0 {
		return computeMinimalAlignment(del, ins, out, Patience)
	}

	var cost weight.Weight
	dp, ip := 0, 0
	for _, anchor := range his {
		cost += computePatienceAlignment(del[dp:anchor.delPos], ins[ip:anchor.insPos], out)
		*out = append(*out, seqAlignment{kind: saZip, zip: nodeAlignment{kind: naCopy}})
		cost += weight.SpineLeafWeight
		dp = anchor.delPos + 1
		ip = anchor.insPos + 1
	}
	cost += computePatienceAlignment(del[dp:], ins[ip:], out)
	return cost
}

func computePatienceAlignment(del, ins []gentree.Subtree[*weight.Node], out *[]seqAlignment) weight.Weight {
	nHead := 0
	for nHead < len(del) && nHead < len(ins) && del[nHead].Node.Hash == ins[nHead].Node.Hash && gentree.SameField(del[nHead].Field, ins[nHead].Field) {
		nHead++
	}
	del = del[nHead:]
	ins = ins[nHead:]

	nTail := 0
	for nTail < len(del) && nTail < len(ins) &&
		del[len(del)-1-nTail].Node.Hash == ins[len(ins)-1-nTail].Node.Hash &&
		gentree.SameField(del[len(del)-1-nTail].Field, ins[len(ins)-1-nTail].Field) {
		nTail++
	}
	del = del[:len(del)-nTail]
	ins = ins[:len(ins)-nTail]

	for k := 0; k < nHead; k++ {
		*out = append(*out, seqAlignment{kind: saZip, zip: nodeAlignment{kind: naCopy}})
	}
	inner := computeUniqueSubtreesAlignment(del, ins, out)
	for k := 0; k < nTail; k++ {
		*out = append(*out, seqAlignment{kind: saZip, zip: nodeAlignment{kind: naCopy}})
	}

	return inner + weight.Weight(nHead+nTail)*weight.SpineLeafWeight
}
