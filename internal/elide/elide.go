// Package elide implements component D: turning an AlignedNode into a
// DiffSpineNode by factoring subtrees common to both sides of every change
// into shared metavariables. Grounded step-by-step on
// _examples/original_source/syndiff/src/diff/elision.rs, matching spec.md
// §4.D's four-step description (possible set, wanted sets, final elision
// set, emission).
package elide

import (
	"github.com/qri-io/syndiff/internal/align"
	"github.com/qri-io/syndiff/internal/difftree"
	"github.com/qri-io/syndiff/internal/gentree"
	"github.com/qri-io/syndiff/internal/weight"
)

// Options controls the elision pass.
type Options struct {
	// SkipElisions disables sharing: every change site is emitted as a plain
	// Changed(InPlace, InPlace), and no metavariables are produced.
	SkipElisions bool
}

// Elide runs the full four-step algorithm of spec.md §4.D over an aligned
// tree and returns the resulting diff spine.
func Elide(tree align.Node, opts Options) difftree.Spine {
	elisions := map[weight.HashSum]bool{}
	if !opts.SkipElisions {
		elisions = findWantedElisions(tree)
	}
	gen := &metavarNameGenerator{ids: map[weight.HashSum]difftree.Metavariable{}}
	return elideChangeNode(tree, elisions, gen)
}

// --- step 1: possible elisions (hash present under both sides) ---

func collectNodeHashes(n *weight.Node, set map[weight.HashSum]bool) {
	if n.Tree.IsLeaf() {
		return
	}
	set[n.Hash] = true
	for _, sub := range n.Tree.Children() {
		collectNodeHashes(sub.Node, set)
	}
}

func collectChangeNodeHashes(n align.Node, delSet, insSet map[weight.HashSum]bool) {
	switch n.Kind {
	case align.KindSpine:
		delSet[n.DelHash] = true
		insSet[n.InsHash] = true
		gentree.Visit(n.Spine, func(sub align.SeqNode) {
			collectChangedSubtreeHashes(sub, delSet, insSet)
		})
	case align.KindUnchanged:
		// nothing: unchanged subtrees are never elision candidates
	case align.KindChanged:
		collectNodeHashes(n.ChangedDel, delSet)
		collectNodeHashes(n.ChangedIns, insSet)
	}
}

func collectChangedSubtreeHashes(n align.SeqNode, delSet, insSet map[weight.HashSum]bool) {
	switch n.Kind {
	case align.SeqZipped:
		collectChangeNodeHashes(n.Zipped.Node, delSet, insSet)
	case align.SeqDeleted:
		for _, d := range n.Deleted {
			collectNodeHashes(d.Node, delSet)
		}
	case align.SeqInserted:
		for _, i := range n.Inserted {
			collectNodeHashes(i.Node, insSet)
		}
	}
}

// --- step 2: wanted elisions per side ---

func collectWantedElisions(n *weight.Node, possible, wanted map[weight.HashSum]bool) {
	if possible[n.Hash] {
		wanted[n.Hash] = true
		return
	}
	for _, sub := range n.Tree.Children() {
		collectWantedElisions(sub.Node, possible, wanted)
	}
}

func collectChangeNodeElisions(n align.Node, possible map[weight.HashSum]bool, delWanted, insWanted map[weight.HashSum]bool) {
	if delWanted == nil && insWanted == nil {
		return
	}
	switch n.Kind {
	case align.KindSpine:
		nextDel := delWanted
		if nextDel != nil && possible[n.DelHash] {
			nextDel[n.DelHash] = true
			nextDel = nil
		}
		nextIns := insWanted
		if nextIns != nil && possible[n.InsHash] {
			nextIns[n.InsHash] = true
			nextIns = nil
		}
		gentree.Visit(n.Spine, func(sub align.SeqNode) {
			collectChangedSubtreeElisions(sub, possible, nextDel, nextIns)
		})
	case align.KindUnchanged:
	case align.KindChanged:
		if delWanted != nil {
			collectWantedElisions(n.ChangedDel, possible, delWanted)
		}
		if insWanted != nil {
			collectWantedElisions(n.ChangedIns, possible, insWanted)
		}
	}
}

func collectChangedSubtreeElisions(n align.SeqNode, possible map[weight.HashSum]bool, delWanted, insWanted map[weight.HashSum]bool) {
	switch n.Kind {
	case align.SeqZipped:
		collectChangeNodeElisions(n.Zipped.Node, possible, delWanted, insWanted)
	case align.SeqDeleted:
		if delWanted != nil {
			for _, d := range n.Deleted {
				collectWantedElisions(d.Node, possible, delWanted)
			}
		}
	case align.SeqInserted:
		if insWanted != nil {
			for _, i := range n.Inserted {
				collectWantedElisions(i.Node, possible, insWanted)
			}
		}
	}
}

func findWantedElisions(tree align.Node) map[weight.HashSum]bool {
	delHashes := map[weight.HashSum]bool{}
	insHashes := map[weight.HashSum]bool{}
	collectChangeNodeHashes(tree, delHashes, insHashes)

	possible := map[weight.HashSum]bool{}
	for h := range delHashes {
		if insHashes[h] {
			possible[h] = true
		}
	}

	delElisions := map[weight.HashSum]bool{}
	insElisions := map[weight.HashSum]bool{}
	collectChangeNodeElisions(tree, possible, delElisions, insElisions)

	final := map[weight.HashSum]bool{}
	for h := range delElisions {
		if insElisions[h] {
			final[h] = true
		}
	}
	return final
}

// --- step 4: emission ---

type metavarNameGenerator struct {
	ids    map[weight.HashSum]difftree.Metavariable
	nextID int
}

func (g *metavarNameGenerator) get(h weight.HashSum) difftree.Metavariable {
	if mv, ok := g.ids[h]; ok {
		return mv
	}
	mv := difftree.Metavariable(g.nextID)
	g.nextID++
	g.ids[h] = mv
	return mv
}

func elideTree(n *weight.Node, elisions map[weight.HashSum]bool, gen *metavarNameGenerator) difftree.ChangeNode {
	if elisions[n.Hash] {
		return difftree.Elided(gen.get(n.Hash))
	}
	return difftree.InPlace(gentree.MapSubtrees(n.Tree, func(sub *weight.Node) difftree.ChangeNode {
		return elideTree(sub, elisions, gen)
	}))
}

func elideAndKeepDel(n align.Node, elisions map[weight.HashSum]bool, gen *metavarNameGenerator) difftree.ChangeNode {
	switch n.Kind {
	case align.KindSpine:
		if elisions[n.DelHash] {
			return difftree.Elided(gen.get(n.DelHash))
		}
		return difftree.InPlace(gentree.Convert(n.Spine, func(children []align.SeqNode) []gentree.Subtree[difftree.ChangeNode] {
			var out []gentree.Subtree[difftree.ChangeNode]
			for _, seq := range children {
				switch seq.Kind {
				case align.SeqZipped:
					out = append(out, gentree.Subtree[difftree.ChangeNode]{
						Field: seq.Zipped.Field,
						Node:  elideAndKeepDel(seq.Zipped.Node, elisions, gen),
					})
				case align.SeqDeleted:
					for _, d := range seq.Deleted {
						out = append(out, gentree.Subtree[difftree.ChangeNode]{
							Field: d.Field,
							Node:  elideTree(d.Node, elisions, gen),
						})
					}
				case align.SeqInserted:
					// insertions do not appear on the deletion side
				}
			}
			return out
		}))
	case align.KindChanged:
		return elideTree(n.ChangedDel, elisions, gen)
	default: // KindUnchanged
		return elideTree(n.Unchanged, elisions, gen)
	}
}

func elideAndKeepIns(n align.Node, elisions map[weight.HashSum]bool, gen *metavarNameGenerator) difftree.ChangeNode {
	switch n.Kind {
	case align.KindSpine:
		if elisions[n.InsHash] {
			return difftree.Elided(gen.get(n.InsHash))
		}
		return difftree.InPlace(gentree.Convert(n.Spine, func(children []align.SeqNode) []gentree.Subtree[difftree.ChangeNode] {
			var out []gentree.Subtree[difftree.ChangeNode]
			for _, seq := range children {
				switch seq.Kind {
				case align.SeqZipped:
					out = append(out, gentree.Subtree[difftree.ChangeNode]{
						Field: seq.Zipped.Field,
						Node:  elideAndKeepIns(seq.Zipped.Node, elisions, gen),
					})
				case align.SeqInserted:
					for _, i := range seq.Inserted {
						out = append(out, gentree.Subtree[difftree.ChangeNode]{
							Field: i.Field,
							Node:  elideTree(i.Node, elisions, gen),
						})
					}
				case align.SeqDeleted:
					// deletions do not appear on the insertion side
				}
			}
			return out
		}))
	case align.KindChanged:
		return elideTree(n.ChangedIns, elisions, gen)
	default: // KindUnchanged
		return elideTree(n.Unchanged, elisions, gen)
	}
}

func elideChangeNode(n align.Node, elisions map[weight.HashSum]bool, gen *metavarNameGenerator) difftree.Spine {
	switch n.Kind {
	case align.KindSpine:
		if elisions[n.DelHash] || elisions[n.InsHash] {
			return difftree.Spine{
				Kind:       difftree.KindChanged,
				ChangedDel: elideAndKeepDel(n, elisions, gen),
				ChangedIns: elideAndKeepIns(n, elisions, gen),
			}
		}
		return difftree.Spine{
			Kind:      difftree.KindSpine,
			SpineTree: gentree.MapChildren(n.Spine, func(sub align.SeqNode) difftree.SeqNode { return elideChangedSubtree(sub, elisions, gen) }),
		}
	case align.KindUnchanged:
		if n.Unchanged.Tree.IsLeaf() {
			return difftree.Spine{
				Kind:      difftree.KindSpine,
				SpineTree: gentree.Leaf[difftree.SeqNode](n.Unchanged.Tree.LeafToken()),
			}
		}
		return difftree.Spine{Kind: difftree.KindUnchanged}
	default: // KindChanged
		return difftree.Spine{
			Kind:       difftree.KindChanged,
			ChangedDel: elideTree(n.ChangedDel, elisions, gen),
			ChangedIns: elideTree(n.ChangedIns, elisions, gen),
		}
	}
}

func elideChangedSubtree(n align.SeqNode, elisions map[weight.HashSum]bool, gen *metavarNameGenerator) difftree.SeqNode {
	switch n.Kind {
	case align.SeqZipped:
		return difftree.SeqNode{
			Kind: difftree.SeqZipped,
			Zipped: gentree.Subtree[difftree.Spine]{
				Field: n.Zipped.Field,
				Node:  elideChangeNode(n.Zipped.Node, elisions, gen),
			},
		}
	case align.SeqDeleted:
		out := make([]gentree.Subtree[difftree.ChangeNode], len(n.Deleted))
		for i, d := range n.Deleted {
			out[i] = gentree.Subtree[difftree.ChangeNode]{Field: d.Field, Node: elideTree(d.Node, elisions, gen)}
		}
		return difftree.SeqNode{Kind: difftree.SeqDeleted, Deleted: out}
	default: // SeqInserted
		out := make([]gentree.Subtree[difftree.ChangeNode], len(n.Inserted))
		for i, ins := range n.Inserted {
			out[i] = gentree.Subtree[difftree.ChangeNode]{Field: ins.Field, Node: elideTree(ins.Node, elisions, gen)}
		}
		return difftree.SeqNode{Kind: difftree.SeqInserted, Inserted: out}
	}
}
