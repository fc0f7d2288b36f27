package gentree_test

import (
	"testing"

	"github.com/qri-io/syndiff/internal/gentree"
)

func leaf(s string) gentree.Tree[int] {
	return gentree.Leaf[int](gentree.NewToken([]byte(s)))
}

func TestTokenHashIsDeterministic(t *testing.T) {
	a := gentree.NewToken([]byte("hello"))
	b := gentree.NewToken([]byte("hello"))
	if a.Hash != b.Hash {
		t.Fatalf("equal bytes produced different hashes: %d != %d", a.Hash, b.Hash)
	}
	c := gentree.NewToken([]byte("world"))
	if a.Hash == c.Hash {
		t.Fatalf("different bytes produced the same hash")
	}
}

func TestLeafAndNodeBasics(t *testing.T) {
	l := leaf("x")
	if !l.IsLeaf() {
		t.Fatalf("expected a leaf")
	}
	n := gentree.Node[int](5, []int{1, 2, 3})
	if n.IsLeaf() {
		t.Fatalf("expected a node")
	}
	if n.Kind() != 5 {
		t.Errorf("Kind() = %d, want 5", n.Kind())
	}
	if got := n.Children(); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("Children() = %v, want [1 2 3]", got)
	}
}

func TestVisitSkipsLeaves(t *testing.T) {
	called := 0
	gentree.Visit(leaf("x"), func(int) { called++ })
	if called != 0 {
		t.Fatalf("Visit on a leaf should call fn zero times, called %d", called)
	}

	n := gentree.Node[int](1, []int{10, 20, 30})
	var sum int
	gentree.Visit(n, func(v int) { sum += v })
	if sum != 60 {
		t.Errorf("Visit sum = %d, want 60", sum)
	}
}

func TestVisitMutMutatesInPlace(t *testing.T) {
	n := gentree.Node[int](1, []int{1, 2, 3})
	gentree.VisitMut(&n, func(v *int) { *v *= 10 })
	want := []int{10, 20, 30}
	got := n.Children()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Children() = %v, want %v", got, want)
		}
	}
}

func TestMapChildrenPreservesKindAndLeaf(t *testing.T) {
	n := gentree.Node[int](7, []int{1, 2})
	doubled := gentree.MapChildren(n, func(v int) int { return v * 2 })
	if doubled.Kind() != 7 {
		t.Fatalf("MapChildren changed kind: got %d", doubled.Kind())
	}
	if got, want := doubled.Children(), []int{2, 4}; got[0] != want[0] || got[1] != want[1] {
		t.Errorf("MapChildren() children = %v, want %v", got, want)
	}

	l := leaf("tok")
	mapped := gentree.MapChildren(l, func(v int) int { return v + 1 })
	if !mapped.IsLeaf() || mapped.LeafToken().Hash != l.LeafToken().Hash {
		t.Errorf("MapChildren on a leaf must preserve the token")
	}
}

func TestCompareLeavesByHashNodesByKindAndChildren(t *testing.T) {
	if !gentree.Compare(leaf("a"), leaf("a"), nil) {
		t.Errorf("equal-content leaves should compare equal")
	}
	if gentree.Compare(leaf("a"), leaf("b"), nil) {
		t.Errorf("different-content leaves should not compare equal")
	}
	if gentree.Compare(leaf("a"), gentree.Node[int](1, nil), nil) {
		t.Errorf("a leaf and a node should never compare equal")
	}

	a := gentree.Node[int](1, []int{1, 2})
	b := gentree.Node[int](1, []int{1, 2})
	c := gentree.Node[int](2, []int{1, 2})
	eq := func(l, r []int) bool {
		if len(l) != len(r) {
			return false
		}
		for i := range l {
			if l[i] != r[i] {
				return false
			}
		}
		return true
	}
	if !gentree.Compare(a, b, eq) {
		t.Errorf("same-kind same-children nodes should compare equal")
	}
	if gentree.Compare(a, c, eq) {
		t.Errorf("different-kind nodes should never compare equal regardless of compareChildren")
	}
}

func TestMergeIntoRequiresMatchingShape(t *testing.T) {
	left := gentree.Node[int](1, []int{1, 2})
	right := gentree.Node[string](1, []string{"a", "b"})
	merge := func(ls []int, rs []string) ([]string, bool) {
		if len(ls) != len(rs) {
			return nil, false
		}
		return rs, true
	}
	merged, ok := gentree.MergeInto[string](left, right, merge)
	if !ok {
		t.Fatalf("expected matching-kind nodes to merge")
	}
	if merged.Kind() != 1 {
		t.Errorf("merged kind = %d, want 1", merged.Kind())
	}

	mismatched := gentree.Node[string](2, []string{"a", "b"})
	if _, ok := gentree.MergeInto[string](left, mismatched, merge); ok {
		t.Fatalf("expected mismatched kinds to fail to merge")
	}
}

func TestMergeIntoLeavesRequireEqualHash(t *testing.T) {
	merge := func(_ []int, _ []int) ([]int, bool) { return nil, true }
	if _, ok := gentree.MergeInto[int](leaf("a"), leaf("a"), merge); !ok {
		t.Errorf("equal-content leaves should merge")
	}
	if _, ok := gentree.MergeInto[int](leaf("a"), leaf("b"), merge); ok {
		t.Errorf("different-content leaves should not merge")
	}
}

func TestSplitIntoPartitionsChildren(t *testing.T) {
	n := gentree.Node[int](3, []int{1, 2, 3, 4})
	split := func(children []int) ([]int, []int) {
		var evens, odds []int
		for _, c := range children {
			if c%2 == 0 {
				evens = append(evens, c)
			} else {
				odds = append(odds, c)
			}
		}
		return evens, odds
	}
	evenTree, oddTree := gentree.SplitInto(n, split)
	if evenTree.Kind() != 3 || oddTree.Kind() != 3 {
		t.Fatalf("SplitInto must preserve kind on both halves")
	}
	if got := evenTree.Children(); len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("evens = %v, want [2 4]", got)
	}
	if got := oddTree.Children(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("odds = %v, want [1 3]", got)
	}
}

func TestSameField(t *testing.T) {
	a := gentree.FieldID(1)
	b := gentree.FieldID(1)
	c := gentree.FieldID(2)
	if !gentree.SameField(&a, &b) {
		t.Errorf("equal field ids should match")
	}
	if gentree.SameField(&a, &c) {
		t.Errorf("different field ids should not match")
	}
	if gentree.SameField(nil, &a) || gentree.SameField(&a, nil) {
		t.Errorf("a present field should never match a nil field")
	}
	if !gentree.SameField(nil, nil) {
		t.Errorf("two nil fields should match")
	}
}

func TestMapSubtreesKeepsFieldLabels(t *testing.T) {
	field := gentree.FieldID(2)
	tree := gentree.Node[gentree.Subtree[int]](1, []gentree.Subtree[int]{
		{Field: &field, Node: 10},
	})
	mapped := gentree.MapSubtrees(tree, func(v int) int { return v + 1 })
	got := mapped.Children()
	if len(got) != 1 || got[0].Node != 11 {
		t.Fatalf("MapSubtrees() = %+v, want Node=11", got)
	}
	if got[0].Field != &field {
		t.Errorf("MapSubtrees should preserve the exact field pointer")
	}
}

func TestMergeSubtreesIntoRequiresSameFieldsAndCount(t *testing.T) {
	fA := gentree.FieldID(1)
	left := gentree.Node[gentree.Subtree[int]](1, []gentree.Subtree[int]{{Field: &fA, Node: 1}})
	right := gentree.Node[gentree.Subtree[int]](1, []gentree.Subtree[int]{{Field: &fA, Node: 2}})

	merged, ok := gentree.MergeSubtreesInto(left, right, func(l, r int) (int, bool) { return l + r, true })
	if !ok {
		t.Fatalf("expected matching fields to merge")
	}
	if got := merged.Children(); len(got) != 1 || got[0].Node != 3 {
		t.Errorf("merged children = %+v, want Node=3", got)
	}

	fB := gentree.FieldID(2)
	mismatchedField := gentree.Node[gentree.Subtree[int]](1, []gentree.Subtree[int]{{Field: &fB, Node: 2}})
	if _, ok := gentree.MergeSubtreesInto(left, mismatchedField, func(l, r int) (int, bool) { return l + r, true }); ok {
		t.Fatalf("expected a field mismatch to fail the merge")
	}
}
