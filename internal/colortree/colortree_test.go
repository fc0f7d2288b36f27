package colortree_test

import (
	"testing"

	"github.com/qri-io/syndiff/internal/colortree"
)

func TestJoinIdentityAndCommutativity(t *testing.T) {
	cases := []struct {
		a, b, want colortree.Color
	}{
		{colortree.White, colortree.White, colortree.White},
		{colortree.White, colortree.Left, colortree.Left},
		{colortree.Right, colortree.White, colortree.Right},
		{colortree.Left, colortree.Left, colortree.Left},
		{colortree.Left, colortree.Right, colortree.Both},
		{colortree.Right, colortree.Left, colortree.Both},
		{colortree.Both, colortree.White, colortree.Both},
		{colortree.Both, colortree.Left, colortree.Both},
	}
	for _, c := range cases {
		if got := c.a.Join(c.b); got != c.want {
			t.Errorf("%v.Join(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestJoinIsCommutative(t *testing.T) {
	colors := []colortree.Color{colortree.White, colortree.Left, colortree.Right, colortree.Both}
	for _, a := range colors {
		for _, b := range colors {
			if a.Join(b) != b.Join(a) {
				t.Errorf("Join not commutative for %v, %v", a, b)
			}
		}
	}
}

func TestNewWhiteAndNewBoth(t *testing.T) {
	w := colortree.NewWhite(42)
	if w.Color != colortree.White || w.Data != 42 {
		t.Errorf("NewWhite(42) = %+v, want {Data:42 Color:White}", w)
	}
	b := colortree.NewBoth("x")
	if b.Color != colortree.Both || b.Data != "x" {
		t.Errorf("NewBoth(%q) = %+v, want {Data:x Color:Both}", "x", b)
	}
}

func TestMapPreservesColor(t *testing.T) {
	c := colortree.Colored[int]{Data: 3, Color: colortree.Left}
	mapped := colortree.Map(c, func(v int) string {
		if v == 3 {
			return "three"
		}
		return "?"
	})
	if mapped.Color != colortree.Left || mapped.Data != "three" {
		t.Errorf("Map() = %+v, want {Data:three Color:Left}", mapped)
	}
}

func TestMergeJoinsColorsAndPropagatesFailure(t *testing.T) {
	left := colortree.Colored[int]{Data: 1, Color: colortree.Left}
	right := colortree.Colored[int]{Data: 2, Color: colortree.Right}

	sum, ok := colortree.Merge(left, right, func(l, r int) (int, bool) { return l + r, true })
	if !ok || sum.Data != 3 || sum.Color != colortree.Both {
		t.Fatalf("Merge() = %+v, %v, want {Data:3 Color:Both}, true", sum, ok)
	}

	_, ok = colortree.Merge(left, right, func(l, r int) (int, bool) { return 0, false })
	if ok {
		t.Errorf("expected Merge to propagate a failed combiner")
	}
}
