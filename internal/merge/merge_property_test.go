package merge_test

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/qri-io/syndiff/internal/align"
	"github.com/qri-io/syndiff/internal/elide"
	"github.com/qri-io/syndiff/internal/merge"
	"github.com/qri-io/syndiff/internal/syntax"
	"github.com/qri-io/syndiff/internal/weight"
)

func src(v int) string {
	return fmt.Sprintf("package p\n\nfunc F() int {\n\treturn %d\n}\n", v)
}

func weighSrcRapid(t *rapid.T, s string) *weight.Node {
	raw, err := syntax.ParseFile("t.go", []byte(s))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return weight.Weigh(raw)
}

// TestProperty_MergeConflictCountIsSymmetric checks invariant I6: swapping
// which side is "left" and which is "right" in a three-way merge must not
// change whether a conflict is reported, since neither side of a merge is
// privileged over the other.
func TestProperty_MergeConflictCountIsSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		originVal := rapid.IntRange(0, 5).Draw(t, "origin")
		leftVal := rapid.IntRange(0, 5).Draw(t, "left")
		rightVal := rapid.IntRange(0, 5).Draw(t, "right")

		origin := weighSrcRapid(t, src(originVal))
		left := weighSrcRapid(t, src(leftVal))
		right := weighSrcRapid(t, src(rightVal))

		leftDiff := elide.Elide(align.Align(origin, left, align.Minimal), elide.Options{})
		rightDiff := elide.Elide(align.Align(origin, right, align.Minimal), elide.Options{})

		_, forward, err := merge.Merge(leftDiff, rightDiff, merge.Options{})
		if err != nil {
			t.Fatalf("Merge(left, right): %v", err)
		}
		_, backward, err := merge.Merge(rightDiff, leftDiff, merge.Options{})
		if err != nil {
			t.Fatalf("Merge(right, left): %v", err)
		}

		if forward.HasConflicts() != backward.HasConflicts() {
			t.Fatalf("conflict presence not symmetric: forward=%+v backward=%+v", forward, backward)
		}
	})
}
