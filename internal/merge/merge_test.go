package merge_test

import (
	"strings"
	"testing"

	"github.com/qri-io/syndiff/internal/align"
	"github.com/qri-io/syndiff/internal/elide"
	"github.com/qri-io/syndiff/internal/merge"
	"github.com/qri-io/syndiff/internal/syntax"
	"github.com/qri-io/syndiff/internal/weight"
)

func weighSrc(t *testing.T, src string) *weight.Node {
	t.Helper()
	raw, err := syntax.ParseFile("t.go", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return weight.Weigh(raw)
}

func TestMergeDisjointEditsHasNoConflicts(t *testing.T) {
	origin := weighSrc(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	left := weighSrc(t, "package p\n\nfunc F() int {\n\treturn 2\n}\n")
	right := weighSrc(t, "package p\n\nfunc G() int {\n\treturn 1\n}\n")

	leftDiff := elide.Elide(align.Align(origin, left, align.Minimal), elide.Options{})
	rightDiff := elide.Elide(align.Align(origin, right, align.Minimal), elide.Options{})

	merged, summary, err := merge.Merge(leftDiff, rightDiff, merge.Options{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if summary.HasConflicts() {
		t.Fatalf("expected no conflicts, got %+v", summary)
	}
	out := merge.Serialize(*merged)
	if strings.Contains(out, "CONFLICT!") {
		t.Errorf("serialized merge unexpectedly contains a conflict tag: %s", out)
	}
}

func TestMergeSameLeafEditedDifferentlyConflicts(t *testing.T) {
	origin := weighSrc(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	left := weighSrc(t, "package p\n\nfunc F() int {\n\treturn 2\n}\n")
	right := weighSrc(t, "package p\n\nfunc F() int {\n\treturn 3\n}\n")

	leftDiff := elide.Elide(align.Align(origin, left, align.Minimal), elide.Options{})
	rightDiff := elide.Elide(align.Align(origin, right, align.Minimal), elide.Options{})

	merged, summary, err := merge.Merge(leftDiff, rightDiff, merge.Options{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !summary.HasConflicts() {
		t.Fatalf("expected a conflict when both sides edit the same leaf differently, got %+v", summary)
	}
	out := merge.Serialize(*merged)
	if !strings.Contains(out, "CONFLICT!") {
		t.Errorf("serialized merge should surface a CONFLICT! tag, got %s", out)
	}
}

func TestMergeIdenticalEditsNoConflict(t *testing.T) {
	origin := weighSrc(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	edit := weighSrc(t, "package p\n\nfunc F() int {\n\treturn 9\n}\n")

	diff := elide.Elide(align.Align(origin, edit, align.Minimal), elide.Options{})

	_, summary, err := merge.Merge(diff, diff, merge.Options{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if summary.HasConflicts() {
		t.Fatalf("applying the identical edit from both sides should never conflict, got %+v", summary)
	}
}
