package patch_test

import (
	"testing"

	"github.com/qri-io/syndiff/internal/align"
	"github.com/qri-io/syndiff/internal/elide"
	"github.com/qri-io/syndiff/internal/gentree"
	"github.com/qri-io/syndiff/internal/merge"
	"github.com/qri-io/syndiff/internal/patch"
	"github.com/qri-io/syndiff/internal/syntax"
	"github.com/qri-io/syndiff/internal/weight"
)

func parse(t *testing.T, src string) (*gentree.Raw, *weight.Node) {
	t.Helper()
	raw, err := syntax.ParseFile("t.go", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return raw, weight.Weigh(raw)
}

// TestApplyDiffIdentity checks invariant I2: applying the diff of a tree
// against itself reproduces the same tree.
func TestApplyDiffIdentity(t *testing.T) {
	raw, w := parse(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n")

	aligned := align.Align(w, w, align.Minimal)
	diff := elide.Elide(aligned, elide.Options{})

	patched, err := patch.ApplyDiff(diff, raw)
	if err != nil {
		t.Fatalf("ApplyDiff: %v", err)
	}
	if got, want := weight.Weigh(patched).Hash, w.Hash; got != want {
		t.Errorf("patched hash = %v, want %v (identity patch should reproduce source)", got, want)
	}
}

// TestApplyDiffTwoWayEdit checks invariant I3: a conflict-free 2-way diff,
// applied to its origin, reproduces the edited tree.
func TestApplyDiffTwoWayEdit(t *testing.T) {
	origin, originW := parse(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	_, editW := parse(t, "package p\n\nfunc F() int {\n\treturn 2\n}\n")

	aligned := align.Align(originW, editW, align.Minimal)
	diff := elide.Elide(aligned, elide.Options{})

	patched, err := patch.ApplyDiff(diff, origin)
	if err != nil {
		t.Fatalf("ApplyDiff: %v", err)
	}
	if got, want := weight.Weigh(patched).Hash, editW.Hash; got != want {
		t.Errorf("patched hash = %v, want %v (patch(diff(a,b), a) should equal b)", got, want)
	}
}

// TestApplyMergeNoConflict exercises the full G-J merge pipeline plus
// component K when both sides touch disjoint leaves: the merge should
// carry no conflicts and the patched result should contain both edits.
func TestApplyMergeNoConflict(t *testing.T) {
	origin, originW := parse(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n\nfunc G() int {\n\treturn 10\n}\n")
	_, leftW := parse(t, "package p\n\nfunc F() int {\n\treturn 2\n}\n\nfunc G() int {\n\treturn 10\n}\n")
	_, rightW := parse(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n\nfunc G() int {\n\treturn 20\n}\n")

	leftDiff := elide.Elide(align.Align(originW, leftW, align.Minimal), elide.Options{})
	rightDiff := elide.Elide(align.Align(originW, rightW, align.Minimal), elide.Options{})

	merged, summary, err := merge.Merge(leftDiff, rightDiff, merge.Options{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if summary.HasConflicts() {
		t.Fatalf("unexpected conflicts merging disjoint edits: %+v", summary)
	}

	patched, err := patch.Apply(*merged, origin)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	_, wantW := parse(t, "package p\n\nfunc F() int {\n\treturn 2\n}\n\nfunc G() int {\n\treturn 20\n}\n")
	if got, want := weight.Weigh(patched).Hash, wantW.Hash; got != want {
		t.Errorf("merged+patched hash = %v, want %v (both edits should be present)", got, want)
	}
}
