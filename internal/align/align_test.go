package align_test

import (
	"testing"

	"github.com/qri-io/syndiff/internal/align"
	"github.com/qri-io/syndiff/internal/syntax"
	"github.com/qri-io/syndiff/internal/weight"
)

func weigh(t *testing.T, src string) *weight.Node {
	t.Helper()
	raw, err := syntax.ParseFile("t.go", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return weight.Weigh(raw)
}

func TestAlignIdenticalTreesAreUnchanged(t *testing.T) {
	w := weigh(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	got := align.Align(w, w, align.Minimal)
	if got.Kind != align.KindUnchanged {
		t.Fatalf("expected KindUnchanged for a tree aligned with itself, got Kind=%d", got.Kind)
	}
}

func TestAlignSimilarTreesZipIntoASpine(t *testing.T) {
	del := weigh(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	ins := weigh(t, "package p\n\nfunc F() int {\n\treturn 2\n}\n")

	got := align.Align(del, ins, align.Minimal)
	if got.Kind != align.KindSpine {
		t.Fatalf("expected a single changed leaf to zip into a spine, got Kind=%d", got.Kind)
	}
}

func TestAlignCompletelyDifferentTreesAreChanged(t *testing.T) {
	del := weigh(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	ins := weigh(t, "package q\n\ntype T struct{}\n")

	got := align.Align(del, ins, align.Minimal)
	if got.Kind != align.KindChanged {
		t.Fatalf("expected two unrelated files to align as a bare Changed pair, got Kind=%d", got.Kind)
	}
	if got.ChangedDel != del || got.ChangedIns != ins {
		t.Errorf("expected ChangedDel/ChangedIns to reference the original weighted nodes")
	}
}

func TestAlignPatienceAgreesWithMinimalOnDisjointEdits(t *testing.T) {
	del := weigh(t, "package p\n\nfunc F() int {\n\treturn 1\n}\n\nfunc G() int {\n\treturn 2\n}\n")
	ins := weigh(t, "package p\n\nfunc F() int {\n\treturn 9\n}\n\nfunc G() int {\n\treturn 2\n}\n")

	minimal := align.Align(del, ins, align.Minimal)
	patience := align.Align(del, ins, align.Patience)

	if minimal.Kind != align.KindSpine || patience.Kind != align.KindSpine {
		t.Fatalf("expected both algorithms to zip, got minimal=%d patience=%d", minimal.Kind, patience.Kind)
	}
}
