package syntax

import (
	"strings"
	"testing"
)

func TestParseFileBasic(t *testing.T) {
	src := []byte(`package p

func Add(a, b int) int {
	if a > b {
		return a
	}
	return a + b
}
`)
	raw, err := ParseFile("p.go", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if raw.Tree.IsLeaf() {
		t.Fatalf("expected a file node, got a leaf")
	}
	if raw.Tree.Kind() != KindFile {
		t.Fatalf("expected KindFile, got %d", raw.Tree.Kind())
	}
}

func TestParseFileInvalidSyntax(t *testing.T) {
	_, err := ParseFile("bad.go", []byte(`package p

func ( {
`))
	if err == nil {
		t.Fatal("expected a parse error for invalid syntax")
	}
}

func TestRenderRoundTripsIdentifiers(t *testing.T) {
	src := []byte(`package p

func F() {
	x := 1
	y := x
	_ = y
}
`)
	raw, err := ParseFile("p.go", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	out := Render(raw)
	for _, want := range []string{"p", "F", "x", "1", "y"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output %q missing token %q", out, want)
		}
	}
}

func TestNodeKindsAreDistinct(t *testing.T) {
	kinds := map[string]int{
		"file": int(KindFile), "func": int(KindFuncDecl), "if": int(KindIfStmt),
		"for": int(KindForStmt), "block": int(KindBlockStmt),
	}
	seen := map[int]string{}
	for name, k := range kinds {
		if other, ok := seen[k]; ok {
			t.Fatalf("kind collision: %s and %s share value %d", name, other, k)
		}
		seen[k] = name
	}
}
