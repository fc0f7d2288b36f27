package render

import (
	"strings"
	"testing"
)

func TestColorizeNoColorIsPassthroughText(t *testing.T) {
	in := `foo DELETED![bar] baz INSERTED![qux] end`
	out := Colorize(in, true)
	// With color disabled, fatih/color emits no escape codes, so the text
	// content (minus ANSI bytes) should be unchanged.
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI escapes with noColor=true, got %q", out)
	}
	for _, want := range []string{"foo", "bar", "baz", "qux", "end"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestColorizeHandlesNestedConflictTags(t *testing.T) {
	in := `CONFLICT![INSERTED![a], INSERTED![b]]`
	out := Colorize(in, true)
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Fatalf("nested tag content lost: %q", out)
	}
}

func TestColorizeLeavesUnchangedTagAlone(t *testing.T) {
	in := `before UNCHANGED![] after`
	out := Colorize(in, true)
	if !strings.Contains(out, "UNCHANGED![]") {
		t.Fatalf("expected UNCHANGED![] preserved verbatim, got %q", out)
	}
}

func TestColorizePlainTextUnaffected(t *testing.T) {
	in := "no tags here at all"
	if got := Colorize(in, true); got != in {
		t.Fatalf("Colorize(%q) = %q, want unchanged", in, got)
	}
}
