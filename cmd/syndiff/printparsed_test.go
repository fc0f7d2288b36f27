package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintParsedDumpsTreeStructure(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "f.go", "package p\n\nfunc F() int {\n\treturn 1\n}\n")

	cmd := buildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"print-parsed", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "KIND") {
		t.Errorf("expected dumped output to contain KIND lines, got %q", out.String())
	}
}

func TestPrintParsedRejectsMissingFile(t *testing.T) {
	cmd := buildRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"print-parsed", "/nonexistent/path/does/not/exist.go"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
