package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunTwoWayDiffSucceeds(t *testing.T) {
	dir := t.TempDir()
	origin := writeTemp(t, dir, "origin.go", "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	edit := writeTemp(t, dir, "edit.go", "package p\n\nfunc F() int {\n\treturn 2\n}\n")

	cmd := buildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--no-color", origin, edit})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Len() == 0 {
		t.Errorf("expected some diff output, got none")
	}
}

func TestRunThreeWayMergeReportsConflicts(t *testing.T) {
	dir := t.TempDir()
	origin := writeTemp(t, dir, "origin.go", "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	left := writeTemp(t, dir, "left.go", "package p\n\nfunc F() int {\n\treturn 2\n}\n")
	right := writeTemp(t, dir, "right.go", "package p\n\nfunc F() int {\n\treturn 3\n}\n")

	cmd := buildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--no-color", origin, left, right})

	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected a conflicting merge to return an error")
	}
	var exitErr *exitCodeError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected an *exitCodeError, got %T: %v", err, err)
	}
	if exitErr.code != 2 {
		t.Errorf("exit code = %d, want 2 (merge conflicts)", exitErr.code)
	}
	if !strings.Contains(out.String(), "CONFLICT!") {
		t.Errorf("expected the rendered output to contain a CONFLICT! tag, got %q", out.String())
	}
}

func TestRunRejectsUnknownAlgorithm(t *testing.T) {
	dir := t.TempDir()
	origin := writeTemp(t, dir, "origin.go", "package p\n\nfunc F() int {\n\treturn 1\n}\n")
	edit := writeTemp(t, dir, "edit.go", "package p\n\nfunc F() int {\n\treturn 2\n}\n")

	cmd := buildRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--algorithm", "bogus", origin, edit})

	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected an unknown algorithm to error")
	}
}

func TestRunRejectsUnparsableInput(t *testing.T) {
	dir := t.TempDir()
	origin := writeTemp(t, dir, "origin.go", "package p\n\nfunc F( {\n")
	edit := writeTemp(t, dir, "edit.go", "package p\n\nfunc F() int {\n\treturn 2\n}\n")

	cmd := buildRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{origin, edit})

	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected a parse error on malformed source")
	}
	var exitErr *exitCodeError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected an *exitCodeError, got %T: %v", err, err)
	}
	if exitErr.code != 1 {
		t.Errorf("exit code = %d, want 1 (input/parse error)", exitErr.code)
	}
}
