package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qri-io/syndiff/internal/gentree"
	"github.com/qri-io/syndiff/internal/syntax"
)

// buildPrintParsedCmd is the supplemented debug subcommand recovered from
// syndiff/src/bin/print_parsed.rs: dump the Generic Tree of one file to
// stdout, read-only, with no diffing involved, for inspecting what the
// syntax adapter produced.
func buildPrintParsedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-parsed <file>",
		Short: "parse a file and print its generic tree structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return &exitCodeError{code: 1, err: fmt.Errorf("syndiff: reading %s: %w", args[0], err)}
			}
			raw, err := syntax.ParseFile(args[0], src)
			if err != nil {
				return &exitCodeError{code: 1, err: err}
			}
			printRaw(cmd.OutOrStdout(), raw, 0)
			return nil
		},
	}
}

func printRaw(w interface{ Write([]byte) (int, error) }, raw *gentree.Raw, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	t := raw.Tree
	if t.IsLeaf() {
		fmt.Fprintf(w, "%sLEAF %q\n", indent, t.LeafToken().Bytes)
		return
	}
	fmt.Fprintf(w, "%sKIND %d\n", indent, t.Kind())
	for _, child := range t.Children() {
		if child.Field != nil {
			fmt.Fprintf(w, "%s  field %d:\n", indent, *child.Field)
		}
		printRaw(w, child.Node, depth+2)
	}
}
