package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/qri-io/syndiff/internal/align"
	"github.com/qri-io/syndiff/internal/difftree"
	"github.com/qri-io/syndiff/internal/elide"
	"github.com/qri-io/syndiff/internal/gentree"
	"github.com/qri-io/syndiff/internal/merge"
	"github.com/qri-io/syndiff/internal/patch"
	"github.com/qri-io/syndiff/internal/render"
	"github.com/qri-io/syndiff/internal/syntax"
	"github.com/qri-io/syndiff/internal/weight"
)

type rootFlags struct {
	algorithm            string
	skipElisions         bool
	allowNestedDeletions bool
	orderedInsertions    bool
	mergeFiles           bool
	noColor              bool
}

func buildRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "syndiff <origin> <edit1> [edit2]",
		Short: "structural syntax-tree diff and three-way merge",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flags.algorithm, "algorithm", "minimal", `subtree-sequence alignment algorithm: "minimal" or "patience"`)
	cmd.Flags().BoolVar(&flags.skipElisions, "no-elisions", false, "disable the elision pass; every change is emitted in place")
	cmd.Flags().BoolVar(&flags.allowNestedDeletions, "allow-nested-deletions", false, "accept deletions inside insertion spines during inlining")
	cmd.Flags().BoolVar(&flags.orderedInsertions, "ordered-insertions", false, "preserve per-side insertion order instead of merging it unordered")
	cmd.Flags().BoolVar(&flags.mergeFiles, "merge-files", false, "emit the patched source instead of the annotated diff (requires 3 inputs, no conflicts)")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable ANSI coloring of the rendered diff")

	cmd.AddCommand(buildPrintParsedCmd())
	return cmd
}

func run(cmd *cobra.Command, args []string, flags *rootFlags) error {
	runID := uuid.New().String()
	log := logrus.WithField("run", runID)

	algo := align.Minimal
	if flags.algorithm == "patience" {
		algo = align.Patience
	} else if flags.algorithm != "minimal" {
		return &exitCodeError{code: 1, err: fmt.Errorf("syndiff: unknown --algorithm %q", flags.algorithm)}
	}

	rawTrees := make([]*gentree.Raw, len(args))
	for i, path := range args {
		raw, err := parseFile(path)
		if err != nil {
			log.WithError(err).Error("parse failed")
			return &exitCodeError{code: 1, err: err}
		}
		rawTrees[i] = raw
	}

	origin := weight.Weigh(rawTrees[0])
	elideOpts := elide.Options{SkipElisions: flags.skipElisions}

	diffTo := func(edit *weight.Node) difftree.Spine {
		aligned := align.Align(origin, edit, algo)
		return elide.Elide(aligned, elideOpts)
	}

	left := diffTo(weight.Weigh(rawTrees[1]))

	if len(rawTrees) == 2 {
		log.Info("computed 2-way diff")
		fmt.Fprintln(cmd.OutOrStdout(), render.Colorize(difftree.Serialize(left), flags.noColor))
		return nil
	}

	right := diffTo(weight.Weigh(rawTrees[2]))

	mergeOpts := merge.Options{
		AllowNestedDeletions: flags.allowNestedDeletions,
		OrderedInsertions:    flags.orderedInsertions,
	}
	merged, summary, err := merge.Merge(left, right, mergeOpts)
	if err != nil {
		log.WithError(err).Error("merge failed")
		return &exitCodeError{code: 1, err: err}
	}
	log.WithField("conflicts", summary).Info("merge complete")

	if flags.mergeFiles {
		if summary.HasConflicts() {
			return &exitCodeError{code: 2, err: fmt.Errorf("syndiff: cannot apply patch, merge has unresolved conflicts: %+v", summary)}
		}
		patched, err := patch.Apply(*merged, rawTrees[0])
		if err != nil {
			return &exitCodeError{code: 1, err: err}
		}
		fmt.Fprintln(cmd.OutOrStdout(), syntax.Render(patched))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.Colorize(merge.Serialize(*merged), flags.noColor))
	if summary.HasConflicts() {
		return &exitCodeError{code: 2, err: fmt.Errorf("syndiff: %d conflicts remain", conflictTotal(summary))}
	}
	return nil
}

func conflictTotal(s merge.ConflictSummary) int {
	return s.MetavarConflicts + s.InsertConflicts + s.InsertOrderConflicts
}

func parseFile(path string) (*gentree.Raw, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("syndiff: reading %s: %w", path, err)
	}
	return syntax.ParseFile(path, src)
}
