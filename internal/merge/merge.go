package merge

import "github.com/qri-io/syndiff/internal/difftree"

// Merge runs the full three-way merge pipeline (components G through J)
// over two diffs sharing a common origin, producing the merged spine and
// a breakdown of any conflicts it still carries. Grounded on
// _examples/original_source/syndiff/src/merge/mod.rs's merge_diffs.
func Merge(left, right difftree.Spine, opts Options) (*Spine, ConflictSummary, error) {
	leftNumbered, leftEndMV := renumberMetavars(left, 0)
	rightNumbered, rightEndMV := renumberMetavars(right, leftEndMV)

	aligned, nbMetavars, err := AlignSpines(leftNumbered, rightNumbered, rightEndMV, opts)
	if err != nil {
		return nil, ConflictSummary{}, err
	}

	insMerged, insSubst := MergeInsertions(*aligned, nbMetavars)

	merged, delSubst, err := MergeDeletions(insMerged, nbMetavars)
	if err != nil {
		return nil, ConflictSummary{}, err
	}

	out := ApplySubstitutions(*merged, delSubst, insSubst)
	return &out, CountConflicts(out), nil
}
