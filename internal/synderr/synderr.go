// Package synderr defines sentinel and typed errors, generalizing the
// teacher's fmt.Errorf/sentinel style (difff.go's ErrCompletelyDistinct)
// into the small taxonomy spec.md §7 calls for: errors a caller can branch
// on with errors.Is/errors.As instead of matching error strings. No other
// package of this module imports synderr: internal/patch declares its own
// sentinel errors, and the syntax adapter and the CLI build theirs with
// fmt.Errorf.
package synderr

import "errors"

var (
	// ErrNoCommonStructure reports that two trees share no subtree at all.
	// align.Align has no error result and never returns it.
	ErrNoCommonStructure = errors.New("syndiff: trees share no common structure")

	// ErrUnresolvedMetavariable reports an insertion that references a
	// metavariable that was never bound against a source tree.
	ErrUnresolvedMetavariable = errors.New("syndiff: metavariable referenced but never bound")

	// ErrStructuralMismatch reports a diff whose deletion structure does
	// not line up with the shape of the source tree it is applied to.
	ErrStructuralMismatch = errors.New("syndiff: diff does not match source tree structure")

	// ErrConflictsRemain reports a merge result that still carries
	// unresolved conflicts when patch application was requested.
	ErrConflictsRemain = errors.New("syndiff: merge result still has unresolved conflicts")
)

// ParseError wraps a syntax-adapter failure with the file it occurred in,
// so callers can report "file: underlying reason" without string-matching.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return "syndiff: parsing " + e.File + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
