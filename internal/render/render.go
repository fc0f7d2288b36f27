// Package render colorizes the tagged-text serialization of component
// E/F's diffs for terminal display, kept strictly outside the core diff
// and merge packages: coloring is a presentation concern layered on top of
// difftree.Serialize/merge.Serialize, per spec.md's non-goals. Grounded on
// aws-copilot-cli's internal/pkg/term/color (package-level color.*
// wrappers around github.com/fatih/color) and audivir/dirdiff's direct
// fatih/color dependency for red/green diff output.
package render

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
)

var (
	deleted  = color.New(color.FgRed)
	inserted = color.New(color.FgGreen)
	conflict = color.New(color.FgYellow, color.Bold)
	changed  = color.New(color.FgCyan)

	tagRe = regexp.MustCompile(`(DELETED!\[|INSERTED!\[|MV_CONFLICT!\[|INSERT_ORDER_CONFLICT!\[|CONFLICT!\[|CHANGED!\[|UNCHANGED!\[\])`)
)

// Colorize wraps every tagged region of a serialized diff
// (DELETED!/INSERTED!/MV_CONFLICT!/CONFLICT!/INSERT_ORDER_CONFLICT!/
// CHANGED!/UNCHANGED!) in the ANSI color matching its tag, walking bracket
// depth to find each region's matching close. NoColor disables fatih/color
// globally, so Colorize degrades to plain text when output isn't a
// terminal or --no-color is set.
func Colorize(serialized string, noColor bool) string {
	if noColor {
		color.NoColor = true
	}

	var b strings.Builder
	i := 0
	for i < len(serialized) {
		loc := tagRe.FindStringIndex(serialized[i:])
		if loc == nil {
			b.WriteString(serialized[i:])
			break
		}
		start, end := i+loc[0], i+loc[1]
		b.WriteString(serialized[i:start])

		tag := serialized[start:end]
		if tag == "UNCHANGED![]" {
			b.WriteString(tag)
			i = end
			continue
		}

		depth := 1
		j := end
		for j < len(serialized) && depth > 0 {
			switch serialized[j] {
			case '[':
				depth++
			case ']':
				depth--
			}
			j++
		}
		region := serialized[start:j]
		b.WriteString(colorFor(tag).Sprint(region))
		i = j
	}
	return b.String()
}

func colorFor(tag string) *color.Color {
	switch {
	case strings.HasPrefix(tag, "DELETED!"):
		return deleted
	case strings.HasPrefix(tag, "INSERTED!"):
		return inserted
	case strings.HasPrefix(tag, "MV_CONFLICT!"), strings.HasPrefix(tag, "CONFLICT!"), strings.HasPrefix(tag, "INSERT_ORDER_CONFLICT!"):
		return conflict
	default: // CHANGED!
		return changed
	}
}
