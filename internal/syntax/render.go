package syntax

import "github.com/qri-io/syndiff/internal/gentree"

// Render reconstructs source text from a Raw tree by concatenating leaf
// token bytes in order, separating adjacent leaves with a single space
// where the original adapter dropped inter-node punctuation (keywords,
// braces, commas). This package only captures the syntactically
// significant subtrees go/ast exposes, not every byte between them, so
// Render is a best-effort reconstruction for --merge-files output and
// debugging, not a guarantee of gofmt-identical or even compilable text;
// callers that need exact bytes back should diff against pristine source
// regions outside any changed subtree instead.
func Render(raw *gentree.Raw) string {
	var b []byte
	renderInto(&b, raw)
	return string(b)
}

func renderInto(b *[]byte, raw *gentree.Raw) {
	if raw == nil {
		return
	}
	t := raw.Tree
	if t.IsLeaf() {
		tok := t.LeafToken().Bytes
		if len(tok) == 0 {
			return
		}
		if len(*b) > 0 {
			*b = append(*b, ' ')
		}
		*b = append(*b, tok...)
		return
	}
	for _, child := range t.Children() {
		renderInto(b, child.Node)
	}
}
