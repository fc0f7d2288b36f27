// Package syntax adapts Go's own go/parser and go/ast output into the
// Generic Tree (component A), serving as the syntax adapter: a runnable
// source of gentree.Raw trees for cmd/syndiff, since the core packages
// assume an external parser and never import go/ast themselves. Grounded
// on difff.go's tree() function: one type switch, recursive, building
// children bottom-up before wrapping the parent.
package syntax

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/qri-io/syndiff/internal/gentree"
)

// ParseFile parses Go source into a Raw tree rooted at the file. filename is
// used only for error messages and position reporting.
func ParseFile(filename string, src []byte) (*gentree.Raw, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.AllErrors)
	if err != nil {
		return nil, fmt.Errorf("syntax: parse %s: %w", filename, err)
	}
	b := &builder{fset: fset, src: src}
	return b.convert(f), nil
}

// builder carries the shared state needed to turn one ast.Node into a Raw
// leaf: the position set to resolve byte offsets, and the original source
// bytes a leaf token is sliced from.
type builder struct {
	fset *token.FileSet
	src  []byte
}

func node(kind gentree.NodeKind, children ...gentree.Subtree[*gentree.Raw]) *gentree.Raw {
	return &gentree.Raw{Tree: gentree.Node[gentree.Subtree[*gentree.Raw]](kind, children)}
}

func field(f gentree.FieldID, n *gentree.Raw) gentree.Subtree[*gentree.Raw] {
	return gentree.Subtree[*gentree.Raw]{Field: &f, Node: n}
}

func (b *builder) leafText(start, end token.Pos) *gentree.Raw {
	so, eo := b.fset.Position(start).Offset, b.fset.Position(end).Offset
	if so < 0 || eo > len(b.src) || so > eo {
		return &gentree.Raw{Tree: gentree.Leaf[gentree.Subtree[*gentree.Raw]](gentree.NewToken(nil))}
	}
	return &gentree.Raw{Tree: gentree.Leaf[gentree.Subtree[*gentree.Raw]](gentree.NewToken(b.src[so:eo]))}
}

func (b *builder) leaf(n ast.Node) *gentree.Raw {
	if n == nil {
		return &gentree.Raw{Tree: gentree.Leaf[gentree.Subtree[*gentree.Raw]](gentree.NewToken(nil))}
	}
	return b.leafText(n.Pos(), n.End())
}

// opaque is the fallback for any node type this adapter has no dedicated
// case for: the node's full source span becomes a single leaf, so
// ParseFile never fails on a syntactically valid but unhandled construct.
func (b *builder) opaque(n ast.Node) *gentree.Raw {
	return b.leaf(n)
}

func (b *builder) convertList(f gentree.FieldID, ns []ast.Node) []gentree.Subtree[*gentree.Raw] {
	out := make([]gentree.Subtree[*gentree.Raw], len(ns))
	for i, n := range ns {
		out[i] = field(f, b.convert(n))
	}
	return out
}

func (b *builder) convert(n ast.Node) *gentree.Raw {
	if n == nil {
		return b.leaf(nil)
	}
	switch x := n.(type) {
	case *ast.File:
		decls := make([]ast.Node, len(x.Decls))
		for i, d := range x.Decls {
			decls[i] = d
		}
		children := append([]gentree.Subtree[*gentree.Raw]{field(FieldName, b.convert(x.Name))}, b.convertList(FieldDecl, decls)...)
		return node(KindFile, children...)

	case *ast.Ident:
		return b.leaf(x)
	case *ast.BasicLit:
		return b.leaf(x)
	case *ast.Ellipsis:
		if x.Elt == nil {
			return node(KindEllipsis)
		}
		return node(KindEllipsis, field(FieldElt, b.convert(x.Elt)))

	case *ast.ImportSpec:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Name != nil {
			children = append(children, field(FieldName, b.convert(x.Name)))
		}
		children = append(children, field(FieldPath, b.convert(x.Path)))
		return node(KindImportSpec, children...)

	case *ast.ValueSpec:
		var children []gentree.Subtree[*gentree.Raw]
		for _, nm := range x.Names {
			children = append(children, field(FieldName, b.convert(nm)))
		}
		if x.Type != nil {
			children = append(children, field(FieldType, b.convert(x.Type)))
		}
		for _, v := range x.Values {
			children = append(children, field(FieldValue, b.convert(v)))
		}
		return node(KindValueSpec, children...)

	case *ast.TypeSpec:
		children := []gentree.Subtree[*gentree.Raw]{
			field(FieldName, b.convert(x.Name)),
			field(FieldType, b.convert(x.Type)),
		}
		return node(KindTypeSpec, children...)

	case *ast.GenDecl:
		specs := make([]ast.Node, len(x.Specs))
		for i, s := range x.Specs {
			specs[i] = s
		}
		children := append([]gentree.Subtree[*gentree.Raw]{field(FieldTok, b.leafText(x.TokPos, x.TokPos+token.Pos(len(x.Tok.String()))))}, b.convertList(FieldSpec, specs)...)
		return node(KindGenDecl, children...)

	case *ast.FuncDecl:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Recv != nil {
			children = append(children, field(FieldRecv, b.convert(x.Recv)))
		}
		children = append(children, field(FieldName, b.convert(x.Name)), field(FieldType, b.convert(x.Type)))
		if x.Body != nil {
			children = append(children, field(FieldBody, b.convert(x.Body)))
		}
		return node(KindFuncDecl, children...)

	case *ast.FieldList:
		if x == nil {
			return node(KindFieldList)
		}
		fs := make([]ast.Node, len(x.List))
		for i, f := range x.List {
			fs[i] = f
		}
		return node(KindFieldList, b.convertList(FieldList, fs)...)

	case *ast.Field:
		var children []gentree.Subtree[*gentree.Raw]
		for _, nm := range x.Names {
			children = append(children, field(FieldName, b.convert(nm)))
		}
		children = append(children, field(FieldType, b.convert(x.Type)))
		return node(KindField, children...)

	case *ast.FuncType:
		children := []gentree.Subtree[*gentree.Raw]{field(FieldParams, b.convert(x.Params))}
		if x.Results != nil {
			children = append(children, field(FieldResults, b.convert(x.Results)))
		}
		return node(KindFuncType, children...)

	case *ast.FuncLit:
		return node(KindFuncLit, field(FieldType, b.convert(x.Type)), field(FieldBody, b.convert(x.Body)))

	case *ast.BlockStmt:
		if x == nil {
			return node(KindBlockStmt)
		}
		stmts := make([]ast.Node, len(x.List))
		for i, s := range x.List {
			stmts[i] = s
		}
		return node(KindBlockStmt, b.convertList(FieldList, stmts)...)

	case *ast.ExprStmt:
		return node(KindExprStmt, field(FieldX, b.convert(x.X)))

	case *ast.AssignStmt:
		lhs := make([]ast.Node, len(x.Lhs))
		for i, e := range x.Lhs {
			lhs[i] = e
		}
		rhs := make([]ast.Node, len(x.Rhs))
		for i, e := range x.Rhs {
			rhs[i] = e
		}
		children := append([]gentree.Subtree[*gentree.Raw]{field(FieldTok, b.leafText(x.TokPos, x.TokPos+token.Pos(len(x.Tok.String()))))}, b.convertList(FieldLhs, lhs)...)
		children = append(children, b.convertList(FieldRhs, rhs)...)
		return node(KindAssignStmt, children...)

	case *ast.ReturnStmt:
		results := make([]ast.Node, len(x.Results))
		for i, e := range x.Results {
			results[i] = e
		}
		return node(KindReturnStmt, b.convertList(FieldValue, results)...)

	case *ast.IfStmt:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Init != nil {
			children = append(children, field(FieldInit, b.convert(x.Init)))
		}
		children = append(children, field(FieldCond, b.convert(x.Cond)), field(FieldBody, b.convert(x.Body)))
		if x.Else != nil {
			children = append(children, field(FieldElse, b.convert(x.Else)))
		}
		return node(KindIfStmt, children...)

	case *ast.ForStmt:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Init != nil {
			children = append(children, field(FieldInit, b.convert(x.Init)))
		}
		if x.Cond != nil {
			children = append(children, field(FieldCond, b.convert(x.Cond)))
		}
		if x.Post != nil {
			children = append(children, field(FieldPost, b.convert(x.Post)))
		}
		children = append(children, field(FieldBody, b.convert(x.Body)))
		return node(KindForStmt, children...)

	case *ast.RangeStmt:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Key != nil {
			children = append(children, field(FieldKey, b.convert(x.Key)))
		}
		if x.Value != nil {
			children = append(children, field(FieldValue, b.convert(x.Value)))
		}
		children = append(children, field(FieldX, b.convert(x.X)), field(FieldBody, b.convert(x.Body)))
		return node(KindRangeStmt, children...)

	case *ast.IncDecStmt:
		return node(KindIncDecStmt, field(FieldX, b.convert(x.X)), field(FieldTok, b.leafText(x.TokPos, x.TokPos+token.Pos(len(x.Tok.String())))))

	case *ast.BranchStmt:
		if x.Label == nil {
			return node(KindBranchStmt)
		}
		return node(KindBranchStmt, field(FieldLabel, b.convert(x.Label)))

	case *ast.DeclStmt:
		return node(KindDeclStmt, field(FieldDecl, b.convert(x.Decl)))

	case *ast.GoStmt:
		return node(KindGoStmt, field(FieldCall, b.convert(x.Call)))
	case *ast.DeferStmt:
		return node(KindDeferStmt, field(FieldCall, b.convert(x.Call)))
	case *ast.SendStmt:
		return node(KindSendStmt, field(FieldX, b.convert(x.Chan)), field(FieldValue, b.convert(x.Value)))

	case *ast.LabeledStmt:
		return node(KindLabeledStmt, field(FieldLabel, b.convert(x.Label)), field(FieldX, b.convert(x.Stmt)))

	case *ast.SwitchStmt:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Init != nil {
			children = append(children, field(FieldInit, b.convert(x.Init)))
		}
		if x.Tag != nil {
			children = append(children, field(FieldTag, b.convert(x.Tag)))
		}
		children = append(children, field(FieldBody, b.convert(x.Body)))
		return node(KindSwitchStmt, children...)

	case *ast.TypeSwitchStmt:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Init != nil {
			children = append(children, field(FieldInit, b.convert(x.Init)))
		}
		children = append(children, field(FieldTag, b.convert(x.Assign)), field(FieldBody, b.convert(x.Body)))
		return node(KindTypeSwitchStmt, children...)

	case *ast.CaseClause:
		var children []gentree.Subtree[*gentree.Raw]
		exprs := make([]ast.Node, len(x.List))
		for i, e := range x.List {
			exprs[i] = e
		}
		children = append(children, b.convertList(FieldValue, exprs)...)
		stmts := make([]ast.Node, len(x.Body))
		for i, s := range x.Body {
			stmts[i] = s
		}
		children = append(children, b.convertList(FieldList, stmts)...)
		return node(KindCaseClause, children...)

	case *ast.SelectStmt:
		return node(KindSelectStmt, field(FieldBody, b.convert(x.Body)))

	case *ast.CommClause:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Comm != nil {
			children = append(children, field(FieldX, b.convert(x.Comm)))
		}
		stmts := make([]ast.Node, len(x.Body))
		for i, s := range x.Body {
			stmts[i] = s
		}
		children = append(children, b.convertList(FieldList, stmts)...)
		return node(KindCommClause, children...)

	case *ast.BinaryExpr:
		return node(KindBinaryExpr,
			field(FieldX, b.convert(x.X)),
			field(FieldOp, b.leafText(x.OpPos, x.OpPos+token.Pos(len(x.Op.String())))),
			field(FieldY, b.convert(x.Y)))

	case *ast.UnaryExpr:
		return node(KindUnaryExpr, field(FieldOp, b.leafText(x.OpPos, x.OpPos+token.Pos(len(x.Op.String())))), field(FieldX, b.convert(x.X)))

	case *ast.ParenExpr:
		return node(KindParenExpr, field(FieldX, b.convert(x.X)))

	case *ast.CallExpr:
		args := make([]ast.Node, len(x.Args))
		for i, a := range x.Args {
			args[i] = a
		}
		children := append([]gentree.Subtree[*gentree.Raw]{field(FieldFun, b.convert(x.Fun))}, b.convertList(FieldArg, args)...)
		return node(KindCallExpr, children...)

	case *ast.SelectorExpr:
		return node(KindSelectorExpr, field(FieldX, b.convert(x.X)), field(FieldSel, b.convert(x.Sel)))

	case *ast.IndexExpr:
		return node(KindIndexExpr, field(FieldX, b.convert(x.X)), field(FieldIndex, b.convert(x.Index)))

	case *ast.SliceExpr:
		children := []gentree.Subtree[*gentree.Raw]{field(FieldX, b.convert(x.X))}
		if x.Low != nil {
			children = append(children, field(FieldLow, b.convert(x.Low)))
		}
		if x.High != nil {
			children = append(children, field(FieldHigh, b.convert(x.High)))
		}
		if x.Max != nil {
			children = append(children, field(FieldMax, b.convert(x.Max)))
		}
		return node(KindSliceExpr, children...)

	case *ast.StarExpr:
		return node(KindStarExpr, field(FieldX, b.convert(x.X)))

	case *ast.KeyValueExpr:
		return node(KindKeyValueExpr, field(FieldKey, b.convert(x.Key)), field(FieldValue, b.convert(x.Value)))

	case *ast.CompositeLit:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Type != nil {
			children = append(children, field(FieldType, b.convert(x.Type)))
		}
		elts := make([]ast.Node, len(x.Elts))
		for i, e := range x.Elts {
			elts[i] = e
		}
		children = append(children, b.convertList(FieldElt, elts)...)
		return node(KindCompositeLit, children...)

	case *ast.ArrayType:
		var children []gentree.Subtree[*gentree.Raw]
		if x.Len != nil {
			children = append(children, field(FieldLen, b.convert(x.Len)))
		}
		children = append(children, field(FieldElt, b.convert(x.Elt)))
		return node(KindArrayType, children...)

	case *ast.MapType:
		return node(KindMapType, field(FieldKey, b.convert(x.Key)), field(FieldValue, b.convert(x.Value)))

	case *ast.ChanType:
		return node(KindChanType, field(FieldValue, b.convert(x.Value)))

	case *ast.StructType:
		return node(KindStructType, field(FieldList, b.convert(x.Fields)))

	case *ast.InterfaceType:
		return node(KindInterfaceType, field(FieldList, b.convert(x.Methods)))

	default:
		return b.opaque(n)
	}
}
