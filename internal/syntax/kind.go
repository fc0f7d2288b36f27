package syntax

import "github.com/qri-io/syndiff/internal/gentree"

// NodeKind values for every go/ast node type this adapter understands, plus
// Opaque for anything it doesn't. Numbering has no meaning beyond identity;
// values are fixed at compile time and may change between versions.
const (
	KindOpaque gentree.NodeKind = iota
	KindFile
	KindImportSpec
	KindValueSpec
	KindTypeSpec
	KindGenDecl
	KindFuncDecl
	KindFieldList
	KindField
	KindBlockStmt
	KindExprStmt
	KindAssignStmt
	KindReturnStmt
	KindIfStmt
	KindForStmt
	KindRangeStmt
	KindIncDecStmt
	KindBranchStmt
	KindDeclStmt
	KindGoStmt
	KindDeferStmt
	KindSendStmt
	KindLabeledStmt
	KindSwitchStmt
	KindTypeSwitchStmt
	KindCaseClause
	KindSelectStmt
	KindCommClause
	KindIdent
	KindBasicLit
	KindEllipsis
	KindBinaryExpr
	KindUnaryExpr
	KindParenExpr
	KindCallExpr
	KindSelectorExpr
	KindIndexExpr
	KindSliceExpr
	KindStarExpr
	KindKeyValueExpr
	KindCompositeLit
	KindFuncLit
	KindFuncType
	KindArrayType
	KindMapType
	KindChanType
	KindStructType
	KindInterfaceType
)

// FieldID values naming the slot a subtree occupies in its parent. Shared
// across unrelated parent kinds where the role coincides (e.g. Cond is
// "condition" whether the parent is an IfStmt or a ForStmt).
const (
	fieldZero gentree.FieldID = iota
	FieldName
	FieldDoc
	FieldRecv
	FieldType
	FieldParams
	FieldResults
	FieldBody
	FieldDecl
	FieldSpec
	FieldLhs
	FieldRhs
	FieldTok
	FieldX
	FieldY
	FieldOp
	FieldFun
	FieldArg
	FieldSel
	FieldIndex
	FieldLow
	FieldHigh
	FieldMax
	FieldKey
	FieldValue
	FieldElt
	FieldLen
	FieldDir
	FieldInit
	FieldCond
	FieldPost
	FieldElse
	FieldLabel
	FieldTag
	FieldList
	FieldCall
	FieldPath
)
