// Package ast defines the Abstract Syntax Tree produced by pkg/parser and
// walked by pkg/validator, pkg/eval and pkg/highlight, each as a Visitor
// implementation (spec §4.3/§4.4, Design Notes §9: "the parse tree maps
// onto the Go visitor idiom: one interface type per node, dispatched by a
// Visitor interface with a BaseVisitor default-traversal embed"). Every
// node type mirrors one production of the grammar rather than a single
// tagged union, the same shape the teacher repo's pkg/ast uses.
package ast

import "github.com/vellumlang/vellum/pkg/token"

// Node is implemented by every AST node.
type Node interface {
	Accept(v Visitor) interface{}
	Location() token.Location
}

// Expr is implemented by every expression node (the distinction from
// Statement exists only for documentation; Go's type system doesn't need
// it, but it mirrors the grammar's own expr/stmt split).
type Expr interface {
	Node
	exprNode()
}

// Statement is implemented by every statement node.
type Statement interface {
	Node
	stmtNode()
}

// base carries the source location every node needs; embed it rather than
// repeating the field and its accessor.
type Base struct {
	Loc token.Location
}

func (b Base) Location() token.Location { return b.Loc }

// Attribute is the `[[name(args...)]]` annotation grammar attaches to
// declarations (spec §4.3); it is a plain field on attributable nodes, not
// a node of its own kind in the tree, per SPEC_FULL.md's Design Notes: a
// mixin field keeps every attributable declaration's Accept simple instead
// of threading an extra node kind through every visitor.
type Attribute struct {
	Base
	Name string
	Args []Expr
}

func (a *Attribute) Accept(v Visitor) interface{} { return v.VisitAttribute(a) }

// Program is the root of a compiled source: its top-level statements.
type Program struct {
	Base
	Statements []Statement
}

func (p *Program) Accept(v Visitor) interface{} { return v.VisitProgram(p) }

// ---- Expressions ----

type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitChar
	LitBool
	LitNull
)

// Literal is a constant value token folded directly into the tree.
type Literal struct {
	Base
	Kind LiteralKind
	Int  token.Int128
	Flt  float64
	Str  string
	Chr  rune
	Bool bool
}

func (l *Literal) Accept(v Visitor) interface{} { return v.VisitLiteral(l) }
func (*Literal) exprNode()                      {}

// Identifier is a bare name reference.
type Identifier struct {
	Base
	Name string
}

func (i *Identifier) Accept(v Visitor) interface{} { return v.VisitIdentifier(i) }
func (*Identifier) exprNode()                      {}

// ScopeResolution is `a::b::c`, a namespace-qualified path used as an
// expression (referring to a global or enum entry) (spec glossary: Scope
// Resolution).
type ScopeResolution struct {
	Base
	Path   []string
	Global bool // leading `::`
}

func (s *ScopeResolution) Accept(v Visitor) interface{} { return v.VisitScopeResolution(s) }
func (*ScopeResolution) exprNode()                      {}

// MemberAccess is `.field`, applied to some target expression.
type MemberAccess struct {
	Base
	Target Expr
	Name   string
}

func (m *MemberAccess) Accept(v Visitor) interface{} { return v.VisitMemberAccess(m) }
func (*MemberAccess) exprNode()                      {}

// IndexAccess is `[index]`, applied to some target expression.
type IndexAccess struct {
	Base
	Target Expr
	Index  Expr
}

func (i *IndexAccess) Accept(v Visitor) interface{} { return v.VisitIndexAccess(i) }
func (*IndexAccess) exprNode()                      {}

// MathExpr is a binary operator application; precedence is already baked
// into the shape of the tree by the parser's precedence-climbing loop
// (spec §4.3).
type MathExpr struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

func (m *MathExpr) Accept(v Visitor) interface{} { return v.VisitMathExpr(m) }
func (*MathExpr) exprNode()                      {}

// UnaryExpr is a prefix operator: `-x`, `!x`, `~x`, `*x` (dereference).
type UnaryExpr struct {
	Base
	Op      string
	Operand Expr
}

func (u *UnaryExpr) Accept(v Visitor) interface{} { return v.VisitUnaryExpr(u) }
func (*UnaryExpr) exprNode()                      {}

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

func (t *TernaryExpr) Accept(v Visitor) interface{} { return v.VisitTernaryExpr(t) }
func (*TernaryExpr) exprNode()                      {}

// FunctionCall is `name(args...)`, possibly scope-qualified.
type FunctionCall struct {
	Base
	ScopePath []string
	Name      string
	Args      []Expr
}

func (f *FunctionCall) Accept(v Visitor) interface{} { return v.VisitFunctionCall(f) }
func (*FunctionCall) exprNode()                      {}

// SizeofExpr is `sizeof(expr)` or `sizeof(type)`.
type SizeofExpr struct {
	Base
	Operand Expr
	Type    *TypeRef
}

func (s *SizeofExpr) Accept(v Visitor) interface{} { return v.VisitSizeofExpr(s) }
func (*SizeofExpr) exprNode()                      {}

// AddressofExpr is `addressof(expr)`.
type AddressofExpr struct {
	Base
	Operand Expr
}

func (a *AddressofExpr) Accept(v Visitor) interface{} { return v.VisitAddressofExpr(a) }
func (*AddressofExpr) exprNode()                      {}

// TypeofExpr is `typeof(expr)`, used only in type position but modeled as
// an expression since its operand is one.
type TypeofExpr struct {
	Base
	Operand Expr
}

func (t *TypeofExpr) Accept(v Visitor) interface{} { return v.VisitTypeofExpr(t) }
func (*TypeofExpr) exprNode()                      {}

// CastExpr is a C-style `(type)expr` numeric reinterpretation.
type CastExpr struct {
	Base
	Type    *TypeRef
	Operand Expr
}

func (c *CastExpr) Accept(v Visitor) interface{} { return v.VisitCastExpr(c) }
func (*CastExpr) exprNode()                      {}

// ---- Type references ----

// TypeRef names a type at a use site: a builtin, a scope-qualified UDT, or
// typeof(expr). Pointer-ness and array-ness are NOT part of a TypeRef —
// they're suffixes on the declaration that uses it (spec §4.3's grammar
// keeps `*`/`[]` on the declarator, matching C, not the type).
type TypeRef struct {
	Base
	Builtin      token.BuiltinType
	IsBuiltin    bool
	ScopePath    []string
	Name         string
	TemplateArgs []Expr
	Typeof       *TypeofExpr
}

func (t *TypeRef) Accept(v Visitor) interface{} { return v.VisitTypeRef(t) }

// ---- Declarations ----

// VariableDecl is a plain `type name [@ placement];` declaration.
type VariableDecl struct {
	Base
	Type       *TypeRef
	Name       string
	Placement  Expr
	In, Out    bool
	Attributes []*Attribute
}

func (d *VariableDecl) Accept(v Visitor) interface{} { return v.VisitVariableDecl(d) }
func (*VariableDecl) stmtNode()                      {}

// ArrayVariableDecl is `type name[size]` or `type name[while(cond)]`.
type ArrayVariableDecl struct {
	Base
	Type       *TypeRef
	Name       string
	Size       Expr // nil when unbounded
	WhileCond  Expr // non-nil for `[while(cond)]` arrays
	Placement  Expr
	Attributes []*Attribute
}

func (d *ArrayVariableDecl) Accept(v Visitor) interface{} { return v.VisitArrayVariableDecl(d) }
func (*ArrayVariableDecl) stmtNode()                      {}

// PointerVariableDecl is `type *name : sizedType [@ placement];`.
type PointerVariableDecl struct {
	Base
	Type       *TypeRef
	Name       string
	SizedType  *TypeRef
	Placement  Expr
	Attributes []*Attribute
}

func (d *PointerVariableDecl) Accept(v Visitor) interface{} { return v.VisitPointerVariableDecl(d) }
func (*PointerVariableDecl) stmtNode()                      {}

// MultiVariableDecl is a comma-separated declarator list sharing one base
// type: `u32 a, b, c;`.
type MultiVariableDecl struct {
	Base
	Decls []Statement // each a VariableDecl/ArrayVariableDecl/PointerVariableDecl
}

func (d *MultiVariableDecl) Accept(v Visitor) interface{} { return v.VisitMultiVariableDecl(d) }
func (*MultiVariableDecl) stmtNode()                      {}

// StructDecl is a `struct Name : Parent1, Parent2 { ... }` declaration.
type StructDecl struct {
	Base
	Name       string
	Template   []string
	Inherits   []*TypeRef
	Members    []Statement
	Attributes []*Attribute
}

func (d *StructDecl) Accept(v Visitor) interface{} { return v.VisitStructDecl(d) }
func (*StructDecl) stmtNode()                      {}

// UnionDecl is `union Name { ... }`.
type UnionDecl struct {
	Base
	Name       string
	Template   []string
	Members    []Statement
	Attributes []*Attribute
}

func (d *UnionDecl) Accept(v Visitor) interface{} { return v.VisitUnionDecl(d) }
func (*UnionDecl) stmtNode()                      {}

// EnumEntry is one `Name = value` (or implicit successor) member.
type EnumEntry struct {
	Base
	Name  string
	Value Expr // nil when implicitly one past the previous entry
}

func (e *EnumEntry) Accept(v Visitor) interface{} { return v.VisitEnumEntry(e) }

// EnumDecl is `enum Name : underlyingType { ... }`.
type EnumDecl struct {
	Base
	Name       string
	Underlying *TypeRef
	Entries    []*EnumEntry
	Attributes []*Attribute
}

func (d *EnumDecl) Accept(v Visitor) interface{} { return v.VisitEnumDecl(d) }
func (*EnumDecl) stmtNode()                      {}

// BitfieldFieldDecl is one `name : bitSize;` member of a bitfield, or an
// unnamed `padding : bitSize;` filler.
type BitfieldFieldDecl struct {
	Base
	Name       string
	Size       Expr
	Padding    bool
	Attributes []*Attribute
}

func (d *BitfieldFieldDecl) Accept(v Visitor) interface{} { return v.VisitBitfieldFieldDecl(d) }

// BitfieldDecl is `bitfield Name { ... }`.
type BitfieldDecl struct {
	Base
	Name       string
	Fields     []*BitfieldFieldDecl
	Attributes []*Attribute
}

func (d *BitfieldDecl) Accept(v Visitor) interface{} { return v.VisitBitfieldDecl(d) }
func (*BitfieldDecl) stmtNode()                      {}

// TypedefDecl is `using Name = Target;` or a forward `using Name;`.
type TypedefDecl struct {
	Base
	Name     string
	Template []string
	Target   *TypeRef // nil for a forward declaration
}

func (d *TypedefDecl) Accept(v Visitor) interface{} { return v.VisitTypedefDecl(d) }
func (*TypedefDecl) stmtNode()                      {}

// NamespaceDecl is `namespace a::b { ... }`.
type NamespaceDecl struct {
	Base
	Path []string
	Body []Statement
}

func (d *NamespaceDecl) Accept(v Visitor) interface{} { return v.VisitNamespaceDecl(d) }
func (*NamespaceDecl) stmtNode()                      {}

// FunctionParam is one formal parameter, optionally with a default value.
type FunctionParam struct {
	Base
	Name    string
	Type    *TypeRef
	Default Expr
}

func (p *FunctionParam) Accept(v Visitor) interface{} { return v.VisitFunctionParam(p) }

// FunctionDecl is `fn name(params) { body }`.
type FunctionDecl struct {
	Base
	Name   string
	Params []*FunctionParam
	Body   []Statement
}

func (d *FunctionDecl) Accept(v Visitor) interface{} { return v.VisitFunctionDecl(d) }
func (*FunctionDecl) stmtNode()                      {}

// ---- Statements ----

type ExprStmt struct {
	Base
	Expr Expr
}

func (s *ExprStmt) Accept(v Visitor) interface{} { return v.VisitExprStmt(s) }
func (*ExprStmt) stmtNode()                      {}

type AssignmentStmt struct {
	Base
	Target Expr
	Op     string // "=", "+=", "-=", ...
	Value  Expr
}

func (s *AssignmentStmt) Accept(v Visitor) interface{} { return v.VisitAssignmentStmt(s) }
func (*AssignmentStmt) stmtNode()                      {}

type IfStmt struct {
	Base
	Cond Expr
	Then []Statement
	Else []Statement
}

func (s *IfStmt) Accept(v Visitor) interface{} { return v.VisitIfStmt(s) }
func (*IfStmt) stmtNode()                      {}

type WhileStmt struct {
	Base
	Cond Expr
	Body []Statement
}

func (s *WhileStmt) Accept(v Visitor) interface{} { return v.VisitWhileStmt(s) }
func (*WhileStmt) stmtNode()                      {}

type ForStmt struct {
	Base
	Init Statement
	Cond Expr
	Post Statement
	Body []Statement
}

func (s *ForStmt) Accept(v Visitor) interface{} { return v.VisitForStmt(s) }
func (*ForStmt) stmtNode()                      {}

type ReturnStmt struct {
	Base
	Value Expr // nil for a bare `return;`
}

func (s *ReturnStmt) Accept(v Visitor) interface{} { return v.VisitReturnStmt(s) }
func (*ReturnStmt) stmtNode()                      {}

type BreakStmt struct{ Base }

func (s *BreakStmt) Accept(v Visitor) interface{} { return v.VisitBreakStmt(s) }
func (*BreakStmt) stmtNode()                      {}

type ContinueStmt struct{ Base }

func (s *ContinueStmt) Accept(v Visitor) interface{} { return v.VisitContinueStmt(s) }
func (*ContinueStmt) stmtNode()                      {}

// ImportStmt is `import a::b as alias;`.
type ImportStmt struct {
	Base
	Path  []string
	Alias string
}

func (s *ImportStmt) Accept(v Visitor) interface{} { return v.VisitImportStmt(s) }
func (*ImportStmt) stmtNode()                      {}

// UsingNamespaceStmt is `using a::b;` bringing a namespace into scope (not
// to be confused with TypedefDecl's `using Name = Target;`).
type UsingNamespaceStmt struct {
	Base
	Path []string
}

func (s *UsingNamespaceStmt) Accept(v Visitor) interface{} { return v.VisitUsingNamespaceStmt(s) }
func (*UsingNamespaceStmt) stmtNode()                      {}
