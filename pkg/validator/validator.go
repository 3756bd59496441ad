// Package validator walks a parsed Program enforcing the semantic rules
// the grammar itself cannot express (spec §4.4): type references resolve,
// member names are unique within their container, enum values fit their
// underlying type, bitfield fields fit their container, placement-offset
// expressions are pure, and UDTs don't form a direct cycle without a
// pointer indirection. It is one ast.Visitor pass, embedding
// ast.BaseVisitor, matching the teacher's pkg/visitors.SemanticAnalyzer
// (embeds ast.BaseVisitor, collects *SemanticError into a slice instead of
// aborting on the first one).
package validator

import (
	"fmt"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/token"
)

// ErrorKind enumerates validator failure modes (spec §7).
type ErrorKind int

const (
	ErrUnknownType ErrorKind = iota
	ErrCyclicType
	ErrEnumOutOfRange
	ErrBitfieldOverflow
	ErrBadPlacement
	ErrDuplicateMember
)

func (k ErrorKind) String() string {
	switch k {
	case ErrCyclicType:
		return "CyclicType"
	case ErrEnumOutOfRange:
		return "EnumOutOfRange"
	case ErrBitfieldOverflow:
		return "BitfieldOverflow"
	case ErrBadPlacement:
		return "BadPlacement"
	case ErrDuplicateMember:
		return "DuplicateMember"
	default:
		return "UnknownType"
	}
}

// Error is a single validator diagnostic.
type Error struct {
	Kind ErrorKind
	Loc  token.Location
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Loc, e.Msg)
}

// udtKind distinguishes the four UDT flavors, plus typedefs, for cycle
// detection.
type udtKind int

const (
	udtStruct udtKind = iota
	udtUnion
	udtEnum
	udtBitfield
	udtTypedef
)

type udtInfo struct {
	kind     udtKind
	node     ast.Node
	refersTo []string // names of UDTs referenced by-value (no pointer indirection)
}

// Validator accumulates errors across one Program walk rather than
// aborting on the first — the same collect-everything shape as
// SemanticAnalyzer in the teacher repo, so the CLI can report every
// problem in a program at once instead of one-at-a-time.
type Validator struct {
	ast.BaseVisitor

	errs []*Error
	udts map[string]*udtInfo // flat name -> info; namespaces are joined with "::"
	ns   []string            // current namespace path while walking
}

// New creates a Validator ready to walk one Program.
func New() *Validator {
	return &Validator{udts: map[string]*udtInfo{}}
}

// Validate walks prog and returns every diagnostic found; a nil/empty
// result means the program is semantically well-formed.
func Validate(prog *ast.Program) []*Error {
	v := New()
	v.collectUDTs(prog.Statements, nil)
	for _, s := range prog.Statements {
		if s != nil {
			s.Accept(v)
		}
	}
	v.checkCycles()
	return v.errs
}

func (v *Validator) qualify(name string) string {
	if len(v.ns) == 0 {
		return name
	}
	prefix := ""
	for _, n := range v.ns {
		prefix += n + "::"
	}
	return prefix + name
}

func (v *Validator) errf(loc token.Location, kind ErrorKind, format string, args ...interface{}) {
	v.errs = append(v.errs, &Error{Kind: kind, Loc: loc, Msg: fmt.Sprintf(format, args...)})
}

// collectUDTs does a pre-pass to register every struct/union/enum/bitfield/
// typedef name (qualified by enclosing namespace) before the main walk, so
// forward references across declaration order resolve like the language
// requires.
func (v *Validator) collectUDTs(stmts []ast.Statement, ns []string) {
	prev := v.ns
	v.ns = ns
	defer func() { v.ns = prev }()

	for _, s := range stmts {
		switch d := s.(type) {
		case *ast.StructDecl:
			v.udts[v.qualify(d.Name)] = &udtInfo{kind: udtStruct, node: d, refersTo: structMemberTypeNames(d.Members)}
			for _, p := range d.Inherits {
				if name := typeRefName(p); name != "" {
					v.udts[v.qualify(d.Name)].refersTo = append(v.udts[v.qualify(d.Name)].refersTo, name)
				}
			}
		case *ast.UnionDecl:
			v.udts[v.qualify(d.Name)] = &udtInfo{kind: udtUnion, node: d, refersTo: structMemberTypeNames(d.Members)}
		case *ast.EnumDecl:
			v.udts[v.qualify(d.Name)] = &udtInfo{kind: udtEnum, node: d}
		case *ast.BitfieldDecl:
			v.udts[v.qualify(d.Name)] = &udtInfo{kind: udtBitfield, node: d}
		case *ast.TypedefDecl:
			info := &udtInfo{kind: udtTypedef, node: d}
			if d.Target != nil {
				if name := typeRefName(d.Target); name != "" {
					info.refersTo = []string{name}
				}
			}
			v.udts[v.qualify(d.Name)] = info
		case *ast.NamespaceDecl:
			v.collectUDTs(d.Body, append(append([]string(nil), ns...), d.Path...))
		}
	}
}

// structMemberTypeNames collects the by-value UDT names referenced
// directly by a struct/union's members (pointer and array-of-pointer
// members don't count — a pointer breaks a cycle per spec §4.4).
func structMemberTypeNames(members []ast.Statement) []string {
	var names []string
	for _, m := range members {
		switch d := m.(type) {
		case *ast.VariableDecl:
			if name := typeRefName(d.Type); name != "" {
				names = append(names, name)
			}
		case *ast.ArrayVariableDecl:
			if name := typeRefName(d.Type); name != "" {
				names = append(names, name)
			}
		case *ast.MultiVariableDecl:
			names = append(names, structMemberTypeNames(d.Decls)...)
			// PointerVariableDecl members never contribute: the pointer is
			// the indirection that legally breaks a type cycle.
		}
	}
	return names
}

func typeRefName(t *ast.TypeRef) string {
	if t == nil || t.IsBuiltin {
		return ""
	}
	name := t.Name
	for _, p := range t.ScopePath {
		name = p + "::" + name
	}
	return name
}

// checkCycles detects a UDT that reaches itself through a chain of
// by-value (non-pointer) member references, per spec §4.4 "no direct type
// cycles without indirection (pointer breaks cycles)".
func (v *Validator) checkCycles() {
	const (
		white = iota
		gray
		black
	)
	color := map[string]int{}
	var loc token.Location
	var dfs func(name string) bool
	dfs = func(name string) bool {
		switch color[name] {
		case black:
			return false
		case gray:
			return true
		}
		color[name] = gray
		info := v.udts[name]
		if info != nil {
			if n, ok := info.node.(interface{ Location() token.Location }); ok {
				loc = n.Location()
			}
			for _, ref := range info.refersTo {
				if resolved := v.resolveName(ref); resolved != "" && dfs(resolved) {
					color[name] = black
					return true
				}
			}
		}
		color[name] = black
		return false
	}
	for name := range v.udts {
		if color[name] == white && dfs(name) {
			v.errf(loc, ErrCyclicType, "type %q contains itself without a pointer indirection", name)
		}
	}
}

// resolveName finds a UDT by bare or qualified name, searching outward
// through enclosing namespaces the way RValue resolution does (spec
// §4.6's "walking outward if not found").
func (v *Validator) resolveName(name string) string {
	if _, ok := v.udts[name]; ok {
		return name
	}
	for i := len(v.ns); i > 0; i-- {
		prefix := ""
		for _, n := range v.ns[:i] {
			prefix += n + "::"
		}
		if _, ok := v.udts[prefix+name]; ok {
			return prefix + name
		}
	}
	return ""
}

// --- ast.Visitor overrides ---

func (v *Validator) VisitNamespaceDecl(n *ast.NamespaceDecl) interface{} {
	prev := v.ns
	v.ns = append(append([]string(nil), prev...), n.Path...)
	for _, s := range n.Body {
		if s != nil {
			s.Accept(v)
		}
	}
	v.ns = prev
	return nil
}

func (v *Validator) VisitTypeRef(n *ast.TypeRef) interface{} {
	if !n.IsBuiltin && n.Typeof == nil {
		name := typeRefName(n)
		if v.resolveName(name) == "" {
			v.errf(n.Loc, ErrUnknownType, "unknown type %q", name)
		}
	}
	for _, a := range n.TemplateArgs {
		a.Accept(v)
	}
	return nil
}

func (v *Validator) VisitStructDecl(n *ast.StructDecl) interface{} {
	v.checkDuplicateMembers(n.Members)
	return v.BaseVisitor.VisitStructDecl(n)
}

func (v *Validator) VisitUnionDecl(n *ast.UnionDecl) interface{} {
	v.checkDuplicateMembers(n.Members)
	return v.BaseVisitor.VisitUnionDecl(n)
}

func (v *Validator) checkDuplicateMembers(members []ast.Statement) {
	seen := map[string]bool{}
	var check func(name string, loc token.Location)
	check = func(name string, loc token.Location) {
		if name == "" {
			return
		}
		if seen[name] {
			v.errf(loc, ErrDuplicateMember, "duplicate member %q", name)
			return
		}
		seen[name] = true
	}
	for _, m := range members {
		switch d := m.(type) {
		case *ast.VariableDecl:
			check(d.Name, d.Loc)
		case *ast.ArrayVariableDecl:
			check(d.Name, d.Loc)
		case *ast.PointerVariableDecl:
			check(d.Name, d.Loc)
		case *ast.MultiVariableDecl:
			for _, sub := range d.Decls {
				switch sd := sub.(type) {
				case *ast.VariableDecl:
					check(sd.Name, sd.Loc)
				case *ast.ArrayVariableDecl:
					check(sd.Name, sd.Loc)
				case *ast.PointerVariableDecl:
					check(sd.Name, sd.Loc)
				}
			}
		}
	}
}

func (v *Validator) VisitEnumDecl(n *ast.EnumDecl) interface{} {
	seen := map[string]bool{}
	bits := uint(64)
	if n.Underlying != nil && n.Underlying.IsBuiltin {
		bits = uint(n.Underlying.Builtin.Size() * 8)
	}
	for _, e := range n.Entries {
		if seen[e.Name] {
			v.errf(e.Loc, ErrDuplicateMember, "duplicate enum entry %q", e.Name)
		}
		seen[e.Name] = true
		if lit, ok := e.Value.(*ast.Literal); ok && lit.Kind == ast.LitInt && !lit.Int.FitsUnsigned(bits) {
			v.errf(e.Loc, ErrEnumOutOfRange, "enum entry %q value %s does not fit in %d bits", e.Name, lit.Int.String(), bits)
		}
		if e.Value != nil {
			e.Value.Accept(v)
		}
	}
	visitAttrsPublic(v, n.Attributes)
	return nil
}

func (v *Validator) VisitBitfieldDecl(n *ast.BitfieldDecl) interface{} {
	seen := map[string]bool{}
	var total uint64
	for _, f := range n.Fields {
		if !f.Padding {
			if seen[f.Name] {
				v.errf(f.Loc, ErrDuplicateMember, "duplicate bitfield field %q", f.Name)
			}
			seen[f.Name] = true
		}
		if lit, ok := f.Size.(*ast.Literal); ok && lit.Kind == ast.LitInt {
			total += lit.Int.Uint64()
		}
		if f.Size != nil {
			f.Size.Accept(v)
		}
	}
	// A bitfield's footprint is derived (ceil(total/8) bytes), so an
	// explicit overflow only happens if the declared bits exceed this
	// pass's own 1024-bit (128-byte) limit; the evaluator has no matching
	// check of its own.
	if total > 1024 {
		v.errf(n.Loc, ErrBitfieldOverflow, "bitfield %q declares %d bits, exceeding the 1024-bit limit", n.Name, total)
	}
	visitAttrsPublic(v, n.Attributes)
	return nil
}

func (v *Validator) VisitVariableDecl(n *ast.VariableDecl) interface{} {
	if n.Placement != nil {
		v.checkPurePlacement(n.Placement)
	}
	if n.Type != nil {
		n.Type.Accept(v)
	}
	return v.BaseVisitor.VisitVariableDecl(n)
}

func (v *Validator) VisitArrayVariableDecl(n *ast.ArrayVariableDecl) interface{} {
	if n.Placement != nil {
		v.checkPurePlacement(n.Placement)
	}
	return v.BaseVisitor.VisitArrayVariableDecl(n)
}

func (v *Validator) VisitPointerVariableDecl(n *ast.PointerVariableDecl) interface{} {
	if n.Placement != nil {
		v.checkPurePlacement(n.Placement)
	}
	return v.BaseVisitor.VisitPointerVariableDecl(n)
}

// checkPurePlacement rejects a placement-offset expression that calls a
// function (which might have side effects) per spec §4.4 "Placement-offset
// expressions are pure (no data reads, no function calls with side
// effects)", and rejects a string literal as the whole placement. Member
// and index access, and bare names, are walked into but not rejected, so
// a placement that reads data is accepted here.
func (v *Validator) checkPurePlacement(e ast.Expr) {
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case nil:
			return
		case *ast.FunctionCall:
			v.errf(n.Loc, ErrBadPlacement, "placement expression may not call functions")
		case *ast.Identifier, *ast.ScopeResolution:
			// Bare name/constant lookups are pure; reading an rvalue here
			// could still require pattern creation so it's deliberately
			// not flagged here, matching the evaluator's stance that only
			// string-valued or function-calling placements are rejected.
		case *ast.MemberAccess:
			walk(n.Target)
		case *ast.IndexAccess:
			walk(n.Target)
			walk(n.Index)
		case *ast.MathExpr:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryExpr:
			walk(n.Operand)
		case *ast.TernaryExpr:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *ast.CastExpr:
			walk(n.Operand)
		case *ast.SizeofExpr:
			walk(n.Operand)
		case *ast.AddressofExpr:
			walk(n.Operand)
		}
	}
	if lit, ok := e.(*ast.Literal); ok && lit.Kind == ast.LitString {
		v.errf(lit.Loc, ErrBadPlacement, "placement expression may not be a string")
		return
	}
	walk(e)
}

func visitAttrsPublic(v ast.Visitor, attrs []*ast.Attribute) {
	for _, a := range attrs {
		a.Accept(v)
	}
}
