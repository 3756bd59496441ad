package eval

import (
	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/pattern"
)

// Run executes prog against the evaluator's bound Provider, returning the
// top-level pattern tree (spec §4.6: running a program is "a pre-pass that
// indexes every UDT and function declaration by qualified name ... then a
// single pass over the top-level statement list").
func (e *Evaluator) Run(prog *ast.Program) ([]*pattern.Pattern, *Error) {
	e.collectDecls(prog.Statements, nil)
	e.pushScope()
	if _, err := e.execBlock(prog.Statements); err != nil {
		e.popScope()
		return nil, err
	}
	return e.popScope(), nil
}

// collectDecls indexes every struct/union/enum/bitfield/typedef and
// function declaration by namespace-qualified name before execution, so
// forward references across declaration order resolve (mirrors
// pkg/validator's collectUDTs pre-pass).
func (e *Evaluator) collectDecls(stmts []ast.Statement, ns []string) {
	prev := e.nsPath
	e.nsPath = ns
	defer func() { e.nsPath = prev }()

	for _, s := range stmts {
		switch d := s.(type) {
		case *ast.StructDecl:
			e.udts[e.qualify(d.Name)] = &udtDecl{kind: udtStruct, structD: d}
		case *ast.UnionDecl:
			e.udts[e.qualify(d.Name)] = &udtDecl{kind: udtUnion, unionD: d}
		case *ast.EnumDecl:
			e.udts[e.qualify(d.Name)] = &udtDecl{kind: udtEnum, enumD: d}
		case *ast.BitfieldDecl:
			e.udts[e.qualify(d.Name)] = &udtDecl{kind: udtBitfield, bitfieldD: d}
		case *ast.TypedefDecl:
			e.udts[e.qualify(d.Name)] = &udtDecl{kind: udtTypedef, typedefD: d}
		case *ast.FunctionDecl:
			qname := e.qualify(d.Name)
			e.functions[qname] = &function{name: qname, params: d.Params, body: d.Body, arity: funcArity(d.Params)}
		case *ast.NamespaceDecl:
			e.collectDecls(d.Body, append(append([]string(nil), ns...), d.Path...))
		}
	}
}

// funcArity derives a user function's arity-spec from its parameter list:
// exact when every parameter is required, at-least the required count when
// trailing parameters carry a default (spec §4.6 "custom-functions: name ->
// (arity-spec, body)").
func funcArity(params []*ast.FunctionParam) arity {
	required := 0
	hasDefault := false
	for _, p := range params {
		if p.Default != nil {
			hasDefault = true
			continue
		}
		if hasDefault {
			// A required parameter after a defaulted one is a malformed
			// declaration the parser already prevents grammatically; treat
			// it as required for arity purposes regardless.
		}
		required++
	}
	if hasDefault {
		return arity{kind: arityAtLeast, n: required}
	}
	return arity{kind: arityExact, n: len(params)}
}
