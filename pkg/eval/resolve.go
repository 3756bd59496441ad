package eval

import (
	"fmt"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/token"
)

// resolvePattern implements spec §4.6 "RValue resolution" for identifier
// chains like `a.b[2].c`: component by component against the scope stack,
// top of stack first. A scope-qualified path such as `A::B::c` does not
// name a pattern and is rejected with NoSuchVariable here;
// evalScopeResolution reads enum entries. `$` and string/numeric literals
// are not patterns and are handled directly in expressions.go before
// falling back here.
func (e *Evaluator) resolvePattern(expr ast.Expr) (*pattern.Pattern, *Error) {
	switch n := expr.(type) {
	case *ast.Identifier:
		return e.resolveNamePattern(n.Name, n.Loc)
	case *ast.MemberAccess:
		return e.resolveMemberPattern(n)
	case *ast.IndexAccess:
		target, err := e.resolvePattern(n.Target)
		if err != nil {
			return nil, err
		}
		idxVal, err := e.evaluate(n.Index)
		if err != nil {
			return nil, err
		}
		if idxVal.Kind == ValString {
			return nil, newError(ErrInvalidOperand, n.Loc, "cannot use string to index array")
		}
		idx, _ := idxVal.AsUint64()
		entry, ferr := target.ArrayEntry(idx)
		if ferr != nil {
			return nil, newError(ErrIndexOutOfBounds, n.Loc, ferr.Error())
		}
		return entry, nil
	case *ast.ScopeResolution:
		return nil, newError(ErrNoSuchVariable, n.Loc, fmt.Sprintf("%s does not name a pattern", joinPath(n.Path)))
	default:
		return nil, newError(ErrTypeMismatch, expr.Location(), "expression does not resolve to a pattern")
	}
}

func joinPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "::"
		}
		s += p
	}
	return s
}

func (e *Evaluator) resolveNamePattern(name string, loc token.Location) (*pattern.Pattern, *Error) {
	if name == "parent" || name == "this" {
		return nil, newError(ErrNoSuchVariable, loc, name+" must be used as a.b member access prefix")
	}
	if p := e.findInScope(name); p != nil {
		return p, nil
	}
	err := newError(ErrNoSuchVariable, loc, fmt.Sprintf("no such variable %q", name))
	err.Suggestion = e.suggestVariable(name)
	return nil, err
}

func (e *Evaluator) suggestVariable(name string) string {
	if e.Suggest == nil {
		return ""
	}
	var names []string
	for i := range e.scopes {
		for _, p := range e.scopes[i] {
			names = append(names, p.VariableName)
		}
	}
	if s, ok := e.Suggest(name, names); ok {
		return s
	}
	return ""
}

// resolveMemberPattern handles `.name` access, including the `this.x` and
// `parent.x` prefixes (spec §4.6 step 1: "if parent -> pop one scope
// conceptually for the next step").
func (e *Evaluator) resolveMemberPattern(m *ast.MemberAccess) (*pattern.Pattern, *Error) {
	if id, ok := m.Target.(*ast.Identifier); ok {
		switch id.Name {
		case "this":
			if p := e.findInTopScope(m.Name); p != nil {
				return p, nil
			}
			err := newError(ErrNoSuchVariable, m.Loc, fmt.Sprintf("no such member %q", m.Name))
			err.Suggestion = e.suggestVariable(m.Name)
			return nil, err
		case "parent":
			if p := e.findInOuterScopes(m.Name); p != nil {
				return p, nil
			}
			err := newError(ErrNoSuchVariable, m.Loc, fmt.Sprintf("no such member %q in enclosing scope", m.Name))
			err.Suggestion = e.suggestVariable(m.Name)
			return nil, err
		}
	}
	target, err := e.resolvePattern(m.Target)
	if err != nil {
		return nil, err
	}
	child := findChildByName(target, m.Name)
	if child == nil {
		err := newError(ErrNoSuchVariable, m.Loc, fmt.Sprintf("%q has no member %q", target.Name(), m.Name))
		return nil, err
	}
	return child, nil
}

// findChildByName descends one level into a container pattern (struct,
// union, bitfield, or a pointer's pointee) looking for a named child.
func findChildByName(p *pattern.Pattern, name string) *pattern.Pattern {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case pattern.KindPointer:
		return findChildByName(p.Pointer.Pointee, name)
	}
	for _, c := range p.Children() {
		if c.VariableName == name {
			return c
		}
	}
	return nil
}

func (e *Evaluator) findInTopScope(name string) *pattern.Pattern {
	if len(e.scopes) == 0 {
		return nil
	}
	top := e.scopes[len(e.scopes)-1]
	for i := len(top) - 1; i >= 0; i-- {
		if top[i].VariableName == name {
			return top[i]
		}
	}
	return nil
}

func (e *Evaluator) findInOuterScopes(name string) *pattern.Pattern {
	for i := len(e.scopes) - 2; i >= 0; i-- {
		for j := len(e.scopes[i]) - 1; j >= 0; j-- {
			if e.scopes[i][j].VariableName == name {
				return e.scopes[i][j]
			}
		}
	}
	return nil
}
