package eval

import (
	"fmt"
	"strings"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/token"
)

// evalFunctionCall dispatches a call to either a user-defined function or a
// native one, applying spec §4.6's "Function semantics": arguments are
// evaluated strictly left-to-right before either kind is entered.
func (e *Evaluator) evalFunctionCall(n *ast.FunctionCall) (Value, *Error) {
	args := make([]Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := e.evaluate(a)
		if err != nil {
			return Value{}, err
		}
		args = append(args, v)
	}
	lookup := n.Name
	if len(n.ScopePath) > 0 {
		lookup = joinPath(n.ScopePath) + "::" + n.Name
	}
	if f := e.resolveFunction(lookup); f != nil {
		return e.callFunction(f, args, n.Loc)
	}
	err := newError(ErrNoSuchFunction, n.Loc, fmt.Sprintf("no such function %q", lookup))
	err.Suggestion = e.suggestNames(lookup, e.functions)
	return Value{}, err
}

func (e *Evaluator) callFunction(f *function, args []Value, loc token.Location) (Value, *Error) {
	if !f.arity.matches(len(args)) {
		return Value{}, newError(ErrArityMismatch, loc, fmt.Sprintf("%q expects %s, got %d argument(s)", f.name, f.arity.describe(), len(args)))
	}
	if f.native != nil {
		return f.native(e, loc, args)
	}
	if err := e.enterCall(loc); err != nil {
		return Value{}, err
	}
	defer e.exitCall()

	e.pushScope()
	e.inFunctionBody++
	for i, p := range f.params {
		v := Value{}
		if i < len(args) {
			v = args[i]
		} else if p.Default != nil {
			dv, err := e.evaluate(p.Default)
			if err != nil {
				e.inFunctionBody--
				e.popScope()
				return Value{}, err
			}
			v = dv
		}
		if perr := e.bindParam(p, v, loc); perr != nil {
			e.inFunctionBody--
			e.popScope()
			return Value{}, perr
		}
	}

	ctrl, err := e.execBlock(f.body)
	e.inFunctionBody--
	e.popScope()
	if err != nil {
		return Value{}, err
	}
	if ctrl.kind == ctrlReturn && ctrl.hasValue {
		return ctrl.value, nil
	}
	return Value{}, nil
}

// bindParam materializes one formal parameter as a local scalar pattern
// holding the argument's value, so the body can read it by name like any
// other variable.
func (e *Evaluator) bindParam(p *ast.FunctionParam, v Value, loc token.Location) *Error {
	if v.Kind == ValString {
		offset := e.Stack.Append([]byte(v.Str))
		pat, perr := e.createType(&ast.TypeRef{Builtin: token.TypeStr, IsBuiltin: true}, p.Name, offset)
		if perr != nil {
			return perr
		}
		pat.Local = true
		return e.addPattern(pat)
	}
	bt := token.TypeS128
	if p.Type != nil && p.Type.IsBuiltin {
		bt = p.Type.Builtin
	} else {
		switch v.Kind {
		case ValFloat:
			bt = token.TypeDouble
		case ValBool:
			bt = token.TypeBool
		case ValChar:
			bt = token.TypeChar
		case ValChar16:
			bt = token.TypeChar16
		}
	}
	size := bt.Size()
	if size == 0 {
		size = 1
	}
	offset := e.Stack.Append(make([]byte, size))
	pat, perr := e.createBuiltin(bt, p.Name, offset, loc)
	if perr != nil {
		return perr
	}
	pat.Local = true
	if err := e.writeValue(pat, v, loc); err != nil {
		return err
	}
	return e.addPattern(pat)
}

func (a arity) describe() string {
	switch a.kind {
	case arityExact:
		return fmt.Sprintf("exactly %d argument(s)", a.n)
	case arityAtLeast:
		return fmt.Sprintf("at least %d argument(s)", a.n)
	case arityLessThan:
		return fmt.Sprintf("fewer than %d argument(s)", a.n)
	default:
		return "any number of arguments"
	}
}

// registerNatives installs the small native standard library the evaluator
// ships with (spec §4.6 "Calling a built-in or plugin-provided function"),
// grounded on original_source/.../content_registry.hpp's addFunction-style
// name -> (arity, callback) registrations.
func (e *Evaluator) registerNatives() {
	e.functions["std::print"] = &function{
		name: "std::print", arity: arity{kind: arityAtLeast, n: 1},
		native: func(ev *Evaluator, loc token.Location, args []Value) (Value, *Error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = a.String()
			}
			ev.Output = append(ev.Output, strings.Join(parts, " "))
			return Value{}, nil
		},
	}
	e.functions["std::assert"] = &function{
		name: "std::assert", arity: arity{kind: arityExact, n: 2},
		native: func(ev *Evaluator, loc token.Location, args []Value) (Value, *Error) {
			if !args[0].Truthy() {
				return Value{}, newError(ErrInvalidOperand, loc, fmt.Sprintf("assertion failed: %s", args[1].String()))
			}
			return BoolV(true), nil
		},
	}
	e.functions["std::abort"] = &function{
		name: "std::abort", arity: arity{kind: arityLessThan, n: 2},
		native: func(ev *Evaluator, loc token.Location, args []Value) (Value, *Error) {
			msg := "aborted"
			if len(args) == 1 {
				msg = args[0].String()
			}
			return Value{}, newError(ErrInvalidOperand, loc, msg)
		},
	}
	e.functions["std::mem::base_address"] = &function{
		name: "std::mem::base_address", arity: arity{kind: arityExact, n: 0},
		native: func(ev *Evaluator, loc token.Location, args []Value) (Value, *Error) {
			return Int(numeric.FromUint64(ev.Provider.BaseAddress())), nil
		},
	}
	e.functions["std::mem::size"] = &function{
		name: "std::mem::size", arity: arity{kind: arityExact, n: 0},
		native: func(ev *Evaluator, loc token.Location, args []Value) (Value, *Error) {
			return Int(numeric.FromUint64(ev.Provider.Size())), nil
		},
	}
}
