package eval

import (
	"fmt"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/token"
)

// evaluate computes a single expression node to a Value (spec §4.6
// "Expression evaluation").
func (e *Evaluator) evaluate(expr ast.Expr) (Value, *Error) {
	if err := e.checkCancelled(expr.Location()); err != nil {
		return Value{}, err
	}
	switch n := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(n), nil
	case *ast.Identifier:
		return e.evalIdentifier(n)
	case *ast.ScopeResolution:
		return e.evalScopeResolution(n)
	case *ast.MemberAccess, *ast.IndexAccess:
		p, err := e.resolvePattern(expr)
		if err != nil {
			return Value{}, err
		}
		return e.valueOfPattern(p, expr.Location())
	case *ast.MathExpr:
		return e.evalMathExpr(n)
	case *ast.UnaryExpr:
		return e.evalUnaryExpr(n)
	case *ast.TernaryExpr:
		return e.evalTernaryExpr(n)
	case *ast.FunctionCall:
		return e.evalFunctionCall(n)
	case *ast.SizeofExpr:
		return e.evalSizeof(n)
	case *ast.AddressofExpr:
		return e.evalAddressof(n)
	case *ast.TypeofExpr:
		return Value{}, newError(ErrTypeMismatch, n.Loc, "typeof is only valid in type position")
	case *ast.CastExpr:
		return e.evalCast(n)
	default:
		return Value{}, newError(ErrTypeMismatch, expr.Location(), "unsupported expression")
	}
}

func (e *Evaluator) evalLiteral(n *ast.Literal) Value {
	switch n.Kind {
	case ast.LitInt:
		return Int(n.Int)
	case ast.LitFloat:
		return FloatV(n.Flt)
	case ast.LitString:
		return StringV(n.Str)
	case ast.LitChar:
		return CharV(n.Chr)
	case ast.LitBool:
		return BoolV(n.Bool)
	default:
		return Value{}
	}
}

func (e *Evaluator) evalIdentifier(n *ast.Identifier) (Value, *Error) {
	if n.Name == "$" {
		return Int(numeric.FromUint64(e.dataOffset)), nil
	}
	if v, ok := e.globals[n.Name]; ok {
		return v, nil
	}
	p, err := e.resolveNamePattern(n.Name, n.Loc)
	if err != nil {
		return Value{}, err
	}
	return e.valueOfPattern(p, n.Loc)
}

// evalScopeResolution resolves `A::B::C` to an enum entry's value, the
// only place the pattern language lets a scope-qualified path stand in
// for a plain value (spec §4.6 step 4).
func (e *Evaluator) evalScopeResolution(n *ast.ScopeResolution) (Value, *Error) {
	if len(n.Path) >= 2 {
		typeName := joinPath(n.Path[:len(n.Path)-1])
		entryName := n.Path[len(n.Path)-1]
		if udt := e.resolveUDT(typeName); udt != nil && udt.kind == udtEnum {
			next := numeric.FromUint64(0)
			for _, ent := range udt.enumD.Entries {
				v := Int(next)
				if ent.Value != nil {
					var verr *Error
					if v, verr = e.evaluate(ent.Value); verr != nil {
						return Value{}, verr
					}
				}
				if ent.Name == entryName {
					return v, nil
				}
				if iv, ok := v.AsInt128(); ok {
					next = iv.Add(numeric.FromUint64(1))
				}
			}
			return Value{}, newError(ErrNoSuchVariable, n.Loc, fmt.Sprintf("enum %q has no entry %q", typeName, entryName))
		}
	}
	return Value{}, newError(ErrNoSuchVariable, n.Loc, fmt.Sprintf("%s does not resolve to a value", joinPath(n.Path)))
}

// valueOfPattern reads a resolved pattern's current value back through the
// provider it belongs on (spec §4.6 RValue resolution terminal step).
func (e *Evaluator) valueOfPattern(p *pattern.Pattern, loc token.Location) (Value, *Error) {
	prov := e.providerFor(p)
	switch p.Kind {
	case pattern.KindUnsigned, pattern.KindSigned, pattern.KindBitfieldField:
		var v numeric.Int128
		var rerr error
		if p.Kind == pattern.KindBitfieldField {
			data, _, err := prov.Read(p.BitfieldField.Owner.Offset, p.BitfieldField.Owner.Size)
			if err != nil {
				rerr = err
			} else {
				v = pattern.ExtractBits(data, p.BitfieldField.BitOffset, p.BitfieldField.BitSize)
			}
		} else {
			v, rerr = p.ReadInt(prov, e.DefaultEndian)
		}
		if rerr != nil {
			return Value{}, newError(ErrProviderUnreadable, loc, rerr.Error())
		}
		return Int(v), nil
	case pattern.KindFloat:
		f, rerr := p.ReadFloat(prov, e.DefaultEndian)
		if rerr != nil {
			return Value{}, newError(ErrProviderUnreadable, loc, rerr.Error())
		}
		return FloatV(f), nil
	case pattern.KindBoolean:
		data, _, rerr := prov.Read(p.Offset, 1)
		if rerr != nil {
			return Value{}, newError(ErrProviderUnreadable, loc, rerr.Error())
		}
		return BoolV(data[0] != 0), nil
	case pattern.KindCharacter:
		data, _, rerr := prov.Read(p.Offset, 1)
		if rerr != nil {
			return Value{}, newError(ErrProviderUnreadable, loc, rerr.Error())
		}
		return CharV(rune(data[0])), nil
	case pattern.KindCharacter16:
		data, _, rerr := prov.Read(p.Offset, 2)
		if rerr != nil {
			return Value{}, newError(ErrProviderUnreadable, loc, rerr.Error())
		}
		v := numeric.FromBytes(data, p.EffectiveEndian(e.DefaultEndian) != pattern.EndianBig, false)
		return Char16V(rune(v.Uint64())), nil
	case pattern.KindString, pattern.KindString16:
		s, rerr := p.Format(prov, e.DefaultEndian)
		if rerr != nil {
			return Value{}, newError(ErrProviderUnreadable, loc, rerr.Error())
		}
		return StringV(s), nil
	case pattern.KindEnum:
		data, _, rerr := prov.Read(p.Offset, p.Enum.UnderlyingSize)
		if rerr != nil {
			return Value{}, newError(ErrProviderUnreadable, loc, rerr.Error())
		}
		v := numeric.FromBytes(data, p.EffectiveEndian(e.DefaultEndian) != pattern.EndianBig, false)
		return Int(v), nil
	case pattern.KindPointer:
		return Int(numeric.FromUint64(p.Pointer.PointedAtAddress)), nil
	default:
		return PatternV(p), nil
	}
}

func (e *Evaluator) evalUnaryExpr(n *ast.UnaryExpr) (Value, *Error) {
	v, err := e.evaluate(n.Operand)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case "-":
		if v.Kind == ValFloat {
			return FloatV(-v.Float), nil
		}
		i, ok := v.AsInt128()
		if !ok {
			return Value{}, newError(ErrInvalidOperand, n.Loc, "invalid operand for unary -")
		}
		return Int(i.Neg()), nil
	case "!":
		return BoolV(!v.Truthy()), nil
	case "~":
		if v.Kind == ValFloat {
			return Value{}, newError(ErrInvalidFloatOp, n.Loc, "invalid floating point operation ~")
		}
		i, ok := v.AsInt128()
		if !ok {
			return Value{}, newError(ErrInvalidOperand, n.Loc, "invalid operand for ~")
		}
		return Int(i.Not()), nil
	case "+":
		return v, nil
	default:
		return Value{}, newError(ErrInvalidOperand, n.Loc, fmt.Sprintf("unknown unary operator %q", n.Op))
	}
}

func (e *Evaluator) evalTernaryExpr(n *ast.TernaryExpr) (Value, *Error) {
	cond, err := e.evaluate(n.Cond)
	if err != nil {
		return Value{}, err
	}
	if cond.Truthy() {
		return e.evaluate(n.Then)
	}
	return e.evaluate(n.Else)
}

func (e *Evaluator) evalSizeof(n *ast.SizeofExpr) (Value, *Error) {
	if n.Type != nil {
		size, err := e.sizeOfType(n.Type, n.Loc)
		if err != nil {
			return Value{}, err
		}
		return Int(numeric.FromUint64(size)), nil
	}
	p, err := e.resolvePattern(n.Operand)
	if err != nil {
		return Value{}, err
	}
	return Int(numeric.FromUint64(p.Size)), nil
}

func (e *Evaluator) evalAddressof(n *ast.AddressofExpr) (Value, *Error) {
	if id, ok := n.Operand.(*ast.Identifier); ok && id.Name == "$" {
		return Int(numeric.FromUint64(e.dataOffset)), nil
	}
	p, err := e.resolvePattern(n.Operand)
	if err != nil {
		return Value{}, err
	}
	return Int(numeric.FromUint64(p.Offset)), nil
}

func (e *Evaluator) evalCast(n *ast.CastExpr) (Value, *Error) {
	v, err := e.evaluate(n.Operand)
	if err != nil {
		return Value{}, err
	}
	if !n.Type.IsBuiltin {
		return v, nil
	}
	return e.castBuiltin(n.Type.Builtin, v, n.Loc)
}
