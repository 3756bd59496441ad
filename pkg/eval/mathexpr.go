package eval

import (
	"fmt"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/token"
)

// evalMathExpr evaluates a binary operator application, applying the
// usual arithmetic conversions and the string repetition/concatenation
// rules of spec §4.6.
func (e *Evaluator) evalMathExpr(n *ast.MathExpr) (Value, *Error) {
	l, err := e.evaluate(n.Left)
	if err != nil {
		return Value{}, err
	}
	// Short-circuit logical operators: the right operand is only
	// evaluated when it can affect the result.
	switch n.Op {
	case "&&":
		if !l.Truthy() {
			return BoolV(false), nil
		}
		r, err := e.evaluate(n.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolV(r.Truthy()), nil
	case "||":
		if l.Truthy() {
			return BoolV(true), nil
		}
		r, err := e.evaluate(n.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolV(r.Truthy()), nil
	}
	r, err := e.evaluate(n.Right)
	if err != nil {
		return Value{}, err
	}
	return e.applyBinaryOp(n.Loc, n.Op, l, r)
}

func (e *Evaluator) applyBinaryOp(loc token.Location, op string, l, r Value) (Value, *Error) {
	switch op {
	case "+":
		if v, err, handled := stringConcatOrRepeat(loc, op, l, r); handled {
			return v, err
		}
		return binaryNumeric(loc, op, l, r, true,
			func(a, b numeric.Int128) (numeric.Int128, *Error) { return a.Add(b), nil },
			func(a, b float64) float64 { return a + b })
	case "-":
		return binaryNumeric(loc, op, l, r, true,
			func(a, b numeric.Int128) (numeric.Int128, *Error) { return a.Sub(b), nil },
			func(a, b float64) float64 { return a - b })
	case "*":
		if v, err, handled := stringConcatOrRepeat(loc, op, l, r); handled {
			return v, err
		}
		return binaryNumeric(loc, op, l, r, true,
			func(a, b numeric.Int128) (numeric.Int128, *Error) { return a.Mul(b), nil },
			func(a, b float64) float64 { return a * b })
	case "/":
		return binaryNumeric(loc, op, l, r, true,
			func(a, b numeric.Int128) (numeric.Int128, *Error) {
				if b.IsZero() {
					return numeric.Int128{}, newError(ErrDivisionByZero, loc, "division by zero")
				}
				return a.Div(b), nil
			},
			func(a, b float64) float64 { return a / b })
	case "%":
		return binaryNumeric(loc, op, l, r, false,
			func(a, b numeric.Int128) (numeric.Int128, *Error) {
				if b.IsZero() {
					return numeric.Int128{}, newError(ErrDivisionByZero, loc, "modulo by zero")
				}
				return a.Mod(b), nil
			}, nil)
	case "&":
		return e.bitwise(loc, op, l, r, func(a, b numeric.Int128) numeric.Int128 { return a.And(b) })
	case "|":
		return e.bitwise(loc, op, l, r, func(a, b numeric.Int128) numeric.Int128 { return a.Or(b) })
	case "^":
		return e.bitwise(loc, op, l, r, func(a, b numeric.Int128) numeric.Int128 { return a.Xor(b) })
	case "^^":
		return BoolV(l.Truthy() != r.Truthy()), nil
	case "<<":
		return e.shift(loc, l, r, true)
	case ">>":
		return e.shift(loc, l, r, false)
	case "==":
		return BoolV(valuesEqual(l, r)), nil
	case "!=":
		return BoolV(!valuesEqual(l, r)), nil
	case "<", "<=", ">", ">=":
		return e.compare(loc, op, l, r)
	default:
		return Value{}, newError(ErrInvalidOperand, loc, fmt.Sprintf("unknown operator %q", op))
	}
}

func (e *Evaluator) bitwise(loc token.Location, op string, l, r Value, f func(a, b numeric.Int128) numeric.Int128) (Value, *Error) {
	if l.Kind == ValFloat || r.Kind == ValFloat {
		return Value{}, newError(ErrInvalidFloatOp, loc, fmt.Sprintf("invalid floating point operation %q", op))
	}
	if l.Kind == ValString || r.Kind == ValString || !l.isNumeric() || !r.isNumeric() {
		return Value{}, newError(ErrInvalidOperand, loc, fmt.Sprintf("invalid operand for %q", op))
	}
	li, _ := l.AsInt128()
	ri, _ := r.AsInt128()
	return Int(f(li, ri)), nil
}

func (e *Evaluator) shift(loc token.Location, l, r Value, left bool) (Value, *Error) {
	if l.Kind == ValFloat || r.Kind == ValFloat {
		return Value{}, newError(ErrInvalidFloatOp, loc, "invalid floating point operation shift")
	}
	if l.Kind == ValString || r.Kind == ValString || !l.isNumeric() || !r.isNumeric() {
		return Value{}, newError(ErrInvalidOperand, loc, "invalid operand for shift")
	}
	li, _ := l.AsInt128()
	ri, _ := r.AsInt128()
	n := uint(ri.Uint64())
	if li.Signed() && n >= 128 {
		return Value{}, newError(ErrInvalidOperand, loc, "shift amount exceeds operand width")
	}
	if left {
		return Int(li.Shl(n)), nil
	}
	return Int(li.Shr(n)), nil
}

func (e *Evaluator) compare(loc token.Location, op string, l, r Value) (Value, *Error) {
	if l.Kind == ValString && r.Kind == ValString {
		var result bool
		switch op {
		case "<":
			result = l.Str < r.Str
		case "<=":
			result = l.Str <= r.Str
		case ">":
			result = l.Str > r.Str
		case ">=":
			result = l.Str >= r.Str
		}
		return BoolV(result), nil
	}
	if l.Kind == ValString || r.Kind == ValString {
		return Value{}, newError(ErrInvalidOperand, loc, "invalid operand for comparison: string mixed with non-string")
	}
	if l.Kind == ValFloat || r.Kind == ValFloat {
		lf, _ := l.AsFloat64()
		rf, _ := r.AsFloat64()
		return BoolV(floatCompare(op, lf, rf)), nil
	}
	li, _ := l.AsInt128()
	ri, _ := r.AsInt128()
	c := li.Cmp(ri)
	var result bool
	switch op {
	case "<":
		result = c < 0
	case "<=":
		result = c <= 0
	case ">":
		result = c > 0
	case ">=":
		result = c >= 0
	}
	return BoolV(result), nil
}

func floatCompare(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func valuesEqual(l, r Value) bool {
	if l.Kind == ValString || r.Kind == ValString {
		return l.Kind == ValString && r.Kind == ValString && l.Str == r.Str
	}
	if l.Kind == ValFloat || r.Kind == ValFloat {
		lf, _ := l.AsFloat64()
		rf, _ := r.AsFloat64()
		return lf == rf
	}
	li, lok := l.AsInt128()
	ri, rok := r.AsInt128()
	if lok && rok {
		return li.Equal(ri)
	}
	return false
}
