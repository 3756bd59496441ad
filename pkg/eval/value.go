// Package eval implements the pattern language's tree-walking interpreter
// (spec §4.6): it executes statements, evaluates expressions against a
// stack of scopes, reads bytes through a provider.Provider, and emits a
// pattern.Pattern tree. Errors propagate as a single (value, *Error) pair
// threaded through every execute/evaluate/createPatterns call, the
// "exception for control flow" design note's prescribed replacement for
// the source's LogConsole::abortEvaluation longjmp-style unwinding
// (original_source/plugins/libimhex/include/hex/pattern_language/ast_node.hpp).
package eval

import (
	"fmt"
	"strings"

	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/token"
)

// ValueKind tags Value's active payload.
type ValueKind int

const (
	ValInt ValueKind = iota
	ValFloat
	ValBool
	ValChar
	ValChar16
	ValString
	ValPattern
)

// Value is the tagged sum every expression evaluates to (spec §3 "Literal
// value"): u128/s128 collapse into one Int128-backed variant since
// numeric.Int128 already carries its own signed/unsigned interpretation.
type Value struct {
	Kind    ValueKind
	Int     numeric.Int128
	Float   float64
	Bool    bool
	Str     string
	Pattern *pattern.Pattern
}

func Int(v numeric.Int128) Value    { return Value{Kind: ValInt, Int: v} }
func FloatV(v float64) Value        { return Value{Kind: ValFloat, Float: v} }
func BoolV(v bool) Value            { return Value{Kind: ValBool, Bool: v} }
func CharV(r rune) Value            { return Value{Kind: ValChar, Int: numeric.FromInt64(int64(r))} }
func Char16V(r rune) Value          { return Value{Kind: ValChar16, Int: numeric.FromInt64(int64(r))} }
func StringV(s string) Value        { return Value{Kind: ValString, Str: s} }
func PatternV(p *pattern.Pattern) Value { return Value{Kind: ValPattern, Pattern: p} }

// Truthy converts a Value to a boolean for if/while conditions.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValBool:
		return v.Bool
	case ValInt, ValChar, ValChar16:
		return !v.Int.IsZero()
	case ValFloat:
		return v.Float != 0
	case ValString:
		return v.Str != ""
	case ValPattern:
		return v.Pattern != nil
	}
	return false
}

// AsInt128 coerces a numeric-ish value (int/bool/char) to an Int128,
// used for array sizes, indices, and placement offsets.
func (v Value) AsInt128() (numeric.Int128, bool) {
	switch v.Kind {
	case ValInt, ValChar, ValChar16:
		return v.Int, true
	case ValBool:
		if v.Bool {
			return numeric.FromUint64(1), true
		}
		return numeric.FromUint64(0), true
	case ValFloat:
		return numeric.FromInt64(int64(v.Float)), true
	}
	return numeric.Int128{}, false
}

// AsUint64 is a convenience wrapper for offsets/sizes/indices.
func (v Value) AsUint64() (uint64, bool) {
	i, ok := v.AsInt128()
	if !ok {
		return 0, false
	}
	return i.Uint64(), true
}

func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case ValFloat:
		return v.Float, true
	case ValInt, ValChar, ValChar16:
		return v.Int.Float64(), true
	case ValBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (v Value) String() string {
	switch v.Kind {
	case ValInt, ValChar, ValChar16:
		return v.Int.String()
	case ValFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValString:
		return v.Str
	case ValPattern:
		return v.Pattern.Name()
	}
	return "<void>"
}

func (v Value) isNumeric() bool {
	switch v.Kind {
	case ValInt, ValFloat, ValBool, ValChar, ValChar16:
		return true
	}
	return false
}

// binaryNumeric applies the usual arithmetic conversions (spec §4.6
// "Numeric semantics"): if either operand is a float, both are promoted
// to float64 and intOp is ignored; otherwise both go through Int128.
// floatAllowed=false rejects a float operand outright with InvalidFloatOp
// (bitwise/shift/mod operators never accept floats).
func binaryNumeric(loc token.Location, op string, l, r Value, floatAllowed bool, intOp func(a, b numeric.Int128) (numeric.Int128, *Error), floatOp func(a, b float64) float64) (Value, *Error) {
	if l.Kind == ValString || r.Kind == ValString {
		return Value{}, newError(ErrInvalidOperand, loc, fmt.Sprintf("invalid operand for %q: string mixed with non-string", op))
	}
	if !l.isNumeric() || !r.isNumeric() {
		return Value{}, newError(ErrInvalidOperand, loc, fmt.Sprintf("invalid operand for %q", op))
	}
	if l.Kind == ValFloat || r.Kind == ValFloat {
		if !floatAllowed {
			return Value{}, newError(ErrInvalidFloatOp, loc, fmt.Sprintf("invalid floating point operation %q", op))
		}
		lf, _ := l.AsFloat64()
		rf, _ := r.AsFloat64()
		return FloatV(floatOp(lf, rf)), nil
	}
	li, _ := l.AsInt128()
	ri, _ := r.AsInt128()
	result, err := intOp(li, ri)
	if err != nil {
		return Value{}, err
	}
	return Int(result), nil
}

// stringConcatOrRepeat implements "string * n" repetition and
// "string + string" concatenation (spec §4.6).
func stringConcatOrRepeat(loc token.Location, op string, l, r Value) (Value, *Error, bool) {
	switch {
	case op == "+" && l.Kind == ValString && r.Kind == ValString:
		return StringV(l.Str + r.Str), nil, true
	case op == "*" && l.Kind == ValString && r.isNumeric():
		n, _ := r.AsInt128()
		return StringV(strings.Repeat(l.Str, int(n.Uint64()))), nil, true
	case op == "*" && r.Kind == ValString && l.isNumeric():
		n, _ := l.AsInt128()
		return StringV(strings.Repeat(r.Str, int(n.Uint64()))), nil, true
	case (l.Kind == ValString) != (r.Kind == ValString):
		return Value{}, newError(ErrInvalidOperand, loc, fmt.Sprintf("invalid operand for %q: string mixed with non-string", op)), true
	}
	return Value{}, nil, false
}
