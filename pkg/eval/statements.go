package eval

import (
	"math"
	"strings"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/token"
)

// ctrlKind is the interpreter's internal refinement of spec §4.6's
// two-state statement-execution contract `(stopped, optional value)`: a
// tree-walker needs to tell break, continue and return apart to unwind
// nested loops and function bodies correctly, so execStmt/execBlock thread
// a four-state signal instead. Externally this still behaves exactly like
// the spec's collapsed pair — ctrlBreak/ctrlContinue never escape the loop
// that catches them, and only ctrlReturn crosses a function boundary.
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

type ctrlSignal struct {
	kind     ctrlKind
	value    Value
	hasValue bool
}

var noCtrl = ctrlSignal{kind: ctrlNone}

// execBlock runs stmts in order, stopping early the moment one yields a
// non-none control signal (spec §4.6 "statement execution").
func (e *Evaluator) execBlock(stmts []ast.Statement) (ctrlSignal, *Error) {
	for _, s := range stmts {
		ctrl, err := e.execStmt(s)
		if err != nil {
			return noCtrl, err
		}
		if ctrl.kind != ctrlNone {
			return ctrl, nil
		}
	}
	return noCtrl, nil
}

// execStmt executes one statement, returning a control signal for its
// enclosing loop/function/block to react to.
func (e *Evaluator) execStmt(stmt ast.Statement) (ctrlSignal, *Error) {
	if err := e.checkCancelled(stmt.Location()); err != nil {
		return noCtrl, err
	}
	switch s := stmt.(type) {
	case *ast.VariableDecl, *ast.ArrayVariableDecl, *ast.PointerVariableDecl, *ast.MultiVariableDecl:
		pats, err := e.createPatterns(stmt)
		if err != nil {
			return noCtrl, err
		}
		for _, p := range pats {
			if perr := e.addPattern(p); perr != nil {
				return noCtrl, perr
			}
		}
		return noCtrl, nil

	case *ast.StructDecl, *ast.UnionDecl, *ast.EnumDecl, *ast.BitfieldDecl, *ast.TypedefDecl, *ast.FunctionDecl:
		// Pure declarations: already indexed by collectDecls, nothing to
		// place when merely encountered in a statement list.
		return noCtrl, nil

	case *ast.NamespaceDecl:
		e.nsPath = append(e.nsPath, s.Path...)
		ctrl, err := e.execBlock(s.Body)
		e.nsPath = e.nsPath[:len(e.nsPath)-len(s.Path)]
		return ctrl, err

	case *ast.ExprStmt:
		_, err := e.evaluate(s.Expr)
		return noCtrl, err

	case *ast.AssignmentStmt:
		return noCtrl, e.execAssignment(s)

	case *ast.IfStmt:
		cond, err := e.evaluate(s.Cond)
		if err != nil {
			return noCtrl, err
		}
		e.pushScope()
		defer e.popScope()
		if cond.Truthy() {
			return e.execBlock(s.Then)
		}
		return e.execBlock(s.Else)

	case *ast.WhileStmt:
		return e.execWhile(s)

	case *ast.ForStmt:
		return e.execFor(s)

	case *ast.ReturnStmt:
		if s.Value == nil {
			return ctrlSignal{kind: ctrlReturn}, nil
		}
		v, err := e.evaluate(s.Value)
		if err != nil {
			return noCtrl, err
		}
		return ctrlSignal{kind: ctrlReturn, value: v, hasValue: true}, nil

	case *ast.BreakStmt:
		return ctrlSignal{kind: ctrlBreak}, nil

	case *ast.ContinueStmt:
		return ctrlSignal{kind: ctrlContinue}, nil

	case *ast.ImportStmt, *ast.UsingNamespaceStmt:
		// Namespace bring-into-scope is resolved structurally by
		// resolveUDT/resolveFunction's outward namespace walk; these
		// statements carry no further runtime effect.
		return noCtrl, nil

	default:
		return noCtrl, newError(ErrTypeMismatch, stmt.Location(), "unsupported statement")
	}
}

func (e *Evaluator) execWhile(s *ast.WhileStmt) (ctrlSignal, *Error) {
	for {
		if err := e.checkCancelled(s.Loc); err != nil {
			return noCtrl, err
		}
		cond, err := e.evaluate(s.Cond)
		if err != nil {
			return noCtrl, err
		}
		if !cond.Truthy() {
			return noCtrl, nil
		}
		e.pushScope()
		ctrl, err := e.execBlock(s.Body)
		e.popScope()
		if err != nil {
			return noCtrl, err
		}
		switch ctrl.kind {
		case ctrlBreak:
			return noCtrl, nil
		case ctrlReturn:
			return ctrl, nil
		}
	}
}

func (e *Evaluator) execFor(s *ast.ForStmt) (ctrlSignal, *Error) {
	e.pushScope()
	defer e.popScope()
	if s.Init != nil {
		if _, err := e.execStmt(s.Init); err != nil {
			return noCtrl, err
		}
	}
	for {
		if err := e.checkCancelled(s.Loc); err != nil {
			return noCtrl, err
		}
		if s.Cond != nil {
			cond, err := e.evaluate(s.Cond)
			if err != nil {
				return noCtrl, err
			}
			if !cond.Truthy() {
				return noCtrl, nil
			}
		}
		e.pushScope()
		ctrl, err := e.execBlock(s.Body)
		e.popScope()
		if err != nil {
			return noCtrl, err
		}
		if ctrl.kind == ctrlReturn {
			return ctrl, nil
		}
		if ctrl.kind == ctrlBreak {
			return noCtrl, nil
		}
		if s.Post != nil {
			if _, err := e.execStmt(s.Post); err != nil {
				return noCtrl, err
			}
		}
	}
}

// execAssignment implements `target op= value` for both plain `=` and the
// compound arithmetic/bitwise operators, writing the result back through
// writeValue (spec §4.6: assignment is only meaningful against a pattern
// whose storage the evaluator owns, i.e. a local variable).
func (e *Evaluator) execAssignment(s *ast.AssignmentStmt) *Error {
	rhs, err := e.evaluate(s.Value)
	if err != nil {
		return err
	}
	target, err := e.resolvePattern(s.Target)
	if err != nil {
		return err
	}
	if s.Op != "=" {
		cur, cerr := e.valueOfPattern(target, s.Loc)
		if cerr != nil {
			return cerr
		}
		op := strings.TrimSuffix(s.Op, "=")
		combined, berr := e.applyBinaryOp(s.Loc, op, cur, rhs)
		if berr != nil {
			return berr
		}
		rhs = combined
	}
	return e.writeValue(target, rhs, s.Loc)
}

// writeValue encodes v into p's backing bytes. Only local patterns are
// writable: the data Provider is a read-only byte source (spec §6), so
// assignment is meaningful only against evaluator-owned stack storage.
func (e *Evaluator) writeValue(p *pattern.Pattern, v Value, loc token.Location) *Error {
	if !p.Local {
		return newError(ErrInvalidOperand, loc, "cannot assign to a pattern backed by the data source")
	}
	data, err := e.encodeValue(p, v, loc)
	if err != nil {
		return err
	}
	e.Stack.WriteAt(p.Offset, data)
	return nil
}

func (e *Evaluator) encodeValue(p *pattern.Pattern, v Value, loc token.Location) ([]byte, *Error) {
	le := p.EffectiveEndian(e.DefaultEndian) != pattern.EndianBig
	switch p.Kind {
	case pattern.KindUnsigned, pattern.KindSigned, pattern.KindEnum, pattern.KindCharacter, pattern.KindCharacter16:
		i, ok := v.AsInt128()
		if !ok {
			return nil, newError(ErrTypeMismatch, loc, "expected a numeric value")
		}
		return i.ToBytes(int(p.Size), le), nil
	case pattern.KindBoolean:
		if v.Truthy() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case pattern.KindFloat:
		f, ok := v.AsFloat64()
		if !ok {
			return nil, newError(ErrTypeMismatch, loc, "expected a numeric value")
		}
		if p.Size == 4 {
			return numeric.FromUint64(uint64(math.Float32bits(float32(f)))).ToBytes(4, le), nil
		}
		return numeric.FromUint64(math.Float64bits(f)).ToBytes(8, le), nil
	case pattern.KindString:
		if v.Kind != ValString {
			return nil, newError(ErrTypeMismatch, loc, "expected a string value")
		}
		b := []byte(v.Str)
		if uint64(len(b)) < p.Size {
			b = append(b, make([]byte, p.Size-uint64(len(b)))...)
		}
		return b[:p.Size], nil
	default:
		return nil, newError(ErrInvalidOperand, loc, "assignment is not supported for this pattern kind")
	}
}
