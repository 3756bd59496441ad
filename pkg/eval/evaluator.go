package eval

import (
	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/provider"
	"github.com/vellumlang/vellum/pkg/token"
)

// arity names the shapes a function's parameter count may take (spec §4.6
// "custom-functions: name -> (arity-spec, body)").
type arity struct {
	kind arityKind
	n    int
}

type arityKind int

const (
	arityExact arityKind = iota
	arityAtLeast
	arityLessThan
	arityUnlimited
)

func (a arity) matches(n int) bool {
	switch a.kind {
	case arityExact:
		return n == a.n
	case arityAtLeast:
		return n >= a.n
	case arityLessThan:
		return n < a.n
	default:
		return true
	}
}

// function is either a user-defined (Body non-nil) or native (Native
// non-nil) callable.
type function struct {
	name   string
	params []*ast.FunctionParam
	body   []ast.Statement
	arity  arity
	native func(e *Evaluator, loc token.Location, args []Value) (Value, *Error)
}

// udtKind distinguishes the four UDT flavors, plus typedefs, carried in
// the symbol table.
type udtKind int

const (
	udtStruct udtKind = iota
	udtUnion
	udtEnum
	udtBitfield
	udtTypedef
)

type udtDecl struct {
	kind     udtKind
	structD  *ast.StructDecl
	unionD   *ast.UnionDecl
	enumD    *ast.EnumDecl
	bitfieldD *ast.BitfieldDecl
	typedefD *ast.TypedefDecl
}

// Limits bounds a single evaluation run (spec §5 "Suspension points").
type Limits struct {
	MaxCallDepth    int
	MaxPatternCount int
}

// DefaultLimits matches the teacher-scale defaults used by the CLI and
// tests; generous enough for real pattern files, tight enough to bound a
// runaway recursive function or array.
var DefaultLimits = Limits{MaxCallDepth: 256, MaxPatternCount: 1_000_000}

// Evaluator is the tree-walking interpreter's state (spec §4.6). One
// instance is bound to exactly one Provider and is not reused across runs.
type Evaluator struct {
	Provider provider.Provider
	Stack    *provider.MemoryProvider

	DefaultEndian pattern.Endian

	dataOffset uint64
	scopes     [][]*pattern.Pattern
	localVars  []map[string]*pattern.Pattern // one frame per scope, name -> local pattern

	functions map[string]*function
	globals   map[string]Value
	udts      map[string]*udtDecl
	nsPath    []string

	callDepth       int
	patternCount    int
	limits          Limits
	inFunctionBody  int // >0 while executing a user function's statement list

	cancel func() bool

	// Suggest is called to attach a did-you-mean hint to NoSuchVariable /
	// NoSuchFunction errors; nil disables suggestions. Wired to
	// internal/suggest by cmd/vellum.
	Suggest func(name string, candidates []string) (string, bool)

	// Output collects std::print's arguments, one joined line per call.
	Output []string
}

// New creates an Evaluator bound to prov, ready to Run one Program.
func New(prov provider.Provider, limits Limits) *Evaluator {
	e := &Evaluator{
		Provider:      prov,
		Stack:         provider.NewMemoryProvider(nil, 0),
		DefaultEndian: pattern.EndianLittle,
		functions:     map[string]*function{},
		globals:       map[string]Value{"__IMHEX__": Int(numeric.FromUint64(1))},
		udts:          map[string]*udtDecl{},
		limits:        limits,
	}
	e.registerNatives()
	return e
}

// SetCancel installs a cooperative cancellation check polled at every
// statement boundary and loop iteration (spec §5).
func (e *Evaluator) SetCancel(fn func() bool) { e.cancel = fn }

// DefineGlobal installs a user #define'd or CLI-provided constant, visible
// to every scope (spec §4.6 "a mapping of global constants").
func (e *Evaluator) DefineGlobal(name string, v Value) { e.globals[name] = v }

// DataOffset returns the evaluator's current placement cursor.
func (e *Evaluator) DataOffset() uint64 { return e.dataOffset }

func (e *Evaluator) checkCancelled(loc token.Location) *Error {
	if e.cancel != nil && e.cancel() {
		return newError(ErrCancelled, loc, "evaluation cancelled")
	}
	return nil
}

func (e *Evaluator) pushScope() {
	e.scopes = append(e.scopes, nil)
	e.localVars = append(e.localVars, map[string]*pattern.Pattern{})
}

func (e *Evaluator) popScope() []*pattern.Pattern {
	n := len(e.scopes) - 1
	top := e.scopes[n]
	e.scopes = e.scopes[:n]
	e.localVars = e.localVars[:n]
	return top
}

func (e *Evaluator) addPattern(p *pattern.Pattern) *Error {
	e.patternCount++
	if e.limits.MaxPatternCount > 0 && e.patternCount > e.limits.MaxPatternCount {
		return newError(ErrPatternLimit, token.Location{}, "pattern creation limit exceeded")
	}
	n := len(e.scopes) - 1
	e.scopes[n] = append(e.scopes[n], p)
	if p.Local {
		e.localVars[n][p.VariableName] = p
	}
	return nil
}

// findInScope searches the scope stack for a pattern by variable name,
// top of stack first, matching spec §4.6 RValue resolution step 1.
func (e *Evaluator) findInScope(name string) *pattern.Pattern {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		for j := len(e.scopes[i]) - 1; j >= 0; j-- {
			if e.scopes[i][j].VariableName == name {
				return e.scopes[i][j]
			}
		}
	}
	return nil
}

// providerFor picks the byte source a pattern's value should be read
// through: the evaluation stack for local patterns, the bound data
// Provider otherwise (spec §3 invariant: "local patterns ... reads must go
// to the stack").
func (e *Evaluator) providerFor(p *pattern.Pattern) provider.Provider {
	if p.Local {
		return e.Stack
	}
	return e.Provider
}

func (e *Evaluator) enterCall(loc token.Location) *Error {
	e.callDepth++
	if e.limits.MaxCallDepth > 0 && e.callDepth > e.limits.MaxCallDepth {
		e.callDepth--
		return newError(ErrRecursionLimit, loc, "function call recursion limit exceeded")
	}
	return nil
}

func (e *Evaluator) exitCall() { e.callDepth-- }

func (e *Evaluator) qualify(name string) string {
	if len(e.nsPath) == 0 {
		return name
	}
	prefix := ""
	for _, n := range e.nsPath {
		prefix += n + "::"
	}
	return prefix + name
}

// resolveUDT looks up a type name against the current namespace and every
// enclosing one, matching RValue resolution's outward walk.
func (e *Evaluator) resolveUDT(name string) *udtDecl {
	if d, ok := e.udts[name]; ok {
		return d
	}
	for i := len(e.nsPath); i > 0; i-- {
		prefix := ""
		for _, n := range e.nsPath[:i] {
			prefix += n + "::"
		}
		if d, ok := e.udts[prefix+name]; ok {
			return d
		}
	}
	return nil
}

func (e *Evaluator) resolveFunction(name string) *function {
	if f, ok := e.functions[name]; ok {
		return f
	}
	for i := len(e.nsPath); i > 0; i-- {
		prefix := ""
		for _, n := range e.nsPath[:i] {
			prefix += n + "::"
		}
		if f, ok := e.functions[prefix+name]; ok {
			return f
		}
	}
	return nil
}

func (e *Evaluator) suggestNames(name string, pool map[string]*function) string {
	if e.Suggest == nil {
		return ""
	}
	names := make([]string, 0, len(pool))
	for n := range pool {
		names = append(names, n)
	}
	if s, ok := e.Suggest(name, names); ok {
		return s
	}
	return ""
}
