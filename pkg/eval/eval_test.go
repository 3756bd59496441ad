package eval

import (
	"testing"

	"github.com/vellumlang/vellum/pkg/lexer"
	"github.com/vellumlang/vellum/pkg/parser"
	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/provider"
)

// runProgram lexes, parses, and evaluates src against data, mirroring the
// CLI's pipeline (cmd/vellum/pipeline.go) but without the preprocessor pass,
// which none of these programs need.
func runProgram(t *testing.T, src string, data []byte) ([]*pattern.Pattern, *Evaluator) {
	t.Helper()
	toks, err := lexer.Lex("t", src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prov := provider.NewMemoryProvider(data, 0)
	e := New(prov, DefaultLimits)
	tree, evalErr := e.Run(prog)
	if evalErr != nil {
		t.Fatalf("eval error: %v", evalErr)
	}
	return tree, e
}

func findByName(patterns []*pattern.Pattern, name string) *pattern.Pattern {
	for _, p := range patterns {
		if p.VariableName == name {
			return p
		}
	}
	return nil
}

// TestPrimitivePlacement covers spec §8 scenario 1.
func TestPrimitivePlacement(t *testing.T) {
	tree, e := runProgram(t, `u32 x @ 0x00;`, []byte{0x01, 0x02, 0x03, 0x04})
	x := findByName(tree, "x")
	if x == nil {
		t.Fatalf("no pattern named x in %+v", tree)
	}
	if x.Offset != 0 || x.Size != 4 {
		t.Fatalf("got offset=%d size=%d", x.Offset, x.Size)
	}
	v, err := x.ReadInt(e.Provider, pattern.EndianLittle)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	got := v.Uint64()
	if got != 0x04030201 {
		t.Fatalf("got value 0x%x", got)
	}
}

// TestStructOfTwoFields covers spec §8 scenario 2.
func TestStructOfTwoFields(t *testing.T) {
	tree, e := runProgram(t, `
struct P { u16 a; u16 b; };
P p @ 0;`, []byte{0xAA, 0xBB, 0xCC, 0xDD})
	p := findByName(tree, "p")
	if p == nil {
		t.Fatalf("no pattern named p")
	}
	if p.Size != 4 {
		t.Fatalf("got size %d", p.Size)
	}
	a := findByName(p.Struct.Members, "a")
	b := findByName(p.Struct.Members, "b")
	if a == nil || b == nil {
		t.Fatalf("missing members in %+v", p.Struct.Members)
	}
	if a.Offset != 0 || b.Offset != 2 {
		t.Fatalf("got a.Offset=%d b.Offset=%d", a.Offset, b.Offset)
	}
	av, _ := a.ReadInt(e.Provider, pattern.EndianLittle)
	bv, _ := b.ReadInt(e.Provider, pattern.EndianLittle)
	agot := av.Uint64()
	bgot := bv.Uint64()
	if agot != 0xBBAA || bgot != 0xDDCC {
		t.Fatalf("got a=0x%x b=0x%x", agot, bgot)
	}
}

// TestStaticArray covers spec §8 scenario 3.
func TestStaticArray(t *testing.T) {
	tree, e := runProgram(t, `u8 xs[4] @ 0;`, []byte{0x01, 0x02, 0x03, 0x04})
	xs := findByName(tree, "xs")
	if xs == nil || xs.Kind != pattern.KindStaticArray {
		t.Fatalf("got %+v", xs)
	}
	if xs.StaticArray.EntryCount != 4 {
		t.Fatalf("got entry count %d", xs.StaticArray.EntryCount)
	}
	entry, err := xs.ArrayEntry(2)
	if err != nil {
		t.Fatalf("entry error: %v", err)
	}
	v, err := entry.ReadInt(e.Provider, pattern.EndianLittle)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	got := v.Uint64()
	if got != 3 {
		t.Fatalf("got xs[2]=%d", got)
	}
}

// TestPointerDereference covers spec §8 scenario 4.
func TestPointerDereference(t *testing.T) {
	tree, e := runProgram(t, `
u16 v;
u16 *p : u8 @ 0;`, []byte{0x02, 0x00, 0xAA, 0xBB})
	p := findByName(tree, "p")
	if p == nil || p.Kind != pattern.KindPointer {
		t.Fatalf("got %+v", p)
	}
	if p.Pointer.PointedAtAddress != 2 {
		t.Fatalf("got pointed-at address %d", p.Pointer.PointedAtAddress)
	}
	pointee := p.Pointer.Pointee
	if pointee.Offset != 2 {
		t.Fatalf("got pointee offset %d", pointee.Offset)
	}
	v, err := pointee.ReadInt(e.Provider, pattern.EndianLittle)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	got := v.Uint64()
	if got != 0xBBAA {
		t.Fatalf("got *p=0x%x", got)
	}
}

// TestBitfield covers spec §8 scenario 5: fields are packed MSB-first.
func TestBitfield(t *testing.T) {
	tree, e := runProgram(t, `
bitfield B { hi : 4; lo : 4; };
B b @ 0;`, []byte{0xAB})
	b := findByName(tree, "b")
	if b == nil || b.Kind != pattern.KindBitfield {
		t.Fatalf("got %+v", b)
	}
	if b.Size != 1 {
		t.Fatalf("got size %d", b.Size)
	}
	hi := findByName(b.Bitfield.Fields, "hi")
	lo := findByName(b.Bitfield.Fields, "lo")
	if hi == nil || lo == nil {
		t.Fatalf("missing fields in %+v", b.Bitfield.Fields)
	}
	hiv, err := hi.ReadInt(e.Provider, pattern.EndianBig)
	if err != nil {
		t.Fatalf("hi read error: %v", err)
	}
	lov, err := lo.ReadInt(e.Provider, pattern.EndianBig)
	if err != nil {
		t.Fatalf("lo read error: %v", err)
	}
	hg := hiv.Uint64()
	lg := lov.Uint64()
	if hg != 0xA || lg != 0xB {
		t.Fatalf("got hi=0x%x lo=0x%x", hg, lg)
	}
}

// TestDivisionByZero covers spec §8 scenario 6: an error aborts the run and
// no tree is published.
func TestDivisionByZero(t *testing.T) {
	toks, err := lexer.Lex("t", `u8 x @ 0; u8 y @ (x / 0);`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prov := provider.NewMemoryProvider([]byte{0x05}, 0)
	e := New(prov, DefaultLimits)
	tree, evalErr := e.Run(prog)
	if evalErr == nil {
		t.Fatalf("expected DivisionByZero error, got tree %+v", tree)
	}
	if evalErr.Kind != ErrDivisionByZero {
		t.Fatalf("got error kind %v", evalErr.Kind)
	}
	if tree != nil {
		t.Fatalf("expected no tree published on error, got %+v", tree)
	}
}

// TestUnboundedArrayOfPrimitivesStopsAtZero exercises the Open Question
// resolution in spec §9: unbounded arrays of primitives terminate at the
// first zero element or provider EOF.
func TestUnboundedArrayOfPrimitivesStopsAtZero(t *testing.T) {
	tree, _ := runProgram(t, `u8 xs[] @ 0;`, []byte{0x01, 0x02, 0x00, 0x03})
	xs := findByName(tree, "xs")
	if xs == nil {
		t.Fatalf("no pattern named xs")
	}
	if xs.Kind != pattern.KindDynamicArray {
		t.Fatalf("got kind %v", xs.Kind)
	}
	if got := len(xs.DynamicArray.Entries); got != 3 {
		t.Fatalf("got %d entries, want 3 (stop after the zero element)", got)
	}
}

// TestWhileArray exercises the while-sized array form.
func TestWhileArray(t *testing.T) {
	tree, _ := runProgram(t, `u8 xs[while($ < 3)] @ 0;`, []byte{0x01, 0x02, 0x03, 0x04})
	xs := findByName(tree, "xs")
	if xs == nil {
		t.Fatalf("no pattern named xs")
	}
	if got := len(xs.DynamicArray.Entries); got != 3 {
		t.Fatalf("got %d entries, want 3", got)
	}
}

// TestUnionFootprint checks spec §8's union-footprint invariant: size
// equals the widest member's size, and members share the start offset.
func TestUnionFootprint(t *testing.T) {
	tree, _ := runProgram(t, `
union U { u8 a; u32 b; };
U u @ 0;`, []byte{0x01, 0x02, 0x03, 0x04})
	u := findByName(tree, "u")
	if u == nil || u.Kind != pattern.KindUnion {
		t.Fatalf("got %+v", u)
	}
	if u.Size != 4 {
		t.Fatalf("got size %d, want 4 (widest member)", u.Size)
	}
	for _, m := range u.Union.Members {
		if m.Offset != 0 {
			t.Fatalf("member %s has offset %d, want 0", m.VariableName, m.Offset)
		}
	}
}

// TestRecursionLimit checks the evaluator aborts runaway user function
// recursion with ErrRecursionLimit rather than overflowing the Go stack.
func TestRecursionLimit(t *testing.T) {
	toks, err := lexer.Lex("t", `
fn recurse(x) { return recurse(x); }
u8 y @ recurse(1);`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prov := provider.NewMemoryProvider([]byte{0x01}, 0)
	e := New(prov, Limits{MaxCallDepth: 32, MaxPatternCount: 1000})
	_, evalErr := e.Run(prog)
	if evalErr == nil {
		t.Fatalf("expected RecursionLimit error")
	}
	if evalErr.Kind != ErrRecursionLimit {
		t.Fatalf("got error kind %v", evalErr.Kind)
	}
}

// TestCancellation checks the cancel flag aborts evaluation promptly (spec
// §5's cancellation promptness property).
func TestCancellation(t *testing.T) {
	toks, err := lexer.Lex("t", `u8 xs[while($ < 1000000)] @ 0;`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	data := make([]byte, 2_000_000)
	prov := provider.NewMemoryProvider(data, 0)
	e := New(prov, DefaultLimits)
	calls := 0
	e.SetCancel(func() bool {
		calls++
		return calls > 10
	})
	_, evalErr := e.Run(prog)
	if evalErr == nil {
		t.Fatalf("expected Cancelled error")
	}
	if evalErr.Kind != ErrCancelled {
		t.Fatalf("got error kind %v", evalErr.Kind)
	}
}
