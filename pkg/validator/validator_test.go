package validator

import (
	"testing"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/lexer"
	"github.com/vellumlang/vellum/pkg/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Lex("t", src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestValidProgramHasNoErrors(t *testing.T) {
	prog := mustParse(t, `
struct P {
    u16 a;
    u16 b;
};
P p @ 0;`)
	if errs := Validate(prog); len(errs) != 0 {
		t.Fatalf("got unexpected errors: %v", errs)
	}
}

func TestDuplicateMemberNames(t *testing.T) {
	prog := mustParse(t, `
struct P {
    u16 a;
    u16 a;
};`)
	errs := Validate(prog)
	if len(errs) == 0 {
		t.Fatalf("expected DuplicateMember error")
	}
	found := false
	for _, e := range errs {
		if e.Kind == ErrDuplicateMember {
			found = true
		}
	}
	if !found {
		t.Fatalf("got errors %v, want one ErrDuplicateMember", errs)
	}
}

func TestUnknownTypeReference(t *testing.T) {
	prog := mustParse(t, `DoesNotExist x @ 0;`)
	errs := Validate(prog)
	if len(errs) == 0 {
		t.Fatalf("expected UnknownType error")
	}
	if errs[0].Kind != ErrUnknownType {
		t.Fatalf("got %v", errs[0])
	}
}

func TestDirectCycleWithoutIndirectionIsRejected(t *testing.T) {
	prog := mustParse(t, `
struct A {
    B b;
};
struct B {
    A a;
};`)
	errs := Validate(prog)
	found := false
	for _, e := range errs {
		if e.Kind == ErrCyclicType {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CyclicType error, got %v", errs)
	}
}

func TestPointerIndirectionBreaksCycle(t *testing.T) {
	prog := mustParse(t, `
struct A {
    B *b : u32;
};
struct B {
    A a;
};`)
	errs := Validate(prog)
	for _, e := range errs {
		if e.Kind == ErrCyclicType {
			t.Fatalf("pointer indirection should break the cycle, got %v", errs)
		}
	}
}

func TestEnumValueOutOfRange(t *testing.T) {
	prog := mustParse(t, `
enum E : u8 {
    A = 0,
    B = 300
};`)
	errs := Validate(prog)
	found := false
	for _, e := range errs {
		if e.Kind == ErrEnumOutOfRange {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected EnumOutOfRange error, got %v", errs)
	}
}

func TestBitfieldOverflow(t *testing.T) {
	prog := mustParse(t, `
bitfield B {
    a : 600;
    b : 600;
};`)
	errs := Validate(prog)
	found := false
	for _, e := range errs {
		if e.Kind == ErrBitfieldOverflow {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BitfieldOverflow error, got %v", errs)
	}
}
