package parser

import (
	"testing"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Lex("t", src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := New(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParsePlacedPrimitive(t *testing.T) {
	prog := mustParse(t, `u32 magic @ 0x00;`)
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.VariableDecl)
	if !ok {
		t.Fatalf("got %T", prog.Statements[0])
	}
	if decl.Name != "magic" || decl.Placement == nil {
		t.Fatalf("got %+v", decl)
	}
}

func TestParseStructWithAttributesAndArray(t *testing.T) {
	prog := mustParse(t, `
struct Header {
    u32 magic;
    u8 data[16];
    u8 rest[while($ < 100)];
} [[static]];`)
	d, ok := prog.Statements[0].(*ast.StructDecl)
	if !ok {
		t.Fatalf("got %T", prog.Statements[0])
	}
	if len(d.Members) != 3 {
		t.Fatalf("got %d members", len(d.Members))
	}
	arr, ok := d.Members[1].(*ast.ArrayVariableDecl)
	if !ok || arr.Size == nil {
		t.Fatalf("got %+v", d.Members[1])
	}
	whileArr, ok := d.Members[2].(*ast.ArrayVariableDecl)
	if !ok || whileArr.WhileCond == nil {
		t.Fatalf("got %+v", d.Members[2])
	}
	if len(d.Attributes) != 1 || d.Attributes[0].Name != "static" {
		t.Fatalf("got attributes %+v", d.Attributes)
	}
}

func TestParsePointerDeclaration(t *testing.T) {
	prog := mustParse(t, `u32 *ptr : u16 @ 0x10;`)
	d, ok := prog.Statements[0].(*ast.PointerVariableDecl)
	if !ok {
		t.Fatalf("got %T", prog.Statements[0])
	}
	if d.Name != "ptr" || d.SizedType == nil || !d.SizedType.IsBuiltin {
		t.Fatalf("got %+v", d)
	}
}

func TestParseBitfield(t *testing.T) {
	prog := mustParse(t, `
bitfield Flags {
    a : 1;
    b : 3;
    padding : 4;
};`)
	d, ok := prog.Statements[0].(*ast.BitfieldDecl)
	if !ok {
		t.Fatalf("got %T", prog.Statements[0])
	}
	if len(d.Fields) != 3 || !d.Fields[2].Padding {
		t.Fatalf("got %+v", d.Fields)
	}
}

func TestParseEnum(t *testing.T) {
	prog := mustParse(t, `
enum Kind : u8 {
    A = 0,
    B,
    C = 5
};`)
	d, ok := prog.Statements[0].(*ast.EnumDecl)
	if !ok {
		t.Fatalf("got %T", prog.Statements[0])
	}
	if len(d.Entries) != 3 || d.Entries[1].Value != nil {
		t.Fatalf("got %+v", d.Entries)
	}
}

func TestParseFunctionAndControlFlow(t *testing.T) {
	prog := mustParse(t, `
fn compute(u32 x) {
    if (x > 10) {
        return x - 1;
    } else {
        return x + 1;
    }
}`)
	fn, ok := prog.Statements[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("got %T", prog.Statements[0])
	}
	if len(fn.Params) != 1 || len(fn.Body) != 1 {
		t.Fatalf("got %+v", fn)
	}
	ifs, ok := fn.Body[0].(*ast.IfStmt)
	if !ok || len(ifs.Then) != 1 || len(ifs.Else) != 1 {
		t.Fatalf("got %+v", fn.Body[0])
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	prog := mustParse(t, `u32 x @ 1 + 2 * 3;`)
	decl := prog.Statements[0].(*ast.VariableDecl)
	m, ok := decl.Placement.(*ast.MathExpr)
	if !ok || m.Op != "+" {
		t.Fatalf("got %+v", decl.Placement)
	}
	rhs, ok := m.Right.(*ast.MathExpr)
	if !ok || rhs.Op != "*" {
		t.Fatalf("expected `2 * 3` to bind tighter, got %+v", m.Right)
	}
}

func TestParseTernaryAndMemberIndex(t *testing.T) {
	prog := mustParse(t, `u32 x @ (a.b[0] > 1) ? a.b[0] : 0;`)
	decl := prog.Statements[0].(*ast.VariableDecl)
	tern, ok := decl.Placement.(*ast.TernaryExpr)
	if !ok {
		t.Fatalf("got %T", decl.Placement)
	}
	idx, ok := tern.Then.(*ast.IndexAccess)
	if !ok {
		t.Fatalf("got %T", tern.Then)
	}
	if _, ok := idx.Target.(*ast.MemberAccess); !ok {
		t.Fatalf("got %T", idx.Target)
	}
}

func TestParseNamespaceAndScopeResolution(t *testing.T) {
	prog := mustParse(t, `
namespace foo::bar {
    enum E : u8 { X = 1 };
}
u32 y @ foo::bar::E::X;`)
	ns, ok := prog.Statements[0].(*ast.NamespaceDecl)
	if !ok || len(ns.Path) != 2 {
		t.Fatalf("got %+v", prog.Statements[0])
	}
	decl := prog.Statements[1].(*ast.VariableDecl)
	sr, ok := decl.Placement.(*ast.ScopeResolution)
	if !ok || len(sr.Path) != 4 {
		t.Fatalf("got %+v", decl.Placement)
	}
}

func TestParseCastSizeofAddressof(t *testing.T) {
	prog := mustParse(t, `u32 x @ sizeof(u32) + addressof(x);`)
	decl := prog.Statements[0].(*ast.VariableDecl)
	m, ok := decl.Placement.(*ast.MathExpr)
	if !ok {
		t.Fatalf("got %T", decl.Placement)
	}
	if _, ok := m.Left.(*ast.SizeofExpr); !ok {
		t.Fatalf("got %T", m.Left)
	}
	if _, ok := m.Right.(*ast.AddressofExpr); !ok {
		t.Fatalf("got %T", m.Right)
	}
}
