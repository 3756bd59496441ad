package ast

import (
	"testing"

	"github.com/vellumlang/vellum/pkg/numeric"
)

// countingVisitor counts how many Identifier nodes it visits, proving
// BaseVisitor's default traversal actually reaches nested expressions.
type countingVisitor struct {
	BaseVisitor
	idents int
}

func (c *countingVisitor) VisitIdentifier(n *Identifier) interface{} {
	c.idents++
	return nil
}

func TestBaseVisitorTraversesNestedExpr(t *testing.T) {
	prog := &Program{
		Statements: []Statement{
			&VariableDecl{
				Type: &TypeRef{IsBuiltin: true},
				Name: "x",
				Placement: &MathExpr{
					Op:    "+",
					Left:  &Identifier{Name: "base"},
					Right: &Identifier{Name: "offset"},
				},
			},
			&IfStmt{
				Cond: &Identifier{Name: "flag"},
				Then: []Statement{&ReturnStmt{Value: &Identifier{Name: "x"}}},
			},
		},
	}

	cv := &countingVisitor{}
	prog.Accept(cv)

	if cv.idents != 4 {
		t.Fatalf("got %d identifiers visited, want 4", cv.idents)
	}
}

func TestAcceptDispatchesToCorrectMethod(t *testing.T) {
	lit := &Literal{Kind: LitInt, Int: numeric.FromUint64(42)}
	result := lit.Accept(&dispatchProbe{})
	if result != "literal" {
		t.Fatalf("got %v, want \"literal\"", result)
	}
}

type dispatchProbe struct{ BaseVisitor }

func (dispatchProbe) VisitLiteral(*Literal) interface{} { return "literal" }
