package ast

// BaseVisitor provides default depth-first traversal for every node.
// Embed it and override only the methods a particular pass cares about;
// the rest keep walking children and return nil. The traversal calls
// children's Accept with the *BaseVisitor itself as the visitor, so once
// a BaseVisitor method runs, the nodes below it reach BaseVisitor's own
// methods, not the embedding type's overrides.
type BaseVisitor struct{}

var _ Visitor = (*BaseVisitor)(nil)

func visitAttrs(v Visitor, attrs []*Attribute) {
	for _, a := range attrs {
		a.Accept(v)
	}
}

func visitStmts(v Visitor, stmts []Statement) {
	for _, s := range stmts {
		if s != nil {
			s.Accept(v)
		}
	}
}

func (b *BaseVisitor) VisitProgram(n *Program) interface{} {
	visitStmts(b, n.Statements)
	return nil
}

func (b *BaseVisitor) VisitAttribute(n *Attribute) interface{} {
	for _, a := range n.Args {
		a.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitLiteral(n *Literal) interface{} { return nil }

func (b *BaseVisitor) VisitIdentifier(n *Identifier) interface{} { return nil }

func (b *BaseVisitor) VisitScopeResolution(n *ScopeResolution) interface{} { return nil }

func (b *BaseVisitor) VisitMemberAccess(n *MemberAccess) interface{} {
	if n.Target != nil {
		n.Target.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitIndexAccess(n *IndexAccess) interface{} {
	if n.Target != nil {
		n.Target.Accept(b)
	}
	if n.Index != nil {
		n.Index.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitMathExpr(n *MathExpr) interface{} {
	if n.Left != nil {
		n.Left.Accept(b)
	}
	if n.Right != nil {
		n.Right.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitUnaryExpr(n *UnaryExpr) interface{} {
	if n.Operand != nil {
		n.Operand.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitTernaryExpr(n *TernaryExpr) interface{} {
	if n.Cond != nil {
		n.Cond.Accept(b)
	}
	if n.Then != nil {
		n.Then.Accept(b)
	}
	if n.Else != nil {
		n.Else.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitFunctionCall(n *FunctionCall) interface{} {
	for _, a := range n.Args {
		a.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitSizeofExpr(n *SizeofExpr) interface{} {
	if n.Operand != nil {
		n.Operand.Accept(b)
	}
	if n.Type != nil {
		n.Type.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitAddressofExpr(n *AddressofExpr) interface{} {
	if n.Operand != nil {
		n.Operand.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitTypeofExpr(n *TypeofExpr) interface{} {
	if n.Operand != nil {
		n.Operand.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitCastExpr(n *CastExpr) interface{} {
	if n.Type != nil {
		n.Type.Accept(b)
	}
	if n.Operand != nil {
		n.Operand.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitTypeRef(n *TypeRef) interface{} {
	for _, a := range n.TemplateArgs {
		a.Accept(b)
	}
	if n.Typeof != nil {
		n.Typeof.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitVariableDecl(n *VariableDecl) interface{} {
	if n.Type != nil {
		n.Type.Accept(b)
	}
	if n.Placement != nil {
		n.Placement.Accept(b)
	}
	visitAttrs(b, n.Attributes)
	return nil
}

func (b *BaseVisitor) VisitArrayVariableDecl(n *ArrayVariableDecl) interface{} {
	if n.Type != nil {
		n.Type.Accept(b)
	}
	if n.Size != nil {
		n.Size.Accept(b)
	}
	if n.WhileCond != nil {
		n.WhileCond.Accept(b)
	}
	if n.Placement != nil {
		n.Placement.Accept(b)
	}
	visitAttrs(b, n.Attributes)
	return nil
}

func (b *BaseVisitor) VisitPointerVariableDecl(n *PointerVariableDecl) interface{} {
	if n.Type != nil {
		n.Type.Accept(b)
	}
	if n.SizedType != nil {
		n.SizedType.Accept(b)
	}
	if n.Placement != nil {
		n.Placement.Accept(b)
	}
	visitAttrs(b, n.Attributes)
	return nil
}

func (b *BaseVisitor) VisitMultiVariableDecl(n *MultiVariableDecl) interface{} {
	visitStmts(b, n.Decls)
	return nil
}

func (b *BaseVisitor) VisitStructDecl(n *StructDecl) interface{} {
	for _, p := range n.Inherits {
		p.Accept(b)
	}
	visitStmts(b, n.Members)
	visitAttrs(b, n.Attributes)
	return nil
}

func (b *BaseVisitor) VisitUnionDecl(n *UnionDecl) interface{} {
	visitStmts(b, n.Members)
	visitAttrs(b, n.Attributes)
	return nil
}

func (b *BaseVisitor) VisitEnumEntry(n *EnumEntry) interface{} {
	if n.Value != nil {
		n.Value.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitEnumDecl(n *EnumDecl) interface{} {
	if n.Underlying != nil {
		n.Underlying.Accept(b)
	}
	for _, e := range n.Entries {
		e.Accept(b)
	}
	visitAttrs(b, n.Attributes)
	return nil
}

func (b *BaseVisitor) VisitBitfieldFieldDecl(n *BitfieldFieldDecl) interface{} {
	if n.Size != nil {
		n.Size.Accept(b)
	}
	visitAttrs(b, n.Attributes)
	return nil
}

func (b *BaseVisitor) VisitBitfieldDecl(n *BitfieldDecl) interface{} {
	for _, f := range n.Fields {
		f.Accept(b)
	}
	visitAttrs(b, n.Attributes)
	return nil
}

func (b *BaseVisitor) VisitTypedefDecl(n *TypedefDecl) interface{} {
	if n.Target != nil {
		n.Target.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitNamespaceDecl(n *NamespaceDecl) interface{} {
	visitStmts(b, n.Body)
	return nil
}

func (b *BaseVisitor) VisitFunctionParam(n *FunctionParam) interface{} {
	if n.Type != nil {
		n.Type.Accept(b)
	}
	if n.Default != nil {
		n.Default.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitFunctionDecl(n *FunctionDecl) interface{} {
	for _, p := range n.Params {
		p.Accept(b)
	}
	visitStmts(b, n.Body)
	return nil
}

func (b *BaseVisitor) VisitExprStmt(n *ExprStmt) interface{} {
	if n.Expr != nil {
		n.Expr.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitAssignmentStmt(n *AssignmentStmt) interface{} {
	if n.Target != nil {
		n.Target.Accept(b)
	}
	if n.Value != nil {
		n.Value.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitIfStmt(n *IfStmt) interface{} {
	if n.Cond != nil {
		n.Cond.Accept(b)
	}
	visitStmts(b, n.Then)
	visitStmts(b, n.Else)
	return nil
}

func (b *BaseVisitor) VisitWhileStmt(n *WhileStmt) interface{} {
	if n.Cond != nil {
		n.Cond.Accept(b)
	}
	visitStmts(b, n.Body)
	return nil
}

func (b *BaseVisitor) VisitForStmt(n *ForStmt) interface{} {
	if n.Init != nil {
		n.Init.Accept(b)
	}
	if n.Cond != nil {
		n.Cond.Accept(b)
	}
	if n.Post != nil {
		n.Post.Accept(b)
	}
	visitStmts(b, n.Body)
	return nil
}

func (b *BaseVisitor) VisitReturnStmt(n *ReturnStmt) interface{} {
	if n.Value != nil {
		n.Value.Accept(b)
	}
	return nil
}

func (b *BaseVisitor) VisitBreakStmt(n *BreakStmt) interface{} { return nil }

func (b *BaseVisitor) VisitContinueStmt(n *ContinueStmt) interface{} { return nil }

func (b *BaseVisitor) VisitImportStmt(n *ImportStmt) interface{} { return nil }

func (b *BaseVisitor) VisitUsingNamespaceStmt(n *UsingNamespaceStmt) interface{} { return nil }
