package ast

// Visitor defines one method per node type. Implementations (the
// validator, the evaluator, the highlighter) return whatever result type
// suits them through the interface{} result; callers that don't need a
// result ignore it, the same contract the teacher's pkg/ast.Visitor uses.
type Visitor interface {
	VisitProgram(*Program) interface{}
	VisitAttribute(*Attribute) interface{}

	VisitLiteral(*Literal) interface{}
	VisitIdentifier(*Identifier) interface{}
	VisitScopeResolution(*ScopeResolution) interface{}
	VisitMemberAccess(*MemberAccess) interface{}
	VisitIndexAccess(*IndexAccess) interface{}
	VisitMathExpr(*MathExpr) interface{}
	VisitUnaryExpr(*UnaryExpr) interface{}
	VisitTernaryExpr(*TernaryExpr) interface{}
	VisitFunctionCall(*FunctionCall) interface{}
	VisitSizeofExpr(*SizeofExpr) interface{}
	VisitAddressofExpr(*AddressofExpr) interface{}
	VisitTypeofExpr(*TypeofExpr) interface{}
	VisitCastExpr(*CastExpr) interface{}
	VisitTypeRef(*TypeRef) interface{}

	VisitVariableDecl(*VariableDecl) interface{}
	VisitArrayVariableDecl(*ArrayVariableDecl) interface{}
	VisitPointerVariableDecl(*PointerVariableDecl) interface{}
	VisitMultiVariableDecl(*MultiVariableDecl) interface{}
	VisitStructDecl(*StructDecl) interface{}
	VisitUnionDecl(*UnionDecl) interface{}
	VisitEnumEntry(*EnumEntry) interface{}
	VisitEnumDecl(*EnumDecl) interface{}
	VisitBitfieldFieldDecl(*BitfieldFieldDecl) interface{}
	VisitBitfieldDecl(*BitfieldDecl) interface{}
	VisitTypedefDecl(*TypedefDecl) interface{}
	VisitNamespaceDecl(*NamespaceDecl) interface{}
	VisitFunctionParam(*FunctionParam) interface{}
	VisitFunctionDecl(*FunctionDecl) interface{}

	VisitExprStmt(*ExprStmt) interface{}
	VisitAssignmentStmt(*AssignmentStmt) interface{}
	VisitIfStmt(*IfStmt) interface{}
	VisitWhileStmt(*WhileStmt) interface{}
	VisitForStmt(*ForStmt) interface{}
	VisitReturnStmt(*ReturnStmt) interface{}
	VisitBreakStmt(*BreakStmt) interface{}
	VisitContinueStmt(*ContinueStmt) interface{}
	VisitImportStmt(*ImportStmt) interface{}
	VisitUsingNamespaceStmt(*UsingNamespaceStmt) interface{}
}
