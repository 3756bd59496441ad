// Package parser implements the pattern language's grammar (spec §4.3) as
// a hand-written recursive-descent parser with precedence climbing over
// the binary operator table. We deliberately do not reach for
// participle's declarative `participle.Build[T]` struct-tag grammar here
// (unlike how guix's own top-level parser is assembled): placement
// (`@expr`), bitfield (`:bits`), pointer (`*name : sizedType`) and
// attribute (`[[...]]`) suffixes all depend on lookahead and local state
// that a struct-tag grammar cannot express cleanly, so the parser walks
// the token stream itself. It still leans on pkg/lexer (built on
// participle's stateful lexer engine) for tokenization.
package parser

import (
	"fmt"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/token"
)

// ErrorKind enumerates parser failure modes (spec §7).
type ErrorKind int

const (
	ErrUnexpectedToken ErrorKind = iota
	ErrExpectedExpression
	ErrExpectedType
	ErrUnclosedBlock
	ErrUnclosedParen
	ErrInvalidDeclaration
)

func (k ErrorKind) String() string {
	switch k {
	case ErrExpectedExpression:
		return "ExpectedExpression"
	case ErrExpectedType:
		return "ExpectedType"
	case ErrUnclosedBlock:
		return "UnclosedBlock"
	case ErrUnclosedParen:
		return "UnclosedParen"
	case ErrInvalidDeclaration:
		return "InvalidDeclaration"
	default:
		return "UnexpectedToken"
	}
}

// Error is a parser diagnostic.
type Error struct {
	Kind ErrorKind
	Loc  token.Location
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Loc, e.Msg)
}

// Parser walks a flat token stream (post-lex, post-preprocess) and
// produces an *ast.Program.
type Parser struct {
	toks []token.Token
	pos  int
}

// New filters out comments, directive remnants and excluded-branch tokens
// (the preprocessor leaves those in place with Excluded=true purely for
// the highlighter's benefit) before parsing begins.
func New(toks []token.Token) *Parser {
	filtered := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Excluded {
			continue
		}
		switch t.Kind {
		case token.KindComment, token.KindDirective:
			continue
		}
		filtered = append(filtered, t)
	}
	return &Parser{toks: filtered}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.KindEndOfProgram}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return token.Token{Kind: token.KindEndOfProgram}
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) atSep(b byte) bool {
	t := p.cur()
	return t.Kind == token.KindSeparator && t.Separator == b
}

func (p *Parser) atOp(op string) bool {
	t := p.cur()
	return t.Kind == token.KindOperator && t.Operator == op
}

func (p *Parser) atKw(kw token.Keyword) bool {
	t := p.cur()
	return t.Kind == token.KindKeyword && t.Keyword == kw
}

func (p *Parser) expectSep(b byte) (token.Token, error) {
	if !p.atSep(b) {
		return token.Token{}, &Error{Kind: ErrUnexpectedToken, Loc: p.cur().Loc, Msg: fmt.Sprintf("expected %q, got %s", string(b), p.cur())}
	}
	return p.advance(), nil
}

func (p *Parser) expectOp(op string) (token.Token, error) {
	if !p.atOp(op) {
		return token.Token{}, &Error{Kind: ErrUnexpectedToken, Loc: p.cur().Loc, Msg: fmt.Sprintf("expected %q, got %s", op, p.cur())}
	}
	return p.advance(), nil
}

func (p *Parser) expectIdent() (string, token.Location, error) {
	if p.cur().Kind != token.KindIdentifier {
		return "", token.Location{}, &Error{Kind: ErrUnexpectedToken, Loc: p.cur().Loc, Msg: fmt.Sprintf("expected identifier, got %s", p.cur())}
	}
	t := p.advance()
	return t.Identifier, t.Loc, nil
}

// Parse consumes the whole token stream and returns the Program root.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.cur().Kind != token.KindEndOfProgram {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog, nil
}

func (p *Parser) parseAttributes() ([]*ast.Attribute, error) {
	var attrs []*ast.Attribute
	for p.atSep('[') && p.peek(1).Kind == token.KindSeparator && p.peek(1).Separator == '[' {
		loc := p.cur().Loc
		p.advance()
		p.advance()
		for {
			name, _, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			attr := &ast.Attribute{Name: name}
			attr.Loc = loc
			if p.atSep('(') {
				p.advance()
				for !p.atSep(')') {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					attr.Args = append(attr.Args, arg)
					if p.atSep(',') {
						p.advance()
						continue
					}
					break
				}
				if _, err := p.expectSep(')'); err != nil {
					return nil, err
				}
			}
			attrs = append(attrs, attr)
			if p.atSep(',') {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectSep(']'); err != nil {
			return nil, err
		}
		if _, err := p.expectSep(']'); err != nil {
			return nil, err
		}
	}
	return attrs, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.atKw(token.KwUsing):
		return p.parseUsing()
	case p.atKw(token.KwStruct):
		return p.parseStruct()
	case p.atKw(token.KwUnion):
		return p.parseUnion()
	case p.atKw(token.KwEnum):
		return p.parseEnum()
	case p.atKw(token.KwBitfield):
		return p.parseBitfield()
	case p.atKw(token.KwNamespace):
		return p.parseNamespace()
	case p.atKw(token.KwFn):
		return p.parseFunction()
	case p.atKw(token.KwImport):
		return p.parseImport()
	case p.atKw(token.KwIf):
		return p.parseIf()
	case p.atKw(token.KwWhile):
		return p.parseWhile()
	case p.atKw(token.KwFor):
		return p.parseFor()
	case p.atKw(token.KwReturn):
		return p.parseReturn()
	case p.atKw(token.KwBreak):
		loc := p.advance().Loc
		if _, err := p.expectSep(';'); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Base: ast.Base{Loc: loc}}, nil
	case p.atKw(token.KwContinue):
		loc := p.advance().Loc
		if _, err := p.expectSep(';'); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{Base: ast.Base{Loc: loc}}, nil
	default:
		return p.parseDeclOrExprStatement()
	}
}

func (p *Parser) parseUsing() (ast.Statement, error) {
	loc := p.advance().Loc // `using`
	if p.atKw(token.KwNamespace) {
		p.advance()
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSep(';'); err != nil {
			return nil, err
		}
		return &ast.UsingNamespaceStmt{Base: ast.Base{Loc: loc}, Path: path}, nil
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var template []string
	if p.atOp("<") {
		p.advance()
		for !p.atOp(">") {
			t, _, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			template = append(template, t)
			if p.atSep(',') {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectOp(">"); err != nil {
			return nil, err
		}
	}
	td := &ast.TypedefDecl{Name: name, Template: template}
	td.Loc = loc
	if p.atOp("=") {
		p.advance()
		target, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		td.Target = target
	}
	if _, err := p.expectSep(';'); err != nil {
		return nil, err
	}
	return td, nil
}

// parsePath consumes a `::`-separated identifier chain, used for scope
// resolution, import targets and namespace declarations.
func (p *Parser) parsePath() ([]string, error) {
	var path []string
	for {
		name, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		path = append(path, name)
		if p.atOp("::") {
			p.advance()
			continue
		}
		break
	}
	return path, nil
}

func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expectSep('{'); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.atSep('}') {
		if p.cur().Kind == token.KindEndOfProgram {
			return nil, &Error{Kind: ErrUnclosedBlock, Loc: p.cur().Loc, Msg: "unclosed block"}
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	p.advance() // `}`
	return stmts, nil
}

func (p *Parser) parseTemplateParams() ([]string, error) {
	var out []string
	if !p.atOp("<") {
		return nil, nil
	}
	p.advance()
	for !p.atOp(">") {
		name, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		out = append(out, name)
		if p.atSep(',') {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectOp(">"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseStruct() (ast.Statement, error) {
	loc := p.advance().Loc
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	template, err := p.parseTemplateParams()
	if err != nil {
		return nil, err
	}
	d := &ast.StructDecl{Name: name, Template: template}
	d.Loc = loc
	if p.atOp(":") {
		p.advance()
		for {
			t, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			d.Inherits = append(d.Inherits, t)
			if p.atSep(',') {
				p.advance()
				continue
			}
			break
		}
	}
	members, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	d.Members = members
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	d.Attributes = attrs
	if _, err := p.expectSep(';'); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseUnion() (ast.Statement, error) {
	loc := p.advance().Loc
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	template, err := p.parseTemplateParams()
	if err != nil {
		return nil, err
	}
	d := &ast.UnionDecl{Name: name, Template: template}
	d.Loc = loc
	members, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	d.Members = members
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	d.Attributes = attrs
	if _, err := p.expectSep(';'); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseEnum() (ast.Statement, error) {
	loc := p.advance().Loc
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	d := &ast.EnumDecl{Name: name}
	d.Loc = loc
	if p.atOp(":") {
		p.advance()
		t, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		d.Underlying = t
	}
	if _, err := p.expectSep('{'); err != nil {
		return nil, err
	}
	for !p.atSep('}') {
		ename, eloc, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		entry := &ast.EnumEntry{Name: ename}
		entry.Loc = eloc
		if p.atOp("=") {
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			entry.Value = v
		}
		d.Entries = append(d.Entries, entry)
		if p.atSep(',') {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectSep('}'); err != nil {
		return nil, err
	}
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	d.Attributes = attrs
	if _, err := p.expectSep(';'); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseBitfield() (ast.Statement, error) {
	loc := p.advance().Loc
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	d := &ast.BitfieldDecl{Name: name}
	d.Loc = loc
	if _, err := p.expectSep('{'); err != nil {
		return nil, err
	}
	for !p.atSep('}') {
		field := &ast.BitfieldFieldDecl{}
		fieldLoc := p.cur().Loc
		if p.cur().Kind == token.KindValueType && p.cur().BuiltinType == token.TypePadding {
			p.advance()
			field.Padding = true
		} else {
			fname, floc, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			field.Name = fname
			fieldLoc = floc
		}
		field.Loc = fieldLoc
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		size, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		field.Size = size
		attrs, err := p.parseAttributes()
		if err != nil {
			return nil, err
		}
		field.Attributes = attrs
		if _, err := p.expectSep(';'); err != nil {
			return nil, err
		}
		d.Fields = append(d.Fields, field)
	}
	if _, err := p.expectSep('}'); err != nil {
		return nil, err
	}
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	d.Attributes = attrs
	if _, err := p.expectSep(';'); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseNamespace() (ast.Statement, error) {
	loc := p.advance().Loc
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.NamespaceDecl{Base: ast.Base{Loc: loc}, Path: path, Body: body}, nil
}

func (p *Parser) parseFunction() (ast.Statement, error) {
	loc := p.advance().Loc
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSep('('); err != nil {
		return nil, err
	}
	var params []*ast.FunctionParam
	for !p.atSep(')') {
		pt, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		pname, ploc, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		fp := &ast.FunctionParam{Name: pname, Type: pt}
		fp.Loc = ploc
		if p.atOp("=") {
			p.advance()
			dv, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fp.Default = dv
		}
		params = append(params, fp)
		if p.atSep(',') {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectSep(')'); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Base: ast.Base{Loc: loc}, Name: name, Params: params, Body: body}, nil
}

func (p *Parser) parseImport() (ast.Statement, error) {
	loc := p.advance().Loc
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	stmt := &ast.ImportStmt{Path: path}
	stmt.Loc = loc
	if p.cur().Kind == token.KindIdentifier && p.cur().Identifier == "as" {
		p.advance()
		alias, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		stmt.Alias = alias
	}
	if _, err := p.expectSep(';'); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	loc := p.advance().Loc
	if _, err := p.expectSep('('); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSep(')'); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	stmt.Loc = loc
	if p.atKw(token.KwElse) {
		p.advance()
		if p.atKw(token.KwIf) {
			elseif, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.Else = []ast.Statement{elseif}
		} else {
			els, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = els
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	loc := p.advance().Loc
	if _, err := p.expectSep('('); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSep(')'); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Base: ast.Base{Loc: loc}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	loc := p.advance().Loc
	if _, err := p.expectSep('('); err != nil {
		return nil, err
	}
	init, err := p.parseDeclOrExprStatement()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSep(';'); err != nil {
		return nil, err
	}
	post, err := p.parseAssignmentOrExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSep(')'); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Base: ast.Base{Loc: loc}, Init: init, Cond: cond, Post: post, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	loc := p.advance().Loc
	stmt := &ast.ReturnStmt{}
	stmt.Loc = loc
	if !p.atSep(';') {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Value = v
	}
	if _, err := p.expectSep(';'); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseTypeRef parses a type name at a use site: `typeof(expr)`, a
// builtin (`u32`, `str`, ...), or a possibly scope-qualified,
// possibly-templated user-defined type name.
func (p *Parser) parseTypeRef() (*ast.TypeRef, error) {
	loc := p.cur().Loc
	if p.atKw(token.KwTypeof) {
		p.advance()
		if _, err := p.expectSep('('); err != nil {
			return nil, err
		}
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSep(')'); err != nil {
			return nil, err
		}
		te := &ast.TypeofExpr{Operand: operand}
		te.Loc = loc
		return &ast.TypeRef{Base: ast.Base{Loc: loc}, Typeof: te}, nil
	}
	if p.cur().Kind == token.KindValueType {
		bt := p.advance().BuiltinType
		return &ast.TypeRef{Base: ast.Base{Loc: loc}, Builtin: bt, IsBuiltin: true}, nil
	}
	if p.cur().Kind != token.KindIdentifier {
		return nil, &Error{Kind: ErrExpectedType, Loc: loc, Msg: fmt.Sprintf("expected type, got %s", p.cur())}
	}
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	ref := &ast.TypeRef{Base: ast.Base{Loc: loc}}
	ref.ScopePath = path[:len(path)-1]
	ref.Name = path[len(path)-1]
	if p.atOp("<") {
		p.advance()
		for !p.atOp(">") {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			ref.TemplateArgs = append(ref.TemplateArgs, arg)
			if p.atSep(',') {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectOp(">"); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

// parseDeclOrExprStatement handles the statement forms that start with a
// type name: plain/array/pointer/multi variable declarations. A bare
// expression statement (including assignment) is the fallback when no
// declarator follows.
func (p *Parser) parseDeclOrExprStatement() (ast.Statement, error) {
	if looksLikeTypeStart(p.cur()) && p.startsDeclaration() {
		return p.parseVariableDeclStatement()
	}
	return p.parseAssignmentOrExpr()
}

func looksLikeTypeStart(t token.Token) bool {
	return t.Kind == token.KindValueType || t.Kind == token.KindIdentifier || (t.Kind == token.KindKeyword && t.Keyword == token.KwTypeof)
}

// startsDeclaration looks ahead past a type reference for a name token, to
// disambiguate `Foo bar;` (declaration) from `Foo(bar);` or `Foo.bar = 1;`
// (expression statement) without backtracking the whole parser.
func (p *Parser) startsDeclaration() bool {
	save := p.pos
	defer func() { p.pos = save }()

	if _, err := p.parseTypeRef(); err != nil {
		return false
	}
	if p.atOp("*") {
		p.advance()
	}
	return p.cur().Kind == token.KindIdentifier
}

func (p *Parser) parseVariableDeclStatement() (ast.Statement, error) {
	typ, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	first, err := p.parseOneDeclarator(typ)
	if err != nil {
		return nil, err
	}
	if !p.atSep(',') {
		if _, err := p.expectSep(';'); err != nil {
			return nil, err
		}
		return first, nil
	}
	decls := []ast.Statement{first}
	for p.atSep(',') {
		p.advance()
		d, err := p.parseOneDeclarator(typ)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	if _, err := p.expectSep(';'); err != nil {
		return nil, err
	}
	return &ast.MultiVariableDecl{Decls: decls}, nil
}

// parseOneDeclarator parses one name (with optional `*`, `[...]`,
// placement and attributes) sharing typ as its base type.
func (p *Parser) parseOneDeclarator(typ *ast.TypeRef) (ast.Statement, error) {
	loc := p.cur().Loc
	pointer := false
	if p.atOp("*") {
		pointer = true
		p.advance()
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if pointer {
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		sized, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		d := &ast.PointerVariableDecl{Type: typ, Name: name, SizedType: sized}
		d.Loc = loc
		placement, err := p.parsePlacement()
		if err != nil {
			return nil, err
		}
		d.Placement = placement
		attrs, err := p.parseAttributes()
		if err != nil {
			return nil, err
		}
		d.Attributes = attrs
		return d, nil
	}

	if p.atSep('[') {
		p.advance()
		d := &ast.ArrayVariableDecl{Type: typ, Name: name}
		d.Loc = loc
		if p.atKw(token.KwWhile) {
			p.advance()
			if _, err := p.expectSep('('); err != nil {
				return nil, err
			}
			cond, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectSep(')'); err != nil {
				return nil, err
			}
			d.WhileCond = cond
		} else if !p.atSep(']') {
			size, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			d.Size = size
		}
		if _, err := p.expectSep(']'); err != nil {
			return nil, err
		}
		placement, err := p.parsePlacement()
		if err != nil {
			return nil, err
		}
		d.Placement = placement
		attrs, err := p.parseAttributes()
		if err != nil {
			return nil, err
		}
		d.Attributes = attrs
		return d, nil
	}

	d := &ast.VariableDecl{Type: typ, Name: name}
	d.Loc = loc
	placement, err := p.parsePlacement()
	if err != nil {
		return nil, err
	}
	d.Placement = placement
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	d.Attributes = attrs
	return d, nil
}

// parsePlacement consumes an optional `@ expr` placement suffix.
func (p *Parser) parsePlacement() (ast.Expr, error) {
	if !p.atOp("@") {
		return nil, nil
	}
	p.advance()
	return p.parseExpr()
}

func (p *Parser) parseAssignmentOrExpr() (ast.Statement, error) {
	loc := p.cur().Loc
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if isAssignOp(p.cur()) {
		op := p.advance().Operator
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt := &ast.AssignmentStmt{Target: expr, Op: op, Value: rhs}
		stmt.Loc = loc
		if p.atSep(';') {
			p.advance()
		}
		return stmt, nil
	}
	stmt := &ast.ExprStmt{Expr: expr}
	stmt.Loc = loc
	if p.atSep(';') {
		p.advance()
	}
	return stmt, nil
}

func isAssignOp(t token.Token) bool {
	if t.Kind != token.KindOperator {
		return false
	}
	switch t.Operator {
	case "=", "+=", "-=", "*=", "/=", "<<=", ">>=":
		return true
	default:
		return false
	}
}

// ---- Expressions: precedence climbing ----
//
// Highest to lowest binding power: unary, multiplicative, additive,
// shift, relational, equality, bitwise-and, bitwise-xor, bitwise-or,
// logical-and, logical-or, ternary.

var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseTernary()
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if !p.atOp("?") {
		return cond, nil
	}
	loc := p.advance().Loc
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	t := &ast.TernaryExpr{Cond: cond, Then: then, Else: els}
	t.Loc = loc
	return t, nil
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.Kind != token.KindOperator {
			break
		}
		prec, ok := precedence[t.Operator]
		if !ok || prec < minPrec {
			break
		}
		op := p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		m := &ast.MathExpr{Op: op.Operator, Left: left, Right: right}
		m.Loc = op.Loc
		left = m
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	t := p.cur()
	if t.Kind == token.KindOperator {
		switch t.Operator {
		case "-", "!", "~", "*":
			p.advance()
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			u := &ast.UnaryExpr{Op: t.Operator, Operand: operand}
			u.Loc = t.Loc
			return u, nil
		}
	}
	if t.Kind == token.KindKeyword {
		switch t.Keyword {
		case token.KwSizeof:
			return p.parseSizeof()
		case token.KwAddressof:
			return p.parseAddressof()
		}
	}
	if t.Kind == token.KindSeparator && t.Separator == '(' && p.looksLikeCast() {
		return p.parseCast()
	}
	return p.parsePostfix()
}

func (p *Parser) looksLikeCast() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.advance() // `(`
	if !looksLikeTypeStart(p.cur()) {
		return false
	}
	if _, err := p.parseTypeRef(); err != nil {
		return false
	}
	return p.atSep(')')
}

func (p *Parser) parseCast() (ast.Expr, error) {
	loc := p.advance().Loc // `(`
	typ, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSep(')'); err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	c := &ast.CastExpr{Type: typ, Operand: operand}
	c.Loc = loc
	return c, nil
}

func (p *Parser) parseSizeof() (ast.Expr, error) {
	loc := p.advance().Loc
	if _, err := p.expectSep('('); err != nil {
		return nil, err
	}
	s := &ast.SizeofExpr{}
	s.Loc = loc
	if looksLikeTypeStart(p.cur()) {
		save := p.pos
		if typ, err := p.parseTypeRef(); err == nil && p.atSep(')') {
			s.Type = typ
			p.advance()
			return s, nil
		}
		p.pos = save
	}
	operand, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	s.Operand = operand
	if _, err := p.expectSep(')'); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) parseAddressof() (ast.Expr, error) {
	loc := p.advance().Loc
	if _, err := p.expectSep('('); err != nil {
		return nil, err
	}
	operand, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSep(')'); err != nil {
		return nil, err
	}
	a := &ast.AddressofExpr{Operand: operand}
	a.Loc = loc
	return a, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atOp("."):
			p.advance()
			name, nloc, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			m := &ast.MemberAccess{Target: expr, Name: name}
			m.Loc = nloc
			expr = m
		case p.atSep('['):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectSep(']'); err != nil {
				return nil, err
			}
			ia := &ast.IndexAccess{Target: expr, Index: idx}
			expr = ia
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.cur()
	switch t.Kind {
	case token.KindInteger:
		p.advance()
		l := &ast.Literal{Kind: ast.LitInt, Int: t.Int}
		l.Loc = t.Loc
		return l, nil
	case token.KindFloat:
		p.advance()
		l := &ast.Literal{Kind: ast.LitFloat, Flt: t.Float}
		l.Loc = t.Loc
		return l, nil
	case token.KindString:
		p.advance()
		l := &ast.Literal{Kind: ast.LitString, Str: t.Str}
		l.Loc = t.Loc
		return l, nil
	case token.KindChar:
		p.advance()
		l := &ast.Literal{Kind: ast.LitChar, Chr: t.Char}
		l.Loc = t.Loc
		return l, nil
	case token.KindKeyword:
		switch t.Keyword {
		case token.KwTrue, token.KwFalse:
			p.advance()
			l := &ast.Literal{Kind: ast.LitBool, Bool: t.Keyword == token.KwTrue}
			l.Loc = t.Loc
			return l, nil
		case token.KwNull:
			p.advance()
			l := &ast.Literal{Kind: ast.LitNull}
			l.Loc = t.Loc
			return l, nil
		case token.KwThis, token.KwParent:
			p.advance()
			name := "this"
			if t.Keyword == token.KwParent {
				name = "parent"
			}
			return &ast.Identifier{Base: ast.Base{Loc: t.Loc}, Name: name}, nil
		}
	case token.KindSeparator:
		if t.Separator == '(' {
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectSep(')'); err != nil {
				return nil, err
			}
			return e, nil
		}
	case token.KindIdentifier:
		return p.parseIdentOrCallOrScope()
	}
	return nil, &Error{Kind: ErrExpectedExpression, Loc: t.Loc, Msg: fmt.Sprintf("unexpected token %s", t)}
}

func (p *Parser) parseIdentOrCallOrScope() (ast.Expr, error) {
	loc := p.cur().Loc
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if p.atSep('(') {
		p.advance()
		var args []ast.Expr
		for !p.atSep(')') {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.atSep(',') {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectSep(')'); err != nil {
			return nil, err
		}
		call := &ast.FunctionCall{ScopePath: path[:len(path)-1], Name: path[len(path)-1], Args: args}
		call.Loc = loc
		return call, nil
	}
	if len(path) > 1 {
		sr := &ast.ScopeResolution{Path: path}
		sr.Loc = loc
		return sr, nil
	}
	id := &ast.Identifier{Name: path[0]}
	id.Loc = loc
	return id, nil
}

