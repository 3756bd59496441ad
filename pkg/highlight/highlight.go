// Package highlight implements the pattern language's syntax highlighter
// (spec §4.7): a second pass over the lexer's token stream and the
// parsed AST that assigns one Palette index per token. Identifiers are
// looked up in a flat name table built by symtab.go's own type-switch walk
// over the declarations; it is not an ast.Visitor pass.
package highlight

import (
	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/token"
)

// Palette is the closed set of display colors spec §4.7 enumerates.
type Palette int

const (
	Default Palette = iota
	Keyword
	BuiltInType
	Operator
	Separator
	StringLiteral
	CharLiteral
	NumericLiteral
	Comment
	BlockComment
	DocComment
	DocBlockComment
	DocGlobalComment
	Directive
	PreprocIdentifier
	PreprocessorDeactivated
	Identifier
	UserDefinedType
	Function
	Attribute
	NameSpace
	TypeDef
	GlobalVariable
	PlacedVariable
	PatternVariable
	LocalVariable
	CalculatedPointer
	TemplateArgument
	View
	FunctionVariable
	FunctionParameter
	UnkIdentifier
)

func (p Palette) String() string {
	names := [...]string{
		"Default", "Keyword", "BuiltInType", "Operator", "Separator",
		"StringLiteral", "CharLiteral", "NumericLiteral", "Comment",
		"BlockComment", "DocComment", "DocBlockComment", "DocGlobalComment",
		"Directive", "PreprocIdentifier", "PreprocessorDeactivated",
		"Identifier", "UserDefinedType", "Function", "Attribute", "NameSpace",
		"TypeDef", "GlobalVariable", "PlacedVariable", "PatternVariable",
		"LocalVariable", "CalculatedPointer", "TemplateArgument", "View",
		"FunctionVariable", "FunctionParameter", "UnkIdentifier",
	}
	if int(p) < len(names) {
		return names[p]
	}
	return "Default"
}

// idKindPalette maps the late-bound token.IDKind the resolver pass
// assigns back onto a Palette, so Run can reuse one table
// instead of a parallel switch.
var idKindPalette = map[token.IDKind]Palette{
	token.IDFunction:                Function,
	token.IDUDT:                     UserDefinedType,
	token.IDNameSpace:                NameSpace,
	token.IDTypedef:                 TypeDef,
	token.IDTemplateArgument:        TemplateArgument,
	token.IDGlobalVariable:          GlobalVariable,
	token.IDPlacedVariable:          PlacedVariable,
	token.IDPatternVariable:         PatternVariable,
	token.IDLocalVariable:           LocalVariable,
	token.IDCalculatedPointer:       CalculatedPointer,
	token.IDView:                    View,
	token.IDFunctionVariable:        FunctionVariable,
	token.IDFunctionParameter:       FunctionParameter,
	token.IDAttribute:               Attribute,
	token.IDMacro:                   PreprocIdentifier,
	token.IDMemberUnknown:           UnkIdentifier,
	token.IDFunctionUnknown:         UnkIdentifier,
	token.IDScopeResolutionUnknown:  UnkIdentifier,
}

// Result is the highlighter's output: one Palette entry per input token,
// in the same order.
type Result struct {
	Tokens  []token.Token
	Colors  []Palette
}

// Run executes the full two-pass algorithm spec §4.7 describes: lexical
// classification followed by identifier-chain resolution against prog's
// declarations. prog may be nil (e.g. the source failed to parse); in
// that case no declarations are known, so every identifier is painted
// UnkIdentifier, and excluded tokens are still painted
// PreprocessorDeactivated.
func Run(toks []token.Token, prog *ast.Program) *Result {
	r := &Result{Tokens: toks, Colors: make([]Palette, len(toks))}
	for i, t := range toks {
		r.Colors[i] = classifyLexical(t)
	}

	var names map[string]token.IDKind
	if prog != nil {
		names = buildSymbolTable(prog.Statements)
	}

	for i, t := range toks {
		if t.Excluded {
			r.Colors[i] = PreprocessorDeactivated
			continue
		}
		if t.Kind != token.KindIdentifier {
			continue
		}
		if kind, ok := names[t.Identifier]; ok {
			if p, ok := idKindPalette[kind]; ok {
				r.Colors[i] = p
				continue
			}
		}
		r.Colors[i] = UnkIdentifier
	}
	return r
}

// classifyLexical paints a single token by its lexical class alone (spec
// §4.7 step 2), before any identifier resolution runs.
func classifyLexical(t token.Token) Palette {
	switch t.Kind {
	case token.KindKeyword:
		return Keyword
	case token.KindValueType:
		return BuiltInType
	case token.KindOperator:
		return Operator
	case token.KindSeparator:
		return Separator
	case token.KindString:
		return StringLiteral
	case token.KindChar:
		return CharLiteral
	case token.KindInteger, token.KindFloat:
		return NumericLiteral
	case token.KindDirective:
		return Directive
	case token.KindComment:
		switch t.CommentFlavor {
		case token.CommentDocLine:
			return DocComment
		case token.CommentDocBlock:
			return DocBlockComment
		case token.CommentDocGlobalLine, token.CommentDocGlobalBlock:
			return DocGlobalComment
		case token.CommentBlock:
			return BlockComment
		default:
			return Comment
		}
	case token.KindIdentifier:
		return Identifier // overwritten by Run's resolution pass
	default:
		return Default
	}
}
