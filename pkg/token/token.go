// Package token defines the lexical vocabulary shared by the lexer, parser,
// evaluator and syntax highlighter: source locations, the token tagged-union,
// and the literal value type patterns are built from.
package token

import (
	"fmt"

	"github.com/vellumlang/vellum/pkg/numeric"
)

// Int128 aliases numeric.Int128 so callers that only need token literal
// values don't have to import the numeric package themselves.
type Int128 = numeric.Int128

// SourceID identifies one preprocessed source (the main file or one
// #include). It is a plain string; the CLI uses the file path, and the
// include resolver returns the resolved path for each #include.
type SourceID string

// Location is the (source, line, column, length) every token and diagnostic
// carries. Two locations in the same source compare by (line, column).
type Location struct {
	Source SourceID
	Line   int // 1-based
	Column int // 1-based
	Length int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Less orders two locations from the same source by (line, column).
func (l Location) Less(o Location) bool {
	if l.Line != o.Line {
		return l.Line < o.Line
	}
	return l.Column < o.Column
}

// Kind is the tagged category of a Token.
type Kind int

const (
	KindInvalid Kind = iota
	KindKeyword
	KindOperator
	KindSeparator
	KindValueType
	KindInteger
	KindFloat
	KindString
	KindChar
	KindIdentifier
	KindComment
	KindDirective
	KindEndOfProgram
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "Keyword"
	case KindOperator:
		return "Operator"
	case KindSeparator:
		return "Separator"
	case KindValueType:
		return "ValueType"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindChar:
		return "Char"
	case KindIdentifier:
		return "Identifier"
	case KindComment:
		return "Comment"
	case KindDirective:
		return "Directive"
	case KindEndOfProgram:
		return "EndOfProgram"
	default:
		return "Invalid"
	}
}

// IDKind is the late-bound classification of an identifier. The lexer
// leaves IDUnknown; pkg/highlight's symbol table maps names to these kinds
// without writing them back into the tokens.
type IDKind int

const (
	IDUnknown IDKind = iota
	IDFunction
	IDUDT
	IDNameSpace
	IDTypedef
	IDTemplateArgument
	IDGlobalVariable
	IDPlacedVariable
	IDPatternVariable
	IDLocalVariable
	IDCalculatedPointer
	IDView
	IDFunctionVariable
	IDFunctionParameter
	IDMacro
	IDAttribute
	IDMemberUnknown
	IDFunctionUnknown
	IDScopeResolutionUnknown
)

// CommentFlavor distinguishes the four doc-comment variants from plain ones.
type CommentFlavor int

const (
	CommentLine CommentFlavor = iota
	CommentBlock
	CommentDocLine       // ///
	CommentDocBlock      // /** */
	CommentDocGlobalLine // //!
	CommentDocGlobalBlock
)

// Keyword enumerates the reserved words of the pattern language.
type Keyword int

const (
	KwUsing Keyword = iota
	KwStruct
	KwUnion
	KwEnum
	KwBitfield
	KwNamespace
	KwFn
	KwReturn
	KwIf
	KwElse
	KwWhile
	KwFor
	KwBreak
	KwContinue
	KwTrue
	KwFalse
	KwNull
	KwThis
	KwParent
	KwIn
	KwOut
	KwImport
	KwAddressof
	KwSizeof
	KwTypeof
)

var Keywords = map[string]Keyword{
	"using": KwUsing, "struct": KwStruct, "union": KwUnion, "enum": KwEnum,
	"bitfield": KwBitfield, "namespace": KwNamespace, "fn": KwFn, "return": KwReturn,
	"if": KwIf, "else": KwElse, "while": KwWhile, "for": KwFor,
	"break": KwBreak, "continue": KwContinue, "true": KwTrue, "false": KwFalse,
	"null": KwNull, "this": KwThis, "parent": KwParent, "in": KwIn, "out": KwOut,
	"import": KwImport, "addressof": KwAddressof, "sizeof": KwSizeof, "typeof": KwTypeof,
}

// BuiltinType enumerates the reserved built-in type names.
type BuiltinType int

const (
	TypeU8 BuiltinType = iota
	TypeU16
	TypeU24
	TypeU32
	TypeU48
	TypeU64
	TypeU96
	TypeU128
	TypeS8
	TypeS16
	TypeS24
	TypeS32
	TypeS48
	TypeS64
	TypeS96
	TypeS128
	TypeFloat
	TypeDouble
	TypeBool
	TypeChar
	TypeChar16
	TypePadding
	TypeAuto
	TypeStr
)

var BuiltinTypes = map[string]BuiltinType{
	"u8": TypeU8, "u16": TypeU16, "u24": TypeU24, "u32": TypeU32, "u48": TypeU48,
	"u64": TypeU64, "u96": TypeU96, "u128": TypeU128,
	"s8": TypeS8, "s16": TypeS16, "s24": TypeS24, "s32": TypeS32, "s48": TypeS48,
	"s64": TypeS64, "s96": TypeS96, "s128": TypeS128,
	"float": TypeFloat, "double": TypeDouble, "bool": TypeBool,
	"char": TypeChar, "char16": TypeChar16, "padding": TypePadding,
	"auto": TypeAuto, "str": TypeStr,
}

// Size returns the built-in type's width in bytes. Auto and str have no
// fixed width and return 0.
func (t BuiltinType) Size() uint64 {
	switch t {
	case TypeU8, TypeS8, TypeBool, TypeChar, TypePadding:
		return 1
	case TypeU16, TypeS16, TypeChar16:
		return 2
	case TypeU24, TypeS24:
		return 3
	case TypeU32, TypeS32, TypeFloat:
		return 4
	case TypeU48, TypeS48:
		return 6
	case TypeU64, TypeS64, TypeDouble:
		return 8
	case TypeU96, TypeS96:
		return 12
	case TypeU128, TypeS128:
		return 16
	default:
		return 0
	}
}

func (t BuiltinType) Signed() bool {
	switch t {
	case TypeS8, TypeS16, TypeS24, TypeS32, TypeS48, TypeS64, TypeS96, TypeS128:
		return true
	default:
		return false
	}
}

// Token is the tagged-union lexeme produced by the lexer.
type Token struct {
	Kind Kind
	Loc  Location

	Keyword     Keyword
	Operator    string
	Separator   byte
	BuiltinType BuiltinType

	// Literal payload: at most one of these is meaningful, selected by Kind.
	Int      Int128
	Float    float64
	Str      string
	Char     rune
	IsChar16 bool

	Identifier string
	IDKind     IDKind

	Comment       string
	CommentSingle bool
	CommentFlavor CommentFlavor

	Directive string

	// Excluded marks a token that fell inside a false #ifdef/#ifndef branch;
	// it is still emitted (so the highlighter can grey it out) but the
	// parser skips it.
	Excluded bool
}

func (t Token) String() string {
	switch t.Kind {
	case KindIdentifier:
		return fmt.Sprintf("Identifier(%s)", t.Identifier)
	case KindInteger:
		return fmt.Sprintf("Integer(%s)", t.Int.String())
	case KindString:
		return fmt.Sprintf("String(%q)", t.Str)
	default:
		return t.Kind.String()
	}
}
