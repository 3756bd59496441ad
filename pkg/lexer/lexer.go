// Package lexer turns pattern-language source text into a token stream
// (spec §4.1). Tokenization itself runs on participle's stateful regex
// engine (github.com/alecthomas/participle/v2/lexer) — the same engine
// `forthc` and `guix` build their parsers on — but this package only uses
// it for what it is good at, splitting a byte stream into located lexemes;
// classification (keyword vs. type vs. identifier, numeric base and
// suffix, escape decoding) and every diagnostic kind is our own, since the
// pattern language's literal grammar is richer than a single regex
// alternation can validate on its own.
package lexer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	plex "github.com/alecthomas/participle/v2/lexer"

	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/token"
)

// ErrorKind enumerates the lexical failure modes from spec §4.1/§7.
type ErrorKind int

const (
	ErrInvalidCharacter ErrorKind = iota
	ErrUnterminatedString
	ErrUnterminatedChar
	ErrUnterminatedComment
	ErrInvalidEscape
	ErrNumericOutOfRange
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnterminatedString:
		return "UnterminatedString"
	case ErrUnterminatedChar:
		return "UnterminatedChar"
	case ErrUnterminatedComment:
		return "UnterminatedComment"
	case ErrInvalidEscape:
		return "InvalidEscape"
	case ErrNumericOutOfRange:
		return "NumericOutOfRange"
	default:
		return "InvalidCharacter"
	}
}

// Error is a lexical diagnostic; every failure mode carries a location.
type Error struct {
	Kind ErrorKind
	Loc  token.Location
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Loc, e.Msg)
}

const (
	ruleWhitespace     = "Whitespace"
	ruleDirective      = "Directive"
	ruleDocBlockGlobal = "DocBlockGlobal"
	ruleDocBlock       = "DocBlock"
	ruleDocLineGlobal  = "DocLineGlobal"
	ruleDocLine        = "DocLine"
	ruleBlockComment   = "BlockComment"
	ruleLineComment    = "LineComment"
	ruleString         = "String"
	ruleChar           = "Char"
	ruleHex            = "Hex"
	ruleBinary         = "Binary"
	ruleOctal          = "Octal"
	ruleFloat          = "Float"
	ruleDecimal        = "Decimal"
	ruleIdent          = "Ident"
	ruleOp3            = "Op3"
	ruleOp2            = "Op2"
	ruleOp1            = "Op1"
	ruleSep            = "Sep"
)

// definition is the participle stateful lexer: one flat "Root" state is
// enough because the pattern language, unlike guix's template DSL, has no
// nested lexical modes (no backtick templates to push/pop into).
var definition = plex.MustStateful(plex.Rules{
	"Root": {
		{Name: ruleWhitespace, Pattern: `[ \t\r\n]+`},
		{Name: ruleDirective, Pattern: `#[^\n]*`},
		{Name: ruleDocBlockGlobal, Pattern: `/\*!(?:[^*]|\*[^/])*\*/|/\*!(?:[^*]|\*[^/])*`},
		{Name: ruleDocBlock, Pattern: `/\*\*(?:[^*]|\*[^/])*\*/|/\*\*(?:[^*]|\*[^/])*`},
		{Name: ruleBlockComment, Pattern: `/\*(?:[^*]|\*[^/])*\*/|/\*(?:[^*]|\*[^/])*`},
		{Name: ruleDocLineGlobal, Pattern: `//![^\n]*`},
		{Name: ruleDocLine, Pattern: `///[^\n]*`},
		{Name: ruleLineComment, Pattern: `//[^\n]*`},
		{Name: ruleString, Pattern: `"(?:\\.|[^"\\\n])*"?`},
		{Name: ruleChar, Pattern: `'(?:\\.|[^'\\\n])*'?`},
		{Name: ruleHex, Pattern: `0[xX][0-9a-fA-F]+[uUlL]*`},
		{Name: ruleBinary, Pattern: `0[bB][01]+[uUlL]*`},
		{Name: ruleOctal, Pattern: `0[oO][0-7]+[uUlL]*`},
		{Name: ruleFloat, Pattern: `[0-9]+\.[0-9]*([eE][+-]?[0-9]+)?[fFdD]?`},
		{Name: ruleDecimal, Pattern: `[0-9]+[uUlL]*`},
		{Name: ruleIdent, Pattern: `[A-Za-z_$][A-Za-z0-9_]*`},
		{Name: ruleOp3, Pattern: `<<=|>>=`},
		{Name: ruleOp2, Pattern: `&&|\|\||==|!=|<=|>=|<<|>>|::|\+=|-=|\*=|/=`},
		{Name: ruleOp1, Pattern: `[+\-*/%~!&|^<>=?:.,;@]`},
		{Name: ruleSep, Pattern: `[(){}\[\]]`},
	},
})

var operators2and3 = map[string]bool{
	"<<=": true, ">>=": true, "&&": true, "||": true, "==": true, "!=": true,
	"<=": true, ">=": true, "<<": true, ">>": true, "::": true,
	"+=": true, "-=": true, "*=": true, "/=": true,
}

// Lex tokenizes src, returning an ordered token stream terminated by
// KindEndOfProgram, or the first lexical Error encountered.
func Lex(id token.SourceID, src string) ([]token.Token, error) {
	lx, err := definition.Lex(string(id), strings.NewReader(src))
	if err != nil {
		return nil, &Error{Kind: ErrInvalidCharacter, Msg: err.Error()}
	}

	names := invert(definition.Symbols())

	var out []token.Token
	for {
		raw, err := lx.Next()
		if err != nil {
			return nil, &Error{Kind: ErrInvalidCharacter, Msg: err.Error()}
		}
		if raw.EOF() {
			break
		}
		name := names[raw.Type]
		loc := token.Location{Source: id, Line: raw.Pos.Line, Column: raw.Pos.Column, Length: len(raw.Value)}

		switch name {
		case ruleWhitespace:
			continue
		case ruleDirective:
			out = append(out, token.Token{Kind: token.KindDirective, Loc: loc, Directive: strings.TrimPrefix(raw.Value, "#")})
		case ruleDocBlockGlobal, ruleDocBlock, ruleBlockComment:
			t, err := blockComment(name, raw.Value, loc)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case ruleDocLineGlobal, ruleDocLine, ruleLineComment:
			out = append(out, lineComment(name, raw.Value, loc))
		case ruleString:
			t, err := stringLiteral(raw.Value, loc)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case ruleChar:
			t, err := charLiteral(raw.Value, loc)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case ruleHex, ruleBinary, ruleOctal, ruleDecimal:
			t, err := integerLiteral(raw.Value, loc)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case ruleFloat:
			t, err := floatLiteral(raw.Value, loc)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case ruleIdent:
			out = append(out, identifier(raw.Value, loc))
		case ruleOp3, ruleOp2, ruleOp1:
			out = append(out, token.Token{Kind: token.KindOperator, Loc: loc, Operator: raw.Value})
		case ruleSep:
			out = append(out, token.Token{Kind: token.KindSeparator, Loc: loc, Separator: raw.Value[0]})
		default:
			return nil, &Error{Kind: ErrInvalidCharacter, Loc: loc, Msg: fmt.Sprintf("unrecognized lexeme %q", raw.Value)}
		}
	}

	out = append(out, token.Token{Kind: token.KindEndOfProgram})
	return out, nil
}

func invert(m map[string]plex.TokenType) map[plex.TokenType]string {
	out := make(map[plex.TokenType]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func blockComment(rule, raw string, loc token.Location) (token.Token, error) {
	if !strings.HasSuffix(raw, "*/") {
		return token.Token{}, &Error{Kind: ErrUnterminatedComment, Loc: loc, Msg: "unterminated block comment"}
	}
	flavor := token.CommentBlock
	switch rule {
	case ruleDocBlockGlobal:
		flavor = token.CommentDocGlobalBlock
	case ruleDocBlock:
		flavor = token.CommentDocBlock
	}
	return token.Token{Kind: token.KindComment, Loc: loc, Comment: raw, CommentSingle: false, CommentFlavor: flavor}, nil
}

func lineComment(rule, raw string, loc token.Location) token.Token {
	flavor := token.CommentLine
	switch rule {
	case ruleDocLineGlobal:
		flavor = token.CommentDocGlobalLine
	case ruleDocLine:
		flavor = token.CommentDocLine
	}
	return token.Token{Kind: token.KindComment, Loc: loc, Comment: raw, CommentSingle: true, CommentFlavor: flavor}
}

func stringLiteral(raw string, loc token.Location) (token.Token, error) {
	if !strings.HasSuffix(raw, `"`) || len(raw) < 2 {
		return token.Token{}, &Error{Kind: ErrUnterminatedString, Loc: loc, Msg: "unterminated string literal"}
	}
	body := raw[1 : len(raw)-1]
	decoded, _, err := unescape(body, loc)
	if err != nil {
		return token.Token{}, err
	}
	return token.Token{Kind: token.KindString, Loc: loc, Str: decoded}, nil
}

func charLiteral(raw string, loc token.Location) (token.Token, error) {
	if !strings.HasSuffix(raw, "'") || len(raw) < 2 {
		return token.Token{}, &Error{Kind: ErrUnterminatedChar, Loc: loc, Msg: "unterminated char literal"}
	}
	body := raw[1 : len(raw)-1]
	decoded, isChar16, err := unescape(body, loc)
	if err != nil {
		return token.Token{}, err
	}
	r := []rune(decoded)
	if len(r) != 1 {
		return token.Token{}, &Error{Kind: ErrInvalidEscape, Loc: loc, Msg: "char literal must decode to exactly one rune"}
	}
	return token.Token{Kind: token.KindChar, Loc: loc, Char: r[0], IsChar16: isChar16}, nil
}

// unescape decodes the standard C escape set plus \xHH and \uHHHH (the
// latter yields a char16, not rune>0xFFFF as in raw unicode escapes — spec
// §4.1 "unicode (\uHHHH -> char16)").
func unescape(s string, loc token.Location) (string, bool, error) {
	var b strings.Builder
	isChar16 := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", false, &Error{Kind: ErrInvalidEscape, Loc: loc, Msg: "trailing backslash"}
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		case '0':
			b.WriteByte(0)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'x':
			if i+2 >= len(s) {
				return "", false, &Error{Kind: ErrInvalidEscape, Loc: loc, Msg: "incomplete \\x escape"}
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", false, &Error{Kind: ErrInvalidEscape, Loc: loc, Msg: "invalid \\x escape"}
			}
			b.WriteByte(byte(v))
			i += 2
		case 'u':
			if i+4 >= len(s) {
				return "", false, &Error{Kind: ErrInvalidEscape, Loc: loc, Msg: "incomplete \\u escape"}
			}
			v, err := strconv.ParseUint(s[i+1:i+5], 16, 16)
			if err != nil {
				return "", false, &Error{Kind: ErrInvalidEscape, Loc: loc, Msg: "invalid \\u escape"}
			}
			b.WriteRune(rune(v))
			i += 4
			isChar16 = true
		default:
			return "", false, &Error{Kind: ErrInvalidEscape, Loc: loc, Msg: fmt.Sprintf("unknown escape \\%c", s[i])}
		}
	}
	return b.String(), isChar16, nil
}

func trimIntSuffix(raw string) (digits string, unsigned bool) {
	end := len(raw)
	for end > 0 && strings.ContainsRune("uUlL", rune(raw[end-1])) {
		if raw[end-1] == 'u' || raw[end-1] == 'U' {
			unsigned = true
		}
		end--
	}
	return raw[:end], unsigned
}

func integerLiteral(raw string, loc token.Location) (token.Token, error) {
	digits, unsigned := trimIntSuffix(raw)
	var base int
	var body string
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base, body = 16, digits[2:]
	case strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0B"):
		base, body = 2, digits[2:]
	case strings.HasPrefix(digits, "0o") || strings.HasPrefix(digits, "0O"):
		base, body = 8, digits[2:]
	default:
		base, body = 10, digits
	}
	if len(body) == 0 {
		return token.Token{}, &Error{Kind: ErrInvalidCharacter, Loc: loc, Msg: "empty numeric literal"}
	}
	// 128 bits fit at most 128 base-2 digits / 32 base-16 digits / 39 base-10
	// digits; reject anything that cannot possibly fit before even trying
	// the full bignum parse, matching the "NumericOutOfRange" contract.
	maxLen := map[int]int{16: 32, 2: 128, 8: 43, 10: 39}[base]
	if len(body) > maxLen {
		return token.Token{}, &Error{Kind: ErrNumericOutOfRange, Loc: loc, Msg: "integer literal exceeds 128 bits"}
	}
	acc := numeric.FromUint64(0)
	baseVal := numeric.FromUint64(uint64(base))
	limit := numeric.FromUint64(0).Not() // all-ones 128-bit pattern, unsigned
	for i := 0; i < len(body); i++ {
		d, err := strconv.ParseUint(string(body[i]), base, 8)
		if err != nil {
			return token.Token{}, &Error{Kind: ErrInvalidCharacter, Loc: loc, Msg: fmt.Sprintf("invalid digit %q", body[i])}
		}
		next := acc.Mul(baseVal).Add(numeric.FromUint64(d))
		if next.Cmp(acc) < 0 && !acc.IsZero() {
			return token.Token{}, &Error{Kind: ErrNumericOutOfRange, Loc: loc, Msg: "integer literal exceeds 128 bits"}
		}
		acc = next
	}
	if acc.Cmp(limit) > 0 {
		return token.Token{}, &Error{Kind: ErrNumericOutOfRange, Loc: loc, Msg: "integer literal exceeds 128 bits"}
	}
	if !unsigned {
		acc = acc.AsSigned()
	}
	return token.Token{Kind: token.KindInteger, Loc: loc, Int: acc}, nil
}

func floatLiteral(raw string, loc token.Location) (token.Token, error) {
	body := raw
	is32 := false
	if len(body) > 0 {
		switch body[len(body)-1] {
		case 'f', 'F':
			is32 = true
			body = body[:len(body)-1]
		case 'd', 'D':
			body = body[:len(body)-1]
		}
	}
	if is32 {
		v, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return token.Token{}, &Error{Kind: ErrNumericOutOfRange, Loc: loc, Msg: err.Error()}
		}
		return token.Token{Kind: token.KindFloat, Loc: loc, Float: float64(float32(v))}, nil
	}
	v, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return token.Token{}, &Error{Kind: ErrNumericOutOfRange, Loc: loc, Msg: err.Error()}
	}
	return token.Token{Kind: token.KindFloat, Loc: loc, Float: v}, nil
}

func identifier(raw string, loc token.Location) token.Token {
	if kw, ok := token.Keywords[raw]; ok {
		return token.Token{Kind: token.KindKeyword, Loc: loc, Keyword: kw, Identifier: raw}
	}
	if bt, ok := token.BuiltinTypes[raw]; ok {
		return token.Token{Kind: token.KindValueType, Loc: loc, BuiltinType: bt, Identifier: raw}
	}
	return token.Token{Kind: token.KindIdentifier, Loc: loc, Identifier: raw, IDKind: token.IDUnknown}
}

var _ io.Reader = (*strings.Reader)(nil)
