package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/vellumlang/vellum/pkg/highlight"
	"github.com/vellumlang/vellum/pkg/token"
)

var highlightCommand = &cli.Command{
	Name:      "highlight",
	Usage:     "print pattern-language source with ANSI syntax colors",
	ArgsUsage: "<source.pat>",
	Action: func(c *cli.Context) error {
		src := c.Args().First()
		if src == "" {
			return fmt.Errorf("usage: vellum highlight <source.pat>")
		}
		res, err := runHighlight(src)
		if err != nil {
			return err
		}
		var b strings.Builder
		for i, t := range res.Tokens {
			if t.Kind == token.KindEndOfProgram {
				continue
			}
			text := tokenText(t)
			code := ansiCode(res.Colors[i])
			if code == "" {
				b.WriteString(text)
			} else {
				b.WriteString("\x1b[" + code + "m" + text + "\x1b[0m")
			}
		}
		fmt.Print(b.String())
		return nil
	},
}

// tokenText recovers a token's display text. The lexer doesn't retain
// the original source slice per token, so literals are reconstructed
// from their decoded payload; this reproduction is only used for the
// `highlight` command's terminal preview, never fed back into the
// pipeline, so exact whitespace/quote-style fidelity isn't required.
func tokenText(t token.Token) string {
	switch t.Kind {
	case token.KindKeyword:
		return keywordText(t.Keyword)
	case token.KindValueType:
		return builtinTypeText(t.BuiltinType)
	case token.KindOperator:
		return t.Operator
	case token.KindSeparator:
		return string(t.Separator)
	case token.KindString:
		return `"` + t.Str + `"`
	case token.KindChar:
		return "'" + string(t.Char) + "'"
	case token.KindInteger:
		return t.Int.String()
	case token.KindFloat:
		return fmt.Sprintf("%g", t.Float)
	case token.KindIdentifier:
		return t.Identifier
	case token.KindComment:
		if t.CommentSingle {
			return "//" + t.Comment + "\n"
		}
		return "/*" + t.Comment + "*/"
	case token.KindDirective:
		return "#" + t.Directive + "\n"
	default:
		return ""
	}
}

func keywordText(k token.Keyword) string {
	for text, kw := range token.Keywords {
		if kw == k {
			return text
		}
	}
	return ""
}

func builtinTypeText(bt token.BuiltinType) string {
	for text, b := range token.BuiltinTypes {
		if b == bt {
			return text
		}
	}
	return ""
}

// ansiCode maps a handful of the palette's 32 entries to a basic 16-color
// ANSI SGR code; the rest fall back to the terminal's default color
// rather than trying to reproduce a full 32-swatch theme in 16 colors.
func ansiCode(p highlight.Palette) string {
	switch p {
	case highlight.Keyword:
		return "35" // magenta
	case highlight.BuiltInType, highlight.UserDefinedType, highlight.TypeDef:
		return "36" // cyan
	case highlight.StringLiteral, highlight.CharLiteral:
		return "32" // green
	case highlight.NumericLiteral:
		return "33" // yellow
	case highlight.Comment, highlight.BlockComment, highlight.DocComment,
		highlight.DocBlockComment, highlight.DocGlobalComment:
		return "90" // bright black
	case highlight.Directive, highlight.PreprocIdentifier:
		return "34" // blue
	case highlight.PreprocessorDeactivated:
		return "2" // dim
	case highlight.Function:
		return "95" // bright magenta
	case highlight.NameSpace:
		return "96" // bright cyan
	case highlight.GlobalVariable, highlight.PlacedVariable, highlight.PatternVariable,
		highlight.LocalVariable, highlight.CalculatedPointer, highlight.FunctionVariable,
		highlight.FunctionParameter:
		return "37" // white
	case highlight.Attribute, highlight.TemplateArgument, highlight.View:
		return "93" // bright yellow
	case highlight.UnkIdentifier:
		return "31" // red
	default:
		return ""
	}
}
