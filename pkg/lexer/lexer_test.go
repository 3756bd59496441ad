package lexer

import (
	"testing"

	"github.com/vellumlang/vellum/pkg/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexIntegerLiterals(t *testing.T) {
	toks, err := Lex("t", "0x1A 0b101 0o17 42 7u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{0x1A, 0b101, 017, 42, 7}
	var got []token.Token
	for _, tok := range toks {
		if tok.Kind == token.KindInteger {
			got = append(got, tok)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %d integer tokens, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Int.Uint64() != w {
			t.Errorf("token %d: got %d, want %d", i, got[i].Int.Uint64(), w)
		}
	}
}

func TestLexFloatLiteral(t *testing.T) {
	toks, err := Lex("t", "3.14 1.5f")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var floats []token.Token
	for _, tok := range toks {
		if tok.Kind == token.KindFloat {
			floats = append(floats, tok)
		}
	}
	if len(floats) != 2 {
		t.Fatalf("got %d float tokens, want 2", len(floats))
	}
	if floats[0].Float != 3.14 {
		t.Errorf("got %v, want 3.14", floats[0].Float)
	}
}

func TestLexStringAndEscapes(t *testing.T) {
	toks, err := Lex("t", `"hello\nworld"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.KindString || toks[0].Str != "hello\nworld" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex("t", `"unterminated`)
	le, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if le.Kind != ErrUnterminatedString {
		t.Errorf("got kind %v, want UnterminatedString", le.Kind)
	}
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	_, err := Lex("t", "/* never closed")
	le, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if le.Kind != ErrUnterminatedComment {
		t.Errorf("got kind %v, want UnterminatedComment", le.Kind)
	}
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	toks, err := Lex("t", "struct Foo { u32 x; }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.KindKeyword {
		t.Errorf("expected keyword, got %v", toks[0].Kind)
	}
	if toks[1].Kind != token.KindIdentifier || toks[1].Identifier != "Foo" {
		t.Errorf("expected identifier Foo, got %+v", toks[1])
	}
	if toks[3].Kind != token.KindValueType {
		t.Errorf("expected builtin type, got %v", toks[3].Kind)
	}
}

func TestLexDirective(t *testing.T) {
	toks, err := Lex("t", "#include <std/io.pat>\nstruct X {};")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.KindDirective {
		t.Fatalf("expected directive, got %v", toks[0].Kind)
	}
}

// TestLexIdempotent is the round-trip property from spec §8: lexing the
// same source twice produces an identical token stream.
func TestLexIdempotent(t *testing.T) {
	src := `struct Header {
		u32 magic;
		u16 version [[format("fmt")]];
		// trailing comment
	};`
	a, err := Lex("t", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Lex("t", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	ka, kb := kinds(a), kinds(b)
	for i := range ka {
		if ka[i] != kb[i] {
			t.Errorf("token %d kind differs: %v vs %v", i, ka[i], kb[i])
		}
	}
}
