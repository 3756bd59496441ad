package highlight

import (
	"testing"

	"github.com/vellumlang/vellum/pkg/lexer"
	"github.com/vellumlang/vellum/pkg/parser"
	"github.com/vellumlang/vellum/pkg/token"
)

func colorOf(t *testing.T, r *Result, text string) Palette {
	t.Helper()
	for i, tok := range r.Tokens {
		if tok.Kind == token.KindIdentifier && tok.Identifier == text {
			return r.Colors[i]
		}
	}
	t.Fatalf("identifier %q not found in token stream", text)
	return Default
}

func run(t *testing.T, src string) *Result {
	t.Helper()
	toks, err := lexer.Lex("test", src)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	prog, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return Run(toks, prog)
}

func TestRunClassifiesStructMembers(t *testing.T) {
	r := run(t, "struct Header { u32 magic; u8 version; };")
	if got := colorOf(t, r, "Header"); got != UserDefinedType {
		t.Errorf("Header: got %s, want UserDefinedType", got)
	}
	if got := colorOf(t, r, "magic"); got != PatternVariable {
		t.Errorf("magic: got %s, want PatternVariable", got)
	}
}

func TestRunClassifiesFunctionLocalsAndParams(t *testing.T) {
	r := run(t, `fn add(u32 a, u32 b) { u32 total; total = a; return total; }`)
	if got := colorOf(t, r, "add"); got != Function {
		t.Errorf("add: got %s, want Function", got)
	}
	if got := colorOf(t, r, "a"); got != FunctionParameter {
		t.Errorf("a: got %s, want FunctionParameter", got)
	}
	if got := colorOf(t, r, "total"); got != LocalVariable {
		t.Errorf("total: got %s, want LocalVariable", got)
	}
}

func TestRunPlacedTopLevelVariable(t *testing.T) {
	r := run(t, "u32 magic @ 0x00;")
	if got := colorOf(t, r, "magic"); got != PlacedVariable {
		t.Errorf("magic: got %s, want PlacedVariable", got)
	}
}

func TestRunPaintsExcludedPreprocessorRegions(t *testing.T) {
	toks, err := lexer.Lex("test", "u32 a;")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	toks[2].Excluded = true // the ';' separator, arbitrarily
	r := Run(toks, nil)
	if r.Colors[2] != PreprocessorDeactivated {
		t.Errorf("got %s, want PreprocessorDeactivated", r.Colors[2])
	}
}

func TestRunUnresolvedIdentifierIsUnknown(t *testing.T) {
	r := run(t, "u32 a @ someUndeclaredName;")
	if got := colorOf(t, r, "someUndeclaredName"); got != UnkIdentifier {
		t.Errorf("got %s, want UnkIdentifier", got)
	}
}
