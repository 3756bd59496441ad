package preprocessor

import (
	"testing"

	"github.com/vellumlang/vellum/internal/cache"
	"github.com/vellumlang/vellum/pkg/token"
)

func tokenText(toks []token.Token) (identifiers []string) {
	for _, t := range toks {
		if t.Kind == token.KindIdentifier && !t.Excluded {
			identifiers = append(identifiers, t.Identifier)
		}
	}
	return
}

func TestIncludeInlinesTokens(t *testing.T) {
	resolver := MapResolver{"types.pat": `struct Header { u32 magic; };`}
	p := New(resolver, nil)

	res, err := p.Process("main", `#include "types.pat"
struct Body {};`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := tokenText(res.Tokens)
	if len(ids) < 3 || ids[0] != "Header" || ids[1] != "magic" || ids[2] != "Body" {
		t.Fatalf("got identifiers %v", ids)
	}
}

func TestIncludeCycleDetected(t *testing.T) {
	resolver := MapResolver{
		"a.pat": `#include "b.pat"`,
		"b.pat": `#include "a.pat"`,
	}
	p := New(resolver, nil)
	_, err := p.Process("main", `#include "a.pat"`)
	pe, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if pe.Kind != ErrIncludeCycle {
		t.Fatalf("got kind %v, want IncludeCycle", pe.Kind)
	}
}

func TestIncludeNotFound(t *testing.T) {
	p := New(MapResolver{}, nil)
	_, err := p.Process("main", `#include "missing.pat"`)
	pe, ok := err.(*Error)
	if !ok || pe.Kind != ErrIncludeNotFound {
		t.Fatalf("got %v, want IncludeNotFound", err)
	}
}

func TestDefineSubstitution(t *testing.T) {
	p := New(MapResolver{}, nil)
	res, err := p.Process("main", "#define SIZE 4\nu8 buffer[SIZE];")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ints []token.Token
	for _, tk := range res.Tokens {
		if tk.Kind == token.KindInteger {
			ints = append(ints, tk)
		}
	}
	if len(ints) != 1 || ints[0].Int.Uint64() != 4 {
		t.Fatalf("got %v", ints)
	}
}

func TestUndefRemovesMacro(t *testing.T) {
	p := New(MapResolver{}, nil)
	res, err := p.Process("main", "#define FOO 1\n#undef FOO\nu8 FOO;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, tk := range res.Tokens {
		if tk.Kind == token.KindIdentifier && tk.Identifier == "FOO" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FOO to survive as a bare identifier after #undef")
	}
}

func TestIfdefExcludesFalseBranch(t *testing.T) {
	p := New(MapResolver{}, nil)
	res, err := p.Process("main", "#ifdef MISSING\nu8 excluded;\n#else\nu8 included;\n#endif")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var excluded, included bool
	for _, tk := range res.Tokens {
		if tk.Kind != token.KindIdentifier {
			continue
		}
		switch tk.Identifier {
		case "excluded":
			excluded = tk.Excluded
		case "included":
			included = !tk.Excluded
		}
	}
	if !excluded {
		t.Errorf("expected `excluded` identifier to be marked Excluded")
	}
	if !included {
		t.Errorf("expected `included` identifier to survive active")
	}
}

func TestUnmatchedEndif(t *testing.T) {
	p := New(MapResolver{}, nil)
	_, err := p.Process("main", "#endif")
	pe, ok := err.(*Error)
	if !ok || pe.Kind != ErrUnmatchedEndif {
		t.Fatalf("got %v, want UnmatchedEndif", err)
	}
}

func TestUnterminatedConditional(t *testing.T) {
	p := New(MapResolver{}, nil)
	_, err := p.Process("main", "#ifdef FOO\nu8 x;")
	pe, ok := err.(*Error)
	if !ok || pe.Kind != ErrUnterminatedConditional {
		t.Fatalf("got %v, want UnterminatedConditional", err)
	}
}

func TestImportedNamespacesTracked(t *testing.T) {
	p := New(MapResolver{}, nil)
	res, err := p.Process("main", "import std::io;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.ImportedNamespaces) != 1 {
		t.Fatalf("got %v", res.ImportedNamespaces)
	}
	got := res.ImportedNamespaces[0]
	if len(got) != 2 || got[0] != "std" || got[1] != "io" {
		t.Fatalf("got %v, want [std io]", got)
	}
}

func TestCacheWiring(t *testing.T) {
	c := cache.New("/tmp/does-not-need-to-exist.json")
	p := New(MapResolver{"types.pat": `struct S {};`}, c)
	if _, err := p.Process("main", `#include "types.pat"`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
