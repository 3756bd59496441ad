// Package preprocessor implements the pattern language's text-inclusion
// and conditional-compilation layer (spec §4.2): #include, #define/#undef
// macro substitution, and #ifdef/#ifndef/#else/#endif conditional blocks.
// It runs on the token stream pkg/lexer produces rather than on raw text,
// the same way the pattern language's directives live on their own
// logical line (pkg/lexer already isolates one KindDirective token per
// line) — so the preprocessor never needs its own tokenizer.
package preprocessor

import (
	"fmt"
	"strings"

	"github.com/vellumlang/vellum/internal/cache"
	"github.com/vellumlang/vellum/pkg/lexer"
	"github.com/vellumlang/vellum/pkg/token"
)

// ErrorKind enumerates preprocessor failure modes (spec §7).
type ErrorKind int

const (
	ErrIncludeCycle ErrorKind = iota
	ErrIncludeNotFound
	ErrUnmatchedEndif
	ErrUnterminatedConditional
	ErrMalformedDirective
)

func (k ErrorKind) String() string {
	switch k {
	case ErrIncludeCycle:
		return "IncludeCycle"
	case ErrIncludeNotFound:
		return "IncludeNotFound"
	case ErrUnmatchedEndif:
		return "UnmatchedEndif"
	case ErrUnterminatedConditional:
		return "UnterminatedConditional"
	default:
		return "MalformedDirective"
	}
}

// Error is a preprocessor diagnostic.
type Error struct {
	Kind ErrorKind
	Loc  token.Location
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Loc, e.Msg)
}

// Resolver locates the source text for an #include target. The CLI wires
// this to the filesystem (relative to the including file plus any
// `-I` include paths); tests wire it to an in-memory map.
type Resolver interface {
	Resolve(path string, angled bool, from token.SourceID) (id token.SourceID, source string, err error)
}

// MapResolver is the in-memory Resolver tests use: it hands back fixed
// strings for a closed set of paths instead of touching a filesystem.
type MapResolver map[string]string

func (m MapResolver) Resolve(path string, angled bool, from token.SourceID) (token.SourceID, string, error) {
	src, ok := m[path]
	if !ok {
		return "", "", fmt.Errorf("not found")
	}
	return token.SourceID(path), src, nil
}

// Result is the flattened, macro-expanded token stream along with the
// bookkeeping the rest of the pipeline needs.
type Result struct {
	Tokens []token.Token
	// ImportedNamespaces records every `import a::b;` path seen while
	// scanning, in source order, so the CLI can report which namespaces a
	// file pulls in without re-walking the AST.
	ImportedNamespaces [][]string
	// Macros is the final #define table, exposed for diagnostics/tests.
	Macros map[string][]token.Token
}

// Preprocessor expands #include/#define/#ifdef directives over a token
// stream already produced by pkg/lexer.
type Preprocessor struct {
	resolver Resolver
	cache    *cache.Cache
}

// New builds a Preprocessor. c may be nil; when set, each #include path
// is hashed into c as written. Includes are read and lexed fresh either
// way.
func New(resolver Resolver, c *cache.Cache) *Preprocessor {
	return &Preprocessor{resolver: resolver, cache: c}
}

type condFrame struct {
	parentActive  bool
	branchActive  bool // true while emitting the currently-active branch
	everMatched   bool // whether any branch so far has been taken
	sawElse       bool
	loc           token.Location
}

// Process lexes src (the text of id) and expands it, following #include
// directives transitively and applying #define/#ifdef bookkeeping.
func (p *Preprocessor) Process(id token.SourceID, src string) (*Result, error) {
	toks, err := lexer.Lex(id, src)
	if err != nil {
		return nil, err
	}
	res := &Result{Macros: map[string][]token.Token{}}
	visiting := map[token.SourceID]bool{id: true}
	out, err := p.expand(toks, visiting, res)
	if err != nil {
		return nil, err
	}
	res.Tokens = out
	return res, nil
}

func (p *Preprocessor) expand(toks []token.Token, visiting map[token.SourceID]bool, res *Result) ([]token.Token, error) {
	var out []token.Token
	var condStack []condFrame

	active := func() bool {
		for _, f := range condStack {
			if !f.branchActive || !f.parentActive {
				return false
			}
		}
		return true
	}

	for i := 0; i < len(toks); i++ {
		tok := toks[i]

		if tok.Kind == token.KindEndOfProgram {
			if len(condStack) > 0 {
				top := condStack[len(condStack)-1]
				return nil, &Error{Kind: ErrUnterminatedConditional, Loc: top.loc, Msg: "missing #endif"}
			}
			out = append(out, tok)
			continue
		}

		if tok.Kind != token.KindDirective {
			if !active() {
				tok.Excluded = true
				out = append(out, tok)
				continue
			}
			if tok.Kind == token.KindIdentifier {
				if body, ok := res.Macros[tok.Identifier]; ok {
					out = append(out, body...)
					continue
				}
			}
			if tok.Kind == token.KindKeyword && tok.Keyword == token.KwImport {
				path, consumed := scanImportPath(toks, i+1)
				res.ImportedNamespaces = append(res.ImportedNamespaces, path)
				_ = consumed
			}
			out = append(out, tok)
			continue
		}

		name, rest := splitDirective(tok.Directive)
		switch name {
		case "include":
			if !active() {
				continue
			}
			inc, err := p.doInclude(rest, tok.Loc, visiting, res)
			if err != nil {
				return nil, err
			}
			out = append(out, inc...)
		case "define":
			if !active() {
				continue
			}
			macroName, body := splitDirective(rest)
			bodyToks, err := lexer.Lex(tok.Loc.Source, body)
			if err != nil {
				return nil, err
			}
			if len(bodyToks) > 0 && bodyToks[len(bodyToks)-1].Kind == token.KindEndOfProgram {
				bodyToks = bodyToks[:len(bodyToks)-1]
			}
			res.Macros[macroName] = bodyToks
		case "undef":
			if !active() {
				continue
			}
			delete(res.Macros, strings.TrimSpace(rest))
		case "ifdef", "ifndef":
			_, defined := res.Macros[strings.TrimSpace(rest)]
			if name == "ifndef" {
				defined = !defined
			}
			condStack = append(condStack, condFrame{
				parentActive: active(),
				branchActive: defined,
				everMatched:  defined,
				loc:          tok.Loc,
			})
		case "else":
			if len(condStack) == 0 {
				return nil, &Error{Kind: ErrUnmatchedEndif, Loc: tok.Loc, Msg: "#else without #ifdef"}
			}
			top := &condStack[len(condStack)-1]
			if top.sawElse {
				return nil, &Error{Kind: ErrMalformedDirective, Loc: tok.Loc, Msg: "duplicate #else"}
			}
			top.sawElse = true
			top.branchActive = !top.everMatched
			top.everMatched = true
		case "endif":
			if len(condStack) == 0 {
				return nil, &Error{Kind: ErrUnmatchedEndif, Loc: tok.Loc, Msg: "#endif without #ifdef"}
			}
			condStack = condStack[:len(condStack)-1]
		case "pragma":
			// Recognized but inert: #pragma lines are accepted and dropped
			// here, and no later stage sees them.
		default:
			return nil, &Error{Kind: ErrMalformedDirective, Loc: tok.Loc, Msg: fmt.Sprintf("unknown directive %q", name)}
		}
	}

	return out, nil
}

func splitDirective(s string) (head, rest string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx+1:])
}

func scanImportPath(toks []token.Token, start int) ([]string, int) {
	var path []string
	i := start
	for i < len(toks) {
		if toks[i].Kind == token.KindIdentifier {
			path = append(path, toks[i].Identifier)
			i++
			if i < len(toks) && toks[i].Kind == token.KindOperator && toks[i].Operator == "::" {
				i++
				continue
			}
			break
		}
		break
	}
	return path, i - start
}

func (p *Preprocessor) doInclude(arg string, loc token.Location, visiting map[token.SourceID]bool, res *Result) ([]token.Token, error) {
	angled := strings.HasPrefix(arg, "<") && strings.HasSuffix(arg, ">")
	quoted := strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`)
	if !angled && !quoted {
		return nil, &Error{Kind: ErrMalformedDirective, Loc: loc, Msg: "include path must be <...> or \"...\""}
	}
	path := arg[1 : len(arg)-1]

	if p.cache != nil {
		// NeedsRegeneration still keys off a filesystem path; resolvers
		// that hand back synthetic paths (tests) simply always "change".
		_, _ = p.cache.NeedsRegeneration(path)
	}

	id, src, err := p.resolver.Resolve(path, angled, loc.Source)
	if err != nil {
		return nil, &Error{Kind: ErrIncludeNotFound, Loc: loc, Msg: path}
	}
	if visiting[id] {
		return nil, &Error{Kind: ErrIncludeCycle, Loc: loc, Msg: path}
	}

	toks, err := lexer.Lex(id, src)
	if err != nil {
		return nil, err
	}
	visiting[id] = true
	defer delete(visiting, id)

	expanded, err := p.expand(toks, visiting, res)
	if err != nil {
		return nil, err
	}
	if n := len(expanded); n > 0 && expanded[n-1].Kind == token.KindEndOfProgram {
		expanded = expanded[:n-1]
	}
	return expanded, nil
}
