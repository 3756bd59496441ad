package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vellumlang/vellum/internal/cache"
	"github.com/vellumlang/vellum/internal/suggest"
	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/eval"
	"github.com/vellumlang/vellum/pkg/highlight"
	"github.com/vellumlang/vellum/pkg/lexer"
	"github.com/vellumlang/vellum/pkg/parser"
	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/preprocessor"
	"github.com/vellumlang/vellum/pkg/provider"
	"github.com/vellumlang/vellum/pkg/token"
	"github.com/vellumlang/vellum/pkg/validator"
)

// fsResolver resolves `#include` targets against the including file's own
// directory, then against a fixed list of `-I` search roots, matching the
// usual C-preprocessor include search order.
type fsResolver struct {
	roots []string
}

func (r fsResolver) Resolve(path string, angled bool, from token.SourceID) (token.SourceID, string, error) {
	candidates := make([]string, 0, len(r.roots)+1)
	if !angled {
		candidates = append(candidates, filepath.Join(filepath.Dir(string(from)), path))
	}
	for _, root := range r.roots {
		candidates = append(candidates, filepath.Join(root, path))
	}
	for _, c := range candidates {
		if data, err := os.ReadFile(c); err == nil {
			return token.SourceID(c), string(data), nil
		}
	}
	return "", "", fmt.Errorf("include %q not found", path)
}

// pipelineResult bundles every artifact a subcommand might need so run,
// dump and serve all build it the same way.
type pipelineResult struct {
	Tokens  []token.Token
	Program *ast.Program
	Top     []*pattern.Pattern
	Data    provider.Provider
	Stack   provider.Provider
	Errors  []string // preprocessor/parse/validate/evaluate failures, human-readable
}

// runPipeline executes Lexer -> Preprocessor -> Parser -> Validator ->
// Evaluator over srcPath against dataPath, matching spec §2's data flow
// exactly. A non-fatal stage (validator diagnostics) keeps going so the
// caller sees every problem; a fatal one (preprocess/parse error, or a
// data file that cannot be opened) stops early. With no data path the
// program is evaluated against an empty in-memory provider.
func runPipeline(srcPath, dataPath string, includeRoots []string, c *cache.Cache) *pipelineResult {
	res := &pipelineResult{}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	pp := preprocessor.New(fsResolver{roots: includeRoots}, c)
	ppRes, err := pp.Process(token.SourceID(srcPath), string(src))
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("preprocess: %v", err))
		return res
	}
	res.Tokens = ppRes.Tokens

	prog, err := parser.New(ppRes.Tokens).Parse()
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("parse: %v", err))
		return res
	}
	res.Program = prog

	for _, verr := range validator.Validate(prog) {
		res.Errors = append(res.Errors, fmt.Sprintf("validate: %v", verr))
	}

	var dataProv provider.Provider
	if dataPath != "" {
		mp, err := provider.OpenMmapProvider(dataPath, 0)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("open data: %v", err))
			return res
		}
		dataProv = mp
	} else {
		dataProv = provider.NewMemoryProvider(nil, 0)
	}
	res.Data = dataProv

	ev := eval.New(dataProv, eval.DefaultLimits)
	ev.Suggest = suggest.Find
	res.Stack = ev.Stack

	top, everr := ev.Run(prog)
	if everr != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("evaluate: %v", everr))
	}
	res.Top = top
	return res
}

// runHighlight lexes srcPath without running the preprocessor, so no token
// is flagged Excluded and #ifdef-false regions are painted like active
// code, and parses it far enough to build the identifier symbol table; a
// program
// that fails to parse is still painted lexically, matching spec §4.7's
// allowance for a highlighter pass over an incomplete program.
func runHighlight(srcPath string) (*highlight.Result, error) {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, err
	}
	toks, err := lexer.Lex(token.SourceID(srcPath), string(src))
	if err != nil {
		return nil, err
	}
	prog, _ := parser.New(toks).Parse()
	return highlight.Run(toks, prog), nil
}

func printErrors(errs []string) {
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, "error:", e)
	}
}
