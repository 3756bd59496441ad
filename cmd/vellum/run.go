package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/vellumlang/vellum/pkg/pattern"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "evaluate a pattern program and print its pattern tree",
	ArgsUsage: "<source.pat>",
	Flags:     sharedFlags(),
	Action: func(c *cli.Context) error {
		src := c.Args().First()
		if src == "" {
			return fmt.Errorf("usage: vellum run <source.pat>")
		}
		res := runPipeline(src, c.String("data"), c.StringSlice("include"), openCache(c))
		for _, p := range res.Top {
			printPattern(p, res, 0)
		}
		printErrors(res.Errors)
		if len(res.Errors) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	},
}

// printPattern renders one pattern and its children as an indented text
// tree: `name : type = value @ offset (size bytes)`, matching the shape
// of the pattern data the evaluator produces (spec §4.5).
func printPattern(p *pattern.Pattern, res *pipelineResult, depth int) {
	prov := res.Data
	if p.Local {
		prov = res.Stack
	}
	value := ""
	if v, err := p.Format(prov, pattern.EndianLittle); err == nil {
		value = v
	}
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%s : %s = %s @ 0x%x (%d bytes)\n", indent, p.Name(), p.TypeName, value, p.Offset, p.Size)

	switch p.Kind {
	case pattern.KindStruct, pattern.KindUnion, pattern.KindBitfield:
		for _, child := range p.Children() {
			printPattern(child, res, depth+1)
		}
	case pattern.KindStaticArray, pattern.KindDynamicArray:
		count := p.EntryCount()
		for i := uint64(0); i < count; i++ {
			entry, err := p.ArrayEntry(i)
			if err != nil {
				break
			}
			printPattern(entry, res, depth+1)
		}
	case pattern.KindPointer:
		if p.Pointer != nil && p.Pointer.Pointee != nil {
			printPattern(p.Pointer.Pointee, res, depth+1)
		}
	}
}
