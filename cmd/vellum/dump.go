package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vellumlang/vellum/internal/patternjson"
	"github.com/vellumlang/vellum/pkg/pattern"
)

var dumpCommand = &cli.Command{
	Name:      "dump",
	Usage:     "evaluate a pattern program and print its pattern tree as JSON",
	ArgsUsage: "<source.pat>",
	Flags:     sharedFlags(),
	Action: func(c *cli.Context) error {
		src := c.Args().First()
		if src == "" {
			return fmt.Errorf("usage: vellum dump <source.pat>")
		}
		res := runPipeline(src, c.String("data"), c.StringSlice("include"), openCache(c))
		printErrors(res.Errors)

		x := patternjson.Exporter{Data: res.Data, Stack: res.Stack, DefaultEndian: pattern.EndianLittle}
		out, err := x.Export(res.Top)
		if err != nil {
			return err
		}
		os.Stdout.Write(out)
		fmt.Println()
		if len(res.Errors) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	},
}
