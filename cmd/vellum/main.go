// Command vellum is the pattern language's CLI: run a program against a
// binary and print its pattern tree, dump the tree as JSON, print
// syntax-highlighted source, serve a live-reloading session for an
// editor, or render the man page held in docs.go's manSource.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vellumlang/vellum/internal/cache"
)

func main() {
	app := &cli.App{
		Name:  "vellum",
		Usage: "evaluate and inspect pattern-language programs",
		Commands: []*cli.Command{
			runCommand,
			highlightCommand,
			dumpCommand,
			serveCommand,
			docsCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sharedFlags are accepted by every subcommand that runs the pipeline.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "binary file to evaluate the pattern against"},
		&cli.StringSliceFlag{Name: "include", Aliases: []string{"I"}, Usage: "additional #include search root"},
		&cli.StringFlag{Name: "cache", Usage: "path to the include content-hash cache", Value: ""},
	}
}

func openCache(c *cli.Context) *cache.Cache {
	path := c.String("cache")
	if path == "" {
		return nil
	}
	cc, err := cache.Load(path)
	if err != nil {
		return cache.New(path)
	}
	return cc
}
