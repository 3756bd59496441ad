package main

import (
	"fmt"
	"os"

	"github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/russross/blackfriday/v2"
	"github.com/urfave/cli/v2"
)

// manSource is rendered to either troff (for `man vellum`) or HTML (for a
// quick terminal-less preview), covering the same five subcommands this
// binary implements.
const manSource = `# VELLUM(1)

## NAME

vellum - evaluate and inspect pattern-language programs

## SYNOPSIS

**vellum** *command* [*flags*] *source.pat*

## COMMANDS

* **run** — evaluate a program against a binary and print its pattern tree
* **dump** — evaluate a program and print its pattern tree as JSON
* **highlight** — print syntax-highlighted source
* **serve** — watch a program and live-reload its pattern tree in a browser
* **docs** — render this page

## FLAGS

* **-d**, **--data** *path* — binary file to evaluate the pattern against
* **-I**, **--include** *path* — additional #include search root
* **--cache** *path* — path to the include content-hash cache
`

var docsCommand = &cli.Command{
	Name:  "docs",
	Usage: "render the vellum man page",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "html", Usage: "render HTML instead of a troff man page"},
	},
	Action: func(c *cli.Context) error {
		if c.Bool("html") {
			os.Stdout.Write(blackfriday.Run([]byte(manSource)))
			fmt.Println()
			return nil
		}
		os.Stdout.Write(md2man.Render([]byte(manSource)))
		return nil
	},
}
