package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/gossa/gossa"
)

const fmtUsage = `gossa fmt - Re-serialize scripts

Usage:
  gossa fmt [options] [FILE|DIR|-]...

Re-serializing keeps every line, including malformed ones, so the output
is equivalent to the input. Legacy encodings and UTF-16 input come out as
UTF-8.

Options:
  -w          Write result to the source file instead of standard output
  -l          List files whose output differs from their content
  -h, --help  Show help
`

func (c *cli) cmdFmt(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(c.stderr, fmtUsage) }

	write := fs.Bool("w", false, "write in place")
	list := fs.Bool("l", false, "list changed files")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.HelpFlag {
		_, _ = fmt.Fprint(c.stdout, fmtUsage)
		return exitOK
	}

	// Semantic and markup checks do not change the output.
	results, err := c.parseArgs(fs.Args(), gossa.WithSemanticChecks(false), gossa.WithMarkupChecks(false))
	if err != nil {
		c.printError("%v", err)
		return exitError
	}

	code := exitOK
	for _, fr := range results {
		if fr.Err != nil {
			c.printError("%s: %v", fr.Path, fr.Err)
			code = exitError
			continue
		}
		out := fr.Result.Document.Bytes()

		if *list || *write {
			if fr.Path == stdinName {
				if *write {
					c.printError("cannot write standard input in place")
					code = exitError
				}
				continue
			}
			orig, err := os.ReadFile(fr.Path)
			if err != nil {
				c.printError("%v", err)
				code = exitError
				continue
			}
			if bytes.Equal(orig, out) {
				continue
			}
			if *list {
				_, _ = fmt.Fprintln(c.stdout, fr.Path)
			}
			if *write {
				if err := writeFile(fr.Path, out); err != nil {
					c.printError("%v", err)
					code = exitError
				}
			}
			continue
		}

		if _, err := c.stdout.Write(out); err != nil {
			c.printError("%v", err)
			return exitError
		}
	}
	return code
}

// writeFile replaces path's content, keeping its permissions.
func writeFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, info.Mode().Perm())
}
