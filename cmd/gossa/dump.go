package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gossa/gossa"
	"github.com/gossa/gossa/cmd/internal/cliutil"
)

const dumpUsage = `gossa dump - Output the parsed document as JSON or YAML

Usage:
  gossa dump [options] [FILE|DIR|-]...

Options:
  --format FMT     Output format: json, yaml (default: json)
  --compact        Minified JSON (no indentation)
  --no-issues      Omit issues and errors
  --text           Include the plain text of event lines
  --process        Run extension processors and include their data
  -o, --output F   Write to F instead of standard output
  -h, --help       Show help

Examples:
  gossa dump episode01.ass
  gossa dump --format yaml --text episode01.ass
  gossa dump --process episode01.ass | jq '.files[0].sections'
`

func (c *cli) cmdDump(args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(c.stderr, dumpUsage) }

	format := fs.String("format", "json", "output format")
	compact := fs.Bool("compact", false, "minified JSON")
	noIssues := fs.Bool("no-issues", false, "omit issues")
	text := fs.Bool("text", false, "include plain text")
	process := fs.Bool("process", false, "run extension processors")
	output := fs.String("o", "", "output file")
	fs.StringVar(output, "output", "", "output file")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.HelpFlag {
		_, _ = fmt.Fprint(c.stdout, dumpUsage)
		return exitOK
	}

	switch *format {
	case "json", "yaml":
		// ok
	default:
		c.printError("unknown format: %s", *format)
		return exitError
	}

	var extra []gossa.Option
	if *process {
		extra = append(extra, gossa.WithProcessExtensions())
	}
	results, err := c.parseArgs(fs.Args(), extra...)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}

	opts := dumpOptions{IncludeIssues: !*noIssues, IncludeText: *text}
	out := DumpOutput{Files: make([]DocumentJSON, 0, len(results))}
	code := exitOK
	for _, fr := range results {
		if fr.Err != nil {
			code = exitError
		}
		out.Files = append(out.Files, buildDocumentJSON(fr, opts))
	}

	data, err := marshalDump(out, *format, !*compact)
	if err != nil {
		c.printError("failed to marshal %s: %v", *format, err)
		return exitError
	}

	w, closeOut, err := cliutil.GetOutput(*output, c.stdout)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	if _, err := w.Write(data); err != nil {
		c.printError("%v", err)
		code = exitError
	}
	if err := closeOut(); err != nil {
		c.printError("%v", err)
		code = exitError
	}
	return code
}

func marshalDump(out DumpOutput, format string, indent bool) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(out)
	}
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
