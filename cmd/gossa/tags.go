package main

import (
	"cmp"
	"flag"
	"fmt"
	"slices"

	"github.com/gossa/gossa"
	"github.com/gossa/gossa/script"
)

const tagsUsage = `gossa tags - Count override tags used in event text

Usage:
  gossa tags [options] [FILE|DIR|-]...

Options:
  --unknown   Only list tags missing from the builtin tag table
  -h, --help  Show help

Examples:
  gossa tags episode01.ass
  gossa tags --unknown subs/
`

type tagCount struct {
	name  string
	known bool
	count int
}

func (c *cli) cmdTags(args []string) int {
	fs := flag.NewFlagSet("tags", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(c.stderr, tagsUsage) }

	unknownOnly := fs.Bool("unknown", false, "only unknown tags")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.HelpFlag {
		_, _ = fmt.Fprint(c.stdout, tagsUsage)
		return exitOK
	}

	results, err := c.parseArgs(fs.Args(), gossa.WithSemanticChecks(false), gossa.WithMarkupChecks(false))
	if err != nil {
		c.printError("%v", err)
		return exitError
	}

	code := exitOK
	var docs []*gossa.Document
	for _, fr := range results {
		if fr.Err != nil {
			c.printError("%s: %v", fr.Path, fr.Err)
			code = exitError
			continue
		}
		docs = append(docs, fr.Result.Document)
	}

	for _, tc := range countTags(docs) {
		if *unknownOnly && tc.known {
			continue
		}
		marker := ""
		if !tc.known {
			marker = " (unknown)"
		}
		_, _ = fmt.Fprintf(c.stdout, "%6d  \\%s%s\n", tc.count, tc.name, marker)
	}
	return code
}

// countTags tallies tag names over every dialogue line, most used first.
func countTags(docs []*gossa.Document) []tagCount {
	counts := make(map[string]*tagCount)
	for _, doc := range docs {
		for r := range doc.Dialogues() {
			segs, _ := r.Segments()
			for tag := range script.AllTags(segs) {
				tc, ok := counts[tag.Name]
				if !ok {
					tc = &tagCount{name: tag.Name, known: tag.Known}
					counts[tag.Name] = tc
				}
				tc.count++
			}
		}
	}

	out := make([]tagCount, 0, len(counts))
	for _, tc := range counts {
		out = append(out, *tc)
	}
	slices.SortFunc(out, func(a, b tagCount) int {
		if d := cmp.Compare(b.count, a.count); d != 0 {
			return d
		}
		return cmp.Compare(a.name, b.name)
	})
	return out
}
