// Package cliutil provides shared CLI utilities for gossa command-line tools.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// GlobalFlags holds the flags accepted before or after the subcommand.
type GlobalFlags struct {
	Verbose    int // 1 for -v, 2 for -vv
	ConfigPath string
	LogFile    string
	HelpFlag   bool
}

// ParseArgs parses global flags and extracts the subcommand from args.
// Flags handled: -v/--verbose, -vv, -c/--config, --log-file, -h/--help.
// Unrecognized flags are passed through to the subcommand. A lone "-"
// is an argument (standard input), not a flag.
func ParseArgs(args []string) (flags GlobalFlags, cmd string, cmdArgs []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			cmdArgs = append(cmdArgs, args[i:]...)
			return
		case arg == "-h" || arg == "--help":
			flags.HelpFlag = true
		case arg == "-v" || arg == "--verbose":
			if flags.Verbose < 1 {
				flags.Verbose = 1
			}
		case arg == "-vv":
			flags.Verbose = 2
		case arg == "-c" || arg == "--config":
			if i+1 < len(args) {
				i++
				flags.ConfigPath = args[i]
			}
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = arg[len("--config="):]
		case arg == "--log-file":
			if i+1 < len(args) {
				i++
				flags.LogFile = args[i]
			}
		case strings.HasPrefix(arg, "--log-file="):
			flags.LogFile = arg[len("--log-file="):]
		case len(arg) > 1 && arg[0] == '-':
			cmdArgs = append(cmdArgs, arg)
		default:
			if cmd == "" {
				cmd = arg
			} else {
				cmdArgs = append(cmdArgs, arg)
			}
		}
	}
	return
}

// GetOutput opens the output file or returns stdout.
func GetOutput(outputFile string, stdout io.Writer) (io.Writer, func() error, error) {
	if outputFile == "" || outputFile == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// PrintError writes a formatted error message to w.
func PrintError(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "error: "+format+"\n", args...)
}
