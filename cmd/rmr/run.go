//go:build linux

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/marler8997/mkroot/internal/logging"
	"github.com/marler8997/mkroot/teardown"
)

const usageHelp = `Usage: rmr <dir>...

Unmounts and removes all directories/files in <dir>`

// fatalExitCode is returned when teardown aborts because the bind-mount
// detection invariant broke, distinguishing it from an ordinary per-entry
// error count.
const fatalExitCode = 2

// Run is the entry point for rmr, isolated from os.Args/os.Stdout/etc. so it
// can be driven from tests. Returns the process exit code.
func Run(stdout, stderr io.Writer, args []string) int {
	logger := logging.New(stdout, stderr)

	flags := flag.NewFlagSet("rmr", flag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.Usage = func() {}
	flags.SetOutput(io.Discard)

	flagHelp := flags.BoolP("help", "h", false, "Show help")

	if err := flags.Parse(args[1:]); err != nil {
		logger.Errf("unknown option '%s'", firstUnparsedFlag(args[1:]))

		return 1
	}

	if *flagHelp {
		fmt.Fprintln(stdout, usageHelp)

		return 0
	}

	dirs := flags.Args()
	for _, d := range dirs {
		if strings.HasPrefix(d, "-") {
			logger.Errf("unknown option '%s'", d)

			return 1
		}
	}

	if len(dirs) == 0 {
		fmt.Fprintln(stderr, usageHelp)

		return 1
	}

	errorCount := 0

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				// Preserves the original's observed behavior: a missing
				// argument short-circuits the whole run with exit 0,
				// silently skipping any remaining arguments.
				return 0
			}

			logger.Errnof(err, "stat '%s' failed", dir)

			return 1
		}

		n, err := teardown.Rmtree(logger, dir)
		if err != nil {
			logger.Errf("aborting: %s", err)
			return fatalExitCode
		}

		errorCount += n
	}

	if errorCount == 0 {
		logger.Logf("\nSuccess")
	} else {
		logger.Logf("\n%d Errors", errorCount)
	}

	return capExitCode(errorCount)
}

// capExitCode clamps errorCount to a valid process exit status.
func capExitCode(errorCount int) int {
	if errorCount > 255 {
		return 255
	}

	return errorCount
}

func firstUnparsedFlag(args []string) string {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			return a
		}
	}

	return ""
}
