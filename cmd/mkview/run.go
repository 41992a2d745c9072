//go:build linux

package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/marler8997/mkroot/internal/logging"
	"github.com/marler8997/mkroot/view"
)

const usageHelp = `Usage: mkview [-options] <view_dir> <dirs>...

Create a 'root-filesystem view' with the given <dir>s. The view is made up of
various bind and overlay mounts. The view can be cleaned up using
'rmr <view_dir>' without removing files from the source directories.

Each directory is of the form:
  [<workdir>,]<dir>[:<target_path>]

If a <workdir> is given, then the directory will be writeable and will be the
upper directory if it is part of an overlay with other directories.
<target_path> is the path where this directory should be exposed on the
resulting view. If it is not given, it defaults to the path of the directory
on the current filesystem. This path must NOT contain a leading slash '/'; an
empty path puts the directory at the root of the new view.`

// Run is the entry point for mkview, isolated from os.Args/os.Stdout/etc. so
// it can be driven from tests. Returns the process exit code.
func Run(stdout, stderr io.Writer, args []string) int {
	logger := logging.New(stdout, stderr)

	flags := flag.NewFlagSet("mkview", flag.ContinueOnError)
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

	positional := flags.Args()
	for _, a := range positional {
		if strings.HasPrefix(a, "-") {
			logger.Errf("unknown option '%s'", a)

			return 1
		}
	}

	if len(positional) == 0 {
		fmt.Fprintln(stderr, usageHelp)

		return 1
	}

	if len(positional) == 1 {
		logger.Errf("please provide one or more directories to include")

		return 1
	}

	viewDir := strings.TrimRight(positional[0], "/")

	if err := view.InitRootDir(logger, viewDir); err != nil {
		logger.Errf("%s", err)

		return 1
	}

	tree := view.NewTree(&view.Dir{Arg: viewDir, Source: viewDir})

	for _, arg := range positional[1:] {
		dir, err := view.ParseDirSpec(arg)
		if err != nil {
			logger.Errf("%s", err)

			return 1
		}

		logger.Logf("source '%s' target '%s'", dir.Source, dir.TargetRelative)

		if err := tree.AddDir(dir, dir.TargetRelative); err != nil {
			logger.Errf("%s", err)

			return 1
		}
	}

	view.PrintTree(logger, tree)

	if err := view.Compose(logger, tree); err != nil {
		logger.Errf("%s", err)

		return 1
	}

	return 0
}

// firstUnparsedFlag recovers which argument pflag rejected, for a diagnostic
// matching the original's "unknown option '%s'" shape.
func firstUnparsedFlag(args []string) string {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			return a
		}
	}

	return ""
}
