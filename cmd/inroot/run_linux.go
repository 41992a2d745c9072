//go:build linux

package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	flag "github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/marler8997/mkroot/internal/logging"
)

const usageHelp = `Usage: inroot <root_dir> <command>...

Run the given <command> as if <root_dir> is its root directory`

// Run is the entry point for inroot, isolated from os.Args/os.Stdout/etc. so
// it can be driven from tests. Returns the process exit code.
func Run(stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	logger := logging.New(stdout, stderr)

	flags := flag.NewFlagSet("inroot", flag.ContinueOnError)
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

	rest := flags.Args()

	if len(rest) == 0 {
		fmt.Fprintln(stderr, usageHelp)

		return 1
	}

	if len(rest) == 1 {
		logger.Errf("please supply a command to run")

		return 1
	}

	root := rest[0]
	command := rest[1:]

	cwd, err := os.Getwd()
	if err != nil {
		logger.Errnof(err, "getcwd failed")

		return 1
	}

	if err := unix.Chdir(root); err != nil {
		logger.Errnof(err, "chdir '%s' failed", root)

		return 1
	}

	if err := unix.Chroot("."); err != nil {
		logger.Errnof(err, "chroot '%s' failed", root)

		return 1
	}

	if err := unix.Chdir(cwd); err != nil {
		logger.Errnof(err, "chdir '%s' after chroot failed", cwd)

		return 1
	}

	path, err := exec.LookPath(command[0])
	if err != nil {
		logger.Errnof(err, "execvp failed")

		return 1
	}

	execErr := unix.Exec(path, command, os.Environ())
	// unix.Exec only returns on failure.
	logger.Errnof(execErr, "execvp failed")

	return 1
}

func firstUnparsedFlag(args []string) string {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			return a
		}
	}

	return ""
}
