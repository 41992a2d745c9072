//go:build linux

package main

import (
	"bytes"
	"strings"
	"testing"
)

func Test_Run_Shows_Usage_With_No_Args(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	if code := Run(nil, &stdout, &stderr, []string{"inroot"}); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func Test_Run_Shows_Help(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := Run(nil, &stdout, &stderr, []string{"inroot", "-h"})

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	if !strings.Contains(stdout.String(), "Usage: inroot") {
		t.Errorf("expected usage in stdout, got: %s", stdout.String())
	}
}

func Test_Run_Requires_A_Command(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := Run(nil, &stdout, &stderr, []string{"inroot", t.TempDir()})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	if !strings.Contains(stderr.String(), "please supply a command") {
		t.Errorf("expected command complaint in stderr, got: %s", stderr.String())
	}
}
// The chdir/chroot/chdir/exec path isn't covered here: a successful run
// replaces the calling process image (unix.Exec never returns), which would
// tear down the test binary itself rather than produce a pass/fail result.
