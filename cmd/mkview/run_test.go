//go:build linux

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_Run_Shows_Usage_With_No_Args(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := Run(&stdout, &stderr, []string{"mkview"})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	if !strings.Contains(stderr.String(), "Usage: mkview") {
		t.Errorf("expected usage in stderr, got: %s", stderr.String())
	}
}

func Test_Run_Shows_Help_With_Help_Flag(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := Run(&stdout, &stderr, []string{"mkview", "--help"})

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	if !strings.Contains(stdout.String(), "Usage: mkview") {
		t.Errorf("expected usage in stdout, got: %s", stdout.String())
	}
}

func Test_Run_Rejects_Unknown_Option(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := Run(&stdout, &stderr, []string{"mkview", "-x", "/tmp/v"})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	if !strings.Contains(stderr.String(), "unknown option") {
		t.Errorf("expected 'unknown option' in stderr, got: %s", stderr.String())
	}
}

func Test_Run_Requires_At_Least_One_Dir_Spec(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := Run(&stdout, &stderr, []string{"mkview", t.TempDir()})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	if !strings.Contains(stderr.String(), "one or more directories") {
		t.Errorf("expected directory-count complaint in stderr, got: %s", stderr.String())
	}
}

func Test_Run_Rejects_NonEmpty_View_Dir(t *testing.T) {
	t.Parallel()

	viewDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(viewDir, "f"), nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	source := t.TempDir()

	var stdout, stderr bytes.Buffer

	code := Run(&stdout, &stderr, []string{"mkview", viewDir, source})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func Test_Run_Rejects_Invalid_Dir_Spec(t *testing.T) {
	t.Parallel()

	viewDir := filepath.Join(t.TempDir(), "view")
	source := t.TempDir()

	var stdout, stderr bytes.Buffer

	code := Run(&stdout, &stderr, []string{"mkview", viewDir, source + ":/absolute"})

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}
