package view

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_ParseDirSpec_Plain_Source_Defaults_Target_From_Resolved_Path(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	d, err := ParseDirSpec(dir)
	if err != nil {
		t.Fatalf("ParseDirSpec: %v", err)
	}

	if d.Source != dir {
		t.Errorf("Source = %q, want %q", d.Source, dir)
	}

	want := strings.TrimPrefix(dir, "/")
	if d.TargetRelative != want {
		t.Errorf("TargetRelative = %q, want %q", d.TargetRelative, want)
	}

	if d.Writable() {
		t.Error("expected dir without workdir to not be writable")
	}
}

func Test_ParseDirSpec_With_Explicit_Target(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	d, err := ParseDirSpec(dir + ":usr/bin")
	if err != nil {
		t.Fatalf("ParseDirSpec: %v", err)
	}

	if d.TargetRelative != "usr/bin" {
		t.Errorf("TargetRelative = %q, want usr/bin", d.TargetRelative)
	}
}

func Test_ParseDirSpec_With_Workdir_Is_Writable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	work := t.TempDir()

	d, err := ParseDirSpec(work + "," + dir + ":data")
	if err != nil {
		t.Fatalf("ParseDirSpec: %v", err)
	}

	if !d.Writable() {
		t.Error("expected dir with workdir to be writable")
	}

	if d.Workdir != work {
		t.Errorf("Workdir = %q, want %q", d.Workdir, work)
	}
}

func Test_ParseDirSpec_Rejects_Target_Starting_With_Slash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := ParseDirSpec(dir + ":/abs"); err == nil {
		t.Error("expected an error for target starting with '/'")
	}
}

func Test_ParseDirSpec_Rejects_Missing_Source(t *testing.T) {
	t.Parallel()

	if _, err := ParseDirSpec(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected an error for a nonexistent source")
	}
}

func Test_ParseDirSpec_Rejects_Non_Directory_Source(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := ParseDirSpec(file); err == nil {
		t.Error("expected an error for a non-directory source")
	}
}
