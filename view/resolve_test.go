package view

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func Test_ResolveHostingDir_Finds_Existing_Subdirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "usr", "bin"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	parent := &MountPoint{TargetRelative: "", Dirs: []*Dir{{Source: root}}}
	child := &MountPoint{TargetRelative: "usr/bin"}

	host, err := resolveHostingDir(parent, child)
	if err != nil {
		t.Fatalf("resolveHostingDir: %v", err)
	}

	if host == nil {
		t.Fatal("expected a hosting dir, got nil")
	}

	if host.Source != root {
		t.Errorf("host.Source = %q, want %q", host.Source, root)
	}
}

func Test_ResolveHostingDir_Returns_Nil_When_No_Dir_Hosts_Child(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	parent := &MountPoint{TargetRelative: "", Dirs: []*Dir{{Source: root}}}
	child := &MountPoint{TargetRelative: "usr/bin"}

	host, err := resolveHostingDir(parent, child)
	if err != nil {
		t.Fatalf("resolveHostingDir: %v", err)
	}

	if host != nil {
		t.Errorf("expected nil host, got %+v", host)
	}
}

func Test_ResolveHostingDir_Errors_When_Path_Is_Not_A_Directory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "usr"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "usr", "bin"), nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	parent := &MountPoint{TargetRelative: "", Dirs: []*Dir{{Source: root}}}
	child := &MountPoint{TargetRelative: "usr/bin"}

	_, err := resolveHostingDir(parent, child)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}

	var invalidView *ErrInvalidView
	if !errors.As(err, &invalidView) {
		t.Errorf("expected *ErrInvalidView, got %T: %v", err, err)
	}
}
