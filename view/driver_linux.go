//go:build linux

package view

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/marler8997/mkroot/internal/logging"
)

// DirStatus classifies the state of the view directory before composition.
type DirStatus int

const (
	DirDoesNotExist DirStatus = iota
	DirNotADir
	DirEmpty
	DirNotEmpty
)

func getDirStatus(dir string) (DirStatus, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return DirDoesNotExist, nil
		}

		return 0, fmt.Errorf("stat '%s' failed: %w", dir, err)
	}

	if !fi.IsDir() {
		return DirNotADir, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("opendir '%s' failed: %w", dir, err)
	}

	if len(entries) == 0 {
		return DirEmpty, nil
	}

	return DirNotEmpty, nil
}

// InitRootDir verifies the view root either does not exist (in which case it
// is created, mode 0755) or exists and is empty.
func InitRootDir(logger *logging.Logger, viewDir string) error {
	status, err := getDirStatus(viewDir)
	if err != nil {
		return err
	}

	switch status {
	case DirDoesNotExist:
		logger.Logf("mkdir -m %o %s", defaultMkdirMode, viewDir)

		if err := unix.Mkdir(viewDir, defaultMkdirMode); err != nil {
			return fmt.Errorf("mkdir '%s' failed: %w", viewDir, err)
		}

		return nil
	case DirNotADir:
		return fmt.Errorf("root dir '%s' is not a directory", viewDir)
	case DirEmpty:
		return nil
	case DirNotEmpty:
		return fmt.Errorf("root directory '%s' is not empty", viewDir)
	default:
		return fmt.Errorf("codebug: unexpected dir status for '%s'", viewDir)
	}
}

// Compose materializes tree by walking it top-down: prepare sub-mounts,
// mount self, recurse into sub-mount-points.
//
// The root node itself is never mounted (only its sub-mount-points are
// processed) since the root's storage is the view directory itself.
func Compose(logger *logging.Logger, tree *Tree) error {
	if err := prepareSubMounts(logger, tree.Root); err != nil {
		return err
	}

	return makeSubMountPoints(logger, tree.Root)
}

func makeSubMountPoints(logger *logging.Logger, mp *MountPoint) error {
	for _, sub := range mp.SubMountPoints {
		if err := makeMountPoint(logger, sub); err != nil {
			return err
		}
	}

	return nil
}

func makeMountPoint(logger *logging.Logger, mp *MountPoint) error {
	if err := prepareSubMounts(logger, mp); err != nil {
		return err
	}

	target := mp.AbsoluteTarget()

	if len(mp.Dirs) > 1 {
		if err := overlayMount(logger, target, mp.Dirs); err != nil {
			return err
		}
	} else {
		if err := bindMount(logger, mp.Dirs[0].Source, target); err != nil {
			return err
		}
		// Read-only remount of non-upper bind mounts is not performed: dirs
		// marked as lowers remain writable through the view.
	}

	return makeSubMountPoints(logger, mp)
}

// prepareSubMounts ensures every sub-mount-point of mp has a directory ready
// to be mounted onto.
func prepareSubMounts(logger *logging.Logger, mp *MountPoint) error {
	if mp.Flags&CanMkdirs != 0 {
		for _, sub := range mp.SubMountPoints {
			if err := mkdirs(logger, sub.AbsoluteTarget()); err != nil {
				return err
			}
		}

		return nil
	}

	var needDirs []*MountPoint

	for _, sub := range mp.SubMountPoints {
		host, err := resolveHostingDir(mp, sub)
		if err != nil {
			return err
		}

		if host == nil {
			needDirs = append(needDirs, sub)
		} else {
			logger.Logf("mount parent for '%s' is '%s'", sub.TargetRelative, host.Source)
		}
	}

	if len(needDirs) == 0 {
		return nil
	}

	// mp is not writable and there's no directory among its dirs to host
	// one or more sub-mounts: overlay it with a tmpfs scaffold that holds
	// the directories the sub-mounts need.
	target := mp.AbsoluteTarget()

	if err := tmpfsMount(logger, target); err != nil {
		return err
	}

	for _, sub := range needDirs {
		if err := mkdirs(logger, sub.AbsoluteTarget()); err != nil {
			return err
		}
	}

	// The tmpfs is appended as one of mp's dirs so that when mp itself is
	// mounted (overlay, below), the scaffold is part of the lower stack and
	// the child mounts see their backing directories.
	//
	// TODO: unsettled whether the tmpfs should occupy the front of the
	// lower stack instead, to mask files a real lower already has at this
	// path; this mirrors the original's append-only behavior rather than
	// silently fixing it.
	mp.Dirs = append(mp.Dirs, &Dir{Arg: target, Source: target})

	return nil
}
