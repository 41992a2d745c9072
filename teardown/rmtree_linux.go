//go:build linux

package teardown

import (
	"errors"
	"fmt"
	"os"

	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"

	"github.com/marler8997/mkroot/internal/logging"
	"github.com/marler8997/mkroot/internal/pathutil"
)

// ErrImpossibleRenameSucceeded is returned when the "impossible rename"
// bind-mount probe unexpectedly succeeds: the invariant it depends on
// doesn't hold for the directory being examined, so teardown can no longer
// tell a bind mount from a plain directory there. Any caller seeing this
// error must abort rather than continue removing entries, since continuing
// risks deleting or unmounting something it misidentified.
var ErrImpossibleRenameSucceeded = errors.New("impossible rename succeeded: bind-mount detection invariant broken")

// Rmtree unmounts every mount point found under dir and then removes dir and
// everything left beneath it, and returns the number of entries it failed to
// remove. Files that live on a mounted filesystem are not removed: the mount
// is taken down first, and only the directory underneath it is deleted. A non-nil error means the bind-mount detection
// invariant broke partway through and teardown stopped immediately; the
// caller must abort rather than treat it as an ordinary per-entry failure.
func Rmtree(logger *logging.Logger, dir string) (int, error) {
	logger.Logf("rmtree '%s'", dir)

	var st unix.Stat_t

	if err := unix.Stat(dir, &st); err != nil {
		logger.Errnof(err, "stat '%s' failed", dir)
		return 1, nil
	}

	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		logger.Errf("'%s' exists but is not a directory", dir)
		return 1, nil
	}

	// realpath first so mount-point lookups below match what /proc/mounts
	// reports.
	realDir, err := pathutil.Realpath(dir)
	if err != nil {
		logger.Errnof(err, "realpath '%s' failed", dir)
		return 1, nil
	}

	tryCleanMounts(logger, realDir)

	// re-stat: the device may have changed now that mounts under it are gone.
	if err := unix.Stat(realDir, &st); err != nil {
		logger.Errnof(err, "stat '%s' failed", realDir)
		return 1, nil
	}

	return cleanDir(logger, st.Dev, realDir, st.Dev)
}

// cleanDir removes dir and everything beneath it. rootDev is the device of
// the tree's starting point; whenever a descendant's device differs from
// rootDev (it's a separate filesystem mounted underneath), or dir is itself
// a bind mount, it's unmounted before its contents are touched.
func cleanDir(logger *logging.Logger, rootDev uint64, dir string, dirDev uint64) (int, error) {
	for {
		mustUnmount := dirDev != rootDev

		if !mustUnmount {
			bind, err := isBindMount(logger, dir)
			if err != nil {
				return 0, err
			}

			mustUnmount = bind
		}

		if !mustUnmount {
			break
		}

		if err := loggyUmount(logger, dir); err != nil {
			if removed := tryCleanMounts(logger, dir); removed == 0 {
				return 1, nil
			}

			continue
		}

		var st unix.Stat_t

		if err := unix.Stat(dir, &st); err != nil {
			logger.Errnof(err, "stat '%s' failed after unmounting it", dir)
			return 1, nil
		}

		dirDev = st.Dev
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Errnof(err, "opendir '%s' failed", dir)
		return 1, nil
	}

	errorCount := 0

	for _, entry := range entries {
		full := dir + "/" + entry.Name()

		var st unix.Stat_t

		if err := unix.Lstat(full, &st); err != nil {
			logger.Errnof(err, "lstat on '%s' failed", full)
			errorCount++

			continue
		}

		if st.Mode&unix.S_IFMT == unix.S_IFDIR {
			n, err := cleanDir(logger, rootDev, full, st.Dev)
			if err != nil {
				return errorCount + n, err
			}

			errorCount += n
		} else if err := loggyRemove(logger, full); err != nil {
			errorCount++
		}
	}

	if err := loggyRemove(logger, dir); err != nil {
		errorCount++
	}

	return errorCount, nil
}

func loggyRemove(logger *logging.Logger, path string) error {
	logger.Logf("remove '%s'", path)

	if err := os.Remove(path); err != nil {
		logger.Errnof(err, "remove '%s' failed", path)
		return err
	}

	return nil
}

func loggyUmount(logger *logging.Logger, dir string) error {
	logger.Logf("umount %s", dir)

	if err := unix.Unmount(dir, 0); err != nil {
		logger.Errnof(err, "umount '%s' failed", dir)
		return err
	}

	return nil
}

// isBindMount reports whether dir is itself a mount point, using the
// "impossible rename" probe: dir+"/../." renamed onto dir+"/." fails with
// EXDEV exactly when dir is a mount point, because the kernel resolves
// dir/.. on the parent filesystem while dir/. resolves on the mounted one.
// See http://blog.schmorp.de/2016-03-03-detecting-a-mount-point.html.
//
// If the rename unexpectedly succeeds, the probe's invariant is broken and
// isBindMount returns ErrImpossibleRenameSucceeded instead of guessing.
func isBindMount(logger *logging.Logger, dir string) (bool, error) {
	from := dir + "/../."
	to := dir + "/."

	err := unix.Rename(from, to)
	if err == nil {
		logger.Errf("rename '%s' to '%s' should not have worked", from, to)
		return false, fmt.Errorf("rename '%s' to '%s' should not have worked: %w", from, to, ErrImpossibleRenameSucceeded)
	}

	return errors.Is(err, unix.EXDEV), nil
}

// tryCleanMounts repeatedly unmounts the longest-path mount found under dir,
// since a mount higher in the tree can't be unmounted while its submounts
// still exist. It returns the number of mounts it unmounted.
func tryCleanMounts(logger *logging.Logger, dir string) int {
	count := 0

	for {
		biggest, err := getBiggestMount(dir)
		if err != nil {
			logger.Errnof(err, "reading mounts under '%s' failed", dir)
			return count
		}

		if biggest == "" {
			return count
		}

		if err := loggyUmount(logger, biggest); err != nil {
			return count
		}

		count++
	}
}

func getBiggestMount(prefix string) (string, error) {
	mounts, err := mountinfo.GetMounts(mountinfo.PrefixFilter(prefix))
	if err != nil {
		return "", err
	}

	var biggest string

	for _, m := range mounts {
		if len(m.Mountpoint) > len(biggest) {
			biggest = m.Mountpoint
		}
	}

	return biggest, nil
}
