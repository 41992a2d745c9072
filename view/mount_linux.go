//go:build linux

package view

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/marler8997/mkroot/internal/logging"
)

const defaultMkdirMode = 0o755

// mkdirs ensures dir and all its missing ancestors exist as directories,
// mode 0755, following mkdirs_helper: if dir already exists and
// is a directory, success; if it exists and is not a directory, failure;
// otherwise the parent is ensured first and then dir is created. Hitting
// the filesystem root without finding a directory is a failure (mkdir "/"
// is never attempted).
func mkdirs(logger *logging.Logger, dir string) error {
	var st unix.Stat_t

	err := unix.Stat(dir, &st)
	if err == nil {
		if st.Mode&unix.S_IFMT == unix.S_IFDIR {
			return nil
		}

		return fmt.Errorf("'%s' exists but is not a directory", dir)
	}

	if err != unix.ENOENT { //nolint:errorlint // unix.Stat returns a bare syscall.Errno
		return fmt.Errorf("stat '%s' failed: %w", dir, err)
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return fmt.Errorf("failed to create directory '%s'", dir)
	}

	if err := mkdirs(logger, parent); err != nil {
		return err
	}

	logger.Logf("mkdir -m %o %s", defaultMkdirMode, dir)

	if err := unix.Mkdir(dir, defaultMkdirMode); err != nil {
		return fmt.Errorf("mkdir '%s' failed: %w", dir, err)
	}

	return nil
}

// bindMount issues a bind mount of source onto target.
func bindMount(logger *logging.Logger, source, target string) error {
	logger.Logf("mount --bind %s %s", source, target)

	if err := unix.Mount(source, target, "", unix.MS_BIND, ""); err != nil {
		return fmt.Errorf("bind mount '%s' -> '%s' failed: %w", source, target, err)
	}

	return nil
}

// tmpfsMount mounts a fresh tmpfs onto target.
func tmpfsMount(logger *logging.Logger, target string) error {
	logger.Logf("mount -t tmpfs tmpfs %s", target)

	if err := unix.Mount("tmpfs", target, "tmpfs", 0, ""); err != nil {
		return fmt.Errorf("mounting tmpfs onto '%s' failed: %w", target, err)
	}

	return nil
}

// overlayMount issues an overlay mount at target composed of dirs. At most
// one dir may carry a Workdir; that dir becomes the overlay's upperdir and
// its Workdir the overlay workdir. The remaining dirs become lowerdirs, in
// insertion order.
func overlayMount(logger *logging.Logger, target string, dirs []*Dir) error {
	options, err := buildOverlayOptions(dirs, target)
	if err != nil {
		return err
	}

	logger.Logf("mount -t overlay -o %s none %s", options, target)

	if err := unix.Mount("none", target, "overlay", 0, options); err != nil {
		return fmt.Errorf("overlay mount onto '%s' failed: %w", target, err)
	}

	return nil
}

// buildOverlayOptions produces the bit-exact overlay option string
// "lowerdir=<a>:<b>:...[,upperdir=<u>,workdir=<w>]".
func buildOverlayOptions(dirs []*Dir, target string) (string, error) {
	var (
		upper  *Dir
		lowers []string
	)

	for _, d := range dirs {
		if d.Writable() {
			if upper != nil {
				return "", fmt.Errorf("mount point at '%s' has multiple upper directories '%s' and '%s'",
					target, upper.Arg, d.Arg)
			}

			upper = d

			continue
		}

		lowers = append(lowers, d.Source)
	}

	var sb strings.Builder

	sb.WriteString("lowerdir=")
	sb.WriteString(strings.Join(lowers, ":"))

	if upper != nil {
		sb.WriteString(",upperdir=")
		sb.WriteString(upper.Source)
		sb.WriteString(",workdir=")
		sb.WriteString(upper.Workdir)
	}

	return sb.String(), nil
}
