package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marler8997/mkroot/internal/pathutil"
)

// AddDir inserts dir at targetRelative into the tree.
//
// At each level of sub-mount-points it classifies targetRelative against
// each sibling's TargetRelative with a four-way prefix comparison:
//
//   - equal            -> append dir to the sibling's Dirs
//   - disjoint         -> keep scanning
//   - targetRelative is a strict prefix of the sibling -> the sibling is
//     replaced in place by a fresh node at targetRelative, with the old
//     sibling becoming its child
//   - the sibling is a strict prefix of targetRelative -> recurse into the
//     sibling's sub-mount-points
//
// If no sibling matches, a fresh single-dir node is appended.
func (t *Tree) AddDir(dir *Dir, targetRelative string) error {
	return addDirInto(t, &t.Root.SubMountPoints, dir, targetRelative)
}

func addDirInto(tree *Tree, siblings *[]*MountPoint, dir *Dir, targetRelative string) error {
	for i, mp := range *siblings {
		switch pathutil.Compare(targetRelative, mp.TargetRelative) {
		case pathutil.Disjoint:
			continue

		case pathutil.Equal:
			mp.Dirs = append(mp.Dirs, dir)
			return nil

		case pathutil.RightStartsWithLeft:
			// targetRelative is a strict prefix of the sibling's target:
			// swap the sibling out for a fresh node, demoting it to a child.
			newMP := newMountPoint(tree, dir, targetRelative)
			newMP.SubMountPoints = append(newMP.SubMountPoints, mp)
			(*siblings)[i] = newMP

			return nil

		case pathutil.LeftStartsWithRight:
			// the sibling's target is a strict prefix of targetRelative:
			// recurse into the sibling's own children.
			return addDirInto(tree, &mp.SubMountPoints, dir, targetRelative)
		}
	}

	*siblings = append(*siblings, newMountPoint(tree, dir, targetRelative))

	return nil
}

// ErrInvalidView indicates a source directory contains a non-directory
// where a child mount expects a directory to host it.
type ErrInvalidView struct {
	Path string
}

func (e *ErrInvalidView) Error() string {
	return fmt.Sprintf("invalid view: %q is not a directory", e.Path)
}

// resolveHostingDir finds which of parent's Dirs already contains a
// directory at child's relative path (relative to parent)
//
// It returns the hosting Dir, or nil if none hosts the child (the driver
// must then scaffold a tmpfs). A non-nil error means a Dir does host the
// path but the entry there is not a directory (*ErrInvalidView), or a stat
// call failed unexpectedly.
func resolveHostingDir(parent, child *MountPoint) (*Dir, error) {
	diff := pathutil.StripLeading(strings.TrimPrefix(child.TargetRelative, parent.TargetRelative), '/')

	for _, dir := range parent.Dirs {
		subdir := dir.Source
		if diff != "" {
			subdir = filepath.Join(dir.Source, diff)
		}

		fi, err := os.Stat(subdir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return nil, fmt.Errorf("stat %q failed: %w", subdir, err)
		}

		if !fi.IsDir() {
			return nil, &ErrInvalidView{Path: subdir}
		}

		// NOTE: we don't check every dir for conflicts once one hosts the
		// path; the first match takes precedence in the overlay.
		return dir, nil
	}

	return nil, nil
}
