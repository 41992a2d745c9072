package view

import (
	"strings"

	"github.com/marler8997/mkroot/internal/logging"
)

// PrintTree writes a human-readable trace of tree to logger before it is
// materialized, so a failed composition can be diagnosed from the plan
// alone.
func PrintTree(logger *logging.Logger, tree *Tree) {
	logger.Logf("%s", strings.Repeat("-", 60))
	printMountPoints(logger, tree.Root.SubMountPoints, 0)
	logger.Logf("%s", strings.Repeat("-", 60))
}

func printMountPoints(logger *logging.Logger, mps []*MountPoint, depth int) {
	for _, mp := range mps {
		printMountPoint(logger, mp, depth)
	}
}

func printMountPoint(logger *logging.Logger, mp *MountPoint, depth int) {
	indent := strings.Repeat("  ", depth)

	logger.Logf("%s/%s", indent, mp.TargetRelative)

	for _, d := range mp.Dirs {
		if d.Writable() {
			logger.Logf("%s  + %s (upper, workdir=%s)", indent, d.Source, d.Workdir)
		} else {
			logger.Logf("%s  + %s", indent, d.Source)
		}
	}

	printMountPoints(logger, mp.SubMountPoints, depth+1)
}
