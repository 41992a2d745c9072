// Package view implements the composition planner and mount driver for
// mkview: building a tree of mount points from a flat list of source
// directories, and materializing that tree with bind and overlay mounts.
package view

// Dir is a contributing source directory.
type Dir struct {
	// Arg is the unparsed token as given on the command line, kept for
	// diagnostics.
	Arg string

	// Source is the canonical absolute path of an existing directory,
	// resolved at insertion time.
	Source string

	// Workdir, when non-empty, makes this dir writable: it becomes the
	// overlay's upperdir, and Workdir is the overlay scratch directory
	// (expected to be colocated with Source on the same filesystem).
	Workdir string

	// TargetRelative is the slash-separated path, relative to the view
	// root, where this dir should appear. It never starts with '/' and has
	// no '.'/'..' or empty segments.
	TargetRelative string
}

// Writable reports whether dir carries a workdir and therefore acts as an
// overlay upperdir.
func (d *Dir) Writable() bool {
	return d != nil && d.Workdir != ""
}
