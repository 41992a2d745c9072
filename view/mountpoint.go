package view

// Flags is a bitset of MountPoint behavior flags.
type Flags uint8

const (
	// CanMkdirs is set on the root node: its own storage is writable and
	// durable, so sub-mount directories can be created directly with
	// mkdir -p instead of needing a tmpfs scaffold.
	CanMkdirs Flags = 1 << iota
)

// MountPoint is a node in the composition tree.
type MountPoint struct {
	// TargetRelative is this node's position within the view; empty for the
	// root.
	TargetRelative string

	// Dirs is the ordered sequence of contributing Dir values sharing
	// TargetRelative. Order is insertion order and defines the overlay
	// lower-stack ordering. Never empty once the node is reachable.
	Dirs []*Dir

	// SubMountPoints is the ordered sequence of child nodes whose
	// TargetRelative is strictly under this node's.
	SubMountPoints []*MountPoint

	Flags Flags

	tree           *Tree
	absoluteTarget string
}

// Tree owns the mount-point forest rooted at a view directory.
type Tree struct {
	// ViewRoot is the special Dir whose Source is the user-supplied view
	// directory and whose TargetRelative is empty. It is exempt from
	// workdir semantics and is the sole Dir on Root.
	ViewRoot *Dir

	// Root is the root MountPoint; it carries CanMkdirs.
	Root *MountPoint
}

func newMountPoint(tree *Tree, first *Dir, targetRelative string) *MountPoint {
	return &MountPoint{
		TargetRelative: targetRelative,
		Dirs:           []*Dir{first},
		tree:           tree,
	}
}

// NewTree creates a Tree rooted at viewRoot, whose root MountPoint carries
// CanMkdirs.
func NewTree(viewRoot *Dir) *Tree {
	t := &Tree{ViewRoot: viewRoot}
	root := newMountPoint(t, viewRoot, "")
	root.Flags |= CanMkdirs
	t.Root = root

	return t
}

// AbsoluteTarget returns the memoised concatenation of the view root's
// source and this node's TargetRelative.
func (m *MountPoint) AbsoluteTarget() string {
	if m.absoluteTarget == "" {
		if m.TargetRelative == "" {
			m.absoluteTarget = m.tree.ViewRoot.Source
		} else {
			m.absoluteTarget = m.tree.ViewRoot.Source + "/" + m.TargetRelative
		}
	}

	return m.absoluteTarget
}
