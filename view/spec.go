package view

import (
	"fmt"
	"os"
	"strings"

	"github.com/marler8997/mkroot/internal/pathutil"
)

// ParseDirSpec parses a <dir_spec> argument of the form
// "[<workdir>,]<source>[:<target_relative>]".
//
// source is resolved to its canonical absolute path. If target_relative is
// omitted, it defaults to the resolved source with any leading '/' stripped.
func ParseDirSpec(arg string) (*Dir, error) {
	d := &Dir{Arg: arg}

	rest := arg
	if idx := strings.IndexByte(rest, ','); idx >= 0 {
		d.Workdir = rest[:idx]
		rest = rest[idx+1:]
	}

	source := rest

	var (
		targetRelative string
		hasTarget      bool
	)

	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		source = rest[:idx]
		targetRelative = rest[idx+1:]
		hasTarget = true

		if err := VerifyCustomTarget(targetRelative); err != nil {
			return nil, err
		}
	}

	fi, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", source, err)
	}

	if !fi.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", source)
	}

	resolved, err := pathutil.Realpath(source)
	if err != nil {
		return nil, fmt.Errorf("realpath(%q) failed: %w", source, err)
	}

	d.Source = resolved

	if !hasTarget {
		targetRelative = pathutil.StripLeading(resolved, '/')
	}

	d.TargetRelative = targetRelative

	return d, nil
}

// VerifyCustomTarget rejects a target_relative that starts with '/'.
//
// TODO: the original tool also never collapses '.'/'..' components or
// duplicate slashes in target_relative before it reaches the planner's
// literal byte-wise prefix comparison; this reimplementation
// preserves that gap rather than silently fixing it.
func VerifyCustomTarget(target string) error {
	if strings.HasPrefix(target, "/") {
		return fmt.Errorf("invalid target '%s', cannot begin with '/'", target)
	}

	return nil
}
