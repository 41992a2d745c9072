// Package teardown implements rmr: recursively unmounting and removing a
// directory tree, unmounting nested mount points before removing the
// directories beneath them instead of stopping at them.
package teardown
