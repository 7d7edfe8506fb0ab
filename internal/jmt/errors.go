package jmt

import "errors"

// NodeDecodeError kinds, all non-retryable per §4.4.5: malformed bytes
// bubble straight up to the storage caller.
var (
	ErrEmptyInput        = errors.New("jmt: empty input")
	ErrUnknownTag        = errors.New("jmt: unknown node tag")
	ErrNoChildren        = errors.New("jmt: internal node has no children")
	ErrExtraLeaves       = errors.New("jmt: leaf_bitmap has bits outside existence_bitmap")
	ErrTrailingBytes     = errors.New("jmt: trailing bytes after node body")
	ErrInconsistentCount = errors.New("jmt: inconsistent child count")
	ErrSoleLeafChild     = errors.New("jmt: internal node with exactly one child must have an internal child")
)
