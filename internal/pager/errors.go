package pager

import "errors"

var (
	// ErrOutOfBounds is returned when a pageno falls beyond the current
	// file length.
	ErrOutOfBounds = errors.New("pager: pageno out of bounds")
	// ErrBadFreeList is returned when a page popped off the free list does
	// not carry the free-page magic. This is a corruption and is fatal.
	ErrBadFreeList = errors.New("pager: corrupt free list")
	// ErrChainTruncated is returned when an overflow chain ends before the
	// declared length has been read.
	ErrChainTruncated = errors.New("pager: overflow chain truncated")
)
