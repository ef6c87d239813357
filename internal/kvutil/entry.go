// Package kvutil holds small pieces shared across the pager and btree
// packages: an ordered key/value pair, a balanced list splitter, and
// length-prefix framing for overflow payloads.
package kvutil

import (
	"cmp"
	"encoding/binary"
)

// Entry pairs a key with a value. Less and Equal consider only the key, so
// an Entry{Key: k} with a zero Value works as a probe for binary search.
type Entry[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// Less reports whether e's key orders before other's.
func (e Entry[K, V]) Less(other Entry[K, V]) bool { return e.Key < other.Key }

// Equal reports whether e and other share the same key.
func (e Entry[K, V]) Equal(other Entry[K, V]) bool { return e.Key == other.Key }

// SplitList divides xs into two halves. For an odd-length input the median
// element lands in the right half.
func SplitList[T any](xs []T) (left, right []T) {
	mid := len(xs) / 2
	return xs[:mid], xs[mid:]
}

// LengthPrefix returns data prefixed with its own length as a 4-byte
// big-endian unsigned integer.
func LengthPrefix(data []byte) []byte {
	out := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(out[:4], uint32(len(data)))
	copy(out[4:], data)
	return out
}
