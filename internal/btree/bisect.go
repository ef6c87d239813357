package btree

import "github.com/tuannm99/bptreekv/internal/kvutil"

// probeEntry is the comparable wrapper bisectLeft/bisectRight build around
// both the search key and each candidate node key, so the probe/compare
// path goes through kvutil.Entry's Less/Equal rather than bare operators.
type probeEntry = kvutil.Entry[uint64, struct{}]

func wrapEntry(key uint64) probeEntry { return probeEntry{Key: key} }

// bisectLeft returns the leftmost index at which key could be inserted into
// sorted keys while keeping it sorted.
func bisectLeft(keys []uint64, key uint64) int {
	probe := wrapEntry(key)
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if wrapEntry(keys[mid]).Less(probe) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// bisectRight returns the rightmost index at which key could be inserted
// into sorted keys while keeping it sorted; used to choose which child of
// an interior node to descend into.
func bisectRight(keys []uint64, key uint64) int {
	probe := wrapEntry(key)
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		entry := wrapEntry(keys[mid])
		if entry.Less(probe) || entry.Equal(probe) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
