package btree

func insertUint64(xs []uint64, i int, v uint64) []uint64 {
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = v
	return xs
}

func insertUint32(xs []uint32, i int, v uint32) []uint32 {
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = v
	return xs
}

func removeUint64(xs []uint64, i int) []uint64 {
	return append(xs[:i], xs[i+1:]...)
}

func removeUint32(xs []uint32, i int) []uint32 {
	return append(xs[:i], xs[i+1:]...)
}
