package kvutil

import "encoding/binary"

// KeySlice packs the first 8 bytes of key into a big-endian uint64,
// zero-padding short keys. It is the default codec used to derive the
// fixed-width key slice that interior and leaf pages store; callers with
// keys that collide under this truncation may supply their own codec.
func KeySlice(key []byte) uint64 {
	var buf [8]byte
	copy(buf[:], key)
	return binary.BigEndian.Uint64(buf[:])
}
