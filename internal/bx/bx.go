// Package bx provides fixed-width big-endian integer packing used by the
// page codec and everything built on top of it. Every multi-byte field in
// the file format is big-endian, so unlike a general byte-order toolkit this
// package offers no little-endian variants at all.
package bx

import "encoding/binary"

var be = binary.BigEndian

func U16(b []byte) uint16 { return be.Uint16(b) }
func U32(b []byte) uint32 { return be.Uint32(b) }
func U64(b []byte) uint64 { return be.Uint64(b) }

func PutU16(b []byte, v uint16) { be.PutUint16(b, v) }
func PutU32(b []byte, v uint32) { be.PutUint32(b, v) }
func PutU64(b []byte, v uint64) { be.PutUint64(b, v) }

func U16At(b []byte, off int) uint16       { return U16(b[off:]) }
func U32At(b []byte, off int) uint32       { return U32(b[off:]) }
func U64At(b []byte, off int) uint64       { return U64(b[off:]) }
func PutU16At(b []byte, off int, v uint16) { PutU16(b[off:], v) }
func PutU32At(b []byte, off int, v uint32) { PutU32(b[off:], v) }
func PutU64At(b []byte, off int, v uint64) { PutU64(b[off:], v) }
