// Package page implements the binary page codec: pure encode/decode
// functions and value types for each page kind, with no I/O of their own.
package page

import "github.com/tuannm99/bptreekv/internal/bx"

// Size is the fixed frame size of every page in the file.
const Size = 4096

var (
	zeroMagic     = [8]byte{0xAB, 'Z', 'E', 'R', 'O', 'P', 'G', 0xCD}
	freeMagic     = [8]byte{0xDC, 'F', 'R', 'E', 'E', 'P', 'G', 0xBA}
	interiorMagic = [8]byte{0x01, 'I', 'N', 'T', 'R', 'P', 'G', 0xCD}
	leafMagic     = [8]byte{0x02, 'L', 'E', 'A', 'F', 'P', 'G', 0xCD}
	overflowMagic = [8]byte{'o', 'V', 'e', 'R', 'f', 'L', 'o', 'W'}
)

// MaxKeys returns the maximum number of keys a node may hold for the given
// fan-out order. Order must be >= 3.
func MaxKeys(order int) int { return order - 1 }

// MinKeys returns ceil(MaxKeys/2), the key count below which a non-root
// node is repaired by a borrow or a merge after a delete. An interior split
// with an odd MaxKeys leaves MaxKeys/2 (rounded down) keys in its left half.
func MinKeys(order int) int {
	m := MaxKeys(order)
	return (m + 1) / 2
}

func checkLen(b []byte) error {
	if len(b) != Size {
		return ErrBadLength
	}
	return nil
}

func checkMagic(b []byte, want [8]byte) error {
	for i := 0; i < 8; i++ {
		if b[i] != want[i] {
			return ErrBadMagic
		}
	}
	return nil
}

// ZeroPage is page 0: the database header.
type ZeroPage struct {
	RootPageno            uint32
	NextFreePageno        uint32
	NextOverflowPageno    uint32
	CurrentOverflowPageno uint32
	CurrentOverflowOffset uint16
}

func (z *ZeroPage) Encode() []byte {
	b := make([]byte, Size)
	copy(b[0:8], zeroMagic[:])
	bx.PutU32At(b, 8, z.RootPageno)
	bx.PutU32At(b, 12, z.NextFreePageno)
	bx.PutU32At(b, 16, z.NextOverflowPageno)
	bx.PutU32At(b, 20, z.CurrentOverflowPageno)
	bx.PutU16At(b, 24, z.CurrentOverflowOffset)
	return b
}

func DecodeZeroPage(b []byte) (*ZeroPage, error) {
	if err := checkLen(b); err != nil {
		return nil, err
	}
	if err := checkMagic(b, zeroMagic); err != nil {
		return nil, err
	}
	return &ZeroPage{
		RootPageno:            bx.U32At(b, 8),
		NextFreePageno:        bx.U32At(b, 12),
		NextOverflowPageno:    bx.U32At(b, 16),
		CurrentOverflowPageno: bx.U32At(b, 20),
		CurrentOverflowOffset: bx.U16At(b, 24),
	}, nil
}

// FreePage is a released page awaiting reuse. NextFreePageno == 0 marks the
// list terminator.
type FreePage struct {
	NextFreePageno uint32
}

func (f *FreePage) Encode() []byte {
	b := make([]byte, Size)
	copy(b[0:8], freeMagic[:])
	bx.PutU32At(b, 8, f.NextFreePageno)
	return b
}

func DecodeFreePage(b []byte) (*FreePage, error) {
	if err := checkLen(b); err != nil {
		return nil, err
	}
	if err := checkMagic(b, freeMagic); err != nil {
		return nil, err
	}
	return &FreePage{NextFreePageno: bx.U32At(b, 8)}, nil
}

// InteriorPage is a B+ tree interior node: ordered separator keys and
// len(Keys)+1 child page numbers.
type InteriorPage struct {
	Keys     []uint64
	Children []uint32
}

const interiorHeaderSize = 10 // magic(8) + key_count(2)

func (p *InteriorPage) Encode(order int) []byte {
	b := make([]byte, Size)
	copy(b[0:8], interiorMagic[:])
	bx.PutU16At(b, 8, uint16(len(p.Keys)))

	maxKeys := MaxKeys(order)
	off := interiorHeaderSize
	for i := 0; i < maxKeys; i++ {
		var v uint64
		if i < len(p.Keys) {
			v = p.Keys[i]
		}
		bx.PutU64At(b, off, v)
		off += 8
	}
	for i := 0; i < maxKeys+1; i++ {
		var v uint32
		if i < len(p.Children) {
			v = p.Children[i]
		}
		bx.PutU32At(b, off, v)
		off += 4
	}
	return b
}

func DecodeInteriorPage(b []byte, order int) (*InteriorPage, error) {
	if err := checkLen(b); err != nil {
		return nil, err
	}
	if err := checkMagic(b, interiorMagic); err != nil {
		return nil, err
	}
	keyCount := int(bx.U16At(b, 8))
	maxKeys := MaxKeys(order)
	if keyCount > maxKeys {
		return nil, ErrBadLength
	}

	off := interiorHeaderSize
	keys := make([]uint64, keyCount)
	for i := 0; i < keyCount; i++ {
		keys[i] = bx.U64At(b, off+i*8)
	}
	off += maxKeys * 8
	children := make([]uint32, keyCount+1)
	for i := 0; i < keyCount+1; i++ {
		children[i] = bx.U32At(b, off+i*4)
	}
	return &InteriorPage{Keys: keys, Children: children}, nil
}

// LeafPage is a B+ tree leaf: ordered (key, data-pointer) entries plus the
// leaf's position in the sibling chain.
type LeafPage struct {
	Keys     []uint64
	DataPtrs []uint32
	PrevLeaf uint32
	NextLeaf uint32
}

const leafHeaderSize = 10 // magic(8) + key_count(2)

func (p *LeafPage) Encode(order int) []byte {
	b := make([]byte, Size)
	copy(b[0:8], leafMagic[:])
	bx.PutU16At(b, 8, uint16(len(p.Keys)))

	maxKeys := MaxKeys(order)
	off := leafHeaderSize
	for i := 0; i < maxKeys; i++ {
		var v uint64
		if i < len(p.Keys) {
			v = p.Keys[i]
		}
		bx.PutU64At(b, off, v)
		off += 8
	}
	for i := 0; i < maxKeys; i++ {
		var v uint32
		if i < len(p.DataPtrs) {
			v = p.DataPtrs[i]
		}
		bx.PutU32At(b, off, v)
		off += 4
	}
	bx.PutU32At(b, off, p.PrevLeaf)
	off += 4
	bx.PutU32At(b, off, p.NextLeaf)
	return b
}

func DecodeLeafPage(b []byte, order int) (*LeafPage, error) {
	if err := checkLen(b); err != nil {
		return nil, err
	}
	if err := checkMagic(b, leafMagic); err != nil {
		return nil, err
	}
	keyCount := int(bx.U16At(b, 8))
	maxKeys := MaxKeys(order)
	if keyCount > maxKeys {
		return nil, ErrBadLength
	}

	off := leafHeaderSize
	keys := make([]uint64, keyCount)
	for i := 0; i < keyCount; i++ {
		keys[i] = bx.U64At(b, off+i*8)
	}
	off += maxKeys * 8
	dataPtrs := make([]uint32, keyCount)
	for i := 0; i < keyCount; i++ {
		dataPtrs[i] = bx.U32At(b, off+i*4)
	}
	off += maxKeys * 4
	prev := bx.U32At(b, off)
	next := bx.U32At(b, off+4)

	return &LeafPage{Keys: keys, DataPtrs: dataPtrs, PrevLeaf: prev, NextLeaf: next}, nil
}

// OverflowPage is one link in a chain storing an oversize value.
// NextOverflowPageno == 0 marks the end of the chain.
type OverflowPage struct {
	NextOverflowPageno uint32
	Payload            []byte
}

const overflowHeaderSize = 12 // magic(8) + next(4)

// OverflowPayloadSize is the number of payload bytes a single overflow page
// can hold.
const OverflowPayloadSize = Size - overflowHeaderSize

func (p *OverflowPage) Encode() []byte {
	b := make([]byte, Size)
	copy(b[0:8], overflowMagic[:])
	bx.PutU32At(b, 8, p.NextOverflowPageno)
	copy(b[overflowHeaderSize:], p.Payload)
	return b
}

func DecodeOverflowPage(b []byte) (*OverflowPage, error) {
	if err := checkLen(b); err != nil {
		return nil, err
	}
	if err := checkMagic(b, overflowMagic); err != nil {
		return nil, err
	}
	payload := make([]byte, OverflowPayloadSize)
	copy(payload, b[overflowHeaderSize:])
	return &OverflowPage{
		NextOverflowPageno: bx.U32At(b, 8),
		Payload:            payload,
	}, nil
}
