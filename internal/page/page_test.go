package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroPageRoundTrip(t *testing.T) {
	z := &ZeroPage{
		RootPageno:            7,
		NextFreePageno:        3,
		NextOverflowPageno:    9,
		CurrentOverflowPageno: 11,
		CurrentOverflowOffset: 42,
	}
	got, err := DecodeZeroPage(z.Encode())
	require.NoError(t, err)
	assert.Equal(t, z, got)
}

func TestZeroPageBadMagic(t *testing.T) {
	b := make([]byte, Size)
	_, err := DecodeZeroPage(b)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeBadLength(t *testing.T) {
	_, err := DecodeZeroPage(make([]byte, Size-1))
	assert.ErrorIs(t, err, ErrBadLength)
}

func TestFreePageRoundTrip(t *testing.T) {
	f := &FreePage{NextFreePageno: 123}
	got, err := DecodeFreePage(f.Encode())
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestFreePageTerminator(t *testing.T) {
	f := &FreePage{NextFreePageno: 0}
	got, err := DecodeFreePage(f.Encode())
	require.NoError(t, err)
	assert.Zero(t, got.NextFreePageno)
}

func TestInteriorPageRoundTrip(t *testing.T) {
	const order = 5
	p := &InteriorPage{
		Keys:     []uint64{10, 20, 30},
		Children: []uint32{1, 2, 3, 4},
	}
	got, err := DecodeInteriorPage(p.Encode(order), order)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestInteriorPageEmpty(t *testing.T) {
	const order = 5
	p := &InteriorPage{Keys: nil, Children: []uint32{1}}
	got, err := DecodeInteriorPage(p.Encode(order), order)
	require.NoError(t, err)
	assert.Empty(t, got.Keys)
	assert.Equal(t, []uint32{1}, got.Children)
}

func TestLeafPageRoundTrip(t *testing.T) {
	const order = 7
	p := &LeafPage{
		Keys:     []uint64{1, 2, 3},
		DataPtrs: []uint32{10, 20, 30},
		PrevLeaf: 4,
		NextLeaf: 6,
	}
	got, err := DecodeLeafPage(p.Encode(order), order)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestOverflowPageRoundTrip(t *testing.T) {
	payload := make([]byte, OverflowPayloadSize)
	for i := range payload {
		payload[i] = byte(i)
	}
	p := &OverflowPage{NextOverflowPageno: 99, Payload: payload}
	got, err := DecodeOverflowPage(p.Encode())
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestMinMaxKeys(t *testing.T) {
	assert.Equal(t, 2, MaxKeys(3))
	assert.Equal(t, 1, MinKeys(3))
	assert.Equal(t, 4, MaxKeys(5))
	assert.Equal(t, 2, MinKeys(5))
}

func TestEncodeAlwaysFullSize(t *testing.T) {
	z := &ZeroPage{}
	assert.Len(t, z.Encode(), Size)
	f := &FreePage{}
	assert.Len(t, f.Encode(), Size)
	i := &InteriorPage{Children: []uint32{0}}
	assert.Len(t, i.Encode(4), Size)
	l := &LeafPage{}
	assert.Len(t, l.Encode(4), Size)
	o := &OverflowPage{}
	assert.Len(t, o.Encode(), Size)
}
