package kvutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryLessComparesKeyOnly(t *testing.T) {
	a := Entry[uint64, string]{Key: 1, Value: "a"}
	b := Entry[uint64, string]{Key: 2, Value: "z"}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestEntryEqualIgnoresValue(t *testing.T) {
	a := Entry[uint64, string]{Key: 5, Value: "a"}
	b := Entry[uint64, string]{Key: 5, Value: "different"}
	assert.True(t, a.Equal(b))
}

func TestSplitListEven(t *testing.T) {
	left, right := SplitList([]int{1, 2, 3, 4})
	assert.Equal(t, []int{1, 2}, left)
	assert.Equal(t, []int{3, 4}, right)
}

func TestSplitListOddMedianGoesRight(t *testing.T) {
	left, right := SplitList([]int{1, 2, 3, 4, 5})
	assert.Equal(t, []int{1, 2}, left)
	assert.Equal(t, []int{3, 4, 5}, right)
}

func TestLengthPrefixRoundTrip(t *testing.T) {
	data := []byte("hello, world")
	framed := LengthPrefix(data)
	assert.Len(t, framed, 4+len(data))
	assert.Equal(t, data, framed[4:])
}

func TestKeySlicePadsShortKeys(t *testing.T) {
	assert.Equal(t, uint64(0), KeySlice(nil))
	assert.Greater(t, KeySlice([]byte("a")), uint64(0))
}

func TestKeySliceOrdersLikeBytes(t *testing.T) {
	assert.Less(t, KeySlice([]byte("aaaaaaaa")), KeySlice([]byte("aaaaaaab")))
}
