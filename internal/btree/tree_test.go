package btree

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/bptreekv/internal/pager"
)

func openTestTree(t *testing.T, order int) *Tree {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.kv")
	p, err := pager.Open(path, order, 32)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	tr, err := New(p)
	require.NoError(t, err)
	return tr
}

func keyFor(n int) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	return b[:]
}

func TestSingleInsertAndLookup(t *testing.T) {
	tr := openTestTree(t, 5)

	require.NoError(t, tr.Put(keyFor(42), []byte("hello")))

	v, ok, err := tr.Get(keyFor(42))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), v)

	ok, err = tr.Contains(keyFor(7))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOverwriteReplacesValue(t *testing.T) {
	tr := openTestTree(t, 5)

	require.NoError(t, tr.Put(keyFor(1), []byte("a")))
	require.NoError(t, tr.Put(keyFor(1), []byte("bbbb")))

	v, ok, err := tr.Get(keyFor(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("bbbb"), v)
}

func TestDeleteRemovesKey(t *testing.T) {
	tr := openTestTree(t, 5)

	require.NoError(t, tr.Put(keyFor(1), []byte("a")))
	require.NoError(t, tr.Delete(keyFor(1)))

	ok, err := tr.Contains(keyFor(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteAbsentKeyIsNoop(t *testing.T) {
	tr := openTestTree(t, 5)
	require.NoError(t, tr.Delete(keyFor(999)))
}

func TestScanOrdersAscending(t *testing.T) {
	tr := openTestTree(t, 5)

	values := []int{50, 10, 40, 20, 30, 5, 45, 25}
	for _, n := range values {
		require.NoError(t, tr.Put(keyFor(n), []byte(fmt.Sprintf("v%d", n))))
	}

	pairs, err := tr.Scan()
	require.NoError(t, err)
	require.Len(t, pairs, len(values))

	for i := 1; i < len(pairs); i++ {
		assert.Less(t, pairs[i-1].Key, pairs[i].Key)
	}
}

func TestRandomizedSweepAcrossOrders(t *testing.T) {
	for order := 3; order <= 19; order++ {
		order := order
		t.Run(fmt.Sprintf("order=%d", order), func(t *testing.T) {
			tr := openTestTree(t, order)

			const n = 200
			present := make(map[int][]byte)

			seed := uint32(order*7919 + 1)
			next := func() uint32 {
				seed = seed*1664525 + 1013904223
				return seed
			}

			for i := 0; i < n; i++ {
				k := int(next() % 500)
				v := []byte(fmt.Sprintf("val-%d-%d", order, k))
				require.NoError(t, tr.Put(keyFor(k), v))
				present[k] = v
			}

			for k, v := range present {
				got, ok, err := tr.Get(keyFor(k))
				require.NoError(t, err)
				require.True(t, ok, "key %d should be present", k)
				assert.Equal(t, v, got)
			}

			pairs, err := tr.Scan()
			require.NoError(t, err)
			assert.Len(t, pairs, len(present))
			for i := 1; i < len(pairs); i++ {
				assert.Less(t, pairs[i-1].Key, pairs[i].Key)
			}

			deleteCount := 0
			for k := range present {
				require.NoError(t, tr.Delete(keyFor(k)))
				deleteCount++
				if deleteCount > len(present)/2 {
					break
				}
			}

			remaining, err := tr.Scan()
			require.NoError(t, err)
			for i := 1; i < len(remaining); i++ {
				assert.Less(t, remaining[i-1].Key, remaining[i].Key)
			}
		})
	}
}

func TestDeleteAllLeavesEmptyTree(t *testing.T) {
	tr := openTestTree(t, 4)

	for i := 0; i < 50; i++ {
		require.NoError(t, tr.Put(keyFor(i), []byte("x")))
	}
	for i := 0; i < 50; i++ {
		require.NoError(t, tr.Delete(keyFor(i)))
	}

	pairs, err := tr.Scan()
	require.NoError(t, err)
	assert.Empty(t, pairs)

	for i := 0; i < 50; i++ {
		ok, err := tr.Contains(keyFor(i))
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestLargeValueRoundTrip(t *testing.T) {
	tr := openTestTree(t, 5)

	big := make([]byte, 10000)
	for i := range big {
		big[i] = byte(i % 251)
	}
	require.NoError(t, tr.Put(keyFor(1), big))

	v, ok, err := tr.Get(keyFor(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big, v)
}

func TestInvalidOrderRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.kv")
	p, err := pager.Open(path, 2, 32)
	require.NoError(t, err)
	defer p.Close()

	_, err = New(p)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}
