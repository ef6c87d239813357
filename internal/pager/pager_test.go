package pager

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/bptreekv/internal/page"
)

func openTestPager(t *testing.T) *Pager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.kv")
	p, err := Open(path, 5, 32)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestOpenEmptyFileInitializesZeroPage(t *testing.T) {
	p := openTestPager(t)
	assert.Equal(t, uint32(0), p.RootPageno())
}

func TestAllocThenReadWrite(t *testing.T) {
	p := openTestPager(t)

	pn, err := p.AllocPage()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), pn)

	buf := bytes.Repeat([]byte{0xFF}, page.Size)
	require.NoError(t, p.WritePage(pn, buf))

	got, err := p.ReadPage(pn)
	require.NoError(t, err)
	assert.Equal(t, buf, got)
}

func TestReadPageOutOfBounds(t *testing.T) {
	p := openTestPager(t)
	_, err := p.AllocPage()
	require.NoError(t, err)

	_, err = p.ReadPage(2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestFreeAndReuse(t *testing.T) {
	p := openTestPager(t)

	a, err := p.AllocPage()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), a)

	b, err := p.AllocPage()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), b)

	require.NoError(t, p.FreePage(b))

	c, err := p.AllocPage()
	require.NoError(t, err)
	assert.Equal(t, b, c, "freed page should be reused")

	// the free list is now empty again, so the next alloc extends the file.
	d, err := p.AllocPage()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), d)
}

func TestWritePageInvalidatesCache(t *testing.T) {
	p := openTestPager(t)
	pn, err := p.AllocPage()
	require.NoError(t, err)

	require.NoError(t, p.WritePage(pn, bytes.Repeat([]byte{1}, page.Size)))
	_, err = p.ReadPage(pn) // populate cache
	require.NoError(t, err)

	require.NoError(t, p.WritePage(pn, bytes.Repeat([]byte{2}, page.Size)))
	got, err := p.ReadPage(pn)
	require.NoError(t, err)
	assert.Equal(t, byte(2), got[0])
}

func TestSetRootPageno(t *testing.T) {
	p := openTestPager(t)
	require.NoError(t, p.SetRootPageno(7))
	assert.Equal(t, uint32(7), p.RootPageno())
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.kv")
	p, err := Open(path, 5, 32)
	require.NoError(t, err)

	_, err = p.AllocPage()
	require.NoError(t, err)
	b, err := p.AllocPage()
	require.NoError(t, err)
	require.NoError(t, p.FreePage(b))
	require.NoError(t, p.SetRootPageno(1))
	require.NoError(t, p.Close())

	reopened, err := Open(path, 5, 32)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, uint32(1), reopened.RootPageno())
	c, err := reopened.AllocPage()
	require.NoError(t, err)
	assert.Equal(t, b, c)
}

func TestOverflowRoundTrip(t *testing.T) {
	p := openTestPager(t)

	value := bytes.Repeat([]byte("overflow-me-"), 2000) // forces multiple pages
	pn, off, err := p.WriteOverflow(value)
	require.NoError(t, err)

	got, err := p.ReadOverflow(pn, off)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestOverflowSmallValueRoundTrip(t *testing.T) {
	p := openTestPager(t)

	value := []byte("small")
	pn, off, err := p.WriteOverflow(value)
	require.NoError(t, err)

	got, err := p.ReadOverflow(pn, off)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestOverflowEmptyValueRoundTrip(t *testing.T) {
	p := openTestPager(t)

	pn, off, err := p.WriteOverflow(nil)
	require.NoError(t, err)

	got, err := p.ReadOverflow(pn, off)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCacheAccounting(t *testing.T) {
	p := openTestPager(t)
	for i := 0; i < 3; i++ {
		_, err := p.AllocPage()
		require.NoError(t, err)
	}

	for pn := uint32(1); pn <= 3; pn++ {
		_, err := p.ReadPage(pn)
		require.NoError(t, err)
	}
	for pn := uint32(2); pn <= 3; pn++ {
		_, err := p.ReadPage(pn)
		require.NoError(t, err)
	}

	hits, misses, _ := p.Stats()
	assert.GreaterOrEqual(t, hits, uint64(2))
	assert.Equal(t, uint64(3), misses)
}
