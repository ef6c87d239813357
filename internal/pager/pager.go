// Package pager implements the page-addressable file abstraction: a
// free-page list threaded through the file itself, an LRU+graveyard page
// cache, and overflow-page chains for values larger than one page.
package pager

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tuannm99/bptreekv/internal/bx"
	"github.com/tuannm99/bptreekv/internal/cache"
	"github.com/tuannm99/bptreekv/internal/kvutil"
	"github.com/tuannm99/bptreekv/internal/page"
	"github.com/tuannm99/bptreekv/internal/rwlock"
)

// Pager owns the backing file, the zero page, and the page cache. It is the
// sole persistence backend for the B+ tree engine.
type Pager struct {
	file  *os.File
	order int

	rw    rwlock.RWLock
	cache *cache.PageCache

	// mirrors the on-disk zero page; mutated only under the write lock.
	rootPageno            uint32
	nextFreePageno        uint32
	nextOverflowPageno    uint32
	currentOverflowPageno uint32
	currentOverflowOffset uint16
}

// Open opens or creates the database file at path. An empty file is
// initialized with a fresh zero page; an existing file has its zero page
// read back and validated.
func Open(path string, order, cacheMaxSize int) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}

	p := &Pager{
		file:  f,
		order: order,
		cache: cache.New(cacheMaxSize),
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pager: stat %s: %w", path, err)
	}

	if info.Size() == 0 {
		slog.Debug("pager.open.init", "path", path)
		if err := p.writeZeroPageLocked(); err != nil {
			f.Close()
			return nil, err
		}
		return p, nil
	}

	zp, err := p.readZeroPageLocked()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}
	p.rootPageno = zp.RootPageno
	p.nextFreePageno = zp.NextFreePageno
	p.nextOverflowPageno = zp.NextOverflowPageno
	p.currentOverflowPageno = zp.CurrentOverflowPageno
	p.currentOverflowOffset = zp.CurrentOverflowOffset
	slog.Debug("pager.open.loaded", "path", path, "root", p.rootPageno, "nextFree", p.nextFreePageno)
	return p, nil
}

// Order returns the fan-out order this pager's file was opened with.
func (p *Pager) Order() int { return p.order }

// WriteAccess runs fn with the writer lock held for fn's entire duration.
// A caller whose operation spans several Pager calls that must behave as
// one atomic step — a B+ tree insert or delete descending through pages,
// splitting, and rebalancing — should wrap the whole sequence in a single
// WriteAccess call and use the *Locked methods below inside fn, instead of
// letting each Pager call acquire and release the lock on its own.
func (p *Pager) WriteAccess(fn func() error) error {
	return p.rw.WriteAccess(fn)
}

// ReadAccess runs fn with the reader lock held for fn's entire duration.
func (p *Pager) ReadAccess(fn func() error) error {
	return p.rw.ReadAccess(fn)
}

// ReadPageLocked is ReadPage without acquiring the lock; the caller must
// already hold it via WriteAccess or ReadAccess.
func (p *Pager) ReadPageLocked(pageno uint32) ([]byte, error) {
	return p.readPageLocked(pageno)
}

// WritePageLocked is WritePage without acquiring the lock; the caller must
// already hold it via WriteAccess.
func (p *Pager) WritePageLocked(pageno uint32, data []byte) error {
	return p.writePageLocked(pageno, data)
}

// AllocPageLocked is AllocPage without acquiring the lock; the caller must
// already hold it via WriteAccess.
func (p *Pager) AllocPageLocked() (uint32, error) {
	return p.allocPageLocked()
}

// FreePageLocked is FreePage without acquiring the lock; the caller must
// already hold it via WriteAccess.
func (p *Pager) FreePageLocked(pageno uint32) error {
	return p.freePageLocked(pageno)
}

// RootPagenoLocked is RootPageno without acquiring the lock; the caller
// must already hold it via WriteAccess or ReadAccess.
func (p *Pager) RootPagenoLocked() uint32 {
	return p.rootPageno
}

// SetRootPagenoLocked is SetRootPageno without acquiring the lock; the
// caller must already hold it via WriteAccess.
func (p *Pager) SetRootPagenoLocked(pageno uint32) error {
	p.rootPageno = pageno
	slog.Debug("pager.root.committed", "root", pageno)
	return p.writeZeroPageLocked()
}

// Close flushes and releases the file.
func (p *Pager) Close() error {
	return p.rw.WriteAccess(func() error {
		if err := durableFlush(p.file); err != nil {
			return fmt.Errorf("pager: flush on close: %w", err)
		}
		return p.file.Close()
	})
}

// RootPageno returns the current root page number.
func (p *Pager) RootPageno() uint32 {
	var root uint32
	p.rw.ReadAccess(func() error {
		root = p.rootPageno
		return nil
	})
	return root
}

// SetRootPageno commits a new root page number to the zero page. The tree
// commits its root replacements (split-produced new roots and collapse)
// through SetRootPagenoLocked.
func (p *Pager) SetRootPageno(pageno uint32) error {
	return p.rw.WriteAccess(func() error {
		p.rootPageno = pageno
		slog.Debug("pager.root.committed", "root", pageno)
		return p.writeZeroPageLocked()
	})
}

// Stats returns the page cache's running hit/miss/resurrection counters.
func (p *Pager) Stats() (hits, misses, resurrections uint64) {
	return p.cache.Stats()
}

func (p *Pager) pageCount() (uint32, error) {
	info, err := p.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("pager: stat: %w", err)
	}
	return uint32(info.Size() / page.Size), nil
}

func (p *Pager) seekPage(pageno uint32) int64 { return int64(pageno) * page.Size }

func (p *Pager) readZeroPageLocked() (*page.ZeroPage, error) {
	buf := make([]byte, page.Size)
	if _, err := p.file.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("pager: read zero page: %w", err)
	}
	zp, err := page.DecodeZeroPage(buf)
	if err != nil {
		slog.Error("pager.zeropage.decode_failed", "err", err)
		return nil, err
	}
	return zp, nil
}

func (p *Pager) writeZeroPageLocked() error {
	zp := &page.ZeroPage{
		RootPageno:            p.rootPageno,
		NextFreePageno:        p.nextFreePageno,
		NextOverflowPageno:    p.nextOverflowPageno,
		CurrentOverflowPageno: p.currentOverflowPageno,
		CurrentOverflowOffset: p.currentOverflowOffset,
	}
	if _, err := p.file.WriteAt(zp.Encode(), 0); err != nil {
		return fmt.Errorf("pager: write zero page: %w", err)
	}
	if err := durableFlush(p.file); err != nil {
		return fmt.Errorf("pager: flush zero page: %w", err)
	}
	p.cache.Delete(0)
	return nil
}

// ReadPage returns the raw bytes for pageno, populating the cache on miss.
func (p *Pager) ReadPage(pageno uint32) ([]byte, error) {
	var out []byte
	err := p.rw.ReadAccess(func() error {
		data, err := p.readPageLocked(pageno)
		if err != nil {
			return err
		}
		out = data
		return nil
	})
	return out, err
}

func (p *Pager) readPageLocked(pageno uint32) ([]byte, error) {
	if data, ok := p.cache.Get(pageno); ok {
		return data, nil
	}

	count, err := p.pageCount()
	if err != nil {
		return nil, err
	}
	if pageno >= count {
		return nil, ErrOutOfBounds
	}

	buf := make([]byte, page.Size)
	if _, err := p.file.ReadAt(buf, p.seekPage(pageno)); err != nil {
		return nil, fmt.Errorf("pager: read page %d: %w", pageno, err)
	}
	p.cache.Set(pageno, buf)
	return buf, nil
}

// WritePage writes exactly PageSize bytes to pageno and invalidates its
// cache entry.
func (p *Pager) WritePage(pageno uint32, data []byte) error {
	return p.rw.WriteAccess(func() error {
		return p.writePageLocked(pageno, data)
	})
}

func (p *Pager) writePageLocked(pageno uint32, data []byte) error {
	if len(data) != page.Size {
		return page.ErrBadLength
	}
	count, err := p.pageCount()
	if err != nil {
		return err
	}
	if pageno >= count {
		return ErrOutOfBounds
	}
	if _, err := p.file.WriteAt(data, p.seekPage(pageno)); err != nil {
		return fmt.Errorf("pager: write page %d: %w", pageno, err)
	}
	if err := durableFlush(p.file); err != nil {
		return fmt.Errorf("pager: flush page %d: %w", pageno, err)
	}
	p.cache.Delete(pageno)
	return nil
}

// AllocPage returns a fresh page number, reusing the free list's head if
// non-empty, otherwise extending the file by one zero-filled page.
func (p *Pager) AllocPage() (uint32, error) {
	var pageno uint32
	err := p.rw.WriteAccess(func() error {
		n, err := p.allocPageLocked()
		if err != nil {
			return err
		}
		pageno = n
		return nil
	})
	return pageno, err
}

func (p *Pager) allocPageLocked() (uint32, error) {
	if p.nextFreePageno != 0 {
		freePageno := p.nextFreePageno
		buf, err := p.readPageLocked(freePageno)
		if err != nil {
			return 0, err
		}
		fp, err := page.DecodeFreePage(buf)
		if err != nil {
			slog.Error("pager.freelist.corrupt", "pageno", freePageno, "err", err)
			return 0, fmt.Errorf("%w: page %d: %v", ErrBadFreeList, freePageno, err)
		}
		p.nextFreePageno = fp.NextFreePageno
		if err := p.writeZeroPageLocked(); err != nil {
			return 0, err
		}
		slog.Debug("pager.alloc.reused", "pageno", freePageno, "newHead", p.nextFreePageno)
		return freePageno, nil
	}
	return p.allocFreshPageLocked()
}

func (p *Pager) allocFreshPageLocked() (uint32, error) {
	info, err := p.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("pager: stat: %w", err)
	}
	size := info.Size()
	if rem := size % page.Size; rem != 0 {
		size += page.Size - rem
	}
	if err := p.file.Truncate(size + page.Size); err != nil {
		return 0, fmt.Errorf("pager: extend file: %w", err)
	}
	pageno := uint32(size / page.Size)
	slog.Debug("pager.alloc.fresh", "pageno", pageno)
	return pageno, nil
}

// FreePage prepends pageno to the free list, invalidating its cache entry
// first.
func (p *Pager) FreePage(pageno uint32) error {
	return p.rw.WriteAccess(func() error {
		return p.freePageLocked(pageno)
	})
}

func (p *Pager) freePageLocked(pageno uint32) error {
	p.cache.Delete(pageno)

	fp := &page.FreePage{NextFreePageno: p.nextFreePageno}
	if err := p.writePageLocked(pageno, fp.Encode()); err != nil {
		return err
	}
	p.nextFreePageno = pageno
	if err := p.writeZeroPageLocked(); err != nil {
		return err
	}
	slog.Debug("pager.free", "pageno", pageno, "newHead", pageno)
	return nil
}

// WriteOverflow chains as many overflow pages as needed to store data,
// returning the entry point for a later ReadOverflow call. The first page
// always begins at offset 0, so the 4-byte length prefix it carries never
// crosses a page boundary (Design Note (b)).
func (p *Pager) WriteOverflow(data []byte) (pageno uint32, offset uint16, err error) {
	err = p.rw.WriteAccess(func() error {
		var innerErr error
		pageno, offset, innerErr = p.writeOverflowLocked(data)
		return innerErr
	})
	return pageno, offset, err
}

// WriteOverflowLocked is WriteOverflow without acquiring the lock; the
// caller must already hold it via WriteAccess.
func (p *Pager) WriteOverflowLocked(data []byte) (pageno uint32, offset uint16, err error) {
	return p.writeOverflowLocked(data)
}

func (p *Pager) writeOverflowLocked(data []byte) (pageno uint32, offset uint16, err error) {
	framed := kvutil.LengthPrefix(data)
	payloadMax := page.OverflowPayloadSize

	var firstPageno uint32
	var prevPageno uint32
	var prevPage *page.OverflowPage
	havePrev := false

	remaining := framed
	for {
		pn, err := p.allocPageLocked()
		if err != nil {
			return 0, 0, err
		}

		chunkLen := len(remaining)
		if chunkLen > payloadMax {
			chunkLen = payloadMax
		}
		payload := make([]byte, payloadMax)
		copy(payload, remaining[:chunkLen])
		remaining = remaining[chunkLen:]

		op := &page.OverflowPage{NextOverflowPageno: 0, Payload: payload}

		if havePrev {
			prevPage.NextOverflowPageno = pn
			if err := p.writePageLocked(prevPageno, prevPage.Encode()); err != nil {
				return 0, 0, err
			}
		} else {
			firstPageno = pn
		}

		prevPageno, prevPage, havePrev = pn, op, true

		if len(remaining) == 0 {
			break
		}
	}

	if err := p.writePageLocked(prevPageno, prevPage.Encode()); err != nil {
		return 0, 0, err
	}
	slog.Debug("pager.overflow.write", "firstPage", firstPageno, "len", len(data))
	return firstPageno, 0, nil
}

// FreeOverflowChain releases every page in the overflow chain beginning at
// pageno. Called when the leaf entry that owns the chain is removed.
func (p *Pager) FreeOverflowChain(pageno uint32) error {
	return p.rw.WriteAccess(func() error {
		return p.freeOverflowChainLocked(pageno)
	})
}

// FreeOverflowChainLocked is FreeOverflowChain without acquiring the lock;
// the caller must already hold it via WriteAccess.
func (p *Pager) FreeOverflowChainLocked(pageno uint32) error {
	return p.freeOverflowChainLocked(pageno)
}

func (p *Pager) freeOverflowChainLocked(pageno uint32) error {
	for pageno != 0 {
		buf, err := p.readPageLocked(pageno)
		if err != nil {
			return err
		}
		op, err := page.DecodeOverflowPage(buf)
		if err != nil {
			return err
		}
		next := op.NextOverflowPageno
		if err := p.freePageLocked(pageno); err != nil {
			return err
		}
		pageno = next
	}
	return nil
}

// ReadOverflow follows the chain from (pageno, offset), reading the 4-byte
// length prefix then that many payload bytes across pages.
func (p *Pager) ReadOverflow(pageno uint32, offset uint16) ([]byte, error) {
	var out []byte
	err := p.rw.ReadAccess(func() error {
		var innerErr error
		out, innerErr = p.readOverflowLocked(pageno, offset)
		return innerErr
	})
	return out, err
}

// ReadOverflowLocked is ReadOverflow without acquiring the lock; the
// caller must already hold it via WriteAccess or ReadAccess.
func (p *Pager) ReadOverflowLocked(pageno uint32, offset uint16) ([]byte, error) {
	return p.readOverflowLocked(pageno, offset)
}

func (p *Pager) readOverflowLocked(pageno uint32, offset uint16) ([]byte, error) {
	if int(offset) > page.OverflowPayloadSize-4 {
		return nil, fmt.Errorf("pager: overflow offset %d leaves no room for length prefix", offset)
	}

	buf, err := p.readPageLocked(pageno)
	if err != nil {
		return nil, err
	}
	op, err := page.DecodeOverflowPage(buf)
	if err != nil {
		return nil, err
	}

	if int(offset)+4 > len(op.Payload) {
		return nil, ErrChainTruncated
	}
	total := int(bx.U32(op.Payload[offset : offset+4]))
	result := make([]byte, total)

	written := 0
	avail := op.Payload[offset+4:]
	n := copy(result, avail)
	written += n

	nextPageno := op.NextOverflowPageno
	for written < total {
		if nextPageno == 0 {
			return nil, ErrChainTruncated
		}
		buf, err := p.readPageLocked(nextPageno)
		if err != nil {
			return nil, err
		}
		op, err = page.DecodeOverflowPage(buf)
		if err != nil {
			return nil, err
		}
		n := copy(result[written:], op.Payload)
		written += n
		nextPageno = op.NextOverflowPageno
	}

	return result, nil
}
