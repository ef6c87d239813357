// Package cache implements the Pager's page cache: a bounded LRU with a
// second, separately-sized LRU "victim" tier standing in for the weak-
// reference graveyard of the original design. Go has no weak references, so
// an evicted page survives resurrection only while it still fits in the
// victim tier, rather than for as long as some other holder happens to
// reference it.
package cache

import (
	"container/list"
	"sync"
)

type record struct {
	pageno uint32
	data   []byte
}

// PageCache is a pageno -> page-bytes cache with LRU eviction into a bounded
// graveyard tier. The zero value is not usable; construct with New.
type PageCache struct {
	mu sync.Mutex

	maxsize   int
	lru       *list.List
	lruIndex  map[uint32]*list.Element
	grave     *list.List
	graveSize int
	graveIdx  map[uint32]*list.Element

	hits          uint64
	misses        uint64
	resurrections uint64
}

// New builds a page cache holding at most maxsize live entries, with a
// graveyard tier of the same size.
func New(maxsize int) *PageCache {
	if maxsize <= 0 {
		maxsize = 1
	}
	return &PageCache{
		maxsize:   maxsize,
		lru:       list.New(),
		lruIndex:  make(map[uint32]*list.Element),
		grave:     list.New(),
		graveSize: maxsize,
		graveIdx:  make(map[uint32]*list.Element),
	}
}

// Get returns the cached bytes for pageno, resurrecting it from the
// graveyard tier if it was recently evicted.
func (c *PageCache) Get(pageno uint32) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.lruIndex[pageno]; ok {
		c.hits++
		c.lru.MoveToFront(el)
		return el.Value.(*record).data, true
	}

	if el, ok := c.graveIdx[pageno]; ok {
		rec := el.Value.(*record)
		c.grave.Remove(el)
		delete(c.graveIdx, pageno)
		c.resurrections++
		c.pushFrontLocked(rec.pageno, rec.data)
		return rec.data, true
	}

	c.misses++
	return nil, false
}

// Set inserts or updates the cached bytes for pageno.
func (c *PageCache) Set(pageno uint32, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.graveIdx[pageno]; ok {
		c.grave.Remove(el)
		delete(c.graveIdx, pageno)
	}
	if el, ok := c.lruIndex[pageno]; ok {
		c.lru.Remove(el)
		delete(c.lruIndex, pageno)
	}
	c.pushFrontLocked(pageno, data)
}

func (c *PageCache) pushFrontLocked(pageno uint32, data []byte) {
	el := c.lru.PushFront(&record{pageno: pageno, data: data})
	c.lruIndex[pageno] = el

	for c.lru.Len() > c.maxsize {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		rec := oldest.Value.(*record)
		delete(c.lruIndex, rec.pageno)
		c.sendToGraveLocked(rec)
	}
}

func (c *PageCache) sendToGraveLocked(rec *record) {
	el := c.grave.PushFront(rec)
	c.graveIdx[rec.pageno] = el

	for c.grave.Len() > c.graveSize {
		oldest := c.grave.Back()
		c.grave.Remove(oldest)
		delete(c.graveIdx, oldest.Value.(*record).pageno)
	}
}

// Delete removes pageno from both the live and graveyard tiers.
func (c *PageCache) Delete(pageno uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.lruIndex[pageno]; ok {
		c.lru.Remove(el)
		delete(c.lruIndex, pageno)
	}
	if el, ok := c.graveIdx[pageno]; ok {
		c.grave.Remove(el)
		delete(c.graveIdx, pageno)
	}
}

// Stats returns the running hit/miss/resurrection counters.
func (c *PageCache) Stats() (hits, misses, resurrections uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.resurrections
}
