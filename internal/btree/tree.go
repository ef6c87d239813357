// Package btree implements the B+ tree engine: recursive split, merge and
// borrow, separator-key discipline, leaf sibling-chain maintenance, and
// root-collapse, all backed by a Pager.
package btree

import (
	"fmt"
	"log/slog"

	"github.com/tuannm99/bptreekv/internal/kvutil"
	"github.com/tuannm99/bptreekv/internal/page"
	"github.com/tuannm99/bptreekv/internal/pager"
)

// KeyCodec maps an arbitrary key to the fixed-width 8-byte slice the page
// layout stores and compares on.
type KeyCodec func(key []byte) uint64

// Tree holds a reference to a Pager, which keeps the root page number in
// its zero page, and is the engine's sole entry point for point lookup, insertion, deletion, and
// ordered scan. Every exported method runs its whole body under one
// Pager.WriteAccess or ReadAccess call, so a multi-page operation such as
// a split or a rebalance chain never gives up the lock mid-traversal; the
// unexported helpers it calls all use the Pager's *Locked methods and
// assume that lock is already held.
type Tree struct {
	pager *pager.Pager
	order int
	codec KeyCodec
}

// New builds a tree backed by p, using p's configured fan-out order and the
// default 8-byte-prefix key codec.
func New(p *pager.Pager) (*Tree, error) {
	return NewWithCodec(p, kvutil.KeySlice)
}

// NewWithCodec builds a tree with a caller-supplied key codec, for keys that
// would otherwise collide under the default 8-byte-prefix truncation.
func NewWithCodec(p *pager.Pager, codec KeyCodec) (*Tree, error) {
	if p.Order() < 3 {
		return nil, ErrInvalidOrder
	}
	return &Tree{pager: p, order: p.Order(), codec: codec}, nil
}

// ensureRootLocked must be called with the write lock already held.
func (t *Tree) ensureRootLocked() (uint32, error) {
	root := t.pager.RootPagenoLocked()
	if root != 0 {
		return root, nil
	}
	pn, err := t.pager.AllocPageLocked()
	if err != nil {
		return 0, err
	}
	leaf := newEmptyLeaf()
	leaf.pageno = pn
	if err := leaf.save(t.pager); err != nil {
		return 0, err
	}
	if err := t.pager.SetRootPagenoLocked(pn); err != nil {
		return 0, err
	}
	slog.Debug("btree.root.created", "pageno", pn)
	return pn, nil
}

func (t *Tree) storeValue(value []byte) (uint32, error) {
	pn, _, err := t.pager.WriteOverflowLocked(value)
	return pn, err
}

func (t *Tree) loadValue(dataPtr uint32) ([]byte, error) {
	return t.pager.ReadOverflowLocked(dataPtr, 0)
}

func (t *Tree) freeValue(dataPtr uint32) error {
	return t.pager.FreeOverflowChainLocked(dataPtr)
}

// splitResult signals a child that overflowed to its parent: the new
// right-sibling page number and the median separator key the parent must
// absorb. did is false for the common case where no structural repair was
// needed.
type splitResult struct {
	did         bool
	median      uint64
	rightPageno uint32
}

// Put inserts key, replacing any existing value for it.
func (t *Tree) Put(key []byte, value []byte) error {
	return t.pager.WriteAccess(func() error {
		slog.Debug("btree.put.start", "key", key)
		root, err := t.ensureRootLocked()
		if err != nil {
			return fmt.Errorf("btree: put: %w", err)
		}

		res, err := t.insert(root, t.codec(key), value)
		if err != nil {
			return fmt.Errorf("btree: put: %w", err)
		}
		if !res.did {
			return nil
		}

		newRootPn, err := t.pager.AllocPageLocked()
		if err != nil {
			return fmt.Errorf("btree: put: new root: %w", err)
		}
		newRoot := &node{
			pageno:   newRootPn,
			kind:     interiorKind,
			interior: &page.InteriorPage{Keys: []uint64{res.median}, Children: []uint32{root, res.rightPageno}},
		}
		if err := newRoot.save(t.pager); err != nil {
			return fmt.Errorf("btree: put: write new root: %w", err)
		}
		if err := t.pager.SetRootPagenoLocked(newRootPn); err != nil {
			return fmt.Errorf("btree: put: commit new root: %w", err)
		}
		slog.Debug("btree.put.root_split", "oldRoot", root, "newRoot", newRootPn)
		return nil
	})
}

func (t *Tree) insert(pageno uint32, key uint64, value []byte) (splitResult, error) {
	n, err := loadNode(t.pager, pageno)
	if err != nil {
		return splitResult{}, err
	}

	if n.kind == leafKind {
		return t.insertLeaf(n, key, value)
	}
	return t.insertInterior(n, key, value)
}

func (t *Tree) insertLeaf(n *node, key uint64, value []byte) (splitResult, error) {
	lf := n.leaf
	i := bisectLeft(lf.Keys, key)

	newPtr, err := t.storeValue(value)
	if err != nil {
		return splitResult{}, err
	}

	if i < len(lf.Keys) && lf.Keys[i] == key {
		oldPtr := lf.DataPtrs[i]
		lf.DataPtrs[i] = newPtr
		if err := t.freeValue(oldPtr); err != nil {
			return splitResult{}, err
		}
	} else {
		lf.Keys = insertUint64(lf.Keys, i, key)
		lf.DataPtrs = insertUint32(lf.DataPtrs, i, newPtr)
	}

	if len(lf.Keys) > page.MaxKeys(t.order) {
		return t.splitLeaf(n)
	}
	if err := n.save(t.pager); err != nil {
		return splitResult{}, err
	}
	return splitResult{}, nil
}

func (t *Tree) insertInterior(n *node, key uint64, value []byte) (splitResult, error) {
	ip := n.interior
	i := bisectRight(ip.Keys, key)
	childPageno := ip.Children[i]

	res, err := t.insert(childPageno, key, value)
	if err != nil {
		return splitResult{}, err
	}
	if !res.did {
		return splitResult{}, nil
	}

	ip.Keys = insertUint64(ip.Keys, i, res.median)
	ip.Children = insertUint32(ip.Children, i+1, res.rightPageno)

	if len(ip.Keys) > page.MaxKeys(t.order) {
		return t.splitInterior(n)
	}
	if err := n.save(t.pager); err != nil {
		return splitResult{}, err
	}
	return splitResult{}, nil
}

// Get returns the value stored for key, if present.
func (t *Tree) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	var found bool
	err := t.pager.ReadAccess(func() error {
		root := t.pager.RootPagenoLocked()
		if root == 0 {
			return nil
		}
		slice := t.codec(key)

		pageno := root
		for {
			n, err := loadNode(t.pager, pageno)
			if err != nil {
				return err
			}
			if n.kind == interiorKind {
				i := bisectRight(n.interior.Keys, slice)
				pageno = n.interior.Children[i]
				continue
			}
			i := bisectLeft(n.leaf.Keys, slice)
			if i < len(n.leaf.Keys) && n.leaf.Keys[i] == slice {
				v, err := t.loadValue(n.leaf.DataPtrs[i])
				if err != nil {
					return err
				}
				value, found = v, true
			}
			return nil
		}
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// Contains reports whether key is present. It goes through Get, so the
// value's overflow chain is read as well.
func (t *Tree) Contains(key []byte) (bool, error) {
	_, ok, err := t.Get(key)
	return ok, err
}

// Delete removes key if present; deleting an absent key is a silent no-op.
func (t *Tree) Delete(key []byte) error {
	return t.pager.WriteAccess(func() error {
		root := t.pager.RootPagenoLocked()
		if root == 0 {
			return nil
		}
		slog.Debug("btree.delete.start", "key", key)

		if _, err := t.delete(root, t.codec(key)); err != nil {
			return fmt.Errorf("btree: delete: %w", err)
		}
		return t.collapseRootIfNeeded()
	})
}

func (t *Tree) collapseRootIfNeeded() error {
	root := t.pager.RootPagenoLocked()
	n, err := loadNode(t.pager, root)
	if err != nil {
		return err
	}
	if n.kind != interiorKind || len(n.interior.Keys) != 0 {
		return nil
	}
	newRoot := n.interior.Children[0]
	if err := t.pager.SetRootPagenoLocked(newRoot); err != nil {
		return err
	}
	if err := t.pager.FreePageLocked(root); err != nil {
		return err
	}
	slog.Debug("btree.root.collapsed", "oldRoot", root, "newRoot", newRoot)
	return nil
}

// delete returns whether the node at pageno is now underfull, prompting the
// caller to repair it.
func (t *Tree) delete(pageno uint32, key uint64) (underflow bool, err error) {
	n, err := loadNode(t.pager, pageno)
	if err != nil {
		return false, err
	}

	if n.kind == leafKind {
		return t.deleteFromLeaf(n, key)
	}
	return t.deleteFromInterior(n, key)
}

func (t *Tree) deleteFromLeaf(n *node, key uint64) (bool, error) {
	lf := n.leaf
	i := bisectLeft(lf.Keys, key)
	if i >= len(lf.Keys) || lf.Keys[i] != key {
		return false, nil
	}

	if err := t.freeValue(lf.DataPtrs[i]); err != nil {
		return false, err
	}
	lf.Keys = removeUint64(lf.Keys, i)
	lf.DataPtrs = removeUint32(lf.DataPtrs, i)

	if err := n.save(t.pager); err != nil {
		return false, err
	}
	return len(lf.Keys) < page.MinKeys(t.order), nil
}

func (t *Tree) deleteFromInterior(n *node, key uint64) (bool, error) {
	ip := n.interior
	i := bisectRight(ip.Keys, key)
	childPageno := ip.Children[i]

	childUnderflow, err := t.delete(childPageno, key)
	if err != nil {
		return false, err
	}
	if !childUnderflow {
		return false, nil
	}

	if err := t.rebalanceChild(n, i); err != nil {
		return false, err
	}
	return len(ip.Keys) < page.MinKeys(t.order), nil
}
