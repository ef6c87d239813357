package btree

import (
	"github.com/tuannm99/bptreekv/internal/page"
	"github.com/tuannm99/bptreekv/internal/pager"
)

type kind int

const (
	leafKind kind = iota
	interiorKind
)

// node is a decoded, in-memory view over a cached page. The authoritative
// state is always the on-disk page; a node is transient and carries no
// parent or sibling object references, only page numbers, so descent keeps
// the traversal path on the call stack instead of in the node itself.
type node struct {
	pageno   uint32
	kind     kind
	leaf     *page.LeafPage
	interior *page.InteriorPage
}

// loadNode and save assume the caller already holds the pager's lock via
// WriteAccess or ReadAccess; they call the *Locked pager methods directly
// so a multi-page tree operation never releases the lock mid-traversal.
func loadNode(p *pager.Pager, pageno uint32) (*node, error) {
	raw, err := p.ReadPageLocked(pageno)
	if err != nil {
		return nil, err
	}
	return decodeNode(pageno, raw, p.Order())
}

func decodeNode(pageno uint32, raw []byte, order int) (*node, error) {
	if len(raw) == 0 {
		return nil, page.ErrBadLength
	}
	switch raw[0] {
	case 0x01:
		ip, err := page.DecodeInteriorPage(raw, order)
		if err != nil {
			return nil, err
		}
		return &node{pageno: pageno, kind: interiorKind, interior: ip}, nil
	case 0x02:
		lp, err := page.DecodeLeafPage(raw, order)
		if err != nil {
			return nil, err
		}
		return &node{pageno: pageno, kind: leafKind, leaf: lp}, nil
	default:
		return nil, page.ErrBadMagic
	}
}

func (n *node) save(p *pager.Pager) error {
	switch n.kind {
	case leafKind:
		return p.WritePageLocked(n.pageno, n.leaf.Encode(p.Order()))
	default:
		return p.WritePageLocked(n.pageno, n.interior.Encode(p.Order()))
	}
}

func (n *node) numKeys() int {
	if n.kind == leafKind {
		return len(n.leaf.Keys)
	}
	return len(n.interior.Keys)
}

// isMinimal reports whether n cannot lend a key to a sibling. Interior nodes
// use MaxKeys/2 (rounded down) as their floor, so merging an underfull
// interior node with a minimal sibling and their separator fits in one page.
func (n *node) isMinimal(order int) bool {
	if n.kind == interiorKind {
		return n.numKeys() <= page.MaxKeys(order)/2
	}
	return n.numKeys() <= page.MinKeys(order)
}

func newEmptyLeaf() *node {
	return &node{kind: leafKind, leaf: &page.LeafPage{}}
}
