package btree

import (
	"github.com/tuannm99/bptreekv/internal/kvutil"
	"github.com/tuannm99/bptreekv/internal/page"
)

func cloneU64(xs []uint64) []uint64 {
	out := make([]uint64, len(xs))
	copy(out, xs)
	return out
}

func cloneU32(xs []uint32) []uint32 {
	out := make([]uint32, len(xs))
	copy(out, xs)
	return out
}

// splitLeaf halves an overfull leaf. The right half keeps its smallest key
// as the separator copied up to the parent, per the usual B+ tree leaf
// split (unlike an interior split, the separator is not removed from the
// leaf it came from).
func (t *Tree) splitLeaf(n *node) (splitResult, error) {
	lf := n.leaf
	leftKeys, rightKeys := kvutil.SplitList(lf.Keys)
	leftPtrs, rightPtrs := kvutil.SplitList(lf.DataPtrs)

	rightPageno, err := t.pager.AllocPageLocked()
	if err != nil {
		return splitResult{}, err
	}

	right := &node{
		pageno: rightPageno,
		kind:   leafKind,
		leaf: &page.LeafPage{
			Keys:     cloneU64(rightKeys),
			DataPtrs: cloneU32(rightPtrs),
			PrevLeaf: n.pageno,
			NextLeaf: lf.NextLeaf,
		},
	}

	if lf.NextLeaf != 0 {
		oldNext, err := loadNode(t.pager, lf.NextLeaf)
		if err != nil {
			return splitResult{}, err
		}
		oldNext.leaf.PrevLeaf = rightPageno
		if err := oldNext.save(t.pager); err != nil {
			return splitResult{}, err
		}
	}

	lf.Keys = cloneU64(leftKeys)
	lf.DataPtrs = cloneU32(leftPtrs)
	lf.NextLeaf = rightPageno

	if err := n.save(t.pager); err != nil {
		return splitResult{}, err
	}
	if err := right.save(t.pager); err != nil {
		return splitResult{}, err
	}

	return splitResult{did: true, median: right.leaf.Keys[0], rightPageno: rightPageno}, nil
}

// splitInterior halves an overfull interior node. Unlike a leaf split, the
// median key is removed from both halves and moved up to the parent: it
// belongs to neither child's key range, only to the separator slot between
// them.
func (t *Tree) splitInterior(n *node) (splitResult, error) {
	ip := n.interior
	count := len(ip.Keys)
	medianIdx := (count - 1) / 2
	median := ip.Keys[medianIdx]

	leftKeys := cloneU64(ip.Keys[:medianIdx])
	rightKeys := cloneU64(ip.Keys[medianIdx+1:])
	leftChildren := cloneU32(ip.Children[:medianIdx+1])
	rightChildren := cloneU32(ip.Children[medianIdx+1:])

	rightPageno, err := t.pager.AllocPageLocked()
	if err != nil {
		return splitResult{}, err
	}
	right := &node{
		pageno:   rightPageno,
		kind:     interiorKind,
		interior: &page.InteriorPage{Keys: rightKeys, Children: rightChildren},
	}

	ip.Keys = leftKeys
	ip.Children = leftChildren

	if err := n.save(t.pager); err != nil {
		return splitResult{}, err
	}
	if err := right.save(t.pager); err != nil {
		return splitResult{}, err
	}

	return splitResult{did: true, median: median, rightPageno: rightPageno}, nil
}
