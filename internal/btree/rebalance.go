package btree

// rebalanceChild repairs an underfull child at index i of parent, trying
// each remedy in a fixed order: borrowing a key from the right sibling,
// then the left sibling, then merging with the right sibling, then the
// left sibling. The first applicable remedy wins.
func (t *Tree) rebalanceChild(parent *node, i int) error {
	ip := parent.interior
	child, err := loadNode(t.pager, ip.Children[i])
	if err != nil {
		return err
	}

	if i+1 < len(ip.Children) {
		rightSib, err := loadNode(t.pager, ip.Children[i+1])
		if err != nil {
			return err
		}
		if !rightSib.isMinimal(t.order) {
			return t.borrowFromRight(parent, i, child, rightSib)
		}
	}
	if i > 0 {
		leftSib, err := loadNode(t.pager, ip.Children[i-1])
		if err != nil {
			return err
		}
		if !leftSib.isMinimal(t.order) {
			return t.borrowFromLeft(parent, i, child, leftSib)
		}
	}
	if i+1 < len(ip.Children) {
		rightSib, err := loadNode(t.pager, ip.Children[i+1])
		if err != nil {
			return err
		}
		return t.mergeWithRight(parent, i, child, rightSib)
	}
	leftSib, err := loadNode(t.pager, ip.Children[i-1])
	if err != nil {
		return err
	}
	return t.mergeWithLeft(parent, i, child, leftSib)
}

func (t *Tree) borrowFromRight(parent *node, i int, child, rightSib *node) error {
	ip := parent.interior

	if child.kind == leafKind {
		lf, rf := child.leaf, rightSib.leaf
		lf.Keys = append(lf.Keys, rf.Keys[0])
		lf.DataPtrs = append(lf.DataPtrs, rf.DataPtrs[0])
		rf.Keys = removeUint64(rf.Keys, 0)
		rf.DataPtrs = removeUint32(rf.DataPtrs, 0)
		ip.Keys[i] = rf.Keys[0]
	} else {
		ci, ri := child.interior, rightSib.interior
		ci.Keys = append(ci.Keys, ip.Keys[i])
		ci.Children = append(ci.Children, ri.Children[0])
		ip.Keys[i] = ri.Keys[0]
		ri.Keys = removeUint64(ri.Keys, 0)
		ri.Children = removeUint32(ri.Children, 0)
	}

	if err := child.save(t.pager); err != nil {
		return err
	}
	if err := rightSib.save(t.pager); err != nil {
		return err
	}
	return parent.save(t.pager)
}

func (t *Tree) borrowFromLeft(parent *node, i int, child, leftSib *node) error {
	ip := parent.interior

	if child.kind == leafKind {
		lf, rf := leftSib.leaf, child.leaf
		last := len(lf.Keys) - 1
		rf.Keys = insertUint64(rf.Keys, 0, lf.Keys[last])
		rf.DataPtrs = insertUint32(rf.DataPtrs, 0, lf.DataPtrs[last])
		lf.Keys = removeUint64(lf.Keys, last)
		lf.DataPtrs = removeUint32(lf.DataPtrs, last)
		ip.Keys[i-1] = rf.Keys[0]
	} else {
		li, ci := leftSib.interior, child.interior
		lastKey := len(li.Keys) - 1
		lastChild := len(li.Children) - 1
		ci.Keys = insertUint64(ci.Keys, 0, ip.Keys[i-1])
		ci.Children = insertUint32(ci.Children, 0, li.Children[lastChild])
		ip.Keys[i-1] = li.Keys[lastKey]
		li.Keys = removeUint64(li.Keys, lastKey)
		li.Children = removeUint32(li.Children, lastChild)
	}

	if err := child.save(t.pager); err != nil {
		return err
	}
	if err := leftSib.save(t.pager); err != nil {
		return err
	}
	return parent.save(t.pager)
}

func (t *Tree) mergeWithRight(parent *node, i int, child, rightSib *node) error {
	ip := parent.interior

	if child.kind == leafKind {
		lf, rf := child.leaf, rightSib.leaf
		lf.Keys = append(lf.Keys, rf.Keys...)
		lf.DataPtrs = append(lf.DataPtrs, rf.DataPtrs...)
		lf.NextLeaf = rf.NextLeaf
		if rf.NextLeaf != 0 {
			next, err := loadNode(t.pager, rf.NextLeaf)
			if err != nil {
				return err
			}
			next.leaf.PrevLeaf = child.pageno
			if err := next.save(t.pager); err != nil {
				return err
			}
		}
	} else {
		ci, ri := child.interior, rightSib.interior
		ci.Keys = append(ci.Keys, ip.Keys[i])
		ci.Keys = append(ci.Keys, ri.Keys...)
		ci.Children = append(ci.Children, ri.Children...)
	}

	ip.Keys = removeUint64(ip.Keys, i)
	ip.Children = removeUint32(ip.Children, i+1)

	if err := child.save(t.pager); err != nil {
		return err
	}
	if err := t.pager.FreePageLocked(rightSib.pageno); err != nil {
		return err
	}
	return parent.save(t.pager)
}

func (t *Tree) mergeWithLeft(parent *node, i int, child, leftSib *node) error {
	ip := parent.interior

	if child.kind == leafKind {
		lf, rf := leftSib.leaf, child.leaf
		lf.Keys = append(lf.Keys, rf.Keys...)
		lf.DataPtrs = append(lf.DataPtrs, rf.DataPtrs...)
		lf.NextLeaf = rf.NextLeaf
		if rf.NextLeaf != 0 {
			next, err := loadNode(t.pager, rf.NextLeaf)
			if err != nil {
				return err
			}
			next.leaf.PrevLeaf = leftSib.pageno
			if err := next.save(t.pager); err != nil {
				return err
			}
		}
	} else {
		li, ci := leftSib.interior, child.interior
		li.Keys = append(li.Keys, ip.Keys[i-1])
		li.Keys = append(li.Keys, ci.Keys...)
		li.Children = append(li.Children, ci.Children...)
	}

	ip.Keys = removeUint64(ip.Keys, i-1)
	ip.Children = removeUint32(ip.Children, i)

	if err := leftSib.save(t.pager); err != nil {
		return err
	}
	if err := t.pager.FreePageLocked(child.pageno); err != nil {
		return err
	}
	return parent.save(t.pager)
}
