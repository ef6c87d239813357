package btree

// Pair is a single ordered key/value result from Scan. Key is the codec's
// 8-byte slice, not the original caller-supplied key, since the tree keeps
// no record of the pre-codec bytes.
type Pair struct {
	Key   uint64
	Value []byte
}

// Scan returns every stored pair in ascending key order, by descending to
// the leftmost leaf and then following leaf sibling pointers. The whole
// walk runs under one Pager.ReadAccess call so it sees a consistent tree
// even if a writer is waiting.
func (t *Tree) Scan() ([]Pair, error) {
	var out []Pair
	err := t.pager.ReadAccess(func() error {
		root := t.pager.RootPagenoLocked()
		if root == 0 {
			return nil
		}

		pageno := root
		for {
			n, err := loadNode(t.pager, pageno)
			if err != nil {
				return err
			}
			if n.kind == leafKind {
				break
			}
			pageno = n.interior.Children[0]
		}

		for pageno != 0 {
			n, err := loadNode(t.pager, pageno)
			if err != nil {
				return err
			}
			for i, key := range n.leaf.Keys {
				v, err := t.loadValue(n.leaf.DataPtrs[i])
				if err != nil {
					return err
				}
				out = append(out, Pair{Key: key, Value: v})
			}
			pageno = n.leaf.NextLeaf
		}
		return nil
	})
	return out, err
}
