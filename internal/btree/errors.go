package btree

import "errors"

// ErrInvalidOrder is returned when constructing a tree with an order < 3.
var ErrInvalidOrder = errors.New("btree: order must be >= 3")
