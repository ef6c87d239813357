package page

import "errors"

var (
	// ErrBadMagic is returned when a decoded page's magic tag does not
	// match the kind being decoded.
	ErrBadMagic = errors.New("page: bad magic")
	// ErrBadLength is returned when the input to a decode call is not
	// exactly PageSize bytes.
	ErrBadLength = errors.New("page: bad length")
)
