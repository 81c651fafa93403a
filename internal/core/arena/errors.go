package arena

import "errors"

// Construction errors. Runtime operations on an Arena never fail.
var (
	ErrInvalidConfig = errors.New("invalid arena configuration")
	ErrEmptyLayout   = errors.New("layout has no entities")
	ErrInvalidLayout = errors.New("invalid layout")
)
