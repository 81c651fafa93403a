package scores

import "github.com/pkg/errors"

var (
	ErrCorruptRecord = errors.New("corrupt best time record")
	ErrNegativeTime  = errors.New("negative survival time")
)
