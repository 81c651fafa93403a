package term

import "errors"

var ErrNoScreen = errors.New("terminal viewer has no screen")
