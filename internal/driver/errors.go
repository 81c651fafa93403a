package driver

import "errors"

var (
	ErrStopped        = errors.New("driver stopped")
	ErrInboxFull      = errors.New("driver inbox full")
	ErrAlreadyRunning = errors.New("driver already running")
	ErrUnknownAction  = errors.New("unknown control action")
)
