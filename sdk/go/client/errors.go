package client

import "errors"

// Client-specific errors
var (
	ErrClientClosed     = errors.New("client is closed")
	ErrNotConnected     = errors.New("client is not connected")
	ErrAlreadyConnected = errors.New("client is already connected")
	ErrInputBusy        = errors.New("arena already has an input source")
	ErrRejected         = errors.New("message rejected by server")
	ErrInvalidConfig    = errors.New("invalid client configuration")
)
