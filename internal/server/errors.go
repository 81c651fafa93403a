package server

import "errors"

var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrInputBusy            = errors.New("another input source is connected")
	ErrConnectionClosed     = errors.New("connection is closed")
	ErrUnsupportedFrame     = errors.New("unsupported websocket frame type")
)
