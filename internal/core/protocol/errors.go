package protocol

import "errors"

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrInvalidMessage = errors.New("invalid message")
	ErrUnknownType    = errors.New("unknown message type")
	ErrEmptyPayload   = errors.New("empty payload")
	ErrInvalidSample  = errors.New("invalid sample")
	ErrUnknownAction  = errors.New("unknown control action")
)
