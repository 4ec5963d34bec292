package finarc

import "errors"

var (
	ErrClosed = errors.New("closed")
	ErrShared = errors.New("shared")
)
