package domain

import "errors"

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrTabIndexOutOfRange = errors.New("tab index out of range")
	ErrTabNotFound        = errors.New("tab not found")
	ErrUnknownDriver      = errors.New("unknown database driver")
)
