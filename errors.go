package slotdb

import "errors"

var (
	ErrLocked   = errors.New("a lockfile already exists")
	ErrReadOnly = errors.New("operation not allowed in read only mode")
	ErrClosed   = errors.New("store is closed")

	ErrNameTooLong      = errors.New("invalid name: size is too large")
	ErrNameNotPrintable = errors.New("invalid name: contains non printable characters")
	ErrInvalidMonth     = errors.New("invalid date: month out of range")
	ErrInvalidDay       = errors.New("invalid date: day out of range")
	ErrInvalidDate      = errors.New("invalid date")
)
