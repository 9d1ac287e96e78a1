package slotdb

import (
	"errors"
	"strings"
)

// Code is the 16 bit status value exchanged on the wire. It is a set of
// independent flags: a single failed request cycle can report both that the
// store failed and that notifying the peer about it failed as well.
type Code uint16

const (
	Success Code = 0

	// Storage failures.
	FileError  Code = 0b0001
	FileFormat Code = 0b0010

	// Transport failures.
	SocketError    Code = 0b0100
	SocketMismatch Code = 0b1000

	// Request kinds. These double as command codes.
	RequestInsert Code = 0b0001_0000_0000
	RequestUpdate Code = 0b0010_0000_0000
	RequestFind   Code = 0b0100_0000_0000
	RequestQuery  Code = 0b1000_0000_0000

	// RequestDenied is a valid protocol outcome, not a channel failure.
	RequestDenied Code = 0b0001_0000_0000_0000
)

var codeNames = []struct {
	flag Code
	name string
}{
	{FileError, "file error"},
	{FileFormat, "file format"},
	{SocketError, "socket error"},
	{SocketMismatch, "socket mismatch"},
	{RequestInsert, "insert"},
	{RequestUpdate, "update"},
	{RequestFind, "find"},
	{RequestQuery, "query"},
	{RequestDenied, "request denied"},
}

// Has reports whether every flag of f is set in c.
func (c Code) Has(f Code) bool {
	return f != 0 && c&f == f
}

// Failed reports whether any storage or transport failure flag is set.
func (c Code) Failed() bool {
	return c&(FileError|FileFormat|SocketError|SocketMismatch) != 0
}

func (c Code) String() string {
	if c == Success {
		return "success"
	}
	var (
		parts []string
		rest  = c
	)
	for _, n := range codeNames {
		if c.Has(n.flag) {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		parts = append(parts, "unknown flags")
	}
	return strings.Join(parts, "|")
}

// Error makes a non-success code usable as an error value.
func (c Code) Error() string {
	return c.String()
}

// Is matches when the target code's flags are all present in c, so that
// errors.Is(err, RequestDenied) holds for combined codes too.
func (c Code) Is(target error) bool {
	t, ok := target.(Code)
	if !ok {
		return false
	}
	if t == Success {
		return c == Success
	}
	return c.Has(t)
}

// CodeOf returns the flag set carried by err. A nil error is Success and an
// error without a code is treated as a storage I/O failure.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return FileError
}
