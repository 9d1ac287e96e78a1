package slotdb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	MinEntry = 1      // Lowest identifier that can be assigned to a record.
	MaxEntry = 40_000 // Highest identifier and maximum number of slots in a store.

	NameSize = 29 // Width of a name field, including the NUL terminator.
	MaxName  = NameSize - 1

	IndexSize  = 2
	CodeSize   = 2
	RecordSize = IndexSize + 2*NameSize + 4
)

// Byte offsets of every field inside an encoded record.
const (
	idOffset    = 0
	firstOffset = idOffset + IndexSize
	lastOffset  = firstOffset + NameSize
	yearOffset  = lastOffset + NameSize
	monthOffset = yearOffset + 2
	dayOffset   = monthOffset + 1
)

/*
Record is the unit of storage. Every record has the same encoded width on disk
and on the wire, which is what lets the store address a record by a plain
offset calculation.

Representation of an encoded record (integers in network byte order).
---------------------------------------------------------------------
| id(2) | first_name(29) | last_name(29) | year(2) | month(1) | day(1) |
---------------------------------------------------------------------

When the identifier is implied by context (insert), only the trailing 62 bytes
are transferred.
*/
type Record struct {
	ID        uint16
	FirstName string
	LastName  string
	Date      Date
}

// Date is a calendar date. Only the field widths are enforced, not calendar correctness.
type Date struct {
	Year  uint16
	Month Month
	Day   uint8
}

type Month uint8

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

// EncodeRecord returns the fixed width representation of r.
func EncodeRecord(r Record) []byte {
	buf := make([]byte, RecordSize)
	encodeRecordInto(buf, r)
	return buf
}

// DecodeRecord decodes a buffer of exactly RecordSize bytes.
func DecodeRecord(buf []byte) Record {
	return decodeRecordFrom(buf)
}

func encodeRecordInto(buf []byte, r Record) {
	binary.BigEndian.PutUint16(buf[idOffset:], r.ID)
	putName(buf[firstOffset:lastOffset], r.FirstName)
	putName(buf[lastOffset:yearOffset], r.LastName)
	binary.BigEndian.PutUint16(buf[yearOffset:], r.Date.Year)
	buf[monthOffset] = byte(r.Date.Month)
	buf[dayOffset] = r.Date.Day
}

func decodeRecordFrom(buf []byte) Record {
	return Record{
		ID:        binary.BigEndian.Uint16(buf[idOffset:]),
		FirstName: getName(buf[firstOffset:lastOffset]),
		LastName:  getName(buf[lastOffset:yearOffset]),
		Date: Date{
			Year:  binary.BigEndian.Uint16(buf[yearOffset:]),
			Month: Month(buf[monthOffset]),
			Day:   buf[dayOffset],
		},
	}
}

// putName copies at most MaxName bytes of s into field and NUL pads the rest,
// so the last byte of the field is always a terminator.
func putName(field []byte, s string) {
	n := copy(field[:MaxName], s)
	for i := n; i < len(field); i++ {
		field[i] = 0
	}
}

func getName(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}

// Validate checks the field widths of the record. The identifier is not
// checked since its validity depends on the store it is sent to.
func (r Record) Validate() error {
	if err := validateName(r.FirstName); err != nil {
		return fmt.Errorf("first name: %w", err)
	}
	if err := validateName(r.LastName); err != nil {
		return fmt.Errorf("last name: %w", err)
	}
	return r.Date.Validate()
}

func validateName(s string) error {
	if len(s) > MaxName {
		return ErrNameTooLong
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return ErrNameNotPrintable
		}
	}
	return nil
}

// Validate checks that month and day are within their ranges.
func (d Date) Validate() error {
	if d.Month < January || d.Month > December {
		return ErrInvalidMonth
	}
	if d.Day < 1 || d.Day > 31 {
		return ErrInvalidDay
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if t.Year() < 0 || t.Year() > 0xffff {
		return Date{}, fmt.Errorf("%w: year out of range %q", ErrInvalidDate, s)
	}
	return Date{
		Year:  uint16(t.Year()),
		Month: Month(t.Month()),
		Day:   uint8(t.Day()),
	}, nil
}
