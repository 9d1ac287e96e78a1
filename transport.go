package slotdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// SendExact writes all of p to w. A hard write error is a SocketError and a
// write that transfers fewer bytes without reporting an error is a
// SocketMismatch.
func SendExact(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return fmt.Errorf("%w: %w", SocketError, err)
	}
	if n != len(p) {
		return fmt.Errorf("%w: sent %d of %d bytes: %w", SocketMismatch, n, len(p), io.ErrShortWrite)
	}
	return nil
}

// RecvExact reads exactly n bytes from r.
//
// The peer closing the channel before the first byte is a SocketError wrapping
// io.EOF. Running out of data part way through, or a read that makes no
// progress and reports no error, is a SocketMismatch. Any other read error is
// a SocketError. A message delivered over several reads is reassembled, so
// short reads that eventually complete are not a mismatch.
func RecvExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := recvInto(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func recvInto(r io.Reader, buf []byte) error {
	var got int
	for got < len(buf) {
		n, err := r.Read(buf[got:])
		got += n
		if got == len(buf) {
			return nil
		}
		switch {
		case errors.Is(err, io.EOF) && got == 0:
			return fmt.Errorf("%w: %w", SocketError, io.EOF)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: received %d of %d bytes: %w", SocketMismatch, got, len(buf), io.ErrUnexpectedEOF)
		case err != nil:
			return fmt.Errorf("%w: %w", SocketError, err)
		case n == 0:
			return fmt.Errorf("%w: received %d of %d bytes", SocketMismatch, got, len(buf))
		}
	}
	return nil
}

// SendCode sends a status or command code.
func SendCode(w io.Writer, c Code) error {
	var buf [CodeSize]byte
	binary.BigEndian.PutUint16(buf[:], uint16(c))
	return SendExact(w, buf[:])
}

// RecvCode receives a status or command code.
func RecvCode(r io.Reader) (Code, error) {
	var buf [CodeSize]byte
	if err := recvInto(r, buf[:]); err != nil {
		return 0, err
	}
	return Code(binary.BigEndian.Uint16(buf[:])), nil
}

// SendIndex sends an identifier or entry count.
func SendIndex(w io.Writer, idx uint16) error {
	var buf [IndexSize]byte
	binary.BigEndian.PutUint16(buf[:], idx)
	return SendExact(w, buf[:])
}

// RecvIndex receives an identifier or entry count.
func RecvIndex(r io.Reader) (uint16, error) {
	var buf [IndexSize]byte
	if err := recvInto(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// SendRecord sends r. Without the identifier only the bytes following the
// identifier field are sent.
func SendRecord(w io.Writer, r Record, withID bool) error {
	var buf [RecordSize]byte
	encodeRecordInto(buf[:], r)
	return SendExact(w, buf[recordStart(withID):])
}

// RecvRecord receives a record. Without the identifier the returned record
// has ID 0.
func RecvRecord(r io.Reader, withID bool) (Record, error) {
	var buf [RecordSize]byte
	if err := recvInto(r, buf[recordStart(withID):]); err != nil {
		return Record{}, err
	}
	return decodeRecordFrom(buf[:]), nil
}

func recordStart(withID bool) int {
	if withID {
		return 0
	}
	return IndexSize
}
