package slotfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrShortIO is returned when the device transferred fewer bytes than requested.
	ErrShortIO = errors.New("short read or write")
	// ErrMisaligned is returned when the file length is not a multiple of the slot size.
	ErrMisaligned = errors.New("file size is not a multiple of the slot size")
)

// SlotFile is a flat file of fixed width slots. Slot n lives at byte offset n*width.
type SlotFile struct {
	f     *os.File
	width int64
	slots int64
}

// Open opens (creating if absent) the file at path and counts its slots.
// A file whose length isn't a multiple of width is rejected with ErrMisaligned.
func Open(path string, width int, readOnly bool) (*SlotFile, error) {
	flag := os.O_RDWR | os.O_CREATE
	if readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening slot file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error fetching file stats: %w", err)
	}

	size := stat.Size()
	if size%int64(width) != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %d bytes with slot size %d", ErrMisaligned, size, width)
	}

	return &SlotFile{
		f:     f,
		width: int64(width),
		slots: size / int64(width),
	}, nil
}

// Slots returns the number of slots present when the file was opened plus
// every slot appended since.
func (s *SlotFile) Slots() int64 {
	return s.slots
}

// Name returns the path of the underlying file.
func (s *SlotFile) Name() string {
	return s.f.Name()
}

// ReadSlot reads exactly one slot.
func (s *SlotFile) ReadSlot(n int64) ([]byte, error) {
	buf := make([]byte, s.width)
	read, err := s.f.ReadAt(buf, n*s.width)
	// ReadAt may report io.EOF together with a complete read of the last slot.
	if read == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: read %d of %d bytes at slot %d", ErrShortIO, read, len(buf), n)
	}
	return nil, err
}

// WriteSlot writes data in place over slot n. Writing at n == Slots() grows the
// file by one slot.
func (s *SlotFile) WriteSlot(n int64, data []byte) error {
	if int64(len(data)) != s.width {
		return fmt.Errorf("%w: slot data is %d bytes, expected %d", ErrShortIO, len(data), s.width)
	}
	if n > s.slots {
		return fmt.Errorf("slot %d is beyond the end of file (%d slots)", n, s.slots)
	}

	written, err := s.f.WriteAt(data, n*s.width)
	if err != nil {
		return err
	}
	if written != len(data) {
		return fmt.Errorf("%w: wrote %d of %d bytes at slot %d", ErrShortIO, written, len(data), n)
	}

	if n == s.slots {
		s.slots++
	}
	return nil
}

// Sync flushes the in-memory buffers to the disk.
func (s *SlotFile) Sync() error {
	return s.f.Sync()
}

// Close flushes and closes the underlying file.
func (s *SlotFile) Close() error {
	if err := s.f.Sync(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}
