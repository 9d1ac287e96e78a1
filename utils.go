package slotdb

import (
	"errors"
	"fmt"
	"os"

	"github.com/mr-karan/slotdb/internal/slotfile"
)

// exists returns true if the given path exists on the filesystem.
func exists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return true
}

// slotOf returns the zero based slot index of an identifier.
func slotOf(id uint16) int64 {
	return int64(id) - MinEntry
}

// storageErr tags a file level error with the storage flag it maps to.
// Short transfers mean the file is truncated or otherwise malformed.
func storageErr(msg string, err error) error {
	if errors.Is(err, slotfile.ErrShortIO) {
		return fmt.Errorf("%s: %w: %w", msg, FileFormat, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, FileError, err)
}
