package slotdb

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const lockSuffix = ".lock"

// createFlockFile takes an exclusive lock guarding the store file at path,
// so only one process at a time can mutate it.
func createFlockFile(path string) (*os.File, error) {
	flockFile := path + lockSuffix
	flockF, err := os.OpenFile(flockFile, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot create lock file %q: %w", flockFile, err)
	}
	if err := unix.Flock(int(flockF.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = flockF.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %q", ErrLocked, flockFile)
		}
		return nil, fmt.Errorf("cannot acquire lock on file %q: %w", flockFile, err)
	}
	return flockF, nil
}

// destroyFlockFile releases the lock and removes the lock file.
func destroyFlockFile(flockF *os.File) error {
	// Remove before unlocking so a waiting process never locks a file that's about to vanish.
	if err := os.Remove(flockF.Name()); err != nil {
		return fmt.Errorf("cannot remove file %q: %w", flockF.Name(), err)
	}
	if err := unix.Flock(int(flockF.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("cannot unlock lock on file %q: %w", flockF.Name(), err)
	}
	if err := flockF.Close(); err != nil {
		return fmt.Errorf("cannot close fd on file %q: %w", flockF.Name(), err)
	}
	return nil
}
