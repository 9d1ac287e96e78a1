package slotdb

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/mr-karan/slotdb/internal/slotfile"
	"github.com/zerodha/logf"
)

// slotStorage is the slot addressed file a Store is built on.
type slotStorage interface {
	Slots() int64
	Name() string
	ReadSlot(n int64) ([]byte, error)
	WriteSlot(n int64, data []byte) error
	Sync() error
	Close() error
}

// Store is a flat file of fixed width record slots. Identifier N occupies
// slot N-1. The entry count is computed once when the store is opened and is
// only ever incremented by a successful Append.
type Store struct {
	sync.Mutex

	lo   logf.Logger
	opts *Options

	sf     slotStorage
	count  uint16   // Number of records persisted, also the highest assigned id.
	flockF *os.File // Lockfile to prevent multiple write access to same store.
	closed bool

	stopSync chan struct{}
	syncDone chan struct{}
}

// Open opens the store file at path, creating it if it doesn't exist.
func Open(path string, cfg ...Config) (*Store, error) {
	opts := DefaultOptions()
	for _, c := range cfg {
		if err := c(opts); err != nil {
			return nil, err
		}
	}

	lo := initLogger(opts.debug)
	if opts.logger != nil {
		lo = *opts.logger
	}

	var (
		flockF *os.File
		err    error
	)
	// If not running in a read only mode then take a lock to ensure only one process writes to the store.
	if !opts.readOnly {
		flockF, err = createFlockFile(path)
		if err != nil {
			return nil, err
		}
	}

	fresh := !exists(path)
	sf, err := slotfile.Open(path, RecordSize, opts.readOnly)
	if err != nil {
		if flockF != nil {
			_ = destroyFlockFile(flockF)
		}
		if errors.Is(err, slotfile.ErrMisaligned) {
			return nil, fmt.Errorf("%w: %w", FileFormat, err)
		}
		return nil, fmt.Errorf("%w: %w", FileError, err)
	}

	if sf.Slots() > MaxEntry {
		_ = sf.Close()
		if flockF != nil {
			_ = destroyFlockFile(flockF)
		}
		return nil, fmt.Errorf("%w: %d records exceed the maximum of %d", FileFormat, sf.Slots(), MaxEntry)
	}

	s := &Store{
		lo:     lo,
		opts:   opts,
		sf:     sf,
		count:  uint16(sf.Slots()),
		flockF: flockF,
	}

	// Spawn a goroutine which flushes the file to disk periodically.
	if !opts.readOnly && !opts.alwaysFSync && opts.syncInterval != nil && *opts.syncInterval > 0 {
		s.stopSync = make(chan struct{})
		s.syncDone = make(chan struct{})
		go s.SyncFile(*opts.syncInterval)
	}

	if fresh {
		lo.Info("created store file", "path", path)
	}
	lo.Debug("opened store", "path", path, "entries", s.count, "read_only", opts.readOnly)
	return s, nil
}

// EntryCount returns the number of records in the store. It only reflects
// completed mutations.
func (s *Store) EntryCount() uint16 {
	s.Lock()
	defer s.Unlock()

	return s.count
}

// IsFull reports whether no more records can be appended.
func (s *Store) IsFull() bool {
	s.Lock()
	defer s.Unlock()

	return s.count >= MaxEntry
}

// Read returns the record stored under id.
func (s *Store) Read(id uint16) (Record, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.checkID(id); err != nil {
		return Record{}, err
	}

	s.lo.Debug("reading record", "id", id)
	buf, err := s.sf.ReadSlot(slotOf(id))
	if err != nil {
		return Record{}, storageErr("error reading record", err)
	}

	return DecodeRecord(buf), nil
}

// Append stores r under the next free identifier and returns the stored record.
// The identifier carried by r is ignored. If the record was written but the
// flush that follows failed, the stored record is returned along with the error.
func (s *Store) Append(r Record) (Record, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.checkWritable(); err != nil {
		return Record{}, err
	}
	if s.count >= MaxEntry {
		return Record{}, fmt.Errorf("%w: store is full (%d records)", RequestDenied, s.count)
	}

	r.ID = s.count + 1
	s.lo.Debug("appending record", "id", r.ID)
	if err := s.sf.WriteSlot(slotOf(r.ID), EncodeRecord(r)); err != nil {
		return Record{}, storageErr("error appending record", err)
	}

	// Only count the record once it is written, so the count always matches the file length.
	s.count++

	if err := s.maybeSync(); err != nil {
		return r, err
	}

	return r, nil
}

// Overwrite replaces the record stored under r.ID in place.
func (s *Store) Overwrite(r Record) error {
	s.Lock()
	defer s.Unlock()

	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := s.checkID(r.ID); err != nil {
		return err
	}

	s.lo.Debug("overwriting record", "id", r.ID)
	if err := s.sf.WriteSlot(slotOf(r.ID), EncodeRecord(r)); err != nil {
		return storageErr("error overwriting record", err)
	}

	return s.maybeSync()
}

// Sync calls fsync(2) on the store file.
func (s *Store) Sync() error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.sf.Sync(); err != nil {
		return storageErr("error syncing store file", err)
	}
	return nil
}

// Close stops the background sync, flushes and closes the store file and
// removes the lockfile. Not calling Close on a writable store leaves the
// lockfile behind; it is reclaimed by the next Open since the lock itself
// dies with the process.
func (s *Store) Close() error {
	if s.stopSync != nil {
		close(s.stopSync)
		<-s.syncDone
		s.stopSync = nil
	}

	s.Lock()
	defer s.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.sf.Close(); err != nil {
		s.lo.Error("error closing store file", "error", err)
		errs = append(errs, storageErr("error closing store file", err))
	}
	if s.flockF != nil {
		if err := destroyFlockFile(s.flockF); err != nil {
			s.lo.Error("error destroying lock file", "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Store) checkID(id uint16) error {
	if s.closed {
		return fmt.Errorf("%w: %w", FileError, ErrClosed)
	}
	if id < MinEntry || id > s.count {
		return fmt.Errorf("%w: id %d outside [%d, %d]", RequestDenied, id, MinEntry, s.count)
	}
	return nil
}

func (s *Store) checkWritable() error {
	if s.closed {
		return fmt.Errorf("%w: %w", FileError, ErrClosed)
	}
	if s.opts.readOnly {
		return fmt.Errorf("%w: %w", RequestDenied, ErrReadOnly)
	}
	return nil
}

// maybeSync flushes the file after a mutation when always sync is enabled.
func (s *Store) maybeSync() error {
	if !s.opts.alwaysFSync {
		return nil
	}
	if err := s.sf.Sync(); err != nil {
		return storageErr("error syncing store file", err)
	}
	return nil
}
