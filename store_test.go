package slotdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mr-karan/slotdb/internal/slotfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ada     = Record{FirstName: "Ada", LastName: "Lovelace", Date: Date{Year: 1815, Month: December, Day: 10}}
	alan    = Record{FirstName: "Alan", LastName: "Turing", Date: Date{Year: 1912, Month: June, Day: 23}}
	grace   = Record{FirstName: "Grace", LastName: "Hopper", Date: Date{Year: 1906, Month: December, Day: 9}}
	records = []Record{ada, alan, grace}
)

var errSync = errors.New("input/output error")

// failingSync is a slot file whose flushes always fail.
type failingSync struct {
	*slotfile.SlotFile
}

func (failingSync) Sync() error {
	return errSync
}

// fullStoreFile creates a store file holding the maximum number of records.
func fullStoreFile(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(int64(MaxEntry)*RecordSize))
	require.NoError(t, f.Close())
}

func TestOpenDefaults(t *testing.T) {
	var (
		assert = assert.New(t)
		path   = filepath.Join(t.TempDir(), "slotdb.db")
	)

	s, err := Open(path)
	require.NoError(t, err)

	assert.Equal(false, s.opts.debug, "debug is wrongly set")
	assert.Equal(false, s.opts.readOnly, "readOnly is wrongly set")
	assert.Equal(false, s.opts.alwaysFSync, "alwaysFSync is wrongly set")
	assert.Nil(s.opts.syncInterval, "syncInterval is wrongly set")
	assert.Nil(s.stopSync)

	assert.FileExists(path)
	assert.FileExists(path + lockSuffix)
	assert.Equal(uint16(0), s.EntryCount())
	assert.False(s.IsFull())

	assert.NoError(s.Close())
	assert.NoFileExists(path + lockSuffix)

	// Closing twice is a no-op.
	assert.NoError(s.Close())
}

func TestStoreAPI(t *testing.T) {
	var (
		assert = assert.New(t)
		path   = filepath.Join(t.TempDir(), "slotdb.db")
		s      *Store
		err    error
	)

	t.Run("Open", func(t *testing.T) {
		s, err = Open(path, WithAlwaysSync(), WithDebug())
		require.NoError(t, err)
		assert.True(s.opts.alwaysFSync)
		assert.True(s.opts.debug)
	})

	t.Run("Append", func(t *testing.T) {
		for i, r := range records {
			// Identifiers carried by the caller are ignored.
			r.ID = 999
			stored, err := s.Append(r)
			assert.NoError(err)
			assert.Equal(uint16(i+1), stored.ID)
			assert.Equal(uint16(i+1), s.EntryCount())
		}

		stat, err := os.Stat(path)
		assert.NoError(err)
		assert.Equal(int64(len(records))*RecordSize, stat.Size())
	})

	t.Run("Read", func(t *testing.T) {
		for i, want := range records {
			got, err := s.Read(uint16(i + 1))
			assert.NoError(err)
			want.ID = uint16(i + 1)
			assert.Equal(want, got)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		r := Record{ID: 2, FirstName: "Alan", LastName: "Mathison", Date: alan.Date}
		assert.NoError(s.Overwrite(r))

		got, err := s.Read(2)
		assert.NoError(err)
		assert.Equal(r, got)
		assert.Equal(uint16(len(records)), s.EntryCount())
	})

	t.Run("OutOfRange", func(t *testing.T) {
		before, err := os.ReadFile(path)
		require.NoError(t, err)

		for _, id := range []uint16{0, uint16(len(records) + 1), MaxEntry} {
			_, err := s.Read(id)
			assert.ErrorIs(err, RequestDenied, "read %d", id)

			err = s.Overwrite(Record{ID: id, FirstName: "Nobody"})
			assert.ErrorIs(err, RequestDenied, "overwrite %d", id)
		}

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(before, after)
		assert.Equal(uint16(len(records)), s.EntryCount())
	})

	t.Run("Reopen", func(t *testing.T) {
		assert.NoError(s.Close())

		s, err = Open(path)
		require.NoError(t, err)
		assert.Equal(uint16(len(records)), s.EntryCount())

		got, err := s.Read(1)
		assert.NoError(err)
		assert.Equal("Lovelace", got.LastName)

		stored, err := s.Append(ada)
		assert.NoError(err)
		assert.Equal(uint16(len(records)+1), stored.ID)
	})

	t.Run("Closed", func(t *testing.T) {
		assert.NoError(s.Close())

		_, err := s.Read(1)
		assert.ErrorIs(err, FileError)
		assert.ErrorIs(err, ErrClosed)

		_, err = s.Append(ada)
		assert.ErrorIs(err, ErrClosed)
		assert.ErrorIs(s.Sync(), ErrClosed)
	})
}

func TestStoreCapacity(t *testing.T) {
	var (
		assert = assert.New(t)
		path   = filepath.Join(t.TempDir(), "slotdb.db")
	)
	fullStoreFile(t, path)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(uint16(MaxEntry), s.EntryCount())
	assert.True(s.IsFull())

	_, err = s.Append(ada)
	assert.ErrorIs(err, RequestDenied)
	assert.Equal(uint16(MaxEntry), s.EntryCount())

	stat, err := os.Stat(path)
	assert.NoError(err)
	assert.Equal(int64(MaxEntry)*RecordSize, stat.Size())

	// The last slot is still addressable.
	assert.NoError(s.Overwrite(Record{ID: MaxEntry, FirstName: "Last"}))
	got, err := s.Read(MaxEntry)
	assert.NoError(err)
	assert.Equal("Last", got.FirstName)
}

func TestStoreFormat(t *testing.T) {
	dir := t.TempDir()

	t.Run("Misaligned", func(t *testing.T) {
		path := filepath.Join(dir, "misaligned.db")
		require.NoError(t, os.WriteFile(path, make([]byte, RecordSize+1), 0644))

		_, err := Open(path)
		assert.ErrorIs(t, err, FileFormat)
		assert.Equal(t, FileFormat, CodeOf(err))

		// A failed open doesn't hold on to the lock.
		assert.NoFileExists(t, path+lockSuffix)
	})

	t.Run("TooManyRecords", func(t *testing.T) {
		path := filepath.Join(dir, "oversized.db")
		require.NoError(t, os.WriteFile(path, make([]byte, (MaxEntry+1)*RecordSize), 0644))

		_, err := Open(path)
		assert.ErrorIs(t, err, FileFormat)
	})

	t.Run("Unopenable", func(t *testing.T) {
		// A directory can't be opened for writing as a store file.
		path := filepath.Join(dir, "subdir")
		require.NoError(t, os.Mkdir(path, 0755))

		_, err := Open(path)
		assert.ErrorIs(t, err, FileError)
	})
}

func TestStoreLocking(t *testing.T) {
	var (
		assert = assert.New(t)
		path   = filepath.Join(t.TempDir(), "slotdb.db")
	)

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Append(ada)
	require.NoError(t, err)

	_, err = Open(path)
	assert.ErrorIs(err, ErrLocked)

	// Readers don't take the lock.
	ro, err := Open(path, WithReadOnly())
	require.NoError(t, err)
	assert.Equal(uint16(1), ro.EntryCount())

	got, err := ro.Read(1)
	assert.NoError(err)
	assert.Equal("Ada", got.FirstName)

	_, err = ro.Append(alan)
	assert.ErrorIs(err, RequestDenied)
	assert.ErrorIs(err, ErrReadOnly)
	assert.True(errors.Is(ro.Overwrite(Record{ID: 1}), ErrReadOnly))
	assert.NoError(ro.Close())

	assert.NoError(s.Close())

	s, err = Open(path)
	assert.NoError(err)
	assert.NoError(s.Close())
}

func TestBackgroundSync(t *testing.T) {
	var (
		assert = assert.New(t)
		path   = filepath.Join(t.TempDir(), "slotdb.db")
	)

	s, err := Open(path, WithBackgroundSync(time.Millisecond*10))
	require.NoError(t, err)
	assert.False(s.opts.alwaysFSync)
	assert.Equal(time.Millisecond*10, *s.opts.syncInterval)
	assert.NotNil(s.stopSync)

	_, err = s.Append(ada)
	assert.NoError(err)

	// Let a few ticks run against the live store.
	time.Sleep(time.Millisecond * 50)

	assert.NoError(s.Close())
	assert.Nil(s.stopSync)
}

func TestOpenWithAutoSync(t *testing.T) {
	assert := assert.New(t)

	s, err := Open(filepath.Join(t.TempDir(), "slotdb.db"), WithAutoSync())
	require.NoError(t, err)

	assert.False(s.opts.alwaysFSync)
	assert.Equal(defaultSyncInterval, *s.opts.syncInterval)
	assert.NotNil(s.stopSync)
	assert.NoError(s.Close())
}

func TestStoreStorageFailures(t *testing.T) {
	t.Run("TruncatedUnderneath", func(t *testing.T) {
		var (
			assert = assert.New(t)
			path   = filepath.Join(t.TempDir(), "slotdb.db")
		)

		s, err := Open(path)
		require.NoError(t, err)
		defer s.Close()

		for _, r := range records[:2] {
			_, err := s.Append(r)
			require.NoError(t, err)
		}
		require.NoError(t, os.Truncate(path, RecordSize+10))

		_, err = s.Read(2)
		assert.Equal(FileFormat, CodeOf(err))
		assert.ErrorIs(err, slotfile.ErrShortIO)

		// Slots before the cut are intact.
		got, err := s.Read(1)
		assert.NoError(err)
		assert.Equal("Ada", got.FirstName)
		assert.Equal(uint16(2), s.EntryCount())
	})

	t.Run("FlushAfterAppend", func(t *testing.T) {
		var (
			assert = assert.New(t)
			path   = filepath.Join(t.TempDir(), "slotdb.db")
		)

		s, err := Open(path, WithAlwaysSync())
		require.NoError(t, err)
		defer s.Close()
		s.sf = failingSync{s.sf.(*slotfile.SlotFile)}

		stored, err := s.Append(ada)
		assert.Equal(FileError, CodeOf(err))
		assert.ErrorIs(err, errSync)

		// The write landed, so the record is counted and returned.
		assert.Equal(uint16(1), stored.ID)
		assert.Equal(uint16(1), s.EntryCount())
		got, err := s.Read(1)
		assert.NoError(err)
		assert.Equal("Lovelace", got.LastName)

		err = s.Overwrite(Record{ID: 1, FirstName: "Ada", LastName: "King"})
		assert.ErrorIs(err, FileError)
		assert.ErrorIs(s.Sync(), errSync)
	})
}
