package slotfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const width = 8

func slot(b byte) []byte {
	return bytes.Repeat([]byte{b}, width)
}

func TestSlotFile(t *testing.T) {
	var (
		assert = assert.New(t)
		path   = filepath.Join(t.TempDir(), "slots")
		sf     *SlotFile
		err    error
	)

	t.Run("Open", func(t *testing.T) {
		sf, err = Open(path, width, false)
		require.NoError(t, err)
		assert.Equal(int64(0), sf.Slots())
		assert.Equal(path, sf.Name())
	})

	t.Run("Grow", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			assert.NoError(sf.WriteSlot(int64(i), slot(byte('a'+i))))
			assert.Equal(int64(i+1), sf.Slots())
		}

		stat, err := os.Stat(path)
		assert.NoError(err)
		assert.Equal(int64(3*width), stat.Size())
	})

	t.Run("ReadSlot", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			got, err := sf.ReadSlot(int64(i))
			assert.NoError(err)
			assert.Equal(slot(byte('a'+i)), got)
		}

		_, err := sf.ReadSlot(3)
		assert.ErrorIs(err, ErrShortIO)
	})

	t.Run("Overwrite", func(t *testing.T) {
		assert.NoError(sf.WriteSlot(1, slot('z')))
		assert.Equal(int64(3), sf.Slots())

		got, err := sf.ReadSlot(1)
		assert.NoError(err)
		assert.Equal(slot('z'), got)
	})

	t.Run("Rejects", func(t *testing.T) {
		// Slots can't be skipped.
		assert.Error(sf.WriteSlot(5, slot('x')))
		assert.ErrorIs(sf.WriteSlot(0, []byte{1}), ErrShortIO)
		assert.Equal(int64(3), sf.Slots())
	})

	t.Run("Reopen", func(t *testing.T) {
		assert.NoError(sf.Close())

		sf, err = Open(path, width, true)
		require.NoError(t, err)
		assert.Equal(int64(3), sf.Slots())

		got, err := sf.ReadSlot(2)
		assert.NoError(err)
		assert.Equal(slot('c'), got)

		// Read only files can't be written.
		assert.Error(sf.WriteSlot(3, slot('d')))
		assert.NoError(sf.Close())
	})
}

func TestOpenMisaligned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots")
	require.NoError(t, os.WriteFile(path, make([]byte, width+3), 0644))

	_, err := Open(path, width, false)
	assert.ErrorIs(t, err, ErrMisaligned)
}

func TestOpenReadOnlyMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"), width, true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
