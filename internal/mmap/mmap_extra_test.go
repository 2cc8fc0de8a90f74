package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmap_Region_And_Advise(t *testing.T) {
	// Create temp file
	f, err := os.CreateTemp("", "mmaptest")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	size := 1024
	_, err = f.Write(make([]byte, size))
	require.NoError(t, err)
	f.Close()

	// Open mmap
	m, err := Open(f.Name())
	require.NoError(t, err)

	err = m.Advise(AccessRandom)
	require.NoError(t, err)

	// Region
	r, err := m.Region(100, 200)
	require.NoError(t, err)
	assert.Len(t, r.Bytes(), 200)
	assert.Equal(t, 100, r.Offset())
	assert.Equal(t, 200, r.Len())

	err = r.Advise(AccessSequential)
	require.NoError(t, err)

	// Error cases
	_, err = m.Region(-1, 0)
	assert.Error(t, err)
	_, err = m.Region(1000, 100)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// Close parent
	err = m.Close()
	require.NoError(t, err)

	// Region after close
	assert.Nil(t, r.Bytes())
	assert.Error(t, r.Advise(AccessDefault))
}

func TestMmap_RegionFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	require.NoError(t, err)
	defer f.Close()

	size := os.Getpagesize() + 100
	require.NoError(t, f.Truncate(int64(size)))

	m, err := Map(f, size, ReadWrite)
	require.NoError(t, err)
	defer m.Close()

	// Unaligned region straddling the first page boundary.
	r, err := m.Region(os.Getpagesize()-10, 20)
	require.NoError(t, err)
	for i := range r.Bytes() {
		r.Bytes()[i] = 'x'
	}
	require.NoError(t, r.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('x'), data[os.Getpagesize()-10])
	assert.Equal(t, byte('x'), data[os.Getpagesize()+9])
	assert.Equal(t, byte(0), data[os.Getpagesize()+10])
}

func TestMmap_AfterClose(t *testing.T) {
	f, _ := os.CreateTemp("", "mmaptest2")
	defer os.Remove(f.Name())
	f.Write([]byte("data"))
	f.Close()

	m, _ := Open(f.Name())
	m.Close()

	// Methods after close
	assert.Nil(t, m.Bytes())
	assert.Error(t, m.Advise(AccessRandom))
	assert.ErrorIs(t, m.Flush(), ErrClosed)
	_, err := m.Region(0, 1)
	assert.Error(t, err)
}
