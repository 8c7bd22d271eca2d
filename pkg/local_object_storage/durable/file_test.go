package durable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newDir(t *testing.T) *Dir {
	d, _, err := Bootstrap(filepath.Join(t.TempDir(), "db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestFileName(t *testing.T) {
	for _, tc := range []struct {
		fid  uint64
		name string
	}{
		{0, "00000000.fw"},
		{1, "00000001.fw"},
		{0xdeadbeef, "deadbeef.fw"},
		{0x1_0000_0000, "100000000.fw"},
	} {
		require.Equal(t, tc.name, FileName(tc.fid))

		fid, ok := ParseFileName(tc.name)
		require.True(t, ok, tc.name)
		require.Equal(t, tc.fid, fid)
	}

	for _, name := range []string{
		"",
		".fw",
		"0000001.fw",
		"00000001",
		"00000001.dat",
		"DEADBEEF.fw",
		"0000000g.fw",
		"0100000000.fw",
		"meta.db",
	} {
		_, ok := ParseFileName(name)
		require.False(t, ok, name)
	}
}

func TestOpenFile(t *testing.T) {
	d := newDir(t)

	const fid, size = 0x2a, 1 << 16

	f, err := OpenFile(fid, size, d)
	require.NoError(t, err)
	require.Equal(t, uint64(fid), f.ID())
	require.Equal(t, "0000002a.fw", f.Name())

	p := filepath.Join(d.Path(), f.Name())
	st, err := os.Stat(p)
	require.NoError(t, err)
	require.EqualValues(t, size, st.Size())
	require.Zero(t, st.Mode().Perm()&0o077)

	data := []byte("persistent payload")
	n, err := unix.Pwrite(f.FD(), data, 100)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	f.Sync()
	require.NoError(t, f.Close())

	t.Run("existing file is not truncated", func(t *testing.T) {
		f, err := OpenFile(fid, 16, d)
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, f.Close()) })

		st, err := os.Stat(p)
		require.NoError(t, err)
		require.EqualValues(t, size, st.Size())

		buf := make([]byte, len(data))
		_, err = unix.Pread(f.FD(), buf, 100)
		require.NoError(t, err)
		require.Equal(t, data, buf)
	})

	t.Run("unexpected open failure", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(d.Path(), FileName(7)), 0o700))

		_, err := OpenFile(7, size, d)
		require.ErrorIs(t, err, unix.EISDIR)
	})
}

func TestFile_Sync(t *testing.T) {
	f, err := OpenFile(0, 4096, newDir(t))
	require.NoError(t, err)

	require.NotPanics(t, f.Sync)
	require.NoError(t, f.Close())
	require.Panics(t, f.Sync)
}
