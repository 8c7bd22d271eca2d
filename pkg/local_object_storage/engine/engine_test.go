package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Determinant/cordwood/internal/testutil"
	"github.com/Determinant/cordwood/pkg/local_object_storage/cowarray"
	"github.com/Determinant/cordwood/pkg/local_object_storage/durable"
	"github.com/Determinant/cordwood/pkg/local_object_storage/linear"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"github.com/Determinant/cordwood/pkg/local_object_storage/util/logicerr"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testNewEngine(t *testing.T, path string, opts ...Option) *StorageEngine {
	e := New(append([]Option{
		WithPath(path),
		WithLogger(zaptest.NewLogger(t)),
	}, opts...)...)

	require.NoError(t, e.Open())
	require.NoError(t, e.Init())

	return e
}

func dump(t *testing.T, e *StorageEngine) string {
	var b bytes.Buffer
	require.NoError(t, e.ArrayDump(&b))
	return b.String()
}

func TestStorageEngine_EndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")

	e := testNewEngine(t, path)

	info, err := e.Info()
	require.NoError(t, err)
	require.True(t, info.Fresh)
	require.Zero(t, info.ArrayLen)
	require.Equal(t, path, info.Path)
	require.NotEmpty(t, info.ID)

	root := info.ArrayRoot

	require.NoError(t, e.ArraySet(0, 100))
	require.Equal(t, "[100]\n", dump(t, e))

	info, err = e.Info()
	require.NoError(t, err)
	before := info.ArrayTarget

	require.NoError(t, e.ArraySet(2, 102))
	require.Equal(t, "[100, 0, 102]\n", dump(t, e))

	info, err = e.Info()
	require.NoError(t, err)
	require.NotEqual(t, before, info.ArrayTarget)
	require.EqualValues(t, 3, info.ArrayLen)
	require.EqualValues(t, 2, info.Objects)

	for idx, exp := range map[uint64]uint64{0: 100, 1: 0, 2: 102} {
		v, err := e.ArrayGet(idx)
		require.NoError(t, err)
		require.Equal(t, exp, v)
	}

	require.NoError(t, e.Commit())
	require.NoError(t, e.Close())

	e = testNewEngine(t, path)
	defer func() { require.NoError(t, e.Close()) }()

	reopened, err := e.Info()
	require.NoError(t, err)
	require.False(t, reopened.Fresh)
	require.Equal(t, root, reopened.ArrayRoot)
	require.Equal(t, info.ID, reopened.ID)
	require.Equal(t, "[100, 0, 102]\n", dump(t, e))
}

func TestStorageEngine_Commit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")

	e := testNewEngine(t, path)
	require.NoError(t, e.ArraySet(0, 1))
	require.NoError(t, e.Commit())

	// index is within the array, the record is updated in place
	require.NoError(t, e.ArraySet(0, 5))
	require.NoError(t, e.Commit())
	require.NoError(t, e.Close())

	e = testNewEngine(t, path)

	v, err := e.ArrayGet(0)
	require.NoError(t, err)
	require.EqualValues(t, 5, v)

	t.Run("uncommitted", func(t *testing.T) {
		require.NoError(t, e.ArraySet(0, 9))
		require.NoError(t, e.ArraySet(3, 9))
		require.NoError(t, e.Close())

		e = testNewEngine(t, path)
		defer func() { require.NoError(t, e.Close()) }()

		require.Equal(t, "[5]\n", dump(t, e))
	})
}

func TestStorageEngine_Truncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage")

	e := testNewEngine(t, path)
	require.NoError(t, e.ArraySet(3, 1))
	require.NoError(t, e.Commit())
	id := e.ID()
	require.NoError(t, e.Close())

	e = testNewEngine(t, path, WithTruncate(true))
	defer func() { require.NoError(t, e.Close()) }()

	info, err := e.Info()
	require.NoError(t, err)
	require.True(t, info.Fresh)
	require.Zero(t, info.ArrayLen)
	require.NotEqual(t, id, e.ID())
}

func TestStorageEngine_OutOfBounds(t *testing.T) {
	e := testNewEngine(t, t.TempDir(), WithNoSync(true))
	defer func() { require.NoError(t, e.Close()) }()

	_, err := e.ArrayGet(0)
	require.ErrorIs(t, err, cowarray.ErrOutOfBounds)
	require.True(t, logicerr.Is(err))

	require.NoError(t, e.ArraySet(0, 1))

	_, err = e.ArrayGet(1)
	require.ErrorIs(t, err, cowarray.ErrOutOfBounds)
}

func TestStorageEngine_Capacity(t *testing.T) {
	e := testNewEngine(t, t.TempDir(), WithNoSync(true), WithCapacity(1024))
	defer func() { require.NoError(t, e.Close()) }()

	require.ErrorIs(t, e.ArraySet(1000, 1), objstore.ErrNoSpace)
	require.Equal(t, "[]\n", dump(t, e))
}

func TestStorageEngine_NotInitialized(t *testing.T) {
	e := New(WithPath(t.TempDir()), WithLogger(zaptest.NewLogger(t)))

	require.ErrorIs(t, e.Init(), ErrNotInitialized)

	_, err := e.ArrayGet(0)
	require.ErrorIs(t, err, ErrNotInitialized)
	require.ErrorIs(t, e.ArraySet(0, 1), ErrNotInitialized)
	require.ErrorIs(t, e.Commit(), ErrNotInitialized)

	_, err = e.Info()
	require.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, e.Open())
	_, err = e.ArrayLen()
	require.ErrorIs(t, err, ErrNotInitialized)
	require.NoError(t, e.Close())
}

func TestStorageEngine_OpenFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	e := New(WithPath(filepath.Join(file, "storage")), WithLogger(zaptest.NewLogger(t)))
	require.Error(t, e.Open())
	require.NoError(t, e.Close())

	e = New(WithPath(t.TempDir()), WithLogger(zaptest.NewLogger(t)), WithFileSize(linear.PageSize+1))
	require.Error(t, e.Open())
	require.NoError(t, e.Close())
}

func TestFiles(t *testing.T) {
	path := t.TempDir()

	e := testNewEngine(t, path, WithNoSync(true), WithFileSize(linear.PageSize))
	require.NoError(t, e.ArraySet(2000, 1))
	require.NoError(t, e.Commit())
	require.NoError(t, e.Close())

	require.NoError(t, os.WriteFile(filepath.Join(path, DataDir, "junk"), []byte("junk"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(path, DataDir, durable.FileName(1<<20)), 0o700))

	files, err := Files(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(files), 3)

	for i := range files {
		require.EqualValues(t, i, files[i].ID)
		require.Equal(t, durable.FileName(uint64(i)), files[i].Name)
		require.EqualValues(t, linear.PageSize, files[i].Size)
	}

	_, err = Files(filepath.Join(path, "missing"))
	require.Error(t, err)
}

func TestStorageEngine_Logging(t *testing.T) {
	t.Run("fresh directory", func(t *testing.T) {
		l, lb := testutil.NewBufferedLogger(t, zap.WarnLevel)

		e := New(WithPath(filepath.Join(t.TempDir(), "storage")), WithLogger(l))
		require.NoError(t, e.Open())
		require.NoError(t, e.Init())
		require.NoError(t, e.Close())

		lb.AssertEmpty()
	})

	t.Run("existing directory without array", func(t *testing.T) {
		l, lb := testutil.NewBufferedLogger(t, zap.WarnLevel)

		e := New(WithPath(t.TempDir()), WithLogger(l))
		require.NoError(t, e.Open())
		require.NoError(t, e.Init())
		require.NoError(t, e.Close())

		lb.AssertContains(testutil.LogEntry{
			Level:   zap.WarnLevel,
			Message: "existing storage has no array, creating new one",
			Fields:  map[string]any{},
		})
	})

	t.Run("array created", func(t *testing.T) {
		l, lb := testutil.NewBufferedLogger(t, zap.InfoLevel)
		path := filepath.Join(t.TempDir(), "storage")

		e := New(WithPath(path), WithLogger(l))
		require.NoError(t, e.Open())
		require.NoError(t, e.Init())
		require.NoError(t, e.Close())

		require.Len(t, lb.Filter("array created"), 1)
		require.Empty(t, lb.Filter("array loaded"))

		e = New(WithPath(path), WithLogger(l))
		require.NoError(t, e.Open())
		require.NoError(t, e.Init())
		require.NoError(t, e.Close())

		require.Len(t, lb.Filter("array loaded"), 1)
	})
}
