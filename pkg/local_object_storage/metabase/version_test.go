package meta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
	"go.uber.org/zap/zaptest"
)

func TestVersion(t *testing.T) {
	dir := t.TempDir()

	newDB := func(t *testing.T) *DB {
		return New(WithPath(filepath.Join(dir, t.Name())),
			WithPermissions(0o600), WithLogger(zaptest.NewLogger(t)))
	}
	check := func(t *testing.T, db *DB) {
		require.NoError(t, db.boltDB.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(infoBucket)
			if b == nil {
				return errors.New("info bucket not found")
			}
			data := b.Get(versionKey)
			if len(data) != 8 {
				return errors.New("invalid version data")
			}
			if stored := binary.LittleEndian.Uint64(data); stored != version {
				return fmt.Errorf("invalid version: %d != %d", stored, version)
			}
			return nil
		}))
	}
	t.Run("simple", func(t *testing.T) {
		db := newDB(t)
		require.NoError(t, db.Open(false))
		require.False(t, db.Initialized())
		require.NoError(t, db.Init())
		require.True(t, db.Initialized())
		check(t, db)
		require.NoError(t, db.Close())

		t.Run("reopen", func(t *testing.T) {
			require.NoError(t, db.Open(false))
			require.True(t, db.Initialized())
			require.NoError(t, db.Init())
			check(t, db)
			require.NoError(t, db.Close())
		})
	})
	t.Run("invalid version", func(t *testing.T) {
		db := newDB(t)
		require.NoError(t, db.Open(false))
		require.NoError(t, db.boltDB.Update(func(tx *bbolt.Tx) error {
			return updateVersion(tx, version+1)
		}))
		require.NoError(t, db.Close())

		require.NoError(t, db.Open(false))
		require.ErrorIs(t, db.Init(), ErrInvalidVersion)
		require.NoError(t, db.Close())

		require.NoError(t, db.Open(true))
		require.ErrorIs(t, db.Init(), ErrInvalidVersion)
		require.NoError(t, db.Close())

		t.Run("reset", func(t *testing.T) {
			require.NoError(t, db.Open(false))
			require.NoError(t, db.Reset())
			check(t, db)
			require.NoError(t, db.Close())
		})
	})
	t.Run("broken version", func(t *testing.T) {
		db := newDB(t)
		require.NoError(t, db.Open(false))
		require.NoError(t, db.put(versionKey, []byte{1, 2, 3}))
		require.ErrorIs(t, db.Init(), ErrDegraded)
		require.NoError(t, db.Close())
	})
}
