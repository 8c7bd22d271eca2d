package meta

import (
	"fmt"
	"path/filepath"

	"github.com/Determinant/cordwood/pkg/util"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Open boltDB instance for metabase.
func (db *DB) Open(readOnly bool) error {
	err := util.MkdirAllX(filepath.Dir(db.info.Path), db.info.Permission)
	if err != nil {
		return fmt.Errorf("can't create dir %s for metabase: %w", db.info.Path, err)
	}

	db.log.Debug("created directory for Metabase", zap.String("path", db.info.Path))

	if db.boltOptions == nil {
		db.boltOptions = bbolt.DefaultOptions
	}
	db.boltOptions.ReadOnly = readOnly
	db.readOnly = readOnly

	db.boltDB, err = bbolt.Open(db.info.Path, db.info.Permission, db.boltOptions)
	if err != nil {
		return fmt.Errorf("can't open boltDB database: %w", err)
	}

	db.log.Debug("opened boltDB instance for Metabase", zap.Bool("read-only", readOnly))

	return db.boltDB.View(func(tx *bbolt.Tx) error {
		db.initialized = tx.Bucket(infoBucket) != nil
		return nil
	})
}

// Init checks the version of the metabase and writes it into the blank one.
//
// Does nothing except version check if metabase has already been initialized.
// To roll back the database to its initial state, use Reset.
func (db *DB) Init() error {
	if db.readOnly {
		return db.boltDB.View(func(tx *bbolt.Tx) error {
			return checkVersion(tx, true)
		})
	}

	return db.boltDB.Update(func(tx *bbolt.Tx) error {
		if err := checkVersion(tx, db.initialized); err != nil {
			return err
		}

		db.initialized = true

		return nil
	})
}

// Reset resets metabase. Works similar to Init but drops all stored values
// regardless of their version.
func (db *DB) Reset() error {
	return db.boltDB.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(infoBucket) != nil {
			if err := tx.DeleteBucket(infoBucket); err != nil {
				return fmt.Errorf("could not drop bucket: %w", err)
			}
		}

		db.initialized = true

		return updateVersion(tx, version)
	})
}

// Initialized reports whether the metabase contained data when it was opened
// or has been initialized since.
func (db *DB) Initialized() bool {
	return db.initialized
}

// Close closes boltDB instance.
func (db *DB) Close() error {
	if db.boltDB == nil {
		return nil
	}

	err := db.boltDB.Close()
	db.boltDB = nil

	return err
}
