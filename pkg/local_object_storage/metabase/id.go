package meta

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"go.etcd.io/bbolt"
)

// ReadID reads instance ID from metabase. Returns nil if the ID has not
// been written yet.
func (db *DB) ReadID() ([]byte, error) {
	var id []byte

	err := db.boltDB.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(infoBucket); b != nil {
			id = bytes.Clone(b.Get(idKey))
		}
		return nil
	})

	return id, err
}

// WriteID writes instance ID to metabase.
func (db *DB) WriteID(id []byte) error {
	return db.put(idKey, id)
}

// ArrayRoot returns the stored root address of the array. The second value
// is false if no root has been stored.
func (db *DB) ArrayRoot() (objstore.Address, bool, error) {
	var data []byte

	err := db.boltDB.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(infoBucket); b != nil {
			data = bytes.Clone(b.Get(arrayRootKey))
		}
		return nil
	})
	if err != nil {
		return objstore.Null, false, err
	}

	switch len(data) {
	case 0:
		return objstore.Null, false, nil
	case 8:
		return objstore.Address(binary.LittleEndian.Uint64(data)), true, nil
	default:
		return objstore.Null, false, fmt.Errorf("%w: array root of %d bytes", ErrDegraded, len(data))
	}
}

// SetArrayRoot stores the root address of the array.
func (db *DB) SetArrayRoot(addr objstore.Address) error {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(addr))

	return db.put(arrayRootKey, data)
}

func (db *DB) put(key, value []byte) error {
	return db.boltDB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(infoBucket)
		if err != nil {
			return fmt.Errorf("can't create auxiliary bucket: %w", err)
		}
		return b.Put(key, value)
	})
}
