package meta

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

// version contains current metabase version.
const version = 1

var (
	infoBucket = []byte("cordwood")

	versionKey   = []byte("version")
	idKey        = []byte("id")
	arrayRootKey = []byte("array_root")
)

func checkVersion(tx *bbolt.Tx, initialized bool) error {
	b := tx.Bucket(infoBucket)
	if b != nil {
		data := b.Get(versionKey)
		if len(data) == 8 {
			stored := binary.LittleEndian.Uint64(data)
			if stored != version {
				return fmt.Errorf("%w: expected=%d, stored=%d", ErrInvalidVersion, version, stored)
			}
		} else if data != nil {
			return fmt.Errorf("%w: version of %d bytes", ErrDegraded, len(data))
		}
	}
	if !initialized { // new database, write version
		return updateVersion(tx, version)
	}
	return nil
}

func updateVersion(tx *bbolt.Tx, version uint64) error {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, version)

	b, err := tx.CreateBucketIfNotExists(infoBucket)
	if err != nil {
		return fmt.Errorf("can't create auxiliary bucket: %w", err)
	}
	return b.Put(versionKey, data)
}
