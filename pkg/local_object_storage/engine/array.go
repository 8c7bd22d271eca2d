package engine

import (
	"fmt"
	"io"

	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"go.uber.org/zap"
)

func (e *StorageEngine) checkInit() error {
	if e.array == nil || e.root == objstore.Null {
		return ErrNotInitialized
	}
	return nil
}

// ArraySet stores value at idx of the array. Setting the index beyond the end
// extends the array with zeros. The change becomes durable on Commit.
//
// Record caches are updated on reads, so all array operations are exclusive.
func (e *StorageEngine) ArraySet(idx, value uint64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.checkInit(); err != nil {
		return err
	}

	return e.array.Set(e.root, idx, value)
}

// ArrayGet returns value at idx of the array.
//
// Returns an error wrapping cowarray.ErrOutOfBounds if idx is not less than
// the array length.
func (e *StorageEngine) ArrayGet(idx uint64) (uint64, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.checkInit(); err != nil {
		return 0, err
	}

	return e.array.Get(e.root, idx)
}

// ArrayLen returns the array length.
func (e *StorageEngine) ArrayLen() (uint64, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.checkInit(); err != nil {
		return 0, err
	}

	return e.array.Len(e.root)
}

// ArrayDump writes the array to w as "[v0, v1, ...]" line.
func (e *StorageEngine) ArrayDump(w io.Writer) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.checkInit(); err != nil {
		return err
	}

	return e.array.Dump(e.root, w)
}

// Commit makes all changes made so far durable.
func (e *StorageEngine) Commit() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.checkInit(); err != nil {
		return err
	}

	return e.commit()
}

func (e *StorageEngine) commit() error {
	flushed, err := e.array.FlushDirty()
	if err != nil {
		return fmt.Errorf("could not commit: %w", err)
	}

	e.log.Debug("committed", zap.Bool("flushed", flushed))

	return nil
}
