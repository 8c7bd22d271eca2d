package engine

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/Determinant/cordwood/pkg/local_object_storage/durable"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"github.com/mr-tron/base58"
)

// Info groups the information about StorageEngine.
type Info struct {
	// Path to the storage directory.
	Path string

	// ID is a base58 form of the instance identifier.
	ID string

	// Fresh is set if the storage directory was created on Open.
	Fresh bool

	ArrayRoot   objstore.Address
	ArrayTarget objstore.Address
	ArrayLen    uint64

	// UsedSpace is a size of the object store including freed records.
	UsedSpace uint64

	// Objects is a number of live records.
	Objects uint64
}

// FileInfo describes a backing file of the storage.
type FileInfo struct {
	ID   uint64
	Name string
	Size int64
}

// Info returns information about the StorageEngine.
func (e *StorageEngine) Info() (Info, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.checkInit(); err != nil {
		return Info{}, err
	}

	target, err := e.array.Target(e.root)
	if err != nil {
		return Info{}, err
	}

	n, err := e.array.Len(e.root)
	if err != nil {
		return Info{}, err
	}

	return Info{
		Path:        e.path,
		ID:          base58.Encode(e.id),
		Fresh:       e.outcome == durable.Created,
		ArrayRoot:   e.root,
		ArrayTarget: target,
		ArrayLen:    n,
		UsedSpace:   e.store.UsedSpace(),
		Objects:     e.store.Count(),
	}, nil
}

// ID returns instance identifier. Returns nil before Init.
func (e *StorageEngine) ID() []byte {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	return e.id
}

// Files lists backing files found in the data directory of the storage
// located at path ordered by identifier. Files with unexpected names are
// skipped.
func Files(path string) ([]FileInfo, error) {
	dir := filepath.Join(path, DataDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read data directory: %w", err)
	}

	var res []FileInfo

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		fid, ok := durable.ParseFileName(entry.Name())
		if !ok {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("could not stat %s: %w", entry.Name(), err)
		}

		res = append(res, FileInfo{
			ID:   fid,
			Name: entry.Name(),
			Size: fi.Size(),
		})
	}

	slices.SortFunc(res, func(a, b FileInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return res, nil
}
