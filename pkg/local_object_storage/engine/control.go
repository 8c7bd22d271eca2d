package engine

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Determinant/cordwood/pkg/local_object_storage/cowarray"
	"github.com/Determinant/cordwood/pkg/local_object_storage/durable"
	"github.com/Determinant/cordwood/pkg/local_object_storage/linear"
	meta "github.com/Determinant/cordwood/pkg/local_object_storage/metabase"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"github.com/Determinant/cordwood/pkg/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned by the array operations called before Init.
var ErrNotInitialized = errors.New("storage engine is not initialized")

// Open opens all StorageEngine's components. The storage directory is created
// if missing.
func (e *StorageEngine) Open() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if err := e.open(); err != nil {
		_ = e.close()
		return err
	}

	return nil
}

func (e *StorageEngine) open() error {
	var err error

	e.dir, e.outcome, err = durable.Bootstrap(e.path, e.truncate)
	if err != nil {
		return fmt.Errorf("could not bootstrap storage directory %s: %w", e.path, err)
	}

	e.log.Info("storage directory opened",
		zap.String("path", e.path),
		zap.Stringer("outcome", e.outcome),
	)

	e.dataDir, err = durable.TouchDir(DataDir, e.dir)
	if err != nil {
		return fmt.Errorf("could not open data directory: %w", err)
	}

	e.metabase = meta.New(
		meta.WithPath(filepath.Join(e.path, meta.FileName)),
		meta.WithPermissions(durable.FilePerm),
		meta.WithLogger(e.log),
	)

	if err := e.metabase.Open(false); err != nil {
		return fmt.Errorf("could not open metabase: %w", err)
	}

	e.pool, err = util.NewWorkerPool(e.flushPoolSize)
	if err != nil {
		return err
	}

	e.space, err = linear.New(e.dataDir,
		linear.WithLogger(e.log),
		linear.WithFileSize(e.fileSize),
		linear.WithPageCacheSize(e.pageCacheSize),
		linear.WithNoSync(e.noSync),
		linear.WithFlushWorkerPool(e.pool),
	)
	if err != nil {
		return fmt.Errorf("could not open linear space: %w", err)
	}

	e.store, err = objstore.New[cowarray.Node](e.space, cowarray.Decode,
		objstore.WithLogger(e.log),
		objstore.WithMetrics(e.metrics),
		objstore.WithCapacity(e.capacity),
		objstore.WithCacheSize(e.objCacheSize),
	)
	if err != nil {
		return fmt.Errorf("could not open object store: %w", err)
	}

	e.array = cowarray.New(e.store, cowarray.WithLogger(e.log))

	return nil
}

// Init initializes all StorageEngine's components. The array and the
// instance ID are created if the storage has none, otherwise they are loaded.
// Newly created values are committed.
func (e *StorageEngine) Init() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.array == nil {
		return ErrNotInitialized
	}

	if err := e.metabase.Init(); err != nil {
		return fmt.Errorf("could not initialize metabase: %w", err)
	}

	id, err := e.metabase.ReadID()
	if err != nil {
		return fmt.Errorf("could not read instance ID: %w", err)
	}

	if id == nil {
		newID := uuid.New()
		id = newID[:]

		if err := e.metabase.WriteID(id); err != nil {
			return fmt.Errorf("could not write instance ID: %w", err)
		}
	}

	e.id = id

	root, ok, err := e.metabase.ArrayRoot()
	if err != nil {
		return fmt.Errorf("could not read array root: %w", err)
	}

	if ok {
		if _, err := e.array.Len(root); err != nil {
			return fmt.Errorf("could not load array %d: %w", root, err)
		}

		e.root = root

		e.log.Info("array loaded", zap.Uint64("root", uint64(root)))

		return nil
	}

	if e.outcome != durable.Created {
		e.log.Warn("existing storage has no array, creating new one")
	}

	root, err = e.array.Init()
	if err != nil {
		return fmt.Errorf("could not create array: %w", err)
	}

	// records first, then the superblock pointing to them
	if err := e.commit(); err != nil {
		return err
	}

	if err := e.metabase.SetArrayRoot(root); err != nil {
		return fmt.Errorf("could not save array root: %w", err)
	}

	e.root = root

	e.log.Info("array created", zap.Uint64("root", uint64(root)))

	return nil
}

// Close releases all StorageEngine's components. Changes made after the last
// Commit are lost.
func (e *StorageEngine) Close() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.close()
}

func (e *StorageEngine) close() error {
	var errs []error

	closeComponent := func(name string, c interface{ Close() error }) {
		if err := c.Close(); err != nil {
			e.log.Debug("could not close component",
				zap.String("component", name),
				zap.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("could not close %s: %w", name, err))
		}
	}

	if e.space != nil {
		closeComponent("linear space", e.space)
	}
	if e.pool != nil {
		e.pool.Release()
	}
	if e.metabase != nil {
		closeComponent("metabase", e.metabase)
	}
	if e.dataDir != nil {
		closeComponent("data directory", e.dataDir)
	}
	if e.dir != nil {
		closeComponent("storage directory", e.dir)
	}

	e.array, e.store, e.space, e.pool = nil, nil, nil, nil
	e.metabase, e.dataDir, e.dir = nil, nil, nil
	e.id, e.root = nil, objstore.Null

	return errors.Join(errs...)
}
