package engine

import (
	"sync"

	"github.com/Determinant/cordwood/pkg/local_object_storage/cowarray"
	"github.com/Determinant/cordwood/pkg/local_object_storage/durable"
	"github.com/Determinant/cordwood/pkg/local_object_storage/linear"
	meta "github.com/Determinant/cordwood/pkg/local_object_storage/metabase"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"github.com/Determinant/cordwood/pkg/util"
	"go.uber.org/zap"
)

// DataDir is a name of the subdirectory keeping backing files of the space.
const DataDir = "data"

// StorageEngine keeps a single persistent array in the storage directory.
//
// Directory layout:
//
//	<path>/meta.db       superblock (format version, instance ID, array root)
//	<path>/data/*.fw     backing files of the object store
type StorageEngine struct {
	*cfg

	mtx *sync.RWMutex

	dir     *durable.Dir
	dataDir *durable.Dir
	outcome durable.Outcome

	metabase *meta.DB
	pool     util.WorkerPool
	space    *linear.Space
	store    *objstore.Compact[cowarray.Node]
	array    *cowarray.Array

	id   []byte
	root objstore.Address
}

// Option represents StorageEngine's constructor option.
type Option func(*cfg)

type cfg struct {
	log *zap.Logger

	metrics objstore.Metrics

	path     string
	truncate bool

	fileSize      uint64
	capacity      uint64
	pageCacheSize int
	objCacheSize  int
	noSync        bool
	flushPoolSize int
}

const defaultFlushPoolSize = 4

func defaultCfg() *cfg {
	return &cfg{
		log: zap.L(),

		fileSize:      linear.DefaultFileSize,
		pageCacheSize: linear.DefaultPageCacheSize,
		objCacheSize:  objstore.DefaultCacheSize,
		flushPoolSize: defaultFlushPoolSize,
	}
}

// New creates and returns new StorageEngine instance. It must be opened with
// Open and initialized with Init before use.
func New(opts ...Option) *StorageEngine {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	return &StorageEngine{
		cfg: c,
		mtx: new(sync.RWMutex),
	}
}

// WithLogger returns option to set StorageEngine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// WithMetrics returns option to collect object store metrics.
func WithMetrics(m objstore.Metrics) Option {
	return func(c *cfg) {
		c.metrics = m
	}
}

// WithPath returns option to set path to the storage directory.
func WithPath(path string) Option {
	return func(c *cfg) {
		c.path = path
	}
}

// WithTruncate returns option to remove the storage directory contents
// on Open.
func WithTruncate(truncate bool) Option {
	return func(c *cfg) {
		c.truncate = truncate
	}
}

// WithFileSize returns option to set size of every backing file.
// It must be a positive multiple of linear.PageSize.
func WithFileSize(sz uint64) Option {
	return func(c *cfg) {
		if sz != 0 {
			c.fileSize = sz
		}
	}
}

// WithCapacity returns option to limit the size of the object store.
// Zero means no limit.
func WithCapacity(sz uint64) Option {
	return func(c *cfg) {
		c.capacity = sz
	}
}

// WithPageCacheSize returns option to set the number of clean pages kept
// in memory.
func WithPageCacheSize(n int) Option {
	return func(c *cfg) {
		c.pageCacheSize = n
	}
}

// WithObjectCacheSize returns option to set the number of decoded records
// kept in memory.
func WithObjectCacheSize(n int) Option {
	return func(c *cfg) {
		c.objCacheSize = n
	}
}

// WithNoSync returns option to skip fsync on Commit.
func WithNoSync(noSync bool) Option {
	return func(c *cfg) {
		c.noSync = noSync
	}
}

// WithFlushPoolSize returns option to specify the number of routines writing
// dirty pages on Commit. Values less than 2 make Commit write pages
// sequentially.
func WithFlushPoolSize(sz int) Option {
	return func(c *cfg) {
		c.flushPoolSize = sz
	}
}
