package linear

import (
	"github.com/Determinant/cordwood/pkg/util"
	"go.uber.org/zap"
)

// Option is an option of Space's constructor.
type Option func(*cfg)

type cfg struct {
	log *zap.Logger

	// fileSize is a size of every backing file, multiple of PageSize.
	fileSize uint64

	// cacheSize is a number of clean pages kept in memory.
	cacheSize int

	noSync bool

	// flushPool writes dirty pages of different files in parallel.
	flushPool util.WorkerPool
}

const (
	// DefaultFileSize is a default size of a backing file (64 MiB).
	DefaultFileSize = 64 << 20

	// DefaultPageCacheSize is a default number of cached clean pages.
	DefaultPageCacheSize = 1024
)

func defaultCfg() *cfg {
	return &cfg{
		log:       zap.NewNop(),
		fileSize:  DefaultFileSize,
		cacheSize: DefaultPageCacheSize,
		flushPool: util.NewPseudoWorkerPool(),
	}
}

// WithLogger returns option to specify Space's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "LinearSpace"))
	}
}

// WithFileSize returns option to set size of the backing files.
// It must be a positive multiple of PageSize.
func WithFileSize(sz uint64) Option {
	return func(c *cfg) {
		c.fileSize = sz
	}
}

// WithPageCacheSize returns option to set the number of clean pages
// kept in memory.
func WithPageCacheSize(n int) Option {
	return func(c *cfg) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// WithNoSync returns option to skip fsync after flushing dirty pages.
// Only for tests and throwaway data.
func WithNoSync(noSync bool) Option {
	return func(c *cfg) {
		c.noSync = noSync
	}
}

// WithFlushWorkerPool returns option to write dirty pages of different
// files concurrently.
func WithFlushWorkerPool(p util.WorkerPool) Option {
	return func(c *cfg) {
		if p != nil {
			c.flushPool = p
		}
	}
}
