package objstore

import (
	"time"

	"go.uber.org/zap"
)

// Option is an option of Compact's constructor.
type Option func(*cfg)

// Metrics collects statistics of the store operations.
type Metrics interface {
	AddMethodDuration(method string, d time.Duration)
	SetUsedSpace(size uint64)
	SetObjectCount(n uint64)
}

type noopMetrics struct{}

func (noopMetrics) AddMethodDuration(string, time.Duration) {}
func (noopMetrics) SetUsedSpace(uint64)                     {}
func (noopMetrics) SetObjectCount(uint64)                   {}

type cfg struct {
	log     *zap.Logger
	metrics Metrics

	// capacity limits the address space, 0 means unlimited.
	capacity uint64

	// cacheSize is a number of decoded objects kept in memory.
	cacheSize int
}

// DefaultCacheSize is a default number of cached decoded objects.
const DefaultCacheSize = 256

func defaultCfg() *cfg {
	return &cfg{
		log:       zap.NewNop(),
		metrics:   noopMetrics{},
		cacheSize: DefaultCacheSize,
	}
}

// WithLogger returns option to specify store's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "ObjectStore"))
	}
}

// WithMetrics returns option to specify store's metrics collector.
func WithMetrics(m Metrics) Option {
	return func(c *cfg) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithCapacity returns option to limit the address space of the store.
// Zero means no limit.
func WithCapacity(sz uint64) Option {
	return func(c *cfg) {
		c.capacity = sz
	}
}

// WithCacheSize returns option to set number of decoded objects kept
// in memory.
func WithCacheSize(n int) Option {
	return func(c *cfg) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}
