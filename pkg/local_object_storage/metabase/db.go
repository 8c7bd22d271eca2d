package meta

import (
	"io/fs"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// DB is a superblock of the storage directory. It keeps the format version,
// the instance identifier and the root address of the array.
type DB struct {
	*cfg

	boltDB *bbolt.DB

	readOnly    bool
	initialized bool
}

// Option is an option of DB constructor.
type Option func(*cfg)

type cfg struct {
	boltOptions *bbolt.Options

	info Info

	log *zap.Logger
}

// FileName is a default name of the database file in the storage directory.
const FileName = "meta.db"

func defaultCfg() *cfg {
	return &cfg{
		info: Info{
			Permission: 0o600,
		},
		boltOptions: &bbolt.Options{
			Timeout: 100 * time.Millisecond,
		},
		log: zap.L(),
	}
}

// New creates and returns new DB instance. The database must be opened
// with Open and initialized with Init before use.
func New(opts ...Option) *DB {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	return &DB{
		cfg: c,
	}
}

// WithPath returns option to set system path to the database file.
func WithPath(path string) Option {
	return func(c *cfg) {
		c.info.Path = path
	}
}

// WithPermissions returns option to specify permission bits
// of the database file.
func WithPermissions(perm fs.FileMode) Option {
	return func(c *cfg) {
		c.info.Permission = perm
	}
}

// WithBoltDBOptions returns option to specify BoltDB options.
func WithBoltDBOptions(opts *bbolt.Options) Option {
	return func(c *cfg) {
		c.boltOptions = opts
	}
}

// WithLogger returns option to set logger of DB.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "Metabase"))
	}
}
