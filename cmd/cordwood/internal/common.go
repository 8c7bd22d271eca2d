package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Determinant/cordwood/cmd/cordwood/config"
	engineconfig "github.com/Determinant/cordwood/cmd/cordwood/config/engine"
	loggerconfig "github.com/Determinant/cordwood/cmd/cordwood/config/logger"
	"github.com/Determinant/cordwood/misc"
	"github.com/Determinant/cordwood/pkg/local_object_storage/engine"
	"github.com/Determinant/cordwood/pkg/metrics"
	"github.com/Determinant/cordwood/pkg/util/logger"
	"github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	flagConfig      = "config"
	flagConfigShort = "c"
	flagConfigUsage = "Path to the config file (default is $HOME/.config/cordwood/config.yaml)"

	flagPath      = "path"
	flagPathShort = "p"
	flagPathUsage = "Path to the storage directory, overrides engine.path"
)

// DefaultConfigFile is a config file location used when no --config is
// passed. Missing default file is not an error.
const DefaultConfigFile = "~/.config/cordwood/config.yaml"

// AddPersistentFlags adds flags common for all commands.
func AddPersistentFlags(cmd *cobra.Command) {
	ff := cmd.PersistentFlags()

	ff.StringP(flagConfig, flagConfigShort, "", flagConfigUsage)
	ff.StringP(flagPath, flagPathShort, "", flagPathUsage)
}

// ReadConfig builds configuration from the file passed with --config (or the
// default one if it exists), ENV and the --path flag.
func ReadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString(flagConfig)

	if file == "" {
		def, err := homedir.Expand(DefaultConfigFile)
		if err == nil {
			if _, err := os.Stat(def); err == nil {
				file = def
			}
		}
	}

	var opts []config.Option
	if file != "" {
		opts = append(opts, config.WithConfigFile(file))
	}

	c, err := config.New(opts...)
	if err != nil {
		return nil, err
	}

	if p, _ := cmd.Flags().GetString(flagPath); p != "" {
		c.Sub("engine").Set("path", p)
	}

	return c, nil
}

// StoragePath returns path to the storage directory from c.
func StoragePath(c *config.Config) (string, error) {
	p := engineconfig.Path(c)
	if p == "" {
		return "", errors.New("storage path is not set, use --path flag or engine.path config value")
	}

	p, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("could not expand storage path: %w", err)
	}

	return filepath.Clean(p), nil
}

// NewLogger constructs logger from the logger section of c.
func NewLogger(c *config.Config) (*zap.Logger, error) {
	var prm logger.Prm

	if err := prm.SetLevelString(loggerconfig.Level(c)); err != nil {
		return nil, err
	}
	if err := prm.SetEncoding(loggerconfig.Encoding(c)); err != nil {
		return nil, err
	}

	return logger.NewLogger(&prm)
}

// Storage is an opened storage engine with its metrics.
type Storage struct {
	*engine.StorageEngine

	Metrics prometheus.Gatherer
}

// OpenStorage reads configuration and returns opened and initialized
// storage engine. The caller must Close it.
func OpenStorage(cmd *cobra.Command) (*Storage, error) {
	c, err := ReadConfig(cmd)
	if err != nil {
		return nil, err
	}

	path, err := StoragePath(c)
	if err != nil {
		return nil, err
	}

	log, err := NewLogger(c)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()

	e := engine.New(
		engine.WithLogger(log),
		engine.WithMetrics(metrics.NewStorageMetrics(misc.Version, reg)),
		engine.WithPath(path),
		engine.WithTruncate(engineconfig.Truncate(c)),
		engine.WithFileSize(engineconfig.FileSize(c)),
		engine.WithCapacity(engineconfig.Capacity(c)),
		engine.WithPageCacheSize(engineconfig.PageCacheSize(c)),
		engine.WithObjectCacheSize(engineconfig.ObjectCacheSize(c)),
		engine.WithNoSync(engineconfig.NoSync(c)),
		engine.WithFlushPoolSize(engineconfig.FlushPoolSize(c)),
	)

	if err := e.Open(); err != nil {
		return nil, fmt.Errorf("could not open storage: %w", err)
	}

	if err := e.Init(); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("could not initialize storage: %w", err)
	}

	return &Storage{
		StorageEngine: e,
		Metrics:       reg,
	}, nil
}
