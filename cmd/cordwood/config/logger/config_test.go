package loggerconfig_test

import (
	"testing"

	"github.com/Determinant/cordwood/cmd/cordwood/config"
	loggerconfig "github.com/Determinant/cordwood/cmd/cordwood/config/logger"
	configtest "github.com/Determinant/cordwood/cmd/cordwood/config/test"
	"github.com/stretchr/testify/require"
)

func TestLoggerSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		empty := configtest.EmptyConfig(t)

		require.Equal(t, loggerconfig.LevelDefault, loggerconfig.Level(empty))
		require.Equal(t, loggerconfig.EncodingDefault, loggerconfig.Encoding(empty))
	})

	const path = "../testdata/config"

	fileConfigTest := func(c *config.Config) {
		require.Equal(t, "debug", loggerconfig.Level(c))
		require.Equal(t, "json", loggerconfig.Encoding(c))
	}

	configtest.ForEachFileType(t, path, fileConfigTest)

	t.Run("ENV", func(t *testing.T) {
		configtest.ForEnvFileType(t, path, fileConfigTest)
	})
}
