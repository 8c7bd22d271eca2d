package configtest

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/Determinant/cordwood/cmd/cordwood/config"
	"github.com/stretchr/testify/require"
)

func fromFile(t testing.TB, path string) *config.Config {
	c, err := config.New(config.WithConfigFile(path))
	require.NoError(t, err)

	return c
}

// ForEachFileType passes configs read from next files:
//   - `<pref>.yaml`;
//   - `<pref>.json`.
func ForEachFileType(t testing.TB, pref string, f func(*config.Config)) {
	for _, ext := range []string{".yaml", ".json"} {
		f(fromFile(t, pref+ext))
	}
}

// ForEnvFileType sets ENV variables listed in `<pref>.env` file in
// `KEY=VALUE` form and passes config built from them.
func ForEnvFileType(t *testing.T, pref string, f func(*config.Config)) {
	file, err := os.Open(pref + ".env")
	require.NoError(t, err)
	defer file.Close()

	s := bufio.NewScanner(file)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		k, v, ok := strings.Cut(line, "=")
		require.True(t, ok, line)

		t.Setenv(k, strings.Trim(v, `"`))
	}
	require.NoError(t, s.Err())

	f(EmptyConfig(t))
}

// EmptyConfig returns config without any values and sections.
func EmptyConfig(t testing.TB) *config.Config {
	c, err := config.New()
	require.NoError(t, err)

	return c
}
