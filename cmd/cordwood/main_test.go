package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Determinant/cordwood/cmd/internal/cmderr"
	"github.com/Determinant/cordwood/pkg/local_object_storage/cowarray"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer

	command.SetOut(&out)
	command.SetArgs(args)
	t.Cleanup(func() { command.SetArgs(nil) })

	err := command.Execute()

	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	homedir.Reset()

	path := filepath.Join(t.TempDir(), "storage")

	_, err := run(t, "array", "dump")
	require.Error(t, err, "storage path must be required")

	out, err := run(t, "array", "set", "0", "100", "--path", path)
	require.NoError(t, err)
	require.Empty(t, out)

	_, err = run(t, "array", "set", "2", "0x66", "-p", path)
	require.NoError(t, err)

	out, err = run(t, "array", "get", "2", "-p", path)
	require.NoError(t, err)
	require.Equal(t, "102\n", out)

	out, err = run(t, "array", "dump", "-p", path)
	require.NoError(t, err)
	require.Equal(t, "[100, 0, 102]\n", out)

	_, err = run(t, "array", "get", "3", "-p", path)
	require.ErrorIs(t, err, cowarray.ErrOutOfBounds)
	require.Equal(t, cmderr.CodeLogical, cmderr.Code(err))

	_, err = run(t, "array", "set", "1125899906842624", "1", "-p", path)
	require.ErrorIs(t, err, cowarray.ErrOutOfBounds)
	require.Equal(t, cmderr.CodeLogical, cmderr.Code(err))

	out, err = run(t, "array", "dump", "-p", path)
	require.NoError(t, err)
	require.Equal(t, "[100, 0, 102]\n", out)

	_, err = run(t, "array", "set", "x", "1", "-p", path)
	require.Error(t, err)
	require.Equal(t, cmderr.CodeInternal, cmderr.Code(err))

	out, err = run(t, "info", "-p", path)
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))
	require.Equal(t, path, info["path"])
	require.Equal(t, 3, info["array_length"])
	require.Equal(t, false, info["fresh"])
	require.NotEmpty(t, info["id"])
	require.Contains(t, info, "metrics")

	out, err = run(t, "files", "-p", path)
	require.NoError(t, err)
	require.Contains(t, out, "00000000.fw")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	require.Contains(t, out, "Cordwood\nVersion: ")

	require.NoError(t, command.Flags().Set("version", "false"))
}
