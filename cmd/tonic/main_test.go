package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tonic "github.com/nmichlo/tonic-config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCheck(t *testing.T) {
	good := writeFile(t, "good.toml", "\"*.seed\" = 1\n\"@train.data\" = \"loader\"\n[train]\nlr = 0.1\n")
	bad := writeFile(t, "bad.toml", "lr = 1\n\"train.type\" = 2\n\"@train.data\" = 3\n")

	out, err := run(t, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "3 keys")

	_, err = run(t, "check", good, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, tonic.ErrInvalidKey)
	assert.ErrorIs(t, err, tonic.ErrNotConfigurable)
	assert.Contains(t, err.Error(), bad)

	_, err = run(t, "check", filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, tonic.ErrConfigNotFound)

	_, err = run(t, "check")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	path := writeFile(t, "show.toml", "\"*.seed\" = 1\n[train]\nlr = 0.1\n")

	out, err := run(t, "show", "--no-color", path, "--set", "train.epochs=3", "--set", "@train.data=loader")
	require.NoError(t, err)
	assert.Equal(t, `{
  "*.seed": 1,
  "@train.data": "loader",
  "train.epochs": 3,
  "train.lr": 0.1,
}
`, out)

	_, err = run(t, "show", path, "--set", "nonamespace=1")
	assert.ErrorIs(t, err, tonic.ErrInvalidKey)
}

func TestConvert(t *testing.T) {
	in := writeFile(t, "in.toml", "[train]\nlr = 0.5\nepochs = 2\n")

	t.Run("ToFile", func(t *testing.T) {
		outPath := filepath.Join(t.TempDir(), "out.yaml")
		out, err := run(t, "convert", in, outPath)
		require.NoError(t, err)
		assert.Contains(t, out, "wrote 2 keys")

		flat, err := tonic.LoadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, tonic.FlatConfig{"train.lr": 0.5, "train.epochs": int64(2)}, flat)
	})

	t.Run("ToStdout", func(t *testing.T) {
		out, err := run(t, "convert", in, "--format", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"train.epochs": 2, "train.lr": 0.5}`, out)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := run(t, "convert", in, "-f", "ini")
		assert.ErrorIs(t, err, tonic.ErrUnsupportedFormat)
	})
}
