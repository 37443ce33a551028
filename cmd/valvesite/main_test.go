package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/valvesite/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalogList(t *testing.T) {
	out, err := execute(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "/ball-valves")
	assert.Contains(t, out, "categories,")
}

func TestCatalogShow(t *testing.T) {
	_, err := execute(t, "catalog", "show", "no-such-category")
	require.Error(t, err)

	_, err = execute(t, "catalog", "show", "ball-valves", "no-such-product")
	require.Error(t, err)

	out, err := execute(t, "catalog", "show", "ball-valves")
	require.NoError(t, err)
	assert.Contains(t, out, "/products/ball-valves/")
}

func TestSitemapCommand(t *testing.T) {
	out, err := execute(t, "sitemap")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "/products/ball-valves</loc>")
}

func TestSampleAndInspectModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.glb")

	_, err := execute(t, "sample-model", path)
	require.NoError(t, err)

	out, err := execute(t, "inspect-model", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 meshes")
	assert.Contains(t, out, "36 triangles")
	assert.Contains(t, out, "lever")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "valvesite.yaml")
	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalog:")
	assert.Contains(t, string(data), "viewer:")

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	t.Setenv("APPDATA", home)

	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(config.ConfigDir(), "config.yaml"))
	assert.NoError(t, err)
}
