package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, cfg.SearchRoots)
	assert.Equal(t, "debug", cfg.DefaultProfile)
	assert.Equal(t, uint16(15702), cfg.DefaultPort)
	assert.Equal(t, "bevy", cfg.RequireDependency)
	assert.Equal(t, 10*time.Minute, cfg.BuildTimeout)
	assert.Empty(t, cfg.File)
}

func TestWriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	want := Default()
	want.SearchRoots = []string{"games", "tools"}
	want.DefaultPort = 20000
	want.BuildTimeout = 90 * time.Second
	want.LoadDotEnv = true
	require.NoError(t, Write(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, got.File)
	assert.Equal(t, want.SearchRoots, got.SearchRoots)
	assert.Equal(t, uint16(20000), got.DefaultPort)
	assert.Equal(t, 90*time.Second, got.BuildTimeout)
	assert.True(t, got.LoadDotEnv)
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BRPLAUNCH_DEFAULT_PROFILE", "release")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.DefaultProfile)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("default_profile: fast\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "default_profile must be debug or release")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}
