package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/launch"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&logs)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BRPLAUNCH_LOG_DIR", filepath.Join(dir, "logs"))
	return dir
}

func TestListJSON(t *testing.T) {
	dir := isolate(t)
	pkg := filepath.Join(dir, "game")
	require.NoError(t, os.MkdirAll(filepath.Join(pkg, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "Cargo.toml"),
		[]byte("[package]\nname = \"game\"\n\n[dependencies]\nbevy = \"0.14\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "src", "main.rs"), []byte("fn main() {}\n"), 0o644))

	out, err := execute(t, "list", "apps", "--root", dir, "-o", "json")
	require.NoError(t, err)

	var targets []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &targets), out)
	require.Len(t, targets, 1)
	assert.Equal(t, "game", targets[0]["name"])
	assert.Equal(t, "app", targets[0]["target_type"])
	assert.Equal(t, "game", targets[0]["relative_path"])
}

func TestLaunchUnknownTargetJSON(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "launch", "app", "missing", "--root", dir, "--output", "json")
	require.ErrorIs(t, err, errReported)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	assert.Equal(t, "NO_TARGETS_FOUND", doc["error"]["code"])
	assert.Equal(t, "missing", doc["error"]["target_name"])
}

func TestInitWritesConfig(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".brplaunch.yaml"))

	_, err = execute(t, "init")
	assert.ErrorContains(t, err, "already exists")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}

func TestLogsListAndClean(t *testing.T) {
	dir := isolate(t)
	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	gameLog := filepath.Join(logDir, launch.LogFileName(cargo.KindApp, "game", "debug", 15702))
	demoLog := filepath.Join(logDir, launch.LogFileName(cargo.KindExample, "demo", "release", 15800))
	require.NoError(t, os.WriteFile(gameLog, []byte("game output\n"), 0o644))
	require.NoError(t, os.WriteFile(demoLog, []byte("demo output\n"), 0o644))

	out, err := execute(t, "logs", "list", "game", "-o", "json")
	require.NoError(t, err)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &logs), out)
	require.Len(t, logs, 1)
	assert.Equal(t, "game", logs[0]["target_name"])
	assert.EqualValues(t, 15702, logs[0]["port"])

	out, err = execute(t, "logs", "clean", "game", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 log file(s)")
	assert.NoFileExists(t, gameLog)
	assert.FileExists(t, demoLog)
}
