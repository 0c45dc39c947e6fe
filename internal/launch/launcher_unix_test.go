//go:build !windows

package launch

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/ports"
)

type fakeBuilder struct {
	state cargo.BuildState
	err   error
	calls int
}

func (b *fakeBuilder) EnsureBuilt(context.Context, cargo.Target, string, []string) (cargo.BuildState, error) {
	b.calls++
	return b.state, b.err
}

// scriptTarget lays out a fake workspace whose debug binary is a shell
// script printing the port it was given.
func scriptTarget(t *testing.T, name, script string) cargo.Target {
	t.Helper()
	ws := t.TempDir()
	pkg := filepath.Join(ws, "crates", name)
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, cargo.ManifestFile), []byte("[package]\nname = \""+name+"\"\n"), 0o644))

	tg := cargo.Target{
		Name:          name,
		Kind:          cargo.KindApp,
		ManifestPath:  filepath.Join(pkg, cargo.ManifestFile),
		WorkspaceRoot: ws,
		PackageName:   name,
		RelativePath:  "crates/" + name,
	}
	if script != "" {
		bin := tg.BinaryPath(ProfileDebug)
		require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0o755))
		require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"+script), 0o755))
	}
	return tg
}

func newTestLauncher(t *testing.T, targets ...cargo.Target) (*Launcher, *fakeBuilder) {
	b := &fakeBuilder{state: cargo.BuildFresh}
	return &Launcher{
		Finder:  &fakeFinder{targets: targets},
		Builder: b,
		LogDir:  t.TempDir(),
		Logger:  log.New(io.Discard),
	}, b
}

func TestLaunchThreeInstances(t *testing.T) {
	tg := scriptTarget(t, "game", "echo \"listening on $BRP_EXTRAS_PORT\"\n")
	l, b := newTestLauncher(t, tg)

	cfg := NewConfig("game", cargo.KindApp)
	cfg.InstanceCount = 3

	res, err := l.Launch(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, b.calls, "build runs once per launch")

	require.Len(t, res.Instances, 3)
	assert.Equal(t, []uint16{15702, 15703, 15704}, res.Ports())
	assert.Contains(t, res.Message, "15702-15704")
	assert.Equal(t, "Successfully launched 3 instance(s) of game on ports 15702-15704", res.Message)
	assert.Equal(t, tg.BinaryPath(ProfileDebug), res.BinaryPath)
	assert.Empty(t, res.PackageName)
	assert.Equal(t, tg.ManifestDir(), res.WorkingDirectory)
	assert.Equal(t, filepath.Base(tg.WorkspaceRoot), res.Workspace)
	assert.Equal(t, "fresh", res.BuildState)
	assert.Nil(t, res.DuplicatePaths)
	_, err = uuid.Parse(res.LaunchID)
	assert.NoError(t, err, "launch id is a uuid")
	assert.Equal(t, cfg.Port, uint16(15702), "template config is not modified")

	for _, inst := range res.Instances {
		assert.Positive(t, inst.PID)
		assert.Equal(t, filepath.Join(l.LogDir, LogFileName(cargo.KindApp, "game", "debug", inst.Port)), inst.LogFile)

		want := "listening on " + itoa(inst.Port)
		require.Eventually(t, func() bool {
			data, err := os.ReadFile(inst.LogFile)
			return err == nil && strings.Contains(string(data), want)
		}, 5*time.Second, 20*time.Millisecond, "log %s never showed %q", inst.LogFile, want)

		data, err := os.ReadFile(inst.LogFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Port: "+itoa(inst.Port))
		assert.Contains(t, string(data), "Working directory: "+tg.ManifestDir())
		assert.Contains(t, string(data), "Launch: "+res.LaunchID)
	}
}

func TestLaunchExampleDecoratesResult(t *testing.T) {
	tg := scriptTarget(t, "demo", "")
	tg.Kind = cargo.KindExample
	tg.PackageName = "demos"

	l, _ := newTestLauncher(t, tg)
	// sh -c ignores the cargo arguments appended after the script.
	l.strategy = shellExample{script: "echo \"port=$BRP_EXTRAS_PORT\""}

	res, err := l.Launch(context.Background(), NewConfig("demo", cargo.KindExample), nil)
	require.NoError(t, err)
	assert.Equal(t, "demos", res.PackageName)
	assert.Empty(t, res.BinaryPath)

	logFile := res.Instances[0].LogFile
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logFile)
		return err == nil && strings.Contains(string(data), "port=15702")
	}, 5*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Package: demos\n")
}

// shellExample is the example strategy with the command swapped for sh.
type shellExample struct {
	exampleStrategy
	script string
}

func (s shellExample) command(Config, cargo.Target) *exec.Cmd {
	return exec.Command("/bin/sh", "-c", s.script)
}

func TestLaunchMissingBinary(t *testing.T) {
	tg := scriptTarget(t, "game", "")
	l, _ := newTestLauncher(t, tg)

	_, err := l.Launch(context.Background(), NewConfig("game", cargo.KindApp), nil)
	le, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeProcessFailed, le.Code)
	assert.NotContains(t, le.Context, "spawned_pids")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// brokenAfterFirst starts the binary for the first port and a missing
// executable for every later one.
type brokenAfterFirst struct {
	appStrategy
	first   uint16
	missing string
}

func (s brokenAfterFirst) command(cfg Config, t cargo.Target) *exec.Cmd {
	if cfg.Port == s.first {
		return s.appStrategy.command(cfg, t)
	}
	return exec.Command(s.missing)
}

func killGroup(t *testing.T, pid int) {
	t.Cleanup(func() { _ = syscall.Kill(-pid, syscall.SIGKILL) })
}

func TestLaunchPartialFailureKeepsEarlierInstances(t *testing.T) {
	tg := scriptTarget(t, "game", "exec sleep 30\n")
	l, _ := newTestLauncher(t, tg)
	l.strategy = brokenAfterFirst{first: ports.DefaultPort, missing: filepath.Join(t.TempDir(), "missing")}

	cfg := NewConfig("game", cargo.KindApp)
	cfg.InstanceCount = 3

	res, err := l.Launch(context.Background(), cfg, nil)
	assert.Nil(t, res)
	le, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeProcessFailed, le.Code)
	assert.Equal(t, uint16(15703), le.Context["port"], "second instance is the one that failed")

	pids, ok := le.Context["spawned_pids"].([]int)
	require.True(t, ok, "spawned_pids lists the instances already running")
	require.Len(t, pids, 1)
	killGroup(t, pids[0])
	assert.NoError(t, syscall.Kill(pids[0], 0), "first instance is not rolled back")

	logs, err := ListLogs(l.LogDir, "")
	require.NoError(t, err)
	var logPorts []int
	for _, lf := range logs {
		logPorts = append(logPorts, lf.Port)
	}
	assert.NotContains(t, logPorts, 15704, "loop stops at the first failure")
}

func TestSpawnedInstanceHasOwnProcessGroup(t *testing.T) {
	tg := scriptTarget(t, "game", "exec sleep 30\n")
	l, _ := newTestLauncher(t, tg)

	res, err := l.Launch(context.Background(), NewConfig("game", cargo.KindApp), nil)
	require.NoError(t, err)
	pid := res.Instances[0].PID
	killGroup(t, pid)

	pgid, err := syscall.Getpgid(pid)
	require.NoError(t, err)
	assert.Equal(t, pid, pgid, "child leads its own group")
	assert.NotEqual(t, syscall.Getpgrp(), pgid)
}

func TestLaunchBuildFailureStopsBeforeSpawn(t *testing.T) {
	tg := scriptTarget(t, "game", "echo hi\n")
	l, b := newTestLauncher(t, tg)
	b.err = &cargo.BuildError{Kind: cargo.KindApp, Name: "game", Profile: "debug", ExitCode: 101, Stderr: "error[E0308]"}

	_, err := l.Launch(context.Background(), NewConfig("game", cargo.KindApp), nil)
	le, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeBuildFailed, le.Code)

	logs, err := ListLogs(l.LogDir, "")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestLaunchPortRangeFailsBeforeSpawn(t *testing.T) {
	tg := scriptTarget(t, "game", "echo hi\n")
	l, _ := newTestLauncher(t, tg)

	cfg := NewConfig("game", cargo.KindApp)
	cfg.Port = 65533
	cfg.InstanceCount = 3

	_, err := l.Launch(context.Background(), cfg, nil)
	le, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodePortRange, le.Code)
	assert.Contains(t, err.Error(), "Port range 65533 to 65535 exceeds maximum valid port 65534")
}

func TestLaunchKeepsResolutionErrors(t *testing.T) {
	a := scriptTarget(t, "demo", "")
	b := scriptTarget(t, "demo", "")
	b.RelativePath = "other/demo"
	l, builder := newTestLauncher(t, a, b)

	_, err := l.Launch(context.Background(), NewConfig("demo", cargo.KindApp), nil)
	var le *Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, CodePathDisambiguation, le.Code)
	assert.Equal(t, []string{"crates/demo", "other/demo"}, le.AvailablePaths)
	assert.Zero(t, builder.calls)
}

func TestLaunchInvalidConfig(t *testing.T) {
	l, _ := newTestLauncher(t)
	cfg := NewConfig("game", cargo.KindApp)
	cfg.InstanceCount = 0
	cfg.Profile = "fast"

	_, err := l.Launch(context.Background(), cfg, nil)
	le, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidConfig, le.Code)
	assert.Contains(t, err.Error(), "instance count must be at least 1")
	assert.Contains(t, err.Error(), `profile must be "debug" or "release"`)
}

func TestDotEnvPassedToChild(t *testing.T) {
	tg := scriptTarget(t, "game", "echo \"greeting=$GREETING port=$BRP_EXTRAS_PORT\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(tg.WorkspaceRoot, ".env"), []byte("GREETING=hello\nBRP_EXTRAS_PORT=1\n"), 0o644))

	l, _ := newTestLauncher(t, tg)
	l.DotEnv = true

	res, err := l.Launch(context.Background(), NewConfig("game", cargo.KindApp), nil)
	require.NoError(t, err)

	logFile := res.Instances[0].LogFile
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logFile)
		return err == nil && strings.Contains(string(data), "greeting=hello port=15702")
	}, 5*time.Second, 20*time.Millisecond)
}

func itoa(p uint16) string {
	return strconv.Itoa(int(p))
}
