package doctor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTools(t *testing.T, installed map[string]string) {
	t.Helper()
	origVersion, origLook := versionFunc, lookPath
	t.Cleanup(func() { versionFunc, lookPath = origVersion, origLook })

	versionFunc = func(tool string) (string, error) {
		if v, ok := installed[tool]; ok {
			return v, nil
		}
		return "", errors.New("not found")
	}
	lookPath = func(tool string) (string, error) {
		if _, ok := installed[tool]; ok {
			return "/usr/local/bin/" + tool, nil
		}
		return "", errors.New("not found")
	}
}

func TestDiagnoseHealthy(t *testing.T) {
	stubTools(t, map[string]string{"cargo": "cargo 1.82.0", "rustc": "rustc 1.82.0"})
	root := t.TempDir()

	d := Diagnose([]string{root}, filepath.Join(t.TempDir(), "logs"))
	assert.True(t, d.Healthy, "issues: %v", d.Issues)
	require.Len(t, d.Tools, 2)
	assert.Equal(t, "cargo 1.82.0", d.Tools[0].Version)
	assert.Equal(t, "/usr/local/bin/rustc", d.Tools[1].Path)
}

func TestDiagnoseProblems(t *testing.T) {
	stubTools(t, map[string]string{"rustc": "rustc 1.82.0"})

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	d := Diagnose([]string{filepath.Join(t.TempDir(), "missing")}, filepath.Join(file, "logs"))
	assert.False(t, d.Healthy)
	require.Len(t, d.Issues, 3)
	assert.Contains(t, d.Issues[0], "cargo is not installed")
	assert.Contains(t, d.Issues[1], "is not a directory")
	assert.Contains(t, d.Issues[2], "not writable")
}

func TestPortFromEnv(t *testing.T) {
	tests := []struct {
		env  []string
		want uint16
		ok   bool
	}{
		{[]string{"HOME=/root", "BRP_EXTRAS_PORT=15703"}, 15703, true},
		{[]string{"BRP_EXTRAS_PORT=0"}, 0, false},
		{[]string{"BRP_EXTRAS_PORT=99999"}, 0, false},
		{[]string{"BRP_EXTRAS_PORTS=1"}, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := portFromEnv(tt.env)
		assert.Equal(t, tt.ok, ok, "%v", tt.env)
		assert.Equal(t, tt.want, got, "%v", tt.env)
	}
}

func TestIsAlive(t *testing.T) {
	assert.True(t, IsAlive(os.Getpid()))
}

func TestHost(t *testing.T) {
	h := Host()
	assert.Equal(t, runtime.GOOS, h.OS)
	assert.Positive(t, h.CPUs)
}

func TestInstancesFindsLaunchedChild(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("process environments are read from /proc")
	}
	child := exec.Command("sleep", "30")
	child.Env = append(os.Environ(), "BRP_EXTRAS_PORT=40123")
	require.NoError(t, child.Start())
	t.Cleanup(func() {
		_ = child.Process.Kill()
		_ = child.Wait()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	found, err := Instances(ctx)
	require.NoError(t, err)

	var match *Instance
	for i := range found {
		if int(found[i].PID) == child.Process.Pid {
			match = &found[i]
		}
	}
	require.NotNil(t, match, "child with the port variable is listed")
	assert.Equal(t, uint16(40123), match.Port)
	assert.Equal(t, "sleep", match.Name)
}
