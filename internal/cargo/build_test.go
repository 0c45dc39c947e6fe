package cargo

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	stdout, stderr string
	err            error

	dir  string
	name string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	f.dir, f.name, f.args = dir, name, args
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestBuildArgs(t *testing.T) {
	app := Target{Name: "game", Kind: KindApp}
	ex := Target{Name: "demo", Kind: KindExample}

	assert.Equal(t,
		[]string{"build", "--bin", "game", "--message-format=json"},
		BuildArgs(app, "debug", nil))
	assert.Equal(t,
		[]string{"build", "--example", "demo", "--features", "a,b", "--release", "--message-format=json"},
		BuildArgs(ex, "release", []string{"a", "b"}))
}

func TestParseBuildOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   BuildState
	}{
		{
			name:   "fresh",
			output: `{"reason":"compiler-artifact","target":{"name":"game"},"fresh":true}`,
			want:   BuildFresh,
		},
		{
			name:   "rebuilt",
			output: `{"reason":"compiler-artifact","target":{"name":"game"},"fresh":false}`,
			want:   BuildRebuilt,
		},
		{
			name:   "fresh field absent",
			output: `{"reason":"compiler-artifact","target":{"name":"game"}}`,
			want:   BuildRebuilt,
		},
		{
			name:   "fresh not a bool",
			output: `{"reason":"compiler-artifact","target":{"name":"game"},"fresh":"yes"}`,
			want:   BuildRebuilt,
		},
		{
			name:   "fresh null",
			output: `{"reason":"compiler-artifact","target":{"name":"game"},"fresh":null}`,
			want:   BuildRebuilt,
		},
		{
			name: "first matching event decides",
			output: strings.Join([]string{
				`{"reason":"compiler-artifact","target":{"name":"serde"},"fresh":false}`,
				`not json at all`,
				`{"reason":"compiler-artifact","target":{"name":"game"},"fresh":true}`,
				`{"reason":"compiler-artifact","target":{"name":"game"},"fresh":false}`,
				`{"reason":"build-finished","success":true}`,
			}, "\n"),
			want: BuildFresh,
		},
		{
			name:   "no matching event",
			output: `{"reason":"build-finished","success":true}`,
			want:   BuildNotFound,
		},
		{
			name:   "empty",
			output: "",
			want:   BuildNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBuildOutput([]byte(tt.output), "game"))
		})
	}
}

func TestEnsureBuiltSuccess(t *testing.T) {
	runner := &fakeRunner{stdout: `{"target":{"name":"demo"},"fresh":false}`}
	b := &Builder{Runner: runner, Logger: quietLogger()}
	target := Target{Name: "demo", Kind: KindExample, ManifestPath: "/ws/crates/tools/Cargo.toml"}

	state, err := b.EnsureBuilt(context.Background(), target, "release", []string{"dev"})
	require.NoError(t, err)
	assert.Equal(t, BuildRebuilt, state)
	assert.Equal(t, "/ws/crates/tools", runner.dir)
	assert.Equal(t, "cargo", runner.name)
	assert.Contains(t, runner.args, "--release")
	assert.Contains(t, runner.args, "dev")
}

func TestEnsureBuiltFailure(t *testing.T) {
	runner := &fakeRunner{stderr: "error[E0425]: cannot find value\n", err: errors.New("exit status 101")}
	b := &Builder{Runner: runner, Logger: quietLogger()}
	target := Target{Name: "game", Kind: KindApp, ManifestPath: "/ws/game/Cargo.toml"}

	_, err := b.EnsureBuilt(context.Background(), target, "debug", nil)
	require.Error(t, err)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "game", be.Name)
	assert.Equal(t, "debug", be.Profile)
	assert.Equal(t, "/ws/game", be.Dir)
	assert.Equal(t, -1, be.ExitCode)
	assert.Contains(t, be.Stderr, "E0425")
}

func TestEnsureBuiltExitCode(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	b := &Builder{Tool: "sh", Logger: quietLogger()}
	// sh receives cargo's arguments; "build" is not a script so sh exits non-zero.
	target := Target{Name: "game", Kind: KindApp, ManifestPath: t.TempDir() + "/Cargo.toml"}

	_, err := b.EnsureBuilt(context.Background(), target, "debug", nil)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Greater(t, be.ExitCode, 0)
	assert.Contains(t, be.Error(), "exit code")
}

func TestBuildStateString(t *testing.T) {
	assert.Equal(t, "fresh", BuildFresh.String())
	assert.Equal(t, "rebuilt", BuildRebuilt.String())
	assert.Equal(t, "not-found", BuildNotFound.String())
}
