package cargo

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// BuildState is the outcome of a build for one target.
type BuildState int

const (
	// BuildNotFound means the build succeeded but no event named the target.
	BuildNotFound BuildState = iota
	// BuildFresh means cargo reported the artifact as up to date.
	BuildFresh
	// BuildRebuilt means cargo compiled the artifact.
	BuildRebuilt
)

func (s BuildState) String() string {
	switch s {
	case BuildFresh:
		return "fresh"
	case BuildRebuilt:
		return "rebuilt"
	default:
		return "not-found"
	}
}

// Runner executes an external tool and captures its output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// BuildError reports a failed build with the full invocation context.
type BuildError struct {
	Kind     TargetKind
	Name     string
	Profile  string
	Dir      string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *BuildError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("failed to run cargo build for %s '%s' (profile: %s, dir: %s): %v",
			e.Kind, e.Name, e.Profile, e.Dir, e.Err)
	}
	return fmt.Sprintf("cargo build failed for %s '%s' (profile: %s, dir: %s, exit code %d): %s",
		e.Kind, e.Name, e.Profile, e.Dir, e.ExitCode, strings.TrimSpace(e.Stderr))
}

func (e *BuildError) Unwrap() error { return e.Err }

// Builder runs cargo build for resolved targets.
type Builder struct {
	Runner  Runner
	Logger  *log.Logger
	Timeout time.Duration
	// Tool overrides the build tool executable; empty means "cargo".
	Tool string
}

// BuildArgs returns the cargo build arguments for a target.
func BuildArgs(t Target, profile string, features []string) []string {
	args := []string{"build", t.Kind.CargoFlag(), t.Name}
	if len(features) > 0 {
		args = append(args, "--features", strings.Join(features, ","))
	}
	if profile == "release" {
		args = append(args, "--release")
	}
	return append(args, "--message-format=json")
}

// EnsureBuilt builds the target and blocks until cargo exits.
func (b *Builder) EnsureBuilt(ctx context.Context, t Target, profile string, features []string) (BuildState, error) {
	logger := b.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := b.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	tool := b.Tool
	if tool == "" {
		tool = "cargo"
	}
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	dir := t.ManifestDir()
	args := BuildArgs(t, profile, features)
	logger.Debug("running cargo build", "kind", t.Kind, "target", t.Name, "dir", dir, "args", args)

	stdout, stderr, err := runner.Run(ctx, dir, tool, args...)
	if err != nil {
		be := &BuildError{
			Kind:     t.Kind,
			Name:     t.Name,
			Profile:  profile,
			Dir:      dir,
			Args:     args,
			ExitCode: -1,
			Stderr:   string(stderr),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			be.ExitCode = exitErr.ExitCode()
		}
		return BuildNotFound, be
	}

	state := ParseBuildOutput(stdout, t.Name)
	switch state {
	case BuildNotFound:
		logger.Debug("target not found in build output, assuming it was built", "target", t.Name)
	case BuildFresh:
		logger.Debug("target already up to date", "kind", t.Kind, "target", t.Name)
	case BuildRebuilt:
		logger.Info("target built", "kind", t.Kind, "target", t.Name)
	}
	return state, nil
}

// buildEvent is the subset of a cargo JSON message used for freshness.
type buildEvent struct {
	Target *struct {
		Name string `json:"name"`
	} `json:"target"`
	// Fresh stays raw: only a literal true counts, any other value means rebuilt.
	Fresh json.RawMessage `json:"fresh"`
}

// ParseBuildOutput scans cargo's line-delimited JSON messages. The first
// event naming the target decides the state.
func ParseBuildOutput(stdout []byte, targetName string) BuildState {
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var ev buildEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if ev.Target == nil || ev.Target.Name != targetName {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(ev.Fresh), []byte("true")) {
			return BuildFresh
		}
		return BuildRebuilt
	}
	return BuildNotFound
}
