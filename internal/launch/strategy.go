package launch

import (
	"os/exec"
	"strings"

	"github.com/harshul/brplaunch/internal/cargo"
)

// strategy holds the behaviour that differs between apps and examples.
type strategy interface {
	command(cfg Config, t cargo.Target) *exec.Cmd
	// extraLogInfo is written to the log file after the header; empty skips it.
	extraLogInfo(t cargo.Target) string
	decorate(r *Result, cfg Config, t cargo.Target)
}

func strategyFor(kind cargo.TargetKind) strategy {
	if kind == cargo.KindExample {
		return exampleStrategy{}
	}
	return appStrategy{}
}

// appStrategy runs the built binary directly.
type appStrategy struct{}

func (appStrategy) command(cfg Config, t cargo.Target) *exec.Cmd {
	return exec.Command(t.BinaryPath(cfg.Profile))
}

func (appStrategy) extraLogInfo(cargo.Target) string { return "" }

func (appStrategy) decorate(r *Result, cfg Config, t cargo.Target) {
	r.BinaryPath = t.BinaryPath(cfg.Profile)
}

// exampleStrategy goes through cargo run so cargo picks the example artifact.
type exampleStrategy struct {
	// tool overrides the cargo executable in tests.
	tool string
}

func (s exampleStrategy) command(cfg Config, t cargo.Target) *exec.Cmd {
	return exec.Command(s.toolName(), exampleArgs(cfg, t)...)
}

func (s exampleStrategy) toolName() string {
	if s.tool != "" {
		return s.tool
	}
	return "cargo"
}

func exampleArgs(cfg Config, t cargo.Target) []string {
	args := []string{"run", "--example", t.Name}
	if len(cfg.Features) > 0 {
		args = append(args, "--features", strings.Join(cfg.Features, ","))
	}
	if cfg.Profile == ProfileRelease {
		args = append(args, "--release")
	}
	return args
}

func (exampleStrategy) extraLogInfo(t cargo.Target) string {
	return "Package: " + t.PackageName
}

func (exampleStrategy) decorate(r *Result, _ Config, t cargo.Target) {
	r.PackageName = t.PackageName
}
