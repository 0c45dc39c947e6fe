package launch

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/ports"
)

// Builder is the build step Launch depends on.
type Builder interface {
	EnsureBuilt(ctx context.Context, t cargo.Target, profile string, features []string) (cargo.BuildState, error)
}

// Launcher resolves, builds and starts targets.
type Launcher struct {
	Finder  Finder
	Builder Builder
	// LogDir holds instance logs; empty means DefaultLogDir.
	LogDir string
	Logger *log.Logger
	// DotEnv passes .env values from the workspace to launched processes.
	DotEnv bool

	// strategy overrides the per-kind strategy; tests only.
	strategy strategy
	now      func() time.Time
}

func (l *Launcher) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}

func (l *Launcher) logDir() string {
	if l.LogDir != "" {
		return l.LogDir
	}
	return DefaultLogDir()
}

func (l *Launcher) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

// Launch runs the whole pipeline for cfg: resolve, build once, allocate
// ports, then start InstanceCount processes one after another.
//
// Any failure is returned as a *Error. If a spawn fails part way through, the
// instances already started keep running; their PIDs are listed in the
// error's "spawned_pids" context.
func (l *Launcher) Launch(ctx context.Context, cfg Config, roots []string) (*Result, error) {
	start := l.clock()
	launchID := uuid.NewString()

	if err := cfg.Validate(); err != nil {
		return nil, newError(CodeInvalidConfig, cfg, "invalid launch configuration").WithCause(err).withConfig(cfg)
	}

	target, duplicatePaths, err := Resolve(l.Finder, cfg, roots)
	if err != nil {
		return nil, classify(err, cfg)
	}
	if duplicatePaths != nil {
		l.logger().Debug("resolved target among duplicates", "target", target.Name, "path", target.RelativePath, "candidates", duplicatePaths)
	}

	state, err := l.Builder.EnsureBuilt(ctx, target, cfg.Profile, cfg.Features)
	if err != nil {
		return nil, classify(err, cfg)
	}
	if state == cargo.BuildNotFound {
		l.logger().Warn("build finished but target was not in the build output", "kind", target.Kind, "target", target.Name)
	}

	allocated, err := ports.Allocate(cfg.Port, cfg.InstanceCount)
	if err != nil {
		return nil, classify(err, cfg)
	}
	for _, port := range ports.Busy(allocated) {
		l.logger().Warn("port already in use, instance may fail to bind", "port", port, "holder_pid", ports.ProcessOnPort(port))
	}

	s := l.strategy
	if s == nil {
		s = strategyFor(target.Kind)
	}

	pids := make([]int, 0, len(allocated))
	logFiles := make([]string, 0, len(allocated))
	for _, port := range allocated {
		inst, err := l.spawn(launchID, s, cfg.WithPort(port), target)
		if err != nil {
			le := classify(err, cfg).WithContext("launch_id", launchID)
			if len(pids) > 0 {
				le.WithContext("spawned_pids", pids)
			}
			return nil, le
		}
		pids = append(pids, inst.pid)
		logFiles = append(logFiles, inst.logFile)
	}

	return aggregate(aggregateInput{
		launchID:       launchID,
		pids:           pids,
		logFiles:       logFiles,
		ports:          allocated,
		cfg:            cfg,
		target:         target,
		build:          state,
		duplicatePaths: duplicatePaths,
		start:          start,
		now:            l.clock(),
	}), nil
}
