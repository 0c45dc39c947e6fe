package launch

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/ports"
)

// spawned is one started instance.
type spawned struct {
	pid     int
	logFile string
}

// spawn starts one detached instance of t for cfg.Port. The log file handle
// is handed to the child and closed here once the process has started.
func (l *Launcher) spawn(launchID string, s strategy, cfg Config, t cargo.Target) (spawned, error) {
	cmd := s.command(cfg, t)
	cmd.Dir = t.ManifestDir()
	cmd.Env = l.environment(t, cfg.Port)
	cmd.Stdin = nil
	detach(cmd)

	path, logFile, err := createLogFile(l.logDir(), logHeader{
		LaunchID: launchID,
		Target:   t,
		Profile:  cfg.Profile,
		Command:  commandLine(cmd),
		Dir:      cmd.Dir,
		Port:     cfg.Port,
		Extra:    s.extraLogInfo(t),
	})
	if err != nil {
		return spawned{}, newError(CodeProcessFailed, cfg, "failed to prepare log file").
			WithCause(err).withConfig(cfg)
	}
	defer logFile.Close()

	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		return spawned{}, newError(CodeProcessFailed, cfg,
			fmt.Sprintf("failed to start %s '%s' on port %d", t.Kind, t.Name, cfg.Port)).
			WithCause(err).
			withConfig(cfg).
			WithContext("command", commandLine(cmd)).
			WithContext("log_file", path).
			WithSuggestion("check that the binary exists and is executable")
	}

	pid := cmd.Process.Pid
	// Reap the child when it exits so it never lingers as a zombie.
	go func() { _ = cmd.Wait() }()

	l.logger().Debug("instance started", "target", t.Name, "pid", pid, "port", cfg.Port, "log", path)
	return spawned{pid: pid, logFile: path}, nil
}

// environment is the parent's environment plus optional .env values and the
// port variable, later entries winning.
func (l *Launcher) environment(t cargo.Target, port uint16) []string {
	env := os.Environ()
	if l.DotEnv {
		vars, err := loadDotEnv(t)
		if err != nil {
			l.logger().Warn("ignoring .env file", "err", err)
		}
		for k, v := range vars {
			env = append(env, k+"="+v)
		}
	}
	return append(env, ports.EnvVar+"="+strconv.Itoa(int(port)))
}

func commandLine(cmd *exec.Cmd) string {
	return strings.Join(cmd.Args, " ")
}
