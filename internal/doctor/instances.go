package doctor

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/harshul/brplaunch/internal/ports"
)

// Instance is a running process that was started with a launch port.
type Instance struct {
	PID     int32     `json:"pid" yaml:"pid"`
	Name    string    `json:"name" yaml:"name"`
	Port    uint16    `json:"port" yaml:"port"`
	Status  string    `json:"status" yaml:"status"`
	Started time.Time `json:"started" yaml:"started"`
	Cwd     string    `json:"cwd,omitempty" yaml:"cwd,omitempty"`
}

// Instances lists live processes whose environment carries the launch port
// variable, ordered by port. Processes whose environment cannot be read
// (other users, exited mid-scan) are skipped.
func Instances(ctx context.Context) ([]Instance, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	var out []Instance
	for _, p := range procs {
		env, err := p.EnvironWithContext(ctx)
		if err != nil {
			continue
		}
		port, ok := portFromEnv(env)
		if !ok {
			continue
		}

		inst := Instance{PID: p.Pid, Port: port}
		inst.Name, _ = p.NameWithContext(ctx)
		if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
			inst.Status = st[0]
		}
		if ms, err := p.CreateTimeWithContext(ctx); err == nil {
			inst.Started = time.UnixMilli(ms)
		}
		inst.Cwd, _ = p.CwdWithContext(ctx)
		out = append(out, inst)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Port != out[j].Port {
			return out[i].Port < out[j].Port
		}
		return out[i].PID < out[j].PID
	})
	return out, nil
}

// IsAlive reports whether pid is still running.
func IsAlive(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

func portFromEnv(env []string) (uint16, bool) {
	prefix := ports.EnvVar + "="
	for _, kv := range env {
		if !strings.HasPrefix(kv, prefix) {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimPrefix(kv, prefix), 10, 16)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint16(n), true
	}
	return 0, false
}
