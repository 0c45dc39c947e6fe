package launch

import (
	"fmt"
	"time"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/ports"
)

// Instance is one launched process. The launcher does not track it after
// Launch returns.
type Instance struct {
	PID     int    `json:"pid" yaml:"pid"`
	LogFile string `json:"log_file" yaml:"log_file"`
	Port    uint16 `json:"port" yaml:"port"`
}

// Result describes a successful launch.
type Result struct {
	LaunchID         string           `json:"launch_id" yaml:"launch_id"`
	TargetName       string           `json:"target_name" yaml:"target_name"`
	TargetKind       cargo.TargetKind `json:"target_type" yaml:"target_type"`
	Instances        []Instance       `json:"instances" yaml:"instances"`
	WorkingDirectory string           `json:"working_directory" yaml:"working_directory"`
	Profile          string           `json:"profile" yaml:"profile"`
	BinaryPath       string           `json:"binary_path,omitempty" yaml:"binary_path,omitempty"`
	PackageName      string           `json:"package_name,omitempty" yaml:"package_name,omitempty"`
	BuildState       string           `json:"build_state" yaml:"build_state"`
	LaunchDurationMs int64            `json:"launch_duration_ms" yaml:"launch_duration_ms"`
	LaunchTimestamp  string           `json:"launch_timestamp" yaml:"launch_timestamp"`
	Workspace        string           `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	DuplicatePaths   []string         `json:"duplicate_paths,omitempty" yaml:"duplicate_paths,omitempty"`
	Message          string           `json:"message" yaml:"message"`
}

// Ports returns the instance ports in launch order.
func (r *Result) Ports() []uint16 {
	out := make([]uint16, 0, len(r.Instances))
	for _, in := range r.Instances {
		out = append(out, in.Port)
	}
	return out
}

type aggregateInput struct {
	launchID       string
	pids           []int
	logFiles       []string
	ports          []uint16
	cfg            Config
	target         cargo.Target
	build          cargo.BuildState
	duplicatePaths []string
	start          time.Time
	now            time.Time
}

// aggregate assembles the Result. It has no side effects.
func aggregate(in aggregateInput) *Result {
	instances := make([]Instance, 0, len(in.pids))
	for i := range in.pids {
		instances = append(instances, Instance{PID: in.pids[i], LogFile: in.logFiles[i], Port: in.ports[i]})
	}

	r := &Result{
		LaunchID:         in.launchID,
		TargetName:       in.cfg.TargetName,
		TargetKind:       in.target.Kind,
		Instances:        instances,
		WorkingDirectory: in.target.ManifestDir(),
		Profile:          in.cfg.Profile,
		BuildState:       in.build.String(),
		LaunchDurationMs: in.now.Sub(in.start).Milliseconds(),
		LaunchTimestamp:  in.now.UTC().Format(time.RFC3339),
		Workspace:        in.target.WorkspaceName(),
		DuplicatePaths:   in.duplicatePaths,
		Message: fmt.Sprintf("Successfully launched %d instance(s) of %s on ports %s",
			len(instances), in.cfg.TargetName, ports.FormatRange(in.ports)),
	}
	strategyFor(in.target.Kind).decorate(r, in.cfg, in.target)
	return r
}
