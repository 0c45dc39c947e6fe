package launch

import (
	"errors"
	"fmt"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/ports"
)

const (
	ProfileDebug   = "debug"
	ProfileRelease = "release"
)

// Config is one launch request. Launch copies it per instance with WithPort;
// the value passed in is never modified.
type Config struct {
	TargetName    string
	Kind          cargo.TargetKind
	Profile       string
	Path          string
	Port          uint16
	InstanceCount int
	Features      []string
}

// NewConfig returns a Config with the default profile, port and a single instance.
func NewConfig(name string, kind cargo.TargetKind) Config {
	return Config{
		TargetName:    name,
		Kind:          kind,
		Profile:       ProfileDebug,
		Port:          ports.DefaultPort,
		InstanceCount: 1,
	}
}

// WithPort returns a copy of c bound to port.
func (c Config) WithPort(port uint16) Config {
	c.Port = port
	if c.Features != nil {
		c.Features = append([]string(nil), c.Features...)
	}
	return c
}

// Validate reports every problem with c.
func (c Config) Validate() error {
	var errs []error
	if c.TargetName == "" {
		errs = append(errs, errors.New("target name is required"))
	}
	if c.Profile != ProfileDebug && c.Profile != ProfileRelease {
		errs = append(errs, fmt.Errorf("profile must be %q or %q, got %q", ProfileDebug, ProfileRelease, c.Profile))
	}
	if c.Port == 0 {
		errs = append(errs, errors.New("port must be between 1 and 65534"))
	}
	if c.InstanceCount < 1 {
		errs = append(errs, fmt.Errorf("instance count must be at least 1, got %d", c.InstanceCount))
	}
	return errors.Join(errs...)
}
